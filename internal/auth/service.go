package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const deviceTokenTTL = 30 * 24 * time.Hour

// Service exchanges a pre-shared device key for a bearer token. There are no
// user accounts; the installation authenticates as a whole.
type Service struct {
	secret        []byte
	deviceKeyHash string
}

type Claims struct {
	DeviceID string `json:"device_id"`
	jwt.RegisteredClaims
}

type TokenRequest struct {
	DeviceID  string `json:"device_id"`
	DeviceKey string `json:"device_key"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
	DeviceID    string `json:"device_id"`
}

func NewService(secret, deviceKeyHash string) *Service {
	return &Service{
		secret:        []byte(secret),
		deviceKeyHash: deviceKeyHash,
	}
}

// IssueToken validates the device key against the configured bcrypt hash and
// returns a signed token. An empty configured hash disables the exchange.
func (s *Service) IssueToken(req TokenRequest) (TokenResponse, error) {
	if s.deviceKeyHash == "" {
		return TokenResponse{}, errors.New("device key exchange not configured")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(s.deviceKeyHash), []byte(req.DeviceKey)); err != nil {
		return TokenResponse{}, errors.New("invalid device key")
	}

	deviceID := req.DeviceID
	if deviceID == "" {
		deviceID = uuid.NewString()
	}

	token, err := s.signToken(deviceID, deviceTokenTTL)
	if err != nil {
		return TokenResponse{}, err
	}
	return TokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int64(deviceTokenTTL.Seconds()),
		DeviceID:    deviceID,
	}, nil
}

func (s *Service) signToken(deviceID string, ttl time.Duration) (string, error) {
	claims := Claims{
		DeviceID: deviceID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}
