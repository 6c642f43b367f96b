package store

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"
)

// cursorPos is the keyset position behind an opaque page cursor.
type cursorPos struct {
	RecordedAt time.Time `json:"t"`
	ID         string    `json:"i"`
}

func encodeCursor(pos cursorPos) string {
	raw, _ := json.Marshal(pos)
	return base64.RawURLEncoding.EncodeToString(raw)
}

func decodeCursor(cursor string) (cursorPos, error) {
	raw, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return cursorPos{}, fmt.Errorf("bad cursor: %w", err)
	}
	var pos cursorPos
	if err := json.Unmarshal(raw, &pos); err != nil {
		return cursorPos{}, fmt.Errorf("bad cursor: %w", err)
	}
	return pos, nil
}
