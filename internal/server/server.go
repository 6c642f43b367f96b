package server

import (
	"backend-peaktrack/internal/auth"
	"backend-peaktrack/internal/config"
	"backend-peaktrack/internal/history"
	"backend-peaktrack/internal/notify"
	"backend-peaktrack/internal/store"
	"backend-peaktrack/internal/stream"
	"backend-peaktrack/internal/tracking"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

type Server struct {
	App      *fiber.App
	Cfg      config.Config
	DB       *pgxpool.Pool
	Redis    *redis.Client
	Stream   *stream.Hub
	Recorder *tracking.Recorder
}

func NewServer(cfg config.Config, db *pgxpool.Pool, redisClient *redis.Client) *Server {
	app := fiber.New()
	app.Use(recover.New())
	app.Use(logger.New())

	hub := stream.NewHub(redisClient)
	st := store.NewStore(db)
	notifier := notify.NewNotifier(redisClient, cfg.AlertChannel)
	recorder := tracking.NewRecorder(st, tracking.NewTracker(st, cfg.ExtremaID), notify.NewDebouncer(notifier), hub)
	go recorder.Run()

	s := &Server{
		App:      app,
		Cfg:      cfg,
		DB:       db,
		Redis:    redisClient,
		Stream:   hub,
		Recorder: recorder,
	}

	registerRoutes(s, st)
	return s
}

// Close stops the engine loop. The fiber app is shut down by the caller.
func (s *Server) Close() {
	s.Recorder.Close()
}

func registerRoutes(s *Server, st *store.Store) {
	s.App.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	jwtMiddleware := auth.JWTMiddleware(s.Cfg.JWTSecret)

	auth.RegisterRoutes(s.App.Group("/auth"), auth.NewService(s.Cfg.JWTSecret, s.Cfg.DeviceKeyHash))
	tracking.RegisterRoutes(s.App.Group("/tracking"), s.Recorder, jwtMiddleware)
	tracking.RegisterExtremesRoutes(s.App.Group("/extremes"), s.Recorder)
	history.RegisterRoutes(s.App.Group("/records"), history.NewFetcher(st))
	stream.RegisterRoutes(s.App.Group("/stream"), s.Stream)
}
