package server

import (
	"backend-pulsedash/internal/activity"
	"backend-pulsedash/internal/auth"
	"backend-pulsedash/internal/charts"
	"backend-pulsedash/internal/config"
	"backend-pulsedash/internal/dashboard"
	"backend-pulsedash/internal/jobs"
	"backend-pulsedash/internal/profile"
	"backend-pulsedash/internal/stream"
	"backend-pulsedash/internal/vitals"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

type Server struct {
	App    *fiber.App
	Cfg    config.Config
	DB     *pgxpool.Pool
	Redis  *redis.Client
	Stream *stream.Hub
}

func NewServer(cfg config.Config, db *pgxpool.Pool, redisClient *redis.Client) *Server {
	app := fiber.New()
	app.Use(recover.New())
	app.Use(logger.New())

	s := &Server{
		App:    app,
		Cfg:    cfg,
		DB:     db,
		Redis:  redisClient,
		Stream: stream.NewHub(redisClient),
	}

	registerRoutes(s)
	return s
}

func registerRoutes(s *Server) {
	s.App.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	jwtMiddleware := auth.JWTMiddleware(s.Cfg.JWTSecret)

	profiles := profile.NewService(s.DB)
	days := vitals.NewService(s.DB)
	activities := activity.NewService(s.DB)

	auth.RegisterRoutes(s.App.Group("/auth"), auth.NewService(s.Cfg.JWTSecret, s.DB))
	profile.RegisterRoutes(s.App.Group("/profile"), profiles, jwtMiddleware)
	vitals.RegisterRoutes(s.App.Group("/vitals"), days, profiles, jwtMiddleware)
	activity.RegisterRoutes(s.App.Group("/activities"), activities, profiles, jwtMiddleware)
	charts.RegisterRoutes(s.App.Group("/charts"), days, activities, profiles, jwtMiddleware)
	dashboard.RegisterRoutes(s.App.Group("/dashboard"), days, activities, jwtMiddleware)
	jobs.RegisterRoutes(s.App.Group("/jobs"), jobs.NewService(s.DB, s.Redis, s.Cfg.SyncQueue, s.Stream), jwtMiddleware)
	stream.RegisterRoutes(s.App.Group("/stream"), s.Stream)
}
