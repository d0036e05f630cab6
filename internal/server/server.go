package server

import (
	"context"
	"log"

	"backend-taqvo/internal/activity"
	"backend-taqvo/internal/auth"
	"backend-taqvo/internal/community"
	"backend-taqvo/internal/config"
	dbpkg "backend-taqvo/internal/db"
	"backend-taqvo/internal/gateway"
	"backend-taqvo/internal/overrides"
	"backend-taqvo/internal/queue"
	"backend-taqvo/internal/reconcile"
	"backend-taqvo/internal/stream"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

type Server struct {
	App     *fiber.App
	Cfg     config.Config
	DB      *pgxpool.Pool
	Redis   *redis.Client
	Hub     *stream.Hub
	Session *auth.Session
	Model   *community.Model
	Driver  *reconcile.Driver
}

func NewServer(cfg config.Config, db *pgxpool.Pool, redisClient *redis.Client) *Server {
	app := fiber.New()
	app.Use(recover.New())
	app.Use(logger.New())

	hub := stream.NewHub(redisClient)
	session := auth.NewSession()

	challengeOv := overrides.NewStore(redisClient, "challenges", session)
	clubOv := overrides.NewStore(redisClient, "clubs", session)
	writes := queue.NewQueue(redisClient, session)
	purgeLegacy(challengeOv, clubOv, writes)

	var q dbpkg.Querier
	if db != nil {
		q = db
	}
	gw := gateway.NewService(q)
	source := activity.NewService(q, session)
	model := community.NewModel(gw, challengeOv, clubOv, writes, source, session, hub, cfg.DemoSeed)

	s := &Server{
		App:     app,
		Cfg:     cfg,
		DB:      db,
		Redis:   redisClient,
		Hub:     hub,
		Session: session,
		Model:   model,
		Driver:  reconcile.NewDriver(hub, model),
	}

	registerRoutes(s, auth.NewService(cfg.JWTSecret, q, session, hub), source)
	return s
}

func registerRoutes(s *Server, authSvc *auth.Service, source *activity.Service) {
	s.App.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	jwtMiddleware := auth.JWTMiddleware(s.Cfg.JWTSecret)

	auth.RegisterRoutes(s.App.Group("/auth"), authSvc)
	community.RegisterRoutes(s.App.Group("/community"), s.Model, jwtMiddleware)
	activity.RegisterRoutes(s.App.Group("/activities"), source, jwtMiddleware)
	stream.RegisterRoutes(s.App.Group("/stream"), s.Hub)
}

// legacy unscoped keys from before per-user scoping must not survive an
// upgrade; see the override store docs.
func purgeLegacy(challengeOv, clubOv *overrides.Store, writes *queue.Queue) {
	ctx := context.Background()
	if err := challengeOv.PurgeLegacy(ctx); err != nil {
		log.Printf("legacy override purge failed: %v", err)
	}
	if err := clubOv.PurgeLegacy(ctx); err != nil {
		log.Printf("legacy override purge failed: %v", err)
	}
	if err := writes.PurgeLegacy(ctx); err != nil {
		log.Printf("legacy queue purge failed: %v", err)
	}
}
