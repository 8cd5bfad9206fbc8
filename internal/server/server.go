// Package server contains the HTTP handlers for the application's API endpoints.
package server

import (
	"context"
	"fmt"
	"time"

	"tapestry/internal/cache"
	"tapestry/internal/config"
	"tapestry/internal/database"
	"tapestry/internal/middleware"
	"tapestry/internal/repository"
	"tapestry/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config            *config.Config
	db                *gorm.DB
	redis             *redis.Client
	promMiddleware    *fiberprometheus.FiberPrometheus
	userRepo          repository.UserRepository
	communityRepo     repository.CommunityRepository
	membershipRepo    repository.MembershipRepository
	threadRepo        repository.ThreadRepository
	userService       *service.UserService
	communityService  *service.CommunityService
	membershipService *service.MembershipService
	threadService     *service.ThreadService
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)
	redisClient := cache.GetClient()

	return NewServerWithDeps(cfg, db, redisClient)
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Use this in tests or when a bootstrap layer establishes DB/Redis itself.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	userRepo := repository.NewUserRepository(db)
	communityRepo := repository.NewCommunityRepository(db)
	membershipRepo := repository.NewMembershipRepository(db)
	threadRepo := repository.NewThreadRepository(db)

	prom := middleware.InitMetrics("tapestry-api")
	middleware.InitMiddleware(cfg)

	server := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: prom,
		userRepo:       userRepo,
		communityRepo:  communityRepo,
		membershipRepo: membershipRepo,
		threadRepo:     threadRepo,
	}
	server.userService = service.NewUserService(userRepo, threadRepo, membershipRepo)
	server.communityService = service.NewCommunityService(communityRepo, userRepo, membershipRepo, threadRepo, db)
	server.membershipService = service.NewMembershipService(communityRepo, userRepo, membershipRepo)
	server.threadService = service.NewThreadService(threadRepo, userRepo, communityRepo, db)

	return server, nil
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	// Context middleware to propagate request ID and user ID
	app.Use(middleware.ContextMiddleware())

	// Prometheus metrics
	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	// OpenTelemetry tracing
	if s.config.TracingEnabled {
		app.Use(middleware.TracingMiddleware())
	}

	// Security headers
	app.Use(helmet.New())

	// Structured logging middleware (after requestid and context middleware)
	app.Use(middleware.StructuredLogger())

	// CORS must run before middlewares that can short-circuit (e.g. limiter)
	// so browser clients still receive CORS headers on error responses.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173"
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, please try again later.",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	api := app.Group("/api")

	// Health checks
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)

	// Metrics endpoint for Prometheus
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	// Users
	users := api.Group("/users")
	users.Post("/sync", middleware.AuthRequired, s.SyncUser)
	users.Get("/", s.ListUsers)
	users.Get("/:id", s.GetUser)
	users.Get("/:id/threads", s.GetUserThreads)
	users.Get("/:id/communities", s.GetUserCommunities)
	users.Get("/:id/activity", middleware.AuthRequired, s.GetUserActivity)

	// Communities
	communities := api.Group("/communities")
	communities.Get("/", s.ListCommunities)
	communities.Post("/", middleware.AuthRequired,
		middleware.RateLimit(s.redis, 10, time.Minute, "community-create"), s.CreateCommunity)
	communities.Get("/:id", s.GetCommunityDetails)
	communities.Get("/:id/threads", s.GetCommunityThreads)
	communities.Patch("/:id", middleware.AuthRequired, s.UpdateCommunityInfo)
	communities.Delete("/:id", middleware.AuthRequired, s.DeleteCommunity)
	communities.Post("/:id/members", middleware.AuthRequired, s.AddCommunityMember)
	communities.Delete("/:id/members/:userId", middleware.AuthRequired, s.RemoveCommunityMember)

	// Threads
	threads := api.Group("/threads")
	threads.Get("/", s.ListThreads)
	threads.Post("/", middleware.AuthRequired,
		middleware.RateLimit(s.redis, 30, time.Minute, "thread-create"), s.CreateThread)
	threads.Get("/:id", s.GetThread)
	threads.Post("/:id/replies", middleware.AuthRequired,
		middleware.RateLimit(s.redis, 60, time.Minute, "thread-reply"), s.AddThreadReply)
	threads.Delete("/:id", middleware.AuthRequired, s.DeleteThread)
}

// LivenessCheck reports that the process is up.
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// ReadinessCheck reports whether the server can reach its dependencies.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 2*time.Second)
	defer cancel()

	sqlDB, err := s.db.DB()
	if err != nil || sqlDB.PingContext(ctx) != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status": "degraded",
			"db":     "unreachable",
		})
	}

	status := fiber.Map{"status": "ok", "db": "ok"}
	if s.redis != nil {
		if err := s.redis.Ping(ctx).Err(); err != nil {
			status["redis"] = "unreachable"
		} else {
			status["redis"] = "ok"
		}
	} else {
		status["redis"] = "disabled"
	}

	return c.JSON(status)
}

// Shutdown releases server-held resources.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			return err
		}
	}
	return database.Close(s.db)
}

// externalUserID returns the authenticated caller's external id from locals.
func (s *Server) externalUserID(c *fiber.Ctx) string {
	if uid, ok := c.Locals("externalUserID").(string); ok {
		return uid
	}
	return ""
}
