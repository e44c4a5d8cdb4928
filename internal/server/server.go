// Package server contains the HTTP handlers for the application's API endpoints.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "recipebox/docs" // swagger docs
	"recipebox/internal/bootstrap"
	"recipebox/internal/config"
	"recipebox/internal/database"
	"recipebox/internal/middleware"
	"recipebox/internal/models"
	"recipebox/internal/password"
	"recipebox/internal/repository"
	"recipebox/internal/service"
	"recipebox/internal/session"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	sessions       *session.Manager
	userRepo       repository.UserRepository
	recipeRepo     repository.RecipeRepository
	authService    *service.AuthService
	recipeService  *service.RecipeService
}

// NewServer creates a new server instance with all dependencies. When Redis
// cannot be reached, sessions are kept in process memory and caching is off.
func NewServer(cfg *config.Config) (*Server, error) {
	db, redisClient, err := bootstrap.InitRuntime(cfg, bootstrap.Options{})
	if err != nil {
		return nil, err
	}
	return NewServerWithDeps(cfg, db, redisClient)
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// redisClient may be nil.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	if db == nil {
		return nil, fmt.Errorf("database is required")
	}

	var (
		store session.Store
		rdb   redis.Cmdable
	)
	if redisClient != nil {
		store = session.NewRedisStore(redisClient)
		rdb = redisClient
	} else {
		store = session.NewMemoryStore()
	}

	userRepo := repository.NewUserRepository(db, rdb)
	recipeRepo := repository.NewRecipeRepository(db)

	return &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("recipebox-api"),
		sessions: session.NewManager(store, session.Options{
			Secret:       []byte(cfg.SessionSecret),
			TTL:          cfg.SessionTTL(),
			CookieName:   cfg.SessionCookieName,
			CookieSecure: cfg.SessionCookieSecure,
		}),
		userRepo:      userRepo,
		recipeRepo:    recipeRepo,
		authService:   service.NewAuthService(userRepo, password.Bcrypt{}),
		recipeService: service.NewRecipeService(recipeRepo),
	}, nil
}

// NewApp builds the Fiber application with middleware and routes installed.
func (s *Server) NewApp() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName: "Recipebox API",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			middleware.Logger.ErrorContext(c.UserContext(), "Unhandled error",
				slog.String("error", err.Error()))
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		},
	})

	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	return app
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.TracingMiddleware())

	// Copies request and trace ids onto the request context for logging.
	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	app.Use(helmet.New())
	app.Use(middleware.StructuredLogger())

	origins := strings.TrimSpace(s.config.AllowedOrigins)
	if origins == "" {
		origins = "http://localhost:3000,http://localhost:5173"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowHeaders: "Origin, Content-Type, Accept",
		AllowMethods: "GET,POST,DELETE,OPTIONS",
		// Browsers refuse credentialed responses to a wildcard origin.
		AllowCredentials: origins != "*",
		MaxAge:           86400,
	}))

	app.Use(middleware.LoadSession(s.sessions))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	app.Get("/swagger/*", swagger.HandlerDefault)

	app.Post("/signup", s.Signup)
	app.Post("/login", s.Login)
	app.Get("/check_session", s.AuthRequired(), s.CheckSession)
	app.Delete("/logout", middleware.RequireSession(), s.Logout)

	recipes := app.Group("/recipes", s.AuthRequired())
	recipes.Get("/", s.ListRecipes)
	recipes.Post("/", s.CreateRecipe)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	if err := database.Ping(ctx, s.db); err != nil {
		dbStatus = "unhealthy"
	}

	storeStatus := "healthy"
	if err := s.sessions.Store().Ping(ctx); err != nil {
		storeStatus = "unhealthy"
	}

	storeKind := "memory"
	if s.redis != nil {
		storeKind = "redis"
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus != "healthy" || storeStatus != "healthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"sessions": fiber.Map{
				"status": storeStatus,
				"store":  storeKind,
			},
		},
		"time": time.Now(),
	})
}

// Start begins serving on the configured port and blocks until shutdown.
func (s *Server) Start() error {
	s.app = s.NewApp()

	middleware.Logger.Info("Server starting", slog.String("port", s.config.Port))
	return s.app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			middleware.Logger.Error("Error shutting down HTTP server", slog.String("error", err.Error()))
		}
	}

	if err := database.Close(s.db); err != nil {
		middleware.Logger.Error("Error closing database", slog.String("error", err.Error()))
	}

	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			middleware.Logger.Error("Error closing redis", slog.String("error", err.Error()))
		}
	}

	middleware.Logger.Info("Server shutdown complete")
	return nil
}
