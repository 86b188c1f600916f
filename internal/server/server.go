// Package server contains HTTP and WebSocket handlers for the application's endpoints.
package server

import (
	"context"
	"errors"
	"time"

	_ "microblog/docs" // swagger docs
	"microblog/internal/config"
	"microblog/internal/featureflags"
	"microblog/internal/middleware"
	"microblog/internal/models"
	"microblog/internal/notifications"
	"microblog/internal/observability"
	"microblog/internal/repository"
	"microblog/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
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
	shutdownCtx    context.Context
	shutdownFn     context.CancelFunc
	flags          *featureflags.Set
	notifier       *notifications.Notifier
	hub            *notifications.Hub
	feedService    *service.FeedService
	followService  *service.FollowService
	authService    *service.AuthService
	userService    *service.UserService
	postService    *service.PostService
	metricService  *service.MetricService
	importService  *service.ImportService
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// redisClient may be nil, in which case live notifications are disabled.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	if cfg == nil || db == nil {
		return nil, errors.New("server requires a config and a database")
	}
	middleware.InitMiddleware(cfg)

	flags, err := featureflags.Parse(cfg.FeatureFlags)
	if err != nil {
		middleware.Logger.Warn("ignoring malformed feature flags", "error", err)
	}

	userRepo := repository.NewUserRepository(db)
	followRepo := repository.NewFollowRepository(db)
	postRepo := repository.NewPostRepository(db)
	metricRepo := repository.NewMetricRepository(db)

	s := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: observability.HTTPMetrics("microblog-api"),
		flags:          flags,
	}

	var publisher service.PostPublisher
	if redisClient != nil {
		s.notifier = notifications.NewNotifier(redisClient)
		s.hub = notifications.NewHub()
		publisher = s.notifier
	}

	s.followService = service.NewFollowService(followRepo, userRepo)
	s.feedService = service.NewFeedService(postRepo, cfg.PostsPerPage)
	s.authService = service.NewAuthService(userRepo)
	s.userService = service.NewUserService(userRepo, s.followService)
	s.postService = service.NewPostService(postRepo, followRepo, userRepo, publisher)
	s.metricService = service.NewMetricService(metricRepo)
	s.importService = service.NewImportService(metricRepo)

	return s, nil
}

// NewApp builds a Fiber app with the middleware stack and every route installed.
func (s *Server) NewApp() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "Microblog API",
		BodyLimit:    s.uploadLimit() + 64*1024,
		ErrorHandler: errorHandler,
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	return app
}

// errorHandler renders errors that escaped the handlers, such as unknown routes.
func errorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(models.ErrorResponse{Error: fe.Message})
	}
	middleware.Logger.ErrorContext(c.UserContext(), "unhandled error", "error", err)
	return models.RespondWithError(c, fiber.StatusInternalServerError, models.NewInternalError(err))
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())

	if s.config.TracingEnabled {
		app.Use(middleware.TracingMiddleware())
	}

	// Context Middleware to propagate Request ID and trace ID
	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		app.Use(s.promMiddleware.Middleware)
	}

	app.Use(helmet.New())
	app.Use(middleware.StructuredLogger())

	// CORS runs before the limiter so rejected requests still carry CORS headers.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, Upgrade, Connection, Sec-WebSocket-Key, Sec-WebSocket-Version",
		AllowCredentials: origins != "*",
		MaxAge:           86400,
	}))

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		Next: func(c *fiber.Ctx) bool {
			if c.Method() == fiber.MethodOptions {
				return true
			}
			switch s.config.Env {
			case "development", "test":
				return true
			}
			return false
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(models.ErrorResponse{
				Error: "Too many requests, please try again later.",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/prom")
	}
	app.Get("/swagger/*", swagger.HandlerDefault)

	// Session routes
	app.Get("/login", s.LoginForm)
	app.Post("/login", middleware.RateLimit(s.redis, 10, 5*time.Minute, "login"), s.Login)
	app.Get("/logout", s.Logout)
	app.Get("/register", s.RegisterForm)
	app.Post("/register", middleware.RateLimit(s.redis, 3, 10*time.Minute, "register"), s.Register)

	// Spreadsheet import and view need no session.
	app.Get("/import", s.ImportForm)
	app.Post("/import", middleware.RateLimit(s.redis, 10, 10*time.Minute, "import"), s.Import)
	app.Get("/handson_view", s.HandsonView)

	authed := s.AuthRequired()

	for _, path := range []string{"/", "/index"} {
		app.Get(path, authed, s.Index)
		app.Post(path, authed, middleware.RateLimit(s.redis, 30, time.Minute, "create_post"), s.CreatePost)
	}
	app.Get("/explore", authed, s.Explore)

	app.Get("/user/:username", authed, s.UserProfile)
	app.Get("/edit_profile", authed, s.EditProfileForm)
	app.Post("/edit_profile", authed, s.EditProfile)
	app.Post("/follow/:username", authed, s.Follow)
	app.Post("/unfollow/:username", authed, s.Unfollow)

	// The registry accepts both verbs on every route.
	app.Get("/metrics", authed, s.ListMetrics)
	app.Post("/metrics", authed, s.ListMetrics)
	app.Get("/metrics/add", authed, s.AddMetricForm)
	app.Post("/metrics/add", authed, s.AddMetric)
	app.Get("/metrics/edit/:id", authed, s.EditMetricForm)
	app.Post("/metrics/edit/:id", authed, s.EditMetric)
	app.Get("/metrics/delete/:id", authed, s.DeleteMetric)
	app.Post("/metrics/delete/:id", authed, s.DeleteMetric)

	app.Get("/features", authed, s.GetFeatureFlags)
	app.Get("/ws", authed, s.LiveFeedUpgrade, s.LiveFeedHandler())
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests. Redis is optional: without it the
// app serves everything except live notifications, so it is reported but not required.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "unavailable"
	if s.redis != nil {
		redisStatus = "healthy"
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus != "healthy" || redisStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// Start serves HTTP on the configured port until Shutdown is called.
func (s *Server) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.shutdownCtx = ctx
	s.shutdownFn = cancel

	s.app = s.NewApp()

	if s.notifier != nil && s.hub != nil {
		go func() {
			if err := s.hub.StartWiring(s.shutdownCtx, s.notifier); err != nil {
				middleware.Logger.Error("failed to start notification wiring", "error", err)
			}
		}()
	}

	middleware.Logger.Info("server starting", "port", s.config.Port, "env", s.config.Env)
	return s.app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.shutdownFn != nil {
		s.shutdownFn()
	}

	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			middleware.Logger.Error("error shutting down HTTP server", "error", err)
		}
	}

	if s.hub != nil {
		if err := s.hub.Shutdown(ctx); err != nil {
			middleware.Logger.Error("error shutting down notification hub", "error", err)
		}
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			middleware.Logger.Error("error closing sql DB", "error", cerr)
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			middleware.Logger.Error("error closing redis", "error", rerr)
		}
	}

	middleware.Logger.Info("server shutdown complete")
	return nil
}
