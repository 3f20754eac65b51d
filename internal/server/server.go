// Package server contains the HTTP handlers for the inkwell API.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"inkwell/internal/config"
	"inkwell/internal/database"
	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/notifications"
	"inkwell/internal/repository"
	"inkwell/internal/service"
	"inkwell/internal/session"
	"inkwell/internal/storage"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const (
	csrfHeader     = "X-Csrf-Token"
	csrfFormField  = "_csrf"
	csrfCookieName = "csrf_"
	csrfLocal      = "csrf"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config      *config.Config
	db          *gorm.DB
	redis       *redis.Client
	app         *fiber.App
	shutdownCtx context.Context
	shutdownFn  context.CancelFunc

	sessions *session.Manager
	notifier *notifications.Notifier
	images   *storage.LocalImageStore

	userRepo repository.UserRepository

	storyService    *service.StoryService
	commentService  *service.CommentService
	likeService     *service.LikeService
	categoryService *service.CategoryService
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// redisClient may be nil.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	if db == nil {
		return nil, errors.New("server requires a database")
	}

	storyRepo := repository.NewStoryRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	likeRepo := repository.NewLikeRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)

	images := storage.NewLocalImageStore(cfg.ImageUploadDir, cfg.MaxUploadBytes())

	s := &Server{
		config:          cfg,
		db:              db,
		redis:           redisClient,
		sessions:        session.NewManager(cfg.JWTSecret, time.Duration(cfg.SessionTTLHours)*time.Hour),
		images:          images,
		userRepo:        repository.NewUserRepository(db),
		storyService:    service.NewStoryService(storyRepo, commentRepo, likeRepo, images),
		commentService:  service.NewCommentService(commentRepo, storyRepo),
		likeService:     service.NewLikeService(likeRepo, storyRepo),
		categoryService: service.NewCategoryService(categoryRepo),
	}
	if redisClient != nil {
		s.notifier = notifications.NewNotifier(redisClient)
	}
	return s, nil
}

// App returns the Fiber app with middleware and routes installed. It is
// built on first use.
func (s *Server) App() *fiber.App {
	if s.app != nil {
		return s.app
	}

	app := fiber.New(fiber.Config{
		AppName:   "inkwell",
		BodyLimit: int(s.config.MaxUploadBytes()) + 1024*1024,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var fe *fiber.Error
			if errors.As(err, &fe) {
				return c.Status(fe.Code).JSON(models.ErrorResponse{Error: fe.Message})
			}
			status := models.StatusFor(err)
			if status == fiber.StatusInternalServerError {
				middleware.Logger.ErrorContext(c.UserContext(), "unhandled error",
					slog.String("path", c.Path()), slog.String("error", err.Error()))
				if models.ErrorCode(err) == "" {
					err = models.NewInternalError(err)
				}
			}
			return models.RespondWithError(c, status, err)
		},
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	s.app = app
	return app
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())

	// Session runs before the context middleware so the user id reaches the logger.
	app.Use(middleware.Session(s.sessions))
	app.Use(middleware.TracingMiddleware())
	app.Use(middleware.ContextMiddleware())
	app.Use(middleware.MetricsMiddleware())
	app.Use(helmet.New())
	app.Use(middleware.StructuredLogger())

	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, " + csrfHeader,
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	if s.config.CSRFEnabled {
		app.Use(csrf.New(csrf.Config{
			Extractor:      csrfExtractor,
			CookieName:     csrfCookieName,
			CookieSameSite: "Lax",
			CookieSecure:   s.config.IsProduction(),
			CookieHTTPOnly: true,
			Expiration:     time.Hour,
			ContextKey:     csrfLocal,
			KeyGenerator:   uuid.NewString,
			ErrorHandler: func(c *fiber.Ctx, err error) error {
				middleware.Logger.WarnContext(c.UserContext(), "csrf check failed",
					slog.String("path", c.Path()), slog.String("error", err.Error()))
				return models.RespondWithError(c, fiber.StatusForbidden,
					models.NewForbiddenError("Invalid or missing form token"))
			},
		}))
	}
}

// csrfExtractor accepts the token from the header (fetch clients) or the
// hidden form field (multipart forms).
func csrfExtractor(c *fiber.Ctx) (string, error) {
	if token, err := csrf.CsrfFromHeader(csrfHeader)(c); err == nil {
		return token, nil
	}
	return csrf.CsrfFromForm(csrfFormField)(c)
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)

	middleware.RegisterMetricsRoute(app, "/metrics")

	app.Static(storage.PublicPrefix, s.images.Dir())

	app.Get("/categories", s.GetCategories)

	authed := middleware.SessionRequired()

	stories := app.Group("/stories")
	// Fixed segments before the generic /:id routes.
	stories.Get("/create", authed, s.NewStoryForm)
	stories.Post("/create", authed, s.CreateStory)
	stories.Get("/edit/:id", authed, s.EditStoryForm)
	stories.Post("/edit/:id", authed, s.UpdateStory)
	stories.Post("/delete/:id", authed, s.DeleteStory)
	stories.Get("/:id", s.GetStory)
	stories.Patch("/:id", authed, s.ToggleLike)

	comments := app.Group("/comments", authed)
	comments.Post("/create/:id", s.CreateComment)
	comments.Post("/edit/:id", s.UpdateComment)
	comments.Post("/delete/:id", s.DeleteComment)

	users := app.Group("/users")
	users.Get("/:id/stories", s.GetUserStories)
	// Delete redirects here.
	users.Get("/:id", s.GetUserStories)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck reports database and Redis health. Redis is optional: an
// unconfigured client reports "unavailable" without failing readiness.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
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
	if dbStatus == "unhealthy" || redisStatus == "unhealthy" {
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

// Start starts the story event subscriber and listens on the configured port.
func (s *Server) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.shutdownCtx = ctx
	s.shutdownFn = cancel

	app := s.App()

	if s.notifier != nil {
		err := s.notifier.StartStorySubscriber(s.shutdownCtx, func(ev notifications.Event) {
			middleware.Logger.Info("story activity",
				slog.String("type", ev.Type),
				slog.Any("story_id", ev.StoryID),
				slog.Any("user_id", ev.UserID))
		})
		if err != nil {
			middleware.Logger.Warn("story subscriber not started", slog.String("error", err.Error()))
		}
	}

	middleware.Logger.Info("server starting", slog.String("port", s.config.Port))
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.shutdownFn != nil {
		s.shutdownFn()
	}

	var errs []error
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			errs = append(errs, fmt.Errorf("shutdown http: %w", err))
		}
	}
	if err := database.Close(s.db); err != nil {
		errs = append(errs, fmt.Errorf("close database: %w", err))
	}
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close redis: %w", err))
		}
	}

	middleware.Logger.Info("server shutdown complete")
	return errors.Join(errs...)
}
