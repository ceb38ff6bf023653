package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"speaklab/internal/adapter"
	"speaklab/internal/adapter/analysis"
	"speaklab/internal/cache"
	"speaklab/internal/config"
	"speaklab/internal/database"
	"speaklab/internal/domain"
	"speaklab/internal/handler"
	"speaklab/internal/logger"
	"speaklab/internal/middleware"
	"speaklab/internal/repository"
	"speaklab/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// requestLogger is a middleware that logs HTTP requests
func requestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		path := c.Path()
		method := c.Method()

		err := c.Next()

		duration := time.Since(start)
		status := c.Response().StatusCode()

		logger.Get().Info("HTTP Request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", status),
			zap.Duration("duration", duration),
			zap.String("ip", c.IP()),
			zap.String("user_agent", c.Get("User-Agent")),
		)

		return err
	}
}

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	if err := logger.Initialize(cfg.Logger); err != nil {
		panic(err)
	}
	appLogger := logger.Get()
	defer logger.Sync()

	loc, err := time.LoadLocation(cfg.Scoring.Timezone)
	if err != nil {
		appLogger.Fatal("Failed to load scoring timezone", zap.String("timezone", cfg.Scoring.Timezone), zap.Error(err))
	}

	deriver, err := domain.NewScoreDeriver(domain.ScoreThresholds{
		BandLowMax:  cfg.Scoring.BandLowMax,
		BandHighMin: cfg.Scoring.BandHighMin,
		Easy:        domain.StarCuts{ThreeStarMax: cfg.Scoring.Easy.ThreeStarMax, TwoStarMax: cfg.Scoring.Easy.TwoStarMax},
		Medium:      domain.StarCuts{ThreeStarMax: cfg.Scoring.Medium.ThreeStarMax, TwoStarMax: cfg.Scoring.Medium.TwoStarMax},
		Hard:        domain.StarCuts{ThreeStarMax: cfg.Scoring.Hard.ThreeStarMax, TwoStarMax: cfg.Scoring.Hard.TwoStarMax},
	})
	if err != nil {
		appLogger.Fatal("Invalid scoring thresholds", zap.Error(err))
	}

	// Connect to database
	db, err := database.NewSQLXPostgresDB(cfg.GetDSN())
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Initialize repositories
	userRepository := repository.NewSQLXUserRepository(db)
	attemptRepository := repository.NewSQLXAttemptRepository(db)
	progressRepository := repository.NewSQLXProgressRepository(db)
	catalogRepository := repository.NewSQLXCatalogRepository(db)
	txManager := repository.NewTransactionManagerAdapter(db)
	scopeLocker := repository.NewPgScopeLocker(db)

	// Redis is optional: the catalog simply skips caching without it.
	var cacheAdapter domain.Cache
	if cfg.Redis.Address != "" {
		redisClient, err := cache.NewRedisClient(cfg.Redis)
		if err != nil {
			appLogger.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		cacheAdapter = adapter.NewRedisCacheAdapter(redisClient)
		appLogger.Info("RedisCacheAdapter initialized")
	} else {
		appLogger.Warn("Redis address not configured; catalog caching disabled")
	}

	// External anxiety analysis service
	analysisClient := analysis.NewClient(cfg.Analysis)
	appLogger.Info("Analysis client initialized", zap.String("base_url", cfg.Analysis.BaseURL))

	// Initialize services
	sessionService := service.NewSessionService(
		analysisClient,
		deriver,
		attemptRepository,
		progressRepository,
		userRepository,
		scopeLocker,
		txManager,
		loc,
		cfg.Scoring.LowAnxietyJumpBelow,
	)
	authService, err := service.NewAuthService(userRepository, cfg)
	if err != nil {
		appLogger.Fatal("Failed to create AuthService", zap.Error(err))
	}
	userService := service.NewUserService(userRepository, attemptRepository, progressRepository, txManager)
	catalogService := service.NewCatalogService(catalogRepository, cacheAdapter)

	// Initialize handlers
	sessionHandler := handler.NewSessionHandler(sessionService)
	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	catalogHandler := handler.NewCatalogHandler(catalogService)

	// Create Fiber app
	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.ReadTimeout,
		BodyLimit:    cfg.Server.BodyLimit,
		ErrorHandler: middleware.ErrorHandler(),
	})

	app.Use(requestLogger())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.Server.CORSOrigins,
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
		MaxAge:       300,
	}))
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		if err := db.PingContext(c.Context()); err != nil {
			return fiber.NewError(fiber.StatusServiceUnavailable, "database unreachable")
		}
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// API group
	apiGroup := app.Group("/api")

	// Auth routes
	authGroup := apiGroup.Group("/auth")
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)
	authGroup.Get("/me", middleware.Protected(authService), userHandler.GetMyProfile)

	// User routes (all protected)
	userGroup := apiGroup.Group("/users", middleware.Protected(authService))
	userGroup.Get("/me", userHandler.GetMyProfile)
	userGroup.Get("/me/progress", userHandler.GetMyProgress)
	userGroup.Post("/me/initial-tier", userHandler.AssignInitialTier)
	userGroup.Delete("/me", userHandler.DeleteMyAccount)

	// Session routes (all protected)
	sessionGroup := apiGroup.Group("/sessions", middleware.Protected(authService))
	sessionGroup.Post("/audio", sessionHandler.SubmitAudio)
	sessionGroup.Post("/eval/audio", sessionHandler.EvaluateAudio)
	sessionGroup.Post("/", sessionHandler.CreateManualSession)

	// Catalog routes (public)
	apiGroup.Get("/tiers", catalogHandler.ListTiers)
	apiGroup.Get("/tiers/by-name/:name", catalogHandler.GetTierByName)
	apiGroup.Get("/tiers/:id", catalogHandler.GetTierByID)
	apiGroup.Get("/colleges", catalogHandler.ListColleges)

	// Serve and wait for a shutdown signal; either failing tears down both.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		appLogger.Info("Starting server", zap.Int("port", cfg.Server.Port), zap.String("env", os.Getenv("ENV")))
		return app.Listen(":" + strconv.Itoa(cfg.Server.Port))
	})
	g.Go(func() error {
		<-gCtx.Done()
		appLogger.Info("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return app.ShutdownWithContext(shutdownCtx)
	})

	if err := g.Wait(); err != nil && err != context.Canceled {
		appLogger.Fatal("Server terminated", zap.Error(err))
	}
	appLogger.Info("Server exited gracefully")
}
