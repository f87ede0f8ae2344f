package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dutyroster/schedule-backend/internal/config"
	"github.com/dutyroster/schedule-backend/internal/database"
	"github.com/dutyroster/schedule-backend/internal/handlers"
	"github.com/dutyroster/schedule-backend/internal/middleware"
	"github.com/dutyroster/schedule-backend/internal/services"
	"github.com/dutyroster/schedule-backend/internal/session"
	"github.com/dutyroster/schedule-backend/pkg/jwt"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

var (
	version   = "1.0.0"
	buildTime = "unknown"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	logger.Info("Starting duty schedule backend")
	logger.Infof("Version: %s, Build Time: %s", version, buildTime)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	// Set log level
	logLevel, err := logrus.ParseLevel(cfg.Server.LogLevel)
	if err != nil {
		logger.Warn("Invalid log level, using INFO")
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Set Gin mode
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	// Initialize database connection
	logger.WithField("path", cfg.Database.Path).Info("Opening database...")
	db, err := database.NewConnection(cfg.Database)
	if err != nil {
		logger.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()
	logger.Info("Database ready")

	location, err := cfg.Schedule.Location()
	if err != nil {
		logger.Fatalf("Invalid schedule time zone: %v", err)
	}
	calendar := services.NewCalendar(location)

	// Token revocation: Redis when configured, otherwise in-process
	var revoked session.RevocationStore
	if cfg.Redis.URL != "" {
		redisStore, err := session.NewRedisStore(cfg.Redis.URL)
		if err != nil {
			logger.Fatalf("Failed to connect to Redis: %v", err)
		}
		revoked = redisStore
		logger.Info("✓ Token revocations stored in Redis")
	} else {
		revoked = session.NewMemoryStore()
		logger.Warn("REDIS_URL not set, token revocations are kept in memory")
	}
	defer revoked.Close()

	// Initialize repositories
	treeRepository := database.NewTreeRepository(db)
	guestRepository := database.NewGuestRepository(db)
	unitRepository := database.NewUnitRepository(db)
	assignmentRepository := database.NewAssignmentRepository(db)

	// Initialize services
	logger.Info("Initializing services...")
	jwtService := jwt.NewService(cfg.JWT.Secret, cfg.JWT.AccessTokenExpiry)
	treeService := services.NewTreeService(treeRepository, guestRepository, assignmentRepository, calendar)
	progressService := services.NewProgressService(
		database.NewStepProgressRepository(db),
		database.NewMissionProgressRepository(db),
		treeRepository,
		calendar,
		logger,
	)
	assignmentService := services.NewAssignmentService(assignmentRepository, logger)
	contentService := services.NewContentService(database.NewContentRepository(db), logger)
	unitService := services.NewUnitService(unitRepository)
	guestService := services.NewGuestService(guestRepository, unitRepository, jwtService, logger)
	adminAuthService := services.NewAdminAuthService(
		cfg.Admin,
		jwtService,
		revoked,
		database.NewStatsRepository(db),
		logger,
	)
	uploadService := services.NewUploadService(cfg.Uploads, logger)
	loginLimiter := services.NewLoginLimiter(db, cfg.LoginLimit)

	// Nightly cleanup of old history and expired login attempts
	retentionService := services.NewRetentionService(db, calendar, loginLimiter, cfg.Retention, logger)
	if err := retentionService.Start(); err != nil {
		logger.Fatalf("Failed to start retention job: %v", err)
	}
	defer retentionService.Stop()

	enforce := cfg.Security.EnforceGuestIdentity
	if !enforce {
		logger.Warn("Guest identity is not enforced; any caller may act for any guest")
	}

	h := &handlers.Handlers{
		Schedule: handlers.NewScheduleHandler(treeService, assignmentService, enforce, logger),
		Progress: handlers.NewProgressHandler(progressService, enforce, logger),
		Content:  handlers.NewContentHandler(treeService, contentService, logger),
		Unit:     handlers.NewUnitHandler(unitService, logger),
		Guest:    handlers.NewGuestHandler(guestService, enforce, logger),
		Admin:    handlers.NewAdminHandler(adminAuthService, guestService, loginLimiter, logger),
		Upload:   handlers.NewUploadHandler(uploadService, logger),
	}
	authenticator := middleware.NewAuthenticator(jwtService, revoked, logger)

	// Setup router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	if cfg.Security.EnableRequestLog {
		router.Use(middleware.RequestLogger(logger))
	}

	// CORS configuration
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     cfg.CORS.AllowedMethods,
		AllowHeaders:     cfg.CORS.AllowedHeaders,
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/health", healthCheckHandler(db))
	router.Static(services.UploadURLPrefix, cfg.Uploads.Dir)

	handlers.RegisterRoutes(router.Group("/api"), h, authenticator)

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Infof("Server starting on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
	}

	logger.Info("Server exited")
}

// healthCheckHandler returns a health check endpoint
func healthCheckHandler(db database.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"database": "unhealthy",
				"error":    err.Error(),
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"database":  "healthy",
			"version":   version,
			"timestamp": time.Now().Unix(),
		})
	}
}
