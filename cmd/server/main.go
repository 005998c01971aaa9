package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/homevista/brokerage-backend/internal/config"
	"github.com/homevista/brokerage-backend/internal/database"
	"github.com/homevista/brokerage-backend/internal/handlers"
	"github.com/homevista/brokerage-backend/internal/middleware"
	"github.com/homevista/brokerage-backend/internal/services"
	"github.com/homevista/brokerage-backend/pkg/jwt"
	"github.com/homevista/brokerage-backend/pkg/validator"
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

	logger.Info("Starting HomeVista Brokerage Backend")
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
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	// Initialize database connection
	logger.Info("Connecting to database...")
	db, err := database.NewConnection(cfg.Database)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Fatalf("Failed to ping database: %v", err)
	}
	logger.Info("Database connection established")

	// Initialize services
	jwtService := jwt.NewService(
		cfg.JWT.Secret,
		cfg.JWT.RefreshSecret,
		cfg.JWT.AccessTokenExpiry,
		cfg.JWT.RefreshTokenExpiry,
	)
	emailValidator := validator.NewEmailValidator()
	passwordValidator := validator.NewPasswordValidator()

	uploadService, err := services.NewUploadService(cfg.Upload, logger)
	if err != nil {
		logger.Fatalf("Failed to initialize upload service: %v", err)
	}

	// Initialize repositories
	userRepo := database.NewUserRepository(db)
	agentRepo := database.NewAgentRepository(db)
	propertyRepo := database.NewPropertyRepository(db)
	imageRepo := database.NewPropertyImageRepository(db)
	inquiryRepo := database.NewInquiryRepository(db)
	viewingRepo := database.NewViewingRepository(db)
	transactionRepo := database.NewTransactionRepository(db)
	clientRepo := database.NewClientRepository(db)
	reviewRepo := database.NewReviewRepository(db)
	sessionRepo := database.NewSessionRepository(db)
	refreshTokenRepo := database.NewRefreshTokenRepository(db)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(jwtService, emailValidator, userRepo, refreshTokenRepo, sessionRepo, cfg, logger)
	listingHandler := handlers.NewListingHandler(propertyRepo, agentRepo, uploadService, logger)
	imageHandler := handlers.NewImageHandler(imageRepo, agentRepo, uploadService, logger)
	inquiryHandler := handlers.NewInquiryHandler(inquiryRepo, agentRepo, logger)
	viewingHandler := handlers.NewViewingHandler(viewingRepo, agentRepo, logger)
	transactionHandler := handlers.NewTransactionHandler(transactionRepo, agentRepo, logger)
	clientHandler := handlers.NewClientHandler(clientRepo, agentRepo, logger)
	reviewHandler := handlers.NewReviewHandler(reviewRepo, agentRepo, logger)
	profileHandler := handlers.NewProfileHandler(userRepo, agentRepo, sessionRepo, refreshTokenRepo, uploadService, emailValidator, passwordValidator, logger)
	dashboardHandler := handlers.NewDashboardHandler(propertyRepo, inquiryRepo, viewingRepo, transactionRepo, reviewRepo, agentRepo, logger)

	// Initialize Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger(logger))

	// CORS configuration
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     cfg.CORS.AllowedMethods,
		AllowHeaders:     cfg.CORS.AllowedHeaders,
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Health check endpoint
	router.GET("/health", healthCheckHandler(db))

	// Uploaded images are served statically
	router.Static("/uploads", cfg.Upload.RootDir)

	v1 := router.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/login", authHandler.Login)
			auth.POST("/refresh", authHandler.Refresh)
			auth.POST("/logout", middleware.AuthMiddleware(jwtService, logger), authHandler.Logout)
		}

		// Every back-office route requires an authenticated agent account
		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware(jwtService, logger))
		protected.Use(middleware.RequireRole("agent"))
		{
			protected.GET("/dashboard", dashboardHandler.Stats)

			protected.GET("/listings", listingHandler.List)
			protected.POST("/listings", listingHandler.Create)
			protected.GET("/listings/:id", listingHandler.Get)
			protected.PUT("/listings/:id", listingHandler.Update)
			protected.PATCH("/listings/:id/status", listingHandler.UpdateStatus)
			protected.DELETE("/listings/:id", listingHandler.Delete)
			protected.GET("/features", listingHandler.Features)

			protected.POST("/listings/:id/images", imageHandler.Add)
			protected.PATCH("/listings/:id/images/:imageID/primary", imageHandler.SetPrimary)
			protected.DELETE("/listings/:id/images/:imageID", imageHandler.Delete)

			protected.GET("/inquiries", inquiryHandler.List)
			protected.PATCH("/inquiries/:id/status", inquiryHandler.UpdateStatus)

			protected.GET("/viewings", viewingHandler.List)
			protected.POST("/viewings", viewingHandler.Create)
			protected.PATCH("/viewings/:id/status", viewingHandler.UpdateStatus)
			protected.PATCH("/viewings/:id/notes", viewingHandler.UpdateNotes)
			protected.DELETE("/viewings/:id", viewingHandler.Delete)

			protected.GET("/transactions", transactionHandler.List)
			protected.POST("/transactions", transactionHandler.Create)
			protected.PATCH("/transactions/:id/status", transactionHandler.UpdateStatus)

			protected.GET("/clients", clientHandler.List)
			protected.GET("/clients/:id", clientHandler.Get)
			protected.PUT("/clients/:id", clientHandler.Update)

			protected.GET("/reviews", reviewHandler.List)
			protected.POST("/reviews/:id/response", reviewHandler.Respond)

			protected.GET("/profile", profileHandler.Get)
			protected.PUT("/profile", profileHandler.Update)
			protected.POST("/profile/photo", profileHandler.UploadPhoto)
			protected.POST("/profile/password", profileHandler.ChangePassword)
			protected.GET("/profile/sessions", profileHandler.Sessions)
		}
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
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

	logger.Info("Server exited successfully")
}

// requestLogger middleware for logging HTTP requests
func requestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)

		fields := logrus.Fields{
			"status":     c.Writer.Status(),
			"method":     c.Request.Method,
			"path":       path,
			"query":      query,
			"ip":         c.ClientIP(),
			"latency_ms": latency.Milliseconds(),
			"user_agent": c.Request.UserAgent(),
		}

		if userCtx, exists := middleware.GetUserContext(c); exists {
			fields["user_id"] = userCtx.UserID
		}

		entry := logger.WithFields(fields)

		status := c.Writer.Status()
		switch {
		case status >= 500:
			entry.Error("Request completed with server error")
		case status >= 400:
			entry.Warn("Request completed with client error")
		default:
			entry.Info("Request completed successfully")
		}
	}
}

// healthCheckHandler returns a health check endpoint
func healthCheckHandler(db database.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"database": "unhealthy",
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
