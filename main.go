package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"linklytics-be/internal/analytics"
	"linklytics-be/internal/cache"
	"linklytics-be/internal/config"
	"linklytics-be/internal/controllers"
	"linklytics-be/internal/database"
	"linklytics-be/internal/jwt"
	"linklytics-be/internal/middleware"
	"linklytics-be/internal/repository"
	"linklytics-be/internal/service"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

func main() {
	// Load configuration
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Connect to database
	db, err := database.NewConnection(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Run database migrations
	if err := database.RunMigrations(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Initialize Redis cache (optional - continue if Redis is unavailable)
	var cacheClient cache.Cache
	cacheClient, err = cache.NewRedisCache(cfg.RedisURL)
	if err != nil {
		log.Printf("Warning: Failed to connect to Redis (%v). Continuing without cache.", err)
		cacheClient = nil
	} else {
		log.Println("Connected to Redis cache")
	}

	// Initialize repositories
	urlRepo := repository.NewURLRepository(db)
	counterRepo := repository.NewCounterRepository(db)
	userRepo := repository.NewUserRepository(db)
	clickRepo := repository.NewClickRepository(db)

	// Initialize JWT service
	jwtService := jwt.NewJWTService(
		cfg.JWTSecret,
		time.Duration(cfg.JWTTTL)*time.Hour,
	)

	// Initialize services
	urlService := service.NewURLService(urlRepo, counterRepo, userRepo, cacheClient, cfg.BaseURL)
	authService := service.NewAuthService(userRepo, jwtService, cfg.DefaultCredits)
	redirectService := service.NewRedirectService(urlRepo, userRepo, cacheClient)
	analyticsService := service.NewAnalyticsService(urlRepo, clickRepo)

	// Click capture pipeline: request classifier up front, geo lookup and
	// persistence in the background sink workers
	locator := analytics.NewHTTPLocator(cfg.GeoAPIURL, time.Hour)
	classifier := analytics.NewClassifier(cfg.GeoMockPrivateIPs)
	sink := analytics.NewSink(clickRepo, locator, cfg.ClickQueueSize, cfg.ClickWorkers)

	// Initialize controllers
	shortenerController := controllers.NewShortenerController(urlService, redirectService, classifier, sink)
	authController := controllers.NewAuthController(authService)
	analyticsController := controllers.NewAnalyticsController(analyticsService)
	qrcodeController := controllers.NewQRCodeController(cfg.BaseURL)

	// Initialize rate limiters
	generalRateLimiter := middleware.NewRateLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst)
	authRateLimiter := middleware.NewRateLimiter(rate.Limit(cfg.RateLimitAuthRPS), cfg.RateLimitAuthBurst)
	generateRateLimiter := middleware.NewRateLimiter(rate.Limit(cfg.RateLimitGenerateRPS), cfg.RateLimitGenerateBurst)
	redirectRateLimiter := middleware.NewRateLimiter(rate.Limit(30.0), 60) // More lenient for redirects

	// Create a Gin router
	router := gin.Default()

	// Health check endpoint (no rate limiting)
	router.GET("/health", func(c *gin.Context) {
		if err := database.HealthCheck(db); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "error"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Public redirect and validation endpoints with lenient rate limiting
	router.GET("/redirect/:shortCode", redirectRateLimiter.LimitMiddleware(), shortenerController.Redirect)
	router.GET("/:shortCode", redirectRateLimiter.LimitMiddleware(), shortenerController.Validate)

	// API v1 routes group with general rate limiting
	api := router.Group("/api/v1")
	api.Use(generalRateLimiter.LimitMiddleware())
	{
		// Auth routes with stricter rate limiting
		auth := api.Group("/auth")
		auth.Use(authRateLimiter.LimitMiddleware())
		{
			auth.POST("/register", authController.Register)
			auth.POST("/login", authController.Login)
		}

		// Protected routes - require JWT authentication
		protected := api.Group("")
		protected.Use(middleware.AuthMiddleware(jwtService))
		{
			// URL generation with stricter rate limiting
			protected.POST("/generate", generateRateLimiter.LimitMiddleware(), shortenerController.Generate)

			protected.GET("/urls", shortenerController.List)
			protected.GET("/details/:shortCode", shortenerController.Details)
			protected.PATCH("/update/:shortCode", shortenerController.Update)
			protected.DELETE("/delete/:shortCode", shortenerController.Delete)

			// Dashboard analytics - premium plans only
			analyticsRoutes := protected.Group("/analytics")
			analyticsRoutes.Use(middleware.RequirePremium())
			{
				analyticsRoutes.GET("/:shortCode/summary", analyticsController.Summary)
				analyticsRoutes.GET("/:shortCode/timeseries", analyticsController.Timeseries)
				analyticsRoutes.GET("/:shortCode/devices", analyticsController.Devices)
				analyticsRoutes.GET("/:shortCode/utmData", analyticsController.UTM)
				analyticsRoutes.GET("/:shortCode/locations", analyticsController.Locations)
				analyticsRoutes.GET("/:shortCode/referrers", analyticsController.Referrers)
			}
		}

		// QR Code generation
		api.GET("/qrcode/:shortCode", qrcodeController.Generate)
	}

	srv := &http.Server{
		Addr:    ":8080",
		Handler: router,
	}

	go func() {
		log.Println("Server starting on http://localhost:8080")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down...")

	// Stop accepting requests before draining the sink, so no in-flight
	// redirect can enqueue into a closed pipeline.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	sink.Shutdown(10 * time.Second)
}
