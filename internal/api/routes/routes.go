package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/okovalenko/coursereview-backend/internal/api/handlers"
	"github.com/okovalenko/coursereview-backend/internal/api/middleware"
	"github.com/okovalenko/coursereview-backend/internal/config"
	"github.com/okovalenko/coursereview-backend/internal/render"
	"github.com/okovalenko/coursereview-backend/internal/services"
	"github.com/okovalenko/coursereview-backend/pkg/logger"
	"gorm.io/gorm"
)

func SetupRoutes(router *gin.Engine, db *gorm.DB, cfg *config.Config) error {
	// Middleware
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.RateLimitMiddleware(cfg))

	// Initialize services
	settingsService := services.NewSettingsService(db)
	emailService := services.NewEmailService(cfg)
	eventService := services.NewEventService(db)
	completionService := services.NewCompletionService(db)
	authService := services.NewAuthService(db, cfg.JWTSecret)
	reviewService := services.NewReviewService(db)
	userReviewService := services.NewUserReviewService(db, completionService, eventService, emailService)
	privacyService := services.NewPrivacyService(db)

	var storageService *services.S3Service
	if cfg.BackupBucket != "" {
		storageService = services.NewS3Service(cfg.AWSRegion, cfg.BackupBucket, cfg.AWSAccessKey, cfg.AWSSecretKey)
	}
	backupService := services.NewBackupService(db, storageService)

	renderer, err := render.New(settingsService)
	if err != nil {
		return err
	}

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	reviewHandler := handlers.NewReviewHandler(reviewService, userReviewService, renderer, db)
	userReviewHandler := handlers.NewUserReviewHandler(userReviewService, reviewService, settingsService, renderer, db, cfg.BaseURL)
	privacyHandler := handlers.NewPrivacyHandler(privacyService)
	backupHandler := handlers.NewBackupHandler(backupService)
	settingsHandler := handlers.NewSettingsHandler(settingsService, renderer)
	eventsHandler := handlers.NewEventsHandler(eventService)

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "message": "Server is running"})
	})

	// Themed assets
	router.GET("/assets/star.svg", settingsHandler.StarSVG)

	// API routes
	api := router.Group("/api/v1")

	// Auth routes (public)
	auth := api.Group("/auth")
	{
		auth.POST("/signup", authHandler.Signup)
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh-token", authHandler.RefreshToken)
		auth.GET("/profile", middleware.AuthMiddleware(cfg), authHandler.GetProfile)
	}

	// Review activity routes
	reviews := api.Group("/reviews", middleware.AuthMiddleware(cfg))
	{
		reviews.POST("/", reviewHandler.Create)
		reviews.GET("/:review_id", reviewHandler.Get)
		reviews.PUT("/:review_id", reviewHandler.Update)
		reviews.DELETE("/:review_id", reviewHandler.Delete)

		reviews.POST("/:review_id/rate", userReviewHandler.SaveRate)
		reviews.POST("/:review_id/review", userReviewHandler.SubmitReview)
		reviews.GET("/:review_id/page", userReviewHandler.ViewPage)
		reviews.GET("/:review_id/moderate", userReviewHandler.ModeratePage)
	}

	// Status switcher
	userReviews := api.Group("/userreviews", middleware.AuthMiddleware(cfg))
	{
		userReviews.POST("/:userreview_id/status", userReviewHandler.SaveStatus)
	}

	// Course page widget
	courses := api.Group("/courses", middleware.AuthMiddleware(cfg))
	{
		courses.GET("/:course_id/widget", reviewHandler.CourseWidget)
	}

	// Privacy routes
	privacy := api.Group("/privacy", middleware.AuthMiddleware(cfg))
	{
		privacy.GET("/export", privacyHandler.Export)
		privacy.DELETE("/data", privacyHandler.EraseOwn)
	}

	// Admin routes
	admin := api.Group("/admin", middleware.AuthMiddleware(cfg), middleware.AdminOnly())
	{
		admin.GET("/moderate", userReviewHandler.ModerateAllPage)
		admin.GET("/userreviews", userReviewHandler.List)
		admin.GET("/reviews/:review_id/backup", backupHandler.Export)
		admin.POST("/backups/restore", backupHandler.Restore)
		admin.DELETE("/users/:user_id/data", privacyHandler.EraseUser)
		admin.GET("/settings", settingsHandler.Get)
		admin.PUT("/settings", settingsHandler.Update)
		admin.GET("/events", eventsHandler.Recent)
	}

	logger.Info("Routes initialized successfully")
	return nil
}
