package router

import (
	"log"
	"time"

	"gigmatch/config"
	"gigmatch/internal/domain"
	"gigmatch/internal/handler"
	"gigmatch/internal/middleware"
	"gigmatch/internal/repository"
	"gigmatch/internal/service"
	"gigmatch/internal/ws"
	"gigmatch/pkg/cloudinary"
	"gigmatch/pkg/payment"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func Setup(cfg *config.Config, db *gorm.DB, cloud cloudinary.Client, gateway payment.Gateway) *gin.Engine {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	// Skip gin.Logger() to reduce log noise; use gin.Default() if you need request logging
	r.Use(middleware.RateLimit(middleware.NewInMemoryRateLimiter(100, 60*time.Second)))

	// Repositories
	userRepo := repository.NewUserRepository(db)
	decisionRepo := repository.NewDecisionRepository(db)
	quotaRepo := repository.NewQuotaRepository(db)
	matchRepo := repository.NewMatchRepository(db)
	candidateRepo := repository.NewCandidateRepository(db)
	gigRepo := repository.NewGigRepository(db)
	bookingRepo := repository.NewBookingRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	hub := ws.NewHub()

	// Services
	authSvc := service.NewAuthService(cfg, userRepo)
	fcmSvc := service.NewFCMService(cfg.Firebase.ServiceAccountPath)
	if fcmSvc != nil {
		log.Printf("[FCM] Push notifications enabled")
	} else if cfg.Firebase.ServiceAccountPath != "" {
		log.Printf("[FCM] Push notifications disabled: failed to init (check service account file)")
	} else {
		log.Printf("[FCM] Push notifications disabled: set FIREBASE_SERVICE_ACCOUNT_PATH to enable")
	}
	notifSvc := service.NewNotificationService(notificationRepo, userRepo, fcmSvc)
	limiter := service.NewRateLimiter(quotaRepo, cfg.Quota)
	matchSvc := service.NewMatchService(db, decisionRepo, matchRepo, userRepo, notifSvc, hub)
	decisionSvc := service.NewDecisionService(decisionRepo, userRepo, limiter, matchSvc, cfg.Quota.UndoWindow)
	bookingSvc := service.NewBookingService(db, bookingRepo, gigRepo, matchRepo, userRepo, gateway, cfg.Payment, notifSvc, hub)

	// Handlers
	authHandler := handler.NewAuthHandler(authSvc)
	feedHandler := handler.NewFeedHandler(&cfg.Discovery, candidateRepo, decisionRepo, userRepo)
	decisionHandler := handler.NewDecisionHandler(decisionSvc, decisionRepo, userRepo)
	gigHandler := handler.NewGigHandler(gigRepo, bookingSvc, userRepo, notifSvc)
	matchHandler := handler.NewMatchHandler(matchRepo, bookingSvc)
	bookingHandler := handler.NewBookingHandler(bookingSvc, bookingRepo, cloud)
	notificationHandler := handler.NewNotificationHandler(notificationRepo)

	authMw := middleware.AuthRequired(&cfg.JWT)

	api := r.Group("/api/v1")
	{
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/refresh", authHandler.Refresh)
		}

		api.GET("/feed", authMw, feedHandler.Feed)
		api.GET("/decisions", authMw, decisionHandler.List)
		api.POST("/decisions", authMw, decisionHandler.Create)
		api.DELETE("/decisions/:id", authMw, decisionHandler.Undo)

		api.GET("/gigs", authMw, gigHandler.List)
		api.GET("/gigs/:id", authMw, gigHandler.Get)
		api.POST("/gigs", authMw, middleware.RequireRole(domain.RoleVenue), gigHandler.Create)
		api.POST("/gigs/:id/applications", authMw, middleware.RequireRole(domain.RolePerformer), gigHandler.Apply)
		api.GET("/gigs/:id/applications", authMw, middleware.RequireRole(domain.RoleVenue), gigHandler.ListApplications)
		api.GET("/applications/mine", authMw, middleware.RequireRole(domain.RolePerformer), gigHandler.ListMyApplications)
		api.DELETE("/applications/:id", authMw, middleware.RequireRole(domain.RolePerformer), gigHandler.Withdraw)
		api.POST("/applications/:id/accept", authMw, middleware.RequireRole(domain.RoleVenue), gigHandler.Accept)
		api.POST("/applications/:id/reject", authMw, middleware.RequireRole(domain.RoleVenue), gigHandler.Reject)

		api.GET("/matches", authMw, matchHandler.List)
		api.POST("/matches/:id/book", authMw, matchHandler.Book)

		bookings := api.Group("/bookings")
		bookings.Use(authMw)
		{
			bookings.GET("", bookingHandler.List)
			bookings.GET("/:id", bookingHandler.Get)
			bookings.POST("/:id/confirm", bookingHandler.Confirm)
			bookings.POST("/:id/cancel", bookingHandler.Cancel)
			bookings.POST("/:id/complete", bookingHandler.Complete)
			bookings.POST("/:id/payments/deposit", bookingHandler.CreateDepositIntent)
			bookings.POST("/:id/payments/deposit/confirm", bookingHandler.ConfirmDeposit)
			bookings.POST("/:id/payments/final", bookingHandler.CreateFinalIntent)
			bookings.POST("/:id/payments/final/confirm", bookingHandler.ConfirmFinal)
			bookings.POST("/:id/contract", bookingHandler.UploadContract)
			bookings.POST("/:id/contract/sign", bookingHandler.SignContract)
		}

		api.GET("/notifications", authMw, notificationHandler.List)
		api.POST("/notifications/:id/read", authMw, notificationHandler.MarkRead)
	}

	r.GET("/ws", ws.UpgradeEventsWS(&cfg.JWT, hub))

	return r
}
