package router

import (
	"github.com/gin-gonic/gin"
	"github.com/lexcase/lexcase-backend/config"
	"github.com/lexcase/lexcase-backend/internal/app/controller"
	"github.com/lexcase/lexcase-backend/internal/middleware"
)

type Router struct {
	authController         *controller.AuthController
	verificationController *controller.VerificationController
	caseController         *controller.CaseController
	documentController     *controller.DocumentController
	notificationController *controller.NotificationController
	auditController        *controller.AuditController
	uploadController       *controller.UploadController
	wsController           *controller.WebSocketController
	authMiddleware         *middleware.AuthMiddleware
	config                 *config.Config
}

func NewRouter(
	authController *controller.AuthController,
	verificationController *controller.VerificationController,
	caseController *controller.CaseController,
	documentController *controller.DocumentController,
	notificationController *controller.NotificationController,
	auditController *controller.AuditController,
	uploadController *controller.UploadController,
	wsController *controller.WebSocketController,
	authMiddleware *middleware.AuthMiddleware,
	cfg *config.Config,
) *Router {
	return &Router{
		authController:         authController,
		verificationController: verificationController,
		caseController:         caseController,
		documentController:     documentController,
		notificationController: notificationController,
		auditController:        auditController,
		uploadController:       uploadController,
		wsController:           wsController,
		authMiddleware:         authMiddleware,
		config:                 cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.Use(corsMiddleware(r.config.CORS.AllowedOrigins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"message": "LexCase API is running",
		})
	})

	v1 := router.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/register", r.authController.Register)
			auth.POST("/login", r.authController.Login)
			auth.POST("/logout", r.authMiddleware.Authenticate(), r.authController.Logout)
			auth.GET("/me", r.authMiddleware.Authenticate(), r.authController.Me)
		}

		verifications := v1.Group("/verifications")
		verifications.Use(r.authMiddleware.Authenticate())
		{
			verifications.POST("", r.verificationController.Submit)
			verifications.GET("/me", r.verificationController.ListMine)
			verifications.GET("/pending",
				r.authMiddleware.RequireRole("reviewer", "admin"),
				r.verificationController.ListPending,
			)
			verifications.GET("/:id", r.verificationController.GetByID)
			verifications.POST("/:id/review",
				r.authMiddleware.RequireRole("reviewer", "admin"),
				r.verificationController.BeginReview,
			)
			verifications.POST("/:id/decision",
				r.authMiddleware.RequireRole("reviewer", "admin"),
				r.verificationController.Decide,
			)
		}

		cases := v1.Group("/cases")
		cases.Use(r.authMiddleware.Authenticate())
		{
			cases.GET("", r.caseController.ListMine)
			cases.POST("", r.caseController.Create)
			cases.GET("/:id", r.caseController.Get)
			cases.POST("/:id/close", r.caseController.Close)
			cases.GET("/:id/documents", r.caseController.ListDocuments)
			cases.POST("/:id/documents", r.caseController.AttachDocument)
			cases.GET("/:id/summary", r.caseController.Summarize)
		}

		documents := v1.Group("/documents")
		documents.Use(r.authMiddleware.Authenticate())
		{
			documents.GET("/:id", r.documentController.Get)
			documents.GET("/:id/download", r.documentController.Download)
		}

		notifications := v1.Group("/notifications")
		notifications.Use(r.authMiddleware.Authenticate())
		{
			notifications.GET("", r.notificationController.List)
			notifications.GET("/unread-count", r.notificationController.UnreadCount)
			notifications.PATCH("/:id/read", r.notificationController.MarkAsRead)
			notifications.PATCH("/read-all", r.notificationController.MarkAllAsRead)
		}

		audit := v1.Group("/audit")
		audit.Use(r.authMiddleware.Authenticate())
		{
			audit.GET("/actors/:id",
				r.authMiddleware.RequireRole("reviewer", "admin"),
				r.auditController.ListByActor,
			)
			audit.GET("",
				r.authMiddleware.RequireRole("admin"),
				r.auditController.ListAll,
			)
			audit.GET("/export",
				r.authMiddleware.RequireRole("admin"),
				r.auditController.Export,
			)
		}

		upload := v1.Group("/upload")
		upload.Use(r.authMiddleware.Authenticate())
		{
			upload.POST("/presigned-url", r.uploadController.GeneratePresignedURL)
		}

		v1.GET("/ws", r.authMiddleware.Authenticate(), r.wsController.Connect)
	}

	return router
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		allowed := false
		for _, allowedOrigin := range allowedOrigins {
			if origin == allowedOrigin || allowedOrigin == "*" {
				allowed = true
				break
			}
		}

		if allowed {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
