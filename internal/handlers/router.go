package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/cyberguard/awareness-service/internal/metrics"
	"github.com/cyberguard/awareness-service/internal/services"
	"github.com/cyberguard/awareness-service/internal/utils"
)

type RouterOptions struct {
	// RequireLogin gates every non-public route, not only /me
	RequireLogin bool
	// SecureCookies marks the token cookie Secure
	SecureCookies bool
}

type HandlerManager struct {
	contentHandler  *ContentHandler
	progressHandler *ProgressHandler
	authHandler     *AuthHandler
	reportHandler   *ReportHandler
	authService     services.AuthService
	opts            RouterOptions
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	logger utils.Logger,
	opts RouterOptions,
) *HandlerManager {
	return &HandlerManager{
		contentHandler:  NewContentHandler(serviceManager.Catalog(), logger),
		progressHandler: NewProgressHandler(serviceManager.Progress(), logger),
		authHandler:     NewAuthHandler(serviceManager.Auth(), opts.SecureCookies, logger),
		reportHandler:   NewReportHandler(serviceManager.Report(), logger),
		authService:     serviceManager.Auth(),
		opts:            opts,
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.Use(metrics.Middleware(), OptionalAuth(hm.authService))
	if hm.opts.RequireLogin {
		router.Use(RequireAuth())
	}

	// Health check endpoint
	router.GET("/health", HealthCheck)
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Content routes
		v1.GET("/challenges", hm.contentHandler.ListChallenges)
		v1.GET("/challenges/:id", hm.contentHandler.GetChallenge)
		v1.GET("/learning-paths", hm.contentHandler.ListLearningPaths)

		// Progress routes
		progress := v1.Group("/progress", ClientID())
		{
			progress.GET("", hm.progressHandler.GetProgress)
			progress.DELETE("", hm.progressHandler.ClearProgress)
			progress.POST("/challenges/:id/start", hm.progressHandler.StartChallenge)
			progress.GET("/current", hm.progressHandler.CurrentQuiz)
			progress.POST("/submit", hm.progressHandler.SubmitAnswer)
			progress.POST("/reset", hm.progressHandler.ResetSession)
			progress.POST("/topics/:id/complete", hm.progressHandler.CompleteTopic)
			progress.POST("/time", hm.progressHandler.RecordLearningTime)
			progress.GET("/achievements", hm.progressHandler.GetAchievements)
			progress.GET("/export", hm.reportHandler.ExportProgress)
		}

		// Auth routes
		auth := v1.Group("/auth")
		{
			auth.POST("/register", hm.authHandler.Register)
			auth.POST("/login", hm.authHandler.Login)
			auth.POST("/logout", hm.authHandler.Logout)
		}

		// Signed-in user routes
		me := v1.Group("/me", hm.authHandler.RequireAccounts(), RequireAuth())
		{
			me.GET("", hm.authHandler.Me)
			me.GET("/scores", hm.reportHandler.ListScores)
			me.GET("/scores/export", hm.reportHandler.ExportScores)
		}
	}
}
