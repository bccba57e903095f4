// internal/app/router.go
package app

import (
	authHandler "leadscope-service/internal/handlers/auth"
	callHandler "leadscope-service/internal/handlers/callsession"
	customerHandler "leadscope-service/internal/handlers/customer"
	insightHandler "leadscope-service/internal/handlers/insight"
	interactionHandler "leadscope-service/internal/handlers/interaction"
	wsHandler "leadscope-service/internal/handlers/websocket"
	"leadscope-service/internal/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handlers struct {
	AuthHandler        *authHandler.AuthHandler
	CustomerHandler    *customerHandler.CustomerHandler
	InteractionHandler *interactionHandler.InteractionHandler
	InsightHandler     *insightHandler.InsightHandler
	CallHandler        *callHandler.CallHandler
	WSHandler          *wsHandler.WebSocketHandler
	AuthMiddleware     *middleware.AuthMiddleware
}

func SetupRouter(r *gin.Engine, logger *zap.Logger, h *Handlers) {
	api := r.Group("/api/v1")

	// ==================== Health Check ====================
	api.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "version": "1.0.0"})
	})

	// ==================== WebSocket ====================
	r.GET("/ws", h.WSHandler.HandleConnection)

	// ==================== Public Auth Routes ====================
	authPublic := api.Group("/auth")
	{
		authPublic.POST("/register", h.AuthHandler.Register)
		authPublic.POST("/login", h.AuthHandler.Login)
	}

	// ==================== Authenticated Auth Routes ====================
	authProtected := api.Group("/auth")
	authProtected.Use(h.AuthMiddleware.Auth())
	{
		authProtected.GET("/me", h.AuthHandler.Me)
	}

	// ==================== Customers ====================
	customers := api.Group("/customers")
	customers.Use(h.AuthMiddleware.Auth())
	{
		customers.GET("", h.CustomerHandler.ListCustomers)
		customers.POST("", h.CustomerHandler.Signup)
		customers.POST("/merge", h.CustomerHandler.MergeCustomers)

		customers.GET("/:id", h.CustomerHandler.GetCustomer)
		customers.GET("/reference/:reference", h.CustomerHandler.GetCustomerByReference)

		customers.PUT("/:id/preferences", h.CustomerHandler.UpdatePreferences)
		customers.POST("/:id/keywords", h.CustomerHandler.AddKeyword)
		customers.PUT("/:id/keywords/confirm", h.CustomerHandler.ConfirmKeyword)
		customers.POST("/:id/feedback", h.CustomerHandler.SubmitFeedback)

		// Insight
		customers.GET("/:id/assist", h.InsightHandler.GetAssist) // ?channel=email|chat|phone
		customers.GET("/:id/recommendations", h.InsightHandler.GetRecommendations)
		customers.POST("/:id/refresh", h.InsightHandler.RefreshInsight)

		// History
		customers.GET("/:id/interactions", h.InteractionHandler.ListCustomerInteractions)
	}

	// ==================== Interactions ====================
	interactions := api.Group("/interactions")
	interactions.Use(h.AuthMiddleware.Auth())
	{
		interactions.POST("", h.InteractionHandler.RecordInteraction)
		interactions.GET("/:id", h.InteractionHandler.GetInteraction)
		interactions.POST("/:id/notes", h.InteractionHandler.AddNote)
		interactions.PUT("/:id/follow-up", h.InteractionHandler.CompleteFollowUp)
	}

	// ==================== Call Sessions ====================
	callSessions := api.Group("/call-sessions")
	callSessions.Use(h.AuthMiddleware.Auth())
	{
		callSessions.POST("", h.CallHandler.StartCall)
		callSessions.GET("/:id", h.CallHandler.GetSession)
		callSessions.PUT("/:id/heartbeat", h.CallHandler.Heartbeat)
		callSessions.POST("/:id/complete", h.CallHandler.CompleteCall)
	}

	logger.Info("routes registered")
}
