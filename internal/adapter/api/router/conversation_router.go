package router

import (
	"pasariklan/internal/adapter/api/handler"
	"pasariklan/internal/adapter/api/middleware"

	"github.com/labstack/echo/v4"
)

// SetupConversationRouter sets up all messaging routes.
func SetupConversationRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware) {

	conversationHandler := handler.GetConversationHandler()

	conversations := e.Group("/v1/conversations")
	conversations.Use(authMiddleware.Authenticate)

	// Static routes before the :id routes so "unread-count" is never
	// captured as a conversation id.
	conversations.POST("/start", conversationHandler.StartConversation)
	conversations.GET("", conversationHandler.GetUserConversations)
	conversations.GET("/unread-count", conversationHandler.GetUnreadCount)

	conversations.GET("/:id", conversationHandler.GetConversationByID)
	conversations.GET("/:id/messages", conversationHandler.GetConversationMessages)
	conversations.POST("/:id/messages", conversationHandler.SendMessage)
	conversations.PUT("/:id/read", conversationHandler.MarkConversationRead)
}
