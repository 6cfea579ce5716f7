package router

import (
	"pasariklan/internal/adapter/api/middleware"

	"firebase.google.com/go/v4/auth"
	"github.com/labstack/echo/v4"
)

func Setup(e *echo.Echo, authMiddleware *middleware.AuthMiddleware, authClient *auth.Client) {
	SetupAuthRouter(e, authMiddleware)
	SetupUserRouter(e, authMiddleware)
	SetupListingRouter(e, authMiddleware, authClient)
	SetupFavoriteRouter(e, authMiddleware)
	SetupConversationRouter(e, authMiddleware)
	SetupHealthRouter(e)
}
