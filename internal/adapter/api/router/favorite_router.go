package router

import (
	"pasariklan/internal/adapter/api/handler"
	"pasariklan/internal/adapter/api/middleware"

	"github.com/labstack/echo/v4"
)

func SetupFavoriteRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware) {

	favoriteHandler := handler.GetFavoriteHandler()

	favorites := e.Group("/v1/favorites")
	favorites.Use(authMiddleware.Authenticate)

	favorites.GET("", favoriteHandler.GetUserFavorites)
	favorites.POST("/:listingId", favoriteHandler.AddFavorite)
	favorites.DELETE("/:listingId", favoriteHandler.RemoveFavorite)
}
