package router

import (
	"pasariklan/internal/adapter/api/handler"
	"pasariklan/internal/adapter/api/middleware"

	"firebase.google.com/go/v4/auth"
	"github.com/labstack/echo/v4"
)

func SetupListingRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware, authClient *auth.Client) {

	listingHandler := handler.GetListingHandler()

	listings := e.Group("/v1/listings")
	listings.GET("", listingHandler.ListListings)

	listingDetailGroup := e.Group("/v1/listings")
	listingDetailGroup.Use(VerifyToken(authClient))
	listingDetailGroup.GET("/:id", listingHandler.GetListingByID)

	myListings := e.Group("/v1/my-listings")
	myListings.Use(authMiddleware.Authenticate)
	myListings.GET("", listingHandler.GetMyListings)
	myListings.POST("", listingHandler.CreateListing)
	myListings.PUT("/:id", listingHandler.UpdateListing)
	myListings.DELETE("/:id", listingHandler.DeleteListing)
	myListings.PUT("/:id/status", listingHandler.UpdateStatus)
	myListings.POST("/:id/bump", listingHandler.BumpListing)
}
