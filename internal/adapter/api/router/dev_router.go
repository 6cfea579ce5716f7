package router

import (
	"pasariklan/internal/adapter/api/handler"

	"github.com/labstack/echo/v4"
)

func SetupDevRouter(e *echo.Echo, environment string) {
	if environment != "development" {
		return
	}
	devTokenHandler := handler.GetDevTokenHandler()

	e.POST("/_dev/long-lived-token", devTokenHandler.GetLongLivedToken)
	e.POST("/_dev/local-token", devTokenHandler.GetLocalToken)
}
