package handler

import (
	"github.com/labstack/echo/v4"

	"pasariklan/internal/usecase"
	"pasariklan/pkg/response"
	"pasariklan/pkg/utils"
)

type FavoriteHandler struct {
	favoriteUseCase *usecase.FavoriteUseCase
}

func NewFavoriteHandler(favoriteUseCase *usecase.FavoriteUseCase) *FavoriteHandler {
	return &FavoriteHandler{
		favoriteUseCase: favoriteUseCase,
	}
}

func (h *FavoriteHandler) AddFavorite(c echo.Context) error {
	userID := c.Get("uid").(string)
	listingID := c.Param("listingId")

	favorite, err := h.favoriteUseCase.AddFavorite(c.Request().Context(), userID, listingID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, favorite)
}

func (h *FavoriteHandler) RemoveFavorite(c echo.Context) error {
	userID := c.Get("uid").(string)
	listingID := c.Param("listingId")

	if err := h.favoriteUseCase.RemoveFavorite(c.Request().Context(), userID, listingID); err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]string{"message": "Removed from favorites"})
}

func (h *FavoriteHandler) GetUserFavorites(c echo.Context) error {
	userID := c.Get("uid").(string)
	limit, offset := utils.GetLimitOffset(c, 20)

	favorites, total, err := h.favoriteUseCase.GetUserFavorites(c.Request().Context(), userID, limit, offset)
	if err != nil {
		return response.Error(c, err)
	}

	return response.SuccessPaginated(c, favorites, total, limit, offset)
}
