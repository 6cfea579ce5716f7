package repository

import (
	"context"

	"pasariklan/internal/domain/entity"
)

type FavoriteRepository interface {
	Add(ctx context.Context, userID, listingID string) (*entity.Favorite, error)
	Remove(ctx context.Context, userID, listingID string) error
	IsFavorited(ctx context.Context, userID, listingID string) (bool, error)
	ListByUserID(ctx context.Context, userID string, limit, offset int) ([]entity.FavoriteWithListing, int64, error)
}
