package usecase

import (
	"context"
	"log"

	"pasariklan/internal/domain/entity"
	"pasariklan/internal/domain/repository"
	"pasariklan/pkg/errors"
)

type FavoriteUseCase struct {
	favoriteRepo repository.FavoriteRepository
	listingRepo  repository.ListingRepository
}

func NewFavoriteUseCase(
	favoriteRepo repository.FavoriteRepository,
	listingRepo repository.ListingRepository,
) *FavoriteUseCase {
	return &FavoriteUseCase{
		favoriteRepo: favoriteRepo,
		listingRepo:  listingRepo,
	}
}

func (uc *FavoriteUseCase) AddFavorite(ctx context.Context, userID, listingID string) (*entity.Favorite, error) {
	listing, err := uc.listingRepo.GetByID(ctx, listingID)
	if err != nil {
		return nil, errors.NotFound("Listing", err)
	}

	if listing.SellerID == userID {
		return nil, errors.BadRequest("Cannot add your own listing to favorites", nil)
	}

	if listing.Status != entity.ListingStatusActive {
		return nil, errors.BadRequest("Cannot favorite an inactive listing", nil)
	}

	favorite, err := uc.favoriteRepo.Add(ctx, userID, listingID)
	if err != nil {
		return nil, err
	}

	log.Printf("Added listing %s to favorites for user %s", listingID, userID)
	return favorite, nil
}

func (uc *FavoriteUseCase) RemoveFavorite(ctx context.Context, userID, listingID string) error {
	if err := uc.favoriteRepo.Remove(ctx, userID, listingID); err != nil {
		return err
	}

	log.Printf("Removed listing %s from favorites for user %s", listingID, userID)
	return nil
}

func (uc *FavoriteUseCase) GetUserFavorites(ctx context.Context, userID string, limit, offset int) ([]entity.FavoriteWithListing, int64, error) {
	return uc.favoriteRepo.ListByUserID(ctx, userID, limit, offset)
}

func (uc *FavoriteUseCase) IsFavorited(ctx context.Context, userID, listingID string) (bool, error) {
	return uc.favoriteRepo.IsFavorited(ctx, userID, listingID)
}
