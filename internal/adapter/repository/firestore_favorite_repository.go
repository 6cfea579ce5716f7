package repository

import (
	"context"
	"fmt"
	"log"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"pasariklan/internal/domain/entity"
	"pasariklan/internal/domain/repository"
	"pasariklan/pkg/errors"
)

type firestoreFavoriteRepository struct {
	client *firestore.Client
}

func NewFirestoreFavoriteRepository(client *firestore.Client) repository.FavoriteRepository {
	return &firestoreFavoriteRepository{client: client}
}

// favoriteDocID keys favorites by (user, listing), so membership is naturally
// idempotent at the document level.
func favoriteDocID(userID, listingID string) string {
	return fmt.Sprintf("%s_%s", userID, listingID)
}

// Add is idempotent: adding a listing that is already favorited returns the
// existing record.
func (r *firestoreFavoriteRepository) Add(ctx context.Context, userID, listingID string) (*entity.Favorite, error) {
	doc, err := r.client.Collection("favorites").Doc(favoriteDocID(userID, listingID)).Get(ctx)
	if err == nil && doc.Exists() {
		var existing entity.Favorite
		if err := doc.DataTo(&existing); err != nil {
			return nil, errors.Internal("Failed to parse favorite data", err)
		}
		return &existing, nil
	}
	if err != nil && status.Code(err) != codes.NotFound {
		return nil, errors.Internal("Failed to check favorite", err)
	}

	favorite := entity.Favorite{
		ID:        favoriteDocID(userID, listingID),
		UserID:    userID,
		ListingID: listingID,
		CreatedAt: time.Now(),
	}

	_, err = r.client.Collection("favorites").Doc(favorite.ID).Set(ctx, favorite)
	if err != nil {
		return nil, errors.Internal("Failed to add favorite", err)
	}

	return &favorite, nil
}

func (r *firestoreFavoriteRepository) Remove(ctx context.Context, userID, listingID string) error {
	exists, err := r.IsFavorited(ctx, userID, listingID)
	if err != nil {
		return err
	}
	if !exists {
		return errors.NotFound("Favorite", nil)
	}

	_, err = r.client.Collection("favorites").Doc(favoriteDocID(userID, listingID)).Delete(ctx)
	if err != nil {
		return errors.Internal("Failed to remove favorite", err)
	}

	return nil
}

func (r *firestoreFavoriteRepository) IsFavorited(ctx context.Context, userID, listingID string) (bool, error) {
	doc, err := r.client.Collection("favorites").Doc(favoriteDocID(userID, listingID)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return false, nil
		}
		return false, errors.Internal("Failed to check favorite", err)
	}

	return doc.Exists(), nil
}

func (r *firestoreFavoriteRepository) ListByUserID(ctx context.Context, userID string, limit, offset int) ([]entity.FavoriteWithListing, int64, error) {
	allDocs, err := r.client.Collection("favorites").
		Where("userId", "==", userID).
		OrderBy("createdAt", firestore.Desc).
		Documents(ctx).GetAll()
	if err != nil {
		return nil, 0, errors.Internal("Failed to get favorites", err)
	}

	var allItems []entity.Favorite
	listingIDs := make([]string, 0, len(allDocs))
	for _, doc := range allDocs {
		var item entity.Favorite
		if err := doc.DataTo(&item); err != nil {
			log.Printf("Error parsing favorite %s: %v", doc.Ref.ID, err)
			continue
		}
		allItems = append(allItems, item)
		listingIDs = append(listingIDs, item.ListingID)
	}

	if len(listingIDs) == 0 {
		return []entity.FavoriteWithListing{}, 0, nil
	}

	// Batch fetch referenced listings, 30 per GetAll
	listingMap := make(map[string]*entity.Listing)
	for i := 0; i < len(listingIDs); i += 30 {
		end := i + 30
		if end > len(listingIDs) {
			end = len(listingIDs)
		}

		batchIDs := listingIDs[i:end]
		docRefs := make([]*firestore.DocumentRef, len(batchIDs))
		for j, id := range batchIDs {
			docRefs[j] = r.client.Collection("listings").Doc(id)
		}

		listingDocs, err := r.client.GetAll(ctx, docRefs)
		if err != nil {
			log.Printf("Error batch fetching listings for favorites: %v", err)
			continue
		}

		for _, doc := range listingDocs {
			if doc == nil || !doc.Exists() {
				continue
			}
			var listing entity.Listing
			if err := doc.DataTo(&listing); err != nil {
				continue
			}
			listingMap[doc.Ref.ID] = &listing
		}
	}

	// Favorites whose listing is gone or no longer active are hidden, not
	// deleted; they reappear if the listing is reactivated.
	var favorites []entity.FavoriteWithListing
	var activeCount int64
	for _, item := range allItems {
		listing, exists := listingMap[item.ListingID]
		if !exists || listing.Status != entity.ListingStatusActive {
			continue
		}
		activeCount++

		if int(activeCount) > offset && (limit <= 0 || len(favorites) < limit) {
			favorites = append(favorites, entity.FavoriteWithListing{
				Favorite: item,
				Listing:  listing,
			})
		}
	}

	return favorites, activeCount, nil
}
