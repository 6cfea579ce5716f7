package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pasariklan/internal/domain/entity"
	"pasariklan/pkg/errors"
)

func TestCreateListing(t *testing.T) {
	uc := NewListingUseCase(newFakeListingRepo(), newFakeUserRepo("u1"))
	ctx := context.Background()

	listing, err := uc.CreateListing(ctx, "u1", CreateListingInput{
		Title:     "Sepeda gunung",
		Price:     1500000,
		Category:  "sports",
		Condition: "used",
	}, []ListingImageInput{{URL: "https://img.example/1.jpg", DisplayOrder: 0}})
	require.NoError(t, err)

	assert.NotEmpty(t, listing.ID)
	assert.Equal(t, entity.ListingStatusActive, listing.Status)
	assert.Equal(t, "u1", listing.SellerID)
	assert.Len(t, listing.Images, 1)
	assert.False(t, listing.BumpedAt.IsZero())

	_, err = uc.CreateListing(ctx, "u1", CreateListingInput{Title: "x", Condition: "refurbished"}, nil)
	assert.True(t, errors.Is(err, "BAD_REQUEST"))

	_, err = uc.CreateListing(ctx, "ghost", CreateListingInput{Title: "x", Condition: "new"}, nil)
	assert.True(t, errors.Is(err, "BAD_REQUEST"))
}

func TestUpdateListingOwnership(t *testing.T) {
	listingRepo := newFakeListingRepo(activeListing("ad1", "u1"))
	uc := NewListingUseCase(listingRepo, newFakeUserRepo("u1", "u2"))

	_, err := uc.UpdateListing(context.Background(), "ad1", "u2", CreateListingInput{Title: "hijacked"}, nil)
	assert.True(t, errors.Is(err, "FORBIDDEN"))

	updated, err := uc.UpdateListing(context.Background(), "ad1", "u1", CreateListingInput{Title: "new title", Condition: "new"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "new title", updated.Title)
}

func TestUpdateStatusTransitions(t *testing.T) {
	ctx := context.Background()

	newUC := func(status string) (*ListingUseCase, string) {
		l := activeListing("ad1", "u1")
		l.Status = status
		return NewListingUseCase(newFakeListingRepo(l), newFakeUserRepo("u1")), l.ID
	}

	t.Run("active to sold", func(t *testing.T) {
		uc, id := newUC(entity.ListingStatusActive)
		listing, err := uc.UpdateStatus(ctx, id, "u1", entity.ListingStatusSold)
		require.NoError(t, err)
		assert.Equal(t, entity.ListingStatusSold, listing.Status)
	})

	t.Run("active to archived and back", func(t *testing.T) {
		uc, id := newUC(entity.ListingStatusActive)
		_, err := uc.UpdateStatus(ctx, id, "u1", entity.ListingStatusArchived)
		require.NoError(t, err)

		listing, err := uc.UpdateStatus(ctx, id, "u1", entity.ListingStatusActive)
		require.NoError(t, err)
		assert.Equal(t, entity.ListingStatusActive, listing.Status)
	})

	t.Run("sold is terminal", func(t *testing.T) {
		uc, id := newUC(entity.ListingStatusSold)
		_, err := uc.UpdateStatus(ctx, id, "u1", entity.ListingStatusActive)
		assert.True(t, errors.Is(err, "BAD_REQUEST"))

		_, err = uc.UpdateStatus(ctx, id, "u1", entity.ListingStatusArchived)
		assert.True(t, errors.Is(err, "BAD_REQUEST"))
	})

	t.Run("unknown status", func(t *testing.T) {
		uc, id := newUC(entity.ListingStatusActive)
		_, err := uc.UpdateStatus(ctx, id, "u1", "hidden")
		assert.True(t, errors.Is(err, "BAD_REQUEST"))
	})
}

func TestBumpListing(t *testing.T) {
	listing := activeListing("ad1", "u1")
	uc := NewListingUseCase(newFakeListingRepo(listing), newFakeUserRepo("u1", "u2"))
	ctx := context.Background()

	bumped, err := uc.BumpListing(ctx, "ad1", "u1")
	require.NoError(t, err)
	assert.False(t, bumped.BumpedAt.IsZero())

	_, err = uc.BumpListing(ctx, "ad1", "u2")
	assert.True(t, errors.Is(err, "FORBIDDEN"))

	listing.Status = entity.ListingStatusSold
	_, err = uc.BumpListing(ctx, "ad1", "u1")
	assert.True(t, errors.Is(err, "BAD_REQUEST"))
}

func TestGetListingByIDSoftDeleted(t *testing.T) {
	listing := activeListing("ad1", "u1")
	now := time.Now()
	listing.DeletedAt = &now
	uc := NewListingUseCase(newFakeListingRepo(listing), newFakeUserRepo("u1"))

	_, err := uc.GetListingByID(context.Background(), "ad1", "")
	assert.True(t, errors.Is(err, "NOT_FOUND"))
}
