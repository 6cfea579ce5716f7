package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"pasariklan/internal/domain/entity"
	"pasariklan/internal/domain/repository"
	"pasariklan/internal/infrastructure/ratelimit"
	"pasariklan/pkg/errors"
)

type ListingUseCase struct {
	listingRepo repository.ListingRepository
	userRepo    repository.UserRepository
	rateLimiter *ratelimit.RateLimiter
}

func NewListingUseCase(
	listingRepo repository.ListingRepository,
	userRepo repository.UserRepository,
) *ListingUseCase {
	return &ListingUseCase{
		listingRepo: listingRepo,
		userRepo:    userRepo,
		rateLimiter: ratelimit.NewRateLimiter(),
	}
}

type CreateListingInput struct {
	Title       string
	Description string
	Price       float64
	Category    string
	Condition   string
	Location    string
}

type ListingImageInput struct {
	URL          string
	DisplayOrder int
}

func (uc *ListingUseCase) CreateListing(ctx context.Context, sellerID string, input CreateListingInput, images []ListingImageInput) (*entity.Listing, error) {
	if allowed, _ := uc.rateLimiter.Allow(sellerID, "create_listing"); !allowed {
		return nil, errors.TooManyRequests("Rate limit exceeded. Please wait before creating another listing")
	}

	if _, err := uc.userRepo.GetByID(ctx, sellerID); err != nil {
		return nil, errors.BadRequest("Invalid seller", err)
	}

	if input.Condition != "new" && input.Condition != "used" {
		return nil, errors.BadRequest("Condition must be new or used", nil)
	}

	listingImages := make([]entity.ListingImage, len(images))
	for i, img := range images {
		listingImages[i] = entity.ListingImage{
			ID:           uuid.New().String(),
			URL:          img.URL,
			DisplayOrder: img.DisplayOrder,
		}
	}

	now := time.Now()
	listing := &entity.Listing{
		SellerID:    sellerID,
		Title:       input.Title,
		Description: input.Description,
		Price:       input.Price,
		Category:    input.Category,
		Condition:   input.Condition,
		Location:    input.Location,
		Images:      listingImages,
		Status:      entity.ListingStatusActive,
		Views:       0,
		Featured:    false,
		CreatedAt:   now,
		UpdatedAt:   now,
		BumpedAt:    now,
	}

	if err := uc.listingRepo.Create(ctx, listing); err != nil {
		return nil, err
	}

	return listing, nil
}

func (uc *ListingUseCase) UpdateListing(ctx context.Context, id, sellerID string, input CreateListingInput, images []ListingImageInput) (*entity.Listing, error) {
	listing, err := uc.listingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if listing.SellerID != sellerID {
		return nil, errors.Forbidden("You don't have permission to update this listing", nil)
	}

	if input.Condition != "" && input.Condition != "new" && input.Condition != "used" {
		return nil, errors.BadRequest("Condition must be new or used", nil)
	}

	listing.Title = input.Title
	listing.Description = input.Description
	listing.Price = input.Price
	listing.Category = input.Category
	if input.Condition != "" {
		listing.Condition = input.Condition
	}
	listing.Location = input.Location
	listing.UpdatedAt = time.Now()

	if len(images) > 0 {
		listingImages := make([]entity.ListingImage, len(images))
		for i, img := range images {
			listingImages[i] = entity.ListingImage{
				ID:           uuid.New().String(),
				URL:          img.URL,
				DisplayOrder: img.DisplayOrder,
			}
		}
		listing.Images = listingImages
	}

	if err := uc.listingRepo.Update(ctx, listing); err != nil {
		return nil, err
	}

	return listing, nil
}

func (uc *ListingUseCase) GetListingByID(ctx context.Context, id, viewerID string) (*entity.Listing, error) {
	listing, err := uc.listingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if listing.DeletedAt != nil {
		return nil, errors.NotFound("Listing", nil)
	}

	// Increment view counter (async). Sellers browsing their own listing
	// don't count.
	if viewerID != listing.SellerID {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = uc.listingRepo.IncrementViews(ctx, id)
		}()
	}

	return listing, nil
}

func (uc *ListingUseCase) ListListings(ctx context.Context, category, condition, status, location string, page, limit int) ([]*entity.Listing, int64, error) {
	filter := make(map[string]interface{})

	if category != "" {
		filter["category"] = category
	}
	if condition != "" {
		filter["condition"] = condition
	}
	if location != "" {
		filter["location"] = location
	}

	if status != "" {
		filter["status"] = status
	} else {
		// Public browse sees active listings only
		filter["status"] = entity.ListingStatusActive
	}

	offset := (page - 1) * limit
	if offset < 0 {
		offset = 0
	}

	return uc.listingRepo.List(ctx, filter, "", limit, offset)
}

func (uc *ListingUseCase) ListBySellerID(ctx context.Context, sellerID, status string, limit, offset int) ([]*entity.Listing, int64, error) {
	if _, err := uc.userRepo.GetByID(ctx, sellerID); err != nil {
		return nil, 0, errors.BadRequest("Invalid seller", err)
	}

	return uc.listingRepo.ListBySellerID(ctx, sellerID, status, limit, offset)
}

func (uc *ListingUseCase) DeleteListing(ctx context.Context, id, sellerID string) error {
	listing, err := uc.listingRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if listing.SellerID != sellerID {
		return errors.Forbidden("You don't have permission to delete this listing", nil)
	}

	return uc.listingRepo.SoftDelete(ctx, id)
}

// UpdateStatus moves a listing through its lifecycle. Only forward-looking
// transitions are allowed: active -> sold, active <-> archived.
func (uc *ListingUseCase) UpdateStatus(ctx context.Context, id, sellerID, status string) (*entity.Listing, error) {
	listing, err := uc.listingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if listing.SellerID != sellerID {
		return nil, errors.Forbidden("You don't have permission to update this listing", nil)
	}

	switch status {
	case entity.ListingStatusSold:
		if listing.Status != entity.ListingStatusActive {
			return nil, errors.BadRequest("Only active listings can be marked as sold", nil)
		}
	case entity.ListingStatusArchived:
		if listing.Status != entity.ListingStatusActive {
			return nil, errors.BadRequest("Only active listings can be archived", nil)
		}
	case entity.ListingStatusActive:
		if listing.Status != entity.ListingStatusArchived {
			return nil, errors.BadRequest("Only archived listings can be reactivated", nil)
		}
	default:
		return nil, errors.BadRequest("Invalid listing status", nil)
	}

	listing.Status = status
	listing.UpdatedAt = time.Now()

	if err := uc.listingRepo.Update(ctx, listing); err != nil {
		return nil, err
	}

	return listing, nil
}

func (uc *ListingUseCase) BumpListing(ctx context.Context, id, sellerID string) (*entity.Listing, error) {
	listing, err := uc.listingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if listing.SellerID != sellerID {
		return nil, errors.Forbidden("You don't have permission to bump this listing", nil)
	}

	if listing.Status != entity.ListingStatusActive {
		return nil, errors.BadRequest("Only active listings can be bumped", nil)
	}

	listing.BumpedAt = time.Now()
	listing.UpdatedAt = time.Now()

	if err := uc.listingRepo.Update(ctx, listing); err != nil {
		return nil, err
	}

	return listing, nil
}
