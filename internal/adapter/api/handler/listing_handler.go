package handler

import (
	"github.com/labstack/echo/v4"

	"pasariklan/internal/usecase"
	"pasariklan/pkg/response"
	"pasariklan/pkg/utils"
)

type ListingHandler struct {
	listingUseCase *usecase.ListingUseCase
}

func NewListingHandler(listingUseCase *usecase.ListingUseCase) *ListingHandler {
	return &ListingHandler{
		listingUseCase: listingUseCase,
	}
}

type listingImageRequest struct {
	URL          string `json:"url" validate:"required,url"`
	DisplayOrder int    `json:"display_order"`
}

type createListingRequest struct {
	Title       string                `json:"title" validate:"required,min=3"`
	Description string                `json:"description" validate:"required"`
	Price       float64               `json:"price" validate:"required,gt=0"`
	Category    string                `json:"category" validate:"required"`
	Condition   string                `json:"condition" validate:"required,oneof=new used"`
	Location    string                `json:"location"`
	Images      []listingImageRequest `json:"images" validate:"omitempty,dive"`
}

type updateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=active sold archived"`
}

func (h *ListingHandler) CreateListing(c echo.Context) error {
	var req createListingRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	sellerID := c.Get("uid").(string)

	images := make([]usecase.ListingImageInput, len(req.Images))
	for i, img := range req.Images {
		images[i] = usecase.ListingImageInput{
			URL:          img.URL,
			DisplayOrder: img.DisplayOrder,
		}
	}

	listing, err := h.listingUseCase.CreateListing(c.Request().Context(), sellerID, usecase.CreateListingInput{
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		Category:    req.Category,
		Condition:   req.Condition,
		Location:    req.Location,
	}, images)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, listing)
}

func (h *ListingHandler) UpdateListing(c echo.Context) error {
	listingID := c.Param("id")
	sellerID := c.Get("uid").(string)

	var req createListingRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	images := make([]usecase.ListingImageInput, len(req.Images))
	for i, img := range req.Images {
		images[i] = usecase.ListingImageInput{
			URL:          img.URL,
			DisplayOrder: img.DisplayOrder,
		}
	}

	listing, err := h.listingUseCase.UpdateListing(c.Request().Context(), listingID, sellerID, usecase.CreateListingInput{
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		Category:    req.Category,
		Condition:   req.Condition,
		Location:    req.Location,
	}, images)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, listing)
}

func (h *ListingHandler) GetListingByID(c echo.Context) error {
	viewerID, _ := c.Get("uid").(string)
	listing, err := h.listingUseCase.GetListingByID(c.Request().Context(), c.Param("id"), viewerID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, listing)
}

func (h *ListingHandler) ListListings(c echo.Context) error {
	category := c.QueryParam("category")
	condition := c.QueryParam("condition")
	status := c.QueryParam("status")
	location := c.QueryParam("location")

	pagination := utils.GetPaginationParams(c)

	listings, total, err := h.listingUseCase.ListListings(c.Request().Context(), category, condition, status, location, pagination.Page, pagination.PageSize)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Paginated(c, listings, total, pagination.Page, pagination.PageSize)
}

func (h *ListingHandler) GetMyListings(c echo.Context) error {
	sellerID := c.Get("uid").(string)
	status := c.QueryParam("status")
	limit, offset := utils.GetLimitOffset(c, 20)

	listings, total, err := h.listingUseCase.ListBySellerID(c.Request().Context(), sellerID, status, limit, offset)
	if err != nil {
		return response.Error(c, err)
	}

	return response.SuccessPaginated(c, listings, total, limit, offset)
}

func (h *ListingHandler) DeleteListing(c echo.Context) error {
	listingID := c.Param("id")
	sellerID := c.Get("uid").(string)

	if err := h.listingUseCase.DeleteListing(c.Request().Context(), listingID, sellerID); err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]string{"message": "Listing deleted"})
}

func (h *ListingHandler) UpdateStatus(c echo.Context) error {
	listingID := c.Param("id")
	sellerID := c.Get("uid").(string)

	var req updateStatusRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	listing, err := h.listingUseCase.UpdateStatus(c.Request().Context(), listingID, sellerID, req.Status)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, listing)
}

func (h *ListingHandler) BumpListing(c echo.Context) error {
	listingID := c.Param("id")
	sellerID := c.Get("uid").(string)

	listing, err := h.listingUseCase.BumpListing(c.Request().Context(), listingID, sellerID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, listing)
}
