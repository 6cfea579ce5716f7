package entity

import (
	"time"
)

// Listing lifecycle statuses
const (
	ListingStatusActive   = "active"
	ListingStatusSold     = "sold"
	ListingStatusArchived = "archived"
)

type ListingImage struct {
	ID           string `json:"id" firestore:"id"`
	URL          string `json:"url" firestore:"url"`
	DisplayOrder int    `json:"display_order" firestore:"displayOrder"`
}

type Listing struct {
	ID          string         `json:"id" firestore:"id"`
	SellerID    string         `json:"seller_id" firestore:"sellerId"`
	Title       string         `json:"title" firestore:"title"`
	Description string         `json:"description" firestore:"description"`
	Price       float64        `json:"price" firestore:"price"`
	Category    string         `json:"category" firestore:"category"`
	Condition   string         `json:"condition" firestore:"condition"` // "new", "used"
	Location    string         `json:"location,omitempty" firestore:"location,omitempty"`
	Images      []ListingImage `json:"images" firestore:"images"`
	Status      string         `json:"status" firestore:"status"`

	Views    int  `json:"views" firestore:"views"`
	Featured bool `json:"featured" firestore:"featured"`

	CreatedAt time.Time  `json:"created_at" firestore:"createdAt"`
	UpdatedAt time.Time  `json:"updated_at" firestore:"updatedAt"`
	DeletedAt *time.Time `json:"deleted_at,omitempty" firestore:"deletedAt"`
	BumpedAt  time.Time  `json:"bumped_at" firestore:"bumpedAt"`
}
