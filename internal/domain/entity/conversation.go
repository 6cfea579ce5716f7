package entity

import "time"

// Conversation is a strictly two-party message thread. Participants is an
// unordered pair of distinct user IDs; Key is the canonical order-independent
// identity derived from them (plus ListingID when the thread is ad-scoped).
// At most one conversation exists per Key, enforced at the storage layer.
type Conversation struct {
	ID           string   `json:"id" firestore:"id"`
	Participants []string `json:"participants" firestore:"participants"`
	ListingID    string   `json:"listing_id,omitempty" firestore:"listingId,omitempty"`
	Key          string   `json:"-" firestore:"key"`

	LastMessage   string    `json:"last_message,omitempty" firestore:"lastMessage,omitempty"`
	LastMessageAt time.Time `json:"last_message_at" firestore:"lastMessageAt"`

	CreatedAt time.Time `json:"created_at" firestore:"createdAt"`
	UpdatedAt time.Time `json:"updated_at" firestore:"updatedAt"`
}

// HasParticipant reports whether userID is one of the two participants.
func (c *Conversation) HasParticipant(userID string) bool {
	for _, p := range c.Participants {
		if p == userID {
			return true
		}
	}
	return false
}

// OtherParticipant returns the participant that is not userID.
func (c *Conversation) OtherParticipant(userID string) string {
	for _, p := range c.Participants {
		if p != userID {
			return p
		}
	}
	return ""
}
