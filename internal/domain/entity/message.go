package entity

import "time"

// MaxMessageLength bounds message text after trimming.
const MaxMessageLength = 2000

// Message is immutable after creation except for the IsRead transition
// false -> true, which only the bulk mark-read path performs.
type Message struct {
	ID             string    `json:"id" firestore:"id"`
	ConversationID string    `json:"conversation_id" firestore:"conversationId"`
	SenderID       string    `json:"sender_id" firestore:"senderId"`
	ReceiverID     string    `json:"receiver_id" firestore:"receiverId"`
	Text           string    `json:"text" firestore:"text"`
	IsRead         bool      `json:"is_read" firestore:"isRead"`
	CreatedAt      time.Time `json:"created_at" firestore:"createdAt"`
}
