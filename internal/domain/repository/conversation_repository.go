package repository

import (
	"context"

	"pasariklan/internal/domain/entity"
)

// ConversationRepository persists conversations and their message streams.
//
// FindOrCreate carries the system's one hard concurrency requirement: the
// storage layer must guarantee at most one conversation per canonical key,
// and a lost creation race must be recovered by re-reading the winner's
// record, never surfaced to the caller as an error. The returned bool is true
// only when this call actually created the conversation.
type ConversationRepository interface {
	FindOrCreate(ctx context.Context, conv *entity.Conversation) (*entity.Conversation, bool, error)
	GetByID(ctx context.Context, id string) (*entity.Conversation, error)
	ListByUserID(ctx context.Context, userID string, limit, offset int) ([]*entity.Conversation, int64, error)

	// CreateMessage appends a message and updates the parent conversation's
	// last-message snapshot in the same transaction.
	CreateMessage(ctx context.Context, message *entity.Message) error
	ListMessages(ctx context.Context, conversationID string, limit, offset int) ([]*entity.Message, int64, error)

	// MarkMessagesRead flips every unread message addressed to recipientID in
	// the conversation to read and returns how many were transitioned.
	// Calling it with nothing unread is a no-op, not an error.
	MarkMessagesRead(ctx context.Context, conversationID, recipientID string) (int, error)
	UnreadCountForUser(ctx context.Context, userID string) (int64, error)
	UnreadCountsByConversation(ctx context.Context, userID string) (map[string]int64, error)
}
