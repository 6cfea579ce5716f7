package usecase

import (
	"context"
	"log"
	"strings"
	"unicode/utf8"

	"pasariklan/internal/domain/entity"
	"pasariklan/internal/domain/repository"
	"pasariklan/internal/domain/service"
	"pasariklan/internal/infrastructure/ratelimit"
	"pasariklan/pkg/config"
	"pasariklan/pkg/errors"
)

type ConversationUseCase struct {
	conversationRepo repository.ConversationRepository
	userRepo         repository.UserRepository
	listingRepo      repository.ListingRepository
	rateLimiter      *ratelimit.RateLimiter
	scopeMode        string
}

func NewConversationUseCase(
	conversationRepo repository.ConversationRepository,
	userRepo repository.UserRepository,
	listingRepo repository.ListingRepository,
	scopeMode string,
) *ConversationUseCase {
	rateLimiter := ratelimit.NewRateLimiter()
	rateLimiter.StartCleanupRoutine()

	return &ConversationUseCase{
		conversationRepo: conversationRepo,
		userRepo:         userRepo,
		listingRepo:      listingRepo,
		rateLimiter:      rateLimiter,
		scopeMode:        scopeMode,
	}
}

type StartConversationInput struct {
	CounterpartyID string
	ListingID      string
}

type StartConversationResult struct {
	Conversation *entity.Conversation `json:"conversation"`
	Created      bool                 `json:"created"`
	Counterparty *entity.User         `json:"counterparty,omitempty"`
	Listing      *entity.Listing      `json:"listing,omitempty"`
}

type ConversationResponse struct {
	*entity.Conversation
	UnreadCount int64        `json:"unread_count"`
	OtherUser   *entity.User `json:"other_user,omitempty"`
}

type MessageResponse struct {
	*entity.Message
	Sender *entity.User `json:"sender,omitempty"`
}

// StartConversation resolves the counterparty (and listing scope when the
// deployment runs in per-listing mode), then delegates to the repository's
// idempotent find-or-create. A repeated start for the same pair is a success
// with Created=false, never an error.
func (uc *ConversationUseCase) StartConversation(ctx context.Context, userID string, input StartConversationInput) (*StartConversationResult, error) {
	allowed, waitTime := uc.rateLimiter.Allow(userID, "start_conversation")
	if !allowed {
		log.Printf("StartConversation rate limited: user %s must wait %v", userID, waitTime)
		return nil, errors.TooManyRequests("Rate limit exceeded. Please wait before starting another conversation")
	}

	counterpartyID := input.CounterpartyID
	scopeRef := ""
	var listing *entity.Listing

	if uc.scopeMode == config.ScopeModePerListing {
		if input.ListingID == "" {
			return nil, errors.BadRequest("Listing id is required", nil)
		}

		var err error
		listing, err = uc.listingRepo.GetByID(ctx, input.ListingID)
		if err != nil {
			return nil, err
		}
		if listing.DeletedAt != nil {
			return nil, errors.NotFound("Listing", nil)
		}

		// The thread is between the caller and the listing owner. A seller
		// replying from their own listing may address anyone; a buyer may
		// only address the owner.
		if counterpartyID == "" {
			counterpartyID = listing.SellerID
		} else if userID != listing.SellerID && counterpartyID != listing.SellerID {
			return nil, errors.BadRequest("Counterparty does not own this listing", nil)
		}

		scopeRef = listing.ID
	} else {
		if counterpartyID == "" {
			return nil, errors.BadRequest("Counterparty id is required", nil)
		}
	}

	key, err := service.CanonicalConversationKey(userID, counterpartyID, scopeRef)
	if err != nil {
		return nil, err
	}

	counterparty, err := uc.userRepo.GetByID(ctx, counterpartyID)
	if err != nil {
		return nil, errors.NotFound("Counterparty", err)
	}

	conv := &entity.Conversation{
		Participants: service.SortedParticipants(userID, counterpartyID),
		ListingID:    scopeRef,
		Key:          key,
	}

	conv, created, err := uc.conversationRepo.FindOrCreate(ctx, conv)
	if err != nil {
		return nil, err
	}

	if created {
		log.Printf("StartConversation: created conversation %s for key %s", conv.ID, key)
	}

	return &StartConversationResult{
		Conversation: conv,
		Created:      created,
		Counterparty: counterparty,
		Listing:      listing,
	}, nil
}

// GetUserConversations lists the caller's conversations newest-activity
// first, each with its unread count. Unread counts for all conversations come
// from one grouped query, not one query per conversation.
func (uc *ConversationUseCase) GetUserConversations(ctx context.Context, userID string, limit, offset int) ([]*ConversationResponse, int64, error) {
	conversations, total, err := uc.conversationRepo.ListByUserID(ctx, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	unreadCounts, err := uc.conversationRepo.UnreadCountsByConversation(ctx, userID)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]*ConversationResponse, 0, len(conversations))
	for _, conv := range conversations {
		resp := &ConversationResponse{
			Conversation: conv,
			UnreadCount:  unreadCounts[conv.ID],
		}

		otherID := conv.OtherParticipant(userID)
		if otherID != "" {
			if otherUser, err := uc.userRepo.GetByID(ctx, otherID); err == nil {
				resp.OtherUser = otherUser
			}
		}

		responses = append(responses, resp)
	}

	return responses, total, nil
}

func (uc *ConversationUseCase) GetConversationByID(ctx context.Context, userID, conversationID string) (*ConversationResponse, error) {
	conv, err := uc.authorize(ctx, conversationID, userID)
	if err != nil {
		return nil, err
	}

	unreadCounts, err := uc.conversationRepo.UnreadCountsByConversation(ctx, userID)
	if err != nil {
		return nil, err
	}

	resp := &ConversationResponse{
		Conversation: conv,
		UnreadCount:  unreadCounts[conv.ID],
	}

	if otherID := conv.OtherParticipant(userID); otherID != "" {
		if otherUser, err := uc.userRepo.GetByID(ctx, otherID); err == nil {
			resp.OtherUser = otherUser
		}
	}

	return resp, nil
}

// SendMessage appends to a conversation the caller participates in. The
// receiver is always the other participant; the repository moves the
// conversation's last-message snapshot in the same transaction.
func (uc *ConversationUseCase) SendMessage(ctx context.Context, userID, conversationID, text string) (*MessageResponse, error) {
	allowed, waitTime := uc.rateLimiter.Allow(userID, "send_message")
	if !allowed {
		log.Printf("SendMessage rate limited: user %s must wait %v", userID, waitTime)
		return nil, errors.TooManyRequests("Rate limit exceeded. Please wait before sending another message")
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, errors.BadRequest("Message text cannot be empty", nil)
	}
	if utf8.RuneCountInString(text) > entity.MaxMessageLength {
		return nil, errors.BadRequest("Message text exceeds maximum length", nil)
	}

	conv, err := uc.authorize(ctx, conversationID, userID)
	if err != nil {
		return nil, err
	}

	message := &entity.Message{
		ConversationID: conv.ID,
		SenderID:       userID,
		ReceiverID:     conv.OtherParticipant(userID),
		Text:           text,
		IsRead:         false,
	}

	if err := uc.conversationRepo.CreateMessage(ctx, message); err != nil {
		return nil, err
	}

	resp := &MessageResponse{Message: message}
	if sender, err := uc.userRepo.GetByID(ctx, userID); err == nil {
		resp.Sender = sender
	}

	return resp, nil
}

// GetConversationMessages returns the thread oldest-first and, as part of the
// same logical read, marks the caller's unread messages in it as read.
func (uc *ConversationUseCase) GetConversationMessages(ctx context.Context, userID, conversationID string, limit, offset int) ([]*MessageResponse, int64, error) {
	conv, err := uc.authorize(ctx, conversationID, userID)
	if err != nil {
		return nil, 0, err
	}

	messages, total, err := uc.conversationRepo.ListMessages(ctx, conv.ID, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	marked, err := uc.conversationRepo.MarkMessagesRead(ctx, conv.ID, userID)
	if err != nil {
		// The read itself succeeded; the unread state will be consumed on the
		// next view.
		log.Printf("GetConversationMessages: failed to mark conversation %s read for user %s: %v", conv.ID, userID, err)
	} else if marked > 0 {
		log.Printf("GetConversationMessages: marked %d messages read in conversation %s for user %s", marked, conv.ID, userID)
	}

	responses := make([]*MessageResponse, 0, len(messages))
	for _, msg := range messages {
		responses = append(responses, &MessageResponse{Message: msg})
	}

	return responses, total, nil
}

// MarkConversationRead is the explicit variant of the implicit mark-on-list.
// Idempotent: marking an already-read thread transitions zero messages.
func (uc *ConversationUseCase) MarkConversationRead(ctx context.Context, userID, conversationID string) (int, error) {
	conv, err := uc.authorize(ctx, conversationID, userID)
	if err != nil {
		return 0, err
	}

	return uc.conversationRepo.MarkMessagesRead(ctx, conv.ID, userID)
}

func (uc *ConversationUseCase) GetUnreadCount(ctx context.Context, userID string) (int64, error) {
	return uc.conversationRepo.UnreadCountForUser(ctx, userID)
}

// authorize loads the conversation and confirms the requester is one of its
// two participants. Runs before every message read or write.
func (uc *ConversationUseCase) authorize(ctx context.Context, conversationID, requesterID string) (*entity.Conversation, error) {
	if !service.ValidIdentifier(conversationID) {
		return nil, errors.BadRequest("Invalid conversation id", nil)
	}

	conv, err := uc.conversationRepo.GetByID(ctx, conversationID)
	if err != nil {
		return nil, err
	}

	if !conv.HasParticipant(requesterID) {
		return nil, errors.Forbidden("You don't have access to this conversation", nil)
	}

	return conv, nil
}
