package repository

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	firestorepb "cloud.google.com/go/firestore/apiv1/firestorepb"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"pasariklan/internal/domain/entity"
	"pasariklan/internal/domain/repository"
	"pasariklan/pkg/errors"
	"pasariklan/pkg/logger"
)

// Conversations live in "conversations" keyed by a generated ID. Uniqueness of
// the canonical pair key is enforced through "conversation_keys", whose
// document ID is the key itself: tx.Create on that document is the storage
// level unique constraint, failing with AlreadyExists when a concurrent
// request won the race. Messages live in a top-level "messages" collection so
// unread aggregation runs as one query across all of a user's conversations.
type firestoreConversationRepository struct {
	client *firestore.Client
}

func NewFirestoreConversationRepository(client *firestore.Client) repository.ConversationRepository {
	return &firestoreConversationRepository{
		client: client,
	}
}

func (r *firestoreConversationRepository) FindOrCreate(ctx context.Context, conv *entity.Conversation) (*entity.Conversation, bool, error) {
	keyRef := r.client.Collection("conversation_keys").Doc(conv.Key)

	// Fast path: repeated "start conversation" calls between the same pair
	// are the common case.
	existing, err := r.getByKeyRef(ctx, keyRef)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, "NOT_FOUND") {
		return nil, false, err
	}

	if conv.ID == "" {
		conv.ID = uuid.New().String()
	}
	now := time.Now()
	conv.CreatedAt = now
	conv.UpdatedAt = now
	conv.LastMessageAt = now

	var existingID string
	err = r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		keyDoc, err := tx.Get(keyRef)
		if err == nil {
			id, err := keyDoc.DataAt("conversationId")
			if err != nil {
				return err
			}
			existingID, _ = id.(string)
			return nil
		}
		if status.Code(err) != codes.NotFound {
			return err
		}

		if err := tx.Create(keyRef, map[string]interface{}{
			"conversationId": conv.ID,
			"createdAt":      now,
		}); err != nil {
			return err
		}
		return tx.Create(r.client.Collection("conversations").Doc(conv.ID), conv)
	})

	if err != nil {
		if status.Code(err) == codes.AlreadyExists {
			// Lost the creation race. The mandatory recovery read: the
			// winner's record is the result, not an error.
			logger.Info("FindOrCreate: concurrent creation for key %s, re-reading winner", conv.Key)
			winner, rerr := r.getByKeyRef(ctx, keyRef)
			if rerr != nil {
				return nil, false, errors.Conflict("Conversation creation race could not be recovered", rerr)
			}
			return winner, false, nil
		}
		return nil, false, errors.Internal("Failed to create conversation", err)
	}

	if existingID != "" {
		found, err := r.GetByID(ctx, existingID)
		if err != nil {
			return nil, false, errors.Conflict("Conversation key exists but record is missing", err)
		}
		return found, false, nil
	}

	return conv, true, nil
}

// getByKeyRef resolves a key-reservation document to its conversation record.
func (r *firestoreConversationRepository) getByKeyRef(ctx context.Context, keyRef *firestore.DocumentRef) (*entity.Conversation, error) {
	keyDoc, err := keyRef.Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Conversation", err)
		}
		return nil, errors.Internal("Failed to read conversation key", err)
	}

	id, err := keyDoc.DataAt("conversationId")
	if err != nil {
		return nil, errors.Internal("Failed to parse conversation key data", err)
	}

	conversationID, ok := id.(string)
	if !ok || conversationID == "" {
		return nil, errors.Internal("Malformed conversation key document", nil)
	}

	return r.GetByID(ctx, conversationID)
}

func (r *firestoreConversationRepository) GetByID(ctx context.Context, id string) (*entity.Conversation, error) {
	doc, err := r.client.Collection("conversations").Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Conversation", err)
		}
		return nil, errors.Internal("Failed to get conversation", err)
	}

	var conv entity.Conversation
	if err := doc.DataTo(&conv); err != nil {
		return nil, errors.Internal("Failed to parse conversation data", err)
	}

	return &conv, nil
}

func (r *firestoreConversationRepository) ListByUserID(ctx context.Context, userID string, limit, offset int) ([]*entity.Conversation, int64, error) {
	query := r.client.Collection("conversations").
		Where("participants", "array-contains", userID).
		OrderBy("updatedAt", firestore.Desc)

	allDocs, err := query.Documents(ctx).GetAll()
	if err != nil {
		logger.Error("Firestore error while fetching conversations for user %s: %v", userID, err)
		return nil, 0, errors.Internal("Failed to fetch conversations", err)
	}

	total := int64(len(allDocs))

	start := offset
	if start > len(allDocs) {
		start = len(allDocs)
	}
	end := len(allDocs)
	if limit > 0 && start+limit < end {
		end = start + limit
	}

	var conversations []*entity.Conversation
	for i := start; i < end; i++ {
		var conv entity.Conversation
		if err := allDocs[i].DataTo(&conv); err != nil {
			logger.Warn("Error parsing conversation data for user %s: %v", userID, err)
			continue
		}
		conversations = append(conversations, &conv)
	}

	return conversations, total, nil
}

func (r *firestoreConversationRepository) CreateMessage(ctx context.Context, message *entity.Message) error {
	if message.ID == "" {
		message.ID = uuid.New().String()
	}
	message.CreatedAt = time.Now()

	convRef := r.client.Collection("conversations").Doc(message.ConversationID)
	msgRef := r.client.Collection("messages").Doc(message.ID)

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if _, err := tx.Get(convRef); err != nil {
			return err
		}
		if err := tx.Create(msgRef, message); err != nil {
			return err
		}
		// Last-message snapshot moves with the append, in the same commit.
		return tx.Update(convRef, []firestore.Update{
			{Path: "lastMessage", Value: message.Text},
			{Path: "lastMessageAt", Value: message.CreatedAt},
			{Path: "updatedAt", Value: message.CreatedAt},
		})
	})

	if err != nil {
		if status.Code(err) == codes.NotFound {
			return errors.NotFound("Conversation", err)
		}
		return errors.Internal("Failed to create message", err)
	}

	return nil
}

func (r *firestoreConversationRepository) ListMessages(ctx context.Context, conversationID string, limit, offset int) ([]*entity.Message, int64, error) {
	base := r.client.Collection("messages").
		Where("conversationId", "==", conversationID)

	total, err := r.countMessages(ctx, base)
	if err != nil {
		return nil, 0, err
	}

	// Ascending by creation time; Firestore breaks ties by document name,
	// which is stable across reads.
	query := base.OrderBy("createdAt", firestore.Asc)
	if offset > 0 {
		query = query.Offset(offset)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	iter := query.Documents(ctx)
	var messages []*entity.Message

	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			logger.Error("Firestore error while iterating messages for conversation %s: %v", conversationID, err)
			return nil, 0, errors.Internal("Failed to iterate messages", err)
		}

		var message entity.Message
		if err := doc.DataTo(&message); err != nil {
			return nil, 0, errors.Internal("Failed to parse message data", err)
		}

		messages = append(messages, &message)
	}

	return messages, total, nil
}

func (r *firestoreConversationRepository) MarkMessagesRead(ctx context.Context, conversationID, recipientID string) (int, error) {
	iter := r.client.Collection("messages").
		Where("conversationId", "==", conversationID).
		Where("receiverId", "==", recipientID).
		Where("isRead", "==", false).
		Select().
		Documents(ctx)

	bw := r.client.BulkWriter(ctx)
	var jobs []*firestore.BulkWriterJob

	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return 0, errors.Internal("Failed to query unread messages", err)
		}

		job, err := bw.Update(doc.Ref, []firestore.Update{
			{Path: "isRead", Value: true},
		})
		if err != nil {
			return 0, errors.Internal("Failed to queue read-state update", err)
		}
		jobs = append(jobs, job)
	}

	bw.End()

	count := 0
	for _, job := range jobs {
		if _, err := job.Results(); err != nil {
			return count, errors.Internal("Failed to mark messages as read", err)
		}
		count++
	}

	return count, nil
}

func (r *firestoreConversationRepository) UnreadCountForUser(ctx context.Context, userID string) (int64, error) {
	query := r.client.Collection("messages").
		Where("receiverId", "==", userID).
		Where("isRead", "==", false)

	return r.countMessages(ctx, query)
}

// UnreadCountsByConversation issues one projected query over all of the
// user's unread messages and groups in memory. Never one query per
// conversation: that fan-out would grow with conversation count.
func (r *firestoreConversationRepository) UnreadCountsByConversation(ctx context.Context, userID string) (map[string]int64, error) {
	iter := r.client.Collection("messages").
		Where("receiverId", "==", userID).
		Where("isRead", "==", false).
		Select("conversationId").
		Documents(ctx)

	counts := make(map[string]int64)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, errors.Internal("Failed to query unread messages", err)
		}

		id, err := doc.DataAt("conversationId")
		if err != nil {
			continue
		}
		if conversationID, ok := id.(string); ok {
			counts[conversationID]++
		}
	}

	return counts, nil
}

func (r *firestoreConversationRepository) countMessages(ctx context.Context, query firestore.Query) (int64, error) {
	aq := query.NewAggregationQuery().WithCount("total")
	results, err := aq.Get(ctx)
	if err != nil {
		return 0, errors.Internal("Failed to count messages", err)
	}

	value, ok := results["total"]
	if !ok {
		return 0, errors.Internal("Message count aggregation returned no result", nil)
	}

	countValue, ok := value.(*firestorepb.Value)
	if !ok {
		return 0, errors.Internal("Unexpected message count aggregation type", nil)
	}

	return countValue.GetIntegerValue(), nil
}
