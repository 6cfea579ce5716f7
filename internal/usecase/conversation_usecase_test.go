package usecase

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pasariklan/internal/domain/entity"
	"pasariklan/pkg/config"
	"pasariklan/pkg/errors"
)

// fakeConversationRepo is an in-memory ConversationRepository. Its FindOrCreate
// holds a single mutex across the key check and the insert, giving the same
// at-most-one-per-key guarantee the Firestore transaction does.
type fakeConversationRepo struct {
	mu            sync.Mutex
	byKey         map[string]string
	conversations map[string]*entity.Conversation
	messages      []*entity.Message
}

func newFakeConversationRepo() *fakeConversationRepo {
	return &fakeConversationRepo{
		byKey:         make(map[string]string),
		conversations: make(map[string]*entity.Conversation),
	}
}

func (r *fakeConversationRepo) FindOrCreate(ctx context.Context, conv *entity.Conversation) (*entity.Conversation, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existingID, ok := r.byKey[conv.Key]; ok {
		return r.conversations[existingID], false, nil
	}

	now := time.Now()
	stored := &entity.Conversation{
		ID:           uuid.New().String(),
		Participants: conv.Participants,
		ListingID:    conv.ListingID,
		Key:          conv.Key,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	r.byKey[stored.Key] = stored.ID
	r.conversations[stored.ID] = stored

	return stored, true, nil
}

func (r *fakeConversationRepo) GetByID(ctx context.Context, id string) (*entity.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	conv, ok := r.conversations[id]
	if !ok {
		return nil, errors.NotFound("Conversation", nil)
	}
	return conv, nil
}

func (r *fakeConversationRepo) ListByUserID(ctx context.Context, userID string, limit, offset int) ([]*entity.Conversation, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var result []*entity.Conversation
	for _, conv := range r.conversations {
		if conv.HasParticipant(userID) {
			result = append(result, conv)
		}
	}
	return result, int64(len(result)), nil
}

func (r *fakeConversationRepo) CreateMessage(ctx context.Context, message *entity.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	conv, ok := r.conversations[message.ConversationID]
	if !ok {
		return errors.NotFound("Conversation", nil)
	}

	message.ID = uuid.New().String()
	message.CreatedAt = time.Now()
	r.messages = append(r.messages, message)

	conv.LastMessage = message.Text
	conv.LastMessageAt = message.CreatedAt
	conv.UpdatedAt = message.CreatedAt

	return nil
}

func (r *fakeConversationRepo) ListMessages(ctx context.Context, conversationID string, limit, offset int) ([]*entity.Message, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var result []*entity.Message
	for _, msg := range r.messages {
		if msg.ConversationID == conversationID {
			result = append(result, msg)
		}
	}
	return result, int64(len(result)), nil
}

func (r *fakeConversationRepo) MarkMessagesRead(ctx context.Context, conversationID, recipientID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	marked := 0
	for _, msg := range r.messages {
		if msg.ConversationID == conversationID && msg.ReceiverID == recipientID && !msg.IsRead {
			msg.IsRead = true
			marked++
		}
	}
	return marked, nil
}

func (r *fakeConversationRepo) UnreadCountForUser(ctx context.Context, userID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var count int64
	for _, msg := range r.messages {
		if msg.ReceiverID == userID && !msg.IsRead {
			count++
		}
	}
	return count, nil
}

func (r *fakeConversationRepo) UnreadCountsByConversation(ctx context.Context, userID string) (map[string]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	counts := make(map[string]int64)
	for _, msg := range r.messages {
		if msg.ReceiverID == userID && !msg.IsRead {
			counts[msg.ConversationID]++
		}
	}
	return counts, nil
}

type fakeUserRepo struct {
	users map[string]*entity.User
}

func newFakeUserRepo(ids ...string) *fakeUserRepo {
	users := make(map[string]*entity.User)
	for _, id := range ids {
		users[id] = &entity.User{ID: id, Username: "user-" + id}
	}
	return &fakeUserRepo{users: users}
}

func (r *fakeUserRepo) Create(ctx context.Context, user *entity.User) error {
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, errors.NotFound("User", nil)
	}
	return user, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return nil, errors.NotFound("User", nil)
}

func (r *fakeUserRepo) Update(ctx context.Context, user *entity.User) error { return nil }

func (r *fakeUserRepo) Delete(ctx context.Context, id string) error { return nil }

type fakeListingRepo struct {
	listings map[string]*entity.Listing
}

func newFakeListingRepo(listings ...*entity.Listing) *fakeListingRepo {
	m := make(map[string]*entity.Listing)
	for _, l := range listings {
		m[l.ID] = l
	}
	return &fakeListingRepo{listings: m}
}

func (r *fakeListingRepo) Create(ctx context.Context, listing *entity.Listing) error {
	if listing.ID == "" {
		listing.ID = uuid.New().String()
	}
	r.listings[listing.ID] = listing
	return nil
}

func (r *fakeListingRepo) GetByID(ctx context.Context, id string) (*entity.Listing, error) {
	listing, ok := r.listings[id]
	if !ok {
		return nil, errors.NotFound("Listing", nil)
	}
	return listing, nil
}

func (r *fakeListingRepo) List(ctx context.Context, filter map[string]interface{}, sort string, limit, offset int) ([]*entity.Listing, int64, error) {
	return nil, 0, nil
}

func (r *fakeListingRepo) ListBySellerID(ctx context.Context, sellerID, status string, limit, offset int) ([]*entity.Listing, int64, error) {
	return nil, 0, nil
}

func (r *fakeListingRepo) Update(ctx context.Context, listing *entity.Listing) error {
	r.listings[listing.ID] = listing
	return nil
}

func (r *fakeListingRepo) SoftDelete(ctx context.Context, id string) error { return nil }

func (r *fakeListingRepo) IncrementViews(ctx context.Context, id string) error { return nil }

func activeListing(id, sellerID string) *entity.Listing {
	return &entity.Listing{ID: id, SellerID: sellerID, Status: entity.ListingStatusActive}
}

func TestStartConversationIdempotent(t *testing.T) {
	repo := newFakeConversationRepo()
	uc := NewConversationUseCase(repo, newFakeUserRepo("u1", "u2"), newFakeListingRepo(), config.ScopeModeGlobal)
	ctx := context.Background()

	first, err := uc.StartConversation(ctx, "u1", StartConversationInput{CounterpartyID: "u2"})
	require.NoError(t, err)
	assert.True(t, first.Created)
	assert.Equal(t, []string{"u1", "u2"}, first.Conversation.Participants)

	// Repeat from the other side. Same conversation, not a new one.
	second, err := uc.StartConversation(ctx, "u2", StartConversationInput{CounterpartyID: "u1"})
	require.NoError(t, err)
	assert.False(t, second.Created)
	assert.Equal(t, first.Conversation.ID, second.Conversation.ID)

	assert.Len(t, repo.conversations, 1)
}

func TestStartConversationConcurrent(t *testing.T) {
	repo := newFakeConversationRepo()
	listingRepo := newFakeListingRepo(activeListing("ad42", "u2"))
	uc := NewConversationUseCase(repo, newFakeUserRepo("u1", "u2"), listingRepo, config.ScopeModePerListing)
	ctx := context.Background()

	// Both sides race to open the same thread.
	const workers = 8
	results := make([]*StartConversationResult, workers)
	errs := make([]error, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			caller, input := "u1", StartConversationInput{ListingID: "ad42"}
			if i%2 == 1 {
				caller, input = "u2", StartConversationInput{CounterpartyID: "u1", ListingID: "ad42"}
			}
			results[i], errs[i] = uc.StartConversation(ctx, caller, input)
		}(i)
	}
	wg.Wait()

	created := 0
	for i := 0; i < workers; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, results[0].Conversation.ID, results[i].Conversation.ID)
		if results[i].Created {
			created++
		}
	}

	assert.Equal(t, 1, created)
	assert.Len(t, repo.conversations, 1)
}

func TestStartConversationListingScopes(t *testing.T) {
	repo := newFakeConversationRepo()
	listingRepo := newFakeListingRepo(activeListing("ad42", "u2"), activeListing("ad99", "u2"))
	uc := NewConversationUseCase(repo, newFakeUserRepo("u1", "u2"), listingRepo, config.ScopeModePerListing)
	ctx := context.Background()

	// Counterparty defaults to the listing owner.
	ad42, err := uc.StartConversation(ctx, "u1", StartConversationInput{ListingID: "ad42"})
	require.NoError(t, err)
	assert.True(t, ad42.Created)
	assert.Equal(t, "u2", ad42.Counterparty.ID)
	assert.Equal(t, "ad42", ad42.Conversation.ListingID)

	// Same pair, different listing: a separate thread.
	ad99, err := uc.StartConversation(ctx, "u1", StartConversationInput{ListingID: "ad99"})
	require.NoError(t, err)
	assert.True(t, ad99.Created)
	assert.NotEqual(t, ad42.Conversation.ID, ad99.Conversation.ID)

	// The seller reaching out on their own listing lands in the same thread.
	fromSeller, err := uc.StartConversation(ctx, "u2", StartConversationInput{CounterpartyID: "u1", ListingID: "ad42"})
	require.NoError(t, err)
	assert.False(t, fromSeller.Created)
	assert.Equal(t, ad42.Conversation.ID, fromSeller.Conversation.ID)
}

func TestStartConversationValidation(t *testing.T) {
	listingRepo := newFakeListingRepo(activeListing("ad42", "u2"))

	t.Run("missing listing id in per-listing mode", func(t *testing.T) {
		uc := NewConversationUseCase(newFakeConversationRepo(), newFakeUserRepo("u1", "u2"), listingRepo, config.ScopeModePerListing)
		_, err := uc.StartConversation(context.Background(), "u1", StartConversationInput{CounterpartyID: "u2"})
		assert.True(t, errors.Is(err, "BAD_REQUEST"))
	})

	t.Run("counterparty is neither caller nor owner", func(t *testing.T) {
		uc := NewConversationUseCase(newFakeConversationRepo(), newFakeUserRepo("u1", "u2", "u3"), listingRepo, config.ScopeModePerListing)
		_, err := uc.StartConversation(context.Background(), "u1", StartConversationInput{CounterpartyID: "u3", ListingID: "ad42"})
		assert.True(t, errors.Is(err, "BAD_REQUEST"))
	})

	t.Run("owner starting with no counterparty is a self conversation", func(t *testing.T) {
		uc := NewConversationUseCase(newFakeConversationRepo(), newFakeUserRepo("u1", "u2"), listingRepo, config.ScopeModePerListing)
		_, err := uc.StartConversation(context.Background(), "u2", StartConversationInput{ListingID: "ad42"})
		assert.True(t, errors.Is(err, "BAD_REQUEST"))
	})

	t.Run("unknown counterparty", func(t *testing.T) {
		uc := NewConversationUseCase(newFakeConversationRepo(), newFakeUserRepo("u1"), newFakeListingRepo(), config.ScopeModeGlobal)
		_, err := uc.StartConversation(context.Background(), "u1", StartConversationInput{CounterpartyID: "ghost"})
		assert.True(t, errors.Is(err, "NOT_FOUND"))
	})

	t.Run("unknown listing", func(t *testing.T) {
		uc := NewConversationUseCase(newFakeConversationRepo(), newFakeUserRepo("u1", "u2"), listingRepo, config.ScopeModePerListing)
		_, err := uc.StartConversation(context.Background(), "u1", StartConversationInput{ListingID: "gone"})
		assert.True(t, errors.Is(err, "NOT_FOUND"))
	})
}

func TestSendMessageOrdering(t *testing.T) {
	repo := newFakeConversationRepo()
	uc := NewConversationUseCase(repo, newFakeUserRepo("u1", "u2"), newFakeListingRepo(), config.ScopeModeGlobal)
	ctx := context.Background()

	started, err := uc.StartConversation(ctx, "u1", StartConversationInput{CounterpartyID: "u2"})
	require.NoError(t, err)
	convID := started.Conversation.ID

	for _, text := range []string{"m1", "m2", "m3"} {
		msg, err := uc.SendMessage(ctx, "u1", convID, text)
		require.NoError(t, err)
		assert.Equal(t, "u2", msg.ReceiverID)
		assert.False(t, msg.IsRead)
	}

	messages, total, err := uc.GetConversationMessages(ctx, "u2", convID, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, messages, 3)
	assert.Equal(t, "m1", messages[0].Text)
	assert.Equal(t, "m2", messages[1].Text)
	assert.Equal(t, "m3", messages[2].Text)

	// The conversation snapshot follows the newest message.
	conv, err := uc.GetConversationByID(ctx, "u1", convID)
	require.NoError(t, err)
	assert.Equal(t, "m3", conv.LastMessage)
}

func TestSendMessageValidation(t *testing.T) {
	repo := newFakeConversationRepo()
	uc := NewConversationUseCase(repo, newFakeUserRepo("u1", "u2"), newFakeListingRepo(), config.ScopeModeGlobal)
	ctx := context.Background()

	started, err := uc.StartConversation(ctx, "u1", StartConversationInput{CounterpartyID: "u2"})
	require.NoError(t, err)
	convID := started.Conversation.ID

	_, err = uc.SendMessage(ctx, "u1", convID, "   ")
	assert.True(t, errors.Is(err, "BAD_REQUEST"))

	// Length is counted in runes, not bytes.
	atLimit := strings.Repeat("é", entity.MaxMessageLength)
	_, err = uc.SendMessage(ctx, "u1", convID, atLimit)
	assert.NoError(t, err)

	_, err = uc.SendMessage(ctx, "u1", convID, atLimit+"é")
	assert.True(t, errors.Is(err, "BAD_REQUEST"))

	// Trimming happens before the length check.
	_, err = uc.SendMessage(ctx, "u1", convID, "  "+atLimit+"  ")
	assert.NoError(t, err)
}

func TestConversationAccessControl(t *testing.T) {
	repo := newFakeConversationRepo()
	uc := NewConversationUseCase(repo, newFakeUserRepo("u1", "u2", "u3"), newFakeListingRepo(), config.ScopeModeGlobal)
	ctx := context.Background()

	started, err := uc.StartConversation(ctx, "u1", StartConversationInput{CounterpartyID: "u2"})
	require.NoError(t, err)
	convID := started.Conversation.ID

	_, err = uc.GetConversationByID(ctx, "u3", convID)
	assert.True(t, errors.Is(err, "FORBIDDEN"))

	_, err = uc.SendMessage(ctx, "u3", convID, "hi")
	assert.True(t, errors.Is(err, "FORBIDDEN"))

	_, _, err = uc.GetConversationMessages(ctx, "u3", convID, 0, 0)
	assert.True(t, errors.Is(err, "FORBIDDEN"))

	_, err = uc.MarkConversationRead(ctx, "u3", convID)
	assert.True(t, errors.Is(err, "FORBIDDEN"))

	_, err = uc.GetConversationByID(ctx, "u1", "no-such-conversation")
	assert.True(t, errors.Is(err, "NOT_FOUND"))

	_, err = uc.GetConversationByID(ctx, "u1", "bad:id")
	assert.True(t, errors.Is(err, "BAD_REQUEST"))
}

func TestReadState(t *testing.T) {
	repo := newFakeConversationRepo()
	uc := NewConversationUseCase(repo, newFakeUserRepo("u1", "u2"), newFakeListingRepo(), config.ScopeModeGlobal)
	ctx := context.Background()

	started, err := uc.StartConversation(ctx, "u2", StartConversationInput{CounterpartyID: "u1"})
	require.NoError(t, err)
	convID := started.Conversation.ID

	for _, text := range []string{"m1", "m2", "m3"} {
		_, err := uc.SendMessage(ctx, "u2", convID, text)
		require.NoError(t, err)
	}

	unread, err := uc.GetUnreadCount(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(3), unread)

	// The sender has nothing unread.
	unread, err = uc.GetUnreadCount(ctx, "u2")
	require.NoError(t, err)
	assert.Equal(t, int64(0), unread)

	conversations, _, err := uc.GetUserConversations(ctx, "u1", 0, 0)
	require.NoError(t, err)
	require.Len(t, conversations, 1)
	assert.Equal(t, int64(3), conversations[0].UnreadCount)

	// Listing the thread marks it read.
	_, _, err = uc.GetConversationMessages(ctx, "u1", convID, 0, 0)
	require.NoError(t, err)

	unread, err = uc.GetUnreadCount(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), unread)

	// Explicit mark on an already-read thread transitions nothing.
	marked, err := uc.MarkConversationRead(ctx, "u1", convID)
	require.NoError(t, err)
	assert.Equal(t, 0, marked)

	// A message after the mark is unread again.
	_, err = uc.SendMessage(ctx, "u2", convID, "m4")
	require.NoError(t, err)

	unread, err = uc.GetUnreadCount(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), unread)

	marked, err = uc.MarkConversationRead(ctx, "u1", convID)
	require.NoError(t, err)
	assert.Equal(t, 1, marked)
}

func TestStartConversationRateLimited(t *testing.T) {
	repo := newFakeConversationRepo()
	userRepo := newFakeUserRepo("u1", "u2", "u3", "u4", "u5", "u6", "u7")
	uc := NewConversationUseCase(repo, userRepo, newFakeListingRepo(), config.ScopeModeGlobal)
	ctx := context.Background()

	for _, other := range []string{"u2", "u3", "u4", "u5", "u6"} {
		_, err := uc.StartConversation(ctx, "u1", StartConversationInput{CounterpartyID: other})
		require.NoError(t, err)
	}

	_, err := uc.StartConversation(ctx, "u1", StartConversationInput{CounterpartyID: "u7"})
	assert.True(t, errors.Is(err, "TOO_MANY_REQUESTS"))
}
