package aggregator

import (
	"context"
	"testing"
	"time"

	"github.com/arafat90/clientflow/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeReceiptLister struct {
	receipts []models.MessageReceipt
}

func (f *fakeReceiptLister) GetUnreadSince(recipientID uint, since time.Time) ([]models.MessageReceipt, error) {
	var out []models.MessageReceipt
	for _, r := range f.receipts {
		if r.RecipientID == recipientID && r.CreatedAt.After(since) {
			out = append(out, r)
		}
	}
	return out, nil
}

type fakeMessageFetcher struct {
	messages map[string]models.Message
}

func (f *fakeMessageFetcher) GetMessagesByIDs(ctx context.Context, ids []string) ([]models.Message, error) {
	var out []models.Message
	for _, id := range ids {
		if m, ok := f.messages[id]; ok {
			out = append(out, m)
		}
	}
	return out, nil
}

type fakePairChecker struct {
	// notifiedAt records when a persisted notification was last written
	// for each (sender, entity) pair.
	notifiedAt map[convPair]time.Time
	now        time.Time
	lookups    int
}

func (f *fakePairChecker) HasRecentForPair(recipientID, senderID uint, entityType, entityID string, window time.Duration) (bool, error) {
	f.lookups++
	at, ok := f.notifiedAt[convPair{entityType: entityType, entityID: entityID, senderID: senderID}]
	if !ok {
		return false, nil
	}
	return f.now.Sub(at) < window, nil
}

type chatFixture struct {
	receipts *fakeReceiptLister
	msgs     *fakeMessageFetcher
	pairs    *fakePairChecker
	source   *ChatSource
}

func newChatFixture(now time.Time) *chatFixture {
	f := &chatFixture{
		receipts: &fakeReceiptLister{},
		msgs:     &fakeMessageFetcher{messages: map[string]models.Message{}},
		pairs:    &fakePairChecker{notifiedAt: map[convPair]time.Time{}, now: now},
	}
	f.source = NewChatSource(f.receipts, f.msgs, f.pairs)
	return f
}

func (f *chatFixture) addUnread(recipientID, authorID, channelID uint, content string, at time.Time) models.Message {
	cid := channelID
	msg := models.Message{
		ID:        primitive.NewObjectID(),
		AuthorID:  authorID,
		ChannelID: &cid,
		Content:   content,
		CreatedAt: at,
	}
	f.msgs.messages[msg.ID.Hex()] = msg
	f.receipts.receipts = append(f.receipts.receipts, models.MessageReceipt{
		MessageID:   msg.ID.Hex(),
		RecipientID: recipientID,
		AuthorID:    authorID,
		ChannelID:   &cid,
		Status:      models.StatusSent,
		CreatedAt:   at,
	})
	return msg
}

func TestChatSourceSurfacesUnreadMessages(t *testing.T) {
	now := time.Now()
	f := newChatFixture(now)
	msg := f.addUnread(2, 1, 10, "standup moved to 11", now.Add(-time.Minute))

	items, err := f.source.Fetch(context.Background(), &models.User{ID: 2})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("items = %d, want 1", len(items))
	}
	got := items[0]
	if got.ID.String() != "chat_"+msg.ID.Hex() {
		t.Fatalf("id = %q", got.ID)
	}
	if got.EntityType != "channel" || got.EntityID != "10" {
		t.Fatalf("entity = %s/%s", got.EntityType, got.EntityID)
	}
	if got.RelatedUserID == nil || *got.RelatedUserID != 1 {
		t.Fatalf("related user = %v, want the author", got.RelatedUserID)
	}
}

func TestChatSourceSuppressesRecentlyNotifiedPair(t *testing.T) {
	// A persisted message_received notification written 1 minute ago for
	// this channel/sender pair means the poll must stay quiet.
	now := time.Now()
	f := newChatFixture(now)
	f.addUnread(2, 1, 10, "first ping", now.Add(-time.Minute))
	f.pairs.notifiedAt[convPair{entityType: "channel", entityID: "10", senderID: 1}] = now.Add(-time.Minute)

	items, err := f.source.Fetch(context.Background(), &models.User{ID: 2})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("items = %d, want 0 while inside the dedup window", len(items))
	}
}

func TestChatSourceResurfacesAfterDedupWindow(t *testing.T) {
	now := time.Now()
	f := newChatFixture(now)
	f.addUnread(2, 1, 10, "six minutes later", now.Add(-time.Second))
	f.pairs.notifiedAt[convPair{entityType: "channel", entityID: "10", senderID: 1}] = now.Add(-6 * time.Minute)

	items, err := f.source.Fetch(context.Background(), &models.User{ID: 2})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("items = %d, want 1 once the window has lapsed", len(items))
	}
}

func TestChatSourceBatchesDedupLookupPerPair(t *testing.T) {
	now := time.Now()
	f := newChatFixture(now)
	for i := 0; i < 5; i++ {
		f.addUnread(2, 1, 10, "burst", now.Add(-time.Duration(i+1)*time.Second))
	}

	items, err := f.source.Fetch(context.Background(), &models.User{ID: 2})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(items) != 5 {
		t.Fatalf("items = %d, want all 5 unread messages", len(items))
	}
	if f.pairs.lookups != 1 {
		t.Fatalf("dedup lookups = %d, want 1 for a single sender/channel pair", f.pairs.lookups)
	}
}

func TestChatSourceSkipsDeletedAndOwnMessages(t *testing.T) {
	now := time.Now()
	f := newChatFixture(now)

	deleted := f.addUnread(2, 1, 10, "retracted", now.Add(-time.Minute))
	m := f.msgs.messages[deleted.ID.Hex()]
	m.IsDeleted = true
	m.Content = ""
	f.msgs.messages[deleted.ID.Hex()] = m

	f.addUnread(2, 2, 11, "note to self", now.Add(-time.Minute))

	items, err := f.source.Fetch(context.Background(), &models.User{ID: 2})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("items = %d, want 0", len(items))
	}
}

func TestChatSourceEmptyWhenNothingUnread(t *testing.T) {
	f := newChatFixture(time.Now())
	items, err := f.source.Fetch(context.Background(), &models.User{ID: 2})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("items = %d, want 0", len(items))
	}
}
