package chat

import (
	"context"
	"time"

	"github.com/arafat90/clientflow/backend/internal/models"
	"github.com/arafat90/clientflow/backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"gorm.io/gorm"
)

// In-memory repository fakes. The receipt fake enforces the same
// monotonic transition rule as the SQL implementation so state-machine
// tests exercise the real contract.

type fakeChannelRepo struct {
	channels map[uint]*models.Channel
	members  map[uint][]uint
}

func newFakeChannelRepo() *fakeChannelRepo {
	return &fakeChannelRepo{channels: map[uint]*models.Channel{}, members: map[uint][]uint{}}
}

func (f *fakeChannelRepo) addChannel(id uint, memberIDs ...uint) {
	f.channels[id] = &models.Channel{ID: id, Name: "ch"}
	f.members[id] = memberIDs
}

func (f *fakeChannelRepo) CreateChannel(channel *models.Channel, memberIDs []uint) error {
	channel.ID = uint(len(f.channels) + 1)
	f.channels[channel.ID] = channel
	f.members[channel.ID] = append([]uint{channel.CreatedBy}, memberIDs...)
	return nil
}

func (f *fakeChannelRepo) GetChannelByID(id uint) (*models.Channel, error) {
	ch, ok := f.channels[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return ch, nil
}

func (f *fakeChannelRepo) GetChannelsForUser(userID uint) ([]models.Channel, error) {
	var out []models.Channel
	for id, ch := range f.channels {
		for _, m := range f.members[id] {
			if m == userID {
				out = append(out, *ch)
				break
			}
		}
	}
	return out, nil
}

func (f *fakeChannelRepo) GetMemberIDs(channelID uint) ([]uint, error) {
	return f.members[channelID], nil
}

func (f *fakeChannelRepo) CountMembers(channelID uint) (int64, error) {
	return int64(len(f.members[channelID])), nil
}

func (f *fakeChannelRepo) IsMember(channelID, userID uint) (bool, error) {
	for _, m := range f.members[channelID] {
		if m == userID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeChannelRepo) AddMember(channelID, userID uint) error {
	f.members[channelID] = append(f.members[channelID], userID)
	return nil
}

type fakeThreadRepo struct {
	threads map[uint]*models.DirectMessageThread
	nextID  uint
}

func newFakeThreadRepo() *fakeThreadRepo {
	return &fakeThreadRepo{threads: map[uint]*models.DirectMessageThread{}, nextID: 1}
}

func (f *fakeThreadRepo) addThread(id, a, b uint) {
	if a > b {
		a, b = b, a
	}
	f.threads[id] = &models.DirectMessageThread{ID: id, User1ID: a, User2ID: b}
}

func (f *fakeThreadRepo) GetOrCreateThread(userA, userB uint) (*models.DirectMessageThread, error) {
	if userA > userB {
		userA, userB = userB, userA
	}
	for _, t := range f.threads {
		if t.User1ID == userA && t.User2ID == userB {
			return t, nil
		}
	}
	t := &models.DirectMessageThread{ID: f.nextID, User1ID: userA, User2ID: userB}
	f.nextID++
	f.threads[t.ID] = t
	return t, nil
}

func (f *fakeThreadRepo) GetThreadByID(id uint) (*models.DirectMessageThread, error) {
	t, ok := f.threads[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return t, nil
}

func (f *fakeThreadRepo) GetThreadsForUser(userID uint) ([]models.DirectMessageThread, error) {
	var out []models.DirectMessageThread
	for _, t := range f.threads {
		if t.HasParticipant(userID) {
			out = append(out, *t)
		}
	}
	return out, nil
}

type fakeMessageRepo struct {
	messages map[string]*models.Message
	order    []string
}

func newFakeMessageRepo() *fakeMessageRepo {
	return &fakeMessageRepo{messages: map[string]*models.Message{}}
}

func (f *fakeMessageRepo) CreateMessage(ctx context.Context, m *models.Message) error {
	m.ID = primitive.NewObjectID()
	m.CreatedAt = time.Now()
	m.UpdatedAt = m.CreatedAt
	f.messages[m.ID.Hex()] = m
	f.order = append(f.order, m.ID.Hex())
	return nil
}

func (f *fakeMessageRepo) GetMessageByID(ctx context.Context, id string) (*models.Message, error) {
	m, ok := f.messages[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *m
	return &clone, nil
}

func (f *fakeMessageRepo) GetChannelMessages(ctx context.Context, channelID uint, limit int64) ([]models.Message, error) {
	var out []models.Message
	for _, id := range f.order {
		m := f.messages[id]
		if m.ChannelID != nil && *m.ChannelID == channelID {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (f *fakeMessageRepo) GetThreadMessages(ctx context.Context, threadID uint, limit int64) ([]models.Message, error) {
	var out []models.Message
	for _, id := range f.order {
		m := f.messages[id]
		if m.ThreadID != nil && *m.ThreadID == threadID {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (f *fakeMessageRepo) GetMessagesByIDs(ctx context.Context, ids []string) ([]models.Message, error) {
	var out []models.Message
	for _, id := range ids {
		if m, ok := f.messages[id]; ok {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (f *fakeMessageRepo) UpdateContent(ctx context.Context, id, content string) error {
	m, ok := f.messages[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	m.Content = content
	m.IsEdited = true
	return nil
}

func (f *fakeMessageRepo) SoftDelete(ctx context.Context, id string) error {
	m, ok := f.messages[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	m.Content = ""
	m.IsDeleted = true
	return nil
}

func (f *fakeMessageRepo) SetPinned(ctx context.Context, id string, pinned bool) error {
	m, ok := f.messages[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	m.IsPinned = pinned
	return nil
}

type receiptKey struct {
	messageID   string
	recipientID uint
}

type fakeReceiptRepo struct {
	receipts map[receiptKey]*models.MessageReceipt
}

func newFakeReceiptRepo() *fakeReceiptRepo {
	return &fakeReceiptRepo{receipts: map[receiptKey]*models.MessageReceipt{}}
}

func (f *fakeReceiptRepo) get(messageID string, recipientID uint) *models.MessageReceipt {
	return f.receipts[receiptKey{messageID, recipientID}]
}

func (f *fakeReceiptRepo) CreateReceipts(receipts []models.MessageReceipt) error {
	for i := range receipts {
		r := receipts[i]
		f.receipts[receiptKey{r.MessageID, r.RecipientID}] = &r
	}
	return nil
}

func (f *fakeReceiptRepo) MarkAllDelivered(recipientID uint) error {
	now := time.Now()
	for _, r := range f.receipts {
		if r.RecipientID == recipientID && models.CanAdvance(r.Status, models.StatusDelivered) {
			r.Status = models.StatusDelivered
			r.DeliveredAt = &now
		}
	}
	return nil
}

func (f *fakeReceiptRepo) MarkRead(messageIDs []string, recipientID uint) error {
	now := time.Now()
	for _, id := range messageIDs {
		r := f.receipts[receiptKey{id, recipientID}]
		if r == nil || !models.CanAdvance(r.Status, models.StatusRead) {
			continue
		}
		r.Status = models.StatusRead
		r.ReadAt = &now
		if r.DeliveredAt == nil {
			r.DeliveredAt = &now
		}
	}
	return nil
}

func (f *fakeReceiptRepo) GetByMessageIDs(messageIDs []string) ([]models.MessageReceipt, error) {
	var out []models.MessageReceipt
	for _, id := range messageIDs {
		for _, r := range f.receipts {
			if r.MessageID == id {
				out = append(out, *r)
			}
		}
	}
	return out, nil
}

func (f *fakeReceiptRepo) GetUnreadSince(recipientID uint, since time.Time) ([]models.MessageReceipt, error) {
	var out []models.MessageReceipt
	for _, r := range f.receipts {
		if r.RecipientID == recipientID && r.Status != models.StatusRead && !r.CreatedAt.Before(since) {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeReceiptRepo) CountUnreadInChannel(channelID, recipientID uint) (int64, error) {
	var n int64
	for _, r := range f.receipts {
		if r.ChannelID != nil && *r.ChannelID == channelID && r.RecipientID == recipientID && r.Status != models.StatusRead {
			n++
		}
	}
	return n, nil
}

func (f *fakeReceiptRepo) CountUnreadInThread(threadID, recipientID uint) (int64, error) {
	var n int64
	for _, r := range f.receipts {
		if r.ThreadID != nil && *r.ThreadID == threadID && r.RecipientID == recipientID && r.Status != models.StatusRead {
			n++
		}
	}
	return n, nil
}

type reactionKey struct {
	messageID string
	userID    uint
	emoji     string
}

type fakeReactionRepo struct {
	reactions map[reactionKey]*models.Reaction
}

func newFakeReactionRepo() *fakeReactionRepo {
	return &fakeReactionRepo{reactions: map[reactionKey]*models.Reaction{}}
}

func (f *fakeReactionRepo) GetReaction(messageID string, userID uint, emoji string) (*models.Reaction, error) {
	r, ok := f.reactions[reactionKey{messageID, userID, emoji}]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return r, nil
}

func (f *fakeReactionRepo) CreateReaction(r *models.Reaction) error {
	f.reactions[reactionKey{r.MessageID, r.UserID, r.Emoji}] = r
	return nil
}

func (f *fakeReactionRepo) DeleteReaction(messageID string, userID uint, emoji string) error {
	delete(f.reactions, reactionKey{messageID, userID, emoji})
	return nil
}

func (f *fakeReactionRepo) GetByMessageIDs(messageIDs []string) ([]models.Reaction, error) {
	var out []models.Reaction
	for _, id := range messageIDs {
		for _, r := range f.reactions {
			if r.MessageID == id {
				out = append(out, *r)
			}
		}
	}
	return out, nil
}

type fakeUserRepo struct {
	users map[uint]*models.User
}

func newFakeUserRepo(ids ...uint) *fakeUserRepo {
	f := &fakeUserRepo{users: map[uint]*models.User{}}
	for _, id := range ids {
		f.users[id] = &models.User{ID: id, Name: "user"}
	}
	return f
}

func (f *fakeUserRepo) GetUserByID(id uint) (*models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return u, nil
}

func (f *fakeUserRepo) GetUsers() ([]models.User, error) {
	var out []models.User
	for _, u := range f.users {
		out = append(out, *u)
	}
	return out, nil
}

func (f *fakeUserRepo) GetUsersByIDs(ids []uint) ([]models.User, error) {
	var out []models.User
	for _, id := range ids {
		if u, ok := f.users[id]; ok {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (f *fakeUserRepo) SearchUsers(query string) ([]models.User, error) {
	return f.GetUsers()
}

type fakeNotificationRepo struct {
	created []*models.Notification
}

func newFakeNotificationRepo() *fakeNotificationRepo { return &fakeNotificationRepo{} }

func (f *fakeNotificationRepo) CreateNotification(n *models.Notification) error {
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	f.created = append(f.created, n)
	return nil
}

func (f *fakeNotificationRepo) HasRecentForPair(recipientID, senderID uint, entityType, entityID string, window time.Duration) (bool, error) {
	cutoff := time.Now().Add(-window)
	for _, n := range f.created {
		if n.RecipientID == recipientID && n.RelatedUserID != nil && *n.RelatedUserID == senderID &&
			n.EntityType == entityType && n.EntityID == entityID && n.CreatedAt.After(cutoff) {
			return true, nil
		}
	}
	return false, nil
}

// The remaining NotificationRepository methods are unused by the chat
// service; they exist to satisfy the interface.

func (f *fakeNotificationRepo) GetByRecipientID(uint, repositories.NotificationListFilter) ([]models.Notification, int64, error) {
	return nil, 0, nil
}

func (f *fakeNotificationRepo) GetGrouped(uint) ([]models.Notification, []models.Notification, []models.Notification, []models.Notification, error) {
	return nil, nil, nil, nil, nil
}

func (f *fakeNotificationRepo) GetUnreadCount(uint) (int64, error) { return 0, nil }
func (f *fakeNotificationRepo) MarkAsRead(uint, uint) error        { return nil }
func (f *fakeNotificationRepo) MarkAllAsRead(uint) error           { return nil }
func (f *fakeNotificationRepo) Delete(uint, uint) error            { return nil }
func (f *fakeNotificationRepo) DeleteRead(uint) error              { return nil }
func (f *fakeNotificationRepo) DeleteAll(uint) error               { return nil }
