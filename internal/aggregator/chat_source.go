package aggregator

import (
	"context"
	"strconv"
	"time"

	"github.com/arafat90/clientflow/backend/internal/models"
)

const (
	// chatLookback bounds how far back unread messages can surface.
	chatLookback = 24 * time.Hour
	// chatDedupWindow suppresses a (conversation, sender) pair that
	// already has a persisted notification this fresh, so a 2-second
	// poll does not re-surface the same alert.
	chatDedupWindow = 5 * time.Minute
)

// Narrow views over the chat repositories; the source only reads.
type unreadReceiptLister interface {
	GetUnreadSince(recipientID uint, since time.Time) ([]models.MessageReceipt, error)
}

type messageFetcher interface {
	GetMessagesByIDs(ctx context.Context, ids []string) ([]models.Message, error)
}

type recentPairChecker interface {
	HasRecentForPair(recipientID, senderID uint, entityType, entityID string, window time.Duration) (bool, error)
}

// ChatSource surfaces the user's unread, undeleted messages from the
// last 24 hours, minus conversation/sender pairs that were already
// alerted through the persisted notification table.
type ChatSource struct {
	receipts      unreadReceiptLister
	messages      messageFetcher
	notifications recentPairChecker
}

func NewChatSource(receipts unreadReceiptLister, messages messageFetcher, notifications recentPairChecker) *ChatSource {
	return &ChatSource{receipts: receipts, messages: messages, notifications: notifications}
}

func (s *ChatSource) Kind() SourceKind { return SourceChat }

func (s *ChatSource) AppliesTo(user *models.User) bool { return true }

func (s *ChatSource) Fetch(ctx context.Context, user *models.User) ([]FeedNotification, error) {
	receipts, err := s.receipts.GetUnreadSince(user.ID, time.Now().Add(-chatLookback))
	if err != nil {
		return nil, err
	}
	if len(receipts) == 0 {
		return nil, nil
	}

	ids := make([]string, len(receipts))
	for i, r := range receipts {
		ids[i] = r.MessageID
	}
	messages, err := s.messages.GetMessagesByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]models.Message, len(messages))
	for _, m := range messages {
		byID[m.ID.Hex()] = m
	}

	// One dedup decision per (conversation, sender) pair, cached so a
	// burst from one sender costs a single lookup.
	suppressed := make(map[convPair]bool)

	var items []FeedNotification
	for _, receipt := range receipts {
		message, ok := byID[receipt.MessageID]
		if !ok || message.IsDeleted || message.AuthorID == user.ID {
			continue
		}

		p := conversationPair(receipt)
		if _, decided := suppressed[p]; !decided {
			recent, err := s.notifications.HasRecentForPair(user.ID, p.senderID, p.entityType, p.entityID, chatDedupWindow)
			if err != nil {
				return nil, err
			}
			suppressed[p] = recent
		}
		if suppressed[p] {
			continue
		}

		items = append(items, mapChatMessage(message))
	}
	return items, nil
}

type convPair struct {
	entityType string
	entityID   string
	senderID   uint
}

func conversationPair(receipt models.MessageReceipt) convPair {
	p := convPair{senderID: receipt.AuthorID}
	if receipt.ChannelID != nil {
		p.entityType = "channel"
		p.entityID = strconv.FormatUint(uint64(*receipt.ChannelID), 10)
	} else if receipt.ThreadID != nil {
		p.entityType = "direct_message"
		p.entityID = strconv.FormatUint(uint64(*receipt.ThreadID), 10)
	}
	return p
}

func mapChatMessage(message models.Message) FeedNotification {
	authorID := message.AuthorID
	title := "New message"
	entityType := "channel"
	entityID := ""
	if message.ChannelID != nil {
		entityID = strconv.FormatUint(uint64(*message.ChannelID), 10)
	}
	if message.ThreadID != nil {
		title = "New direct message"
		entityType = "direct_message"
		entityID = strconv.FormatUint(uint64(*message.ThreadID), 10)
	}

	body := message.Content
	if body == "" {
		body = "Sent an attachment"
	}
	if len(body) > 120 {
		body = body[:120]
	}

	return FeedNotification{
		ID:            FeedID{Source: SourceChat, LocalID: message.ID.Hex()},
		Type:          models.NotifTypeMessageReceived,
		Title:         title,
		Message:       body,
		EntityType:    entityType,
		EntityID:      entityID,
		RelatedUserID: &authorID,
		Priority:      models.PriorityMedium,
		CreatedAt:     message.CreatedAt,
	}
}
