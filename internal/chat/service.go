package chat

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/arafat90/clientflow/backend/internal/models"
	"github.com/arafat90/clientflow/backend/internal/repositories"
	"gorm.io/gorm"
)

// MessageNotifyWindow is the suppression window for message_received
// notifications: while a conversation pair has a notification younger
// than this, new messages in the same pair do not write another one.
const MessageNotifyWindow = 5 * time.Minute

// Service implements the message store, the per-recipient delivery
// state machine, reactions and pins over the channel/thread/message
// repositories. All delivery transitions happen as side effects of
// list fetches; there is no explicit mark-as-read call.
type Service struct {
	channels      repositories.ChannelRepository
	threads       repositories.ThreadRepository
	messages      repositories.MessageRepository
	receipts      repositories.ReceiptRepository
	reactions     repositories.ReactionRepository
	users         repositories.UserRepository
	notifications repositories.NotificationRepository
}

// NewService creates a new chat Service
func NewService(
	channels repositories.ChannelRepository,
	threads repositories.ThreadRepository,
	messages repositories.MessageRepository,
	receipts repositories.ReceiptRepository,
	reactions repositories.ReactionRepository,
	users repositories.UserRepository,
	notifications repositories.NotificationRepository,
) *Service {
	return &Service{
		channels:      channels,
		threads:       threads,
		messages:      messages,
		receipts:      receipts,
		reactions:     reactions,
		users:         users,
		notifications: notifications,
	}
}

// recipients resolves every implicit recipient of a message posted by
// authorID into ref: all other channel members, or the DM peer. It
// also enforces that the author belongs to the conversation.
func (s *Service) recipients(ref ConversationRef, authorID uint) ([]uint, error) {
	switch ref.Kind {
	case KindChannel:
		member, err := s.channels.IsMember(ref.ID, authorID)
		if err != nil {
			return nil, s.translate(err)
		}
		if !member {
			return nil, fmt.Errorf("%w: not a channel member", ErrForbidden)
		}
		memberIDs, err := s.channels.GetMemberIDs(ref.ID)
		if err != nil {
			return nil, err
		}
		recipients := make([]uint, 0, len(memberIDs))
		for _, id := range memberIDs {
			if id != authorID {
				recipients = append(recipients, id)
			}
		}
		return recipients, nil
	case KindDirect:
		thread, err := s.threads.GetThreadByID(ref.ID)
		if err != nil {
			return nil, s.translate(err)
		}
		peer := thread.PeerOf(authorID)
		if peer == 0 {
			return nil, fmt.Errorf("%w: not a thread participant", ErrForbidden)
		}
		return []uint{peer}, nil
	}
	return nil, fmt.Errorf("%w: unknown conversation kind %q", ErrValidation, ref.Kind)
}

// ensureParticipant verifies the viewer belongs to the conversation.
func (s *Service) ensureParticipant(ref ConversationRef, userID uint) error {
	switch ref.Kind {
	case KindChannel:
		if _, err := s.channels.GetChannelByID(ref.ID); err != nil {
			return s.translate(err)
		}
		member, err := s.channels.IsMember(ref.ID, userID)
		if err != nil {
			return err
		}
		if !member {
			return fmt.Errorf("%w: not a channel member", ErrForbidden)
		}
		return nil
	case KindDirect:
		thread, err := s.threads.GetThreadByID(ref.ID)
		if err != nil {
			return s.translate(err)
		}
		if !thread.HasParticipant(userID) {
			return fmt.Errorf("%w: not a thread participant", ErrForbidden)
		}
		return nil
	}
	return fmt.Errorf("%w: unknown conversation kind %q", ErrValidation, ref.Kind)
}

// PostMessage creates a message in the conversation, fans out "sent"
// receipts for every recipient, and writes throttled message_received
// notifications. At least one of content and attachments is required.
func (s *Service) PostMessage(ctx context.Context, ref ConversationRef, authorID uint, content string, attachments []models.Attachment) (*models.MessageView, error) {
	content = strings.TrimSpace(content)
	if content == "" && len(attachments) == 0 {
		return nil, fmt.Errorf("%w: message needs content or an attachment", ErrValidation)
	}

	recipients, err := s.recipients(ref, authorID)
	if err != nil {
		return nil, err
	}

	message := &models.Message{
		AuthorID:    authorID,
		Content:     content,
		Attachments: attachments,
	}
	switch ref.Kind {
	case KindChannel:
		id := ref.ID
		message.ChannelID = &id
	case KindDirect:
		id := ref.ID
		message.ThreadID = &id
	}

	if err := s.messages.CreateMessage(ctx, message); err != nil {
		return nil, err
	}

	// Receipt rows are created atomically sentward with the message
	// from the client's point of view; a failure here is a hard error
	// since the state machine depends on the rows existing.
	receipts := make([]models.MessageReceipt, 0, len(recipients))
	for _, recipientID := range recipients {
		receipts = append(receipts, models.MessageReceipt{
			MessageID:   message.ID.Hex(),
			RecipientID: recipientID,
			ChannelID:   message.ChannelID,
			ThreadID:    message.ThreadID,
			AuthorID:    authorID,
			Status:      models.StatusSent,
			CreatedAt:   message.CreatedAt,
		})
	}
	if err := s.receipts.CreateReceipts(receipts); err != nil {
		return nil, err
	}

	s.notifyRecipients(ref, message, recipients)

	view := s.viewForAuthor(message)
	return &view, nil
}

// notifyRecipients writes one persisted message_received notification
// per recipient unless the (conversation, sender, recipient) pair was
// already notified inside the window. Best effort: notification
// failures never fail the post.
func (s *Service) notifyRecipients(ref ConversationRef, message *models.Message, recipients []uint) {
	entityID := strconv.FormatUint(uint64(ref.ID), 10)
	title := "New message"
	if ref.Kind == KindDirect {
		title = "New direct message"
	}
	body := message.Content
	if body == "" {
		body = "Sent an attachment"
	}
	if len(body) > 120 {
		body = body[:120]
	}

	authorID := message.AuthorID
	for _, recipientID := range recipients {
		recent, err := s.notifications.HasRecentForPair(recipientID, authorID, string(ref.Kind), entityID, MessageNotifyWindow)
		if err != nil {
			log.Printf("chat: notification dedup check failed for user %d: %v", recipientID, err)
			continue
		}
		if recent {
			continue
		}
		n := &models.Notification{
			RecipientID:   recipientID,
			Type:          models.NotifTypeMessageReceived,
			Title:         title,
			Message:       body,
			EntityType:    string(ref.Kind),
			EntityID:      entityID,
			RelatedUserID: &authorID,
			Priority:      models.PriorityMedium,
		}
		if err := s.notifications.CreateNotification(n); err != nil {
			log.Printf("chat: failed to write message notification for user %d: %v", recipientID, err)
		}
	}
}

// ListMessages returns the conversation's messages oldest first and,
// as a side effect, advances the viewer's delivery state to "read" for
// every listed message authored by someone else. Listing is the read
// acknowledgement; no separate mark-as-read call exists.
func (s *Service) ListMessages(ctx context.Context, ref ConversationRef, viewerID uint, limit int64) ([]models.MessageView, error) {
	if err := s.ensureParticipant(ref, viewerID); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	var (
		messages []models.Message
		err      error
	)
	switch ref.Kind {
	case KindChannel:
		messages, err = s.messages.GetChannelMessages(ctx, ref.ID, limit)
	case KindDirect:
		messages, err = s.messages.GetThreadMessages(ctx, ref.ID, limit)
	}
	if err != nil {
		return nil, err
	}

	// The viewer has this conversation open, so the fetch implies read
	// for everything it returns. The repository only upgrades states,
	// so repeated polls and concurrent viewers are safe.
	var toRead []string
	for _, m := range messages {
		if m.AuthorID != viewerID {
			toRead = append(toRead, m.ID.Hex())
		}
	}
	if err := s.receipts.MarkRead(toRead, viewerID); err != nil {
		return nil, err
	}

	return s.buildViews(ctx, messages, viewerID)
}

// EditMessage replaces the content of the caller's own message.
func (s *Service) EditMessage(ctx context.Context, messageID string, editorID uint, content string) (*models.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("%w: content is required", ErrValidation)
	}

	message, err := s.messages.GetMessageByID(ctx, messageID)
	if err != nil {
		return nil, s.translate(err)
	}
	if message.AuthorID != editorID {
		return nil, fmt.Errorf("%w: only the author can edit a message", ErrForbidden)
	}
	if message.IsDeleted {
		return nil, fmt.Errorf("%w: message was deleted", ErrNotFound)
	}

	if err := s.messages.UpdateContent(ctx, messageID, content); err != nil {
		return nil, s.translate(err)
	}
	message.Content = content
	message.IsEdited = true
	return message, nil
}

// DeleteMessage soft-deletes the caller's own message. Reactions and
// delivery state on the tombstone remain queryable.
func (s *Service) DeleteMessage(ctx context.Context, messageID string, callerID uint) error {
	message, err := s.messages.GetMessageByID(ctx, messageID)
	if err != nil {
		return s.translate(err)
	}
	if message.AuthorID != callerID {
		return fmt.Errorf("%w: only the author can delete a message", ErrForbidden)
	}
	return s.translate(s.messages.SoftDelete(ctx, messageID))
}

// Pin pins a message within its conversation. Pinning is idempotent;
// a message outside the referenced conversation is NotFound.
func (s *Service) Pin(ctx context.Context, messageID string, ref ConversationRef, callerID uint) error {
	return s.setPinned(ctx, messageID, ref, callerID, true)
}

// Unpin clears the pin. Unpinning an unpinned message is a no-op.
func (s *Service) Unpin(ctx context.Context, messageID string, ref ConversationRef, callerID uint) error {
	return s.setPinned(ctx, messageID, ref, callerID, false)
}

func (s *Service) setPinned(ctx context.Context, messageID string, ref ConversationRef, callerID uint, pinned bool) error {
	if err := s.ensureParticipant(ref, callerID); err != nil {
		return err
	}
	message, err := s.messages.GetMessageByID(ctx, messageID)
	if err != nil {
		return s.translate(err)
	}
	if !messageInConversation(message, ref) {
		return fmt.Errorf("%w: message is not in %s", ErrNotFound, ref)
	}
	if message.IsPinned == pinned {
		return nil
	}
	return s.translate(s.messages.SetPinned(ctx, messageID, pinned))
}

func messageInConversation(m *models.Message, ref ConversationRef) bool {
	switch ref.Kind {
	case KindChannel:
		return m.ChannelID != nil && *m.ChannelID == ref.ID
	case KindDirect:
		return m.ThreadID != nil && *m.ThreadID == ref.ID
	}
	return false
}

// ToggleReaction flips the (message, user, emoji) tuple: present rows
// are removed, absent ones created. Two identical toggles restore the
// original state. Returns whether the reaction now exists plus the
// message's refreshed reaction groups.
func (s *Service) ToggleReaction(ctx context.Context, messageID string, userID uint, emoji string) (bool, []models.ReactionGroup, error) {
	emoji = strings.TrimSpace(emoji)
	if emoji == "" {
		return false, nil, fmt.Errorf("%w: emoji is required", ErrValidation)
	}

	if _, err := s.messages.GetMessageByID(ctx, messageID); err != nil {
		return false, nil, s.translate(err)
	}

	added := false
	_, err := s.reactions.GetReaction(messageID, userID, emoji)
	switch {
	case err == nil:
		if err := s.reactions.DeleteReaction(messageID, userID, emoji); err != nil {
			return false, nil, err
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		if err := s.reactions.CreateReaction(&models.Reaction{MessageID: messageID, UserID: userID, Emoji: emoji}); err != nil {
			return false, nil, err
		}
		added = true
	default:
		return false, nil, err
	}

	reactions, err := s.reactions.GetByMessageIDs([]string{messageID})
	if err != nil {
		return added, nil, err
	}
	groups := s.groupReactions(reactions)[messageID]
	return added, groups, nil
}

// viewForAuthor is the echo of a freshly posted message: no reactions
// yet, delivery at "sent".
func (s *Service) viewForAuthor(message *models.Message) models.MessageView {
	view := models.MessageView{
		Message:       *message,
		MessageStatus: models.StatusSent,
		Reactions:     []models.ReactionGroup{},
	}
	if author, err := s.users.GetUserByID(message.AuthorID); err == nil {
		view.Author = author.ToCompact()
	}
	return view
}

// buildViews assembles per-viewer message views: grouped reactions,
// author info, and the delivery-state fields for this viewer.
func (s *Service) buildViews(ctx context.Context, messages []models.Message, viewerID uint) ([]models.MessageView, error) {
	views := make([]models.MessageView, 0, len(messages))
	if len(messages) == 0 {
		return views, nil
	}

	ids := make([]string, len(messages))
	authorSet := make(map[uint]bool)
	for i, m := range messages {
		ids[i] = m.ID.Hex()
		authorSet[m.AuthorID] = true
	}

	receipts, err := s.receipts.GetByMessageIDs(ids)
	if err != nil {
		return nil, err
	}
	reactions, err := s.reactions.GetByMessageIDs(ids)
	if err != nil {
		return nil, err
	}

	for _, re := range reactions {
		authorSet[re.UserID] = true
	}
	authorIDs := make([]uint, 0, len(authorSet))
	for id := range authorSet {
		authorIDs = append(authorIDs, id)
	}
	users, err := s.users.GetUsersByIDs(authorIDs)
	if err != nil {
		return nil, err
	}
	userByID := make(map[uint]models.UserCompact, len(users))
	for _, u := range users {
		userByID[u.ID] = u.ToCompact()
	}

	groupsByMessage := s.groupReactionsNamed(reactions, userByID)

	// Receipts indexed two ways: the viewer's own receipt per message,
	// and the minimum recipient state for messages the viewer authored.
	viewerReceipt := make(map[string]string)
	minRecipientRank := make(map[string]int)
	for _, rc := range receipts {
		if rc.RecipientID == viewerID {
			viewerReceipt[rc.MessageID] = rc.Status
		}
		rank := models.StatusRank(rc.Status)
		if cur, ok := minRecipientRank[rc.MessageID]; !ok || rank < cur {
			minRecipientRank[rc.MessageID] = rank
		}
	}

	for _, m := range messages {
		id := m.ID.Hex()
		view := models.MessageView{
			Message:   m,
			Author:    userByID[m.AuthorID],
			Reactions: groupsByMessage[id],
		}
		if view.Reactions == nil {
			view.Reactions = []models.ReactionGroup{}
		}
		if m.AuthorID == viewerID {
			// The author sees the lowest state across recipients;
			// this fetch just advanced the viewer's own receipts.
			view.MessageStatus = statusForRank(minRecipientRank, id)
		} else {
			// MarkRead ran before this query, so the viewer's receipt
			// already reflects the read implied by the fetch itself.
			status, ok := viewerReceipt[id]
			if !ok {
				status = models.StatusRead
			}
			view.RecipientStatus = status
		}
		views = append(views, view)
	}
	return views, nil
}

func statusForRank(minRank map[string]int, messageID string) string {
	rank, ok := minRank[messageID]
	if !ok {
		return models.StatusSent
	}
	switch rank {
	case models.StatusRank(models.StatusRead):
		return models.StatusRead
	case models.StatusRank(models.StatusDelivered):
		return models.StatusDelivered
	}
	return models.StatusSent
}

// groupReactions groups reactions per message by emoji without names.
func (s *Service) groupReactions(reactions []models.Reaction) map[string][]models.ReactionGroup {
	userIDs := make([]uint, 0, len(reactions))
	seen := make(map[uint]bool)
	for _, re := range reactions {
		if !seen[re.UserID] {
			seen[re.UserID] = true
			userIDs = append(userIDs, re.UserID)
		}
	}
	userByID := make(map[uint]models.UserCompact)
	if users, err := s.users.GetUsersByIDs(userIDs); err == nil {
		for _, u := range users {
			userByID[u.ID] = u.ToCompact()
		}
	}
	return s.groupReactionsNamed(reactions, userByID)
}

func (s *Service) groupReactionsNamed(reactions []models.Reaction, userByID map[uint]models.UserCompact) map[string][]models.ReactionGroup {
	type key struct {
		messageID string
		emoji     string
	}
	order := make(map[string][]string)
	groups := make(map[key]*models.ReactionGroup)
	for _, re := range reactions {
		k := key{re.MessageID, re.Emoji}
		g, ok := groups[k]
		if !ok {
			g = &models.ReactionGroup{Emoji: re.Emoji}
			groups[k] = g
			order[re.MessageID] = append(order[re.MessageID], re.Emoji)
		}
		g.Count++
		name := userByID[re.UserID].Name
		if name == "" {
			name = fmt.Sprintf("user %d", re.UserID)
		}
		g.Users = append(g.Users, name)
	}

	result := make(map[string][]models.ReactionGroup, len(order))
	for messageID, emojis := range order {
		for _, emoji := range emojis {
			result[messageID] = append(result[messageID], *groups[key{messageID, emoji}])
		}
	}
	return result
}

// translate maps storage-layer not-found errors onto the service
// taxonomy; anything else passes through as an upstream failure.
func (s *Service) translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound), errors.Is(err, repositories.ErrMessageNotFound):
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	default:
		return err
	}
}
