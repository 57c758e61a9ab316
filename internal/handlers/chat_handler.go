package handlers

import (
	"errors"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/arafat90/clientflow/backend/internal/chat"
	"github.com/arafat90/clientflow/backend/internal/models"
	"github.com/arafat90/clientflow/backend/internal/repositories"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// ChatHandler handles channel, DM, message, reaction, pin and presence
// HTTP requests
type ChatHandler struct {
	service      *chat.Service
	channelRepo  repositories.ChannelRepository
	threadRepo   repositories.ThreadRepository
	receiptRepo  repositories.ReceiptRepository
	presenceRepo repositories.PresenceRepository
	userRepo     repositories.UserRepository
	uploadDir    string
}

// NewChatHandler creates a new ChatHandler
func NewChatHandler(
	service *chat.Service,
	channelRepo repositories.ChannelRepository,
	threadRepo repositories.ThreadRepository,
	receiptRepo repositories.ReceiptRepository,
	presenceRepo repositories.PresenceRepository,
	userRepo repositories.UserRepository,
	uploadDir string,
) *ChatHandler {
	return &ChatHandler{
		service:      service,
		channelRepo:  channelRepo,
		threadRepo:   threadRepo,
		receiptRepo:  receiptRepo,
		presenceRepo: presenceRepo,
		userRepo:     userRepo,
		uploadDir:    uploadDir,
	}
}

// RegisterChatRoutes registers chat-related routes
func (h *ChatHandler) RegisterChatRoutes(g *echo.Group) {
	g.GET("/chat/channels", h.ListChannels)
	g.POST("/chat/channels", h.CreateChannel)
	g.GET("/chat/direct-messages", h.ListThreads)
	g.POST("/chat/direct-messages", h.OpenThread)
	g.GET("/chat/users", h.GetRoster)
	g.PATCH("/chat/users/presence", h.UpdatePresence)
	g.GET("/chat/channels/:id/messages", h.ListChannelMessages)
	g.POST("/chat/channels/:id/messages", h.PostChannelMessage)
	g.GET("/chat/direct-messages/:id/messages", h.ListThreadMessages)
	g.POST("/chat/direct-messages/:id/messages", h.PostThreadMessage)
	g.PUT("/chat/messages/:id", h.EditMessage)
	g.DELETE("/chat/messages/:id", h.DeleteMessage)
	g.POST("/chat/messages/:id/reactions/toggle", h.ToggleReaction)
	g.POST("/chat/messages/:id/pin", h.PinMessage)
	g.DELETE("/chat/messages/:id/pin", h.UnpinMessage)
}

// chatError maps service errors onto the HTTP taxonomy
func chatError(err error) error {
	switch {
	case errors.Is(err, chat.ErrValidation):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, chat.ErrForbidden):
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	case errors.Is(err, chat.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}

// ListChannels returns the caller's conversation index for channels.
// Fetching the index is the delivery acknowledgement: every "sent"
// receipt of the caller advances to "delivered".
func (h *ChatHandler) ListChannels(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	if err := h.receiptRepo.MarkAllDelivered(currentUserID); err != nil {
		log.Printf("chat: failed to mark deliveries for user %d: %v", currentUserID, err)
	}

	channels, err := h.channelRepo.GetChannelsForUser(currentUserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	summaries := make([]models.ChannelSummary, 0, len(channels))
	for _, channel := range channels {
		memberCount, _ := h.channelRepo.CountMembers(channel.ID)
		unread, _ := h.receiptRepo.CountUnreadInChannel(channel.ID, currentUserID)
		summaries = append(summaries, models.ChannelSummary{
			Channel:     channel,
			MemberCount: int(memberCount),
			UnreadCount: unread,
		})
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": summaries})
}

// CreateChannel creates a channel with the caller as first member
func (h *ChatHandler) CreateChannel(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	var req models.CreateChannelRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	channel := &models.Channel{
		Name:        req.Name,
		Description: req.Description,
		IsPrivate:   req.IsPrivate,
		CreatedBy:   currentUserID,
	}
	if err := h.channelRepo.CreateChannel(channel, req.MemberIDs); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusCreated, echo.Map{"success": true, "data": channel})
}

// ListThreads returns the caller's DM thread index, enriched with peer
// presence. Fetching the index also acknowledges delivery.
func (h *ChatHandler) ListThreads(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	if err := h.receiptRepo.MarkAllDelivered(currentUserID); err != nil {
		log.Printf("chat: failed to mark deliveries for user %d: %v", currentUserID, err)
	}

	threads, err := h.threadRepo.GetThreadsForUser(currentUserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	peerIDs := make([]uint, 0, len(threads))
	for _, t := range threads {
		peerIDs = append(peerIDs, t.PeerOf(currentUserID))
	}
	peers, err := h.userRepo.GetUsersByIDs(peerIDs)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	peerByID := make(map[uint]models.UserCompact, len(peers))
	for _, p := range peers {
		peerByID[p.ID] = p.ToCompact()
	}
	statuses, err := h.presenceRepo.GetStatuses(c.Request().Context(), peerIDs)
	if err != nil {
		// Presence is advisory; degrade to offline rather than fail.
		log.Printf("chat: presence lookup failed: %v", err)
		statuses = map[uint]string{}
	}

	summaries := make([]models.ThreadSummary, 0, len(threads))
	for _, t := range threads {
		peerID := t.PeerOf(currentUserID)
		unread, _ := h.receiptRepo.CountUnreadInThread(t.ID, currentUserID)
		status, ok := statuses[peerID]
		if !ok {
			status = models.PresenceOffline
		}
		summaries = append(summaries, models.ThreadSummary{
			DirectMessageThread: t,
			Peer:                peerByID[peerID],
			PeerStatus:          status,
			UnreadCount:         unread,
		})
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": summaries})
}

// OpenThread finds or lazily creates the DM thread with another user
func (h *ChatHandler) OpenThread(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	var req models.CreateThreadRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if _, err := h.userRepo.GetUserByID(req.UserID); err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "User not found")
	}

	thread, err := h.threadRepo.GetOrCreateThread(currentUserID, req.UserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": thread})
}

// GetRoster returns every user with their live presence status
func (h *ChatHandler) GetRoster(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	users, err := h.userRepo.GetUsers()
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	ids := make([]uint, len(users))
	for i, u := range users {
		ids[i] = u.ID
	}
	statuses, err := h.presenceRepo.GetStatuses(c.Request().Context(), ids)
	if err != nil {
		log.Printf("chat: presence lookup failed: %v", err)
		statuses = map[uint]string{}
	}

	roster := make([]models.RosterEntry, 0, len(users))
	for _, u := range users {
		status, ok := statuses[u.ID]
		if !ok {
			status = models.PresenceOffline
		}
		roster = append(roster, models.RosterEntry{UserCompact: u.ToCompact(), Status: status})
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": roster})
}

// UpdatePresence upserts the caller's presence status (the 30s
// heartbeat and explicit status switches both land here)
func (h *ChatHandler) UpdatePresence(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	var req models.UpdatePresenceRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.presenceRepo.SetStatus(c.Request().Context(), currentUserID, req.Status); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data":    models.PresenceRecord{UserID: currentUserID, Status: req.Status},
	})
}

// ListChannelMessages returns a channel's messages; the fetch itself
// advances the caller's delivery state to read
func (h *ChatHandler) ListChannelMessages(c echo.Context) error {
	return h.listMessages(c, chat.KindChannel)
}

// ListThreadMessages returns a DM thread's messages; same read
// semantics as the channel listing
func (h *ChatHandler) ListThreadMessages(c echo.Context) error {
	return h.listMessages(c, chat.KindDirect)
}

func (h *ChatHandler) listMessages(c echo.Context, kind chat.ConversationKind) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	convID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid conversation ID")
	}
	limit, _ := strconv.ParseInt(c.QueryParam("limit"), 10, 64)

	ref := chat.ConversationRef{Kind: kind, ID: uint(convID)}
	views, err := h.service.ListMessages(c.Request().Context(), ref, currentUserID, limit)
	if err != nil {
		return chatError(err)
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": views})
}

// PostChannelMessage posts a message (multipart: content and/or file)
// into a channel
func (h *ChatHandler) PostChannelMessage(c echo.Context) error {
	return h.postMessage(c, chat.KindChannel)
}

// PostThreadMessage posts a message into a DM thread
func (h *ChatHandler) PostThreadMessage(c echo.Context) error {
	return h.postMessage(c, chat.KindDirect)
}

func (h *ChatHandler) postMessage(c echo.Context, kind chat.ConversationKind) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	convID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid conversation ID")
	}

	content := c.FormValue("content")

	var attachments []models.Attachment
	if file, err := c.FormFile("file"); err == nil {
		attachment, err := h.saveUpload(file)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "Failed to store attachment")
		}
		attachments = append(attachments, *attachment)
	}

	ref := chat.ConversationRef{Kind: kind, ID: uint(convID)}
	view, err := h.service.PostMessage(c.Request().Context(), ref, currentUserID, content, attachments)
	if err != nil {
		return chatError(err)
	}

	return c.JSON(http.StatusCreated, echo.Map{"success": true, "data": view})
}

// saveUpload stores an uploaded file under the upload directory with a
// collision-safe name and returns its metadata
func (h *ChatHandler) saveUpload(file *multipart.FileHeader) (*models.Attachment, error) {
	src, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	id := uuid.NewString()
	storedName := id + filepath.Ext(file.Filename)
	if err := os.MkdirAll(h.uploadDir, 0o755); err != nil {
		return nil, err
	}
	dst, err := os.Create(filepath.Join(h.uploadDir, storedName))
	if err != nil {
		return nil, err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return nil, err
	}

	return &models.Attachment{
		ID:       id,
		FileName: file.Filename,
		FilePath: "/uploads/" + storedName,
		FileSize: file.Size,
		MimeType: file.Header.Get("Content-Type"),
	}, nil
}

// EditMessage replaces the caller's own message content
func (h *ChatHandler) EditMessage(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	var req models.EditMessageRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	message, err := h.service.EditMessage(c.Request().Context(), c.Param("id"), currentUserID, req.Content)
	if err != nil {
		return chatError(err)
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": message})
}

// DeleteMessage soft-deletes the caller's own message
func (h *ChatHandler) DeleteMessage(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	if err := h.service.DeleteMessage(c.Request().Context(), c.Param("id"), currentUserID); err != nil {
		return chatError(err)
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// ToggleReaction flips the caller's (message, emoji) reaction
func (h *ChatHandler) ToggleReaction(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	var req models.ToggleReactionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	added, groups, err := h.service.ToggleReaction(c.Request().Context(), c.Param("id"), currentUserID, req.Emoji)
	if err != nil {
		return chatError(err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data":    echo.Map{"reacted": added, "reactions": groups},
	})
}

// PinMessage pins a message within the conversation named in the body
func (h *ChatHandler) PinMessage(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	var req models.PinMessageRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	ref, err := pinRef(req.ChannelID, req.DirectMessageID)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.service.Pin(c.Request().Context(), c.Param("id"), ref, currentUserID); err != nil {
		return chatError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// UnpinMessage clears a pin; the conversation comes from query params
func (h *ChatHandler) UnpinMessage(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	var channelID, threadID *uint
	if v, err := strconv.ParseUint(c.QueryParam("channel_id"), 10, 32); err == nil {
		id := uint(v)
		channelID = &id
	}
	if v, err := strconv.ParseUint(c.QueryParam("direct_message_id"), 10, 32); err == nil {
		id := uint(v)
		threadID = &id
	}
	ref, err := pinRef(channelID, threadID)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.service.Unpin(c.Request().Context(), c.Param("id"), ref, currentUserID); err != nil {
		return chatError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// pinRef resolves the mutually exclusive channel/thread reference
func pinRef(channelID, threadID *uint) (chat.ConversationRef, error) {
	switch {
	case channelID != nil && threadID != nil:
		return chat.ConversationRef{}, errors.New("channel_id and direct_message_id are mutually exclusive")
	case channelID != nil:
		return chat.ChannelRef(*channelID), nil
	case threadID != nil:
		return chat.DirectRef(*threadID), nil
	}
	return chat.ConversationRef{}, errors.New("one of channel_id or direct_message_id is required")
}
