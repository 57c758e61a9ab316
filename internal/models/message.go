package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Message is a chat message stored in MongoDB. It belongs to exactly
// one of a channel or a DM thread (never both); the owning id is a
// PostgreSQL row id carried as a plain field.
type Message struct {
	ID          primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	ChannelID   *uint              `json:"channel_id,omitempty" bson:"channel_id,omitempty"`
	ThreadID    *uint              `json:"thread_id,omitempty" bson:"thread_id,omitempty"`
	AuthorID    uint               `json:"author_id" bson:"author_id"`
	Content     string             `json:"content" bson:"content"`
	Attachments []Attachment       `json:"attachments,omitempty" bson:"attachments,omitempty"`
	IsEdited    bool               `json:"is_edited" bson:"is_edited"`
	IsDeleted   bool               `json:"is_deleted" bson:"is_deleted"`
	IsPinned    bool               `json:"is_pinned" bson:"is_pinned"`
	CreatedAt   time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at" bson:"updated_at"`
}

// Attachment is file metadata embedded in the message document. The
// bytes live under the upload directory; storage backends are an
// external concern.
type Attachment struct {
	ID       string `json:"id" bson:"id"`
	FileName string `json:"file_name" bson:"file_name"`
	FilePath string `json:"file_path" bson:"file_path"`
	FileSize int64  `json:"file_size" bson:"file_size"`
	MimeType string `json:"mime_type" bson:"mime_type"`
}

// EditMessageRequest defines the request body for editing a message
type EditMessageRequest struct {
	Content string `json:"content" validate:"required,min=1,max=4000"`
	IsDM    bool   `json:"is_dm"`
}

// PinMessageRequest references the conversation the pin applies to;
// exactly one of the two ids must be set.
type PinMessageRequest struct {
	ChannelID       *uint `json:"channel_id"`
	DirectMessageID *uint `json:"direct_message_id"`
}

// MessageView is the per-viewer JSON shape of a message: reactions
// grouped for display plus the delivery-state fields computed for the
// requesting user.
type MessageView struct {
	Message
	Author UserCompact `json:"author"`
	// For messages authored by others: the viewer's own receipt state.
	RecipientStatus string `json:"recipient_status,omitempty"`
	// For the viewer's own messages: the lowest state across recipients
	// (read only once every recipient has read).
	MessageStatus string          `json:"message_status,omitempty"`
	Reactions     []ReactionGroup `json:"reactions"`
}
