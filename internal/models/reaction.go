package models

import "time"

// Reaction is a (message, user, emoji) tuple (PostgreSQL). Existence
// means "reacted"; rows are only ever created or deleted, never updated.
type Reaction struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	MessageID string    `json:"message_id" gorm:"size:24;uniqueIndex:idx_reaction_tuple"`
	UserID    uint      `json:"user_id" gorm:"uniqueIndex:idx_reaction_tuple"`
	Emoji     string    `json:"emoji" gorm:"size:32;uniqueIndex:idx_reaction_tuple"`
	CreatedAt time.Time `json:"created_at"`
}

// ToggleReactionRequest defines the request body for toggling a reaction
type ToggleReactionRequest struct {
	Emoji string `json:"emoji" validate:"required,min=1,max=32"`
	IsDM  bool   `json:"is_dm"`
}

// ReactionGroup is the display aggregation of one emoji on one message.
type ReactionGroup struct {
	Emoji string   `json:"emoji"`
	Count int      `json:"count"`
	Users []string `json:"users"`
}
