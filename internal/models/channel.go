package models

import "time"

// Channel is a named many-member conversation (PostgreSQL)
type Channel struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"size:80;not null"`
	Description string    `json:"description"`
	IsPrivate   bool      `json:"is_private" gorm:"default:false"`
	CreatedBy   uint      `json:"created_by" gorm:"index"`
	CreatedAt   time.Time `json:"created_at"`
}

// ChannelMember records a user's membership in a channel
type ChannelMember struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	ChannelID uint      `json:"channel_id" gorm:"uniqueIndex:idx_channel_member"`
	UserID    uint      `json:"user_id" gorm:"uniqueIndex:idx_channel_member;index"`
	JoinedAt  time.Time `json:"joined_at" gorm:"autoCreateTime"`
}

// CreateChannelRequest defines the request body for creating a channel
type CreateChannelRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=80"`
	Description string `json:"description" validate:"omitempty,max=500"`
	IsPrivate   bool   `json:"is_private"`
	MemberIDs   []uint `json:"member_ids" validate:"omitempty,dive,min=1"`
}

// ChannelSummary is a channel row enriched for the conversation index.
type ChannelSummary struct {
	Channel
	MemberCount int   `json:"member_count"`
	UnreadCount int64 `json:"unread_count"`
}
