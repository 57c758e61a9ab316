package models

import "time"

// Delivery states for a (message, recipient) pair. One-directional:
// sent -> delivered -> read.
const (
	StatusSent      = "sent"
	StatusDelivered = "delivered"
	StatusRead      = "read"
)

var statusRank = map[string]int{
	StatusSent:      0,
	StatusDelivered: 1,
	StatusRead:      2,
}

// StatusRank returns the ordering rank of a delivery status (-1 for
// unknown values).
func StatusRank(status string) int {
	if r, ok := statusRank[status]; ok {
		return r
	}
	return -1
}

// CanAdvance reports whether a receipt may move from current to next.
// Regressions and no-ops are both rejected.
func CanAdvance(current, next string) bool {
	return StatusRank(next) > StatusRank(current) && StatusRank(current) >= 0
}

// MessageReceipt tracks per-recipient delivery progress of one message
// (PostgreSQL). Conversation and author ids are denormalized from the
// message document so unread and notification queries stay in one store.
type MessageReceipt struct {
	ID          uint       `json:"id" gorm:"primaryKey"`
	MessageID   string     `json:"message_id" gorm:"size:24;uniqueIndex:idx_receipt_pair"`
	RecipientID uint       `json:"recipient_id" gorm:"uniqueIndex:idx_receipt_pair;index"`
	ChannelID   *uint      `json:"channel_id,omitempty" gorm:"index"`
	ThreadID    *uint      `json:"thread_id,omitempty" gorm:"index"`
	AuthorID    uint       `json:"author_id" gorm:"index"`
	Status      string     `json:"status" gorm:"size:10;default:sent;index"`
	DeliveredAt *time.Time `json:"delivered_at,omitempty"`
	ReadAt      *time.Time `json:"read_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at" gorm:"index"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
