package models

import "time"

// Notification priorities.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

// Notification types written by the CRM action paths and read back by
// the notification endpoints and the aggregator's dedup check.
const (
	NotifTypeReminder         = "reminder"
	NotifTypeScheduledCall    = "scheduled_call"
	NotifTypeTaskAssigned     = "task_assigned"
	NotifTypeTaskDue          = "task_due"
	NotifTypeProjectAssigned  = "project_assigned"
	NotifTypeCustomerAssigned = "customer_assigned"
	NotifTypePaymentDue       = "payment_due"
	NotifTypeMessageReceived  = "message_received"
)

// Notification is a durable, explicitly created notification row
// (PostgreSQL). Aggregated feed entries are synthesized on read and
// never stored; this table holds the ones written at action time.
type Notification struct {
	ID            uint       `json:"id" gorm:"primaryKey"`
	RecipientID   uint       `json:"recipient_id" gorm:"index"`
	Type          string     `json:"type" gorm:"size:40;index"`
	Title         string     `json:"title"`
	Message       string     `json:"message"`
	EntityType    string     `json:"entity_type" gorm:"size:30"` // task, project, customer, channel, direct_message, ...
	EntityID      string     `json:"entity_id"`
	RelatedUserID *uint      `json:"related_user_id,omitempty" gorm:"index"`
	Priority      string     `json:"priority" gorm:"size:10;default:medium"`
	DueDate       *time.Time `json:"due_date,omitempty"`
	IsRead        bool       `json:"is_read" gorm:"default:false;index"`
	ReadAt        *time.Time `json:"read_at,omitempty"`
	ExpiresAt     *time.Time `json:"expires_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at" gorm:"index"`
}

// CreateNotificationRequest defines the request body for explicit
// notification creation (used by the CRM action paths).
type CreateNotificationRequest struct {
	RecipientID   uint       `json:"recipient_id" validate:"required,min=1"`
	Type          string     `json:"type" validate:"required,max=40"`
	Title         string     `json:"title" validate:"required,max=160"`
	Message       string     `json:"message" validate:"omitempty,max=1000"`
	EntityType    string     `json:"entity_type" validate:"omitempty,max=30"`
	EntityID      string     `json:"entity_id" validate:"omitempty,max=64"`
	RelatedUserID *uint      `json:"related_user_id"`
	Priority      string     `json:"priority" validate:"omitempty,oneof=low medium high urgent"`
	DueDate       *time.Time `json:"due_date"`
	ExpiresAt     *time.Time `json:"expires_at"`
}
