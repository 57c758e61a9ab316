package aggregator

import (
	"encoding/json"
	"time"
)

// SourceKind tags which source produced a feed entry. The tag doubles
// as the id prefix, which is what makes ids unique across sources.
type SourceKind string

const (
	SourceReminder     SourceKind = "reminder"
	SourceLeadSchedule SourceKind = "schedule"
	SourceTaskAssigned SourceKind = "task"
	SourceTaskDue      SourceKind = "task_due"
	SourceProject      SourceKind = "project"
	SourceCustomer     SourceKind = "customer"
	SourcePayment      SourceKind = "payment"
	SourceRecurring    SourceKind = "recurring"
	SourceChat         SourceKind = "chat"
)

// FeedID is the composite identity of a synthetic feed entry. Two
// successive aggregation runs over unchanged data produce identical
// ids, so clients can diff snapshots without false change signals.
type FeedID struct {
	Source  SourceKind
	LocalID string
}

func (id FeedID) String() string {
	return string(id.Source) + "_" + id.LocalID
}

// MarshalJSON renders the id in its wire form, "{source}_{local_id}".
func (id FeedID) MarshalJSON() ([]byte, error) {
	return json.Marshal(id.String())
}

// FeedNotification is a synthetic feed entry composed on read from a
// source table. Never persisted; IsRead is always false here because
// read state exists only on the durable notification table.
type FeedNotification struct {
	ID            FeedID     `json:"id"`
	Type          string     `json:"type"`
	Title         string     `json:"title"`
	Message       string     `json:"message"`
	EntityType    string     `json:"entity_type"`
	EntityID      string     `json:"entity_id"`
	RelatedUserID *uint      `json:"related_user_id,omitempty"`
	Priority      string     `json:"priority"`
	DueDate       *time.Time `json:"due_date,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	IsRead        bool       `json:"is_read"`
}
