package models

import "time"

// DirectMessageThread is an exactly-two-participant conversation,
// created lazily on first message intent. The pair is stored
// normalized (User1ID < User2ID) so each pair maps to one row.
type DirectMessageThread struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	User1ID   uint      `json:"user1_id" gorm:"uniqueIndex:idx_dm_pair"`
	User2ID   uint      `json:"user2_id" gorm:"uniqueIndex:idx_dm_pair"`
	CreatedAt time.Time `json:"created_at"`
}

// Participants reports both member ids of the thread.
func (t *DirectMessageThread) Participants() [2]uint {
	return [2]uint{t.User1ID, t.User2ID}
}

// PeerOf returns the other participant, or 0 if userID is not in the thread.
func (t *DirectMessageThread) PeerOf(userID uint) uint {
	switch userID {
	case t.User1ID:
		return t.User2ID
	case t.User2ID:
		return t.User1ID
	}
	return 0
}

// HasParticipant reports whether userID belongs to the thread.
func (t *DirectMessageThread) HasParticipant(userID uint) bool {
	return userID == t.User1ID || userID == t.User2ID
}

// CreateThreadRequest defines the request body for opening a DM thread
type CreateThreadRequest struct {
	UserID uint `json:"user_id" validate:"required,min=1"`
}

// ThreadSummary is a DM thread enriched for the conversation index.
type ThreadSummary struct {
	DirectMessageThread
	Peer        UserCompact `json:"peer"`
	PeerStatus  string      `json:"peer_status"`
	UnreadCount int64       `json:"unread_count"`
}
