package models

// Presence statuses. Advisory and heartbeat-refreshed; absence of a
// record reads as offline.
const (
	PresenceOnline  = "online"
	PresenceStandby = "standby"
	PresenceOffline = "offline"
)

// ValidPresenceStatus reports whether s is one of the known statuses.
func ValidPresenceStatus(s string) bool {
	return s == PresenceOnline || s == PresenceStandby || s == PresenceOffline
}

// UpdatePresenceRequest defines the request body for a presence update
type UpdatePresenceRequest struct {
	Status string `json:"status" validate:"required,oneof=online standby offline"`
}

// PresenceRecord is the shape returned by presence reads.
type PresenceRecord struct {
	UserID uint   `json:"user_id"`
	Status string `json:"status"`
}
