package models

import "time"

type KeyStatus string

const (
	KeyStatusActive   KeyStatus = "active"
	KeyStatusInactive KeyStatus = "inactive"
)

// APIKeyRecord is the dashboard's view of the identity's key. Only Key is
// persisted (as Identity.APIKey); the rest is rebuilt on every mount.
type APIKeyRecord struct {
	ID       string     `json:"id"`
	Key      string     `json:"key"`
	Created  time.Time  `json:"created"`
	LastUsed *time.Time `json:"lastUsed,omitempty"`
	Requests int64      `json:"requests"`
	Status   KeyStatus  `json:"status"`
}
