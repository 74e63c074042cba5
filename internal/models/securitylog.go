package models

import (
	"encoding/json"
	"time"
)

// SecurityLog is a write-only audit row; there is no read path in the API.
type SecurityLog struct {
	ID        string          `json:"id"`
	UserID    *int64          `json:"user_id,omitempty"`
	Action    string          `json:"action"`
	Details   json.RawMessage `json:"details"`
	IPAddress string          `json:"ip_address"`
	UserAgent string          `json:"user_agent"`
	CreatedAt time.Time       `json:"created_at"`
}
