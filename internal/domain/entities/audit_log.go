package entities

import "time"

// AuditLog records one administrative action.
type AuditLog struct {
	ID         string                 `json:"id"`
	Timestamp  time.Time              `json:"timestamp"`
	User       string                 `json:"user"`
	Action     string                 `json:"action"`
	EntityType string                 `json:"entity_type"`
	EntityID   string                 `json:"entity_id"`
	Changes    map[string]interface{} `json:"changes,omitempty"`
}
