package domain

import "time"

// AdminLog records a moderation action for the audit trail.
type AdminLog struct {
	ID         int32             `json:"id"`
	AdminID    int32             `json:"adminId"`
	Action     string            `json:"action"`
	EntityType string            `json:"entityType"`
	EntityID   int32             `json:"entityId"`
	NewValues  map[string]string `json:"newValues,omitempty"`
	CreatedAt  time.Time         `json:"createdAt"`

	AdminFirstName string `json:"adminFirstName,omitempty"`
	AdminLastName  string `json:"adminLastName,omitempty"`
	AdminEmail     string `json:"adminEmail,omitempty"`
}
