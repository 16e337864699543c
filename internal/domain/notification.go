package domain

import "time"

type Notification struct {
	ID        int32             `json:"id"`
	UserID    int32             `json:"userId"`
	Type      string            `json:"type"` // e.g. booking_request, booking_approved, equipment_approved
	Title     string            `json:"title"`
	Message   string            `json:"message"`
	Data      map[string]string `json:"data,omitempty"`
	IsRead    bool              `json:"isRead"`
	ReadAt    *time.Time        `json:"readAt,omitempty"`
	CreatedAt time.Time         `json:"createdAt"`
}
