package domain

import "time"

type ReviewType string

const (
	ReviewTypeEquipment ReviewType = "equipment"
	ReviewTypeOperator  ReviewType = "operator"
	ReviewTypeOwner     ReviewType = "owner"
)

type Review struct {
	ID           int32      `json:"id"`
	BookingID    int32      `json:"bookingId"`
	ReviewerID   int32      `json:"reviewerId"`
	ReviewType   ReviewType `json:"reviewType"`
	TargetID     int32      `json:"targetId"`
	Rating       int32      `json:"rating"` // 1..5
	Title        string     `json:"title,omitempty"`
	Comment      string     `json:"comment,omitempty"`
	IsApproved   bool       `json:"isApproved"`
	IsHidden     bool       `json:"isHidden"`
	HiddenReason string     `json:"hiddenReason,omitempty"`
	HiddenBy     *int32     `json:"hiddenBy,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`

	ReviewerFirstName string `json:"reviewerFirstName,omitempty"`
	ReviewerLastName  string `json:"reviewerLastName,omitempty"`
	ReviewerImage     string `json:"reviewerImage,omitempty"`
	EquipmentTitle    string `json:"equipmentTitle,omitempty"`
}
