package domain

import "time"

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusApproved  BookingStatus = "approved"
	BookingStatusRejected  BookingStatus = "rejected"
	BookingStatusActive    BookingStatus = "active"
	BookingStatusCompleted BookingStatus = "completed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

// IsTerminal reports whether no further transitions are defined out of s.
func (s BookingStatus) IsTerminal() bool {
	switch s {
	case BookingStatusRejected, BookingStatusCompleted, BookingStatusCancelled:
		return true
	}
	return false
}

// BookingActor is the acting party of a status transition, resolved once
// per request from the authenticated user and the booking's references.
type BookingActor string

const (
	ActorRenter BookingActor = "renter"
	ActorOwner  BookingActor = "owner"
	ActorAdmin  BookingActor = "admin"
)

type Booking struct {
	ID                 int32          `json:"id"`
	EquipmentID        int32          `json:"equipmentId"`
	RenterID           int32          `json:"renterId"`
	OwnerID            int32          `json:"ownerId"`
	OperatorID         *int32         `json:"operatorId,omitempty"`
	StartDate          string         `json:"startDate"` // YYYY-MM-DD, inclusive
	EndDate            string         `json:"endDate"`   // YYYY-MM-DD, inclusive
	StartTime          string         `json:"startTime,omitempty"`
	EndTime            string         `json:"endTime,omitempty"`
	DurationType       RentalDuration `json:"durationType"`
	TotalDays          int32          `json:"totalDays"`
	Status             BookingStatus  `json:"status"`
	ApprovedAt         *time.Time     `json:"approvedAt,omitempty"`
	StartedAt          *time.Time     `json:"startedAt,omitempty"`
	CompletedAt        *time.Time     `json:"completedAt,omitempty"`
	CancelledAt        *time.Time     `json:"cancelledAt,omitempty"`
	RejectionReason    string         `json:"rejectionReason,omitempty"`
	CancellationReason string         `json:"cancellationReason,omitempty"`
	CancelledBy        *int32         `json:"cancelledBy,omitempty"`
	IncludeOperator    bool           `json:"includeOperator"`
	IncludeTransport   bool           `json:"includeTransportation"`
	DeliveryAddress    string         `json:"deliveryAddress,omitempty"`
	DeliveryLatitude   *float64       `json:"deliveryLatitude,omitempty"`
	DeliveryLongitude  *float64       `json:"deliveryLongitude,omitempty"`
	ProjectSiteName    string         `json:"projectSiteName,omitempty"`
	RenterNotes        string         `json:"renterNotes,omitempty"`
	OwnerNotes         string         `json:"ownerNotes,omitempty"`
	CreatedAt          time.Time      `json:"createdAt"`
	UpdatedAt          time.Time      `json:"updatedAt"`

	// Join fields populated by list/detail queries.
	EquipmentTitle   string            `json:"equipmentTitle,omitempty"`
	EquipmentCity    string            `json:"equipmentCity,omitempty"`
	EquipmentImage   string            `json:"equipmentImage,omitempty"`
	RenterFirstName  string            `json:"renterFirstName,omitempty"`
	RenterLastName   string            `json:"renterLastName,omitempty"`
	RenterEmail      string            `json:"renterEmail,omitempty"`
	RenterPhone      string            `json:"renterPhone,omitempty"`
	OwnerFirstName   string            `json:"ownerFirstName,omitempty"`
	OwnerLastName    string            `json:"ownerLastName,omitempty"`
	OwnerEmail       string            `json:"ownerEmail,omitempty"`
	OwnerPhone       string            `json:"ownerPhone,omitempty"`
	OwnerCompany     string            `json:"ownerCompany,omitempty"`
	OperatorName     string            `json:"operatorName,omitempty"`
	OperatorPhone    string            `json:"operatorPhone,omitempty"`
	EquipmentImages  []EquipmentImage  `json:"equipmentImages,omitempty"`
	Checklists       []Checklist       `json:"checklists,omitempty"`
}

// TotalDaysBetween returns the inclusive day count of [start, end].
// Both dates are calendar dates; the same day counts as one.
func TotalDaysBetween(start, end time.Time) int32 {
	days := int32(end.Sub(start).Hours()/24) + 1
	if days < 1 {
		days = 1
	}
	return days
}
