package domain

import "time"

type ChecklistType string

const (
	ChecklistTypePickup ChecklistType = "pickup"
	ChecklistTypeReturn ChecklistType = "return"
)

type Checklist struct {
	ID                  int32         `json:"id"`
	BookingID           int32         `json:"bookingId"`
	Type                ChecklistType `json:"type"`
	FuelLevel           string        `json:"fuelLevel,omitempty"`
	HourMeterReading    *float64      `json:"hourMeterReading,omitempty"`
	OdometerReading     *float64      `json:"odometerReading,omitempty"`
	OverallCondition    string        `json:"overallCondition,omitempty"`
	ExteriorCondition   string        `json:"exteriorCondition,omitempty"`
	InteriorCondition   string        `json:"interiorCondition,omitempty"`
	MechanicalCondition string        `json:"mechanicalCondition,omitempty"`
	DamageNotes         string        `json:"damageNotes,omitempty"`
	HasDamage           bool          `json:"hasDamage"`
	AdditionalNotes     string        `json:"additionalNotes,omitempty"`
	CompletedBy         int32         `json:"completedBy"`
	CreatedAt           time.Time     `json:"createdAt"`

	CompletedByFirstName string           `json:"completedByFirstName,omitempty"`
	CompletedByLastName  string           `json:"completedByLastName,omitempty"`
	Images               []ChecklistImage `json:"images,omitempty"`
}

type ChecklistImage struct {
	ID          int32     `json:"id"`
	ChecklistID int32     `json:"checklistId"`
	ImageURL    string    `json:"imageUrl"`
	ImageType   string    `json:"imageType,omitempty"`
	Caption     string    `json:"caption,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}
