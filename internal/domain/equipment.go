package domain

import "time"

type RentalDuration string

const (
	RentalDurationHourly  RentalDuration = "hourly"
	RentalDurationDaily   RentalDuration = "daily"
	RentalDurationWeekly  RentalDuration = "weekly"
	RentalDurationMonthly RentalDuration = "monthly"
)

type Equipment struct {
	ID                    int32          `json:"id"`
	OwnerID               int32          `json:"ownerId"`
	Owner                 *User          `json:"owner,omitempty"` // populated on detail fetches
	CategoryID            *int32         `json:"categoryId,omitempty"`
	CategoryName          string         `json:"categoryName,omitempty"`
	Title                 string         `json:"title"`
	Description           string         `json:"description"`
	Brand                 string         `json:"brand,omitempty"`
	Model                 string         `json:"model,omitempty"`
	ModelYear             *int32         `json:"modelYear,omitempty"`
	SerialNumber          string         `json:"serialNumber,omitempty"`
	Capacity              string         `json:"capacity,omitempty"`
	Specifications        map[string]any `json:"specifications,omitempty"`
	HourlyRate            *float64       `json:"hourlyRate,omitempty"`
	DailyRate             float64        `json:"dailyRate"`
	WeeklyRate            *float64       `json:"weeklyRate,omitempty"`
	MonthlyRate           *float64       `json:"monthlyRate,omitempty"`
	MinimumRentalDuration RentalDuration `json:"minimumRentalDuration"`
	City                  string         `json:"city"`
	Address               string         `json:"address,omitempty"`
	Latitude              *float64       `json:"latitude,omitempty"`
	Longitude             *float64       `json:"longitude,omitempty"`
	HasOperator           bool           `json:"hasOperator"`
	OperatorRatePerDay    *float64       `json:"operatorRatePerDay,omitempty"`
	HasTransportation     bool           `json:"hasTransportation"`
	TransportationDetails string         `json:"transportationDetails,omitempty"`
	AutoApproveBookings   bool           `json:"autoApproveBookings"`
	Quantity              int32          `json:"quantity"`
	RentedQuantity        int32          `json:"rentedQuantity"`
	IsAvailable           bool           `json:"isAvailable"`
	IsApproved            bool           `json:"isApproved"`
	IsActive              bool           `json:"isActive"`
	ApprovalNotes         string         `json:"approvalNotes,omitempty"`
	AverageRating         float64        `json:"averageRating"`
	Distance              *float64       `json:"distance,omitempty"` // km, set by radius searches
	PrimaryImage          string         `json:"primaryImage,omitempty"`
	AvailableQuantity     int32          `json:"availableQuantity"`
	BookingCount          int32          `json:"bookingCount,omitempty"`
	CreatedAt             time.Time      `json:"createdAt"`
	UpdatedAt             time.Time      `json:"updatedAt"`

	// Populated on detail fetches.
	Images        []EquipmentImage  `json:"images,omitempty"`
	RecentReviews []Review          `json:"recentReviews,omitempty"`
	Availability  []AvailabilityDay `json:"availability,omitempty"`
}

type EquipmentImage struct {
	ID          int32     `json:"id"`
	EquipmentID int32     `json:"equipmentId"`
	ImageURL    string    `json:"imageUrl"`
	IsPrimary   bool      `json:"isPrimary"`
	SortOrder   int32     `json:"sortOrder"`
	CreatedAt   time.Time `json:"createdAt"`
}

type EquipmentCategory struct {
	ID             int32  `json:"id"`
	Name           string `json:"name"`
	Description    string `json:"description,omitempty"`
	Icon           string `json:"icon,omitempty"`
	EquipmentCount int32  `json:"equipmentCount"`
}

// AvailabilityDay is an owner-maintained per-day calendar override.
type AvailabilityDay struct {
	EquipmentID int32  `json:"equipmentId"`
	Date        string `json:"date"` // YYYY-MM-DD
	IsAvailable bool   `json:"isAvailable"`
	Notes       string `json:"notes,omitempty"`
}

type MaintenanceLog struct {
	ID                  int32      `json:"id"`
	EquipmentID         int32      `json:"equipmentId"`
	MaintenanceType     string     `json:"maintenanceType"`
	Description         string     `json:"description"`
	PerformedBy         string     `json:"performedBy,omitempty"`
	PerformedAt         time.Time  `json:"performedAt"`
	Cost                *float64   `json:"cost,omitempty"`
	NextMaintenanceDate *time.Time `json:"nextMaintenanceDate,omitempty"`
	Notes               string     `json:"notes,omitempty"`
	CreatedAt           time.Time  `json:"createdAt"`
}
