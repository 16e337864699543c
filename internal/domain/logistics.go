package domain

import "time"

type Operator struct {
	ID              int32     `json:"id"`
	OwnerID         int32     `json:"ownerId"`
	Name            string    `json:"name"`
	Phone           string    `json:"phone"`
	Email           string    `json:"email,omitempty"`
	CNICNumber      string    `json:"cnicNumber,omitempty"`
	LicenseNumber   string    `json:"licenseNumber,omitempty"`
	ExperienceYears *int32    `json:"experienceYears,omitempty"`
	Specializations string    `json:"specializations,omitempty"`
	DailyRate       *float64  `json:"dailyRate,omitempty"`
	AverageRating   float64   `json:"averageRating"`
	IsAvailable     bool      `json:"isAvailable"`
	Notes           string    `json:"notes,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
}

type TransportRequestType string

const (
	TransportRequestDelivery TransportRequestType = "delivery"
	TransportRequestPickup   TransportRequestType = "pickup"
)

type TransportRequest struct {
	ID                  int32                `json:"id"`
	BookingID           int32                `json:"bookingId"`
	RequestType         TransportRequestType `json:"requestType"`
	PickupAddress       string               `json:"pickupAddress,omitempty"`
	PickupLatitude      *float64             `json:"pickupLatitude,omitempty"`
	PickupLongitude     *float64             `json:"pickupLongitude,omitempty"`
	DeliveryAddress     string               `json:"deliveryAddress,omitempty"`
	DeliveryLatitude    *float64             `json:"deliveryLatitude,omitempty"`
	DeliveryLongitude   *float64             `json:"deliveryLongitude,omitempty"`
	PreferredDate       string               `json:"preferredDate,omitempty"`
	PreferredTime       string               `json:"preferredTime,omitempty"`
	VehicleType         string               `json:"vehicleType,omitempty"`
	SpecialRequirements string               `json:"specialRequirements,omitempty"`
	Status              string               `json:"status"`
	DriverName          string               `json:"driverName,omitempty"`
	DriverPhone         string               `json:"driverPhone,omitempty"`
	Notes               string               `json:"notes,omitempty"`
	CreatedAt           time.Time            `json:"createdAt"`

	EquipmentTitle string `json:"equipmentTitle,omitempty"`
}
