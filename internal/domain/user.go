package domain

import "time"

type UserRole string

const (
	UserRoleRenter UserRole = "renter"
	UserRoleOwner  UserRole = "owner"
	UserRoleAdmin  UserRole = "admin"
)

type RegistrationStatus string

const (
	RegistrationStatusPending  RegistrationStatus = "pending"
	RegistrationStatusApproved RegistrationStatus = "approved"
	RegistrationStatusRejected RegistrationStatus = "rejected"
)

type OTPPurpose string

const (
	OTPPurposeEmailVerify    OTPPurpose = "email_verify"
	OTPPurposePasswordReset  OTPPurpose = "password_reset"
	OTPPurposePasswordChange OTPPurpose = "password_change"
)

type User struct {
	ID                 int32              `json:"id"`
	Email              string             `json:"email"`
	Phone              string             `json:"phone"`
	PasswordHash       string             `json:"-"`
	Role               UserRole           `json:"role"`
	FirstName          string             `json:"firstName"`
	LastName           string             `json:"lastName"`
	CompanyName        string             `json:"companyName,omitempty"`
	Address            string             `json:"address,omitempty"`
	City               string             `json:"city,omitempty"`
	State              string             `json:"state,omitempty"`
	Country            string             `json:"country,omitempty"`
	PostalCode         string             `json:"postalCode,omitempty"`
	Latitude           *float64           `json:"latitude,omitempty"`
	Longitude          *float64           `json:"longitude,omitempty"`
	CNICNumber         string             `json:"cnicNumber,omitempty"`
	CNICFrontImage     string             `json:"cnicFrontImage,omitempty"`
	CNICBackImage      string             `json:"cnicBackImage,omitempty"`
	ProfileImage       string             `json:"profileImage,omitempty"`
	IsVerified         bool               `json:"isVerified"`
	IsActive           bool               `json:"isActive"`
	EmailVerified      bool               `json:"emailVerified"`
	PhoneVerified      bool               `json:"phoneVerified"`
	RegistrationStatus RegistrationStatus `json:"registrationStatus"`
	RejectionReason    string             `json:"rejectionReason,omitempty"`
	VerificationNotes  string             `json:"verificationNotes,omitempty"`
	ApprovedBy         *int32             `json:"approvedBy,omitempty"`
	ApprovedAt         *time.Time         `json:"approvedAt,omitempty"`
	OTPCode            string             `json:"-"`
	OTPExpiresAt       *time.Time         `json:"-"`
	OTPPurpose         OTPPurpose         `json:"-"`
	CreatedAt          time.Time          `json:"createdAt"`
	UpdatedAt          time.Time          `json:"updatedAt"`
}

// FullName is used in emails and notification messages.
func (u *User) FullName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}
