package repository

import (
	"context"
	"time"

	"equiprent-backend/internal/domain"
)

// UserFilter narrows admin user listings.
type UserFilter struct {
	Role     string
	Verified *bool
	Status   string
	Search   string
}

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id int32) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	UpdateProfile(ctx context.Context, user *domain.User) error
	UpdatePassword(ctx context.Context, userID int32, passwordHash string) error

	SetOTP(ctx context.Context, userID int32, code string, expiresAt time.Time, purpose domain.OTPPurpose) error
	MarkEmailVerified(ctx context.Context, userID int32) error
	ClearOTP(ctx context.Context, userID int32) error
	ExpireOTPCodes(ctx context.Context, now time.Time) (int64, error)

	SetProfileImage(ctx context.Context, userID int32, imageURL string) error
	SetCNICImages(ctx context.Context, userID int32, frontURL, backURL string) error

	List(ctx context.Context, filter UserFilter, page, pageSize int32) ([]domain.User, int32, error)
	ListPendingRegistrations(ctx context.Context, page, pageSize int32) ([]domain.User, int32, error)
	SetRegistrationDecision(ctx context.Context, userID, adminID int32, approved bool, reason string) (*domain.User, error)
	SetVerification(ctx context.Context, userID, adminID int32, verified bool, notes string) (*domain.User, error)

	CountByRole(ctx context.Context) (map[domain.UserRole]int32, error)
	CountPendingRegistrations(ctx context.Context) (int32, error)
}

// EquipmentFilter narrows public catalog searches.
type EquipmentFilter struct {
	CategoryID  *int32
	City        string
	MinDaily    *float64
	MaxDaily    *float64
	HasOperator bool
	Search      string
	Latitude    *float64
	Longitude   *float64
	RadiusKM    *float64
	SortBy      string
	SortOrder   string
}

type EquipmentRepository interface {
	Create(ctx context.Context, eq *domain.Equipment) error
	GetByID(ctx context.Context, id int32) (*domain.Equipment, error)
	// GetBookable returns the row only when it is approved and active,
	// with the owner joined. Booking creation depends on it.
	GetBookable(ctx context.Context, id int32) (*domain.Equipment, error)
	UpdateFields(ctx context.Context, id, ownerID int32, updates map[string]any) (*domain.Equipment, error)
	SoftDelete(ctx context.Context, id, ownerID int32) error
	IsOwnedBy(ctx context.Context, id, ownerID int32) (bool, error)

	Search(ctx context.Context, filter EquipmentFilter, page, pageSize int32) ([]domain.Equipment, int32, error)
	ListByOwner(ctx context.Context, ownerID int32, status string, page, pageSize int32) ([]domain.Equipment, int32, error)
	ListPendingApproval(ctx context.Context, page, pageSize int32) ([]domain.Equipment, error)
	SetApproval(ctx context.Context, id int32, approved bool, notes string) (*domain.Equipment, error)
	ApprovalCounts(ctx context.Context) (total, approved, pending int32, err error)

	AddImage(ctx context.Context, img *domain.EquipmentImage) error
	ListImages(ctx context.Context, equipmentID int32) ([]domain.EquipmentImage, error)
	CountImages(ctx context.Context, equipmentID int32) (int32, error)
	DeleteImage(ctx context.Context, imageID, equipmentID, ownerID int32) (string, error)
	SetPrimaryImage(ctx context.Context, equipmentID, imageID int32) error

	UpsertAvailability(ctx context.Context, days []domain.AvailabilityDay) error
	ListAvailability(ctx context.Context, equipmentID int32, horizonDays int32) ([]domain.AvailabilityDay, error)

	ListCategories(ctx context.Context) ([]domain.EquipmentCategory, error)
	CreateCategory(ctx context.Context, cat *domain.EquipmentCategory) error
	UpdateCategory(ctx context.Context, cat *domain.EquipmentCategory) error
}

// BookingFilter narrows booking listings. Zero id fields are ignored.
type BookingFilter struct {
	RenterID int32
	OwnerID  int32
	Status   domain.BookingStatus
}

// StatusChange carries everything a booking status transition writes.
type StatusChange struct {
	Status             domain.BookingStatus
	PrevStatus         domain.BookingStatus
	RejectionReason    string
	CancellationReason string
	CancelledBy        *int32
	OwnerNotes         string
}

type BookingRepository interface {
	// Create runs the availability re-check, the date-overlap conflict
	// check, and the insert inside one transaction holding a row lock on
	// the equipment row. Returns domain.ErrConflict-wrapped errors when
	// the checks fail.
	Create(ctx context.Context, b *domain.Booking) error
	GetByID(ctx context.Context, id int32) (*domain.Booking, error)
	GetDetail(ctx context.Context, id int32) (*domain.Booking, error)
	List(ctx context.Context, filter BookingFilter, page, pageSize int32) ([]domain.Booking, int32, error)
	// ApplyStatusChange updates the booking row and, when the transition
	// enters or leaves active, the equipment rental counters, in one
	// transaction.
	ApplyStatusChange(ctx context.Context, b *domain.Booking, change StatusChange) error

	CountByStatus(ctx context.Context) (map[domain.BookingStatus]int32, error)
	ListRecent(ctx context.Context, limit int32) ([]domain.Booking, error)
	ListApprovedStartingOn(ctx context.Context, date string) ([]domain.Booking, error)
}

// ReviewFilter narrows public review listings.
type ReviewFilter struct {
	TargetID   int32
	ReviewType domain.ReviewType
}

type ReviewRepository interface {
	Create(ctx context.Context, rv *domain.Review) error
	Exists(ctx context.Context, bookingID, reviewerID int32, reviewType domain.ReviewType) (bool, error)
	List(ctx context.Context, filter ReviewFilter, page, pageSize int32) ([]domain.Review, int32, error)
	ListByReviewer(ctx context.Context, reviewerID int32) ([]domain.Review, error)
	Hide(ctx context.Context, id, adminID int32, reason string) (*domain.Review, error)
	RecomputeEquipmentRating(ctx context.Context, equipmentID int32) error
	RecomputeOperatorRating(ctx context.Context, operatorID int32) error
}

type NotificationRepository interface {
	Create(ctx context.Context, n *domain.Notification) error
	List(ctx context.Context, userID int32, unreadOnly bool, page, pageSize int32) ([]domain.Notification, int32, error)
	UnreadCount(ctx context.Context, userID int32) (int32, error)
	MarkAsRead(ctx context.Context, id, userID int32) error
	MarkAllAsRead(ctx context.Context, userID int32) error
	Delete(ctx context.Context, id, userID int32) error
	PruneRead(ctx context.Context, olderThan time.Time) (int64, error)
}

type ChecklistRepository interface {
	Create(ctx context.Context, c *domain.Checklist) error
	Exists(ctx context.Context, bookingID int32, checklistType domain.ChecklistType) (bool, error)
	ListByBooking(ctx context.Context, bookingID int32) ([]domain.Checklist, error)
	AddImage(ctx context.Context, img *domain.ChecklistImage) error

	CreateMaintenanceLog(ctx context.Context, m *domain.MaintenanceLog) error
	ListMaintenanceLogs(ctx context.Context, equipmentID int32) ([]domain.MaintenanceLog, error)
}

type LogisticsRepository interface {
	CreateTransportRequest(ctx context.Context, tr *domain.TransportRequest) error
	ListTransportRequests(ctx context.Context, bookingID int32) ([]domain.TransportRequest, error)
	UpdateTransportRequest(ctx context.Context, tr *domain.TransportRequest) (*domain.TransportRequest, error)

	CreateOperator(ctx context.Context, op *domain.Operator) error
	GetOperator(ctx context.Context, id int32) (*domain.Operator, error)
	ListOperators(ctx context.Context, ownerID int32) ([]domain.Operator, error)
	UpdateOperator(ctx context.Context, op *domain.Operator) (*domain.Operator, error)
}

type AdminLogRepository interface {
	Create(ctx context.Context, entry *domain.AdminLog) error
	List(ctx context.Context, page, pageSize int32) ([]domain.AdminLog, error)
}
