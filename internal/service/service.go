package service

import (
	"context"
	"io"

	"equiprent-backend/internal/domain"
	"equiprent-backend/internal/repository"
	"equiprent-backend/internal/utils"
)

type RegisterInput struct {
	Email       string
	Phone       string
	Password    string
	Role        domain.UserRole
	FirstName   string
	LastName    string
	CompanyName string
	Address     string
	City        string
	State       string
	Country     string
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*domain.User, error)
	VerifyEmail(ctx context.Context, email, code string) error
	ResendOTP(ctx context.Context, email string, purpose domain.OTPPurpose) error
	Login(ctx context.Context, email, password string) (*domain.User, string, error)
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, email, code, newPassword string) error
	ChangePassword(ctx context.Context, userID int32, currentPassword, newPassword string) error
	RequestPasswordChangeOTP(ctx context.Context, userID int32) error
	ChangePasswordWithOTP(ctx context.Context, userID int32, code, newPassword string) error
	GetProfile(ctx context.Context, userID int32) (*domain.User, error)
	UpdateProfile(ctx context.Context, user *domain.User) (*domain.User, error)
	UploadProfileImage(ctx context.Context, userID int32, filename string, file io.Reader) (string, error)
	UploadCNICImages(ctx context.Context, userID int32, frontName string, front io.Reader, backName string, back io.Reader) (*domain.User, error)
	UploadCNICImagesByEmail(ctx context.Context, email, frontName string, front io.Reader, backName string, back io.Reader) (*domain.User, error)
}

type EquipmentService interface {
	Create(ctx context.Context, eq *domain.Equipment) (*domain.Equipment, error)
	Get(ctx context.Context, id int32) (*domain.Equipment, error)
	Update(ctx context.Context, id, ownerID int32, updates map[string]any) (*domain.Equipment, error)
	Delete(ctx context.Context, id, ownerID int32) error
	Search(ctx context.Context, filter repository.EquipmentFilter, page, pageSize int32) ([]domain.Equipment, int32, error)
	ListMine(ctx context.Context, ownerID int32, status string, page, pageSize int32) ([]domain.Equipment, int32, error)
	Quote(ctx context.Context, equipmentID int32, startDate, endDate string, includeOperator bool) (*utils.RentalQuote, error)

	UploadImages(ctx context.Context, equipmentID, ownerID int32, files []Upload) ([]domain.EquipmentImage, error)
	DeleteImage(ctx context.Context, imageID, equipmentID, ownerID int32) error
	SetPrimaryImage(ctx context.Context, equipmentID, ownerID, imageID int32) error

	SetAvailability(ctx context.Context, equipmentID, ownerID int32, days []domain.AvailabilityDay) error
	GetAvailability(ctx context.Context, equipmentID int32, horizonDays int32) ([]domain.AvailabilityDay, error)

	ListCategories(ctx context.Context) ([]domain.EquipmentCategory, error)
}

// Upload is one incoming multipart file.
type Upload struct {
	Filename string
	Reader   io.Reader
}

type CreateBookingInput struct {
	EquipmentID       int32
	RenterID          int32
	StartDate         string
	EndDate           string
	StartTime         string
	EndTime           string
	DurationType      domain.RentalDuration
	IncludeOperator   bool
	IncludeTransport  bool
	OperatorID        *int32
	DeliveryAddress   string
	DeliveryLatitude  *float64
	DeliveryLongitude *float64
	ProjectSiteName   string
	RenterNotes       string
}

type BookingService interface {
	Create(ctx context.Context, in CreateBookingInput) (*domain.Booking, error)
	Get(ctx context.Context, bookingID, userID int32, role domain.UserRole) (*domain.Booking, error)
	ListForRenter(ctx context.Context, renterID int32, status domain.BookingStatus, page, pageSize int32) ([]domain.Booking, int32, error)
	ListForOwner(ctx context.Context, ownerID int32, status domain.BookingStatus, page, pageSize int32) ([]domain.Booking, int32, error)
	ListForUser(ctx context.Context, userID int32, role domain.UserRole, status domain.BookingStatus, page, pageSize int32) ([]domain.Booking, int32, error)

	ChangeStatus(ctx context.Context, bookingID, userID int32, role domain.UserRole, target domain.BookingStatus, ownerNotes, reason string) (*domain.Booking, error)
	Approve(ctx context.Context, bookingID, userID int32, role domain.UserRole, ownerNotes string) (*domain.Booking, error)
	Reject(ctx context.Context, bookingID, userID int32, role domain.UserRole, reason string) (*domain.Booking, error)
	Cancel(ctx context.Context, bookingID, userID int32, role domain.UserRole, reason string) (*domain.Booking, error)
	Start(ctx context.Context, bookingID, userID int32, role domain.UserRole) (*domain.Booking, error)
	Complete(ctx context.Context, bookingID, userID int32, role domain.UserRole) (*domain.Booking, error)
}

type CreateReviewInput struct {
	BookingID  int32
	ReviewerID int32
	ReviewType domain.ReviewType
	Rating     int32
	Title      string
	Comment    string
}

type ReviewService interface {
	Create(ctx context.Context, in CreateReviewInput) (*domain.Review, error)
	ListForTarget(ctx context.Context, targetID int32, reviewType domain.ReviewType, page, pageSize int32) ([]domain.Review, int32, error)
	ListMine(ctx context.Context, reviewerID int32) ([]domain.Review, error)
}

type NotificationService interface {
	Notify(ctx context.Context, userID int32, notifType, title, message string, data map[string]string)
	List(ctx context.Context, userID int32, unreadOnly bool, page, pageSize int32) ([]domain.Notification, int32, int32, error)
	MarkAsRead(ctx context.Context, id, userID int32) error
	MarkAllAsRead(ctx context.Context, userID int32) error
	Delete(ctx context.Context, id, userID int32) error
}

type CreateChecklistInput struct {
	BookingID           int32
	Type                domain.ChecklistType
	FuelLevel           string
	HourMeterReading    *float64
	OdometerReading     *float64
	OverallCondition    string
	ExteriorCondition   string
	InteriorCondition   string
	MechanicalCondition string
	DamageNotes         string
	HasDamage           bool
	AdditionalNotes     string
	CompletedBy         int32
	Images              []Upload
}

type ChecklistService interface {
	Create(ctx context.Context, in CreateChecklistInput) (*domain.Checklist, error)
	ListByBooking(ctx context.Context, bookingID, userID int32, role domain.UserRole) ([]domain.Checklist, error)

	LogMaintenance(ctx context.Context, ownerID int32, m *domain.MaintenanceLog) (*domain.MaintenanceLog, error)
	ListMaintenance(ctx context.Context, equipmentID, ownerID int32) ([]domain.MaintenanceLog, error)
}

type LogisticsService interface {
	RequestTransport(ctx context.Context, userID int32, tr *domain.TransportRequest) (*domain.TransportRequest, error)
	ListTransport(ctx context.Context, bookingID, userID int32, role domain.UserRole) ([]domain.TransportRequest, error)
	UpdateTransport(ctx context.Context, userID int32, role domain.UserRole, tr *domain.TransportRequest) (*domain.TransportRequest, error)

	AddOperator(ctx context.Context, op *domain.Operator) (*domain.Operator, error)
	ListOperators(ctx context.Context, ownerID int32) ([]domain.Operator, error)
	UpdateOperator(ctx context.Context, op *domain.Operator) (*domain.Operator, error)
}

type DashboardStats struct {
	Users                map[domain.UserRole]int32        `json:"users"`
	PendingRegistrations int32                            `json:"pendingRegistrations"`
	Equipment            struct {
		Total    int32 `json:"total"`
		Approved int32 `json:"approved"`
		Pending  int32 `json:"pending"`
	} `json:"equipment"`
	Bookings       map[domain.BookingStatus]int32 `json:"bookings"`
	RecentBookings []domain.Booking               `json:"recentBookings"`
}

type AdminService interface {
	Dashboard(ctx context.Context) (*DashboardStats, error)
	ListUsers(ctx context.Context, filter repository.UserFilter, page, pageSize int32) ([]domain.User, int32, error)
	ListPendingRegistrations(ctx context.Context, page, pageSize int32) ([]domain.User, int32, error)
	DecideRegistration(ctx context.Context, adminID, userID int32, approved bool, reason string) (*domain.User, error)
	VerifyUser(ctx context.Context, adminID, userID int32, verified bool, notes string) (*domain.User, error)

	ListPendingEquipment(ctx context.Context, page, pageSize int32) ([]domain.Equipment, error)
	DecideEquipment(ctx context.Context, adminID, equipmentID int32, approved bool, notes string) (*domain.Equipment, error)

	ListBookings(ctx context.Context, status domain.BookingStatus, page, pageSize int32) ([]domain.Booking, int32, error)

	HideReview(ctx context.Context, adminID, reviewID int32, reason string) (*domain.Review, error)

	CreateCategory(ctx context.Context, adminID int32, cat *domain.EquipmentCategory) (*domain.EquipmentCategory, error)
	UpdateCategory(ctx context.Context, adminID int32, cat *domain.EquipmentCategory) (*domain.EquipmentCategory, error)

	ListLogs(ctx context.Context, page, pageSize int32) ([]domain.AdminLog, error)
}

type EmailService interface {
	SendOTP(ctx context.Context, email, name, code string, purpose domain.OTPPurpose) error
	SendRegistrationDecision(ctx context.Context, email, name string, approved bool, reason string) error
	SendBookingRequest(ctx context.Context, ownerEmail, ownerName, renterName, equipmentTitle, startDate, endDate string) error
	SendBookingDecision(ctx context.Context, renterEmail, renterName, equipmentTitle string, approved bool, reason string) error
	SendBookingReminder(ctx context.Context, renterEmail, renterName, equipmentTitle, startDate string) error
}
