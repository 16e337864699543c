package service

import (
	"context"
	"fmt"
	"time"

	"equiprent-backend/internal/domain"
	"equiprent-backend/internal/logger"
	"equiprent-backend/internal/repository"
)

// bookingTransitions is the full status machine: for each current status,
// the statuses it may move to and the actors allowed to move it.
var bookingTransitions = map[domain.BookingStatus]map[domain.BookingStatus][]domain.BookingActor{
	domain.BookingStatusPending: {
		domain.BookingStatusApproved:  {domain.ActorOwner, domain.ActorAdmin},
		domain.BookingStatusRejected:  {domain.ActorOwner, domain.ActorAdmin},
		domain.BookingStatusCancelled: {domain.ActorRenter, domain.ActorOwner, domain.ActorAdmin},
	},
	domain.BookingStatusApproved: {
		domain.BookingStatusActive:    {domain.ActorOwner, domain.ActorAdmin},
		domain.BookingStatusCancelled: {domain.ActorRenter, domain.ActorOwner, domain.ActorAdmin},
	},
	domain.BookingStatusActive: {
		domain.BookingStatusCompleted: {domain.ActorOwner, domain.ActorAdmin},
	},
}

type bookingService struct {
	bookingRepo repository.BookingRepository
	equipRepo   repository.EquipmentRepository
	userRepo    repository.UserRepository
	emailSvc    EmailService
	notifier    NotificationService
}

func NewBookingService(
	bookingRepo repository.BookingRepository,
	equipRepo repository.EquipmentRepository,
	userRepo repository.UserRepository,
	emailSvc EmailService,
	notifier NotificationService,
) BookingService {
	return &bookingService{
		bookingRepo: bookingRepo,
		equipRepo:   equipRepo,
		userRepo:    userRepo,
		emailSvc:    emailSvc,
		notifier:    notifier,
	}
}

func (s *bookingService) Create(ctx context.Context, in CreateBookingInput) (*domain.Booking, error) {
	start, err := time.Parse("2006-01-02", in.StartDate)
	if err != nil {
		return nil, fmt.Errorf("invalid start date: %w", domain.ErrInvalidInput)
	}
	end, err := time.Parse("2006-01-02", in.EndDate)
	if err != nil {
		return nil, fmt.Errorf("invalid end date: %w", domain.ErrInvalidInput)
	}
	today := time.Now().Truncate(24 * time.Hour)
	if start.Before(today) {
		return nil, fmt.Errorf("start date cannot be in the past: %w", domain.ErrInvalidInput)
	}
	if end.Before(start) {
		return nil, fmt.Errorf("end date cannot be before start date: %w", domain.ErrInvalidInput)
	}

	eq, err := s.equipRepo.GetBookable(ctx, in.EquipmentID)
	if err != nil {
		return nil, err
	}
	if in.IncludeOperator && !eq.HasOperator {
		return nil, fmt.Errorf("equipment does not offer an operator: %w", domain.ErrInvalidInput)
	}
	if in.IncludeTransport && !eq.HasTransportation {
		return nil, fmt.Errorf("equipment does not offer transportation: %w", domain.ErrInvalidInput)
	}

	if in.DurationType == "" {
		in.DurationType = domain.RentalDurationDaily
	}

	booking := &domain.Booking{
		EquipmentID:       in.EquipmentID,
		RenterID:          in.RenterID,
		OwnerID:           eq.OwnerID,
		OperatorID:        in.OperatorID,
		StartDate:         in.StartDate,
		EndDate:           in.EndDate,
		StartTime:         in.StartTime,
		EndTime:           in.EndTime,
		DurationType:      in.DurationType,
		TotalDays:         domain.TotalDaysBetween(start, end),
		Status:            domain.BookingStatusPending,
		IncludeOperator:   in.IncludeOperator,
		IncludeTransport:  in.IncludeTransport,
		DeliveryAddress:   in.DeliveryAddress,
		DeliveryLatitude:  in.DeliveryLatitude,
		DeliveryLongitude: in.DeliveryLongitude,
		ProjectSiteName:   in.ProjectSiteName,
		RenterNotes:       in.RenterNotes,
	}
	if eq.AutoApproveBookings {
		now := time.Now()
		booking.Status = domain.BookingStatusApproved
		booking.ApprovedAt = &now
	}

	if err := s.bookingRepo.Create(ctx, booking); err != nil {
		return nil, err
	}
	logger.Info("booking created", "bookingId", booking.ID, "equipmentId", eq.ID, "status", booking.Status)

	go s.notifyCreated(booking, eq)
	return booking, nil
}

func (s *bookingService) notifyCreated(b *domain.Booking, eq *domain.Equipment) {
	ctx := context.Background()
	renter, err := s.userRepo.GetByID(ctx, b.RenterID)
	if err != nil {
		logger.Error("load renter for booking notification", "error", err, "bookingId", b.ID)
		return
	}
	data := map[string]string{"bookingId": fmt.Sprint(b.ID), "equipmentId": fmt.Sprint(b.EquipmentID)}

	if b.Status == domain.BookingStatusApproved {
		s.notifier.Notify(ctx, b.RenterID, "booking_approved", "Booking confirmed",
			fmt.Sprintf("Your booking for %q was automatically confirmed.", eq.Title), data)
		s.notifier.Notify(ctx, b.OwnerID, "booking_request", "New confirmed booking",
			fmt.Sprintf("%s booked %q from %s to %s.", renter.FullName(), eq.Title, b.StartDate, b.EndDate), data)
		return
	}

	s.notifier.Notify(ctx, b.OwnerID, "booking_request", "New booking request",
		fmt.Sprintf("%s wants to rent %q from %s to %s.", renter.FullName(), eq.Title, b.StartDate, b.EndDate), data)
	if eq.Owner != nil {
		if err := s.emailSvc.SendBookingRequest(ctx, eq.Owner.Email, eq.Owner.FirstName,
			renter.FullName(), eq.Title, b.StartDate, b.EndDate); err != nil {
			logger.Error("send booking request email", "error", err, "bookingId", b.ID)
		}
	}
}

func (s *bookingService) Get(ctx context.Context, bookingID, userID int32, role domain.UserRole) (*domain.Booking, error) {
	booking, err := s.bookingRepo.GetDetail(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if _, err := resolveActor(booking, userID, role); err != nil {
		return nil, err
	}
	images, err := s.equipRepo.ListImages(ctx, booking.EquipmentID)
	if err == nil {
		booking.EquipmentImages = images
	}
	return booking, nil
}

func (s *bookingService) ListForRenter(ctx context.Context, renterID int32, status domain.BookingStatus, page, pageSize int32) ([]domain.Booking, int32, error) {
	return s.bookingRepo.List(ctx, repository.BookingFilter{RenterID: renterID, Status: status}, page, pageSize)
}

func (s *bookingService) ListForOwner(ctx context.Context, ownerID int32, status domain.BookingStatus, page, pageSize int32) ([]domain.Booking, int32, error) {
	return s.bookingRepo.List(ctx, repository.BookingFilter{OwnerID: ownerID, Status: status}, page, pageSize)
}

// ListForUser scopes the listing by the caller's role: renters see their
// rentals, owners their lending, admins everything.
func (s *bookingService) ListForUser(ctx context.Context, userID int32, role domain.UserRole, status domain.BookingStatus, page, pageSize int32) ([]domain.Booking, int32, error) {
	filter := repository.BookingFilter{Status: status}
	switch role {
	case domain.UserRoleAdmin:
	case domain.UserRoleOwner:
		filter.OwnerID = userID
	default:
		filter.RenterID = userID
	}
	return s.bookingRepo.List(ctx, filter, page, pageSize)
}

// resolveActor maps the authenticated user onto the booking's parties.
// Admin wins over ownership so admin actions are logged as admin.
func resolveActor(b *domain.Booking, userID int32, role domain.UserRole) (domain.BookingActor, error) {
	switch {
	case role == domain.UserRoleAdmin:
		return domain.ActorAdmin, nil
	case userID == b.OwnerID:
		return domain.ActorOwner, nil
	case userID == b.RenterID:
		return domain.ActorRenter, nil
	}
	return "", fmt.Errorf("booking does not involve you: %w", domain.ErrForbidden)
}

func (s *bookingService) transition(ctx context.Context, bookingID, userID int32, role domain.UserRole, target domain.BookingStatus, change repository.StatusChange) (*domain.Booking, error) {
	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	actor, err := resolveActor(booking, userID, role)
	if err != nil {
		return nil, err
	}

	allowed, ok := bookingTransitions[booking.Status][target]
	if !ok {
		return nil, fmt.Errorf("cannot move booking from %s to %s: %w", booking.Status, target, domain.ErrInvalidTransition)
	}
	permitted := false
	for _, a := range allowed {
		if a == actor {
			permitted = true
			break
		}
	}
	if !permitted {
		return nil, fmt.Errorf("%s may not move booking from %s to %s: %w", actor, booking.Status, target, domain.ErrForbidden)
	}

	change.Status = target
	change.PrevStatus = booking.Status
	if target == domain.BookingStatusCancelled {
		change.CancelledBy = &userID
	}
	if err := s.bookingRepo.ApplyStatusChange(ctx, booking, change); err != nil {
		return nil, err
	}
	logger.Info("booking status changed", "bookingId", booking.ID,
		"from", change.PrevStatus, "to", target, "actor", actor)

	go s.notifyTransition(booking, change, actor)
	return booking, nil
}

func (s *bookingService) notifyTransition(b *domain.Booking, change repository.StatusChange, actor domain.BookingActor) {
	ctx := context.Background()
	eq, err := s.equipRepo.GetByID(ctx, b.EquipmentID)
	if err != nil {
		logger.Error("load equipment for booking notification", "error", err, "bookingId", b.ID)
		return
	}
	renter, err := s.userRepo.GetByID(ctx, b.RenterID)
	if err != nil {
		logger.Error("load renter for booking notification", "error", err, "bookingId", b.ID)
		return
	}
	data := map[string]string{"bookingId": fmt.Sprint(b.ID), "equipmentId": fmt.Sprint(b.EquipmentID)}

	switch change.Status {
	case domain.BookingStatusApproved:
		s.notifier.Notify(ctx, b.RenterID, "booking_approved", "Booking approved",
			fmt.Sprintf("Your booking for %q was approved.", eq.Title), data)
		if err := s.emailSvc.SendBookingDecision(ctx, renter.Email, renter.FirstName, eq.Title, true, ""); err != nil {
			logger.Error("send booking approval email", "error", err, "bookingId", b.ID)
		}
	case domain.BookingStatusRejected:
		s.notifier.Notify(ctx, b.RenterID, "booking_rejected", "Booking declined",
			fmt.Sprintf("Your booking for %q was declined.", eq.Title), data)
		if err := s.emailSvc.SendBookingDecision(ctx, renter.Email, renter.FirstName, eq.Title, false, change.RejectionReason); err != nil {
			logger.Error("send booking rejection email", "error", err, "bookingId", b.ID)
		}
	case domain.BookingStatusCancelled:
		// Tell the other party, not the one who cancelled.
		target := b.OwnerID
		if actor == domain.ActorOwner {
			target = b.RenterID
		}
		s.notifier.Notify(ctx, target, "booking_cancelled", "Booking cancelled",
			fmt.Sprintf("The booking for %q was cancelled.", eq.Title), data)
	case domain.BookingStatusActive:
		s.notifier.Notify(ctx, b.RenterID, "booking_started", "Rental started",
			fmt.Sprintf("Your rental of %q has started.", eq.Title), data)
	case domain.BookingStatusCompleted:
		s.notifier.Notify(ctx, b.RenterID, "booking_completed", "Rental completed",
			fmt.Sprintf("Your rental of %q is complete. You can now leave a review.", eq.Title), data)
	}
}

// ChangeStatus serves the single status endpoint, where the target comes
// from the request body. Owner notes may ride along on any transition;
// the reason lands in the rejection or cancellation column.
func (s *bookingService) ChangeStatus(ctx context.Context, bookingID, userID int32, role domain.UserRole, target domain.BookingStatus, ownerNotes, reason string) (*domain.Booking, error) {
	change := repository.StatusChange{OwnerNotes: ownerNotes}
	switch target {
	case domain.BookingStatusApproved, domain.BookingStatusActive, domain.BookingStatusCompleted:
	case domain.BookingStatusRejected:
		change.RejectionReason = reason
	case domain.BookingStatusCancelled:
		change.CancellationReason = reason
	default:
		return nil, fmt.Errorf("unknown booking status %q: %w", target, domain.ErrInvalidInput)
	}
	return s.transition(ctx, bookingID, userID, role, target, change)
}

func (s *bookingService) Approve(ctx context.Context, bookingID, userID int32, role domain.UserRole, ownerNotes string) (*domain.Booking, error) {
	return s.transition(ctx, bookingID, userID, role, domain.BookingStatusApproved,
		repository.StatusChange{OwnerNotes: ownerNotes})
}

func (s *bookingService) Reject(ctx context.Context, bookingID, userID int32, role domain.UserRole, reason string) (*domain.Booking, error) {
	return s.transition(ctx, bookingID, userID, role, domain.BookingStatusRejected,
		repository.StatusChange{RejectionReason: reason})
}

func (s *bookingService) Cancel(ctx context.Context, bookingID, userID int32, role domain.UserRole, reason string) (*domain.Booking, error) {
	return s.transition(ctx, bookingID, userID, role, domain.BookingStatusCancelled,
		repository.StatusChange{CancellationReason: reason})
}

func (s *bookingService) Start(ctx context.Context, bookingID, userID int32, role domain.UserRole) (*domain.Booking, error) {
	return s.transition(ctx, bookingID, userID, role, domain.BookingStatusActive, repository.StatusChange{})
}

func (s *bookingService) Complete(ctx context.Context, bookingID, userID int32, role domain.UserRole) (*domain.Booking, error) {
	return s.transition(ctx, bookingID, userID, role, domain.BookingStatusCompleted, repository.StatusChange{})
}
