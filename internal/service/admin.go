package service

import (
	"context"
	"fmt"

	"equiprent-backend/internal/domain"
	"equiprent-backend/internal/logger"
	"equiprent-backend/internal/repository"
)

type adminService struct {
	userRepo    repository.UserRepository
	equipRepo   repository.EquipmentRepository
	bookingRepo repository.BookingRepository
	reviewRepo  repository.ReviewRepository
	logRepo     repository.AdminLogRepository
	emailSvc    EmailService
	notifier    NotificationService
}

func NewAdminService(
	userRepo repository.UserRepository,
	equipRepo repository.EquipmentRepository,
	bookingRepo repository.BookingRepository,
	reviewRepo repository.ReviewRepository,
	logRepo repository.AdminLogRepository,
	emailSvc EmailService,
	notifier NotificationService,
) AdminService {
	return &adminService{
		userRepo:    userRepo,
		equipRepo:   equipRepo,
		bookingRepo: bookingRepo,
		reviewRepo:  reviewRepo,
		logRepo:     logRepo,
		emailSvc:    emailSvc,
		notifier:    notifier,
	}
}

// audit records the moderation action; a failed audit write is logged
// but never fails the action itself.
func (s *adminService) audit(adminID int32, action, entityType string, entityID int32, values map[string]string) {
	entry := &domain.AdminLog{
		AdminID:    adminID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		NewValues:  values,
	}
	if err := s.logRepo.Create(context.Background(), entry); err != nil {
		logger.Error("write admin log", "error", err, "action", action, "entityId", entityID)
	}
}

func (s *adminService) Dashboard(ctx context.Context) (*DashboardStats, error) {
	stats := &DashboardStats{}

	users, err := s.userRepo.CountByRole(ctx)
	if err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}
	stats.Users = users

	pending, err := s.userRepo.CountPendingRegistrations(ctx)
	if err != nil {
		return nil, fmt.Errorf("count pending registrations: %w", err)
	}
	stats.PendingRegistrations = pending

	total, approved, pendingEq, err := s.equipRepo.ApprovalCounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("count equipment: %w", err)
	}
	stats.Equipment.Total = total
	stats.Equipment.Approved = approved
	stats.Equipment.Pending = pendingEq

	bookings, err := s.bookingRepo.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("count bookings: %w", err)
	}
	stats.Bookings = bookings

	recent, err := s.bookingRepo.ListRecent(ctx, 10)
	if err != nil {
		return nil, fmt.Errorf("list recent bookings: %w", err)
	}
	stats.RecentBookings = recent

	return stats, nil
}

func (s *adminService) ListUsers(ctx context.Context, filter repository.UserFilter, page, pageSize int32) ([]domain.User, int32, error) {
	return s.userRepo.List(ctx, filter, page, pageSize)
}

func (s *adminService) ListPendingRegistrations(ctx context.Context, page, pageSize int32) ([]domain.User, int32, error) {
	return s.userRepo.ListPendingRegistrations(ctx, page, pageSize)
}

func (s *adminService) DecideRegistration(ctx context.Context, adminID, userID int32, approved bool, reason string) (*domain.User, error) {
	if !approved && reason == "" {
		return nil, fmt.Errorf("a rejection reason is required: %w", domain.ErrInvalidInput)
	}
	user, err := s.userRepo.SetRegistrationDecision(ctx, userID, adminID, approved, reason)
	if err != nil {
		return nil, err
	}

	action := "approve_registration"
	if !approved {
		action = "reject_registration"
	}
	s.audit(adminID, action, "user", userID, map[string]string{
		"status": string(user.RegistrationStatus), "reason": reason,
	})

	go func() {
		ctx := context.Background()
		if err := s.emailSvc.SendRegistrationDecision(ctx, user.Email, user.FirstName, approved, reason); err != nil {
			logger.Error("send registration decision email", "error", err, "userId", user.ID)
		}
		if approved {
			s.notifier.Notify(ctx, user.ID, "registration_approved", "Account approved",
				"Your account has been approved. Welcome to EquipRent!", nil)
		}
	}()
	return user, nil
}

func (s *adminService) VerifyUser(ctx context.Context, adminID, userID int32, verified bool, notes string) (*domain.User, error) {
	user, err := s.userRepo.SetVerification(ctx, userID, adminID, verified, notes)
	if err != nil {
		return nil, err
	}
	s.audit(adminID, "set_verification", "user", userID, map[string]string{
		"verified": fmt.Sprint(verified), "notes": notes,
	})
	return user, nil
}

func (s *adminService) ListPendingEquipment(ctx context.Context, page, pageSize int32) ([]domain.Equipment, error) {
	return s.equipRepo.ListPendingApproval(ctx, page, pageSize)
}

func (s *adminService) DecideEquipment(ctx context.Context, adminID, equipmentID int32, approved bool, notes string) (*domain.Equipment, error) {
	eq, err := s.equipRepo.SetApproval(ctx, equipmentID, approved, notes)
	if err != nil {
		return nil, err
	}

	action := "approve_equipment"
	notifType, title, message := "equipment_approved", "Equipment approved",
		fmt.Sprintf("Your listing %q is now live.", eq.Title)
	if !approved {
		action = "reject_equipment"
		notifType, title = "equipment_rejected", "Equipment not approved"
		message = fmt.Sprintf("Your listing %q was not approved.", eq.Title)
		if notes != "" {
			message += " Reason: " + notes
		}
	}
	s.audit(adminID, action, "equipment", equipmentID, map[string]string{
		"approved": fmt.Sprint(approved), "notes": notes,
	})

	go s.notifier.Notify(context.Background(), eq.OwnerID, notifType, title, message,
		map[string]string{"equipmentId": fmt.Sprint(eq.ID)})
	return eq, nil
}

func (s *adminService) ListBookings(ctx context.Context, status domain.BookingStatus, page, pageSize int32) ([]domain.Booking, int32, error) {
	return s.bookingRepo.List(ctx, repository.BookingFilter{Status: status}, page, pageSize)
}

func (s *adminService) HideReview(ctx context.Context, adminID, reviewID int32, reason string) (*domain.Review, error) {
	if reason == "" {
		return nil, fmt.Errorf("a reason is required to hide a review: %w", domain.ErrInvalidInput)
	}
	review, err := s.reviewRepo.Hide(ctx, reviewID, adminID, reason)
	if err != nil {
		return nil, err
	}
	s.audit(adminID, "hide_review", "review", reviewID, map[string]string{"reason": reason})

	// Hidden reviews drop out of the averages.
	switch review.ReviewType {
	case domain.ReviewTypeEquipment:
		if err := s.reviewRepo.RecomputeEquipmentRating(ctx, review.TargetID); err != nil {
			logger.Error("recompute equipment rating", "error", err, "equipmentId", review.TargetID)
		}
	case domain.ReviewTypeOperator:
		if err := s.reviewRepo.RecomputeOperatorRating(ctx, review.TargetID); err != nil {
			logger.Error("recompute operator rating", "error", err, "operatorId", review.TargetID)
		}
	}
	return review, nil
}

func (s *adminService) CreateCategory(ctx context.Context, adminID int32, cat *domain.EquipmentCategory) (*domain.EquipmentCategory, error) {
	if cat.Name == "" {
		return nil, fmt.Errorf("category name is required: %w", domain.ErrInvalidInput)
	}
	if err := s.equipRepo.CreateCategory(ctx, cat); err != nil {
		return nil, err
	}
	s.audit(adminID, "create_category", "category", cat.ID, map[string]string{"name": cat.Name})
	return cat, nil
}

func (s *adminService) UpdateCategory(ctx context.Context, adminID int32, cat *domain.EquipmentCategory) (*domain.EquipmentCategory, error) {
	if err := s.equipRepo.UpdateCategory(ctx, cat); err != nil {
		return nil, err
	}
	s.audit(adminID, "update_category", "category", cat.ID, map[string]string{"name": cat.Name})
	return cat, nil
}

func (s *adminService) ListLogs(ctx context.Context, page, pageSize int32) ([]domain.AdminLog, error) {
	return s.logRepo.List(ctx, page, pageSize)
}
