package service

import (
	"context"
	"fmt"

	"equiprent-backend/internal/domain"
	"equiprent-backend/internal/repository"
	"equiprent-backend/internal/storage"
)

type checklistService struct {
	checklistRepo repository.ChecklistRepository
	bookingRepo   repository.BookingRepository
	equipRepo     repository.EquipmentRepository
	files         storage.Storage
}

func NewChecklistService(
	checklistRepo repository.ChecklistRepository,
	bookingRepo repository.BookingRepository,
	equipRepo repository.EquipmentRepository,
	files storage.Storage,
) ChecklistService {
	return &checklistService{
		checklistRepo: checklistRepo,
		bookingRepo:   bookingRepo,
		equipRepo:     equipRepo,
		files:         files,
	}
}

func (s *checklistService) Create(ctx context.Context, in CreateChecklistInput) (*domain.Checklist, error) {
	if in.Type != domain.ChecklistTypePickup && in.Type != domain.ChecklistTypeReturn {
		return nil, fmt.Errorf("checklist type must be pickup or return: %w", domain.ErrInvalidInput)
	}

	booking, err := s.bookingRepo.GetByID(ctx, in.BookingID)
	if err != nil {
		return nil, err
	}
	if in.CompletedBy != booking.RenterID && in.CompletedBy != booking.OwnerID {
		return nil, fmt.Errorf("booking does not involve you: %w", domain.ErrForbidden)
	}

	// A pickup checklist belongs to the handover, a return checklist to
	// the handback. Both require the rental to have started.
	switch in.Type {
	case domain.ChecklistTypePickup:
		if booking.Status != domain.BookingStatusApproved && booking.Status != domain.BookingStatusActive {
			return nil, fmt.Errorf("pickup checklist requires an approved or active booking: %w", domain.ErrInvalidInput)
		}
	case domain.ChecklistTypeReturn:
		if booking.Status != domain.BookingStatusActive && booking.Status != domain.BookingStatusCompleted {
			return nil, fmt.Errorf("return checklist requires an active or completed booking: %w", domain.ErrInvalidInput)
		}
	}

	exists, err := s.checklistRepo.Exists(ctx, in.BookingID, in.Type)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("a %s checklist already exists for this booking: %w", in.Type, domain.ErrConflict)
	}

	checklist := &domain.Checklist{
		BookingID:           in.BookingID,
		Type:                in.Type,
		FuelLevel:           in.FuelLevel,
		HourMeterReading:    in.HourMeterReading,
		OdometerReading:     in.OdometerReading,
		OverallCondition:    in.OverallCondition,
		ExteriorCondition:   in.ExteriorCondition,
		InteriorCondition:   in.InteriorCondition,
		MechanicalCondition: in.MechanicalCondition,
		DamageNotes:         in.DamageNotes,
		HasDamage:           in.HasDamage,
		AdditionalNotes:     in.AdditionalNotes,
		CompletedBy:         in.CompletedBy,
	}
	if err := s.checklistRepo.Create(ctx, checklist); err != nil {
		return nil, err
	}

	for _, f := range in.Images {
		url, err := s.files.Save("checklists", f.Filename, f.Reader)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", domain.ErrInvalidInput, err)
		}
		img := domain.ChecklistImage{ChecklistID: checklist.ID, ImageURL: url}
		if err := s.checklistRepo.AddImage(ctx, &img); err != nil {
			return nil, err
		}
		checklist.Images = append(checklist.Images, img)
	}
	return checklist, nil
}

func (s *checklistService) ListByBooking(ctx context.Context, bookingID, userID int32, role domain.UserRole) ([]domain.Checklist, error) {
	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if _, err := resolveActor(booking, userID, role); err != nil {
		return nil, err
	}
	return s.checklistRepo.ListByBooking(ctx, bookingID)
}

func (s *checklistService) LogMaintenance(ctx context.Context, ownerID int32, m *domain.MaintenanceLog) (*domain.MaintenanceLog, error) {
	owned, err := s.equipRepo.IsOwnedBy(ctx, m.EquipmentID, ownerID)
	if err != nil {
		return nil, err
	}
	if !owned {
		return nil, fmt.Errorf("equipment does not belong to you: %w", domain.ErrForbidden)
	}
	if m.MaintenanceType == "" || m.Description == "" {
		return nil, fmt.Errorf("maintenance type and description are required: %w", domain.ErrInvalidInput)
	}
	if err := s.checklistRepo.CreateMaintenanceLog(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *checklistService) ListMaintenance(ctx context.Context, equipmentID, ownerID int32) ([]domain.MaintenanceLog, error) {
	owned, err := s.equipRepo.IsOwnedBy(ctx, equipmentID, ownerID)
	if err != nil {
		return nil, err
	}
	if !owned {
		return nil, fmt.Errorf("equipment does not belong to you: %w", domain.ErrForbidden)
	}
	return s.checklistRepo.ListMaintenanceLogs(ctx, equipmentID)
}
