package service

import (
	"context"
	"fmt"
	"time"

	"equiprent-backend/internal/domain"
	"equiprent-backend/internal/logger"
	"equiprent-backend/internal/repository"
	"equiprent-backend/internal/storage"
	"equiprent-backend/internal/utils"
)

const maxImagesPerEquipment = 10

type equipmentService struct {
	equipRepo repository.EquipmentRepository
	files     storage.Storage
}

func NewEquipmentService(equipRepo repository.EquipmentRepository, files storage.Storage) EquipmentService {
	return &equipmentService{
		equipRepo: equipRepo,
		files:     files,
	}
}

func (s *equipmentService) Create(ctx context.Context, eq *domain.Equipment) (*domain.Equipment, error) {
	if eq.Title == "" || eq.Description == "" || eq.City == "" {
		return nil, fmt.Errorf("title, description and city are required: %w", domain.ErrInvalidInput)
	}
	if eq.DailyRate <= 0 {
		return nil, fmt.Errorf("daily rate must be positive: %w", domain.ErrInvalidInput)
	}
	if eq.Quantity <= 0 {
		eq.Quantity = 1
	}
	if eq.MinimumRentalDuration == "" {
		eq.MinimumRentalDuration = domain.RentalDurationDaily
	}
	if eq.HasOperator && (eq.OperatorRatePerDay == nil || *eq.OperatorRatePerDay <= 0) {
		return nil, fmt.Errorf("operator rate is required when an operator is offered: %w", domain.ErrInvalidInput)
	}
	if err := s.equipRepo.Create(ctx, eq); err != nil {
		return nil, fmt.Errorf("create equipment: %w", err)
	}
	logger.Info("equipment listed", "equipmentId", eq.ID, "ownerId", eq.OwnerID)
	return eq, nil
}

func (s *equipmentService) Get(ctx context.Context, id int32) (*domain.Equipment, error) {
	eq, err := s.equipRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	images, err := s.equipRepo.ListImages(ctx, id)
	if err != nil {
		return nil, err
	}
	for _, img := range images {
		if img.IsPrimary {
			eq.PrimaryImage = img.ImageURL
			break
		}
	}
	if eq.PrimaryImage == "" && len(images) > 0 {
		eq.PrimaryImage = images[0].ImageURL
	}
	eq.Images = images
	return eq, nil
}

func (s *equipmentService) Update(ctx context.Context, id, ownerID int32, updates map[string]any) (*domain.Equipment, error) {
	return s.equipRepo.UpdateFields(ctx, id, ownerID, updates)
}

func (s *equipmentService) Delete(ctx context.Context, id, ownerID int32) error {
	return s.equipRepo.SoftDelete(ctx, id, ownerID)
}

func (s *equipmentService) Search(ctx context.Context, filter repository.EquipmentFilter, page, pageSize int32) ([]domain.Equipment, int32, error) {
	if filter.RadiusKM != nil && (filter.Latitude == nil || filter.Longitude == nil) {
		return nil, 0, fmt.Errorf("radius search requires latitude and longitude: %w", domain.ErrInvalidInput)
	}
	return s.equipRepo.Search(ctx, filter, page, pageSize)
}

func (s *equipmentService) ListMine(ctx context.Context, ownerID int32, status string, page, pageSize int32) ([]domain.Equipment, int32, error) {
	return s.equipRepo.ListByOwner(ctx, ownerID, status, page, pageSize)
}

func (s *equipmentService) Quote(ctx context.Context, equipmentID int32, startDate, endDate string, includeOperator bool) (*utils.RentalQuote, error) {
	start, err := time.Parse("2006-01-02", startDate)
	if err != nil {
		return nil, fmt.Errorf("invalid start date: %w", domain.ErrInvalidInput)
	}
	end, err := time.Parse("2006-01-02", endDate)
	if err != nil {
		return nil, fmt.Errorf("invalid end date: %w", domain.ErrInvalidInput)
	}

	eq, err := s.equipRepo.GetBookable(ctx, equipmentID)
	if err != nil {
		return nil, err
	}

	quote, err := utils.EstimateRentalCost(start, end, eq, includeOperator)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, domain.ErrInvalidInput)
	}
	return quote, nil
}

func (s *equipmentService) UploadImages(ctx context.Context, equipmentID, ownerID int32, files []Upload) ([]domain.EquipmentImage, error) {
	owned, err := s.equipRepo.IsOwnedBy(ctx, equipmentID, ownerID)
	if err != nil {
		return nil, err
	}
	if !owned {
		return nil, fmt.Errorf("equipment does not belong to you: %w", domain.ErrForbidden)
	}

	existing, err := s.equipRepo.CountImages(ctx, equipmentID)
	if err != nil {
		return nil, err
	}
	if existing+int32(len(files)) > maxImagesPerEquipment {
		return nil, fmt.Errorf("at most %d images per equipment: %w", maxImagesPerEquipment, domain.ErrInvalidInput)
	}

	var images []domain.EquipmentImage
	for i, f := range files {
		url, err := s.files.Save("equipment", f.Filename, f.Reader)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", domain.ErrInvalidInput, err)
		}
		img := domain.EquipmentImage{
			EquipmentID: equipmentID,
			ImageURL:    url,
			IsPrimary:   existing == 0 && i == 0,
			SortOrder:   existing + int32(i),
		}
		if err := s.equipRepo.AddImage(ctx, &img); err != nil {
			return nil, err
		}
		images = append(images, img)
	}
	return images, nil
}

func (s *equipmentService) DeleteImage(ctx context.Context, imageID, equipmentID, ownerID int32) error {
	url, err := s.equipRepo.DeleteImage(ctx, imageID, equipmentID, ownerID)
	if err != nil {
		return err
	}
	if key, ok := s.files.KeyFromURL(url); ok {
		if err := s.files.Delete(key); err != nil {
			logger.Warn("delete image file", "error", err, "key", key)
		}
	}
	return nil
}

func (s *equipmentService) SetPrimaryImage(ctx context.Context, equipmentID, ownerID, imageID int32) error {
	owned, err := s.equipRepo.IsOwnedBy(ctx, equipmentID, ownerID)
	if err != nil {
		return err
	}
	if !owned {
		return fmt.Errorf("equipment does not belong to you: %w", domain.ErrForbidden)
	}
	return s.equipRepo.SetPrimaryImage(ctx, equipmentID, imageID)
}

func (s *equipmentService) SetAvailability(ctx context.Context, equipmentID, ownerID int32, days []domain.AvailabilityDay) error {
	owned, err := s.equipRepo.IsOwnedBy(ctx, equipmentID, ownerID)
	if err != nil {
		return err
	}
	if !owned {
		return fmt.Errorf("equipment does not belong to you: %w", domain.ErrForbidden)
	}
	for i := range days {
		days[i].EquipmentID = equipmentID
		if _, err := time.Parse("2006-01-02", days[i].Date); err != nil {
			return fmt.Errorf("invalid date %q: %w", days[i].Date, domain.ErrInvalidInput)
		}
	}
	return s.equipRepo.UpsertAvailability(ctx, days)
}

func (s *equipmentService) GetAvailability(ctx context.Context, equipmentID int32, horizonDays int32) ([]domain.AvailabilityDay, error) {
	if horizonDays <= 0 || horizonDays > 365 {
		horizonDays = 90
	}
	return s.equipRepo.ListAvailability(ctx, equipmentID, horizonDays)
}

func (s *equipmentService) ListCategories(ctx context.Context) ([]domain.EquipmentCategory, error) {
	return s.equipRepo.ListCategories(ctx)
}
