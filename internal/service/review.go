package service

import (
	"context"
	"fmt"

	"equiprent-backend/internal/domain"
	"equiprent-backend/internal/logger"
	"equiprent-backend/internal/repository"
)

type reviewService struct {
	reviewRepo  repository.ReviewRepository
	bookingRepo repository.BookingRepository
	notifier    NotificationService
}

func NewReviewService(reviewRepo repository.ReviewRepository, bookingRepo repository.BookingRepository, notifier NotificationService) ReviewService {
	return &reviewService{
		reviewRepo:  reviewRepo,
		bookingRepo: bookingRepo,
		notifier:    notifier,
	}
}

func (s *reviewService) Create(ctx context.Context, in CreateReviewInput) (*domain.Review, error) {
	if in.Rating < 1 || in.Rating > 5 {
		return nil, fmt.Errorf("rating must be between 1 and 5: %w", domain.ErrInvalidInput)
	}
	switch in.ReviewType {
	case domain.ReviewTypeEquipment, domain.ReviewTypeOperator, domain.ReviewTypeOwner:
	default:
		return nil, fmt.Errorf("unknown review type %q: %w", in.ReviewType, domain.ErrInvalidInput)
	}

	booking, err := s.bookingRepo.GetByID(ctx, in.BookingID)
	if err != nil {
		return nil, err
	}
	if booking.RenterID != in.ReviewerID {
		return nil, fmt.Errorf("only the renter can review this booking: %w", domain.ErrForbidden)
	}
	if booking.Status != domain.BookingStatusCompleted {
		return nil, fmt.Errorf("booking must be completed before reviewing: %w", domain.ErrInvalidInput)
	}

	exists, err := s.reviewRepo.Exists(ctx, in.BookingID, in.ReviewerID, in.ReviewType)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("you already reviewed this booking: %w", domain.ErrConflict)
	}

	targetID := booking.EquipmentID
	switch in.ReviewType {
	case domain.ReviewTypeOperator:
		if booking.OperatorID == nil {
			return nil, fmt.Errorf("booking has no operator to review: %w", domain.ErrInvalidInput)
		}
		targetID = *booking.OperatorID
	case domain.ReviewTypeOwner:
		targetID = booking.OwnerID
	}

	review := &domain.Review{
		BookingID:  in.BookingID,
		ReviewerID: in.ReviewerID,
		ReviewType: in.ReviewType,
		TargetID:   targetID,
		Rating:     in.Rating,
		Title:      in.Title,
		Comment:    in.Comment,
		IsApproved: true,
	}
	if err := s.reviewRepo.Create(ctx, review); err != nil {
		return nil, err
	}

	switch in.ReviewType {
	case domain.ReviewTypeEquipment:
		if err := s.reviewRepo.RecomputeEquipmentRating(ctx, targetID); err != nil {
			logger.Error("recompute equipment rating", "error", err, "equipmentId", targetID)
		}
	case domain.ReviewTypeOperator:
		if err := s.reviewRepo.RecomputeOperatorRating(ctx, targetID); err != nil {
			logger.Error("recompute operator rating", "error", err, "operatorId", targetID)
		}
	}

	go s.notifier.Notify(context.Background(), booking.OwnerID, "new_review", "New review",
		fmt.Sprintf("Your booking #%d received a %d-star review.", booking.ID, in.Rating),
		map[string]string{"bookingId": fmt.Sprint(booking.ID), "reviewId": fmt.Sprint(review.ID)})

	return review, nil
}

func (s *reviewService) ListForTarget(ctx context.Context, targetID int32, reviewType domain.ReviewType, page, pageSize int32) ([]domain.Review, int32, error) {
	if reviewType == "" {
		reviewType = domain.ReviewTypeEquipment
	}
	return s.reviewRepo.List(ctx, repository.ReviewFilter{TargetID: targetID, ReviewType: reviewType}, page, pageSize)
}

func (s *reviewService) ListMine(ctx context.Context, reviewerID int32) ([]domain.Review, error) {
	return s.reviewRepo.ListByReviewer(ctx, reviewerID)
}
