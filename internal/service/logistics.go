package service

import (
	"context"
	"fmt"

	"equiprent-backend/internal/domain"
	"equiprent-backend/internal/repository"
)

type logisticsService struct {
	logisticsRepo repository.LogisticsRepository
	bookingRepo   repository.BookingRepository
	notifier      NotificationService
}

func NewLogisticsService(logisticsRepo repository.LogisticsRepository, bookingRepo repository.BookingRepository, notifier NotificationService) LogisticsService {
	return &logisticsService{
		logisticsRepo: logisticsRepo,
		bookingRepo:   bookingRepo,
		notifier:      notifier,
	}
}

func (s *logisticsService) RequestTransport(ctx context.Context, userID int32, tr *domain.TransportRequest) (*domain.TransportRequest, error) {
	if tr.RequestType != domain.TransportRequestDelivery && tr.RequestType != domain.TransportRequestPickup {
		return nil, fmt.Errorf("request type must be delivery or pickup: %w", domain.ErrInvalidInput)
	}

	booking, err := s.bookingRepo.GetByID(ctx, tr.BookingID)
	if err != nil {
		return nil, err
	}
	if userID != booking.RenterID {
		return nil, fmt.Errorf("only the renter can request transport: %w", domain.ErrForbidden)
	}
	if booking.Status.IsTerminal() {
		return nil, fmt.Errorf("booking is %s: %w", booking.Status, domain.ErrInvalidInput)
	}

	if err := s.logisticsRepo.CreateTransportRequest(ctx, tr); err != nil {
		return nil, err
	}

	go s.notifier.Notify(context.Background(), booking.OwnerID, "transport_request", "Transport requested",
		fmt.Sprintf("A %s was requested for booking #%d.", tr.RequestType, booking.ID),
		map[string]string{"bookingId": fmt.Sprint(booking.ID), "transportRequestId": fmt.Sprint(tr.ID)})

	return tr, nil
}

func (s *logisticsService) ListTransport(ctx context.Context, bookingID, userID int32, role domain.UserRole) ([]domain.TransportRequest, error) {
	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if _, err := resolveActor(booking, userID, role); err != nil {
		return nil, err
	}
	return s.logisticsRepo.ListTransportRequests(ctx, bookingID)
}

func (s *logisticsService) UpdateTransport(ctx context.Context, userID int32, role domain.UserRole, tr *domain.TransportRequest) (*domain.TransportRequest, error) {
	requests, err := s.logisticsRepo.ListTransportRequests(ctx, tr.BookingID)
	if err != nil {
		return nil, err
	}
	found := false
	for _, existing := range requests {
		if existing.ID == tr.ID {
			found = true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("transport request: %w", domain.ErrNotFound)
	}

	booking, err := s.bookingRepo.GetByID(ctx, tr.BookingID)
	if err != nil {
		return nil, err
	}
	actor, err := resolveActor(booking, userID, role)
	if err != nil {
		return nil, err
	}
	// Owners schedule drivers; renters only watch the status.
	if actor == domain.ActorRenter {
		return nil, fmt.Errorf("only the owner can update transport requests: %w", domain.ErrForbidden)
	}

	updated, err := s.logisticsRepo.UpdateTransportRequest(ctx, tr)
	if err != nil {
		return nil, err
	}

	go s.notifier.Notify(context.Background(), booking.RenterID, "transport_update", "Transport update",
		fmt.Sprintf("Transport for booking #%d is now %s.", booking.ID, updated.Status),
		map[string]string{"bookingId": fmt.Sprint(booking.ID), "transportRequestId": fmt.Sprint(updated.ID)})

	return updated, nil
}

func (s *logisticsService) AddOperator(ctx context.Context, op *domain.Operator) (*domain.Operator, error) {
	if op.Name == "" || op.Phone == "" {
		return nil, fmt.Errorf("operator name and phone are required: %w", domain.ErrInvalidInput)
	}
	if err := s.logisticsRepo.CreateOperator(ctx, op); err != nil {
		return nil, err
	}
	return op, nil
}

func (s *logisticsService) ListOperators(ctx context.Context, ownerID int32) ([]domain.Operator, error) {
	return s.logisticsRepo.ListOperators(ctx, ownerID)
}

func (s *logisticsService) UpdateOperator(ctx context.Context, op *domain.Operator) (*domain.Operator, error) {
	return s.logisticsRepo.UpdateOperator(ctx, op)
}
