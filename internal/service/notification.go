package service

import (
	"context"

	"equiprent-backend/internal/domain"
	"equiprent-backend/internal/live"
	"equiprent-backend/internal/logger"
	"equiprent-backend/internal/repository"
)

type notificationService struct {
	notifRepo repository.NotificationRepository
	hub       *live.Hub
}

func NewNotificationService(notifRepo repository.NotificationRepository, hub *live.Hub) NotificationService {
	return &notificationService{
		notifRepo: notifRepo,
		hub:       hub,
	}
}

// Notify stores the notification and pushes it to any open websocket
// connections of the user. Failures are logged, never propagated: a
// notification must not fail the operation that triggered it.
func (s *notificationService) Notify(ctx context.Context, userID int32, notifType, title, message string, data map[string]string) {
	n := &domain.Notification{
		UserID:  userID,
		Type:    notifType,
		Title:   title,
		Message: message,
		Data:    data,
	}
	if err := s.notifRepo.Create(ctx, n); err != nil {
		logger.Error("store notification", "error", err, "userId", userID, "type", notifType)
		return
	}
	if s.hub != nil {
		s.hub.Push(userID, "notification", n)
	}
}

func (s *notificationService) List(ctx context.Context, userID int32, unreadOnly bool, page, pageSize int32) ([]domain.Notification, int32, int32, error) {
	notifications, total, err := s.notifRepo.List(ctx, userID, unreadOnly, page, pageSize)
	if err != nil {
		return nil, 0, 0, err
	}
	unread, err := s.notifRepo.UnreadCount(ctx, userID)
	if err != nil {
		return nil, 0, 0, err
	}
	return notifications, total, unread, nil
}

func (s *notificationService) MarkAsRead(ctx context.Context, id, userID int32) error {
	return s.notifRepo.MarkAsRead(ctx, id, userID)
}

func (s *notificationService) MarkAllAsRead(ctx context.Context, userID int32) error {
	return s.notifRepo.MarkAllAsRead(ctx, userID)
}

func (s *notificationService) Delete(ctx context.Context, id, userID int32) error {
	return s.notifRepo.Delete(ctx, id, userID)
}
