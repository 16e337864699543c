package postgres

import (
	"database/sql"

	"equiprent-backend/internal/repository"

	_ "github.com/lib/pq"
)

type Store struct {
	db *sql.DB
	repository.UserRepository
	repository.EquipmentRepository
	repository.BookingRepository
	repository.ReviewRepository
	repository.NotificationRepository
	repository.ChecklistRepository
	repository.LogisticsRepository
	repository.AdminLogRepository
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:                     db,
		UserRepository:         NewUserRepository(db),
		EquipmentRepository:    NewEquipmentRepository(db),
		BookingRepository:      NewBookingRepository(db),
		ReviewRepository:       NewReviewRepository(db),
		NotificationRepository: NewNotificationRepository(db),
		ChecklistRepository:    NewChecklistRepository(db),
		LogisticsRepository:    NewLogisticsRepository(db),
		AdminLogRepository:     NewAdminLogRepository(db),
	}
}
