package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"equiprent-backend/internal/domain"
	"equiprent-backend/internal/repository"
)

type notificationRepository struct {
	db *sql.DB
}

func NewNotificationRepository(db *sql.DB) repository.NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	data, err := json.Marshal(n.Data)
	if err != nil {
		return fmt.Errorf("encode notification data: %w", err)
	}
	if n.Data == nil {
		data = []byte("{}")
	}
	query := `INSERT INTO notifications (user_id, type, title, message, data, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6) RETURNING id, created_at`
	return r.db.QueryRowContext(ctx, query,
		n.UserID, n.Type, n.Title, n.Message, data, time.Now()).Scan(&n.ID, &n.CreatedAt)
}

func (r *notificationRepository) List(ctx context.Context, userID int32, unreadOnly bool, page, pageSize int32) ([]domain.Notification, int32, error) {
	where := "WHERE user_id = $1"
	if unreadOnly {
		where += " AND is_read = false"
	}

	var count int32
	if err := r.db.QueryRowContext(ctx, "SELECT count(*) FROM notifications "+where, userID).Scan(&count); err != nil {
		return nil, 0, err
	}

	query := `SELECT id, user_id, type, title, message, data, is_read, read_at, created_at
	          FROM notifications ` + where + `
	          ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.db.QueryContext(ctx, query, userID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var notifications []domain.Notification
	for rows.Next() {
		var n domain.Notification
		var data []byte
		if err := rows.Scan(&n.ID, &n.UserID, &n.Type, &n.Title, &n.Message, &data, &n.IsRead, &n.ReadAt, &n.CreatedAt); err != nil {
			return nil, 0, err
		}
		if len(data) > 0 {
			if err := json.Unmarshal(data, &n.Data); err != nil {
				return nil, 0, fmt.Errorf("decode notification data: %w", err)
			}
		}
		notifications = append(notifications, n)
	}
	return notifications, count, rows.Err()
}

func (r *notificationRepository) UnreadCount(ctx context.Context, userID int32) (int32, error) {
	var count int32
	err := r.db.QueryRowContext(ctx,
		`SELECT count(*) FROM notifications WHERE user_id = $1 AND is_read = false`, userID).Scan(&count)
	return count, err
}

func (r *notificationRepository) MarkAsRead(ctx context.Context, id, userID int32) error {
	return r.execOwned(ctx,
		`UPDATE notifications SET is_read = true, read_at = NOW() WHERE id = $1 AND user_id = $2`, id, userID)
}

func (r *notificationRepository) MarkAllAsRead(ctx context.Context, userID int32) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE notifications SET is_read = true, read_at = NOW() WHERE user_id = $1 AND is_read = false`, userID)
	return err
}

func (r *notificationRepository) Delete(ctx context.Context, id, userID int32) error {
	return r.execOwned(ctx, `DELETE FROM notifications WHERE id = $1 AND user_id = $2`, id, userID)
}

func (r *notificationRepository) PruneRead(ctx context.Context, olderThan time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM notifications WHERE is_read = true AND read_at < $1`, olderThan)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *notificationRepository) execOwned(ctx context.Context, query string, id, userID int32) error {
	res, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("notification: %w", domain.ErrNotFound)
	}
	return nil
}
