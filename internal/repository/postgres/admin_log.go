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

type adminLogRepository struct {
	db *sql.DB
}

func NewAdminLogRepository(db *sql.DB) repository.AdminLogRepository {
	return &adminLogRepository{db: db}
}

func (r *adminLogRepository) Create(ctx context.Context, entry *domain.AdminLog) error {
	values, err := json.Marshal(entry.NewValues)
	if err != nil {
		return fmt.Errorf("encode admin log values: %w", err)
	}
	if entry.NewValues == nil {
		values = []byte("{}")
	}
	query := `INSERT INTO admin_logs (admin_id, action, entity_type, entity_id, new_values, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	return r.db.QueryRowContext(ctx, query,
		entry.AdminID, entry.Action, entry.EntityType, entry.EntityID, values, time.Now()).Scan(&entry.ID)
}

func (r *adminLogRepository) List(ctx context.Context, page, pageSize int32) ([]domain.AdminLog, error) {
	query := `SELECT l.id, l.admin_id, l.action, l.entity_type, l.entity_id, l.new_values, l.created_at,
	            u.first_name, u.last_name, u.email
	          FROM admin_logs l
	          JOIN users u ON u.id = l.admin_id
	          ORDER BY l.created_at DESC LIMIT $1 OFFSET $2`
	rows, err := r.db.QueryContext(ctx, query, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []domain.AdminLog
	for rows.Next() {
		var entry domain.AdminLog
		var values []byte
		if err := rows.Scan(&entry.ID, &entry.AdminID, &entry.Action, &entry.EntityType, &entry.EntityID,
			&values, &entry.CreatedAt, &entry.AdminFirstName, &entry.AdminLastName, &entry.AdminEmail); err != nil {
			return nil, err
		}
		if len(values) > 0 {
			if err := json.Unmarshal(values, &entry.NewValues); err != nil {
				return nil, fmt.Errorf("decode admin log values: %w", err)
			}
		}
		logs = append(logs, entry)
	}
	return logs, rows.Err()
}
