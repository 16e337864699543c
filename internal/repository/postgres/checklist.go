package postgres

import (
	"context"
	"database/sql"
	"time"

	"equiprent-backend/internal/domain"
	"equiprent-backend/internal/repository"
)

type checklistRepository struct {
	db *sql.DB
}

func NewChecklistRepository(db *sql.DB) repository.ChecklistRepository {
	return &checklistRepository{db: db}
}

func (r *checklistRepository) Create(ctx context.Context, c *domain.Checklist) error {
	query := `INSERT INTO booking_checklists (booking_id, checklist_type, fuel_level,
	            hour_meter_reading, odometer_reading, overall_condition, exterior_condition,
	            interior_condition, mechanical_condition, damage_notes, has_damage,
	            additional_notes, completed_by, created_at)
	          VALUES ($1, $2, NULLIF($3, ''), $4, $5, NULLIF($6, ''), NULLIF($7, ''),
	            NULLIF($8, ''), NULLIF($9, ''), NULLIF($10, ''), $11, NULLIF($12, ''), $13, $14)
	          RETURNING id`
	return r.db.QueryRowContext(ctx, query,
		c.BookingID, c.Type, c.FuelLevel,
		c.HourMeterReading, c.OdometerReading, c.OverallCondition, c.ExteriorCondition,
		c.InteriorCondition, c.MechanicalCondition, c.DamageNotes, c.HasDamage,
		c.AdditionalNotes, c.CompletedBy, time.Now()).Scan(&c.ID)
}

func (r *checklistRepository) Exists(ctx context.Context, bookingID int32, checklistType domain.ChecklistType) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM booking_checklists WHERE booking_id = $1 AND checklist_type = $2)`,
		bookingID, checklistType).Scan(&exists)
	return exists, err
}

func (r *checklistRepository) ListByBooking(ctx context.Context, bookingID int32) ([]domain.Checklist, error) {
	query := `SELECT c.id, c.booking_id, c.checklist_type, COALESCE(c.fuel_level, ''),
	            c.hour_meter_reading, c.odometer_reading,
	            COALESCE(c.overall_condition, ''), COALESCE(c.exterior_condition, ''),
	            COALESCE(c.interior_condition, ''), COALESCE(c.mechanical_condition, ''),
	            COALESCE(c.damage_notes, ''), c.has_damage, COALESCE(c.additional_notes, ''),
	            c.completed_by, c.created_at, u.first_name, u.last_name
	          FROM booking_checklists c
	          JOIN users u ON u.id = c.completed_by
	          WHERE c.booking_id = $1
	          ORDER BY c.created_at ASC`
	rows, err := r.db.QueryContext(ctx, query, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var checklists []domain.Checklist
	for rows.Next() {
		var c domain.Checklist
		if err := rows.Scan(&c.ID, &c.BookingID, &c.Type, &c.FuelLevel,
			&c.HourMeterReading, &c.OdometerReading,
			&c.OverallCondition, &c.ExteriorCondition,
			&c.InteriorCondition, &c.MechanicalCondition,
			&c.DamageNotes, &c.HasDamage, &c.AdditionalNotes,
			&c.CompletedBy, &c.CreatedAt, &c.CompletedByFirstName, &c.CompletedByLastName); err != nil {
			return nil, err
		}
		checklists = append(checklists, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range checklists {
		images, err := r.listImages(ctx, checklists[i].ID)
		if err != nil {
			return nil, err
		}
		checklists[i].Images = images
	}
	return checklists, nil
}

func (r *checklistRepository) listImages(ctx context.Context, checklistID int32) ([]domain.ChecklistImage, error) {
	query := `SELECT id, checklist_id, image_url, COALESCE(image_type, ''), COALESCE(caption, ''), created_at
	          FROM checklist_images WHERE checklist_id = $1 ORDER BY id ASC`
	rows, err := r.db.QueryContext(ctx, query, checklistID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var images []domain.ChecklistImage
	for rows.Next() {
		var img domain.ChecklistImage
		if err := rows.Scan(&img.ID, &img.ChecklistID, &img.ImageURL, &img.ImageType, &img.Caption, &img.CreatedAt); err != nil {
			return nil, err
		}
		images = append(images, img)
	}
	return images, rows.Err()
}

func (r *checklistRepository) AddImage(ctx context.Context, img *domain.ChecklistImage) error {
	query := `INSERT INTO checklist_images (checklist_id, image_url, image_type, caption, created_at)
	          VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), $5) RETURNING id`
	return r.db.QueryRowContext(ctx, query,
		img.ChecklistID, img.ImageURL, img.ImageType, img.Caption, time.Now()).Scan(&img.ID)
}

func (r *checklistRepository) CreateMaintenanceLog(ctx context.Context, m *domain.MaintenanceLog) error {
	query := `INSERT INTO maintenance_logs (equipment_id, maintenance_type, description,
	            performed_by, performed_at, cost, next_maintenance_date, notes, created_at)
	          VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, $7, NULLIF($8, ''), $9)
	          RETURNING id`
	return r.db.QueryRowContext(ctx, query,
		m.EquipmentID, m.MaintenanceType, m.Description,
		m.PerformedBy, m.PerformedAt, m.Cost, m.NextMaintenanceDate, m.Notes, time.Now()).Scan(&m.ID)
}

func (r *checklistRepository) ListMaintenanceLogs(ctx context.Context, equipmentID int32) ([]domain.MaintenanceLog, error) {
	query := `SELECT id, equipment_id, maintenance_type, description, COALESCE(performed_by, ''),
	            performed_at, cost, next_maintenance_date, COALESCE(notes, ''), created_at
	          FROM maintenance_logs WHERE equipment_id = $1
	          ORDER BY performed_at DESC`
	rows, err := r.db.QueryContext(ctx, query, equipmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []domain.MaintenanceLog
	for rows.Next() {
		var m domain.MaintenanceLog
		if err := rows.Scan(&m.ID, &m.EquipmentID, &m.MaintenanceType, &m.Description, &m.PerformedBy,
			&m.PerformedAt, &m.Cost, &m.NextMaintenanceDate, &m.Notes, &m.CreatedAt); err != nil {
			return nil, err
		}
		logs = append(logs, m)
	}
	return logs, rows.Err()
}
