package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"equiprent-backend/internal/domain"
	"equiprent-backend/internal/repository"
)

type logisticsRepository struct {
	db *sql.DB
}

func NewLogisticsRepository(db *sql.DB) repository.LogisticsRepository {
	return &logisticsRepository{db: db}
}

const transportColumns = `t.id, t.booking_id, t.request_type,
	COALESCE(t.pickup_address, ''), t.pickup_latitude, t.pickup_longitude,
	COALESCE(t.delivery_address, ''), t.delivery_latitude, t.delivery_longitude,
	COALESCE(to_char(t.preferred_date, 'YYYY-MM-DD'), ''), COALESCE(t.preferred_time, ''),
	COALESCE(t.vehicle_type, ''), COALESCE(t.special_requirements, ''),
	t.status, COALESCE(t.driver_name, ''), COALESCE(t.driver_phone, ''),
	COALESCE(t.notes, ''), t.created_at`

func scanTransportRequest(row rowScanner, extra ...any) (*domain.TransportRequest, error) {
	tr := &domain.TransportRequest{}
	dest := []any{
		&tr.ID, &tr.BookingID, &tr.RequestType,
		&tr.PickupAddress, &tr.PickupLatitude, &tr.PickupLongitude,
		&tr.DeliveryAddress, &tr.DeliveryLatitude, &tr.DeliveryLongitude,
		&tr.PreferredDate, &tr.PreferredTime,
		&tr.VehicleType, &tr.SpecialRequirements,
		&tr.Status, &tr.DriverName, &tr.DriverPhone,
		&tr.Notes, &tr.CreatedAt,
	}
	dest = append(dest, extra...)
	if err := row.Scan(dest...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("transport request: %w", domain.ErrNotFound)
		}
		return nil, err
	}
	return tr, nil
}

func (r *logisticsRepository) CreateTransportRequest(ctx context.Context, tr *domain.TransportRequest) error {
	query := `INSERT INTO transport_requests (booking_id, request_type,
	            pickup_address, pickup_latitude, pickup_longitude,
	            delivery_address, delivery_latitude, delivery_longitude,
	            preferred_date, preferred_time, vehicle_type, special_requirements,
	            status, created_at)
	          VALUES ($1, $2, NULLIF($3, ''), $4, $5, NULLIF($6, ''), $7, $8,
	            NULLIF($9, '')::date, NULLIF($10, ''), NULLIF($11, ''), NULLIF($12, ''), $13, $14)
	          RETURNING id`
	if tr.Status == "" {
		tr.Status = "requested"
	}
	return r.db.QueryRowContext(ctx, query,
		tr.BookingID, tr.RequestType,
		tr.PickupAddress, tr.PickupLatitude, tr.PickupLongitude,
		tr.DeliveryAddress, tr.DeliveryLatitude, tr.DeliveryLongitude,
		tr.PreferredDate, tr.PreferredTime, tr.VehicleType, tr.SpecialRequirements,
		tr.Status, time.Now()).Scan(&tr.ID)
}

func (r *logisticsRepository) ListTransportRequests(ctx context.Context, bookingID int32) ([]domain.TransportRequest, error) {
	query := `SELECT ` + transportColumns + `, e.title
	          FROM transport_requests t
	          JOIN bookings b ON b.id = t.booking_id
	          JOIN equipment e ON e.id = b.equipment_id
	          WHERE t.booking_id = $1
	          ORDER BY t.created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var requests []domain.TransportRequest
	for rows.Next() {
		var title string
		tr, err := scanTransportRequest(rows, &title)
		if err != nil {
			return nil, err
		}
		tr.EquipmentTitle = title
		requests = append(requests, *tr)
	}
	return requests, rows.Err()
}

func (r *logisticsRepository) UpdateTransportRequest(ctx context.Context, tr *domain.TransportRequest) (*domain.TransportRequest, error) {
	query := `UPDATE transport_requests t SET
	            status = COALESCE(NULLIF($1, ''), status),
	            driver_name = COALESCE(NULLIF($2, ''), driver_name),
	            driver_phone = COALESCE(NULLIF($3, ''), driver_phone),
	            notes = COALESCE(NULLIF($4, ''), notes)
	          WHERE t.id = $5
	          RETURNING ` + transportColumns
	return scanTransportRequest(r.db.QueryRowContext(ctx, query,
		tr.Status, tr.DriverName, tr.DriverPhone, tr.Notes, tr.ID))
}

const operatorColumns = `id, owner_id, name, phone, COALESCE(email, ''),
	COALESCE(cnic_number, ''), COALESCE(license_number, ''), experience_years,
	COALESCE(specializations, ''), daily_rate, average_rating, is_available,
	COALESCE(notes, ''), created_at`

func scanOperator(row rowScanner) (*domain.Operator, error) {
	op := &domain.Operator{}
	err := row.Scan(
		&op.ID, &op.OwnerID, &op.Name, &op.Phone, &op.Email,
		&op.CNICNumber, &op.LicenseNumber, &op.ExperienceYears,
		&op.Specializations, &op.DailyRate, &op.AverageRating, &op.IsAvailable,
		&op.Notes, &op.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("operator: %w", domain.ErrNotFound)
		}
		return nil, err
	}
	return op, nil
}

func (r *logisticsRepository) CreateOperator(ctx context.Context, op *domain.Operator) error {
	query := `INSERT INTO operators (owner_id, name, phone, email, cnic_number, license_number,
	            experience_years, specializations, daily_rate, is_available, notes, created_at)
	          VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), NULLIF($6, ''),
	            $7, NULLIF($8, ''), $9, true, NULLIF($10, ''), $11)
	          RETURNING id, is_available`
	return r.db.QueryRowContext(ctx, query,
		op.OwnerID, op.Name, op.Phone, op.Email, op.CNICNumber, op.LicenseNumber,
		op.ExperienceYears, op.Specializations, op.DailyRate, op.Notes, time.Now(),
	).Scan(&op.ID, &op.IsAvailable)
}

func (r *logisticsRepository) GetOperator(ctx context.Context, id int32) (*domain.Operator, error) {
	query := `SELECT ` + operatorColumns + ` FROM operators WHERE id = $1`
	return scanOperator(r.db.QueryRowContext(ctx, query, id))
}

func (r *logisticsRepository) ListOperators(ctx context.Context, ownerID int32) ([]domain.Operator, error) {
	query := `SELECT ` + operatorColumns + ` FROM operators WHERE owner_id = $1 ORDER BY name ASC`
	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var operators []domain.Operator
	for rows.Next() {
		op, err := scanOperator(rows)
		if err != nil {
			return nil, err
		}
		operators = append(operators, *op)
	}
	return operators, rows.Err()
}

func (r *logisticsRepository) UpdateOperator(ctx context.Context, op *domain.Operator) (*domain.Operator, error) {
	query := `UPDATE operators SET
	            name = COALESCE(NULLIF($1, ''), name),
	            phone = COALESCE(NULLIF($2, ''), phone),
	            email = COALESCE(NULLIF($3, ''), email),
	            license_number = COALESCE(NULLIF($4, ''), license_number),
	            experience_years = COALESCE($5, experience_years),
	            specializations = COALESCE(NULLIF($6, ''), specializations),
	            daily_rate = COALESCE($7, daily_rate),
	            is_available = $8,
	            notes = COALESCE(NULLIF($9, ''), notes)
	          WHERE id = $10 AND owner_id = $11
	          RETURNING ` + operatorColumns
	return scanOperator(r.db.QueryRowContext(ctx, query,
		op.Name, op.Phone, op.Email, op.LicenseNumber,
		op.ExperienceYears, op.Specializations, op.DailyRate, op.IsAvailable,
		op.Notes, op.ID, op.OwnerID))
}
