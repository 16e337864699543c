package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"equiprent-backend/internal/domain"
	"equiprent-backend/internal/repository"
)

type bookingRepository struct {
	db *sql.DB
}

func NewBookingRepository(db *sql.DB) repository.BookingRepository {
	return &bookingRepository{db: db}
}

const bookingColumns = `b.id, b.equipment_id, b.renter_id, b.owner_id, b.operator_id,
	to_char(b.start_date, 'YYYY-MM-DD'), to_char(b.end_date, 'YYYY-MM-DD'),
	b.start_time, b.end_time, b.duration_type, b.total_days, b.status,
	b.approved_at, b.started_at, b.completed_at, b.cancelled_at,
	b.rejection_reason, b.cancellation_reason, b.cancelled_by,
	b.include_operator, b.include_transportation,
	b.delivery_address, b.delivery_latitude, b.delivery_longitude, b.project_site_name,
	b.renter_notes, b.owner_notes, b.created_at, b.updated_at`

// bookingOverlap matches any stored range that touches the inclusive
// range [$2, $3]. Used with the equipment id as $1.
const bookingOverlap = `((start_date <= $2 AND end_date >= $2)
	OR (start_date <= $3 AND end_date >= $3)
	OR (start_date >= $2 AND end_date <= $3))`

func scanBooking(row rowScanner, extra ...any) (*domain.Booking, error) {
	b := &domain.Booking{}
	var (
		startTime, endTime, rejectionReason          sql.NullString
		cancellationReason, deliveryAddress          sql.NullString
		projectSiteName, renterNotes, ownerNotes     sql.NullString
	)
	dest := []any{
		&b.ID, &b.EquipmentID, &b.RenterID, &b.OwnerID, &b.OperatorID,
		&b.StartDate, &b.EndDate,
		&startTime, &endTime, &b.DurationType, &b.TotalDays, &b.Status,
		&b.ApprovedAt, &b.StartedAt, &b.CompletedAt, &b.CancelledAt,
		&rejectionReason, &cancellationReason, &b.CancelledBy,
		&b.IncludeOperator, &b.IncludeTransport,
		&deliveryAddress, &b.DeliveryLatitude, &b.DeliveryLongitude, &projectSiteName,
		&renterNotes, &ownerNotes, &b.CreatedAt, &b.UpdatedAt,
	}
	dest = append(dest, extra...)
	if err := row.Scan(dest...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("booking: %w", domain.ErrNotFound)
		}
		return nil, err
	}
	b.StartTime = startTime.String
	b.EndTime = endTime.String
	b.RejectionReason = rejectionReason.String
	b.CancellationReason = cancellationReason.String
	b.DeliveryAddress = deliveryAddress.String
	b.ProjectSiteName = projectSiteName.String
	b.RenterNotes = renterNotes.String
	b.OwnerNotes = ownerNotes.String
	return b, nil
}

// Create re-checks free units, ownership and date conflicts under a row
// lock on the equipment row, then inserts. Concurrent requests for the
// same equipment serialize on the lock, so two overlapping bookings
// cannot both pass the conflict check. The units check reads the rental
// counters directly rather than the owner-writable is_available flag,
// and runs before the ownership check.
func (r *bookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var ownerID, rented, quantity int32
	err = tx.QueryRowContext(ctx,
		`SELECT owner_id, rented_quantity, quantity FROM equipment
	         WHERE id = $1 AND is_active = true AND is_approved = true
	         FOR UPDATE`, b.EquipmentID).Scan(&ownerID, &rented, &quantity)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("equipment: %w", domain.ErrNotFound)
		}
		return err
	}
	if rented >= quantity {
		return fmt.Errorf("all units are currently rented: %w", domain.ErrConflict)
	}
	if ownerID == b.RenterID {
		return fmt.Errorf("you cannot book your own equipment: %w", domain.ErrInvalidInput)
	}

	var conflicts int32
	err = tx.QueryRowContext(ctx,
		`SELECT count(*) FROM bookings
	         WHERE equipment_id = $1 AND status IN ('pending', 'approved', 'active')
	           AND `+bookingOverlap, b.EquipmentID, b.StartDate, b.EndDate).Scan(&conflicts)
	if err != nil {
		return err
	}
	if conflicts > 0 {
		return fmt.Errorf("equipment is already booked for the selected dates: %w", domain.ErrConflict)
	}

	now := time.Now()
	err = tx.QueryRowContext(ctx,
		`INSERT INTO bookings (equipment_id, renter_id, owner_id, operator_id,
	           start_date, end_date, start_time, end_time, duration_type, total_days, status,
	           include_operator, include_transportation,
	           delivery_address, delivery_latitude, delivery_longitude, project_site_name,
	           renter_notes, approved_at, created_at, updated_at)
	         VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), NULLIF($8, ''), $9, $10, $11,
	           $12, $13, NULLIF($14, ''), $15, $16, NULLIF($17, ''), NULLIF($18, ''), $19, $20, $21)
	         RETURNING id`,
		b.EquipmentID, b.RenterID, b.OwnerID, b.OperatorID,
		b.StartDate, b.EndDate, b.StartTime, b.EndTime, b.DurationType, b.TotalDays, b.Status,
		b.IncludeOperator, b.IncludeTransport,
		b.DeliveryAddress, b.DeliveryLatitude, b.DeliveryLongitude, b.ProjectSiteName,
		b.RenterNotes, b.ApprovedAt, now, now,
	).Scan(&b.ID)
	if err != nil {
		return err
	}
	b.CreatedAt = now
	b.UpdatedAt = now
	return tx.Commit()
}

func (r *bookingRepository) GetByID(ctx context.Context, id int32) (*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings b WHERE b.id = $1`
	return scanBooking(r.db.QueryRowContext(ctx, query, id))
}

func (r *bookingRepository) GetDetail(ctx context.Context, id int32) (*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + `,
	            e.title, e.city,
	            ru.first_name, ru.last_name, ru.email, ru.phone,
	            ou.first_name, ou.last_name, ou.email, ou.phone, COALESCE(ou.company_name, ''),
	            COALESCE(op.name, ''), COALESCE(op.phone, '')
	          FROM bookings b
	          JOIN equipment e ON e.id = b.equipment_id
	          JOIN users ru ON ru.id = b.renter_id
	          JOIN users ou ON ou.id = b.owner_id
	          LEFT JOIN operators op ON op.id = b.operator_id
	          WHERE b.id = $1`
	var (
		title, city                              string
		rFirst, rLast, rEmail, rPhone            string
		oFirst, oLast, oEmail, oPhone, oCompany  string
		opName, opPhone                          string
	)
	b, err := scanBooking(r.db.QueryRowContext(ctx, query, id),
		&title, &city,
		&rFirst, &rLast, &rEmail, &rPhone,
		&oFirst, &oLast, &oEmail, &oPhone, &oCompany,
		&opName, &opPhone)
	if err != nil {
		return nil, err
	}
	b.EquipmentTitle, b.EquipmentCity = title, city
	b.RenterFirstName, b.RenterLastName, b.RenterEmail, b.RenterPhone = rFirst, rLast, rEmail, rPhone
	b.OwnerFirstName, b.OwnerLastName, b.OwnerEmail, b.OwnerPhone, b.OwnerCompany = oFirst, oLast, oEmail, oPhone, oCompany
	b.OperatorName, b.OperatorPhone = opName, opPhone
	return b, nil
}

func (r *bookingRepository) List(ctx context.Context, filter repository.BookingFilter, page, pageSize int32) ([]domain.Booking, int32, error) {
	conditions := []string{}
	args := []any{}
	argIdx := 1

	if filter.RenterID != 0 {
		conditions = append(conditions, fmt.Sprintf("b.renter_id = $%d", argIdx))
		args = append(args, filter.RenterID)
		argIdx++
	}
	if filter.OwnerID != 0 {
		conditions = append(conditions, fmt.Sprintf("b.owner_id = $%d", argIdx))
		args = append(args, filter.OwnerID)
		argIdx++
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("b.status = $%d", argIdx))
		args = append(args, filter.Status)
		argIdx++
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	var count int32
	if err := r.db.QueryRowContext(ctx, "SELECT count(*) FROM bookings b "+where, args...).Scan(&count); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT %s, e.title, e.city,
	            (SELECT ei.image_url FROM equipment_images ei
	              WHERE ei.equipment_id = b.equipment_id ORDER BY ei.is_primary DESC, ei.sort_order ASC LIMIT 1)
	          FROM bookings b
	          JOIN equipment e ON e.id = b.equipment_id
	          %s ORDER BY b.created_at DESC LIMIT $%d OFFSET $%d`,
		bookingColumns, where, argIdx, argIdx+1)
	args = append(args, pageSize, (page-1)*pageSize)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var bookings []domain.Booking
	for rows.Next() {
		var image sql.NullString
		var title, city string
		b, err := scanBooking(rows, &title, &city, &image)
		if err != nil {
			return nil, 0, err
		}
		b.EquipmentTitle = title
		b.EquipmentCity = city
		b.EquipmentImage = image.String
		bookings = append(bookings, *b)
	}
	return bookings, count, rows.Err()
}

// ApplyStatusChange writes the status row update and, when the change
// enters or leaves active, the equipment rental counters, in one
// transaction. The counter never goes below zero.
func (r *bookingRepository) ApplyStatusChange(ctx context.Context, b *domain.Booking, change repository.StatusChange) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	sets := []string{"status = $1", "updated_at = NOW()"}
	args := []any{change.Status}
	argIdx := 2

	switch change.Status {
	case domain.BookingStatusApproved:
		sets = append(sets, "approved_at = NOW()")
	case domain.BookingStatusActive:
		sets = append(sets, "started_at = NOW()")
	case domain.BookingStatusCompleted:
		sets = append(sets, "completed_at = NOW()")
	case domain.BookingStatusRejected:
		sets = append(sets, fmt.Sprintf("rejection_reason = NULLIF($%d, '')", argIdx))
		args = append(args, change.RejectionReason)
		argIdx++
	case domain.BookingStatusCancelled:
		sets = append(sets, "cancelled_at = NOW()",
			fmt.Sprintf("cancellation_reason = NULLIF($%d, '')", argIdx),
			fmt.Sprintf("cancelled_by = $%d", argIdx+1))
		args = append(args, change.CancellationReason, change.CancelledBy)
		argIdx += 2
	}
	if change.OwnerNotes != "" {
		sets = append(sets, fmt.Sprintf("owner_notes = $%d", argIdx))
		args = append(args, change.OwnerNotes)
		argIdx++
	}

	// Guard on the previous status so a concurrent transition loses.
	query := fmt.Sprintf("UPDATE bookings SET %s WHERE id = $%d AND status = $%d",
		strings.Join(sets, ", "), argIdx, argIdx+1)
	args = append(args, b.ID, change.PrevStatus)

	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("booking is no longer %s: %w", change.PrevStatus, domain.ErrConflict)
	}

	entersActive := change.Status == domain.BookingStatusActive
	leavesActive := change.PrevStatus == domain.BookingStatusActive && change.Status != domain.BookingStatusActive
	if entersActive {
		_, err = tx.ExecContext(ctx,
			`UPDATE equipment SET
	             rented_quantity = rented_quantity + 1,
	             is_available = (rented_quantity + 1) < quantity,
	             updated_at = NOW()
	           WHERE id = $1`, b.EquipmentID)
	} else if leavesActive {
		_, err = tx.ExecContext(ctx,
			`UPDATE equipment SET
	             rented_quantity = GREATEST(0, rented_quantity - 1),
	             is_available = GREATEST(0, rented_quantity - 1) < quantity,
	             updated_at = NOW()
	           WHERE id = $1`, b.EquipmentID)
	}
	if err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	b.Status = change.Status
	return nil
}

func (r *bookingRepository) CountByStatus(ctx context.Context) (map[domain.BookingStatus]int32, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT status, count(*) FROM bookings GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[domain.BookingStatus]int32)
	for rows.Next() {
		var status domain.BookingStatus
		var count int32
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[status] = count
	}
	return counts, rows.Err()
}

func (r *bookingRepository) ListRecent(ctx context.Context, limit int32) ([]domain.Booking, error) {
	query := `SELECT ` + bookingColumns + `, e.title, e.city,
	            ru.first_name, ru.last_name
	          FROM bookings b
	          JOIN equipment e ON e.id = b.equipment_id
	          JOIN users ru ON ru.id = b.renter_id
	          ORDER BY b.created_at DESC LIMIT $1`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookings []domain.Booking
	for rows.Next() {
		var title, city, firstName, lastName string
		b, err := scanBooking(rows, &title, &city, &firstName, &lastName)
		if err != nil {
			return nil, err
		}
		b.EquipmentTitle = title
		b.EquipmentCity = city
		b.RenterFirstName = firstName
		b.RenterLastName = lastName
		bookings = append(bookings, *b)
	}
	return bookings, rows.Err()
}

func (r *bookingRepository) ListApprovedStartingOn(ctx context.Context, date string) ([]domain.Booking, error) {
	query := `SELECT ` + bookingColumns + `, e.title, e.city, ru.email, ru.first_name
	          FROM bookings b
	          JOIN equipment e ON e.id = b.equipment_id
	          JOIN users ru ON ru.id = b.renter_id
	          WHERE b.status = 'approved' AND b.start_date = $1`
	rows, err := r.db.QueryContext(ctx, query, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookings []domain.Booking
	for rows.Next() {
		var title, city, email, firstName string
		b, err := scanBooking(rows, &title, &city, &email, &firstName)
		if err != nil {
			return nil, err
		}
		b.EquipmentTitle = title
		b.EquipmentCity = city
		b.RenterEmail = email
		b.RenterFirstName = firstName
		bookings = append(bookings, *b)
	}
	return bookings, rows.Err()
}
