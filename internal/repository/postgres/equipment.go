package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"equiprent-backend/internal/domain"
	"equiprent-backend/internal/repository"
)

type equipmentRepository struct {
	db *sql.DB
}

func NewEquipmentRepository(db *sql.DB) repository.EquipmentRepository {
	return &equipmentRepository{db: db}
}

const equipmentColumns = `e.id, e.owner_id, e.category_id, e.title, e.description, e.brand, e.model,
	e.model_year, e.serial_number, e.capacity, e.specifications,
	e.hourly_rate, e.daily_rate, e.weekly_rate, e.monthly_rate, e.minimum_rental_duration,
	e.city, e.address, e.latitude, e.longitude,
	e.has_operator, e.operator_rate_per_day, e.has_transportation, e.transportation_details,
	e.auto_approve_bookings, e.quantity, e.rented_quantity,
	e.is_available, e.is_approved, e.is_active, e.approval_notes, e.average_rating,
	e.created_at, e.updated_at`

// updatableEquipmentColumns whitelists what UpdateFields may touch.
var updatableEquipmentColumns = map[string]bool{
	"category_id": true, "title": true, "description": true, "brand": true,
	"model": true, "model_year": true, "serial_number": true, "capacity": true,
	"specifications": true, "hourly_rate": true, "daily_rate": true,
	"weekly_rate": true, "monthly_rate": true, "minimum_rental_duration": true,
	"city": true, "address": true, "latitude": true, "longitude": true,
	"has_operator": true, "operator_rate_per_day": true,
	"has_transportation": true, "transportation_details": true,
	"auto_approve_bookings": true, "quantity": true, "is_available": true,
}

func scanEquipment(row rowScanner, extra ...any) (*domain.Equipment, error) {
	e := &domain.Equipment{}
	var (
		brand, model, serialNumber, capacity         sql.NullString
		address, transportDetails, approvalNotes     sql.NullString
		minDuration                                  sql.NullString
		specs                                        []byte
		modelYear                                    sql.NullInt32
		avgRating                                    sql.NullFloat64
	)
	dest := []any{
		&e.ID, &e.OwnerID, &e.CategoryID, &e.Title, &e.Description, &brand, &model,
		&modelYear, &serialNumber, &capacity, &specs,
		&e.HourlyRate, &e.DailyRate, &e.WeeklyRate, &e.MonthlyRate, &minDuration,
		&e.City, &address, &e.Latitude, &e.Longitude,
		&e.HasOperator, &e.OperatorRatePerDay, &e.HasTransportation, &transportDetails,
		&e.AutoApproveBookings, &e.Quantity, &e.RentedQuantity,
		&e.IsAvailable, &e.IsApproved, &e.IsActive, &approvalNotes, &avgRating,
		&e.CreatedAt, &e.UpdatedAt,
	}
	dest = append(dest, extra...)
	if err := row.Scan(dest...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("equipment: %w", domain.ErrNotFound)
		}
		return nil, err
	}
	e.Brand = brand.String
	e.Model = model.String
	e.SerialNumber = serialNumber.String
	e.Capacity = capacity.String
	e.Address = address.String
	e.TransportationDetails = transportDetails.String
	e.ApprovalNotes = approvalNotes.String
	e.MinimumRentalDuration = domain.RentalDuration(minDuration.String)
	e.AverageRating = avgRating.Float64
	if modelYear.Valid {
		e.ModelYear = &modelYear.Int32
	}
	if len(specs) > 0 {
		if err := json.Unmarshal(specs, &e.Specifications); err != nil {
			return nil, fmt.Errorf("decode specifications: %w", err)
		}
	}
	e.AvailableQuantity = e.Quantity - e.RentedQuantity
	if e.AvailableQuantity < 0 {
		e.AvailableQuantity = 0
	}
	return e, nil
}

func (r *equipmentRepository) Create(ctx context.Context, eq *domain.Equipment) error {
	specs, err := json.Marshal(eq.Specifications)
	if err != nil {
		return fmt.Errorf("encode specifications: %w", err)
	}
	if eq.Specifications == nil {
		specs = []byte("{}")
	}
	query := `INSERT INTO equipment (owner_id, category_id, title, description, brand, model,
	            model_year, serial_number, capacity, specifications,
	            hourly_rate, daily_rate, weekly_rate, monthly_rate, minimum_rental_duration,
	            city, address, latitude, longitude,
	            has_operator, operator_rate_per_day, has_transportation, transportation_details,
	            auto_approve_bookings, quantity, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15,
	            $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27)
	          RETURNING id, is_available, is_approved, is_active`
	now := time.Now()
	return r.db.QueryRowContext(ctx, query,
		eq.OwnerID, eq.CategoryID, eq.Title, eq.Description, nullStr(eq.Brand), nullStr(eq.Model),
		eq.ModelYear, nullStr(eq.SerialNumber), nullStr(eq.Capacity), specs,
		eq.HourlyRate, eq.DailyRate, eq.WeeklyRate, eq.MonthlyRate, eq.MinimumRentalDuration,
		eq.City, nullStr(eq.Address), eq.Latitude, eq.Longitude,
		eq.HasOperator, eq.OperatorRatePerDay, eq.HasTransportation, nullStr(eq.TransportationDetails),
		eq.AutoApproveBookings, eq.Quantity, now, now,
	).Scan(&eq.ID, &eq.IsAvailable, &eq.IsApproved, &eq.IsActive)
}

func (r *equipmentRepository) GetByID(ctx context.Context, id int32) (*domain.Equipment, error) {
	query := `SELECT ` + equipmentColumns + `, c.name
	          FROM equipment e
	          LEFT JOIN equipment_categories c ON c.id = e.category_id
	          WHERE e.id = $1 AND e.is_active = true`
	var categoryName sql.NullString
	eq, err := scanEquipment(r.db.QueryRowContext(ctx, query, id), &categoryName)
	if err != nil {
		return nil, err
	}
	eq.CategoryName = categoryName.String

	owner, err := scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, eq.OwnerID))
	if err == nil {
		eq.Owner = owner
	}
	return eq, nil
}

func (r *equipmentRepository) GetBookable(ctx context.Context, id int32) (*domain.Equipment, error) {
	query := `SELECT ` + equipmentColumns + `
	          FROM equipment e
	          WHERE e.id = $1 AND e.is_active = true AND e.is_approved = true`
	eq, err := scanEquipment(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, err
	}
	owner, err := scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, eq.OwnerID))
	if err != nil {
		return nil, err
	}
	eq.Owner = owner
	return eq, nil
}

func (r *equipmentRepository) UpdateFields(ctx context.Context, id, ownerID int32, updates map[string]any) (*domain.Equipment, error) {
	sets := []string{}
	args := []any{}
	argIdx := 1
	for col, val := range updates {
		if !updatableEquipmentColumns[col] {
			return nil, fmt.Errorf("column %q: %w", col, domain.ErrInvalidInput)
		}
		if col == "specifications" {
			encoded, err := json.Marshal(val)
			if err != nil {
				return nil, fmt.Errorf("encode specifications: %w", err)
			}
			val = encoded
		}
		sets = append(sets, fmt.Sprintf("%s = $%d", col, argIdx))
		args = append(args, val)
		argIdx++
	}
	if len(sets) == 0 {
		return nil, fmt.Errorf("no fields to update: %w", domain.ErrInvalidInput)
	}
	sets = append(sets, fmt.Sprintf("updated_at = $%d", argIdx))
	args = append(args, time.Now())
	argIdx++

	query := fmt.Sprintf(`UPDATE equipment e SET %s WHERE e.id = $%d AND e.owner_id = $%d AND e.is_active = true
	          RETURNING %s`, strings.Join(sets, ", "), argIdx, argIdx+1, equipmentColumns)
	args = append(args, id, ownerID)
	return scanEquipment(r.db.QueryRowContext(ctx, query, args...))
}

func (r *equipmentRepository) SoftDelete(ctx context.Context, id, ownerID int32) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE equipment SET is_active = false, updated_at = NOW() WHERE id = $1 AND owner_id = $2 AND is_active = true`,
		id, ownerID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("equipment: %w", domain.ErrNotFound)
	}
	return nil
}

func (r *equipmentRepository) IsOwnedBy(ctx context.Context, id, ownerID int32) (bool, error) {
	var owned bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM equipment WHERE id = $1 AND owner_id = $2 AND is_active = true)`,
		id, ownerID).Scan(&owned)
	return owned, err
}

var equipmentSortColumns = map[string]string{
	"price":   "e.daily_rate",
	"rating":  "e.average_rating",
	"newest":  "e.created_at",
	"created": "e.created_at",
}

func (r *equipmentRepository) Search(ctx context.Context, filter repository.EquipmentFilter, page, pageSize int32) ([]domain.Equipment, int32, error) {
	conditions := []string{"e.is_active = true", "e.is_approved = true", "e.is_available = true"}
	args := []any{}
	argIdx := 1

	if filter.CategoryID != nil {
		conditions = append(conditions, fmt.Sprintf("e.category_id = $%d", argIdx))
		args = append(args, *filter.CategoryID)
		argIdx++
	}
	if filter.City != "" {
		conditions = append(conditions, fmt.Sprintf("LOWER(e.city) = LOWER($%d)", argIdx))
		args = append(args, filter.City)
		argIdx++
	}
	if filter.MinDaily != nil {
		conditions = append(conditions, fmt.Sprintf("e.daily_rate >= $%d", argIdx))
		args = append(args, *filter.MinDaily)
		argIdx++
	}
	if filter.MaxDaily != nil {
		conditions = append(conditions, fmt.Sprintf("e.daily_rate <= $%d", argIdx))
		args = append(args, *filter.MaxDaily)
		argIdx++
	}
	if filter.HasOperator {
		conditions = append(conditions, "e.has_operator = true")
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf(
			"(LOWER(e.title) LIKE LOWER($%d) OR LOWER(e.description) LIKE LOWER($%d) OR LOWER(e.brand) LIKE LOWER($%d))",
			argIdx, argIdx, argIdx))
		args = append(args, "%"+filter.Search+"%")
		argIdx++
	}

	distanceExpr := "NULL::float8"
	geo := filter.Latitude != nil && filter.Longitude != nil
	if geo {
		// Haversine in km over the indexed lat/lng columns.
		distanceExpr = fmt.Sprintf(`(6371 * acos(LEAST(1.0,
			cos(radians($%d)) * cos(radians(e.latitude)) * cos(radians(e.longitude) - radians($%d))
			+ sin(radians($%d)) * sin(radians(e.latitude)))))`, argIdx, argIdx+1, argIdx)
		args = append(args, *filter.Latitude, *filter.Longitude)
		argIdx += 2
		conditions = append(conditions, "e.latitude IS NOT NULL AND e.longitude IS NOT NULL")
	}

	where := "WHERE " + strings.Join(conditions, " AND ")

	orderBy := "e.created_at DESC"
	if col, ok := equipmentSortColumns[filter.SortBy]; ok {
		dir := "ASC"
		if strings.EqualFold(filter.SortOrder, "desc") || filter.SortBy == "rating" || filter.SortBy == "newest" {
			dir = "DESC"
		}
		orderBy = col + " " + dir
	} else if geo {
		orderBy = "distance ASC"
	}

	having := ""
	if geo && filter.RadiusKM != nil {
		having = fmt.Sprintf("AND %s <= $%d", distanceExpr, argIdx)
		args = append(args, *filter.RadiusKM)
		argIdx++
	}

	countQuery := fmt.Sprintf("SELECT count(*) FROM equipment e %s %s", where, having)
	var count int32
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&count); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT %s, %s AS distance,
	            (SELECT ei.image_url FROM equipment_images ei
	              WHERE ei.equipment_id = e.id ORDER BY ei.is_primary DESC, ei.sort_order ASC LIMIT 1)
	          FROM equipment e %s %s
	          ORDER BY %s LIMIT $%d OFFSET $%d`,
		equipmentColumns, distanceExpr, where, having, orderBy, argIdx, argIdx+1)
	args = append(args, pageSize, (page-1)*pageSize)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var results []domain.Equipment
	for rows.Next() {
		var distance sql.NullFloat64
		var primaryImage sql.NullString
		eq, err := scanEquipment(rows, &distance, &primaryImage)
		if err != nil {
			return nil, 0, err
		}
		if distance.Valid {
			d := distance.Float64
			eq.Distance = &d
		}
		eq.PrimaryImage = primaryImage.String
		results = append(results, *eq)
	}
	return results, count, rows.Err()
}

func (r *equipmentRepository) ListByOwner(ctx context.Context, ownerID int32, status string, page, pageSize int32) ([]domain.Equipment, int32, error) {
	conditions := []string{"e.owner_id = $1", "e.is_active = true"}
	args := []any{ownerID}
	switch status {
	case "approved":
		conditions = append(conditions, "e.is_approved = true")
	case "pending":
		conditions = append(conditions, "e.is_approved = false")
	}
	where := "WHERE " + strings.Join(conditions, " AND ")

	var count int32
	if err := r.db.QueryRowContext(ctx, "SELECT count(*) FROM equipment e "+where, args...).Scan(&count); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT %s,
	            (SELECT ei.image_url FROM equipment_images ei
	              WHERE ei.equipment_id = e.id ORDER BY ei.is_primary DESC, ei.sort_order ASC LIMIT 1),
	            (SELECT count(*) FROM bookings b WHERE b.equipment_id = e.id)
	          FROM equipment e %s
	          ORDER BY e.created_at DESC LIMIT $%d OFFSET $%d`,
		equipmentColumns, where, len(args)+1, len(args)+2)
	args = append(args, pageSize, (page-1)*pageSize)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var results []domain.Equipment
	for rows.Next() {
		var primaryImage sql.NullString
		var bookingCount int32
		eq, err := scanEquipment(rows, &primaryImage, &bookingCount)
		if err != nil {
			return nil, 0, err
		}
		eq.PrimaryImage = primaryImage.String
		eq.BookingCount = bookingCount
		results = append(results, *eq)
	}
	return results, count, rows.Err()
}

func (r *equipmentRepository) ListPendingApproval(ctx context.Context, page, pageSize int32) ([]domain.Equipment, error) {
	query := `SELECT ` + equipmentColumns + `
	          FROM equipment e
	          WHERE e.is_approved = false AND e.is_active = true
	          ORDER BY e.created_at ASC LIMIT $1 OFFSET $2`
	rows, err := r.db.QueryContext(ctx, query, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Equipment
	for rows.Next() {
		eq, err := scanEquipment(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, *eq)
	}
	return results, rows.Err()
}

func (r *equipmentRepository) SetApproval(ctx context.Context, id int32, approved bool, notes string) (*domain.Equipment, error) {
	query := `UPDATE equipment e SET is_approved = $1, approval_notes = NULLIF($2, ''), updated_at = NOW()
	          WHERE e.id = $3 AND e.is_active = true
	          RETURNING ` + equipmentColumns
	return scanEquipment(r.db.QueryRowContext(ctx, query, approved, notes, id))
}

func (r *equipmentRepository) ApprovalCounts(ctx context.Context) (total, approved, pending int32, err error) {
	query := `SELECT count(*),
	            count(*) FILTER (WHERE is_approved),
	            count(*) FILTER (WHERE NOT is_approved)
	          FROM equipment WHERE is_active = true`
	err = r.db.QueryRowContext(ctx, query).Scan(&total, &approved, &pending)
	return
}

func (r *equipmentRepository) AddImage(ctx context.Context, img *domain.EquipmentImage) error {
	query := `INSERT INTO equipment_images (equipment_id, image_url, is_primary, sort_order, created_at)
	          VALUES ($1, $2, $3, $4, $5) RETURNING id`
	return r.db.QueryRowContext(ctx, query,
		img.EquipmentID, img.ImageURL, img.IsPrimary, img.SortOrder, time.Now()).Scan(&img.ID)
}

func (r *equipmentRepository) ListImages(ctx context.Context, equipmentID int32) ([]domain.EquipmentImage, error) {
	query := `SELECT id, equipment_id, image_url, is_primary, sort_order, created_at
	          FROM equipment_images WHERE equipment_id = $1
	          ORDER BY is_primary DESC, sort_order ASC`
	rows, err := r.db.QueryContext(ctx, query, equipmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var images []domain.EquipmentImage
	for rows.Next() {
		var img domain.EquipmentImage
		if err := rows.Scan(&img.ID, &img.EquipmentID, &img.ImageURL, &img.IsPrimary, &img.SortOrder, &img.CreatedAt); err != nil {
			return nil, err
		}
		images = append(images, img)
	}
	return images, rows.Err()
}

func (r *equipmentRepository) CountImages(ctx context.Context, equipmentID int32) (int32, error) {
	var count int32
	err := r.db.QueryRowContext(ctx,
		`SELECT count(*) FROM equipment_images WHERE equipment_id = $1`, equipmentID).Scan(&count)
	return count, err
}

func (r *equipmentRepository) DeleteImage(ctx context.Context, imageID, equipmentID, ownerID int32) (string, error) {
	var imageURL string
	err := r.db.QueryRowContext(ctx,
		`DELETE FROM equipment_images ei
	         USING equipment e
	         WHERE ei.id = $1 AND ei.equipment_id = $2 AND ei.equipment_id = e.id AND e.owner_id = $3
	         RETURNING ei.image_url`,
		imageID, equipmentID, ownerID).Scan(&imageURL)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("equipment image: %w", domain.ErrNotFound)
	}
	return imageURL, err
}

func (r *equipmentRepository) SetPrimaryImage(ctx context.Context, equipmentID, imageID int32) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`UPDATE equipment_images SET is_primary = false WHERE equipment_id = $1`, equipmentID); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx,
		`UPDATE equipment_images SET is_primary = true WHERE id = $1 AND equipment_id = $2`,
		imageID, equipmentID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("equipment image: %w", domain.ErrNotFound)
	}
	return tx.Commit()
}

func (r *equipmentRepository) UpsertAvailability(ctx context.Context, days []domain.AvailabilityDay) error {
	if len(days) == 0 {
		return nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `INSERT INTO equipment_availability (equipment_id, date, is_available, notes)
	          VALUES ($1, $2, $3, NULLIF($4, ''))
	          ON CONFLICT (equipment_id, date)
	          DO UPDATE SET is_available = EXCLUDED.is_available, notes = EXCLUDED.notes`
	for _, d := range days {
		if _, err := tx.ExecContext(ctx, query, d.EquipmentID, d.Date, d.IsAvailable, d.Notes); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (r *equipmentRepository) ListAvailability(ctx context.Context, equipmentID int32, horizonDays int32) ([]domain.AvailabilityDay, error) {
	query := `SELECT equipment_id, to_char(date, 'YYYY-MM-DD'), is_available, COALESCE(notes, '')
	          FROM equipment_availability
	          WHERE equipment_id = $1 AND date >= CURRENT_DATE AND date < CURRENT_DATE + $2 * INTERVAL '1 day'
	          ORDER BY date ASC`
	rows, err := r.db.QueryContext(ctx, query, equipmentID, horizonDays)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var days []domain.AvailabilityDay
	for rows.Next() {
		var d domain.AvailabilityDay
		if err := rows.Scan(&d.EquipmentID, &d.Date, &d.IsAvailable, &d.Notes); err != nil {
			return nil, err
		}
		days = append(days, d)
	}
	return days, rows.Err()
}

func (r *equipmentRepository) ListCategories(ctx context.Context) ([]domain.EquipmentCategory, error) {
	query := `SELECT c.id, c.name, COALESCE(c.description, ''), COALESCE(c.icon, ''),
	            (SELECT count(*) FROM equipment e
	              WHERE e.category_id = c.id AND e.is_active = true AND e.is_approved = true)
	          FROM equipment_categories c ORDER BY c.name ASC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []domain.EquipmentCategory
	for rows.Next() {
		var c domain.EquipmentCategory
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.Icon, &c.EquipmentCount); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (r *equipmentRepository) CreateCategory(ctx context.Context, cat *domain.EquipmentCategory) error {
	query := `INSERT INTO equipment_categories (name, description, icon)
	          VALUES ($1, NULLIF($2, ''), NULLIF($3, '')) RETURNING id`
	return r.db.QueryRowContext(ctx, query, cat.Name, cat.Description, cat.Icon).Scan(&cat.ID)
}

func (r *equipmentRepository) UpdateCategory(ctx context.Context, cat *domain.EquipmentCategory) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE equipment_categories SET name = $1, description = NULLIF($2, ''), icon = NULLIF($3, '') WHERE id = $4`,
		cat.Name, cat.Description, cat.Icon, cat.ID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("category: %w", domain.ErrNotFound)
	}
	return nil
}
