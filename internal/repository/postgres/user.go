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

type userRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) repository.UserRepository {
	return &userRepository{db: db}
}

const userColumns = `id, email, phone, password_hash, role, first_name, last_name, company_name,
	address, city, state, country, postal_code, latitude, longitude,
	cnic_number, cnic_front_image, cnic_back_image, profile_image,
	is_verified, is_active, email_verified, phone_verified,
	registration_status, rejection_reason, verification_notes, approved_by, approved_at,
	otp_code, otp_expires_at, otp_purpose, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*domain.User, error) {
	u := &domain.User{}
	var (
		companyName, address, city, state, country, postalCode  sql.NullString
		cnicNumber, cnicFront, cnicBack, profileImage           sql.NullString
		rejectionReason, verificationNotes, otpCode, otpPurpose sql.NullString
		approvedBy                                              sql.NullInt32
		approvedAt, otpExpiresAt                                sql.NullTime
	)
	err := row.Scan(
		&u.ID, &u.Email, &u.Phone, &u.PasswordHash, &u.Role, &u.FirstName, &u.LastName, &companyName,
		&address, &city, &state, &country, &postalCode, &u.Latitude, &u.Longitude,
		&cnicNumber, &cnicFront, &cnicBack, &profileImage,
		&u.IsVerified, &u.IsActive, &u.EmailVerified, &u.PhoneVerified,
		&u.RegistrationStatus, &rejectionReason, &verificationNotes, &approvedBy, &approvedAt,
		&otpCode, &otpExpiresAt, &otpPurpose, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user: %w", domain.ErrNotFound)
		}
		return nil, err
	}
	u.CompanyName = companyName.String
	u.Address = address.String
	u.City = city.String
	u.State = state.String
	u.Country = country.String
	u.PostalCode = postalCode.String
	u.CNICNumber = cnicNumber.String
	u.CNICFrontImage = cnicFront.String
	u.CNICBackImage = cnicBack.String
	u.ProfileImage = profileImage.String
	u.RejectionReason = rejectionReason.String
	u.VerificationNotes = verificationNotes.String
	u.OTPCode = otpCode.String
	u.OTPPurpose = domain.OTPPurpose(otpPurpose.String)
	if approvedBy.Valid {
		u.ApprovedBy = &approvedBy.Int32
	}
	if approvedAt.Valid {
		t := approvedAt.Time
		u.ApprovedAt = &t
	}
	if otpExpiresAt.Valid {
		t := otpExpiresAt.Time
		u.OTPExpiresAt = &t
	}
	return u, nil
}

func (r *userRepository) Create(ctx context.Context, u *domain.User) error {
	query := `INSERT INTO users (email, phone, password_hash, role, first_name, last_name,
	            company_name, address, city, state, country,
	            otp_code, otp_expires_at, otp_purpose, email_verified, registration_status,
	            created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
	          RETURNING id`
	now := time.Now()
	return r.db.QueryRowContext(ctx, query,
		strings.ToLower(u.Email), u.Phone, u.PasswordHash, u.Role, u.FirstName, u.LastName,
		nullStr(u.CompanyName), nullStr(u.Address), nullStr(u.City), nullStr(u.State), nullStr(u.Country),
		nullStr(u.OTPCode), u.OTPExpiresAt, nullStr(string(u.OTPPurpose)), u.EmailVerified, u.RegistrationStatus,
		now, now,
	).Scan(&u.ID)
}

func (r *userRepository) GetByID(ctx context.Context, id int32) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.db.QueryRowContext(ctx, query, id))
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUser(r.db.QueryRowContext(ctx, query, strings.ToLower(email)))
}

func (r *userRepository) UpdateProfile(ctx context.Context, u *domain.User) error {
	query := `UPDATE users SET
	            phone = COALESCE(NULLIF($1, ''), phone),
	            first_name = COALESCE(NULLIF($2, ''), first_name),
	            last_name = COALESCE(NULLIF($3, ''), last_name),
	            company_name = COALESCE(NULLIF($4, ''), company_name),
	            address = COALESCE(NULLIF($5, ''), address),
	            city = COALESCE(NULLIF($6, ''), city),
	            state = COALESCE(NULLIF($7, ''), state),
	            country = COALESCE(NULLIF($8, ''), country),
	            postal_code = COALESCE(NULLIF($9, ''), postal_code),
	            latitude = COALESCE($10, latitude),
	            longitude = COALESCE($11, longitude),
	            cnic_number = COALESCE(NULLIF($12, ''), cnic_number),
	            updated_at = $13
	          WHERE id = $14`
	_, err := r.db.ExecContext(ctx, query,
		u.Phone, u.FirstName, u.LastName, u.CompanyName, u.Address, u.City, u.State,
		u.Country, u.PostalCode, u.Latitude, u.Longitude, u.CNICNumber, time.Now(), u.ID)
	return err
}

func (r *userRepository) UpdatePassword(ctx context.Context, userID int32, passwordHash string) error {
	query := `UPDATE users SET password_hash = $1, updated_at = $2 WHERE id = $3`
	_, err := r.db.ExecContext(ctx, query, passwordHash, time.Now(), userID)
	return err
}

func (r *userRepository) SetOTP(ctx context.Context, userID int32, code string, expiresAt time.Time, purpose domain.OTPPurpose) error {
	query := `UPDATE users SET otp_code = $1, otp_expires_at = $2, otp_purpose = $3 WHERE id = $4`
	_, err := r.db.ExecContext(ctx, query, code, expiresAt, purpose, userID)
	return err
}

func (r *userRepository) MarkEmailVerified(ctx context.Context, userID int32) error {
	query := `UPDATE users SET email_verified = true, otp_code = NULL, otp_expires_at = NULL, otp_purpose = NULL WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, userID)
	return err
}

func (r *userRepository) ClearOTP(ctx context.Context, userID int32) error {
	query := `UPDATE users SET otp_code = NULL, otp_expires_at = NULL, otp_purpose = NULL WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, userID)
	return err
}

func (r *userRepository) ExpireOTPCodes(ctx context.Context, now time.Time) (int64, error) {
	query := `UPDATE users SET otp_code = NULL, otp_expires_at = NULL, otp_purpose = NULL
	          WHERE otp_expires_at IS NOT NULL AND otp_expires_at < $1`
	res, err := r.db.ExecContext(ctx, query, now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *userRepository) SetProfileImage(ctx context.Context, userID int32, imageURL string) error {
	query := `UPDATE users SET profile_image = $1, updated_at = $2 WHERE id = $3`
	_, err := r.db.ExecContext(ctx, query, imageURL, time.Now(), userID)
	return err
}

func (r *userRepository) SetCNICImages(ctx context.Context, userID int32, frontURL, backURL string) error {
	query := `UPDATE users SET
	            cnic_front_image = COALESCE(NULLIF($1, ''), cnic_front_image),
	            cnic_back_image = COALESCE(NULLIF($2, ''), cnic_back_image),
	            updated_at = $3
	          WHERE id = $4`
	_, err := r.db.ExecContext(ctx, query, frontURL, backURL, time.Now(), userID)
	return err
}

func (r *userRepository) List(ctx context.Context, filter repository.UserFilter, page, pageSize int32) ([]domain.User, int32, error) {
	conditions := []string{}
	args := []any{}
	argIdx := 1

	if filter.Role != "" {
		conditions = append(conditions, fmt.Sprintf("role = $%d", argIdx))
		args = append(args, filter.Role)
		argIdx++
	}
	if filter.Verified != nil {
		conditions = append(conditions, fmt.Sprintf("is_verified = $%d", argIdx))
		args = append(args, *filter.Verified)
		argIdx++
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("registration_status = $%d", argIdx))
		args = append(args, filter.Status)
		argIdx++
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf(
			"(LOWER(first_name) LIKE LOWER($%d) OR LOWER(last_name) LIKE LOWER($%d) OR LOWER(email) LIKE LOWER($%d))",
			argIdx, argIdx, argIdx))
		args = append(args, "%"+filter.Search+"%")
		argIdx++
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	var count int32
	if err := r.db.QueryRowContext(ctx, "SELECT count(*) FROM users "+where, args...).Scan(&count); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf("SELECT %s FROM users %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d",
		userColumns, where, argIdx, argIdx+1)
	args = append(args, pageSize, (page-1)*pageSize)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		users = append(users, *u)
	}
	return users, count, rows.Err()
}

func (r *userRepository) ListPendingRegistrations(ctx context.Context, page, pageSize int32) ([]domain.User, int32, error) {
	where := `WHERE registration_status = 'pending' AND email_verified = true`

	var count int32
	if err := r.db.QueryRowContext(ctx, "SELECT count(*) FROM users "+where).Scan(&count); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf("SELECT %s FROM users %s ORDER BY created_at ASC LIMIT $1 OFFSET $2", userColumns, where)
	rows, err := r.db.QueryContext(ctx, query, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		users = append(users, *u)
	}
	return users, count, rows.Err()
}

func (r *userRepository) SetRegistrationDecision(ctx context.Context, userID, adminID int32, approved bool, reason string) (*domain.User, error) {
	status := domain.RegistrationStatusApproved
	if !approved {
		status = domain.RegistrationStatusRejected
	}
	query := `UPDATE users SET
	            registration_status = $1,
	            is_verified = $2,
	            rejection_reason = NULLIF($3, ''),
	            approved_by = $4,
	            approved_at = NOW(),
	            updated_at = NOW()
	          WHERE id = $5
	          RETURNING ` + userColumns
	return scanUser(r.db.QueryRowContext(ctx, query, status, approved, reason, adminID, userID))
}

func (r *userRepository) SetVerification(ctx context.Context, userID, adminID int32, verified bool, notes string) (*domain.User, error) {
	status := domain.RegistrationStatusPending
	if verified {
		status = domain.RegistrationStatusApproved
	}
	query := `UPDATE users SET
	            is_verified = $1,
	            registration_status = $2,
	            verification_notes = NULLIF($3, ''),
	            approved_by = $4,
	            approved_at = CASE WHEN $1 = true THEN NOW() ELSE NULL END,
	            updated_at = NOW()
	          WHERE id = $5
	          RETURNING ` + userColumns
	return scanUser(r.db.QueryRowContext(ctx, query, verified, status, notes, adminID, userID))
}

func (r *userRepository) CountByRole(ctx context.Context) (map[domain.UserRole]int32, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT role, count(*) FROM users GROUP BY role`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[domain.UserRole]int32)
	for rows.Next() {
		var role domain.UserRole
		var count int32
		if err := rows.Scan(&role, &count); err != nil {
			return nil, err
		}
		counts[role] = count
	}
	return counts, rows.Err()
}

func (r *userRepository) CountPendingRegistrations(ctx context.Context) (int32, error) {
	var count int32
	err := r.db.QueryRowContext(ctx,
		`SELECT count(*) FROM users WHERE registration_status = 'pending' AND email_verified = true`).Scan(&count)
	return count, err
}

// nullStr maps "" to NULL so empty optional fields do not mask COALESCE defaults.
func nullStr(s string) any {
	if s == "" {
		return nil
	}
	return s
}
