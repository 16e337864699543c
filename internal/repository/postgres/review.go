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

type reviewRepository struct {
	db *sql.DB
}

func NewReviewRepository(db *sql.DB) repository.ReviewRepository {
	return &reviewRepository{db: db}
}

const reviewColumns = `r.id, r.booking_id, r.reviewer_id, r.review_type, r.target_id, r.rating,
	COALESCE(r.title, ''), COALESCE(r.comment, ''), r.is_approved, r.is_hidden,
	COALESCE(r.hidden_reason, ''), r.hidden_by, r.created_at`

func scanReview(row rowScanner, extra ...any) (*domain.Review, error) {
	rv := &domain.Review{}
	dest := []any{
		&rv.ID, &rv.BookingID, &rv.ReviewerID, &rv.ReviewType, &rv.TargetID, &rv.Rating,
		&rv.Title, &rv.Comment, &rv.IsApproved, &rv.IsHidden,
		&rv.HiddenReason, &rv.HiddenBy, &rv.CreatedAt,
	}
	dest = append(dest, extra...)
	if err := row.Scan(dest...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("review: %w", domain.ErrNotFound)
		}
		return nil, err
	}
	return rv, nil
}

func (r *reviewRepository) Create(ctx context.Context, rv *domain.Review) error {
	query := `INSERT INTO reviews (booking_id, reviewer_id, review_type, target_id, rating,
	            title, comment, is_approved, created_at)
	          VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), NULLIF($7, ''), $8, $9)
	          RETURNING id`
	return r.db.QueryRowContext(ctx, query,
		rv.BookingID, rv.ReviewerID, rv.ReviewType, rv.TargetID, rv.Rating,
		rv.Title, rv.Comment, rv.IsApproved, time.Now()).Scan(&rv.ID)
}

func (r *reviewRepository) Exists(ctx context.Context, bookingID, reviewerID int32, reviewType domain.ReviewType) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM reviews WHERE booking_id = $1 AND reviewer_id = $2 AND review_type = $3)`,
		bookingID, reviewerID, reviewType).Scan(&exists)
	return exists, err
}

func (r *reviewRepository) List(ctx context.Context, filter repository.ReviewFilter, page, pageSize int32) ([]domain.Review, int32, error) {
	conditions := []string{"r.is_hidden = false", "r.is_approved = true"}
	args := []any{}
	argIdx := 1

	if filter.TargetID != 0 {
		conditions = append(conditions, fmt.Sprintf("r.target_id = $%d", argIdx))
		args = append(args, filter.TargetID)
		argIdx++
	}
	if filter.ReviewType != "" {
		conditions = append(conditions, fmt.Sprintf("r.review_type = $%d", argIdx))
		args = append(args, filter.ReviewType)
		argIdx++
	}
	where := "WHERE " + strings.Join(conditions, " AND ")

	var count int32
	if err := r.db.QueryRowContext(ctx, "SELECT count(*) FROM reviews r "+where, args...).Scan(&count); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT %s, u.first_name, u.last_name, COALESCE(u.profile_image, '')
	          FROM reviews r
	          JOIN users u ON u.id = r.reviewer_id
	          %s ORDER BY r.created_at DESC LIMIT $%d OFFSET $%d`,
		reviewColumns, where, argIdx, argIdx+1)
	args = append(args, pageSize, (page-1)*pageSize)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var reviews []domain.Review
	for rows.Next() {
		var first, last, image string
		rv, err := scanReview(rows, &first, &last, &image)
		if err != nil {
			return nil, 0, err
		}
		rv.ReviewerFirstName = first
		rv.ReviewerLastName = last
		rv.ReviewerImage = image
		reviews = append(reviews, *rv)
	}
	return reviews, count, rows.Err()
}

func (r *reviewRepository) ListByReviewer(ctx context.Context, reviewerID int32) ([]domain.Review, error) {
	query := `SELECT ` + reviewColumns + `, e.title
	          FROM reviews r
	          JOIN bookings b ON b.id = r.booking_id
	          JOIN equipment e ON e.id = b.equipment_id
	          WHERE r.reviewer_id = $1
	          ORDER BY r.created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, reviewerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reviews []domain.Review
	for rows.Next() {
		var title string
		rv, err := scanReview(rows, &title)
		if err != nil {
			return nil, err
		}
		rv.EquipmentTitle = title
		reviews = append(reviews, *rv)
	}
	return reviews, rows.Err()
}

func (r *reviewRepository) Hide(ctx context.Context, id, adminID int32, reason string) (*domain.Review, error) {
	query := `UPDATE reviews r SET is_hidden = true, hidden_reason = NULLIF($1, ''), hidden_by = $2
	          WHERE r.id = $3
	          RETURNING ` + reviewColumns
	return scanReview(r.db.QueryRowContext(ctx, query, reason, adminID, id))
}

func (r *reviewRepository) RecomputeEquipmentRating(ctx context.Context, equipmentID int32) error {
	query := `UPDATE equipment SET average_rating = COALESCE(
	            (SELECT ROUND(AVG(rating)::numeric, 2) FROM reviews
	              WHERE review_type = 'equipment' AND target_id = $1 AND is_hidden = false), 0)
	          WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, equipmentID)
	return err
}

func (r *reviewRepository) RecomputeOperatorRating(ctx context.Context, operatorID int32) error {
	query := `UPDATE operators SET average_rating = COALESCE(
	            (SELECT ROUND(AVG(rating)::numeric, 2) FROM reviews
	              WHERE review_type = 'operator' AND target_id = $1 AND is_hidden = false), 0)
	          WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, operatorID)
	return err
}
