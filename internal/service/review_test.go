package service

import (
	"context"
	"testing"

	"equiprent-backend/internal/domain"
	"equiprent-backend/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeReviewRepo struct {
	repository.ReviewRepository
	existing   bool
	created    *domain.Review
	recomputed []int32
}

func (f *fakeReviewRepo) Create(ctx context.Context, rv *domain.Review) error {
	rv.ID = 3
	f.created = rv
	return nil
}

func (f *fakeReviewRepo) Exists(ctx context.Context, bookingID, reviewerID int32, reviewType domain.ReviewType) (bool, error) {
	return f.existing, nil
}

func (f *fakeReviewRepo) RecomputeEquipmentRating(ctx context.Context, equipmentID int32) error {
	f.recomputed = append(f.recomputed, equipmentID)
	return nil
}

func (f *fakeReviewRepo) RecomputeOperatorRating(ctx context.Context, operatorID int32) error {
	f.recomputed = append(f.recomputed, operatorID)
	return nil
}

func newReviewFixture(status domain.BookingStatus) (*fakeReviewRepo, ReviewService) {
	opID := int32(30)
	bookings := &fakeBookingRepo{booking: &domain.Booking{
		ID:          7,
		EquipmentID: 1,
		RenterID:    10,
		OwnerID:     20,
		OperatorID:  &opID,
		Status:      status,
	}}
	reviews := &fakeReviewRepo{}
	return reviews, NewReviewService(reviews, bookings, nopNotifier{})
}

func TestReviewCreate(t *testing.T) {
	t.Run("Equipment review recomputes rating", func(t *testing.T) {
		reviews, svc := newReviewFixture(domain.BookingStatusCompleted)
		rv, err := svc.Create(context.Background(), CreateReviewInput{
			BookingID: 7, ReviewerID: 10, ReviewType: domain.ReviewTypeEquipment,
			Rating: 4, Comment: "solid machine",
		})
		require.NoError(t, err)
		assert.Equal(t, int32(1), rv.TargetID)
		assert.True(t, rv.IsApproved)
		assert.Equal(t, []int32{1}, reviews.recomputed)
	})

	t.Run("Operator review targets the operator", func(t *testing.T) {
		reviews, svc := newReviewFixture(domain.BookingStatusCompleted)
		rv, err := svc.Create(context.Background(), CreateReviewInput{
			BookingID: 7, ReviewerID: 10, ReviewType: domain.ReviewTypeOperator, Rating: 5,
		})
		require.NoError(t, err)
		assert.Equal(t, int32(30), rv.TargetID)
		assert.Equal(t, []int32{30}, reviews.recomputed)
	})

	t.Run("Owner review targets the owner", func(t *testing.T) {
		_, svc := newReviewFixture(domain.BookingStatusCompleted)
		rv, err := svc.Create(context.Background(), CreateReviewInput{
			BookingID: 7, ReviewerID: 10, ReviewType: domain.ReviewTypeOwner, Rating: 3,
		})
		require.NoError(t, err)
		assert.Equal(t, int32(20), rv.TargetID)
	})

	t.Run("Rating out of range", func(t *testing.T) {
		_, svc := newReviewFixture(domain.BookingStatusCompleted)
		_, err := svc.Create(context.Background(), CreateReviewInput{
			BookingID: 7, ReviewerID: 10, ReviewType: domain.ReviewTypeEquipment, Rating: 6,
		})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("Only the renter may review", func(t *testing.T) {
		_, svc := newReviewFixture(domain.BookingStatusCompleted)
		_, err := svc.Create(context.Background(), CreateReviewInput{
			BookingID: 7, ReviewerID: 20, ReviewType: domain.ReviewTypeEquipment, Rating: 4,
		})
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("Booking must be completed", func(t *testing.T) {
		_, svc := newReviewFixture(domain.BookingStatusActive)
		_, err := svc.Create(context.Background(), CreateReviewInput{
			BookingID: 7, ReviewerID: 10, ReviewType: domain.ReviewTypeEquipment, Rating: 4,
		})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("Duplicate review", func(t *testing.T) {
		reviews, svc := newReviewFixture(domain.BookingStatusCompleted)
		reviews.existing = true
		_, err := svc.Create(context.Background(), CreateReviewInput{
			BookingID: 7, ReviewerID: 10, ReviewType: domain.ReviewTypeEquipment, Rating: 4,
		})
		assert.ErrorIs(t, err, domain.ErrConflict)
	})
}
