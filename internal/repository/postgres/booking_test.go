package postgres

import (
	"context"
	"testing"

	"equiprent-backend/internal/domain"
	"equiprent-backend/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBooking() *domain.Booking {
	return &domain.Booking{
		EquipmentID: 2,
		RenterID:    3,
		OwnerID:     4,
		StartDate:   "2026-09-01",
		EndDate:     "2026-09-03",
		DurationType: domain.RentalDurationDaily,
		TotalDays:   3,
		Status:      domain.BookingStatusPending,
	}
}

func TestBookingRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewBookingRepository(db)
	ctx := context.Background()

	equipmentRow := func(ownerID, rented, quantity int32) *sqlmock.Rows {
		return sqlmock.NewRows([]string{"owner_id", "rented_quantity", "quantity"}).
			AddRow(ownerID, rented, quantity)
	}

	t.Run("Success", func(t *testing.T) {
		b := newBooking()
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT owner_id, rented_quantity, quantity FROM equipment").
			WithArgs(b.EquipmentID).
			WillReturnRows(equipmentRow(b.OwnerID, 0, 1))
		mock.ExpectQuery(`SELECT count\(\*\) FROM bookings`).
			WithArgs(b.EquipmentID, b.StartDate, b.EndDate).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
		mock.ExpectQuery("INSERT INTO bookings").
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(5))
		mock.ExpectCommit()

		err := repo.Create(ctx, b)
		assert.NoError(t, err)
		assert.Equal(t, int32(5), b.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Date conflict", func(t *testing.T) {
		b := newBooking()
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT owner_id, rented_quantity, quantity FROM equipment").
			WithArgs(b.EquipmentID).
			WillReturnRows(equipmentRow(b.OwnerID, 0, 1))
		mock.ExpectQuery(`SELECT count\(\*\) FROM bookings`).
			WithArgs(b.EquipmentID, b.StartDate, b.EndDate).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
		mock.ExpectRollback()

		err := repo.Create(ctx, b)
		assert.ErrorIs(t, err, domain.ErrConflict)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("All units rented", func(t *testing.T) {
		b := newBooking()
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT owner_id, rented_quantity, quantity FROM equipment").
			WithArgs(b.EquipmentID).
			WillReturnRows(equipmentRow(b.OwnerID, 2, 2))
		mock.ExpectRollback()

		err := repo.Create(ctx, b)
		assert.ErrorIs(t, err, domain.ErrConflict)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Own equipment", func(t *testing.T) {
		b := newBooking()
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT owner_id, rented_quantity, quantity FROM equipment").
			WithArgs(b.EquipmentID).
			WillReturnRows(equipmentRow(b.RenterID, 0, 1))
		mock.ExpectRollback()

		err := repo.Create(ctx, b)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Units check wins over ownership", func(t *testing.T) {
		b := newBooking()
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT owner_id, rented_quantity, quantity FROM equipment").
			WithArgs(b.EquipmentID).
			WillReturnRows(equipmentRow(b.RenterID, 2, 2))
		mock.ExpectRollback()

		err := repo.Create(ctx, b)
		assert.ErrorIs(t, err, domain.ErrConflict)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Equipment not bookable", func(t *testing.T) {
		b := newBooking()
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT owner_id, rented_quantity, quantity FROM equipment").
			WithArgs(b.EquipmentID).
			WillReturnRows(sqlmock.NewRows([]string{"owner_id", "rented_quantity", "quantity"}))
		mock.ExpectRollback()

		err := repo.Create(ctx, b)
		assert.ErrorIs(t, err, domain.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestBookingRepository_ApplyStatusChange(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewBookingRepository(db)
	ctx := context.Background()

	t.Run("Approve", func(t *testing.T) {
		b := newBooking()
		b.ID = 7
		mock.ExpectBegin()
		mock.ExpectExec("UPDATE bookings SET").
			WithArgs(domain.BookingStatusApproved, b.ID, domain.BookingStatusPending).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := repo.ApplyStatusChange(ctx, b, repository.StatusChange{
			Status:     domain.BookingStatusApproved,
			PrevStatus: domain.BookingStatusPending,
		})
		assert.NoError(t, err)
		assert.Equal(t, domain.BookingStatusApproved, b.Status)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Lost race on previous status", func(t *testing.T) {
		b := newBooking()
		b.ID = 7
		mock.ExpectBegin()
		mock.ExpectExec("UPDATE bookings SET").
			WithArgs(domain.BookingStatusApproved, b.ID, domain.BookingStatusPending).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		err := repo.ApplyStatusChange(ctx, b, repository.StatusChange{
			Status:     domain.BookingStatusApproved,
			PrevStatus: domain.BookingStatusPending,
		})
		assert.ErrorIs(t, err, domain.ErrConflict)
		assert.Equal(t, domain.BookingStatusPending, b.Status)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Start bumps the rented counter", func(t *testing.T) {
		b := newBooking()
		b.ID = 7
		b.Status = domain.BookingStatusApproved
		mock.ExpectBegin()
		mock.ExpectExec("UPDATE bookings SET").
			WithArgs(domain.BookingStatusActive, b.ID, domain.BookingStatusApproved).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("UPDATE equipment SET").
			WithArgs(b.EquipmentID).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := repo.ApplyStatusChange(ctx, b, repository.StatusChange{
			Status:     domain.BookingStatusActive,
			PrevStatus: domain.BookingStatusApproved,
		})
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Complete releases the rented counter", func(t *testing.T) {
		b := newBooking()
		b.ID = 7
		b.Status = domain.BookingStatusActive
		mock.ExpectBegin()
		mock.ExpectExec("UPDATE bookings SET").
			WithArgs(domain.BookingStatusCompleted, b.ID, domain.BookingStatusActive).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("UPDATE equipment SET").
			WithArgs(b.EquipmentID).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := repo.ApplyStatusChange(ctx, b, repository.StatusChange{
			Status:     domain.BookingStatusCompleted,
			PrevStatus: domain.BookingStatusActive,
		})
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Reject records the reason", func(t *testing.T) {
		b := newBooking()
		b.ID = 7
		mock.ExpectBegin()
		mock.ExpectExec("UPDATE bookings SET").
			WithArgs(domain.BookingStatusRejected, "too far away", b.ID, domain.BookingStatusPending).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := repo.ApplyStatusChange(ctx, b, repository.StatusChange{
			Status:          domain.BookingStatusRejected,
			PrevStatus:      domain.BookingStatusPending,
			RejectionReason: "too far away",
		})
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
