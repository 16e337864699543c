package service

import (
	"context"
	"testing"
	"time"

	"equiprent-backend/internal/domain"
	"equiprent-backend/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Fakes embed the interface so only the methods under test need overriding.

type fakeBookingRepo struct {
	repository.BookingRepository
	booking    *domain.Booking
	applied    *repository.StatusChange
	listFilter *repository.BookingFilter
}

func (f *fakeBookingRepo) Create(ctx context.Context, b *domain.Booking) error {
	b.ID = 7
	f.booking = b
	return nil
}

func (f *fakeBookingRepo) GetByID(ctx context.Context, id int32) (*domain.Booking, error) {
	if f.booking == nil || f.booking.ID != id {
		return nil, domain.ErrNotFound
	}
	b := *f.booking
	return &b, nil
}

func (f *fakeBookingRepo) ApplyStatusChange(ctx context.Context, b *domain.Booking, change repository.StatusChange) error {
	f.applied = &change
	return nil
}

func (f *fakeBookingRepo) List(ctx context.Context, filter repository.BookingFilter, page, pageSize int32) ([]domain.Booking, int32, error) {
	f.listFilter = &filter
	if f.booking == nil {
		return nil, 0, nil
	}
	return []domain.Booking{*f.booking}, 1, nil
}

type fakeEquipRepo struct {
	repository.EquipmentRepository
	equipment *domain.Equipment
}

func (f *fakeEquipRepo) GetBookable(ctx context.Context, id int32) (*domain.Equipment, error) {
	if f.equipment == nil || f.equipment.ID != id {
		return nil, domain.ErrNotFound
	}
	return f.equipment, nil
}

func (f *fakeEquipRepo) GetByID(ctx context.Context, id int32) (*domain.Equipment, error) {
	return f.GetBookable(ctx, id)
}

func (f *fakeEquipRepo) ListImages(ctx context.Context, equipmentID int32) ([]domain.EquipmentImage, error) {
	return nil, nil
}

type fakeUserRepo struct {
	repository.UserRepository
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id int32) (*domain.User, error) {
	return &domain.User{ID: id, Email: "user@example.com", FirstName: "Test"}, nil
}

type nopEmail struct{}

func (nopEmail) SendOTP(ctx context.Context, email, name, code string, purpose domain.OTPPurpose) error {
	return nil
}
func (nopEmail) SendRegistrationDecision(ctx context.Context, email, name string, approved bool, reason string) error {
	return nil
}
func (nopEmail) SendBookingRequest(ctx context.Context, ownerEmail, ownerName, renterName, equipmentTitle, startDate, endDate string) error {
	return nil
}
func (nopEmail) SendBookingDecision(ctx context.Context, renterEmail, renterName, equipmentTitle string, approved bool, reason string) error {
	return nil
}
func (nopEmail) SendBookingReminder(ctx context.Context, renterEmail, renterName, equipmentTitle, startDate string) error {
	return nil
}

type nopNotifier struct {
	NotificationService
}

func (nopNotifier) Notify(ctx context.Context, userID int32, notifType, title, message string, data map[string]string) {
}

func newBookingFixture(status domain.BookingStatus) (*fakeBookingRepo, BookingService) {
	bookings := &fakeBookingRepo{booking: &domain.Booking{
		ID:          7,
		EquipmentID: 1,
		RenterID:    10,
		OwnerID:     20,
		Status:      status,
	}}
	equip := &fakeEquipRepo{equipment: &domain.Equipment{ID: 1, OwnerID: 20, Title: "Mini excavator", DailyRate: 100}}
	svc := NewBookingService(bookings, equip, &fakeUserRepo{}, nopEmail{}, nopNotifier{})
	return bookings, svc
}

func futureDate(daysAhead int) string {
	return time.Now().AddDate(0, 0, daysAhead).Format("2006-01-02")
}

func TestBookingCreate(t *testing.T) {
	t.Run("Pending by default", func(t *testing.T) {
		bookings, svc := newBookingFixture(domain.BookingStatusPending)
		b, err := svc.Create(context.Background(), CreateBookingInput{
			EquipmentID: 1,
			RenterID:    10,
			StartDate:   futureDate(1),
			EndDate:     futureDate(3),
		})
		require.NoError(t, err)
		assert.Equal(t, domain.BookingStatusPending, b.Status)
		assert.Equal(t, int32(3), b.TotalDays)
		assert.Equal(t, int32(20), b.OwnerID)
		assert.NotNil(t, bookings.booking)
	})

	t.Run("Auto approve when owner opted in", func(t *testing.T) {
		bookings := &fakeBookingRepo{}
		equip := &fakeEquipRepo{equipment: &domain.Equipment{ID: 1, OwnerID: 20, Title: "Crane", DailyRate: 500, AutoApproveBookings: true}}
		svc := NewBookingService(bookings, equip, &fakeUserRepo{}, nopEmail{}, nopNotifier{})
		b, err := svc.Create(context.Background(), CreateBookingInput{
			EquipmentID: 1, RenterID: 10, StartDate: futureDate(1), EndDate: futureDate(1),
		})
		require.NoError(t, err)
		assert.Equal(t, domain.BookingStatusApproved, b.Status)
		assert.NotNil(t, b.ApprovedAt)
	})

	t.Run("Start date in the past", func(t *testing.T) {
		_, svc := newBookingFixture(domain.BookingStatusPending)
		_, err := svc.Create(context.Background(), CreateBookingInput{
			EquipmentID: 1, RenterID: 10, StartDate: "2020-01-01", EndDate: futureDate(2),
		})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("End before start", func(t *testing.T) {
		_, svc := newBookingFixture(domain.BookingStatusPending)
		_, err := svc.Create(context.Background(), CreateBookingInput{
			EquipmentID: 1, RenterID: 10, StartDate: futureDate(5), EndDate: futureDate(2),
		})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("Operator requested but not offered", func(t *testing.T) {
		_, svc := newBookingFixture(domain.BookingStatusPending)
		_, err := svc.Create(context.Background(), CreateBookingInput{
			EquipmentID: 1, RenterID: 10, StartDate: futureDate(1), EndDate: futureDate(2),
			IncludeOperator: true,
		})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

func TestBookingTransitions(t *testing.T) {
	t.Run("Owner approves pending booking", func(t *testing.T) {
		bookings, svc := newBookingFixture(domain.BookingStatusPending)
		b, err := svc.Approve(context.Background(), 7, 20, domain.UserRoleOwner, "bring ID")
		require.NoError(t, err)
		assert.Equal(t, domain.BookingStatusPending, bookings.applied.PrevStatus)
		assert.Equal(t, domain.BookingStatusApproved, bookings.applied.Status)
		assert.Equal(t, "bring ID", bookings.applied.OwnerNotes)
		assert.Equal(t, int32(7), b.ID)
	})

	t.Run("Renter cannot approve", func(t *testing.T) {
		_, svc := newBookingFixture(domain.BookingStatusPending)
		_, err := svc.Approve(context.Background(), 7, 10, domain.UserRoleRenter, "")
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("Stranger cannot touch the booking", func(t *testing.T) {
		_, svc := newBookingFixture(domain.BookingStatusPending)
		_, err := svc.Cancel(context.Background(), 7, 99, domain.UserRoleRenter, "")
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("Admin may approve on behalf of the owner", func(t *testing.T) {
		bookings, svc := newBookingFixture(domain.BookingStatusPending)
		_, err := svc.Approve(context.Background(), 7, 99, domain.UserRoleAdmin, "")
		require.NoError(t, err)
		assert.Equal(t, domain.BookingStatusApproved, bookings.applied.Status)
	})

	t.Run("Renter cancels approved booking", func(t *testing.T) {
		bookings, svc := newBookingFixture(domain.BookingStatusApproved)
		_, err := svc.Cancel(context.Background(), 7, 10, domain.UserRoleRenter, "plans changed")
		require.NoError(t, err)
		assert.Equal(t, domain.BookingStatusCancelled, bookings.applied.Status)
		assert.Equal(t, "plans changed", bookings.applied.CancellationReason)
		require.NotNil(t, bookings.applied.CancelledBy)
		assert.Equal(t, int32(10), *bookings.applied.CancelledBy)
	})

	t.Run("Rejecting an approved booking is invalid", func(t *testing.T) {
		_, svc := newBookingFixture(domain.BookingStatusApproved)
		_, err := svc.Reject(context.Background(), 7, 20, domain.UserRoleOwner, "no")
		assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	})

	t.Run("Owner starts approved booking", func(t *testing.T) {
		bookings, svc := newBookingFixture(domain.BookingStatusApproved)
		_, err := svc.Start(context.Background(), 7, 20, domain.UserRoleOwner)
		require.NoError(t, err)
		assert.Equal(t, domain.BookingStatusActive, bookings.applied.Status)
	})

	t.Run("Active booking cannot be cancelled", func(t *testing.T) {
		_, svc := newBookingFixture(domain.BookingStatusActive)
		_, err := svc.Cancel(context.Background(), 7, 10, domain.UserRoleRenter, "")
		assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	})

	t.Run("Owner completes active booking", func(t *testing.T) {
		bookings, svc := newBookingFixture(domain.BookingStatusActive)
		_, err := svc.Complete(context.Background(), 7, 20, domain.UserRoleOwner)
		require.NoError(t, err)
		assert.Equal(t, domain.BookingStatusCompleted, bookings.applied.Status)
	})

	t.Run("Terminal statuses accept no transitions", func(t *testing.T) {
		for _, status := range []domain.BookingStatus{
			domain.BookingStatusCompleted,
			domain.BookingStatusCancelled,
			domain.BookingStatusRejected,
		} {
			_, svc := newBookingFixture(status)
			_, err := svc.Cancel(context.Background(), 7, 99, domain.UserRoleAdmin, "")
			assert.ErrorIs(t, err, domain.ErrInvalidTransition, "status %s", status)
		}
	})

	t.Run("Unknown booking", func(t *testing.T) {
		_, svc := newBookingFixture(domain.BookingStatusPending)
		_, err := svc.Approve(context.Background(), 404, 20, domain.UserRoleOwner, "")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestBookingChangeStatus(t *testing.T) {
	t.Run("Owner approves with notes", func(t *testing.T) {
		bookings, svc := newBookingFixture(domain.BookingStatusPending)
		_, err := svc.ChangeStatus(context.Background(), 7, 20, domain.UserRoleOwner, domain.BookingStatusApproved, "gate code 4411", "")
		require.NoError(t, err)
		assert.Equal(t, domain.BookingStatusApproved, bookings.applied.Status)
		assert.Equal(t, "gate code 4411", bookings.applied.OwnerNotes)
	})

	t.Run("Reason lands in the rejection column", func(t *testing.T) {
		bookings, svc := newBookingFixture(domain.BookingStatusPending)
		_, err := svc.ChangeStatus(context.Background(), 7, 20, domain.UserRoleOwner, domain.BookingStatusRejected, "", "double booked")
		require.NoError(t, err)
		assert.Equal(t, "double booked", bookings.applied.RejectionReason)
	})

	t.Run("Notes ride along on cancellation", func(t *testing.T) {
		bookings, svc := newBookingFixture(domain.BookingStatusApproved)
		_, err := svc.ChangeStatus(context.Background(), 7, 20, domain.UserRoleOwner, domain.BookingStatusCancelled, "sorry", "equipment broke")
		require.NoError(t, err)
		assert.Equal(t, "sorry", bookings.applied.OwnerNotes)
		assert.Equal(t, "equipment broke", bookings.applied.CancellationReason)
	})

	t.Run("Unknown target status", func(t *testing.T) {
		_, svc := newBookingFixture(domain.BookingStatusPending)
		_, err := svc.ChangeStatus(context.Background(), 7, 20, domain.UserRoleOwner, "paused", "", "")
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("Invalid transition", func(t *testing.T) {
		_, svc := newBookingFixture(domain.BookingStatusPending)
		_, err := svc.ChangeStatus(context.Background(), 7, 20, domain.UserRoleOwner, domain.BookingStatusActive, "", "")
		assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	})
}

func TestBookingListForUser(t *testing.T) {
	t.Run("Renter sees rentals", func(t *testing.T) {
		bookings, svc := newBookingFixture(domain.BookingStatusPending)
		_, _, err := svc.ListForUser(context.Background(), 10, domain.UserRoleRenter, "", 1, 20)
		require.NoError(t, err)
		assert.Equal(t, int32(10), bookings.listFilter.RenterID)
		assert.Zero(t, bookings.listFilter.OwnerID)
	})

	t.Run("Owner sees lending", func(t *testing.T) {
		bookings, svc := newBookingFixture(domain.BookingStatusPending)
		_, _, err := svc.ListForUser(context.Background(), 20, domain.UserRoleOwner, domain.BookingStatusApproved, 1, 20)
		require.NoError(t, err)
		assert.Equal(t, int32(20), bookings.listFilter.OwnerID)
		assert.Equal(t, domain.BookingStatusApproved, bookings.listFilter.Status)
	})

	t.Run("Admin sees everything", func(t *testing.T) {
		bookings, svc := newBookingFixture(domain.BookingStatusPending)
		_, _, err := svc.ListForUser(context.Background(), 99, domain.UserRoleAdmin, "", 1, 20)
		require.NoError(t, err)
		assert.Zero(t, bookings.listFilter.RenterID)
		assert.Zero(t, bookings.listFilter.OwnerID)
	})
}
