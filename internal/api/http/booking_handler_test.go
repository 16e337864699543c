package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"equiprent-backend/internal/domain"
	"equiprent-backend/internal/repository"
	"equiprent-backend/internal/security"
	"equiprent-backend/internal/service"
	"equiprent-backend/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const routerTestSecret = "0123456789abcdef0123456789abcdef"

type stubUserRepo struct {
	repository.UserRepository
	users map[int32]*domain.User
}

func (f *stubUserRepo) GetByID(ctx context.Context, id int32) (*domain.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *u
	return &copied, nil
}

// Stubs embed the interface so only the routed methods need overriding.

type stubBookingService struct {
	service.BookingService
	changeStatus func(bookingID, userID int32, role domain.UserRole, target domain.BookingStatus, notes, reason string) (*domain.Booking, error)
	listForUser  func(userID int32, role domain.UserRole, status domain.BookingStatus, page, pageSize int32) ([]domain.Booking, int32, error)
}

func (f *stubBookingService) ChangeStatus(ctx context.Context, bookingID, userID int32, role domain.UserRole, target domain.BookingStatus, notes, reason string) (*domain.Booking, error) {
	return f.changeStatus(bookingID, userID, role, target, notes, reason)
}

func (f *stubBookingService) ListForUser(ctx context.Context, userID int32, role domain.UserRole, status domain.BookingStatus, page, pageSize int32) ([]domain.Booking, int32, error) {
	return f.listForUser(userID, role, status, page, pageSize)
}

type stubReviewService struct {
	service.ReviewService
	listForTarget func(targetID int32, reviewType domain.ReviewType, page, pageSize int32) ([]domain.Review, int32, error)
}

func (f *stubReviewService) ListForTarget(ctx context.Context, targetID int32, reviewType domain.ReviewType, page, pageSize int32) ([]domain.Review, int32, error) {
	return f.listForTarget(targetID, reviewType, page, pageSize)
}

// newTestRouter builds the full router around stub services and issues a
// bearer token per seeded user, so tests exercise real routing and the
// auth middleware.
func newTestRouter(t *testing.T, bookings service.BookingService, reviews service.ReviewService, users ...*domain.User) (http.Handler, map[int32]string) {
	t.Helper()
	tokens := security.NewTokenManager(routerTestSecret, 1)
	userRepo := &stubUserRepo{users: map[int32]*domain.User{}}
	files, err := storage.NewLocalStorage(t.TempDir(), "http://localhost/uploads")
	require.NoError(t, err)

	issued := map[int32]string{}
	for _, u := range users {
		userRepo.users[u.ID] = u
		token, err := tokens.GenerateAccessToken(u.ID, u.Email, string(u.Role))
		require.NoError(t, err)
		issued[u.ID] = token
	}

	srv := NewServer(nil, nil, bookings, reviews, nil, nil, nil, nil, nil, files, tokens, userRepo)
	return srv.Router(), issued
}

func testOwner() *domain.User {
	return &domain.User{ID: 20, Email: "owner@example.com", Role: domain.UserRoleOwner, IsActive: true}
}

func testRenter() *domain.User {
	return &domain.User{ID: 10, Email: "renter@example.com", Role: domain.UserRoleRenter, IsActive: true}
}

func doJSON(router http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestBookingStatusRoute(t *testing.T) {
	t.Run("Invalid transition returns 400", func(t *testing.T) {
		bookings := &stubBookingService{
			changeStatus: func(bookingID, userID int32, role domain.UserRole, target domain.BookingStatus, notes, reason string) (*domain.Booking, error) {
				return nil, fmt.Errorf("cannot move booking from pending to active: %w", domain.ErrInvalidTransition)
			},
		}
		router, tokens := newTestRouter(t, bookings, nil, testOwner())

		rec := doJSON(router, http.MethodPatch, "/api/bookings/7/status", tokens[20], `{"status":"active"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		var body struct {
			Success bool `json:"success"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.False(t, body.Success)
	})

	t.Run("Role breach returns 403", func(t *testing.T) {
		bookings := &stubBookingService{
			changeStatus: func(bookingID, userID int32, role domain.UserRole, target domain.BookingStatus, notes, reason string) (*domain.Booking, error) {
				return nil, fmt.Errorf("renter may not move booking from pending to approved: %w", domain.ErrForbidden)
			},
		}
		router, tokens := newTestRouter(t, bookings, nil, testRenter())

		rec := doJSON(router, http.MethodPatch, "/api/bookings/7/status", tokens[10], `{"status":"approved"}`)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("Body fields reach the service", func(t *testing.T) {
		var gotTarget domain.BookingStatus
		var gotNotes, gotReason string
		bookings := &stubBookingService{
			changeStatus: func(bookingID, userID int32, role domain.UserRole, target domain.BookingStatus, notes, reason string) (*domain.Booking, error) {
				gotTarget, gotNotes, gotReason = target, notes, reason
				return &domain.Booking{ID: bookingID, Status: target}, nil
			},
		}
		router, tokens := newTestRouter(t, bookings, nil, testOwner())

		rec := doJSON(router, http.MethodPatch, "/api/bookings/7/status", tokens[20],
			`{"status":"rejected","notes":"call first","reason":"double booked"}`)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, domain.BookingStatusRejected, gotTarget)
		assert.Equal(t, "call first", gotNotes)
		assert.Equal(t, "double booked", gotReason)
	})

	t.Run("Requires a token", func(t *testing.T) {
		router, _ := newTestRouter(t, &stubBookingService{}, nil)
		rec := doJSON(router, http.MethodPatch, "/api/bookings/7/status", "", `{"status":"approved"}`)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestBookingListRoute(t *testing.T) {
	t.Run("Caller identity and status filter pass through", func(t *testing.T) {
		var gotUserID int32
		var gotRole domain.UserRole
		var gotStatus domain.BookingStatus
		bookings := &stubBookingService{
			listForUser: func(userID int32, role domain.UserRole, status domain.BookingStatus, page, pageSize int32) ([]domain.Booking, int32, error) {
				gotUserID, gotRole, gotStatus = userID, role, status
				return []domain.Booking{{ID: 7, Status: status}}, 1, nil
			},
		}
		router, tokens := newTestRouter(t, bookings, nil, testOwner())

		rec := doJSON(router, http.MethodGet, "/api/bookings?status=approved", tokens[20], "")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, int32(20), gotUserID)
		assert.Equal(t, domain.UserRoleOwner, gotRole)
		assert.Equal(t, domain.BookingStatusApproved, gotStatus)

		var body struct {
			Success    bool        `json:"success"`
			Pagination *Pagination `json:"pagination"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.True(t, body.Success)
		require.NotNil(t, body.Pagination)
		assert.Equal(t, int32(1), body.Pagination.Total)
	})

	t.Run("Requires a token", func(t *testing.T) {
		router, _ := newTestRouter(t, &stubBookingService{}, nil)
		rec := doJSON(router, http.MethodGet, "/api/bookings", "", "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
