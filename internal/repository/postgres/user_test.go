package postgres

import (
	"context"
	"testing"
	"time"

	"equiprent-backend/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository_GetByEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewUserRepository(db)
	ctx := context.Background()

	t.Run("Not found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM users WHERE email").
			WithArgs("nobody@example.com").
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		_, err := repo.GetByEmail(ctx, "nobody@example.com")
		assert.ErrorIs(t, err, domain.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Email is lowercased before the lookup", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM users WHERE email").
			WithArgs("mixed@example.com").
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		_, err := repo.GetByEmail(ctx, "Mixed@Example.com")
		assert.ErrorIs(t, err, domain.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestUserRepository_ExpireOTPCodes(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewUserRepository(db)
	now := time.Now()

	mock.ExpectExec("UPDATE users SET otp_code = NULL").
		WithArgs(now).
		WillReturnResult(sqlmock.NewResult(0, 4))

	cleared, err := repo.ExpireOTPCodes(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, int64(4), cleared)
	assert.NoError(t, mock.ExpectationsWereMet())
}
