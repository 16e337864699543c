package service

import (
	"context"
	"testing"
	"time"

	"equiprent-backend/internal/domain"
	"equiprent-backend/internal/repository"
	"equiprent-backend/internal/security"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type memUserRepo struct {
	repository.UserRepository
	users  map[string]*domain.User
	nextID int32
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: map[string]*domain.User{}, nextID: 1}
}

func (r *memUserRepo) Create(ctx context.Context, u *domain.User) error {
	u.ID = r.nextID
	r.nextID++
	r.users[u.Email] = u
	return nil
}

func (r *memUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	u, ok := r.users[email]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return u, nil
}

func (r *memUserRepo) GetByID(ctx context.Context, id int32) (*domain.User, error) {
	for _, u := range r.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *memUserRepo) MarkEmailVerified(ctx context.Context, userID int32) error {
	u, err := r.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	u.EmailVerified = true
	u.OTPCode = ""
	return nil
}

func (r *memUserRepo) SetOTP(ctx context.Context, userID int32, code string, expiresAt time.Time, purpose domain.OTPPurpose) error {
	u, err := r.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	u.OTPCode = code
	u.OTPExpiresAt = &expiresAt
	u.OTPPurpose = purpose
	return nil
}

func (r *memUserRepo) ClearOTP(ctx context.Context, userID int32) error {
	u, err := r.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	u.OTPCode = ""
	u.OTPExpiresAt = nil
	u.OTPPurpose = ""
	return nil
}

func (r *memUserRepo) UpdatePassword(ctx context.Context, userID int32, passwordHash string) error {
	u, err := r.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	u.PasswordHash = passwordHash
	return nil
}

func newAuthFixture() (*memUserRepo, AuthService) {
	repo := newMemUserRepo()
	tokens := security.NewTokenManager("0123456789abcdef0123456789abcdef", 1)
	svc := NewAuthService(repo, tokens, nopEmail{}, nil)
	return repo, svc
}

func seedUser(repo *memUserRepo, password string, mutate func(*domain.User)) *domain.User {
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	u := &domain.User{
		Email:              "renter@example.com",
		Phone:              "0300-0000000",
		PasswordHash:       string(hash),
		Role:               domain.UserRoleRenter,
		FirstName:          "Riza",
		LastName:           "Khan",
		IsActive:           true,
		EmailVerified:      true,
		RegistrationStatus: domain.RegistrationStatusApproved,
	}
	if mutate != nil {
		mutate(u)
	}
	_ = repo.Create(context.Background(), u)
	return u
}

func TestRegister(t *testing.T) {
	t.Run("Creates pending user with OTP", func(t *testing.T) {
		repo, svc := newAuthFixture()
		u, err := svc.Register(context.Background(), RegisterInput{
			Email:     "New@Example.com",
			Phone:     "0300-1234567",
			Password:  "supersecret",
			Role:      domain.UserRoleOwner,
			FirstName: "Omar",
			LastName:  "Ali",
		})
		require.NoError(t, err)
		assert.Equal(t, "new@example.com", u.Email)
		assert.Equal(t, domain.RegistrationStatusPending, u.RegistrationStatus)
		assert.Len(t, u.OTPCode, 6)
		assert.NotNil(t, u.OTPExpiresAt)
		assert.NotEqual(t, "supersecret", u.PasswordHash)
		_, ok := repo.users["new@example.com"]
		assert.True(t, ok)
	})

	t.Run("Duplicate email", func(t *testing.T) {
		repo, svc := newAuthFixture()
		seedUser(repo, "password1", nil)
		_, err := svc.Register(context.Background(), RegisterInput{
			Email: "renter@example.com", Phone: "0300-1", Password: "password1",
			Role: domain.UserRoleRenter, FirstName: "A", LastName: "B",
		})
		assert.ErrorIs(t, err, domain.ErrConflict)
	})

	t.Run("Short password", func(t *testing.T) {
		_, svc := newAuthFixture()
		_, err := svc.Register(context.Background(), RegisterInput{
			Email: "a@b.com", Phone: "0300-1", Password: "short",
			Role: domain.UserRoleRenter, FirstName: "A", LastName: "B",
		})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("Admin role rejected", func(t *testing.T) {
		_, svc := newAuthFixture()
		_, err := svc.Register(context.Background(), RegisterInput{
			Email: "a@b.com", Phone: "0300-1", Password: "password1",
			Role: domain.UserRoleAdmin, FirstName: "A", LastName: "B",
		})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

func TestVerifyEmail(t *testing.T) {
	t.Run("Valid code", func(t *testing.T) {
		repo, svc := newAuthFixture()
		expires := time.Now().Add(5 * time.Minute)
		u := seedUser(repo, "password1", func(u *domain.User) {
			u.EmailVerified = false
			u.OTPCode = "123456"
			u.OTPExpiresAt = &expires
			u.OTPPurpose = domain.OTPPurposeEmailVerify
		})
		require.NoError(t, svc.VerifyEmail(context.Background(), u.Email, "123456"))
		assert.True(t, repo.users[u.Email].EmailVerified)
	})

	t.Run("Wrong code", func(t *testing.T) {
		repo, svc := newAuthFixture()
		expires := time.Now().Add(5 * time.Minute)
		u := seedUser(repo, "password1", func(u *domain.User) {
			u.EmailVerified = false
			u.OTPCode = "123456"
			u.OTPExpiresAt = &expires
			u.OTPPurpose = domain.OTPPurposeEmailVerify
		})
		err := svc.VerifyEmail(context.Background(), u.Email, "654321")
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("Expired code", func(t *testing.T) {
		repo, svc := newAuthFixture()
		expires := time.Now().Add(-time.Minute)
		u := seedUser(repo, "password1", func(u *domain.User) {
			u.EmailVerified = false
			u.OTPCode = "123456"
			u.OTPExpiresAt = &expires
			u.OTPPurpose = domain.OTPPurposeEmailVerify
		})
		err := svc.VerifyEmail(context.Background(), u.Email, "123456")
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("Already verified is a no-op", func(t *testing.T) {
		repo, svc := newAuthFixture()
		u := seedUser(repo, "password1", nil)
		assert.NoError(t, svc.VerifyEmail(context.Background(), u.Email, "whatever"))
	})
}

func TestLogin(t *testing.T) {
	t.Run("Success returns token", func(t *testing.T) {
		repo, svc := newAuthFixture()
		seedUser(repo, "password1", nil)
		u, token, err := svc.Login(context.Background(), "Renter@Example.com", "password1")
		require.NoError(t, err)
		assert.NotEmpty(t, token)
		assert.Equal(t, "renter@example.com", u.Email)
	})

	t.Run("Unknown email", func(t *testing.T) {
		_, svc := newAuthFixture()
		_, _, err := svc.Login(context.Background(), "nobody@example.com", "password1")
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("Wrong password", func(t *testing.T) {
		repo, svc := newAuthFixture()
		seedUser(repo, "password1", nil)
		_, _, err := svc.Login(context.Background(), "renter@example.com", "nope-wrong")
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})

	t.Run("Deactivated account", func(t *testing.T) {
		repo, svc := newAuthFixture()
		seedUser(repo, "password1", func(u *domain.User) { u.IsActive = false })
		_, _, err := svc.Login(context.Background(), "renter@example.com", "password1")
		assert.ErrorIs(t, err, ErrAccountDeactivated)
	})

	t.Run("Unverified email", func(t *testing.T) {
		repo, svc := newAuthFixture()
		seedUser(repo, "password1", func(u *domain.User) { u.EmailVerified = false })
		_, _, err := svc.Login(context.Background(), "renter@example.com", "password1")
		assert.ErrorIs(t, err, ErrEmailNotVerified)
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("Pending registration", func(t *testing.T) {
		repo, svc := newAuthFixture()
		seedUser(repo, "password1", func(u *domain.User) {
			u.RegistrationStatus = domain.RegistrationStatusPending
		})
		_, _, err := svc.Login(context.Background(), "renter@example.com", "password1")
		assert.ErrorIs(t, err, ErrRegistrationPending)
	})

	t.Run("Admin logs in without registration approval", func(t *testing.T) {
		repo, svc := newAuthFixture()
		seedUser(repo, "password1", func(u *domain.User) {
			u.Role = domain.UserRoleAdmin
			u.RegistrationStatus = domain.RegistrationStatusPending
		})
		_, token, err := svc.Login(context.Background(), "renter@example.com", "password1")
		require.NoError(t, err)
		assert.NotEmpty(t, token)
	})
}

func TestResetPassword(t *testing.T) {
	t.Run("Valid reset code changes password", func(t *testing.T) {
		repo, svc := newAuthFixture()
		expires := time.Now().Add(5 * time.Minute)
		u := seedUser(repo, "password1", func(u *domain.User) {
			u.OTPCode = "222333"
			u.OTPExpiresAt = &expires
			u.OTPPurpose = domain.OTPPurposePasswordReset
		})
		require.NoError(t, svc.ResetPassword(context.Background(), u.Email, "222333", "freshsecret"))
		assert.Empty(t, repo.users[u.Email].OTPCode)

		_, _, err := svc.Login(context.Background(), u.Email, "freshsecret")
		assert.NoError(t, err)
	})

	t.Run("Code issued for the wrong purpose", func(t *testing.T) {
		repo, svc := newAuthFixture()
		expires := time.Now().Add(5 * time.Minute)
		u := seedUser(repo, "password1", func(u *domain.User) {
			u.OTPCode = "222333"
			u.OTPExpiresAt = &expires
			u.OTPPurpose = domain.OTPPurposeEmailVerify
		})
		err := svc.ResetPassword(context.Background(), u.Email, "222333", "freshsecret")
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("Forgot password is silent for unknown email", func(t *testing.T) {
		_, svc := newAuthFixture()
		assert.NoError(t, svc.ForgotPassword(context.Background(), "nobody@example.com"))
	})
}
