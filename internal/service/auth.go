package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"math/big"
	"strings"
	"time"

	"equiprent-backend/internal/domain"
	"equiprent-backend/internal/logger"
	"equiprent-backend/internal/repository"
	"equiprent-backend/internal/security"
	"equiprent-backend/internal/storage"

	"golang.org/x/crypto/bcrypt"
)

const otpTTL = 10 * time.Minute

var (
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrEmailNotVerified    = errors.New("email is not verified")
	ErrRegistrationPending = errors.New("registration is pending admin approval")
	ErrAccountDeactivated  = errors.New("account is deactivated")
)

type authService struct {
	userRepo repository.UserRepository
	tokens   security.TokenManager
	emailSvc EmailService
	files    storage.Storage
}

func NewAuthService(userRepo repository.UserRepository, tokens security.TokenManager, emailSvc EmailService, files storage.Storage) AuthService {
	return &authService{
		userRepo: userRepo,
		tokens:   tokens,
		emailSvc: emailSvc,
		files:    files,
	}
}

func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

func (s *authService) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if in.Email == "" || in.Password == "" || in.FirstName == "" || in.LastName == "" || in.Phone == "" {
		return nil, fmt.Errorf("email, password, phone and name are required: %w", domain.ErrInvalidInput)
	}
	if len(in.Password) < 8 {
		return nil, fmt.Errorf("password must be at least 8 characters: %w", domain.ErrInvalidInput)
	}
	if in.Role != domain.UserRoleRenter && in.Role != domain.UserRoleOwner {
		return nil, fmt.Errorf("role must be renter or owner: %w", domain.ErrInvalidInput)
	}

	if existing, err := s.userRepo.GetByEmail(ctx, in.Email); err == nil && existing != nil {
		return nil, fmt.Errorf("email is already registered: %w", domain.ErrConflict)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	code, err := generateOTP()
	if err != nil {
		return nil, err
	}
	expiresAt := time.Now().Add(otpTTL)

	user := &domain.User{
		Email:              in.Email,
		Phone:              in.Phone,
		PasswordHash:       string(hash),
		Role:               in.Role,
		FirstName:          in.FirstName,
		LastName:           in.LastName,
		CompanyName:        in.CompanyName,
		Address:            in.Address,
		City:               in.City,
		State:              in.State,
		Country:            in.Country,
		RegistrationStatus: domain.RegistrationStatusPending,
		OTPCode:            code,
		OTPExpiresAt:       &expiresAt,
		OTPPurpose:         domain.OTPPurposeEmailVerify,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	go func() {
		if err := s.emailSvc.SendOTP(context.Background(), user.Email, user.FirstName, code, domain.OTPPurposeEmailVerify); err != nil {
			logger.Error("send verification email", "error", err, "email", user.Email)
		}
	}()
	return user, nil
}

func (s *authService) VerifyEmail(ctx context.Context, email, code string) error {
	user, err := s.userRepo.GetByEmail(ctx, strings.ToLower(email))
	if err != nil {
		return err
	}
	if user.EmailVerified {
		return nil
	}
	if user.OTPCode == "" || user.OTPCode != code || user.OTPPurpose != domain.OTPPurposeEmailVerify {
		return fmt.Errorf("invalid verification code: %w", domain.ErrInvalidInput)
	}
	if user.OTPExpiresAt == nil || time.Now().After(*user.OTPExpiresAt) {
		return fmt.Errorf("verification code has expired: %w", domain.ErrInvalidInput)
	}
	return s.userRepo.MarkEmailVerified(ctx, user.ID)
}

func (s *authService) ResendOTP(ctx context.Context, email string, purpose domain.OTPPurpose) error {
	if purpose == "" {
		purpose = domain.OTPPurposeEmailVerify
	}
	if purpose != domain.OTPPurposeEmailVerify && purpose != domain.OTPPurposePasswordReset {
		return fmt.Errorf("unknown code purpose %q: %w", purpose, domain.ErrInvalidInput)
	}
	user, err := s.userRepo.GetByEmail(ctx, strings.ToLower(email))
	if err != nil {
		return err
	}
	if purpose == domain.OTPPurposeEmailVerify && user.EmailVerified {
		return fmt.Errorf("email is already verified: %w", domain.ErrInvalidInput)
	}
	code, err := generateOTP()
	if err != nil {
		return err
	}
	if err := s.userRepo.SetOTP(ctx, user.ID, code, time.Now().Add(otpTTL), purpose); err != nil {
		return err
	}
	return s.emailSvc.SendOTP(ctx, user.Email, user.FirstName, code, purpose)
}

func (s *authService) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	user, err := s.userRepo.GetByEmail(ctx, strings.ToLower(email))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, "", fmt.Errorf("%w: %w", ErrInvalidCredentials, domain.ErrUnauthorized)
		}
		return nil, "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", fmt.Errorf("%w: %w", ErrInvalidCredentials, domain.ErrUnauthorized)
	}
	if !user.IsActive {
		return nil, "", fmt.Errorf("%w: %w", ErrAccountDeactivated, domain.ErrUnauthorized)
	}
	if !user.EmailVerified {
		return nil, "", fmt.Errorf("%w: %w", ErrEmailNotVerified, domain.ErrForbidden)
	}
	if user.Role != domain.UserRoleAdmin && user.RegistrationStatus != domain.RegistrationStatusApproved {
		return nil, "", fmt.Errorf("%w: %w", ErrRegistrationPending, domain.ErrForbidden)
	}

	token, err := s.tokens.GenerateAccessToken(user.ID, user.Email, string(user.Role))
	if err != nil {
		return nil, "", fmt.Errorf("generate token: %w", err)
	}
	return user, token, nil
}

func (s *authService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.userRepo.GetByEmail(ctx, strings.ToLower(email))
	if err != nil {
		// Do not reveal whether the email exists.
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		return err
	}
	code, err := generateOTP()
	if err != nil {
		return err
	}
	if err := s.userRepo.SetOTP(ctx, user.ID, code, time.Now().Add(otpTTL), domain.OTPPurposePasswordReset); err != nil {
		return err
	}
	go func() {
		if err := s.emailSvc.SendOTP(context.Background(), user.Email, user.FirstName, code, domain.OTPPurposePasswordReset); err != nil {
			logger.Error("send password reset email", "error", err, "email", user.Email)
		}
	}()
	return nil
}

func (s *authService) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	if len(newPassword) < 8 {
		return fmt.Errorf("password must be at least 8 characters: %w", domain.ErrInvalidInput)
	}
	user, err := s.userRepo.GetByEmail(ctx, strings.ToLower(email))
	if err != nil {
		return err
	}
	if user.OTPCode == "" || user.OTPCode != code || user.OTPPurpose != domain.OTPPurposePasswordReset {
		return fmt.Errorf("invalid reset code: %w", domain.ErrInvalidInput)
	}
	if user.OTPExpiresAt == nil || time.Now().After(*user.OTPExpiresAt) {
		return fmt.Errorf("reset code has expired: %w", domain.ErrInvalidInput)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.userRepo.UpdatePassword(ctx, user.ID, string(hash)); err != nil {
		return err
	}
	return s.userRepo.ClearOTP(ctx, user.ID)
}

func (s *authService) ChangePassword(ctx context.Context, userID int32, currentPassword, newPassword string) error {
	if len(newPassword) < 8 {
		return fmt.Errorf("password must be at least 8 characters: %w", domain.ErrInvalidInput)
	}
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(currentPassword)); err != nil {
		return fmt.Errorf("current password is incorrect: %w", domain.ErrUnauthorized)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.userRepo.UpdatePassword(ctx, userID, string(hash))
}

// RequestPasswordChangeOTP covers signed-in users who want to rotate
// their password without typing the current one.
func (s *authService) RequestPasswordChangeOTP(ctx context.Context, userID int32) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	code, err := generateOTP()
	if err != nil {
		return err
	}
	if err := s.userRepo.SetOTP(ctx, user.ID, code, time.Now().Add(otpTTL), domain.OTPPurposePasswordChange); err != nil {
		return err
	}
	return s.emailSvc.SendOTP(ctx, user.Email, user.FirstName, code, domain.OTPPurposePasswordChange)
}

func (s *authService) ChangePasswordWithOTP(ctx context.Context, userID int32, code, newPassword string) error {
	if len(newPassword) < 8 {
		return fmt.Errorf("password must be at least 8 characters: %w", domain.ErrInvalidInput)
	}
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user.OTPCode == "" || user.OTPCode != code || user.OTPPurpose != domain.OTPPurposePasswordChange {
		return fmt.Errorf("invalid code: %w", domain.ErrInvalidInput)
	}
	if user.OTPExpiresAt == nil || time.Now().After(*user.OTPExpiresAt) {
		return fmt.Errorf("code has expired: %w", domain.ErrInvalidInput)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.userRepo.UpdatePassword(ctx, userID, string(hash)); err != nil {
		return err
	}
	return s.userRepo.ClearOTP(ctx, userID)
}

func (s *authService) GetProfile(ctx context.Context, userID int32) (*domain.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}

func (s *authService) UpdateProfile(ctx context.Context, user *domain.User) (*domain.User, error) {
	if err := s.userRepo.UpdateProfile(ctx, user); err != nil {
		return nil, err
	}
	return s.userRepo.GetByID(ctx, user.ID)
}

func (s *authService) UploadProfileImage(ctx context.Context, userID int32, filename string, file io.Reader) (string, error) {
	url, err := s.files.Save("profiles", filename, file)
	if err != nil {
		return "", fmt.Errorf("%w: %s", domain.ErrInvalidInput, err)
	}
	if err := s.userRepo.SetProfileImage(ctx, userID, url); err != nil {
		return "", err
	}
	return url, nil
}

func (s *authService) UploadCNICImages(ctx context.Context, userID int32, frontName string, front io.Reader, backName string, back io.Reader) (*domain.User, error) {
	return s.saveCNICImages(ctx, userID, frontName, front, backName, back)
}

// UploadCNICImagesByEmail serves the registration flow, where the CNIC
// is submitted before the account can log in. Accounts that already
// passed the registration gate must use the authenticated route.
func (s *authService) UploadCNICImagesByEmail(ctx context.Context, email, frontName string, front io.Reader, backName string, back io.Reader) (*domain.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, strings.ToLower(email))
	if err != nil {
		return nil, err
	}
	if user.RegistrationStatus == domain.RegistrationStatusApproved {
		return nil, fmt.Errorf("account is already approved: %w", domain.ErrForbidden)
	}
	return s.saveCNICImages(ctx, user.ID, frontName, front, backName, back)
}

func (s *authService) saveCNICImages(ctx context.Context, userID int32, frontName string, front io.Reader, backName string, back io.Reader) (*domain.User, error) {
	var frontURL, backURL string
	var err error
	if front != nil {
		frontURL, err = s.files.Save("cnic", frontName, front)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", domain.ErrInvalidInput, err)
		}
	}
	if back != nil {
		backURL, err = s.files.Save("cnic", backName, back)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", domain.ErrInvalidInput, err)
		}
	}
	if frontURL == "" && backURL == "" {
		return nil, fmt.Errorf("at least one image is required: %w", domain.ErrInvalidInput)
	}
	if err := s.userRepo.SetCNICImages(ctx, userID, frontURL, backURL); err != nil {
		return nil, err
	}
	return s.userRepo.GetByID(ctx, userID)
}
