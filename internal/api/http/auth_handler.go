package http

import (
	"io"
	"net/http"

	"equiprent-backend/internal/domain"
	"equiprent-backend/internal/service"
)

const maxUploadSize = 5 << 20 // 5 MiB per file

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email       string `json:"email"`
		Phone       string `json:"phone"`
		Password    string `json:"password"`
		Role        string `json:"role"`
		FirstName   string `json:"firstName"`
		LastName    string `json:"lastName"`
		CompanyName string `json:"companyName"`
		Address     string `json:"address"`
		City        string `json:"city"`
		State       string `json:"state"`
		Country     string `json:"country"`
	}
	if err := decodeBody(r, &body); err != nil {
		respondError(w, r, err)
		return
	}
	user, err := s.auth.Register(r.Context(), service.RegisterInput{
		Email:       body.Email,
		Phone:       body.Phone,
		Password:    body.Password,
		Role:        domain.UserRole(body.Role),
		FirstName:   body.FirstName,
		LastName:    body.LastName,
		CompanyName: body.CompanyName,
		Address:     body.Address,
		City:        body.City,
		State:       body.State,
		Country:     body.Country,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondCreated(w, map[string]any{
		"user":    user,
		"message": "Registration received. Verify your email with the code we sent you.",
	})
}

func (s *Server) handleVerifyEmail(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email string `json:"email"`
		Code  string `json:"code"`
	}
	if err := decodeBody(r, &body); err != nil {
		respondError(w, r, err)
		return
	}
	if err := s.auth.VerifyEmail(r.Context(), body.Email, body.Code); err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, map[string]string{"message": "Email verified. Your account awaits admin approval."})
}

func (s *Server) handleResendOTP(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email   string            `json:"email"`
		Purpose domain.OTPPurpose `json:"purpose"`
	}
	if err := decodeBody(r, &body); err != nil {
		respondError(w, r, err)
		return
	}
	if err := s.auth.ResendOTP(r.Context(), body.Email, body.Purpose); err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, map[string]string{"message": "A new code has been sent."})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeBody(r, &body); err != nil {
		respondError(w, r, err)
		return
	}
	user, token, err := s.auth.Login(r.Context(), body.Email, body.Password)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, map[string]any{"user": user, "token": token})
}

func (s *Server) handleForgotPassword(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email string `json:"email"`
	}
	if err := decodeBody(r, &body); err != nil {
		respondError(w, r, err)
		return
	}
	if err := s.auth.ForgotPassword(r.Context(), body.Email); err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, map[string]string{"message": "If the email exists, a reset code has been sent."})
}

func (s *Server) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email       string `json:"email"`
		Code        string `json:"code"`
		NewPassword string `json:"newPassword"`
	}
	if err := decodeBody(r, &body); err != nil {
		respondError(w, r, err)
		return
	}
	if err := s.auth.ResetPassword(r.Context(), body.Email, body.Code, body.NewPassword); err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, map[string]string{"message": "Password has been reset. You can log in now."})
}

func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	var body struct {
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
	}
	if err := decodeBody(r, &body); err != nil {
		respondError(w, r, err)
		return
	}
	user := currentUser(r)
	if err := s.auth.ChangePassword(r.Context(), user.ID, body.CurrentPassword, body.NewPassword); err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, map[string]string{"message": "Password changed."})
}

func (s *Server) handleRequestPasswordChangeOTP(w http.ResponseWriter, r *http.Request) {
	if err := s.auth.RequestPasswordChangeOTP(r.Context(), currentUser(r).ID); err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, map[string]string{"message": "A confirmation code has been sent to your email."})
}

func (s *Server) handleChangePasswordWithOTP(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Code        string `json:"code"`
		NewPassword string `json:"newPassword"`
	}
	if err := decodeBody(r, &body); err != nil {
		respondError(w, r, err)
		return
	}
	if err := s.auth.ChangePasswordWithOTP(r.Context(), currentUser(r).ID, body.Code, body.NewPassword); err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, map[string]string{"message": "Password changed."})
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	user, err := s.auth.GetProfile(r.Context(), currentUser(r).ID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, user)
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Phone       string   `json:"phone"`
		FirstName   string   `json:"firstName"`
		LastName    string   `json:"lastName"`
		CompanyName string   `json:"companyName"`
		Address     string   `json:"address"`
		City        string   `json:"city"`
		State       string   `json:"state"`
		Country     string   `json:"country"`
		PostalCode  string   `json:"postalCode"`
		Latitude    *float64 `json:"latitude"`
		Longitude   *float64 `json:"longitude"`
		CNICNumber  string   `json:"cnicNumber"`
	}
	if err := decodeBody(r, &body); err != nil {
		respondError(w, r, err)
		return
	}
	update := &domain.User{
		ID:          currentUser(r).ID,
		Phone:       body.Phone,
		FirstName:   body.FirstName,
		LastName:    body.LastName,
		CompanyName: body.CompanyName,
		Address:     body.Address,
		City:        body.City,
		State:       body.State,
		Country:     body.Country,
		PostalCode:  body.PostalCode,
		Latitude:    body.Latitude,
		Longitude:   body.Longitude,
		CNICNumber:  body.CNICNumber,
	}
	user, err := s.auth.UpdateProfile(r.Context(), update)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, user)
}

func (s *Server) handleUploadProfileImage(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		respondError(w, r, domain.ErrInvalidInput)
		return
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		respondError(w, r, domain.ErrInvalidInput)
		return
	}
	defer file.Close()

	url, err := s.auth.UploadProfileImage(r.Context(), currentUser(r).ID, header.Filename, file)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, map[string]string{"imageUrl": url})
}

func (s *Server) handleUploadCNICImages(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(2 * maxUploadSize); err != nil {
		respondError(w, r, domain.ErrInvalidInput)
		return
	}
	var frontName, backName string
	var front, back io.Reader
	if f, h, err := r.FormFile("front"); err == nil {
		defer f.Close()
		front, frontName = f, h.Filename
	}
	if f, h, err := r.FormFile("back"); err == nil {
		defer f.Close()
		back, backName = f, h.Filename
	}

	user, err := s.auth.UploadCNICImages(r.Context(), currentUser(r).ID, frontName, front, backName, back)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, user)
}

// handleUploadCNICImagesPublic accepts the CNIC during registration,
// before the account can authenticate. The email field identifies the
// pending account.
func (s *Server) handleUploadCNICImagesPublic(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(2 * maxUploadSize); err != nil {
		respondError(w, r, domain.ErrInvalidInput)
		return
	}
	email := r.FormValue("email")
	if email == "" {
		respondError(w, r, domain.ErrInvalidInput)
		return
	}
	var frontName, backName string
	var front, back io.Reader
	if f, h, err := r.FormFile("front"); err == nil {
		defer f.Close()
		front, frontName = f, h.Filename
	}
	if f, h, err := r.FormFile("back"); err == nil {
		defer f.Close()
		back, backName = f, h.Filename
	}

	user, err := s.auth.UploadCNICImagesByEmail(r.Context(), email, frontName, front, backName, back)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, user)
}
