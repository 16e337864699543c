package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"equiprent-backend/internal/domain"
	"equiprent-backend/internal/logger"
	"equiprent-backend/internal/security"
	"equiprent-backend/internal/service"
)

// Pagination is attached to every list response.
type Pagination struct {
	Page  int32 `json:"page"`
	Limit int32 `json:"limit"`
	Total int32 `json:"total"`
	Pages int32 `json:"pages"`
}

type response struct {
	Success    bool        `json:"success"`
	Data       any         `json:"data,omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`
	Error      *apiError   `json:"error,omitempty"`
}

type apiError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error("encode response", "error", err)
	}
}

func respondOK(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, response{Success: true, Data: data})
}

func respondCreated(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusCreated, response{Success: true, Data: data})
}

func respondPage(w http.ResponseWriter, data any, page, limit, total int32) {
	pages := total / limit
	if total%limit != 0 {
		pages++
	}
	writeJSON(w, http.StatusOK, response{
		Success:    true,
		Data:       data,
		Pagination: &Pagination{Page: page, Limit: limit, Total: total, Pages: pages},
	})
}

// respondError maps domain sentinel errors onto HTTP statuses. Anything
// unmapped is a 500 with a generic message; the real error goes to the log.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	code := ""
	message := "internal server error"

	switch {
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrInvalidTransition):
		status, message = http.StatusBadRequest, err.Error()
	case errors.Is(err, domain.ErrUnauthorized), errors.Is(err, security.ErrInvalidToken), errors.Is(err, security.ErrExpiredToken):
		status, message = http.StatusUnauthorized, err.Error()
	case errors.Is(err, domain.ErrForbidden):
		status, message = http.StatusForbidden, err.Error()
	case errors.Is(err, domain.ErrNotFound):
		status, message = http.StatusNotFound, err.Error()
	case errors.Is(err, domain.ErrConflict):
		status, message = http.StatusConflict, err.Error()
	default:
		logger.Error("request failed", "error", err, "method", r.Method, "path", r.URL.Path)
	}

	// Surface stable codes the frontend branches on.
	switch {
	case errors.Is(err, service.ErrEmailNotVerified):
		code = "EMAIL_NOT_VERIFIED"
	case errors.Is(err, service.ErrRegistrationPending):
		code = "REGISTRATION_PENDING"
	}

	writeJSON(w, status, response{Success: false, Error: &apiError{Message: message, Code: code}})
}

func decodeBody(r *http.Request, into any) error {
	if err := json.NewDecoder(r.Body).Decode(into); err != nil {
		return domain.ErrInvalidInput
	}
	return nil
}
