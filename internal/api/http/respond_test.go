package http

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"equiprent-backend/internal/domain"

	"github.com/stretchr/testify/assert"
)

func TestRespondErrorStatusMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"Invalid input", domain.ErrInvalidInput, http.StatusBadRequest},
		{"Invalid transition", domain.ErrInvalidTransition, http.StatusBadRequest},
		{"Unauthorized", domain.ErrUnauthorized, http.StatusUnauthorized},
		{"Forbidden", domain.ErrForbidden, http.StatusForbidden},
		{"Not found", domain.ErrNotFound, http.StatusNotFound},
		{"Conflict", domain.ErrConflict, http.StatusConflict},
		{"Unmapped", fmt.Errorf("db went away"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			respondError(rec, req, fmt.Errorf("wrapped: %w", tc.err))
			assert.Equal(t, tc.status, rec.Code)
		})
	}
}
