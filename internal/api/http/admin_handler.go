package http

import (
	"net/http"

	"equiprent-backend/internal/domain"
	"equiprent-backend/internal/repository"
)

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := s.admin.Dashboard(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, stats)
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := repository.UserFilter{
		Role:   q.Get("role"),
		Status: q.Get("status"),
		Search: q.Get("search"),
	}
	if v := q.Get("verified"); v != "" {
		verified := v == "true"
		filter.Verified = &verified
	}
	page, limit := pageParams(r)
	users, total, err := s.admin.ListUsers(r.Context(), filter, page, limit)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondPage(w, users, page, limit, total)
}

func (s *Server) handleListPendingRegistrations(w http.ResponseWriter, r *http.Request) {
	page, limit := pageParams(r)
	users, total, err := s.admin.ListPendingRegistrations(r.Context(), page, limit)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondPage(w, users, page, limit, total)
}

func (s *Server) handleDecideRegistration(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}
	var body struct {
		Approved bool   `json:"approved"`
		Reason   string `json:"reason"`
	}
	if err := decodeBody(r, &body); err != nil {
		respondError(w, r, err)
		return
	}
	user, err := s.admin.DecideRegistration(r.Context(), currentUser(r).ID, id, body.Approved, body.Reason)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, user)
}

func (s *Server) handleVerifyUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}
	var body struct {
		Verified bool   `json:"verified"`
		Notes    string `json:"notes"`
	}
	if err := decodeBody(r, &body); err != nil {
		respondError(w, r, err)
		return
	}
	user, err := s.admin.VerifyUser(r.Context(), currentUser(r).ID, id, body.Verified, body.Notes)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, user)
}

func (s *Server) handleAdminListBookings(w http.ResponseWriter, r *http.Request) {
	page, limit := pageParams(r)
	status := domain.BookingStatus(r.URL.Query().Get("status"))
	bookings, total, err := s.admin.ListBookings(r.Context(), status, page, limit)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondPage(w, bookings, page, limit, total)
}

func (s *Server) handleListPendingEquipment(w http.ResponseWriter, r *http.Request) {
	page, limit := pageParams(r)
	equipment, err := s.admin.ListPendingEquipment(r.Context(), page, limit)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, equipment)
}

func (s *Server) handleDecideEquipment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}
	var body struct {
		Approved bool   `json:"approved"`
		Notes    string `json:"notes"`
	}
	if err := decodeBody(r, &body); err != nil {
		respondError(w, r, err)
		return
	}
	eq, err := s.admin.DecideEquipment(r.Context(), currentUser(r).ID, id, body.Approved, body.Notes)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, eq)
}

func (s *Server) handleHideReview(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}
	var body struct {
		Reason string `json:"reason"`
	}
	if err := decodeBody(r, &body); err != nil {
		respondError(w, r, err)
		return
	}
	review, err := s.admin.HideReview(r.Context(), currentUser(r).ID, id, body.Reason)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, review)
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var cat domain.EquipmentCategory
	if err := decodeBody(r, &cat); err != nil {
		respondError(w, r, err)
		return
	}
	created, err := s.admin.CreateCategory(r.Context(), currentUser(r).ID, &cat)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondCreated(w, created)
}

func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}
	var cat domain.EquipmentCategory
	if err := decodeBody(r, &cat); err != nil {
		respondError(w, r, err)
		return
	}
	cat.ID = id
	updated, err := s.admin.UpdateCategory(r.Context(), currentUser(r).ID, &cat)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, updated)
}

func (s *Server) handleListAdminLogs(w http.ResponseWriter, r *http.Request) {
	page, limit := pageParams(r)
	logs, err := s.admin.ListLogs(r.Context(), page, limit)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, logs)
}
