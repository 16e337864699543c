package http

import (
	"net/http"

	"equiprent-backend/internal/domain"
	"equiprent-backend/internal/service"
)

func (s *Server) handleCreateBooking(w http.ResponseWriter, r *http.Request) {
	var body struct {
		EquipmentID       int32    `json:"equipmentId"`
		StartDate         string   `json:"startDate"`
		EndDate           string   `json:"endDate"`
		StartTime         string   `json:"startTime"`
		EndTime           string   `json:"endTime"`
		DurationType      string   `json:"durationType"`
		IncludeOperator   bool     `json:"includeOperator"`
		IncludeTransport  bool     `json:"includeTransportation"`
		OperatorID        *int32   `json:"operatorId"`
		DeliveryAddress   string   `json:"deliveryAddress"`
		DeliveryLatitude  *float64 `json:"deliveryLatitude"`
		DeliveryLongitude *float64 `json:"deliveryLongitude"`
		ProjectSiteName   string   `json:"projectSiteName"`
		RenterNotes       string   `json:"renterNotes"`
	}
	if err := decodeBody(r, &body); err != nil {
		respondError(w, r, err)
		return
	}
	booking, err := s.bookings.Create(r.Context(), service.CreateBookingInput{
		EquipmentID:       body.EquipmentID,
		RenterID:          currentUser(r).ID,
		StartDate:         body.StartDate,
		EndDate:           body.EndDate,
		StartTime:         body.StartTime,
		EndTime:           body.EndTime,
		DurationType:      domain.RentalDuration(body.DurationType),
		IncludeOperator:   body.IncludeOperator,
		IncludeTransport:  body.IncludeTransport,
		OperatorID:        body.OperatorID,
		DeliveryAddress:   body.DeliveryAddress,
		DeliveryLatitude:  body.DeliveryLatitude,
		DeliveryLongitude: body.DeliveryLongitude,
		ProjectSiteName:   body.ProjectSiteName,
		RenterNotes:       body.RenterNotes,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondCreated(w, booking)
}

func (s *Server) handleGetBooking(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}
	user := currentUser(r)
	booking, err := s.bookings.Get(r.Context(), id, user.ID, user.Role)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, booking)
}

func (s *Server) handleListBookings(w http.ResponseWriter, r *http.Request) {
	page, limit := pageParams(r)
	status := domain.BookingStatus(r.URL.Query().Get("status"))
	user := currentUser(r)
	bookings, total, err := s.bookings.ListForUser(r.Context(), user.ID, user.Role, status, page, limit)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondPage(w, bookings, page, limit, total)
}

func (s *Server) handleListRenting(w http.ResponseWriter, r *http.Request) {
	page, limit := pageParams(r)
	status := domain.BookingStatus(r.URL.Query().Get("status"))
	bookings, total, err := s.bookings.ListForRenter(r.Context(), currentUser(r).ID, status, page, limit)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondPage(w, bookings, page, limit, total)
}

func (s *Server) handleListLending(w http.ResponseWriter, r *http.Request) {
	page, limit := pageParams(r)
	status := domain.BookingStatus(r.URL.Query().Get("status"))
	bookings, total, err := s.bookings.ListForOwner(r.Context(), currentUser(r).ID, status, page, limit)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondPage(w, bookings, page, limit, total)
}

func (s *Server) handleUpdateBookingStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}
	var body struct {
		Status domain.BookingStatus `json:"status"`
		Notes  string               `json:"notes"`
		Reason string               `json:"reason"`
	}
	if err := decodeBody(r, &body); err != nil {
		respondError(w, r, err)
		return
	}
	user := currentUser(r)
	booking, err := s.bookings.ChangeStatus(r.Context(), id, user.ID, user.Role, body.Status, body.Notes, body.Reason)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, booking)
}

func (s *Server) handleApproveBooking(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}
	var body struct {
		OwnerNotes string `json:"ownerNotes"`
	}
	_ = decodeBody(r, &body) // body is optional
	user := currentUser(r)
	booking, err := s.bookings.Approve(r.Context(), id, user.ID, user.Role, body.OwnerNotes)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, booking)
}

func (s *Server) handleRejectBooking(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}
	var body struct {
		Reason string `json:"reason"`
	}
	_ = decodeBody(r, &body)
	user := currentUser(r)
	booking, err := s.bookings.Reject(r.Context(), id, user.ID, user.Role, body.Reason)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, booking)
}

func (s *Server) handleCancelBooking(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}
	var body struct {
		Reason string `json:"reason"`
	}
	_ = decodeBody(r, &body)
	user := currentUser(r)
	booking, err := s.bookings.Cancel(r.Context(), id, user.ID, user.Role, body.Reason)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, booking)
}

func (s *Server) handleStartBooking(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}
	user := currentUser(r)
	booking, err := s.bookings.Start(r.Context(), id, user.ID, user.Role)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, booking)
}

func (s *Server) handleCompleteBooking(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}
	user := currentUser(r)
	booking, err := s.bookings.Complete(r.Context(), id, user.ID, user.Role)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, booking)
}
