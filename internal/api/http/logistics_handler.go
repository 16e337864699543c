package http

import (
	"net/http"
	"strconv"

	"equiprent-backend/internal/domain"
	"equiprent-backend/internal/service"
)

func parseFloatForm(raw string) *float64 {
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &v
}

func (s *Server) handleCreateChecklist(w http.ResponseWriter, r *http.Request) {
	bookingID, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}
	if err := r.ParseMultipartForm(10 * maxUploadSize); err != nil {
		respondError(w, r, domain.ErrInvalidInput)
		return
	}

	form := r.MultipartForm
	get := func(name string) string {
		if values := form.Value[name]; len(values) > 0 {
			return values[0]
		}
		return ""
	}
	in := service.CreateChecklistInput{
		BookingID:           bookingID,
		Type:                domain.ChecklistType(get("type")),
		FuelLevel:           get("fuelLevel"),
		HourMeterReading:    parseFloatForm(get("hourMeterReading")),
		OdometerReading:     parseFloatForm(get("odometerReading")),
		OverallCondition:    get("overallCondition"),
		ExteriorCondition:   get("exteriorCondition"),
		InteriorCondition:   get("interiorCondition"),
		MechanicalCondition: get("mechanicalCondition"),
		DamageNotes:         get("damageNotes"),
		HasDamage:           get("hasDamage") == "true",
		AdditionalNotes:     get("additionalNotes"),
		CompletedBy:         currentUser(r).ID,
	}
	for _, header := range form.File["images"] {
		file, err := header.Open()
		if err != nil {
			respondError(w, r, domain.ErrInvalidInput)
			return
		}
		defer file.Close()
		in.Images = append(in.Images, service.Upload{Filename: header.Filename, Reader: file})
	}

	checklist, err := s.checklist.Create(r.Context(), in)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondCreated(w, checklist)
}

func (s *Server) handleListChecklists(w http.ResponseWriter, r *http.Request) {
	bookingID, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}
	user := currentUser(r)
	checklists, err := s.checklist.ListByBooking(r.Context(), bookingID, user.ID, user.Role)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, checklists)
}

func (s *Server) handleRequestTransport(w http.ResponseWriter, r *http.Request) {
	bookingID, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}
	var tr domain.TransportRequest
	if err := decodeBody(r, &tr); err != nil {
		respondError(w, r, err)
		return
	}
	tr.BookingID = bookingID
	created, err := s.logistics.RequestTransport(r.Context(), currentUser(r).ID, &tr)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondCreated(w, created)
}

func (s *Server) handleListTransport(w http.ResponseWriter, r *http.Request) {
	bookingID, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}
	user := currentUser(r)
	requests, err := s.logistics.ListTransport(r.Context(), bookingID, user.ID, user.Role)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, requests)
}

func (s *Server) handleUpdateTransport(w http.ResponseWriter, r *http.Request) {
	bookingID, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}
	requestID, err := pathID(r, "requestId")
	if err != nil {
		respondError(w, r, err)
		return
	}
	var tr domain.TransportRequest
	if err := decodeBody(r, &tr); err != nil {
		respondError(w, r, err)
		return
	}
	tr.ID = requestID
	tr.BookingID = bookingID
	user := currentUser(r)
	updated, err := s.logistics.UpdateTransport(r.Context(), user.ID, user.Role, &tr)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, updated)
}

func (s *Server) handleAddOperator(w http.ResponseWriter, r *http.Request) {
	var op domain.Operator
	if err := decodeBody(r, &op); err != nil {
		respondError(w, r, err)
		return
	}
	op.OwnerID = currentUser(r).ID
	created, err := s.logistics.AddOperator(r.Context(), &op)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondCreated(w, created)
}

func (s *Server) handleListOperators(w http.ResponseWriter, r *http.Request) {
	operators, err := s.logistics.ListOperators(r.Context(), currentUser(r).ID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, operators)
}

func (s *Server) handleUpdateOperator(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}
	var op domain.Operator
	if err := decodeBody(r, &op); err != nil {
		respondError(w, r, err)
		return
	}
	op.ID = id
	op.OwnerID = currentUser(r).ID
	updated, err := s.logistics.UpdateOperator(r.Context(), &op)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, updated)
}
