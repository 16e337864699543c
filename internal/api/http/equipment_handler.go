package http

import (
	"net/http"
	"strconv"

	"equiprent-backend/internal/domain"
	"equiprent-backend/internal/repository"
	"equiprent-backend/internal/service"
)

func (s *Server) handleCreateEquipment(w http.ResponseWriter, r *http.Request) {
	var eq domain.Equipment
	if err := decodeBody(r, &eq); err != nil {
		respondError(w, r, err)
		return
	}
	eq.OwnerID = currentUser(r).ID
	created, err := s.equipment.Create(r.Context(), &eq)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondCreated(w, created)
}

func (s *Server) handleGetEquipment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}
	eq, err := s.equipment.Get(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if reviews, _, err := s.reviews.ListForTarget(r.Context(), id, domain.ReviewTypeEquipment, 1, 5); err == nil {
		eq.RecentReviews = reviews
	}
	if days, err := s.equipment.GetAvailability(r.Context(), id, 90); err == nil {
		eq.Availability = days
	}
	respondOK(w, eq)
}

func (s *Server) handleUpdateEquipment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}
	var updates map[string]any
	if err := decodeBody(r, &updates); err != nil {
		respondError(w, r, err)
		return
	}
	eq, err := s.equipment.Update(r.Context(), id, currentUser(r).ID, updates)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, eq)
}

func (s *Server) handleDeleteEquipment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}
	if err := s.equipment.Delete(r.Context(), id, currentUser(r).ID); err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, map[string]string{"message": "Equipment removed."})
}

func parseFloatParam(r *http.Request, name string) *float64 {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &v
}

func (s *Server) handleSearchEquipment(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := repository.EquipmentFilter{
		City:        q.Get("city"),
		Search:      q.Get("search"),
		HasOperator: q.Get("hasOperator") == "true",
		MinDaily:    parseFloatParam(r, "minPrice"),
		MaxDaily:    parseFloatParam(r, "maxPrice"),
		Latitude:    parseFloatParam(r, "latitude"),
		Longitude:   parseFloatParam(r, "longitude"),
		RadiusKM:    parseFloatParam(r, "radius"),
		SortBy:      q.Get("sortBy"),
		SortOrder:   q.Get("sortOrder"),
	}
	if raw := q.Get("categoryId"); raw != "" {
		if v, err := strconv.ParseInt(raw, 10, 32); err == nil {
			id := int32(v)
			filter.CategoryID = &id
		}
	}

	page, limit := pageParams(r)
	items, total, err := s.equipment.Search(r.Context(), filter, page, limit)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondPage(w, items, page, limit, total)
}

func (s *Server) handleListMyEquipment(w http.ResponseWriter, r *http.Request) {
	page, limit := pageParams(r)
	items, total, err := s.equipment.ListMine(r.Context(), currentUser(r).ID, r.URL.Query().Get("status"), page, limit)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondPage(w, items, page, limit, total)
}

func (s *Server) handleUploadEquipmentImages(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}
	if err := r.ParseMultipartForm(10 * maxUploadSize); err != nil {
		respondError(w, r, domain.ErrInvalidInput)
		return
	}
	form := r.MultipartForm
	var uploads []service.Upload
	for _, header := range form.File["images"] {
		file, err := header.Open()
		if err != nil {
			respondError(w, r, domain.ErrInvalidInput)
			return
		}
		defer file.Close()
		uploads = append(uploads, service.Upload{Filename: header.Filename, Reader: file})
	}
	if len(uploads) == 0 {
		respondError(w, r, domain.ErrInvalidInput)
		return
	}

	images, err := s.equipment.UploadImages(r.Context(), id, currentUser(r).ID, uploads)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondCreated(w, images)
}

func (s *Server) handleDeleteEquipmentImage(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}
	imageID, err := pathID(r, "imageId")
	if err != nil {
		respondError(w, r, err)
		return
	}
	if err := s.equipment.DeleteImage(r.Context(), imageID, id, currentUser(r).ID); err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, map[string]string{"message": "Image removed."})
}

func (s *Server) handleSetPrimaryImage(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}
	imageID, err := pathID(r, "imageId")
	if err != nil {
		respondError(w, r, err)
		return
	}
	if err := s.equipment.SetPrimaryImage(r.Context(), id, currentUser(r).ID, imageID); err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, map[string]string{"message": "Primary image updated."})
}

func (s *Server) handleSetAvailability(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}
	var body struct {
		Days []domain.AvailabilityDay `json:"days"`
	}
	if err := decodeBody(r, &body); err != nil {
		respondError(w, r, err)
		return
	}
	if err := s.equipment.SetAvailability(r.Context(), id, currentUser(r).ID, body.Days); err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, map[string]string{"message": "Availability updated."})
}

func (s *Server) handleQuoteEquipment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}
	q := r.URL.Query()
	quote, err := s.equipment.Quote(r.Context(), id, q.Get("startDate"), q.Get("endDate"), q.Get("includeOperator") == "true")
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, quote)
}

func (s *Server) handleGetAvailability(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}
	horizon := int32(0)
	if v, err := strconv.Atoi(r.URL.Query().Get("days")); err == nil {
		horizon = int32(v)
	}
	days, err := s.equipment.GetAvailability(r.Context(), id, horizon)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, days)
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := s.equipment.ListCategories(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, categories)
}

func (s *Server) handleLogMaintenance(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}
	var m domain.MaintenanceLog
	if err := decodeBody(r, &m); err != nil {
		respondError(w, r, err)
		return
	}
	m.EquipmentID = id
	created, err := s.checklist.LogMaintenance(r.Context(), currentUser(r).ID, &m)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondCreated(w, created)
}

func (s *Server) handleListMaintenance(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}
	logs, err := s.checklist.ListMaintenance(r.Context(), id, currentUser(r).ID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, logs)
}
