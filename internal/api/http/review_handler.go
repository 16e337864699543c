package http

import (
	"fmt"
	"net/http"
	"strconv"

	"equiprent-backend/internal/domain"
	"equiprent-backend/internal/service"
)

func (s *Server) handleCreateReview(w http.ResponseWriter, r *http.Request) {
	var body struct {
		BookingID  int32  `json:"bookingId"`
		ReviewType string `json:"reviewType"`
		Rating     int32  `json:"rating"`
		Title      string `json:"title"`
		Comment    string `json:"comment"`
	}
	if err := decodeBody(r, &body); err != nil {
		respondError(w, r, err)
		return
	}
	if body.ReviewType == "" {
		body.ReviewType = string(domain.ReviewTypeEquipment)
	}
	review, err := s.reviews.Create(r.Context(), service.CreateReviewInput{
		BookingID:  body.BookingID,
		ReviewerID: currentUser(r).ID,
		ReviewType: domain.ReviewType(body.ReviewType),
		Rating:     body.Rating,
		Title:      body.Title,
		Comment:    body.Comment,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondCreated(w, review)
}

func (s *Server) handleListReviews(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	targetID, err := strconv.ParseInt(q.Get("targetId"), 10, 32)
	if err != nil || targetID <= 0 {
		respondError(w, r, fmt.Errorf("targetId is required: %w", domain.ErrInvalidInput))
		return
	}
	page, limit := pageParams(r)
	reviews, total, err := s.reviews.ListForTarget(r.Context(), int32(targetID), domain.ReviewType(q.Get("type")), page, limit)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondPage(w, reviews, page, limit, total)
}

func (s *Server) handleListEquipmentReviews(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}
	page, limit := pageParams(r)
	reviews, total, err := s.reviews.ListForTarget(r.Context(), id, domain.ReviewTypeEquipment, page, limit)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondPage(w, reviews, page, limit, total)
}

func (s *Server) handleListMyReviews(w http.ResponseWriter, r *http.Request) {
	reviews, err := s.reviews.ListMine(r.Context(), currentUser(r).ID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, reviews)
}
