package http

import (
	"net/http"
	"testing"

	"equiprent-backend/internal/domain"

	"github.com/stretchr/testify/assert"
)

func TestPublicReviewListing(t *testing.T) {
	t.Run("Filters by target and type without auth", func(t *testing.T) {
		var gotTarget int32
		var gotType domain.ReviewType
		reviews := &stubReviewService{
			listForTarget: func(targetID int32, reviewType domain.ReviewType, page, pageSize int32) ([]domain.Review, int32, error) {
				gotTarget, gotType = targetID, reviewType
				return []domain.Review{{ID: 1, TargetID: targetID, ReviewType: reviewType}}, 1, nil
			},
		}
		router, _ := newTestRouter(t, nil, reviews)

		rec := doJSON(router, http.MethodGet, "/api/reviews?targetId=5&type=operator", "", "")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, int32(5), gotTarget)
		assert.Equal(t, domain.ReviewTypeOperator, gotType)
	})

	t.Run("Missing target is a 400", func(t *testing.T) {
		router, _ := newTestRouter(t, nil, &stubReviewService{})
		rec := doJSON(router, http.MethodGet, "/api/reviews", "", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("Writes still require auth", func(t *testing.T) {
		router, _ := newTestRouter(t, nil, &stubReviewService{})
		rec := doJSON(router, http.MethodPost, "/api/reviews", "", `{"bookingId":7,"rating":5}`)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
