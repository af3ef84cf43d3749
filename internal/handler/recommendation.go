package handler

import (
	"net/http"
	"time"

	"github.com/actuallystonmai/university-recommender/internal/domain"
	"github.com/actuallystonmai/university-recommender/internal/extract"
	"github.com/actuallystonmai/university-recommender/internal/service"
)

type FiltersRequest struct {
	Country            string   `json:"country" validate:"max=100"`
	AcademicReputation *float64 `json:"academic_reputation" validate:"omitempty,min=0,max=100"`
	InternationalRatio *float64 `json:"international_ratio" validate:"omitempty,min=0,max=100"`
	EmploymentRate     *float64 `json:"employment_rate" validate:"omitempty,min=0,max=100"`
}

type RecommendRequest struct {
	Query     string          `json:"query" validate:"max=1000"`
	Filters   *FiltersRequest `json:"filters"`
	SessionID string          `json:"session_id" validate:"omitempty,uuid"`
	Limit     int             `json:"limit" validate:"omitempty,min=1,max=50"`
}

func (r RecommendRequest) toService() service.RecommendRequest {
	req := service.RecommendRequest{
		Query:     r.Query,
		SessionID: r.SessionID,
		Limit:     r.Limit,
	}
	if f := r.Filters; f != nil {
		req.Filters = &extract.Filters{
			Country:            f.Country,
			AcademicReputation: f.AcademicReputation,
			InternationalRatio: f.InternationalRatio,
			EmploymentRate:     f.EmploymentRate,
		}
	}
	return req
}

// POST /recommendations
func (h *Handler) Recommend(w http.ResponseWriter, r *http.Request) {
	var req RecommendRequest
	if !h.decode(w, r, &req, false) {
		return
	}

	result, err := h.service.Recommend(r.Context(), req.toService())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	rec := result.Recommendation
	writeJSON(w, http.StatusOK, RecommendationResponse{
		Status:       rec.Status,
		Cluster:      rec.Cluster,
		Warning:      rec.Warning,
		Defaulted:    rec.Defaulted,
		Preference:   result.Preference,
		Universities: newUniversityViews(rec.Universities),
		Metadata: domain.RecommendationMeta{
			CacheHit:    result.CacheHit,
			GeneratedAt: time.Now().UTC().Format(time.RFC3339),
			TotalCount:  len(rec.Universities),
		},
	})
}

type BatchRequest struct {
	Requests []RecommendRequest `json:"requests" validate:"required,min=1,max=100,dive"`
}

// POST /recommendations/batch
func (h *Handler) RecommendBatch(w http.ResponseWriter, r *http.Request) {
	var req BatchRequest
	if !h.decode(w, r, &req, false) {
		return
	}

	reqs := make([]service.RecommendRequest, len(req.Requests))
	for i, item := range req.Requests {
		reqs[i] = item.toService()
	}

	result, err := h.service.RecommendBatch(r.Context(), reqs)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}
