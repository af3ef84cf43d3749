package handler

import (
	"net/http"
	"strconv"
)

// GET /universities/competitive
func (h *Handler) Competitive(w http.ResponseWriter, r *http.Request) {
	limit := 10
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed < 1 || parsed > 50 {
			writeError(w, http.StatusBadRequest, "invalid_parameter", "Invalid limit parameter")
			return
		}
		limit = parsed
	}

	writeJSON(w, http.StatusOK, CompetitiveResponse{Universities: h.service.Competitive(limit)})
}

// GET /universities/tiers
func (h *Handler) Tiers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, TiersResponse{Tiers: h.service.Tiers()})
}

// GET /countries
func (h *Handler) Countries(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, CountriesResponse{Countries: h.service.Countries()})
}

// GET /insights/employment-trend
func (h *Handler) EmploymentTrend(w http.ResponseWriter, r *http.Request) {
	var ratio *float64
	if raw := r.URL.Query().Get("international_ratio"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil || parsed < 0 || parsed > 100 {
			writeError(w, http.StatusBadRequest, "invalid_parameter", "Invalid international_ratio parameter")
			return
		}
		ratio = &parsed
	}

	trend, err := h.service.EmploymentTrend()
	if err != nil {
		writeServiceError(w, err)
		return
	}

	resp := TrendResponse{Trend: trend, InternationalRatio: ratio}
	if ratio != nil {
		predicted := trend.Predict(*ratio)
		resp.PredictedRate = &predicted
	}
	writeJSON(w, http.StatusOK, resp)
}
