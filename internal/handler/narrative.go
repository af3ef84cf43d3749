package handler

import (
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/actuallystonmai/university-recommender/internal/service"
)

type NarrativeRequest struct {
	Degree  string   `json:"degree" validate:"max=50"`
	Season  string   `json:"season" validate:"max=50"`
	Field   string   `json:"field" validate:"max=100"`
	Compare []string `json:"compare" validate:"max=5,dive,required,max=200"`
}

// POST /universities/{name}/narratives/{kind}
func (h *Handler) Narrative(w http.ResponseWriter, r *http.Request) {
	name, err := url.PathUnescape(chi.URLParam(r, "name"))
	if err != nil || name == "" {
		writeError(w, http.StatusBadRequest, "invalid_parameter", "Invalid university name")
		return
	}
	kind := chi.URLParam(r, "kind")

	var req NarrativeRequest
	if !h.decode(w, r, &req, true) {
		return
	}

	narrative, err := h.service.Narrative(r.Context(), name, kind, service.NarrativeOptions{
		Degree:  req.Degree,
		Season:  req.Season,
		Field:   req.Field,
		Compare: req.Compare,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, narrative)
}
