package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

type UniversityRequest struct {
	University string `json:"university" validate:"required,max=200"`
}

type DeadlineRequest struct {
	University string `json:"university" validate:"required,max=200"`
	Deadline   string `json:"deadline" validate:"required,datetime=2006-01-02"`
}

type ChatRequest struct {
	Question string `json:"question" validate:"required,max=2000"`
}

// POST /sessions
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	sess, err := h.service.CreateSession(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sess)
}

// GET /sessions/{sessionID}
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := h.service.GetSession(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

// POST /sessions/{sessionID}/bookmarks
func (h *Handler) AddBookmark(w http.ResponseWriter, r *http.Request) {
	var req UniversityRequest
	if !h.decode(w, r, &req, false) {
		return
	}
	sess, err := h.service.AddBookmark(r.Context(), chi.URLParam(r, "sessionID"), req.University)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

// POST /sessions/{sessionID}/comparisons
func (h *Handler) AddComparison(w http.ResponseWriter, r *http.Request) {
	var req UniversityRequest
	if !h.decode(w, r, &req, false) {
		return
	}
	sess, err := h.service.AddComparison(r.Context(), chi.URLParam(r, "sessionID"), req.University)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

// PUT /sessions/{sessionID}/deadlines
func (h *Handler) SetDeadline(w http.ResponseWriter, r *http.Request) {
	var req DeadlineRequest
	if !h.decode(w, r, &req, false) {
		return
	}
	sess, err := h.service.SetDeadline(r.Context(), chi.URLParam(r, "sessionID"), req.University, req.Deadline)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

// POST /sessions/{sessionID}/chat
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if !h.decode(w, r, &req, false) {
		return
	}
	result, err := h.service.Chat(r.Context(), chi.URLParam(r, "sessionID"), req.Question)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
