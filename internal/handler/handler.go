package handler

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"

	"github.com/actuallystonmai/university-recommender/internal/binning"
	"github.com/actuallystonmai/university-recommender/internal/domain"
	"github.com/actuallystonmai/university-recommender/internal/enrich"
	"github.com/actuallystonmai/university-recommender/internal/insights"
	"github.com/actuallystonmai/university-recommender/internal/logging"
	"github.com/actuallystonmai/university-recommender/internal/model"
	"github.com/actuallystonmai/university-recommender/internal/service"
)

const maxBodyBytes = 1 << 20

type Handler struct {
	service  *service.Service
	validate *validator.Validate
}

func NewHandler(svc *service.Service) *Handler {
	return &Handler{service: svc, validate: validator.New()}
}

// write JSON response
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Component("http").Error().Err(err).Msg("encode response")
	}
}

// writes JSON error response.
func writeError(w http.ResponseWriter, status int, errCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Error:   errCode,
		Message: message,
	})
}

// decode reads a JSON body into v and validates it. An empty body is
// accepted when optional is set.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v any, optional bool) bool {
	err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(v)
	if err != nil && !(optional && errors.Is(err, io.EOF)) {
		writeError(w, http.StatusBadRequest, "invalid_json", "Invalid request body")
		return false
	}
	if err := h.validate.Struct(v); err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", err.Error())
		return false
	}
	return true
}

// writeServiceError maps a service error onto a status code.
func writeServiceError(w http.ResponseWriter, err error) {
	code, message := service.ErrorCode(err)

	switch {
	case errors.Is(err, enrich.ErrUnknownKind), errors.Is(err, enrich.ErrMissingInput),
		errors.Is(err, service.ErrEmptyBatch), errors.Is(err, service.ErrBatchTooLarge):
		writeError(w, http.StatusBadRequest, "invalid_parameter", err.Error())
	case errors.Is(err, domain.ErrInvalidPreference), errors.Is(err, domain.ErrInvalidDeadline):
		writeError(w, http.StatusBadRequest, code, message)
	case errors.Is(err, domain.ErrSessionNotFound), errors.Is(err, domain.ErrUniversityNotFound):
		writeError(w, http.StatusNotFound, code, message)
	case binning.IsRangeError(err), binning.IsMissingFieldError(err):
		writeError(w, http.StatusUnprocessableEntity, code, message)
	case errors.Is(err, insights.ErrTooFewRows):
		writeError(w, http.StatusUnprocessableEntity, "insufficient_data", err.Error())
	case model.IsFitError(err):
		logging.Component("http").Error().Err(err).Msg("clustering failed")
		writeError(w, http.StatusInternalServerError, code, message)
	case errors.Is(err, domain.ErrEmptyDataset),
		errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		writeError(w, http.StatusServiceUnavailable, code, message)
	default:
		logging.Component("http").Error().Err(err).Msg("unhandled service error")
		writeError(w, http.StatusInternalServerError, "internal_error", "An unexpected error occurred")
	}
}
