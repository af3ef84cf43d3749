package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/actuallystonmai/university-recommender/internal/handler"
	"github.com/actuallystonmai/university-recommender/internal/metrics"
)

// Narrative routes wait on an upstream model with retries, so the timeout
// covers several attempts.
const requestTimeout = 2 * time.Minute

func Setup(h *handler.Handler, m *metrics.Manager) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(m))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))

	// Routes
	r.Get("/health", healthCheck)
	if m != nil {
		r.Method(http.MethodGet, "/metrics", m.Handler())
	}

	r.Post("/recommendations", h.Recommend)
	r.Post("/recommendations/batch", h.RecommendBatch)

	r.Get("/countries", h.Countries)
	r.Get("/universities/competitive", h.Competitive)
	r.Get("/universities/tiers", h.Tiers)
	r.Post("/universities/{name}/narratives/{kind}", h.Narrative)
	r.Get("/insights/employment-trend", h.EmploymentTrend)

	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", h.CreateSession)
		r.Route("/{sessionID}", func(r chi.Router) {
			r.Get("/", h.GetSession)
			r.Post("/bookmarks", h.AddBookmark)
			r.Post("/comparisons", h.AddComparison)
			r.Put("/deadlines", h.SetDeadline)
			r.Post("/chat", h.Chat)
		})
	})

	return r
}

func healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
