package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/actuallystonmai/university-recommender/internal/binning"
	"github.com/actuallystonmai/university-recommender/internal/cache"
	"github.com/actuallystonmai/university-recommender/internal/domain"
	"github.com/actuallystonmai/university-recommender/internal/enrich"
	"github.com/actuallystonmai/university-recommender/internal/extract"
	"github.com/actuallystonmai/university-recommender/internal/logging"
	"github.com/actuallystonmai/university-recommender/internal/metrics"
	"github.com/actuallystonmai/university-recommender/internal/model"
	"github.com/actuallystonmai/university-recommender/internal/recommend"
)

const (
	defaultMaxLimit         = 50
	defaultBatchConcurrency = 10
	maxBatchSize            = 100
)

var (
	ErrEmptyBatch    = errors.New("batch has no requests")
	ErrBatchTooLarge = fmt.Errorf("batch exceeds %d requests", maxBatchSize)
)

type ResultCache interface {
	Get(ctx context.Context, key string) (*domain.Recommendation, bool, error)
	Set(ctx context.Context, key string, rec domain.Recommendation) error
}

type SessionStore interface {
	Create(ctx context.Context) (*domain.Session, error)
	Get(ctx context.Context, id string) (*domain.Session, error)
	// Update applies fn to the current stored session atomically and returns
	// the saved result.
	Update(ctx context.Context, id string, fn func(*domain.Session)) (*domain.Session, error)
}

type Narrator interface {
	Generate(ctx context.Context, kind enrich.Kind, req enrich.Request) (string, error)
}

type Deps struct {
	Table    *domain.Table
	Pipeline *recommend.Pipeline
	Cache    ResultCache
	Sessions SessionStore
	Narrator Narrator
	Metrics  metrics.Recorder
}

type Options struct {
	MaxLimit         int
	BatchConcurrency int
}

type Service struct {
	table    *domain.Table
	version  string
	pipeline *recommend.Pipeline
	cache    ResultCache
	sessions SessionStore
	narrator Narrator
	metrics  metrics.Recorder
	opts     Options
}

func NewService(deps Deps, opts Options) *Service {
	if deps.Table == nil {
		deps.Table = domain.NewTable(nil)
	}
	if deps.Pipeline == nil {
		deps.Pipeline = recommend.NewPipeline(recommend.DefaultPipelineConfig())
	}
	if deps.Metrics == nil {
		deps.Metrics = metrics.Nop
	}
	if opts.MaxLimit <= 0 {
		opts.MaxLimit = defaultMaxLimit
	}
	if opts.BatchConcurrency <= 0 {
		opts.BatchConcurrency = defaultBatchConcurrency
	}
	deps.Metrics.DatasetRows(deps.Table.Len())

	return &Service{
		table:    deps.Table,
		version:  cache.Fingerprint(deps.Table.Rows()),
		pipeline: deps.Pipeline,
		cache:    deps.Cache,
		sessions: deps.Sessions,
		narrator: deps.Narrator,
		metrics:  deps.Metrics,
		opts:     opts,
	}
}

// RecommendRequest carries either a free-text Query or structured Filters.
type RecommendRequest struct {
	Query     string
	Filters   *extract.Filters
	SessionID string
	Limit     int
}

func (r RecommendRequest) preference() (domain.Preference, error) {
	hasQuery := strings.TrimSpace(r.Query) != ""
	switch {
	case hasQuery && r.Filters != nil:
		return domain.Preference{}, fmt.Errorf("%w: give either a query or filters, not both", domain.ErrInvalidPreference)
	case hasQuery:
		return extract.FromText(r.Query), nil
	case r.Filters != nil:
		return extract.FromFilters(*r.Filters), nil
	default:
		return domain.Preference{}, fmt.Errorf("%w: query or filters required", domain.ErrInvalidPreference)
	}
}

func (s *Service) clampLimit(limit int) int {
	if limit <= 0 {
		limit = s.pipeline.Config().DefaultLimit
	}
	return min(limit, s.opts.MaxLimit)
}

func (s *Service) Recommend(ctx context.Context, req RecommendRequest) (*domain.RecommendationResult, error) {
	log := logging.Component("service")

	pref, err := req.preference()
	if err != nil {
		return nil, err
	}
	limit := s.clampLimit(req.Limit)

	var sess *domain.Session
	if req.SessionID != "" {
		if sess, err = s.loadSession(ctx, req.SessionID); err != nil {
			return nil, err
		}
	}

	rec, hit, err := s.recommend(ctx, pref, limit)
	if err != nil {
		return nil, err
	}

	if sess != nil {
		names := make([]string, len(rec.Universities))
		for i, u := range rec.Universities {
			names[i] = u.Name
		}
		_, err := s.sessions.Update(ctx, sess.ID, func(cur *domain.Session) {
			cur.Preferences = &pref
			cur.Recommended = names
		})
		if err != nil {
			log.Warn().Err(err).Str("session_id", sess.ID).Msg("save session after recommendation")
		}
	}

	return &domain.RecommendationResult{
		Preference:     pref,
		Recommendation: rec,
		CacheHit:       hit,
	}, nil
}

func (s *Service) recommend(ctx context.Context, pref domain.Preference, limit int) (domain.Recommendation, bool, error) {
	log := logging.Component("service")
	key := cache.BuildKey(s.version, pref, s.pipeline.Config(), limit)

	if s.cache != nil {
		cached, found, err := s.cache.Get(ctx, key)
		if err != nil {
			log.Warn().Err(err).Str("key", key).Msg("cache get")
		}
		if found {
			s.metrics.Cache(metrics.CacheHit)
			return *cached, true, nil
		}
		s.metrics.Cache(metrics.CacheMiss)
	}

	start := time.Now()
	rec, err := s.pipeline.Run(s.table, pref, limit)
	if err != nil {
		code, _ := categorizeError(err)
		s.metrics.PipelineError(code)
		return domain.Recommendation{}, false, err
	}
	s.metrics.PipelineRun(string(rec.Status), time.Since(start))
	log.Debug().
		Str("status", string(rec.Status)).
		Int("cluster", rec.Cluster).
		Int("results", len(rec.Universities)).
		Dur("elapsed", time.Since(start)).
		Msg("pipeline run")

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, rec); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("cache set")
		}
	}
	return rec, false, nil
}

func (s *Service) RecommendBatch(ctx context.Context, reqs []RecommendRequest) (*domain.BatchResponse, error) {
	if len(reqs) == 0 {
		return nil, ErrEmptyBatch
	}
	if len(reqs) > maxBatchSize {
		return nil, ErrBatchTooLarge
	}
	start := time.Now()

	// Process requests concurrently with bounded worker pool
	results := make([]domain.BatchItemResult, len(reqs))
	var wg sync.WaitGroup
	sem := make(chan struct{}, s.opts.BatchConcurrency)

	for i, req := range reqs {
		wg.Add(1)
		go func(idx int, req RecommendRequest) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			results[idx] = s.processBatchItem(ctx, idx, req)
		}(i, req)
	}
	wg.Wait()

	successCount := 0
	failedCount := 0
	for _, r := range results {
		if r.Status == domain.BatchStatusSuccess {
			successCount++
		} else {
			failedCount++
		}
	}

	return &domain.BatchResponse{
		Results: results,
		Summary: domain.BatchSummary{
			SuccessCount:     successCount,
			FailedCount:      failedCount,
			ProcessingTimeMs: time.Since(start).Milliseconds(),
		},
		Metadata: domain.BatchMeta{
			GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		},
	}, nil
}

func (s *Service) processBatchItem(ctx context.Context, idx int, req RecommendRequest) domain.BatchItemResult {
	result, err := s.Recommend(ctx, req)
	if err != nil {
		logging.Component("service").Warn().Err(err).Int("index", idx).Msg("batch item failed")
		code, msg := categorizeError(err)
		return domain.BatchItemResult{
			Index:   idx,
			Status:  domain.BatchStatusFailed,
			Error:   code,
			Message: msg,
		}
	}

	rec := result.Recommendation
	return domain.BatchItemResult{
		Index:          idx,
		Recommendation: &rec,
		Status:         domain.BatchStatusSuccess,
	}
}

// categorizeError maps a service error to a stable code and a caller-facing
// message.
func categorizeError(err error) (string, string) {
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		return "session_not_found", "session not found"
	case errors.Is(err, domain.ErrUniversityNotFound):
		return "university_not_found", "university not found"
	case errors.Is(err, domain.ErrInvalidPreference):
		return "invalid_preference", err.Error()
	case errors.Is(err, domain.ErrInvalidDeadline):
		return "invalid_deadline", err.Error()
	case binning.IsRangeError(err), binning.IsMissingFieldError(err):
		return "encoding_failed", err.Error()
	case model.IsFitError(err):
		return "clustering_failed", "not enough distinct universities to form the configured clusters"
	case errors.Is(err, domain.ErrEmptyDataset):
		return "empty_dataset", "no universities are loaded"
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return "request_timeout", "request timed out"
	}
	return "internal_error", "an unexpected error occurred"
}

// ErrorCode exposes categorizeError to the transport layer.
func ErrorCode(err error) (code, message string) {
	return categorizeError(err)
}
