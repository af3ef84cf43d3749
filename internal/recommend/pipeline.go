package recommend

import (
	"fmt"

	"github.com/actuallystonmai/university-recommender/internal/binning"
	"github.com/actuallystonmai/university-recommender/internal/domain"
	"github.com/actuallystonmai/university-recommender/internal/logging"
	"github.com/actuallystonmai/university-recommender/internal/model"
)

type PipelineConfig struct {
	Model        model.Config
	Missing      binning.MissingPolicy
	DefaultLimit int
}

func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		Model:        model.DefaultConfig(),
		Missing:      binning.DefaultPolicy(),
		DefaultLimit: DefaultLimit,
	}
}

// Pipeline holds configuration only. It keeps no state between runs, so one
// Pipeline may serve concurrent callers.
type Pipeline struct {
	cfg PipelineConfig
}

func NewPipeline(cfg PipelineConfig) *Pipeline {
	if cfg.DefaultLimit <= 0 {
		cfg.DefaultLimit = DefaultLimit
	}
	return &Pipeline{cfg: cfg}
}

func (p *Pipeline) Config() PipelineConfig { return p.cfg }

// Run encodes a private copy of the table, fits the cluster model on it,
// places the preference in a cluster and ranks that cluster's members.
// Encoding and fit failures are returned as errors; an empty or fallback
// result is reported through the Recommendation status.
func (p *Pipeline) Run(table *domain.Table, pref domain.Preference, limit int) (domain.Recommendation, error) {
	if table.Len() == 0 {
		return domain.Recommendation{}, domain.ErrEmptyDataset
	}
	if limit <= 0 {
		limit = p.cfg.DefaultLimit
	}

	rows, err := binning.EncodeUniversities(table.Rows())
	if err != nil {
		return domain.Recommendation{}, fmt.Errorf("encode dataset: %w", err)
	}

	query, defaulted, err := binning.EncodePreference(pref, p.cfg.Missing)
	if err != nil {
		return domain.Recommendation{}, fmt.Errorf("encode preference: %w", err)
	}

	points := make([]domain.Vector, len(rows))
	for i, r := range rows {
		points[i] = r.Encoded
	}
	km, err := model.Fit(points, p.cfg.Model)
	if err != nil {
		return domain.Recommendation{}, fmt.Errorf("fit clusters: %w", err)
	}
	logging.Component("pipeline").Debug().
		Int("k", km.K()).
		Int("iterations", km.Iterations()).
		Float64("inertia", km.Inertia()).
		Msg("clusters fitted")

	rec := Rank(rows, km.Labels(), km.Predict(query), pref.Country, limit)
	rec.Defaulted = defaulted
	return rec, nil
}
