package domain

type Status string

const (
	StatusMatched         Status = "matched"
	StatusCountryFallback Status = "country_fallback"
	StatusNoMatch         Status = "no_match"
)

// Recommendation is the outcome of one pipeline run.
type Recommendation struct {
	Status       Status       `json:"status"`
	Cluster      int          `json:"cluster"`
	Universities []University `json:"universities"`
	Warning      string       `json:"warning,omitempty"`
	// Defaulted lists preference fields that were unset and substituted.
	Defaulted []string `json:"defaulted,omitempty"`
}

func (r Recommendation) Fallback() bool { return r.Status == StatusCountryFallback }

func (r Recommendation) Empty() bool { return len(r.Universities) == 0 }

type RecommendationMeta struct {
	CacheHit    bool   `json:"cache_hit"`
	GeneratedAt string `json:"generated_at"`
	TotalCount  int    `json:"total_count"`
}

type RecommendationResult struct {
	Preference     Preference
	Recommendation Recommendation
	CacheHit       bool
}

const (
	BatchStatusSuccess = "success"
	BatchStatusFailed  = "failed"
)

type BatchItemResult struct {
	Index          int             `json:"index"`
	Recommendation *Recommendation `json:"recommendation,omitempty"`
	Status         string          `json:"status"`
	Error          string          `json:"error,omitempty"`
	Message        string          `json:"message,omitempty"`
}

type BatchSummary struct {
	SuccessCount     int   `json:"success_count"`
	FailedCount      int   `json:"failed_count"`
	ProcessingTimeMs int64 `json:"processing_time_ms"`
}

type BatchMeta struct {
	GeneratedAt string `json:"generated_at"`
}

type BatchResponse struct {
	Results  []BatchItemResult `json:"results"`
	Summary  BatchSummary      `json:"summary"`
	Metadata BatchMeta         `json:"metadata"`
}

// Narrative is generated prose for display. Available is false when the
// upstream text service failed; that is never a pipeline error.
type Narrative struct {
	University string `json:"university"`
	Kind       string `json:"kind"`
	Text       string `json:"text,omitempty"`
	Available  bool   `json:"available"`
	Reason     string `json:"reason,omitempty"`
}
