package handler

import (
	"github.com/actuallystonmai/university-recommender/internal/binning"
	"github.com/actuallystonmai/university-recommender/internal/domain"
	"github.com/actuallystonmai/university-recommender/internal/insights"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// UniversityView adds display categories to a university row.
type UniversityView struct {
	domain.University
	AcademicCategory      string `json:"academic_category"`
	InternationalCategory string `json:"international_category"`
	EmploymentCategory    string `json:"employment_category"`
}

func newUniversityViews(rows []domain.University) []UniversityView {
	out := make([]UniversityView, len(rows))
	for i, u := range rows {
		out[i] = UniversityView{
			University:            u,
			AcademicCategory:      binning.Label(u.AcademicReputation),
			InternationalCategory: binning.Label(u.InternationalRatio),
			EmploymentCategory:    binning.Label(u.EmploymentRate),
		}
	}
	return out
}

type RecommendationResponse struct {
	Status       domain.Status             `json:"status"`
	Cluster      int                       `json:"cluster"`
	Warning      string                    `json:"warning,omitempty"`
	Defaulted    []string                  `json:"defaulted,omitempty"`
	Preference   domain.Preference         `json:"preference"`
	Universities []UniversityView          `json:"universities"`
	Metadata     domain.RecommendationMeta `json:"metadata"`
}

type CompetitiveResponse struct {
	Universities []insights.Ranked `json:"universities"`
}

type TiersResponse struct {
	Tiers []insights.TierCount `json:"tiers"`
}

type CountriesResponse struct {
	Countries []string `json:"countries"`
}

type TrendResponse struct {
	Trend              insights.EmploymentTrend `json:"trend"`
	InternationalRatio *float64                 `json:"international_ratio,omitempty"`
	PredictedRate      *float64                 `json:"predicted_employment_rate,omitempty"`
}
