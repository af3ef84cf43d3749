package service

import (
	"github.com/actuallystonmai/university-recommender/internal/insights"
)

const defaultCompetitiveCount = 10

func (s *Service) Competitive(n int) []insights.Ranked {
	if n <= 0 {
		n = defaultCompetitiveCount
	}
	n = min(n, s.opts.MaxLimit)
	return insights.TopCompetitive(s.table.Rows(), n)
}

func (s *Service) Tiers() []insights.TierCount {
	return insights.TierDistribution(s.table.Rows())
}

func (s *Service) Countries() []string {
	return s.table.Countries()
}

func (s *Service) EmploymentTrend() (insights.EmploymentTrend, error) {
	return insights.FitEmploymentTrend(s.table.Rows())
}

func (s *Service) DatasetSize() int {
	return s.table.Len()
}
