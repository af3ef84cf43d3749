// Package insights holds display analytics over the dataset. Nothing here
// feeds back into clustering or recommendation ranking.
package insights

import (
	"sort"

	"github.com/actuallystonmai/university-recommender/internal/domain"
)

const (
	academicWeight      = 0.4
	internationalWeight = 0.2
	employmentWeight    = 0.4
)

type Tier string

const (
	TierHighly      Tier = "Highly Competitive"
	TierVery        Tier = "Very Competitive"
	TierCompetitive Tier = "Competitive"
	TierModerately  Tier = "Moderately Competitive"
	TierLess        Tier = "Less Competitive"
)

// Tiers lists every tier from most to least competitive.
var Tiers = []Tier{TierHighly, TierVery, TierCompetitive, TierModerately, TierLess}

// Competitiveness is a weighted sum of the three headline scores. It is a
// separate measure from the lexicographic recommendation order.
func Competitiveness(u domain.University) float64 {
	return u.AcademicReputation*academicWeight +
		u.InternationalRatio*internationalWeight +
		u.EmploymentRate*employmentWeight
}

func TierFor(score float64) Tier {
	switch {
	case score >= 80:
		return TierHighly
	case score >= 60:
		return TierVery
	case score >= 40:
		return TierCompetitive
	case score >= 20:
		return TierModerately
	default:
		return TierLess
	}
}

type Ranked struct {
	domain.University
	Competitiveness float64 `json:"competitiveness"`
	Tier            Tier    `json:"tier"`
}

func score(u domain.University) Ranked {
	c := Competitiveness(u)
	return Ranked{University: u, Competitiveness: c, Tier: TierFor(c)}
}

// TopCompetitive returns the n most competitive rows, highest first.
func TopCompetitive(rows []domain.University, n int) []Ranked {
	out := make([]Ranked, len(rows))
	for i, u := range rows {
		out[i] = score(u)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Competitiveness > out[j].Competitiveness
	})
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

type TierCount struct {
	Tier  Tier `json:"tier"`
	Count int  `json:"count"`
}

// TierDistribution counts rows per tier, in Tiers order, including empty tiers.
func TierDistribution(rows []domain.University) []TierCount {
	counts := make(map[Tier]int, len(Tiers))
	for _, u := range rows {
		counts[TierFor(Competitiveness(u))]++
	}
	out := make([]TierCount, len(Tiers))
	for i, t := range Tiers {
		out[i] = TierCount{Tier: t, Count: counts[t]}
	}
	return out
}
