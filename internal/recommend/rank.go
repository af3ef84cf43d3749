// Package recommend ranks universities inside the student's cluster and runs
// the full preference-matching pipeline.
package recommend

import (
	"fmt"
	"sort"
	"strings"

	"github.com/actuallystonmai/university-recommender/internal/domain"
)

const DefaultLimit = 5

// Rank picks the rows labelled with cluster, narrows them to country when one
// is given, orders them by the composite key and keeps the top limit.
//
// When the country filter leaves nothing the whole cluster is used instead and
// the result is flagged as a fallback. An empty cluster yields StatusNoMatch.
func Rank(rows []domain.EncodedUniversity, labels []int, cluster int, country *string, limit int) domain.Recommendation {
	if limit <= 0 {
		limit = DefaultLimit
	}
	rec := domain.Recommendation{Cluster: cluster, Universities: []domain.University{}}

	members := make([]domain.University, 0)
	for i, row := range rows {
		if i < len(labels) && labels[i] == cluster {
			members = append(members, row.University)
		}
	}
	if len(members) == 0 {
		rec.Status = domain.StatusNoMatch
		rec.Warning = fmt.Sprintf("cluster %d has no universities", cluster)
		return rec
	}

	candidates := members
	rec.Status = domain.StatusMatched
	if country != nil && strings.TrimSpace(*country) != "" {
		inCountry := filterCountry(members, *country)
		if len(inCountry) > 0 {
			candidates = inCountry
		} else {
			rec.Status = domain.StatusCountryFallback
			rec.Warning = fmt.Sprintf("no universities found in %s matching your preferences; showing similar universities from other countries", *country)
		}
	}

	SortByCompositeKey(candidates)
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	rec.Universities = candidates
	return rec
}

// filterCountry keeps rows whose country contains the wanted one, ignoring case.
func filterCountry(rows []domain.University, country string) []domain.University {
	want := strings.ToLower(strings.TrimSpace(country))
	out := make([]domain.University, 0, len(rows))
	for _, u := range rows {
		if strings.Contains(strings.ToLower(u.Country), want) {
			out = append(out, u)
		}
	}
	return out
}

// SortByCompositeKey orders rows by academic reputation, then international
// ratio, then employment rate, all descending. Full ties keep input order.
func SortByCompositeKey(rows []domain.University) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.AcademicReputation != b.AcademicReputation {
			return a.AcademicReputation > b.AcademicReputation
		}
		if a.InternationalRatio != b.InternationalRatio {
			return a.InternationalRatio > b.InternationalRatio
		}
		return a.EmploymentRate > b.EmploymentRate
	})
}
