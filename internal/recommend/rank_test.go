package recommend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/actuallystonmai/university-recommender/internal/domain"
)

func strPtr(s string) *string { return &s }

func uni(name, country string, academic, international, employment float64) domain.EncodedUniversity {
	return domain.EncodedUniversity{University: domain.University{
		Name:               name,
		Country:            country,
		AcademicReputation: academic,
		InternationalRatio: international,
		EmploymentRate:     employment,
	}}
}

func names(us []domain.University) []string {
	out := make([]string, len(us))
	for i, u := range us {
		out[i] = u.Name
	}
	return out
}

func TestRankCountryFallback(t *testing.T) {
	rows := []domain.EncodedUniversity{
		uni("Sorbonne", "France", 80, 60, 70),
		uni("Lyon", "France", 70, 50, 60),
		uni("Munich", "Germany", 90, 40, 80),
	}
	labels := []int{0, 0, 1}

	rec := Rank(rows, labels, 0, strPtr("Germany"), 5)

	assert.Equal(t, domain.StatusCountryFallback, rec.Status)
	assert.True(t, rec.Fallback())
	assert.NotEmpty(t, rec.Warning)
	assert.Equal(t, []string{"Sorbonne", "Lyon"}, names(rec.Universities))
}

func TestRankCountrySubstringIgnoresCase(t *testing.T) {
	rows := []domain.EncodedUniversity{
		uni("MIT", "United States of America", 100, 90, 100),
		uni("Oxford", "United Kingdom", 100, 95, 100),
		uni("Stanford", "united states", 99, 70, 100),
	}
	labels := []int{2, 2, 2}

	rec := Rank(rows, labels, 2, strPtr("United States"), 5)

	assert.Equal(t, domain.StatusMatched, rec.Status)
	assert.False(t, rec.Fallback())
	assert.Empty(t, rec.Warning)
	assert.Equal(t, []string{"MIT", "Stanford"}, names(rec.Universities))
}

func TestRankTieBreaksOnInternationalRatio(t *testing.T) {
	rows := []domain.EncodedUniversity{
		uni("low-intl", "X", 90, 40, 99),
		uni("third", "X", 85, 99, 99),
		uni("high-intl", "X", 90, 80, 10),
	}
	labels := []int{0, 0, 0}

	rec := Rank(rows, labels, 0, nil, 5)

	assert.Equal(t, []string{"high-intl", "low-intl", "third"}, names(rec.Universities))
}

func TestRankTieBreaksOnEmploymentThenInputOrder(t *testing.T) {
	rows := []domain.EncodedUniversity{
		uni("first", "X", 90, 50, 60),
		uni("better-emp", "X", 90, 50, 70),
		uni("second", "X", 90, 50, 60),
	}
	rec := Rank(rows, []int{0, 0, 0}, 0, nil, 5)

	assert.Equal(t, []string{"better-emp", "first", "second"}, names(rec.Universities))
}

func TestRankTruncates(t *testing.T) {
	rows := make([]domain.EncodedUniversity, 10)
	labels := make([]int, 10)
	for i := range rows {
		rows[i] = uni(string(rune('a'+i)), "X", float64(50+i), 50, 50)
	}

	rec := Rank(rows, labels, 0, nil, 3)

	require.Len(t, rec.Universities, 3)
	assert.Equal(t, []string{"j", "i", "h"}, names(rec.Universities))
}

func TestRankDefaultLimit(t *testing.T) {
	rows := make([]domain.EncodedUniversity, 8)
	labels := make([]int, 8)
	for i := range rows {
		rows[i] = uni("u", "X", 50, 50, 50)
	}
	rec := Rank(rows, labels, 0, nil, 0)
	assert.Len(t, rec.Universities, DefaultLimit)
}

func TestRankEmptyCluster(t *testing.T) {
	rows := []domain.EncodedUniversity{uni("A", "France", 50, 50, 50)}

	rec := Rank(rows, []int{0}, 4, strPtr("France"), 5)

	assert.Equal(t, domain.StatusNoMatch, rec.Status)
	assert.True(t, rec.Empty())
	assert.NotNil(t, rec.Universities)
	assert.False(t, rec.Fallback())
	assert.Equal(t, 4, rec.Cluster)
}

func TestRankBlankCountryIsIgnored(t *testing.T) {
	rows := []domain.EncodedUniversity{
		uni("A", "France", 50, 50, 50),
		uni("B", "Germany", 60, 50, 50),
	}
	for _, country := range []string{"", "   ", "\t "} {
		rec := Rank(rows, []int{0, 0}, 0, strPtr(country), 5)
		assert.Equal(t, domain.StatusMatched, rec.Status, "country %q", country)
		assert.Empty(t, rec.Warning, "country %q", country)
		assert.Len(t, rec.Universities, 2, "country %q", country)
	}
}

func TestRankDoesNotReorderInput(t *testing.T) {
	rows := []domain.EncodedUniversity{
		uni("low", "X", 10, 10, 10),
		uni("high", "X", 90, 90, 90),
	}
	Rank(rows, []int{0, 0}, 0, nil, 5)
	assert.Equal(t, "low", rows[0].Name)
}
