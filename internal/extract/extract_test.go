package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromTextFullSentence(t *testing.T) {
	pref := FromText("I want a university in the United Kingdom with an academic reputation of 80, " +
		"international student diversity of 60 and employment rates around 90")

	require.NotNil(t, pref.Country)
	assert.Equal(t, "United Kingdom", *pref.Country)
	require.NotNil(t, pref.AcademicReputation)
	assert.Equal(t, 80.0, *pref.AcademicReputation)
	require.NotNil(t, pref.InternationalRatio)
	assert.Equal(t, 60.0, *pref.InternationalRatio)
	require.NotNil(t, pref.EmploymentRate)
	assert.Equal(t, 90.0, *pref.EmploymentRate)
}

func TestFromTextCountryFrames(t *testing.T) {
	cases := []struct {
		sentence string
		want     string
	}{
		{"Find me a University in Germany that has strong research", "Germany"},
		{"a university in the Netherlands with low fees", "Netherlands"},
		{"UNIVERSITY IN france WITH good food", "france"},
	}
	for _, tc := range cases {
		pref := FromText(tc.sentence)
		require.NotNil(t, pref.Country, tc.sentence)
		assert.Equal(t, tc.want, *pref.Country)
	}
}

func TestFromTextCountryNeedsExactFrame(t *testing.T) {
	for _, s := range []string{
		"I would like to study in Germany",
		"a university in Germany",
		"a college in Germany with a lake",
	} {
		assert.Nil(t, FromText(s).Country, s)
	}
}

func TestFromTextMissingFields(t *testing.T) {
	pref := FromText("something with an academic reputation of 70")
	assert.Nil(t, pref.Country)
	require.NotNil(t, pref.AcademicReputation)
	assert.Equal(t, 70.0, *pref.AcademicReputation)
	assert.Nil(t, pref.InternationalRatio)
	assert.Nil(t, pref.EmploymentRate)
}

func TestFromTextShortDiversityAndSingularRate(t *testing.T) {
	pref := FromText("diversity of 35 and an employment rate around 55")
	require.NotNil(t, pref.InternationalRatio)
	assert.Equal(t, 35.0, *pref.InternationalRatio)
	require.NotNil(t, pref.EmploymentRate)
	assert.Equal(t, 55.0, *pref.EmploymentRate)
}

func TestFromTextNoBoundsCheck(t *testing.T) {
	pref := FromText("academic reputation of 150")
	require.NotNil(t, pref.AcademicReputation)
	assert.Equal(t, 150.0, *pref.AcademicReputation)
}

func TestFromTextEmpty(t *testing.T) {
	pref := FromText("")
	assert.Nil(t, pref.Country)
	assert.Nil(t, pref.AcademicReputation)
	assert.Nil(t, pref.InternationalRatio)
	assert.Nil(t, pref.EmploymentRate)
}

func TestFromFilters(t *testing.T) {
	academic := 70.0
	pref := FromFilters(Filters{Country: "Canada", AcademicReputation: &academic})

	require.NotNil(t, pref.Country)
	assert.Equal(t, "Canada", *pref.Country)
	assert.Equal(t, 70.0, *pref.AcademicReputation)
	assert.Equal(t, SliderDefault, *pref.InternationalRatio)
	assert.Equal(t, SliderDefault, *pref.EmploymentRate)
}

func TestFromFiltersAnyCountry(t *testing.T) {
	assert.Nil(t, FromFilters(Filters{Country: "Any Country"}).Country)
	assert.Nil(t, FromFilters(Filters{Country: "any country"}).Country)
	assert.Nil(t, FromFilters(Filters{Country: "  "}).Country)
}
