// Package extract turns a student's free-text request or filter selection
// into a domain.Preference.
package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/actuallystonmai/university-recommender/internal/domain"
)

var (
	countryPattern       = regexp.MustCompile(`(?i)university in (?:the )?([A-Za-z\s]+?)(?:\s+with|\s+that)`)
	academicPattern      = regexp.MustCompile(`(?i)academic reputation of (\d+)`)
	internationalPattern = regexp.MustCompile(`(?i)(?:international student diversity|diversity) of (\d+)`)
	employmentPattern    = regexp.MustCompile(`(?i)employment rates? around (\d+)`)
)

// AnyCountry is the filter value meaning "no country preference".
const AnyCountry = "Any Country"

// FromText extracts a preference from a sentence such as
// "a university in the United Kingdom with an academic reputation of 80".
// Each field is matched independently; a missing phrase leaves it unset.
// Numbers are not range checked here.
func FromText(sentence string) domain.Preference {
	var pref domain.Preference
	if m := countryPattern.FindStringSubmatch(sentence); m != nil {
		if c := strings.TrimSpace(m[1]); c != "" {
			pref.Country = &c
		}
	}
	pref.AcademicReputation = matchNumber(academicPattern, sentence)
	pref.InternationalRatio = matchNumber(internationalPattern, sentence)
	pref.EmploymentRate = matchNumber(employmentPattern, sentence)
	return pref
}

func matchNumber(re *regexp.Regexp, s string) *float64 {
	m := re.FindStringSubmatch(s)
	if m == nil {
		return nil
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return nil
	}
	return &v
}

// Filters is the advanced-search form: a country selection and three sliders.
type Filters struct {
	Country            string
	AcademicReputation *float64
	InternationalRatio *float64
	EmploymentRate     *float64
}

// SliderDefault is the position of an untouched slider.
const SliderDefault = 50.0

// FromFilters builds a preference without text parsing. Untouched sliders take
// SliderDefault; an empty or "Any Country" selection leaves the country unset.
func FromFilters(f Filters) domain.Preference {
	var pref domain.Preference
	if c := strings.TrimSpace(f.Country); c != "" && !strings.EqualFold(c, AnyCountry) {
		pref.Country = &c
	}
	pref.AcademicReputation = orDefault(f.AcademicReputation)
	pref.InternationalRatio = orDefault(f.InternationalRatio)
	pref.EmploymentRate = orDefault(f.EmploymentRate)
	return pref
}

func orDefault(v *float64) *float64 {
	out := SliderDefault
	if v != nil {
		out = *v
	}
	return &out
}
