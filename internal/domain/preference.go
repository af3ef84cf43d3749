package domain

import "strings"

// Preference is what a student asked for. Every field is optional.
type Preference struct {
	Country            *string  `json:"country,omitempty"`
	AcademicReputation *float64 `json:"academic_reputation,omitempty"`
	InternationalRatio *float64 `json:"international_ratio,omitempty"`
	EmploymentRate     *float64 `json:"employment_rate,omitempty"`
}

const (
	FieldAcademicReputation = "academic_reputation"
	FieldInternationalRatio = "international_ratio"
	FieldEmploymentRate     = "employment_rate"
)

// ScoreFields lists the score fields in vector order.
var ScoreFields = [3]string{FieldAcademicReputation, FieldInternationalRatio, FieldEmploymentRate}

// Scores returns the three optional scores in vector order.
func (p Preference) Scores() [3]*float64 {
	return [3]*float64{p.AcademicReputation, p.InternationalRatio, p.EmploymentRate}
}

func (p Preference) HasCountry() bool {
	return p.Country != nil && strings.TrimSpace(*p.Country) != ""
}
