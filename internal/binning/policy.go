package binning

import (
	"fmt"

	"github.com/actuallystonmai/university-recommender/internal/domain"
)

type MissingMode string

const (
	SubstituteDefault MissingMode = "default"
	Reject            MissingMode = "reject"
)

const DefaultScore = 50.0

// MissingPolicy decides what happens to an unset preference score. It is
// applied to all three scores alike.
type MissingPolicy struct {
	Mode    MissingMode
	Default float64
}

func DefaultPolicy() MissingPolicy {
	return MissingPolicy{Mode: SubstituteDefault, Default: DefaultScore}
}

func (p MissingPolicy) Validate() error {
	switch p.Mode {
	case SubstituteDefault:
		if _, err := Encode(p.Default); err != nil {
			return fmt.Errorf("missing score default: %w", err)
		}
	case Reject:
	default:
		return fmt.Errorf("unknown missing score mode %q", p.Mode)
	}
	return nil
}

// Resolve fills unset scores according to the policy and returns the filled
// scores plus the names of the fields that were substituted.
func (p MissingPolicy) Resolve(pref domain.Preference) ([3]float64, []string, error) {
	var (
		scores    [3]float64
		defaulted []string
	)
	for i, s := range pref.Scores() {
		if s != nil {
			scores[i] = *s
			continue
		}
		if p.Mode == Reject {
			return scores, nil, &MissingFieldError{Field: domain.ScoreFields[i]}
		}
		scores[i] = p.Default
		defaulted = append(defaulted, domain.ScoreFields[i])
	}
	return scores, defaulted, nil
}

// EncodePreference applies the missing-score policy and encodes the result.
func EncodePreference(pref domain.Preference, policy MissingPolicy) (domain.Vector, []string, error) {
	scores, defaulted, err := policy.Resolve(pref)
	if err != nil {
		return domain.Vector{}, nil, err
	}
	v, err := encodeScores(scores)
	if err != nil {
		return domain.Vector{}, nil, err
	}
	return v, defaulted, nil
}
