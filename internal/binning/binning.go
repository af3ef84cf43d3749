// Package binning discretizes 0-100 scores into five ordinal bins so that the
// dataset and a user's preference live in the same coordinate system.
package binning

import (
	"errors"
	"fmt"
	"math"

	"github.com/actuallystonmai/university-recommender/internal/domain"
)

type Bin int

const (
	VeryLow Bin = iota
	Low
	Medium
	High
	VeryHigh
)

// Edges are the fixed bin boundaries. Each lower edge belongs to the bin above
// it, 0 belongs to VeryLow and 100 belongs to VeryHigh.
var Edges = [6]float64{0, 20, 40, 60, 80, 100}

var labels = [5]string{"Very Low", "Low", "Medium", "High", "Very High"}

func (b Bin) Label() string {
	if b < VeryLow || b > VeryHigh {
		return "Unknown"
	}
	return labels[b]
}

func (b Bin) String() string { return b.Label() }

var (
	ErrOutOfRange   = errors.New("score out of range")
	ErrMissingField = errors.New("missing score")
)

type RangeError struct {
	Field string
	Value float64
}

func (e *RangeError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("score %v outside [0,100]", e.Value)
	}
	return fmt.Sprintf("%s: score %v outside [0,100]", e.Field, e.Value)
}

func (e *RangeError) Unwrap() error { return ErrOutOfRange }

type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("%s: score not set", e.Field)
}

func (e *MissingFieldError) Unwrap() error { return ErrMissingField }

func IsRangeError(err error) bool {
	var target *RangeError
	return errors.As(err, &target)
}

func IsMissingFieldError(err error) bool {
	var target *MissingFieldError
	return errors.As(err, &target)
}

// Encode maps a score to its bin. Scores outside [0,100] are rejected.
func Encode(score float64) (Bin, error) {
	if math.IsNaN(score) || score < Edges[0] || score > Edges[len(Edges)-1] {
		return 0, &RangeError{Value: score}
	}
	for i := len(Edges) - 2; i > 0; i-- {
		if score >= Edges[i] {
			return Bin(i), nil
		}
	}
	return VeryLow, nil
}

// Label is the display category of a score. Out-of-range values are clamped
// here because the label is only shown, never compared.
func Label(score float64) string {
	switch {
	case score >= 80:
		return VeryHigh.Label()
	case score >= 60:
		return High.Label()
	case score >= 40:
		return Medium.Label()
	case score >= 20:
		return Low.Label()
	default:
		return VeryLow.Label()
	}
}

func encodeScores(scores [3]float64) (domain.Vector, error) {
	var v domain.Vector
	for i, s := range scores {
		b, err := Encode(s)
		if err != nil {
			return v, &RangeError{Field: domain.ScoreFields[i], Value: s}
		}
		v[i] = float64(b)
	}
	return v, nil
}

// EncodeUniversities returns encoded copies of rows; rows itself is untouched.
func EncodeUniversities(rows []domain.University) ([]domain.EncodedUniversity, error) {
	out := make([]domain.EncodedUniversity, len(rows))
	for i, u := range rows {
		v, err := encodeScores(u.Scores())
		if err != nil {
			return nil, fmt.Errorf("row %d (%s): %w", i, u.Name, err)
		}
		out[i] = domain.EncodedUniversity{University: u, Encoded: v}
	}
	return out, nil
}
