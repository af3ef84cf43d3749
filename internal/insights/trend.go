package insights

import (
	"errors"

	"gonum.org/v1/gonum/stat"

	"github.com/actuallystonmai/university-recommender/internal/domain"
)

var ErrTooFewRows = errors.New("need at least two rows with distinct international ratios")

// EmploymentTrend is a least-squares line of graduate employment rate against
// international student ratio.
type EmploymentTrend struct {
	Intercept float64 `json:"intercept"`
	Slope     float64 `json:"slope"`
	MSE       float64 `json:"mse"`
	Samples   int     `json:"samples"`
}

func (t EmploymentTrend) Predict(internationalRatio float64) float64 {
	return t.Intercept + t.Slope*internationalRatio
}

func FitEmploymentTrend(rows []domain.University) (EmploymentTrend, error) {
	xs := make([]float64, len(rows))
	ys := make([]float64, len(rows))
	for i, u := range rows {
		xs[i] = u.InternationalRatio
		ys[i] = u.EmploymentRate
	}
	if len(rows) < 2 || stat.Variance(xs, nil) == 0 {
		return EmploymentTrend{}, ErrTooFewRows
	}

	alpha, beta := stat.LinearRegression(xs, ys, nil, false)
	trend := EmploymentTrend{Intercept: alpha, Slope: beta, Samples: len(rows)}

	sum := 0.0
	for i := range xs {
		residual := ys[i] - trend.Predict(xs[i])
		sum += residual * residual
	}
	trend.MSE = sum / float64(len(xs))
	return trend, nil
}
