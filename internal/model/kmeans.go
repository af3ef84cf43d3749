package model

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/actuallystonmai/university-recommender/internal/domain"
)

const (
	DefaultK         = 25
	DefaultSeed      = 42
	DefaultNInit     = 10
	DefaultMaxIter   = 300
	DefaultTolerance = 1e-4
)

var (
	ErrInvalidK         = errors.New("cluster count must be positive")
	ErrInsufficientData = errors.New("not enough distinct points for cluster count")
)

type Config struct {
	K         int
	Seed      int64
	NInit     int
	MaxIter   int
	Tolerance float64
}

func DefaultConfig() Config {
	return Config{
		K:         DefaultK,
		Seed:      DefaultSeed,
		NInit:     DefaultNInit,
		MaxIter:   DefaultMaxIter,
		Tolerance: DefaultTolerance,
	}
}

func (c Config) withDefaults() Config {
	if c.NInit <= 0 {
		c.NInit = DefaultNInit
	}
	if c.MaxIter <= 0 {
		c.MaxIter = DefaultMaxIter
	}
	if c.Tolerance <= 0 {
		c.Tolerance = DefaultTolerance
	}
	return c
}

// FitError reports a clustering precondition failure. A run that gets one
// must not use the model.
type FitError struct {
	K        int
	Points   int
	Distinct int
	Err      error
}

func (e *FitError) Error() string {
	return fmt.Sprintf("fit k=%d on %d points (%d distinct): %v", e.K, e.Points, e.Distinct, e.Err)
}

func (e *FitError) Unwrap() error { return e.Err }

func IsFitError(err error) bool {
	var target *FitError
	return errors.As(err, &target)
}

// KMeans is a fitted partition of encoded score vectors.
type KMeans struct {
	centroids  *mat.Dense
	labels     []int
	sizes      []int
	inertia    float64
	iterations int
}

// Fit partitions points into cfg.K clusters with Lloyd's algorithm and
// k-means++ seeding. The random source is seeded from cfg.Seed, so the same
// points and config always produce the same partition. Of cfg.NInit seeded
// runs the one with the lowest inertia is kept.
func Fit(points []domain.Vector, cfg Config) (*KMeans, error) {
	cfg = cfg.withDefaults()
	distinct := countDistinct(points)
	fail := func(err error) (*KMeans, error) {
		return nil, &FitError{K: cfg.K, Points: len(points), Distinct: distinct, Err: err}
	}
	if cfg.K <= 0 {
		return fail(ErrInvalidK)
	}
	if len(points) < cfg.K || distinct < cfg.K {
		return fail(ErrInsufficientData)
	}

	data := mat.NewDense(len(points), len(domain.Vector{}), nil)
	for i, p := range points {
		data.SetRow(i, p[:])
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	var best *KMeans
	for run := 0; run < cfg.NInit; run++ {
		km := lloyd(data, initPlusPlus(data, cfg.K, rng), cfg)
		if best == nil || km.inertia < best.inertia {
			best = km
		}
	}
	return best, nil
}

func countDistinct(points []domain.Vector) int {
	seen := make(map[domain.Vector]struct{}, len(points))
	for _, p := range points {
		seen[p] = struct{}{}
	}
	return len(seen)
}

// initPlusPlus picks k starting centroids, each next one with probability
// proportional to its squared distance from the nearest chosen centroid.
func initPlusPlus(data *mat.Dense, k int, rng *rand.Rand) *mat.Dense {
	n, d := data.Dims()
	centroids := mat.NewDense(k, d, nil)
	centroids.SetRow(0, data.RawRowView(rng.Intn(n)))

	weights := make([]float64, n)
	for c := 1; c < k; c++ {
		total := 0.0
		for i := 0; i < n; i++ {
			point := data.RawRowView(i)
			nearest := math.Inf(1)
			for j := 0; j < c; j++ {
				dist := floats.Distance(point, centroids.RawRowView(j), 2)
				nearest = math.Min(nearest, dist*dist)
			}
			weights[i] = nearest
			total += nearest
		}

		pick := -1
		target := rng.Float64() * total
		cumulative := 0.0
		for i, w := range weights {
			if w == 0 {
				continue
			}
			pick = i
			cumulative += w
			if cumulative > target {
				break
			}
		}
		if pick < 0 {
			// every point coincides with a centroid; Fit guards against this
			pick = rng.Intn(n)
		}
		centroids.SetRow(c, data.RawRowView(pick))
	}
	return centroids
}

func lloyd(data, centroids *mat.Dense, cfg Config) *KMeans {
	n, _ := data.Dims()
	labels := make([]int, n)
	for i := range labels {
		labels[i] = -1
	}

	iterations := 0
	for iter := 0; iter < cfg.MaxIter; iter++ {
		iterations = iter + 1
		if !assign(data, centroids, labels) {
			break
		}
		next := updateCentroids(data, centroids, labels)
		shift := centroidShift(centroids, next)
		centroids = next
		if shift <= cfg.Tolerance {
			break
		}
	}
	assign(data, centroids, labels)

	k, _ := centroids.Dims()
	sizes := make([]int, k)
	inertia := 0.0
	for i, l := range labels {
		sizes[l]++
		dist := floats.Distance(data.RawRowView(i), centroids.RawRowView(l), 2)
		inertia += dist * dist
	}

	return &KMeans{
		centroids:  centroids,
		labels:     labels,
		sizes:      sizes,
		inertia:    inertia,
		iterations: iterations,
	}
}

// assign labels each point with its nearest centroid and reports whether any
// label changed.
func assign(data, centroids *mat.Dense, labels []int) bool {
	changed := false
	for i := range labels {
		nearest := nearestCentroid(centroids, data.RawRowView(i))
		if nearest != labels[i] {
			labels[i] = nearest
			changed = true
		}
	}
	return changed
}

// nearestCentroid breaks distance ties toward the lowest cluster id.
func nearestCentroid(centroids *mat.Dense, point []float64) int {
	k, _ := centroids.Dims()
	best, bestDist := 0, math.Inf(1)
	for c := 0; c < k; c++ {
		dist := floats.Distance(point, centroids.RawRowView(c), 2)
		if dist < bestDist {
			best, bestDist = c, dist
		}
	}
	return best
}

func updateCentroids(data, current *mat.Dense, labels []int) *mat.Dense {
	k, d := current.Dims()
	next := mat.NewDense(k, d, nil)
	counts := make([]int, k)
	for i, l := range labels {
		floats.Add(next.RawRowView(l), data.RawRowView(i))
		counts[l]++
	}

	used := make(map[int]bool)
	for c := 0; c < k; c++ {
		if counts[c] > 0 {
			floats.Scale(1/float64(counts[c]), next.RawRowView(c))
			continue
		}
		// Empty cluster: move it onto the point that is worst served.
		far, farDist := -1, -1.0
		for i, l := range labels {
			if used[i] {
				continue
			}
			dist := floats.Distance(data.RawRowView(i), current.RawRowView(l), 2)
			if dist > farDist {
				far, farDist = i, dist
			}
		}
		if far >= 0 {
			used[far] = true
			next.SetRow(c, data.RawRowView(far))
		}
	}
	return next
}

func centroidShift(prev, next *mat.Dense) float64 {
	k, _ := prev.Dims()
	shift := 0.0
	for c := 0; c < k; c++ {
		dist := floats.Distance(prev.RawRowView(c), next.RawRowView(c), 2)
		shift += dist * dist
	}
	return shift
}

// Predict assigns v to the nearest fitted centroid without refitting.
func (m *KMeans) Predict(v domain.Vector) int {
	return nearestCentroid(m.centroids, v[:])
}

func (m *KMeans) K() int {
	k, _ := m.centroids.Dims()
	return k
}

// Labels returns the cluster id of every fitted point, in input order.
func (m *KMeans) Labels() []int {
	return append([]int(nil), m.labels...)
}

func (m *KMeans) Sizes() []int {
	return append([]int(nil), m.sizes...)
}

func (m *KMeans) Centroids() []domain.Vector {
	k, _ := m.centroids.Dims()
	out := make([]domain.Vector, k)
	for c := 0; c < k; c++ {
		copy(out[c][:], m.centroids.RawRowView(c))
	}
	return out
}

func (m *KMeans) Inertia() float64 { return m.inertia }

func (m *KMeans) Iterations() int { return m.iterations }
