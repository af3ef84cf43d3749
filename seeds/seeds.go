package seeds

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/actuallystonmai/university-recommender/internal/domain"
	"github.com/actuallystonmai/university-recommender/internal/logging"
)

const (
	DefaultCount = 300
	DefaultSeed  = 42
)

// Store is the write side of the universities table.
type Store interface {
	TruncateUniversities(ctx context.Context) error
	InsertUniversities(ctx context.Context, items []domain.University) error
}

var (
	countries      = []string{"United States", "United Kingdom", "Germany", "France", "Canada", "Australia", "Japan", "China", "Netherlands", "Switzerland", "Singapore", "Brazil", "India", "South Korea"}
	countryWeights = []float64{0.2, 0.12, 0.09, 0.08, 0.07, 0.07, 0.06, 0.06, 0.05, 0.04, 0.03, 0.05, 0.05, 0.03}
	cities         = map[string][]string{
		"United States":  {"Boston", "Chicago", "Austin", "Seattle", "Denver", "Atlanta"},
		"United Kingdom": {"London", "Leeds", "Bristol", "Glasgow", "Manchester"},
		"Germany":        {"Berlin", "Munich", "Hamburg", "Cologne", "Heidelberg"},
		"France":         {"Paris", "Lyon", "Toulouse", "Lille", "Grenoble"},
		"Canada":         {"Toronto", "Montreal", "Vancouver", "Calgary"},
		"Australia":      {"Sydney", "Melbourne", "Brisbane", "Perth"},
		"Japan":          {"Tokyo", "Kyoto", "Osaka", "Sendai"},
		"China":          {"Beijing", "Shanghai", "Wuhan", "Nanjing"},
		"Netherlands":    {"Amsterdam", "Delft", "Utrecht", "Leiden"},
		"Switzerland":    {"Zurich", "Geneva", "Basel", "Lausanne"},
		"Singapore":      {"Singapore"},
		"Brazil":         {"Sao Paulo", "Rio de Janeiro", "Campinas"},
		"India":          {"Delhi", "Mumbai", "Bangalore", "Chennai"},
		"South Korea":    {"Seoul", "Busan", "Daejeon"},
	}
	nameFormats    = []string{"University of %s", "%s Institute of Technology", "%s State University", "%s Polytechnic", "%s University"}
)

// Generate builds n synthetic universities. The same seed always yields the
// same rows, ranked by a weighted mix of their scores.
func Generate(n int, seed int64) []domain.University {
	rng := rand.New(rand.NewSource(seed))
	used := make(map[string]int)
	items := make([]domain.University, 0, n)

	for range n {
		country := weightedChoice(rng, countries, countryWeights)
		cityList := cities[country]
		city := cityList[rng.Intn(len(cityList))]
		name := fmt.Sprintf(nameFormats[rng.Intn(len(nameFormats))], city)
		if c := used[name]; c > 0 {
			used[name] = c + 1
			name = fmt.Sprintf("%s (Campus %d)", name, c+1)
		} else {
			used[name] = 1
		}

		// Reputation is skewed low; employment tracks reputation loosely.
		academic := powerLawScore(rng)
		international := score(rng.Float64() * 100)
		employment := score(0.6*academic + 0.4*rng.Float64()*100)
		employer := score(0.7*academic + 0.3*rng.Float64()*100)
		faculty := score(rng.Float64() * 100)

		items = append(items, domain.University{
			Name:               name,
			Country:            country,
			AcademicReputation: academic,
			InternationalRatio: international,
			EmploymentRate:     employment,
			EmployerReputation: &employer,
			FacultyResearch:    &faculty,
		})
	}

	order := make([]int, len(items))
	for i := range order {
		order[i] = i
	}
	weight := func(u domain.University) float64 {
		return 0.5*u.AcademicReputation + 0.3*u.EmploymentRate + 0.2*u.InternationalRatio
	}
	sort.SliceStable(order, func(a, b int) bool {
		return weight(items[order[a]]) > weight(items[order[b]])
	})
	for rank, idx := range order {
		r := rank + 1
		items[idx].WorldRank = &r
	}
	return items
}

// Setup replaces the universities table with n generated rows.
func Setup(ctx context.Context, store Store, n int) error {
	log := logging.Component("seed")

	log.Info().Msg("truncating existing universities")
	if err := store.TruncateUniversities(ctx); err != nil {
		return fmt.Errorf("truncate: %w", err)
	}

	log.Info().Int("count", n).Msg("inserting universities")
	if err := store.InsertUniversities(ctx, Generate(n, DefaultSeed)); err != nil {
		return fmt.Errorf("seed universities: %w", err)
	}

	log.Info().Msg("seeding complete")
	return nil
}

func powerLawScore(rng *rand.Rand) float64 {
	u := rng.Float64()
	if u == 0 {
		u = 0.001
	}
	return score(math.Pow(u, 1.8) * 100)
}

// score rounds to one decimal inside [0,100].
func score(v float64) float64 {
	v = max(0, min(v, 100))
	return math.Round(v*10) / 10
}

func weightedChoice(rng *rand.Rand, choices []string, weights []float64) string {
	total := 0.0
	for _, w := range weights {
		total += w
	}
	r := rng.Float64() * total
	cumulative := 0.0
	for i, w := range weights {
		cumulative += w
		if r <= cumulative {
			return choices[i]
		}
	}
	return choices[len(choices)-1]
}
