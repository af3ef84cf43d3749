package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/actuallystonmai/university-recommender/internal/domain"
)

// Postgres caps bind parameters at 65535 per statement.
const (
	universityColumns = 8
	insertBatchSize   = 1000
)

func (r *Repository) ListUniversities(ctx context.Context) ([]domain.University, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT name, country, world_rank, academic_reputation, international_ratio,
		        employment_rate, employer_reputation, faculty_research
		FROM universities
		ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("query universities: %w", err)
	}
	defer rows.Close()

	var items []domain.University
	for rows.Next() {
		var u domain.University
		err := rows.Scan(&u.Name, &u.Country, &u.WorldRank, &u.AcademicReputation,
			&u.InternationalRatio, &u.EmploymentRate, &u.EmployerReputation, &u.FacultyResearch)
		if err != nil {
			return nil, fmt.Errorf("scan university: %w", err)
		}
		items = append(items, u)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate over universities: %w", err)
	}
	return items, nil
}

func (r *Repository) CountUniversities(ctx context.Context) (int, error) {
	var total int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM universities`,
	).Scan(&total)

	if err != nil {
		return 0, fmt.Errorf("count universities: %w", err)
	}
	return total, nil
}

// InsertUniversities writes rows with multi-row INSERTs of at most
// insertBatchSize rows each.
func (r *Repository) InsertUniversities(ctx context.Context, items []domain.University) error {
	for start := 0; start < len(items); start += insertBatchSize {
		end := min(start+insertBatchSize, len(items))
		query, args := buildInsert(items[start:end])
		if _, err := r.pool.Exec(ctx, query, args...); err != nil {
			return fmt.Errorf("insert universities %d-%d: %w", start, end-1, err)
		}
	}
	return nil
}

func (r *Repository) TruncateUniversities(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, `TRUNCATE universities RESTART IDENTITY`); err != nil {
		return fmt.Errorf("truncate universities: %w", err)
	}
	return nil
}

func buildInsert(items []domain.University) (string, []any) {
	rows := make([]string, 0, len(items))
	args := make([]any, 0, len(items)*universityColumns)

	for i, u := range items {
		base := i * universityColumns
		rows = append(rows, fmt.Sprintf("($%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d)",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7, base+8))
		args = append(args, u.Name, u.Country, u.WorldRank, u.AcademicReputation,
			u.InternationalRatio, u.EmploymentRate, u.EmployerReputation, u.FacultyResearch)
	}

	query := `INSERT INTO universities (name, country, world_rank, academic_reputation,
		international_ratio, employment_rate, employer_reputation, faculty_research) VALUES ` +
		strings.Join(rows, ", ")
	return query, args
}
