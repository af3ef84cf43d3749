// Package dataset reads the ranked university table from its QS-style CSV
// export.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/actuallystonmai/university-recommender/internal/binning"
	"github.com/actuallystonmai/university-recommender/internal/domain"
)

const (
	ColName               = "University Name"
	ColCountry            = "Country"
	ColWorldRank          = "World Rank"
	ColAcademic           = "Academic Reputation Score"
	ColInternational      = "International Students Ratio Score"
	ColEmployment         = "Graduate Employment Rate Score"
	ColEmployerReputation = "Employer Reputation Score"
	ColFacultyResearch    = "Faculty Student Score"
)

var requiredColumns = []string{ColName, ColCountry, ColWorldRank, ColAcademic, ColInternational, ColEmployment}

var ErrMissingColumn = errors.New("missing required column")

// RowError points at the CSV line that could not be used.
type RowError struct {
	Line int
	Err  error
}

func (e *RowError) Error() string { return fmt.Sprintf("line %d: %v", e.Line, e.Err) }

func (e *RowError) Unwrap() error { return e.Err }

func LoadFile(path string) ([]domain.University, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset %s: %w", path, err)
	}
	defer f.Close()
	return ReadCSV(f)
}

// ReadCSV parses the dataset. Headers are matched case-insensitively and may
// appear in any order; extra columns are ignored.
func ReadCSV(r io.Reader) ([]domain.University, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	index := make(map[string]int, len(header))
	for i, h := range header {
		index[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	col := func(name string) (int, bool) {
		i, ok := index[strings.ToLower(name)]
		return i, ok
	}
	for _, name := range requiredColumns {
		if _, ok := col(name); !ok {
			return nil, fmt.Errorf("%w: %q", ErrMissingColumn, name)
		}
	}

	var rows []domain.University
	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, &RowError{Line: line, Err: err}
		}
		field := func(name string) string {
			i, ok := col(name)
			if !ok || i >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[i])
		}

		u := domain.University{
			Name:    field(ColName),
			Country: field(ColCountry),
		}
		if u.Name == "" {
			return nil, &RowError{Line: line, Err: errors.New("empty university name")}
		}
		u.WorldRank = parseRank(field(ColWorldRank))

		for _, s := range []struct {
			col string
			dst *float64
		}{
			{ColAcademic, &u.AcademicReputation},
			{ColInternational, &u.InternationalRatio},
			{ColEmployment, &u.EmploymentRate},
		} {
			v, err := parseScore(field(s.col))
			if err != nil {
				return nil, &RowError{Line: line, Err: fmt.Errorf("%s: %w", s.col, err)}
			}
			*s.dst = v
		}
		u.EmployerReputation = parseOptional(field(ColEmployerReputation))
		u.FacultyResearch = parseOptional(field(ColFacultyResearch))

		rows = append(rows, u)
	}
	return rows, nil
}

func parseScore(raw string) (float64, error) {
	if raw == "" {
		return 0, binning.ErrMissingField
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("parse %q: %w", raw, err)
	}
	if _, err := binning.Encode(v); err != nil {
		return 0, err
	}
	return v, nil
}

func parseOptional(raw string) *float64 {
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &v
}

// parseRank reads the leading integer of ranks such as "=45", "501-510" or
// "1201+". Anything without digits is unknown.
func parseRank(raw string) *int {
	raw = strings.TrimLeft(raw, "= ")
	end := 0
	for end < len(raw) && raw[end] >= '0' && raw[end] <= '9' {
		end++
	}
	if end == 0 {
		return nil
	}
	v, err := strconv.Atoi(raw[:end])
	if err != nil {
		return nil
	}
	return &v
}
