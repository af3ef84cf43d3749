package domain

import (
	"slices"
	"strings"
)

type University struct {
	Name               string   `json:"name"`
	Country            string   `json:"country"`
	WorldRank          *int     `json:"world_rank,omitempty"`
	AcademicReputation float64  `json:"academic_reputation"`
	InternationalRatio float64  `json:"international_ratio"`
	EmploymentRate     float64  `json:"employment_rate"`
	EmployerReputation *float64 `json:"employer_reputation,omitempty"`
	FacultyResearch    *float64 `json:"faculty_research,omitempty"`
}

// Scores returns the three clustering scores in vector order.
func (u University) Scores() [3]float64 {
	return [3]float64{u.AcademicReputation, u.InternationalRatio, u.EmploymentRate}
}

// Vector is an encoded (academic, international, employment) triple.
type Vector [3]float64

type EncodedUniversity struct {
	University
	Encoded Vector `json:"encoded"`
}

// Table is the read-only dataset shared by every pipeline run. Rows are copied
// on the way in and on the way out so no caller can mutate the shared base.
type Table struct {
	rows []University
}

func NewTable(rows []University) *Table {
	return &Table{rows: slices.Clone(rows)}
}

func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.rows)
}

func (t *Table) Rows() []University {
	if t == nil {
		return nil
	}
	return slices.Clone(t.rows)
}

// Find returns the first row whose name matches case-insensitively.
func (t *Table) Find(name string) (University, bool) {
	if t == nil {
		return University{}, false
	}
	for _, u := range t.rows {
		if strings.EqualFold(u.Name, name) {
			return u, true
		}
	}
	return University{}, false
}

// Countries lists the distinct non-empty countries in sorted order.
func (t *Table) Countries() []string {
	if t == nil {
		return nil
	}
	seen := make(map[string]struct{}, len(t.rows))
	out := make([]string, 0)
	for _, u := range t.rows {
		c := strings.TrimSpace(u.Country)
		if c == "" {
			continue
		}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	slices.Sort(out)
	return out
}
