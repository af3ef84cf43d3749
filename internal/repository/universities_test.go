package repository

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/actuallystonmai/university-recommender/internal/domain"
)

type execCall struct {
	sql  string
	args []any
}

type recordingDB struct {
	execs   []execCall
	execErr error
}

func (d *recordingDB) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	d.execs = append(d.execs, execCall{sql: sql, args: args})
	return pgconn.CommandTag{}, d.execErr
}

func (d *recordingDB) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return nil, errors.New("not implemented")
}

func (d *recordingDB) QueryRow(context.Context, string, ...any) pgx.Row {
	return nil
}

func universities(n int) []domain.University {
	items := make([]domain.University, n)
	for i := range items {
		items[i] = domain.University{Name: "U", Country: "X", AcademicReputation: 50}
	}
	return items
}

func TestBuildInsertPlaceholders(t *testing.T) {
	rank := 7
	items := []domain.University{
		{Name: "A", Country: "France", WorldRank: &rank, AcademicReputation: 90, InternationalRatio: 80, EmploymentRate: 70},
		{Name: "B", Country: "Germany", AcademicReputation: 10, InternationalRatio: 20, EmploymentRate: 30},
	}

	query, args := buildInsert(items)

	assert.True(t, strings.HasPrefix(query, "INSERT INTO universities"))
	assert.Contains(t, query, "($1, $2, $3, $4, $5, $6, $7, $8), ($9, $10, $11, $12, $13, $14, $15, $16)")
	require.Len(t, args, 16)
	assert.Equal(t, "A", args[0])
	assert.Equal(t, &rank, args[2])
	assert.Equal(t, "B", args[8])
	assert.Equal(t, 30.0, args[13])
}

func TestInsertUniversitiesBatches(t *testing.T) {
	db := &recordingDB{}
	repo := New(db)

	require.NoError(t, repo.InsertUniversities(context.Background(), universities(insertBatchSize+1)))

	require.Len(t, db.execs, 2)
	assert.Len(t, db.execs[0].args, insertBatchSize*universityColumns)
	assert.Len(t, db.execs[1].args, universityColumns)
}

func TestInsertUniversitiesEmpty(t *testing.T) {
	db := &recordingDB{}
	require.NoError(t, New(db).InsertUniversities(context.Background(), nil))
	assert.Empty(t, db.execs)
}

func TestInsertUniversitiesWrapsError(t *testing.T) {
	boom := errors.New("connection reset")
	db := &recordingDB{execErr: boom}

	err := New(db).InsertUniversities(context.Background(), universities(3))
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "insert universities 0-2")
}
