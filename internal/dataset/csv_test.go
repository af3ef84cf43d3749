package dataset

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/actuallystonmai/university-recommender/internal/binning"
)

const sample = `University Name,Country,World Rank,Academic Reputation Score,International Students Ratio Score,Graduate Employment Rate Score,Employer Reputation Score
Massachusetts Institute of Technology (MIT),United States,1,100,91.4,100,100
University of Cambridge,United Kingdom,=2,100,95.8,100,100
Some College,Brazil,1201+,3.1,1.2,8.8,
Unranked Institute,Japan,,20,40,60,
`

func TestReadCSV(t *testing.T) {
	rows, err := ReadCSV(strings.NewReader(sample))
	require.NoError(t, err)
	require.Len(t, rows, 4)

	mit := rows[0]
	assert.Equal(t, "Massachusetts Institute of Technology (MIT)", mit.Name)
	assert.Equal(t, "United States", mit.Country)
	require.NotNil(t, mit.WorldRank)
	assert.Equal(t, 1, *mit.WorldRank)
	assert.Equal(t, 91.4, mit.InternationalRatio)
	require.NotNil(t, mit.EmployerReputation)
	assert.Nil(t, mit.FacultyResearch)

	require.NotNil(t, rows[1].WorldRank)
	assert.Equal(t, 2, *rows[1].WorldRank)
	require.NotNil(t, rows[2].WorldRank)
	assert.Equal(t, 1201, *rows[2].WorldRank)
	assert.Nil(t, rows[2].EmployerReputation)
	assert.Nil(t, rows[3].WorldRank)
}

func TestReadCSVHeaderOrderAndCase(t *testing.T) {
	data := "country,university name,graduate employment rate score,academic reputation score,international students ratio score,world rank\n" +
		"France,Sorbonne,70,80,60,72\n"
	rows, err := ReadCSV(strings.NewReader(data))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Sorbonne", rows[0].Name)
	assert.Equal(t, 80.0, rows[0].AcademicReputation)
	assert.Equal(t, 70.0, rows[0].EmploymentRate)
}

func TestReadCSVMissingColumn(t *testing.T) {
	_, err := ReadCSV(strings.NewReader("University Name,Country\nA,B\n"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingColumn)
}

func TestReadCSVRejectsOutOfRangeScore(t *testing.T) {
	data := "University Name,Country,World Rank,Academic Reputation Score,International Students Ratio Score,Graduate Employment Rate Score\n" +
		"Good,France,1,50,50,50\n" +
		"Bad,France,2,50,120,50\n"
	_, err := ReadCSV(strings.NewReader(data))
	require.Error(t, err)

	var rowErr *RowError
	require.ErrorAs(t, err, &rowErr)
	assert.Equal(t, 3, rowErr.Line)
	assert.True(t, binning.IsRangeError(err))
}

func TestReadCSVMissingScore(t *testing.T) {
	data := "University Name,Country,World Rank,Academic Reputation Score,International Students Ratio Score,Graduate Employment Rate Score\n" +
		"Gap,France,1,50,,50\n"
	_, err := ReadCSV(strings.NewReader(data))
	require.Error(t, err)
	assert.ErrorIs(t, err, binning.ErrMissingField)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "unis.csv")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o600))

	rows, err := LoadFile(path)
	require.NoError(t, err)
	assert.Len(t, rows, 4)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}
