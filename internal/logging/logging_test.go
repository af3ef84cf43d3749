package logging

import (
	"bytes"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitJSON(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "debug", Output: &buf})
	t.Cleanup(func() { Init(Config{}) })

	l := Component("pipeline")
	l.Info().Int("rows", 3).Msg("fitted")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "fitted", entry["message"])
	assert.Equal(t, "pipeline", entry["component"])
	assert.Equal(t, "info", entry["level"])
	assert.EqualValues(t, 3, entry["rows"])
}

func TestLevelFilters(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "warn", Output: &buf})
	t.Cleanup(func() { Init(Config{}) })

	Info().Msg("hidden")
	assert.Zero(t, buf.Len())

	Warn().Msg("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, "debug", parseLevel("DEBUG").String())
	assert.Equal(t, "warn", parseLevel("warning").String())
	assert.Equal(t, "info", parseLevel("").String())
	assert.Equal(t, "info", parseLevel("nonsense").String())
}

func TestComponentChainsDirectly(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "debug", Output: &buf})
	t.Cleanup(func() { Init(Config{}) })

	Component("service").Warn().Str("kind", "overview").Msg("narrative unavailable")
	Component("http").Error().Msg("encode response")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)

	var warn, failed map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &warn))
	require.NoError(t, json.Unmarshal(lines[1], &failed))
	assert.Equal(t, "service", warn["component"])
	assert.Equal(t, "warn", warn["level"])
	assert.Equal(t, "http", failed["component"])
	assert.Equal(t, "error", failed["level"])
}
