package envfile

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender_SortedAndQuoted(t *testing.T) {
	values := map[string]string{
		"POSTGRES_HOST":       "10.1.2.3",
		"MLFLOW_TRACKING_URI": "https://mlflow.example.run.app",
		"GREETING":            "hello world",
	}
	now := time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)

	rendered := Render(values, now)
	lines := strings.Split(strings.TrimRight(rendered, "\n"), "\n")
	require.Len(t, lines, 4)

	assert.Equal(t, "# Generated by stackctl on 2026-08-26T12:00:00Z", lines[0])
	assert.Equal(t, `GREETING="hello world"`, lines[1])
	assert.Equal(t, "MLFLOW_TRACKING_URI=https://mlflow.example.run.app", lines[2])
	assert.Equal(t, "POSTGRES_HOST=10.1.2.3", lines[3])
}

func TestRender_DeterministicExceptTimestamp(t *testing.T) {
	values := map[string]string{
		"A": "1",
		"B": "2",
		"C": "3",
	}

	first := Render(values, time.Date(2026, 8, 26, 9, 0, 0, 0, time.UTC))
	second := Render(values, time.Date(2026, 8, 26, 17, 30, 0, 0, time.UTC))

	stripHeader := func(s string) string {
		_, rest, _ := strings.Cut(s, "\n")
		return rest
	}
	assert.NotEqual(t, first, second)
	assert.Equal(t, stripHeader(first), stripHeader(second))
}

func TestWriteAndParseRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env.cloud")
	values := map[string]string{
		"MODEL_API_URL": "https://model-api.example.run.app",
		"SECRET":        "p@ss word",
	}

	require.NoError(t, Write(path, values, time.Now()))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	parsed, err := Parse(path)
	require.NoError(t, err)
	assert.Equal(t, values, parsed)
}

func TestMerge_UpdatesWinWithoutMutation(t *testing.T) {
	base := map[string]string{"A": "old", "B": "keep"}
	updates := map[string]string{"A": "new", "C": "added"}

	merged := Merge(base, updates)

	assert.Equal(t, map[string]string{"A": "new", "B": "keep", "C": "added"}, merged)
	assert.Equal(t, "old", base["A"])
	assert.NotContains(t, base, "C")
}

func TestParse_MissingFile(t *testing.T) {
	_, err := Parse(filepath.Join(t.TempDir(), "absent.env"))
	require.Error(t, err)
}
