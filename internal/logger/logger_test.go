package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var entries []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &entry), line)
		entries = append(entries, entry)
	}
	return entries
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, "debug", ParseLevel("debug").String())
	assert.Equal(t, "warn", ParseLevel("warn").String())
	assert.Equal(t, "error", ParseLevel("error").String())
	assert.Equal(t, "info", ParseLevel("verbose").String())
}

func TestLevelFiltersDebugDifferences(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(Config{Level: "info", Output: &buf})

	log.DiffLogger("cmp-1").LogFieldDifference(1, "dublincore", "title", "[{string,null}]", "text-value")
	assert.Empty(t, buf.String())

	log.DiffLogger("cmp-1").LogComparison(time.Millisecond, 1, 1, nil)
	entries := decodeLines(t, &buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "docdiff", entries[0]["service"])
	assert.Equal(t, "cmp-1", entries[0]["comparison"])
	assert.Equal(t, "info", entries[0]["level"])
}

func TestFieldDifferenceFields(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(Config{Level: "debug", Output: &buf})

	log.DiffLogger("cmp-2").LogFieldDifference(3, "files", "files", "[{complexList,0}]", "child-node-not-found")
	log.DiffLogger("cmp-2").LogNonFieldDifference("has-child-nodes", "outside fields")

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 2)
	assert.Equal(t, float64(3), entries[0]["n"])
	assert.Equal(t, "files", entries[0]["schema"])
	assert.Equal(t, "child-node-not-found", entries[0]["kind"])
	assert.Equal(t, "has-child-nodes", entries[1]["kind"])
}

func TestErrorsRaiseTheLevel(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(Config{Level: "info", Output: &buf})

	log.StoreLogger("put").LogStoreOperation("put", time.Millisecond, nil)
	assert.Empty(t, buf.String(), "successful store operations log at debug")

	log.StoreLogger("put").LogStoreOperation("put", time.Millisecond, errors.New("disk full"))
	entries := decodeLines(t, &buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "error", entries[0]["level"])
	assert.Equal(t, "disk full", entries[0]["error"])
}

func TestNop(t *testing.T) {
	log := Nop()
	log.LogServerStart(50051, "docdiff.db")
	log.Info("ignored").Send()
}
