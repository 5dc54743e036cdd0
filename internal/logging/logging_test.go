package logging_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/vehicle-logbook/backend/internal/logging"
)

func TestNew_JSONIsDefault(t *testing.T) {
	var buf bytes.Buffer
	log, err := logging.New(&buf, "", "info")
	require.NoError(t, err)

	log.Info("export written", "rows", 3)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "export written", line["msg"])
	assert.EqualValues(t, 3, line["rows"])
}

func TestNew_LevelFiltersBelow(t *testing.T) {
	var buf bytes.Buffer
	log, err := logging.New(&buf, logging.FormatJSON, "warn")
	require.NoError(t, err)

	log.Info("hidden")
	log.Warn("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestNew_TextFormatIsPlainWhenNotATerminal(t *testing.T) {
	var buf bytes.Buffer
	log, err := logging.New(&buf, logging.FormatText, "debug")
	require.NoError(t, err)

	log.Debug("row skipped", "line", 7)

	out := buf.String()
	assert.Contains(t, out, "row skipped")
	assert.Contains(t, out, "line=7")
	assert.NotContains(t, out, "\x1b[")
}

func TestNew_RejectsBadInput(t *testing.T) {
	_, err := logging.New(&bytes.Buffer{}, "xml", "info")
	assert.Error(t, err)

	_, err = logging.New(&bytes.Buffer{}, "json", "loud")
	assert.Error(t, err)
}
