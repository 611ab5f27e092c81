package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf)

	Warn(logger, "storage_corrupt", map[string]any{"key": "tasks", "level": "ignored"})

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "warn", got["level"])
	assert.Equal(t, "storage_corrupt", got["msg"])
	assert.Equal(t, "tasks", got["key"])
	assert.NotEmpty(t, got["ts"])
}
