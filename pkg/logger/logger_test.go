package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, false, "json")

	WithOrganization(l, "org-1", "Acme").Info("issues fetched", "count", 3)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "issues fetched", entry["msg"])
	assert.Equal(t, "org-1", entry["organization_id"])
	assert.Equal(t, "Acme", entry["organization"])
	assert.EqualValues(t, 3, entry["count"])
}

func TestNew_DebugLevel(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, false, "text").Debug("hidden")
	assert.Empty(t, buf.String())

	New(&buf, true, "text").Debug("shown")
	assert.Contains(t, buf.String(), "msg=shown")
}

func TestSetupLogger(t *testing.T) {
	prev := Logger
	t.Cleanup(func() { Logger = prev })

	SetupLogger(true, "json")
	assert.NotNil(t, Logger)
	assert.NotSame(t, prev, Logger)
}
