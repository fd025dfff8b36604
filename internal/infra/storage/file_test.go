package storage

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/tpa-risk/internal/domain/assessment"
)

func TestFileName(t *testing.T) {
	tests := []struct {
		org, ts, want string
	}{
		{"Acme", "2025-03-01T10:04:05.123Z", "acme_risk_analysis_2025-03-01T10-04-05-123Z.json"},
		{"Acme Corp, Inc.", "2025-03-01T10:04:05.123Z", "acme_corp__inc__risk_analysis_2025-03-01T10-04-05-123Z.json"},
		{"Ünïcode/Org", "t", "_n_code_org_risk_analysis_t.json"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FileName(tt.org, tt.ts), tt.org)
	}
}

func TestFileWriter_Write(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "results")
	w := NewFileWriter(dir)

	res := &assessment.AnalysisResult{
		Organization:   "Acme",
		OrganizationID: "org-1",
		Timestamp:      "2025-03-01T10:04:05.123Z",
		Analysis:       assessment.ParseResponse(`{"top_risky_apps":[]}`, nil),
	}

	path, err := w.Write(context.Background(), res)

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "acme_risk_analysis_2025-03-01T10-04-05-123Z.json"), path)

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), "\n  \"organization\": \"Acme\"")

	var doc map[string]any
	require.NoError(t, json.Unmarshal(b, &doc))
	assert.Equal(t, "org-1", doc["organization_id"])
	assert.Equal(t, map[string]any{"top_risky_apps": []any{}}, doc["analysis"])
}

func TestFileWriter_DefaultDir(t *testing.T) {
	assert.Equal(t, DefaultResultsDir, NewFileWriter("").Dir)
}

func TestFileWriter_UnwritableDir(t *testing.T) {
	file := filepath.Join(t.TempDir(), "not-a-dir")
	require.NoError(t, os.WriteFile(file, nil, 0o644))

	_, err := NewFileWriter(file).Write(context.Background(), &assessment.AnalysisResult{Organization: "x"})

	assert.Error(t, err)
}
