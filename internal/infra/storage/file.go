package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/bryanwahyu/tpa-risk/internal/domain/assessment"
)

// DefaultResultsDir is where artifacts go when no directory is configured.
const DefaultResultsDir = "results"

var unsafeName = regexp.MustCompile(`[^a-zA-Z0-9]`)

// FileWriter writes one pretty-printed JSON file per AnalysisResult.
type FileWriter struct {
	Dir string
}

func NewFileWriter(dir string) *FileWriter {
	if dir == "" {
		dir = DefaultResultsDir
	}
	return &FileWriter{Dir: dir}
}

// FileName builds <sanitized org>_risk_analysis_<timestamp>.json.
func FileName(orgName, timestamp string) string {
	safe := strings.ToLower(unsafeName.ReplaceAllString(orgName, "_"))
	ts := strings.NewReplacer(":", "-", ".", "-").Replace(timestamp)
	return fmt.Sprintf("%s_risk_analysis_%s.json", safe, ts)
}

// Write implementasi ResultWriter
func (w *FileWriter) Write(_ context.Context, r *assessment.AnalysisResult) (string, error) {
	if err := os.MkdirAll(w.Dir, 0o755); err != nil {
		return "", fmt.Errorf("create results dir: %w", err)
	}
	b, err := r.MarshalIndent()
	if err != nil {
		return "", fmt.Errorf("marshal result: %w", err)
	}
	path := filepath.Join(w.Dir, FileName(r.Organization, r.Timestamp))
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}
