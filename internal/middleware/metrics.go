package middleware

import (
	"encoding/json"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"
)

// Metrics stores request and analysis counters
type Metrics struct {
	RequestsTotal      atomic.Uint64
	RequestsInProgress atomic.Int64
	RequestsSuccess    atomic.Uint64
	RequestsFailed     atomic.Uint64
	AnalysesRunning    atomic.Int64
	AnalysesCompleted  atomic.Uint64
	AnalysesSkipped    atomic.Uint64
	AnalysesFailed     atomic.Uint64
	StartTime          time.Time
}

func NewMetrics() *Metrics {
	return &Metrics{StartTime: time.Now()}
}

// AnalysisStarted/AnalysisFinished bracket one request-driven run. Each
// status is an outcome status string ("completed", "skipped", "failed").
func (m *Metrics) AnalysisStarted() { m.AnalysesRunning.Add(1) }

func (m *Metrics) AnalysisFinished(statuses ...string) {
	m.AnalysesRunning.Add(-1)
	for _, status := range statuses {
		switch status {
		case "completed":
			m.AnalysesCompleted.Add(1)
		case "skipped":
			m.AnalysesSkipped.Add(1)
		default:
			m.AnalysesFailed.Add(1)
		}
	}
}

// Snapshot returns current metrics
func (m *Metrics) Snapshot() map[string]any {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	return map[string]any{
		"requests_total":       m.RequestsTotal.Load(),
		"requests_in_progress": m.RequestsInProgress.Load(),
		"requests_success":     m.RequestsSuccess.Load(),
		"requests_failed":      m.RequestsFailed.Load(),
		"analyses_running":     m.AnalysesRunning.Load(),
		"analyses_completed":   m.AnalysesCompleted.Load(),
		"analyses_skipped":     m.AnalysesSkipped.Load(),
		"analyses_failed":      m.AnalysesFailed.Load(),
		"uptime_seconds":       time.Since(m.StartTime).Seconds(),
		"memory": map[string]any{
			"alloc_bytes":       mem.Alloc,
			"total_alloc_bytes": mem.TotalAlloc,
			"sys_bytes":         mem.Sys,
			"num_gc":            mem.NumGC,
		},
		"goroutines": runtime.NumGoroutine(),
	}
}

// Middleware tracks request metrics
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.RequestsTotal.Add(1)
		m.RequestsInProgress.Add(1)
		defer m.RequestsInProgress.Add(-1)

		wrapped := wrap(w)
		next.ServeHTTP(wrapped, r)

		if wrapped.statusCode >= 200 && wrapped.statusCode < 400 {
			m.RequestsSuccess.Add(1)
		} else {
			m.RequestsFailed.Add(1)
		}
	})
}

// Handler returns metrics as JSON
func (m *Metrics) Handler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(m.Snapshot())
}
