package middleware

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"time"
)

// HealthChecker is one dependency probed by /health.
type HealthChecker interface {
	Check(ctx context.Context) error
}

// CheckerFunc adapts a plain function to HealthChecker.
type CheckerFunc func(ctx context.Context) error

func (f CheckerFunc) Check(ctx context.Context) error { return f(ctx) }

// DatabaseHealthChecker pings the source store or the archive.
type DatabaseHealthChecker struct {
	DB *sql.DB
}

func (d *DatabaseHealthChecker) Check(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return d.DB.PingContext(ctx)
}

type probeResult struct {
	OK        bool    `json:"ok"`
	LatencyMS float64 `json:"latency_ms"`
	Error     string  `json:"error,omitempty"`
}

type healthReport struct {
	Status string                 `json:"status"`
	Time   time.Time              `json:"time"`
	Checks map[string]probeResult `json:"checks"`
}

// HealthHandler probes every dependency and answers 503 if any is down.
func HealthHandler(checkers map[string]HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		rep := healthReport{Status: "up", Time: time.Now().UTC(), Checks: map[string]probeResult{}}
		code := http.StatusOK
		for name, c := range checkers {
			start := time.Now()
			err := c.Check(ctx)
			res := probeResult{OK: err == nil, LatencyMS: float64(time.Since(start).Microseconds()) / 1000}
			if err != nil {
				res.Error = err.Error()
				rep.Status = "down"
				code = http.StatusServiceUnavailable
			}
			rep.Checks[name] = res
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		json.NewEncoder(w).Encode(rep)
	}
}

// ReadinessHandler answers once the router is mounted; dependencies are
// already connected by then.
func ReadinessHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ready"})
}

func LivenessHandler(w http.ResponseWriter, _ *http.Request) {
	w.Write([]byte("ok"))
}
