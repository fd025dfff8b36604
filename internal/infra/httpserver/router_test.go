package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/tpa-risk/internal/application/riskanalysis"
	domai "github.com/bryanwahyu/tpa-risk/internal/domain/ai"
	"github.com/bryanwahyu/tpa-risk/internal/domain/assessment"
	"github.com/bryanwahyu/tpa-risk/internal/domain/organizations"
	"github.com/bryanwahyu/tpa-risk/internal/domain/runerrors"
	"github.com/bryanwahyu/tpa-risk/internal/middleware"
)

type fakeAnalyzer struct {
	outcomes  map[organizations.ID]riskanalysis.Outcome
	batch     riskanalysis.BatchReport
	lastLimit int
	lastPage  [2]int
	ctxErrs   []error
}

func (f *fakeAnalyzer) RunOne(ctx context.Context, id organizations.ID) (riskanalysis.Outcome, error) {
	f.ctxErrs = append(f.ctxErrs, ctx.Err())
	o, ok := f.outcomes[id]
	if !ok {
		return riskanalysis.Outcome{}, fmt.Errorf("get %s: %w", id, organizations.ErrNotFound)
	}
	return o, nil
}

func (f *fakeAnalyzer) RunBatch(ctx context.Context, limit int) (riskanalysis.BatchReport, error) {
	f.ctxErrs = append(f.ctxErrs, ctx.Err())
	f.lastLimit = limit
	return f.batch, nil
}

func (f *fakeAnalyzer) Analyses(_ context.Context, orgID string, page, size int) (assessment.PaginatedResult, error) {
	f.lastPage = [2]int{page, size}
	return assessment.PaginatedResult{
		Data:     []*assessment.Record{{ID: "r1", OrganizationID: orgID}},
		Page:     page,
		PageSize: size,
		Total:    1,
	}, nil
}

func (f *fakeAnalyzer) RunErrors(_ context.Context, orgID string, _ int) ([]*runerrors.RunError, error) {
	return []*runerrors.RunError{{OrganizationID: orgID, Phase: runerrors.PhaseInvoke}}, nil
}

func newTestServer(t *testing.T, f *fakeAnalyzer, keys map[string]string) (*httptest.Server, *middleware.Metrics) {
	t.Helper()
	m := middleware.NewMetrics()
	h := NewRouter(f, Options{
		Log:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		APIKeys: keys,
		Metrics: m,
	})
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return srv, m
}

func do(t *testing.T, method, url string) (*http.Response, map[string]any) {
	t.Helper()
	req, err := http.NewRequest(method, url, nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer k")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	var body map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&body)
	return resp, body
}

func TestAnalyzeOrganization(t *testing.T) {
	f := &fakeAnalyzer{outcomes: map[organizations.ID]riskanalysis.Outcome{
		"org-1": {OrganizationID: "org-1", Organization: "Acme", Status: riskanalysis.StatusCompleted, Issues: 3, Apps: 2},
		"org-q": {OrganizationID: "org-q", Status: riskanalysis.StatusFailed, Phase: runerrors.PhaseInvoke,
			Err: fmt.Errorf("invoke: %w", domai.ErrQuotaExceeded)},
		"org-x": {OrganizationID: "org-x", Status: riskanalysis.StatusFailed, Err: errors.New("disk full")},
	}}
	srv, m := newTestServer(t, f, map[string]string{"tenant": "k"})

	resp, body := do(t, http.MethodPost, srv.URL+"/v1/organizations/org-1/analyze")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "completed", body["status"])
	assert.Equal(t, "Acme", body["organization"])

	resp, body = do(t, http.MethodPost, srv.URL+"/v1/organizations/missing/analyze")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, body["error"], "not found")

	resp, body = do(t, http.MethodPost, srv.URL+"/v1/organizations/org-q/analyze")
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "failed", body["status"])

	resp, _ = do(t, http.MethodPost, srv.URL+"/v1/organizations/org-x/analyze")
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	resp, _ = do(t, http.MethodPost, srv.URL+"/v1/organizations/bad%20id/analyze")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	s := m.Snapshot()
	assert.Equal(t, uint64(1), s["analyses_completed"])
	assert.Equal(t, uint64(2), s["analyses_failed"])
	assert.Equal(t, int64(0), s["analyses_running"])
}

func TestAnalyzeBatch(t *testing.T) {
	f := &fakeAnalyzer{batch: riskanalysis.BatchReport{
		Outcomes: []riskanalysis.Outcome{
			{OrganizationID: "a", Status: riskanalysis.StatusCompleted},
			{OrganizationID: "b", Status: riskanalysis.StatusSkipped, Reason: riskanalysis.ReasonNoIssues},
		},
		Completed: 1,
		Skipped:   1,
	}}
	srv, _ := newTestServer(t, f, nil)

	resp, body := do(t, http.MethodPost, srv.URL+"/v1/analyze?limit=5")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 5, f.lastLimit)
	assert.EqualValues(t, 1, body["completed"])
	assert.EqualValues(t, 1, body["skipped"])

	resp, _ = do(t, http.MethodPost, srv.URL+"/v1/analyze")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 0, f.lastLimit)

	resp, _ = do(t, http.MethodPost, srv.URL+"/v1/analyze?limit=abc")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestListAnalysesAndErrors(t *testing.T) {
	f := &fakeAnalyzer{}
	srv, _ := newTestServer(t, f, nil)

	resp, body := do(t, http.MethodGet, srv.URL+"/v1/organizations/org-1/analyses?page=2&page_size=500")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, [2]int{2, 100}, f.lastPage)
	assert.EqualValues(t, 1, body["totalItems"])

	resp, _ = do(t, http.MethodGet, srv.URL+"/v1/organizations/org-1/errors")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAuthAndProbes(t *testing.T) {
	srv, _ := newTestServer(t, &fakeAnalyzer{}, map[string]string{"tenant": "secret"})

	resp, _ := do(t, http.MethodPost, srv.URL+"/v1/analyze")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	for _, p := range []string{"/health", "/ready", "/live", "/metrics"} {
		resp, err := http.Get(srv.URL + p)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode, p)
	}
}

func TestRunsOutliveClientDisconnect(t *testing.T) {
	f := &fakeAnalyzer{outcomes: map[organizations.ID]riskanalysis.Outcome{
		"org-1": {OrganizationID: "org-1", Status: riskanalysis.StatusCompleted},
	}}
	h := NewRouter(f, Options{Log: slog.New(slog.NewTextHandler(io.Discard, nil))})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	for _, path := range []string{"/v1/organizations/org-1/analyze", "/v1/analyze"} {
		req := httptest.NewRequest(http.MethodPost, path, nil).WithContext(ctx)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}

	assert.Equal(t, []error{nil, nil}, f.ctxErrs)
}
