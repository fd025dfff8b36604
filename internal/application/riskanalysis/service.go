package riskanalysis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"github.com/bryanwahyu/tpa-risk/internal/application"
	"github.com/bryanwahyu/tpa-risk/internal/domain/ai"
	"github.com/bryanwahyu/tpa-risk/internal/domain/assessment"
	"github.com/bryanwahyu/tpa-risk/internal/domain/organizations"
	"github.com/bryanwahyu/tpa-risk/internal/domain/runerrors"
	"github.com/bryanwahyu/tpa-risk/internal/domain/thirdparty"
	"github.com/bryanwahyu/tpa-risk/pkg/logger"
)

const (
	DefaultAppID     = "c9515829-aa66-4ed3-8b8e-71a7b729ad09"
	DefaultIssues    = 300
	DefaultBatchSize = 20
)

// PromptBuilder turns an organization's deduplicated apps into a model prompt.
type PromptBuilder func(orgName string, apps []thirdparty.DedupedApp) string

// Service runs the risk-analysis pipeline. Organizations are processed one
// at a time, including when the service is driven from several goroutines.
type Service struct {
	Orgs   organizations.Repository
	Issues thirdparty.IssueSource
	Model  ai.Client
	Prompt PromptBuilder
	Writer assessment.ResultWriter
	Clock  application.Clock
	Log    *slog.Logger

	// optional
	Mirrors  []assessment.ArtifactStore
	Archive  assessment.Repository
	Failures runerrors.Repository

	AppID      string
	IssueLimit int
	BatchSize  int

	mu sync.Mutex
}

// Run analyzes one organization when id is set, otherwise the latest batch
// of limit organizations (BatchSize when limit is 0).
// organizations.ErrNotFound is returned for an unknown id.
func (s *Service) Run(ctx context.Context, id string, limit int) (BatchReport, error) {
	if id == "" {
		return s.RunBatch(ctx, limit)
	}
	var report BatchReport
	o, err := s.RunOne(ctx, organizations.ID(id))
	if err != nil {
		return report, err
	}
	report.add(o)
	return report, nil
}

// RunOne analyzes a single organization by id.
func (s *Service) RunOne(ctx context.Context, id organizations.ID) (Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	org, err := s.Orgs.Get(ctx, id)
	if err != nil {
		if errors.Is(err, organizations.ErrNotFound) {
			s.log().Error("organization not found", "organization_id", id)
		}
		return Outcome{}, err
	}
	s.log().Info("processing specific organization", "organization", org.Name)
	return s.analyze(ctx, org), nil
}

// RunBatch analyzes the most recently updated organizations, newest first.
// A failing organization never stops the batch.
func (s *Service) RunBatch(ctx context.Context, limit int) (BatchReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if limit <= 0 {
		limit = s.BatchSize
	}
	if limit <= 0 {
		limit = DefaultBatchSize
	}

	var report BatchReport
	orgs, err := s.Orgs.Latest(ctx, limit)
	if err != nil {
		return report, fmt.Errorf("fetch organizations: %w", err)
	}
	s.log().Info("fetched organizations", "count", len(orgs))

	for _, org := range orgs {
		report.add(s.analyze(ctx, org))
	}
	s.log().Info("batch finished",
		"completed", report.Completed, "skipped", report.Skipped, "failed", report.Failed)
	return report, nil
}

// analyze is the per-organization state machine:
// Selected -> IssuesFetched -> (Empty | Deduped -> PromptBuilt -> Invoked -> Validated -> Written).
func (s *Service) analyze(ctx context.Context, org *organizations.Organization) Outcome {
	log := logger.WithOrganization(s.log(), string(org.ID), org.Name)
	out := Outcome{OrganizationID: string(org.ID), Organization: org.Name}
	log.Info("processing organization")

	records, err := s.Issues.ScopeRecords(ctx, thirdparty.IssueQuery{
		OrganizationID: string(org.ID),
		AppID:          s.appID(),
		Limit:          s.issueLimit(),
	})
	if err != nil {
		return s.fail(ctx, log, out, runerrors.PhaseFetch, fmt.Errorf("fetch issues: %w", err))
	}
	out.Issues = len(records)
	log.Info("fetched issues", "count", len(records))
	if len(records) == 0 {
		log.Info("no issues found, skipping")
		out.Status = StatusSkipped
		out.Reason = ReasonNoIssues
		return out
	}

	apps, lookup := thirdparty.Deduplicate(records)
	out.Apps = len(apps)
	log.Debug("deduplicated apps", "count", len(apps))

	raw, err := s.Model.Complete(ctx, s.Prompt(org.Name, apps))
	if err != nil {
		return s.fail(ctx, log, out, runerrors.PhaseInvoke, fmt.Errorf("invoke model: %w", err))
	}

	analysis := assessment.ParseResponse(raw, lookup)
	if analysis.Failed() {
		out.ParseFailed = true
		log.Warn("model response is not valid JSON", "raw_response", raw)
	} else if analysis.Report.HasTopRiskyApps() {
		sum := analysis.Report.Summary()
		out.Summary = &sum
		for _, app := range analysis.Report.TopRiskyApps {
			if !app.RiskLevel.Valid() {
				log.Warn("unexpected risk level", "app", app.AppName, "risk_level", app.RiskLevel)
			}
			log.Info("risky app", "app", app.AppName, "risk_level", app.RiskLevel)
		}
		log.Info("risk analysis", "total", sum.Total, "high", sum.High, "medium", sum.Medium, "low", sum.Low)
	} else {
		log.Info("risk analysis returned no top_risky_apps")
	}

	result := &assessment.AnalysisResult{
		Organization:   org.Name,
		OrganizationID: string(org.ID),
		Timestamp:      assessment.ISOTimestamp(s.Clock.Now()),
		Analysis:       analysis,
	}
	path, err := s.Writer.Write(ctx, result)
	if err != nil {
		return s.fail(ctx, log, out, runerrors.PhaseWrite, fmt.Errorf("write result: %w", err))
	}
	out.ArtifactPath = path
	out.Status = StatusCompleted
	log.Info("results written", "path", path)

	s.mirror(ctx, log, org, path)
	s.archive(ctx, log, result, path)
	return out
}

// mirror failures are logged only; the local artifact is already written.
func (s *Service) mirror(ctx context.Context, log *slog.Logger, org *organizations.Organization, path string) {
	key := fmt.Sprintf("%s/%s", org.ID, filepath.Base(path))
	for _, m := range s.Mirrors {
		url, err := m.Upload(ctx, path, key)
		if err != nil {
			log.Warn("artifact mirror upload failed", "key", key, "error", err)
			continue
		}
		log.Debug("artifact mirrored", "url", url)
	}
}

func (s *Service) archive(ctx context.Context, log *slog.Logger, result *assessment.AnalysisResult, path string) {
	if s.Archive == nil {
		return
	}
	b, err := json.Marshal(result)
	if err == nil {
		err = s.Archive.Save(ctx, &assessment.Record{
			ID:               assessment.RecordID(uuid.New().String()),
			OrganizationID:   result.OrganizationID,
			OrganizationName: result.Organization,
			ResultJSON:       string(b),
			ArtifactPath:     path,
			CreatedAt:        s.Clock.Now(),
		})
	}
	if err != nil {
		log.Warn("archive save failed", "error", err)
		s.recordFailure(ctx, log, result.OrganizationID, runerrors.PhaseArchive, err)
	}
}

func (s *Service) fail(ctx context.Context, log *slog.Logger, out Outcome, phase runerrors.Phase, err error) Outcome {
	log.Error("organization failed", "phase", phase, "error", err)
	out.Status = StatusFailed
	out.Phase = phase
	out.Err = err
	out.Error = err.Error()
	s.recordFailure(ctx, log, out.OrganizationID, phase, err)
	return out
}

func (s *Service) recordFailure(ctx context.Context, log *slog.Logger, orgID string, phase runerrors.Phase, cause error) {
	if s.Failures == nil {
		return
	}
	details, _ := json.Marshal(map[string]bool{
		"quota_exceeded": errors.Is(cause, ai.ErrQuotaExceeded),
	})
	e := &runerrors.RunError{
		OrganizationID: orgID,
		Phase:          phase,
		Message:        cause.Error(),
		DetailsJSON:    string(details),
		CreatedAt:      s.Clock.Now(),
	}
	if err := s.Failures.Save(ctx, e); err != nil {
		log.Warn("failed to record run error", "error", err)
	}
}

// Analyses returns archived results for an organization.
func (s *Service) Analyses(ctx context.Context, orgID string, page, pageSize int) (assessment.PaginatedResult, error) {
	if s.Archive == nil {
		return assessment.PaginatedResult{Data: []*assessment.Record{}, Page: page, PageSize: pageSize}, nil
	}
	return s.Archive.Paginate(ctx, orgID, page, pageSize)
}

// RunErrors returns recorded failures for an organization.
func (s *Service) RunErrors(ctx context.Context, orgID string, limit int) ([]*runerrors.RunError, error) {
	if s.Failures == nil {
		return []*runerrors.RunError{}, nil
	}
	return s.Failures.ListByOrganization(ctx, orgID, limit)
}

// helper
func (s *Service) log() *slog.Logger {
	if s.Log != nil {
		return s.Log
	}
	return logger.Logger
}

func (s *Service) appID() string {
	if s.AppID != "" {
		return s.AppID
	}
	return DefaultAppID
}

func (s *Service) issueLimit() int {
	if s.IssueLimit > 0 {
		return s.IssueLimit
	}
	return DefaultIssues
}
