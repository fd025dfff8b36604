package main

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/bryanwahyu/tpa-risk/internal/application"
	"github.com/bryanwahyu/tpa-risk/internal/application/riskanalysis"
	"github.com/bryanwahyu/tpa-risk/internal/config"
	domai "github.com/bryanwahyu/tpa-risk/internal/domain/ai"
	"github.com/bryanwahyu/tpa-risk/internal/domain/assessment"
	"github.com/bryanwahyu/tpa-risk/internal/domain/runerrors"
	"github.com/bryanwahyu/tpa-risk/internal/infra/ai/bedrock"
	openaiClient "github.com/bryanwahyu/tpa-risk/internal/infra/ai/openai"
	"github.com/bryanwahyu/tpa-risk/internal/infra/ai/prompt"
	mysqlp "github.com/bryanwahyu/tpa-risk/internal/infra/db/mysql"
	"github.com/bryanwahyu/tpa-risk/internal/infra/db/postgres"
	"github.com/bryanwahyu/tpa-risk/internal/infra/storage"
	"github.com/bryanwahyu/tpa-risk/pkg/logger"
)

// app holds the wired service and the connections it owns.
type app struct {
	cfg       *config.Config
	svc       *riskanalysis.Service
	db        *sql.DB
	archiveDB *sql.DB
}

// Close releases every connection; safe on a partially built app.
func (a *app) Close() {
	if a.archiveDB != nil && a.archiveDB != a.db {
		a.archiveDB.Close()
	}
	if a.db != nil {
		a.db.Close()
	}
}

// setup loads config and wires the pipeline. On error nothing is left open.
func setup(ctx context.Context, configPath string) (_ *app, err error) {
	cfg, err := config.Load(config.Path(configPath))
	if err != nil {
		return nil, fmt.Errorf("config load error: %w", err)
	}

	a := &app{cfg: cfg}
	defer func() {
		if err != nil {
			a.Close()
		}
	}()

	a.db, err = postgres.Connect(ctx, cfg.PostgresDSN())
	if err != nil {
		return nil, fmt.Errorf("postgres connect error: %w", err)
	}

	model, err := newModel(ctx, cfg)
	if err != nil {
		return nil, err
	}

	mirrors, err := newMirrors(ctx, cfg)
	if err != nil {
		return nil, err
	}

	archive, failures, err := a.newArchive(ctx)
	if err != nil {
		return nil, err
	}

	a.svc = &riskanalysis.Service{
		Orgs:       postgres.NewOrganizationRepository(a.db),
		Issues:     postgres.NewIssueRepository(a.db),
		Model:      model,
		Prompt:     prompt.GetRiskPrompt,
		Writer:     storage.NewFileWriter(cfg.Analysis.ResultsDir),
		Clock:      application.SystemClock{},
		Log:        logger.Logger,
		Mirrors:    mirrors,
		Archive:    archive,
		Failures:   failures,
		AppID:      cfg.Analysis.AppID,
		IssueLimit: cfg.Analysis.IssueLimit,
		BatchSize:  cfg.Analysis.OrgBatchSize,
	}
	return a, nil
}

func newModel(ctx context.Context, cfg *config.Config) (domai.Client, error) {
	switch cfg.Model.Provider {
	case config.ProviderOpenAI:
		return openaiClient.NewClient(cfg.Model.APIKey, cfg.Model.ID, cfg.Model.MaxTokens), nil
	default:
		c, err := bedrock.New(ctx, cfg.Model.Region, cfg.Model.ID, cfg.Model.MaxTokens)
		if err != nil {
			return nil, fmt.Errorf("bedrock init error: %w", err)
		}
		return c, nil
	}
}

func newMirrors(ctx context.Context, cfg *config.Config) ([]assessment.ArtifactStore, error) {
	var mirrors []assessment.ArtifactStore
	if cfg.MinioEnabled() {
		store, err := storage.NewMinio(ctx,
			cfg.Minio.Endpoint,
			cfg.Minio.Region,
			cfg.Minio.BucketName,
			cfg.Minio.AccessKey,
			cfg.Minio.SecretKey,
			cfg.Minio.UseSSL,
		)
		if err != nil {
			return nil, fmt.Errorf("minio init error: %w", err)
		}
		mirrors = append(mirrors, store)
	}
	if cfg.S3Enabled() {
		store, err := storage.NewS3(ctx, cfg.S3.Region, cfg.S3.Bucket, cfg.S3.Prefix)
		if err != nil {
			return nil, fmt.Errorf("s3 init error: %w", err)
		}
		mirrors = append(mirrors, store)
	}
	return mirrors, nil
}

// newArchive wires the optional archive and run-error log. The postgres
// driver reuses the source connection.
func (a *app) newArchive(ctx context.Context) (assessment.Repository, runerrors.Repository, error) {
	switch a.cfg.Archive.Driver {
	case "postgres":
		if err := postgres.Migrate(ctx, a.db); err != nil {
			return nil, nil, fmt.Errorf("postgres migrate error: %w", err)
		}
		a.archiveDB = a.db
		return postgres.NewAnalysisRepository(a.db), postgres.NewRunErrorRepository(a.db), nil
	case "mysql":
		db, err := mysqlp.Connect(ctx, a.cfg.MySQLDSN())
		if err != nil {
			return nil, nil, fmt.Errorf("mysql connect error: %w", err)
		}
		a.archiveDB = db
		if err := mysqlp.Migrate(ctx, db); err != nil {
			return nil, nil, fmt.Errorf("mysql migrate error: %w", err)
		}
		return mysqlp.NewAnalysisRepository(db), mysqlp.NewRunErrorRepository(db), nil
	}
	return nil, nil, nil
}
