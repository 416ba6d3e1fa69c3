// Package commands provides CLI command implementations.
package commands

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	appClaims "github.com/pharmafield/expenseflow/internal/application/claims"
	"github.com/pharmafield/expenseflow/internal/config"
	domainClaims "github.com/pharmafield/expenseflow/internal/domain/claims"
	infraClaims "github.com/pharmafield/expenseflow/internal/infrastructure/claims"
	"github.com/pharmafield/expenseflow/internal/infrastructure/events"
	"github.com/pharmafield/expenseflow/internal/infrastructure/lake"
	"github.com/pharmafield/expenseflow/internal/infrastructure/pipeline"
	"github.com/pharmafield/expenseflow/internal/logging"
)

// Global flags set by the root command.
var (
	ConfigPath string
	Verbose    bool
)

// App bundles the wired services for command execution.
type App struct {
	Config   *config.Config
	Settings *config.Settings
	Logger   *zap.Logger
	Service  *appClaims.Service
	Runner   *appClaims.Runner
	Trigger  *pipeline.Trigger
	Lake     lake.BlobStore
	Writer   *lake.Writer
	Bus      *events.Bus

	repo   infraClaims.ClaimRepository
	sqlite *infraClaims.SQLiteClaimStore
	closer func() error
}

// NewApp loads configuration and wires the claim store, lake, bus and
// services for one command invocation.
func NewApp(ctx context.Context) (*App, error) {
	cfg, err := config.Load(ConfigPath)
	if err != nil {
		return nil, err
	}
	settings, err := config.LoadSettings(cfg.SettingsPath)
	if err != nil {
		return nil, err
	}
	logger := logging.New(cfg.LogFile, Verbose)

	app := &App{Config: cfg, Settings: settings, Logger: logger}

	if err := app.wireStorage(ctx, cfg); err != nil {
		return nil, err
	}
	if err := app.wireLake(ctx, cfg); err != nil {
		app.Close()
		return nil, err
	}

	options := func() domainClaims.PolicyOptions { return app.Settings.PolicyOptions() }
	app.Bus = events.New()
	app.Service = appClaims.NewService(app.repo, app.visitRepo(), app.Bus, options, logger)
	app.Runner = appClaims.NewRunner(app.repo, app.visitRepo(), app.Writer, app.Bus, options, logger)
	app.Trigger = pipeline.NewTrigger(app.repo, app.Runner, cfg.PipelineWait.Std(), logger)

	return app, nil
}

func (a *App) wireStorage(ctx context.Context, cfg *config.Config) error {
	switch cfg.Storage {
	case config.StorageMemory:
		a.repo = infraClaims.NewInMemoryClaimRepository()
	case config.StorageSQLite:
		store, err := infraClaims.NewSQLiteClaimStore(infraClaims.SQLiteStoreConfig{
			DatabasePath: cfg.DatabasePath,
		})
		if err != nil {
			return err
		}
		a.sqlite = store
		a.repo = store
		a.closer = store.Close
	case config.StoragePostgres:
		store, err := infraClaims.NewPostgresClaimStore(ctx, cfg.PostgresDSN)
		if err != nil {
			return err
		}
		a.repo = store
		a.closer = store.Close
	default:
		return fmt.Errorf("unknown storage backend: %s", cfg.Storage)
	}
	return nil
}

func (a *App) visitRepo() infraClaims.VisitRepository {
	if a.sqlite != nil {
		return a.sqlite.Visits()
	}
	return infraClaims.NewInMemoryVisitRepository()
}

func (a *App) wireLake(ctx context.Context, cfg *config.Config) error {
	switch cfg.Lake.Backend {
	case config.LakeMemory:
		a.Lake = lake.NewInMemoryBlobStore()
	case config.LakeFilesystem:
		store, err := lake.NewFilesystemBlobStore(cfg.Lake.Root)
		if err != nil {
			return err
		}
		a.Lake = store
	case config.LakeS3:
		store, err := lake.NewS3BlobStore(ctx, lake.S3Config{
			Bucket:    cfg.Lake.S3Bucket,
			KeyPrefix: cfg.Lake.S3Prefix,
			Region:    cfg.Lake.AWSRegion,
		})
		if err != nil {
			return err
		}
		a.Lake = store
	default:
		return fmt.Errorf("unknown lake backend: %s", cfg.Lake.Backend)
	}

	a.Writer = lake.NewWriter(a.Lake, a.Logger)
	return nil
}

// Close releases storage handles and flushes the logger.
func (a *App) Close() {
	if a.Bus != nil {
		a.Bus.Close()
	}
	if a.closer != nil {
		_ = a.closer()
	}
	if a.Logger != nil {
		_ = a.Logger.Sync()
	}
}
