package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"recdocs/internal/apiclient"
	"recdocs/internal/config"
	"recdocs/internal/database"
	"recdocs/internal/docs"
	"recdocs/internal/drive"
	"recdocs/internal/server"
	"recdocs/internal/staging"
	"recdocs/internal/vault"
)

// ErrRemoteBackend is returned by operations that need the local database
// while the app is configured against a remote server.
var ErrRemoteBackend = errors.New("not available with a remote backend")

// Options controls how the app talks to the terminal.
type Options struct {
	Out     io.Writer // notifications and compose links; defaults to os.Stdout
	Verbose bool      // also write log records to stderr
}

// RecDocsApp is the application layer between the CLI and the document
// workflow. It constructs all dependencies from config and opens one
// docs.Controller per owning record.
type RecDocsApp struct {
	cfg      *config.Config
	backend  docs.Backend
	db       *database.SQLiteDatabase
	vault    drive.Vault
	layout   docs.Layout
	policy   docs.UploadFailurePolicy
	logger   docs.Logger
	notifier docs.Notifier
	composer docs.Composer
	op       *Operation
	logFile  *os.File
}

// NewRecDocsApp creates a fully wired RecDocsApp from the given config.
// operation identifies the CLI command being run (e.g. "Attach", "Serve").
// The caller must call Close when done.
func NewRecDocsApp(ctx context.Context, cfg *config.Config, operation string, opts Options) (*RecDocsApp, error) {
	layout, err := docs.ParseLayout(cfg.Layout.Type, cfg.Layout.Categories)
	if err != nil {
		return nil, fmt.Errorf("reading layout: %w", err)
	}
	policy, err := docs.ParseUploadFailurePolicy(cfg.Workflow.UploadFailure)
	if err != nil {
		return nil, fmt.Errorf("reading workflow: %w", err)
	}

	out := opts.Out
	if out == nil {
		out = os.Stdout
	}

	op := NewOperation(operation, time.Now())
	l, logFile, err := newLogger(cfg.LogDir, op.ID, opts.Verbose)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	logger := &slogAdapter{l: l}

	a := &RecDocsApp{
		cfg:      cfg,
		layout:   layout,
		policy:   policy,
		logger:   logger,
		notifier: consoleNotifier{w: out},
		composer: mailtoComposer{w: out, recipient: cfg.Workflow.RequestRecipient},
		op:       op,
		logFile:  logFile,
	}

	switch cfg.Backend.Type {
	case "local", "":
		if err := a.openLocalBackend(ctx); err != nil {
			logFile.Close()
			return nil, err
		}
	case "remote":
		if cfg.Backend.URL == "" {
			logFile.Close()
			return nil, fmt.Errorf("remote backend requires url to be set")
		}
		timeout, err := cfg.Backend.RequestTimeout()
		if err != nil {
			logFile.Close()
			return nil, err
		}
		a.backend = apiclient.New(cfg.Backend.URL, timeout)
	default:
		logFile.Close()
		return nil, fmt.Errorf("unknown backend type: %s", cfg.Backend.Type)
	}

	logger.Debug("operation started", "operation", op.Name, "backend", cfg.Backend.Type)
	return a, nil
}

func (a *RecDocsApp) openLocalBackend(ctx context.Context) error {
	v, err := vault.NewVaultFromConfig(ctx, a.cfg.Vault)
	if err != nil {
		return fmt.Errorf("creating vault: %w", err)
	}

	db, err := database.NewDatabaseFromConfig(a.cfg.Database)
	if err != nil {
		return fmt.Errorf("creating database: %w", err)
	}
	if err := db.CheckMigrations(); err != nil {
		db.Close()
		return fmt.Errorf("database schema out of date: %w", err)
	}

	a.vault = v
	a.db = db
	a.backend = drive.NewService(db, v, a.layout, a.logger, drive.RealClock{}, drive.UUIDGenerator{})
	return nil
}

// Open creates the controller for owner and activates it. When activation
// fails the controller is still returned so the caller can offer folder creation.
func (a *RecDocsApp) Open(ctx context.Context, owner docs.OwnerRef) (*docs.Controller, error) {
	a.op.Owner = owner

	sa, err := staging.NewStagingAreaFromConfig(a.cfg.Staging, owner)
	if err != nil {
		return nil, fmt.Errorf("creating staging area: %w", err)
	}

	c := docs.NewController(owner, a.backend, sa,
		docs.WithLogger(a.logger),
		docs.WithNotifier(a.notifier),
		docs.WithComposer(a.composer),
		docs.WithLayout(a.layout),
		docs.WithUploadFailurePolicy(a.policy),
	)
	if err := c.Activate(ctx); err != nil {
		return c, err
	}
	return c, nil
}

// Layout returns the configured folder layout.
func (a *RecDocsApp) Layout() docs.Layout {
	return a.layout
}

// Logger returns the operation logger.
func (a *RecDocsApp) Logger() docs.Logger {
	return a.logger
}

// ValidateSetup checks that the backend storage is reachable.
func (a *RecDocsApp) ValidateSetup(ctx context.Context) error {
	v, ok := a.backend.(server.SetupValidator)
	if !ok {
		return nil
	}
	return v.ValidateSetup(ctx)
}

// ListenAddr returns the configured server address.
func (a *RecDocsApp) ListenAddr() string {
	return a.cfg.Server.ListenAddr
}

// NewServer exposes the local backend over HTTP.
func (a *RecDocsApp) NewServer() (*server.Server, error) {
	if a.db == nil {
		return nil, fmt.Errorf("serving: %w", ErrRemoteBackend)
	}
	return server.New(a.backend, a.logger, server.Options{
		AllowedOrigins:  a.cfg.Server.AllowedOrigins,
		MaxRequestBytes: a.cfg.Server.RequestLimit(),
	}), nil
}

// BackupDatabase writes a consistent snapshot of the local database to destPath.
func (a *RecDocsApp) BackupDatabase(destPath string) error {
	if a.db == nil {
		return fmt.Errorf("backing up database: %w", ErrRemoteBackend)
	}
	if err := a.db.BackupTo(destPath); err != nil {
		return fmt.Errorf("backing up database: %w", err)
	}
	a.logger.Info("database backed up", "path", destPath)
	return nil
}

// Fail marks the running operation as failed.
func (a *RecDocsApp) Fail(err error) {
	a.op.Fail()
	a.logger.Error("operation failed", "operation", a.op.Name, "error", err)
}

// Close records the end of the operation and releases all resources.
func (a *RecDocsApp) Close() error {
	var firstErr error

	a.logger.Info("operation finished",
		"operation", a.op.Name,
		"owner", a.op.Owner.String(),
		"status", a.op.Status,
		"duration", time.Since(a.op.StartedAt).Truncate(time.Millisecond).String(),
	)

	if a.db != nil {
		if err := a.db.Close(); err != nil {
			firstErr = fmt.Errorf("closing database: %w", err)
		}
	}
	if a.logFile != nil {
		if err := a.logFile.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("closing log file: %w", err)
		}
	}
	return firstErr
}
