package internal

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/starford/ansuz/internal/index"
	"github.com/starford/ansuz/internal/lifecycle"
	"github.com/starford/ansuz/internal/links"
	"github.com/starford/ansuz/internal/storage"
	"github.com/starford/ansuz/internal/store"
	"github.com/starford/ansuz/internal/validate"
)

// App wires the archive components for one command invocation.
type App struct {
	Config    *Config
	Log       *slog.Logger
	Store     *store.Store
	Links     *links.Manager
	Engine    *lifecycle.Engine
	Validator *validate.Validator
}

// New assembles the application with the given options.
func New(opts ...Option) (*App, error) {
	app := &App{}
	for _, opt := range opts {
		opt(app)
	}
	if app.Config == nil {
		return nil, fmt.Errorf("config is required")
	}
	cfg := app.Config

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)
	app.Log = logger

	// Ensure archive directory exists.
	if err := os.MkdirAll(cfg.Archive.Path, 0o755); err != nil {
		return nil, fmt.Errorf("create archive dir: %w", err)
	}

	fs, err := storage.NewFS(cfg.Archive.Path)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	app.Store = store.New(fs)
	app.Links = links.NewManager(app.Store)
	app.Engine = lifecycle.New(app.Store, app.Links, index.NewWriter(fs, cfg.Archive.IndexFile), logger)
	app.Validator = validate.New(app.Store)

	logger.Info("archive opened",
		slog.String("path", cfg.Archive.Path),
		slog.String("index_file", cfg.Archive.IndexFile),
		slog.String("log_level", cfg.App.LogLevel.String()))
	return app, nil
}
