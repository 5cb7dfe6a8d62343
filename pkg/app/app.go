// Package app assembles the registry, completion and hover components from a
// loaded configuration. Every tmls command builds its services through here.
package app

import (
	"context"
	"io"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/spf13/pflag"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/tmls/pkg/completion"
	"github.com/walteh/tmls/pkg/config"
	"github.com/walteh/tmls/pkg/debug"
	"github.com/walteh/tmls/pkg/hover"
	"github.com/walteh/tmls/pkg/registry"
	"github.com/walteh/tmls/pkg/registry/remote"
)

type App struct {
	Config      *config.Config
	Registry    *registry.Registry
	Service     *registry.Fallback
	Fetcher     registry.Fetcher
	Completions *completion.Provider
	Hovers      *hover.Resolver
}

// New builds the registry described by cfg and the providers on top of it.
func New(ctx context.Context, fs afero.Fs, cfg *config.Config) (*App, error) {
	logger := zerolog.Ctx(ctx)

	reg, err := loadRegistry(fs, cfg)
	if err != nil {
		return nil, err
	}

	var fetcher registry.Fetcher
	if cfg.Docs.Remote {
		fetcher = registry.NewMemo(remote.NewFetcher(cfg.MirrorURLs(), cfg.Docs.Timeout))
	}

	svc := registry.NewFallback(reg, fetcher)

	logger.Debug().
		Str("registry", cfg.Registry).
		Bool("remote", fetcher != nil).
		Int("components", len(reg.Descriptors())).
		Msg("registry ready")

	builder := completion.NewBuilder(svc, reg, completion.WithExcludeUsed(cfg.Completion.ExcludeUsed))

	return &App{
		Config:      cfg,
		Registry:    reg,
		Service:     svc,
		Fetcher:     fetcher,
		Completions: completion.NewProvider(builder),
		Hovers:      hover.NewResolver(svc),
	}, nil
}

func loadRegistry(fs afero.Fs, cfg *config.Config) (*registry.Registry, error) {
	opts := []registry.Option{registry.WithDocsBaseURL(cfg.Docs.BaseURL)}

	if cfg.Registry == "" {
		reg, err := registry.New(opts...)
		if err != nil {
			return nil, errors.Errorf("loading built-in registry: %w", err)
		}
		return reg, nil
	}

	reg, err := registry.LoadFile(fs, cfg.Registry, opts...)
	if err != nil {
		return nil, errors.Errorf("loading registry override: %w", err)
	}
	return reg, nil
}

// Logger returns ctx carrying a console logger at the configured level.
func Logger(ctx context.Context, w io.Writer, cfg *config.Config, colorize bool) (context.Context, error) {
	level, err := debug.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	logger := debug.NewConsoleLogger(w, level, colorize)
	return logger.WithContext(ctx), nil
}

// Load reads configuration for a command, installs the console logger on ctx
// and builds the app.
func Load(ctx context.Context, fs afero.Fs, dir string, flags *pflag.FlagSet, logs io.Writer, colorize bool) (context.Context, *App, error) {
	cfg, err := config.Load(fs, dir, flags)
	if err != nil {
		return nil, nil, errors.Errorf("loading config: %w", err)
	}

	ctx, err = Logger(ctx, logs, cfg, colorize)
	if err != nil {
		return nil, nil, err
	}

	if cfg.File != "" {
		zerolog.Ctx(ctx).Debug().Str("file", cfg.File).Msg("using config file")
	}

	a, err := New(ctx, fs, cfg)
	if err != nil {
		return nil, nil, err
	}
	return ctx, a, nil
}
