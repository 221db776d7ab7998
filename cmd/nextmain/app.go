// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/nextmain/nextmain/internal/config"
	"github.com/nextmain/nextmain/pkg/manifest"
	"github.com/nextmain/nextmain/pkg/module"
	"github.com/nextmain/nextmain/pkg/resolver"
	"github.com/nextmain/nextmain/pkg/types"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"
)

type (
	// App wires CLI services and shared dependencies. It is the composition
	// root for the CLI layer; every Cobra handler receives an App reference.
	App struct {
		Config ConfigProvider
		Fs     afero.Fs
		stdout io.Writer
		stderr io.Writer
	}

	// Dependencies defines the injection points for building an App. Nil
	// fields are replaced with production defaults by NewApp.
	Dependencies struct {
		Config ConfigProvider
		Fs     afero.Fs
		Stdout io.Writer
		Stderr io.Writer
	}

	// ConfigProvider loads configuration using explicit options.
	ConfigProvider interface {
		Load(ctx context.Context, opts config.LoadOptions) (*config.Config, error)
		Locate(opts config.LoadOptions) (string, error)
	}

	// rootFlagValues holds the persistent flags shared by all subcommands.
	rootFlagValues struct {
		verbose    bool
		configPath string
	}

	// session is the per-invocation state of a resolving command: one
	// resolver over the configured roots and the settings it was built from.
	session struct {
		cfg      *config.Config
		logger   *log.Logger
		resolver *resolver.Resolver
	}
)

// NewApp creates an App with defaults for omitted dependencies.
func NewApp(deps Dependencies) *App {
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}
	if deps.Config == nil {
		deps.Config = config.NewProvider()
	}
	if deps.Fs == nil {
		deps.Fs = afero.NewOsFs()
	}

	return &App{
		Config: deps.Config,
		Fs:     deps.Fs,
		stdout: deps.Stdout,
		stderr: deps.Stderr,
	}
}

// loadConfig loads configuration for a command. An explicit --config path
// must load; otherwise a broken or unreachable config file is reported as a
// warning and defaults are used so resolution stays available.
func (a *App) loadConfig(ctx context.Context, flags *rootFlagValues) (*config.Config, error) {
	opts := config.LoadOptions{ConfigFilePath: types.FilesystemPath(flags.configPath)}
	cfg, err := a.Config.Load(ctx, opts)
	if err == nil {
		return cfg, nil
	}
	if flags.configPath != "" {
		return nil, err
	}
	if errors.Is(err, context.Canceled) {
		return nil, err
	}

	fmt.Fprintln(a.stderr, WarningStyle.Render("Warning: ")+formatErrorForDisplay(err, flags.verbose))
	return config.DefaultConfig(), nil
}

// newLogger returns the logger handed to the resolver. Verbose output comes
// from the flag or from ui.verbose.
func (a *App) newLogger(cfg *config.Config, flags *rootFlagValues) *log.Logger {
	logger := log.NewWithOptions(a.stderr, log.Options{Prefix: "nextmain"})
	if flags.verbose || cfg.UI.Verbose {
		logger.SetLevel(log.DebugLevel)
	}
	return logger
}

// newSession loads configuration and builds a resolver over roots, or over
// the configured roots when roots is empty.
func (a *App) newSession(ctx context.Context, flags *rootFlagValues, roots []string) (*session, error) {
	cfg, err := a.loadConfig(ctx, flags)
	if err != nil {
		return nil, err
	}
	if len(roots) == 0 {
		roots = cfg.RootStrings()
	}

	logger := a.newLogger(cfg, flags)
	r, err := resolver.New(roots,
		resolver.WithLogger(logger),
		resolver.WithFileSystem(a.Fs),
		resolver.WithExtensions(cfg.ExtensionStrings()),
	)
	if err != nil {
		return nil, err
	}

	return &session{cfg: cfg, logger: logger, resolver: r}, nil
}

// newContainer returns an empty container whose manifest cache is sized
// from configuration.
func (s *session) newContainer() (*module.Container, error) {
	cache, err := manifest.NewLRUCache(s.cfg.ManifestCacheSize)
	if err != nil {
		return nil, err
	}
	return module.NewContainer(module.WithManifestCache(cache)), nil
}
