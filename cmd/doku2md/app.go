package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/nao1215/doku2md/internal/config"
	"github.com/nao1215/doku2md/internal/database"
	"github.com/nao1215/doku2md/internal/layout"
	"github.com/nao1215/doku2md/internal/log"
	"github.com/nao1215/doku2md/internal/model"
	"github.com/nao1215/doku2md/internal/registry"
)

// app holds what the migration commands share: the resolved configuration,
// the logger and the filesystem the trees are written to.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
	fs     afero.Fs
	mapper *layout.Mapper
	wiki   model.Wiki
}

// newApp builds the configuration for cmd and sets up logging.
func newApp(cmd *cobra.Command) (*app, error) {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration error: %w", err)
	}

	logger := log.NewLogger(cmd.ErrOrStderr(), log.Options{
		Verbose: cfg.Verbose,
		JSON:    cfg.LogJSON,
		NoColor: cfg.NoColor,
		Secrets: []string{cfg.Cookie},
	})
	slog.SetDefault(logger)

	return &app{
		cfg:    cfg,
		logger: logger,
		fs:     afero.NewOsFs(),
		mapper: layout.NewMapper(cfg),
		wiki:   model.NewWiki(cfg.WikiURL),
	}, nil
}

// buildConfig layers defaults, the .env file, the configuration file, the
// environment and the command line flags, in that order.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()

	envFile, err := flagString(cmd, "env-file")
	if err != nil {
		return nil, err
	}
	if envFile != "" {
		if err := config.LoadEnvFile(envFile); err != nil {
			return nil, err
		}
	}

	cfg.ConfigFilePath, err = flagString(cmd, "config")
	if err != nil {
		return nil, err
	}

	// An explicit path must exist; otherwise the search is best effort.
	configPath := config.FindConfigFile(cfg.ConfigFilePath)
	switch {
	case configPath != "":
		file, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		file.Apply(cfg)
	case cfg.ConfigFilePath != "":
		return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, cfg.ConfigFilePath)
	}

	if err := config.ApplyEnv(cfg); err != nil {
		return nil, err
	}

	overrides := []struct {
		flag string
		dst  *string
	}{
		{"wiki-url", &cfg.WikiURL},
		{"resources", &cfg.ResourcesDir},
		{"docs", &cfg.DocsDir},
		{"db-dir", &cfg.DBDir},
	}
	for _, o := range overrides {
		v, err := flagString(cmd, o.flag)
		if err != nil {
			return nil, err
		}
		if v != "" {
			*o.dst = v
		}
	}

	if f := cmd.Flags().Lookup("concurrency"); f != nil && f.Changed {
		cfg.Concurrency, err = cmd.Flags().GetInt("concurrency")
		if err != nil {
			return nil, err
		}
	}

	if cfg.Verbose, err = flagBool(cmd, "verbose"); err != nil {
		return nil, err
	}
	if cfg.LogJSON, err = flagBool(cmd, "log-json"); err != nil {
		return nil, err
	}
	if cfg.NoColor, err = flagBool(cmd, "no-color"); err != nil {
		return nil, err
	}
	return cfg, nil
}

// flagString reads a flag of cmd or of the root's persistent flags.
func flagString(cmd *cobra.Command, name string) (string, error) {
	if f := cmd.Flags().Lookup(name); f != nil {
		return cmd.Flags().GetString(name)
	}
	if f := cmd.Root().PersistentFlags().Lookup(name); f != nil {
		return cmd.Root().PersistentFlags().GetString(name)
	}
	return "", nil
}

// flagBool reads a flag of cmd or of the root's persistent flags.
func flagBool(cmd *cobra.Command, name string) (bool, error) {
	if f := cmd.Flags().Lookup(name); f != nil {
		return cmd.Flags().GetBool(name)
	}
	if f := cmd.Root().PersistentFlags().Lookup(name); f != nil {
		return cmd.Root().PersistentFlags().GetBool(name)
	}
	return false, nil
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func (a *app) signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		defer signal.Stop(sigCh)
		select {
		case <-sigCh:
			a.logger.Info("received shutdown signal, cancelling...")
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}

// registry returns the page registry of the configured resources directory.
func (a *app) registry() *registry.Registry {
	return registry.New(a.fs, a.cfg.RegistryPath(), model.NewDenylist(a.cfg.Denylist...))
}

// openLedger opens the migration ledger. With create false a missing
// ledger is reported instead of created.
func (a *app) openLedger(create bool) (*database.Ledger, error) {
	opts := database.DefaultOptions()
	opts.CreateIfNotExists = create

	ledger, err := database.Open(a.cfg.DBDir, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger in %s: %w", a.cfg.DBDir, err)
	}
	return ledger, nil
}

// finishRun records the outcome of run, keeping runErr as the primary error.
func (a *app) finishRun(ledger *database.Ledger, run *database.Run, runErr error) error {
	// The run context may already be cancelled; the ledger row is still written.
	if err := ledger.FinishRun(context.Background(), run); err != nil {
		return errors.Join(runErr, fmt.Errorf("failed to finish run %s: %w", run.ID, err))
	}
	return runErr
}
