package commands

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/cleared-dev/propledger/internal/accounts"
	"github.com/cleared-dev/propledger/internal/config"
	"github.com/cleared-dev/propledger/internal/journal"
	"github.com/cleared-dev/propledger/internal/logging"
	"github.com/cleared-dev/propledger/internal/metrics"
	"github.com/cleared-dev/propledger/internal/report"
	"github.com/cleared-dev/propledger/internal/store"
)

const serviceName = "propledger"

// app is the wired ledger used by every command.
type app struct {
	cfg      *config.Config
	log      *zap.Logger
	store    *store.Store
	metrics  *metrics.Metrics
	accounts *accounts.Service
	journal  *journal.Service
	reports  *report.Service
}

// loadConfig reads the dotenv file, the config file (defaults when it
// does not exist) and PROPLEDGER_* overrides, then validates the result.
// A relative database path is resolved against the config file's
// directory.
func loadConfig(opts *globalOptions) (*config.Config, error) {
	if err := config.LoadDotEnv(opts.envFile); err != nil {
		return nil, err
	}

	cfg, err := config.Load(opts.configPath)
	if errors.Is(err, fs.ErrNotExist) {
		cfg, err = config.Default(), nil
	}
	if err != nil {
		return nil, err
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, fmt.Errorf("applying environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if !filepath.IsAbs(cfg.Database.Path) {
		cfg.Database.Path = filepath.Join(filepath.Dir(opts.configPath), cfg.Database.Path)
	}
	return cfg, nil
}

// openApp loads the config and wires logger, store and services.
func openApp(opts *globalOptions) (*app, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}
	return newApp(cfg)
}

func newApp(cfg *config.Config) (*app, error) {
	log, err := logging.New(serviceName, cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		return nil, err
	}

	st, err := store.Open(cfg.Database.Path, store.Options{BusyTimeout: cfg.Database.BusyTimeout})
	if err != nil {
		_ = log.Sync()
		return nil, fmt.Errorf("opening ledger %s: %w", cfg.Database.Path, err)
	}

	m := metrics.New()
	registry := accounts.NewService(st, log)
	jnl := journal.NewService(st, journal.Options{
		Logger:               log,
		Metrics:              m,
		EnforceUnitOwnership: cfg.Ledger.EnforceUnitOwnership,
	})

	return &app{
		cfg:      cfg,
		log:      log,
		store:    st,
		metrics:  m,
		accounts: registry,
		journal:  jnl,
		reports:  report.NewService(jnl, registry, log),
	}, nil
}

func (a *app) Close() error {
	_ = a.log.Sync()
	return a.store.Close()
}
