package commands

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/lox/ledger-category-export/internal/collector"
	"github.com/lox/ledger-category-export/internal/db"
	"github.com/lox/ledger-category-export/internal/source"
)

// SetupSource builds the configured report source
func SetupSource(config SourceConfig, logger *log.Logger) (source.Source, error) {
	commandConfig := source.NewCommandConfig().
		WithBinary(config.Binary).
		WithFile(config.LedgerFile).
		WithAccount(config.Account).
		WithRetryAttempts(config.RetryAttempts).
		WithLogger(logger)

	registry := source.NewRegistry()

	switch config.Source {
	case "ledger":
		s, err := source.NewLedgerSource(commandConfig)
		if err != nil {
			return nil, fmt.Errorf("failed to create ledger source: %w", err)
		}
		registry.Register(s)

	case "hledger":
		s, err := source.NewHLedgerSource(commandConfig)
		if err != nil {
			return nil, fmt.Errorf("failed to create hledger source: %w", err)
		}
		registry.Register(s)

	case "dir":
		if config.ReportDir == "" {
			return nil, fmt.Errorf("report directory is required when using the dir source")
		}
		s, err := source.NewDirSource(config.ReportDir, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create dir source: %w", err)
		}
		registry.Register(s)
	}

	s, ok := registry.Get(config.Source)
	if !ok {
		return nil, fmt.Errorf("unknown report source: %s", config.Source)
	}

	logger.Debug("Using report source", "source", s.Name(), "file", config.LedgerFile, "account", config.Account)
	return s, nil
}

// SetupCollector wires the source and, unless disabled, the SQLite report cache.
// The returned close function releases the cache and is always safe to call.
func SetupCollector(common CommonConfig, sourceConfig SourceConfig, parse ParseConfig, logger *log.Logger) (*collector.Collector, func(), error) {
	src, err := SetupSource(sourceConfig, logger)
	if err != nil {
		return nil, func() {}, err
	}

	if parse.NoCache {
		return collector.New(src, nil, parse.Scope(sourceConfig), logger), func() {}, nil
	}

	cache, err := db.New(common.DataDir, logger)
	if err != nil {
		return nil, func() {}, fmt.Errorf("failed to open report cache: %w", err)
	}

	closeCache := func() {
		if err := cache.Close(); err != nil {
			logger.Warn("Failed to close report cache", "error", err)
		}
	}

	return collector.New(src, cache, parse.Scope(sourceConfig), logger), closeCache, nil
}
