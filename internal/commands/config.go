package commands

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/lox/ledger-category-export/internal/aggregate"
	"github.com/lox/ledger-category-export/internal/collector"
	"github.com/lox/ledger-category-export/internal/db"
	"github.com/lox/ledger-category-export/internal/report"
)

// CommonConfig contains configuration common to all commands
type CommonConfig struct {
	// DataDir is the path to the data directory holding the report cache
	DataDir string `help:"Path to data directory" default:"./data" env:"DATA_DIR"`
	// LogLevel is the logging level to use
	LogLevel string `help:"Log level (debug, info, warn, error)" default:"warn" enum:"debug,info,warn,error" env:"LOG_LEVEL"`
}

// SourceConfig selects where monthly balance reports come from
type SourceConfig struct {
	Source        string `help:"Report source" default:"ledger" enum:"ledger,hledger,dir" env:"REPORT_SOURCE"`
	LedgerFile    string `help:"Journal file passed to ledger/hledger with -f" env:"LEDGER_FILE"`
	Binary        string `help:"Override the ledger/hledger executable path" env:"LEDGER_BINARY"`
	Account       string `help:"Root account to report on" default:"Expenses" env:"LEDGER_ACCOUNT"`
	Marker        string `help:"Label locating the category column (defaults to the account)"`
	ReportDir     string `help:"Directory of saved reports named YYYY-MM.txt (dir source)" env:"REPORT_DIR"`
	RetryAttempts uint   `help:"Attempts per report command" default:"3"`
}

// ParseConfig controls parsing and aggregation of monthly reports
type ParseConfig struct {
	Duplicates  string `help:"What to do with a category repeated in one currency and month" default:"error" enum:"error,sum,overwrite"`
	OnError     string `help:"What to do when a month cannot be parsed" default:"abort" enum:"abort,skip"`
	Concurrency int    `help:"Number of months to fetch concurrently" default:"1"`
	NoCache     bool   `help:"Do not read or write the report cache" default:"false"`
	Refresh     bool   `help:"Re-fetch closed months even when cached" default:"false"`
}

// NewLogger creates a logger writing to w at the configured level
func NewLogger(config CommonConfig, w io.Writer) (*log.Logger, error) {
	logger := log.New(w)
	level, err := log.ParseLevel(config.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}
	logger.SetLevel(level)
	return logger, nil
}

// MarkerOrAccount returns the label used to find the category column
func (c SourceConfig) MarkerOrAccount() string {
	if c.Marker != "" {
		return c.Marker
	}
	return c.Account
}

// Scope returns the cache key for reports produced from sourceConfig with these
// parse settings. Cached reports already have the duplicate policy applied, so
// the policy is part of the key.
func (c ParseConfig) Scope(sourceConfig SourceConfig) string {
	return db.ScopeID(
		sourceConfig.Source,
		sourceConfig.LedgerFile,
		sourceConfig.Binary,
		sourceConfig.Account,
		sourceConfig.MarkerOrAccount(),
		sourceConfig.ReportDir,
		"duplicates="+c.Duplicates,
	)
}

// Options returns the report parsing options
func (c ParseConfig) Options(sourceConfig SourceConfig) (report.Options, error) {
	policy, err := report.ParseDuplicatePolicy(c.Duplicates)
	if err != nil {
		return report.Options{}, err
	}
	return report.Options{
		Marker:     sourceConfig.MarkerOrAccount(),
		Duplicates: policy,
	}, nil
}

// FailurePolicy returns how failed months are treated
func (c ParseConfig) FailurePolicy() (aggregate.FailurePolicy, error) {
	return aggregate.ParseFailurePolicy(c.OnError)
}

// CollectorConfig returns the collector settings for a run
func (c ParseConfig) CollectorConfig(sourceConfig SourceConfig, progress bool) (collector.Config, error) {
	opts, err := c.Options(sourceConfig)
	if err != nil {
		return collector.Config{}, err
	}
	return collector.Config{
		Concurrency: c.Concurrency,
		Progress:    progress,
		Refresh:     c.Refresh,
		Options:     opts,
	}, nil
}
