package commands

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/lox/ledger-category-export/internal/aggregate"
	"github.com/lox/ledger-category-export/internal/db"
	"github.com/lox/ledger-category-export/internal/report"
	"github.com/lox/ledger-category-export/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger(CommonConfig{LogLevel: "error"}, &buf)
	require.NoError(t, err)
	assert.Equal(t, log.ErrorLevel, logger.GetLevel())

	_, err = NewLogger(CommonConfig{LogLevel: "loud"}, &buf)
	assert.Error(t, err)
}

func TestParseConfigOptions(t *testing.T) {
	parse := ParseConfig{Duplicates: "sum", OnError: "skip", Concurrency: 4}

	opts, err := parse.Options(SourceConfig{Account: "Expenses"})
	require.NoError(t, err)
	assert.Equal(t, report.Options{Marker: "Expenses", Duplicates: report.DuplicateSum}, opts)

	opts, err = parse.Options(SourceConfig{Account: "Expenses", Marker: "Exp"})
	require.NoError(t, err)
	assert.Equal(t, "Exp", opts.Marker)

	policy, err := parse.FailurePolicy()
	require.NoError(t, err)
	assert.Equal(t, aggregate.FailSkip, policy)

	cfg, err := parse.CollectorConfig(SourceConfig{Account: "Expenses"}, true)
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Concurrency)
	assert.True(t, cfg.Progress)

	_, err = ParseConfig{Duplicates: "list"}.Options(SourceConfig{})
	assert.Error(t, err)
}

func TestScopeDependsOnSourceSettings(t *testing.T) {
	parse := ParseConfig{Duplicates: "error"}
	a := SourceConfig{Source: "ledger", LedgerFile: "a.ledger", Account: "Expenses"}
	b := a
	b.LedgerFile = "b.ledger"

	assert.Equal(t, parse.Scope(a), parse.Scope(a))
	assert.NotEqual(t, parse.Scope(a), parse.Scope(b))
}

func TestScopeDependsOnDuplicatePolicy(t *testing.T) {
	sourceConfig := SourceConfig{Source: "ledger", Account: "Expenses"}

	scopes := map[string]bool{}
	for _, policy := range []string{"error", "sum", "overwrite"} {
		scopes[ParseConfig{Duplicates: policy}.Scope(sourceConfig)] = true
	}
	assert.Len(t, scopes, 3)

	// settings that don't shape the stored report share the cache
	assert.Equal(t,
		ParseConfig{Duplicates: "sum", Concurrency: 1}.Scope(sourceConfig),
		ParseConfig{Duplicates: "sum", Concurrency: 8, Refresh: true}.Scope(sourceConfig),
	)
}

func TestCachedMonthsRespectDuplicatePolicy(t *testing.T) {
	logger := log.New(io.Discard)
	dataDir := t.TempDir()
	reportDir := t.TempDir()

	output := "            $1.00  Expenses:Food\n            $2.00  Expenses:Food\n"
	require.NoError(t, os.WriteFile(filepath.Join(reportDir, "2019-01.txt"), []byte(output), 0o644))

	sourceConfig := SourceConfig{Source: "dir", ReportDir: reportDir, Account: "Expenses"}
	periods := []types.Period{{Year: 2019, Month: 1}}
	now := func() time.Time { return time.Date(2019, time.March, 1, 0, 0, 0, 0, time.UTC) }

	run := func(policy string) (*aggregate.Aggregator, error) {
		parse := ParseConfig{Duplicates: policy, OnError: "abort", Concurrency: 1}

		config, err := parse.CollectorConfig(sourceConfig, false)
		require.NoError(t, err)
		failure, err := parse.FailurePolicy()
		require.NoError(t, err)

		c, closeCache, err := SetupCollector(CommonConfig{DataDir: dataDir}, sourceConfig, parse, logger)
		require.NoError(t, err)
		defer closeCache()

		return c.WithClock(now).Aggregate(context.Background(), periods, config, failure)
	}

	tests := []struct {
		policy   string
		expected string
	}{
		{policy: "sum", expected: "$3.00"},
		{policy: "overwrite", expected: "$2.00"},
		{policy: "error"},
		{policy: "sum", expected: "$3.00"},
	}

	for _, tt := range tests {
		a, err := run(tt.policy)
		if tt.expected == "" {
			require.Error(t, err, "policy %s", tt.policy)
			assert.ErrorIs(t, err, report.ErrDuplicateEntry)
			continue
		}

		require.NoError(t, err, "policy %s", tt.policy)
		rows, err := a.Rows(types.CurrencyUSD, nil)
		require.NoError(t, err)
		assert.Equal(t, [][]string{{"Expenses:Food", tt.expected}}, rows, "policy %s", tt.policy)
	}

	database, err := db.New(dataDir, logger)
	require.NoError(t, err)
	defer database.Close()

	count, err := database.Count()
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestSetupSource(t *testing.T) {
	logger := log.New(io.Discard)

	s, err := SetupSource(SourceConfig{Source: "ledger", Account: "Expenses", RetryAttempts: 1}, logger)
	require.NoError(t, err)
	assert.Equal(t, "ledger", s.Name())

	s, err = SetupSource(SourceConfig{Source: "hledger", Account: "Expenses", RetryAttempts: 1}, logger)
	require.NoError(t, err)
	assert.Equal(t, "hledger", s.Name())

	_, err = SetupSource(SourceConfig{Source: "dir"}, logger)
	assert.Error(t, err)

	s, err = SetupSource(SourceConfig{Source: "dir", ReportDir: t.TempDir()}, logger)
	require.NoError(t, err)
	assert.Equal(t, "dir", s.Name())

	_, err = SetupSource(SourceConfig{Source: "beancount", Account: "Expenses", RetryAttempts: 1}, logger)
	assert.Error(t, err)
}

func TestSetupCollector(t *testing.T) {
	logger := log.New(io.Discard)
	dataDir := filepath.Join(t.TempDir(), "data")
	sourceConfig := SourceConfig{Source: "dir", ReportDir: t.TempDir()}

	c, closeCache, err := SetupCollector(CommonConfig{DataDir: dataDir}, sourceConfig, ParseConfig{}, logger)
	require.NoError(t, err)
	require.NotNil(t, c)
	closeCache()

	_, err = os.Stat(filepath.Join(dataDir, "reports.db"))
	assert.NoError(t, err)

	c, closeCache, err = SetupCollector(CommonConfig{DataDir: dataDir}, sourceConfig, ParseConfig{NoCache: true}, logger)
	require.NoError(t, err)
	require.NotNil(t, c)
	closeCache()
}
