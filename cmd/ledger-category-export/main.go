package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
	"github.com/lox/ledger-category-export/internal/aggregate"
	"github.com/lox/ledger-category-export/internal/commands"
	"github.com/lox/ledger-category-export/internal/export"
	"github.com/lox/ledger-category-export/internal/period"
	"github.com/lox/ledger-category-export/internal/types"
)

type CLI struct {
	commands.CommonConfig
	commands.SourceConfig
	commands.ParseConfig

	Start      string `help:"First month to report on (YYYY/MM)" required:""`
	End        string `help:"Last month to report on (YYYY/MM, defaults to the current month)"`
	OutputDir  string `help:"Directory to write CSV files to" default:"." env:"OUTPUT_DIR"`
	Stdout     bool   `help:"Write tables to stdout instead of files" default:"false"`
	NoFormat   bool   `help:"Write amounts as ledger prints them, without spreadsheet formatting" default:"false"`
	NoProgress bool   `help:"Disable progress bar" default:"false"`
}

func (c *CLI) Run() error {
	logger, err := commands.NewLogger(c.CommonConfig, os.Stderr)
	if err != nil {
		return err
	}

	start, err := period.Parse(c.Start)
	if err != nil {
		return fmt.Errorf("invalid start month: %w", err)
	}

	now := time.Now()
	var periods []types.Period
	if c.End == "" {
		periods, err = period.UntilNow(start, now)
	} else {
		end, parseErr := period.Parse(c.End)
		if parseErr != nil {
			return fmt.Errorf("invalid end month: %w", parseErr)
		}
		periods, err = period.Range(start, end)
	}
	if err != nil {
		return err
	}

	failure, err := c.ParseConfig.FailurePolicy()
	if err != nil {
		return err
	}

	config, err := c.ParseConfig.CollectorConfig(c.SourceConfig, !c.NoProgress)
	if err != nil {
		return err
	}

	coll, closeCache, err := commands.SetupCollector(c.CommonConfig, c.SourceConfig, c.ParseConfig, logger)
	if err != nil {
		return err
	}
	defer closeCache()

	// Create a context that can be cancelled
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Set up signal handling
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		logger.Info("Received signal, shutting down gracefully", "signal", sig)
		cancel()
	}()

	logger.Info("Collecting monthly reports", "source", c.Source, "months", len(periods), "from", periods[0], "to", periods[len(periods)-1])

	a, err := coll.Aggregate(ctx, periods, config, failure)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Info("Export cancelled by user")
			return nil
		}
		return err
	}

	formatters := aggregate.DefaultFormatters()
	if c.NoFormat {
		formatters = nil
	}

	tables, err := a.Tables(formatters)
	if err != nil {
		return err
	}

	if len(tables) == 0 {
		logger.Warn("No spending found in range", "from", periods[0], "to", periods[len(periods)-1])
		return nil
	}

	if c.Stdout {
		for idx, table := range tables {
			if idx > 0 {
				fmt.Println()
			}
			fmt.Printf("# %s\n", table.Name)
			if err := export.WriteCSV(os.Stdout, table); err != nil {
				return err
			}
		}
		return nil
	}

	paths, err := export.WriteAll(c.OutputDir, tables, logger)
	if err != nil {
		return err
	}

	for _, path := range paths {
		fmt.Println(path)
	}

	return nil
}

func main() {
	// Load .env for local use; a missing file is fine
	_ = godotenv.Load()

	// Parse CLI commands
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("ledger-category-export"),
		kong.Description("Export monthly spending per category from ledger as CSV"),
		kong.UsageOnError(),
	)

	// Run the selected command
	err := ctx.Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
