package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"
	"github.com/lox/ledger-category-export/internal/ledger"
	"github.com/lox/ledger-category-export/internal/period"
	"github.com/lox/ledger-category-export/internal/report"
)

type CLI struct {
	File       string `arg:"" help:"Saved balance report to parse"`
	Marker     string `help:"Label locating the category column" default:"Expenses"`
	Month      string `help:"Build a report for this month (YYYY/MM) and print amounts per currency instead of raw entries"`
	Duplicates string `help:"What to do with a category repeated in one currency" default:"error" enum:"error,sum,overwrite"`
	Verbose    bool   `short:"v" help:"Enable verbose output"`
}

type currencyAmounts struct {
	Currency string            `json:"currency"`
	Amounts  map[string]string `json:"amounts"`
}

func main() {
	var cli CLI
	kong.Parse(&cli,
		kong.Name("ledger-report-parser"),
		kong.Description("Parse a saved ledger balance report and print it as JSON"),
	)

	// Create logger
	logger := log.New(os.Stderr)
	if cli.Verbose {
		logger.SetLevel(log.DebugLevel)
	}

	if cli.Month == "" {
		entries, err := ledger.ParseFile(cli.File, cli.Marker)
		if err != nil {
			logger.Fatal("Error parsing report", "file", cli.File, "error", err)
		}
		logger.Debug("Parsed report", "entries", len(entries))
		printJSON(logger, entries)
		return
	}

	p, err := period.Parse(cli.Month)
	if err != nil {
		logger.Fatal("Invalid month", "month", cli.Month, "error", err)
	}

	policy, err := report.ParseDuplicatePolicy(cli.Duplicates)
	if err != nil {
		logger.Fatal("Invalid duplicate policy", "error", err)
	}

	output, err := os.ReadFile(cli.File)
	if err != nil {
		logger.Fatal("Error reading report", "file", cli.File, "error", err)
	}

	r, err := report.Parse(p, output, report.Options{Marker: cli.Marker, Duplicates: policy})
	if err != nil {
		logger.Fatal("Error parsing report", "file", cli.File, "error", err)
	}

	var result []currencyAmounts
	for _, c := range r.Currencies() {
		result = append(result, currencyAmounts{Currency: c.String(), Amounts: r.DataFor(c)})
	}

	logger.Debug("Built monthly report", "period", p, "currencies", len(result), "amounts", r.Len())
	printJSON(logger, result)
}

func printJSON(logger *log.Logger, v any) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		logger.Fatal("Error marshaling output", "error", err)
	}
	fmt.Println(string(b))
}
