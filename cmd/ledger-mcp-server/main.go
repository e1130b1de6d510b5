package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
	"github.com/lox/ledger-category-export/internal/commands"
	"github.com/lox/ledger-category-export/internal/mcp"
)

type CLI struct {
	commands.CommonConfig
	commands.SourceConfig
	commands.ParseConfig
}

func (c *CLI) Run() error {
	// stdout carries the MCP protocol, so logs go to stderr
	logger, err := commands.NewLogger(c.CommonConfig, os.Stderr)
	if err != nil {
		return err
	}

	failure, err := c.ParseConfig.FailurePolicy()
	if err != nil {
		return err
	}

	config, err := c.ParseConfig.CollectorConfig(c.SourceConfig, false)
	if err != nil {
		return err
	}

	coll, closeCache, err := commands.SetupCollector(c.CommonConfig, c.SourceConfig, c.ParseConfig, logger)
	if err != nil {
		return err
	}
	defer closeCache()

	logger.Info("Starting MCP server", "source", c.Source)
	return mcp.New(coll, config, failure, logger).Run()
}

func main() {
	_ = godotenv.Load()

	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("ledger-mcp-server"),
		kong.Description("MCP server exposing monthly ledger spending per category"),
		kong.UsageOnError(),
	)

	if err := ctx.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
