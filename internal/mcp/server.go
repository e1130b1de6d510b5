package mcp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/lox/ledger-category-export/internal/aggregate"
	"github.com/lox/ledger-category-export/internal/collector"
	"github.com/lox/ledger-category-export/internal/export"
	"github.com/lox/ledger-category-export/internal/period"
	"github.com/lox/ledger-category-export/internal/types"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

type Server struct {
	collector *collector.Collector
	config    collector.Config
	failure   aggregate.FailurePolicy
	logger    *log.Logger
	now       func() time.Time
}

func New(c *collector.Collector, config collector.Config, failure aggregate.FailurePolicy, logger *log.Logger) *Server {
	// progress bars would corrupt the stdio transport
	config.Progress = false
	return &Server{
		collector: c,
		config:    config,
		failure:   failure,
		logger:    logger,
		now:       time.Now,
	}
}

// MCPServer builds the MCP server with all tools registered
func (s *Server) MCPServer() *server.MCPServer {
	mcpServer := server.NewMCPServer(
		"Ledger Category Export",
		"1.0.0",
	)

	mcpServer.AddTool(mcp.NewTool("category_table",
		mcp.WithDescription("Monthly spending per category as CSV, one table per currency"),
		mcp.WithString("start",
			mcp.Required(),
			mcp.Description("First month, as YYYY/MM"),
		),
		mcp.WithString("end",
			mcp.Description("Last month, as YYYY/MM (default: current month)"),
		),
		mcp.WithString("currency",
			mcp.Description("Only return this currency (USD or EUR)"),
		),
		mcp.WithBoolean("spreadsheet",
			mcp.Description("Render amounts for spreadsheets, e.g. €12.00 instead of 12.00 EUR"),
		),
	), s.categoryTableHandler)

	mcpServer.AddTool(mcp.NewTool("list_categories",
		mcp.WithDescription("List the categories with spending in a date range, per currency"),
		mcp.WithString("start",
			mcp.Required(),
			mcp.Description("First month, as YYYY/MM"),
		),
		mcp.WithString("end",
			mcp.Description("Last month, as YYYY/MM (default: current month)"),
		),
	), s.listCategoriesHandler)

	return mcpServer
}

func (s *Server) Run() error {
	// Start the stdio server
	if err := server.ServeStdio(s.MCPServer()); err != nil {
		return err
	}

	return nil
}

func (s *Server) periodsFromRequest(request mcp.CallToolRequest) ([]types.Period, error) {
	startStr, ok := request.Params.Arguments["start"].(string)
	if !ok {
		return nil, errors.New("start must be a string")
	}
	start, err := period.Parse(startStr)
	if err != nil {
		return nil, err
	}

	end := types.NewPeriod(s.now())
	if endVal, ok := request.Params.Arguments["end"]; ok {
		endStr, ok := endVal.(string)
		if !ok {
			return nil, errors.New("end must be a string")
		}
		if endStr != "" {
			end, err = period.Parse(endStr)
			if err != nil {
				return nil, err
			}
		}
	}

	return period.Range(start, end)
}

func (s *Server) aggregate(ctx context.Context, request mcp.CallToolRequest) (*aggregate.Aggregator, error) {
	periods, err := s.periodsFromRequest(request)
	if err != nil {
		return nil, err
	}
	return s.collector.Aggregate(ctx, periods, s.config, s.failure)
}

func (s *Server) categoryTableHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	a, err := s.aggregate(ctx, request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	currencies := a.Currencies()
	if currencyVal, ok := request.Params.Arguments["currency"]; ok {
		name, ok := currencyVal.(string)
		if !ok {
			return nil, errors.New("currency must be a string")
		}
		if name != "" {
			c, err := types.ParseCurrency(name)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			currencies = []types.Currency{c}
		}
	}

	spreadsheet, _ := request.Params.Arguments["spreadsheet"].(bool)

	var result bytes.Buffer
	for _, c := range currencies {
		var format aggregate.Formatter
		if spreadsheet {
			format = aggregate.FormatterFor(c)
		}
		table, err := a.Table(c, format)
		if err != nil {
			return nil, fmt.Errorf("failed to build %s table: %w", c, err)
		}

		fmt.Fprintf(&result, "# %s\n", table.Name)
		if err := export.WriteCSV(&result, table); err != nil {
			return nil, err
		}
		result.WriteString("\n")
	}

	if result.Len() == 0 {
		return mcp.NewToolResultText("No spending found in this range."), nil
	}

	return mcp.NewToolResultText(result.String()), nil
}

func (s *Server) listCategoriesHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	a, err := s.aggregate(ctx, request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var result strings.Builder
	for _, c := range a.Currencies() {
		categories := a.Categories(c)
		fmt.Fprintf(&result, "%s (%d categories):\n", c, len(categories))
		for _, category := range categories {
			fmt.Fprintf(&result, "  %s\n", category)
		}
	}

	if result.Len() == 0 {
		return mcp.NewToolResultText("No spending found in this range."), nil
	}

	return mcp.NewToolResultText(result.String()), nil
}
