package source

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/avast/retry-go/v4"
	"github.com/charmbracelet/log"
	"github.com/lox/ledger-category-export/internal/types"
)

// Runner executes a command and returns its standard output
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

// ExecRunner runs the command with os/exec, folding stderr into the error
func ExecRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	output, err := exec.CommandContext(ctx, name, args...).Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && len(exitErr.Stderr) > 0 {
			return nil, fmt.Errorf("%s failed: %w: %s", name, err, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return nil, fmt.Errorf("%s failed: %w", name, err)
	}
	return output, nil
}

// CommandConfig holds configuration for a command-backed source
type CommandConfig struct {
	Binary        string
	File          string
	Account       string
	RetryAttempts uint
	Logger        *log.Logger
	Runner        Runner
}

func NewCommandConfig() CommandConfig {
	return CommandConfig{
		Account:       "Expenses",
		RetryAttempts: 3,
		Runner:        ExecRunner,
	}
}

func (c CommandConfig) WithBinary(binary string) CommandConfig {
	c.Binary = binary
	return c
}
func (c CommandConfig) WithFile(file string) CommandConfig {
	c.File = file
	return c
}
func (c CommandConfig) WithAccount(account string) CommandConfig {
	c.Account = account
	return c
}
func (c CommandConfig) WithRetryAttempts(attempts uint) CommandConfig {
	c.RetryAttempts = attempts
	return c
}
func (c CommandConfig) WithLogger(logger *log.Logger) CommandConfig {
	c.Logger = logger
	return c
}
func (c CommandConfig) WithRunner(runner Runner) CommandConfig {
	c.Runner = runner
	return c
}

func (c CommandConfig) Validate() error {
	if c.Account == "" {
		return fmt.Errorf("account is required")
	}
	if c.RetryAttempts == 0 {
		return fmt.Errorf("retry attempts must be greater than 0")
	}
	if c.Logger == nil {
		return fmt.Errorf("logger is required")
	}
	if c.Runner == nil {
		return fmt.Errorf("runner is required")
	}
	return nil
}

// CommandSource fetches monthly balance reports by running ledger or hledger
type CommandSource struct {
	name   string
	config CommandConfig
	args   func(c CommandConfig, p types.Period) []string
	logger *log.Logger
}

// NewLedgerSource runs `ledger bal` with flat, total-less output
func NewLedgerSource(config CommandConfig) (*CommandSource, error) {
	if config.Binary == "" {
		config.Binary = "ledger"
	}
	return newCommandSource("ledger", config, ledgerArgs)
}

// NewHLedgerSource runs `hledger bal` with flat, total-less output
func NewHLedgerSource(config CommandConfig) (*CommandSource, error) {
	if config.Binary == "" {
		config.Binary = "hledger"
	}
	return newCommandSource("hledger", config, hledgerArgs)
}

func newCommandSource(name string, config CommandConfig, args func(CommandConfig, types.Period) []string) (*CommandSource, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &CommandSource{
		name:   name,
		config: config,
		args:   args,
		logger: config.Logger,
	}, nil
}

// Name returns the name of the source
func (s *CommandSource) Name() string {
	return s.name
}

// Args returns the command line arguments used for a period
func (s *CommandSource) Args(p types.Period) []string {
	return s.args(s.config, p)
}

// Fetch runs the accounting command for the period, retrying transient failures
func (s *CommandSource) Fetch(ctx context.Context, p types.Period) ([]byte, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	args := s.Args(p)
	s.logger.Debug("Running report command", "source", s.name, "period", p, "cmd", s.config.Binary+" "+strings.Join(args, " "))

	var output []byte
	err := retry.Do(
		func() error {
			out, err := s.config.Runner(ctx, s.config.Binary, args...)
			if err != nil {
				return err
			}
			output = out
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(s.config.RetryAttempts),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			return !errors.Is(err, exec.ErrNotFound) && !errors.Is(err, context.Canceled)
		}),
		retry.OnRetry(func(n uint, err error) {
			s.logger.Warn("Retrying report command", "attempt", n+1, "max_attempts", s.config.RetryAttempts, "period", p, "error", err)
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch report for %s: %w", p, err)
	}

	s.logger.Debug("Fetched report", "source", s.name, "period", p, "bytes", len(output))
	return output, nil
}

func ledgerArgs(c CommandConfig, p types.Period) []string {
	var args []string
	if c.File != "" {
		args = append(args, "-f", c.File)
	}
	start, end := p.Start(), p.End()
	return append(args,
		"bal", "-s",
		"-b", start.Format("2006/01/02"),
		"-e", end.Format("2006/01/02"),
		"--flat", "--no-total",
		c.Account,
	)
}

func hledgerArgs(c CommandConfig, p types.Period) []string {
	var args []string
	if c.File != "" {
		args = append(args, "-f", c.File)
	}
	start, end := p.Start(), p.End()
	return append(args,
		"bal",
		"-b", start.Format("2006-01-02"),
		"-e", end.Format("2006-01-02"),
		"--flat", "-N",
		c.Account,
	)
}

var _ Source = (*CommandSource)(nil)
