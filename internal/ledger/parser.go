package ledger

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/lox/ledger-category-export/internal/types"
)

// DefaultMarker is the root account label used to locate the category column
const DefaultMarker = "Expenses"

var (
	ErrEmptyReport        = errors.New("report contains no lines")
	ErrInvalidEncoding    = errors.New("report is not valid UTF-8")
	ErrNoMarker           = errors.New("can't figure out how to split output")
	ErrUnresolvedCategory = errors.New("can't determine category for amount")
	ErrMissingAmount      = errors.New("line has no amount")
)

// ParseError ties a parse failure to the raw report line that caused it
type ParseError struct {
	Line int
	Text string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d %q: %v", e.Line, e.Text, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Line is a non-blank report line along with its 1-based position in the raw output
type Line struct {
	Number int
	Text   string
}

// SplitLines decodes a report and drops whitespace-only lines
func SplitLines(output []byte) ([]Line, error) {
	if !utf8.Valid(output) {
		return nil, ErrInvalidEncoding
	}

	var lines []Line
	for idx, text := range strings.Split(string(output), "\n") {
		text = strings.TrimRight(text, "\r")
		if strings.TrimSpace(text) == "" {
			continue
		}
		lines = append(lines, Line{Number: idx + 1, Text: text})
	}

	return lines, nil
}

// FindSplitIndex returns the character column where the category field starts.
// ledger right-aligns amounts into a fixed-width column, so the position of the
// marker in the first line that contains it holds for every line in the block.
func FindSplitIndex(lines []Line, marker string) (int, error) {
	if marker == "" {
		marker = DefaultMarker
	}

	for _, line := range lines {
		if ix := strings.Index(line.Text, marker); ix != -1 {
			return utf8.RuneCountInString(line.Text[:ix]), nil
		}
	}

	return 0, fmt.Errorf("%w: no line contains %q", ErrNoMarker, marker)
}

// SplitLine cuts a line at the given character column into its amount and category fields
func SplitLine(line Line, index int) (amount, category string) {
	runes := []rune(line.Text)
	if index > len(runes) {
		index = len(runes)
	}
	return strings.TrimSpace(string(runes[:index])), strings.TrimSpace(string(runes[index:]))
}

// ParseOutput turns a balance report into entries, one per non-blank line, in report order.
//
// Accounts holding more than one commodity are printed with the label only on
// their last amount line, so lines are walked bottom-up and an empty category
// takes the label of the nearest labelled line below it.
func ParseOutput(output []byte, marker string) ([]types.Entry, error) {
	lines, err := SplitLines(output)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, ErrEmptyReport
	}

	splitIndex, err := FindSplitIndex(lines, marker)
	if err != nil {
		return nil, err
	}

	entries := make([]types.Entry, len(lines))
	lastCategory := ""

	for idx := len(lines) - 1; idx >= 0; idx-- {
		line := lines[idx]
		amount, category := SplitLine(line, splitIndex)

		if amount == "" {
			return nil, &ParseError{Line: line.Number, Text: line.Text, Err: ErrMissingAmount}
		}

		if category == "" {
			if lastCategory == "" {
				return nil, &ParseError{Line: line.Number, Text: line.Text, Err: ErrUnresolvedCategory}
			}
			category = lastCategory
		} else {
			lastCategory = category
		}

		entries[idx] = types.Entry{
			Category: category,
			Amount:   amount,
			Line:     line.Number,
		}
	}

	return entries, nil
}

// ParseReader reads a complete report from r and parses it
func ParseReader(r io.Reader, marker string) ([]types.Entry, error) {
	output, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read report: %w", err)
	}
	return ParseOutput(output, marker)
}

// ParseFile reads a saved report and parses it
func ParseFile(filename string, marker string) ([]types.Entry, error) {
	infile, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open report: %w", err)
	}
	defer infile.Close()

	return ParseReader(infile, marker)
}
