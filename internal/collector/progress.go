package collector

import (
	"fmt"
	"os"
	"sync"

	"github.com/lox/ledger-category-export/internal/types"
	"github.com/schollz/progressbar/v3"
)

// Progress tracks how many months of a collection run have finished
type Progress interface {
	// Done marks one month as finished, successfully or not
	Done(p types.Period, err error) error
	Close()
}

// NoopProgress discards progress updates
type NoopProgress struct{}

func (NoopProgress) Done(types.Period, error) error { return nil }
func (NoopProgress) Close()                         {}

// BarProgress renders a progress bar on stderr labelled with the last finished month
type BarProgress struct {
	mu     sync.Mutex
	bar    *progressbar.ProgressBar
	failed int
}

// NewBarProgress creates a progress bar for total months
func NewBarProgress(total int) *BarProgress {
	return &BarProgress{
		bar: progressbar.NewOptions(total,
			progressbar.OptionSetDescription("Fetching monthly reports"),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
			progressbar.OptionSetTheme(progressbar.Theme{
				Saucer:        "=",
				SaucerHead:    ">",
				SaucerPadding: " ",
				BarStart:      "[",
				BarEnd:        "]",
			})),
	}
}

// Done advances the bar. It is safe to call from concurrent fetches.
func (b *BarProgress) Done(p types.Period, err error) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err != nil {
		b.failed++
	}
	if b.failed > 0 {
		b.bar.Describe(fmt.Sprintf("Fetched %s (%d failed)", p.Label(), b.failed))
	} else {
		b.bar.Describe(fmt.Sprintf("Fetched %s", p.Label()))
	}
	return b.bar.Add(1)
}

func (b *BarProgress) Close() {
	_ = b.bar.Finish()
}
