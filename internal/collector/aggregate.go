package collector

import (
	"context"

	"github.com/lox/ledger-category-export/internal/aggregate"
	"github.com/lox/ledger-category-export/internal/types"
)

// Aggregate collects every period and combines the reports, applying the failure policy to bad months
func (c *Collector) Aggregate(ctx context.Context, periods []types.Period, config Config, failure aggregate.FailurePolicy) (*aggregate.Aggregator, error) {
	results, err := c.Collect(ctx, periods, config)
	if err != nil {
		return nil, err
	}

	reports, err := aggregate.Collect(results, failure, c.logger)
	if err != nil {
		return nil, err
	}

	return aggregate.New(reports)
}
