package simulation

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// RunBatch executes every run of batch, up to batch.Workers at a time, and
// returns the results in Runs order. The first failing run cancels the
// others; results of runs that did not complete are nil.
func RunBatch(ctx context.Context, batch *BatchConfig, opts ...Option) ([]*Result, error) {
	if err := batch.Validate(); err != nil {
		return nil, fmt.Errorf("invalid batch config: %w", err)
	}

	runs := batch.Runs()
	results := make([]*Result, len(runs))

	logrus.WithFields(logrus.Fields{
		"function": "RunBatch",
		"runs":     len(runs),
		"workers":  batch.Workers,
		"nodes":    batch.Nodes,
	}).Info("Starting simulation batch")

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(batch.Workers)
	for i, config := range runs {
		i, config := i, config
		g.Go(func() error {
			sim, err := NewSimulator(config, opts...)
			if err != nil {
				return fmt.Errorf("run %d: %w", i, err)
			}
			result, err := sim.Run(ctx)
			results[i] = result
			if err != nil {
				return fmt.Errorf("run %d (%s, min_peers=%d, max_peers=%d): %w",
					i, result.Strategy, config.MinPeers, config.MaxPeers, err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}
