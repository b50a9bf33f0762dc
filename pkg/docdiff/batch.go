// ABOUTME: Concurrent comparison of independent document pairs
// ABOUTME: Bounded by a semaphore, the first failure cancels the batch

package docdiff

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/nainya/docdiff/pkg/model"
)

const (
	minConcurrency    = 2
	maxConcurrencyCap = 8
)

// DefaultMaxConcurrency returns the batch concurrency based on available CPUs
func DefaultMaxConcurrency() int64 {
	numCPU := int64(runtime.NumCPU())
	return min(max(numCPU, minConcurrency), maxConcurrencyCap)
}

// Pair is one comparison of a batch
type Pair struct {
	Name  string
	Left  []byte
	Right []byte
}

// DiffBatch compares every pair concurrently. Results are in input order.
// The first error cancels the comparisons not yet started and is returned.
func (s *Service) DiffBatch(ctx context.Context, pairs []Pair) ([]*model.DocumentDiff, error) {
	results := make([]*model.DocumentDiff, len(pairs))
	if len(pairs) == 0 {
		return results, nil
	}

	limit := s.cfg.MaxConcurrency
	if limit <= 0 {
		limit = DefaultMaxConcurrency()
	}

	sem := semaphore.NewWeighted(limit)
	group, groupCtx := errgroup.WithContext(ctx)

	for i, pair := range pairs {
		i, pair := i, pair
		group.Go(func() error {
			if err := sem.Acquire(groupCtx, 1); err != nil {
				return fmt.Errorf("acquire semaphore: %w", err)
			}
			defer sem.Release(1)

			diff, err := s.Diff(groupCtx, pair.Left, pair.Right)
			if err != nil {
				return fmt.Errorf("pair %d %s: %w", i, pair.Name, err)
			}
			results[i] = diff
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, fmt.Errorf("batch comparison: %w", err)
	}
	return results, nil
}
