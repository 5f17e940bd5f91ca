/*
	Package batch runs per-item operations over many neurons with bounded
	concurrency.  Items are partitioned by index so each is touched by
	exactly one worker; the first error cancels the remaining work.
*/
package batch

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/flyconnectome/dvidtools/skeleton"
	"github.com/flyconnectome/dvidtools/sparsevol"
)

// Run invokes fn for every index in [0, n) using at most workers concurrent
// goroutines.  A workers value below 1 uses GOMAXPROCS.  The first error
// cancels the shared context and is returned after in-flight calls finish;
// indexes not yet started are skipped once the context is done.
func Run(ctx context.Context, n, workers int, fn func(ctx context.Context, i int) error) error {
	if workers < 1 {
		workers = runtime.GOMAXPROCS(0)
	}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := 0; i < n; i++ {
		if ctx.Err() != nil {
			break
		}
		i := i
		g.Go(func() error {
			return fn(ctx, i)
		})
	}
	return g.Wait()
}

// HealAll heals every skeleton in place.  Graphs must not be shared across
// slots.
func HealAll(ctx context.Context, graphs []*skeleton.Graph, workers int) error {
	return Run(ctx, len(graphs), workers, func(_ context.Context, i int) error {
		if err := graphs[i].Heal(nil); err != nil {
			return fmt.Errorf("skeleton %d: %w", i, err)
		}
		return nil
	})
}

// DecodeAll decodes every sparse volume encoding, returning volumes in the
// same order as their encodings.
func DecodeAll(ctx context.Context, encodings [][]byte, workers int) ([]*sparsevol.SparseVol, error) {
	vols := make([]*sparsevol.SparseVol, len(encodings))
	err := Run(ctx, len(encodings), workers, func(_ context.Context, i int) error {
		vol, err := sparsevol.FromEncoding(encodings[i])
		if err != nil {
			return fmt.Errorf("sparse volume %d: %w", i, err)
		}
		vols[i] = vol
		return nil
	})
	if err != nil {
		return nil, err
	}
	return vols, nil
}
