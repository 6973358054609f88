package scrape

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/laurivosandi/mikrotik-exporter/internal/metrics"
)

// Merge runs every source concurrently and fans their samples into one
// channel, interleaved in arrival order. A slow or stalled source never
// blocks the others.
//
// The returned channel closes when every source has finished. The
// returned wait function blocks until then and reports the first hard
// error; that error also cancels the remaining sources, so once wait
// returns no session is still open. Cancelling ctx (client disconnect)
// tears everything down the same way and wait reports ctx's error.
func Merge(ctx context.Context, sources []*Source) (<-chan metrics.Sample, func() error) {
	out := make(chan metrics.Sample)
	g, gctx := errgroup.WithContext(ctx)

	for _, src := range sources {
		src := src
		g.Go(func() error {
			return src.Run(gctx, out)
		})
	}

	done := make(chan error, 1)
	go func() {
		err := g.Wait()
		close(out)
		done <- err
	}()

	return out, func() error { return <-done }
}
