package scrape

import (
	"context"
	"fmt"
	"sync"

	"github.com/laurivosandi/mikrotik-exporter/internal/metrics"
	"github.com/laurivosandi/mikrotik-exporter/internal/routeros"
)

// fakeSession serves canned records keyed by the command word. A stalled
// session blocks every Run until the context is cancelled, imitating a
// device that accepts the connection and then never answers.
type fakeSession struct {
	replies map[string][]routeros.Record
	stall   bool

	mu     sync.Mutex
	closed bool
}

func (f *fakeSession) Run(ctx context.Context, words ...string) ([]routeros.Record, error) {
	if f.stall {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return f.replies[words[0]], nil
}

func (f *fakeSession) Close() error {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
	return nil
}

func (f *fakeSession) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

// fakeDialer hands out one prepared session per target.
type fakeDialer struct {
	sessions map[string]*fakeSession
	dialErr  error
}

func (d fakeDialer) Dial(_ context.Context, target string) (routeros.Session, error) {
	if d.dialErr != nil {
		return nil, d.dialErr
	}
	s, ok := d.sessions[target]
	if !ok {
		return nil, fmt.Errorf("fake dialer: no session for %q", target)
	}
	return s, nil
}

// singleSession is a dialer for one target backed by one session.
func singleSession(target string, s *fakeSession) fakeDialer {
	return fakeDialer{sessions: map[string]*fakeSession{target: s}}
}

// collect runs src to completion and returns every emitted sample in order.
func collect(src *Source) ([]metrics.Sample, error) {
	out := make(chan metrics.Sample)
	var (
		got  []metrics.Sample
		done = make(chan struct{})
	)
	go func() {
		for s := range out {
			got = append(got, s)
		}
		close(done)
	}()
	err := src.Run(context.Background(), out)
	close(out)
	<-done
	return got, err
}
