package scrape

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/laurivosandi/mikrotik-exporter/internal/metrics"
	"github.com/laurivosandi/mikrotik-exporter/internal/routeros"
)

// healthOnly builds a session that answers the health battery with the
// given readings and every other battery with an empty record set.
func healthOnly(kv ...string) *fakeSession {
	return &fakeSession{replies: map[string][]routeros.Record{
		"/system/health/print": {routeros.NewRecord(kv...)},
	}}
}

func TestMerge_StalledTargetDoesNotBlockOthers(t *testing.T) {
	sessions := map[string]*fakeSession{
		"10.0.0.1": healthOnly("voltage", "24.1"),
		"10.0.0.2": healthOnly("voltage", "23.9"),
		"10.0.0.3": {stall: true},
	}
	dialer := fakeDialer{sessions: sessions}

	sources := make([]*Source, 0, len(sessions))
	for target := range sessions {
		sources = append(sources, NewSource(target, dialer))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	out, wait := Merge(ctx, sources)

	// The two healthy targets emit one sample each. Receiving both while
	// the third session stalls forever proves the merger never waits on
	// a slow input.
	hosts := make(map[string]bool)
	timeout := time.After(5 * time.Second)
	for len(hosts) < 2 {
		select {
		case s := <-out:
			hosts[s.Labels[0].Value] = true
		case <-timeout:
			t.Fatal("timed out waiting for samples from healthy targets")
		}
	}
	if !hosts["10.0.0.1"] || !hosts["10.0.0.2"] {
		t.Errorf("samples came from %v, want both healthy targets", hosts)
	}

	// Consumer walks away: every in-flight session must be torn down.
	cancel()
	if err := wait(); !errors.Is(err, context.Canceled) {
		t.Errorf("wait() = %v, want context.Canceled", err)
	}
	for target, s := range sessions {
		if !s.isClosed() {
			t.Errorf("session for %q left open after cancellation", target)
		}
	}
}

func TestMerge_FirstErrorCancelsRemaining(t *testing.T) {
	stalled := &fakeSession{stall: true}
	dialer := fakeDialer{sessions: map[string]*fakeSession{"10.0.0.2": stalled}}

	sources := []*Source{
		// No session configured for 10.0.0.1 — its dial fails immediately.
		NewSource("10.0.0.1", fakeDialer{dialErr: errors.New("connection refused")}),
		NewSource("10.0.0.2", dialer),
	}

	out, wait := Merge(context.Background(), sources)
	for range out {
	}

	err := wait()
	if err == nil {
		t.Fatal("wait() = nil, want the dial error")
	}
	if errors.Is(err, context.Canceled) {
		t.Fatalf("wait() = %v, want the original hard error, not the cancellation it caused", err)
	}
	if !stalled.isClosed() {
		t.Error("stalled session left open after a sibling target failed")
	}
}

func TestMerge_YieldsEveryInputExactlyOnce(t *testing.T) {
	sessions := map[string]*fakeSession{
		"10.0.0.1": healthOnly("voltage", "24.1", "temperature", "40"),
		"10.0.0.2": healthOnly("voltage", "23.9"),
	}
	dialer := fakeDialer{sessions: sessions}
	sources := []*Source{
		NewSource("10.0.0.1", dialer),
		NewSource("10.0.0.2", dialer),
	}

	out, wait := Merge(context.Background(), sources)
	var got []metrics.Sample
	for s := range out {
		got = append(got, s)
	}
	if err := wait(); err != nil {
		t.Fatalf("wait() = %v", err)
	}

	if len(got) != 3 {
		t.Fatalf("merged sample count = %d, want 3 (%v)", len(got), got)
	}
	perHost := make(map[string]int)
	for _, s := range got {
		perHost[s.Labels[0].Value]++
	}
	if perHost["10.0.0.1"] != 2 || perHost["10.0.0.2"] != 1 {
		t.Errorf("per-host counts = %v, want 10.0.0.1:2 10.0.0.2:1", perHost)
	}
}
