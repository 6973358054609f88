package web

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/laurivosandi/mikrotik-exporter/internal/config"
	"github.com/laurivosandi/mikrotik-exporter/internal/routeros"
	"github.com/laurivosandi/mikrotik-exporter/internal/scrape"
)

// DialerFactory builds the device dialer for a given config. The main
// binary supplies the RouterOS API dialer; tests supply fakes.
type DialerFactory func(cfg *config.Config) routeros.Dialer

// Handler serves the exporter's HTTP endpoints. The active config is
// swapped atomically on hot-reload; each request reads it once.
type Handler struct {
	mux       *http.ServeMux
	cfg       atomic.Pointer[config.Config]
	dialers   DialerFactory
	telemetry *telemetry
}

// New creates a Handler with the given initial config.
func New(cfg *config.Config, dialers DialerFactory) *Handler {
	h := &Handler{
		mux:       http.NewServeMux(),
		dialers:   dialers,
		telemetry: newTelemetry(),
	}
	h.cfg.Store(cfg)

	h.mux.HandleFunc("/metrics", h.metrics)
	h.mux.HandleFunc("/healthz", h.healthz)
	h.mux.Handle("/internal/metrics", h.telemetry.httpHandler())
	h.mux.HandleFunc("/debug/live", h.live)

	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

// UpdateConfig makes cfg the active configuration for subsequent
// requests. In-flight requests keep the config they started with.
func (h *Handler) UpdateConfig(cfg *config.Config) {
	h.cfg.Store(cfg)
}

// metrics serves GET /metrics: authenticate, scrape every target
// concurrently and stream the merged exposition text line by line.
func (h *Handler) metrics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	cfg := h.cfg.Load()
	if !authorized(cfg, r) {
		w.WriteHeader(http.StatusForbidden)
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	dialer := h.dialers(cfg)
	sources := make([]*scrape.Source, len(cfg.Targets))
	for i, target := range cfg.Targets {
		sources[i] = scrape.NewSource(target, dialer)
	}

	start := time.Now()
	samples, wait := scrape.Merge(ctx, sources)
	encoder := scrape.NewEncoder(cfg.Prefix)

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	flusher, _ := w.(http.Flusher)

	var streamed int
	for sample := range samples {
		for _, line := range encoder.Lines(sample) {
			if _, err := io.WriteString(w, line+"\n"); err != nil {
				// Client went away; tear down the in-flight sessions.
				cancel()
			}
		}
		streamed++
		if flusher != nil {
			flusher.Flush()
		}
	}

	err := wait()
	h.telemetry.observeScrape(err, streamed, time.Since(start))

	switch {
	case err == nil:
		slog.Debug("scrape complete", "targets", len(sources), "samples", streamed,
			"elapsed", time.Since(start))
	case errors.Is(err, context.Canceled):
		slog.Debug("scrape cancelled by client", "samples", streamed)
	case streamed == 0:
		// Nothing on the wire yet — a clean error status is still possible.
		http.Error(w, "scrape failed", http.StatusBadGateway)
		slog.Error("scrape failed before first sample", "err", err)
	default:
		// Status already sent; the stream just ends early.
		slog.Error("scrape aborted mid-stream", "samples", streamed, "err", err)
	}
}

// healthz serves GET /healthz.
func (h *Handler) healthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	io.WriteString(w, `{"status":"ok"}`+"\n") //nolint:errcheck
}

// authorized checks the request's bearer token against the configured
// one. An unconfigured token allows everything.
func authorized(cfg *config.Config, r *http.Request) bool {
	want := cfg.BearerToken()
	if want == "" {
		return true
	}
	auth := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(auth, "Bearer ")
	if !ok {
		return false
	}
	return token == want
}
