// Package web implements the exporter's HTTP surface.
//
// New(cfg, dialers) returns a Handler serving:
//
//	GET /metrics          — live scrape of every configured target,
//	                        streamed as chunked text/plain exposition;
//	                        guarded by an optional bearer token
//	GET /healthz          — liveness probe, {"status":"ok"}
//	GET /internal/metrics — the exporter's own telemetry (scrape counts,
//	                        durations, streamed-sample totals)
//	GET /debug/live       — WebSocket live tail of one target's
//	                        exposition lines, for interactive debugging
//
// /metrics writes and flushes each line as it is produced, so the first
// byte reaches the client before the last device has answered. Nothing
// is cached: every request polls every target over a fresh session.
//
// A hard error before the first byte yields 502; after the first byte
// the status is already on the wire, so the stream is truncated and the
// error logged. A client disconnect mid-stream cancels all in-flight
// device sessions and is not treated as an application error.
//
// UpdateConfig swaps the active configuration between requests; the
// config hot-reload watcher in cmd/ calls it.
package web
