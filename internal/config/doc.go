// Package config loads the exporter configuration.
//
// Two sources, checked in order by Resolve:
//   - a YAML config file (Load) — listen address, metric prefix, device
//     credentials, target list. Secrets are never stored in the file:
//     password_env and bearer_token_env name environment variables that
//     hold the actual values, resolved at use time.
//   - plain environment variables (FromEnv) — MIKROTIK_USER,
//     MIKROTIK_PASSWORD, TARGETS (comma-separated), PROMETHEUS_PREFIX,
//     PROMETHEUS_BEARER_TOKEN, LISTEN_ADDR — for containerized
//     deployments without a mounted file.
//
// Both paths fail fast when device credentials or the target list are
// absent: a /metrics endpoint that scrapes zero targets reports an empty
// fleet as healthy, so startup refuses the misconfiguration instead.
//
// Watch re-loads the file on change and hands the new Config to a
// callback; the HTTP layer swaps it in atomically between requests.
package config
