package web

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/laurivosandi/mikrotik-exporter/internal/scrape"
)

// liveWriteTimeout is the deadline for a single write to a live-tail client.
const liveWriteTimeout = 10 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// The endpoint is for interactive debugging; restrict origins at the
	// reverse proxy if it is ever exposed.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// live serves GET /debug/live?target=<addr>: upgrades to WebSocket and
// streams one configured target's exposition lines as text frames while
// a single-target scrape runs. The same bearer token guards it.
func (h *Handler) live(w http.ResponseWriter, r *http.Request) {
	cfg := h.cfg.Load()
	if !authorized(cfg, r) {
		w.WriteHeader(http.StatusForbidden)
		return
	}

	target := r.URL.Query().Get("target")
	if !contains(cfg.Targets, target) {
		http.Error(w, "unknown target", http.StatusNotFound)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// upgrader has already written the error response.
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// Reads only serve to detect the client closing the socket.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				cancel()
				return
			}
		}
	}()

	source := scrape.NewSource(target, h.dialers(cfg))
	samples, wait := scrape.Merge(ctx, []*scrape.Source{source})
	encoder := scrape.NewEncoder(cfg.Prefix)

	for sample := range samples {
		for _, line := range encoder.Lines(sample) {
			conn.SetWriteDeadline(time.Now().Add(liveWriteTimeout)) //nolint:errcheck
			if err := conn.WriteMessage(websocket.TextMessage, []byte(line)); err != nil {
				cancel()
			}
		}
	}

	if err := wait(); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("live tail aborted", "target", target, "err", err)
		msg := websocket.FormatCloseMessage(websocket.CloseInternalServerErr, err.Error())
		conn.SetWriteDeadline(time.Now().Add(liveWriteTimeout)) //nolint:errcheck
		conn.WriteMessage(websocket.CloseMessage, msg)          //nolint:errcheck
		return
	}
	conn.SetWriteDeadline(time.Now().Add(liveWriteTimeout))                                                              //nolint:errcheck
	conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "scrape done")) //nolint:errcheck
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
