package rest

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"
)

// NewServer - builds the HTTP server exposing the relay websocket and the liveness probe.
func NewServer(logger *slog.Logger, port int, ws http.Handler) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("GET /ws", ws)
	mux.Handle("GET /ping", NewPingHandler(logger))

	return &http.Server{
		Addr:              ":" + strconv.Itoa(port),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       30 * time.Second,
	}
}
