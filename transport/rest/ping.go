package rest

import (
	"log/slog"
	"net/http"
)

type pingHandler struct {
	logger *slog.Logger
}

func NewPingHandler(logger *slog.Logger) http.Handler {
	return &pingHandler{
		logger: logger.With("component", "ping"),
	}
}

func (that *pingHandler) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)

	if _, err := w.Write([]byte("pong")); err != nil {
		that.logger.Error("failed to write pong", "error", err)
	}
}
