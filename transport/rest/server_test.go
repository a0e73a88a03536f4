package rest

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewServer(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ws := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	srv := NewServer(logger, 3000, ws)

	assert.Equal(t, ":3000", srv.Addr)

	t.Run("Ping answers pong", func(t *testing.T) {
		// When: the liveness endpoint is requested
		rec := httptest.NewRecorder()
		srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))

		// Then: it answers 200 pong
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "pong", rec.Body.String())
	})

	t.Run("Websocket route is mounted", func(t *testing.T) {
		rec := httptest.NewRecorder()
		srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ws", nil))

		assert.Equal(t, http.StatusTeapot, rec.Code)
	})

	t.Run("Unknown route is not found", func(t *testing.T) {
		rec := httptest.NewRecorder()
		srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/chess", nil))

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
