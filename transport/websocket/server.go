package websocket

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

type connectionHandler interface {
	Handle(ctx context.Context, connID string, data []byte) error
	Disconnect(ctx context.Context, connID string)
}

// Server upgrades HTTP requests to websocket connections and feeds their frames to the relay.
type Server struct {
	logger  *slog.Logger
	hub     *Hub
	handler connectionHandler

	upgrader       websocket.Upgrader
	maxMessageSize int64
}

func New(logger *slog.Logger, hub *Hub, handler connectionHandler, maxMessageSize int64) *Server {
	return &Server{
		logger:  logger.With("component", "websocket"),
		hub:     hub,
		handler: handler,

		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(_ *http.Request) bool {
				return true
			},
		},
		maxMessageSize: maxMessageSize,
	}
}

// ServeHTTP - upgrades the connection to WebSocket and serves it until it goes away.
func (that *Server) ServeHTTP(writer http.ResponseWriter, req *http.Request) {
	log := that.logger.With("method", "ServeHTTP")

	conn, err := that.upgrader.Upgrade(writer, req, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}

	client, err := that.hub.register(conn)
	if err != nil {
		log.Warn("rejecting connection", "error", err)
		_ = conn.Close()
		return
	}

	log = log.With("connID", client.id)
	log.Info("WebSocket connection established", "remote", req.RemoteAddr)

	go func() {
		defer that.hub.pumps.Done()

		if writeErr := client.writePump(); writeErr != nil {
			log.Debug("write pump stopped", "error", writeErr)
		}
	}()

	that.readPump(req.Context(), client, log)
}

// readPump - processes messages from the client one at a time, in the order they arrive.
func (that *Server) readPump(ctx context.Context, client *Client, log *slog.Logger) {
	defer func() {
		that.hub.unregister(client)
		_ = client.conn.Close()

		that.handler.Disconnect(ctx, client.id)

		log.Info("WebSocket connection closed")
		that.hub.pumps.Done()
	}()

	client.conn.SetReadLimit(that.maxMessageSize)
	_ = client.conn.SetReadDeadline(time.Now().Add(pongWait))
	client.conn.SetPongHandler(func(string) error {
		return client.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := client.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseNoStatusReceived) {
				log.Warn("error reading message", "error", err)
			}
			return
		}

		if err = that.handler.Handle(ctx, client.id, data); err != nil {
			log.Warn("failed to answer request", "error", err)
		}
	}
}
