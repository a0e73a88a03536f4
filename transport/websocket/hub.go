package websocket

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/chess-relay/internal/apperror"
	"github.com/rocketscienceinc/chess-relay/internal/pkg"
	"github.com/rocketscienceinc/chess-relay/internal/relay"
)

var ErrHubClosed = errors.New("hub is closed")

// Hub keeps track of live connections and delivers outbound messages to them by connection id.
type Hub struct {
	logger     *slog.Logger
	bufferSize int

	connectionsMutex sync.RWMutex
	connections      map[string]*Client
	closed           bool

	pumps sync.WaitGroup
}

func NewHub(logger *slog.Logger, bufferSize int) *Hub {
	return &Hub{
		logger:      logger.With("component", "hub"),
		bufferSize:  bufferSize,
		connections: make(map[string]*Client),
	}
}

// Send - queues msg for connID. Delivery is best effort: a client whose buffer is full is dropped.
func (that *Hub) Send(connID string, msg *relay.Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	that.connectionsMutex.RLock()
	client, ok := that.connections[connID]
	that.connectionsMutex.RUnlock()

	if !ok {
		return fmt.Errorf("%w: %s", apperror.ErrConnectionNotFound, connID)
	}

	if err = client.enqueue(data); err != nil {
		if errors.Is(err, errSendBufferFull) {
			that.logger.Warn("client is too slow, dropping connection", "connID", connID)
			client.close()
		}

		return fmt.Errorf("failed to queue message for %s: %w", connID, err)
	}

	return nil
}

// Len - number of live connections.
func (that *Hub) Len() int {
	that.connectionsMutex.RLock()
	defer that.connectionsMutex.RUnlock()

	return len(that.connections)
}

// Close - closes every connection and waits until their pumps have stopped.
func (that *Hub) Close() {
	that.connectionsMutex.Lock()
	that.closed = true
	for _, client := range that.connections {
		client.close()
	}
	that.connectionsMutex.Unlock()

	that.pumps.Wait()
}

// register adds a new connection. Both of its pumps are accounted for in the wait group.
func (that *Hub) register(conn *websocket.Conn) (*Client, error) {
	that.connectionsMutex.Lock()
	defer that.connectionsMutex.Unlock()

	if that.closed {
		return nil, ErrHubClosed
	}

	client := newClient(pkg.GenerateConnectionID(), conn, that.bufferSize)
	that.connections[client.id] = client
	that.pumps.Add(2)

	return client, nil
}

func (that *Hub) unregister(client *Client) {
	that.connectionsMutex.Lock()
	delete(that.connections, client.id)
	that.connectionsMutex.Unlock()

	client.close()
}
