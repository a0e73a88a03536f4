package websocket

import (
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10
)

var (
	errSendBufferFull   = errors.New("send buffer is full")
	errConnectionClosed = errors.New("connection is closed")
)

// Client is one live websocket connection.
type Client struct {
	id   string
	conn *websocket.Conn

	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

func newClient(id string, conn *websocket.Conn, bufferSize int) *Client {
	return &Client{
		id:   id,
		conn: conn,
		send: make(chan []byte, bufferSize),
		done: make(chan struct{}),
	}
}

func (that *Client) ID() string {
	return that.id
}

// enqueue never blocks: a client that cannot keep up loses the message.
func (that *Client) enqueue(data []byte) error {
	select {
	case <-that.done:
		return errConnectionClosed
	default:
	}

	select {
	case that.send <- data:
		return nil
	default:
		return errSendBufferFull
	}
}

// close asks the write pump to say goodbye and drop the connection.
func (that *Client) close() {
	that.closeOnce.Do(func() {
		close(that.done)
	})
}

// writePump is the only goroutine writing to the connection.
func (that *Client) writePump() error {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		that.close()
		_ = that.conn.Close()
	}()

	for {
		select {
		case data := <-that.send:
			_ = that.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := that.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return err
			}

		case <-ticker.C:
			_ = that.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := that.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return err
			}

		case <-that.done:
			_ = that.conn.WriteControl(
				websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeWait),
			)
			return nil
		}
	}
}
