package adaptor

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// wsClient is one websocket connection seen as a session subscriber.
// Outbound messages pass through a buffered queue drained by a single
// writer goroutine, which keeps gorilla's one-writer rule and preserves
// enqueue order.
type wsClient struct {
	id   string
	conn *websocket.Conn
	send chan any

	writeTimeout time.Duration
	pingInterval time.Duration

	closeOnce sync.Once
	done      chan struct{}

	log *zap.Logger
}

func newWSClient(conn *websocket.Conn, id string, buffer int, writeTimeout, pingInterval time.Duration, log *zap.Logger) *wsClient {
	return &wsClient{
		id:           id,
		conn:         conn,
		send:         make(chan any, buffer),
		writeTimeout: writeTimeout,
		pingInterval: pingInterval,
		done:         make(chan struct{}),
		log:          log.With(zap.String("client_id", id)),
	}
}

func (c *wsClient) ID() string { return c.id }

// Send enqueues without blocking. A full queue means the client cannot keep
// up; the message is dropped for this client only.
func (c *wsClient) Send(v any) bool {
	select {
	case <-c.done:
		return false
	default:
	}

	select {
	case c.send <- v:
		return true
	default:
		return false
	}
}

// writePump drains the send queue and keeps the connection alive with
// pings. It owns all writes to the underlying connection.
func (c *wsClient) writePump() {
	ticker := time.NewTicker(c.pingInterval)
	defer ticker.Stop()
	defer c.conn.Close()

	for {
		select {
		case v := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout))
			if err := c.conn.WriteJSON(v); err != nil {
				c.log.Debug("Write failed, closing connection", zap.Error(err))
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout))
			c.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

func (c *wsClient) close() {
	c.closeOnce.Do(func() {
		close(c.done)
		c.conn.Close()
	})
}
