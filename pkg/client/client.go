// Package client is a Go client for the live seat-reservation coordinator.
// It keeps one websocket to the server and redials with capped exponential
// backoff when the connection drops, re-reading the snapshot on every
// reconnect; holds never survive a drop, so the caller must re-lock.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// ErrNotConnected is returned by actions while no connection is up.
var ErrNotConnected = errors.New("not connected")

const (
	defaultMinBackoff = 500 * time.Millisecond
	defaultMaxBackoff = 30 * time.Second
)

// Message mirrors every field the coordinator can send; Type, Event and
// Status discriminate the actual kind.
type Message struct {
	// snapshot
	Type            string            `json:"type,omitempty"`
	Session         string            `json:"session,omitempty"`
	ClientID        string            `json:"client_id,omitempty"`
	HoldTTLSeconds  int               `json:"hold_ttl_seconds,omitempty"`
	Seats           map[string]string `json:"seats,omitempty"`
	WheelchairSeats []string          `json:"wheelchair_seats,omitempty"`

	// broadcast
	Event  string `json:"event,omitempty"`
	Seat   string `json:"seat,omitempty"`
	Holder string `json:"holder,omitempty"`
	Reason string `json:"reason,omitempty"`

	// unicast / payment
	Status         string   `json:"status,omitempty"`
	Message        string   `json:"message,omitempty"`
	ConfirmedSeats []string `json:"confirmed_seats,omitempty"`
	FailedSeats    []string `json:"failed_seats,omitempty"`
}

// Payer carries the payment confirmation details.
type Payer struct {
	Name     string `json:"name"`
	Document string `json:"document"`
	Contact  string `json:"contact"`
}

type Config struct {
	URL     string // ws://host:port/ws/reserva
	Session string

	MinBackoff time.Duration // default 500ms
	MaxBackoff time.Duration // default 30s

	OnSnapshot func(Message)
	OnEvent    func(Message)
	OnResult   func(Message)
	OnPayment  func(Message)

	Logger *zap.Logger
}

type Client struct {
	cfg Config
	log *zap.Logger

	mu       sync.Mutex
	conn     *websocket.Conn
	clientID string
}

func New(cfg Config) (*Client, error) {
	if cfg.URL == "" {
		return nil, errors.New("client: URL is required")
	}
	if cfg.Session == "" {
		return nil, errors.New("client: session is required")
	}
	if cfg.MinBackoff <= 0 {
		cfg.MinBackoff = defaultMinBackoff
	}
	if cfg.MaxBackoff < cfg.MinBackoff {
		cfg.MaxBackoff = defaultMaxBackoff
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return &Client{
		cfg: cfg,
		log: log.With(zap.String("component", "reservation-client")),
	}, nil
}

// ClientID returns the server-assigned identifier, empty until the first
// snapshot arrives.
func (c *Client) ClientID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.clientID
}

// Run dials and reads until the context is cancelled. Connection failures
// trigger a redial after a capped exponential backoff that resets on every
// successful connect.
func (c *Client) Run(ctx context.Context) error {
	backoff := c.cfg.MinBackoff

	for {
		if err := ctx.Err(); err != nil {
			return nil
		}

		conn, err := c.dial(ctx)
		if err != nil {
			c.log.Warn("Dial failed, retrying",
				zap.Error(err),
				zap.Duration("backoff", backoff),
			)
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(backoff):
			}
			backoff = nextBackoff(backoff, c.cfg.MaxBackoff)
			continue
		}

		backoff = c.cfg.MinBackoff
		c.setConn(conn)
		c.readLoop(ctx, conn)
		c.setConn(nil)

		if ctx.Err() != nil {
			return nil
		}
	}
}

func (c *Client) dial(ctx context.Context) (*websocket.Conn, error) {
	url := c.cfg.URL + "?session=" + c.cfg.Session
	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	return conn, err
}

func (c *Client) readLoop(ctx context.Context, conn *websocket.Conn) {
	defer conn.Close()

	// The watcher must die with this connection, not with the context, or
	// every redial would leak one goroutine.
	done := make(chan struct{})
	defer close(done)

	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			c.log.Warn("Discarding undecodable message", zap.Error(err))
			continue
		}
		c.handle(msg)
	}
}

func (c *Client) handle(msg Message) {
	switch {
	case msg.Type == "snapshot":
		c.mu.Lock()
		c.clientID = msg.ClientID
		c.mu.Unlock()
		if c.cfg.OnSnapshot != nil {
			c.cfg.OnSnapshot(msg)
		}
	case msg.Type == "confirmation_payment":
		if c.cfg.OnPayment != nil {
			c.cfg.OnPayment(msg)
		}
	case msg.Event != "":
		if c.cfg.OnEvent != nil {
			c.cfg.OnEvent(msg)
		}
	default:
		if c.cfg.OnResult != nil {
			c.cfg.OnResult(msg)
		}
	}
}

// LockSeat requests a hold on one seat.
func (c *Client) LockSeat(seat string) error {
	return c.write(map[string]any{
		"action":    "lock",
		"session":   c.cfg.Session,
		"seat":      seat,
		"client_id": c.ClientID(),
	})
}

// ReleaseSeat gives up a hold before it expires.
func (c *Client) ReleaseSeat(seat string) error {
	return c.write(map[string]any{
		"action":    "release",
		"session":   c.cfg.Session,
		"seat":      seat,
		"client_id": c.ClientID(),
	})
}

// ConfirmPayment claims the held seats permanently.
func (c *Client) ConfirmPayment(seats []string, payer Payer) error {
	return c.write(map[string]any{
		"action":    "confirm_payment",
		"session":   c.cfg.Session,
		"seats":     seats,
		"client_id": c.ClientID(),
		"payer":     payer,
	})
}

func (c *Client) write(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return ErrNotConnected
	}
	return c.conn.WriteJSON(v)
}

func (c *Client) setConn(conn *websocket.Conn) {
	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()
}

// nextBackoff doubles the delay up to the cap.
func nextBackoff(current, max time.Duration) time.Duration {
	next := current * 2
	if next > max {
		return max
	}
	return next
}
