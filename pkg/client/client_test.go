package client

import (
	"context"
	"net/http/httptest"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/marczlle/letterboxd-v2/internal/data/repository"
	"github.com/marczlle/letterboxd-v2/internal/wire"
	"github.com/marczlle/letterboxd-v2/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNextBackoff(t *testing.T) {
	max := 30 * time.Second

	d := 500 * time.Millisecond
	var got []time.Duration
	for i := 0; i < 8; i++ {
		d = nextBackoff(d, max)
		got = append(got, d)
	}

	assert.Equal(t, []time.Duration{
		time.Second,
		2 * time.Second,
		4 * time.Second,
		8 * time.Second,
		16 * time.Second,
		30 * time.Second,
		30 * time.Second,
		30 * time.Second,
	}, got)
}

func TestNewValidatesConfig(t *testing.T) {
	_, err := New(Config{Session: "S001"})
	assert.Error(t, err)

	_, err = New(Config{URL: "ws://localhost/ws/reserva"})
	assert.Error(t, err)

	c, err := New(Config{URL: "ws://localhost/ws/reserva", Session: "S001"})
	require.NoError(t, err)
	assert.Equal(t, defaultMinBackoff, c.cfg.MinBackoff)
	assert.Equal(t, defaultMaxBackoff, c.cfg.MaxBackoff)
}

func TestActionsBeforeConnect(t *testing.T) {
	c, err := New(Config{URL: "ws://localhost/ws/reserva", Session: "S001"})
	require.NoError(t, err)

	assert.ErrorIs(t, c.LockSeat("A01"), ErrNotConnected)
	assert.ErrorIs(t, c.ReleaseSeat("A01"), ErrNotConnected)
	assert.ErrorIs(t, c.ConfirmPayment([]string{"A01"}, Payer{}), ErrNotConnected)
}

func coordinatorURL(t *testing.T) string {
	t.Helper()

	cfg := &utils.Config{
		Reservation: utils.ReservationConfig{
			HoldTTLMinutes:       1,
			SessionIdleMinutes:   30,
			SweepIntervalSeconds: 60,
			DefaultSession:       "S001",
		},
		Layout: utils.LayoutConfig{Rows: []string{"A"}, SeatsPerRow: 4},
		WS: utils.WSConfig{
			SendBuffer:          16,
			WriteTimeoutSeconds: 2,
			PingIntervalSeconds: 5,
			MaxMessageBytes:     4096,
		},
	}

	logger := zap.NewNop()
	app := wire.Wiring(repository.NewRepository(nil, logger), cfg, logger)
	srv := httptest.NewServer(app.Router)
	t.Cleanup(srv.Close)

	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/reserva"
}

func TestClientEndToEnd(t *testing.T) {
	url := coordinatorURL(t)

	snapshots := make(chan Message, 1)
	events := make(chan Message, 8)
	results := make(chan Message, 8)

	c, err := New(Config{
		URL:        url,
		Session:    "E2E1",
		OnSnapshot: func(m Message) { snapshots <- m },
		OnEvent:    func(m Message) { events <- m },
		OnResult:   func(m Message) { results <- m },
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()

	var snap Message
	select {
	case snap = <-snapshots:
	case <-time.After(3 * time.Second):
		t.Fatal("no snapshot before deadline")
	}
	assert.Equal(t, "E2E1", snap.Session)
	assert.True(t, strings.HasPrefix(c.ClientID(), "USR-"))
	assert.Equal(t, "available", snap.Seats["A01"])

	require.NoError(t, c.LockSeat("A02"))

	select {
	case res := <-results:
		assert.Equal(t, "ok", res.Status)
		assert.Equal(t, "A02", res.Seat)
	case <-time.After(3 * time.Second):
		t.Fatal("no lock result before deadline")
	}

	select {
	case ev := <-events:
		assert.Equal(t, "seat_locked", ev.Event)
		assert.Equal(t, c.ClientID(), ev.Holder)
	case <-time.After(3 * time.Second):
		t.Fatal("no lock broadcast before deadline")
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("Run did not stop on cancel")
	}
}

func TestClientReconnects(t *testing.T) {
	url := coordinatorURL(t)

	snapshots := make(chan Message, 4)
	c, err := New(Config{
		URL:        url,
		Session:    "RECON1",
		MinBackoff: 10 * time.Millisecond,
		OnSnapshot: func(m Message) { snapshots <- m },
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go c.Run(ctx)

	select {
	case <-snapshots:
	case <-time.After(3 * time.Second):
		t.Fatal("no snapshot before deadline")
	}

	// kill the live connection under the client; Run must redial
	c.mu.Lock()
	c.conn.Close()
	c.mu.Unlock()

	select {
	case snap := <-snapshots:
		assert.Equal(t, "RECON1", snap.Session)
	case <-time.After(3 * time.Second):
		t.Fatal("no snapshot after reconnect")
	}
}

func TestRedialDoesNotLeakWatchers(t *testing.T) {
	url := coordinatorURL(t)

	snapshots := make(chan Message, 16)
	c, err := New(Config{
		URL:        url,
		Session:    "LEAK1",
		MinBackoff: 10 * time.Millisecond,
		OnSnapshot: func(m Message) { snapshots <- m },
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go c.Run(ctx)

	select {
	case <-snapshots:
	case <-time.After(3 * time.Second):
		t.Fatal("no snapshot before deadline")
	}
	baseline := runtime.NumGoroutine()

	for i := 0; i < 10; i++ {
		c.mu.Lock()
		conn := c.conn
		c.mu.Unlock()
		require.NotNil(t, conn)
		conn.Close()

		select {
		case <-snapshots:
		case <-time.After(3 * time.Second):
			t.Fatal("no snapshot after reconnect")
		}
	}

	// one watcher per dead connection would show up as +10 here
	assert.Eventually(t, func() bool {
		return runtime.NumGoroutine() <= baseline+4
	}, 3*time.Second, 50*time.Millisecond)
}
