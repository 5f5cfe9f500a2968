package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/marczlle/letterboxd-v2/internal/data/entity"

	"go.uber.org/zap"
)

// Hub holds all live sessions. Sessions are created lazily on first join
// and reaped by the sweeper once they have been idle long enough; sessions
// with reserved seats stay resident so sold seats never reopen.
type Hub struct {
	layout  entity.Layout
	holdTTL time.Duration
	idleTTL time.Duration

	mu       sync.Mutex
	sessions map[string]*Session

	log *zap.Logger
}

func NewHub(layout entity.Layout, holdTTL, idleTTL time.Duration, log *zap.Logger) *Hub {
	return &Hub{
		layout:   layout,
		holdTTL:  holdTTL,
		idleTTL:  idleTTL,
		sessions: make(map[string]*Session),
		log:      log.With(zap.String("component", "hub")),
	}
}

// GetOrCreate returns the session with the given ID, creating it with a
// fresh all-available registry on first reference.
func (h *Hub) GetOrCreate(sessionID string) *Session {
	h.mu.Lock()
	defer h.mu.Unlock()

	if sess, ok := h.sessions[sessionID]; ok {
		return sess
	}

	sess := newSession(sessionID, h.layout, h.holdTTL, h.log)
	h.sessions[sessionID] = sess

	h.log.Info("Session created",
		zap.String("session", sessionID),
		zap.Int("seats", h.layout.Size()),
	)
	return sess
}

// Get returns an existing session without creating one.
func (h *Hub) Get(sessionID string) (*Session, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	sess, ok := h.sessions[sessionID]
	return sess, ok
}

// Len returns the number of live sessions.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.sessions)
}

// Run sweeps abandoned sessions until the context is cancelled.
func (h *Hub) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			h.sweep()
		}
	}
}

func (h *Hub) sweep() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for id, sess := range h.sessions {
		if sess.reapable(h.idleTTL) {
			delete(h.sessions, id)
			h.log.Info("Session reaped",
				zap.String("session", id),
			)
		}
	}
}
