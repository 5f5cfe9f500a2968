package usecase

import (
	"sync"
	"time"

	"github.com/marczlle/letterboxd-v2/internal/data/entity"
	"github.com/marczlle/letterboxd-v2/internal/data/registry"
	"github.com/marczlle/letterboxd-v2/internal/dto/response"

	"go.uber.org/zap"
)

// Subscriber is one connected client of a session. Send enqueues an
// outbound message and must not block; it returns false when the client is
// too slow or gone, which never blocks delivery to the other clients.
type Subscriber interface {
	ID() string
	Send(v any) bool
}

// Session owns the seat registry of one showtime and the set of connected
// clients. Every mutation and every broadcast enqueue happens under one
// mutex, so hold grants are serialized per session and broadcasts reach each
// subscriber's queue in commit order.
type Session struct {
	id      string
	holdTTL time.Duration

	mu         sync.Mutex
	registry   *registry.Registry
	subs       map[string]Subscriber
	timers     map[string]*time.Timer
	emptySince time.Time // zero while at least one subscriber is connected

	log *zap.Logger
}

func newSession(id string, layout entity.Layout, holdTTL time.Duration, log *zap.Logger) *Session {
	return &Session{
		id:         id,
		holdTTL:    holdTTL,
		registry:   registry.New(layout),
		subs:       make(map[string]Subscriber),
		timers:     make(map[string]*time.Timer),
		emptySince: time.Now(),
		log:        log.With(zap.String("session", id)),
	}
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Join registers a subscriber and delivers the current seat map to it
// before any later broadcast. The returned snapshot is the same message the
// subscriber receives.
func (s *Session) Join(sub Subscriber) *response.SeatSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.subs[sub.ID()] = sub
	s.emptySince = time.Time{}

	snap := s.snapshotLocked(sub.ID())
	sub.Send(snap)

	s.log.Info("Client joined session",
		zap.String("client_id", sub.ID()),
		zap.Int("clients", len(s.subs)),
	)
	return snap
}

// Leave removes a subscriber and releases every seat it still holds,
// broadcasting seat_released with reason disconnect. Safe to call for
// clients that never joined.
func (s *Session) Leave(clientID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.subs[clientID]; ok {
		delete(s.subs, clientID)
		if len(s.subs) == 0 {
			s.emptySince = time.Now()
		}
	}

	released := 0
	for _, seat := range s.registry.HeldBy(clientID) {
		s.releaseLocked(seat, response.ReasonDisconnect)
		released++
	}

	s.log.Info("Client left session",
		zap.String("client_id", clientID),
		zap.Int("released_seats", released),
		zap.Int("clients", len(s.subs)),
	)
}

// Lock grants a time-bounded hold on a seat. The first valid request wins;
// anything but an available seat is rejected with ErrSeatUnavailable and no
// broadcast.
func (s *Session) Lock(seatID, clientID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	seat, ok := s.registry.Get(seatID)
	if !ok {
		return ErrUnknownSeat
	}
	if seat.State != entity.SeatAvailable {
		return ErrSeatUnavailable
	}

	seat.State = entity.SeatSelected
	seat.Holder = clientID
	seat.HoldExpiry = time.Now().Add(s.holdTTL)
	seat.Generation++

	gen := seat.Generation
	s.timers[seatID] = time.AfterFunc(s.holdTTL, func() {
		s.expire(seatID, gen)
	})

	s.broadcastLocked(&response.SeatEvent{
		Event:  response.EventSeatLocked,
		Seat:   seatID,
		Holder: clientID,
	})

	s.log.Info("Seat locked",
		zap.String("seat", seatID),
		zap.String("client_id", clientID),
		zap.Time("expires_at", seat.HoldExpiry),
	)
	return nil
}

// Release drops a hold at the holder's request and broadcasts seat_released
// with reason manual.
func (s *Session) Release(seatID, clientID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	seat, ok := s.registry.Get(seatID)
	if !ok {
		return ErrUnknownSeat
	}
	if !seat.HeldBy(clientID) {
		return ErrNotHolder
	}

	s.releaseLocked(seat, response.ReasonManual)

	s.log.Info("Seat released",
		zap.String("seat", seatID),
		zap.String("client_id", clientID),
	)
	return nil
}

// Confirm transitions every claimed seat that is still held by the client
// and unexpired to reserved, broadcasting seat_reserved per seat. Claims
// failing the ownership check end up in failed; partial success is a valid
// outcome.
func (s *Session) Confirm(clientID string, seatIDs []string) (confirmed, failed []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	seen := make(map[string]bool, len(seatIDs))
	for _, seatID := range seatIDs {
		if seen[seatID] {
			continue
		}
		seen[seatID] = true

		seat, ok := s.registry.Get(seatID)
		if !ok || !seat.HeldBy(clientID) || !now.Before(seat.HoldExpiry) {
			failed = append(failed, seatID)
			continue
		}

		s.stopTimerLocked(seatID)
		seat.State = entity.SeatReserved
		seat.Holder = ""
		seat.HoldExpiry = time.Time{}

		s.broadcastLocked(&response.SeatEvent{
			Event:  response.EventSeatReserved,
			Seat:   seatID,
			Holder: clientID,
		})
		confirmed = append(confirmed, seatID)
	}

	s.log.Info("Payment confirmation processed",
		zap.String("client_id", clientID),
		zap.Strings("confirmed", confirmed),
		zap.Strings("failed", failed),
	)
	return confirmed, failed
}

// expire is the hold-timer callback. The generation check makes a stale
// timer a no-op when the seat was released and re-locked in the meantime.
func (s *Session) expire(seatID string, gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	seat, ok := s.registry.Get(seatID)
	if !ok || seat.State != entity.SeatSelected || seat.Generation != gen {
		return
	}

	holder := seat.Holder
	s.releaseLocked(seat, response.ReasonTimeout)

	s.log.Info("Hold expired",
		zap.String("seat", seatID),
		zap.String("client_id", holder),
	)
}

// releaseLocked reverts a selected seat to available and broadcasts the
// release. Caller must hold s.mu.
func (s *Session) releaseLocked(seat *entity.Seat, reason string) {
	s.stopTimerLocked(seat.ID)
	seat.State = entity.SeatAvailable
	seat.Holder = ""
	seat.HoldExpiry = time.Time{}

	s.broadcastLocked(&response.SeatEvent{
		Event:  response.EventSeatReleased,
		Seat:   seat.ID,
		Reason: reason,
	})
}

func (s *Session) stopTimerLocked(seatID string) {
	if t, ok := s.timers[seatID]; ok {
		t.Stop()
		delete(s.timers, seatID)
	}
}

// broadcastLocked enqueues an event to every subscriber. A full or dead
// subscriber queue is logged and skipped; it never stalls the others.
// Caller must hold s.mu.
func (s *Session) broadcastLocked(v any) {
	for id, sub := range s.subs {
		if !sub.Send(v) {
			s.log.Warn("Dropping broadcast for slow client",
				zap.String("client_id", id),
			)
		}
	}
}

// snapshotLocked labels every seat from the viewer's perspective: another
// client's hold shows as blocked, the viewer's own as selected. Caller must
// hold s.mu.
func (s *Session) snapshotLocked(viewerID string) *response.SeatSnapshot {
	seats := make(map[string]string, s.registry.Len())
	var wheelchair []string
	for _, seat := range s.registry.Seats() {
		seats[seat.ID] = stateLabel(seat, viewerID)
		if seat.Wheelchair {
			wheelchair = append(wheelchair, seat.ID)
		}
	}

	return &response.SeatSnapshot{
		Type:            response.TypeSnapshot,
		Session:         s.id,
		ClientID:        viewerID,
		HoldTTLSeconds:  int(s.holdTTL / time.Second),
		Seats:           seats,
		WheelchairSeats: wheelchair,
	}
}

func stateLabel(seat *entity.Seat, viewerID string) string {
	switch seat.State {
	case entity.SeatSelected:
		if seat.Holder == viewerID {
			return response.StateSelected
		}
		return response.StateBlocked
	case entity.SeatReserved:
		return response.StateReserved
	default:
		return response.StateAvailable
	}
}

// reapable reports whether the session has been empty of clients and holds
// long enough for the hub sweeper to drop it. A session with reserved seats
// is never reaped: recreating it would put sold seats back on the market.
func (s *Session) reapable(idleTTL time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.subs) > 0 || s.emptySince.IsZero() {
		return false
	}
	if time.Since(s.emptySince) < idleTTL {
		return false
	}
	for _, seat := range s.registry.Seats() {
		if seat.State != entity.SeatAvailable {
			return false
		}
	}
	return true
}
