package registry

import (
	"github.com/marczlle/letterboxd-v2/internal/data/entity"
)

// Registry is the in-memory seat store for one session. It is a pure state
// container: it knows nothing about holds, expiry or broadcasting. Callers
// (the session that owns it) must serialize access.
type Registry struct {
	seats map[string]*entity.Seat
	order []string // row-major, for deterministic snapshots
}

// New creates a registry with every seat of the layout in the available
// state.
func New(layout entity.Layout) *Registry {
	r := &Registry{
		seats: make(map[string]*entity.Seat, layout.Size()),
		order: layout.SeatIDs(),
	}
	for _, row := range layout.Rows {
		for n := 1; n <= layout.SeatsPerRow; n++ {
			id := layout.SeatID(row, n)
			r.seats[id] = &entity.Seat{
				ID:         id,
				Row:        row,
				Number:     n,
				Wheelchair: layout.Wheelchair[id],
				State:      entity.SeatAvailable,
			}
		}
	}
	return r
}

// Get returns the seat with the given ID, or false if the ID is not part of
// the layout. Callers mutate seats through the returned pointer.
func (r *Registry) Get(seatID string) (*entity.Seat, bool) {
	seat, ok := r.seats[seatID]
	return seat, ok
}

// Seats returns all seats in row-major order.
func (r *Registry) Seats() []*entity.Seat {
	seats := make([]*entity.Seat, 0, len(r.order))
	for _, id := range r.order {
		seats = append(seats, r.seats[id])
	}
	return seats
}

// HeldBy returns the seats currently held by the given client.
func (r *Registry) HeldBy(clientID string) []*entity.Seat {
	var held []*entity.Seat
	for _, id := range r.order {
		if seat := r.seats[id]; seat.HeldBy(clientID) {
			held = append(held, seat)
		}
	}
	return held
}

// Len returns the number of seats in the registry.
func (r *Registry) Len() int {
	return len(r.seats)
}
