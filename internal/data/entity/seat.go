package entity

import "time"

type SeatState string

const (
	SeatAvailable SeatState = "available"
	SeatSelected  SeatState = "selected"
	SeatReserved  SeatState = "reserved"
)

// Seat is one auditorium seat inside a session's registry. Holder and
// HoldExpiry are set only while the seat is selected. Generation increments
// on every granted hold so a stale expiry timer can never release a newer
// hold on the same seat.
type Seat struct {
	ID         string // A01, B12, etc.
	Row        string // A, B, C, etc.
	Number     int    // 1..seats per row
	Wheelchair bool
	State      SeatState
	Holder     string // client ID, empty unless selected
	HoldExpiry time.Time
	Generation uint64
}

// HeldBy reports whether the seat is currently held by the given client.
func (s *Seat) HeldBy(clientID string) bool {
	return s.State == SeatSelected && s.Holder == clientID
}
