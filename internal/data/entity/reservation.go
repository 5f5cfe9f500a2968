package entity

import (
	"time"

	"github.com/google/uuid"
)

// Reservation is the archive record written after a seat is permanently
// reserved. The coordinator itself only needs the in-memory seat state; the
// archive exists so box-office tooling can read completed sales.
type Reservation struct {
	ID            uuid.UUID `db:"id"`
	Code          string    `db:"code"` // RESV-YYYYMMDD-HHMMSS-RANDOM
	SessionID     string    `db:"session_id"`
	SeatID        string    `db:"seat_id"`
	ClientID      string    `db:"client_id"`
	PayerName     string    `db:"payer_name"`
	PayerDocument string    `db:"payer_document"`
	PayerContact  string    `db:"payer_contact"`
	CreatedAt     time.Time `db:"created_at"`
}
