package response

// Seat state labels as shown on the wire. Blocked and pending never exist
// server-side: blocked is how another client's selected seat is labeled in a
// snapshot, pending is the client's own optimistic state before the server
// answers.
const (
	StateAvailable = "available"
	StateSelected  = "selected"
	StateBlocked   = "blocked"
	StateReserved  = "reserved"
)

// Broadcast event names.
const (
	EventSeatLocked   = "seat_locked"
	EventSeatReleased = "seat_released"
	EventSeatReserved = "seat_reserved"
)

// Release reasons carried on seat_released broadcasts.
const (
	ReasonManual     = "manual"
	ReasonTimeout    = "timeout"
	ReasonDisconnect = "disconnect"
)

// Unicast and payment statuses.
const (
	StatusOK      = "ok"
	StatusPartial = "partial"
	StatusError   = "error"
)

// Typed outbound message discriminators.
const (
	TypeSnapshot            = "snapshot"
	TypeConfirmationPayment = "confirmation_payment"
)

// ActionResult is the unicast reply to the acting client.
type ActionResult struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Seat    string `json:"seat,omitempty"`
}

// SeatEvent is broadcast to every client of a session after a committed
// state transition. Clients compare Holder against their own ID to decide
// between the selected and blocked renderings.
type SeatEvent struct {
	Event  string `json:"event"`
	Seat   string `json:"seat"`
	Holder string `json:"holder,omitempty"`
	Reason string `json:"reason,omitempty"`
}

// SeatSnapshot is the first message a client receives after connecting: the
// assigned client ID plus the full seat map as of acceptance time.
type SeatSnapshot struct {
	Type            string            `json:"type"`
	Session         string            `json:"session"`
	ClientID        string            `json:"client_id"`
	HoldTTLSeconds  int               `json:"hold_ttl_seconds"`
	Seats           map[string]string `json:"seats"`
	WheelchairSeats []string          `json:"wheelchair_seats,omitempty"`
}

// PaymentResult partitions a confirmation request into confirmed and failed
// seats. Partial success is a first-class outcome, not an error.
type PaymentResult struct {
	Type           string   `json:"type"`
	Status         string   `json:"status"`
	Message        string   `json:"message"`
	ConfirmedSeats []string `json:"confirmed_seats"`
	FailedSeats    []string `json:"failed_seats"`
}
