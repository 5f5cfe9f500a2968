package request

// Action values accepted on the reservation websocket.
const (
	ActionLock           = "lock"
	ActionRelease        = "release"
	ActionConfirmPayment = "confirm_payment"
)

// Envelope carries only the action discriminator; the gateway peeks at it
// before decoding the full message.
type Envelope struct {
	Action string `json:"action"`
}

type LockSeatRequest struct {
	Session  string `json:"session" validate:"required"`
	Seat     string `json:"seat" validate:"required,seatid"`
	ClientID string `json:"client_id" validate:"required"`
}

type ReleaseSeatRequest struct {
	Session  string `json:"session" validate:"required"`
	Seat     string `json:"seat" validate:"required,seatid"`
	ClientID string `json:"client_id" validate:"required"`
}

type Payer struct {
	Name     string `json:"name" validate:"required,min=2"`
	Document string `json:"document" validate:"required,min=4"`
	Contact  string `json:"contact" validate:"required,min=5"`
}

type ConfirmPaymentRequest struct {
	Session  string   `json:"session" validate:"required"`
	Seats    []string `json:"seats" validate:"required,min=1,dive,seatid"`
	ClientID string   `json:"client_id" validate:"required"`
	Payer    Payer    `json:"payer" validate:"required"`
}
