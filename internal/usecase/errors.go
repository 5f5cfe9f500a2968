package usecase

import "errors"

// Sentinel errors returned by reservation operations. The gateway maps them
// to unicast error payloads; none of them mutate shared state.
var (
	ErrUnknownSession  = errors.New("unknown session")
	ErrUnknownSeat     = errors.New("unknown seat")
	ErrSeatUnavailable = errors.New("seat unavailable")
	ErrNotHolder       = errors.New("seat not held by requester")
)
