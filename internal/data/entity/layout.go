package entity

import "fmt"

// Layout describes the fixed seat arrangement of an auditorium. Every
// session created from it starts with the same seats, all available.
type Layout struct {
	Rows        []string
	SeatsPerRow int
	Wheelchair  map[string]bool
}

// NewLayout builds a layout from row letters, seats per row and the set of
// wheelchair-accessible seat IDs.
func NewLayout(rows []string, seatsPerRow int, wheelchair []string) Layout {
	wc := make(map[string]bool, len(wheelchair))
	for _, id := range wheelchair {
		wc[id] = true
	}
	return Layout{
		Rows:        rows,
		SeatsPerRow: seatsPerRow,
		Wheelchair:  wc,
	}
}

// DefaultLayout matches the original auditorium: rows J down to A with 20
// seats each, wheelchair spots on the front row corners.
func DefaultLayout() Layout {
	return NewLayout(
		[]string{"J", "I", "H", "G", "F", "E", "D", "C", "B", "A"},
		20,
		[]string{"A01", "A02", "A17", "A18"},
	)
}

// SeatID formats a row letter and seat number into the wire identifier,
// e.g. ("A", 1) -> "A01".
func (l Layout) SeatID(row string, number int) string {
	return fmt.Sprintf("%s%02d", row, number)
}

// SeatIDs returns every seat identifier in row-major order.
func (l Layout) SeatIDs() []string {
	ids := make([]string, 0, len(l.Rows)*l.SeatsPerRow)
	for _, row := range l.Rows {
		for n := 1; n <= l.SeatsPerRow; n++ {
			ids = append(ids, l.SeatID(row, n))
		}
	}
	return ids
}

// Size returns the total number of seats.
func (l Layout) Size() int {
	return len(l.Rows) * l.SeatsPerRow
}
