package domain

import "fmt"

// Shift identifies one of the three daily production shifts.
// The wire format carries shifts as letters (A/B/C); in memory they are
// a typed index so quantities and order refs are never looked up by
// assembled field names.
type Shift int

const (
	Shift1 Shift = iota + 1
	Shift2
	Shift3
)

// Shifts lists every shift in chronological order.
var Shifts = []Shift{Shift1, Shift2, Shift3}

// Letter returns the wire representation of the shift ("A", "B" or "C").
func (s Shift) Letter() string {
	switch s {
	case Shift1:
		return "A"
	case Shift2:
		return "B"
	case Shift3:
		return "C"
	default:
		return ""
	}
}

func (s Shift) String() string {
	return fmt.Sprintf("shift%d", int(s))
}

// ShiftFromLetter maps a wire shift letter to its in-memory index.
func ShiftFromLetter(letter string) (Shift, bool) {
	switch letter {
	case "A":
		return Shift1, true
	case "B":
		return Shift2, true
	case "C":
		return Shift3, true
	default:
		return 0, false
	}
}
