package domain

import "math"

// Total recomputes the day total from scratch: the sum of every shift
// quantity across every section and machine. It is never cached; callers
// read it after any mutation. Non-finite quantities count as zero.
func (a *Aggregate) Total() float64 {
	total := entryTotal(a.BlowRoom)
	for _, entries := range [][]MachineShiftEntry{a.Carding, a.Drawing, a.Framing, a.Simplex, a.Autoconer} {
		for _, e := range entries {
			total += entryTotal(e)
		}
	}
	for _, e := range a.Spinning {
		total += entryTotal(e.MachineShiftEntry)
	}
	return total
}

func entryTotal(e MachineShiftEntry) float64 {
	var total float64
	for _, s := range Shifts {
		total += sanitizeKG(e.Quantity(s))
	}
	return total
}

func sanitizeKG(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
