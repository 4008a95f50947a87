// Package domain holds the production-entry data model: per-machine shift
// quantities, the seven mill sections, the day aggregate with its staged
// save/reset lifecycle, and the flat wire representation used by the
// persistence layer.
package domain

// SectionID names one mill process stage.
type SectionID string

const (
	SectionBlowRoom  SectionID = "blow_room"
	SectionCarding   SectionID = "carding"
	SectionDrawing   SectionID = "drawing"
	SectionFraming   SectionID = "framing"
	SectionSimplex   SectionID = "simplex"
	SectionSpinning  SectionID = "spinning"
	SectionAutoconer SectionID = "autoconer"
)

// SectionOrder lists every section in process order.
var SectionOrder = []SectionID{
	SectionBlowRoom,
	SectionCarding,
	SectionDrawing,
	SectionFraming,
	SectionSimplex,
	SectionSpinning,
	SectionAutoconer,
}

// Valid reports whether id names a known section.
func (id SectionID) Valid() bool {
	switch id {
	case SectionBlowRoom, SectionCarding, SectionDrawing, SectionFraming,
		SectionSimplex, SectionSpinning, SectionAutoconer:
		return true
	default:
		return false
	}
}

// ParseSection resolves a route/payload section name.
func ParseSection(raw string) (SectionID, bool) {
	id := SectionID(raw)
	return id, id.Valid()
}

// MachineShiftEntry is one machine's production for a single day, split
// into three shifts. A positive quantity must carry the sales order it was
// produced against; a zero quantity may keep a stale order ref around so
// the value survives the quantity being edited back up.
type MachineShiftEntry struct {
	Machine string `json:"machine,omitempty"`

	Shift1 float64 `json:"shift1"`
	Shift2 float64 `json:"shift2"`
	Shift3 float64 `json:"shift3"`

	Shift1OrderID string `json:"shift1OrderId"`
	Shift2OrderID string `json:"shift2OrderId"`
	Shift3OrderID string `json:"shift3OrderId"`
}

// Quantity returns the produced kilograms for the shift.
func (e MachineShiftEntry) Quantity(s Shift) float64 {
	switch s {
	case Shift1:
		return e.Shift1
	case Shift2:
		return e.Shift2
	case Shift3:
		return e.Shift3
	default:
		return 0
	}
}

// OrderID returns the sales order the shift's quantity is logged against.
func (e MachineShiftEntry) OrderID(s Shift) string {
	switch s {
	case Shift1:
		return e.Shift1OrderID
	case Shift2:
		return e.Shift2OrderID
	case Shift3:
		return e.Shift3OrderID
	default:
		return ""
	}
}

// SetQuantity assigns the produced kilograms for the shift.
func (e *MachineShiftEntry) SetQuantity(s Shift, kg float64) {
	switch s {
	case Shift1:
		e.Shift1 = kg
	case Shift2:
		e.Shift2 = kg
	case Shift3:
		e.Shift3 = kg
	}
}

// SetOrderID assigns the sales order ref for the shift.
func (e *MachineShiftEntry) SetOrderID(s Shift, orderID string) {
	switch s {
	case Shift1:
		e.Shift1OrderID = orderID
	case Shift2:
		e.Shift2OrderID = orderID
	case Shift3:
		e.Shift3OrderID = orderID
	}
}

// SpinningEntry extends the shift record with the yarn count/hank spec a
// spinning frame produces against. The spec fields are machine metadata on
// the wire, so they travel even when the shift quantity is zero.
type SpinningEntry struct {
	MachineShiftEntry

	Shift1Count string `json:"shift1Count"`
	Shift2Count string `json:"shift2Count"`
	Shift3Count string `json:"shift3Count"`

	Shift1Hank string `json:"shift1Hank"`
	Shift2Hank string `json:"shift2Hank"`
	Shift3Hank string `json:"shift3Hank"`
}

// Count returns the yarn count spec for the shift.
func (e SpinningEntry) Count(s Shift) string {
	switch s {
	case Shift1:
		return e.Shift1Count
	case Shift2:
		return e.Shift2Count
	case Shift3:
		return e.Shift3Count
	default:
		return ""
	}
}

// Hank returns the hank spec for the shift.
func (e SpinningEntry) Hank(s Shift) string {
	switch s {
	case Shift1:
		return e.Shift1Hank
	case Shift2:
		return e.Shift2Hank
	case Shift3:
		return e.Shift3Hank
	default:
		return ""
	}
}

// SetCount assigns the yarn count spec for the shift.
func (e *SpinningEntry) SetCount(s Shift, count string) {
	switch s {
	case Shift1:
		e.Shift1Count = count
	case Shift2:
		e.Shift2Count = count
	case Shift3:
		e.Shift3Count = count
	}
}

// SetHank assigns the hank spec for the shift.
func (e *SpinningEntry) SetHank(s Shift, hank string) {
	switch s {
	case Shift1:
		e.Shift1Hank = hank
	case Shift2:
		e.Shift2Hank = hank
	case Shift3:
		e.Shift3Hank = hank
	}
}

// MachineCounts carries the mill's configured machine count per section.
// These are deployment constants: entry arrays of a different length are
// still accepted, the counts only shape freshly created aggregates.
type MachineCounts struct {
	Carding   int `json:"carding" mapstructure:"carding"`
	Drawing   int `json:"drawing" mapstructure:"drawing"`
	Framing   int `json:"framing" mapstructure:"framing"`
	Simplex   int `json:"simplex" mapstructure:"simplex"`
	Spinning  int `json:"spinning" mapstructure:"spinning"`
	Autoconer int `json:"autoconer" mapstructure:"autoconer"`
}

// DefaultMachineCounts matches the reference mill layout.
func DefaultMachineCounts() MachineCounts {
	return MachineCounts{
		Carding:   8,
		Drawing:   5,
		Framing:   6,
		Simplex:   6,
		Spinning:  13,
		Autoconer: 2,
	}
}

// For returns the configured machine count for a section. Blow room is a
// singleton stage.
func (c MachineCounts) For(id SectionID) int {
	switch id {
	case SectionBlowRoom:
		return 1
	case SectionCarding:
		return c.Carding
	case SectionDrawing:
		return c.Drawing
	case SectionFraming:
		return c.Framing
	case SectionSimplex:
		return c.Simplex
	case SectionSpinning:
		return c.Spinning
	case SectionAutoconer:
		return c.Autoconer
	default:
		return 0
	}
}

// Aggregate is the root entity for one calendar date of production entry.
// It is created empty (or hydrated from stored wire records), mutated
// through section-scoped setters, section-committed via SaveSection and
// finalized by the submit orchestration, which resets it back to empty.
type Aggregate struct {
	Date           string   `json:"date"`
	SelectedOrders []string `json:"selectedOrders"`

	BlowRoom  MachineShiftEntry   `json:"blowRoom"`
	Carding   []MachineShiftEntry `json:"carding"`
	Drawing   []MachineShiftEntry `json:"drawing"`
	Framing   []MachineShiftEntry `json:"framing"`
	Simplex   []MachineShiftEntry `json:"simplex"`
	Spinning  []SpinningEntry     `json:"spinning"`
	Autoconer []MachineShiftEntry `json:"autoconer"`

	SavedSections map[SectionID]bool `json:"savedSections"`
	Counts        MachineCounts      `json:"machineCounts"`
}

// NewAggregate builds an empty aggregate shaped by the mill configuration.
func NewAggregate(date string, counts MachineCounts) *Aggregate {
	a := &Aggregate{
		Date:          date,
		Counts:        counts,
		SavedSections: make(map[SectionID]bool),
	}
	a.resetContents()
	return a
}

func (a *Aggregate) resetContents() {
	a.BlowRoom = MachineShiftEntry{}
	a.Carding = emptyEntries(a.Counts.Carding)
	a.Drawing = emptyEntries(a.Counts.Drawing)
	a.Framing = emptyEntries(a.Counts.Framing)
	a.Simplex = emptyEntries(a.Counts.Simplex)
	a.Spinning = emptySpinning(a.Counts.Spinning)
	a.Autoconer = emptyEntries(a.Counts.Autoconer)
}

func emptyEntries(n int) []MachineShiftEntry {
	if n < 0 {
		n = 0
	}
	return make([]MachineShiftEntry, n)
}

func emptySpinning(n int) []SpinningEntry {
	if n < 0 {
		n = 0
	}
	return make([]SpinningEntry, n)
}

// SetSection replaces a section's entries wholesale. The blow room takes
// the first entry of the payload (it is a singleton stage); arrays whose
// length disagrees with the mill configuration are accepted as-is.
// Spinning has its own typed setter.
func (a *Aggregate) SetSection(id SectionID, entries []MachineShiftEntry) error {
	switch id {
	case SectionBlowRoom:
		if len(entries) > 0 {
			a.BlowRoom = entries[0]
		} else {
			a.BlowRoom = MachineShiftEntry{}
		}
	case SectionCarding:
		a.Carding = entries
	case SectionDrawing:
		a.Drawing = entries
	case SectionFraming:
		a.Framing = entries
	case SectionSimplex:
		a.Simplex = entries
	case SectionAutoconer:
		a.Autoconer = entries
	case SectionSpinning:
		return ErrSectionShape
	default:
		return ErrUnknownSection
	}
	return nil
}

// SetSpinning replaces the spinning section's entries wholesale.
func (a *Aggregate) SetSpinning(entries []SpinningEntry) {
	a.Spinning = entries
}

// SetSelectedOrders replaces the set of sales orders the day's production
// is being logged against.
func (a *Aggregate) SetSelectedOrders(orders []string) {
	a.SelectedOrders = orders
}

// multiEntries returns the plain-entry sections. Spinning and the blow
// room singleton are handled by their callers.
func (a *Aggregate) multiEntries(id SectionID) ([]MachineShiftEntry, bool) {
	switch id {
	case SectionCarding:
		return a.Carding, true
	case SectionDrawing:
		return a.Drawing, true
	case SectionFraming:
		return a.Framing, true
	case SectionSimplex:
		return a.Simplex, true
	case SectionAutoconer:
		return a.Autoconer, true
	default:
		return nil, false
	}
}

// Clone returns a deep copy of the aggregate.
func (a *Aggregate) Clone() *Aggregate {
	if a == nil {
		return nil
	}
	cp := *a
	cp.SelectedOrders = append([]string(nil), a.SelectedOrders...)
	cp.Carding = append([]MachineShiftEntry(nil), a.Carding...)
	cp.Drawing = append([]MachineShiftEntry(nil), a.Drawing...)
	cp.Framing = append([]MachineShiftEntry(nil), a.Framing...)
	cp.Simplex = append([]MachineShiftEntry(nil), a.Simplex...)
	cp.Spinning = append([]SpinningEntry(nil), a.Spinning...)
	cp.Autoconer = append([]MachineShiftEntry(nil), a.Autoconer...)
	cp.SavedSections = make(map[SectionID]bool, len(a.SavedSections))
	for id, saved := range a.SavedSections {
		cp.SavedSections[id] = saved
	}
	return &cp
}
