package domain

import "strconv"

// FlatRecord is the external flat representation of one machine-shift
// slot: snake_case on the wire, one row per (machine, shift letter).
// Count and hank only travel for spinning machines.
type FlatRecord struct {
	Machine      string  `json:"machine"`
	Shift        string  `json:"shift"`
	OrderID      string  `json:"order_id"`
	ProductionKG float64 `json:"production_kg"`
	Count        string  `json:"count,omitempty"`
	Hank         string  `json:"hank,omitempty"`
}

// EntriesFromWire groups flat rows by machine, in first-appearance order,
// and assigns each row into the shift slot matching its letter. Machines
// absent from the input are absent from the result; duplicate
// (machine, shift) rows resolve last-one-wins. Rows with an unknown shift
// letter are dropped.
func EntriesFromWire(rows []FlatRecord) []MachineShiftEntry {
	var out []MachineShiftEntry
	index := make(map[string]int)
	for _, row := range rows {
		shift, ok := ShiftFromLetter(row.Shift)
		if !ok {
			continue
		}
		i, seen := index[row.Machine]
		if !seen {
			out = append(out, MachineShiftEntry{Machine: row.Machine})
			i = len(out) - 1
			index[row.Machine] = i
		}
		out[i].SetQuantity(shift, row.ProductionKG)
		out[i].SetOrderID(shift, row.OrderID)
	}
	return out
}

// SingletonFromWire folds every row into one entry, for stages with a
// single machine (blow room).
func SingletonFromWire(rows []FlatRecord) MachineShiftEntry {
	var entry MachineShiftEntry
	for _, row := range rows {
		shift, ok := ShiftFromLetter(row.Shift)
		if !ok {
			continue
		}
		if entry.Machine == "" {
			entry.Machine = row.Machine
		}
		entry.SetQuantity(shift, row.ProductionKG)
		entry.SetOrderID(shift, row.OrderID)
	}
	return entry
}

// SpinningFromWire is EntriesFromWire plus the per-shift count/hank spec.
func SpinningFromWire(rows []FlatRecord) []SpinningEntry {
	var out []SpinningEntry
	index := make(map[string]int)
	for _, row := range rows {
		shift, ok := ShiftFromLetter(row.Shift)
		if !ok {
			continue
		}
		i, seen := index[row.Machine]
		if !seen {
			out = append(out, SpinningEntry{MachineShiftEntry: MachineShiftEntry{Machine: row.Machine}})
			i = len(out) - 1
			index[row.Machine] = i
		}
		out[i].SetQuantity(shift, row.ProductionKG)
		out[i].SetOrderID(shift, row.OrderID)
		out[i].SetCount(shift, row.Count)
		out[i].SetHank(shift, row.Hank)
	}
	return out
}

// EntriesToWire flattens entries to rows, emitting only shifts with a
// positive quantity. Entries without a machine name fall back to their
// 1-based position.
func EntriesToWire(entries []MachineShiftEntry) []FlatRecord {
	var rows []FlatRecord
	for i, e := range entries {
		machine := machineName(e.Machine, i)
		for _, s := range Shifts {
			kg := sanitizeKG(e.Quantity(s))
			if kg <= 0 {
				continue
			}
			rows = append(rows, FlatRecord{
				Machine:      machine,
				Shift:        s.Letter(),
				OrderID:      e.OrderID(s),
				ProductionKG: kg,
			})
		}
	}
	return rows
}

// SpinningToWire flattens spinning entries unconditionally: count/hank are
// machine metadata on the wire, so every shift produces a row even at zero
// quantity.
func SpinningToWire(entries []SpinningEntry) []FlatRecord {
	var rows []FlatRecord
	for i, e := range entries {
		machine := machineName(e.Machine, i)
		for _, s := range Shifts {
			rows = append(rows, FlatRecord{
				Machine:      machine,
				Shift:        s.Letter(),
				OrderID:      e.OrderID(s),
				ProductionKG: sanitizeKG(e.Quantity(s)),
				Count:        e.Count(s),
				Hank:         e.Hank(s),
			})
		}
	}
	return rows
}

func machineName(machine string, index int) string {
	if machine != "" {
		return machine
	}
	return strconv.Itoa(index + 1)
}

// SubmitRequest is the single write payload assembled from a fully saved
// aggregate.
type SubmitRequest struct {
	Date           string       `json:"date"`
	SelectedOrders []string     `json:"selectedOrders"`
	BlowRoom       []FlatRecord `json:"blowRoom"`
	Carding        []FlatRecord `json:"carding"`
	Drawing        []FlatRecord `json:"drawing"`
	Framing        []FlatRecord `json:"framing"`
	Simplex        []FlatRecord `json:"simplex"`
	Spinning       []FlatRecord `json:"spinning"`
	Autoconer      []FlatRecord `json:"autoconer"`
	Total          float64      `json:"total"`
}

// Flatten maps every section to its wire rows and stamps the recomputed
// total. It does not validate; submit orchestration does that first.
func (a *Aggregate) Flatten() SubmitRequest {
	return SubmitRequest{
		Date:           a.Date,
		SelectedOrders: append([]string(nil), a.SelectedOrders...),
		BlowRoom:       EntriesToWire([]MachineShiftEntry{a.BlowRoom}),
		Carding:        EntriesToWire(a.Carding),
		Drawing:        EntriesToWire(a.Drawing),
		Framing:        EntriesToWire(a.Framing),
		Simplex:        EntriesToWire(a.Simplex),
		Spinning:       SpinningToWire(a.Spinning),
		Autoconer:      EntriesToWire(a.Autoconer),
		Total:          a.Total(),
	}
}

// SectionRows pairs a section with its flattened rows.
type SectionRows struct {
	Section SectionID
	Rows    []FlatRecord
}

// Sections returns the request's rows grouped per section, in process
// order.
func (r SubmitRequest) Sections() []SectionRows {
	return []SectionRows{
		{SectionBlowRoom, r.BlowRoom},
		{SectionCarding, r.Carding},
		{SectionDrawing, r.Drawing},
		{SectionFraming, r.Framing},
		{SectionSimplex, r.Simplex},
		{SectionSpinning, r.Spinning},
		{SectionAutoconer, r.Autoconer},
	}
}

// Hydrate replaces the aggregate's sections and selected orders from
// stored wire records. Hydrated sections start unsaved; the operator
// reviews and re-commits them.
func (a *Aggregate) Hydrate(day *DayProduction) {
	if day == nil {
		return
	}
	if len(day.SelectedOrders) > 0 {
		a.SelectedOrders = append([]string(nil), day.SelectedOrders...)
	}
	for id, rows := range day.Sections {
		if len(rows) == 0 {
			continue
		}
		switch id {
		case SectionBlowRoom:
			a.BlowRoom = SingletonFromWire(rows)
		case SectionSpinning:
			a.Spinning = SpinningFromWire(rows)
		case SectionCarding, SectionDrawing, SectionFraming, SectionSimplex, SectionAutoconer:
			_ = a.SetSection(id, EntriesFromWire(rows))
		}
	}
}
