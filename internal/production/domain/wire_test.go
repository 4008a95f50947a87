package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntriesFromWire_GroupsByMachine(t *testing.T) {
	rows := []FlatRecord{
		{Machine: "3", Shift: "A", OrderID: "O1", ProductionKG: 10},
		{Machine: "1", Shift: "B", OrderID: "O2", ProductionKG: 20},
		{Machine: "3", Shift: "C", OrderID: "O1", ProductionKG: 5},
	}

	entries := EntriesFromWire(rows)
	require.Len(t, entries, 2)

	// first-appearance order
	assert.Equal(t, "3", entries[0].Machine)
	assert.Equal(t, 10.0, entries[0].Shift1)
	assert.Equal(t, "O1", entries[0].Shift1OrderID)
	assert.Equal(t, 5.0, entries[0].Shift3)

	assert.Equal(t, "1", entries[1].Machine)
	assert.Equal(t, 20.0, entries[1].Shift2)
	assert.Equal(t, "O2", entries[1].Shift2OrderID)
}

func TestEntriesFromWire_DuplicateRowLastWins(t *testing.T) {
	rows := []FlatRecord{
		{Machine: "1", Shift: "A", OrderID: "O1", ProductionKG: 10},
		{Machine: "1", Shift: "A", OrderID: "O2", ProductionKG: 99},
	}

	entries := EntriesFromWire(rows)
	require.Len(t, entries, 1)
	assert.Equal(t, 99.0, entries[0].Shift1)
	assert.Equal(t, "O2", entries[0].Shift1OrderID)
}

func TestEntriesFromWire_UnknownShiftLetterDropped(t *testing.T) {
	rows := []FlatRecord{
		{Machine: "1", Shift: "D", OrderID: "O1", ProductionKG: 10},
	}
	assert.Empty(t, EntriesFromWire(rows))
}

func TestEntriesRoundTrip(t *testing.T) {
	rows := []FlatRecord{
		{Machine: "1", Shift: "A", OrderID: "O1", ProductionKG: 12},
		{Machine: "1", Shift: "C", OrderID: "O2", ProductionKG: 7},
		{Machine: "2", Shift: "B", OrderID: "O1", ProductionKG: 30},
	}

	section := EntriesFromWire(rows)
	again := EntriesFromWire(EntriesToWire(section))
	assert.Equal(t, section, again)
}

func TestSpinningRoundTrip_IncludesZeroQuantityMetadata(t *testing.T) {
	rows := []FlatRecord{
		{Machine: "1", Shift: "A", OrderID: "O1", ProductionKG: 20, Count: "30s", Hank: "4.2"},
		{Machine: "1", Shift: "B", OrderID: "", ProductionKG: 0, Count: "30s", Hank: "4.2"},
		{Machine: "1", Shift: "C", OrderID: "", ProductionKG: 0, Count: "30s", Hank: "4.2"},
		{Machine: "2", Shift: "A", OrderID: "", ProductionKG: 0, Count: "40s", Hank: "5.0"},
		{Machine: "2", Shift: "B", OrderID: "", ProductionKG: 0, Count: "40s", Hank: "5.0"},
		{Machine: "2", Shift: "C", OrderID: "", ProductionKG: 0, Count: "40s", Hank: "5.0"},
	}

	section := SpinningFromWire(rows)
	require.Len(t, section, 2)

	out := SpinningToWire(section)
	// spinning emits every shift, zero quantity or not
	require.Len(t, out, 6)
	assert.Equal(t, section, SpinningFromWire(out))
}

func TestEntriesToWire_SkipsZeroShifts(t *testing.T) {
	entries := []MachineShiftEntry{
		{Shift1: 100, Shift1OrderID: "O1"},
		{},
	}

	rows := EntriesToWire(entries)
	require.Len(t, rows, 1)
	assert.Equal(t, FlatRecord{Machine: "1", Shift: "A", OrderID: "O1", ProductionKG: 100}, rows[0])
}

func TestSingletonFromWire(t *testing.T) {
	rows := []FlatRecord{
		{Machine: "blowroom", Shift: "A", OrderID: "O1", ProductionKG: 100},
		{Machine: "blowroom", Shift: "C", OrderID: "O2", ProductionKG: 40},
	}

	entry := SingletonFromWire(rows)
	assert.Equal(t, "blowroom", entry.Machine)
	assert.Equal(t, 100.0, entry.Shift1)
	assert.Equal(t, "O2", entry.Shift3OrderID)
	assert.Zero(t, entry.Shift2)
}

func TestFlatten_AssemblesEverySection(t *testing.T) {
	a := NewAggregate("2024-03-01", DefaultMachineCounts())
	a.SetSelectedOrders([]string{"O1"})
	a.BlowRoom = MachineShiftEntry{Shift1: 100, Shift1OrderID: "O1"}
	a.Carding[0] = MachineShiftEntry{Shift2: 50, Shift2OrderID: "O1"}
	a.Spinning[0].Shift1 = 20
	a.Spinning[0].Shift1OrderID = "O1"
	a.Spinning[0].Shift1Count = "30s"
	a.Spinning[0].Shift1Hank = "4.2"

	req := a.Flatten()
	assert.Equal(t, "2024-03-01", req.Date)
	assert.Equal(t, []string{"O1"}, req.SelectedOrders)
	require.Len(t, req.BlowRoom, 1)
	assert.Equal(t, "A", req.BlowRoom[0].Shift)
	assert.Equal(t, 100.0, req.BlowRoom[0].ProductionKG)
	require.Len(t, req.Carding, 1)
	assert.Equal(t, "1", req.Carding[0].Machine)
	// 13 spinning machines, 3 rows each, regardless of quantity
	assert.Len(t, req.Spinning, 39)
	assert.Equal(t, 170.0, req.Total)
}

func TestHydrate(t *testing.T) {
	a := NewAggregate("2024-03-01", DefaultMachineCounts())
	a.Hydrate(&DayProduction{
		Date:           "2024-03-01",
		SelectedOrders: []string{"O1", "O2"},
		Sections: map[SectionID][]FlatRecord{
			SectionBlowRoom: {{Machine: "blowroom", Shift: "A", OrderID: "O1", ProductionKG: 80}},
			SectionSpinning: {{Machine: "1", Shift: "B", OrderID: "O2", ProductionKG: 25, Count: "30s", Hank: "4.2"}},
		},
	})

	assert.Equal(t, []string{"O1", "O2"}, a.SelectedOrders)
	assert.Equal(t, 80.0, a.BlowRoom.Shift1)
	require.Len(t, a.Spinning, 1)
	assert.Equal(t, "30s", a.Spinning[0].Shift2Count)
	assert.False(t, a.Saved(SectionBlowRoom))
}
