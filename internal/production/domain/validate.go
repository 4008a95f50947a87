package domain

import "strings"

// ValidateSection checks the shift/order invariant for every machine in a
// section: a positive quantity must reference a sales order, and spinning
// additionally needs a count and hank spec. The first violation is
// returned; a section with no positive quantities always passes.
func (a *Aggregate) ValidateSection(id SectionID) error {
	switch id {
	case SectionBlowRoom:
		return validateEntry(id, 0, a.BlowRoom)
	case SectionSpinning:
		for i, entry := range a.Spinning {
			if err := validateSpinningEntry(i, entry); err != nil {
				return err
			}
		}
		return nil
	default:
		entries, ok := a.multiEntries(id)
		if !ok {
			return ErrUnknownSection
		}
		for i, entry := range entries {
			if err := validateEntry(id, i, entry); err != nil {
				return err
			}
		}
		return nil
	}
}

// ValidateAll runs ValidateSection over every section in process order.
func (a *Aggregate) ValidateAll() error {
	for _, id := range SectionOrder {
		if err := a.ValidateSection(id); err != nil {
			return err
		}
	}
	return nil
}

func validateEntry(id SectionID, index int, entry MachineShiftEntry) error {
	for _, s := range Shifts {
		if entry.Quantity(s) <= 0 {
			continue
		}
		if strings.TrimSpace(entry.OrderID(s)) == "" {
			return &MissingOrderError{Section: id, MachineIndex: index, Shift: s}
		}
	}
	return nil
}

func validateSpinningEntry(index int, entry SpinningEntry) error {
	for _, s := range Shifts {
		if entry.Quantity(s) <= 0 {
			continue
		}
		if strings.TrimSpace(entry.OrderID(s)) == "" {
			return &MissingOrderError{Section: SectionSpinning, MachineIndex: index, Shift: s}
		}
		if strings.TrimSpace(entry.Count(s)) == "" {
			return &MissingSpecError{Section: SectionSpinning, MachineIndex: index, Shift: s, Field: "count"}
		}
		if strings.TrimSpace(entry.Hank(s)) == "" {
			return &MissingSpecError{Section: SectionSpinning, MachineIndex: index, Shift: s, Field: "hank"}
		}
	}
	return nil
}
