package domain

// SaveSection validates a section and marks it committed. On a validation
// failure the section stays unsaved and the error is returned to the
// caller for inline rendering.
func (a *Aggregate) SaveSection(id SectionID) error {
	if !id.Valid() {
		return ErrUnknownSection
	}
	if err := a.ValidateSection(id); err != nil {
		return err
	}
	if a.SavedSections == nil {
		a.SavedSections = make(map[SectionID]bool)
	}
	a.SavedSections[id] = true
	return nil
}

// ResetSection clears a section's entries back to the empty default and
// drops its saved flag. Reset cannot fail validation; there is nothing to
// validate on the way down.
func (a *Aggregate) ResetSection(id SectionID) error {
	if !id.Valid() {
		return ErrUnknownSection
	}
	delete(a.SavedSections, id)
	switch id {
	case SectionBlowRoom:
		a.BlowRoom = MachineShiftEntry{}
	case SectionCarding:
		a.Carding = emptyEntries(a.Counts.Carding)
	case SectionDrawing:
		a.Drawing = emptyEntries(a.Counts.Drawing)
	case SectionFraming:
		a.Framing = emptyEntries(a.Counts.Framing)
	case SectionSimplex:
		a.Simplex = emptyEntries(a.Counts.Simplex)
	case SectionSpinning:
		a.Spinning = emptySpinning(a.Counts.Spinning)
	case SectionAutoconer:
		a.Autoconer = emptyEntries(a.Counts.Autoconer)
	}
	return nil
}

// ResetAll resets every section's flag and contents in one pass.
func (a *Aggregate) ResetAll() {
	for _, id := range SectionOrder {
		_ = a.ResetSection(id)
	}
}

// Saved reports whether a section has been committed.
func (a *Aggregate) Saved(id SectionID) bool {
	return a.SavedSections[id]
}

// AllSaved reports whether every section has been committed, which makes
// the aggregate eligible for submission.
func (a *Aggregate) AllSaved() bool {
	return len(a.UnsavedSections()) == 0
}

// UnsavedSections returns the sections still pending commit, in process
// order.
func (a *Aggregate) UnsavedSections() []SectionID {
	var pending []SectionID
	for _, id := range SectionOrder {
		if !a.SavedSections[id] {
			pending = append(pending, id)
		}
	}
	return pending
}
