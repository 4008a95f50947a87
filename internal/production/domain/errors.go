package domain

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownSection      = errors.New("unknown_section")
	ErrSectionShape        = errors.New("invalid_section_shape")
	ErrInvalidDate         = errors.New("invalid_date")
	ErrInvalidOrganization = errors.New("invalid_organization")
	ErrDayExists           = errors.New("production_day_exists")
)

// MissingOrderError reports a shift with a positive quantity but no sales
// order reference. It blocks section save and submit.
type MissingOrderError struct {
	Section      SectionID `json:"section"`
	MachineIndex int       `json:"machineIndex"`
	Shift        Shift     `json:"shift"`
}

func (e *MissingOrderError) Error() string {
	return fmt.Sprintf("missing_order_for_quantity: %s machine %d %s", e.Section, e.MachineIndex, e.Shift)
}

// MissingSpecError reports a spinning shift with a positive quantity but a
// blank count or hank spec.
type MissingSpecError struct {
	Section      SectionID `json:"section"`
	MachineIndex int       `json:"machineIndex"`
	Shift        Shift     `json:"shift"`
	Field        string    `json:"field"`
}

func (e *MissingSpecError) Error() string {
	return fmt.Sprintf("missing_spec_for_quantity: %s machine %d %s %s", e.Section, e.MachineIndex, e.Shift, e.Field)
}
