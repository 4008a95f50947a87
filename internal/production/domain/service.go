package domain

import (
	"context"
	"time"
)

// DayProduction is a stored day read back in wire form, per section.
type DayProduction struct {
	Date           string                     `json:"date"`
	SelectedOrders []string                   `json:"selectedOrders"`
	Sections       map[SectionID][]FlatRecord `json:"sections"`
	Total          float64                    `json:"total"`
}

// DaySummary is a day header for listings.
type DaySummary struct {
	ID        string    `json:"id"`
	Date      string    `json:"date"`
	TotalKG   float64   `json:"total_kg"`
	CreatedAt time.Time `json:"created_at"`
}

type ListDaysRequest struct {
	Limit int `json:"limit"`
}

// Service is the persistence collaborator for production days. A write is
// atomic from the caller's perspective: the day header and every section
// row land in one transaction or not at all.
type Service interface {
	// GetByDate returns the stored day, or nil when none exists for the
	// date. Absence is a valid non-error state meaning "new entry".
	GetByDate(ctx context.Context, date string) (*DayProduction, error)
	Create(ctx context.Context, req SubmitRequest) (*ProductionDay, error)
	ListDays(ctx context.Context, req ListDaysRequest) ([]DaySummary, error)
}
