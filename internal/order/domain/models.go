// Package domain contains the sales order model the production entry flow
// logs quantities against.
package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

// Order is a stored sales order. Count and hank carry the yarn spec the
// order was placed for, used to pre-fill spinning entries.
type Order struct {
	ID          snowflake.ID `gorm:"primaryKey"`
	OrgID       snowflake.ID `gorm:"not null;index"`
	OrderNumber string       `gorm:"type:text;not null"`
	ShadeName   string       `gorm:"type:text"`
	Realisation float64      `gorm:"not null"`
	Count       string       `gorm:"type:text"`
	Hank        string       `gorm:"type:text"`
	Status      string       `gorm:"type:text;not null;default:'open'"`
	CreatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Order) TableName() string { return "orders" }

const (
	StatusOpen   = "open"
	StatusClosed = "closed"
)

// Shade is the nested shade shape of the realisation listing.
type Shade struct {
	ShadeName string `json:"shade_name"`
}

// OrderWithRealisation is the listing shape the entry flow consumes.
type OrderWithRealisation struct {
	ID          string  `json:"id"`
	OrderNumber string  `json:"order_number"`
	Shade       Shade   `json:"shade"`
	Realisation float64 `json:"realisation"`
	Count       string  `json:"count,omitempty"`
	Hank        string  `json:"hank,omitempty"`
}

type CreateOrderRequest struct {
	OrderNumber string  `json:"order_number"`
	ShadeName   string  `json:"shade_name"`
	Realisation float64 `json:"realisation"`
	Count       string  `json:"count"`
	Hank        string  `json:"hank"`
}

type Service interface {
	Create(ctx context.Context, req CreateOrderRequest) (*Order, error)
	ListWithRealisation(ctx context.Context) ([]OrderWithRealisation, error)
}

var (
	ErrInvalidOrganization = errors.New("invalid_organization")
	ErrInvalidOrderNumber  = errors.New("invalid_order_number")
	ErrInvalidRealisation  = errors.New("invalid_realisation")
)
