package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is owned by the product service. UserID and ImageIDs are held by value:
// neither the owner nor the referenced media are checked for existence, and media
// deletion does not prune ImageIDs.
type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
	UserID      string          `json:"userId"`
	ImageIDs    []string        `json:"imageIds"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}
