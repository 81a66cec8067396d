package response

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartSummary is the authoritative view of a cart at a point in time. Every
// successful mutation returns a fresh one so callers never need a second
// read; Count and Total are always derived from the lines, never stored.
type CartSummary struct {
	CartId uuid.UUID       `json:"cart_id"`
	Lines  []CartLine      `json:"lines"`
	Count  int32           `json:"count"`
	Total  decimal.Decimal `json:"total"`
}

type CartLine struct {
	EntryId   uuid.UUID       `json:"entry_id"`
	ProductId uuid.UUID       `json:"product_id"`
	Quantity  int32           `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	LineTotal decimal.Decimal `json:"line_total"`
	CreatedAt time.Time       `json:"created_at"`
}
