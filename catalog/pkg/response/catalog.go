package response

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Product struct {
	ID           uuid.UUID       `json:"id"`
	Name         string          `json:"name"`
	Slug         string          `json:"slug"`
	Price        decimal.Decimal `json:"price"`
	OldPrice     decimal.Decimal `json:"old_price"`
	Rating       decimal.Decimal `json:"rating"`
	ReviewsCount int32           `json:"reviews_count"`
	IsActive     bool            `json:"is_active"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

type Suggestion struct {
	ID     uuid.UUID       `json:"id"`
	Name   string          `json:"name"`
	Slug   string          `json:"slug"`
	Price  decimal.Decimal `json:"price"`
	Rating decimal.Decimal `json:"rating"`
}

// Toggle reports whether a wishlist or compare toggle added or removed
// the product, plus the owner's item count after the toggle.
type Toggle struct {
	Action string `json:"action"`
	Count  int64  `json:"count"`
}

type Rating struct {
	ProductId    uuid.UUID       `json:"product_id"`
	Rating       decimal.Decimal `json:"rating"`
	ReviewsCount int32           `json:"reviews_count"`
}
