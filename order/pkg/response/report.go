package response

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PopularProduct struct {
	ProductId     uuid.UUID       `json:"product_id"`
	Name          string          `json:"name"`
	TotalQuantity int64           `json:"total_quantity"`
	TotalRevenue  decimal.Decimal `json:"total_revenue"`
}

type SalesStats struct {
	From        time.Time       `json:"from"`
	To          time.Time       `json:"to"`
	OrdersCount int64           `json:"orders_count"`
	ItemsSold   int64           `json:"items_sold"`
	Revenue     decimal.Decimal `json:"revenue"`
}
