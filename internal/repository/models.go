package repository

import (
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type Cart struct {
	ID        uuid.UUID
	OwnerKey  string
	CreatedAt pgtype.Timestamptz
	UpdatedAt pgtype.Timestamptz
}

type CartItem struct {
	ID        uuid.UUID
	CartID    uuid.UUID
	ProductID uuid.UUID
	Quantity  int32
	UnitPrice pgtype.Numeric
	CreatedAt pgtype.Timestamptz
}

type CartItemWithOwnerRow struct {
	CartItem
	OwnerKey string
}

type Product struct {
	ID           uuid.UUID
	Name         string
	Slug         string
	Price        pgtype.Numeric
	OldPrice     pgtype.Numeric
	Rating       pgtype.Numeric
	ReviewsCount int32
	CategoryID   *uuid.UUID
	BrandID      *uuid.UUID
	IsActive     bool
	CreatedAt    pgtype.Timestamptz
	UpdatedAt    pgtype.Timestamptz
}

type Review struct {
	ID         uuid.UUID
	ProductID  uuid.UUID
	Rating     int32
	IsApproved bool
	CreatedAt  pgtype.Timestamptz
}

type SearchSuggestionRow struct {
	ID     uuid.UUID
	Name   string
	Slug   string
	Price  pgtype.Numeric
	Rating pgtype.Numeric
}

type Order struct {
	ID          uuid.UUID
	UserID      *uuid.UUID
	Status      string
	TotalAmount pgtype.Numeric
	CreatedAt   pgtype.Timestamptz
}

type OrderItem struct {
	ID        uuid.UUID
	OrderID   uuid.UUID
	ProductID uuid.UUID
	Quantity  int32
	Price     pgtype.Numeric
}

type PopularProductRow struct {
	ProductID     uuid.UUID
	Name          string
	TotalQuantity int64
	TotalRevenue  pgtype.Numeric
}

type SalesStatsRow struct {
	OrdersCount int64
	ItemsSold   int64
	Revenue     pgtype.Numeric
}
