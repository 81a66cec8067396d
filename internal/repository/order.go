package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const popularProducts = `
SELECT p.id, p.name, sum(oi.quantity)::bigint AS total_quantity, sum(oi.quantity * oi.price) AS total_revenue
FROM orders_orderitem oi
JOIN orders_order o ON o.id = oi.order_id
JOIN catalog_product p ON p.id = oi.product_id
WHERE o.created_at >= $1 AND o.status <> 'cancelled'
GROUP BY p.id, p.name
ORDER BY total_quantity DESC, p.name
LIMIT $2
`

type PopularProductsParams struct {
	Since time.Time
	Limit int32
}

func (q *Queries) PopularProducts(
	c context.Context,
	arg PopularProductsParams,
) ([]PopularProductRow, error) {
	rows, err := q.db.Query(c, popularProducts, arg.Since, arg.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	products := []PopularProductRow{}
	for rows.Next() {
		var row PopularProductRow
		err := rows.Scan(&row.ProductID, &row.Name, &row.TotalQuantity, &row.TotalRevenue)
		if err != nil {
			return nil, err
		}
		products = append(products, row)
	}
	return products, rows.Err()
}

const salesStats = `
SELECT count(DISTINCT o.id) AS orders_count,
       coalesce(sum(oi.quantity), 0)::bigint AS items_sold,
       coalesce(sum(oi.quantity * oi.price), 0) AS revenue
FROM orders_order o
LEFT JOIN orders_orderitem oi ON oi.order_id = o.id
WHERE o.created_at >= $1 AND o.created_at < $2 AND o.status <> 'cancelled'
`

type SalesStatsParams struct {
	From time.Time
	To   time.Time
}

func (q *Queries) SalesStats(c context.Context, arg SalesStatsParams) (SalesStatsRow, error) {
	row := q.db.QueryRow(c, salesStats, arg.From, arg.To)
	var stats SalesStatsRow
	err := row.Scan(&stats.OrdersCount, &stats.ItemsSold, &stats.Revenue)
	return stats, err
}

const insertOrder = `
INSERT INTO orders_order (user_id, status, total_amount, created_at)
VALUES ($1, $2, $3, $4)
RETURNING id, user_id, status, total_amount, created_at
`

type InsertOrderParams struct {
	UserID      *uuid.UUID
	Status      string
	TotalAmount pgtype.Numeric
	CreatedAt   time.Time
}

func (q *Queries) InsertOrder(c context.Context, arg InsertOrderParams) (Order, error) {
	row := q.db.QueryRow(c, insertOrder, arg.UserID, arg.Status, arg.TotalAmount, arg.CreatedAt)
	var order Order
	err := row.Scan(&order.ID, &order.UserID, &order.Status, &order.TotalAmount, &order.CreatedAt)
	return order, err
}

const insertOrderItem = `
INSERT INTO orders_orderitem (order_id, product_id, quantity, price)
VALUES ($1, $2, $3, $4)
RETURNING id, order_id, product_id, quantity, price
`

type InsertOrderItemParams struct {
	OrderID   uuid.UUID
	ProductID uuid.UUID
	Quantity  int32
	Price     pgtype.Numeric
}

func (q *Queries) InsertOrderItem(c context.Context, arg InsertOrderItemParams) (OrderItem, error) {
	row := q.db.QueryRow(c, insertOrderItem, arg.OrderID, arg.ProductID, arg.Quantity, arg.Price)
	var item OrderItem
	err := row.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Quantity, &item.Price)
	return item, err
}
