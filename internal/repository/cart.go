package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const upsertCart = `
INSERT INTO cart_cart (owner_key)
VALUES ($1)
ON CONFLICT (owner_key) DO UPDATE SET updated_at = now()
RETURNING id, owner_key, created_at, updated_at
`

// UpsertCart returns the owner's cart, creating it on first touch. The
// conflict update also bumps updated_at so the sweeper sees activity.
func (q *Queries) UpsertCart(c context.Context, ownerKey string) (Cart, error) {
	row := q.db.QueryRow(c, upsertCart, ownerKey)
	var cart Cart
	err := row.Scan(&cart.ID, &cart.OwnerKey, &cart.CreatedAt, &cart.UpdatedAt)
	return cart, err
}

const findCartByOwnerKey = `
SELECT id, owner_key, created_at, updated_at
FROM cart_cart
WHERE owner_key = $1
`

func (q *Queries) FindCartByOwnerKey(c context.Context, ownerKey string) (Cart, error) {
	row := q.db.QueryRow(c, findCartByOwnerKey, ownerKey)
	var cart Cart
	err := row.Scan(&cart.ID, &cart.OwnerKey, &cart.CreatedAt, &cart.UpdatedAt)
	return cart, err
}

const findCartItems = `
SELECT id, cart_id, product_id, quantity, unit_price, created_at
FROM cart_item
WHERE cart_id = $1
ORDER BY created_at, id
`

func (q *Queries) FindCartItems(c context.Context, cartID uuid.UUID) ([]CartItem, error) {
	rows, err := q.db.Query(c, findCartItems, cartID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []CartItem{}
	for rows.Next() {
		var item CartItem
		err := rows.Scan(
			&item.ID,
			&item.CartID,
			&item.ProductID,
			&item.Quantity,
			&item.UnitPrice,
			&item.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

const addCartItemQuantity = `
INSERT INTO cart_item (cart_id, product_id, quantity, unit_price)
VALUES ($1, $2, $3, $4)
ON CONFLICT (cart_id, product_id)
DO UPDATE SET quantity = cart_item.quantity + EXCLUDED.quantity
RETURNING id, cart_id, product_id, quantity, unit_price, created_at
`

type AddCartItemQuantityParams struct {
	CartID    uuid.UUID
	ProductID uuid.UUID
	Quantity  int32
	UnitPrice pgtype.Numeric
}

// AddCartItemQuantity increments the line for (cart, product), creating it
// with the given price snapshot when absent. On conflict the stored
// unit_price is left untouched: the price stays pinned at add time.
func (q *Queries) AddCartItemQuantity(
	c context.Context,
	arg AddCartItemQuantityParams,
) (CartItem, error) {
	row := q.db.QueryRow(c, addCartItemQuantity, arg.CartID, arg.ProductID, arg.Quantity, arg.UnitPrice)
	var item CartItem
	err := row.Scan(
		&item.ID,
		&item.CartID,
		&item.ProductID,
		&item.Quantity,
		&item.UnitPrice,
		&item.CreatedAt,
	)
	return item, err
}

const setCartItemQuantity = `
UPDATE cart_item
SET quantity = $2
WHERE id = $1
RETURNING id, cart_id, product_id, quantity, unit_price, created_at
`

type SetCartItemQuantityParams struct {
	ID       uuid.UUID
	Quantity int32
}

// SetCartItemQuantity writes an absolute quantity. A target below one
// deletes the row instead, so a zero-quantity line can never be persisted.
func (q *Queries) SetCartItemQuantity(
	c context.Context,
	arg SetCartItemQuantityParams,
) (CartItem, error) {
	if arg.Quantity < 1 {
		_, err := q.DeleteCartItem(c, arg.ID)
		return CartItem{}, err
	}
	row := q.db.QueryRow(c, setCartItemQuantity, arg.ID, arg.Quantity)
	var item CartItem
	err := row.Scan(
		&item.ID,
		&item.CartID,
		&item.ProductID,
		&item.Quantity,
		&item.UnitPrice,
		&item.CreatedAt,
	)
	return item, err
}

const findCartItemWithOwner = `
SELECT ci.id, ci.cart_id, ci.product_id, ci.quantity, ci.unit_price, ci.created_at, cc.owner_key
FROM cart_item ci
JOIN cart_cart cc ON cc.id = ci.cart_id
WHERE ci.id = $1
`

func (q *Queries) FindCartItemWithOwner(
	c context.Context,
	entryID uuid.UUID,
) (CartItemWithOwnerRow, error) {
	row := q.db.QueryRow(c, findCartItemWithOwner, entryID)
	var item CartItemWithOwnerRow
	err := row.Scan(
		&item.ID,
		&item.CartID,
		&item.ProductID,
		&item.Quantity,
		&item.UnitPrice,
		&item.CreatedAt,
		&item.OwnerKey,
	)
	return item, err
}

const deleteCartItem = `
DELETE FROM cart_item
WHERE id = $1
`

func (q *Queries) DeleteCartItem(c context.Context, entryID uuid.UUID) (int64, error) {
	tag, err := q.db.Exec(c, deleteCartItem, entryID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

const touchCart = `
UPDATE cart_cart
SET updated_at = now()
WHERE id = $1
`

func (q *Queries) TouchCart(c context.Context, cartID uuid.UUID) error {
	_, err := q.db.Exec(c, touchCart, cartID)
	return err
}

const purgeExpiredCarts = `
DELETE FROM cart_cart
WHERE owner_key LIKE 'anon:%' AND updated_at < $1
`

// PurgeExpiredCarts removes stale anonymous carts; cart items go with them
// through the cascade. Authenticated carts are never swept.
func (q *Queries) PurgeExpiredCarts(c context.Context, cutoff time.Time) (int64, error) {
	tag, err := q.db.Exec(c, purgeExpiredCarts, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
