package repository

import (
	"context"

	"github.com/google/uuid"
)

type OwnerProductParams struct {
	OwnerKey  string
	ProductID uuid.UUID
}

const insertWishlistItem = `
INSERT INTO catalog_wishlist (owner_key, product_id)
VALUES ($1, $2)
ON CONFLICT (owner_key, product_id) DO NOTHING
`

func (q *Queries) InsertWishlistItem(c context.Context, arg OwnerProductParams) (int64, error) {
	tag, err := q.db.Exec(c, insertWishlistItem, arg.OwnerKey, arg.ProductID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

const deleteWishlistItem = `
DELETE FROM catalog_wishlist
WHERE owner_key = $1 AND product_id = $2
`

func (q *Queries) DeleteWishlistItem(c context.Context, arg OwnerProductParams) (int64, error) {
	tag, err := q.db.Exec(c, deleteWishlistItem, arg.OwnerKey, arg.ProductID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

const countWishlist = `
SELECT count(*)
FROM catalog_wishlist
WHERE owner_key = $1
`

func (q *Queries) CountWishlist(c context.Context, ownerKey string) (int64, error) {
	var count int64
	err := q.db.QueryRow(c, countWishlist, ownerKey).Scan(&count)
	return count, err
}

const insertCompareItem = `
INSERT INTO catalog_comparelist (owner_key, product_id)
VALUES ($1, $2)
ON CONFLICT (owner_key, product_id) DO NOTHING
`

func (q *Queries) InsertCompareItem(c context.Context, arg OwnerProductParams) (int64, error) {
	tag, err := q.db.Exec(c, insertCompareItem, arg.OwnerKey, arg.ProductID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

const deleteCompareItem = `
DELETE FROM catalog_comparelist
WHERE owner_key = $1 AND product_id = $2
`

func (q *Queries) DeleteCompareItem(c context.Context, arg OwnerProductParams) (int64, error) {
	tag, err := q.db.Exec(c, deleteCompareItem, arg.OwnerKey, arg.ProductID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

const countCompare = `
SELECT count(*)
FROM catalog_comparelist
WHERE owner_key = $1
`

func (q *Queries) CountCompare(c context.Context, ownerKey string) (int64, error) {
	var count int64
	err := q.db.QueryRow(c, countCompare, ownerKey).Scan(&count)
	return count, err
}
