package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const findProductById = `
SELECT id, name, slug, price, old_price, rating, reviews_count, category_id, brand_id, is_active, created_at, updated_at
FROM catalog_product
WHERE id = $1
`

func (q *Queries) FindProductById(c context.Context, id uuid.UUID) (Product, error) {
	row := q.db.QueryRow(c, findProductById, id)
	var p Product
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Slug,
		&p.Price,
		&p.OldPrice,
		&p.Rating,
		&p.ReviewsCount,
		&p.CategoryID,
		&p.BrandID,
		&p.IsActive,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	return p, err
}

const insertProduct = `
INSERT INTO catalog_product (name, slug, price, old_price, is_active)
VALUES ($1, $2, $3, $4, $5)
RETURNING id, name, slug, price, old_price, rating, reviews_count, category_id, brand_id, is_active, created_at, updated_at
`

type InsertProductParams struct {
	Name     string
	Slug     string
	Price    pgtype.Numeric
	OldPrice pgtype.Numeric
	IsActive bool
}

func (q *Queries) InsertProduct(c context.Context, arg InsertProductParams) (Product, error) {
	row := q.db.QueryRow(c, insertProduct, arg.Name, arg.Slug, arg.Price, arg.OldPrice, arg.IsActive)
	var p Product
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Slug,
		&p.Price,
		&p.OldPrice,
		&p.Rating,
		&p.ReviewsCount,
		&p.CategoryID,
		&p.BrandID,
		&p.IsActive,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	return p, err
}

const lockProduct = `
SELECT id
FROM catalog_product
WHERE id = $1
FOR UPDATE
`

// LockProduct takes the product row lock so the caller's transaction is
// serialized against other writers of the same product before it reads.
func (q *Queries) LockProduct(c context.Context, id uuid.UUID) (uuid.UUID, error) {
	row := q.db.QueryRow(c, lockProduct, id)
	var locked uuid.UUID
	err := row.Scan(&locked)
	return locked, err
}

const updateProductRating = `
UPDATE catalog_product
SET rating = $2, reviews_count = $3, updated_at = now()
WHERE id = $1
`

type UpdateProductRatingParams struct {
	ID           uuid.UUID
	Rating       pgtype.Numeric
	ReviewsCount int32
}

// UpdateProductRating writes both aggregate fields in a single statement so
// rating and reviews_count can never be observed out of step.
func (q *Queries) UpdateProductRating(c context.Context, arg UpdateProductRatingParams) (int64, error) {
	tag, err := q.db.Exec(c, updateProductRating, arg.ID, arg.Rating, arg.ReviewsCount)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

const searchSuggestions = `
SELECT id, name, slug, price, rating
FROM catalog_product
WHERE is_active AND name ILIKE '%' || $1 || '%'
ORDER BY reviews_count DESC, name
LIMIT $2
`

type SearchSuggestionsParams struct {
	Query string
	Limit int32
}

func (q *Queries) SearchSuggestions(
	c context.Context,
	arg SearchSuggestionsParams,
) ([]SearchSuggestionRow, error) {
	rows, err := q.db.Query(c, searchSuggestions, arg.Query, arg.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	suggestions := []SearchSuggestionRow{}
	for rows.Next() {
		var s SearchSuggestionRow
		err := rows.Scan(&s.ID, &s.Name, &s.Slug, &s.Price, &s.Rating)
		if err != nil {
			return nil, err
		}
		suggestions = append(suggestions, s)
	}
	return suggestions, rows.Err()
}

const findReviewedProductIds = `
SELECT DISTINCT product_id
FROM catalog_review
`

func (q *Queries) FindReviewedProductIds(c context.Context) ([]uuid.UUID, error) {
	rows, err := q.db.Query(c, findReviewedProductIds)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	ids := []uuid.UUID{}
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
