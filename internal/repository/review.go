package repository

import (
	"context"

	"github.com/google/uuid"
)

const findApprovedRatings = `
SELECT rating
FROM catalog_review
WHERE product_id = $1 AND is_approved
`

func (q *Queries) FindApprovedRatings(c context.Context, productID uuid.UUID) ([]int32, error) {
	rows, err := q.db.Query(c, findApprovedRatings, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	ratings := []int32{}
	for rows.Next() {
		var rating int32
		if err := rows.Scan(&rating); err != nil {
			return nil, err
		}
		ratings = append(ratings, rating)
	}
	return ratings, rows.Err()
}

const insertReview = `
INSERT INTO catalog_review (product_id, rating, is_approved)
VALUES ($1, $2, $3)
RETURNING id, product_id, rating, is_approved, created_at
`

type InsertReviewParams struct {
	ProductID  uuid.UUID
	Rating     int32
	IsApproved bool
}

func (q *Queries) InsertReview(c context.Context, arg InsertReviewParams) (Review, error) {
	row := q.db.QueryRow(c, insertReview, arg.ProductID, arg.Rating, arg.IsApproved)
	var review Review
	err := row.Scan(
		&review.ID,
		&review.ProductID,
		&review.Rating,
		&review.IsApproved,
		&review.CreatedAt,
	)
	return review, err
}

const approveReview = `
UPDATE catalog_review
SET is_approved = true
WHERE id = $1
RETURNING id, product_id, rating, is_approved, created_at
`

func (q *Queries) ApproveReview(c context.Context, reviewID uuid.UUID) (Review, error) {
	row := q.db.QueryRow(c, approveReview, reviewID)
	var review Review
	err := row.Scan(
		&review.ID,
		&review.ProductID,
		&review.Rating,
		&review.IsApproved,
		&review.CreatedAt,
	)
	return review, err
}
