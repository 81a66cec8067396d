package request

import "github.com/google/uuid"

type ToggleProduct struct {
	ProductId uuid.UUID `json:"product_id" validate:"required,uuid"`
}

type ApproveReview struct {
	ReviewId uuid.UUID `json:"review_id" validate:"required,uuid"`
}
