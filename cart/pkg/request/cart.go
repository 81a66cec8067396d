package request

import (
	"github.com/google/uuid"
)

type AddToCart struct {
	ProductId uuid.UUID `validate:"required,uuid" json:"product_id"`
	Quantity  int32     `validate:"required,gte=1" json:"quantity"`
}

type UpdateQuantity struct {
	EntryId  uuid.UUID `validate:"required,uuid" json:"entry_id"`
	Quantity int32     `validate:"required,gte=1" json:"quantity"`
}

type RemoveItem struct {
	EntryId uuid.UUID `validate:"required,uuid" json:"entry_id"`
}
