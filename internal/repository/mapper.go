package repository

import (
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	catalogResponse "github.com/prasetya/phoneshop/catalog/pkg/response"
)

func NumericFromDecimal(d decimal.Decimal) pgtype.Numeric {
	return pgtype.Numeric{
		Exp:              d.Exponent(),
		InfinityModifier: pgtype.Finite,
		Int:              d.Coefficient(),
		NaN:              false,
		Valid:            true,
	}
}

func DecimalFromNumeric(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid || n.Int == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(n.Int, n.Exp)
}

func (p Product) Response() catalogResponse.Product {
	return catalogResponse.Product{
		ID:           p.ID,
		Name:         p.Name,
		Slug:         p.Slug,
		Price:        DecimalFromNumeric(p.Price),
		OldPrice:     DecimalFromNumeric(p.OldPrice),
		Rating:       DecimalFromNumeric(p.Rating),
		ReviewsCount: p.ReviewsCount,
		IsActive:     p.IsActive,
		CreatedAt:    p.CreatedAt.Time,
		UpdatedAt:    p.UpdatedAt.Time,
	}
}

func (s SearchSuggestionRow) Response() catalogResponse.Suggestion {
	return catalogResponse.Suggestion{
		ID:     s.ID,
		Name:   s.Name,
		Slug:   s.Slug,
		Price:  DecimalFromNumeric(s.Price),
		Rating: DecimalFromNumeric(s.Rating),
	}
}
