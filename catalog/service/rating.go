package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/prasetya/phoneshop/catalog/pkg/response"
	inErrors "github.com/prasetya/phoneshop/internal/errors"
	"github.com/prasetya/phoneshop/internal/log"
	"github.com/prasetya/phoneshop/internal/otel"
	"github.com/prasetya/phoneshop/internal/repository"
)

type RatingService struct {
	pool    *pgxpool.Pool
	queries *repository.Queries
}

func NewRatingService(pool *pgxpool.Pool, queries *repository.Queries) RatingService {
	return RatingService{pool: pool, queries: queries}
}

// averageRating rounds the arithmetic mean of approved review ratings to two
// decimal places. An empty slice averages to zero.
func averageRating(ratings []int32) decimal.Decimal {
	if len(ratings) == 0 {
		return decimal.Zero.Round(2)
	}
	sum := decimal.Zero
	for _, rating := range ratings {
		sum = sum.Add(decimal.NewFromInt32(rating))
	}
	return sum.Div(decimal.NewFromInt(int64(len(ratings)))).Round(2)
}

// RecomputeRating rereads the approved reviews for productId and writes the
// refreshed aggregate to the product row.
func (s RatingService) RecomputeRating(
	c context.Context,
	productId uuid.UUID,
) (response.Rating, error) {
	c, span := otel.Tracer.Start(c, "RatingService RecomputeRating")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KEY_TAG, "RatingService RecomputeRating").
		Str(log.KEY_PRODUCT_ID, productId.String()).
		Logger()

	logger = logger.With().Str(log.KEY_PROCESS, "initializing transaction").Logger()
	logger.Info().Msg("initializing transaction")
	tx, err := s.pool.BeginTx(c, pgx.TxOptions{})
	if err != nil {
		err = fmt.Errorf(
			"failed initializing transaction with error=%w",
			errors.Join(inErrors.ErrTransientStore, err),
		)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Rating{}, err
	}
	defer func() {
		err := tx.Rollback(c)
		if err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			err = fmt.Errorf("failed rolling back transaction with error=%w", err)
			otel.RecordError(err, span)
			logger.Error().Err(err).Msg(err.Error())
		}
	}()
	logger.Info().Msg("initialized transaction")

	qtx := s.queries.WithTx(tx)
	rating, err := s.recomputeRatingTx(c, qtx, productId)
	if err != nil {
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Rating{}, err
	}

	logger = logger.With().Str(log.KEY_PROCESS, "committing transaction").Logger()
	logger.Info().Msg("committing transaction")
	if err := tx.Commit(c); err != nil {
		err = fmt.Errorf(
			"failed committing transaction with error=%w",
			errors.Join(inErrors.ErrTransientStore, err),
		)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Rating{}, err
	}
	logger.Info().
		Str(log.KEY_RATING, rating.Rating.String()).
		Int32(log.KEY_REVIEWS_COUNT, rating.ReviewsCount).
		Msg("recomputed rating")

	return rating, nil
}

// ApproveReview marks the review approved and recomputes the product's
// aggregate inside the same transaction.
func (s RatingService) ApproveReview(
	c context.Context,
	reviewId uuid.UUID,
) (response.Rating, error) {
	c, span := otel.Tracer.Start(c, "RatingService ApproveReview")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KEY_TAG, "RatingService ApproveReview").
		Str(log.KEY_REVIEW_ID, reviewId.String()).
		Logger()

	logger = logger.With().Str(log.KEY_PROCESS, "initializing transaction").Logger()
	logger.Info().Msg("initializing transaction")
	tx, err := s.pool.BeginTx(c, pgx.TxOptions{})
	if err != nil {
		err = fmt.Errorf(
			"failed initializing transaction with error=%w",
			errors.Join(inErrors.ErrTransientStore, err),
		)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Rating{}, err
	}
	defer func() {
		err := tx.Rollback(c)
		if err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			err = fmt.Errorf("failed rolling back transaction with error=%w", err)
			otel.RecordError(err, span)
			logger.Error().Err(err).Msg(err.Error())
		}
	}()
	logger.Info().Msg("initialized transaction")

	logger = logger.With().Str(log.KEY_PROCESS, "approving review").Logger()
	logger.Info().Msg("approving review")
	qtx := s.queries.WithTx(tx)
	review, err := qtx.ApproveReview(c, reviewId)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = fmt.Errorf(
				"failed approving reviewId=%s with error=%w",
				reviewId.String(),
				inErrors.ErrEntryNotFound,
			)
		} else {
			err = fmt.Errorf(
				"failed approving reviewId=%s with error=%w",
				reviewId.String(),
				errors.Join(inErrors.ErrTransientStore, err),
			)
		}
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Rating{}, err
	}
	logger = logger.With().Str(log.KEY_PRODUCT_ID, review.ProductID.String()).Logger()
	logger.Info().Msg("approved review")

	logger = logger.With().Str(log.KEY_PROCESS, "recomputing rating").Logger()
	logger.Info().Msg("recomputing rating")
	rating, err := s.recomputeRatingTx(c, qtx, review.ProductID)
	if err != nil {
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Rating{}, err
	}
	logger.Info().Msg("recomputed rating")

	logger = logger.With().Str(log.KEY_PROCESS, "committing transaction").Logger()
	logger.Info().Msg("committing transaction")
	if err := tx.Commit(c); err != nil {
		err = fmt.Errorf(
			"failed committing transaction with error=%w",
			errors.Join(inErrors.ErrTransientStore, err),
		)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Rating{}, err
	}
	logger.Info().
		Str(log.KEY_RATING, rating.Rating.String()).
		Int32(log.KEY_REVIEWS_COUNT, rating.ReviewsCount).
		Msg("approved review and recomputed rating")

	return rating, nil
}

// RecomputeAll refreshes the aggregate of every product that has at least one
// review. It is run from the recompute-ratings command.
func (s RatingService) RecomputeAll(c context.Context) (int, error) {
	c, span := otel.Tracer.Start(c, "RatingService RecomputeAll")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KEY_TAG, "RatingService RecomputeAll").
		Str(log.KEY_PROCESS, "finding reviewed products").
		Logger()

	logger.Info().Msg("finding reviewed products")
	productIds, err := s.queries.FindReviewedProductIds(c)
	if err != nil {
		err = fmt.Errorf(
			"failed finding reviewed products with error=%w",
			errors.Join(inErrors.ErrTransientStore, err),
		)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return 0, err
	}
	logger.Info().Msgf("found %d reviewed products", len(productIds))

	for _, productId := range productIds {
		if _, err := s.RecomputeRating(c, productId); err != nil {
			otel.RecordError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return 0, err
		}
	}
	logger.Info().Msgf("recomputed ratings for %d products", len(productIds))

	return len(productIds), nil
}

func (s RatingService) recomputeRatingTx(
	c context.Context,
	qtx *repository.Queries,
	productId uuid.UUID,
) (response.Rating, error) {
	// Lock the product row before reading so two concurrent recomputes cannot
	// both aggregate a snapshot that misses the other's approved review.
	if _, err := qtx.LockProduct(c, productId); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return response.Rating{}, fmt.Errorf(
				"failed locking productId=%s with error=%w",
				productId.String(),
				inErrors.ErrProductNotFound,
			)
		}
		return response.Rating{}, fmt.Errorf(
			"failed locking productId=%s with error=%w",
			productId.String(),
			errors.Join(inErrors.ErrTransientStore, err),
		)
	}

	ratings, err := qtx.FindApprovedRatings(c, productId)
	if err != nil {
		return response.Rating{}, fmt.Errorf(
			"failed finding approved ratings with error=%w",
			errors.Join(inErrors.ErrTransientStore, err),
		)
	}

	average := averageRating(ratings)
	affected, err := qtx.UpdateProductRating(c, repository.UpdateProductRatingParams{
		ID:           productId,
		Rating:       repository.NumericFromDecimal(average),
		ReviewsCount: int32(len(ratings)),
	})
	if err != nil {
		return response.Rating{}, fmt.Errorf(
			"failed updating product rating with error=%w",
			errors.Join(inErrors.ErrTransientStore, err),
		)
	}
	if affected == 0 {
		return response.Rating{}, fmt.Errorf(
			"failed updating productId=%s with error=%w",
			productId.String(),
			inErrors.ErrProductNotFound,
		)
	}

	return response.Rating{
		ProductId:    productId,
		Rating:       average,
		ReviewsCount: int32(len(ratings)),
	}, nil
}
