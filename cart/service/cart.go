package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/trace"

	"github.com/prasetya/phoneshop/cart/cache"
	"github.com/prasetya/phoneshop/cart/pkg/request"
	"github.com/prasetya/phoneshop/cart/pkg/response"
	inErrors "github.com/prasetya/phoneshop/internal/errors"
	"github.com/prasetya/phoneshop/internal/log"
	"github.com/prasetya/phoneshop/internal/otel"
	"github.com/prasetya/phoneshop/internal/repository"
)

const summaryCacheTTL = time.Hour

type CartService struct {
	pool    *pgxpool.Pool
	queries *repository.Queries
	cache   *redis.Client
}

func NewCartService(
	pool *pgxpool.Pool,
	queries *repository.Queries,
	cache *redis.Client,
) CartService {
	return CartService{pool: pool, queries: queries, cache: cache}
}

func (s CartService) AddToCart(
	c context.Context,
	ownerKey string,
	param request.AddToCart,
) (response.CartSummary, error) {
	c, span := otel.Tracer.Start(c, "CartService AddToCart")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KEY_TAG, "CartService AddToCart").
		Str(log.KEY_OWNER_KEY, ownerKey).
		Str(log.KEY_PRODUCT_ID, param.ProductId.String()).
		Int32(log.KEY_QUANTITY, param.Quantity).
		Logger()

	if param.Quantity < 1 {
		err := fmt.Errorf(
			"failed adding productId=%s with quantity=%d with error=%w",
			param.ProductId.String(),
			param.Quantity,
			inErrors.ErrInvalidQuantity,
		)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.CartSummary{}, err
	}

	logger = logger.With().Str(log.KEY_PROCESS, "finding product").Logger()
	logger.Info().Msg("finding product")
	product, err := s.queries.FindProductById(c, param.ProductId)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = fmt.Errorf(
				"failed finding productId=%s with error=%w",
				param.ProductId.String(),
				inErrors.ErrProductNotFound,
			)
		} else {
			err = fmt.Errorf(
				"failed finding productId=%s with error=%w",
				param.ProductId.String(),
				errors.Join(inErrors.ErrTransientStore, err),
			)
		}
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.CartSummary{}, err
	}
	logger.Info().Msg("found product")

	if !product.IsActive {
		err = fmt.Errorf(
			"failed adding productId=%s with error=%w",
			param.ProductId.String(),
			inErrors.ErrProductUnavailable,
		)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.CartSummary{}, err
	}

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
		return response.CartSummary{}, err
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

	logger = logger.With().Str(log.KEY_PROCESS, "upserting cart").Logger()
	logger.Info().Msg("upserting cart")
	qtx := s.queries.WithTx(tx)
	cart, err := qtx.UpsertCart(c, ownerKey)
	if err != nil {
		err = fmt.Errorf(
			"failed upserting cart with error=%w",
			errors.Join(inErrors.ErrTransientStore, err),
		)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.CartSummary{}, err
	}
	logger = logger.With().Str(log.KEY_CART_ID, cart.ID.String()).Logger()
	logger.Info().Msg("upserted cart")

	logger = logger.With().Str(log.KEY_PROCESS, "adding cart item").Logger()
	logger.Info().Msg("adding cart item")
	_, err = qtx.AddCartItemQuantity(c, repository.AddCartItemQuantityParams{
		CartID:    cart.ID,
		ProductID: param.ProductId,
		Quantity:  param.Quantity,
		UnitPrice: product.Price,
	})
	if err != nil {
		err = fmt.Errorf(
			"failed adding cart item with error=%w",
			errors.Join(inErrors.ErrTransientStore, err),
		)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.CartSummary{}, err
	}
	logger.Info().Msg("added cart item")

	summary, err := s.commitSummary(c, span, tx, qtx, cart.ID, ownerKey)
	if err != nil {
		logger.Error().Err(err).Msg(err.Error())
		return response.CartSummary{}, err
	}
	logger = logger.With().Any(log.KEY_CART_SUMMARY, summary).Logger()
	logger.Info().Msg("added to cart")

	return summary, nil
}

func (s CartService) UpdateQuantity(
	c context.Context,
	ownerKey string,
	param request.UpdateQuantity,
) (response.CartSummary, error) {
	c, span := otel.Tracer.Start(c, "CartService UpdateQuantity")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KEY_TAG, "CartService UpdateQuantity").
		Str(log.KEY_OWNER_KEY, ownerKey).
		Str(log.KEY_ENTRY_ID, param.EntryId.String()).
		Int32(log.KEY_QUANTITY, param.Quantity).
		Logger()

	// Quantities below one are rejected, not treated as removal; callers
	// intending removal use RemoveItem.
	if param.Quantity < 1 {
		err := fmt.Errorf(
			"failed updating entryId=%s to quantity=%d with error=%w",
			param.EntryId.String(),
			param.Quantity,
			inErrors.ErrInvalidQuantity,
		)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.CartSummary{}, err
	}

	entry, err := s.findOwnedEntry(c, ownerKey, param.EntryId)
	if err != nil {
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.CartSummary{}, err
	}

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
		return response.CartSummary{}, err
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

	logger = logger.With().Str(log.KEY_PROCESS, "setting cart item quantity").Logger()
	logger.Info().Msg("setting cart item quantity")
	qtx := s.queries.WithTx(tx)
	// Lock the cart row before the entry row so every mutation takes locks in
	// cart then entry order, same as AddToCart.
	if err := qtx.TouchCart(c, entry.CartID); err != nil {
		err = fmt.Errorf(
			"failed touching cart with error=%w",
			errors.Join(inErrors.ErrTransientStore, err),
		)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.CartSummary{}, err
	}
	_, err = qtx.SetCartItemQuantity(c, repository.SetCartItemQuantityParams{
		ID:       param.EntryId,
		Quantity: param.Quantity,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = fmt.Errorf(
				"failed setting quantity for entryId=%s with error=%w",
				param.EntryId.String(),
				inErrors.ErrEntryNotFound,
			)
		} else {
			err = fmt.Errorf(
				"failed setting cart item quantity with error=%w",
				errors.Join(inErrors.ErrTransientStore, err),
			)
		}
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.CartSummary{}, err
	}
	logger.Info().Msg("set cart item quantity")

	summary, err := s.commitSummary(c, span, tx, qtx, entry.CartID, ownerKey)
	if err != nil {
		logger.Error().Err(err).Msg(err.Error())
		return response.CartSummary{}, err
	}
	logger = logger.With().Any(log.KEY_CART_SUMMARY, summary).Logger()
	logger.Info().Msg("updated quantity")

	return summary, nil
}

func (s CartService) RemoveItem(
	c context.Context,
	ownerKey string,
	param request.RemoveItem,
) (response.CartSummary, error) {
	c, span := otel.Tracer.Start(c, "CartService RemoveItem")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KEY_TAG, "CartService RemoveItem").
		Str(log.KEY_OWNER_KEY, ownerKey).
		Str(log.KEY_ENTRY_ID, param.EntryId.String()).
		Logger()

	entry, err := s.findOwnedEntry(c, ownerKey, param.EntryId)
	if err != nil {
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.CartSummary{}, err
	}

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
		return response.CartSummary{}, err
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

	logger = logger.With().Str(log.KEY_PROCESS, "deleting cart item").Logger()
	logger.Info().Msg("deleting cart item")
	qtx := s.queries.WithTx(tx)
	// Cart lock first, entry lock second, same order as AddToCart.
	if err := qtx.TouchCart(c, entry.CartID); err != nil {
		err = fmt.Errorf(
			"failed touching cart with error=%w",
			errors.Join(inErrors.ErrTransientStore, err),
		)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.CartSummary{}, err
	}
	deleted, err := qtx.DeleteCartItem(c, param.EntryId)
	if err != nil {
		err = fmt.Errorf(
			"failed deleting cart item with error=%w",
			errors.Join(inErrors.ErrTransientStore, err),
		)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.CartSummary{}, err
	}
	if deleted == 0 {
		err = fmt.Errorf(
			"failed deleting entryId=%s with error=%w",
			param.EntryId.String(),
			inErrors.ErrEntryNotFound,
		)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.CartSummary{}, err
	}
	logger.Info().Msg("deleted cart item")

	summary, err := s.commitSummary(c, span, tx, qtx, entry.CartID, ownerKey)
	if err != nil {
		logger.Error().Err(err).Msg(err.Error())
		return response.CartSummary{}, err
	}
	logger = logger.With().Any(log.KEY_CART_SUMMARY, summary).Logger()
	logger.Info().Msg("removed item")

	return summary, nil
}

func (s CartService) GetCart(
	c context.Context,
	ownerKey string,
) (response.CartSummary, error) {
	c, span := otel.Tracer.Start(c, "CartService GetCart")
	defer span.End()

	cacheKey := fmt.Sprintf(cache.KEY_CART_SUMMARY, ownerKey)

	logger := zerolog.Ctx(c).
		With().
		Str(log.KEY_TAG, "CartService GetCart").
		Str(log.KEY_OWNER_KEY, ownerKey).
		Str(log.KEY_CACHE_KEY, cacheKey).
		Logger()

	logger = logger.With().Str(log.KEY_PROCESS, "finding summary in cache").Logger()
	logger.Info().Msg("finding summary in cache")
	cached, err := s.cache.Get(c, cacheKey).Result()
	if err == nil {
		summary := response.CartSummary{}
		if err := json.Unmarshal([]byte(cached), &summary); err != nil {
			logger.Info().Err(err).Msg("failed unmarshaling cached summary, falling back to db")
		} else {
			logger.Info().Msg("found summary in cache")
			return summary, nil
		}
	}

	logger = logger.With().Str(log.KEY_PROCESS, "finding cart in db").Logger()
	logger.Info().Msg("finding cart in db")
	cart, err := s.queries.FindCartByOwnerKey(c, ownerKey)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			logger.Info().Msg("owner has no cart yet")
			return emptySummary(), nil
		}
		err = fmt.Errorf(
			"failed finding cart with error=%w",
			errors.Join(inErrors.ErrTransientStore, err),
		)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.CartSummary{}, err
	}

	items, err := s.queries.FindCartItems(c, cart.ID)
	if err != nil {
		err = fmt.Errorf(
			"failed finding cart items with error=%w",
			errors.Join(inErrors.ErrTransientStore, err),
		)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.CartSummary{}, err
	}
	summary := buildSummary(cart.ID, items)
	logger.Info().Msg("found cart in db")

	logger = logger.With().Str(log.KEY_PROCESS, "inserting summary to cache").Logger()
	logger.Info().Msg("inserting summary to cache")
	if err := s.cacheSummary(c, ownerKey, summary); err != nil {
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.CartSummary{}, err
	}
	logger.Info().Msg("inserted summary to cache")

	return summary, nil
}

func (s CartService) GetCount(c context.Context, ownerKey string) (int32, error) {
	c, span := otel.Tracer.Start(c, "CartService GetCount")
	defer span.End()

	summary, err := s.GetCart(c, ownerKey)
	if err != nil {
		otel.RecordError(err, span)
		return 0, err
	}
	return summary.Count, nil
}

// PurgeExpired removes anonymous carts idle for longer than maxAge and
// returns how many were swept.
func (s CartService) PurgeExpired(c context.Context, maxAge time.Duration) (int64, error) {
	c, span := otel.Tracer.Start(c, "CartService PurgeExpired")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KEY_TAG, "CartService PurgeExpired").
		Str(log.KEY_PROCESS, "purging expired carts").
		Logger()

	logger.Info().Msg("purging expired carts")
	purged, err := s.queries.PurgeExpiredCarts(c, time.Now().Add(-maxAge))
	if err != nil {
		err = fmt.Errorf(
			"failed purging expired carts with error=%w",
			errors.Join(inErrors.ErrTransientStore, err),
		)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return 0, err
	}
	logger.Info().Int64(log.KEY_PURGED_CARTS, purged).Msgf("purged %d expired carts", purged)

	return purged, nil
}

func (s CartService) findOwnedEntry(
	c context.Context,
	ownerKey string,
	entryID uuid.UUID,
) (repository.CartItemWithOwnerRow, error) {
	entry, err := s.queries.FindCartItemWithOwner(c, entryID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return repository.CartItemWithOwnerRow{}, fmt.Errorf(
				"failed finding entryId=%s with error=%w",
				entryID.String(),
				inErrors.ErrEntryNotFound,
			)
		}
		return repository.CartItemWithOwnerRow{}, fmt.Errorf(
			"failed finding entryId=%s with error=%w",
			entryID.String(),
			errors.Join(inErrors.ErrTransientStore, err),
		)
	}
	if entry.OwnerKey != ownerKey {
		return repository.CartItemWithOwnerRow{}, fmt.Errorf(
			"failed accessing entryId=%s with error=%w",
			entryID.String(),
			inErrors.ErrUnauthorized,
		)
	}
	return entry, nil
}

// commitSummary rebuilds the summary from the transaction's view, commits,
// then writes the summary through to the cache. The cache only ever holds
// committed summaries; a failed cache write evicts the key so readers fall
// back to the db instead of a stale entry.
func (s CartService) commitSummary(
	c context.Context,
	span trace.Span,
	tx pgx.Tx,
	qtx *repository.Queries,
	cartID uuid.UUID,
	ownerKey string,
) (response.CartSummary, error) {
	items, err := qtx.FindCartItems(c, cartID)
	if err != nil {
		err = fmt.Errorf(
			"failed finding cart items with error=%w",
			errors.Join(inErrors.ErrTransientStore, err),
		)
		otel.RecordError(err, span)
		return response.CartSummary{}, err
	}
	summary := buildSummary(cartID, items)

	if err := tx.Commit(c); err != nil {
		err = fmt.Errorf(
			"failed committing transaction with error=%w",
			errors.Join(inErrors.ErrTransientStore, err),
		)
		otel.RecordError(err, span)
		return response.CartSummary{}, err
	}

	if err := s.cacheSummary(c, ownerKey, summary); err != nil {
		otel.RecordError(err, span)
		cacheKey := fmt.Sprintf(cache.KEY_CART_SUMMARY, ownerKey)
		if delErr := s.cache.Del(c, cacheKey).Err(); delErr != nil {
			otel.RecordError(delErr, span)
		}
	}

	return summary, nil
}

func (s CartService) cacheSummary(
	c context.Context,
	ownerKey string,
	summary response.CartSummary,
) error {
	payload, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("failed marshaling summary with error=%w", err)
	}
	cacheKey := fmt.Sprintf(cache.KEY_CART_SUMMARY, ownerKey)
	err = s.cache.Set(c, cacheKey, payload, summaryCacheTTL).Err()
	if err != nil {
		return fmt.Errorf("failed inserting summary to cache with error=%w", err)
	}
	return nil
}

func emptySummary() response.CartSummary {
	return response.CartSummary{Lines: []response.CartLine{}, Total: decimal.Zero}
}

func buildSummary(cartID uuid.UUID, items []repository.CartItem) response.CartSummary {
	lines := make([]response.CartLine, len(items))
	count := int32(0)
	total := decimal.Zero
	for i, item := range items {
		unitPrice := repository.DecimalFromNumeric(item.UnitPrice)
		lineTotal := unitPrice.Mul(decimal.NewFromInt32(item.Quantity))
		lines[i] = response.CartLine{
			EntryId:   item.ID,
			ProductId: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: unitPrice,
			LineTotal: lineTotal,
			CreatedAt: item.CreatedAt.Time,
		}
		count += item.Quantity
		total = total.Add(lineTotal)
	}
	return response.CartSummary{CartId: cartID, Lines: lines, Count: count, Total: total}
}
