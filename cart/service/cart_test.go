package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prasetya/phoneshop/cart/cache"
	"github.com/prasetya/phoneshop/cart/pkg/request"
	"github.com/prasetya/phoneshop/cart/pkg/response"
	inErrors "github.com/prasetya/phoneshop/internal/errors"
	"github.com/prasetya/phoneshop/internal/repository"
)

func TestAddToCart(t *testing.T) {
	c := context.Background()
	redisClient, pool, pgContainer, redisContainer, queries, cartService := setup(t)(c)
	defer teardown(t)(redisClient, pool, pgContainer, redisContainer)

	price := decimal.NewFromInt(150)
	product := seedProduct(t, c, queries, price, true)
	ownerKey := "anon:" + uuid.NewString()

	summary, err := cartService.AddToCart(c, ownerKey, request.AddToCart{
		ProductId: product.ID,
		Quantity:  2,
	})
	require.NoError(t, err)
	assert.Equal(t, int32(2), summary.Count)
	assert.Len(t, summary.Lines, 1)
	assert.True(t, summary.Lines[0].UnitPrice.Equal(price))
	assert.True(t, summary.Total.Equal(price.Mul(decimal.NewFromInt(2))))
}

func TestAddToCartAggregatesQuantity(t *testing.T) {
	c := context.Background()
	redisClient, pool, pgContainer, redisContainer, queries, cartService := setup(t)(c)
	defer teardown(t)(redisClient, pool, pgContainer, redisContainer)

	product := seedProduct(t, c, queries, decimal.NewFromInt(100), true)
	ownerKey := "anon:" + uuid.NewString()

	_, err := cartService.AddToCart(c, ownerKey, request.AddToCart{
		ProductId: product.ID,
		Quantity:  2,
	})
	require.NoError(t, err)
	summary, err := cartService.AddToCart(c, ownerKey, request.AddToCart{
		ProductId: product.ID,
		Quantity:  3,
	})
	require.NoError(t, err)
	assert.Len(t, summary.Lines, 1)
	assert.Equal(t, int32(5), summary.Count)
}

func TestAddToCartPinsUnitPrice(t *testing.T) {
	c := context.Background()
	redisClient, pool, pgContainer, redisContainer, queries, cartService := setup(t)(c)
	defer teardown(t)(redisClient, pool, pgContainer, redisContainer)

	originalPrice := decimal.NewFromInt(100)
	product := seedProduct(t, c, queries, originalPrice, true)
	ownerKey := "anon:" + uuid.NewString()

	_, err := cartService.AddToCart(c, ownerKey, request.AddToCart{
		ProductId: product.ID,
		Quantity:  1,
	})
	require.NoError(t, err)

	_, err = pool.Exec(c, "UPDATE catalog_product SET price = 200 WHERE id = $1", product.ID)
	require.NoError(t, err)

	summary, err := cartService.AddToCart(c, ownerKey, request.AddToCart{
		ProductId: product.ID,
		Quantity:  1,
	})
	require.NoError(t, err)
	assert.Len(t, summary.Lines, 1)
	assert.True(
		t,
		summary.Lines[0].UnitPrice.Equal(originalPrice),
		"unit price should stay pinned to the price at first add, got %s",
		summary.Lines[0].UnitPrice,
	)
}

func TestAddToCartErrors(t *testing.T) {
	c := context.Background()
	redisClient, pool, pgContainer, redisContainer, queries, cartService := setup(t)(c)
	defer teardown(t)(redisClient, pool, pgContainer, redisContainer)

	active := seedProduct(t, c, queries, decimal.NewFromInt(100), true)
	inactive := seedProduct(t, c, queries, decimal.NewFromInt(100), false)
	ownerKey := "anon:" + uuid.NewString()

	tests := []struct {
		name        string
		param       request.AddToCart
		expectedErr error
	}{
		{
			name:        "given quantity zero should return invalid quantity",
			param:       request.AddToCart{ProductId: active.ID, Quantity: 0},
			expectedErr: inErrors.ErrInvalidQuantity,
		},
		{
			name:        "given negative quantity should return invalid quantity",
			param:       request.AddToCart{ProductId: active.ID, Quantity: -3},
			expectedErr: inErrors.ErrInvalidQuantity,
		},
		{
			name:        "given unknown product should return product not found",
			param:       request.AddToCart{ProductId: uuid.New(), Quantity: 1},
			expectedErr: inErrors.ErrProductNotFound,
		},
		{
			name:        "given inactive product should return product unavailable",
			param:       request.AddToCart{ProductId: inactive.ID, Quantity: 1},
			expectedErr: inErrors.ErrProductUnavailable,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := cartService.AddToCart(c, ownerKey, test.param)
			assert.ErrorIs(t, err, test.expectedErr)
		})
	}
}

func TestUpdateQuantity(t *testing.T) {
	c := context.Background()
	redisClient, pool, pgContainer, redisContainer, queries, cartService := setup(t)(c)
	defer teardown(t)(redisClient, pool, pgContainer, redisContainer)

	product := seedProduct(t, c, queries, decimal.NewFromInt(100), true)
	ownerKey := "anon:" + uuid.NewString()

	added, err := cartService.AddToCart(c, ownerKey, request.AddToCart{
		ProductId: product.ID,
		Quantity:  2,
	})
	require.NoError(t, err)
	entryId := added.Lines[0].EntryId

	summary, err := cartService.UpdateQuantity(c, ownerKey, request.UpdateQuantity{
		EntryId:  entryId,
		Quantity: 5,
	})
	require.NoError(t, err)
	assert.Equal(t, int32(5), summary.Count)

	// Same value again is a no-op, not an error.
	summary, err = cartService.UpdateQuantity(c, ownerKey, request.UpdateQuantity{
		EntryId:  entryId,
		Quantity: 5,
	})
	require.NoError(t, err)
	assert.Equal(t, int32(5), summary.Count)
}

func TestUpdateQuantityErrors(t *testing.T) {
	c := context.Background()
	redisClient, pool, pgContainer, redisContainer, queries, cartService := setup(t)(c)
	defer teardown(t)(redisClient, pool, pgContainer, redisContainer)

	product := seedProduct(t, c, queries, decimal.NewFromInt(100), true)
	ownerKey := "anon:" + uuid.NewString()
	otherOwnerKey := "anon:" + uuid.NewString()

	added, err := cartService.AddToCart(c, ownerKey, request.AddToCart{
		ProductId: product.ID,
		Quantity:  2,
	})
	require.NoError(t, err)
	entryId := added.Lines[0].EntryId

	tests := []struct {
		name        string
		ownerKey    string
		param       request.UpdateQuantity
		expectedErr error
	}{
		{
			name:        "given quantity zero should return invalid quantity",
			ownerKey:    ownerKey,
			param:       request.UpdateQuantity{EntryId: entryId, Quantity: 0},
			expectedErr: inErrors.ErrInvalidQuantity,
		},
		{
			name:        "given unknown entry should return entry not found",
			ownerKey:    ownerKey,
			param:       request.UpdateQuantity{EntryId: uuid.New(), Quantity: 1},
			expectedErr: inErrors.ErrEntryNotFound,
		},
		{
			name:        "given another owner's entry should return unauthorized",
			ownerKey:    otherOwnerKey,
			param:       request.UpdateQuantity{EntryId: entryId, Quantity: 1},
			expectedErr: inErrors.ErrUnauthorized,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := cartService.UpdateQuantity(c, test.ownerKey, test.param)
			assert.ErrorIs(t, err, test.expectedErr)
		})
	}
}

func TestConcurrentUpdateQuantity(t *testing.T) {
	c := context.Background()
	redisClient, pool, pgContainer, redisContainer, queries, cartService := setup(t)(c)
	defer teardown(t)(redisClient, pool, pgContainer, redisContainer)

	product := seedProduct(t, c, queries, decimal.NewFromInt(100), true)
	ownerKey := "anon:" + uuid.NewString()

	added, err := cartService.AddToCart(c, ownerKey, request.AddToCart{
		ProductId: product.ID,
		Quantity:  1,
	})
	require.NoError(t, err)
	entryId := added.Lines[0].EntryId

	quantities := []int32{5, 3}
	wg := sync.WaitGroup{}
	for _, quantity := range quantities {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := cartService.UpdateQuantity(c, ownerKey, request.UpdateQuantity{
				EntryId:  entryId,
				Quantity: quantity,
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	// Both writes are serialized on the entry's row lock so the final value
	// must be exactly one of the two submitted quantities.
	summary, err := cartService.GetCart(c, ownerKey)
	require.NoError(t, err)
	require.Len(t, summary.Lines, 1)
	final := summary.Lines[0].Quantity
	assert.Contains(
		t,
		[]int32{5, 3},
		final,
		fmt.Sprintf("final quantity should be one of the submitted values, got %d", final),
	)
	assert.Equal(t, final, summary.Count)
}

func TestSetQuantityEntryDeletedMidway(t *testing.T) {
	c := context.Background()
	redisClient, pool, pgContainer, redisContainer, queries, cartService := setup(t)(c)
	defer teardown(t)(redisClient, pool, pgContainer, redisContainer)

	product := seedProduct(t, c, queries, decimal.NewFromInt(100), true)
	ownerKey := "anon:" + uuid.NewString()

	added, err := cartService.AddToCart(c, ownerKey, request.AddToCart{
		ProductId: product.ID,
		Quantity:  1,
	})
	require.NoError(t, err)
	entryId := added.Lines[0].EntryId

	// An entry removed between the ownership check and the quantity write
	// surfaces as a missing row, which callers must see as not-found rather
	// than a retryable store failure.
	deleted, err := queries.DeleteCartItem(c, entryId)
	require.NoError(t, err)
	require.Equal(t, int64(1), deleted)

	_, err = queries.SetCartItemQuantity(c, repository.SetCartItemQuantityParams{
		ID:       entryId,
		Quantity: 5,
	})
	assert.ErrorIs(t, err, pgx.ErrNoRows)

	_, err = cartService.UpdateQuantity(c, ownerKey, request.UpdateQuantity{
		EntryId:  entryId,
		Quantity: 5,
	})
	assert.ErrorIs(t, err, inErrors.ErrEntryNotFound)
	assert.NotErrorIs(t, err, inErrors.ErrTransientStore)
}

func TestConcurrentAddAndUpdate(t *testing.T) {
	c := context.Background()
	redisClient, pool, pgContainer, redisContainer, queries, cartService := setup(t)(c)
	defer teardown(t)(redisClient, pool, pgContainer, redisContainer)

	product := seedProduct(t, c, queries, decimal.NewFromInt(100), true)
	ownerKey := "anon:" + uuid.NewString()

	added, err := cartService.AddToCart(c, ownerKey, request.AddToCart{
		ProductId: product.ID,
		Quantity:  1,
	})
	require.NoError(t, err)
	entryId := added.Lines[0].EntryId

	// Every mutation locks the cart row before the entry row, so a
	// concurrent add and update of the same entry wait on each other
	// instead of deadlocking.
	wg := sync.WaitGroup{}
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, err := cartService.AddToCart(c, ownerKey, request.AddToCart{
			ProductId: product.ID,
			Quantity:  2,
		})
		assert.NoError(t, err)
	}()
	go func() {
		defer wg.Done()
		_, err := cartService.UpdateQuantity(c, ownerKey, request.UpdateQuantity{
			EntryId:  entryId,
			Quantity: 5,
		})
		assert.NoError(t, err)
	}()
	wg.Wait()

	// Update-then-add yields 5+2, add-then-update yields an absolute 5.
	summary, err := cartService.GetCart(c, ownerKey)
	require.NoError(t, err)
	require.Len(t, summary.Lines, 1)
	final := summary.Lines[0].Quantity
	assert.Contains(
		t,
		[]int32{7, 5},
		final,
		fmt.Sprintf("final quantity should reflect both writes in some order, got %d", final),
	)
	assert.Equal(t, final, summary.Count)
}

func TestRemoveItem(t *testing.T) {
	c := context.Background()
	redisClient, pool, pgContainer, redisContainer, queries, cartService := setup(t)(c)
	defer teardown(t)(redisClient, pool, pgContainer, redisContainer)

	product := seedProduct(t, c, queries, decimal.NewFromInt(100), true)
	ownerKey := "anon:" + uuid.NewString()

	added, err := cartService.AddToCart(c, ownerKey, request.AddToCart{
		ProductId: product.ID,
		Quantity:  2,
	})
	require.NoError(t, err)
	entryId := added.Lines[0].EntryId

	summary, err := cartService.RemoveItem(c, ownerKey, request.RemoveItem{EntryId: entryId})
	require.NoError(t, err)
	assert.Equal(t, int32(0), summary.Count)
	assert.Empty(t, summary.Lines)
	assert.True(t, summary.Total.IsZero())

	_, err = cartService.RemoveItem(c, ownerKey, request.RemoveItem{EntryId: entryId})
	assert.ErrorIs(t, err, inErrors.ErrEntryNotFound)
}

func TestMutationCachesCommittedSummary(t *testing.T) {
	c := context.Background()
	redisClient, pool, pgContainer, redisContainer, queries, cartService := setup(t)(c)
	defer teardown(t)(redisClient, pool, pgContainer, redisContainer)

	product := seedProduct(t, c, queries, decimal.NewFromInt(100), true)
	ownerKey := "anon:" + uuid.NewString()

	added, err := cartService.AddToCart(c, ownerKey, request.AddToCart{
		ProductId: product.ID,
		Quantity:  3,
	})
	require.NoError(t, err)

	// The cache is written after commit, so the cached summary must match
	// what the db now holds.
	cached, err := redisClient.Get(c, fmt.Sprintf(cache.KEY_CART_SUMMARY, ownerKey)).Result()
	require.NoError(t, err)
	summary := response.CartSummary{}
	require.NoError(t, json.Unmarshal([]byte(cached), &summary))
	assert.Equal(t, added.CartId, summary.CartId)
	assert.Equal(t, int32(3), summary.Count)
	assert.Equal(t, "300", summary.Total.String())

	cart, err := queries.FindCartByOwnerKey(c, ownerKey)
	require.NoError(t, err)
	assert.Equal(t, cart.ID, summary.CartId)
}

func TestGetCartEmptyOwner(t *testing.T) {
	c := context.Background()
	redisClient, pool, pgContainer, redisContainer, _, cartService := setup(t)(c)
	defer teardown(t)(redisClient, pool, pgContainer, redisContainer)

	summary, err := cartService.GetCart(c, "anon:"+uuid.NewString())
	require.NoError(t, err)
	assert.Equal(t, int32(0), summary.Count)
	assert.Empty(t, summary.Lines)
	assert.True(t, summary.Total.IsZero())
}

func TestGetCount(t *testing.T) {
	c := context.Background()
	redisClient, pool, pgContainer, redisContainer, queries, cartService := setup(t)(c)
	defer teardown(t)(redisClient, pool, pgContainer, redisContainer)

	product := seedProduct(t, c, queries, decimal.NewFromInt(100), true)
	ownerKey := "anon:" + uuid.NewString()

	_, err := cartService.AddToCart(c, ownerKey, request.AddToCart{
		ProductId: product.ID,
		Quantity:  4,
	})
	require.NoError(t, err)

	count, err := cartService.GetCount(c, ownerKey)
	require.NoError(t, err)
	assert.Equal(t, int32(4), count)
}

func TestPurgeExpired(t *testing.T) {
	c := context.Background()
	redisClient, pool, pgContainer, redisContainer, queries, cartService := setup(t)(c)
	defer teardown(t)(redisClient, pool, pgContainer, redisContainer)

	product := seedProduct(t, c, queries, decimal.NewFromInt(100), true)
	staleOwnerKey := "anon:" + uuid.NewString()
	freshOwnerKey := "anon:" + uuid.NewString()
	userOwnerKey := "user:" + uuid.NewString()

	for _, ownerKey := range []string{staleOwnerKey, freshOwnerKey, userOwnerKey} {
		_, err := cartService.AddToCart(c, ownerKey, request.AddToCart{
			ProductId: product.ID,
			Quantity:  1,
		})
		require.NoError(t, err)
	}

	backdated := time.Now().AddDate(0, 0, -40)
	_, err := pool.Exec(
		c,
		"UPDATE cart_cart SET updated_at = $1 WHERE owner_key IN ($2, $3)",
		backdated,
		staleOwnerKey,
		userOwnerKey,
	)
	require.NoError(t, err)

	purged, err := cartService.PurgeExpired(c, 30*24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), purged, "only the stale anonymous cart should be purged")

	// Purge bypasses the summary cache, read from the store directly.
	_, err = queries.FindCartByOwnerKey(c, staleOwnerKey)
	assert.Error(t, err)
	_, err = queries.FindCartByOwnerKey(c, freshOwnerKey)
	assert.NoError(t, err)
	_, err = queries.FindCartByOwnerKey(c, userOwnerKey)
	assert.NoError(t, err)
}
