package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prasetya/phoneshop/catalog/pkg/request"
	inErrors "github.com/prasetya/phoneshop/internal/errors"
)

func TestToggleWishlist(t *testing.T) {
	c := context.Background()
	redisClient, pool, pgContainer, redisContainer, queries, catalogService, _ := setup(t)(c)
	defer teardown(t)(redisClient, pool, pgContainer, redisContainer)

	product := seedProduct(t, c, queries, "phone", true)
	ownerKey := "user:" + uuid.NewString()

	toggle, err := catalogService.ToggleWishlist(c, ownerKey, request.ToggleProduct{
		ProductId: product.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, ToggleAdded, toggle.Action)
	assert.Equal(t, int64(1), toggle.Count)

	toggle, err = catalogService.ToggleWishlist(c, ownerKey, request.ToggleProduct{
		ProductId: product.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, ToggleRemoved, toggle.Action)
	assert.Equal(t, int64(0), toggle.Count)
}

func TestToggleWishlistUnknownProduct(t *testing.T) {
	c := context.Background()
	redisClient, pool, pgContainer, redisContainer, _, catalogService, _ := setup(t)(c)
	defer teardown(t)(redisClient, pool, pgContainer, redisContainer)

	_, err := catalogService.ToggleWishlist(c, "user:"+uuid.NewString(), request.ToggleProduct{
		ProductId: uuid.New(),
	})
	assert.ErrorIs(t, err, inErrors.ErrProductNotFound)
}

func TestToggleCompareCap(t *testing.T) {
	c := context.Background()
	redisClient, pool, pgContainer, redisContainer, queries, catalogService, _ := setup(t)(c)
	defer teardown(t)(redisClient, pool, pgContainer, redisContainer)

	ownerKey := "user:" + uuid.NewString()

	for i := range testCompareLimit {
		product := seedProduct(t, c, queries, fmt.Sprintf("phone %d", i), true)
		toggle, err := catalogService.ToggleCompare(c, ownerKey, request.ToggleProduct{
			ProductId: product.ID,
		})
		require.NoError(t, err)
		assert.Equal(t, ToggleAdded, toggle.Action)
		assert.Equal(t, int64(i+1), toggle.Count)
	}

	overflow := seedProduct(t, c, queries, "one too many", true)
	_, err := catalogService.ToggleCompare(c, ownerKey, request.ToggleProduct{
		ProductId: overflow.ID,
	})
	assert.ErrorIs(t, err, inErrors.ErrCompareListFull)

	// Toggling an already compared product off still works at the cap.
	first := seedProduct(t, c, queries, "replacement", true)
	_, err = catalogService.ToggleCompare(c, "user:"+uuid.NewString(), request.ToggleProduct{
		ProductId: first.ID,
	})
	require.NoError(t, err)
}

func TestToggleCompareRemoveAtCap(t *testing.T) {
	c := context.Background()
	redisClient, pool, pgContainer, redisContainer, queries, catalogService, _ := setup(t)(c)
	defer teardown(t)(redisClient, pool, pgContainer, redisContainer)

	ownerKey := "user:" + uuid.NewString()
	productIds := make([]uuid.UUID, 0, testCompareLimit)
	for i := range testCompareLimit {
		product := seedProduct(t, c, queries, fmt.Sprintf("phone %d", i), true)
		productIds = append(productIds, product.ID)
		_, err := catalogService.ToggleCompare(c, ownerKey, request.ToggleProduct{
			ProductId: product.ID,
		})
		require.NoError(t, err)
	}

	toggle, err := catalogService.ToggleCompare(c, ownerKey, request.ToggleProduct{
		ProductId: productIds[0],
	})
	require.NoError(t, err)
	assert.Equal(t, ToggleRemoved, toggle.Action)
	assert.Equal(t, int64(testCompareLimit-1), toggle.Count)
}

func TestSearchSuggest(t *testing.T) {
	c := context.Background()
	redisClient, pool, pgContainer, redisContainer, queries, catalogService, _ := setup(t)(c)
	defer teardown(t)(redisClient, pool, pgContainer, redisContainer)

	matching := seedProduct(t, c, queries, "Galaxy S25", true)
	seedProduct(t, c, queries, "Pixel 9", true)
	seedProduct(t, c, queries, "galaxy tab", false)

	suggestions, err := catalogService.SearchSuggest(c, "galaxy")
	require.NoError(t, err)
	require.Len(t, suggestions, 1, "inactive products should be excluded")
	assert.Equal(t, matching.ID, suggestions[0].ID)
	assert.Equal(t, "Galaxy S25", suggestions[0].Name)

	// Second call is served from the cache.
	cached, err := catalogService.SearchSuggest(c, "Galaxy")
	require.NoError(t, err)
	require.Len(t, cached, 1)
	assert.Equal(t, matching.ID, cached[0].ID)
}

func TestSearchSuggestEmptyQuery(t *testing.T) {
	c := context.Background()
	redisClient, pool, pgContainer, redisContainer, _, catalogService, _ := setup(t)(c)
	defer teardown(t)(redisClient, pool, pgContainer, redisContainer)

	suggestions, err := catalogService.SearchSuggest(c, "   ")
	require.NoError(t, err)
	assert.Empty(t, suggestions)
}
