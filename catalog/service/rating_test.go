package service

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	inErrors "github.com/prasetya/phoneshop/internal/errors"
	"github.com/prasetya/phoneshop/internal/repository"
)

func TestAverageRating(t *testing.T) {
	tests := []struct {
		name     string
		ratings  []int32
		expected string
	}{
		{
			name:     "given no ratings should average to zero",
			ratings:  []int32{},
			expected: "0",
		},
		{
			name:     "given single rating should return it",
			ratings:  []int32{4},
			expected: "4",
		},
		{
			name:     "given 5 4 3 should average to 4",
			ratings:  []int32{5, 4, 3},
			expected: "4",
		},
		{
			name:     "given 4 5 3 order should not matter",
			ratings:  []int32{4, 5, 3},
			expected: "4",
		},
		{
			name:     "given repeating third should round to two decimals",
			ratings:  []int32{5, 5, 4},
			expected: "4.67",
		},
		{
			name:     "given half should round half away from zero",
			ratings:  []int32{4, 5},
			expected: "4.5",
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			average := averageRating(test.ratings)
			assert.Equal(t, test.expected, average.String())
		})
	}
}

func TestApproveReviewRecomputesRating(t *testing.T) {
	c := context.Background()
	redisClient, pool, pgContainer, redisContainer, queries, _, ratingService := setup(t)(c)
	defer teardown(t)(redisClient, pool, pgContainer, redisContainer)

	product := seedProduct(t, c, queries, "phone", true)
	seedReview(t, c, queries, product, 5, true)
	seedReview(t, c, queries, product, 3, true)
	pending := seedReview(t, c, queries, product, 4, false)

	// Pending review is invisible until approved.
	rating, err := ratingService.RecomputeRating(c, product.ID)
	require.NoError(t, err)
	assert.Equal(t, "4", rating.Rating.String())
	assert.Equal(t, int32(2), rating.ReviewsCount)

	rating, err = ratingService.ApproveReview(c, pending.ID)
	require.NoError(t, err)
	assert.Equal(t, "4", rating.Rating.String())
	assert.Equal(t, int32(3), rating.ReviewsCount)

	stored, err := queries.FindProductById(c, product.ID)
	require.NoError(t, err)
	assert.Equal(t, "4.00", repository.DecimalFromNumeric(stored.Rating).StringFixed(2))
	assert.Equal(t, int32(3), stored.ReviewsCount)
}

func TestConcurrentApproveReviews(t *testing.T) {
	c := context.Background()
	redisClient, pool, pgContainer, redisContainer, queries, _, ratingService := setup(t)(c)
	defer teardown(t)(redisClient, pool, pgContainer, redisContainer)

	product := seedProduct(t, c, queries, "phone", true)
	pending := []repository.Review{
		seedReview(t, c, queries, product, 5, false),
		seedReview(t, c, queries, product, 4, false),
		seedReview(t, c, queries, product, 3, false),
	}

	wg := sync.WaitGroup{}
	for _, review := range pending {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := ratingService.ApproveReview(c, review.ID)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	// Every recompute locks the product row before reading the approved set,
	// so whichever approval commits last has seen all three reviews.
	stored, err := queries.FindProductById(c, product.ID)
	require.NoError(t, err)
	assert.Equal(t, int32(3), stored.ReviewsCount)
	assert.Equal(t, "4.00", repository.DecimalFromNumeric(stored.Rating).StringFixed(2))
}

func TestApproveReviewUnknownReview(t *testing.T) {
	c := context.Background()
	redisClient, pool, pgContainer, redisContainer, _, _, ratingService := setup(t)(c)
	defer teardown(t)(redisClient, pool, pgContainer, redisContainer)

	_, err := ratingService.ApproveReview(c, uuid.New())
	assert.ErrorIs(t, err, inErrors.ErrEntryNotFound)
}

func TestRecomputeAll(t *testing.T) {
	c := context.Background()
	redisClient, pool, pgContainer, redisContainer, queries, _, ratingService := setup(t)(c)
	defer teardown(t)(redisClient, pool, pgContainer, redisContainer)

	first := seedProduct(t, c, queries, "first", true)
	second := seedProduct(t, c, queries, "second", true)
	seedProduct(t, c, queries, "unreviewed", true)
	seedReview(t, c, queries, first, 5, true)
	seedReview(t, c, queries, first, 4, true)
	seedReview(t, c, queries, second, 2, true)

	recomputed, err := ratingService.RecomputeAll(c)
	require.NoError(t, err)
	assert.Equal(t, 2, recomputed)

	stored, err := queries.FindProductById(c, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "4.50", repository.DecimalFromNumeric(stored.Rating).StringFixed(2))
	assert.Equal(t, int32(2), stored.ReviewsCount)

	stored, err = queries.FindProductById(c, second.ID)
	require.NoError(t, err)
	assert.Equal(t, "2.00", repository.DecimalFromNumeric(stored.Rating).StringFixed(2))
	assert.Equal(t, int32(1), stored.ReviewsCount)
}
