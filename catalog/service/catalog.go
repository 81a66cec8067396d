package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/prasetya/phoneshop/catalog/cache"
	"github.com/prasetya/phoneshop/catalog/pkg/request"
	"github.com/prasetya/phoneshop/catalog/pkg/response"
	inErrors "github.com/prasetya/phoneshop/internal/errors"
	"github.com/prasetya/phoneshop/internal/log"
	"github.com/prasetya/phoneshop/internal/otel"
	"github.com/prasetya/phoneshop/internal/repository"
)

const (
	suggestCacheTTL = 5 * time.Minute
	suggestLimit    = 8

	ToggleAdded   = "added"
	ToggleRemoved = "removed"
)

type CatalogService struct {
	queries      *repository.Queries
	cache        *redis.Client
	compareLimit int64
}

func NewCatalogService(
	queries *repository.Queries,
	cache *redis.Client,
	compareLimit int64,
) CatalogService {
	return CatalogService{queries: queries, cache: cache, compareLimit: compareLimit}
}

func (s CatalogService) ToggleWishlist(
	c context.Context,
	ownerKey string,
	param request.ToggleProduct,
) (response.Toggle, error) {
	c, span := otel.Tracer.Start(c, "CatalogService ToggleWishlist")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KEY_TAG, "CatalogService ToggleWishlist").
		Str(log.KEY_OWNER_KEY, ownerKey).
		Str(log.KEY_PRODUCT_ID, param.ProductId.String()).
		Logger()

	if err := s.checkProduct(c, param.ProductId); err != nil {
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Toggle{}, err
	}

	arg := repository.OwnerProductParams{OwnerKey: ownerKey, ProductID: param.ProductId}

	logger = logger.With().Str(log.KEY_PROCESS, "toggling wishlist item").Logger()
	logger.Info().Msg("toggling wishlist item")
	deleted, err := s.queries.DeleteWishlistItem(c, arg)
	if err != nil {
		err = fmt.Errorf(
			"failed deleting wishlist item with error=%w",
			errors.Join(inErrors.ErrTransientStore, err),
		)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Toggle{}, err
	}

	action := ToggleRemoved
	if deleted == 0 {
		if _, err := s.queries.InsertWishlistItem(c, arg); err != nil {
			err = fmt.Errorf(
				"failed inserting wishlist item with error=%w",
				errors.Join(inErrors.ErrTransientStore, err),
			)
			otel.RecordError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return response.Toggle{}, err
		}
		action = ToggleAdded
	}

	count, err := s.queries.CountWishlist(c, ownerKey)
	if err != nil {
		err = fmt.Errorf(
			"failed counting wishlist with error=%w",
			errors.Join(inErrors.ErrTransientStore, err),
		)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Toggle{}, err
	}
	logger.Info().Msgf("toggled wishlist item action=%s count=%d", action, count)

	return response.Toggle{Action: action, Count: count}, nil
}

func (s CatalogService) ToggleCompare(
	c context.Context,
	ownerKey string,
	param request.ToggleProduct,
) (response.Toggle, error) {
	c, span := otel.Tracer.Start(c, "CatalogService ToggleCompare")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KEY_TAG, "CatalogService ToggleCompare").
		Str(log.KEY_OWNER_KEY, ownerKey).
		Str(log.KEY_PRODUCT_ID, param.ProductId.String()).
		Logger()

	if err := s.checkProduct(c, param.ProductId); err != nil {
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Toggle{}, err
	}

	arg := repository.OwnerProductParams{OwnerKey: ownerKey, ProductID: param.ProductId}

	logger = logger.With().Str(log.KEY_PROCESS, "toggling compare item").Logger()
	logger.Info().Msg("toggling compare item")
	deleted, err := s.queries.DeleteCompareItem(c, arg)
	if err != nil {
		err = fmt.Errorf(
			"failed deleting compare item with error=%w",
			errors.Join(inErrors.ErrTransientStore, err),
		)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Toggle{}, err
	}

	action := ToggleRemoved
	if deleted == 0 {
		count, err := s.queries.CountCompare(c, ownerKey)
		if err != nil {
			err = fmt.Errorf(
				"failed counting compare list with error=%w",
				errors.Join(inErrors.ErrTransientStore, err),
			)
			otel.RecordError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return response.Toggle{}, err
		}
		if count >= s.compareLimit {
			err = fmt.Errorf(
				"failed adding productId=%s with error=%w",
				param.ProductId.String(),
				inErrors.ErrCompareListFull,
			)
			otel.RecordError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return response.Toggle{}, err
		}
		if _, err := s.queries.InsertCompareItem(c, arg); err != nil {
			err = fmt.Errorf(
				"failed inserting compare item with error=%w",
				errors.Join(inErrors.ErrTransientStore, err),
			)
			otel.RecordError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return response.Toggle{}, err
		}
		action = ToggleAdded
	}

	count, err := s.queries.CountCompare(c, ownerKey)
	if err != nil {
		err = fmt.Errorf(
			"failed counting compare list with error=%w",
			errors.Join(inErrors.ErrTransientStore, err),
		)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Toggle{}, err
	}
	logger.Info().Msgf("toggled compare item action=%s count=%d", action, count)

	return response.Toggle{Action: action, Count: count}, nil
}

// SearchSuggest returns up to eight active products whose name contains the
// query, most reviewed first. Results are cached per normalized query.
func (s CatalogService) SearchSuggest(
	c context.Context,
	query string,
) ([]response.Suggestion, error) {
	c, span := otel.Tracer.Start(c, "CatalogService SearchSuggest")
	defer span.End()

	query = strings.TrimSpace(query)

	logger := zerolog.Ctx(c).
		With().
		Str(log.KEY_TAG, "CatalogService SearchSuggest").
		Str(log.KEY_QUERY, query).
		Logger()

	if query == "" {
		return []response.Suggestion{}, nil
	}

	cacheKey := fmt.Sprintf(cache.KEY_SEARCH_SUGGEST, strings.ToLower(query))
	logger = logger.With().
		Str(log.KEY_CACHE_KEY, cacheKey).
		Str(log.KEY_PROCESS, "finding suggestions in cache").
		Logger()
	logger.Info().Msg("finding suggestions in cache")
	cached, err := s.cache.Get(c, cacheKey).Result()
	if err == nil {
		suggestions := []response.Suggestion{}
		if err := json.Unmarshal([]byte(cached), &suggestions); err != nil {
			logger.Info().Err(err).Msg("failed unmarshaling cached suggestions, falling back to db")
		} else {
			logger.Info().Msg("found suggestions in cache")
			return suggestions, nil
		}
	}

	logger = logger.With().Str(log.KEY_PROCESS, "finding suggestions in db").Logger()
	logger.Info().Msg("finding suggestions in db")
	rows, err := s.queries.SearchSuggestions(c, repository.SearchSuggestionsParams{
		Query: query,
		Limit: suggestLimit,
	})
	if err != nil {
		err = fmt.Errorf(
			"failed finding suggestions with error=%w",
			errors.Join(inErrors.ErrTransientStore, err),
		)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	suggestions := make([]response.Suggestion, len(rows))
	for i, row := range rows {
		suggestions[i] = row.Response()
	}
	logger.Info().Msgf("found %d suggestions in db", len(suggestions))

	logger = logger.With().Str(log.KEY_PROCESS, "inserting suggestions to cache").Logger()
	logger.Info().Msg("inserting suggestions to cache")
	payload, err := json.Marshal(suggestions)
	if err != nil {
		err = fmt.Errorf("failed marshaling suggestions with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	if err := s.cache.Set(c, cacheKey, payload, suggestCacheTTL).Err(); err != nil {
		err = fmt.Errorf("failed inserting suggestions to cache with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	logger.Info().Msg("inserted suggestions to cache")

	return suggestions, nil
}

func (s CatalogService) checkProduct(c context.Context, productId uuid.UUID) error {
	_, err := s.queries.FindProductById(c, productId)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf(
				"failed finding productId=%s with error=%w",
				productId.String(),
				inErrors.ErrProductNotFound,
			)
		}
		return fmt.Errorf(
			"failed finding productId=%s with error=%w",
			productId.String(),
			errors.Join(inErrors.ErrTransientStore, err),
		)
	}
	return nil
}
