package controller

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/prasetya/phoneshop/catalog/service"
	"github.com/prasetya/phoneshop/catalog/pkg/request"
	inHttp "github.com/prasetya/phoneshop/internal/http"
	"github.com/prasetya/phoneshop/internal/log"
	"github.com/prasetya/phoneshop/internal/middleware"
	"github.com/prasetya/phoneshop/internal/otel"
)

type CatalogController struct {
	catalog *service.CatalogService
	rating  *service.RatingService
}

func AttachCatalogController(
	router *mux.Router,
	catalog *service.CatalogService,
	rating *service.RatingService,
) {
	controller := CatalogController{catalog: catalog, rating: rating}

	router.HandleFunc("/wishlist/add", controller.ToggleWishlist).Methods(http.MethodPost)
	router.HandleFunc("/compare/add", controller.ToggleCompare).Methods(http.MethodPost)
	router.HandleFunc("/search/suggest", controller.SearchSuggest).Methods(http.MethodGet)
	router.HandleFunc("/reviews/approve", controller.ApproveReview).Methods(http.MethodPost)
}

func (t CatalogController) ToggleWishlist(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CatalogController ToggleWishlist")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KEY_TAG, "CatalogController ToggleWishlist").
		Logger()

	reqBody, ok := decodeToggleRequest(c, w, r, logger)
	if !ok {
		return
	}

	ownerKey := middleware.OwnerKeyFromContext(c)
	logger = logger.With().
		Str(log.KEY_OWNER_KEY, ownerKey).
		Str(log.KEY_PRODUCT_ID, reqBody.ProductId.String()).
		Str(log.KEY_PROCESS, "toggling wishlist").
		Logger()
	logger.Info().Msg("toggling wishlist")
	c = logger.WithContext(c)
	toggle, err := t.catalog.ToggleWishlist(c, ownerKey, reqBody)
	if err != nil {
		err = fmt.Errorf("failed toggling wishlist with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteErrorResponse(c, w, err)
		return
	}
	logger.Info().Msgf("toggled wishlist action=%s", toggle.Action)

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "successfully toggled wishlist",
		"data": map[string]interface{}{
			"toggle": toggle,
		},
	})
}

func (t CatalogController) ToggleCompare(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CatalogController ToggleCompare")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KEY_TAG, "CatalogController ToggleCompare").
		Logger()

	reqBody, ok := decodeToggleRequest(c, w, r, logger)
	if !ok {
		return
	}

	ownerKey := middleware.OwnerKeyFromContext(c)
	logger = logger.With().
		Str(log.KEY_OWNER_KEY, ownerKey).
		Str(log.KEY_PRODUCT_ID, reqBody.ProductId.String()).
		Str(log.KEY_PROCESS, "toggling compare").
		Logger()
	logger.Info().Msg("toggling compare")
	c = logger.WithContext(c)
	toggle, err := t.catalog.ToggleCompare(c, ownerKey, reqBody)
	if err != nil {
		err = fmt.Errorf("failed toggling compare with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteErrorResponse(c, w, err)
		return
	}
	logger.Info().Msgf("toggled compare action=%s", toggle.Action)

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "successfully toggled compare",
		"data": map[string]interface{}{
			"toggle": toggle,
		},
	})
}

func (t CatalogController) SearchSuggest(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CatalogController SearchSuggest")
	defer span.End()

	query := r.URL.Query().Get("q")
	logger := zerolog.Ctx(c).
		With().
		Str(log.KEY_TAG, "CatalogController SearchSuggest").
		Str(log.KEY_QUERY, query).
		Str(log.KEY_PROCESS, "finding suggestions").
		Logger()

	logger.Info().Msg("finding suggestions")
	c = logger.WithContext(c)
	suggestions, err := t.catalog.SearchSuggest(c, query)
	if err != nil {
		err = fmt.Errorf("failed finding suggestions with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteErrorResponse(c, w, err)
		return
	}
	logger.Info().Msgf("found %d suggestions", len(suggestions))

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "suggestions found",
		"data": map[string]interface{}{
			"suggestions": suggestions,
		},
	})
}

func (t CatalogController) ApproveReview(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CatalogController ApproveReview")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KEY_TAG, "CatalogController ApproveReview").
		Logger()

	logger = logger.With().Str(log.KEY_PROCESS, "decoding requestbody").Logger()
	logger.Info().Msg("decoding requestbody")
	reqBody := request.ApproveReview{}
	if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
		err = fmt.Errorf("failed decoding request body with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusBadRequest,
			"message":    err.Error(),
		})
		return
	}
	logger.Info().Msg("decoded request body")

	logger = logger.With().Str(log.KEY_PROCESS, "validating requestbody").Logger()
	logger.Info().Msg("validating request body")
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.StructCtx(c, reqBody); err != nil {
		err = fmt.Errorf("failed validating request body with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusBadRequest,
			"message":    err.Error(),
		})
		return
	}
	logger.Info().Msg("validated request body")

	logger = logger.With().
		Str(log.KEY_REVIEW_ID, reqBody.ReviewId.String()).
		Str(log.KEY_PROCESS, "approving review").
		Logger()
	logger.Info().Msg("approving review")
	c = logger.WithContext(c)
	rating, err := t.rating.ApproveReview(c, reqBody.ReviewId)
	if err != nil {
		err = fmt.Errorf("failed approving review with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteErrorResponse(c, w, err)
		return
	}
	logger.Info().Msg("approved review")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "successfully approved review",
		"data": map[string]interface{}{
			"rating": rating,
		},
	})
}

func decodeToggleRequest(
	c context.Context,
	w http.ResponseWriter,
	r *http.Request,
	logger zerolog.Logger,
) (request.ToggleProduct, bool) {
	logger = logger.With().Str(log.KEY_PROCESS, "decoding requestbody").Logger()
	logger.Info().Msg("decoding requestbody")
	reqBody := request.ToggleProduct{}
	if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
		err = fmt.Errorf("failed decoding request body with error=%w", err)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusBadRequest,
			"message":    err.Error(),
		})
		return request.ToggleProduct{}, false
	}
	logger.Info().Msg("decoded request body")

	logger = logger.With().Str(log.KEY_PROCESS, "validating requestbody").Logger()
	logger.Info().Msg("validating request body")
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.StructCtx(c, reqBody); err != nil {
		err = fmt.Errorf("failed validating request body with error=%w", err)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusBadRequest,
			"message":    err.Error(),
		})
		return request.ToggleProduct{}, false
	}
	logger.Info().Msg("validated request body")

	return reqBody, true
}
