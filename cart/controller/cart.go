package controller

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/prasetya/phoneshop/cart/service"
	"github.com/prasetya/phoneshop/cart/pkg/request"
	inHttp "github.com/prasetya/phoneshop/internal/http"
	"github.com/prasetya/phoneshop/internal/log"
	"github.com/prasetya/phoneshop/internal/middleware"
	"github.com/prasetya/phoneshop/internal/otel"
)

type CartController struct {
	service *service.CartService
}

func AttachCartController(router *mux.Router, service *service.CartService) {
	controller := CartController{service: service}

	sub := router.PathPrefix("/cart").Subrouter()
	sub.HandleFunc("", controller.GetCart).Methods(http.MethodGet)
	sub.HandleFunc("/count", controller.GetCount).Methods(http.MethodGet)
	sub.HandleFunc("/add", controller.AddToCart).Methods(http.MethodPost)
	sub.HandleFunc("/update", controller.UpdateQuantity).Methods(http.MethodPost)
	sub.HandleFunc("/remove", controller.RemoveItem).Methods(http.MethodPost)
}

func (t CartController) AddToCart(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CartController AddToCart")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KEY_TAG, "CartController AddToCart").
		Logger()

	logger = logger.With().Str(log.KEY_PROCESS, "decoding requestbody").Logger()
	logger.Info().Msg("decoding requestbody")
	reqBody := request.AddToCart{}
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

	ownerKey := middleware.OwnerKeyFromContext(c)
	logger = logger.With().
		Str(log.KEY_OWNER_KEY, ownerKey).
		Str(log.KEY_PROCESS, "adding to cart").
		Logger()
	logger.Info().Msg("adding to cart")
	c = logger.WithContext(c)
	summary, err := t.service.AddToCart(c, ownerKey, reqBody)
	if err != nil {
		err = fmt.Errorf("failed adding to cart with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteErrorResponse(c, w, err)
		return
	}
	logger.Info().Msg("added to cart")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "successfully added to cart",
		"data": map[string]interface{}{
			"cart": summary,
		},
	})
}

func (t CartController) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CartController UpdateQuantity")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KEY_TAG, "CartController UpdateQuantity").
		Logger()

	logger = logger.With().Str(log.KEY_PROCESS, "decoding requestbody").Logger()
	logger.Info().Msg("decoding requestbody")
	reqBody := request.UpdateQuantity{}
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

	ownerKey := middleware.OwnerKeyFromContext(c)
	logger = logger.With().
		Str(log.KEY_OWNER_KEY, ownerKey).
		Str(log.KEY_ENTRY_ID, reqBody.EntryId.String()).
		Str(log.KEY_PROCESS, "updating quantity").
		Logger()
	logger.Info().Msg("updating quantity")
	c = logger.WithContext(c)
	summary, err := t.service.UpdateQuantity(c, ownerKey, reqBody)
	if err != nil {
		err = fmt.Errorf("failed updating quantity with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteErrorResponse(c, w, err)
		return
	}
	logger.Info().Msg("updated quantity")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "successfully updated quantity",
		"data": map[string]interface{}{
			"cart": summary,
		},
	})
}

func (t CartController) RemoveItem(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CartController RemoveItem")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KEY_TAG, "CartController RemoveItem").
		Logger()

	logger = logger.With().Str(log.KEY_PROCESS, "decoding requestbody").Logger()
	logger.Info().Msg("decoding requestbody")
	reqBody := request.RemoveItem{}
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

	ownerKey := middleware.OwnerKeyFromContext(c)
	logger = logger.With().
		Str(log.KEY_OWNER_KEY, ownerKey).
		Str(log.KEY_ENTRY_ID, reqBody.EntryId.String()).
		Str(log.KEY_PROCESS, "removing item").
		Logger()
	logger.Info().Msg("removing item")
	c = logger.WithContext(c)
	summary, err := t.service.RemoveItem(c, ownerKey, reqBody)
	if err != nil {
		err = fmt.Errorf("failed removing item with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteErrorResponse(c, w, err)
		return
	}
	logger.Info().Msg("removed item")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "successfully removed item",
		"data": map[string]interface{}{
			"cart": summary,
		},
	})
}

func (t CartController) GetCart(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CartController GetCart")
	defer span.End()

	ownerKey := middleware.OwnerKeyFromContext(c)
	logger := zerolog.Ctx(c).
		With().
		Str(log.KEY_TAG, "CartController GetCart").
		Str(log.KEY_OWNER_KEY, ownerKey).
		Str(log.KEY_PROCESS, "finding cart").
		Logger()

	logger.Info().Msg("finding cart")
	c = logger.WithContext(c)
	summary, err := t.service.GetCart(c, ownerKey)
	if err != nil {
		err = fmt.Errorf("failed finding cart with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteErrorResponse(c, w, err)
		return
	}
	logger.Info().Msg("found cart")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "cart found",
		"data": map[string]interface{}{
			"cart": summary,
		},
	})
}

func (t CartController) GetCount(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CartController GetCount")
	defer span.End()

	ownerKey := middleware.OwnerKeyFromContext(c)
	logger := zerolog.Ctx(c).
		With().
		Str(log.KEY_TAG, "CartController GetCount").
		Str(log.KEY_OWNER_KEY, ownerKey).
		Str(log.KEY_PROCESS, "counting cart items").
		Logger()

	logger.Info().Msg("counting cart items")
	c = logger.WithContext(c)
	count, err := t.service.GetCount(c, ownerKey)
	if err != nil {
		err = fmt.Errorf("failed counting cart items with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteErrorResponse(c, w, err)
		return
	}
	logger.Info().Msgf("counted %d cart items", count)

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "cart count found",
		"data": map[string]interface{}{
			"count": count,
		},
	})
}
