package controller

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	inHttp "github.com/prasetya/phoneshop/internal/http"
	"github.com/prasetya/phoneshop/internal/log"
	"github.com/prasetya/phoneshop/internal/otel"
	"github.com/prasetya/phoneshop/order/service"
)

const (
	defaultPopularDays  = 30
	defaultPopularLimit = 10
)

type ReportController struct {
	service *service.ReportService
}

func AttachReportController(router *mux.Router, service *service.ReportService) {
	controller := ReportController{service: service}

	sub := router.PathPrefix("/reports").Subrouter()
	sub.HandleFunc("/popular-products", controller.PopularProducts).Methods(http.MethodGet)
	sub.HandleFunc("/sales", controller.SalesStats).Methods(http.MethodGet)
}

func (t ReportController) PopularProducts(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "ReportController PopularProducts")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KEY_TAG, "ReportController PopularProducts").
		Logger()

	days := defaultPopularDays
	if raw := r.URL.Query().Get("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			if err != nil {
				err = fmt.Errorf("failed parsing days=%s with error=%w", raw, err)
			} else {
				err = fmt.Errorf("days=%s must be at least 1", raw)
			}
			otel.RecordError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
				"status":     "failed",
				"statusCode": http.StatusBadRequest,
				"message":    err.Error(),
			})
			return
		}
		days = parsed
	}

	limit := int32(defaultPopularLimit)
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 32)
		if err != nil || parsed < 1 {
			if err != nil {
				err = fmt.Errorf("failed parsing limit=%s with error=%w", raw, err)
			} else {
				err = fmt.Errorf("limit=%s must be at least 1", raw)
			}
			otel.RecordError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
				"status":     "failed",
				"statusCode": http.StatusBadRequest,
				"message":    err.Error(),
			})
			return
		}
		limit = int32(parsed)
	}

	logger = logger.With().Str(log.KEY_PROCESS, "finding popular products").Logger()
	logger.Info().Msg("finding popular products")
	c = logger.WithContext(c)
	products, err := t.service.PopularProducts(c, days, limit)
	if err != nil {
		err = fmt.Errorf("failed finding popular products with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteErrorResponse(c, w, err)
		return
	}
	logger.Info().Msgf("found %d popular products", len(products))

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "popular products found",
		"data": map[string]interface{}{
			"products": products,
		},
	})
}

func (t ReportController) SalesStats(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "ReportController SalesStats")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KEY_TAG, "ReportController SalesStats").
		Logger()

	to := time.Now()
	from := to.AddDate(0, 0, -defaultPopularDays)
	if raw := r.URL.Query().Get("from"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			err = fmt.Errorf("failed parsing from=%s with error=%w", raw, err)
			otel.RecordError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
				"status":     "failed",
				"statusCode": http.StatusBadRequest,
				"message":    err.Error(),
			})
			return
		}
		from = parsed
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			err = fmt.Errorf("failed parsing to=%s with error=%w", raw, err)
			otel.RecordError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
				"status":     "failed",
				"statusCode": http.StatusBadRequest,
				"message":    err.Error(),
			})
			return
		}
		to = parsed
	}

	logger = logger.With().Str(log.KEY_PROCESS, "finding sales stats").Logger()
	logger.Info().Msg("finding sales stats")
	c = logger.WithContext(c)
	stats, err := t.service.SalesStats(c, from, to)
	if err != nil {
		err = fmt.Errorf("failed finding sales stats with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteErrorResponse(c, w, err)
		return
	}
	logger.Info().Msg("found sales stats")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "sales stats found",
		"data": map[string]interface{}{
			"stats": stats,
		},
	})
}
