package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	inErrors "github.com/prasetya/phoneshop/internal/errors"
	"github.com/prasetya/phoneshop/internal/otel"
)

func WriteJsonResponse(
	c context.Context,
	w http.ResponseWriter,
	header map[string]string,
	body map[string]interface{},
) {
	c, span := otel.Tracer.Start(c, "WriteJsonResponse")
	defer span.End()

	logger := zerolog.Ctx(c)

	w.Header().Add(HeaderContentType, HeaderValueJson)
	for k, v := range header {
		w.Header().Add(k, v)
	}

	if v, ok := body["statusCode"]; ok {
		w.WriteHeader(v.(int))
	}

	err := json.NewEncoder(w).Encode(body)
	if err != nil {
		logger.Error().
			Err(err).
			Msgf("failed encode response body with error=%s", err.Error())
		return
	}
}

// WriteErrorResponse maps the error's kind to an http status and writes the
// failure envelope so clients can rebuild the sentinel from errorKind.
func WriteErrorResponse(c context.Context, w http.ResponseWriter, err error) {
	kind := inErrors.Kind(err)
	WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "failed",
		"statusCode": StatusFromKind(kind),
		"message":    err.Error(),
		"errorKind":  kind,
	})
}

func StatusFromKind(kind string) int {
	switch kind {
	case inErrors.KindInvalidQuantity:
		return http.StatusBadRequest
	case inErrors.KindProductNotFound, inErrors.KindEntryNotFound:
		return http.StatusNotFound
	case inErrors.KindProductUnavailable:
		return http.StatusConflict
	case inErrors.KindUnauthorized:
		return http.StatusForbidden
	case inErrors.KindTransientStore:
		return http.StatusServiceUnavailable
	case inErrors.KindCompareListFull:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
