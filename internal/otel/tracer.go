package otel

import (
	"go.opentelemetry.io/otel"

	"github.com/prasetya/phoneshop/internal/constants"
)

var Tracer = otel.Tracer(constants.APP_MAIN_PHONESHOP)
