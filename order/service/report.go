package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	inErrors "github.com/prasetya/phoneshop/internal/errors"
	"github.com/prasetya/phoneshop/internal/log"
	"github.com/prasetya/phoneshop/internal/otel"
	"github.com/prasetya/phoneshop/internal/repository"
	"github.com/prasetya/phoneshop/order/pkg/response"
)

type ReportService struct {
	queries *repository.Queries
}

func NewReportService(queries *repository.Queries) ReportService {
	return ReportService{queries: queries}
}

// PopularProducts returns the best selling products over the trailing window,
// cancelled orders excluded.
func (s ReportService) PopularProducts(
	c context.Context,
	days int,
	limit int32,
) ([]response.PopularProduct, error) {
	c, span := otel.Tracer.Start(c, "ReportService PopularProducts")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KEY_TAG, "ReportService PopularProducts").
		Str(log.KEY_PROCESS, "finding popular products").
		Logger()

	logger.Info().Msgf("finding popular products for the last %d days", days)
	rows, err := s.queries.PopularProducts(c, repository.PopularProductsParams{
		Since: time.Now().AddDate(0, 0, -days),
		Limit: limit,
	})
	if err != nil {
		err = fmt.Errorf(
			"failed finding popular products with error=%w",
			errors.Join(inErrors.ErrTransientStore, err),
		)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}

	products := make([]response.PopularProduct, len(rows))
	for i, row := range rows {
		products[i] = response.PopularProduct{
			ProductId:     row.ProductID,
			Name:          row.Name,
			TotalQuantity: row.TotalQuantity,
			TotalRevenue:  repository.DecimalFromNumeric(row.TotalRevenue),
		}
	}
	logger.Info().Msgf("found %d popular products", len(products))

	return products, nil
}

func (s ReportService) SalesStats(
	c context.Context,
	from time.Time,
	to time.Time,
) (response.SalesStats, error) {
	c, span := otel.Tracer.Start(c, "ReportService SalesStats")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KEY_TAG, "ReportService SalesStats").
		Str(log.KEY_PROCESS, "finding sales stats").
		Logger()

	logger.Info().Msgf("finding sales stats from=%s to=%s", from, to)
	row, err := s.queries.SalesStats(c, repository.SalesStatsParams{From: from, To: to})
	if err != nil {
		err = fmt.Errorf(
			"failed finding sales stats with error=%w",
			errors.Join(inErrors.ErrTransientStore, err),
		)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.SalesStats{}, err
	}
	logger.Info().Msg("found sales stats")

	return response.SalesStats{
		From:        from,
		To:          to,
		OrdersCount: row.OrdersCount,
		ItemsSold:   row.ItemsSold,
		Revenue:     repository.DecimalFromNumeric(row.Revenue),
	}, nil
}
