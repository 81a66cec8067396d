package cmd

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/prasetya/phoneshop/catalog/service"
	"github.com/prasetya/phoneshop/internal/config"
	"github.com/prasetya/phoneshop/internal/constants"
	"github.com/prasetya/phoneshop/internal/infra"
	"github.com/prasetya/phoneshop/internal/log"
	"github.com/prasetya/phoneshop/internal/otel"
	"github.com/prasetya/phoneshop/internal/repository"
)

// runRatingRecompute refreshes every product's rating aggregate once and
// exits. Meant for backfills after bulk review imports or moderation sweeps.
func runRatingRecompute(c context.Context) {
	c, span := otel.Tracer.Start(c, "runRatingRecompute")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KEY_APP_NAME, constants.APP_RATING_RECOMPUTE).
		Str(log.KEY_TAG, "main runRatingRecompute").
		Logger()

	logger = logger.With().Str(log.KEY_PROCESS, "init config").Logger()
	logger.Info().Msg("initializing config")
	c = logger.WithContext(c)
	cfg := config.InitConfig(c, constants.APP_STOREFRONT)
	logger = logger.With().Any(log.KEY_CONFIG, cfg).Logger()
	logger.Info().Msg("initialized config")

	logger = logger.With().Str(log.KEY_PROCESS, "initializing otel sdk").Logger()
	logger.Info().Msg("initializing otel sdk")
	c = logger.WithContext(c)
	otelShutdowns, err := otel.InitOtelSdk(c, constants.APP_RATING_RECOMPUTE, cfg.Otel)
	if err != nil {
		err = fmt.Errorf("failed initializing otel sdk with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return
	}
	defer func() {
		logger.Info().Msg("shutting down otel")
		c = logger.WithContext(c)
		if err := otel.ShutdownOtel(c, otelShutdowns); err != nil {
			err = fmt.Errorf("failed shutting down otel with error=%w", err)
			otel.RecordError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return
		}
		logger.Info().Msg("shutdown otel")
	}()
	logger.Info().Msg("initialized otel sdk")

	logger = logger.With().Str(log.KEY_PROCESS, "initializing database").Logger()
	logger.Info().Msg("initializing database")
	c = logger.WithContext(c)
	db := infra.NewDatabaseClient(c, cfg.Database)
	defer func() {
		logger.Info().Msg("shutting down database")
		db.Close()
		logger.Info().Msg("shutdown database")
	}()
	logger.Info().Msg("initialized database")

	queries := repository.New(db)
	ratings := service.NewRatingService(db, queries)

	logger = logger.With().Str(log.KEY_PROCESS, "recomputing ratings").Logger()
	logger.Info().Msg("recomputing ratings")
	c = logger.WithContext(c)
	recomputed, err := ratings.RecomputeAll(c)
	if err != nil {
		err = fmt.Errorf("failed recomputing ratings with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return
	}
	logger.Info().Msgf("recomputed ratings for %d products", recomputed)
}
