package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/prasetya/phoneshop/cart/service"
	"github.com/prasetya/phoneshop/internal/config"
	"github.com/prasetya/phoneshop/internal/constants"
	"github.com/prasetya/phoneshop/internal/infra"
	"github.com/prasetya/phoneshop/internal/log"
	"github.com/prasetya/phoneshop/internal/otel"
	"github.com/prasetya/phoneshop/internal/repository"
)

// runCartSweeper deletes idle anonymous carts on a fixed interval until the
// process is interrupted.
func runCartSweeper(c context.Context) {
	c, span := otel.Tracer.Start(c, "runCartSweeper")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KEY_APP_NAME, constants.APP_CART_SWEEPER).
		Str(log.KEY_TAG, "main runCartSweeper").
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
	otelShutdowns, err := otel.InitOtelSdk(c, constants.APP_CART_SWEEPER, cfg.Otel)
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

	logger = logger.With().Str(log.KEY_PROCESS, "initializing cache").Logger()
	logger.Info().Msg("initializing cache")
	c = logger.WithContext(c)
	cache := infra.NewCacheClient(c, cfg.Cache)
	defer func() {
		logger.Info().Msg("shutting down cache")
		if err := cache.Close(); err != nil {
			logger.Error().Err(err).Msgf("failed shutting down cache with error=%s", err.Error())
			return
		}
		logger.Info().Msg("shutdown cache")
	}()
	logger.Info().Msg("initialized cache")

	queries := repository.New(db)
	carts := service.NewCartService(db, queries, cache)

	maxAge := time.Duration(cfg.Cart.SessionMaxAgeDays) * 24 * time.Hour
	interval := time.Duration(cfg.Cart.SweepIntervalMinutes) * time.Minute
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	logger = logger.With().Str(log.KEY_PROCESS, "sweeping expired carts").Logger()
	logger.Info().Msgf("sweeping expired carts every %s", interval)
	for {
		select {
		case <-c.Done():
			logger.Info().Msg("received interuption signal shutting down")
			return
		case <-ticker.C:
			c := logger.WithContext(c)
			purged, err := carts.PurgeExpired(c, maxAge)
			if err != nil {
				err = fmt.Errorf("failed purging expired carts with error=%w", err)
				otel.RecordError(err, span)
				logger.Error().Err(err).Msg(err.Error())
				continue
			}
			logger.Info().Int64(log.KEY_PURGED_CARTS, purged).Msgf("purged %d expired carts", purged)
		}
	}
}
