package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/prasetya/phoneshop/internal/constants"
	"github.com/prasetya/phoneshop/internal/log"
)

func Start() {
	logger := log.InitLogger("/var/log/phoneshop.log").
		With().
		Str(log.KEY_APP_NAME, constants.APP_MAIN_PHONESHOP).
		Str(log.KEY_TAG, "main Start").
		Logger()

	logger.Info().Msg("adding listener for SIGINT and SIGTERM")
	c, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	logger.Info().Msg("added listener for SIGINT and SIGTERM")

	c = logger.WithContext(c)

	rootCmd := &cobra.Command{}
	commands := []*cobra.Command{
		{
			Use:   "server",
			Short: "Run storefront server",
			Run: func(cmd *cobra.Command, args []string) {
				runStorefront(cmd.Context())
			},
		},
		{
			Use:   "sweeper",
			Short: "Run expired cart sweeper",
			Run: func(cmd *cobra.Command, args []string) {
				runCartSweeper(cmd.Context())
			},
		},
		{
			Use:   "recompute-ratings",
			Short: "Recompute product rating aggregates",
			Run: func(cmd *cobra.Command, args []string) {
				runRatingRecompute(cmd.Context())
			},
		},
	}
	rootCmd.AddCommand(commands...)
	if err := rootCmd.ExecuteContext(c); err != nil {
		logger.Fatal().Err(err).Msgf("error when executing command=%s", err.Error())
	}
}
