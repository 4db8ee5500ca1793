package main

import (
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/robalobadob/wordle-arena/internal/env"
	"github.com/robalobadob/wordle-arena/internal/envserver"
	"github.com/robalobadob/wordle-arena/internal/metrics"
)

var serveEnvCmd = &cobra.Command{
	Use:   "serve-env",
	Short: "Serve the in-process environment over HTTP",
	Long: `Serve guessing environments over HTTP so strategies can be played remotely.

Sessions require a bearer token signed with ENV_SECRET when it is set.

Examples:
  PORT=5175 ENV_MODE=daily wordle-arena serve-env`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		lc, err := localConfig(cfg)
		if err != nil {
			return err
		}
		if _, err := env.NewLocal(lc); err != nil {
			return err
		}

		srv := envserver.New(envserver.Config{
			Factory:  env.LocalFactory(lc),
			Secret:   cfg.EnvSecret,
			Metrics:  metrics.NewPrometheusRecorder(prometheus.DefaultRegisterer),
			Gatherer: prometheus.DefaultGatherer,
			IdleTTL:  cfg.SessionTTL,
		})
		if cfg.EnvSecret == "" {
			log.Warn().Msg("ENV_SECRET not set, sessions are unauthenticated")
		}
		log.Info().Str("port", cfg.Port).Str("mode", lc.Mode).Msg("starting environment server")
		if err := srv.Start(cmd.Context(), ":"+cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	},
}
