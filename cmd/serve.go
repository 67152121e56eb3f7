package cmd

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mountjawa/peakfinder/internal/contract"
	"github.com/mountjawa/peakfinder/internal/web"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// serveCmd runs the recommendation web app.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the recommendation form and JSON API over HTTP",
	Long: `Start an HTTP server with the preference form and a JSON API.

Routes:
  GET  /                  preference form
  POST /recommend         ranked results page
  GET  /api/v1/recommend  ranked results as JSON
  GET  /api/v1/options    province and difficulty options, input bounds
  GET  /healthz           liveness probe

Examples:
  # Serve on the default address
  peakfinder serve --catalog mountains.csv --artifacts bundle/

  # Listen on all interfaces
  peakfinder serve --addr 0.0.0.0:8501`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
			With().Timestamp().Str("service", "peakfinder").Logger()

		srv, err := web.NewServer(cfg, env, historyManager, logger)
		if err != nil {
			contract.LogFatal("Cannot create web server", err)
		}

		ctx, stop := signal.NotifyContext(rootCtx, os.Interrupt, syscall.SIGTERM)
		defer stop()
		if err := srv.ListenAndServe(ctx, cfg.Addr); err != nil {
			contract.LogFatal("Web server stopped", err)
		}
	},
}
