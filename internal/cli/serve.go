package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/darwinyusef/termsim/internal/logging"
	"github.com/darwinyusef/termsim/internal/metrics"
	"github.com/darwinyusef/termsim/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the exercise catalog over HTTP",
	Long: `Serve exposes the configured exercise source over HTTP so that other
termsim instances can use it with exercises.source: http.

Endpoints:
  GET /api/exercises           catalog summaries
  GET /api/exercises/{id}      one exercise document
  GET /api/exercise?topic=...  first exercise matching topic (and level 1-3)
  GET /healthz                 liveness
  GET /metrics                 Prometheus metrics`,
	Example: `  termsim serve
  termsim serve --addr 127.0.0.1:8080 --log-format json`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

var serveFlags struct {
	addr string
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveFlags.addr, "addr", "", "Listen address (default from termsim.yaml, then :3000)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := logging.New(cfg.Log.Format, cfg.Log.Level, rootFlags.verbose, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	source, err := newSource(cfg)
	if err != nil {
		return err
	}

	addr := resolveFlagString(cmd, "addr", serveFlags.addr, cfg.ServerAddr())
	v, _, _ := resolveVersionInfo()
	srv := server.New(source, logger,
		server.WithMetrics(metrics.NewRecorder()),
		server.WithVersion(v),
	)

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("Serving exercises from %s", sourceName(cfg))
	return srv.ListenAndServe(ctx, addr)
}
