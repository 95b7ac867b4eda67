package commands

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/emilianobilli/SemanticSearch/internal/logging"
	"github.com/emilianobilli/SemanticSearch/internal/server"
)

// NewServeCmd constructs the `semsearch serve` command, which starts the
// HTTP server exposing the ingest and search API.
func NewServeCmd() *cobra.Command {
	var host string
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the semsearch HTTP server",
		Long: `Start the semsearch HTTP server.

The server exposes document ingest, semantic search, health, readiness,
and Prometheus metrics over REST. Set SEMSEARCH_API_KEY to require Bearer
authentication on the /api routes.

Examples:
  semsearch serve
  semsearch serve --port 9090
  EMBEDDING_PROVIDER=openai semsearch serve`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			log := logging.New()
			ctx = logging.WithLogger(ctx, log)

			log.Info("serve starting", slog.String("backend", getEnvOrDefault("EMBEDDING_PROVIDER", "ollama")))

			d, err := buildDeps(ctx, log)
			if err != nil {
				return fmt.Errorf("serve: %w", err)
			}
			defer d.close()

			pingers := []server.Pinger{
				server.NewEmbedderPinger(d.embedder, getEnvOrDefault("EMBEDDING_PROVIDER", "ollama")),
				server.NewNamedPinger(d.index, "qdrant"),
				server.NewNamedPinger(d.tables, "sqlite"),
			}

			srv, err := server.New(d.pipeline, &server.Config{
				Host:    host,
				Port:    port,
				Logger:  log,
				Pingers: pingers,
				APIKey:  os.Getenv("SEMSEARCH_API_KEY"),
			}, prometheus.DefaultRegisterer)
			if err != nil {
				return fmt.Errorf("serve: failed to create server: %w", err)
			}

			return srv.Start(ctx)
		},
	}

	cmd.Flags().StringVar(&host, "host", "127.0.0.1", "Host address to bind to")
	cmd.Flags().IntVarP(&port, "port", "p", 8080, "TCP port to listen on")

	return cmd
}
