// Package commands defines all Cobra CLI commands for the semsearch binary.
package commands

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/emilianobilli/SemanticSearch/internal/audit"
	"github.com/emilianobilli/SemanticSearch/internal/config"
	"github.com/emilianobilli/SemanticSearch/internal/logging"
)

// configPath holds the --config flag value for YAML config file override.
var configPath string

// loadedConfigPath stores the resolved config file path for audit logging.
var loadedConfigPath string

// NewRootCmd constructs the root Cobra command that all subcommands attach to.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "semsearch",
		Short: "Semantic document search over an embedding vector index",
		Long: `semsearch ingests text documents, splits them into overlapping
token-window chunks, embeds each chunk, and indexes the vectors in Qdrant.
Searches embed the query once and return the best-matching documents,
ranked by their closest chunk.

The embedding backend is selected via EMBEDDING_PROVIDER (ollama, openai,
azure) or a YAML config file (~/.semsearch/config.yaml).
See 'semsearch --help' for available commands.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Pick up a local .env if present. Real env vars still win.
			_ = godotenv.Load()

			log := logging.New()

			// Load YAML config (env vars always override YAML values).
			path, err := config.Load(configPath, log)
			if err != nil {
				return err
			}
			loadedConfigPath = path

			// Emit structured audit log for every command invocation.
			audit.LogCommandStart(log, cmd.Name(), loadedConfigPath)

			return nil
		},
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "Path to YAML config file (default: ~/.semsearch/config.yaml)")

	root.AddCommand(
		NewServeCmd(),
		NewIngestCmd(),
		NewSearchCmd(),
		NewVersionCmd(),
	)

	return root
}
