package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/emilianobilli/SemanticSearch/internal/logging"
)

// NewSearchCmd constructs the `semsearch search` command, which runs a
// one-off semantic query from the terminal.
func NewSearchCmd() *cobra.Command {
	var top int

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Run a one-off semantic search from the terminal",
		Long: `Embed the query, search the chunk index, and print the best-matching
documents ranked by their closest chunk.

Examples:
  semsearch search "error handling in distributed systems"
  semsearch search --top 3 goroutine leaks`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			log := logging.New()
			ctx = logging.WithLogger(ctx, log)

			query := strings.Join(args, " ")

			d, err := buildDeps(ctx, log)
			if err != nil {
				return fmt.Errorf("search: %w", err)
			}
			defer d.close()

			results, err := d.pipeline.Search(ctx, query, top)
			if err != nil {
				return fmt.Errorf("search: %w", err)
			}

			if len(results) == 0 {
				fmt.Println("no matching documents")
				return nil
			}

			for i, res := range results {
				fmt.Printf("%2d. %.4f  %s", i+1, res.Score, res.Document.Title)
				if res.Document.Author != "" {
					fmt.Printf("  — %s", res.Document.Author)
				}
				fmt.Printf("\n    id=%s", res.Document.ID)
				if res.Document.Source != "" {
					fmt.Printf("  source=%s", res.Document.Source)
				}
				fmt.Println()
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&top, "top", "n", 0, "Maximum number of documents to return (default: server-configured)")

	return cmd
}
