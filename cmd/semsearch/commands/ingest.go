package commands

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/emilianobilli/SemanticSearch/internal/logging"
	"github.com/emilianobilli/SemanticSearch/internal/search"
)

// NewIngestCmd constructs the `semsearch ingest` command, which ingests
// local text files through the chunk/embed/index pipeline.
func NewIngestCmd() *cobra.Command {
	var files []string
	var title string
	var author string
	var source string
	var tags []string

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Ingest local text files into the search index",
		Long: `Read local text files, split them into overlapping chunks, embed each
chunk, and index the vectors in Qdrant. Document metadata is stored in the
local SQLite database.

--title applies only when a single --file is given; with multiple files each
document is titled after its filename. Re-ingesting produces the same chunk
ids, so running the command twice is safe.

Required environment variables:
  QDRANT_HOST          Qdrant server hostname (default: localhost)
  QDRANT_PORT          Qdrant gRPC port (default: 6334)
  QDRANT_COLLECTION    Collection name (default: semsearch-chunks)
  EMBEDDING_PROVIDER   Embedding backend: ollama, openai, azure (default: ollama)
  EMBEDDING_*          Backend-specific overrides (see README)

Examples:
  semsearch ingest --file notes.txt --title "Meeting Notes" --tag work
  semsearch ingest --file a.txt --file b.txt --source local-archive`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			log := logging.New()
			ctx = logging.WithLogger(ctx, log)

			if len(files) == 0 {
				return fmt.Errorf("ingest: at least one --file is required")
			}
			if title != "" && len(files) > 1 {
				return fmt.Errorf("ingest: --title only applies to a single --file")
			}

			d, err := buildDeps(ctx, log)
			if err != nil {
				return fmt.Errorf("ingest: %w", err)
			}
			defer d.close()

			failed := 0
			for _, path := range files {
				raw, err := os.ReadFile(path)
				if err != nil {
					log.Error("ingest: read failed", slog.String("file", path), slog.Any("error", err))
					failed++
					continue
				}

				docTitle := title
				if docTitle == "" {
					docTitle = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
				}

				doc := search.Document{
					Title:    docTitle,
					Author:   author,
					Source:   source,
					RawText:  string(raw),
					Metadata: tags,
				}
				res, err := d.pipeline.Ingest(ctx, &doc)
				if err != nil {
					log.Error("ingest: document failed", slog.String("file", path), slog.Any("error", err))
					failed++
					continue
				}
				log.Info("ingest: document indexed",
					slog.String("file", path),
					slog.String("document_id", res.DocumentID),
					slog.Int("chunks", res.Chunks),
				)
				fmt.Printf("%s  %s  (%d chunks)\n", res.DocumentID, docTitle, res.Chunks)
			}

			if failed > 0 {
				return fmt.Errorf("ingest: %d of %d files failed", failed, len(files))
			}
			return nil
		},
	}

	cmd.Flags().StringArrayVarP(&files, "file", "f", nil, "Text file to ingest (repeatable)")
	cmd.Flags().StringVarP(&title, "title", "t", "", "Document title (single file only; defaults to the filename)")
	cmd.Flags().StringVarP(&author, "author", "a", "", "Document author")
	cmd.Flags().StringVarP(&source, "source", "s", "", "Document source label (URL, feed name, archive)")
	cmd.Flags().StringArrayVar(&tags, "tag", nil, "Free-form metadata tag (repeatable)")

	return cmd
}
