// Command semsearch is the entry point for the semantic document search
// service. It provides a CLI interface (via Cobra) and an HTTP server that
// exposes ingest and search over REST.
package main

import (
	"fmt"
	"os"

	"github.com/emilianobilli/SemanticSearch/cmd/semsearch/commands"
)

func main() {
	if err := commands.NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
