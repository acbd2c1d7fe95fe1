// Command analyst is the entry point for the market research analyst agent.
// It provides a CLI interface (via Cobra) for one-shot analysis commands and
// an HTTP server mode for serving the REST API.
package main

import (
	"fmt"
	"os"

	"github.com/54b3r/analyst-go/cmd/analyst/commands"
)

func main() {
	if err := commands.NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
