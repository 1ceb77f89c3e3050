// Strategist generates marketing strategies grounded on a local knowledge
// base of marketing documents.
//
// Usage:
//
//	# Generate a strategy and save it as a PDF
//	strategist --query "eco-friendly water bottle for hikers" --save
//
//	# Add a document to the knowledge base
//	strategist --add-pdf brochure.pdf
//
//	# Start the web UI on server.host:server.port
//	strategist serve
//
//	# Write the sample knowledge-base PDF
//	strategist sample-pdf --out Marketing_Strategies.pdf
//
// Settings come from settings.yaml (see --config), STRATEGIST_* environment
// variables and GROQ_API_KEY, which may also be set in a .env file.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

// Version information (set via ldflags during build)
var (
	version   = "dev"
	gitCommit = "unknown"
	buildDate = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	err := newRootCmd(os.Stdout, os.Stderr).ExecuteContext(ctx)
	stop()

	if err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}
