package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/fyrsmithlabs/strategist/internal/config"
	"github.com/fyrsmithlabs/strategist/internal/documents"
	"github.com/fyrsmithlabs/strategist/internal/generator"
	"github.com/fyrsmithlabs/strategist/internal/logging"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// errReported marks failures already shown to the user.
var errReported = errors.New("failure already reported")

type rootOptions struct {
	configPath string
	query      string
	addPDF     string
	save       bool
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "strategist",
		Short: "Generate marketing strategies from a local knowledge base",
		Long: `strategist retrieves passages relevant to a campaign description from a
persistent vector index of marketing documents and asks a language model to
write a strategy grounded on them.

Examples:
  # Generate and print a strategy
  strategist --query "artisan coffee subscription for remote workers"

  # Also save it under output.pdf_output_dir
  strategist --query "artisan coffee subscription" --save

  # Add a PDF to the knowledge base
  strategist --add-pdf playbook.pdf`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRoot(cmd.Context(), opts, stdout, stderr)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", config.DefaultPath, "path to settings.yaml")
	cmd.Flags().StringVar(&opts.query, "query", "", "campaign description to generate a strategy for")
	cmd.Flags().StringVar(&opts.addPDF, "add-pdf", "", "PDF file to add to the knowledge base")
	cmd.Flags().BoolVar(&opts.save, "save", false, "save the generated strategy as a PDF")

	cmd.AddCommand(
		newServeCmd(opts, stderr),
		newSamplePDFCmd(stdout),
		newVersionCmd(stdout),
	)
	return cmd
}

func runRoot(ctx context.Context, opts *rootOptions, stdout, stderr io.Writer) error {
	rt, err := bootstrap(ctx, opts.configPath, stderr)
	if err != nil {
		return err
	}
	defer rt.Close()

	sys, err := buildSystem(ctx, rt)
	if err != nil {
		rt.logger.Error(ctx, "initialization failed", zap.Error(err))
		return errReported
	}
	defer sys.Close()

	sys.populate(ctx)

	if opts.addPDF != "" {
		sys.ingestPDF(ctx, opts.addPDF)
	}

	if opts.query == "" {
		if opts.addPDF == "" {
			fmt.Fprintln(stderr, "Nothing to do: pass --query, --add-pdf or run 'strategist serve'.")
		}
		return nil
	}

	return generateAndPrint(ctx, sys.strategist, opts.query, opts.save, rt.cfg.Output.PDFOutputDir, stdout, rt.logger)
}

// strategyCreator is the part of the strategist the CLI needs.
type strategyCreator interface {
	CreateStrategy(ctx context.Context, description string) (string, error)
}

// generateAndPrint writes the strategy for query to out. A failed generation
// prints the failure text in its place and returns errReported.
func generateAndPrint(ctx context.Context, s strategyCreator, query string, save bool, outDir string, out io.Writer, logger *logging.Logger) error {
	strategy, err := s.CreateStrategy(ctx, query)
	if err != nil {
		logger.Warn(ctx, "strategy generation failed", zap.Error(err))
		fmt.Fprintln(out, generator.FailureText(err))
		return errReported
	}

	fmt.Fprintln(out, strategy)

	if save {
		path, err := documents.WriteStrategy(query, strategy, outDir)
		if err != nil {
			return fmt.Errorf("saving strategy: %w", err)
		}
		fmt.Fprintf(out, "\nStrategy saved to %s\n", path)
	}
	return nil
}
