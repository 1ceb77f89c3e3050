package main

import (
	"fmt"
	"io"

	"github.com/fyrsmithlabs/strategist/internal/config"
	"github.com/fyrsmithlabs/strategist/internal/documents"
	"github.com/spf13/cobra"
)

func newSamplePDFCmd(stdout io.Writer) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "sample-pdf",
		Short: "Write the sample knowledge-base PDF",
		Long: `Write a small PDF of placeholder marketing sections that can seed an empty
knowledge base. It is ingested automatically on the next run when written to
resources.pdf_source.`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			if err := documents.WriteSampleKnowledgeBase(out); err != nil {
				return err
			}
			fmt.Fprintf(stdout, "Sample knowledge base written to %s\n", out)
			return nil
		},
	}

	cmd.Flags().StringVar(&out, "out", config.Default().Resources.PDFSource, "output path")
	return cmd
}
