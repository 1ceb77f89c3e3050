package main

import (
	"fmt"
	"io"
	"runtime"

	"github.com/spf13/cobra"
)

func newVersionCmd(stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(_ *cobra.Command, _ []string) {
			printVersion(stdout)
		},
	}
}

func printVersion(w io.Writer) {
	fmt.Fprintf(w, "strategist %s\n", version)
	fmt.Fprintf(w, "  Git commit: %s\n", gitCommit)
	fmt.Fprintf(w, "  Build date: %s\n", buildDate)
	fmt.Fprintf(w, "  Go version: %s\n", runtime.Version())
}
