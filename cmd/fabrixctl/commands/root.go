// Package commands implements the fabrixctl operator CLI.
package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCommand builds the command tree
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "fabrixctl",
		Short:         "fabrixctl inspects composition candidates and grades compositions offline.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newSelectCommand())
	root.AddCommand(newGradeCommand())
	return root
}

// Execute runs the CLI and exits non-zero on failure
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

// openInput opens path, or stdin for "-"
func openInput(cmd *cobra.Command, path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(cmd.InOrStdin()), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return f, nil
}
