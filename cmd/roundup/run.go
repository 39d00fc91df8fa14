package main

import (
	"fmt"
	"os"

	"github.com/Veraticus/roundup/internal/config"
	"github.com/spf13/cobra"
)

func (a *app) runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run [file]",
		Short: "Evaluate a request document",
		Long: `Evaluate a single request document and write the result to stdout.
Reads stdin when no file is given or the file is "-".

Examples:
  roundup run request.json
  roundup run --format table request.json
  cat request.json | roundup run`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 || args[0] == "-" {
				return a.evaluate(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout())
			}

			f, err := os.Open(config.ExpandPath(args[0]))
			if err != nil {
				return fmt.Errorf("failed to open request: %w", err)
			}
			defer f.Close()

			return a.evaluate(cmd.Context(), f, cmd.OutOrStdout())
		},
	}
}
