package main

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/Veraticus/roundup/internal/cli"
	"github.com/Veraticus/roundup/internal/common"
	"github.com/Veraticus/roundup/internal/config"
	"github.com/Veraticus/roundup/internal/document"
	"github.com/Veraticus/roundup/internal/tax"
	"github.com/spf13/cobra"
)

// taxResult is the JSON form of the tax command.
type taxResult struct {
	Income float64 `json:"income"`
	Tax    float64 `json:"tax"`
}

func (a *app) taxCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tax <annual-income>",
		Short: "Show the income tax owed on an annual income",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			income, err := strconv.ParseFloat(args[0], 64)
			if err != nil || income < 0 {
				return common.NewUserError(fmt.Sprintf("invalid income %q", args[0]), common.ErrMalformedInput)
			}

			if a.settings.Output.Format == config.FormatTable {
				_, err := fmt.Fprint(cmd.OutOrStdout(), cli.RenderTax(income))
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "    ")
			return enc.Encode(taxResult{
				Income: income,
				Tax:    document.Round(tax.Tax(income), 2),
			})
		},
	}
}
