package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sort"

	"github.com/Veraticus/roundup/internal/document"
	"github.com/Veraticus/roundup/internal/ofx"
	"github.com/spf13/cobra"
)

func (a *app) importOFXCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import-ofx [files...]",
		Short: "Build a request document from OFX/QFX files",
		Long: `Read the debits out of OFX or QFX statements exported from your bank and
write a request document with them to stdout. Periods are left empty for
you to fill in.

Examples:
  # Import a single statement
  roundup import-ofx ~/Downloads/checking_jan_2024.qfx > request.json

  # Import several accounts at once
  roundup import-ofx --age 35 --wage 80000 ~/Downloads/*.qfx`,
		Args: cobra.MinimumNArgs(1),
		RunE: a.runImportOFX,
	}

	cmd.Flags().Int("age", 0, "age of the saver")
	cmd.Flags().Float64("wage", 0, "monthly wage")
	cmd.Flags().Float64("inflation", 0, "yearly inflation in percent")
	cmd.Flags().String("mode", document.DefaultMode, "projection scheme (nps, index)")
	cmd.Flags().String("account", "", "only import spends from this account id")

	return cmd
}

func (a *app) runImportOFX(cmd *cobra.Command, args []string) error {
	age, _ := cmd.Flags().GetInt("age")
	wage, _ := cmd.Flags().GetFloat64("wage")
	inflation, _ := cmd.Flags().GetFloat64("inflation")
	mode, _ := cmd.Flags().GetString("mode")
	account, _ := cmd.Flags().GetString("account")

	files, err := expandArgs(args)
	if err != nil {
		return err
	}

	parser := ofx.NewParser()
	ctx := cmd.Context()

	var spends []ofx.Spend
	seen := make(map[string]bool) // account and FITID
	for _, path := range files {
		content, err := os.ReadFile(path)
		if err != nil {
			slog.Error("Failed to read file", "file", path, "error", err)
			continue
		}

		accounts, err := parser.Accounts(ctx, bytes.NewReader(content))
		if err != nil {
			slog.Error("Failed to parse OFX file", "file", path, "error", err)
			continue
		}
		if account != "" && !slices.Contains(accounts, account) {
			slog.Info("Skipping file without account",
				"file", filepath.Base(path),
				"account", account,
				"accounts", accounts)
			continue
		}

		parsed, err := parser.ParseFile(ctx, bytes.NewReader(content))
		if err != nil {
			slog.Error("Failed to parse OFX file", "file", path, "error", err)
			continue
		}

		added := 0
		for _, s := range parsed {
			if account != "" && s.AccountID != account {
				continue
			}
			key := s.AccountID + "/" + s.FITID
			if s.FITID != "" && seen[key] {
				continue
			}
			seen[key] = true
			spends = append(spends, s)
			added++
		}

		slog.Info("Processed file",
			"file", filepath.Base(path),
			"accounts", accounts,
			"spends_found", len(parsed),
			"added", added,
			"skipped", len(parsed)-added)
	}

	if len(spends) == 0 {
		return fmt.Errorf("no spends found in %d files", len(files))
	}

	sort.SliceStable(spends, func(i, j int) bool {
		return spends[i].Posted.Before(spends[j].Posted)
	})

	req := document.Request{
		Mode:         mode,
		Transactions: make([]document.Transaction, 0, len(spends)),
		QPeriods:     []document.FixedPeriod{},
		PPeriods:     []document.ExtraPeriod{},
		KPeriods:     []document.Window{},
		Age:          age,
		Wage:         wage,
		Inflation:    inflation,
	}
	for _, s := range spends {
		req.Transactions = append(req.Transactions, s.Transaction())
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "    ")
	if err := enc.Encode(req); err != nil {
		return fmt.Errorf("failed to write request: %w", err)
	}
	return nil
}
