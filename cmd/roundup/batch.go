package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/Veraticus/roundup/internal/cli"
	"github.com/Veraticus/roundup/internal/common"
	"github.com/Veraticus/roundup/internal/config"
	"github.com/Veraticus/roundup/internal/document"
	"github.com/Veraticus/roundup/internal/engine"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

// resultSuffix replaces the extension of every batch input.
const resultSuffix = ".result.json"

func (a *app) batchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch [files...]",
		Short: "Evaluate many request documents",
		Long: `Evaluate every request document matched by the arguments, writing one
result file per input. Results are always JSON.

Examples:
  roundup batch requests/*.json
  roundup batch --out-dir results/ jan.json feb.json`,
		Args: cobra.MinimumNArgs(1),
		RunE: a.runBatch,
	}

	cmd.Flags().StringP("out-dir", "o", "", "directory for result files (default: next to each input)")
	cmd.Flags().Bool("no-progress", false, "hide the progress bar")

	return cmd
}

func (a *app) runBatch(cmd *cobra.Command, args []string) error {
	outDir, _ := cmd.Flags().GetString("out-dir")
	noProgress, _ := cmd.Flags().GetBool("no-progress")

	files, err := expandArgs(args)
	if err != nil {
		return err
	}

	if outDir != "" {
		outDir = config.ExpandPath(outDir)
		if err := os.MkdirAll(outDir, 0o750); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	handler := cli.NewInterruptHandler(cmd.ErrOrStderr())
	ctx, stop := handler.HandleInterrupts(cmd.Context(), true)
	defer stop()

	ev := a.evaluator()

	var bar *progressbar.ProgressBar
	if !noProgress {
		bar = cli.NewProgress(cmd.ErrOrStderr(), len(files), "Evaluating documents...")
	}

	var failed int
	for _, path := range files {
		if ctx.Err() != nil {
			break
		}

		dst := resultPath(path, outDir)
		if err := evaluateFile(ctx, ev, path, dst); err != nil {
			failed++
			slog.Error("Failed to evaluate document", "file", path, "error", err)
		} else {
			slog.Debug("Wrote result", "file", path, "result", dst)
		}

		cli.Step(bar)
	}

	if handler.WasInterrupted() {
		return ctx.Err()
	}

	fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(
		fmt.Sprintf("Evaluated %d of %d documents", len(files)-failed, len(files))))
	if outDir != "" {
		fmt.Fprintln(cmd.OutOrStdout(), cli.FormatLocation(outDir))
	}

	if failed > 0 {
		return common.NewUserError(fmt.Sprintf("%d documents failed", failed), nil)
	}
	return nil
}

func evaluateFile(ctx context.Context, ev *engine.Evaluator, src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open request: %w", err)
	}
	defer in.Close()

	req, err := document.Decode(in)
	if err != nil {
		return err
	}

	resp, err := ev.Evaluate(ctx, req)
	if err != nil {
		return err
	}

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to create result: %w", err)
	}
	if err := document.Encode(out, resp); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// resultPath names the result file for src, inside outDir when set.
func resultPath(src, outDir string) string {
	base := strings.TrimSuffix(filepath.Base(src), filepath.Ext(src)) + resultSuffix
	if outDir == "" {
		return filepath.Join(filepath.Dir(src), base)
	}
	return filepath.Join(outDir, base)
}

// expandArgs expands globs, keeping plain paths that exist.
func expandArgs(args []string) ([]string, error) {
	var files []string
	for _, pattern := range args {
		matches, err := filepath.Glob(config.ExpandPath(pattern))
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %s: %w", pattern, err)
		}
		if len(matches) == 0 {
			slog.Warn("No files found matching pattern", "pattern", pattern)
			continue
		}
		files = append(files, matches...)
	}

	if len(files) == 0 {
		return nil, common.NewUserError("no files found", nil)
	}
	return files, nil
}
