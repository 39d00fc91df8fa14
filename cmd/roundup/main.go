package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/Veraticus/roundup/internal/cli"
	"github.com/Veraticus/roundup/internal/common"
	"github.com/Veraticus/roundup/internal/config"
	"github.com/Veraticus/roundup/internal/document"
	"github.com/Veraticus/roundup/internal/engine"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var version = "dev"

// app carries state shared by every command of one invocation.
type app struct {
	v        *viper.Viper
	settings *config.Settings
	cfgFile  string
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}
	config.SetDefaults(a.v)

	rootCmd := &cobra.Command{
		Use:   "roundup",
		Short: "🪙 Round-up savings engine",
		Long: `roundup rounds every spend up to the next hundred, applies fixed and extra
saving periods and projects what the savings grow to by retirement.

With no subcommand a request document is read from stdin and the result is
written to stdout.`,
		Args:               cobra.NoArgs,
		SilenceUsage:       true,
		SilenceErrors:      true,
		PersistentPreRunE: a.initConfig,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.evaluate(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	// Global flags
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default: $HOME/.config/roundup/config.yaml)")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.String("log-format", "console", "log format (console, json)")
	flags.String("format", config.FormatJSON, "output format (json, table)")
	flags.Bool("performance", true, "include the performance block in results")
	flags.Int("parallelism", 4, "query windows evaluated concurrently")
	flags.Bool("trace", false, "write OpenTelemetry spans to stderr")

	// Bind flags to viper
	_ = a.v.BindPFlag(config.KeyLogLevel, flags.Lookup("log-level"))
	_ = a.v.BindPFlag(config.KeyLogFormat, flags.Lookup("log-format"))
	_ = a.v.BindPFlag(config.KeyOutputFormat, flags.Lookup("format"))
	_ = a.v.BindPFlag(config.KeyOutputPerformance, flags.Lookup("performance"))
	_ = a.v.BindPFlag(config.KeyParallelism, flags.Lookup("parallelism"))
	_ = a.v.BindPFlag(config.KeyTracingEnabled, flags.Lookup("trace"))

	// Add commands
	rootCmd.AddCommand(a.runCmd())
	rootCmd.AddCommand(a.batchCmd())
	rootCmd.AddCommand(a.importOFXCmd())
	rootCmd.AddCommand(a.taxCmd())
	rootCmd.AddCommand(a.serveCmd())
	rootCmd.AddCommand(versionCmd())

	return rootCmd
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := runRoot(ctx, newRootCmd())
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, cli.FormatError(common.UserMessage(err)))
		var userErr *common.UserError
		if errors.As(err, &userErr) && userErr.Err != nil {
			slog.Debug("Command failed", "error", userErr.Err)
		}
		os.Exit(1)
	}
}

// runRoot executes cmd and then flushes any spans, whether or not the
// command failed.
func runRoot(ctx context.Context, cmd *cobra.Command) error {
	err := cmd.ExecuteContext(ctx)
	if shutdownErr := common.ShutdownTracing(context.WithoutCancel(ctx)); shutdownErr != nil {
		err = errors.Join(err, fmt.Errorf("failed to flush traces: %w", shutdownErr))
	}
	return err
}

func (a *app) initConfig(cmd *cobra.Command, _ []string) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load .env: %w", err)
	}

	// Set up config file
	if a.cfgFile != "" {
		a.v.SetConfigFile(config.ExpandPath(a.cfgFile))
	} else {
		dir, err := config.Dir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}

		// Search for config in standard locations
		a.v.AddConfigPath(dir)
		a.v.AddConfigPath(".")
		a.v.SetConfigName("config")
		a.v.SetConfigType("yaml")
	}

	// Environment variables, ROUNDUP_ENGINE_PARALLELISM and friends
	a.v.SetEnvPrefix("ROUNDUP")
	a.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	a.v.AutomaticEnv()

	if err := a.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found is OK, we'll use defaults
	}

	settings, err := config.Load(a.v)
	if err != nil {
		return common.NewUserError("invalid configuration", err)
	}
	a.settings = settings

	level, err := common.ParseLevel(settings.Logging.Level)
	if err != nil {
		return err
	}
	if err := common.SetupLogger(cmd.ErrOrStderr(), level, settings.Logging.Format); err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}

	if settings.Tracing {
		if err := common.InitTracing(cmd.ErrOrStderr(), version); err != nil {
			return fmt.Errorf("failed to setup tracing: %w", err)
		}
	}

	slog.Debug("Configuration loaded", "config_file", a.v.ConfigFileUsed())
	return nil
}

func (a *app) evaluator() *engine.Evaluator {
	return engine.NewWithConfig(engine.Config{
		Parallelism: a.settings.Engine.Parallelism,
		Performance: a.settings.Output.Performance,
	})
}

// evaluate reads one request from in and writes its result to out. Nothing
// is written to out when the request cannot be decoded or evaluated.
func (a *app) evaluate(ctx context.Context, in io.Reader, out io.Writer) error {
	req, err := document.Decode(in)
	if err != nil {
		return common.NewUserError("could not read request document", err)
	}

	resp, err := a.evaluator().Evaluate(ctx, req)
	if err != nil {
		return common.NewUserError("evaluation failed", err)
	}

	return a.write(out, resp)
}

func (a *app) write(out io.Writer, resp *document.Response) error {
	if a.settings.Output.Format == config.FormatTable {
		_, err := io.WriteString(out, cli.RenderResponse(resp))
		return err
	}
	return document.Encode(out, resp)
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "roundup %s\n", version)
		},
	}
}
