// Package main provides the tender-analyzer CLI entrypoint.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/spherical-ai/spherical/libs/tender-analyzer/internal/config"
	"github.com/spherical-ai/spherical/libs/tender-analyzer/internal/observability"
	"github.com/spherical-ai/spherical/libs/tender-analyzer/pkg/dac"
)

const version = "0.1.0"

var (
	// Global flags
	cfgFile    string
	outputJSON bool
	verbose    bool
	noColor    bool

	// Configuration and logger
	cfg    *config.Config
	logger *observability.Logger
)

// rootCmd represents the base command.
var rootCmd = &cobra.Command{
	Use:   "tender-analyzer",
	Short: "Analyse Arabic construction contracts, tenders and drawings",
	Long: `tender-analyzer reads construction contracts and tender booklets (PDF, DOCX, TXT)
and DXF drawings, and reports extracted facts, risks, opportunities and
recommendations.

Use this tool to:
- Analyse a document in comprehensive, quick, legal, financial or technical mode
- Estimate material cost from a drawing
- Compare two documents slot by slot

All commands support --json for automation.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		_ = godotenv.Load() // Ignore error if .env doesn't exist

		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		level := cfg.Observability.LogLevel
		if verbose {
			level = "debug"
		}
		logger = observability.NewLogger(observability.LogConfig{
			Level:       level,
			Format:      cfg.Observability.LogFormat,
			Output:      os.Stderr,
			ServiceName: "tender-analyzer",
		})

		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (default: uses env vars)")
	rootCmd.PersistentFlags().BoolVar(&outputJSON, "json", false, "output canonical JSON")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	rootCmd.AddCommand(newAnalyzeCmd())
	rootCmd.AddCommand(newDrawingCmd())
	rootCmd.AddCommand(newCompareCmd())
	rootCmd.AddCommand(newFactsCmd())
	rootCmd.AddCommand(newCacheCmd())
	rootCmd.AddCommand(newVersionCmd())
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		NewUI(os.Stdout, os.Stderr, false, noColor).Error("%s", describeError(err))
		os.Exit(exitCode(err))
	}
}

// newEngine builds the engine from the loaded configuration.
func newEngine() (*dac.Engine, error) {
	return dac.New(cfg, dac.WithLogger(logger))
}

// runContext tags the command context with a fresh trace ID for log correlation.
func runContext(cmd *cobra.Command) context.Context {
	return observability.ContextWithTraceID(cmd.Context(), uuid.NewString())
}
