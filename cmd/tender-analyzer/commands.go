package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/spherical-ai/spherical/libs/tender-analyzer/internal/domain"
	"github.com/spherical-ai/spherical/libs/tender-analyzer/pkg/dac"
)

// newAnalyzeCmd creates the analyze subcommand.
func newAnalyzeCmd() *cobra.Command {
	var (
		mode       string
		outputPath string
	)

	cmd := &cobra.Command{
		Use:   "analyze <file>",
		Short: "Analyse a contract or tender",
		Example: `  tender-analyzer analyze contract.pdf
  tender-analyzer analyze --mode financial tender.docx
  tender-analyzer analyze --json -o report.json s3://tenders/2024/t-015.pdf`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := dac.ParseMode(mode)
			if err != nil {
				return err
			}
			engine, err := newEngine()
			if err != nil {
				return err
			}
			defer engine.Close()

			ui := NewUI(os.Stdout, os.Stderr, outputJSON, noColor)
			var report *dac.AnalysisReport
			err = ui.WithSpinner("جاري تحليل "+args[0], func() error {
				report, err = engine.Analyze(runContext(cmd), dac.FromPath(args[0]), m)
				return err
			})
			if err != nil {
				return err
			}

			if outputJSON || outputPath != "" {
				data, err := report.JSON()
				if err != nil {
					return err
				}
				return writeOutput(outputPath, data)
			}
			ui.Report(report)
			return nil
		},
	}

	cmd.Flags().StringVarP(&mode, "mode", "m", string(dac.ModeComprehensive), "analysis mode: comprehensive, quick, legal, financial, technical")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "write the JSON report to a file")
	return cmd
}

// newDrawingCmd creates the drawing subcommand.
func newDrawingCmd() *cobra.Command {
	var outputPath string

	cmd := &cobra.Command{
		Use:   "drawing <file.dxf>",
		Short: "Analyse a DXF drawing and estimate its material cost",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := newEngine()
			if err != nil {
				return err
			}
			defer engine.Close()

			ui := NewUI(os.Stdout, os.Stderr, outputJSON, noColor)
			var report *dac.DrawingReport
			err = ui.WithSpinner("جاري تحليل المخطط "+args[0], func() error {
				report, err = engine.AnalyzeDrawing(runContext(cmd), dac.FromPath(args[0]))
				return err
			})
			if err != nil {
				return err
			}

			if outputJSON || outputPath != "" {
				data, err := report.JSON()
				if err != nil {
					return err
				}
				return writeOutput(outputPath, data)
			}
			ui.Drawing(report)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "write the JSON report to a file")
	return cmd
}

// newCompareCmd creates the compare subcommand.
func newCompareCmd() *cobra.Command {
	var (
		mode       string
		outputPath string
	)

	cmd := &cobra.Command{
		Use:   "compare <left> <right>",
		Short: "Compare two documents",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := dac.ParseMode(mode)
			if err != nil {
				return err
			}
			engine, err := newEngine()
			if err != nil {
				return err
			}
			defer engine.Close()

			ui := NewUI(os.Stdout, os.Stderr, outputJSON, noColor)
			var report *dac.ComparisonReport
			err = ui.WithSpinner("جاري مقارنة المستندين", func() error {
				report, err = engine.Compare(runContext(cmd), dac.FromPath(args[0]), dac.FromPath(args[1]), m)
				return err
			})
			if err != nil {
				return err
			}

			if outputJSON || outputPath != "" {
				data, err := report.JSON()
				if err != nil {
					return err
				}
				return writeOutput(outputPath, data)
			}
			ui.Comparison(report)
			return nil
		},
	}

	cmd.Flags().StringVarP(&mode, "mode", "m", string(dac.ModeComprehensive), "analysis mode applied to both documents")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "write the JSON report to a file")
	return cmd
}

// newFactsCmd creates the facts subcommand.
func newFactsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "facts <file>",
		Short: "Print the facts extracted from a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := newEngine()
			if err != nil {
				return err
			}
			defer engine.Close()

			facts, err := engine.ExtractFacts(runContext(cmd), dac.FromPath(args[0]))
			if err != nil {
				return err
			}

			if outputJSON {
				data, err := domain.MarshalCanonical(facts)
				if err != nil {
					return err
				}
				return writeOutput("", data)
			}
			NewUI(os.Stdout, os.Stderr, false, noColor).Facts(facts)
			return nil
		},
	}
}

// newCacheCmd groups completion cache maintenance.
func newCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the model completion cache",
	}

	var provider string
	purge := &cobra.Command{
		Use:   "purge",
		Short: "Delete cached model completions",
		Long: `Delete cached model summaries so the next analysis calls the model again.
Useful with the redis driver after changing the model or its prompt settings.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := newEngine()
			if err != nil {
				return err
			}
			defer engine.Close()

			if err := engine.PurgeCompletions(runContext(cmd), provider); err != nil {
				return err
			}

			scope := provider
			if scope == "" {
				scope = "all"
			}
			if outputJSON {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]string{"purged": scope})
			}
			NewUI(cmd.OutOrStdout(), cmd.ErrOrStderr(), false, noColor).Success("Purged cached completions (%s)", scope)
			return nil
		},
	}
	purge.Flags().StringVar(&provider, "provider", "", "only purge completions of general_chat or constitutional_chat")

	cmd.AddCommand(purge)
	return cmd
}

// newVersionCmd creates the version subcommand.
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		// Skip config loading
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		Run: func(cmd *cobra.Command, args []string) {
			if outputJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				_ = enc.Encode(map[string]string{
					"version": version,
					"go":      runtime.Version(),
				})
				return
			}
			fmt.Fprintf(cmd.OutOrStdout(), "tender-analyzer version %s (%s)\n", version, runtime.Version())
		},
	}
}

// writeOutput writes data to path, or to stdout when path is empty.
func writeOutput(path string, data []byte) error {
	if path == "" {
		data = append(data, '\n')
		_, err := os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// exitCode maps error codes to process exit statuses.
func exitCode(err error) int {
	switch domain.CodeOf(err) {
	case domain.CodeUnsupportedFormat, domain.CodeCorruptInput, domain.CodeIO:
		return 3
	case domain.CodeInvalidMode, domain.CodeFactsIncomplete:
		return 4
	case domain.CodeCancelled:
		return 130
	case domain.CodeTimeout:
		return 5
	case domain.CodeAuth, domain.CodeRateLimited, domain.CodeUnavailable, domain.CodeInvalidResponse:
		return 6
	}
	return 1
}

// describeError prefers the localized message for domain errors.
func describeError(err error) string {
	var derr *domain.Error
	if errors.As(err, &derr) {
		return derr.Localized() + " (" + err.Error() + ")"
	}
	return err.Error()
}
