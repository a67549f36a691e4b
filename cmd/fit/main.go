package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"gofit/adapters/export"
	"gofit/adapters/report"
	"gofit/app"
	"gofit/internal"
	"gofit/internal/config"
	"gofit/models"
)

func main() {
	// .env is optional; environment variables win either way
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "gofit",
		Short: "Evaluate likelihoods and goodness-of-fit for analysis definitions",
	}

	rootCmd.AddCommand(
		newEvaluateCmd(),
		newBootstrapCmd(),
		newExportCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newService() *app.FitService {
	logger := internal.NewDefaultLogger()
	return app.NewFitService(app.NewAnalysisBuilder(logger), logger)
}

func loadAnalysis(path string) (models.AnalysisDef, error) {
	var def models.AnalysisDef

	data, err := os.ReadFile(path)
	if err != nil {
		return def, fmt.Errorf("reading analysis definition: %w", err)
	}
	if err := json.Unmarshal(data, &def); err != nil {
		return def, fmt.Errorf("parsing analysis definition %s: %w", path, err)
	}
	return def, nil
}

func newEvaluateCmd() *cobra.Command {
	var markdown bool

	cmd := &cobra.Command{
		Use:   "evaluate [analysis.json]",
		Short: "Evaluate the log-likelihood at the current parameter point",
		Long: `Evaluate the total log-likelihood of an analysis definition, reporting
the per-block contributions and pulls in sigma units.

Example: gofit evaluate analysis.json --markdown`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			def, err := loadAnalysis(args[0])
			if err != nil {
				return err
			}

			result, err := newService().Evaluate(def)
			if err != nil {
				return err
			}

			if markdown {
				fmt.Fprint(cmd.OutOrStdout(), report.NewRenderer().EvaluationMarkdown(result))
				return nil
			}
			return printJSON(cmd, result)
		},
	}

	cmd.Flags().BoolVar(&markdown, "markdown", false, "Render the report as markdown instead of JSON")

	return cmd
}

func newBootstrapCmd() *cobra.Command {
	var datasets uint
	var workers int

	cmd := &cobra.Command{
		Use:   "bootstrap [analysis.json]",
		Short: "Estimate a goodness-of-fit p-value by simulation",
		Long: `Simulate the distribution of the total likelihood under the current
model and report the p-value of the observed value.

Example: gofit bootstrap analysis.json --datasets 50000 --workers 8`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			def, err := loadAnalysis(args[0])
			if err != nil {
				return err
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if datasets == 0 {
				datasets = cfg.Bootstrap.Datasets
			}
			if workers == 0 {
				workers = cfg.Bootstrap.Workers
			}

			result, err := newService().Bootstrap(cmd.Context(), def, datasets, workers)
			if err != nil {
				return err
			}
			return printJSON(cmd, result)
		},
	}

	cmd.Flags().UintVar(&datasets, "datasets", 0, "Number of simulated datasets (default from BOOTSTRAP_DATASETS)")
	cmd.Flags().IntVar(&workers, "workers", 0, "Number of parallel workers (default from BOOTSTRAP_WORKERS)")

	return cmd
}

func newExportCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export [analysis.json]",
		Short: "Evaluate an analysis and write the report as a workbook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			def, err := loadAnalysis(args[0])
			if err != nil {
				return err
			}

			logger := internal.NewDefaultLogger()
			result, err := newService().Evaluate(def)
			if err != nil {
				return err
			}

			if output == "" {
				cfg, err := config.Load()
				if err != nil {
					return err
				}
				output = filepath.Join(cfg.Export.Dir, cfg.Export.ExcelFile)
			}

			if err := export.NewExcelExporter(logger).WriteEvaluation(output, result); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Workbook path (default from EXPORT_DIR and EXCEL_FILE)")

	return cmd
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
