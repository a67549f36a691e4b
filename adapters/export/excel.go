package export

import (
	"github.com/xuri/excelize/v2"

	"gofit/internal"
	"gofit/internal/errors"
	"gofit/models"
)

// ExcelExporter writes fit reports as workbooks, one sheet per section
type ExcelExporter struct {
	logger *internal.Logger
}

// NewExcelExporter creates an excel exporter
func NewExcelExporter(logger *internal.Logger) *ExcelExporter {
	if logger == nil {
		logger = internal.NewNopLogger()
	}
	return &ExcelExporter{logger: logger}
}

// WriteEvaluation writes parameters and per-block results to path
func (e *ExcelExporter) WriteEvaluation(path string, report *models.EvaluationReport) error {
	f := excelize.NewFile()
	defer f.Close()

	const summary = "Summary"
	if err := f.SetSheetName("Sheet1", summary); err != nil {
		return errors.Wrap(err, "excel export: rename summary sheet")
	}

	setRow(f, summary, 1, "Analysis", report.Analysis)
	setRow(f, summary, 2, "Log-likelihood", report.LogLikelihood)
	setRow(f, summary, 3, "Observations", report.Observations)

	const parameters = "Parameters"
	if _, err := f.NewSheet(parameters); err != nil {
		return errors.Wrap(err, "excel export: create parameter sheet")
	}
	setRow(f, parameters, 1, "Name", "Value", "Min", "Central", "Max")
	for i, p := range report.Parameters {
		setRow(f, parameters, i+2, p.Name, p.Value, p.Min, p.Central, p.Max)
	}

	const constraints = "Constraints"
	if _, err := f.NewSheet(constraints); err != nil {
		return errors.Wrap(err, "excel export: create constraint sheet")
	}
	setRow(f, constraints, 1, "Constraint", "Block", "Log-density", "Significance")
	row := 2
	for _, c := range report.Constraints {
		for _, b := range c.Blocks {
			if b.Significance != nil {
				setRow(f, constraints, row, c.Name, b.Description, b.LogDensity, *b.Significance)
			} else {
				setRow(f, constraints, row, c.Name, b.Description, b.LogDensity, "n/a")
			}
			row++
		}
	}

	if err := f.SaveAs(path); err != nil {
		return errors.Wrapf(err, "excel export: save %s", path)
	}

	e.logger.Info("excel export: wrote evaluation report for %q to %s", report.Analysis, path)
	return nil
}

// WriteBootstrap writes a bootstrap p-value report to path
func (e *ExcelExporter) WriteBootstrap(path string, report *models.BootstrapReport) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Bootstrap"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return errors.Wrap(err, "excel export: rename bootstrap sheet")
	}

	setRow(f, sheet, 1, "Analysis", report.Analysis)
	setRow(f, sheet, 2, "Datasets", report.Datasets)
	setRow(f, sheet, 3, "Workers", report.Workers)
	setRow(f, sheet, 4, "p-value", report.PValue)
	setRow(f, sheet, 5, "Uncertainty", report.Uncertainty)
	setRow(f, sheet, 6, "Observed statistic", report.Observed)
	setRow(f, sheet, 7, "Toy mean", report.Toys.Mean)
	setRow(f, sheet, 8, "Toy std dev", report.Toys.StdDev)
	setRow(f, sheet, 9, "Toy median", report.Toys.Median)
	setRow(f, sheet, 10, "Toy 5th percentile", report.Toys.P5)
	setRow(f, sheet, 11, "Toy 95th percentile", report.Toys.P95)

	if err := f.SaveAs(path); err != nil {
		return errors.Wrapf(err, "excel export: save %s", path)
	}

	e.logger.Info("excel export: wrote bootstrap report for %q to %s", report.Analysis, path)
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values ...interface{}) {
	for i, v := range values {
		cell, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			continue
		}
		// SetCellValue only fails for invalid coordinates, checked above
		_ = f.SetCellValue(sheet, cell, v)
	}
}
