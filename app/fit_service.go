package app

import (
	"context"

	"gofit/domain/likelihood"
	"gofit/internal"
	"gofit/internal/errors"
	"gofit/models"
)

// FitService evaluates analyses and runs goodness-of-fit simulations. It is
// the single entry point the CLI and the API share.
type FitService struct {
	builder *AnalysisBuilder
	logger  *internal.Logger
}

// NewFitService creates a fit service
func NewFitService(builder *AnalysisBuilder, logger *internal.Logger) *FitService {
	if logger == nil {
		logger = internal.NewNopLogger()
	}
	return &FitService{builder: builder, logger: logger}
}

// Evaluate builds the analysis and reports the total log-likelihood
// together with the per-block contributions and pulls at the current
// parameter point.
func (s *FitService) Evaluate(def models.AnalysisDef) (*models.EvaluationReport, error) {
	analysis, err := s.builder.Build(def)
	if err != nil {
		return nil, err
	}

	llh := analysis.Likelihood
	total := llh.Evaluate()

	report := &models.EvaluationReport{
		Analysis:      analysis.Name,
		LogLikelihood: total,
		Observations:  llh.NumberOfObservations(),
	}

	for _, p := range llh.Parameters().Parameters() {
		report.Parameters = append(report.Parameters, models.ParameterState{
			Name:    p.Name(),
			Value:   p.Value(),
			Min:     p.Min(),
			Central: p.Central(),
			Max:     p.Max(),
		})
	}

	for _, c := range llh.Constraints() {
		state := models.ConstraintState{Name: c.Name()}
		for _, b := range c.Blocks() {
			bs := models.BlockState{
				Description: b.String(),
				LogDensity:  b.Evaluate(),
			}
			if sig, err := b.Significance(); err == nil {
				bs.Significance = &sig
			} else if !errors.HasCode(err, errors.CodeUnsupportedOperation) {
				return nil, errors.Wrapf(err, "constraint %q", c.Name())
			}
			state.Blocks = append(state.Blocks, bs)
		}
		report.Constraints = append(report.Constraints, state)
	}

	return report, nil
}

// Bootstrap builds the analysis and simulates the distribution of the test
// statistic to estimate a goodness-of-fit p-value.
func (s *FitService) Bootstrap(ctx context.Context, def models.AnalysisDef, datasets uint, workers int) (*models.BootstrapReport, error) {
	if datasets == 0 {
		return nil, errors.InvalidInput("bootstrap requires at least one dataset")
	}

	analysis, err := s.builder.Build(def)
	if err != nil {
		return nil, err
	}

	var result likelihood.BootstrapResult
	if workers > 1 {
		result, err = analysis.Likelihood.BootstrapPValueParallel(ctx, datasets, workers)
	} else {
		workers = 1
		result, err = analysis.Likelihood.BootstrapPValue(datasets)
	}
	if err != nil {
		return nil, err
	}

	return &models.BootstrapReport{
		Analysis:    analysis.Name,
		Datasets:    result.Datasets,
		Workers:     workers,
		PValue:      result.PValue,
		Uncertainty: result.Uncertainty,
		Observed:    result.Observed,
		Toys: models.ToyStats{
			Mean:   result.ToySummary.Mean,
			StdDev: result.ToySummary.StdDev,
			Median: result.ToySummary.Median,
			P5:     result.ToySummary.P5,
			P95:    result.ToySummary.P95,
		},
	}, nil
}
