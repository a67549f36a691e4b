package app

import (
	"fmt"

	"gofit/domain/likelihood"
	"gofit/domain/observable"
	"gofit/domain/params"
	"gofit/internal"
	"gofit/internal/errors"
	"gofit/models"
	"gofit/ports"
)

// Analysis is a built, evaluable analysis: named parameters plus the
// likelihood assembled from its constraint definitions.
type Analysis struct {
	Name       string
	Likelihood *likelihood.LogLikelihood
}

// AnalysisBuilder turns analysis definitions into live likelihoods
type AnalysisBuilder struct {
	logger *internal.Logger
}

// NewAnalysisBuilder creates an analysis builder
func NewAnalysisBuilder(logger *internal.Logger) *AnalysisBuilder {
	if logger == nil {
		logger = internal.NewNopLogger()
	}
	return &AnalysisBuilder{logger: logger}
}

// Build declares the parameters, resolves every observable reference and
// constructs the likelihood blocks. Blocks are assembled on a scratch cache
// and re-bound into the likelihood, so the definition can be built again
// without side effects.
func (b *AnalysisBuilder) Build(def models.AnalysisDef) (*Analysis, error) {
	if len(def.Parameters) == 0 {
		return nil, errors.InvalidInput("analysis: at least one parameter is required")
	}

	templates := make([]params.Template, len(def.Parameters))
	for i, pd := range def.Parameters {
		templates[i] = params.Template{Name: pd.Name, Min: pd.Min, Central: pd.Central, Max: pd.Max}
	}
	set, err := params.NewSetFrom(templates...)
	if err != nil {
		return nil, err
	}

	for _, pd := range def.Parameters {
		if pd.Value == nil {
			continue
		}
		p, err := set.Get(pd.Name)
		if err != nil {
			return nil, err
		}
		p.Set(*pd.Value)
	}

	llh := likelihood.New(set, b.logger)
	scratch := observable.NewCache(set)

	for _, cd := range def.Constraints {
		blocks := make([]likelihood.Block, 0, len(cd.Blocks))
		var observables []ports.Observable

		for i, bd := range cd.Blocks {
			block, used, err := b.buildBlock(scratch, set, bd)
			if err != nil {
				return nil, errors.Wrapf(err, "constraint %q, block %d", cd.Name, i)
			}
			blocks = append(blocks, block)
			observables = append(observables, used...)
		}

		constraint, err := likelihood.NewConstraint(cd.Name, observables, blocks)
		if err != nil {
			return nil, err
		}
		if err := llh.Add(constraint); err != nil {
			return nil, err
		}
	}

	name := def.Name
	if name == "" {
		name = "analysis"
	}
	b.logger.Debug("analysis %q: built %d constraints over %d parameters", name, len(def.Constraints), set.Len())

	return &Analysis{Name: name, Likelihood: llh}, nil
}

func (b *AnalysisBuilder) buildBlock(cache *observable.Cache, set *params.Set, def models.BlockDef) (likelihood.Block, []ports.Observable, error) {
	switch def.Type {
	case models.BlockTypeGaussian:
		obs, err := b.resolve(set, def.Observable)
		if err != nil {
			return nil, nil, err
		}
		block, err := likelihood.Gaussian(cache, obs, def.Min, def.Central, def.Max, def.Observations)
		return block, []ports.Observable{obs}, err

	case models.BlockTypeLogGamma:
		obs, err := b.resolve(set, def.Observable)
		if err != nil {
			return nil, nil, err
		}
		var block likelihood.Block
		if def.Lambda != nil && def.Alpha != nil {
			block, err = likelihood.LogGammaWithShape(cache, obs, def.Min, def.Central, def.Max, *def.Lambda, *def.Alpha, def.Observations, b.logger)
		} else {
			block, err = likelihood.LogGamma(cache, obs, def.Min, def.Central, def.Max, def.Observations, b.logger)
		}
		return block, []ports.Observable{obs}, err

	case models.BlockTypeAmoroso:
		obs, err := b.resolve(set, def.Observable)
		if err != nil {
			return nil, nil, err
		}
		alpha, err := requiredShape(def.Alpha, "alpha")
		if err != nil {
			return nil, nil, err
		}
		block, err := likelihood.Amoroso(cache, obs, def.PhysicalLimit, def.Theta, alpha, def.Beta, def.Observations)
		return block, []ports.Observable{obs}, err

	case models.BlockTypeAmorosoLimit:
		obs, err := b.resolve(set, def.Observable)
		if err != nil {
			return nil, nil, err
		}
		alpha, err := requiredShape(def.Alpha, "alpha")
		if err != nil {
			return nil, nil, err
		}
		block, err := likelihood.AmorosoLimit(cache, obs, def.PhysicalLimit, def.UpperLimit90, def.UpperLimit95, def.Theta, alpha, def.Observations)
		return block, []ports.Observable{obs}, err

	case models.BlockTypeAmorosoMode:
		obs, err := b.resolve(set, def.Observable)
		if err != nil {
			return nil, nil, err
		}
		alpha, err := requiredShape(def.Alpha, "alpha")
		if err != nil {
			return nil, nil, err
		}
		mode, err := requiredShape(def.Mode, "mode")
		if err != nil {
			return nil, nil, err
		}
		block, err := likelihood.AmorosoMode(cache, obs, def.PhysicalLimit, mode, def.UpperLimit90, def.UpperLimit95, def.Theta, alpha, def.Beta, def.Observations)
		return block, []ports.Observable{obs}, err

	case models.BlockTypeAmorosoQuantiles:
		obs, err := b.resolve(set, def.Observable)
		if err != nil {
			return nil, nil, err
		}
		alpha, err := requiredShape(def.Alpha, "alpha")
		if err != nil {
			return nil, nil, err
		}
		block, err := likelihood.AmorosoWithQuantiles(cache, obs, def.PhysicalLimit, def.UpperLimit10, def.UpperLimit50, def.UpperLimit90, def.Theta, alpha, def.Beta, def.Observations)
		return block, []ports.Observable{obs}, err

	case models.BlockTypeMultivariateGaussian:
		observables := make([]ports.Observable, len(def.Observables))
		for i := range def.Observables {
			obs, err := b.resolve(set, &def.Observables[i])
			if err != nil {
				return nil, nil, err
			}
			observables[i] = obs
		}
		block, err := likelihood.MultivariateGaussian(cache, observables, def.Mean, def.Covariance, def.Observations)
		return block, observables, err

	case models.BlockTypeMixture:
		components := make([]likelihood.Block, 0, len(def.Components))
		var observables []ports.Observable
		for i, cd := range def.Components {
			component, used, err := b.buildBlock(cache, set, cd)
			if err != nil {
				return nil, nil, errors.Wrapf(err, "mixture component %d", i)
			}
			components = append(components, component)
			observables = append(observables, used...)
		}
		block, err := likelihood.Mixture(components, def.Weights)
		return block, observables, err

	default:
		return nil, nil, errors.InvalidInput(fmt.Sprintf("unknown block type %q", def.Type))
	}
}

// resolve maps an observable reference through the registry
func (b *AnalysisBuilder) resolve(set *params.Set, def *models.ObservableDef) (ports.Observable, error) {
	if def == nil {
		return nil, errors.InvalidInput("block requires an observable reference")
	}

	obs, err := observable.Lookup(def.Name, set, observable.Kinematics(def.Kinematics))
	if err != nil {
		return nil, err
	}
	if obs == nil {
		return nil, errors.NotFound(fmt.Sprintf("observable %q", def.Name))
	}
	return obs, nil
}

func requiredShape(v *float64, name string) (float64, error) {
	if v == nil {
		return 0, errors.InvalidInput(fmt.Sprintf("block requires a %s value", name))
	}
	return *v, nil
}
