package likelihood

import (
	"math"
	"math/rand/v2"

	"github.com/montanaflynn/stats"

	"gofit/domain/observable"
	"gofit/domain/params"
	"gofit/internal"
	"gofit/ports"
)

// LogLikelihood aggregates constraints into a single log-likelihood. It
// owns exactly one parameter set and one observable cache; constraints
// added from elsewhere are re-bound (cloned) onto the own cache. Instances
// are not safe for concurrent use; clone per worker instead.
type LogLikelihood struct {
	set         *params.Set
	cache       *observable.Cache
	constraints []Constraint
	logger      *internal.Logger
}

// New creates an empty log-likelihood over the given parameter set. A nil
// logger silences diagnostics.
func New(set *params.Set, logger *internal.Logger) *LogLikelihood {
	if logger == nil {
		logger = internal.NewNopLogger()
	}
	return &LogLikelihood{
		set:    set,
		cache:  observable.NewCache(set),
		logger: logger,
	}
}

// Parameters returns the owned parameter set
func (l *LogLikelihood) Parameters() *params.Set { return l.set }

// Cache returns the owned observable cache
func (l *LogLikelihood) Cache() *observable.Cache { return l.cache }

// Constraints returns the constraints in insertion order
func (l *LogLikelihood) Constraints() []Constraint {
	return append([]Constraint(nil), l.constraints...)
}

// AddObservation is sugar for a single-block Gaussian constraint named
// after the observable.
func (l *LogLikelihood) AddObservation(obs ports.Observable, min, central, max float64, observations uint) error {
	block, err := Gaussian(l.cache, obs, min, central, max, observations)
	if err != nil {
		return err
	}

	constraint, err := NewConstraint(obs.Name(), []ports.Observable{obs}, []Block{block})
	if err != nil {
		return err
	}

	l.constraints = append(l.constraints, constraint)
	return nil
}

// Add stores a constraint, re-binding every block onto the own cache so
// correlation structure is preserved without cross-cache aliasing.
func (l *LogLikelihood) Add(c Constraint) error {
	blocks := make([]Block, 0, len(c.blocks))
	for _, b := range c.blocks {
		clone, err := b.Clone(l.cache)
		if err != nil {
			return err
		}
		blocks = append(blocks, clone)
	}

	clone, err := NewConstraint(c.name, c.observables, blocks)
	if err != nil {
		return err
	}

	l.constraints = append(l.constraints, clone)
	return nil
}

// Evaluate refreshes the cached predictions and returns the total
// log-likelihood over every block of every constraint.
func (l *LogLikelihood) Evaluate() float64 {
	l.cache.Update()

	total := 0.0
	for _, c := range l.constraints {
		for _, b := range c.blocks {
			total += b.Evaluate()
		}
	}
	return total
}

// NumberOfObservations sums observation counts across all blocks
func (l *LogLikelihood) NumberOfObservations() uint {
	var total uint
	for _, c := range l.constraints {
		total += c.NumberOfObservations()
	}
	return total
}

// Clone produces a fully independent instance: own parameter copy, own
// cache rebuilt against it, and every constraint re-added (which re-clones
// its blocks). Clones share no mutable state and are the unit of
// parallelism.
func (l *LogLikelihood) Clone() (*LogLikelihood, error) {
	clone := New(l.set.Clone(), l.logger)

	for _, c := range l.constraints {
		if err := clone.Add(c); err != nil {
			return nil, err
		}
	}

	return clone, nil
}

// BootstrapResult reports a Monte-Carlo p-value estimate together with its
// binomial-posterior uncertainty and a summary of the toy distribution.
type BootstrapResult struct {
	PValue      float64    `json:"p_value"`
	Uncertainty float64    `json:"uncertainty"`
	Datasets    uint       `json:"datasets"`
	Observed    float64    `json:"observed"`
	ToySummary  ToySummary `json:"toy_summary"`
}

// ToySummary summarizes the distribution of simulated total likelihoods
type ToySummary struct {
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	Median float64 `json:"median"`
	P5     float64 `json:"p5"`
	P95    float64 `json:"p95"`
}

// BootstrapPValue estimates the probability that a toy dataset drawn under
// the current model yields a smaller total likelihood than the observed
// one. The generator is seeded with the dataset count, so results are
// deterministic for a given count.
func (l *LogLikelihood) BootstrapPValue(datasets uint) (BootstrapResult, error) {
	l.cache.Update()
	observed := l.observedStatistic()

	l.logger.Info("bootstrap p-value: the value of the test statistic (total likelihood) for the current parameters is %g", observed)
	l.logger.Info("bootstrap p-value: begin sampling %d simulated values of the likelihood", datasets)

	rng := rand.New(rand.NewPCG(uint64(datasets), uint64(datasets)))

	toys := make([]float64, 0, datasets)
	var low uint
	for i := uint(0); i < datasets; i++ {
		t, err := l.sampleStatistic(rng)
		if err != nil {
			return BootstrapResult{}, err
		}
		if t < observed {
			low++
		}
		toys = append(toys, t)
	}

	result := finishBootstrap(observed, datasets, low, toys)
	l.logger.Info("bootstrap p-value: the simulated p-value is %g with uncertainty %g", result.PValue, result.Uncertainty)
	return result, nil
}

// observedStatistic sums the log-density of blocks that carry
// observations; purely theoretical constraints do not enter the test
// statistic.
func (l *LogLikelihood) observedStatistic() float64 {
	total := 0.0
	for _, c := range l.constraints {
		for _, b := range c.blocks {
			if b.NumberOfObservations() == 0 {
				continue
			}
			total += b.Evaluate()
		}
	}
	return total
}

// sampleStatistic draws one toy total likelihood
func (l *LogLikelihood) sampleStatistic(rng *rand.Rand) (float64, error) {
	total := 0.0
	for _, c := range l.constraints {
		for _, b := range c.blocks {
			s, err := b.Sample(rng)
			if err != nil {
				return 0, err
			}
			total += s
		}
	}
	return total, nil
}

func finishBootstrap(observed float64, datasets, low uint, toys []float64) BootstrapResult {
	// mode of the binomial posterior
	p := float64(low) / float64(datasets)

	// Laplace-smoothed expectation and its posterior variance
	pExpected := float64(low+1) / float64(datasets+2)
	uncertainty := math.Sqrt(pExpected * (1 - pExpected) / float64(datasets+3))

	summary := ToySummary{}
	if len(toys) > 0 {
		summary.Mean, _ = stats.Mean(toys)
		summary.StdDev, _ = stats.StandardDeviation(toys)
		summary.Median, _ = stats.Median(toys)
		summary.P5, _ = stats.Percentile(toys, 5)
		summary.P95, _ = stats.Percentile(toys, 95)
	}

	return BootstrapResult{
		PValue:      p,
		Uncertainty: uncertainty,
		Datasets:    datasets,
		Observed:    observed,
		ToySummary:  summary,
	}
}
