package likelihood

import (
	"context"
	"math/rand/v2"

	"golang.org/x/sync/errgroup"
)

// BootstrapPValueParallel distributes the toy draws over workers, each
// working on its own Clone with its own deterministically seeded
// generator. Worker w draws with seed datasets+w, so results are
// reproducible for a fixed worker count; with one worker the result
// matches BootstrapPValue exactly.
func (l *LogLikelihood) BootstrapPValueParallel(ctx context.Context, datasets uint, workers int) (BootstrapResult, error) {
	if workers <= 1 {
		return l.BootstrapPValue(datasets)
	}
	if uint(workers) > datasets {
		workers = int(datasets)
	}

	l.cache.Update()
	observed := l.observedStatistic()

	l.logger.Info("bootstrap p-value: sampling %d simulated likelihoods over %d workers", datasets, workers)

	type shard struct {
		low  uint
		toys []float64
	}
	shards := make([]shard, workers)

	group, ctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		count := datasets / uint(workers)
		if uint(w) < datasets%uint(workers) {
			count++
		}
		seed := uint64(datasets) + uint64(w)

		group.Go(func() error {
			clone, err := l.Clone()
			if err != nil {
				return err
			}
			clone.cache.Update()

			rng := rand.New(rand.NewPCG(seed, seed))
			toys := make([]float64, 0, count)
			var low uint
			for i := uint(0); i < count; i++ {
				if err := ctx.Err(); err != nil {
					return err
				}
				t, err := clone.sampleStatistic(rng)
				if err != nil {
					return err
				}
				if t < observed {
					low++
				}
				toys = append(toys, t)
			}

			shards[w] = shard{low: low, toys: toys}
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return BootstrapResult{}, err
	}

	var low uint
	toys := make([]float64, 0, datasets)
	for _, s := range shards {
		low += s.low
		toys = append(toys, s.toys...)
	}

	result := finishBootstrap(observed, datasets, low, toys)
	l.logger.Info("bootstrap p-value: the simulated p-value is %g with uncertainty %g", result.PValue, result.Uncertainty)
	return result, nil
}
