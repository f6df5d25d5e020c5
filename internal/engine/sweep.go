package engine

import (
	"errors"
	"fmt"
	"sync"

	"github.com/talgya/simplemacro/internal/economy"
)

// Result is the outcome of one replicate.
type Result struct {
	Seed    int64
	History *economy.History
	Events  []Event
	Stats   SimStats
	Err     error
}

// Sweep runs one replicate of cfg per seed concurrently. Replicates share no
// state; results are returned in seed order along with the joined errors.
func Sweep(cfg Config, seeds []int64) ([]Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	results := make([]Result, len(seeds))
	var wg sync.WaitGroup
	for i, seed := range seeds {
		wg.Add(1)
		go func(i int, seed int64) {
			defer wg.Done()
			results[i] = replicate(cfg, seed)
		}(i, seed)
	}
	wg.Wait()

	var errs []error
	for _, r := range results {
		if r.Err != nil {
			errs = append(errs, fmt.Errorf("seed %d: %w", r.Seed, r.Err))
		}
	}
	return results, errors.Join(errs...)
}

func replicate(cfg Config, seed int64) Result {
	cfg.Seed = seed
	sim, err := NewSimulation(cfg)
	if err != nil {
		return Result{Seed: seed, Err: err}
	}
	err = sim.Run()
	r := sim.Result()
	r.Err = err
	return r
}
