package simulation

import (
	"context"
	"fmt"
	"sync"

	"github.com/Fuchsoria/genre-bandit/internal/bandit"
	"github.com/Fuchsoria/genre-bandit/internal/environment"
	"github.com/Fuchsoria/genre-bandit/internal/metrics"
	"golang.org/x/sync/errgroup"
)

var (
	DefaultGenres = []string{"Pop", "Rock", "Funk", "Sertanejo", "Trap", "MPB", "Forró", "Eletrônica"}
	// DefaultProbabilities are aligned with DefaultGenres.
	DefaultProbabilities = []float64{0.3, 0.4, 0.85, 0.3, 0.7, 0.3, 0.45, 0.5}
)

const (
	DefaultRounds  = 300
	DefaultEpsilon = 0.1
	DefaultSeed    = 42

	// DefaultMaxRounds and DefaultMaxGenres bound a single comparison request.
	DefaultMaxRounds = 100000
	DefaultMaxGenres = 64
)

type CompareConfig struct {
	Labels        []string
	Probabilities []float64
	Rounds        int
	Epsilon       float64
	Seed          uint64

	// Progress, when set, is told about each finished run. Calls are serialised.
	Progress func(kind bandit.Kind, done, total int)
}

// Run is one policy's outcome in a comparison.
type Run struct {
	Kind    bandit.Kind
	Result  *Result
	Summary metrics.Summary
}

// Compare plays every policy variant on the same problem. Each run owns an
// environment and a policy built on a fresh stream seeded with cfg.Seed, so runs
// are reproducible and independent of each other.
func Compare(ctx context.Context, cfg CompareConfig) ([]Run, error) {
	if cfg.Probabilities == nil {
		return nil, fmt.Errorf("comparison requires known ground-truth probabilities: %w", bandit.ErrConfiguration)
	}

	runs := make([]Run, len(bandit.Kinds))
	g, ctx := errgroup.WithContext(ctx)

	var (
		mu   sync.Mutex
		done int
	)

	for i, kind := range bandit.Kinds {
		i, kind := i, kind

		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			run, err := runOne(kind, cfg)
			if err != nil {
				return fmt.Errorf("%s: %w", kind, err)
			}

			runs[i] = run

			if cfg.Progress != nil {
				mu.Lock()
				done++
				cfg.Progress(kind, done, len(runs))
				mu.Unlock()
			}

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return runs, nil
}

func runOne(kind bandit.Kind, cfg CompareConfig) (Run, error) {
	src := bandit.NewSource(cfg.Seed)

	env, err := environment.New(cfg.Labels, cfg.Probabilities, src)
	if err != nil {
		return Run{}, err
	}

	policy, err := bandit.New(kind, env.Arms(), bandit.Params{Epsilon: cfg.Epsilon}, src)
	if err != nil {
		return Run{}, err
	}

	result, err := Simulate(env, policy, cfg.Rounds)
	if err != nil {
		return Run{}, err
	}

	summary, err := metrics.ComputeCountsAndMeans(env.Arms(), result.ChosenArms, result.Rewards)
	if err != nil {
		return Run{}, err
	}

	return Run{Kind: kind, Result: result, Summary: summary}, nil
}
