package metrics

import (
	"fmt"

	"github.com/Fuchsoria/genre-bandit/internal/bandit"
	"gonum.org/v1/gonum/floats"
)

// Summary holds per-arm statistics derived from a round history.
type Summary struct {
	Counts []int     `json:"counts"`
	Totals []float64 `json:"totals"`
	Means  []float64 `json:"means"`
}

// ComputeCountsAndMeans reduces an (arm, reward) history to per-arm counts,
// reward totals and mean rewards. Unvisited arms have a mean of zero.
func ComputeCountsAndMeans(nArms int, chosenArms []int, rewards []float64) (Summary, error) {
	if nArms < 1 {
		return Summary{}, fmt.Errorf("need at least one arm, got %d: %w", nArms, bandit.ErrInvalidArgument)
	}

	if len(chosenArms) != len(rewards) {
		return Summary{}, fmt.Errorf("history is not aligned, %d arms vs %d rewards: %w",
			len(chosenArms), len(rewards), bandit.ErrInvalidArgument)
	}

	summary := Summary{
		Counts: make([]int, nArms),
		Totals: make([]float64, nArms),
		Means:  make([]float64, nArms),
	}

	for round, arm := range chosenArms {
		if arm < 0 || arm >= nArms {
			return Summary{}, fmt.Errorf("round %d chose arm %d outside [0, %d): %w",
				round, arm, nArms, bandit.ErrInvalidArgument)
		}

		summary.Counts[arm]++
		summary.Totals[arm] += rewards[round]
	}

	for arm, count := range summary.Counts {
		if count > 0 {
			summary.Means[arm] = summary.Totals[arm] / float64(count)
		}
	}

	return summary, nil
}

func (s Summary) Rounds() int {
	rounds := 0
	for _, c := range s.Counts {
		rounds += c
	}

	return rounds
}

func (s Summary) TotalReward() float64 {
	return floats.Sum(s.Totals)
}

// Proportions is the share of rounds each arm was chosen in.
func (s Summary) Proportions() []float64 {
	out := make([]float64, len(s.Counts))

	rounds := s.Rounds()
	if rounds == 0 {
		return out
	}

	for arm, c := range s.Counts {
		out[arm] = float64(c) / float64(rounds)
	}

	return out
}
