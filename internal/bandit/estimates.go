package bandit

import (
	"gonum.org/v1/gonum/floats"
)

// estimates holds per-arm visit counts and running mean rewards.
type estimates struct {
	counts []int
	values []float64
}

func newEstimates(nArms int) estimates {
	return estimates{
		counts: make([]int, nArms),
		values: make([]float64, nArms),
	}
}

func (e *estimates) update(arm int, reward float64) error {
	if err := checkArm(arm, len(e.counts)); err != nil {
		return err
	}

	e.counts[arm]++
	n := float64(e.counts[arm])
	e.values[arm] += (reward - e.values[arm]) / n

	return nil
}

func (e *estimates) total() int {
	total := 0
	for _, c := range e.counts {
		total += c
	}

	return total
}

// Counts returns a copy of the visit counts.
func (e *estimates) Counts() []int {
	out := make([]int, len(e.counts))
	copy(out, e.counts)

	return out
}

// Values returns a copy of the mean reward estimates.
func (e *estimates) Values() []float64 {
	out := make([]float64, len(e.values))
	copy(out, e.values)

	return out
}

func (e *estimates) Arms() int {
	return len(e.counts)
}

// GetTopScore returns the index of the highest score, the first one on ties.
func GetTopScore(scores []float64) int {
	return floats.MaxIdx(scores)
}
