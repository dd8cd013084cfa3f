package environment

import (
	"fmt"

	"github.com/Fuchsoria/genre-bandit/internal/bandit"
	"gonum.org/v1/gonum/floats"
)

// Environment turns an arm choice into a binary reward. Without true
// probabilities it is in live mode and rewards must come from outside.
type Environment struct {
	labels []string
	probs  []float64
	src    bandit.Source
}

func New(labels []string, probs []float64, src bandit.Source) (*Environment, error) {
	if len(labels) == 0 {
		return nil, fmt.Errorf("environment needs at least one arm: %w", bandit.ErrConfiguration)
	}

	env := &Environment{
		labels: append([]string(nil), labels...),
		src:    src,
	}

	if probs == nil {
		return env, nil
	}

	if len(probs) != len(labels) {
		return nil, fmt.Errorf("got %d probabilities for %d arms: %w", len(probs), len(labels), bandit.ErrConfiguration)
	}

	for arm, p := range probs {
		if !(p >= 0 && p <= 1) {
			return nil, fmt.Errorf("probability %v of %q outside [0, 1]: %w", p, labels[arm], bandit.ErrConfiguration)
		}
	}

	if src == nil {
		return nil, fmt.Errorf("simulated environment needs a random source: %w", bandit.ErrConfiguration)
	}

	env.probs = append([]float64(nil), probs...)

	return env, nil
}

func (e *Environment) HasTrueProbs() bool {
	return e.probs != nil
}

func (e *Environment) Arms() int {
	return len(e.labels)
}

func (e *Environment) Labels() []string {
	return append([]string(nil), e.labels...)
}

func (e *Environment) Label(arm int) string {
	if arm < 0 || arm >= len(e.labels) {
		return ""
	}

	return e.labels[arm]
}

// Probabilities returns a copy of the true probabilities, nil in live mode.
func (e *Environment) Probabilities() []float64 {
	if e.probs == nil {
		return nil
	}

	return append([]float64(nil), e.probs...)
}

// BestArm is the arm with the highest true probability, the first one on ties.
func (e *Environment) BestArm() (int, error) {
	if e.probs == nil {
		return 0, fmt.Errorf("best arm is unknown without true probabilities: %w", bandit.ErrUnsupportedOperation)
	}

	return floats.MaxIdx(e.probs), nil
}

// Pull draws one reward for arm from its true probability.
func (e *Environment) Pull(arm int) (int, error) {
	if e.probs == nil {
		return 0, fmt.Errorf("environment has no true probabilities, use observed feedback instead: %w",
			bandit.ErrUnsupportedOperation)
	}

	if arm < 0 || arm >= len(e.probs) {
		return 0, fmt.Errorf("arm %d outside [0, %d): %w", arm, len(e.probs), bandit.ErrInvalidArgument)
	}

	if e.src.Float64() < e.probs[arm] {
		return 1, nil
	}

	return 0, nil
}
