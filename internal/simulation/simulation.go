package simulation

import (
	"fmt"

	"github.com/Fuchsoria/genre-bandit/internal/bandit"
	"gonum.org/v1/gonum/floats"
)

// Environment is the ground-truth side of a simulated run.
type Environment interface {
	HasTrueProbs() bool
	BestArm() (int, error)
	Pull(arm int) (int, error)
	Arms() int
}

// Result is the learning curve of one run. Every slice has one entry per round.
type Result struct {
	Rewards          []float64 `json:"rewards"`
	ChosenArms       []int     `json:"chosenArms"`
	CumulativeReward []float64 `json:"cumulativeReward"`
	PctOptimal       []float64 `json:"pctOptimal"`
	BestArm          int       `json:"bestArm"`
}

// Simulate plays nRounds of policy against env. The environment must know its
// true probabilities, otherwise the optimal-choice curve has nothing to compare to.
func Simulate(env Environment, policy bandit.Policy, nRounds int) (*Result, error) {
	if !env.HasTrueProbs() {
		return nil, fmt.Errorf("simulate requires known ground-truth probabilities: %w", bandit.ErrConfiguration)
	}

	if nRounds <= 0 {
		return nil, fmt.Errorf("rounds must be positive, got %d: %w", nRounds, bandit.ErrInvalidArgument)
	}

	if policy.Arms() != env.Arms() {
		return nil, fmt.Errorf("policy has %d arms, environment has %d: %w",
			policy.Arms(), env.Arms(), bandit.ErrConfiguration)
	}

	bestArm, err := env.BestArm()
	if err != nil {
		return nil, err
	}

	result := &Result{
		Rewards:          make([]float64, nRounds),
		ChosenArms:       make([]int, nRounds),
		CumulativeReward: make([]float64, nRounds),
		PctOptimal:       make([]float64, nRounds),
		BestArm:          bestArm,
	}

	optimal := 0

	for t := 0; t < nRounds; t++ {
		arm := policy.SelectArm()

		reward, err := env.Pull(arm)
		if err != nil {
			return nil, fmt.Errorf("round %d: %w", t, err)
		}

		if err := policy.Update(arm, float64(reward)); err != nil {
			return nil, fmt.Errorf("round %d: %w", t, err)
		}

		result.Rewards[t] = float64(reward)
		result.ChosenArms[t] = arm

		if arm == bestArm {
			optimal++
		}

		result.PctOptimal[t] = float64(optimal) / float64(t+1)
	}

	floats.CumSum(result.CumulativeReward, result.Rewards)

	return result, nil
}
