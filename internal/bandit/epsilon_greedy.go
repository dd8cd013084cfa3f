package bandit

import "fmt"

// EpsilonGreedy explores a uniformly random arm with probability epsilon and
// otherwise exploits the arm with the highest mean estimate.
type EpsilonGreedy struct {
	estimates
	epsilon float64
	src     Source
}

var _ Policy = (*EpsilonGreedy)(nil)

func NewEpsilonGreedy(nArms int, epsilon float64, src Source) (*EpsilonGreedy, error) {
	if err := checkSetup(nArms, src); err != nil {
		return nil, err
	}

	if !(epsilon >= 0 && epsilon <= 1) {
		return nil, fmt.Errorf("epsilon %v outside [0, 1]: %w", epsilon, ErrConfiguration)
	}

	return &EpsilonGreedy{
		estimates: newEstimates(nArms),
		epsilon:   epsilon,
		src:       src,
	}, nil
}

func (g *EpsilonGreedy) SelectArm() int {
	if g.src.Float64() < g.epsilon {
		return g.src.Intn(len(g.counts))
	}

	return GetTopScore(g.values)
}

func (g *EpsilonGreedy) Update(arm int, reward float64) error {
	return g.update(arm, reward)
}

func (g *EpsilonGreedy) Epsilon() float64 {
	return g.epsilon
}

func (g *EpsilonGreedy) Kind() Kind {
	return KindEpsilonGreedy
}
