package bandit

import (
	"math"
)

// countGuard keeps the bound finite for arms that were never pulled.
const countGuard = 1e-5

// UCB is the UCB1 policy: mean estimate plus an optimism bonus that shrinks
// as an arm collects visits.
type UCB struct {
	estimates
	src Source
}

var _ Policy = (*UCB)(nil)

func NewUCB(nArms int, src Source) (*UCB, error) {
	if err := checkSetup(nArms, src); err != nil {
		return nil, err
	}

	return &UCB{
		estimates: newEstimates(nArms),
		src:       src,
	}, nil
}

// GetScore is the upper confidence bound of one arm.
func GetScore(mean float64, visits int, totalVisits int) float64 {
	bonus := math.Sqrt(2 * math.Log(float64(totalVisits)) / (float64(visits) + countGuard))

	return mean + bonus
}

func (u *UCB) SelectArm() int {
	total := u.total()
	if total == 0 {
		return u.src.Intn(len(u.counts))
	}

	scores := make([]float64, len(u.counts))
	for arm := range u.counts {
		scores[arm] = GetScore(u.values[arm], u.counts[arm], total)
	}

	return GetTopScore(scores)
}

func (u *UCB) Update(arm int, reward float64) error {
	return u.update(arm, reward)
}

func (u *UCB) Kind() Kind {
	return KindUCB
}
