package bandit

import (
	"errors"
	"fmt"
	"strings"

	erand "golang.org/x/exp/rand"
)

var (
	ErrUnsupportedOperation = errors.New("unsupported operation")
	ErrConfiguration        = errors.New("configuration error")
	ErrInvalidArgument      = errors.New("invalid argument")
)

// Source is the random stream a policy or an environment draws from.
type Source interface {
	Float64() float64
	Intn(n int) int
}

// NewSource returns an independent seeded stream. Runs that must be reproducible
// get their own source and never share it with another run.
func NewSource(seed uint64) Source {
	return erand.New(erand.NewSource(seed))
}

type Kind int

const (
	KindRandom Kind = iota
	KindEpsilonGreedy
	KindUCB
)

// Kinds lists every policy variant in display order.
var Kinds = []Kind{KindRandom, KindEpsilonGreedy, KindUCB}

func (k Kind) String() string {
	switch k {
	case KindRandom:
		return "random"
	case KindEpsilonGreedy:
		return "epsilon-greedy"
	case KindUCB:
		return "ucb"
	}

	return fmt.Sprintf("kind(%d)", int(k))
}

func ParseKind(value string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "random":
		return KindRandom, nil
	case "epsilon-greedy", "epsilon_greedy", "egreedy":
		return KindEpsilonGreedy, nil
	case "ucb", "ucb1":
		return KindUCB, nil
	}

	return 0, fmt.Errorf("unknown policy %q: %w", value, ErrConfiguration)
}

type Params struct {
	Epsilon float64
}

type Policy interface {
	SelectArm() int
	Update(arm int, reward float64) error
	Kind() Kind
	Arms() int
}

// New builds the policy variant named by kind.
func New(kind Kind, nArms int, params Params, src Source) (Policy, error) {
	var (
		policy Policy
		err    error
	)

	switch kind {
	case KindRandom:
		policy, err = NewRandom(nArms, src)
	case KindEpsilonGreedy:
		policy, err = NewEpsilonGreedy(nArms, params.Epsilon, src)
	case KindUCB:
		policy, err = NewUCB(nArms, src)
	default:
		return nil, fmt.Errorf("unknown policy %s: %w", kind, ErrConfiguration)
	}

	if err != nil {
		return nil, err
	}

	return policy, nil
}

func checkSetup(nArms int, src Source) error {
	if nArms < 1 {
		return fmt.Errorf("policy needs at least one arm, got %d: %w", nArms, ErrConfiguration)
	}

	if src == nil {
		return fmt.Errorf("policy needs a random source: %w", ErrConfiguration)
	}

	return nil
}

func checkArm(arm int, nArms int) error {
	if arm < 0 || arm >= nArms {
		return fmt.Errorf("arm %d outside [0, %d): %w", arm, nArms, ErrInvalidArgument)
	}

	return nil
}
