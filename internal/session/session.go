package session

import (
	"errors"
	"fmt"

	"github.com/Fuchsoria/genre-bandit/internal/bandit"
	"github.com/Fuchsoria/genre-bandit/internal/metrics"
)

var (
	ErrAwaitingFeedback    = errors.New("session is waiting for feedback")
	ErrNotAwaitingFeedback = errors.New("session has no pending recommendation")
	ErrNotFound            = errors.New("session not found")
)

// DefaultGenres are the arms of a live session.
var DefaultGenres = []string{"Pop", "Rock", "Funk", "Sertanejo", "MPB", "Forró"}

// Session is one live experiment: a policy fed by externally observed rewards
// plus the history it produced. A session has a single owner; it is not safe
// for concurrent use.
type Session struct {
	id     string
	labels []string
	src    bandit.Source

	policy bandit.Policy
	params bandit.Params

	chosenArms []int
	rewards    []float64
	waiting    bool
	currentArm int
}

func New(id string, labels []string, kind bandit.Kind, params bandit.Params, src bandit.Source) (*Session, error) {
	if len(labels) == 0 {
		return nil, fmt.Errorf("session needs at least one genre: %w", bandit.ErrConfiguration)
	}

	s := &Session{
		id:     id,
		labels: append([]string(nil), labels...),
		src:    src,
	}

	if err := s.Reset(kind, params); err != nil {
		return nil, err
	}

	return s, nil
}

// Reset starts the experiment over with a fresh policy and an empty history.
func (s *Session) Reset(kind bandit.Kind, params bandit.Params) error {
	policy, err := bandit.New(kind, len(s.labels), params, s.src)
	if err != nil {
		return err
	}

	s.policy = policy
	s.params = params
	s.chosenArms = nil
	s.rewards = nil
	s.waiting = false
	s.currentArm = 0

	return nil
}

// Start asks the policy for the first recommendation.
func (s *Session) Start() (int, error) {
	if s.waiting {
		return 0, ErrAwaitingFeedback
	}

	s.currentArm = s.policy.SelectArm()
	s.waiting = true

	return s.currentArm, nil
}

// Feedback records the reward for the pending recommendation and returns the
// next one.
func (s *Session) Feedback(reward int) (int, error) {
	if !s.waiting {
		return 0, ErrNotAwaitingFeedback
	}

	if reward != 0 && reward != 1 {
		return 0, fmt.Errorf("reward must be 0 or 1, got %d: %w", reward, bandit.ErrInvalidArgument)
	}

	arm := s.currentArm
	if err := s.policy.Update(arm, float64(reward)); err != nil {
		return 0, err
	}

	s.chosenArms = append(s.chosenArms, arm)
	s.rewards = append(s.rewards, float64(reward))

	s.currentArm = s.policy.SelectArm()

	return s.currentArm, nil
}

func (s *Session) ID() string {
	return s.id
}

func (s *Session) Kind() bandit.Kind {
	return s.policy.Kind()
}

func (s *Session) Epsilon() float64 {
	return s.params.Epsilon
}

func (s *Session) Labels() []string {
	return append([]string(nil), s.labels...)
}

func (s *Session) Label(arm int) string {
	if arm < 0 || arm >= len(s.labels) {
		return ""
	}

	return s.labels[arm]
}

// Current returns the pending recommendation, if any.
func (s *Session) Current() (int, bool) {
	return s.currentArm, s.waiting
}

// History returns copies of the recorded arms and rewards.
func (s *Session) History() ([]int, []float64) {
	return append([]int(nil), s.chosenArms...), append([]float64(nil), s.rewards...)
}

func (s *Session) Rounds() int {
	return len(s.chosenArms)
}

func (s *Session) Summary() (metrics.Summary, error) {
	return metrics.ComputeCountsAndMeans(len(s.labels), s.chosenArms, s.rewards)
}
