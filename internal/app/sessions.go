package app

import (
	"context"
	"fmt"
	"time"

	"github.com/Fuchsoria/genre-bandit/internal/bandit"
	"github.com/Fuchsoria/genre-bandit/internal/metrics"
	"github.com/Fuchsoria/genre-bandit/internal/session"
	"github.com/Fuchsoria/genre-bandit/internal/storage"
	"github.com/google/uuid"
)

// SessionView is what callers get to see of a live session.
type SessionView struct {
	ID           string
	Policy       bandit.Kind
	Epsilon      float64
	Genres       []string
	Waiting      bool
	CurrentArm   int
	CurrentGenre string
	Rounds       int
}

type feedbackEvent struct {
	Type      string `json:"type"`
	SessionID string `json:"sessionId"`
	Round     int    `json:"round"`
	Arm       int    `json:"arm"`
	Genre     string `json:"genre"`
	Reward    int    `json:"reward"`
	Policy    string `json:"policy"`
	NextArm   int    `json:"nextArm"`
}

func view(s *session.Session) SessionView {
	arm, waiting := s.Current()

	v := SessionView{
		ID:      s.ID(),
		Policy:  s.Kind(),
		Epsilon: s.Epsilon(),
		Genres:  s.Labels(),
		Waiting: waiting,
		Rounds:  s.Rounds(),
	}

	if waiting {
		v.CurrentArm = arm
		v.CurrentGenre = s.Label(arm)
	}

	return v
}

// lookup must be called with a.mu held.
func (a *App) lookup(id string) (*session.Session, error) {
	s, ok := a.sessions[id]
	if !ok {
		return nil, fmt.Errorf("session %s: %w", id, session.ErrNotFound)
	}

	return s, nil
}

func (a *App) CreateSession(_ context.Context, kind bandit.Kind, epsilon float64) (SessionView, error) {
	id := uuid.NewString()

	s, err := session.New(id, a.genres, kind, bandit.Params{Epsilon: epsilon}, a.newSource())
	if err != nil {
		return SessionView{}, err
	}

	a.mu.Lock()
	a.sessions[id] = s
	a.mu.Unlock()

	a.logger.Info("session started", "session", id, "policy", kind.String(), "epsilon", epsilon)

	return view(s), nil
}

func (a *App) GetSession(_ context.Context, id string) (SessionView, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	s, err := a.lookup(id)
	if err != nil {
		return SessionView{}, err
	}

	return view(s), nil
}

// ResetSession starts the session's experiment over and drops its journal.
func (a *App) ResetSession(ctx context.Context, id string, kind bandit.Kind, epsilon float64) (SessionView, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	s, err := a.lookup(id)
	if err != nil {
		return SessionView{}, err
	}

	if err := s.Reset(kind, bandit.Params{Epsilon: epsilon}); err != nil {
		return SessionView{}, err
	}

	if err := a.storage.ClearFeedbackEvents(ctx, id); err != nil {
		a.logger.Warn("cannot clear feedback journal", "session", id, "error", err)
	}

	a.logger.Info("session reset", "session", id, "policy", kind.String(), "epsilon", epsilon)

	return view(s), nil
}

func (a *App) StartRecommendations(_ context.Context, id string) (SessionView, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	s, err := a.lookup(id)
	if err != nil {
		return SessionView{}, err
	}

	arm, err := s.Start()
	if err != nil {
		return SessionView{}, err
	}

	a.logger.Debug("recommendation", "session", id, "arm", arm, "genre", s.Label(arm))

	return view(s), nil
}

// Feedback applies an observed like (1) or dislike (0) to the pending
// recommendation and returns the session with the next one. The in-memory
// session is authoritative; journal and broker failures are only logged.
func (a *App) Feedback(ctx context.Context, id string, reward int) (SessionView, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	s, err := a.lookup(id)
	if err != nil {
		return SessionView{}, err
	}

	arm, _ := s.Current()
	round := s.Rounds()

	next, err := s.Feedback(reward)
	if err != nil {
		return SessionView{}, err
	}

	event := storage.FeedbackEvent{
		ID:        uuid.NewString(),
		SessionID: id,
		Round:     round,
		Arm:       arm,
		Genre:     s.Label(arm),
		Reward:    reward,
		Policy:    s.Kind().String(),
		Date:      time.Now(),
	}

	if err := a.storage.AddFeedbackEvent(ctx, event); err != nil {
		a.logger.Warn("cannot store feedback event", "session", id, "round", round, "error", err)
	}

	a.publish(ctx, feedbackEvent{
		Type:      "feedback",
		SessionID: id,
		Round:     round,
		Arm:       arm,
		Genre:     event.Genre,
		Reward:    reward,
		Policy:    event.Policy,
		NextArm:   next,
	})

	a.logger.Debug("feedback", "session", id, "arm", arm, "reward", reward, "next", next)

	return view(s), nil
}

func (a *App) SessionSummary(_ context.Context, id string) (metrics.Summary, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	s, err := a.lookup(id)
	if err != nil {
		return metrics.Summary{}, err
	}

	return s.Summary()
}

// ReplaySummary rebuilds the session summary from the stored feedback journal.
func (a *App) ReplaySummary(ctx context.Context, id string) (metrics.Summary, error) {
	a.mu.Lock()
	s, err := a.lookup(id)
	a.mu.Unlock()

	if err != nil {
		return metrics.Summary{}, err
	}

	nArms := len(s.Labels())

	events, err := a.storage.GetFeedbackEvents(ctx, id)
	if err != nil {
		return metrics.Summary{}, fmt.Errorf("cannot load feedback journal, %w", err)
	}

	arms := make([]int, len(events))
	rewards := make([]float64, len(events))

	for i, event := range events {
		arms[i] = event.Arm
		rewards[i] = float64(event.Reward)
	}

	return metrics.ComputeCountsAndMeans(nArms, arms, rewards)
}

func (a *App) DeleteSession(ctx context.Context, id string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if _, err := a.lookup(id); err != nil {
		return err
	}

	delete(a.sessions, id)

	if err := a.storage.ClearFeedbackEvents(ctx, id); err != nil {
		a.logger.Warn("cannot clear feedback journal", "session", id, "error", err)
	}

	a.logger.Info("session closed", "session", id)

	return nil
}
