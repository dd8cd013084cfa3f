package memorystorage

import (
	"context"
	"sort"
	"sync"

	"github.com/Fuchsoria/genre-bandit/internal/storage"
)

type Storage struct {
	mu          sync.RWMutex
	feedback    map[string][]storage.FeedbackEvent
	simulations []storage.SimulationRun
}

func New() *Storage {
	return &Storage{
		feedback: make(map[string][]storage.FeedbackEvent),
	}
}

func (s *Storage) AddFeedbackEvent(_ context.Context, event storage.FeedbackEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.feedback[event.SessionID] = append(s.feedback[event.SessionID], event)

	return nil
}

func (s *Storage) GetFeedbackEvents(_ context.Context, sessionID string) ([]storage.FeedbackEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	events := append([]storage.FeedbackEvent(nil), s.feedback[sessionID]...)
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Round < events[j].Round
	})

	return events, nil
}

func (s *Storage) ClearFeedbackEvents(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.feedback, sessionID)

	return nil
}

func (s *Storage) AddSimulationRun(_ context.Context, run storage.SimulationRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.simulations = append(s.simulations, run)

	return nil
}

func (s *Storage) GetSimulationRuns(_ context.Context) ([]storage.SimulationRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]storage.SimulationRun(nil), s.simulations...), nil
}
