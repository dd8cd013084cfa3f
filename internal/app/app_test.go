package app

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/Fuchsoria/genre-bandit/internal/bandit"
	"github.com/Fuchsoria/genre-bandit/internal/logger"
	"github.com/Fuchsoria/genre-bandit/internal/session"
	"github.com/Fuchsoria/genre-bandit/internal/storage"
	memorystorage "github.com/Fuchsoria/genre-bandit/internal/storage/memory"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingProducer struct {
	mu       sync.Mutex
	messages []map[string]interface{}
}

func (p *recordingProducer) Publish(_ context.Context, body []byte) error {
	var msg map[string]interface{}
	if err := json.Unmarshal(body, &msg); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages = append(p.messages, msg)

	return nil
}

type brokenStorage struct {
	*memorystorage.Storage
}

func (brokenStorage) AddFeedbackEvent(context.Context, storage.FeedbackEvent) error {
	return errors.New("db is gone")
}

func newTestApp(t *testing.T, store Storage, opts ...Option) (*App, *recordingProducer) {
	t.Helper()

	producer := &recordingProducer{}
	opts = append([]Option{WithSourceFactory(func() bandit.Source { return bandit.NewSource(1) })}, opts...)
	a := New(logger.Wrap(zap.NewNop()), store, producer, opts...)

	return a, producer
}

func TestSimulate(t *testing.T) {
	ctx := context.Background()

	t.Run("defaults run every policy", func(t *testing.T) {
		store := memorystorage.New()
		a, producer := newTestApp(t, store)

		report, err := a.Simulate(ctx, SimulationRequest{Epsilon: 0.1, Seed: 42})
		require.NoError(t, err)
		require.NotEmpty(t, report.ID)
		require.Len(t, report.Genres, 8)
		require.Len(t, report.Runs, 3)
		require.Len(t, report.Runs[0].Result.Rewards, 300)

		runs, err := a.SimulationHistory(ctx)
		require.NoError(t, err)
		require.Len(t, runs, 3)
		require.Equal(t, "random", runs[0].Policy)

		require.Len(t, producer.messages, 3)
		require.Equal(t, "simulation", producer.messages[0]["type"])
	})

	t.Run("custom genres need probabilities", func(t *testing.T) {
		a, _ := newTestApp(t, memorystorage.New())

		_, err := a.Simulate(ctx, SimulationRequest{Genres: []string{"Jazz", "Blues"}, Rounds: 10})
		require.ErrorIs(t, err, bandit.ErrConfiguration)
	})

	t.Run("negative rounds are rejected", func(t *testing.T) {
		a, _ := newTestApp(t, memorystorage.New())

		_, err := a.Simulate(ctx, SimulationRequest{Rounds: -5})
		require.ErrorIs(t, err, bandit.ErrInvalidArgument)
	})

	t.Run("oversized requests are rejected before running", func(t *testing.T) {
		store := memorystorage.New()
		a, producer := newTestApp(t, store, WithSimulationLimits(1000, 4))

		_, err := a.Simulate(ctx, SimulationRequest{Rounds: 100000000})
		require.ErrorIs(t, err, bandit.ErrInvalidArgument)

		_, err = a.Simulate(ctx, SimulationRequest{Rounds: 1001})
		require.ErrorIs(t, err, bandit.ErrInvalidArgument)

		_, err = a.Simulate(ctx, SimulationRequest{
			Genres:        []string{"Pop", "Rock", "Funk", "Trap", "MPB"},
			Probabilities: []float64{0.1, 0.2, 0.3, 0.4, 0.5},
			Rounds:        10,
		})
		require.ErrorIs(t, err, bandit.ErrInvalidArgument)

		runs, err := store.GetSimulationRuns(ctx)
		require.NoError(t, err)
		require.Empty(t, runs)
		require.Empty(t, producer.messages)

		report, err := a.Simulate(ctx, SimulationRequest{
			Genres:        []string{"Pop", "Rock", "Funk", "Trap"},
			Probabilities: []float64{0.1, 0.2, 0.3, 0.4},
			Rounds:        1000,
		})
		require.NoError(t, err)
		require.Len(t, report.Runs[0].Result.Rewards, 1000)
	})

	t.Run("default limits", func(t *testing.T) {
		a, _ := newTestApp(t, memorystorage.New())

		_, err := a.Simulate(ctx, SimulationRequest{Rounds: 100001})
		require.ErrorIs(t, err, bandit.ErrInvalidArgument)
	})

	t.Run("seed must fit the journal", func(t *testing.T) {
		store := memorystorage.New()
		a, _ := newTestApp(t, store)

		_, err := a.Simulate(ctx, SimulationRequest{Rounds: 10, Seed: math.MaxInt64 + 1})
		require.ErrorIs(t, err, bandit.ErrInvalidArgument)

		_, err = a.Simulate(ctx, SimulationRequest{Rounds: 10, Seed: math.MaxInt64})
		require.NoError(t, err)

		runs, err := store.GetSimulationRuns(ctx)
		require.NoError(t, err)
		require.Len(t, runs, 3)
		require.Equal(t, int64(math.MaxInt64), runs[0].Seed)
	})
}

func TestSessions(t *testing.T) {
	ctx := context.Background()

	t.Run("live feedback loop", func(t *testing.T) {
		a, producer := newTestApp(t, memorystorage.New())

		created, err := a.CreateSession(ctx, bandit.KindEpsilonGreedy, 0)
		require.NoError(t, err)
		require.False(t, created.Waiting)
		require.Equal(t, session.DefaultGenres, created.Genres)

		started, err := a.StartRecommendations(ctx, created.ID)
		require.NoError(t, err)
		require.True(t, started.Waiting)
		require.Equal(t, 0, started.CurrentArm)
		require.Equal(t, "Pop", started.CurrentGenre)

		_, err = a.StartRecommendations(ctx, created.ID)
		require.ErrorIs(t, err, session.ErrAwaitingFeedback)

		next, err := a.Feedback(ctx, created.ID, 1)
		require.NoError(t, err)
		require.Equal(t, 1, next.Rounds)

		_, err = a.Feedback(ctx, created.ID, 0)
		require.NoError(t, err)

		summary, err := a.SessionSummary(ctx, created.ID)
		require.NoError(t, err)
		require.Equal(t, 2, summary.Counts[0])
		require.Equal(t, 0.5, summary.Means[0])

		replayed, err := a.ReplaySummary(ctx, created.ID)
		require.NoError(t, err)
		require.Equal(t, summary, replayed)

		require.Len(t, producer.messages, 2)
		require.Equal(t, "feedback", producer.messages[1]["type"])
	})

	t.Run("reset drops history and journal", func(t *testing.T) {
		a, _ := newTestApp(t, memorystorage.New())

		created, err := a.CreateSession(ctx, bandit.KindRandom, 0)
		require.NoError(t, err)
		_, err = a.StartRecommendations(ctx, created.ID)
		require.NoError(t, err)
		_, err = a.Feedback(ctx, created.ID, 1)
		require.NoError(t, err)

		reset, err := a.ResetSession(ctx, created.ID, bandit.KindUCB, 0)
		require.NoError(t, err)
		require.Equal(t, bandit.KindUCB, reset.Policy)
		require.Zero(t, reset.Rounds)
		require.False(t, reset.Waiting)

		replayed, err := a.ReplaySummary(ctx, created.ID)
		require.NoError(t, err)
		require.Zero(t, replayed.Rounds())
	})

	t.Run("unknown session", func(t *testing.T) {
		a, _ := newTestApp(t, memorystorage.New())

		_, err := a.GetSession(ctx, "missing")
		require.ErrorIs(t, err, session.ErrNotFound)

		_, err = a.Feedback(ctx, "missing", 1)
		require.ErrorIs(t, err, session.ErrNotFound)

		require.ErrorIs(t, a.DeleteSession(ctx, "missing"), session.ErrNotFound)
	})

	t.Run("delete", func(t *testing.T) {
		a, _ := newTestApp(t, memorystorage.New())

		created, err := a.CreateSession(ctx, bandit.KindUCB, 0)
		require.NoError(t, err)
		require.NoError(t, a.DeleteSession(ctx, created.ID))

		_, err = a.GetSession(ctx, created.ID)
		require.ErrorIs(t, err, session.ErrNotFound)
	})

	t.Run("journal failure does not fail feedback", func(t *testing.T) {
		a, _ := newTestApp(t, brokenStorage{memorystorage.New()})

		created, err := a.CreateSession(ctx, bandit.KindUCB, 0)
		require.NoError(t, err)
		_, err = a.StartRecommendations(ctx, created.ID)
		require.NoError(t, err)

		next, err := a.Feedback(ctx, created.ID, 1)
		require.NoError(t, err)
		require.Equal(t, 1, next.Rounds)
	})

	t.Run("bad epsilon is rejected", func(t *testing.T) {
		a, _ := newTestApp(t, memorystorage.New())

		_, err := a.CreateSession(ctx, bandit.KindEpsilonGreedy, 2)
		require.ErrorIs(t, err, bandit.ErrConfiguration)
	})
}
