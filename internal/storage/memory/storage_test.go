package memorystorage

import (
	"context"
	"testing"

	"github.com/Fuchsoria/genre-bandit/internal/storage"
	"github.com/stretchr/testify/require"
)

func TestStorage(t *testing.T) {
	ctx := context.Background()
	s := New()

	t.Run("feedback events come back in round order", func(t *testing.T) {
		require.NoError(t, s.AddFeedbackEvent(ctx, storage.FeedbackEvent{SessionID: "a", Round: 1, Arm: 2, Reward: 1}))
		require.NoError(t, s.AddFeedbackEvent(ctx, storage.FeedbackEvent{SessionID: "a", Round: 0, Arm: 1}))
		require.NoError(t, s.AddFeedbackEvent(ctx, storage.FeedbackEvent{SessionID: "b", Round: 0, Arm: 0}))

		events, err := s.GetFeedbackEvents(ctx, "a")
		require.NoError(t, err)
		require.Len(t, events, 2)
		require.Equal(t, 0, events[0].Round)
		require.Equal(t, 1, events[1].Round)
	})

	t.Run("clear drops one session only", func(t *testing.T) {
		require.NoError(t, s.ClearFeedbackEvents(ctx, "a"))

		events, err := s.GetFeedbackEvents(ctx, "a")
		require.NoError(t, err)
		require.Empty(t, events)

		events, err = s.GetFeedbackEvents(ctx, "b")
		require.NoError(t, err)
		require.Len(t, events, 1)
	})

	t.Run("simulation runs", func(t *testing.T) {
		require.NoError(t, s.AddSimulationRun(ctx, storage.SimulationRun{ID: "r1", Policy: "ucb", Rounds: 10}))

		runs, err := s.GetSimulationRuns(ctx)
		require.NoError(t, err)
		require.Len(t, runs, 1)
		require.Equal(t, "ucb", runs[0].Policy)
	})
}
