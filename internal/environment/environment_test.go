package environment

import (
	"math"
	"testing"

	"github.com/Fuchsoria/genre-bandit/internal/bandit"
	"github.com/stretchr/testify/require"
)

type countingSource struct {
	value float64
	draws int
}

func (s *countingSource) Float64() float64 {
	s.draws++

	return s.value
}

func (s *countingSource) Intn(int) int {
	s.draws++

	return 0
}

func TestEnvironment(t *testing.T) {
	labels := []string{"Pop", "Rock", "Funk"}

	t.Run("pull compares the draw with the true probability", func(t *testing.T) {
		src := &countingSource{value: 0.5}
		env, err := New(labels, []float64{0.3, 0.5, 0.85}, src)
		require.NoError(t, err)
		require.True(t, env.HasTrueProbs())

		reward, err := env.Pull(0)
		require.NoError(t, err)
		require.Equal(t, 0, reward)

		reward, err = env.Pull(1)
		require.NoError(t, err)
		require.Equal(t, 0, reward, "draw equal to p is a miss")

		reward, err = env.Pull(2)
		require.NoError(t, err)
		require.Equal(t, 1, reward)

		require.Equal(t, 3, src.draws)
	})

	t.Run("live mode refuses to pull", func(t *testing.T) {
		src := &countingSource{}
		env, err := New(labels, nil, src)
		require.NoError(t, err)
		require.False(t, env.HasTrueProbs())
		require.Nil(t, env.Probabilities())

		_, err = env.Pull(0)
		require.ErrorIs(t, err, bandit.ErrUnsupportedOperation)
		require.Zero(t, src.draws)

		_, err = env.BestArm()
		require.ErrorIs(t, err, bandit.ErrUnsupportedOperation)
	})

	t.Run("pull rejects unknown arm without drawing", func(t *testing.T) {
		src := &countingSource{}
		env, err := New(labels, []float64{0.1, 0.2, 0.3}, src)
		require.NoError(t, err)

		_, err = env.Pull(3)
		require.ErrorIs(t, err, bandit.ErrInvalidArgument)
		require.Zero(t, src.draws)
	})

	t.Run("best arm takes the first maximum", func(t *testing.T) {
		env, err := New([]string{"a", "b", "c", "d"}, []float64{0.2, 0.9, 0.9, 0.1}, bandit.NewSource(1))
		require.NoError(t, err)

		best, err := env.BestArm()
		require.NoError(t, err)
		require.Equal(t, 1, best)
	})

	t.Run("rejects bad configuration", func(t *testing.T) {
		_, err := New(nil, nil, nil)
		require.ErrorIs(t, err, bandit.ErrConfiguration)

		_, err = New(labels, []float64{0.1}, bandit.NewSource(1))
		require.ErrorIs(t, err, bandit.ErrConfiguration)

		_, err = New(labels, []float64{0.1, 1.2, 0.3}, bandit.NewSource(1))
		require.ErrorIs(t, err, bandit.ErrConfiguration)

		_, err = New(labels, []float64{0.1, math.NaN(), 0.3}, bandit.NewSource(1))
		require.ErrorIs(t, err, bandit.ErrConfiguration)

		_, err = New(labels, []float64{0.1, 0.2, 0.3}, nil)
		require.ErrorIs(t, err, bandit.ErrConfiguration)
	})

	t.Run("inputs are copied", func(t *testing.T) {
		probs := []float64{0.1, 0.2, 0.3}
		names := append([]string(nil), labels...)
		env, err := New(names, probs, bandit.NewSource(1))
		require.NoError(t, err)

		probs[0] = 1
		names[0] = "Jazz"

		require.Equal(t, []float64{0.1, 0.2, 0.3}, env.Probabilities())
		require.Equal(t, "Pop", env.Label(0))
	})
}
