package chooser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Quiz-Night-Club/quiz-engine/app/shared/randutil"
	"github.com/Quiz-Night-Club/quiz-engine/app/shared/types"
)

func TestNewRotation_SeedDeterminism(t *testing.T) {
	teams := []types.TeamID{"alpha", "beta", "gamma", "delta"}

	a := NewRotation(teams, randutil.NewSource(42))
	b := NewRotation(teams, randutil.NewSource(42))
	assert.Equal(t, a.Order, b.Order, "same seed should yield same order")

	c := NewRotation(teams, randutil.NewSource(7))
	assert.ElementsMatch(t, teams, c.Order, "shuffle must be a permutation")
	assert.Equal(t, -1, a.Idx)
	assert.Equal(t, types.TeamID(""), a.Current())
}

func TestRotation_SwitchCycles(t *testing.T) {
	r := &Rotation{Order: []types.TeamID{"a", "b", "c"}, Idx: -1}

	var seen []types.TeamID
	for i := 0; i < 6; i++ {
		team, err := r.Switch(nil)
		require.NoError(t, err)
		seen = append(seen, team)
	}
	assert.Equal(t, []types.TeamID{"a", "b", "c", "a", "b", "c"}, seen,
		"each team should act once per full cycle")
}

func TestRotation_SwitchSkipsExcluded(t *testing.T) {
	r := &Rotation{Order: []types.TeamID{"a", "b", "c"}, Idx: 0}

	team, err := r.Switch([]types.TeamID{"b"})
	require.NoError(t, err)
	assert.Equal(t, types.TeamID("c"), team)
	assert.Equal(t, types.TeamID("c"), r.Current())
}

func TestRotation_AllExcluded(t *testing.T) {
	r := &Rotation{Order: []types.TeamID{"a", "b"}, Idx: 0}

	_, err := r.Switch([]types.TeamID{"a", "b"})
	require.ErrorIs(t, err, ErrNoEligibleChooser)
	assert.Equal(t, 0, r.Idx, "failed switch must not move the rotation")

	empty := &Rotation{}
	_, err = empty.Switch(nil)
	require.ErrorIs(t, err, ErrNoEligibleChooser)
}

func TestRotation_NextDoesNotMutate(t *testing.T) {
	r := &Rotation{Order: []types.TeamID{"a", "b", "c"}, Idx: 1}

	team, err := r.Next(nil)
	require.NoError(t, err)
	assert.Equal(t, types.TeamID("c"), team)
	assert.Equal(t, 1, r.Idx)
	assert.Equal(t, types.TeamID("b"), r.Current())
}
