package scoredomain

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Quiz-Night-Club/quiz-engine/app/shared/types"
)

func TestLedger_ApplySnapshotsAllTeams(t *testing.T) {
	l := NewLedger([]types.TeamID{"red", "blue"})

	l.Apply(types.ScoreDelta{TeamID: "red", Points: 3}, "q1")
	l.Apply(types.ScoreDelta{TeamID: "blue", Points: 1}, "q2")

	assert.Equal(t, types.Score(3), l.Total("red"))
	assert.Equal(t, types.Score(1), l.Total("blue"))

	// Every event snapshots every team, so all histories share a length.
	require.Len(t, l.Progress["red"], 2)
	require.Len(t, l.Progress["blue"], 2)
	assert.Equal(t, types.ProgressPoint{Key: "q1", Value: 3}, l.Progress["red"][0])
	assert.Equal(t, types.ProgressPoint{Key: "q1", Value: 0}, l.Progress["blue"][0])
	assert.Equal(t, types.ProgressPoint{Key: "q2", Value: 3}, l.Progress["red"][1])
	assert.Equal(t, types.ProgressPoint{Key: "q2", Value: 1}, l.Progress["blue"][1])
}

func TestLedger_ZeroDeltaIsCheckpoint(t *testing.T) {
	l := NewLedger([]types.TeamID{"red", "blue"})

	l.Apply(types.ScoreDelta{}, "r1")

	assert.Equal(t, types.Score(0), l.Total("red"))
	assert.Equal(t, types.Score(0), l.Total("blue"))
	require.Len(t, l.Progress["red"], 1)
	require.Len(t, l.Progress["blue"], 1)
}

func TestLedger_TotalsMatchDeltaSum(t *testing.T) {
	l := NewLedger([]types.TeamID{"a", "b", "c"})
	deltas := []types.ScoreDelta{
		{TeamID: "a", Points: 2},
		{TeamID: "b", Points: 5},
		{TeamID: "a", Points: -1},
		{TeamID: "c", Points: 4},
	}

	var sum types.Score
	for i, d := range deltas {
		l.Apply(d, string(rune('0'+i)))
		sum += d.Points
	}

	var total types.Score
	for _, v := range l.Totals() {
		total += v
	}
	assert.Equal(t, sum, total, "totals must equal the sum of applied deltas")
}

func TestLedger_ProgressIsMonotoneWithoutPenalties(t *testing.T) {
	l := NewLedger([]types.TeamID{"red", "blue", "green"})
	deltas := []types.ScoreDelta{
		{TeamID: "red", Points: 3},
		{TeamID: "blue", Points: 1},
		{},
		{TeamID: "green", Points: 4},
		{TeamID: "red", Points: 2},
	}
	for i, d := range deltas {
		l.Apply(d, string(rune('a'+i)))
	}

	for team, points := range l.Progress {
		require.Len(t, points, len(deltas), "team %s", team)
		prev := types.Score(0)
		for i, p := range points {
			assert.GreaterOrEqual(t, p.Value, prev, "team %s dips at event %d", team, i)
			prev = p.Value
		}
	}

	// A mistake penalty is the one thing that makes a snapshot dip, and it
	// is recorded faithfully.
	l.Apply(types.ScoreDelta{TeamID: "red", Points: -2}, "penalty")
	history := l.Progress["red"]
	assert.Equal(t, types.Score(3), history[len(history)-1].Value)
	assert.Less(t, history[len(history)-1].Value, history[len(history)-2].Value)
}

func TestLedger_RankingSharesTiedRanks(t *testing.T) {
	l := NewLedger([]types.TeamID{"a", "b", "c", "d"})
	l.Apply(types.ScoreDelta{TeamID: "b", Points: 5}, "q1")
	l.Apply(types.ScoreDelta{TeamID: "c", Points: 5}, "q2")
	l.Apply(types.ScoreDelta{TeamID: "d", Points: 2}, "q3")

	ranking := l.Ranking()
	require.Len(t, ranking, 4)
	assert.Equal(t, Standing{Rank: 1, Team: "b", Total: 5}, ranking[0])
	assert.Equal(t, Standing{Rank: 1, Team: "c", Total: 5}, ranking[1])
	assert.Equal(t, Standing{Rank: 3, Team: "d", Total: 2}, ranking[2])
	assert.Equal(t, Standing{Rank: 4, Team: "a", Total: 0}, ranking[3])
}

func TestLedger_TotalsCopy(t *testing.T) {
	l := NewLedger([]types.TeamID{"red", "blue"})
	l.Apply(types.ScoreDelta{TeamID: "red", Points: 7}, "q1")

	totals := l.Totals()
	if diff := cmp.Diff(map[types.TeamID]types.Score{"red": 7, "blue": 0}, totals); diff != "" {
		t.Errorf("totals mismatch (-want +got):\n%s", diff)
	}

	// Mutating the returned map must not touch the ledger.
	totals["red"] = 99
	assert.Equal(t, types.Score(7), l.Total("red"))
}
