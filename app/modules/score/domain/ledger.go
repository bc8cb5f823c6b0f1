// Package scoredomain models the per-scope score ledger: running totals plus
// a progress history snapshotting every team on every scoring event.
package scoredomain

import (
	"sort"

	"github.com/Quiz-Night-Club/quiz-engine/app/shared/types"
)

// Ledger is one scope's accounting. Two exist per game: a round-scoped ledger
// keyed by question id and a game-scoped ledger keyed by round id.
type Ledger struct {
	Scores map[types.TeamID]types.Score `json:"scores"`
	// Progress holds one snapshot per scoring event per team, so every
	// history has the same length and charts align across teams.
	Progress map[types.TeamID][]types.ProgressPoint `json:"progress"`
}

// NewLedger seeds a ledger with every team at zero and empty histories.
func NewLedger(teams []types.TeamID) *Ledger {
	l := &Ledger{
		Scores:   make(map[types.TeamID]types.Score, len(teams)),
		Progress: make(map[types.TeamID][]types.ProgressPoint, len(teams)),
	}
	for _, team := range teams {
		l.Scores[team] = 0
		l.Progress[team] = []types.ProgressPoint{}
	}
	return l
}

// Apply adds one delta and snapshots every team under key. A zero delta is a
// legal checkpoint: totals stay put, histories still grow by one point.
func (l *Ledger) Apply(delta types.ScoreDelta, key string) {
	if !delta.IsZero() {
		l.Scores[delta.TeamID] += delta.Points
	}
	l.Checkpoint(key)
}

// Checkpoint records the current total of every team under key.
func (l *Ledger) Checkpoint(key string) {
	for team := range l.Scores {
		l.Progress[team] = append(l.Progress[team], types.ProgressPoint{
			Key:   key,
			Value: l.Scores[team],
		})
	}
}

// Total returns one team's running total.
func (l *Ledger) Total(team types.TeamID) types.Score {
	return l.Scores[team]
}

// Totals returns a copy of every team's running total.
func (l *Ledger) Totals() map[types.TeamID]types.Score {
	out := make(map[types.TeamID]types.Score, len(l.Scores))
	for team, score := range l.Scores {
		out[team] = score
	}
	return out
}

// Standing is one row of a ranking: rank, team and total. Tied teams share
// the better rank.
type Standing struct {
	Rank  int          `json:"rank"`
	Team  types.TeamID `json:"team_id"`
	Total types.Score  `json:"total"`
}

// Ranking orders teams best total first. Ties share a rank and the following
// team takes the positional rank, so totals 5,5,2 rank 1,1,3. Equal totals
// order by team id to keep the output stable.
func (l *Ledger) Ranking() []Standing {
	standings := make([]Standing, 0, len(l.Scores))
	for team, total := range l.Scores {
		standings = append(standings, Standing{Team: team, Total: total})
	}
	sort.Slice(standings, func(i, j int) bool {
		if standings[i].Total != standings[j].Total {
			return standings[i].Total > standings[j].Total
		}
		return standings[i].Team < standings[j].Team
	})
	for i := range standings {
		if i > 0 && standings[i].Total == standings[i-1].Total {
			standings[i].Rank = standings[i-1].Rank
			continue
		}
		standings[i].Rank = i + 1
	}
	return standings
}
