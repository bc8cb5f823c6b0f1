package policies

import (
	"github.com/Quiz-Night-Club/quiz-engine/app/events"
	rounddomain "github.com/Quiz-Night-Club/quiz-engine/app/modules/round/domain"
	scoredomain "github.com/Quiz-Night-Club/quiz-engine/app/modules/score/domain"
	"github.com/Quiz-Night-Club/quiz-engine/app/shared/gameerr"
	"github.com/Quiz-Night-Club/quiz-engine/app/shared/types"
)

// MatchingPolicy is the ranking-scored grid type: teams propose edges
// between the two columns; correct edges tally. Payout happens when the
// question ends, from the round's ranking reward table by tally rank.
type MatchingPolicy struct{}

func (*MatchingPolicy) RoundType() types.RoundType { return types.RoundTypeMatching }

// CalculateMaxPoints is undefined for ranking-scored types.
func (*MatchingPolicy) CalculateMaxPoints(round *rounddomain.Round, questions []*rounddomain.Question) types.Score {
	return 0
}

func (*MatchingPolicy) PrepareQuestionStart(pctx *PrepareContext) error { return nil }

func (p *MatchingPolicy) ResolveAnswer(rctx *ResolveContext, answer events.AnswerEventV1) (Resolution, error) {
	if answer.TeamID == "" {
		return Resolution{}, gameerr.NewInvalidCommand("matching requires a team id")
	}
	if answer.EdgeFrom == nil || answer.EdgeTo == nil {
		return Resolution{}, gameerr.NewInvalidCommand("matching requires an edge")
	}
	from, to := *answer.EdgeFrom, *answer.EdgeTo
	if from < 0 || from >= len(rctx.Question.Pairs) {
		return Resolution{}, gameerr.NewInvalidCommand("edge origin %d out of range", from)
	}
	if to < 0 || to >= len(rctx.Question.Pairs) {
		return Resolution{}, gameerr.NewInvalidCommand("edge target %d out of range", to)
	}

	// An authored pair's left and right share an index; a correct edge is a
	// self-loop in index space.
	if from == to {
		rctx.State.Tallies[answer.TeamID]++
	}
	return Resolution{}, nil
}

// FinalizeQuestion pays the ranking table by tally.
func (p *MatchingPolicy) FinalizeQuestion(rctx *ResolveContext) (Resolution, error) {
	return Resolution{
		Deltas:       rankByTally(rctx.State.Tallies, rctx.Teams, rctx.Round.RankingRewards),
		QuestionDone: true,
	}, nil
}

// rankByTally converts per-team tallies into ranking-table payouts. Tied
// teams share the better reward.
func rankByTally(tallies map[types.TeamID]int, teams []types.TeamID, rewards []types.Score) []types.ScoreDelta {
	ledger := scoredomain.NewLedger(teams)
	for team, tally := range tallies {
		ledger.Scores[team] = types.Score(tally)
	}

	var deltas []types.ScoreDelta
	for _, standing := range ledger.Ranking() {
		idx := standing.Rank - 1
		if idx < 0 || idx >= len(rewards) || rewards[idx] == 0 {
			continue
		}
		deltas = append(deltas, types.ScoreDelta{TeamID: standing.Team, Points: rewards[idx]})
	}
	return deltas
}
