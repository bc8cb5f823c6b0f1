package policies

import (
	"github.com/Quiz-Night-Club/quiz-engine/app/events"
	rounddomain "github.com/Quiz-Night-Club/quiz-engine/app/modules/round/domain"
	"github.com/Quiz-Night-Club/quiz-engine/app/shared/gameerr"
	"github.com/Quiz-Night-Club/quiz-engine/app/shared/types"
)

// OddOneOutPolicy is the ranking-scored survival type: teams take turns
// picking items that belong; picking the odd item knocks the team out of the
// draw. Safe picks tally; payout is by tally rank when the question ends.
type OddOneOutPolicy struct{}

func (*OddOneOutPolicy) RoundType() types.RoundType { return types.RoundTypeOddOneOut }

// CalculateMaxPoints is undefined for ranking-scored types.
func (*OddOneOutPolicy) CalculateMaxPoints(round *rounddomain.Round, questions []*rounddomain.Question) types.Score {
	return 0
}

func (*OddOneOutPolicy) PrepareQuestionStart(pctx *PrepareContext) error {
	team, err := pctx.Chooser.Switch(nil)
	if err != nil {
		return err
	}
	pctx.State.ChooserTeam = team
	return nil
}

func (p *OddOneOutPolicy) ResolveAnswer(rctx *ResolveContext, answer events.AnswerEventV1) (Resolution, error) {
	if answer.TeamID == "" {
		return Resolution{}, gameerr.NewInvalidCommand("odd-one-out requires a team id")
	}
	if answer.ItemIdx == nil {
		return Resolution{}, gameerr.NewInvalidCommand("odd-one-out requires an item index")
	}
	if rctx.State.IsEliminated(answer.TeamID) {
		return Resolution{}, gameerr.NewInvalidCommand("team %s is out of the draw", answer.TeamID)
	}
	idx := *answer.ItemIdx
	if idx < 0 || idx >= len(rctx.Question.Items) {
		return Resolution{}, gameerr.NewInvalidCommand("item index %d out of range", idx)
	}

	if idx == rctx.Question.OddIdx {
		rctx.State.Eliminate(answer.TeamID)
	} else {
		rctx.State.Tallies[answer.TeamID]++
	}

	// The draw collapses when at most one team is still in.
	if len(rctx.State.Eliminated) >= len(rctx.Teams)-1 {
		return p.FinalizeQuestion(rctx)
	}
	return Resolution{}, nil
}

// FinalizeQuestion pays the ranking table by safe-pick tally.
func (p *OddOneOutPolicy) FinalizeQuestion(rctx *ResolveContext) (Resolution, error) {
	return Resolution{
		Deltas:       rankByTally(rctx.State.Tallies, rctx.Teams, rctx.Round.RankingRewards),
		QuestionDone: true,
	}, nil
}
