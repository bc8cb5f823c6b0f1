package policies

import (
	"github.com/Quiz-Night-Club/quiz-engine/app/events"
	rounddomain "github.com/Quiz-Night-Club/quiz-engine/app/modules/round/domain"
	"github.com/Quiz-Night-Club/quiz-engine/app/shared/gameerr"
	"github.com/Quiz-Night-Club/quiz-engine/app/shared/types"
)

// BasicPolicy is the organizer-validated free-answer type. Any team may
// answer; the organizer's verdict settles it. A correct answer resolves the
// question; a wrong one consumes a try and may cost the mistake penalty.
type BasicPolicy struct{}

func (*BasicPolicy) RoundType() types.RoundType { return types.RoundTypeBasic }

func (*BasicPolicy) CalculateMaxPoints(round *rounddomain.Round, questions []*rounddomain.Question) types.Score {
	if round.ScoringMode == types.ScoringModeRanking {
		return 0
	}
	return types.Score(len(questions)) * round.RewardsPerQuestion
}

func (*BasicPolicy) PrepareQuestionStart(pctx *PrepareContext) error { return nil }

func (p *BasicPolicy) ResolveAnswer(rctx *ResolveContext, answer events.AnswerEventV1) (Resolution, error) {
	if answer.TeamID == "" {
		return Resolution{}, gameerr.NewInvalidCommand("basic answer requires a team id")
	}
	if answer.Correct == nil {
		return Resolution{}, gameerr.NewInvalidCommand("basic answer requires an organizer verdict")
	}
	if rctx.Round.MaxTries > 0 && rctx.State.Tries[answer.TeamID] >= rctx.Round.MaxTries {
		return Resolution{}, gameerr.NewInvalidCommand("team %s has no tries left", answer.TeamID)
	}
	rctx.State.Tries[answer.TeamID]++

	if *answer.Correct {
		return Resolution{
			Deltas:       Award(answer.TeamID, rctx.Round.RewardsPerQuestion),
			QuestionDone: true,
			WinnerTeam:   answer.TeamID,
		}, nil
	}

	return Resolution{
		Deltas: Award(answer.TeamID, -rctx.Round.MistakePenalty),
	}, nil
}
