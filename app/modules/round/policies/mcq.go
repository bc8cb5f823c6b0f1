package policies

import (
	"github.com/Quiz-Night-Club/quiz-engine/app/events"
	rounddomain "github.com/Quiz-Night-Club/quiz-engine/app/modules/round/domain"
	"github.com/Quiz-Night-Club/quiz-engine/app/shared/gameerr"
	"github.com/Quiz-Night-Club/quiz-engine/app/shared/types"
)

// MCQPolicy is the turn-based multiple-choice type. The chooser rotation
// picks the acting team at question start; the system checks the selected
// option. The turn is over after one submission either way.
type MCQPolicy struct{}

func (*MCQPolicy) RoundType() types.RoundType { return types.RoundTypeMCQ }

func (*MCQPolicy) CalculateMaxPoints(round *rounddomain.Round, questions []*rounddomain.Question) types.Score {
	if round.ScoringMode == types.ScoringModeRanking {
		return 0
	}
	return types.Score(len(questions)) * round.RewardsPerQuestion
}

func (*MCQPolicy) PrepareQuestionStart(pctx *PrepareContext) error {
	team, err := pctx.Chooser.Switch(nil)
	if err != nil {
		return err
	}
	pctx.State.ChooserTeam = team
	return nil
}

func (p *MCQPolicy) ResolveAnswer(rctx *ResolveContext, answer events.AnswerEventV1) (Resolution, error) {
	if answer.OptionIdx == nil {
		return Resolution{}, gameerr.NewInvalidCommand("mcq answer requires an option index")
	}
	if answer.TeamID != rctx.State.ChooserTeam {
		return Resolution{}, gameerr.NewInvalidCommand("team %s is not the chooser", answer.TeamID)
	}
	if *answer.OptionIdx < 0 || *answer.OptionIdx >= len(rctx.Question.Choices) {
		return Resolution{}, gameerr.NewInvalidCommand("option index %d out of range", *answer.OptionIdx)
	}

	if *answer.OptionIdx == rctx.Question.AnswerIdx {
		return Resolution{
			Deltas:       Award(answer.TeamID, rctx.Round.RewardsPerQuestion),
			QuestionDone: true,
			WinnerTeam:   answer.TeamID,
		}, nil
	}

	return Resolution{QuestionDone: true}, nil
}
