package policies

import (
	"github.com/Quiz-Night-Club/quiz-engine/app/events"
	rounddomain "github.com/Quiz-Night-Club/quiz-engine/app/modules/round/domain"
	"github.com/Quiz-Night-Club/quiz-engine/app/shared/gameerr"
	"github.com/Quiz-Night-Club/quiz-engine/app/shared/types"
)

// Nagui answer modes and their multipliers. Duo halves the choices for a
// safe single reward, square keeps all four, cash is a free answer judged by
// the organizer for triple.
const (
	NaguiModeDuo    = "duo"
	NaguiModeSquare = "square"
	NaguiModeCash   = "cash"
)

func naguiMultiplier(mode string) (types.Score, bool) {
	switch mode {
	case NaguiModeDuo:
		return 1, true
	case NaguiModeSquare:
		return 2, true
	case NaguiModeCash:
		return 3, true
	}
	return 0, false
}

// NaguiPolicy is the turn-based risk-pick type: the chooser team picks a
// mode, then answers under it.
type NaguiPolicy struct{}

func (*NaguiPolicy) RoundType() types.RoundType { return types.RoundTypeNagui }

func (*NaguiPolicy) CalculateMaxPoints(round *rounddomain.Round, questions []*rounddomain.Question) types.Score {
	if round.ScoringMode == types.ScoringModeRanking {
		return 0
	}
	return types.Score(len(questions)) * 3 * round.RewardsPerQuestion
}

func (*NaguiPolicy) PrepareQuestionStart(pctx *PrepareContext) error {
	team, err := pctx.Chooser.Switch(nil)
	if err != nil {
		return err
	}
	pctx.State.ChooserTeam = team
	return nil
}

func (p *NaguiPolicy) ResolveAnswer(rctx *ResolveContext, answer events.AnswerEventV1) (Resolution, error) {
	if answer.TeamID != rctx.State.ChooserTeam {
		return Resolution{}, gameerr.NewInvalidCommand("team %s is not the chooser", answer.TeamID)
	}
	multiplier, ok := naguiMultiplier(answer.NaguiMode)
	if !ok {
		return Resolution{}, gameerr.NewInvalidCommand("unknown nagui mode %q", answer.NaguiMode)
	}

	var correct bool
	switch answer.NaguiMode {
	case NaguiModeCash:
		// Cash is a free answer; the organizer judges it.
		if answer.Correct == nil {
			return Resolution{}, gameerr.NewInvalidCommand("cash answer requires an organizer verdict")
		}
		correct = *answer.Correct
	default:
		if answer.OptionIdx == nil {
			return Resolution{}, gameerr.NewInvalidCommand("%s answer requires an option index", answer.NaguiMode)
		}
		if *answer.OptionIdx < 0 || *answer.OptionIdx >= len(rctx.Question.Choices) {
			return Resolution{}, gameerr.NewInvalidCommand("option index %d out of range", *answer.OptionIdx)
		}
		correct = *answer.OptionIdx == rctx.Question.AnswerIdx
	}

	if correct {
		return Resolution{
			Deltas:       Award(answer.TeamID, rctx.Round.RewardsPerQuestion*multiplier),
			QuestionDone: true,
			WinnerTeam:   answer.TeamID,
		}, nil
	}

	return Resolution{QuestionDone: true}, nil
}
