package policies

import (
	"github.com/Quiz-Night-Club/quiz-engine/app/events"
	rounddomain "github.com/Quiz-Night-Club/quiz-engine/app/modules/round/domain"
	"github.com/Quiz-Night-Club/quiz-engine/app/shared/gameerr"
	"github.com/Quiz-Night-Club/quiz-engine/app/shared/types"
)

// ReorderingPolicy scores one full-order submission per team: each element
// placed at its correct position pays per element. The question resolves
// once every team has submitted.
type ReorderingPolicy struct{}

func (*ReorderingPolicy) RoundType() types.RoundType { return types.RoundTypeReordering }

func (*ReorderingPolicy) CalculateMaxPoints(round *rounddomain.Round, questions []*rounddomain.Question) types.Score {
	if round.ScoringMode == types.ScoringModeRanking {
		return 0
	}
	var units types.Score
	for _, q := range questions {
		units += types.Score(len(q.Elements))
	}
	return units * round.RewardsPerElement
}

func (*ReorderingPolicy) PrepareQuestionStart(pctx *PrepareContext) error { return nil }

func (p *ReorderingPolicy) ResolveAnswer(rctx *ResolveContext, answer events.AnswerEventV1) (Resolution, error) {
	if answer.TeamID == "" {
		return Resolution{}, gameerr.NewInvalidCommand("reordering requires a team id")
	}
	if rctx.State.Tries[answer.TeamID] > 0 {
		return Resolution{}, gameerr.NewInvalidCommand("team %s already submitted an order", answer.TeamID)
	}
	if len(answer.Placement) != len(rctx.Question.CorrectOrder) {
		return Resolution{}, gameerr.NewInvalidCommand("placement must cover all %d elements", len(rctx.Question.CorrectOrder))
	}

	rctx.State.Tries[answer.TeamID] = 1

	correct := 0
	for i, elem := range answer.Placement {
		if elem == rctx.Question.CorrectOrder[i] {
			correct++
		}
	}

	done := len(rctx.State.Tries) >= len(rctx.Teams)
	return Resolution{
		Deltas:       Award(answer.TeamID, types.Score(correct)*rctx.Round.RewardsPerElement),
		QuestionDone: done,
	}, nil
}

// OnTimerEnd closes the question for teams that never submitted.
func (p *ReorderingPolicy) OnTimerEnd(rctx *ResolveContext) (Resolution, error) {
	return Resolution{QuestionDone: true}, nil
}
