package policies

import (
	"github.com/Quiz-Night-Club/quiz-engine/app/events"
	rounddomain "github.com/Quiz-Night-Club/quiz-engine/app/modules/round/domain"
	"github.com/Quiz-Night-Club/quiz-engine/app/shared/gameerr"
	"github.com/Quiz-Night-Club/quiz-engine/app/shared/types"
)

// RevealPolicy covers labelling and quote: a question is a set of elements
// (labels, quote fragments) revealed one by one as teams name them. Each
// revealed element pays out once; the question resolves when everything is
// on the board.
type RevealPolicy struct {
	roundType types.RoundType
}

// NewRevealPolicy builds the policy for labelling or quote.
func NewRevealPolicy(t types.RoundType) *RevealPolicy {
	return &RevealPolicy{roundType: t}
}

func (p *RevealPolicy) RoundType() types.RoundType { return p.roundType }

func (p *RevealPolicy) elementCount(q *rounddomain.Question) int {
	if p.roundType == types.RoundTypeLabelling {
		return len(q.Labels)
	}
	return len(q.QuoteFragments)
}

func (p *RevealPolicy) CalculateMaxPoints(round *rounddomain.Round, questions []*rounddomain.Question) types.Score {
	if round.ScoringMode == types.ScoringModeRanking {
		return 0
	}
	var units types.Score
	for _, q := range questions {
		units += types.Score(p.elementCount(q))
	}
	return units * round.RewardsPerElement
}

func (p *RevealPolicy) PrepareQuestionStart(pctx *PrepareContext) error { return nil }

func (p *RevealPolicy) ResolveAnswer(rctx *ResolveContext, answer events.AnswerEventV1) (Resolution, error) {
	if answer.TeamID == "" {
		return Resolution{}, gameerr.NewInvalidCommand("reveal requires a team id")
	}
	if answer.ElementIdx == nil {
		return Resolution{}, gameerr.NewInvalidCommand("reveal requires an element index")
	}
	count := p.elementCount(rctx.Question)
	idx := *answer.ElementIdx
	if idx < 0 || idx >= count {
		return Resolution{}, gameerr.NewInvalidCommand("element index %d out of range", idx)
	}

	// Re-revealing a known element commits as a no-op.
	if !rctx.State.Reveal(idx) {
		return Resolution{}, nil
	}

	done := len(rctx.State.Revealed) == count
	return Resolution{
		Deltas:       Award(answer.TeamID, rctx.Round.RewardsPerElement),
		QuestionDone: done,
	}, nil
}
