package policies

import (
	"strings"

	"github.com/Quiz-Night-Club/quiz-engine/app/events"
	rounddomain "github.com/Quiz-Night-Club/quiz-engine/app/modules/round/domain"
	"github.com/Quiz-Night-Club/quiz-engine/app/shared/gameerr"
	"github.com/Quiz-Night-Club/quiz-engine/app/shared/types"
)

// EnumerationPolicy is the turn-based listing type: the chooser team names as
// many items as it can before the clock runs out. Each validated citation
// pays per element; hitting the authored target adds the bonus when the
// timer closes the question.
type EnumerationPolicy struct{}

func (*EnumerationPolicy) RoundType() types.RoundType { return types.RoundTypeEnumeration }

func (*EnumerationPolicy) CalculateMaxPoints(round *rounddomain.Round, questions []*rounddomain.Question) types.Score {
	if round.ScoringMode == types.ScoringModeRanking {
		return 0
	}
	var max types.Score
	for _, q := range questions {
		max += types.Score(q.EnumTarget)*round.RewardsPerElement + round.EnumBonus
	}
	return max
}

func (*EnumerationPolicy) PrepareQuestionStart(pctx *PrepareContext) error {
	team, err := pctx.Chooser.Switch(nil)
	if err != nil {
		return err
	}
	pctx.State.ChooserTeam = team
	return nil
}

func normalizeCitation(c string) string {
	return strings.ToLower(strings.TrimSpace(c))
}

func (p *EnumerationPolicy) ResolveAnswer(rctx *ResolveContext, answer events.AnswerEventV1) (Resolution, error) {
	if answer.TeamID != rctx.State.ChooserTeam {
		return Resolution{}, gameerr.NewInvalidCommand("team %s is not the chooser", answer.TeamID)
	}
	citation := normalizeCitation(answer.Citation)
	if citation == "" {
		return Resolution{}, gameerr.NewInvalidCommand("enumeration requires a citation")
	}

	// Duplicates commit as no-ops.
	if rctx.State.HasCitation(citation) {
		return Resolution{}, nil
	}

	accepted := false
	if answer.Correct != nil {
		// Organizer override wins when present.
		accepted = *answer.Correct
	} else {
		for _, known := range rctx.Question.EnumAnswers {
			if normalizeCitation(known) == citation {
				accepted = true
				break
			}
		}
	}
	if !accepted {
		return Resolution{}, nil
	}

	rctx.State.Citations = append(rctx.State.Citations, citation)
	return Resolution{
		Deltas: Award(answer.TeamID, rctx.Round.RewardsPerElement),
	}, nil
}

// OnTimerEnd closes the question and pays the target bonus if the chooser
// reached it.
func (p *EnumerationPolicy) OnTimerEnd(rctx *ResolveContext) (Resolution, error) {
	res := Resolution{QuestionDone: true}
	if rctx.Question.EnumTarget > 0 && len(rctx.State.Citations) >= rctx.Question.EnumTarget {
		res.Deltas = Award(rctx.State.ChooserTeam, rctx.Round.EnumBonus)
		res.WinnerTeam = rctx.State.ChooserTeam
	}
	return res, nil
}
