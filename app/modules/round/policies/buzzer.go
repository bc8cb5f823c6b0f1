package policies

import (
	"github.com/Quiz-Night-Club/quiz-engine/app/events"
	rounddomain "github.com/Quiz-Night-Club/quiz-engine/app/modules/round/domain"
	"github.com/Quiz-Night-Club/quiz-engine/app/shared/gameerr"
	"github.com/Quiz-Night-Club/quiz-engine/app/shared/types"
)

// BuzzerPolicy covers the race family: plain buzzer plus the image and quote
// riddles. Only the head of the race queue may answer; the organizer judges.
// A wrong answer cancels the head out of the race with no point penalty and
// resumes the clock for the challengers. Riddle types record which clue was
// visible when each player dropped out.
type BuzzerPolicy struct {
	roundType types.RoundType
}

// NewBuzzerPolicy builds the policy for one member of the race family.
func NewBuzzerPolicy(t types.RoundType) *BuzzerPolicy {
	return &BuzzerPolicy{roundType: t}
}

func (p *BuzzerPolicy) RoundType() types.RoundType { return p.roundType }

func (p *BuzzerPolicy) CalculateMaxPoints(round *rounddomain.Round, questions []*rounddomain.Question) types.Score {
	if round.ScoringMode == types.ScoringModeRanking {
		return 0
	}
	return types.Score(len(questions)) * round.RewardsPerQuestion
}

func (p *BuzzerPolicy) PrepareQuestionStart(pctx *PrepareContext) error {
	pctx.State.Clear(false)
	pctx.State.ClueIdx = 0
	return nil
}

func (p *BuzzerPolicy) hasClues() bool {
	return p.roundType == types.RoundTypeImageRiddle || p.roundType == types.RoundTypeQuoteRiddle
}

func (p *BuzzerPolicy) ResolveAnswer(rctx *ResolveContext, answer events.AnswerEventV1) (Resolution, error) {
	if answer.Correct == nil {
		return Resolution{}, gameerr.NewInvalidCommand("buzzer answer requires an organizer verdict")
	}
	head := rctx.State.Head()
	if head == "" {
		return Resolution{}, gameerr.NewInvalidCommand("no player holds the buzzer")
	}
	if answer.PlayerID != "" && answer.PlayerID != head {
		return Resolution{}, gameerr.NewInvalidCommand("player %s is not at the head of the race", answer.PlayerID)
	}

	if *answer.Correct {
		// The head's own team scores; a caller-supplied team is only
		// accepted when it matches.
		team := rctx.Players[head]
		if team == "" {
			return Resolution{}, gameerr.NewInvalidCommand("player %s has no team", head)
		}
		if answer.TeamID != "" && answer.TeamID != team {
			return Resolution{}, gameerr.NewInvalidCommand("team %s does not hold the buzzer", answer.TeamID)
		}
		return Resolution{
			Deltas:       Award(team, rctx.Round.RewardsPerQuestion),
			QuestionDone: true,
			WinnerTeam:   team,
			StopTimer:    true,
		}, nil
	}

	// Wrong: the head drops out for the rest of the question, the clock
	// resumes for the challengers. No point penalty.
	return Resolution{
		CancelPlayer: head,
		ResumeTimer:  true,
	}, nil
}

// OnTimerEnd advances the next clue for the riddle types, giving everyone
// still in the race a fresh press. The plain buzzer just closes unanswered.
func (p *BuzzerPolicy) OnTimerEnd(rctx *ResolveContext) (Resolution, error) {
	if p.hasClues() && rctx.State.ClueIdx < len(rctx.Question.Clues)-1 {
		rctx.State.ClueIdx++
		rctx.State.Clear(true)
		return Resolution{ResumeTimer: true}, nil
	}
	return Resolution{QuestionDone: true}, nil
}
