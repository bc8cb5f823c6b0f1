package policies

import (
	"github.com/Quiz-Night-Club/quiz-engine/app/shared/gameerr"
	"github.com/Quiz-Night-Club/quiz-engine/app/shared/types"
)

// Registry holds one policy per round type.
type Registry struct {
	policies map[types.RoundType]Policy
}

// NewRegistry builds the full policy set.
func NewRegistry() *Registry {
	r := &Registry{policies: map[types.RoundType]Policy{}}
	for _, p := range []Policy{
		&BasicPolicy{},
		&MCQPolicy{},
		&NaguiPolicy{},
		NewBuzzerPolicy(types.RoundTypeBuzzer),
		NewBuzzerPolicy(types.RoundTypeImageRiddle),
		NewBuzzerPolicy(types.RoundTypeQuoteRiddle),
		NewRevealPolicy(types.RoundTypeLabelling),
		NewRevealPolicy(types.RoundTypeQuote),
		&EnumerationPolicy{},
		&ReorderingPolicy{},
		&MatchingPolicy{},
		&OddOneOutPolicy{},
	} {
		r.policies[p.RoundType()] = p
	}
	return r
}

// ForType returns the policy for one round type.
func (r *Registry) ForType(t types.RoundType) (Policy, error) {
	p, ok := r.policies[t]
	if !ok {
		return nil, gameerr.NewInvalidCommand("no policy for round type %q", t)
	}
	return p, nil
}
