// Package chooser implements the turn rotation that decides which team acts
// next in turn-based round types.
package chooser

import (
	"errors"
	"slices"

	"github.com/Quiz-Night-Club/quiz-engine/app/shared/randutil"
	"github.com/Quiz-Night-Club/quiz-engine/app/shared/types"
)

// ErrNoEligibleChooser is returned when every team in the rotation is excluded.
var ErrNoEligibleChooser = errors.New("no eligible chooser team")

// Rotation is a game's chooser order. Order is fixed once seeded; Idx points
// at the current chooser, or -1 before the first switch.
type Rotation struct {
	Order []types.TeamID `json:"order"`
	Idx   int            `json:"idx"`
}

// NewRotation seeds a rotation by shuffling the team list with src. The
// shuffle is the only nondeterministic step in a game; with a fixed seed the
// whole session replays identically.
func NewRotation(teams []types.TeamID, src randutil.Source) *Rotation {
	order := slices.Clone(teams)
	src.Shuffle(len(order), func(i, j int) {
		order[i], order[j] = order[j], order[i]
	})
	return &Rotation{Order: order, Idx: -1}
}

// Current returns the acting chooser team, or "" before the first switch.
func (r *Rotation) Current() types.TeamID {
	if r.Idx < 0 || r.Idx >= len(r.Order) {
		return ""
	}
	return r.Order[r.Idx]
}

// Next returns the team that would act after the current one, skipping
// excluded teams, without mutating the rotation.
func (r *Rotation) Next(excluded []types.TeamID) (types.TeamID, error) {
	_, team, err := r.next(excluded)
	return team, err
}

// Switch advances the rotation to the next eligible team and returns it.
// The scan wraps around the order; if every team is excluded the rotation is
// left untouched and ErrNoEligibleChooser is returned.
func (r *Rotation) Switch(excluded []types.TeamID) (types.TeamID, error) {
	idx, team, err := r.next(excluded)
	if err != nil {
		return "", err
	}
	r.Idx = idx
	return team, nil
}

func (r *Rotation) next(excluded []types.TeamID) (int, types.TeamID, error) {
	if len(r.Order) == 0 {
		return 0, "", ErrNoEligibleChooser
	}
	start := r.Idx
	if start < 0 {
		start = len(r.Order) - 1
	}
	for step := 1; step <= len(r.Order); step++ {
		idx := (start + step) % len(r.Order)
		team := r.Order[idx]
		if !slices.Contains(excluded, team) {
			return idx, team, nil
		}
	}
	return 0, "", ErrNoEligibleChooser
}
