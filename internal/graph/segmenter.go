package graph

import (
	"github.com/mitchelldurbincs/PokerMonsterAgent/internal/game"
)

// ClosePolicy decides whether the active sequence closes after a step landing
// on dst. start is the phase at which the sequence opened. The two shipped
// policies are mutually exclusive behaviors; a store uses exactly one.
type ClosePolicy func(start, dst game.Phase, boundaries game.BoundarySet) bool

// BoundaryClose closes whenever the destination is a boundary phase. This is
// the default policy.
func BoundaryClose(_, dst game.Phase, boundaries game.BoundarySet) bool {
	return boundaries.Contains(dst)
}

// DepartureClose matches BoundaryClose for sequences opened at the default
// phase; a sequence opened at any other phase instead closes as soon as the
// destination leaves that opening phase. The behaviors diverge when a
// sequence opens at a non-default boundary phase and later returns to it.
func DepartureClose(start, dst game.Phase, boundaries game.BoundarySet) bool {
	if start == game.PhaseAwaitingInput {
		return boundaries.Contains(dst)
	}
	return dst != start
}
