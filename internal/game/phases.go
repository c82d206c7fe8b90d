package game

// Phase identifies a decision point in the engine's turn loop. Phases double
// as node ids in the experience graph, so the values are stable strings.
type Phase string

const (
	// PhaseAwaitingInput - the default phase, the player picks their next play
	PhaseAwaitingInput Phase = "awaiting_input"

	// PhaseChoosingFromDeckTop2 - picking one of the top two deck cards
	PhaseChoosingFromDeckTop2 Phase = "choosing_from_deck_top2"

	// PhaseChoosingUltimatumCard - the opponent picks one of two revealed cards
	PhaseChoosingUltimatumCard Phase = "choosing_ultimatum_card"

	// PhaseReorderingDeckTop3 - reordering the top three deck cards
	PhaseReorderingDeckTop3 Phase = "reordering_deck_top3"

	// PhaseDiscardingFromOppHand - discarding a card from the opponent's hand
	PhaseDiscardingFromOppHand Phase = "discarding_card_from_opp_hand"
)

// String returns the string representation of a Phase
func (p Phase) String() string {
	return string(p)
}

// BoundarySet is the set of phases at which an in-progress sequence closes.
// It is caller-supplied configuration, not derived by the store.
type BoundarySet map[Phase]struct{}

// NewBoundarySet builds a BoundarySet from the given phases
func NewBoundarySet(phases ...Phase) BoundarySet {
	set := make(BoundarySet, len(phases))
	for _, p := range phases {
		set[p] = struct{}{}
	}
	return set
}

// Contains reports whether p is a boundary phase
func (b BoundarySet) Contains(p Phase) bool {
	_, ok := b[p]
	return ok
}

// DefaultBoundaries returns the standard sequence boundaries: every phase
// that represents a player decision point.
func DefaultBoundaries() BoundarySet {
	return NewBoundarySet(
		PhaseAwaitingInput,
		PhaseChoosingFromDeckTop2,
		PhaseChoosingUltimatumCard,
		PhaseReorderingDeckTop3,
		PhaseDiscardingFromOppHand,
	)
}
