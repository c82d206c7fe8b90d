package game

import (
	"fmt"
	"math/rand"
)

// demoActions is the synthetic action space of the demo engine. Action 4 is
// the end-of-turn action.
var demoActions = []string{"0", "1", "2", "3", "4"}

// endTurnAction hands the turn to the other player.
const endTurnAction = "4"

// DemoEngine is a card-less stand-in for the rules engine. It walks the phase
// graph at random so the recording and selection pipeline can be exercised
// end to end without card rules. It is not a game anyone would want to play.
type DemoEngine struct {
	rng      *rand.Rand
	players  []string
	current  int
	phase    Phase
	turn     int
	maxTurns int
	outcome  map[string]float64
}

// NewDemoEngine creates a demo engine for the given players. The game ends
// after maxTurns full turns with a random zero-sum outcome.
func NewDemoEngine(players []string, maxTurns int, rng *rand.Rand) *DemoEngine {
	return &DemoEngine{
		rng:      rng,
		players:  players,
		phase:    PhaseAwaitingInput,
		maxTurns: maxTurns,
	}
}

func (e *DemoEngine) CurrentPlayer() string {
	return e.players[e.current]
}

func (e *DemoEngine) CurrentPhase() Phase {
	return e.phase
}

func (e *DemoEngine) DisplayText() (string, string) {
	state := fmt.Sprintf("turn %d, %s to act, phase %s", e.turn+1, e.CurrentPlayer(), e.phase)
	actions := "actions:"
	for _, id := range e.LegalActions() {
		actions += " " + e.ActionText(id)
	}
	return state, actions
}

func (e *DemoEngine) LegalActions() []string {
	if e.outcome != nil {
		return nil
	}
	// Sub-phases force a choice; only awaiting_input offers end of turn.
	if e.phase != PhaseAwaitingInput {
		return demoActions[:2]
	}
	return demoActions
}

func (e *DemoEngine) ActionText(actionID string) string {
	if actionID == endTurnAction {
		return fmt.Sprintf("[%s] end turn", actionID)
	}
	return fmt.Sprintf("[%s] play card %s", actionID, actionID)
}

func (e *DemoEngine) Apply(actionID string) (bool, string) {
	if e.outcome != nil {
		return false, "game is over"
	}
	legal := false
	for _, id := range e.LegalActions() {
		if id == actionID {
			legal = true
			break
		}
	}
	if !legal {
		return false, fmt.Sprintf("action %s is not legal in phase %s", actionID, e.phase)
	}

	if actionID == endTurnAction {
		e.current = (e.current + 1) % len(e.players)
		e.turn++
		e.phase = PhaseAwaitingInput
		if e.turn >= e.maxTurns {
			e.finish()
		}
		return true, ""
	}

	// A play sometimes opens a sub-phase, otherwise control returns to the
	// default phase.
	if e.phase == PhaseAwaitingInput && e.rng.Intn(4) == 0 {
		subPhases := []Phase{
			PhaseChoosingFromDeckTop2,
			PhaseChoosingUltimatumCard,
			PhaseReorderingDeckTop3,
			PhaseDiscardingFromOppHand,
		}
		e.phase = subPhases[e.rng.Intn(len(subPhases))]
	} else {
		e.phase = PhaseAwaitingInput
	}
	return true, ""
}

func (e *DemoEngine) IsLegalSequence(actionIDs []string) bool {
	if len(actionIDs) == 0 || e.outcome != nil {
		return false
	}
	// First action must be legal right now; the rest just need to exist in
	// the action space.
	first := false
	for _, id := range e.LegalActions() {
		if id == actionIDs[0] {
			first = true
			break
		}
	}
	if !first {
		return false
	}
	for _, id := range actionIDs {
		known := false
		for _, a := range demoActions {
			if a == id {
				known = true
				break
			}
		}
		if !known {
			return false
		}
	}
	return true
}

func (e *DemoEngine) TerminalOutcome() map[string]float64 {
	return e.outcome
}

func (e *DemoEngine) finish() {
	winner := e.rng.Intn(len(e.players))
	e.outcome = make(map[string]float64, len(e.players))
	for i, p := range e.players {
		if i == winner {
			e.outcome[p] = 1.0
		} else {
			e.outcome[p] = -1.0
		}
	}
}
