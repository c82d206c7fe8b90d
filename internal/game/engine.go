package game

// Engine is the game-rules collaborator. Implementations own all card rules
// and state transitions; the rest of the system only consumes this decision
// surface and never inspects engine internals.
type Engine interface {
	// CurrentPlayer returns the id of the player whose turn it is
	CurrentPlayer() string

	// CurrentPhase returns the phase the game is currently in
	CurrentPhase() Phase

	// DisplayText renders the current state and the available actions as
	// human-readable text
	DisplayText() (stateText, actionsText string)

	// LegalActions enumerates the action ids legal in the current phase
	LegalActions() []string

	// ActionText renders a single action as human-readable text
	ActionText(actionID string) string

	// Apply attempts to execute the action. When the action is rejected,
	// accepted is false and reason explains why; the game state is unchanged.
	Apply(actionID string) (accepted bool, reason string)

	// IsLegalSequence reports whether the ordered action ids could be
	// executed from the current state
	IsLegalSequence(actionIDs []string) bool

	// TerminalOutcome returns the per-player reward map once the game has
	// ended, or nil while it is still running
	TerminalOutcome() map[string]float64
}
