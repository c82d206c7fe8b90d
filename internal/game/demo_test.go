package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mitchelldurbincs/PokerMonsterAgent/internal/testutil"
)

func newDemo(t *testing.T, maxTurns int) *DemoEngine {
	t.Helper()
	return NewDemoEngine([]string{"hero", "monster"}, maxTurns, testutil.NewTestRNG(11))
}

func TestDemoEngine_EndTurnAlternatesPlayers(t *testing.T) {
	e := newDemo(t, 10)

	require.Equal(t, "hero", e.CurrentPlayer())
	accepted, _ := e.Apply("4")
	require.True(t, accepted)
	assert.Equal(t, "monster", e.CurrentPlayer())
	assert.Equal(t, PhaseAwaitingInput, e.CurrentPhase())
}

func TestDemoEngine_RejectsIllegalAction(t *testing.T) {
	e := newDemo(t, 10)

	accepted, reason := e.Apply("99")
	assert.False(t, accepted)
	assert.NotEmpty(t, reason)
}

func TestDemoEngine_SubPhaseRestrictsActions(t *testing.T) {
	e := newDemo(t, 100)

	// Play until a sub-phase opens, then the end-turn action must be illegal
	for i := 0; i < 1000 && e.CurrentPhase() == PhaseAwaitingInput; i++ {
		accepted, _ := e.Apply("0")
		require.True(t, accepted)
	}
	require.NotEqual(t, PhaseAwaitingInput, e.CurrentPhase())

	assert.NotContains(t, e.LegalActions(), "4")
	accepted, _ := e.Apply("4")
	assert.False(t, accepted)
}

func TestDemoEngine_TerminatesWithZeroSumOutcome(t *testing.T) {
	e := newDemo(t, 3)

	for turns := 0; turns < 3; turns++ {
		require.Nil(t, e.TerminalOutcome())
		// Sub-phases may need resolving before end of turn is offered
		for e.CurrentPhase() != PhaseAwaitingInput {
			accepted, _ := e.Apply("0")
			require.True(t, accepted)
		}
		accepted, _ := e.Apply("4")
		require.True(t, accepted)
	}

	outcome := e.TerminalOutcome()
	require.NotNil(t, outcome)
	require.Len(t, outcome, 2)
	assert.InDelta(t, 0.0, outcome["hero"]+outcome["monster"], 1e-9)

	assert.Empty(t, e.LegalActions())
	accepted, _ := e.Apply("0")
	assert.False(t, accepted)
}

func TestDemoEngine_IsLegalSequence(t *testing.T) {
	e := newDemo(t, 10)

	assert.True(t, e.IsLegalSequence([]string{"0", "2", "4"}))
	assert.False(t, e.IsLegalSequence(nil))
	assert.False(t, e.IsLegalSequence([]string{"9"}))
}
