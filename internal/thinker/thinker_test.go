package thinker

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mitchelldurbincs/PokerMonsterAgent/internal/graph"
	"github.com/mitchelldurbincs/PokerMonsterAgent/internal/testutil"
)

// fakeGenerator returns a canned response (or error) and records the last
// prompt it was asked to complete.
type fakeGenerator struct {
	response string
	err      error
	prompt   string
	calls    int
}

func (f *fakeGenerator) Generate(_ context.Context, prompt string, _ float64) (string, error) {
	f.calls++
	f.prompt = prompt
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

type fakeStats struct {
	stats map[string]*graph.SequenceStats
}

func (f *fakeStats) SequenceStats(signature string) (*graph.SequenceStats, error) {
	return f.stats[signature], nil
}

func seqRec(actionIDs ...string) graph.SequenceRecord {
	steps := make([]graph.StepRecord, len(actionIDs))
	for i, id := range actionIDs {
		steps[i] = graph.StepRecord{
			StepNum:    i,
			ActionID:   id,
			ActionText: "[" + id + "] play " + id,
		}
	}
	return graph.SequenceRecord{Signature: graph.Signature(actionIDs), Steps: steps}
}

func newTestThinker(gen TextGenerator, opts ...Option) *Thinker {
	return New(gen, testutil.NewTestRNG(42), testutil.NopLogger(), opts...)
}

func TestParseChoice(t *testing.T) {
	tests := []struct {
		name       string
		response   string
		numChoices int
		wantIndex  int
		wantOK     bool
	}{
		{"explicit choice", "Option 2 threatens lethal.\nCHOICE: 2", 5, 2, true},
		{"choice lowercase", "choice: 3", 5, 3, true},
		{"choice with spaces", "CHOICE:   1", 5, 1, true},
		{"choice out of range falls through", "CHOICE: 7", 5, 0, false},
		{"bare integer in range", "I would go with 3 here", 5, 3, true},
		{"last in-range integer wins", "Between 1 and 12, take 2", 5, 2, true},
		{"bare integer out of range", "I'd pick option 7", 5, 0, false},
		{"no numbers at all", "impossible to say", 5, 0, false},
		{"empty response", "", 5, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseChoice(tt.response, tt.numChoices)
			assert.Equal(t, tt.wantIndex, got.index)
			assert.Equal(t, tt.wantOK, got.ok)
		})
	}
}

func TestParseChoice_ReasoningPrecedesChoice(t *testing.T) {
	got := parseChoice("Strongest tempo line.\nCHOICE: 1", 3)
	require.True(t, got.ok)
	assert.Equal(t, 1, got.index)
	assert.Equal(t, "Strongest tempo line.", got.reasoning)
}

func TestChoose_PicksParsedIndex(t *testing.T) {
	gen := &fakeGenerator{response: "The second line is safer.\nCHOICE: 1"}
	th := newTestThinker(gen)

	candidates := []graph.SequenceRecord{seqRec("0"), seqRec("2", "4"), seqRec("3")}
	chosen := th.Choose(context.Background(), candidates, "state", nil)

	assert.Equal(t, candidates[1].Signature, chosen.Signature)
	assert.Equal(t, 1, gen.calls)
	assert.Contains(t, gen.prompt, "state")
	assert.Contains(t, gen.prompt, "[1] play 2 → play 4")
}

func TestChoose_FallbackOnGeneratorError(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("api unavailable")}
	th := newTestThinker(gen)

	candidates := []graph.SequenceRecord{seqRec("0"), seqRec("1"), seqRec("2")}
	sigs := map[string]bool{}
	for _, c := range candidates {
		sigs[c.Signature] = true
	}

	// The fallback is uniform random; every pick must still be a candidate
	for i := 0; i < 20; i++ {
		chosen := th.Choose(context.Background(), candidates, "state", nil)
		assert.True(t, sigs[chosen.Signature])
	}
}

func TestChoose_UnparseableDefaultsToFirst(t *testing.T) {
	gen := &fakeGenerator{response: "hmm, hard to say"}
	th := newTestThinker(gen)

	candidates := []graph.SequenceRecord{seqRec("0"), seqRec("1")}
	chosen := th.Choose(context.Background(), candidates, "state", nil)
	assert.Equal(t, candidates[0].Signature, chosen.Signature)
}

func TestChoose_NoCandidates(t *testing.T) {
	gen := &fakeGenerator{response: "CHOICE: 0"}
	th := newTestThinker(gen)

	chosen := th.Choose(context.Background(), nil, "state", nil)
	assert.Empty(t, chosen.Steps)
	assert.Zero(t, gen.calls)
}

func TestChoose_AnnotatesWinRates(t *testing.T) {
	annotated := seqRec("2", "4")
	fresh := seqRec("3")
	stats := &fakeStats{stats: map[string]*graph.SequenceStats{
		annotated.Signature: {Wins: 2, Losses: 1, Total: 3, AvgReward: 1.0 / 3.0},
	}}

	gen := &fakeGenerator{response: "CHOICE: 0"}
	th := newTestThinker(gen)
	th.Choose(context.Background(), []graph.SequenceRecord{annotated, fresh}, "state", stats)

	assert.Contains(t, gen.prompt, "(67% WR, n=3)")
	assert.Contains(t, gen.prompt, "[1] play 3\n")
}

func TestChoose_SkipsAnnotationBelowMinSamples(t *testing.T) {
	seq := seqRec("1")
	stats := &fakeStats{stats: map[string]*graph.SequenceStats{
		seq.Signature: {Wins: 2, Total: 2, AvgReward: 1.0},
	}}

	gen := &fakeGenerator{response: "CHOICE: 0"}
	th := newTestThinker(gen)
	th.Choose(context.Background(), []graph.SequenceRecord{seq, seqRec("2")}, "state", stats)

	assert.NotContains(t, gen.prompt, "WR")
}

func TestChoose_CapsCandidates(t *testing.T) {
	gen := &fakeGenerator{response: "CHOICE: 1"}
	th := newTestThinker(gen, WithMaxCandidates(2))

	candidates := []graph.SequenceRecord{seqRec("0"), seqRec("1"), seqRec("2")}
	chosen := th.Choose(context.Background(), candidates, "state", nil)

	assert.Equal(t, candidates[1].Signature, chosen.Signature)
	assert.Contains(t, gen.prompt, "[1]")
	assert.NotContains(t, gen.prompt, "[2]")
}

func TestDescribeSequence(t *testing.T) {
	steps := []graph.StepRecord{
		{ActionID: "2", ActionText: "[2] Play Pot of Greed"},
		{ActionID: "4", ActionText: "[4] End turn"},
	}
	assert.Equal(t, "Play Pot of Greed → End turn", DescribeSequence(steps))
}

func TestDescribeSequence_FallsBackToID(t *testing.T) {
	steps := []graph.StepRecord{{ActionID: "7"}}
	assert.Equal(t, "7", DescribeSequence(steps))
}
