package thinker

import (
	"context"
	"fmt"
	"math/rand"
	"regexp"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/PokerMonsterAgent/internal/graph"
)

// TextGenerator is the text-generation collaborator: one prompt in, one
// completion out. Implementations may block for as long as the call takes;
// callers needing timeouts wrap the context.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string, temperature float64) (string, error)
}

// StatsLookup provides historical win/loss statistics by sequence signature.
// *graph.Store satisfies it; a nil lookup disables annotation.
type StatsLookup interface {
	SequenceStats(signature string) (*graph.SequenceStats, error)
}

const (
	// defaultMaxCandidates bounds the prompt size
	defaultMaxCandidates = 40
	// defaultMinSamples is the sample size below which win rates are noise
	defaultMinSamples = 3
	// defaultTemperature for the selection call
	defaultTemperature = 0.3
)

// Thinker ranks candidate action sequences with the text-generation
// collaborator and historical statistics. Choose never fails: any generation
// or parsing problem degrades to a uniform random pick.
type Thinker struct {
	gen           TextGenerator
	rng           *rand.Rand
	logger        zerolog.Logger
	maxCandidates int
	minSamples    int
	temperature   float64
}

// Option configures a Thinker
type Option func(*Thinker)

// WithMaxCandidates overrides the candidate cap
func WithMaxCandidates(n int) Option {
	return func(t *Thinker) {
		t.maxCandidates = n
	}
}

// WithMinSamples overrides the sample threshold for win-rate annotation
func WithMinSamples(n int) Option {
	return func(t *Thinker) {
		t.minSamples = n
	}
}

// WithTemperature overrides the generation temperature
func WithTemperature(temp float64) Option {
	return func(t *Thinker) {
		t.temperature = temp
	}
}

// New creates a Thinker. rng drives the random fallback and must not be nil.
func New(gen TextGenerator, rng *rand.Rand, logger zerolog.Logger, opts ...Option) *Thinker {
	t := &Thinker{
		gen:           gen,
		rng:           rng,
		logger:        logger.With().Str("component", "thinker").Logger(),
		maxCandidates: defaultMaxCandidates,
		minSamples:    defaultMinSamples,
		temperature:   defaultTemperature,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Choose selects one of the candidate sequences given the current game state
// text. Candidates must be non-empty and already verified legal by the
// engine. Historical win rates are attached from stats when available. Choose
// never returns an error: generation failures and unparseable responses fall
// back to a uniform random pick, which is logged.
func (t *Thinker) Choose(ctx context.Context, candidates []graph.SequenceRecord, gamestateText string, stats StatsLookup) graph.SequenceRecord {
	if len(candidates) == 0 {
		t.logger.Warn().Msg("Choose called with no candidates")
		return graph.SequenceRecord{}
	}

	shown := candidates
	if len(shown) > t.maxCandidates {
		shown = shown[:t.maxCandidates]
	}

	var lines []string
	for i, seq := range shown {
		line := fmt.Sprintf("[%d] %s", i, DescribeSequence(seq.Steps))
		if stats != nil {
			line += t.annotate(seq, stats)
		}
		lines = append(lines, line)
	}

	prompt := choicePrompt(gamestateText, strings.Join(lines, "\n"))

	response, err := t.gen.Generate(ctx, prompt, t.temperature)
	if err != nil {
		t.logger.Error().Err(err).Msg("Sequence choice failed, falling back to random")
		return candidates[t.rng.Intn(len(candidates))]
	}

	choice := parseChoice(response, len(shown))
	if !choice.ok {
		t.logger.Warn().Msg("Could not parse choice from response, defaulting to 0")
	}

	chosen := shown[choice.index]
	t.logger.Info().
		Str("chosen", DescribeSequence(chosen.Steps)).
		Str("reasoning", choice.reasoning).
		Msg("Chose sequence")
	return chosen
}

// annotate appends a win-rate annotation when the candidate's action
// signature has enough historical samples.
func (t *Thinker) annotate(seq graph.SequenceRecord, lookup StatsLookup) string {
	sig := graph.Signature(seq.ActionIDs())
	stats, err := lookup.SequenceStats(sig)
	if err != nil {
		t.logger.Warn().Err(err).Str("signature", sig).Msg("Failed to look up sequence stats")
		return ""
	}
	if stats == nil || stats.Total < t.minSamples {
		return ""
	}
	winrate := float64(stats.Wins) / float64(stats.Total) * 100
	return fmt.Sprintf(" (%.0f%% WR, n=%d)", winrate, stats.Total)
}

// DescribeSequence renders a sequence as its action texts joined by arrows.
// Action texts carry a "[id] " prefix from the engine's rendering; the prefix
// is stripped for readability.
func DescribeSequence(steps []graph.StepRecord) string {
	parts := make([]string, 0, len(steps))
	for _, s := range steps {
		text := s.ActionText
		if text == "" {
			text = s.ActionID
		}
		if idx := strings.Index(text, "] "); idx >= 0 {
			text = text[idx+2:]
		}
		parts = append(parts, text)
	}
	return strings.Join(parts, " → ")
}

var (
	choiceRe  = regexp.MustCompile(`(?i)CHOICE:\s*(\d+)`)
	integerRe = regexp.MustCompile(`\b(\d+)\b`)
)

// choiceResult is the outcome of parsing one response: the resolved index,
// the reasoning preceding it, and whether anything valid was found. ok false
// means the index is the default 0.
type choiceResult struct {
	index     int
	reasoning string
	ok        bool
}

// parseChoice extracts the chosen index from a response. It prefers an
// explicit "CHOICE: <n>" line; failing that it scans all bare integers in
// reverse and takes the first in-range one; failing that it reports the
// default index 0.
func parseChoice(response string, numChoices int) choiceResult {
	if response == "" {
		return choiceResult{index: 0, reasoning: "", ok: false}
	}

	if m := choiceRe.FindStringSubmatchIndex(response); m != nil {
		val, err := strconv.Atoi(response[m[2]:m[3]])
		if err == nil && val >= 0 && val < numChoices {
			return choiceResult{
				index:     val,
				reasoning: strings.TrimSpace(response[:m[0]]),
				ok:        true,
			}
		}
	}

	matches := integerRe.FindAllString(response, -1)
	for i := len(matches) - 1; i >= 0; i-- {
		val, err := strconv.Atoi(matches[i])
		if err == nil && val >= 0 && val < numChoices {
			return choiceResult{index: val, reasoning: strings.TrimSpace(response), ok: true}
		}
	}

	return choiceResult{index: 0, reasoning: strings.TrimSpace(response), ok: false}
}
