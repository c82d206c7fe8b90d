package selfplay

import (
	"context"
	"errors"
	"fmt"
	"math/rand"

	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/PokerMonsterAgent/internal/game"
	"github.com/mitchelldurbincs/PokerMonsterAgent/internal/graph"
	"github.com/mitchelldurbincs/PokerMonsterAgent/internal/thinker"
)

// Policy selects how a player decides its actions
type Policy string

const (
	// PolicyRandom picks uniformly among legal actions
	PolicyRandom Policy = "random"
	// PolicyLLM replays historical sequences chosen by the thinker
	PolicyLLM Policy = "llm"
)

// Player binds a player id to its experience graph and decision policy. Each
// player owns its store exclusively; stores are never shared.
type Player struct {
	ID     string
	Store  *graph.Store
	Policy Policy
}

// Runner drives full games against an engine, recording every accepted
// transition into the per-player experience graphs and finalizing episodes
// with the terminal rewards.
type Runner struct {
	players    []Player
	thinker    *thinker.Thinker
	boundaries game.BoundarySet
	rng        *rand.Rand
	logger     zerolog.Logger
}

// NewRunner creates a runner. th may be nil, in which case LLM players
// degrade to replaying single sequences or random play.
func NewRunner(players []Player, th *thinker.Thinker, boundaries game.BoundarySet, rng *rand.Rand, logger zerolog.Logger) *Runner {
	return &Runner{
		players:    players,
		thinker:    th,
		boundaries: boundaries,
		rng:        rng,
		logger:     logger.With().Str("component", "selfplay").Logger(),
	}
}

func (r *Runner) playerByID(id string) (Player, error) {
	for _, p := range r.players {
		if p.ID == id {
			return p, nil
		}
	}
	return Player{}, fmt.Errorf("engine reported unknown player %q", id)
}

// PlayGame runs one game to completion. Each accepted action becomes a step
// once its destination state is known; a step is therefore recorded one
// decision later, when the same player acts again or the game ends. Returns
// the terminal per-player rewards.
func (r *Runner) PlayGame(ctx context.Context, engine game.Engine) (map[string]float64, error) {
	sessions := make(map[string]*graph.Session, len(r.players))
	pending := make(map[string]*game.Step, len(r.players))
	active := make(map[string][]graph.StepRecord, len(r.players))

	for _, p := range r.players {
		sess, err := p.Store.BeginEpisode()
		if err != nil {
			return nil, err
		}
		sessions[p.ID] = sess
	}

	for engine.TerminalOutcome() == nil {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		id := engine.CurrentPlayer()
		p, err := r.playerByID(id)
		if err != nil {
			return nil, err
		}

		stateText, _ := engine.DisplayText()

		// The previous step's destination is only known now.
		if prev := pending[id]; prev != nil {
			prev.DstID = engine.CurrentPhase().String()
			prev.DstText = stateText
			if err := p.Store.RecordStep(sessions[id], *prev, r.boundaries); err != nil {
				return nil, err
			}
			pending[id] = nil
		}

		step := game.Step{
			SrcID:   engine.CurrentPhase().String(),
			SrcText: stateText,
		}

		actionID, err := r.pickAction(ctx, p, engine, stateText, active)
		if err != nil {
			return nil, err
		}
		actionText := engine.ActionText(actionID)

		accepted, reason := engine.Apply(actionID)
		if accepted {
			step.ActionID = actionID
			step.ActionText = actionText
			pending[id] = &step
		} else {
			// Sequence went stale; abandon it and fall back to
			// single-action play.
			r.logger.Warn().
				Str("player", id).
				Str("action", actionText).
				Str("reason", reason).
				Msg("Engine rejected action, abandoning sequence")
			active[id] = nil
		}
	}

	outcome := engine.TerminalOutcome()

	// Record the final pending steps so every episode ends closed.
	finalText, _ := engine.DisplayText()
	for id, step := range pending {
		if step == nil {
			continue
		}
		p, err := r.playerByID(id)
		if err != nil {
			return nil, err
		}
		step.DstID = engine.CurrentPhase().String()
		step.DstText = finalText
		if err := p.Store.RecordStep(sessions[id], *step, r.boundaries); err != nil {
			return nil, err
		}
	}

	for _, p := range r.players {
		if err := p.Store.FinalizeEpisode(sessions[p.ID], outcome[p.ID]); err != nil {
			return nil, err
		}
	}

	r.logger.Info().Interface("outcome", outcome).Msg("Game finished")
	return outcome, nil
}

// pickAction decides the player's next action. LLM players consume their
// active sequence first; with no active sequence they plan a new one from the
// store's history, and with nothing applicable they play a random legal
// action.
func (r *Runner) pickAction(ctx context.Context, p Player, engine game.Engine, stateText string, active map[string][]graph.StepRecord) (string, error) {
	if p.Policy != PolicyLLM {
		return r.randomAction(engine)
	}

	remaining := active[p.ID]
	if len(remaining) == 0 {
		candidates, err := r.legalCandidates(p, engine)
		if err != nil {
			return "", err
		}
		switch {
		case len(candidates) > 1 && r.thinker != nil:
			chosen := r.thinker.Choose(ctx, candidates, stateText, p.Store)
			remaining = chosen.Steps
		case len(candidates) >= 1:
			remaining = candidates[0].Steps
		}
	}

	if len(remaining) > 0 {
		next := remaining[0]
		active[p.ID] = remaining[1:]
		return next.ActionID, nil
	}
	return r.randomAction(engine)
}

// legalCandidates filters the store's unique sequences through the engine's
// legality check.
func (r *Runner) legalCandidates(p Player, engine game.Engine) ([]graph.SequenceRecord, error) {
	all, err := p.Store.UniqueSequences()
	if err != nil {
		return nil, err
	}
	var legal []graph.SequenceRecord
	for _, seq := range all {
		if engine.IsLegalSequence(seq.ActionIDs()) {
			legal = append(legal, seq)
		}
	}
	return legal, nil
}

func (r *Runner) randomAction(engine game.Engine) (string, error) {
	legal := engine.LegalActions()
	if len(legal) == 0 {
		return "", errors.New("engine offered no legal actions")
	}
	return legal[r.rng.Intn(len(legal))], nil
}
