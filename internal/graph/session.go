package graph

import (
	"github.com/mitchelldurbincs/PokerMonsterAgent/internal/game"
)

// Session is the cursor for one episode. Every store mutation for an episode
// goes through its session, which carries the per-episode step counter and
// the in-progress sequence. Sessions are single-writer: one session per
// player, used strictly sequentially.
type Session struct {
	episodeID string
	stepNum   int
	seq       *openSequence
	finalized bool
}

// openSequence tracks the sequence currently being extended. A sequence with
// no signature yet is in progress and never queried for statistics.
type openSequence struct {
	id    string
	start game.Phase
}

// EpisodeID returns the id of the episode this session writes to
func (s *Session) EpisodeID() string {
	return s.episodeID
}

// StepCount returns the number of steps recorded so far in this episode
func (s *Session) StepCount() int {
	return s.stepNum
}

// SequenceOpen reports whether a sequence is currently in progress
func (s *Session) SequenceOpen() bool {
	return s.seq != nil
}

// Finalized reports whether the episode outcome has been written
func (s *Session) Finalized() bool {
	return s.finalized
}
