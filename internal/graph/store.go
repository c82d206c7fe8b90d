package graph

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/PokerMonsterAgent/internal/game"
)

var (
	// ErrNilSession is returned when a store operation is called without a session
	ErrNilSession = errors.New("nil session")
	// ErrSessionFinalized is returned when a session is used after its episode outcome was written
	ErrSessionFinalized = errors.New("episode already finalized")
)

// Store is the persistent experience graph for a single player: game states
// as nodes, transitions as edges, and the episode/sequence/step log the
// aggregates are derived from. One store per player; operations on a store
// are strictly sequential and each mutation is a single transaction.
type Store struct {
	db     *sql.DB
	logger zerolog.Logger
	policy ClosePolicy
}

// Option configures a Store
type Option func(*Store)

// WithClosePolicy overrides the sequence-closing policy (default BoundaryClose)
func WithClosePolicy(p ClosePolicy) Option {
	return func(s *Store) {
		s.policy = p
	}
}

// Open opens or creates the experience graph at path. Pass ":memory:" for an
// ephemeral store. Schema setup is idempotent.
func Open(path string, logger zerolog.Logger, opts ...Option) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open experience graph %s: %w", path, err)
	}
	// Access is single-writer by design; one connection also keeps
	// ":memory:" stores on a single database.
	db.SetMaxOpenConns(1)

	s := &Store{
		db:     db,
		logger: logger.With().Str("component", "experience_graph").Logger(),
		policy: BoundaryClose,
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) initSchema() error {
	if _, err := s.db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		return fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS episodes (
		episode_id TEXT PRIMARY KEY,
		outcome    REAL DEFAULT 0.0,
		timestamp  DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS sequences (
		sequence_id TEXT PRIMARY KEY,
		episode_id  TEXT,
		signature   TEXT,
		FOREIGN KEY(episode_id) REFERENCES episodes(episode_id)
	);

	CREATE TABLE IF NOT EXISTS steps (
		step_id     INTEGER PRIMARY KEY AUTOINCREMENT,
		episode_id  TEXT,
		sequence_id TEXT,
		step_num    INTEGER,
		src_id      TEXT,
		action_id   TEXT,
		dst_id      TEXT,
		src_text    TEXT,
		action_text TEXT,
		dst_text    TEXT,
		FOREIGN KEY(episode_id) REFERENCES episodes(episode_id),
		FOREIGN KEY(sequence_id) REFERENCES sequences(sequence_id),
		FOREIGN KEY(src_id) REFERENCES nodes(id),
		FOREIGN KEY(dst_id) REFERENCES nodes(id)
	);

	CREATE TABLE IF NOT EXISTS nodes (
		id           TEXT PRIMARY KEY,
		total_reward REAL DEFAULT 0.0,
		count        INTEGER DEFAULT 0,
		avg_reward   REAL DEFAULT 0.0
	);

	CREATE TABLE IF NOT EXISTS edges (
		src_id       TEXT,
		action_id    TEXT,
		dst_id       TEXT,
		total_reward REAL DEFAULT 0.0,
		count        INTEGER DEFAULT 0,
		avg_reward   REAL DEFAULT 0.0,
		PRIMARY KEY (src_id, dst_id, action_id),
		FOREIGN KEY(src_id) REFERENCES nodes(id),
		FOREIGN KEY(dst_id) REFERENCES nodes(id)
	);

	-- Reserved for skill extraction; no operations use it yet.
	CREATE TABLE IF NOT EXISTS skills (
		skill_id      TEXT PRIMARY KEY,
		name          TEXT,
		description   TEXT,
		embedding     BLOB,
		preconditions TEXT,
		execution     TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_sequences_signature ON sequences(signature);
	CREATE INDEX IF NOT EXISTS idx_steps_sequence ON steps(sequence_id);
	CREATE INDEX IF NOT EXISTS idx_steps_episode ON steps(episode_id);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	return nil
}

// BeginEpisode allocates a new episode and returns its session cursor. The
// episode row is persisted immediately with a zero outcome.
func (s *Store) BeginEpisode() (*Session, error) {
	id := uuid.New().String()
	if _, err := s.db.Exec(`INSERT INTO episodes (episode_id) VALUES (?)`, id); err != nil {
		return nil, fmt.Errorf("failed to insert episode: %w", err)
	}

	s.logger.Debug().Str("episode_id", id).Msg("Started new episode")
	return &Session{episodeID: id}, nil
}

// RecordStep appends one transition to the episode. It idempotently ensures
// node rows for both endpoints and an edge row for the triple, opens a new
// sequence if none is active, appends the step with the next step number, and
// closes the active sequence when the closing policy fires. The whole
// operation commits as one transaction; the session is only advanced after a
// successful commit.
func (s *Store) RecordStep(sess *Session, step game.Step, boundaries game.BoundarySet) error {
	if sess == nil {
		return ErrNilSession
	}
	if sess.finalized {
		return ErrSessionFinalized
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			s.logger.Error().Err(err).Msg("Failed to roll back record_step transaction")
		}
	}()

	if _, err := tx.Exec(`INSERT OR IGNORE INTO nodes (id) VALUES (?)`, step.SrcID); err != nil {
		return fmt.Errorf("failed to ensure src node: %w", err)
	}
	if _, err := tx.Exec(`INSERT OR IGNORE INTO nodes (id) VALUES (?)`, step.DstID); err != nil {
		return fmt.Errorf("failed to ensure dst node: %w", err)
	}
	if _, err := tx.Exec(`INSERT OR IGNORE INTO edges (src_id, action_id, dst_id) VALUES (?, ?, ?)`,
		step.SrcID, step.ActionID, step.DstID); err != nil {
		return fmt.Errorf("failed to ensure edge: %w", err)
	}

	seq := sess.seq
	if seq == nil {
		seq = &openSequence{
			id:    uuid.New().String(),
			start: game.Phase(step.SrcID),
		}
		if _, err := tx.Exec(`INSERT INTO sequences (sequence_id, episode_id) VALUES (?, ?)`,
			seq.id, sess.episodeID); err != nil {
			return fmt.Errorf("failed to insert sequence: %w", err)
		}
	}

	if _, err := tx.Exec(`
		INSERT INTO steps (episode_id, sequence_id, step_num, src_id, action_id, dst_id, src_text, action_text, dst_text)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sess.episodeID, seq.id, sess.stepNum,
		step.SrcID, step.ActionID, step.DstID,
		step.SrcText, step.ActionText, step.DstText); err != nil {
		return fmt.Errorf("failed to insert step: %w", err)
	}

	closing := s.policy(seq.start, game.Phase(step.DstID), boundaries)
	if closing {
		if err := s.closeSequence(tx, seq.id); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit record_step: %w", err)
	}

	sess.stepNum++
	if closing {
		sess.seq = nil
	} else {
		sess.seq = seq
	}
	return nil
}

// closeSequence computes the signature over the sequence's own steps, in
// step order, and writes it. The signature is derived from the step log so
// it stays reproducible from persisted data alone.
func (s *Store) closeSequence(tx *sql.Tx, sequenceID string) error {
	rows, err := tx.Query(`
		SELECT action_id FROM steps
		WHERE sequence_id = ?
		ORDER BY step_num ASC`, sequenceID)
	if err != nil {
		return fmt.Errorf("failed to read sequence steps: %w", err)
	}
	defer rows.Close()

	var actionIDs []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return fmt.Errorf("failed to scan step: %w", err)
		}
		actionIDs = append(actionIDs, id)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating sequence steps: %w", err)
	}

	sig := Signature(actionIDs)
	if _, err := tx.Exec(`UPDATE sequences SET signature = ? WHERE sequence_id = ?`, sig, sequenceID); err != nil {
		return fmt.Errorf("failed to write sequence signature: %w", err)
	}

	s.logger.Debug().
		Str("sequence_id", sequenceID).
		Str("signature", sig).
		Int("length", len(actionIDs)).
		Msg("Closed sequence")
	return nil
}

// edgeKey identifies one (src, action, dst) triple during reward backup
type edgeKey struct {
	src, action, dst string
}

// FinalizeEpisode writes the episode outcome and runs one Monte-Carlo return
// backup over every step of the episode: each step's source node counts as a
// visit, the final step's destination counts as one extra visit, and every
// node and edge receives visits*outcome reward in a single combined update.
// An episode with no steps stores the outcome and updates nothing.
func (s *Store) FinalizeEpisode(sess *Session, outcome float64) error {
	if sess == nil {
		return ErrNilSession
	}
	if sess.finalized {
		return ErrSessionFinalized
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			s.logger.Error().Err(err).Msg("Failed to roll back finalize transaction")
		}
	}()

	if _, err := tx.Exec(`UPDATE episodes SET outcome = ? WHERE episode_id = ?`, outcome, sess.episodeID); err != nil {
		return fmt.Errorf("failed to store episode outcome: %w", err)
	}

	rows, err := tx.Query(`
		SELECT src_id, action_id, dst_id FROM steps
		WHERE episode_id = ?
		ORDER BY step_num ASC`, sess.episodeID)
	if err != nil {
		return fmt.Errorf("failed to read episode steps: %w", err)
	}

	nodeVisits := make(map[string]int)
	edgeVisits := make(map[edgeKey]int)
	var lastDst string
	steps := 0
	for rows.Next() {
		var src, action, dst string
		if err := rows.Scan(&src, &action, &dst); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan step: %w", err)
		}
		nodeVisits[src]++
		edgeVisits[edgeKey{src, action, dst}]++
		lastDst = dst
		steps++
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return fmt.Errorf("error iterating episode steps: %w", err)
	}
	rows.Close()

	if steps > 0 {
		// The terminal state is visited once even though it originates no
		// further action.
		nodeVisits[lastDst]++

		for id, visits := range nodeVisits {
			added := float64(visits) * outcome
			if _, err := tx.Exec(`
				UPDATE nodes
				SET count = count + ?,
				    total_reward = total_reward + ?,
				    avg_reward = (total_reward + ?) / (count + ?)
				WHERE id = ?`,
				visits, added, added, visits, id); err != nil {
				return fmt.Errorf("failed to update node %s: %w", id, err)
			}
		}

		for key, visits := range edgeVisits {
			added := float64(visits) * outcome
			if _, err := tx.Exec(`
				UPDATE edges
				SET count = count + ?,
				    total_reward = total_reward + ?,
				    avg_reward = (total_reward + ?) / (count + ?)
				WHERE src_id = ? AND action_id = ? AND dst_id = ?`,
				visits, added, added, visits, key.src, key.action, key.dst); err != nil {
				return fmt.Errorf("failed to update edge %s-%s->%s: %w", key.src, key.action, key.dst, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit finalize: %w", err)
	}

	sess.finalized = true
	s.logger.Info().
		Str("episode_id", sess.episodeID).
		Float64("outcome", outcome).
		Int("steps", steps).
		Msg("Finalized episode")
	return nil
}

// SequenceStats aggregates the outcomes of every closed sequence sharing the
// given signature, across all episodes. It returns nil when no sequence has
// that signature. Outcomes of exactly zero count as neither win nor loss.
func (s *Store) SequenceStats(signature string) (*SequenceStats, error) {
	rows, err := s.db.Query(`
		SELECT e.outcome
		FROM sequences q
		JOIN episodes e ON q.episode_id = e.episode_id
		WHERE q.signature = ?`, signature)
	if err != nil {
		return nil, fmt.Errorf("failed to query sequence stats: %w", err)
	}
	defer rows.Close()

	stats := &SequenceStats{}
	var sum float64
	for rows.Next() {
		var outcome float64
		if err := rows.Scan(&outcome); err != nil {
			return nil, fmt.Errorf("failed to scan outcome: %w", err)
		}
		switch {
		case outcome > 0:
			stats.Wins++
		case outcome < 0:
			stats.Losses++
		}
		sum += outcome
		stats.Total++
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating outcomes: %w", err)
	}

	if stats.Total == 0 {
		return nil, nil
	}
	stats.AvgReward = sum / float64(stats.Total)
	return stats, nil
}

// UniqueSequences returns, for every distinct signature ever observed, one
// representative sequence's full ordered step list, usable as a candidate
// plan. In-progress sequences (null signature) are excluded.
func (s *Store) UniqueSequences() ([]SequenceRecord, error) {
	rows, err := s.db.Query(`
		SELECT signature, MIN(sequence_id)
		FROM sequences
		WHERE signature IS NOT NULL
		GROUP BY signature`)
	if err != nil {
		return nil, fmt.Errorf("failed to query unique sequences: %w", err)
	}
	defer rows.Close()

	type rep struct {
		signature  string
		sequenceID string
	}
	var reps []rep
	for rows.Next() {
		var r rep
		if err := rows.Scan(&r.signature, &r.sequenceID); err != nil {
			return nil, fmt.Errorf("failed to scan sequence: %w", err)
		}
		reps = append(reps, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sequences: %w", err)
	}

	records := make([]SequenceRecord, 0, len(reps))
	for _, r := range reps {
		steps, err := s.sequenceSteps(r.sequenceID)
		if err != nil {
			return nil, err
		}
		records = append(records, SequenceRecord{Signature: r.signature, Steps: steps})
	}
	return records, nil
}

func (s *Store) sequenceSteps(sequenceID string) ([]StepRecord, error) {
	rows, err := s.db.Query(`
		SELECT step_num, src_id, action_id, dst_id, src_text, action_text, dst_text
		FROM steps
		WHERE sequence_id = ?
		ORDER BY step_num ASC`, sequenceID)
	if err != nil {
		return nil, fmt.Errorf("failed to query steps: %w", err)
	}
	defer rows.Close()

	var steps []StepRecord
	for rows.Next() {
		var st StepRecord
		if err := rows.Scan(&st.StepNum, &st.SrcID, &st.ActionID, &st.DstID,
			&st.SrcText, &st.ActionText, &st.DstText); err != nil {
			return nil, fmt.Errorf("failed to scan step: %w", err)
		}
		steps = append(steps, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating steps: %w", err)
	}
	return steps, nil
}

// NodeStats returns the aggregates of one node, or nil if it was never seen
func (s *Store) NodeStats(id string) (*NodeStats, error) {
	ns := &NodeStats{ID: id}
	err := s.db.QueryRow(`
		SELECT count, total_reward, avg_reward FROM nodes WHERE id = ?`, id).
		Scan(&ns.Count, &ns.TotalReward, &ns.AvgReward)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query node %s: %w", id, err)
	}
	return ns, nil
}

// EdgeStats returns the aggregates of one edge, or nil if it was never seen
func (s *Store) EdgeStats(srcID, actionID, dstID string) (*EdgeStats, error) {
	es := &EdgeStats{SrcID: srcID, ActionID: actionID, DstID: dstID}
	err := s.db.QueryRow(`
		SELECT count, total_reward, avg_reward FROM edges
		WHERE src_id = ? AND action_id = ? AND dst_id = ?`, srcID, actionID, dstID).
		Scan(&es.Count, &es.TotalReward, &es.AvgReward)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query edge: %w", err)
	}
	return es, nil
}

// Close closes the underlying database
func (s *Store) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("failed to close experience graph: %w", err)
	}
	return nil
}
