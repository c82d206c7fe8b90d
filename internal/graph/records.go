package graph

// StepRecord is one persisted step of a sequence, including the text
// renderings captured when it was recorded.
type StepRecord struct {
	StepNum    int
	SrcID      string
	ActionID   string
	DstID      string
	SrcText    string
	ActionText string
	DstText    string
}

// SequenceRecord is a replayable sequence: a signature plus one
// representative ordered step list, suitable for re-execution as a
// candidate plan.
type SequenceRecord struct {
	Signature string
	Steps     []StepRecord
}

// ActionIDs returns the ordered action ids of the sequence
func (r SequenceRecord) ActionIDs() []string {
	ids := make([]string, len(r.Steps))
	for i, s := range r.Steps {
		ids[i] = s.ActionID
	}
	return ids
}

// SequenceStats aggregates the episode outcomes of every closed sequence
// sharing one signature.
type SequenceStats struct {
	Wins      int
	Losses    int
	AvgReward float64
	Total     int
}

// NodeStats holds the visit aggregates of a single game-state node
type NodeStats struct {
	ID          string
	Count       int
	TotalReward float64
	AvgReward   float64
}

// EdgeStats holds the visit aggregates of a single (src, action, dst) edge
type EdgeStats struct {
	SrcID       string
	ActionID    string
	DstID       string
	Count       int
	TotalReward float64
	AvgReward   float64
}
