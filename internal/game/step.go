package game

// Step is one state→action→state transition as seen by the engine. The id
// fields are opaque identifiers; the text fields are the human-readable
// renderings used when a sequence is shown to the selector.
type Step struct {
	SrcID    string
	ActionID string
	DstID    string

	SrcText    string
	ActionText string
	DstText    string
}
