package document

// State is the position of an assembly run in its lifecycle:
// Idle → Rendering → MergingAttachments → Finalized, or Aborted from any
// step before Finalized.
type State int

const (
	StateIdle State = iota
	StateRendering
	StateMergingAttachments
	StateFinalized
	StateAborted
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRendering:
		return "rendering"
	case StateMergingAttachments:
		return "merging_attachments"
	case StateFinalized:
		return "finalized"
	case StateAborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// Terminal reports whether a run in this state is over.
func (s State) Terminal() bool {
	return s == StateFinalized || s == StateAborted
}
