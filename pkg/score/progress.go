package score

import "fmt"

// ProgressKind identifies the coarse composition phase.
type ProgressKind int

const (
	ProgressIdle ProgressKind = iota
	ProgressComposing
	ProgressEngraving
)

// Progress is the current composition progress surfaced to the UI.
// Measures is only meaningful when Kind is ProgressComposing.
type Progress struct {
	Kind     ProgressKind
	Measures int
}

// Idle is the resting progress value between composition requests.
var Idle = Progress{Kind: ProgressIdle}

// Engraving marks the notation-polishing phase at the end of a stream.
// It is deliberately distinct from any measure count.
var Engraving = Progress{Kind: ProgressEngraving}

// ComposingMeasures reports that n measures have been generated so far.
func ComposingMeasures(n int) Progress {
	return Progress{Kind: ProgressComposing, Measures: n}
}

func (p Progress) String() string {
	switch p.Kind {
	case ProgressComposing:
		return fmt.Sprintf("composing measure %d", p.Measures)
	case ProgressEngraving:
		return "engraving"
	default:
		return "idle"
	}
}
