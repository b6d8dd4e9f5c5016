package score

import (
	"fmt"
	"sync"
)

// SelectionKind identifies the active selection shape.
type SelectionKind int

const (
	SelectionNone SelectionKind = iota
	SelectionSingle
	SelectionRange
)

// SelectionSnapshot is the read-only view a composition request captures at
// submit time. Later selection changes do not alter an in-flight request.
type SelectionSnapshot struct {
	Kind         SelectionKind
	StartMeasure int
	EndMeasure   int
	PartID       string
	Extracted    string // sub-document covering the selected measures, if extracted
	Label        string
}

// Active reports whether any measures are selected.
func (s SelectionSnapshot) Active() bool {
	return s.Kind != SelectionNone
}

// Selection tracks the user's current measure-range focus on the rendered
// score. Mutated only by direct user interaction or an explicit clear.
type Selection struct {
	mu        sync.Mutex
	kind      SelectionKind
	start     int
	end       int
	partID    string
	extracted string
}

func NewSelection() *Selection {
	return &Selection{}
}

// SelectSingle focuses a single measure.
func (s *Selection) SelectSingle(measure int) {
	s.mu.Lock()
	s.kind = SelectionSingle
	s.start = measure
	s.end = measure
	s.extracted = ""
	s.mu.Unlock()
}

// SelectRange focuses a measure range, normalizing so start <= end.
func (s *Selection) SelectRange(start, end int) {
	if start > end {
		start, end = end, start
	}
	s.mu.Lock()
	s.kind = SelectionRange
	s.start = start
	s.end = end
	s.extracted = ""
	s.mu.Unlock()
}

// Extend grows the selection to include measure. With no selection it starts
// a single-measure selection; otherwise the existing anchor becomes one end
// of a range ending at measure. Never shrinks below a single measure.
func (s *Selection) Extend(measure int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.kind == SelectionNone {
		s.kind = SelectionSingle
		s.start = measure
		s.end = measure
		return
	}

	start, end := s.start, measure
	if start > end {
		start, end = end, start
	}
	s.kind = SelectionRange
	s.start = start
	s.end = end
	s.extracted = ""
}

// Clear drops the selection entirely.
func (s *Selection) Clear() {
	s.mu.Lock()
	s.kind = SelectionNone
	s.start = 0
	s.end = 0
	s.partID = ""
	s.extracted = ""
	s.mu.Unlock()
}

// SetContext attaches the extracted sub-document and part id for the current
// selection, produced from the rendered score.
func (s *Selection) SetContext(extracted, partID string) {
	s.mu.Lock()
	s.extracted = extracted
	s.partID = partID
	s.mu.Unlock()
}

// Label derives the human-readable selection label: "m.N" for a single
// measure, "m.N-M" for a range, empty otherwise.
func (s *Selection) Label() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.labelLocked()
}

// Snapshot captures the selection for a composition request.
func (s *Selection) Snapshot() SelectionSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return SelectionSnapshot{
		Kind:         s.kind,
		StartMeasure: s.start,
		EndMeasure:   s.end,
		PartID:       s.partID,
		Extracted:    s.extracted,
		Label:        s.labelLocked(),
	}
}

func (s *Selection) labelLocked() string {
	switch s.kind {
	case SelectionSingle:
		return fmt.Sprintf("m.%d", s.start)
	case SelectionRange:
		return fmt.Sprintf("m.%d-%d", s.start, s.end)
	default:
		return ""
	}
}
