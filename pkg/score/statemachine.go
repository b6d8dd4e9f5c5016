package score

import (
	"errors"
	"sync"
)

// State is the document state derived from which slots are filled.
type State int

const (
	StateEmpty      State = iota // no authoritative document yet
	StateClean                   // authoritative set, no preview
	StatePreviewing              // authoritative set, pending preview active
)

func (s State) String() string {
	switch s {
	case StateClean:
		return "clean"
	case StatePreviewing:
		return "previewing"
	default:
		return "empty"
	}
}

// ErrNoScore is returned when a preview is set before any authoritative score exists.
var ErrNoScore = errors.New("no authoritative score to preview against")

// ChangeEvent describes one render-relevant transition of the state machine.
type ChangeEvent struct {
	Token    uint64
	State    State
	Document string // effective document after the transition
}

// StateMachine owns the authoritative score document and an optional pending
// (preview) candidate. All mutation goes through its operations; the render
// token increases strictly on every document-visible change so downstream
// consumers can dedupe renders.
type StateMachine struct {
	mu            sync.Mutex
	authoritative string
	pending       string
	token         uint64
	progress      Progress

	onChange   func(ChangeEvent)
	onProgress func(Progress)
}

func NewStateMachine() *StateMachine {
	return &StateMachine{progress: Idle}
}

// OnChange registers the callback fired after every render-token increment.
// Fired outside the lock so the callback may call back into the machine.
func (m *StateMachine) OnChange(fn func(ChangeEvent)) {
	m.mu.Lock()
	m.onChange = fn
	m.mu.Unlock()
}

// OnProgress registers the callback fired on progress transitions.
// Progress changes never bump the render token; they feed a separate UI signal.
func (m *StateMachine) OnProgress(fn func(Progress)) {
	m.mu.Lock()
	m.onProgress = fn
	m.mu.Unlock()
}

// SetAuthoritative replaces the committed score and discards any preview.
// Valid from any state; used for initial score creation and project loads.
func (m *StateMachine) SetAuthoritative(doc string) {
	m.mu.Lock()
	m.authoritative = doc
	m.pending = ""
	m.token++
	ev, fn := m.changeEventLocked()
	m.mu.Unlock()

	if fn != nil {
		fn(ev)
	}
}

// SetPending installs a freshly streamed candidate as the preview document.
// An optional progress hint is applied in the same transition. Returns
// ErrNoScore when no authoritative document exists yet.
func (m *StateMachine) SetPending(doc string, hint ...Progress) error {
	m.mu.Lock()
	if m.authoritative == "" {
		m.mu.Unlock()
		return ErrNoScore
	}
	m.pending = doc
	if len(hint) > 0 {
		m.progress = hint[len(hint)-1]
	}
	m.token++
	ev, fn := m.changeEventLocked()
	pfn := m.onProgress
	p := m.progress
	m.mu.Unlock()

	if len(hint) > 0 && pfn != nil {
		pfn(p)
	}
	if fn != nil {
		fn(ev)
	}
	return nil
}

// Accept commits the preview as the new authoritative document.
// Strict no-op (no token bump, no callbacks) when nothing is pending.
func (m *StateMachine) Accept() bool {
	m.mu.Lock()
	if m.pending == "" {
		m.mu.Unlock()
		return false
	}
	m.authoritative = m.pending
	m.pending = ""
	m.progress = Idle
	m.token++
	ev, fn := m.changeEventLocked()
	pfn := m.onProgress
	m.mu.Unlock()

	if pfn != nil {
		pfn(Idle)
	}
	if fn != nil {
		fn(ev)
	}
	return true
}

// Decline discards the preview, restoring the authoritative document as the
// effective one. Strict no-op when nothing is pending.
func (m *StateMachine) Decline() bool {
	m.mu.Lock()
	if m.pending == "" {
		m.mu.Unlock()
		return false
	}
	m.pending = ""
	m.progress = Idle
	m.token++
	ev, fn := m.changeEventLocked()
	pfn := m.onProgress
	m.mu.Unlock()

	if pfn != nil {
		pfn(Idle)
	}
	if fn != nil {
		fn(ev)
	}
	return true
}

// SetProgress updates composition progress without touching the documents or
// the render token.
func (m *StateMachine) SetProgress(p Progress) {
	m.mu.Lock()
	m.progress = p
	fn := m.onProgress
	m.mu.Unlock()

	if fn != nil {
		fn(p)
	}
}

// EffectiveDocument returns the document the renderer should display:
// pending when a preview is active, else authoritative. Pure read.
func (m *StateMachine) EffectiveDocument() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pending != "" {
		return m.pending, true
	}
	if m.authoritative != "" {
		return m.authoritative, true
	}
	return "", false
}

// RenderToken returns the current monotonic render token.
func (m *StateMachine) RenderToken() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token
}

// State reports the derived document state.
func (m *StateMachine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stateLocked()
}

// Progress returns the current composition progress.
func (m *StateMachine) Progress() Progress {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.progress
}

// Authoritative returns the last committed document, if any.
func (m *StateMachine) Authoritative() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.authoritative, m.authoritative != ""
}

// Pending returns the active preview document, if any.
func (m *StateMachine) Pending() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pending, m.pending != ""
}

func (m *StateMachine) stateLocked() State {
	switch {
	case m.pending != "":
		return StatePreviewing
	case m.authoritative != "":
		return StateClean
	default:
		return StateEmpty
	}
}

func (m *StateMachine) changeEventLocked() (ChangeEvent, func(ChangeEvent)) {
	doc := m.pending
	if doc == "" {
		doc = m.authoritative
	}
	return ChangeEvent{Token: m.token, State: m.stateLocked(), Document: doc}, m.onChange
}
