package score

import (
	"context"
	"sync"
)

// Renderer is the external notation renderer. It only accepts complete,
// well-formed documents; Load validates asynchronously on the renderer's side
// and fails with a descriptive error on structural invalidity.
type Renderer interface {
	Load(ctx context.Context, musicxml string) error
	MeasureCount() int
}

// RenderCoordinator bridges the state machine to the renderer. It re-renders
// only when the render token advances past the last rendered token, so the
// same (document, token) pair is never fed to the renderer twice.
//
// Render failures while a composition is in progress are swallowed: the
// effective document is allowed to be transiently invalid during streaming.
// Failures while idle are surfaced through the error callback.
type RenderCoordinator struct {
	mu         sync.Mutex
	machine    *StateMachine
	renderer   Renderer
	ready      bool
	lastToken  uint64
	hasLast    bool
	onError    func(error)
	onRendered func(token uint64, measures int)
}

func NewRenderCoordinator(machine *StateMachine, renderer Renderer) *RenderCoordinator {
	return &RenderCoordinator{machine: machine, renderer: renderer}
}

// OnError registers the callback for render failures surfaced while idle.
func (rc *RenderCoordinator) OnError(fn func(error)) {
	rc.mu.Lock()
	rc.onError = fn
	rc.mu.Unlock()
}

// OnRendered registers the callback fired after each successful render.
func (rc *RenderCoordinator) OnRendered(fn func(token uint64, measures int)) {
	rc.mu.Lock()
	rc.onRendered = fn
	rc.mu.Unlock()
}

// SetReady marks the renderer available and immediately tries to catch up on
// any token rendered while it was not.
func (rc *RenderCoordinator) SetReady(ctx context.Context, ready bool) {
	rc.mu.Lock()
	rc.ready = ready
	rc.mu.Unlock()
	if ready {
		rc.Observe(ctx)
	}
}

// Observe checks the state machine and renders the effective document when
// the renderer is ready, the token has advanced, and a document exists.
// Wire it to StateMachine.OnChange for event-driven rendering.
func (rc *RenderCoordinator) Observe(ctx context.Context) {
	rc.mu.Lock()
	if !rc.ready {
		rc.mu.Unlock()
		return
	}
	token := rc.machine.RenderToken()
	if rc.hasLast && token <= rc.lastToken {
		rc.mu.Unlock()
		return
	}
	doc, ok := rc.machine.EffectiveDocument()
	if !ok {
		rc.mu.Unlock()
		return
	}
	// Claim the token before loading: even a failed load counts as the one
	// render attempt for this token.
	rc.lastToken = token
	rc.hasLast = true
	renderer := rc.renderer
	onError := rc.onError
	onRendered := rc.onRendered
	rc.mu.Unlock()

	if err := renderer.Load(ctx, doc); err != nil {
		if rc.machine.Progress().Kind != ProgressIdle {
			// Transient invalidity is expected mid-composition.
			return
		}
		if onError != nil {
			onError(err)
		}
		return
	}
	if onRendered != nil {
		onRendered(token, renderer.MeasureCount())
	}
}

// LastRenderedToken reports the newest token fed to the renderer.
func (rc *RenderCoordinator) LastRenderedToken() (uint64, bool) {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return rc.lastToken, rc.hasLast
}
