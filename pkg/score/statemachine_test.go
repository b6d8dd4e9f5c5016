package score

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateMachineLifecycle(t *testing.T) {
	m := NewStateMachine()

	assert.Equal(t, StateEmpty, m.State())
	_, ok := m.EffectiveDocument()
	assert.False(t, ok)

	err := m.SetPending("<score/>")
	assert.ErrorIs(t, err, ErrNoScore)

	m.SetAuthoritative("v1")
	assert.Equal(t, StateClean, m.State())

	doc, ok := m.EffectiveDocument()
	require.True(t, ok)
	assert.Equal(t, "v1", doc)
}

func TestPendingOverridesAuthoritative(t *testing.T) {
	m := NewStateMachine()
	m.SetAuthoritative("v1")

	require.NoError(t, m.SetPending("v2"))
	assert.Equal(t, StatePreviewing, m.State())

	doc, ok := m.EffectiveDocument()
	require.True(t, ok)
	assert.Equal(t, "v2", doc, "preview must shadow the committed document")

	auth, ok := m.Authoritative()
	require.True(t, ok)
	assert.Equal(t, "v1", auth, "committed document untouched while previewing")
}

func TestAcceptCommitsPending(t *testing.T) {
	m := NewStateMachine()
	m.SetAuthoritative("v1")
	require.NoError(t, m.SetPending("v2"))

	before := m.RenderToken()
	assert.True(t, m.Accept())
	assert.Equal(t, before+1, m.RenderToken(), "accept bumps the token exactly once")

	assert.Equal(t, StateClean, m.State())
	auth, _ := m.Authoritative()
	assert.Equal(t, "v2", auth)
	_, pending := m.Pending()
	assert.False(t, pending)

	// Second accept is a strict no-op.
	tok := m.RenderToken()
	assert.False(t, m.Accept())
	assert.Equal(t, tok, m.RenderToken())
}

func TestDeclineRestoresAuthoritative(t *testing.T) {
	m := NewStateMachine()
	m.SetAuthoritative("v1")
	require.NoError(t, m.SetPending("v2"))

	before := m.RenderToken()
	assert.True(t, m.Decline())
	assert.Equal(t, before+1, m.RenderToken())

	doc, ok := m.EffectiveDocument()
	require.True(t, ok)
	assert.Equal(t, "v1", doc)

	tok := m.RenderToken()
	assert.False(t, m.Decline())
	assert.Equal(t, tok, m.RenderToken(), "no-op decline must not bump the token")
}

func TestRenderTokenStrictlyIncreases(t *testing.T) {
	m := NewStateMachine()

	last := m.RenderToken()
	step := func(name string, op func()) {
		op()
		tok := m.RenderToken()
		assert.Greater(t, tok, last, name)
		last = tok
	}

	step("initial authoritative", func() { m.SetAuthoritative("v1") })
	step("first pending", func() { require.NoError(t, m.SetPending("v2")) })
	step("pending replaced", func() { require.NoError(t, m.SetPending("v3")) })
	step("accept", func() { m.Accept() })
	step("authoritative replace", func() { m.SetAuthoritative("v4") })
}

func TestProgressDoesNotBumpToken(t *testing.T) {
	m := NewStateMachine()
	m.SetAuthoritative("v1")
	tok := m.RenderToken()

	m.SetProgress(ComposingMeasures(3))
	assert.Equal(t, tok, m.RenderToken())
	assert.Equal(t, ProgressComposing, m.Progress().Kind)
	assert.Equal(t, 3, m.Progress().Measures)

	m.SetProgress(Engraving)
	assert.Equal(t, tok, m.RenderToken())
}

func TestSetAuthoritativeDiscardsPending(t *testing.T) {
	m := NewStateMachine()
	m.SetAuthoritative("v1")
	require.NoError(t, m.SetPending("v2"))

	m.SetAuthoritative("v3")
	assert.Equal(t, StateClean, m.State())
	doc, _ := m.EffectiveDocument()
	assert.Equal(t, "v3", doc)
}

func TestAcceptResetsProgress(t *testing.T) {
	m := NewStateMachine()
	m.SetAuthoritative("v1")
	require.NoError(t, m.SetPending("v2", ComposingMeasures(4)))
	assert.Equal(t, ProgressComposing, m.Progress().Kind)

	m.Accept()
	assert.Equal(t, ProgressIdle, m.Progress().Kind)
}

func TestChangeCallbackFiresPerTransition(t *testing.T) {
	m := NewStateMachine()

	var events []ChangeEvent
	m.OnChange(func(ev ChangeEvent) { events = append(events, ev) })

	m.SetAuthoritative("v1")
	require.NoError(t, m.SetPending("v2"))
	m.Decline()
	m.Accept() // no-op, must not fire

	require.Len(t, events, 3)
	assert.Equal(t, "v1", events[0].Document)
	assert.Equal(t, StateClean, events[0].State)
	assert.Equal(t, "v2", events[1].Document)
	assert.Equal(t, StatePreviewing, events[1].State)
	assert.Equal(t, "v1", events[2].Document)
	assert.Equal(t, StateClean, events[2].State)

	for i := 1; i < len(events); i++ {
		assert.Greater(t, events[i].Token, events[i-1].Token)
	}
}
