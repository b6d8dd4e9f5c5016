package composer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"ai-scorestudio/pkg/score"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// streamServer serves a canned frame sequence as an SSE response and records
// each request body it receives.
type streamServer struct {
	mu       sync.Mutex
	requests []StreamRequest
	frames   []string
	hits     atomic.Int32
	release  chan struct{} // when set, the handler blocks before responding
}

func (s *streamServer) handler(w http.ResponseWriter, r *http.Request) {
	s.hits.Add(1)
	var req StreamRequest
	body, _ := io.ReadAll(r.Body)
	_ = json.Unmarshal(body, &req)
	s.mu.Lock()
	s.requests = append(s.requests, req)
	frames := s.frames
	s.mu.Unlock()

	if s.release != nil {
		<-s.release
	}

	w.Header().Set("Content-Type", "text/event-stream")
	for _, f := range frames {
		fmt.Fprintf(w, "data: %s\n\n", f)
	}
	fmt.Fprintf(w, "data: %s\n\n", DoneSentinel)
}

func (s *streamServer) lastRequest() StreamRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests[len(s.requests)-1]
}

func newTestSession(t *testing.T, srv *streamServer) (*Session, *score.StateMachine, *CommandLog) {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(srv.handler))
	t.Cleanup(ts.Close)

	client := NewClient(ts.URL)
	machine := score.NewStateMachine()
	commands := NewCommandLog(client, nil)
	return NewSession(client, machine, commands, nil), machine, commands
}

func TestSubmitFullFrameSequence(t *testing.T) {
	srv := &streamServer{frames: []string{
		`{"type":"partial","measures":1,"musicxml":"<truncated"}`,
		`{"type":"partial","measures":3,"musicxml":"<truncated"}`,
		`{"type":"engraving","status":"Polishing notation..."}`,
		`{"type":"complete","musicxml":"<score-partwise/>"}`,
	}}
	session, machine, _ := newTestSession(t, srv)
	machine.SetAuthoritative("<original/>")

	var progress []score.Progress
	machine.OnProgress(func(p score.Progress) { progress = append(progress, p) })

	rec, err := session.Submit(context.Background(), "add a melody", score.SelectionSnapshot{})
	require.NoError(t, err)
	assert.Equal(t, CommandSuccess, rec.Status)

	// The result lands as a reviewable preview over the original.
	assert.Equal(t, score.StatePreviewing, machine.State())
	pending, ok := machine.Pending()
	require.True(t, ok)
	assert.Equal(t, "<score-partwise/>", pending)

	// Progress walked composing(1) -> composing(3) -> engraving -> idle.
	require.NotEmpty(t, progress)
	assert.Equal(t, score.ProgressComposing, progress[0].Kind)
	assert.Equal(t, 1, progress[0].Measures)
	assert.Equal(t, score.ProgressIdle, progress[len(progress)-1].Kind)

	// The request carried the effective document snapshot.
	assert.Equal(t, "<original/>", srv.lastRequest().CurrentScore)
}

func TestSubmitSeedsAuthoritativeWhenEmpty(t *testing.T) {
	srv := &streamServer{frames: []string{
		`{"type":"complete","musicxml":"<first-score/>"}`,
	}}
	session, machine, _ := newTestSession(t, srv)

	_, err := session.Submit(context.Background(), "write something", score.SelectionSnapshot{})
	require.NoError(t, err)

	// First composition on an empty project commits directly.
	assert.Equal(t, score.StateClean, machine.State())
	auth, _ := machine.Authoritative()
	assert.Equal(t, "<first-score/>", auth)
}

func TestSubmitBusyRejection(t *testing.T) {
	srv := &streamServer{
		frames:  []string{`{"type":"complete","musicxml":"<score/>"}`},
		release: make(chan struct{}),
	}
	session, machine, commands := newTestSession(t, srv)
	machine.SetAuthoritative("<original/>")

	done := make(chan error, 1)
	go func() {
		_, err := session.Submit(context.Background(), "slow edit", score.SelectionSnapshot{})
		done <- err
	}()

	// Wait for the first request to reach the server and block there.
	for srv.hits.Load() == 0 {
		time.Sleep(time.Millisecond)
	}

	rec, err := session.Submit(context.Background(), "second edit", score.SelectionSnapshot{})
	assert.ErrorIs(t, err, ErrBusy)
	require.NotNil(t, rec)
	assert.Equal(t, CommandError, rec.Status)
	assert.Equal(t, int32(1), srv.hits.Load(), "rejected submission must not hit the network")

	close(srv.release)
	require.NoError(t, <-done)
	assert.False(t, session.Busy())

	// Both attempts are in the log: one success, one error.
	recs := commands.Records()
	require.Len(t, recs, 2)
}

func TestSubmitEmptyInstruction(t *testing.T) {
	srv := &streamServer{}
	session, _, commands := newTestSession(t, srv)

	rec, err := session.Submit(context.Background(), "   \n\t", score.SelectionSnapshot{})
	assert.ErrorIs(t, err, ErrEmptyInstruction)
	assert.Nil(t, rec)
	assert.Empty(t, commands.Records(), "empty instructions never reach the log")
	assert.Equal(t, int32(0), srv.hits.Load())
}

func TestSubmitMalformedFramesAreSkipped(t *testing.T) {
	srv := &streamServer{frames: []string{
		`{"type":"partial","measures":2}`,
		`this is not json`,
		`{"type":"complete","musicxml":"<score/>"}`,
	}}
	session, machine, _ := newTestSession(t, srv)
	machine.SetAuthoritative("<original/>")

	_, err := session.Submit(context.Background(), "edit", score.SelectionSnapshot{})
	require.NoError(t, err, "malformed frames are tolerated")

	pending, ok := machine.Pending()
	require.True(t, ok)
	assert.Equal(t, "<score/>", pending)
}

func TestSubmitErrorFrameIsFatal(t *testing.T) {
	srv := &streamServer{frames: []string{
		`{"type":"partial","measures":2}`,
		`{"error":"model refused"}`,
		`{"type":"complete","musicxml":"<late/>"}`,
	}}
	session, machine, commands := newTestSession(t, srv)
	machine.SetAuthoritative("<original/>")

	rec, err := session.Submit(context.Background(), "edit", score.SelectionSnapshot{})
	require.Error(t, err)
	assert.Equal(t, "model refused", err.Error())
	assert.Equal(t, CommandError, rec.Status)

	// Frames after the error are never applied.
	_, pending := machine.Pending()
	assert.False(t, pending)
	assert.Equal(t, score.ProgressIdle, machine.Progress().Kind, "progress resets on the error path")
	assert.Equal(t, CommandError, commands.Records()[0].Status)
}

func TestSubmitNoCompleteFrame(t *testing.T) {
	srv := &streamServer{frames: []string{
		`{"type":"text","content":"I can explain, but there is nothing to change."}`,
	}}
	session, machine, _ := newTestSession(t, srv)
	machine.SetAuthoritative("<original/>")

	rec, err := session.Submit(context.Background(), "what key is this in?", score.SelectionSnapshot{})
	assert.ErrorIs(t, err, ErrNoChanges)
	assert.Equal(t, CommandError, rec.Status)
	assert.Equal(t, score.StateClean, machine.State())
}

func TestSubmitLastCompleteFrameWins(t *testing.T) {
	srv := &streamServer{frames: []string{
		`{"type":"complete","musicxml":"<draft/>"}`,
		`{"type":"engraving","status":"Polishing notation..."}`,
		`{"type":"complete","musicxml":"<polished/>"}`,
	}}
	session, machine, _ := newTestSession(t, srv)
	machine.SetAuthoritative("<original/>")

	_, err := session.Submit(context.Background(), "edit", score.SelectionSnapshot{})
	require.NoError(t, err)

	pending, _ := machine.Pending()
	assert.Equal(t, "<polished/>", pending)
}

type rejectingRenderer struct{}

func (rejectingRenderer) Load(ctx context.Context, doc string) error {
	return errors.New("unsupported element")
}
func (rejectingRenderer) MeasureCount() int { return 0 }

func TestSubmitSurfacesFinalDocumentRenderFailure(t *testing.T) {
	srv := &streamServer{frames: []string{
		`{"type":"partial","measures":2}`,
		`{"type":"engraving","status":"Polishing notation..."}`,
		`{"type":"complete","musicxml":"<score-partwise><bad/></score-partwise>"}`,
	}}
	session, machine, _ := newTestSession(t, srv)

	coordinator := score.NewRenderCoordinator(machine, rejectingRenderer{})
	ctx := context.Background()
	machine.OnChange(func(score.ChangeEvent) { coordinator.Observe(ctx) })
	coordinator.SetReady(ctx, true)

	var surfaced error
	coordinator.OnError(func(err error) { surfaced = err })

	machine.SetAuthoritative("<original/>")
	surfaced = nil // the seed document's failure is not under test

	_, err := session.Submit(ctx, "edit", score.SelectionSnapshot{})
	require.NoError(t, err)

	// The stream is over when the preview lands, so its render failure must
	// reach the error callback instead of being treated as transient.
	require.Error(t, surfaced)
	assert.Equal(t, score.ProgressIdle, machine.Progress().Kind)
}

func TestSubmitCarriesSelectionContext(t *testing.T) {
	srv := &streamServer{frames: []string{
		`{"type":"complete","musicxml":"<score/>"}`,
	}}
	session, machine, _ := newTestSession(t, srv)
	machine.SetAuthoritative("<original/>")

	sel := score.SelectionSnapshot{
		Kind:         score.SelectionRange,
		StartMeasure: 5,
		EndMeasure:   8,
		PartID:       "P1",
		Extracted:    "<measures 5-8/>",
		Label:        "m.5-8",
	}
	_, err := session.Submit(context.Background(), "transpose this up a third", sel)
	require.NoError(t, err)

	req := srv.lastRequest()
	require.NotNil(t, req.SelectionInfo)
	assert.Equal(t, 5, req.SelectionInfo.StartMeasure)
	assert.Equal(t, 8, req.SelectionInfo.EndMeasure)
	assert.Equal(t, "P1", req.SelectionInfo.PartID)
	assert.Equal(t, "<measures 5-8/>", req.SelectedMeasures)
}
