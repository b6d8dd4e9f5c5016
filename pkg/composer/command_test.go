package composer

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandStatusTransitionsOnce(t *testing.T) {
	l := NewCommandLog(nil, nil)

	rec := l.Append("add a melody", "m.2-4")
	assert.Equal(t, CommandPending, rec.Status)
	assert.Equal(t, "m.2-4", rec.SelectionLabel)
	assert.NotZero(t, rec.Id)

	l.MarkError(rec, "boom")
	assert.Equal(t, CommandError, rec.Status)
	assert.Equal(t, "boom", rec.Message)

	// Terminal status never changes again.
	l.MarkSuccess(rec)
	assert.Equal(t, CommandError, rec.Status)
}

func TestClearFiresSingleBackendReset(t *testing.T) {
	var resets atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/chat/v1/reset" {
			resets.Add(1)
		}
	}))
	defer ts.Close()

	l := NewCommandLog(NewClient(ts.URL), nil)
	l.Append("first", "")
	l.Append("second", "")

	l.Clear(context.Background())
	assert.Empty(t, l.Records())

	// The remote reset runs async; it must arrive exactly once.
	deadline := time.Now().Add(2 * time.Second)
	for resets.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	time.Sleep(50 * time.Millisecond)
	require.Equal(t, int32(1), resets.Load())
}
