package sse

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chunkReader delivers its segments one per Read call, regardless of the
// caller's buffer size, to simulate arbitrary transport chunking.
type chunkReader struct {
	chunks []string
	pos    int
}

func (c *chunkReader) Read(p []byte) (int, error) {
	if c.pos >= len(c.chunks) {
		return 0, io.EOF
	}
	n := copy(p, c.chunks[c.pos])
	c.pos++
	return n, nil
}

func drain(t *testing.T, r *Reader) []string {
	t.Helper()
	var out []string
	for {
		msg, err := r.Next()
		if err == io.EOF {
			return out
		}
		require.NoError(t, err)
		out = append(out, msg)
	}
}

func TestReaderSingleMessage(t *testing.T) {
	r := NewReader(strings.NewReader("data: {\"type\":\"text\"}\n\n"))
	msgs := drain(t, r)
	assert.Equal(t, []string{`{"type":"text"}`}, msgs)
}

func TestReaderMessageSplitAcrossChunks(t *testing.T) {
	r := NewReader(&chunkReader{chunks: []string{
		"data: {\"type\":\"com",
		"plete\",\"musicxml\":\"<score/>\"}\n\n",
	}})
	msgs := drain(t, r)
	require.Len(t, msgs, 1)
	assert.Equal(t, `{"type":"complete","musicxml":"<score/>"}`, msgs[0])
}

func TestReaderMultipleMessagesInOneChunk(t *testing.T) {
	r := NewReader(strings.NewReader("data: one\n\ndata: two\n\ndata: [DONE]\n\n"))
	msgs := drain(t, r)
	assert.Equal(t, []string{"one", "two", "[DONE]"}, msgs)
}

func TestReaderBoundarySplitAcrossChunks(t *testing.T) {
	r := NewReader(&chunkReader{chunks: []string{
		"data: first\n",
		"\ndata: second\n\n",
	}})
	msgs := drain(t, r)
	assert.Equal(t, []string{"first", "second"}, msgs)
}

func TestReaderUnterminatedFinalMessage(t *testing.T) {
	r := NewReader(strings.NewReader("data: first\n\ndata: trailing"))
	msgs := drain(t, r)
	assert.Equal(t, []string{"first", "trailing"}, msgs)
}

func TestReaderMultipleDataLinesJoined(t *testing.T) {
	r := NewReader(strings.NewReader("data: line1\ndata: line2\n\n"))
	msgs := drain(t, r)
	assert.Equal(t, []string{"line1\nline2"}, msgs)
}

func TestReaderSkipsCommentsAndEmptyMessages(t *testing.T) {
	r := NewReader(strings.NewReader(": keepalive\n\n\n\ndata: real\n\n"))
	msgs := drain(t, r)
	assert.Equal(t, []string{"real"}, msgs)
}

func TestReaderCRLFTolerance(t *testing.T) {
	r := NewReader(strings.NewReader("data: payload\r\n\ndata: next\n\n"))
	msgs := drain(t, r)
	assert.Contains(t, msgs, "payload")
	assert.Contains(t, msgs, "next")
}

func TestReaderEmptyStream(t *testing.T) {
	r := NewReader(strings.NewReader(""))
	_, err := r.Next()
	assert.Equal(t, io.EOF, err)
}
