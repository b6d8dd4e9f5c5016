// Package sse reads server-sent event streams whose message boundary is a
// blank line. The underlying transport may deliver arbitrary byte chunks that
// split a logical message, so received bytes are buffered until a full
// boundary is observed; leftover buffered content at stream end is delivered
// as a final message.
package sse

import (
	"bytes"
	"io"
	"strings"
)

const readChunkSize = 4096

// Reader yields the data payload of each SSE message in arrival order.
type Reader struct {
	r       io.Reader
	buf     []byte
	pending []string
	chunk   []byte
	eof     bool
}

func NewReader(r io.Reader) *Reader {
	return &Reader{r: r, chunk: make([]byte, readChunkSize)}
}

// Next returns the next message's data payload (the text after the "data:"
// field prefix, multiple data lines joined with newlines). It returns io.EOF
// once the stream is exhausted; any other error is a transport failure.
func (s *Reader) Next() (string, error) {
	for {
		if len(s.pending) > 0 {
			msg := s.pending[0]
			s.pending = s.pending[1:]
			if payload, ok := dataPayload(msg); ok {
				return payload, nil
			}
			// Comment or field-only message; nothing to surface.
			continue
		}
		if s.eof {
			return "", io.EOF
		}

		n, err := s.r.Read(s.chunk)
		if n > 0 {
			s.buf = append(s.buf, s.chunk[:n]...)
			s.splitBuffered()
		}
		if err != nil {
			if err != io.EOF {
				return "", err
			}
			s.eof = true
			// Whatever remains buffered is the final (unterminated) message.
			if rest := strings.TrimSpace(string(s.buf)); rest != "" {
				s.pending = append(s.pending, rest)
			}
			s.buf = nil
		}
	}
}

// splitBuffered moves every terminated message out of the byte buffer,
// retaining the trailing incomplete segment for the next read.
func (s *Reader) splitBuffered() {
	for {
		idx := bytes.Index(s.buf, []byte("\n\n"))
		if idx < 0 {
			return
		}
		msg := strings.TrimSpace(string(s.buf[:idx]))
		s.buf = s.buf[idx+2:]
		if msg != "" {
			s.pending = append(s.pending, msg)
		}
	}
}

// dataPayload extracts the joined data field lines from one raw message.
func dataPayload(msg string) (string, bool) {
	var parts []string
	for _, line := range strings.Split(msg, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.HasPrefix(line, "data:") {
			parts = append(parts, strings.TrimSpace(line[len("data:"):]))
		}
	}
	if len(parts) == 0 {
		return "", false
	}
	return strings.Join(parts, "\n"), true
}
