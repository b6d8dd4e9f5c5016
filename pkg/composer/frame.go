// Package composer implements the editor-side composition session: it issues
// one streamed edit request at a time to the generation backend and translates
// the frame stream into document state machine calls.
package composer

import "encoding/json"

// Frame types carried in the streamed composition protocol.
const (
	FramePartial   = "partial"
	FrameEngraving = "engraving"
	FrameComplete  = "complete"
	FrameText      = "text"
)

// DoneSentinel is the literal data payload terminating a composition stream.
const DoneSentinel = "[DONE]"

// Frame is one discrete unit of the streamed composition protocol. An Error
// field set on any frame shape is fatal to the request; everything else is
// dispatched by Type.
type Frame struct {
	Type         string          `json:"type,omitempty"`
	Measures     int             `json:"measures,omitempty"`
	MusicXML     string          `json:"musicxml,omitempty"`
	Content      string          `json:"content,omitempty"`
	Status       string          `json:"status,omitempty"`
	Improvements json.RawMessage `json:"improvements,omitempty"`
	Error        string          `json:"error,omitempty"`
}
