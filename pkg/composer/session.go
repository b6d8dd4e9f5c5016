package composer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"sync/atomic"

	"ai-scorestudio/pkg/score"
	"ai-scorestudio/pkg/sse"
)

var (
	// ErrBusy rejects a submission while another request is in flight.
	ErrBusy = errors.New("a composition is already in progress")

	// ErrEmptyInstruction rejects whitespace-only instructions before any
	// request is made.
	ErrEmptyInstruction = errors.New("instruction is empty")

	// ErrNoChanges reports a stream that completed without a complete frame.
	ErrNoChanges = errors.New("no score changes generated")
)

// transportFailureMessage annotates commands that failed before or during
// transport, without a semantic error from the backend.
const transportFailureMessage = "Failed to process command"

// Session runs at most one outstanding edit request against the backend and
// translates its frame stream into state machine calls.
type Session struct {
	client   *Client
	machine  *score.StateMachine
	commands *CommandLog
	logger   *log.Logger
	inFlight atomic.Bool
}

func NewSession(client *Client, machine *score.StateMachine, commands *CommandLog, logger *log.Logger) *Session {
	return &Session{
		client:   client,
		machine:  machine,
		commands: commands,
		logger:   logger,
	}
}

// Busy reports whether a request is currently outstanding.
func (s *Session) Busy() bool {
	return s.inFlight.Load()
}

// Submit issues one edit request. It snapshots the effective document and the
// selection at call time, streams the backend's frames, and installs the
// resulting document as the pending preview. Progress is reset to Idle on
// every exit path. A second Submit while one is outstanding fails fast with
// ErrBusy; the first request keeps streaming.
func (s *Session) Submit(ctx context.Context, instruction string, sel score.SelectionSnapshot) (*CommandRecord, error) {
	instruction = strings.TrimSpace(instruction)
	if instruction == "" {
		return nil, ErrEmptyInstruction
	}

	if !s.inFlight.CompareAndSwap(false, true) {
		rec := s.commands.Append(instruction, sel.Label)
		s.commands.MarkError(rec, ErrBusy.Error())
		return rec, ErrBusy
	}
	defer s.inFlight.Store(false)
	defer s.machine.SetProgress(score.Idle)

	rec := s.commands.Append(instruction, sel.Label)

	req := StreamRequest{Message: instruction}
	if doc, ok := s.machine.EffectiveDocument(); ok {
		req.CurrentScore = doc
	}
	if sel.Active() {
		req.SelectionInfo = &SelectionInfo{
			StartMeasure: sel.StartMeasure,
			EndMeasure:   sel.EndMeasure,
			PartID:       sel.PartID,
		}
		req.SelectedMeasures = sel.Extracted
	}

	body, err := s.client.Stream(ctx, req)
	if err != nil {
		s.commands.MarkError(rec, transportFailureMessage)
		return rec, fmt.Errorf("%s: %w", transportFailureMessage, err)
	}
	defer body.Close()

	finalDoc, err := s.consume(body)
	if err != nil {
		s.commands.MarkError(rec, err.Error())
		return rec, err
	}
	if finalDoc == "" {
		s.commands.MarkError(rec, ErrNoChanges.Error())
		return rec, ErrNoChanges
	}

	// First composition on an empty project seeds the authoritative score;
	// afterwards every result lands as a reviewable preview. The Idle hint
	// rides the same transition, so a render failure on the final document is
	// surfaced rather than swallowed as mid-stream invalidity.
	if _, ok := s.machine.Authoritative(); !ok {
		s.machine.SetProgress(score.Idle)
		s.machine.SetAuthoritative(finalDoc)
	} else if err := s.machine.SetPending(finalDoc, score.Idle); err != nil {
		s.commands.MarkError(rec, err.Error())
		return rec, err
	}

	s.commands.MarkSuccess(rec)
	return rec, nil
}

// consume processes frames in arrival order until the done sentinel or
// end-of-stream, returning the last complete document seen. Unparseable
// frames are logged and skipped; an explicit error field is fatal.
func (s *Session) consume(body io.Reader) (string, error) {
	reader := sse.NewReader(body)
	finalDoc := ""
	for {
		payload, err := reader.Next()
		if err == io.EOF {
			return finalDoc, nil
		}
		if err != nil {
			return "", fmt.Errorf("%s: %w", transportFailureMessage, err)
		}
		if payload == DoneSentinel {
			return finalDoc, nil
		}

		var frame Frame
		if err := json.Unmarshal([]byte(payload), &frame); err != nil {
			if s.logger != nil {
				s.logger.Printf("skipping malformed frame: %v", err)
			}
			continue
		}
		if frame.Error != "" {
			return "", errors.New(frame.Error)
		}

		switch frame.Type {
		case FramePartial:
			// Partial documents are structurally unusable by the renderer;
			// only the measure count feeds progress.
			if frame.Measures >= 1 {
				s.machine.SetProgress(score.ComposingMeasures(frame.Measures))
			}
		case FrameEngraving:
			s.machine.SetProgress(score.Engraving)
		case FrameComplete:
			// Last complete frame wins; commit happens after the stream ends.
			if frame.MusicXML != "" {
				finalDoc = frame.MusicXML
			}
		case FrameText:
			// Narration tokens; nothing to apply.
		default:
			if s.logger != nil {
				s.logger.Printf("skipping unknown frame type %q", frame.Type)
			}
		}
	}
}
