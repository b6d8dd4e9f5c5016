package dto

import "ai-scorestudio/pkg/musicxml"

// InstrumentDTO defines one instrument for a new score template.
type InstrumentDTO struct {
	ID           string `json:"id" validate:"required"`
	Name         string `json:"name" validate:"required"`
	Abbreviation string `json:"abbreviation,omitempty"`
	MIDIProgram  int    `json:"midi_program,omitempty"`
	Clef         string `json:"clef,omitempty"`
}

type NewScoreRequest struct {
	Title       string          `json:"title,omitempty"`
	Composer    string          `json:"composer,omitempty"`
	Instruments []InstrumentDTO `json:"instruments,omitempty" validate:"dive"`
	TimeBeats   int             `json:"time_beats,omitempty" validate:"omitempty,min=1"`
	TimeType    int             `json:"time_beat_type,omitempty" validate:"omitempty,min=1"`
	KeyFifths   int             `json:"key_fifths,omitempty" validate:"min=-7,max=7"`
	Tempo       int             `json:"tempo,omitempty" validate:"omitempty,min=1"`
	Measures    int             `json:"measures,omitempty" validate:"omitempty,min=1"`
}

type MergeRequest struct {
	BaseXML         string `json:"base_xml" validate:"required"`
	NewXML          string `json:"new_xml" validate:"required"`
	InsertAtMeasure *int   `json:"insert_at_measure,omitempty"`
}

type ExtractRequest struct {
	MusicXML     string `json:"musicxml" validate:"required"`
	StartMeasure int    `json:"start_measure" validate:"min=1"`
	EndMeasure   int    `json:"end_measure" validate:"min=1"`
}

type ValidateRequest struct {
	MusicXML string `json:"musicxml" validate:"required"`
}

type ScoreResponse struct {
	MusicXML string `json:"musicxml"`
}

type ValidateResponse struct {
	Valid bool            `json:"valid"`
	Error string          `json:"error,omitempty"`
	Info  *musicxml.Info  `json:"info,omitempty"`
}
