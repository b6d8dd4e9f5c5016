package dto

// SelectionInfoDTO carries the user's measure-range selection context.
type SelectionInfoDTO struct {
	StartMeasure int    `json:"start_measure" validate:"min=1"`
	EndMeasure   int    `json:"end_measure" validate:"min=1"`
	PartID       string `json:"part_id,omitempty"`
}

type ChatRequest struct {
	Message          string            `json:"message" validate:"required"`
	CurrentScore     string            `json:"current_score,omitempty"`
	SelectedMeasures string            `json:"selected_measures,omitempty"`
	SelectionInfo    *SelectionInfoDTO `json:"selection_info,omitempty"`
}

type ChatResponse struct {
	Text            string `json:"text"`
	MusicXML        string `json:"musicxml,omitempty"`
	Valid           *bool  `json:"valid,omitempty"`
	ValidationError string `json:"validation_error,omitempty"`
}

// GenerateRequest describes a passage to generate from scratch. Zero values
// fall back to 4 measures of 4/4 in C.
type GenerateRequest struct {
	Description  string `json:"description" validate:"required"`
	Key          string `json:"key,omitempty"`
	TimeBeats    int    `json:"time_beats,omitempty" validate:"omitempty,min=1"`
	TimeBeatType int    `json:"time_beat_type,omitempty" validate:"omitempty,min=1"`
	Measures     int    `json:"measures,omitempty" validate:"omitempty,min=1"`
}

type AnalyzeRequest struct {
	MusicXML string `json:"musicxml" validate:"required"`
}

type AnalyzeResponse struct {
	Analysis string `json:"analysis"`
}
