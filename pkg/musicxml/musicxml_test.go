package musicxml

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildScore(t *testing.T, opts TemplateOptions) string {
	t.Helper()
	xml, err := NewScore(opts)
	require.NoError(t, err)
	return xml
}

func TestNewScoreDefaults(t *testing.T) {
	xml := buildScore(t, TemplateOptions{})

	require.NoError(t, Validate(xml))
	assert.Contains(t, xml, "<?xml")
	assert.Contains(t, xml, "DOCTYPE score-partwise")

	info, err := ParseInfo(xml)
	require.NoError(t, err)
	assert.Equal(t, "Untitled", info.Title)
	assert.Equal(t, 4, info.Measures)
	assert.Equal(t, "4/4", info.TimeSignature)
	assert.Equal(t, "C", info.Key)
	require.Len(t, info.Parts, 1)
	assert.Equal(t, "P1", info.Parts[0].ID)
	assert.Equal(t, "Piano", info.Parts[0].Name)
}

func TestNewScoreMultiPart(t *testing.T) {
	xml := buildScore(t, TemplateOptions{
		Title:    "Duet",
		Composer: "Anon",
		Parts: []Part{
			{ID: "P1", Name: "Violin", Clef: "G"},
			{ID: "P2", Name: "Cello", Clef: "F"},
		},
		TimeBeats: 3,
		TimeType:  4,
		Measures:  8,
		Tempo:     90,
	})

	require.NoError(t, Validate(xml))
	info, err := ParseInfo(xml)
	require.NoError(t, err)
	assert.Equal(t, "Duet", info.Title)
	assert.Equal(t, "Anon", info.Composer)
	assert.Equal(t, 8, info.Measures)
	assert.Equal(t, "3/4", info.TimeSignature)
	require.Len(t, info.Parts, 2)
	assert.Equal(t, "Cello", info.Parts[1].Name)

	// Tempo direction only on the first part.
	assert.Equal(t, 1, strings.Count(xml, "<metronome>"))
}

func TestValidateRejectsBrokenDocuments(t *testing.T) {
	tests := []struct {
		name string
		xml  string
		want string
	}{
		{
			name: "not xml",
			xml:  "this is not xml <",
			want: "xml syntax error",
		},
		{
			name: "wrong root",
			xml:  "<html><body/></html>",
			want: "invalid root element",
		},
		{
			name: "missing part-list",
			xml:  `<score-partwise><part id="P1"><measure number="1"/></part></score-partwise>`,
			want: "part-list",
		},
		{
			name: "no parts",
			xml:  `<score-partwise><part-list/></score-partwise>`,
			want: "no <part> elements",
		},
		{
			name: "part without measures",
			xml:  `<score-partwise><part-list/><part id="P1"/></score-partwise>`,
			want: `part "P1" has no measures`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.xml)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestQuickFixAddsDeclarationAndDoctype(t *testing.T) {
	bare := `<score-partwise><part-list/><part id="P1"><measure number="1"/></part></score-partwise>`
	fixed := QuickFix(bare)
	assert.True(t, strings.HasPrefix(fixed, "<?xml"))
	assert.Contains(t, fixed, "<!DOCTYPE score-partwise")

	// Already well-formed input passes through unchanged.
	assert.Equal(t, fixed, QuickFix(fixed))
}

func TestMergeAppendsAndRenumbers(t *testing.T) {
	base := buildScore(t, TemplateOptions{Measures: 2})
	add := buildScore(t, TemplateOptions{Measures: 3})

	merged, err := Merge(base, add, nil)
	require.NoError(t, err)
	require.NoError(t, Validate(merged))

	info, err := ParseInfo(merged)
	require.NoError(t, err)
	assert.Equal(t, 5, info.Measures)
	assert.Contains(t, merged, `number="5"`)
}

func TestMergeInsertsAtPosition(t *testing.T) {
	base := buildScore(t, TemplateOptions{Measures: 4})
	add := buildScore(t, TemplateOptions{Measures: 2})

	at := 2
	merged, err := Merge(base, add, &at)
	require.NoError(t, err)

	info, err := ParseInfo(merged)
	require.NoError(t, err)
	assert.Equal(t, 6, info.Measures)
	assert.Contains(t, merged, `number="6"`)
}

func TestMergeRejectsOutOfRangeInsert(t *testing.T) {
	base := buildScore(t, TemplateOptions{Measures: 2})
	add := buildScore(t, TemplateOptions{Measures: 1})

	at := 9
	_, err := Merge(base, add, &at)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of range")
}

func TestMergeIgnoresUnknownParts(t *testing.T) {
	base := buildScore(t, TemplateOptions{Measures: 2})
	add := buildScore(t, TemplateOptions{
		Parts:    []Part{{ID: "P9", Name: "Tuba"}},
		Measures: 3,
	})

	merged, err := Merge(base, add, nil)
	require.NoError(t, err)

	info, err := ParseInfo(merged)
	require.NoError(t, err)
	assert.Equal(t, 2, info.Measures, "parts absent from the base score are dropped")
}

func TestExtractMeasureRange(t *testing.T) {
	xml := buildScore(t, TemplateOptions{Measures: 8})

	sub, err := Extract(xml, 3, 5)
	require.NoError(t, err)

	info, err := ParseInfo(sub)
	require.NoError(t, err)
	assert.Equal(t, 3, info.Measures)
	assert.Contains(t, sub, `number="1"`)
	assert.NotContains(t, sub, `number="7"`)
}

func TestExtractInvalidRange(t *testing.T) {
	xml := buildScore(t, TemplateOptions{Measures: 4})

	_, err := Extract(xml, 0, 2)
	assert.Error(t, err)
	_, err = Extract(xml, 3, 2)
	assert.Error(t, err)
}

func TestFifthsToKey(t *testing.T) {
	assert.Equal(t, "C", FifthsToKey(0, "major"))
	assert.Equal(t, "G", FifthsToKey(1, "major"))
	assert.Equal(t, "D", FifthsToKey(2, "major"))
	assert.Equal(t, "a", FifthsToKey(0, "minor"))
	assert.Equal(t, "e", FifthsToKey(1, "minor"))
	// Out of range values clamp instead of panicking.
	assert.Equal(t, "C", FifthsToKey(12, "major"))
	assert.Equal(t, "F", FifthsToKey(-7, "major"))
}
