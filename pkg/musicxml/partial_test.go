package musicxml

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractBlock(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
		ok   bool
	}{
		{
			name: "musicxml fence",
			text: "Here you go:\n```musicxml\n<score-partwise/>\n```",
			want: "<score-partwise/>",
			ok:   true,
		},
		{
			name: "xml fence with score root",
			text: "```xml\n<score-partwise version=\"4.0\"/>\n```",
			want: `<score-partwise version="4.0"/>`,
			ok:   true,
		},
		{
			name: "xml fence without score root",
			text: "```xml\n<config/>\n```",
			ok:   false,
		},
		{
			name: "no fence",
			text: "Just prose, no code.",
			ok:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractBlock(tt.text)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

const streamedPrefix = "Sure, here is the piece:\n```musicxml\n" +
	`<score-partwise version="4.0">
  <part-list>
    <score-part id="P1"><part-name>Piano</part-name></score-part>
  </part-list>
  <part id="P1">
    <measure number="1"><note><rest/><duration>4</duration></note></measure>
    <measure number="2"><note><rest/><duration>4</duration></note></measure>
    <measure number="3"><note><rest/>`

func TestCompletePartialClosesOpenDocument(t *testing.T) {
	completed, measures, ok := CompletePartial(streamedPrefix)
	require.True(t, ok)
	assert.Equal(t, 2, measures, "the open third measure is truncated")

	// The completed document must actually parse and validate.
	require.NoError(t, Validate(completed))
}

func TestCompletePartialRequiresPartList(t *testing.T) {
	text := `<score-partwise version="4.0">
  <part-list>
    <score-part id="P1">`
	_, _, ok := CompletePartial(text)
	assert.False(t, ok, "unusable until the part-list is closed")
}

func TestCompletePartialRequiresClosedMeasure(t *testing.T) {
	text := `<score-partwise version="4.0">
  <part-list><score-part id="P1"/></part-list>
  <part id="P1">
    <measure number="1"><note>`
	_, _, ok := CompletePartial(text)
	assert.False(t, ok)
}

func TestCompletePartialNoScoreRoot(t *testing.T) {
	_, _, ok := CompletePartial("Thinking about the melody...")
	assert.False(t, ok)
}

func TestCompletePartialGrowsWithStream(t *testing.T) {
	// Simulate the same buffer observed at two points in the stream.
	_, early, ok := CompletePartial(streamedPrefix)
	require.True(t, ok)

	longer := streamedPrefix + `<duration>4</duration></note></measure>`
	_, later, ok := CompletePartial(longer)
	require.True(t, ok)
	assert.Greater(t, later, early)
}
