package musicxml

import (
	"regexp"
	"strings"

	"github.com/beevik/etree"
)

var (
	musicxmlBlockRe = regexp.MustCompile("(?s)```musicxml\\s*(.*?)\\s*```")
	xmlBlockRe      = regexp.MustCompile("(?s)```xml\\s*(.*?)\\s*```")
	scoreStartRe    = regexp.MustCompile("(?s)(<score-partwise[^>]*>.*)")
)

// ExtractBlock pulls a complete MusicXML document out of a model response's
// fenced code block. A plain ```xml block is accepted only when it actually
// contains a score root.
func ExtractBlock(text string) (string, bool) {
	if m := musicxmlBlockRe.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1]), true
	}
	if m := xmlBlockRe.FindStringSubmatch(text); m != nil {
		content := strings.TrimSpace(m[1])
		if strings.Contains(content, "<score-partwise") || strings.Contains(content, "<score-timewise") {
			return content, true
		}
	}
	return "", false
}

// CompletePartial tries to turn accumulated, still-streaming model output
// into a well-formed score for measure counting: it requires a complete
// part-list and at least one closed measure, truncates to the last closed
// measure, closes any open parts and the score root, and verifies the result
// parses. Returns the completed document, its measure count, and whether a
// usable partial exists.
func CompletePartial(text string) (string, int, bool) {
	if !strings.Contains(text, "<score-partwise") {
		return "", 0, false
	}
	// The renderer needs the full part-list before anything else.
	if !strings.Contains(text, "</part-list>") {
		return "", 0, false
	}
	if !strings.Contains(text, "</measure>") {
		return "", 0, false
	}

	m := scoreStartRe.FindStringSubmatch(text)
	if m == nil {
		return "", 0, false
	}
	partial := m[1]

	lastMeasureEnd := strings.LastIndex(partial, "</measure>")
	if lastMeasureEnd == -1 {
		return "", 0, false
	}
	partial = partial[:lastMeasureEnd+len("</measure>")]

	openParts := strings.Count(partial, "<part ") + strings.Count(partial, "<part>") - strings.Count(partial, "</part>")
	for i := 0; i < openParts; i++ {
		partial += "\n  </part>"
	}
	partial += "\n</score-partwise>"

	if !strings.HasPrefix(partial, "<?xml") {
		partial = `<?xml version="1.0" encoding="UTF-8"?>` + "\n" + partial
	}

	check := etree.NewDocument()
	if err := check.ReadFromString(partial); err != nil {
		return "", 0, false
	}

	return partial, strings.Count(partial, "</measure>"), true
}
