// Package musicxml provides structural validation, inspection, templating and
// editing helpers for MusicXML score documents.
package musicxml

import (
	"fmt"
	"strings"

	"github.com/beevik/etree"
)

// Doctype is the MusicXML 4.0 partwise document type declaration some
// renderers require.
const Doctype = `<!DOCTYPE score-partwise PUBLIC "-//Recordare//DTD MusicXML 4.0 Partwise//EN" "http://www.musicxml.org/dtds/partwise.dtd">`

// Validate checks that a document is structurally usable by a notation
// renderer: parseable XML, a score root, a part-list, and at least one part
// with at least one measure. Returns nil when valid.
func Validate(xmlString string) error {
	doc := etree.NewDocument()
	if err := doc.ReadFromString(xmlString); err != nil {
		return fmt.Errorf("xml syntax error: %w", err)
	}

	root := doc.Root()
	if root == nil {
		return fmt.Errorf("empty document")
	}
	if root.Tag != "score-partwise" && root.Tag != "score-timewise" {
		return fmt.Errorf("invalid root element: %s, expected score-partwise or score-timewise", root.Tag)
	}

	if root.SelectElement("part-list") == nil {
		return fmt.Errorf("missing required <part-list> element")
	}

	parts := root.SelectElements("part")
	if len(parts) == 0 {
		return fmt.Errorf("no <part> elements found")
	}

	for _, part := range parts {
		if len(part.SelectElements("measure")) == 0 {
			id := part.SelectAttrValue("id", "unknown")
			return fmt.Errorf("part %q has no measures", id)
		}
	}

	return nil
}

// QuickFix applies cheap programmatic repairs that need no AI pass: a missing
// XML declaration and a missing DOCTYPE.
func QuickFix(xmlString string) string {
	fixed := strings.TrimSpace(xmlString)
	if !strings.HasPrefix(fixed, "<?xml") {
		fixed = `<?xml version="1.0" encoding="UTF-8"?>` + "\n" + fixed
	}
	if !strings.Contains(fixed, "<!DOCTYPE") && strings.Contains(fixed, "<score-partwise") {
		fixed = strings.Replace(fixed, "<score-partwise", Doctype+"\n<score-partwise", 1)
	}
	return fixed
}
