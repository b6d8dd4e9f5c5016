package musicxml

import (
	"fmt"
	"strconv"

	"github.com/beevik/etree"
)

// Extract keeps only measures start..end (1-indexed, inclusive) of every
// part, renumbering the survivors from 1. Used to build the selection
// sub-document sent as composition context.
func Extract(xmlString string, start, end int) (string, error) {
	if start < 1 || end < start {
		return "", fmt.Errorf("extract: invalid measure range %d-%d", start, end)
	}

	doc := etree.NewDocument()
	if err := doc.ReadFromString(xmlString); err != nil {
		return "", fmt.Errorf("extract: parse score: %w", err)
	}
	root := doc.Root()
	if root == nil {
		return "", fmt.Errorf("extract: empty document")
	}

	for _, part := range root.SelectElements("part") {
		for _, measure := range part.SelectElements("measure") {
			num, err := strconv.Atoi(measure.SelectAttrValue("number", ""))
			if err != nil || num < start || num > end {
				part.RemoveChild(measure)
			}
		}
		for i, measure := range part.SelectElements("measure") {
			measure.CreateAttr("number", strconv.Itoa(i+1))
		}
	}

	return serialize(doc)
}
