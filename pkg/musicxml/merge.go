package musicxml

import (
	"fmt"
	"strconv"

	"github.com/beevik/etree"
)

// Merge folds the parts of newXML into baseXML. Measures are appended when
// insertAt is nil, otherwise inserted before measure insertAt (1-indexed) with
// the following measures renumbered. Parts of newXML with no matching id in
// the base score are ignored.
func Merge(baseXML, newXML string, insertAt *int) (string, error) {
	baseDoc := etree.NewDocument()
	if err := baseDoc.ReadFromString(baseXML); err != nil {
		return "", fmt.Errorf("merge: parse base score: %w", err)
	}
	newDoc := etree.NewDocument()
	if err := newDoc.ReadFromString(newXML); err != nil {
		return "", fmt.Errorf("merge: parse new content: %w", err)
	}
	baseRoot := baseDoc.Root()
	newRoot := newDoc.Root()
	if baseRoot == nil || newRoot == nil {
		return "", fmt.Errorf("merge: empty document")
	}

	for _, newPart := range newRoot.SelectElements("part") {
		partID := newPart.SelectAttrValue("id", "")
		basePart := baseRoot.FindElement(fmt.Sprintf("./part[@id='%s']", partID))
		if basePart == nil {
			continue
		}

		newMeasures := newPart.SelectElements("measure")
		baseMeasures := basePart.SelectElements("measure")

		if insertAt == nil {
			startNum := len(baseMeasures) + 1
			for i, measure := range newMeasures {
				measure.CreateAttr("number", strconv.Itoa(startNum+i))
				basePart.AddChild(measure.Copy())
			}
			continue
		}

		at := *insertAt
		if at < 1 || at > len(baseMeasures)+1 {
			return "", fmt.Errorf("merge: insert position %d out of range", at)
		}
		// Child index of the measure we insert before; measures may be
		// interleaved with other elements.
		insertIdx := len(basePart.ChildElements())
		if at <= len(baseMeasures) {
			insertIdx = baseMeasures[at-1].Index()
		}
		for i, measure := range newMeasures {
			clone := measure.Copy()
			clone.CreateAttr("number", strconv.Itoa(at+i))
			basePart.InsertChildAt(insertIdx+i, clone)
		}
		// Renumber the displaced tail.
		for j, measure := range baseMeasures[at-1:] {
			measure.CreateAttr("number", strconv.Itoa(at+len(newMeasures)+j))
		}
	}

	return serialize(baseDoc)
}

func serialize(doc *etree.Document) (string, error) {
	doc.Indent(2)
	out, err := doc.WriteToString()
	if err != nil {
		return "", fmt.Errorf("serialize score: %w", err)
	}
	if !hasXMLDeclaration(doc) {
		out = `<?xml version="1.0" encoding="UTF-8"?>` + "\n" + out
	}
	return out, nil
}

func hasXMLDeclaration(doc *etree.Document) bool {
	for _, tok := range doc.Child {
		if _, ok := tok.(*etree.ProcInst); ok {
			return true
		}
	}
	return false
}
