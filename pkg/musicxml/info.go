package musicxml

import (
	"fmt"
	"strconv"

	"github.com/beevik/etree"
)

// PartInfo describes one instrument part of a score.
type PartInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Info is the metadata extracted from a score document.
type Info struct {
	Title         string     `json:"title,omitempty"`
	Composer      string     `json:"composer,omitempty"`
	Parts         []PartInfo `json:"parts"`
	Measures      int        `json:"measures"`
	Key           string     `json:"key,omitempty"`
	TimeSignature string     `json:"time_signature,omitempty"`
}

// ParseInfo extracts basic information from a MusicXML score.
func ParseInfo(xmlString string) (*Info, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromString(xmlString); err != nil {
		return nil, fmt.Errorf("parse score: %w", err)
	}
	root := doc.Root()
	if root == nil {
		return nil, fmt.Errorf("parse score: empty document")
	}

	info := &Info{Parts: []PartInfo{}}

	if el := root.FindElement("//work-title"); el != nil {
		info.Title = el.Text()
	}
	if el := root.FindElement(`//creator[@type='composer']`); el != nil {
		info.Composer = el.Text()
	}

	for _, sp := range root.FindElements("//score-part") {
		name := "Unnamed"
		if el := sp.SelectElement("part-name"); el != nil {
			name = el.Text()
		}
		info.Parts = append(info.Parts, PartInfo{
			ID:   sp.SelectAttrValue("id", ""),
			Name: name,
		})
	}

	if part := root.SelectElement("part"); part != nil {
		info.Measures = len(part.SelectElements("measure"))
	}

	if first := root.FindElement("//measure"); first != nil {
		if el := first.FindElement(".//fifths"); el != nil {
			if fifths, err := strconv.Atoi(el.Text()); err == nil {
				info.Key = FifthsToKey(fifths, "major")
			}
		}
		if timeEl := first.FindElement(".//time"); timeEl != nil {
			beats := timeEl.SelectElement("beats")
			beatType := timeEl.SelectElement("beat-type")
			if beats != nil && beatType != nil {
				info.TimeSignature = beats.Text() + "/" + beatType.Text()
			}
		}
	}

	return info, nil
}

var (
	majorKeys = []string{"C", "G", "D", "A", "E", "B", "F#", "C#",
		"F", "Bb", "Eb", "Ab", "Db", "Gb", "Cb"}
	minorKeys = []string{"a", "e", "b", "f#", "c#", "g#", "d#", "a#",
		"d", "g", "c", "f", "bb", "eb", "ab"}
)

// FifthsToKey converts a circle-of-fifths value to a key name. Positive
// values walk the sharp side, negative the flat side.
func FifthsToKey(fifths int, mode string) string {
	keys := majorKeys
	if mode == "minor" {
		keys = minorKeys
	}

	if fifths >= 0 {
		if fifths < 8 {
			return keys[fifths]
		}
		return keys[0]
	}
	if idx := 8 - fifths; idx < len(keys) {
		return keys[idx]
	}
	return keys[8]
}
