package musicxml

import (
	"fmt"
	"strconv"

	"github.com/beevik/etree"
)

// Part defines one instrument for a new score template.
type Part struct {
	ID           string
	Name         string
	Abbreviation string
	MIDIProgram  int
	Clef         string
}

// TemplateOptions configure NewScore. Zero values fall back to a 4-measure
// 4/4 piano score in C at 120 BPM.
type TemplateOptions struct {
	Title     string
	Composer  string
	Parts     []Part
	TimeBeats int
	TimeType  int
	KeyFifths int
	Tempo     int
	Measures  int
}

func (o *TemplateOptions) applyDefaults() {
	if o.Title == "" {
		o.Title = "Untitled"
	}
	if len(o.Parts) == 0 {
		o.Parts = []Part{{ID: "P1", Name: "Piano", Abbreviation: "Pno.", Clef: "G"}}
	}
	if o.TimeBeats == 0 {
		o.TimeBeats = 4
	}
	if o.TimeType == 0 {
		o.TimeType = 4
	}
	if o.Tempo == 0 {
		o.Tempo = 120
	}
	if o.Measures == 0 {
		o.Measures = 4
	}
}

// clefInfo maps a clef shorthand to its MusicXML sign and line.
func clefInfo(clef string) (string, string) {
	switch clef {
	case "F":
		return "F", "4" // bass
	case "C":
		return "C", "3" // alto
	case "C4":
		return "C", "4" // tenor
	case "percussion":
		return "percussion", "2"
	default:
		return "G", "2" // treble
	}
}

// NewScore builds an empty rest-filled MusicXML score template.
func NewScore(opts TemplateOptions) (string, error) {
	opts.applyDefaults()

	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	doc.CreateDirective(Doctype[2 : len(Doctype)-1])

	root := doc.CreateElement("score-partwise")
	root.CreateAttr("version", "4.0")

	work := root.CreateElement("work")
	work.CreateElement("work-title").SetText(opts.Title)

	if opts.Composer != "" {
		identification := root.CreateElement("identification")
		creator := identification.CreateElement("creator")
		creator.CreateAttr("type", "composer")
		creator.SetText(opts.Composer)
	}

	partList := root.CreateElement("part-list")
	for _, p := range opts.Parts {
		scorePart := partList.CreateElement("score-part")
		scorePart.CreateAttr("id", p.ID)
		scorePart.CreateElement("part-name").SetText(p.Name)
		if p.Abbreviation != "" {
			scorePart.CreateElement("part-abbreviation").SetText(p.Abbreviation)
		}

		instrumentID := p.ID + "-I1"
		scoreInstrument := scorePart.CreateElement("score-instrument")
		scoreInstrument.CreateAttr("id", instrumentID)
		scoreInstrument.CreateElement("instrument-name").SetText(p.Name)

		midiInstrument := scorePart.CreateElement("midi-instrument")
		midiInstrument.CreateAttr("id", instrumentID)
		midiInstrument.CreateElement("midi-channel").SetText("1")
		// MIDI programs are 1-indexed in MusicXML.
		midiInstrument.CreateElement("midi-program").SetText(strconv.Itoa(p.MIDIProgram + 1))
	}

	for partIdx, p := range opts.Parts {
		part := root.CreateElement("part")
		part.CreateAttr("id", p.ID)
		clefSign, clefLine := clefInfo(p.Clef)

		for m := 1; m <= opts.Measures; m++ {
			measure := part.CreateElement("measure")
			measure.CreateAttr("number", strconv.Itoa(m))

			if m == 1 {
				attributes := measure.CreateElement("attributes")
				attributes.CreateElement("divisions").SetText("1")

				key := attributes.CreateElement("key")
				key.CreateElement("fifths").SetText(strconv.Itoa(opts.KeyFifths))

				timeEl := attributes.CreateElement("time")
				timeEl.CreateElement("beats").SetText(strconv.Itoa(opts.TimeBeats))
				timeEl.CreateElement("beat-type").SetText(strconv.Itoa(opts.TimeType))

				clef := attributes.CreateElement("clef")
				clef.CreateElement("sign").SetText(clefSign)
				clef.CreateElement("line").SetText(clefLine)

				// Tempo direction on the first part only.
				if partIdx == 0 {
					direction := measure.CreateElement("direction")
					direction.CreateAttr("placement", "above")
					directionType := direction.CreateElement("direction-type")
					metronome := directionType.CreateElement("metronome")
					metronome.CreateElement("beat-unit").SetText("quarter")
					metronome.CreateElement("per-minute").SetText(strconv.Itoa(opts.Tempo))
					sound := direction.CreateElement("sound")
					sound.CreateAttr("tempo", strconv.Itoa(opts.Tempo))
				}
			}

			// Fill the measure with quarter rests.
			for beat := 0; beat < opts.TimeBeats; beat++ {
				note := measure.CreateElement("note")
				note.CreateElement("rest")
				note.CreateElement("duration").SetText("1")
				note.CreateElement("type").SetText("quarter")
			}
		}
	}

	doc.Indent(2)
	out, err := doc.WriteToString()
	if err != nil {
		return "", fmt.Errorf("serialize score template: %w", err)
	}
	return out, nil
}
