package placement

import "github.com/jsphweid/chordsheet/model"

// Tool is either SelectTool or PlaceChordTool.
type Tool interface {
	isTool()
}

type SelectTool struct{}

type PlaceChordTool struct {
	Quality model.ChordQuality
	// Answer marks placed chords as answers, hidden until answers are shown.
	Answer bool
}

func (SelectTool) isTool()     {}
func (PlaceChordTool) isTool() {}

type Modifiers struct {
	// QuickPlace skips the chord editor and reuses the last used settings.
	QuickPlace bool `json:"quickPlace"`
}

// ChordSettings are remembered per session and reused by quick-place.
type ChordSettings struct {
	Quality   model.ChordQuality `json:"quality"`
	Inversion model.Inversion    `json:"inversion"`
}

var DefaultSettings = ChordSettings{Quality: model.QualityMajor, Inversion: model.InversionRoot}

// Command is either a PlaceCommand or a SelectCommand.
type Command interface {
	isCommand()
}

// PlaceCommand asks for a chord to be resolved and written into a measure.
// MeasureRevision lets the store reject it if the measure changed before
// the chord was resolved.
type PlaceCommand struct {
	SectionID       string                `json:"sectionId"`
	MeasureID       string                `json:"measureId"`
	MeasureIndex    int                   `json:"measureIndex"`
	MeasureRevision uint64                `json:"measureRevision"`
	Definition      model.ChordDefinition `json:"definition"`
	Octave          int                   `json:"octave"`
	ClefOverride    *model.Clef           `json:"clefOverride,omitempty"`
	IsAnswer        bool                  `json:"isAnswer"`
	OpenEditor      bool                  `json:"openEditor"`
	Replace         bool                  `json:"replace"`
}

type SelectCommand struct {
	SectionID string `json:"sectionId"`
	MeasureID string `json:"measureId"`
	ElementID string `json:"elementId"`
}

func (PlaceCommand) isCommand()  {}
func (SelectCommand) isCommand() {}
