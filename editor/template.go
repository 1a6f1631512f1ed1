package editor

import (
	"context"

	"github.com/pkg/errors"

	"github.com/jsphweid/chordsheet/model"
	"github.com/jsphweid/chordsheet/store"
	"github.com/jsphweid/chordsheet/theory"
)

const (
	chordNamingTitle        = "Chord Identification"
	chordNamingInstructions = "Identify the following chords"
)

// ChordNaming adds a section holding one chord per measure. Chords flagged
// as answers stay hidden until answers are shown.
func (e *Editor) ChordNaming(ctx context.Context, req model.ChordNamingRequest) (model.Section, error) {
	if len(req.Chords) == 0 {
		return model.Section{}, errors.New("chord naming section needs at least one chord")
	}
	if req.Title == "" {
		req.Title = chordNamingTitle
	}
	if req.Instructions == "" {
		req.Instructions = chordNamingInstructions
	}

	voicings := make([]theory.Voicing, len(req.Chords))
	for i, c := range req.Chords {
		v, err := e.theory.GenerateChordPitches(ctx, c.Definition, c.Octave)
		if err != nil {
			return model.Section{}, errors.Wrapf(err, "chord %d", i+1)
		}
		voicings[i] = v
	}

	sec, err := e.store.AddSection(store.SectionOptions{
		Title:        req.Title,
		Instructions: req.Instructions,
		Clef:         req.Clef,
		KeySignature: req.KeySignature,
		Measures:     len(req.Chords),
		MaxMeasures:  len(req.Chords),
	})
	if err != nil {
		return sec, err
	}

	for i, c := range req.Chords {
		m := sec.Staff.Measures[i]
		res, err := e.store.PlaceChord(store.Placement{
			SectionID:       sec.ID,
			MeasureID:       m.ID,
			MeasureRevision: m.Revision,
			Definition:      c.Definition,
			Pitches:         voicings[i].Pitches,
			DisplayName:     voicings[i].DisplayName,
			IsAnswer:        c.IsAnswer,
		})
		if err != nil {
			return sec, errors.Wrapf(err, "chord %d", i+1)
		}
		sec = res.Section
	}
	return sec, nil
}
