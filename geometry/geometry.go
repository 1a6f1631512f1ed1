// Package geometry maps staff positions to pitches for each clef.
//
// Staff position 0 is the top line of a five-line staff and every +1 is one
// diatonic step down, so the bottom line is position 8 and ledger lines
// continue past either end.
package geometry

import (
	"github.com/jsphweid/chordsheet/model"
	"github.com/jsphweid/chordsheet/util"
)

// Reference is the pitch sitting on the top line of a clef.
type Reference struct {
	Note   model.Note
	Octave int
}

var references = map[model.Clef]Reference{
	model.ClefTreble: {model.NoteF, 5},
	model.ClefBass:   {model.NoteA, 3},
	model.ClefAlto:   {model.NoteG, 4},
	model.ClefTenor:  {model.NoteA, 4},
}

// ReferenceForClef falls back to treble for ClefBoth and unknown clefs.
func ReferenceForClef(clef model.Clef) Reference {
	if ref, ok := references[clef]; ok {
		return ref
	}
	return references[model.ClefTreble]
}

func (r Reference) absolute() int {
	return r.Octave*7 + r.Note.Index()
}

func absolute(p model.Pitch) int {
	return p.Octave*7 + p.Note.Index()
}

func fromAbsolute(abs int, accidental model.Accidental) model.Pitch {
	octave := util.FloorDiv(abs, 7)
	note := model.Notes[util.FloorMod(abs, 7)]
	return model.Pitch{
		Note:       note,
		Accidental: accidental,
		Octave:     util.Clamp(octave, model.MinOctave, model.MaxOctave),
	}
}

// PositionToPitch never infers an accidental.
func PositionToPitch(position int, clef model.Clef) model.Pitch {
	abs := ReferenceForClef(clef).absolute() - position
	return fromAbsolute(abs, model.AccidentalNone)
}

// PitchToPosition ignores the accidental; sharps and flats share a line.
func PitchToPosition(p model.Pitch, clef model.Clef) int {
	return ReferenceForClef(clef).absolute() - absolute(p)
}

// AddDiatonicSteps walks the letter cycle, keeping the accidental.
func AddDiatonicSteps(p model.Pitch, steps int) model.Pitch {
	return fromAbsolute(absolute(p)+steps, p.Accidental)
}

// Middle line of the staff.
const CenterPosition = 4

// LedgerLines returns the ledger line positions needed to draw a note at
// position, ordered away from the staff. Empty for positions on the staff.
func LedgerLines(position int) []int {
	var res []int
	for p := -2; p >= position; p -= 2 {
		res = append(res, p)
	}
	for p := 10; p <= position; p += 2 {
		res = append(res, p)
	}
	return res
}
