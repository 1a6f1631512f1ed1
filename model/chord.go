package model

import (
	"fmt"
	"strings"
)

type Note string

const (
	NoteC Note = "c"
	NoteD Note = "d"
	NoteE Note = "e"
	NoteF Note = "f"
	NoteG Note = "g"
	NoteA Note = "a"
	NoteB Note = "b"
)

// Notes is the diatonic cycle, starting at c.
var Notes = [7]Note{NoteC, NoteD, NoteE, NoteF, NoteG, NoteA, NoteB}

// Index returns the position of n in the diatonic cycle, or -1.
func (n Note) Index() int {
	for i, v := range Notes {
		if v == n {
			return i
		}
	}
	return -1
}

func (n Note) Valid() bool {
	return n.Index() >= 0
}

type Accidental string

const (
	AccidentalNone        Accidental = "none"
	AccidentalSharp       Accidental = "sharp"
	AccidentalFlat        Accidental = "flat"
	AccidentalNatural     Accidental = "natural"
	AccidentalDoubleSharp Accidental = "double-sharp"
	AccidentalDoubleFlat  Accidental = "double-flat"
)

// Semitones is the chromatic offset the accidental applies.
func (a Accidental) Semitones() int {
	switch a {
	case AccidentalSharp:
		return 1
	case AccidentalFlat:
		return -1
	case AccidentalDoubleSharp:
		return 2
	case AccidentalDoubleFlat:
		return -2
	}
	return 0
}

// Suffix is the literal spelling used in chord names ("#", "b").
func (a Accidental) Suffix() string {
	switch a {
	case AccidentalSharp:
		return "#"
	case AccidentalFlat:
		return "b"
	case AccidentalDoubleSharp:
		return "##"
	case AccidentalDoubleFlat:
		return "bb"
	}
	return ""
}

const (
	MinOctave = 0
	MaxOctave = 8
)

// Pitch is a value type; compare with ==.
type Pitch struct {
	Note       Note       `json:"note"`
	Accidental Accidental `json:"accidental"`
	Octave     int        `json:"octave"`
}

func (p Pitch) String() string {
	return fmt.Sprintf("%s%s%d", strings.ToUpper(string(p.Note)), p.Accidental.Suffix(), p.Octave)
}

type Duration struct {
	Value int `json:"value"`
	Dots  int `json:"dots"`
}

var WholeNote = Duration{Value: 1}

func (d Duration) Valid() bool {
	switch d.Value {
	case 1, 2, 4, 8, 16, 32:
		return d.Dots >= 0 && d.Dots <= 2
	}
	return false
}

type ChordQuality string

const (
	QualityMajor           ChordQuality = "major"
	QualityMinor           ChordQuality = "minor"
	QualityDiminished      ChordQuality = "diminished"
	QualityAugmented       ChordQuality = "augmented"
	QualityMajor7          ChordQuality = "major7"
	QualityMinor7          ChordQuality = "minor7"
	QualityDominant7       ChordQuality = "dominant7"
	QualityDiminished7     ChordQuality = "diminished7"
	QualityHalfDiminished7 ChordQuality = "half-diminished7"
	QualityAugmented7      ChordQuality = "augmented7"
	QualitySus2            ChordQuality = "sus2"
	QualitySus4            ChordQuality = "sus4"
)

type Inversion string

const (
	InversionRoot   Inversion = "root"
	InversionFirst  Inversion = "first"
	InversionSecond Inversion = "second"
	InversionThird  Inversion = "third"
)

// Shifts is how many chord tones move from the bottom to the top.
func (i Inversion) Shifts() int {
	switch i {
	case InversionFirst:
		return 1
	case InversionSecond:
		return 2
	case InversionThird:
		return 3
	}
	return 0
}

type ChordDefinition struct {
	Root           Note         `json:"root"`
	RootAccidental Accidental   `json:"rootAccidental"`
	Quality        ChordQuality `json:"quality"`
	Inversion      Inversion    `json:"inversion"`
}

// RootName is the root spelled for display, e.g. "Bb".
func (c ChordDefinition) RootName() string {
	return strings.ToUpper(string(c.Root)) + c.RootAccidental.Suffix()
}
