package model

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

type Clef string

const (
	ClefTreble Clef = "treble"
	ClefBass   Clef = "bass"
	ClefAlto   Clef = "alto"
	ClefTenor  Clef = "tenor"
	// ClefBoth picks the clef per chord through ClefOverride.
	ClefBoth Clef = "both"
)

type ElementKind string

const (
	ElementChord ElementKind = "chord"
	ElementNote  ElementKind = "note"
	ElementRest  ElementKind = "rest"
)

type MusicElement struct {
	ID           string           `json:"id"`
	Kind         ElementKind      `json:"kind"`
	Pitches      []Pitch          `json:"pitches,omitempty"`
	Duration     Duration         `json:"duration"`
	Definition   *ChordDefinition `json:"definition,omitempty"`
	DisplayName  string           `json:"displayName,omitempty"`
	ClefOverride *Clef            `json:"clefOverride,omitempty"`
	IsAnswer     bool             `json:"isAnswer,omitempty"`
}

type Measure struct {
	ID       string         `json:"id"`
	Number   int            `json:"number"`
	Elements []MusicElement `json:"elements"`

	// Revision is bumped on every edit of this measure.
	Revision uint64 `json:"revision"`
}

// Chord returns the measure's chord element, if any.
func (m Measure) Chord() (MusicElement, bool) {
	for _, e := range m.Elements {
		if e.Kind == ElementChord {
			return e, true
		}
	}
	return MusicElement{}, false
}

type Staff struct {
	ID            string    `json:"id"`
	Clef          Clef      `json:"clef"`
	TimeSignature string    `json:"timeSignature"`
	KeySignature  string    `json:"keySignature"`
	Measures      []Measure `json:"measures"`
}

type Section struct {
	ID              string `json:"id"`
	Title           string `json:"title,omitempty"`
	Instructions    string `json:"instructions,omitempty"`
	Staff           Staff  `json:"staff"`
	AutoExpand      bool   `json:"autoExpand"`
	AutoExpandCount int    `json:"autoExpandCount"`
	MaxMeasures     int    `json:"maxMeasures"`

	// Revision is the document version of this section.
	Revision uint64 `json:"revision"`
}

func (s Section) MeasureCount() int {
	return len(s.Staff.Measures)
}

// MeasureIndex returns the position of the measure with id, or -1.
func (s Section) MeasureIndex(id string) int {
	for i, m := range s.Staff.Measures {
		if m.ID == id {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy safe to hand out as a snapshot.
func (s Section) Clone() Section {
	res := s
	res.Staff.Measures = make([]Measure, len(s.Staff.Measures))
	for i, m := range s.Staff.Measures {
		res.Staff.Measures[i] = m.clone()
	}
	return res
}

func (m Measure) clone() Measure {
	res := m
	res.Elements = make([]MusicElement, len(m.Elements))
	for i, e := range m.Elements {
		c := e
		c.Pitches = append([]Pitch(nil), e.Pitches...)
		if e.Definition != nil {
			d := *e.Definition
			c.Definition = &d
		}
		if e.ClefOverride != nil {
			cl := *e.ClefOverride
			c.ClefOverride = &cl
		}
		res.Elements[i] = c
	}
	return res
}

type Worksheet struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Subtitle    string    `json:"subtitle,omitempty"`
	Sections    []Section `json:"sections"`
	ShowAnswers bool      `json:"showAnswers"`
}

// ParseTimeSignature accepts "n/d" with a power-of-two denominator.
func ParseTimeSignature(ts string) (beats, unit int, err error) {
	parts := strings.Split(strings.TrimSpace(ts), "/")
	if len(parts) != 2 {
		return 0, 0, errors.Errorf("malformed time signature %q", ts)
	}
	beats, err = strconv.Atoi(parts[0])
	if err != nil || beats < 1 {
		return 0, 0, errors.Errorf("malformed time signature %q", ts)
	}
	unit, err = strconv.Atoi(parts[1])
	if err != nil || unit < 1 || unit&(unit-1) != 0 {
		return 0, 0, errors.Errorf("malformed time signature %q", ts)
	}
	return beats, unit, nil
}
