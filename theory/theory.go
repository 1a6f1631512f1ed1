// Package theory resolves chord definitions into concrete, correctly
// spelled pitches.
package theory

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/jsphweid/chordsheet/geometry"
	"github.com/jsphweid/chordsheet/logger"
	"github.com/jsphweid/chordsheet/model"
)

var ErrUnknownQuality = errors.New("unknown chord quality")

type Voicing struct {
	Pitches     []model.Pitch `json:"pitches"`
	DisplayName string        `json:"displayName"`
}

// Service may block, e.g. when it sits across a process boundary.
type Service interface {
	GenerateChordPitches(ctx context.Context, def model.ChordDefinition, rootOctave int) (Voicing, error)
}

// interval is a chromatic distance from the root plus the scale degree it
// is spelled on, so a diminished fifth is always some kind of fifth.
type interval struct {
	semitones int
	degree    int
}

type quality struct {
	intervals []interval
	suffix    string
	seventh   bool
}

var qualities = map[model.ChordQuality]quality{
	model.QualityMajor:           {[]interval{{0, 1}, {4, 3}, {7, 5}}, "", false},
	model.QualityMinor:           {[]interval{{0, 1}, {3, 3}, {7, 5}}, "m", false},
	model.QualityDiminished:      {[]interval{{0, 1}, {3, 3}, {6, 5}}, "dim", false},
	model.QualityAugmented:       {[]interval{{0, 1}, {4, 3}, {8, 5}}, "aug", false},
	model.QualitySus2:            {[]interval{{0, 1}, {2, 2}, {7, 5}}, "sus2", false},
	model.QualitySus4:            {[]interval{{0, 1}, {5, 4}, {7, 5}}, "sus4", false},
	model.QualityMajor7:          {[]interval{{0, 1}, {4, 3}, {7, 5}, {11, 7}}, "maj7", true},
	model.QualityMinor7:          {[]interval{{0, 1}, {3, 3}, {7, 5}, {10, 7}}, "m7", true},
	model.QualityDominant7:       {[]interval{{0, 1}, {4, 3}, {7, 5}, {10, 7}}, "7", true},
	model.QualityDiminished7:     {[]interval{{0, 1}, {3, 3}, {6, 5}, {9, 7}}, "dim7", true},
	model.QualityHalfDiminished7: {[]interval{{0, 1}, {3, 3}, {6, 5}, {10, 7}}, "ø7", true},
	model.QualityAugmented7:      {[]interval{{0, 1}, {4, 3}, {8, 5}, {10, 7}}, "aug7", true},
}

// Qualities lists the supported qualities in a stable order.
func Qualities() []model.ChordQuality {
	return []model.ChordQuality{
		model.QualityMajor, model.QualityMinor, model.QualityDiminished, model.QualityAugmented,
		model.QualityMajor7, model.QualityMinor7, model.QualityDominant7, model.QualityDiminished7,
		model.QualityHalfDiminished7, model.QualityAugmented7, model.QualitySus2, model.QualitySus4,
	}
}

var naturalSemitones = map[model.Note]int{
	model.NoteC: 0, model.NoteD: 2, model.NoteE: 4, model.NoteF: 5,
	model.NoteG: 7, model.NoteA: 9, model.NoteB: 11,
}

// Semitone is the chromatic height of p counted from C0.
func Semitone(p model.Pitch) int {
	return p.Octave*12 + naturalSemitones[p.Note] + p.Accidental.Semitones()
}

func accidentalFor(diff int) (model.Accidental, error) {
	switch diff {
	case 0:
		return model.AccidentalNone, nil
	case 1:
		return model.AccidentalSharp, nil
	case -1:
		return model.AccidentalFlat, nil
	case 2:
		return model.AccidentalDoubleSharp, nil
	case -2:
		return model.AccidentalDoubleFlat, nil
	}
	return "", errors.Errorf("cannot spell %+d semitones with one accidental", diff)
}

// Local is the in-process implementation.
type Local struct{}

func (Local) GenerateChordPitches(ctx context.Context, def model.ChordDefinition, rootOctave int) (Voicing, error) {
	if err := ctx.Err(); err != nil {
		return Voicing{}, err
	}
	return Generate(def, rootOctave)
}

func Generate(def model.ChordDefinition, rootOctave int) (Voicing, error) {
	q, ok := qualities[def.Quality]
	if !ok {
		return Voicing{}, errors.Wrapf(ErrUnknownQuality, "%q", def.Quality)
	}
	if !def.Root.Valid() {
		return Voicing{}, errors.Errorf("invalid root %q", def.Root)
	}

	rootAcc := def.RootAccidental
	if rootAcc == "" {
		rootAcc = model.AccidentalNone
	}
	root := model.Pitch{Note: def.Root, Accidental: rootAcc, Octave: rootOctave}
	rootSemitone := Semitone(root)

	pitches := make([]model.Pitch, 0, len(q.intervals))
	for _, iv := range q.intervals {
		steps := iv.degree - 1 + 7*(iv.semitones/12)
		natural := geometry.AddDiatonicSteps(model.Pitch{Note: def.Root, Accidental: model.AccidentalNone, Octave: rootOctave}, steps)
		acc, err := accidentalFor(rootSemitone + iv.semitones - Semitone(natural))
		if err != nil {
			return Voicing{}, errors.Wrapf(err, "spelling %s%s", def.RootName(), q.suffix)
		}
		natural.Accidental = acc
		pitches = append(pitches, natural)
	}

	return Voicing{
		Pitches:     invert(pitches, def.Inversion),
		DisplayName: DisplayName(def),
	}, nil
}

// invert drops every tone above the new bass an octave and rotates, which
// keeps the chord in the same register instead of climbing.
func invert(pitches []model.Pitch, inv model.Inversion) []model.Pitch {
	n := len(pitches)
	if n == 0 {
		return pitches
	}
	shifts := inv.Shifts() % n
	if shifts == 0 {
		return pitches
	}
	for i := shifts; i < n; i++ {
		if pitches[i].Octave > model.MinOctave {
			pitches[i].Octave--
		}
	}
	return append(pitches[shifts:], pitches[:shifts]...)
}

func figures(inv model.Inversion, seventh bool) (string, string) {
	switch {
	case inv == model.InversionFirst && !seventh:
		return "6", ""
	case inv == model.InversionSecond && !seventh:
		return "6", "4"
	case inv == model.InversionFirst && seventh:
		return "6", "5"
	case inv == model.InversionSecond && seventh:
		return "4", "3"
	case inv == model.InversionThird && seventh:
		return "4", "2"
	}
	return "", ""
}

// DisplayName formats "root+suffix", adding "|super|sub" figured-bass
// inversion figures when the chord is inverted, e.g. "Cm|6|4".
func DisplayName(def model.ChordDefinition) string {
	q := qualities[def.Quality]
	base := def.RootName() + q.suffix
	sup, sub := figures(def.Inversion, q.seventh)
	if sup == "" && sub == "" {
		return base
	}
	return fmt.Sprintf("%s|%s|%s", base, sup, sub)
}

// Fallback is the degraded voicing used when the service fails: the bare
// root at the requested octave.
func Fallback(def model.ChordDefinition, rootOctave int) Voicing {
	acc := def.RootAccidental
	if acc == "" {
		acc = model.AccidentalNone
	}
	return Voicing{
		Pitches:     []model.Pitch{{Note: def.Root, Accidental: acc, Octave: rootOctave}},
		DisplayName: def.RootName(),
	}
}

// Resolve never fails. A failing or empty answer from svc is logged and
// replaced by Fallback; degraded reports which one was returned.
func Resolve(ctx context.Context, svc Service, def model.ChordDefinition, rootOctave int) (v Voicing, degraded bool) {
	v, err := svc.GenerateChordPitches(ctx, def, rootOctave)
	if err == nil && len(v.Pitches) == 0 {
		err = errors.New("service returned no pitches")
	}
	if err != nil {
		logger.Logger().Warn("chord theory service failed, placing root only",
			"root", def.RootName(), "quality", def.Quality, "octave", rootOctave, "err", err)
		return Fallback(def, rootOctave), true
	}
	return v, false
}

var aliases = map[string]model.ChordQuality{
	"maj": model.QualityMajor, "": model.QualityMajor,
	"min": model.QualityMinor, "m": model.QualityMinor,
	"dim": model.QualityDiminished,
	"aug": model.QualityAugmented, "+": model.QualityAugmented,
	"maj7": model.QualityMajor7,
	"min7": model.QualityMinor7, "m7": model.QualityMinor7,
	"7":    model.QualityDominant7,
	"dim7": model.QualityDiminished7,
	"m7b5": model.QualityHalfDiminished7,
	"aug7": model.QualityAugmented7,
}

// ParseQuality accepts the canonical names and the common suffix aliases.
func ParseQuality(s string) (model.ChordQuality, error) {
	if _, ok := qualities[model.ChordQuality(s)]; ok {
		return model.ChordQuality(s), nil
	}
	if q, ok := aliases[s]; ok {
		return q, nil
	}
	return "", errors.Wrapf(ErrUnknownQuality, "%q", s)
}
