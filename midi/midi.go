package midi

import (
	"io"

	"github.com/pkg/errors"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/jsphweid/chordsheet/model"
	"github.com/jsphweid/chordsheet/theory"
)

const (
	ticksPerQuarter = 960
	velocity        = 90
)

// Key converts a pitch to its MIDI key number, C4 being 60.
func Key(p model.Pitch) (uint8, error) {
	k := theory.Semitone(p) + 12
	if k < 0 || k > 127 {
		return 0, errors.Errorf("%s is outside the midi range", p)
	}
	return uint8(k), nil
}

func Keys(pitches []model.Pitch) ([]uint8, error) {
	res := make([]uint8, 0, len(pitches))
	for _, p := range pitches {
		k, err := Key(p)
		if err != nil {
			return nil, err
		}
		res = append(res, k)
	}
	return res, nil
}

// Audition returns the messages that start and stop a chord on channel.
func Audition(channel uint8, pitches []model.Pitch) (on, off []midi.Message, err error) {
	keys, err := Keys(pitches)
	if err != nil {
		return nil, nil, err
	}
	for _, k := range keys {
		on = append(on, midi.NoteOn(channel, k, velocity))
		off = append(off, midi.NoteOff(channel, k))
	}
	return on, off, nil
}

func measureTicks(ts string) (uint32, uint8, uint8, error) {
	beats, unit, err := model.ParseTimeSignature(ts)
	if err != nil {
		return 0, 0, 0, err
	}
	return uint32(beats * ticksPerQuarter * 4 / unit), uint8(beats), uint8(unit), nil
}

// WriteSection writes the chords of a section as a format 1 SMF, one
// chord per measure held for the whole measure. Answer chords are left out
// unless showAnswers is set.
func WriteSection(w io.Writer, sec model.Section, bpm float64, showAnswers bool) error {
	length, beats, unit, err := measureTicks(sec.Staff.TimeSignature)
	if err != nil {
		return err
	}

	s := smf.New()
	s.TimeFormat = smf.MetricTicks(ticksPerQuarter)

	var meta smf.Track
	meta.Add(0, smf.MetaMeter(beats, unit))
	meta.Add(0, smf.MetaTempo(bpm))
	meta.Close(0)
	if err := s.Add(meta); err != nil {
		return errors.Wrap(err, "could not add tempo track")
	}

	var track smf.Track
	var rest uint32
	for _, m := range sec.Staff.Measures {
		chord, ok := m.Chord()
		if !ok || (chord.IsAnswer && !showAnswers) {
			rest += length
			continue
		}
		keys, err := Keys(chord.Pitches)
		if err != nil {
			return errors.Wrapf(err, "measure %d", m.Number)
		}
		for i, k := range keys {
			var delta uint32
			if i == 0 {
				delta = rest
			}
			track.Add(delta, midi.NoteOn(0, k, velocity))
		}
		for i, k := range keys {
			var delta uint32
			if i == 0 {
				delta = length
			}
			track.Add(delta, midi.NoteOff(0, k))
		}
		rest = 0
	}
	track.Close(rest)
	if err := s.Add(track); err != nil {
		return errors.Wrap(err, "could not add chord track")
	}

	_, err = s.WriteTo(w)
	return errors.Wrap(err, "could not write smf")
}
