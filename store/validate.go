package store

import (
	"github.com/pkg/errors"

	"github.com/jsphweid/chordsheet/model"
)

// Validate checks the structural invariants of a section: ordinals are
// contiguous and increasing, the maximum is respected and no measure holds
// more than one chord.
func Validate(sec model.Section) error {
	if sec.MaxMeasures > 0 && sec.MeasureCount() > sec.MaxMeasures {
		return errors.Errorf("section %s has %d measures, maximum is %d", sec.ID, sec.MeasureCount(), sec.MaxMeasures)
	}
	for i, m := range sec.Staff.Measures {
		if i > 0 && m.Number != sec.Staff.Measures[i-1].Number+1 {
			return errors.Errorf("section %s: measure %d follows %d", sec.ID, m.Number, sec.Staff.Measures[i-1].Number)
		}
		chords := 0
		for _, e := range m.Elements {
			if e.Kind == model.ElementChord {
				chords++
			}
		}
		if chords > 1 {
			return errors.Errorf("section %s: measure %d holds %d chords", sec.ID, m.Number, chords)
		}
	}
	return nil
}

func ValidateWorksheet(ws model.Worksheet) error {
	for _, sec := range ws.Sections {
		if err := Validate(sec); err != nil {
			return err
		}
	}
	return nil
}
