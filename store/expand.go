package store

import (
	"github.com/jsphweid/chordsheet/model"
	"github.com/jsphweid/chordsheet/util"
)

// ExpandCount is how many empty measures a placement into the measure at
// target appends. Only the last measure of an auto-expanding section
// expands, and never past MaxMeasures; a section already at capacity
// expands by zero without complaint.
func ExpandCount(section model.Section, target int) int {
	n := section.MeasureCount()
	if !section.AutoExpand || n == 0 || target != n-1 {
		return 0
	}
	room := section.AutoExpandCount
	if section.MaxMeasures > 0 {
		room = section.MaxMeasures - n
	}
	return util.Max(0, util.Min(section.AutoExpandCount, room))
}

// capacity is the number of measures that can still be added, -1 for
// sections without a limit.
func capacity(section model.Section) int {
	if section.MaxMeasures <= 0 {
		return -1
	}
	return util.Max(0, section.MaxMeasures-section.MeasureCount())
}

func emptyMeasures(after []model.Measure, count int, newID func() string) []model.Measure {
	next := 1
	if len(after) > 0 {
		next = after[len(after)-1].Number + 1
	}
	res := make([]model.Measure, count)
	for i := range res {
		res[i] = model.Measure{
			ID:       newID(),
			Number:   next + i,
			Elements: []model.MusicElement{},
		}
	}
	return res
}
