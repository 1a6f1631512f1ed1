package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jsphweid/chordsheet/model"
)

func TestAnalyze(t *testing.T) {
	minor := model.ChordDefinition{Root: model.NoteA, Quality: model.QualityMinor}
	major := model.ChordDefinition{Root: model.NoteC, Quality: model.QualityMajor}
	sec := model.Section{ID: "s", MaxMeasures: 3}
	sec.Staff.Measures = []model.Measure{
		{Number: 1, Elements: []model.MusicElement{{Kind: model.ElementChord, Definition: &minor}}},
		{Number: 2, Elements: []model.MusicElement{{Kind: model.ElementChord, Definition: &major, IsAnswer: true}}},
		{Number: 3},
	}
	r := analyze(model.Worksheet{Sections: []model.Section{sec, {ID: "empty"}}})

	assert := assert.New(t)
	assert.Equal(2, r.numSections)
	assert.Equal(3, r.numMeasures)
	assert.Equal(1, r.numEmpty)
	assert.Equal(2, r.numChords)
	assert.Equal(1, r.numAnswers)
	assert.Equal(1, r.atCapacity)
	assert.Equal(map[model.ChordQuality]int{model.QualityMinor: 1, model.QualityMajor: 1}, r.qualities)
}

func TestFindSection(t *testing.T) {
	ws := model.Worksheet{Sections: []model.Section{{ID: "a"}, {ID: "b"}}}

	assert := assert.New(t)
	sec, err := findSection(ws, "b")
	assert.NoError(err)
	assert.Equal("b", sec.ID)
	sec, err = findSection(ws, "")
	assert.NoError(err)
	assert.Equal("a", sec.ID)
	_, err = findSection(ws, "z")
	assert.Error(err)
}
