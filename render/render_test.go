package render

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsphweid/chordsheet/constants"
	"github.com/jsphweid/chordsheet/layout"
	"github.com/jsphweid/chordsheet/model"
)

func TestKeyAccidentals(t *testing.T) {
	assert := assert.New(t)
	for key, want := range map[string]int{"C": 0, "G": 1, "Bb": -2, "F#m": 3, "Dm": -1, "": 0} {
		n, err := KeyAccidentals(key)
		assert.NoError(err, key)
		assert.Equal(want, n, key)
	}
	_, err := KeyAccidentals("H")
	assert.Error(err)
}

func TestMetrics(t *testing.T) {
	cfg := constants.Default().Stave
	m, err := NewMetrics(cfg)
	require.NoError(t, err)

	later, err := m.DrawStave(layout.SystemSpec{Index: 1, MeasureCount: 4, KeySignature: "G", TimeSignature: "4/4", Y: 160, Width: 800})
	require.NoError(t, err)

	assert := assert.New(t)
	assert.Equal(200.0, later.TopLineY)
	assert.Equal(240.0, later.BottomLineY)
	assert.Equal(58.0, later.NoteStartX)
	assert.Equal(790.0, later.NoteEndX)

	first, err := m.DrawStave(layout.SystemSpec{MeasureCount: 4, KeySignature: "G", TimeSignature: "4/4", First: true, Width: 800})
	require.NoError(t, err)
	assert.Greater(first.NoteStartX, later.NoteStartX)
	assert.Equal(40.0, first.TopLineY)
}

func TestMetricsRejectBadSignatures(t *testing.T) {
	m, err := NewMetrics(constants.Default().Stave)
	require.NoError(t, err)

	_, err = m.DrawStave(layout.SystemSpec{KeySignature: "Q", TimeSignature: "4/4", First: true, Width: 800})
	assert.Error(t, err)
	_, err = m.DrawStave(layout.SystemSpec{KeySignature: "C", TimeSignature: "four", First: true, Width: 800})
	assert.Error(t, err)
}

func TestBadKeyMakesLayoutInert(t *testing.T) {
	cfg := constants.Default()
	m, err := NewMetrics(cfg.Stave)
	require.NoError(t, err)

	sec := model.Section{ID: "s", Staff: model.Staff{Clef: model.ClefTreble, KeySignature: "Q", TimeSignature: "4/4"}}
	sec.Staff.Measures = []model.Measure{{ID: "m1", Number: 1}}
	coords := layout.New(cfg.Layout, m).Compute(sec, 800)
	assert.True(t, coords.Inert)
}

func TestCanvasEncodesStave(t *testing.T) {
	cfg := constants.Default()
	canvas, err := NewCanvas(cfg, 800, 300, true)
	require.NoError(t, err)
	defer canvas.Close()

	f5 := model.Pitch{Note: model.NoteF, Accidental: model.AccidentalNone, Octave: 5}
	c6 := model.Pitch{Note: model.NoteC, Accidental: model.AccidentalSharp, Octave: 6}
	sec := model.Section{ID: "s", Staff: model.Staff{Clef: model.ClefTreble, KeySignature: "F", TimeSignature: "3/4"}}
	for i := 1; i <= 5; i++ {
		sec.Staff.Measures = append(sec.Staff.Measures, model.Measure{ID: string(rune('a' + i)), Number: i})
	}
	sec.Staff.Measures[0].Elements = []model.MusicElement{{
		ID: "e", Kind: model.ElementChord, Pitches: []model.Pitch{f5, c6}, DisplayName: "F", IsAnswer: true,
	}}

	engine := layout.New(cfg.Layout, canvas)
	coords := engine.Compute(sec, 800)
	require.False(t, coords.Inert)
	require.NoError(t, engine.DrawChords(sec, coords))

	var buf bytes.Buffer
	require.NoError(t, canvas.EncodePNG(&buf))
	img, err := png.Decode(&buf)
	require.NoError(t, err)

	assert := assert.New(t)
	assert.Equal(800, img.Bounds().Dx())
	assert.Equal(300, img.Bounds().Dy())
	assert.Equal(2, coords.NumSystems)
}

func TestNewCanvasRejectsEmptySize(t *testing.T) {
	_, err := NewCanvas(constants.Default(), 0, 10, false)
	assert.Error(t, err)
}

func TestPlaceholderGreysCanvas(t *testing.T) {
	canvas, err := NewCanvas(constants.Default(), 200, 100, false)
	require.NoError(t, err)
	defer canvas.Close()
	canvas.DrawPlaceholder("unavailable")

	var buf bytes.Buffer
	require.NoError(t, canvas.EncodePNG(&buf))
	img, err := png.Decode(&buf)
	require.NoError(t, err)

	r, g, b, _ := img.At(0, 0).RGBA()
	assert := assert.New(t)
	assert.Less(r, uint32(0xffff))
	assert.Equal(r, g)
	assert.Equal(g, b)
}
