package layout

import (
	"bytes"
	"fmt"
	"log/slog"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/jsphweid/chordsheet/constants"
	"github.com/jsphweid/chordsheet/logger"
	"github.com/jsphweid/chordsheet/model"
)

type fixedRenderer struct {
	calls []SystemSpec
	fail  int
}

func (r *fixedRenderer) DrawStave(spec SystemSpec) (StaveMetrics, error) {
	r.calls = append(r.calls, spec)
	if r.fail > 0 && spec.Index == r.fail-1 {
		return StaveMetrics{}, errors.New("draw call threw")
	}
	start := 50.0
	if spec.First {
		start = 80
	}
	return StaveMetrics{
		TopLineY:    spec.Y + 40,
		BottomLineY: spec.Y + 80,
		NoteStartX:  start,
		NoteEndX:    spec.Width - 10,
	}, nil
}

type panicRenderer struct{}

func (panicRenderer) DrawStave(SystemSpec) (StaveMetrics, error) {
	panic("font not loaded")
}

func section(n int) model.Section {
	s := model.Section{ID: "s1", Staff: model.Staff{Clef: model.ClefTreble, TimeSignature: "4/4"}}
	for i := 0; i < n; i++ {
		s.Staff.Measures = append(s.Staff.Measures, model.Measure{ID: fmt.Sprintf("m%d", i), Number: i + 1})
	}
	return s
}

func engine(r Renderer) *Engine {
	return New(constants.Default().Layout, r)
}

func TestEmptySectionIsRenderable(t *testing.T) {
	coords := engine(&fixedRenderer{}).Compute(section(0), 800)

	assert := assert.New(t)
	assert.Equal(0, coords.NumSystems)
	assert.Equal(0.0, coords.TotalHeight)
	assert.Empty(coords.Measures)
	assert.False(coords.Inert)
	assert.False(coords.Interactive())
}

func TestMeasureCountInvariant(t *testing.T) {
	for n := 1; n <= 13; n++ {
		t.Run(fmt.Sprint(n), func(t *testing.T) {
			coords := engine(&fixedRenderer{}).Compute(section(n), 800)
			assert := assert.New(t)
			assert.Equal((n+3)/4, coords.NumSystems)
			assert.Len(coords.Measures, n)
			for i, b := range coords.Measures {
				assert.Equal(i/4, b.SystemIndex)
			}
		})
	}
}

func TestSystemGeometry(t *testing.T) {
	r := &fixedRenderer{}
	coords := engine(r).Compute(section(6), 800)

	assert := assert.New(t)
	assert.Equal(2, coords.NumSystems)
	assert.Equal(2*120.0+40, coords.TotalHeight)
	assert.Equal(800.0, coords.TotalWidth)
	assert.Equal(10.0, coords.LineSpacing)

	assert.Len(r.calls, 2)
	assert.True(r.calls[0].First)
	assert.False(r.calls[1].First)
	assert.Equal(4, r.calls[0].MeasureCount)
	assert.Equal(2, r.calls[1].MeasureCount)
	assert.Equal(160.0, r.calls[1].Y)

	// first system: (790-80)/4, second system: (790-50)/2
	first, last := coords.Measures[0], coords.Measures[5]
	assert.Equal(80.0, first.StartX)
	assert.Equal(80+177.5, first.EndX)
	assert.Equal(80+177.5/2, first.CenterX)
	assert.Equal(50+370.0, last.StartX)
	assert.Equal(790.0, last.EndX)
	assert.Equal(160.0, last.SystemTopY)
	assert.Equal(200.0, last.StaffTopY)
	assert.Equal(240.0, last.StaffBottomY)
}

func TestComputeIsDeterministic(t *testing.T) {
	e := engine(&fixedRenderer{})
	assert.Equal(t, e.Compute(section(9), 640), e.Compute(section(9), 640))
}

func TestRendererFailureMakesSectionInert(t *testing.T) {
	var buf bytes.Buffer
	logger.SetLogger(slog.New(slog.NewTextHandler(&buf, nil)))
	defer logger.SetLogger(nil)

	e := engine(&fixedRenderer{fail: 2})
	s := section(8)
	coords := e.Compute(s, 800)
	e.Compute(s, 800)

	assert := assert.New(t)
	assert.True(coords.Inert)
	assert.Empty(coords.Measures)
	assert.False(coords.Interactive())
	assert.Equal(1, strings.Count(buf.String(), "section is not interactive"))

	s.Revision++
	e.Compute(s, 800)
	assert.Equal(2, strings.Count(buf.String(), "section is not interactive"))
}

func TestRendererPanicIsRecovered(t *testing.T) {
	coords := engine(panicRenderer{}).Compute(section(2), 800)
	assert.True(t, coords.Inert)
}

func TestNilRenderer(t *testing.T) {
	e := engine(nil)
	_, err := e.drawStave(SystemSpec{})
	assert.True(t, errors.Is(err, ErrGeometryUnavailable))
}

type recordingDrawer struct {
	fixedRenderer
	drawn []string
}

func (r *recordingDrawer) DrawChord(b model.MeasureBound, chord model.MusicElement, clef model.Clef) error {
	r.drawn = append(r.drawn, fmt.Sprintf("%s/%s/%d", chord.DisplayName, clef, b.SystemIndex))
	return nil
}

func TestDrawChords(t *testing.T) {
	s := section(5)
	bass := model.ClefBass
	s.Staff.Measures[1].Elements = []model.MusicElement{{Kind: model.ElementChord, DisplayName: "C"}}
	s.Staff.Measures[4].Elements = []model.MusicElement{{Kind: model.ElementChord, DisplayName: "Dm", ClefOverride: &bass}}

	r := &recordingDrawer{}
	e := engine(r)
	assert.NoError(t, e.DrawChords(s, e.Compute(s, 800)))
	assert.Equal(t, []string{"C/treble/0", "Dm/bass/1"}, r.drawn)
}
