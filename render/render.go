// Package render draws staves with the gg software rasterizer and reports
// the stave metrics the layout engine builds on.
package render

import (
	"io"
	"math"
	"strconv"
	"sync"

	"github.com/gogpu/gg"
	"github.com/gogpu/gg/text"
	"github.com/pkg/errors"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/jsphweid/chordsheet/constants"
	"github.com/jsphweid/chordsheet/geometry"
	"github.com/jsphweid/chordsheet/layout"
	"github.com/jsphweid/chordsheet/model"
	"github.com/jsphweid/chordsheet/util"
)

var (
	fontOnce   sync.Once
	fontSource *text.FontSource
	fontErr    error
)

func loadFont() (*text.FontSource, error) {
	fontOnce.Do(func() {
		fontSource, fontErr = text.NewFontSource(goregular.TTF)
	})
	return fontSource, fontErr
}

// Metrics measures staves without drawing them.
type Metrics struct {
	cfg  constants.Stave
	face text.Face
}

func NewMetrics(cfg constants.Stave) (*Metrics, error) {
	src, err := loadFont()
	if err != nil {
		return nil, errors.Wrap(err, "could not load stave font")
	}
	return &Metrics{cfg: cfg, face: src.Face(cfg.FontSize)}, nil
}

func (m *Metrics) timeSignatureWidth(ts string) (float64, error) {
	beats, unit, err := model.ParseTimeSignature(ts)
	if err != nil {
		return 0, err
	}
	top, _ := text.Measure(strconv.Itoa(beats), m.face)
	bottom, _ := text.Measure(strconv.Itoa(unit), m.face)
	return math.Max(top, bottom) + m.cfg.KeyAccidentalWidth, nil
}

func (m *Metrics) DrawStave(spec layout.SystemSpec) (layout.StaveMetrics, error) {
	if spec.Width <= 0 {
		return layout.StaveMetrics{}, errors.Errorf("render width %v", spec.Width)
	}
	accidentals, err := KeyAccidentals(spec.KeySignature)
	if err != nil {
		return layout.StaveMetrics{}, err
	}

	top := spec.Y + m.cfg.TopOffset
	start := m.cfg.LeftMargin + m.cfg.ClefWidth + float64(util.Abs(accidentals))*m.cfg.KeyAccidentalWidth
	if spec.First {
		w, err := m.timeSignatureWidth(spec.TimeSignature)
		if err != nil {
			return layout.StaveMetrics{}, err
		}
		start += w
	}
	return layout.StaveMetrics{
		TopLineY:    top,
		BottomLineY: top + 4*m.cfg.LineSpacing,
		NoteStartX:  start,
		NoteEndX:    spec.Width - m.cfg.RightMargin,
	}, nil
}

var clefLabels = map[model.Clef]string{
	model.ClefTreble: "G",
	model.ClefBass:   "F",
	model.ClefAlto:   "C",
	model.ClefTenor:  "C",
	model.ClefBoth:   "G",
}

// Canvas draws staves and chords onto a raster while reporting the same
// metrics as Metrics.
type Canvas struct {
	*Metrics
	dc           *gg.Context
	chordOffsetX float64
	showAnswers  bool
}

func NewCanvas(cfg constants.Config, width, height int, showAnswers bool) (*Canvas, error) {
	if width <= 0 || height <= 0 {
		return nil, errors.Errorf("invalid canvas size %dx%d", width, height)
	}
	m, err := NewMetrics(cfg.Stave)
	if err != nil {
		return nil, err
	}
	dc := gg.NewContext(width, height)
	dc.ClearWithColor(gg.White)
	dc.SetFont(m.face)
	return &Canvas{Metrics: m, dc: dc, chordOffsetX: cfg.Layout.ChordOffsetX, showAnswers: showAnswers}, nil
}

func (c *Canvas) stroke() error {
	return errors.Wrap(c.dc.Stroke(), "stroke failed")
}

func (c *Canvas) DrawStave(spec layout.SystemSpec) (layout.StaveMetrics, error) {
	sm, err := c.Metrics.DrawStave(spec)
	if err != nil {
		return sm, err
	}

	c.dc.SetColor(gg.Black)
	c.dc.SetLineWidth(1)
	for i := 0; i < 5; i++ {
		y := sm.TopLineY + float64(i)*c.cfg.LineSpacing
		c.dc.DrawLine(c.cfg.LeftMargin, y, sm.NoteEndX, y)
	}
	c.dc.DrawLine(c.cfg.LeftMargin, sm.TopLineY, c.cfg.LeftMargin, sm.BottomLineY)
	if spec.MeasureCount > 0 {
		width := (sm.NoteEndX - sm.NoteStartX) / float64(spec.MeasureCount)
		for j := 1; j <= spec.MeasureCount; j++ {
			x := sm.NoteStartX + float64(j)*width
			c.dc.DrawLine(x, sm.TopLineY, x, sm.BottomLineY)
		}
	}
	if err := c.stroke(); err != nil {
		return sm, err
	}

	mid := sm.TopLineY + 2*c.cfg.LineSpacing
	c.dc.DrawStringAnchored(clefLabels[spec.Clef], c.cfg.LeftMargin+c.cfg.ClefWidth/2, mid, 0.5, 0.5)

	accidentals, _ := KeyAccidentals(spec.KeySignature)
	symbol := "#"
	if accidentals < 0 {
		symbol = "b"
	}
	x := c.cfg.LeftMargin + c.cfg.ClefWidth
	for i := 0; i < util.Abs(accidentals); i++ {
		c.dc.DrawString(symbol, x, sm.TopLineY+c.cfg.LineSpacing)
		x += c.cfg.KeyAccidentalWidth
	}

	if spec.First {
		beats, unit, _ := model.ParseTimeSignature(spec.TimeSignature)
		c.dc.DrawString(strconv.Itoa(beats), x, sm.TopLineY+2*c.cfg.LineSpacing)
		c.dc.DrawString(strconv.Itoa(unit), x, sm.BottomLineY)
	}
	return sm, nil
}

// DrawPlaceholder greys out the whole canvas and centres msg on it. It
// stands in for a section whose staves could not be laid out.
func (c *Canvas) DrawPlaceholder(msg string) {
	c.dc.ClearWithColor(gg.RGB(0.9, 0.9, 0.9))
	c.dc.SetColor(gg.RGB(0.4, 0.4, 0.4))
	c.dc.DrawStringAnchored(msg, float64(c.dc.Width())/2, float64(c.dc.Height())/2, 0.5, 0.5)
}

// DrawChord draws note heads, ledger lines and the chord label. Answer
// chords are skipped unless the canvas shows answers.
func (c *Canvas) DrawChord(b model.MeasureBound, chord model.MusicElement, clef model.Clef) error {
	if chord.IsAnswer && !c.showAnswers {
		return nil
	}
	half := b.LineSpacing / 2
	x := b.StartX + c.chordOffsetX + half
	c.dc.SetColor(gg.Black)

	for _, p := range chord.Pitches {
		pos := geometry.PitchToPosition(p, clef)
		y := b.StaffTopY + float64(pos)*half
		for _, l := range geometry.LedgerLines(pos) {
			ly := b.StaffTopY + float64(l)*half
			c.dc.DrawLine(x-b.LineSpacing, ly, x+b.LineSpacing, ly)
		}
		if err := c.stroke(); err != nil {
			return err
		}
		c.dc.DrawEllipse(x, y, half*1.3, half*0.9)
		if err := errors.Wrap(c.dc.Fill(), "fill failed"); err != nil {
			return err
		}
		if s := p.Accidental.Suffix(); s != "" {
			c.dc.DrawStringAnchored(s, x-b.LineSpacing*1.5, y, 1, 0.5)
		}
	}

	if chord.DisplayName != "" {
		c.dc.DrawStringAnchored(chord.DisplayName, b.StartX+c.chordOffsetX, b.StaffTopY-2*b.LineSpacing, 0, 0)
	}
	return nil
}

func (c *Canvas) EncodePNG(w io.Writer) error {
	return errors.Wrap(c.dc.EncodePNG(w), "could not encode stave")
}

func (c *Canvas) Close() error {
	return c.dc.Close()
}
