// Package layout computes the pixel geometry of a section: how many systems
// it wraps onto, where each system sits and the horizontal extent of every
// measure. Vertical stave metrics come from the Renderer, which knows the
// font and glyph sizes; the engine never invents them.
package layout

import (
	"github.com/pkg/errors"

	"github.com/jsphweid/chordsheet/constants"
	"github.com/jsphweid/chordsheet/logger"
	"github.com/jsphweid/chordsheet/model"
	"github.com/jsphweid/chordsheet/util"
)

var ErrGeometryUnavailable = errors.New("stave geometry unavailable")

// SystemSpec describes one system for the renderer to draw.
type SystemSpec struct {
	Index         int
	MeasureCount  int
	Clef          model.Clef
	TimeSignature string
	KeySignature  string
	// First systems carry the time signature; later ones only clef and key.
	First bool
	Y     float64
	Width float64
}

// StaveMetrics are authoritative pixel positions reported by the renderer.
type StaveMetrics struct {
	TopLineY    float64
	BottomLineY float64
	NoteStartX  float64
	NoteEndX    float64
}

type Renderer interface {
	DrawStave(spec SystemSpec) (StaveMetrics, error)
}

// ChordDrawer is implemented by renderers that can also draw chord glyphs.
type ChordDrawer interface {
	DrawChord(bound model.MeasureBound, chord model.MusicElement, clef model.Clef) error
}

type Engine struct {
	cfg      constants.Layout
	renderer Renderer
	failures logger.Once
}

func New(cfg constants.Layout, r Renderer) *Engine {
	return &Engine{cfg: cfg, renderer: r}
}

func (e *Engine) Config() constants.Layout {
	return e.cfg
}

func (e *Engine) NumSystems(measureCount int) int {
	return util.CeilDiv(measureCount, e.cfg.MeasuresPerSystem)
}

func (e *Engine) TotalHeight(numSystems int) float64 {
	if numSystems == 0 {
		return 0
	}
	n := float64(numSystems)
	return n*e.cfg.SystemHeight + (n-1)*e.cfg.SystemSpacing
}

// Compute never fails: when the renderer cannot report metrics for a
// system the result is Inert and the failure is logged once per section
// revision.
func (e *Engine) Compute(section model.Section, renderWidth float64) model.StaffCoordinates {
	n := section.MeasureCount()
	numSystems := e.NumSystems(n)
	coords := model.StaffCoordinates{
		Measures:      make([]model.MeasureBound, 0, n),
		TotalWidth:    renderWidth,
		TotalHeight:   e.TotalHeight(numSystems),
		NumSystems:    numSystems,
		SystemHeight:  e.cfg.SystemHeight,
		SystemSpacing: e.cfg.SystemSpacing,
	}

	for i := 0; i < numSystems; i++ {
		first := i * e.cfg.MeasuresPerSystem
		count := util.Min(e.cfg.MeasuresPerSystem, n-first)
		spec := SystemSpec{
			Index:         i,
			MeasureCount:  count,
			Clef:          section.Staff.Clef,
			TimeSignature: section.Staff.TimeSignature,
			KeySignature:  section.Staff.KeySignature,
			First:         i == 0,
			Y:             e.cfg.PaddingTop + float64(i)*(e.cfg.SystemHeight+e.cfg.SystemSpacing),
			Width:         renderWidth,
		}

		metrics, err := e.drawStave(spec)
		if err != nil {
			e.failures.Warn(section.ID, section.Revision,
				"section is not interactive",
				"section", section.ID, "revision", section.Revision, "system", i, "err", err)
			coords.Measures = nil
			coords.Inert = true
			return coords
		}

		lineSpacing := (metrics.BottomLineY - metrics.TopLineY) / 4
		if i == 0 {
			coords.LineSpacing = lineSpacing
		}
		width := (metrics.NoteEndX - metrics.NoteStartX) / float64(count)
		for j := 0; j < count; j++ {
			startX := metrics.NoteStartX + float64(j)*width
			coords.Measures = append(coords.Measures, model.MeasureBound{
				StartX:       startX,
				EndX:         startX + width,
				CenterX:      startX + width/2,
				SystemIndex:  i,
				SystemTopY:   spec.Y,
				StaffTopY:    metrics.TopLineY,
				StaffBottomY: metrics.BottomLineY,
				LineSpacing:  lineSpacing,
			})
		}
	}

	return coords
}

func (e *Engine) drawStave(spec SystemSpec) (m StaveMetrics, err error) {
	// renderers backed by foreign drawing code may panic
	defer func() {
		if r := recover(); r != nil {
			err = errors.Wrapf(ErrGeometryUnavailable, "renderer panicked: %v", r)
		}
	}()

	if e.renderer == nil {
		return m, errors.Wrap(ErrGeometryUnavailable, "no renderer")
	}
	m, err = e.renderer.DrawStave(spec)
	if err != nil {
		return m, errors.Wrap(ErrGeometryUnavailable, err.Error())
	}
	if m.BottomLineY <= m.TopLineY || m.NoteEndX <= m.NoteStartX {
		return m, errors.Wrapf(ErrGeometryUnavailable, "degenerate stave metrics %+v", m)
	}
	return m, nil
}

// DrawChords hands every chord of the section to the renderer, if it can
// draw them. Measures without a bound are skipped.
func (e *Engine) DrawChords(section model.Section, coords model.StaffCoordinates) error {
	drawer, ok := e.renderer.(ChordDrawer)
	if !ok || !coords.Interactive() {
		return nil
	}
	for i, m := range section.Staff.Measures {
		if i >= len(coords.Measures) {
			break
		}
		chord, ok := m.Chord()
		if !ok {
			continue
		}
		clef := section.Staff.Clef
		if chord.ClefOverride != nil {
			clef = *chord.ClefOverride
		}
		if err := drawer.DrawChord(coords.Measures[i], chord, clef); err != nil {
			return errors.Wrapf(err, "could not draw chord in measure %d", m.Number)
		}
	}
	return nil
}
