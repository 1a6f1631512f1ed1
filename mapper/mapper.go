// Package mapper translates between pointer coordinates on screen and
// musical positions on a laid-out staff.
//
// Three coordinate spaces are involved: screen pixels (the space pointer
// events and element rects are reported in), the logical space the layout
// engine computed StaffCoordinates in, and the host element's local space
// used to position overlays. The renderer may draw at a different physical
// size than its logical space, so screen and logical differ by a scale.
package mapper

import (
	"math"

	"github.com/gogpu/gg"

	"github.com/jsphweid/chordsheet/geometry"
	"github.com/jsphweid/chordsheet/model"
	"github.com/jsphweid/chordsheet/util"
)

type Rect struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Viewport holds the on-screen rects of the host element and of the
// element the renderer drew into.
type Viewport struct {
	Host     Rect `json:"host"`
	Renderer Rect `json:"renderer"`
}

type Position struct {
	Pitch        model.Pitch `json:"pitch"`
	MeasureIndex int         `json:"measureIndex"`
	SystemIndex  int         `json:"systemIndex"`
}

type Mapper struct {
	// ChordOffsetX is where a chord sits past the measure's start.
	ChordOffsetX float64
}

func New(chordOffsetX float64) Mapper {
	return Mapper{ChordOffsetX: chordOffsetX}
}

func scale(logical, physical float64) float64 {
	if physical <= 0 || logical <= 0 {
		return 1
	}
	return logical / physical
}

// ScreenToLogical maps screen pixels into the layout's coordinate space.
func ScreenToLogical(renderer Rect, coords model.StaffCoordinates) gg.Matrix {
	sx := scale(coords.TotalWidth, renderer.Width)
	sy := scale(coords.TotalHeight, renderer.Height)
	return gg.Scale(sx, sy).Multiply(gg.Translate(-renderer.Left, -renderer.Top))
}

// SystemAt clamps to the existing systems.
func SystemAt(logicalY float64, coords model.StaffCoordinates) int {
	stride := coords.SystemHeight + coords.SystemSpacing
	if stride <= 0 || coords.NumSystems == 0 {
		return 0
	}
	i := int(math.Floor(logicalY / stride))
	return util.Clamp(i, 0, coords.NumSystems-1)
}

// MeasureAt returns the measure index under logicalX within a system.
// Pointers left of the first measure snap to it and pointers past the
// right margin snap to the last one. ok is false only when the system has
// no measures.
func MeasureAt(logicalX float64, system int, coords model.StaffCoordinates) (index int, ok bool) {
	first, last := -1, -1
	for i, b := range coords.Measures {
		if b.SystemIndex != system {
			continue
		}
		if first < 0 {
			first = i
		}
		last = i
		if logicalX >= b.StartX && logicalX < b.EndX {
			return i, true
		}
	}
	if first < 0 {
		return 0, false
	}
	if logicalX < coords.Measures[first].StartX {
		return first, true
	}
	return last, true
}

// StaffPosition rounds to the nearest line or space of the bound's staff.
func StaffPosition(logicalY float64, b model.MeasureBound) int {
	half := b.LineSpacing / 2
	if half <= 0 {
		return 0
	}
	return int(math.Round((logicalY - b.StaffTopY) / half))
}

// ScreenToMusical returns false when the geometry has nothing to hit,
// i.e. the section is empty or inert.
func (m Mapper) ScreenToMusical(screenX, screenY float64, vp Viewport, coords model.StaffCoordinates, clef model.Clef) (Position, bool) {
	if !coords.Interactive() {
		return Position{}, false
	}
	p := ScreenToLogical(vp.Renderer, coords).TransformPoint(gg.Pt(screenX, screenY))
	return m.LogicalToMusical(p, coords, clef)
}

func (m Mapper) LogicalToMusical(p gg.Point, coords model.StaffCoordinates, clef model.Clef) (Position, bool) {
	if !coords.Interactive() {
		return Position{}, false
	}
	system := SystemAt(p.Y, coords)
	index, ok := MeasureAt(p.X, system, coords)
	if !ok {
		return Position{}, false
	}
	b := coords.Measures[index]
	return Position{
		Pitch:        geometry.PositionToPitch(StaffPosition(p.Y, b), clef),
		MeasureIndex: index,
		SystemIndex:  b.SystemIndex,
	}, true
}

// MusicalToScreen returns the logical point where a chord with this pitch
// is drawn in the measure. Chords are left-aligned, not centered.
func (m Mapper) MusicalToScreen(p model.Pitch, measureIndex int, coords model.StaffCoordinates, clef model.Clef) (gg.Point, bool) {
	if measureIndex < 0 || measureIndex >= len(coords.Measures) || coords.Inert {
		return gg.Point{}, false
	}
	b := coords.Measures[measureIndex]
	pos := geometry.PitchToPosition(p, clef)
	return gg.Pt(b.StartX+m.ChordOffsetX, b.StaffTopY+float64(pos)*b.LineSpacing/2), true
}

// LogicalToHost converts a logical point into the host element's local
// pixels, where overlays such as the ghost note are positioned.
func LogicalToHost(p gg.Point, vp Viewport, coords model.StaffCoordinates) gg.Point {
	screen := ScreenToLogical(vp.Renderer, coords).Invert().TransformPoint(p)
	return gg.Pt(screen.X-vp.Host.Left, screen.Y-vp.Host.Top)
}
