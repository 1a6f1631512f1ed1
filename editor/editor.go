// Package editor is the API the host talks to. It keeps one interaction
// session over a document store and recomputes layouts as sections change.
package editor

import (
	"context"
	"io"
	"math"
	"sync"

	"github.com/pkg/errors"

	"github.com/jsphweid/chordsheet/constants"
	"github.com/jsphweid/chordsheet/layout"
	"github.com/jsphweid/chordsheet/logger"
	"github.com/jsphweid/chordsheet/mapper"
	"github.com/jsphweid/chordsheet/model"
	"github.com/jsphweid/chordsheet/placement"
	"github.com/jsphweid/chordsheet/render"
	"github.com/jsphweid/chordsheet/schedule"
	"github.com/jsphweid/chordsheet/store"
	"github.com/jsphweid/chordsheet/theory"
)

// DocumentStore is satisfied by *store.Store.
type DocumentStore interface {
	Worksheet() model.Worksheet
	Section(id string) (model.Section, error)
	AddSection(opts store.SectionOptions) (model.Section, error)
	PlaceChord(p store.Placement) (store.PlaceResult, error)
	UpdateChord(u store.ElementUpdate) (model.Section, error)
	Subscribe(fn func(model.Section))
}

type cached struct {
	width    float64
	revision uint64
	coords   model.StaffCoordinates
}

type Editor struct {
	cfg      constants.Config
	engine   *layout.Engine
	mapper   mapper.Mapper
	machine  *placement.Machine
	store    DocumentStore
	theory   theory.Service
	throttle *schedule.Keyed

	mu      sync.RWMutex
	width   float64
	layouts map[string]cached
}

func New(cfg constants.Config, r layout.Renderer, st DocumentStore, svc theory.Service) *Editor {
	m := mapper.New(cfg.Layout.ChordOffsetX)
	e := &Editor{
		cfg:      cfg,
		engine:   layout.New(cfg.Layout, r),
		mapper:   m,
		machine:  placement.New(m, cfg.Interaction.MinHold),
		store:    st,
		theory:   svc,
		throttle: schedule.NewKeyed(cfg.Interaction.Throttle),
		width:    cfg.RenderWidth,
		layouts:  make(map[string]cached),
	}
	st.Subscribe(e.sectionChanged)
	return e
}

func (e *Editor) Machine() *placement.Machine {
	return e.machine
}

// sectionChanged recomputes on every document change. Only viewport
// changes coming with pointer input are throttled.
func (e *Editor) sectionChanged(sec model.Section) {
	e.ComputeLayout(sec, e.Width())
}

func (e *Editor) Width() float64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.width
}

// SetWidth changes the render width; cached layouts are dropped.
func (e *Editor) SetWidth(width float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if width == e.width {
		return
	}
	e.width = width
	e.layouts = make(map[string]cached)
}

// Resize records the logical width the host lays the section out at, as
// reported with pointer input. Recomputes are throttled per section; until
// the trailing one runs, pointer input maps onto the previous geometry.
func (e *Editor) Resize(sectionID string, width float64) {
	if width <= 0 || width == e.Width() {
		return
	}
	ran := e.throttle.Do(sectionID, func() {
		e.SetWidth(width)
		sec, err := e.store.Section(sectionID)
		if err != nil {
			logger.Logger().Debug("section vanished before relayout", "section", sectionID, "err", err)
			return
		}
		e.ComputeLayout(sec, width)
	})
	if !ran {
		logger.Logger().Debug("relayout deferred", "section", sectionID, "width", width)
	}
}

// ComputeLayout lays the section out and caches the result for pointer
// handling. A result for an older revision never replaces a newer one.
func (e *Editor) ComputeLayout(sec model.Section, width float64) model.StaffCoordinates {
	coords := e.engine.Compute(sec, width)
	e.mu.Lock()
	if c, ok := e.layouts[sec.ID]; !ok || c.width != width || c.revision <= sec.Revision {
		e.layouts[sec.ID] = cached{width: width, revision: sec.Revision, coords: coords}
	}
	e.mu.Unlock()
	return coords
}

// Layout returns a section together with the geometry of that same
// revision at the editor's width.
func (e *Editor) Layout(sectionID string) (model.Section, model.StaffCoordinates, error) {
	sec, err := e.store.Section(sectionID)
	if err != nil {
		return sec, model.StaffCoordinates{}, err
	}
	width := e.Width()
	e.mu.RLock()
	c, ok := e.layouts[sectionID]
	e.mu.RUnlock()
	if ok && c.width == width && c.revision == sec.Revision {
		return sec, c.coords, nil
	}
	return sec, e.ComputeLayout(sec, width), nil
}

func (e *Editor) PointerToMusical(ev placement.PointerEvent, coords model.StaffCoordinates, clef model.Clef) (mapper.Position, bool) {
	return e.mapper.ScreenToMusical(ev.X, ev.Y, ev.Viewport, coords, clef)
}

func (e *Editor) view(sectionID string) (placement.View, error) {
	sec, coords, err := e.Layout(sectionID)
	return placement.View{Section: sec, Coords: coords}, err
}

func (e *Editor) OnPointerMove(sectionID string, ev placement.PointerEvent) (placement.Result, error) {
	view, err := e.view(sectionID)
	if err != nil {
		return placement.Result{}, err
	}
	return e.machine.OnPointerMove(ev, view), nil
}

func (e *Editor) OnClick(sectionID string, ev placement.PointerEvent) (placement.Result, error) {
	view, err := e.view(sectionID)
	if err != nil {
		return placement.Result{}, err
	}
	return e.machine.OnClick(ev, view), nil
}

func (e *Editor) OnDoubleClick(sectionID string, ev placement.PointerEvent) (placement.Result, error) {
	view, err := e.view(sectionID)
	if err != nil {
		return placement.Result{}, err
	}
	return e.machine.OnDoubleClick(ev, view), nil
}

func (e *Editor) OnPointerLeave() placement.Result {
	return e.machine.OnPointerLeave()
}

type CommitResult struct {
	Section model.Section      `json:"section"`
	Element model.MusicElement `json:"element"`
	Added   int                `json:"added"`
	// Degraded is set when the theory service failed and only the root
	// was placed.
	Degraded bool `json:"degraded"`
}

// Commit resolves the chord of a place command and writes it to the
// store. It blocks on the theory service and releases the placing latch
// when done. A result that arrives after the measure was edited again is
// discarded with store.ErrStale.
func (e *Editor) Commit(ctx context.Context, cmd placement.PlaceCommand) (CommitResult, error) {
	defer e.machine.Settle()

	v, degraded := theory.Resolve(ctx, e.theory, cmd.Definition, cmd.Octave)
	res, err := e.store.PlaceChord(store.Placement{
		SectionID:       cmd.SectionID,
		MeasureID:       cmd.MeasureID,
		MeasureRevision: cmd.MeasureRevision,
		Definition:      cmd.Definition,
		Pitches:         v.Pitches,
		DisplayName:     v.DisplayName,
		ClefOverride:    cmd.ClefOverride,
		IsAnswer:        cmd.IsAnswer,
	})
	if errors.Is(err, store.ErrStale) {
		logger.Logger().Warn("discarding stale chord", "section", cmd.SectionID, "measure", cmd.MeasureID, "err", err)
		return CommitResult{}, err
	}
	if err != nil {
		return CommitResult{}, errors.Wrap(err, "could not place chord")
	}

	e.machine.Remember(placement.ChordSettings{Quality: cmd.Definition.Quality, Inversion: cmd.Definition.Inversion})
	if res.Added > 0 {
		logger.Logger().Debug("section expanded", "section", cmd.SectionID, "added", res.Added)
	}
	return CommitResult{Section: res.Section, Element: res.Element, Added: res.Added, Degraded: degraded}, nil
}

// UpdateCommand changes the chord of an existing element, typically from
// the chord editor opened after a placement.
type UpdateCommand struct {
	SectionID    string                `json:"sectionId"`
	MeasureID    string                `json:"measureId"`
	ElementID    string                `json:"elementId"`
	Definition   model.ChordDefinition `json:"definition"`
	Octave       int                   `json:"octave"`
	ClefOverride *model.Clef           `json:"clefOverride,omitempty"`
	IsAnswer     *bool                 `json:"isAnswer,omitempty"`
}

func (e *Editor) Update(ctx context.Context, cmd UpdateCommand) (model.Section, error) {
	sec, err := e.store.Section(cmd.SectionID)
	if err != nil {
		return sec, err
	}
	idx := sec.MeasureIndex(cmd.MeasureID)
	if idx < 0 {
		return sec, errors.Wrapf(store.ErrNotFound, "measure %s", cmd.MeasureID)
	}
	revision := sec.Staff.Measures[idx].Revision

	v, _ := theory.Resolve(ctx, e.theory, cmd.Definition, cmd.Octave)
	updated, err := e.store.UpdateChord(store.ElementUpdate{
		SectionID:       cmd.SectionID,
		MeasureID:       cmd.MeasureID,
		ElementID:       cmd.ElementID,
		MeasureRevision: revision,
		Definition:      cmd.Definition,
		Pitches:         v.Pitches,
		DisplayName:     v.DisplayName,
		ClefOverride:    cmd.ClefOverride,
		IsAnswer:        cmd.IsAnswer,
	})
	if errors.Is(err, store.ErrStale) {
		logger.Logger().Warn("discarding stale chord update", "section", cmd.SectionID, "measure", cmd.MeasureID)
		return updated, err
	}
	if err == nil {
		e.machine.Remember(placement.ChordSettings{Quality: cmd.Definition.Quality, Inversion: cmd.Definition.Inversion})
	}
	return updated, err
}

// WriteStaffPNG rasterises a section at the given width. A section that
// cannot be laid out is drawn as a greyed placeholder.
func (e *Editor) WriteStaffPNG(w io.Writer, sectionID string, width float64) error {
	sec, err := e.store.Section(sectionID)
	if err != nil {
		return err
	}
	ws := e.store.Worksheet()

	height := e.engine.TotalHeight(e.engine.NumSystems(sec.MeasureCount())) + e.cfg.Layout.PaddingTop
	canvas, err := render.NewCanvas(e.cfg, int(math.Ceil(width)), int(math.Max(1, math.Ceil(height))), ws.ShowAnswers)
	if err != nil {
		return err
	}
	defer canvas.Close()

	engine := layout.New(e.cfg.Layout, canvas)
	coords := engine.Compute(sec, width)
	if coords.Inert {
		canvas.DrawPlaceholder("staff unavailable")
		return canvas.EncodePNG(w)
	}
	if err := engine.DrawChords(sec, coords); err != nil {
		return err
	}
	return canvas.EncodePNG(w)
}
