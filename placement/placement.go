// Package placement turns pointer events over a laid-out section into a
// ghost-note preview and place or select commands.
package placement

import (
	"sync"
	"time"

	"github.com/jsphweid/chordsheet/logger"
	"github.com/jsphweid/chordsheet/mapper"
	"github.com/jsphweid/chordsheet/model"
)

type State int

const (
	Idle State = iota
	HoverEmpty
	HoverOccupied
	// InsertPending follows a double-click on an occupied measure; the next
	// click there replaces its chord instead of selecting it.
	InsertPending
)

func (s State) String() string {
	switch s {
	case HoverEmpty:
		return "hoverEmpty"
	case HoverOccupied:
		return "hoverOccupied"
	case InsertPending:
		return "insertPending"
	}
	return "idle"
}

type PointerEvent struct {
	X         float64         `json:"x"`
	Y         float64         `json:"y"`
	Viewport  mapper.Viewport `json:"viewport"`
	Modifiers Modifiers       `json:"modifiers"`
}

// View is the section snapshot under the pointer and its current layout.
type View struct {
	Section model.Section
	Coords  model.StaffCoordinates
}

// GhostNote is where a chord would land on click. X and Y are in the host
// element's local pixels.
type GhostNote struct {
	X            float64     `json:"x"`
	Y            float64     `json:"y"`
	Pitch        model.Pitch `json:"pitch"`
	MeasureIndex int         `json:"measureIndex"`
	SystemIndex  int         `json:"systemIndex"`
	SectionID    string      `json:"sectionId"`
	MeasureID    string      `json:"measureId"`
}

type Result struct {
	Ghost   *GhostNote `json:"ghost,omitempty"`
	Command Command    `json:"command,omitempty"`
}

type hover struct {
	pos      mapper.Position
	measure  model.Measure
	chord    model.MusicElement
	occupied bool
	ghost    GhostNote
}

// Machine holds one interaction session. All methods are safe for
// concurrent use and never fail; bad input yields an empty Result.
type Machine struct {
	mapper  mapper.Mapper
	minHold time.Duration
	now     func() time.Time
	after   func(time.Duration, func())

	mu       sync.Mutex
	tool     Tool
	state    State
	hover    *hover
	insertAt string
	lastUsed ChordSettings
	bothClef model.Clef

	placing      bool
	placingSince time.Time
	placingGen   uint64
}

func New(m mapper.Mapper, minHold time.Duration) *Machine {
	return &Machine{
		mapper:   m,
		minHold:  minHold,
		now:      time.Now,
		after:    func(d time.Duration, f func()) { time.AfterFunc(d, f) },
		tool:     PlaceChordTool{Quality: model.QualityMajor},
		lastUsed: DefaultSettings,
		bothClef: model.ClefTreble,
	}
}

func (m *Machine) SetTool(t Tool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t == nil {
		t = SelectTool{}
	}
	m.tool = t
}

func (m *Machine) Tool() Tool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tool
}

func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// SetBothClef picks which clef pointer input maps through on a staff
// whose clef is ClefBoth.
func (m *Machine) SetBothClef(c model.Clef) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c == model.ClefBoth || c == "" {
		c = model.ClefTreble
	}
	m.bothClef = c
}

func (m *Machine) LastUsed() ChordSettings {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastUsed
}

// Remember records the settings of a committed chord for quick-place.
func (m *Machine) Remember(s ChordSettings) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastUsed = s
}

func (m *Machine) effectiveClef(staff model.Clef) model.Clef {
	if staff == model.ClefBoth {
		return m.bothClef
	}
	return staff
}

// refresh maps the event onto the view and updates the hover state. It
// must be called with mu held.
func (m *Machine) refresh(ev PointerEvent, view View) *hover {
	clef := m.effectiveClef(view.Section.Staff.Clef)
	pos, ok := m.mapper.ScreenToMusical(ev.X, ev.Y, ev.Viewport, view.Coords, clef)
	if !ok || pos.MeasureIndex >= view.Section.MeasureCount() {
		m.clear()
		return nil
	}
	measure := view.Section.Staff.Measures[pos.MeasureIndex]
	h := &hover{pos: pos, measure: measure}
	h.chord, h.occupied = measure.Chord()

	logical, _ := m.mapper.MusicalToScreen(pos.Pitch, pos.MeasureIndex, view.Coords, clef)
	host := mapper.LogicalToHost(logical, ev.Viewport, view.Coords)
	h.ghost = GhostNote{
		X:            host.X,
		Y:            host.Y,
		Pitch:        pos.Pitch,
		MeasureIndex: pos.MeasureIndex,
		SystemIndex:  pos.SystemIndex,
		SectionID:    view.Section.ID,
		MeasureID:    measure.ID,
	}
	m.hover = h

	if m.state == InsertPending && m.insertAt == measure.ID && h.occupied {
		return h
	}
	m.insertAt = ""
	if h.occupied {
		m.state = HoverOccupied
	} else {
		m.state = HoverEmpty
	}
	return h
}

func (m *Machine) clear() {
	m.state = Idle
	m.hover = nil
	m.insertAt = ""
}

func (m *Machine) result(h *hover, cmd Command) Result {
	res := Result{Command: cmd}
	if _, ok := m.tool.(PlaceChordTool); ok && h != nil {
		g := h.ghost
		res.Ghost = &g
	}
	return res
}

func (m *Machine) OnPointerMove(ev PointerEvent, view View) Result {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.result(m.refresh(ev, view), nil)
}

func (m *Machine) OnPointerLeave() Result {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clear()
	return Result{}
}

func (m *Machine) OnDoubleClick(ev PointerEvent, view View) Result {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.hover == nil {
		return Result{}
	}
	h := m.refresh(ev, view)
	if h != nil && h.occupied {
		m.state = InsertPending
		m.insertAt = h.measure.ID
	}
	return m.result(h, nil)
}

// OnClick is a no-op until a move has put the pointer over the staff.
func (m *Machine) OnClick(ev PointerEvent, view View) Result {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.hover == nil {
		return Result{}
	}
	h := m.refresh(ev, view)
	if h == nil {
		return Result{}
	}

	switch m.state {
	case InsertPending:
		cmd := m.place(h, ev.Modifiers, view, true)
		if cmd != nil {
			m.insertAt = ""
			m.state = HoverOccupied
		}
		return m.result(h, cmd)
	case HoverOccupied:
		return m.result(h, SelectCommand{
			SectionID: view.Section.ID,
			MeasureID: h.measure.ID,
			ElementID: h.chord.ID,
		})
	case HoverEmpty:
		return m.result(h, m.place(h, ev.Modifiers, view, false))
	}
	return m.result(h, nil)
}

// place builds a PlaceCommand and takes the placing latch. It returns nil
// when the tool cannot place or a placement is still in flight.
func (m *Machine) place(h *hover, mods Modifiers, view View, replace bool) Command {
	var quality model.ChordQuality
	var answer bool
	switch t := m.tool.(type) {
	case PlaceChordTool:
		quality, answer = t.Quality, t.Answer
	case SelectTool:
		return nil
	default:
		return nil
	}

	if m.placing {
		logger.Logger().Debug("placement in flight, ignoring click",
			"section", view.Section.ID, "measure", h.measure.Number)
		return nil
	}

	def := model.ChordDefinition{
		Root:           h.pos.Pitch.Note,
		RootAccidental: model.AccidentalNone,
		Quality:        quality,
		Inversion:      model.InversionRoot,
	}
	if mods.QuickPlace {
		def.Quality = m.lastUsed.Quality
		def.Inversion = m.lastUsed.Inversion
	}
	cmd := PlaceCommand{
		SectionID:       view.Section.ID,
		MeasureID:       h.measure.ID,
		MeasureIndex:    h.pos.MeasureIndex,
		MeasureRevision: h.measure.Revision,
		Definition:      def,
		Octave:          h.pos.Pitch.Octave,
		IsAnswer:        answer,
		OpenEditor:      !mods.QuickPlace,
		Replace:         replace || h.occupied,
	}
	if view.Section.Staff.Clef == model.ClefBoth {
		c := m.bothClef
		cmd.ClefOverride = &c
	}

	m.placing = true
	m.placingSince = m.now()
	m.placingGen++
	return cmd
}

// Placing reports whether a place command is still in flight.
func (m *Machine) Placing() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.placing
}

// Settle releases the placing latch once the theory call behind the last
// place command has resolved or failed. The latch is held for at least
// minHold after the command was emitted.
func (m *Machine) Settle() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.placing {
		return
	}
	gen := m.placingGen
	remaining := m.minHold - m.now().Sub(m.placingSince)
	if remaining <= 0 {
		m.placing = false
		return
	}
	m.after(remaining, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if m.placingGen == gen {
			m.placing = false
		}
	})
}
