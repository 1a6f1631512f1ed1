// Package store is the in-memory document store holding the worksheet.
// Callers only ever see deep copies; every change goes through one of the
// Store's commands and bumps the revisions the stale-result guard uses.
package store

import (
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/jsphweid/chordsheet/model"
)

var (
	ErrNotFound = errors.New("not found")
	// ErrStale means the measure changed after the command was issued.
	ErrStale = errors.New("stale measure revision")
)

type Store struct {
	mu        sync.RWMutex
	ws        model.Worksheet
	listeners []func(model.Section)
	newID     func() string
}

func newID() string {
	return uuid.New().String()
}

func New(title string) *Store {
	return FromWorksheet(model.Worksheet{ID: newID(), Title: title})
}

// FromWorksheet takes ownership of a copy of ws.
func FromWorksheet(ws model.Worksheet) *Store {
	s := &Store{newID: newID}
	s.ws = cloneWorksheet(ws)
	if s.ws.ID == "" {
		s.ws.ID = s.newID()
	}
	if s.ws.Sections == nil {
		s.ws.Sections = []model.Section{}
	}
	return s
}

func cloneWorksheet(ws model.Worksheet) model.Worksheet {
	res := ws
	res.Sections = make([]model.Section, len(ws.Sections))
	for i, sec := range ws.Sections {
		res.Sections[i] = sec.Clone()
	}
	return res
}

// Subscribe registers fn to be called with a snapshot of every section
// after it changes. fn runs outside the store lock.
func (s *Store) Subscribe(fn func(model.Section)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

func (s *Store) notify(section model.Section) {
	s.mu.RLock()
	listeners := append([]func(model.Section){}, s.listeners...)
	s.mu.RUnlock()
	for _, fn := range listeners {
		fn(section)
	}
}

func (s *Store) Worksheet() model.Worksheet {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneWorksheet(s.ws)
}

func (s *Store) Section(id string) (model.Section, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.sectionIndex(id)
	if i < 0 {
		return model.Section{}, errors.Wrapf(ErrNotFound, "section %s", id)
	}
	return s.ws.Sections[i].Clone(), nil
}

func (s *Store) sectionIndex(id string) int {
	for i, sec := range s.ws.Sections {
		if sec.ID == id {
			return i
		}
	}
	return -1
}

// mutate runs fn on the live section under the write lock. When fn
// succeeds the section revision is bumped and listeners get a snapshot.
func (s *Store) mutate(sectionID string, fn func(sec *model.Section) error) (model.Section, error) {
	s.mu.Lock()
	i := s.sectionIndex(sectionID)
	if i < 0 {
		s.mu.Unlock()
		return model.Section{}, errors.Wrapf(ErrNotFound, "section %s", sectionID)
	}
	sec := &s.ws.Sections[i]
	if err := fn(sec); err != nil {
		s.mu.Unlock()
		return model.Section{}, err
	}
	sec.Revision++
	snapshot := sec.Clone()
	s.mu.Unlock()

	s.notify(snapshot)
	return snapshot, nil
}

type SectionOptions struct {
	Title           string
	Instructions    string
	Clef            model.Clef
	TimeSignature   string
	KeySignature    string
	Measures        int
	AutoExpand      bool
	AutoExpandCount int
	// MaxMeasures of zero means unlimited.
	MaxMeasures int
}

func (s *Store) AddSection(opts SectionOptions) (model.Section, error) {
	if opts.Measures < 0 {
		return model.Section{}, errors.Errorf("negative measure count %d", opts.Measures)
	}
	if opts.MaxMeasures > 0 && opts.Measures > opts.MaxMeasures {
		return model.Section{}, errors.Errorf("%d measures exceed the maximum of %d", opts.Measures, opts.MaxMeasures)
	}
	if opts.Clef == "" {
		opts.Clef = model.ClefTreble
	}
	if opts.TimeSignature == "" {
		opts.TimeSignature = "4/4"
	}
	if opts.KeySignature == "" {
		opts.KeySignature = "C"
	}

	sec := model.Section{
		ID:           s.newID(),
		Title:        opts.Title,
		Instructions: opts.Instructions,
		Staff: model.Staff{
			ID:            s.newID(),
			Clef:          opts.Clef,
			TimeSignature: opts.TimeSignature,
			KeySignature:  opts.KeySignature,
		},
		AutoExpand:      opts.AutoExpand,
		AutoExpandCount: opts.AutoExpandCount,
		MaxMeasures:     opts.MaxMeasures,
		Revision:        1,
	}
	sec.Staff.Measures = emptyMeasures(nil, opts.Measures, s.newID)

	s.mu.Lock()
	s.ws.Sections = append(s.ws.Sections, sec)
	s.mu.Unlock()

	snapshot := sec.Clone()
	s.notify(snapshot)
	return snapshot, nil
}

// AddMeasures appends up to count empty measures, stopping at the
// section's maximum.
func (s *Store) AddMeasures(sectionID string, count int) (model.Section, error) {
	if count < 1 {
		return model.Section{}, errors.Errorf("measure count must be positive, got %d", count)
	}
	return s.mutate(sectionID, func(sec *model.Section) error {
		if room := capacity(*sec); room >= 0 && room < count {
			count = room
		}
		sec.Staff.Measures = append(sec.Staff.Measures, emptyMeasures(sec.Staff.Measures, count, s.newID)...)
		return nil
	})
}

// Placement is a resolved chord ready to be written into a measure.
type Placement struct {
	SectionID string
	MeasureID string
	// MeasureRevision is the revision the command was issued against.
	MeasureRevision uint64
	Definition      model.ChordDefinition
	Pitches         []model.Pitch
	DisplayName     string
	ClefOverride    *model.Clef
	IsAnswer        bool
}

type PlaceResult struct {
	Section model.Section
	Element model.MusicElement
	// Added is the number of measures auto-expand appended.
	Added int
}

func locateMeasure(sec *model.Section, measureID string, revision uint64) (int, error) {
	idx := sec.MeasureIndex(measureID)
	if idx < 0 {
		return -1, errors.Wrapf(ErrNotFound, "measure %s", measureID)
	}
	if got := sec.Staff.Measures[idx].Revision; got != revision {
		return -1, errors.Wrapf(ErrStale, "measure %s is at revision %d, command was for %d", measureID, got, revision)
	}
	return idx, nil
}

// PlaceChord writes the chord into the measure, replacing any chord
// already there, and applies auto-expand in the same update.
func (s *Store) PlaceChord(p Placement) (PlaceResult, error) {
	if len(p.Pitches) == 0 {
		return PlaceResult{}, errors.New("placement has no pitches")
	}

	var res PlaceResult
	sec, err := s.mutate(p.SectionID, func(sec *model.Section) error {
		idx, err := locateMeasure(sec, p.MeasureID, p.MeasureRevision)
		if err != nil {
			return err
		}
		m := &sec.Staff.Measures[idx]

		def := p.Definition
		el := model.MusicElement{
			ID:           s.newID(),
			Kind:         model.ElementChord,
			Pitches:      append([]model.Pitch(nil), p.Pitches...),
			Duration:     model.WholeNote,
			Definition:   &def,
			DisplayName:  p.DisplayName,
			ClefOverride: p.ClefOverride,
			IsAnswer:     p.IsAnswer,
		}
		elements := make([]model.MusicElement, 0, len(m.Elements)+1)
		for _, e := range m.Elements {
			if e.Kind == model.ElementChord {
				el.ID = e.ID
				continue
			}
			elements = append(elements, e)
		}
		m.Elements = append(elements, el)
		m.Revision++

		res.Added = ExpandCount(*sec, idx)
		sec.Staff.Measures = append(sec.Staff.Measures, emptyMeasures(sec.Staff.Measures, res.Added, s.newID)...)
		res.Element = el
		return nil
	})
	if err != nil {
		return PlaceResult{}, err
	}
	res.Section = sec
	return res, nil
}

// ElementUpdate replaces the content of an existing chord element.
type ElementUpdate struct {
	SectionID       string
	MeasureID       string
	ElementID       string
	MeasureRevision uint64
	Definition      model.ChordDefinition
	Pitches         []model.Pitch
	DisplayName     string
	ClefOverride    *model.Clef
	// IsAnswer of nil leaves the flag as it was.
	IsAnswer *bool
}

func (s *Store) UpdateChord(u ElementUpdate) (model.Section, error) {
	if len(u.Pitches) == 0 {
		return model.Section{}, errors.New("update has no pitches")
	}
	return s.mutate(u.SectionID, func(sec *model.Section) error {
		idx, err := locateMeasure(sec, u.MeasureID, u.MeasureRevision)
		if err != nil {
			return err
		}
		m := &sec.Staff.Measures[idx]
		for i := range m.Elements {
			e := &m.Elements[i]
			if e.ID != u.ElementID {
				continue
			}
			if e.Kind != model.ElementChord {
				return errors.Errorf("element %s is a %s, not a chord", e.ID, e.Kind)
			}
			def := u.Definition
			e.Definition = &def
			e.Pitches = append([]model.Pitch(nil), u.Pitches...)
			e.DisplayName = u.DisplayName
			e.ClefOverride = u.ClefOverride
			if u.IsAnswer != nil {
				e.IsAnswer = *u.IsAnswer
			}
			m.Revision++
			return nil
		}
		return errors.Wrapf(ErrNotFound, "element %s", u.ElementID)
	})
}

func (s *Store) RemoveElement(sectionID, measureID, elementID string) (model.Section, error) {
	return s.mutate(sectionID, func(sec *model.Section) error {
		idx := sec.MeasureIndex(measureID)
		if idx < 0 {
			return errors.Wrapf(ErrNotFound, "measure %s", measureID)
		}
		m := &sec.Staff.Measures[idx]
		for i, e := range m.Elements {
			if e.ID == elementID {
				m.Elements = append(m.Elements[:i], m.Elements[i+1:]...)
				m.Revision++
				return nil
			}
		}
		return errors.Wrapf(ErrNotFound, "element %s", elementID)
	})
}

// ToggleAnswers flips answer visibility and returns the new value.
func (s *Store) ToggleAnswers() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ws.ShowAnswers = !s.ws.ShowAnswers
	return s.ws.ShowAnswers
}
