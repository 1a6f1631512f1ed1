package model

type ErrorResponse struct {
	Error string `json:"detail"`
}

type AddSectionRequest struct {
	Title           string `json:"title"`
	Instructions    string `json:"instructions"`
	Clef            Clef   `json:"clef"`
	TimeSignature   string `json:"timeSignature"`
	KeySignature    string `json:"keySignature"`
	Measures        int    `json:"measures"`
	AutoExpand      bool   `json:"autoExpand"`
	AutoExpandCount int    `json:"autoExpandCount"`
	MaxMeasures     int    `json:"maxMeasures"`
}

type AddMeasuresRequest struct {
	Count int `json:"count"`
}

type UpdateChordRequest struct {
	Definition   ChordDefinition `json:"definition"`
	Octave       int             `json:"octave"`
	ClefOverride *Clef           `json:"clefOverride,omitempty"`
	IsAnswer     *bool           `json:"isAnswer,omitempty"`
}

type ToolRequest struct {
	// Tool is "select" or "chord".
	Tool     string `json:"tool"`
	Quality  string `json:"quality,omitempty"`
	BothClef Clef   `json:"bothClef,omitempty"`
	// Answer makes the chord tool place answer chords.
	Answer bool `json:"answer,omitempty"`
}

type AnswersResponse struct {
	ShowAnswers bool `json:"showAnswers"`
}

type QualitiesResponse struct {
	Qualities []ChordQuality `json:"qualities"`
}

type AuditionResponse struct {
	Keys    []int   `json:"keys"`
	NoteOn  [][]int `json:"noteOn"`
	NoteOff [][]int `json:"noteOff"`
}

type TemplateChord struct {
	Definition ChordDefinition `json:"definition"`
	Octave     int             `json:"octave"`
	IsAnswer   bool            `json:"isAnswer"`
}

// ChordNamingRequest builds a section with one chord per measure.
type ChordNamingRequest struct {
	Title        string          `json:"title"`
	Instructions string          `json:"instructions"`
	Clef         Clef            `json:"clef"`
	KeySignature string          `json:"keySignature"`
	Chords       []TemplateChord `json:"chords"`
}
