package cmd

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/rs/cors"
	"github.com/spf13/cobra"

	"github.com/jsphweid/chordsheet/constants"
	"github.com/jsphweid/chordsheet/editor"
	"github.com/jsphweid/chordsheet/logger"
	"github.com/jsphweid/chordsheet/mapper"
	"github.com/jsphweid/chordsheet/midi"
	"github.com/jsphweid/chordsheet/model"
	"github.com/jsphweid/chordsheet/placement"
	"github.com/jsphweid/chordsheet/render"
	"github.com/jsphweid/chordsheet/store"
	"github.com/jsphweid/chordsheet/theory"
)

var (
	docs *store.Store
	ed   *editor.Editor
)

var worksheetPath string

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default from config)")
	serveCmd.Flags().Float64("width", 0, "render width in pixels (default from config)")
	serveCmd.Flags().StringVar(&worksheetPath, "worksheet", "", "worksheet JSON to start from")
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serves the editor API",
	Long:  `Serves the worksheet editor API for a browser host.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		ws := model.Worksheet{Title: "Untitled"}
		if worksheetPath != "" {
			if ws, err = loadWorksheet(worksheetPath); err != nil {
				return err
			}
		}
		if err := Setup(cfg, ws); err != nil {
			return err
		}
		logger.Logger().Info("listening", "addr", cfg.Addr, "width", cfg.RenderWidth)
		return http.ListenAndServe(cfg.Addr, Router())
	},
}

// Setup builds the store and editor the handlers work on.
func Setup(cfg constants.Config, ws model.Worksheet) error {
	metrics, err := render.NewMetrics(cfg.Stave)
	if err != nil {
		return err
	}
	docs = store.FromWorksheet(ws)
	ed = editor.New(cfg, metrics, docs, theory.Local{})
	return nil
}

func Router() http.Handler {
	router := mux.NewRouter().StrictSlash(true)
	router.HandleFunc("/worksheet", HandleWorksheet).Methods("GET")
	router.HandleFunc("/answers/toggle", HandleToggleAnswers).Methods("POST")
	router.HandleFunc("/session/tool", HandleTool).Methods("POST")
	router.HandleFunc("/qualities", HandleQualities).Methods("GET")
	router.HandleFunc("/sections", HandleAddSection).Methods("POST")
	router.HandleFunc("/sections/chord-naming", HandleChordNaming).Methods("POST")
	router.HandleFunc("/sections/{id}/measures", HandleAddMeasures).Methods("POST")
	router.HandleFunc("/sections/{id}/layout", HandleLayout).Methods("GET")
	router.HandleFunc("/sections/{id}/pointer", HandlePointer).Methods("POST")
	router.HandleFunc("/sections/{id}/staff.png", HandleStaffPNG).Methods("GET")
	router.HandleFunc("/sections/{id}/preview.mid", HandlePreview).Methods("GET")
	router.HandleFunc("/sections/{id}/measures/{measureId}/audition", HandleAudition).Methods("GET")
	router.HandleFunc("/sections/{id}/measures/{measureId}/elements/{elementId}", HandleUpdateElement).Methods("PUT")
	router.HandleFunc("/sections/{id}/measures/{measureId}/elements/{elementId}", HandleRemoveElement).Methods("DELETE")
	return cors.New(cors.Options{
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
	}).Handler(router)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Logger().Warn("could not encode response", "err", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, store.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, store.ErrStale):
		status = http.StatusConflict
	case errors.Is(err, errBadRequest), errors.Is(err, theory.ErrUnknownQuality):
		status = http.StatusBadRequest
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(model.ErrorResponse{Error: err.Error()})
}

var errBadRequest = errors.New("bad request")

func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errors.Wrap(errBadRequest, "could not decode request body: "+err.Error())
	}
	return nil
}

func widthParam(r *http.Request) (float64, error) {
	v := r.URL.Query().Get("width")
	if v == "" {
		return ed.Width(), nil
	}
	width, err := strconv.ParseFloat(v, 64)
	if err != nil || width <= 0 {
		return 0, errors.Wrapf(errBadRequest, "invalid width %q", v)
	}
	return width, nil
}

func HandleWorksheet(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, docs.Worksheet())
}

func HandleToggleAnswers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, model.AnswersResponse{ShowAnswers: docs.ToggleAnswers()})
}

func HandleTool(w http.ResponseWriter, r *http.Request) {
	var req model.ToolRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	switch req.Tool {
	case "select":
		ed.Machine().SetTool(placement.SelectTool{})
	case "chord":
		q, err := theory.ParseQuality(req.Quality)
		if err != nil {
			writeError(w, err)
			return
		}
		ed.Machine().SetTool(placement.PlaceChordTool{Quality: q, Answer: req.Answer})
	default:
		writeError(w, errors.Wrapf(errBadRequest, "unknown tool %q", req.Tool))
		return
	}
	if req.BothClef != "" {
		ed.Machine().SetBothClef(req.BothClef)
	}
	w.WriteHeader(http.StatusNoContent)
}

func HandleAddSection(w http.ResponseWriter, r *http.Request) {
	var req model.AddSectionRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	sec, err := docs.AddSection(store.SectionOptions{
		Title:           req.Title,
		Instructions:    req.Instructions,
		Clef:            req.Clef,
		TimeSignature:   req.TimeSignature,
		KeySignature:    req.KeySignature,
		Measures:        req.Measures,
		AutoExpand:      req.AutoExpand,
		AutoExpandCount: req.AutoExpandCount,
		MaxMeasures:     req.MaxMeasures,
	})
	if err != nil {
		writeError(w, errors.Wrap(errBadRequest, err.Error()))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(sec)
}

func HandleAddMeasures(w http.ResponseWriter, r *http.Request) {
	var req model.AddMeasuresRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.Count < 1 {
		writeError(w, errors.Wrapf(errBadRequest, "count must be positive, got %d", req.Count))
		return
	}
	sec, err := docs.AddMeasures(mux.Vars(r)["id"], req.Count)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, sec)
}

func HandleQualities(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, model.QualitiesResponse{Qualities: theory.Qualities()})
}

// HandleChordNaming adds a section with one chord per measure.
func HandleChordNaming(w http.ResponseWriter, r *http.Request) {
	var req model.ChordNamingRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if len(req.Chords) == 0 {
		writeError(w, errors.Wrap(errBadRequest, "no chords given"))
		return
	}
	sec, err := ed.ChordNaming(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(sec)
}

// HandleLayout lays the section out at the requested width, which becomes
// the width pointer input is mapped against.
func HandleLayout(w http.ResponseWriter, r *http.Request) {
	width, err := widthParam(r)
	if err != nil {
		writeError(w, err)
		return
	}
	ed.SetWidth(width)
	_, coords, err := ed.Layout(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, coords)
}

type pointerRequest struct {
	// Kind is one of move, click, dblclick and leave.
	Kind string  `json:"kind"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	// Width is the logical width the host laid the section out at. Zero
	// keeps the current one.
	Width     float64             `json:"width,omitempty"`
	Host      mapper.Rect         `json:"host"`
	Renderer  mapper.Rect         `json:"renderer"`
	Modifiers placement.Modifiers `json:"modifiers"`
}

type commandResponse struct {
	Kind   string                   `json:"kind"`
	Place  *placement.PlaceCommand  `json:"place,omitempty"`
	Select *placement.SelectCommand `json:"select,omitempty"`
}

type pointerResponse struct {
	State     string               `json:"state"`
	Ghost     *placement.GhostNote `json:"ghost,omitempty"`
	Command   *commandResponse     `json:"command,omitempty"`
	Committed *editor.CommitResult `json:"committed,omitempty"`
}

// HandlePointer feeds one pointer event into the session. Place commands
// are committed before responding.
func HandlePointer(w http.ResponseWriter, r *http.Request) {
	var req pointerRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	id := mux.Vars(r)["id"]
	ev := placement.PointerEvent{
		X:         req.X,
		Y:         req.Y,
		Viewport:  mapper.Viewport{Host: req.Host, Renderer: req.Renderer},
		Modifiers: req.Modifiers,
	}

	if req.Width < 0 {
		writeError(w, errors.Wrapf(errBadRequest, "invalid width %v", req.Width))
		return
	}
	ed.Resize(id, req.Width)

	var res placement.Result
	var err error
	switch req.Kind {
	case "move":
		res, err = ed.OnPointerMove(id, ev)
	case "click":
		res, err = ed.OnClick(id, ev)
	case "dblclick":
		res, err = ed.OnDoubleClick(id, ev)
	case "leave":
		res = ed.OnPointerLeave()
	default:
		err = errors.Wrapf(errBadRequest, "unknown pointer event %q", req.Kind)
	}
	if err != nil {
		writeError(w, err)
		return
	}

	resp := pointerResponse{Ghost: res.Ghost}
	switch cmd := res.Command.(type) {
	case placement.PlaceCommand:
		resp.Command = &commandResponse{Kind: "place", Place: &cmd}
		committed, err := ed.Commit(r.Context(), cmd)
		if err != nil {
			writeError(w, err)
			return
		}
		resp.Committed = &committed
	case placement.SelectCommand:
		resp.Command = &commandResponse{Kind: "select", Select: &cmd}
	}
	resp.State = ed.Machine().State().String()
	writeJSON(w, resp)
}

func HandleUpdateElement(w http.ResponseWriter, r *http.Request) {
	var req model.UpdateChordRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	vars := mux.Vars(r)
	sec, err := ed.Update(r.Context(), editor.UpdateCommand{
		SectionID:    vars["id"],
		MeasureID:    vars["measureId"],
		ElementID:    vars["elementId"],
		Definition:   req.Definition,
		Octave:       req.Octave,
		ClefOverride: req.ClefOverride,
		IsAnswer:     req.IsAnswer,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, sec)
}

func HandleRemoveElement(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	sec, err := docs.RemoveElement(vars["id"], vars["measureId"], vars["elementId"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, sec)
}

func HandleStaffPNG(w http.ResponseWriter, r *http.Request) {
	width, err := widthParam(r)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	if err := ed.WriteStaffPNG(w, mux.Vars(r)["id"], width); err != nil {
		w.Header().Del("Content-Type")
		writeError(w, err)
	}
}

func HandlePreview(w http.ResponseWriter, r *http.Request) {
	sec, err := docs.Section(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "audio/midi")
	if err := midi.WriteSection(w, sec, 90, docs.Worksheet().ShowAnswers); err != nil {
		w.Header().Del("Content-Type")
		writeError(w, err)
	}
}

func intsOf(b []byte) []int {
	res := make([]int, len(b))
	for i, v := range b {
		res[i] = int(v)
	}
	return res
}

// HandleAudition returns the keys and note messages that sound the chord
// of a measure. Hidden answers cannot be auditioned.
func HandleAudition(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	sec, err := docs.Section(vars["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	idx := sec.MeasureIndex(vars["measureId"])
	if idx < 0 {
		writeError(w, errors.Wrapf(store.ErrNotFound, "measure %s", vars["measureId"]))
		return
	}
	chord, ok := sec.Staff.Measures[idx].Chord()
	if !ok || (chord.IsAnswer && !docs.Worksheet().ShowAnswers) {
		writeError(w, errors.Wrapf(store.ErrNotFound, "no chord to audition in measure %s", vars["measureId"]))
		return
	}

	keys, err := midi.Keys(chord.Pitches)
	if err != nil {
		writeError(w, err)
		return
	}
	on, off, err := midi.Audition(0, chord.Pitches)
	if err != nil {
		writeError(w, err)
		return
	}
	resp := model.AuditionResponse{Keys: intsOf(keys)}
	for i := range on {
		resp.NoteOn = append(resp.NoteOn, intsOf(on[i]))
		resp.NoteOff = append(resp.NoteOff, intsOf(off[i]))
	}
	writeJSON(w, resp)
}
