//go:build e2e
// +build e2e

package e2e_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsphweid/chordsheet/cmd"
	"github.com/jsphweid/chordsheet/constants"
	"github.com/jsphweid/chordsheet/model"
)

var server *httptest.Server

func TestMain(m *testing.M) {
	cfg := constants.Default()
	cfg.Interaction.MinHold = 0
	if err := cmd.Setup(cfg, model.Worksheet{Title: "e2e"}); err != nil {
		panic(err.Error())
	}
	server = httptest.NewServer(cmd.Router())

	exitVal := m.Run()

	server.Close()
	os.Exit(exitVal)
}

func do(t *testing.T, method, path string, body any, out any) int {
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, server.URL+path, r)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

type rect struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

type pointerResponse struct {
	State string `json:"state"`
	Ghost *struct {
		Pitch        model.Pitch `json:"pitch"`
		MeasureIndex int         `json:"measureIndex"`
	} `json:"ghost"`
	Command *struct {
		Kind string `json:"kind"`
	} `json:"command"`
	Committed *struct {
		Section model.Section      `json:"section"`
		Element model.MusicElement `json:"element"`
		Added   int                `json:"added"`
	} `json:"committed"`
}

func pointer(t *testing.T, sectionID, kind string, x, y float64, coords model.StaffCoordinates) pointerResponse {
	r := rect{Width: coords.TotalWidth, Height: coords.TotalHeight}
	var res pointerResponse
	status := do(t, http.MethodPost, fmt.Sprintf("/sections/%s/pointer", sectionID), map[string]any{
		"kind": kind, "x": x, "y": y, "host": r, "renderer": r,
	}, &res)
	require.Equal(t, http.StatusOK, status)
	return res
}

func TestPlaceChordsAndExpand(t *testing.T) {
	var sec model.Section
	status := do(t, http.MethodPost, "/sections", model.AddSectionRequest{
		Title: "Triads", Clef: model.ClefTreble, Measures: 4,
		AutoExpand: true, AutoExpandCount: 2, MaxMeasures: 6,
	}, &sec)
	require.Equal(t, http.StatusCreated, status)

	var coords model.StaffCoordinates
	require.Equal(t, http.StatusOK, do(t, http.MethodGet, "/sections/"+sec.ID+"/layout", nil, &coords))
	require.Len(t, coords.Measures, 4)

	assert := assert.New(t)
	second := coords.Measures[1]
	res := pointer(t, sec.ID, "move", second.CenterX, second.StaffTopY, coords)
	require.NotNil(t, res.Ghost)
	assert.Equal("F5", res.Ghost.Pitch.String())
	assert.Equal("hoverEmpty", res.State)

	res = pointer(t, sec.ID, "click", second.CenterX, second.StaffTopY, coords)
	require.NotNil(t, res.Committed)
	assert.Equal("place", res.Command.Kind)
	assert.Equal(model.NoteF, res.Committed.Element.Definition.Root)

	res = pointer(t, sec.ID, "click", second.CenterX, second.StaffTopY, coords)
	require.NotNil(t, res.Command)
	assert.Equal("select", res.Command.Kind)

	last := coords.Measures[3]
	pointer(t, sec.ID, "move", last.CenterX, last.StaffBottomY, coords)
	res = pointer(t, sec.ID, "click", last.CenterX, last.StaffBottomY, coords)
	require.NotNil(t, res.Committed)
	assert.Equal(2, res.Committed.Added)
	assert.Equal("E4", res.Committed.Element.Pitches[0].String())

	var ws model.Worksheet
	require.Equal(t, http.StatusOK, do(t, http.MethodGet, "/worksheet", nil, &ws))
	var got model.Section
	for _, s := range ws.Sections {
		if s.ID == sec.ID {
			got = s
		}
	}
	assert.Len(got.Staff.Measures, 6)

	m := got.Staff.Measures[1]
	chord, _ := m.Chord()
	status = do(t, http.MethodDelete, fmt.Sprintf("/sections/%s/measures/%s/elements/%s", sec.ID, m.ID, chord.ID), nil, &got)
	assert.Equal(http.StatusOK, status)
	assert.Empty(got.Staff.Measures[1].Elements)

	res = pointer(t, sec.ID, "leave", 0, 0, coords)
	assert.Equal("idle", res.State)
}

func TestUnknownSectionIs404(t *testing.T) {
	var e model.ErrorResponse
	status := do(t, http.MethodGet, "/sections/nope/layout", nil, &e)
	assert.Equal(t, http.StatusNotFound, status)
	assert.NotEmpty(t, e.Error)
}

func TestToggleAnswers(t *testing.T) {
	var a, b model.AnswersResponse
	do(t, http.MethodPost, "/answers/toggle", nil, &a)
	do(t, http.MethodPost, "/answers/toggle", nil, &b)
	assert.NotEqual(t, a.ShowAnswers, b.ShowAnswers)
}

func TestStaffPNGAndPreview(t *testing.T) {
	var sec model.Section
	require.Equal(t, http.StatusCreated, do(t, http.MethodPost, "/sections", model.AddSectionRequest{Measures: 3, KeySignature: "Eb"}, &sec))

	resp, err := http.Get(server.URL + "/sections/" + sec.ID + "/staff.png?width=640")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert := assert.New(t)
	assert.Equal(http.StatusOK, resp.StatusCode)
	assert.Equal("image/png", resp.Header.Get("Content-Type"))

	resp, err = http.Get(server.URL + "/sections/" + sec.ID + "/preview.mid")
	require.NoError(t, err)
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)
	assert.Equal(http.StatusOK, resp.StatusCode)
	assert.Equal("MThd", string(data[:4]))
}

func TestSelectTool(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, do(t, http.MethodPost, "/session/tool", model.ToolRequest{Tool: "chord", Quality: "power"}, nil))
	assert.Equal(t, http.StatusNoContent, do(t, http.MethodPost, "/session/tool", model.ToolRequest{Tool: "chord", Quality: "m7"}, nil))
}
