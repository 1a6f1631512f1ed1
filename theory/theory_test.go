package theory

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsphweid/chordsheet/model"
)

func def(root model.Note, acc model.Accidental, q model.ChordQuality, inv model.Inversion) model.ChordDefinition {
	return model.ChordDefinition{Root: root, RootAccidental: acc, Quality: q, Inversion: inv}
}

func names(v Voicing) []string {
	var res []string
	for _, p := range v.Pitches {
		res = append(res, p.String())
	}
	return res
}

func TestMinorSeventhIsSpelledWithFlats(t *testing.T) {
	v, err := Generate(def(model.NoteF, model.AccidentalNone, model.QualityMinor7, model.InversionRoot), 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"F3", "Ab3", "C4", "Eb4"}, names(v))
	assert.Equal(t, "Fm7", v.DisplayName)
}

func TestAugmentedWithFlatRoot(t *testing.T) {
	v, err := Generate(def(model.NoteD, model.AccidentalFlat, model.QualityAugmented, model.InversionRoot), 4)
	require.NoError(t, err)
	assert.Equal(t, []string{"Db4", "F4", "A4"}, names(v))
	assert.Equal(t, "Dbaug", v.DisplayName)
}

func TestOctaveWrapping(t *testing.T) {
	v, err := Generate(def(model.NoteB, model.AccidentalNone, model.QualityMajor, model.InversionRoot), 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"B3", "D#4", "F#4"}, names(v))
}

func TestDiminishedSpelling(t *testing.T) {
	v, err := Generate(def(model.NoteC, model.AccidentalNone, model.QualityDiminished, model.InversionRoot), 4)
	require.NoError(t, err)
	assert.Equal(t, []string{"C4", "Eb4", "Gb4"}, names(v))
}

func TestHalfDiminishedKeepsCbAboveAb(t *testing.T) {
	v, err := Generate(def(model.NoteF, model.AccidentalNone, model.QualityHalfDiminished7, model.InversionRoot), 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"F3", "Ab3", "Cb4", "Eb4"}, names(v))
	assert.Equal(t, "Fø7", v.DisplayName)
}

func TestFirstInversionStaysInRegister(t *testing.T) {
	v, err := Generate(def(model.NoteC, model.AccidentalNone, model.QualityMajor, model.InversionFirst), 4)
	require.NoError(t, err)
	assert.Equal(t, []string{"E3", "G3", "C4"}, names(v))
	assert.Equal(t, "C|6|", v.DisplayName)
}

func TestInvertedChordsAscend(t *testing.T) {
	v, err := Generate(def(model.NoteF, model.AccidentalNone, model.QualityHalfDiminished7, model.InversionFirst), 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"Ab2", "Cb3", "Eb3", "F3"}, names(v))
	for i := 1; i < len(v.Pitches); i++ {
		assert.Greater(t, Semitone(v.Pitches[i]), Semitone(v.Pitches[i-1]))
	}
}

func TestThirdInversionOfTriadIsRootPosition(t *testing.T) {
	v, err := Generate(def(model.NoteC, model.AccidentalNone, model.QualityMajor, model.InversionThird), 4)
	require.NoError(t, err)
	assert.Equal(t, []string{"C4", "E4", "G4"}, names(v))
}

func TestDisplayNameFigures(t *testing.T) {
	assert := assert.New(t)
	assert.Equal("Cm|6|4", DisplayName(def(model.NoteC, model.AccidentalNone, model.QualityMinor, model.InversionSecond)))
	assert.Equal("G7|4|2", DisplayName(def(model.NoteG, model.AccidentalNone, model.QualityDominant7, model.InversionThird)))
	assert.Equal("Bbmaj7|6|5", DisplayName(def(model.NoteB, model.AccidentalFlat, model.QualityMajor7, model.InversionFirst)))
	assert.Equal("F#sus4", DisplayName(def(model.NoteF, model.AccidentalSharp, model.QualitySus4, model.InversionRoot)))
}

func TestUnknownQuality(t *testing.T) {
	_, err := Generate(def(model.NoteC, model.AccidentalNone, "power", model.InversionRoot), 4)
	assert.True(t, errors.Is(err, ErrUnknownQuality))
}

func TestParseQuality(t *testing.T) {
	assert := assert.New(t)
	q, err := ParseQuality("min")
	assert.NoError(err)
	assert.Equal(model.QualityMinor, q)
	q, err = ParseQuality("half-diminished7")
	assert.NoError(err)
	assert.Equal(model.QualityHalfDiminished7, q)
	_, err = ParseQuality("nope")
	assert.Error(err)
}

func TestAllQualitiesGenerate(t *testing.T) {
	for _, q := range Qualities() {
		t.Run(string(q), func(t *testing.T) {
			v, err := Generate(def(model.NoteE, model.AccidentalFlat, q, model.InversionRoot), 4)
			assert.NoError(t, err)
			assert.GreaterOrEqual(t, len(v.Pitches), 3)
		})
	}
}

type failingService struct{}

func (failingService) GenerateChordPitches(context.Context, model.ChordDefinition, int) (Voicing, error) {
	return Voicing{}, errors.New("process exited")
}

func TestResolveFallsBackToRoot(t *testing.T) {
	v, degraded := Resolve(context.Background(), failingService{}, def(model.NoteB, model.AccidentalFlat, model.QualityMinor, model.InversionRoot), 3)

	assert := assert.New(t)
	assert.True(degraded)
	assert.Equal([]model.Pitch{{Note: model.NoteB, Accidental: model.AccidentalFlat, Octave: 3}}, v.Pitches)
	assert.Equal("Bb", v.DisplayName)
}

func TestResolveUsesService(t *testing.T) {
	v, degraded := Resolve(context.Background(), Local{}, def(model.NoteC, model.AccidentalNone, model.QualityMajor, model.InversionRoot), 4)
	assert.False(t, degraded)
	assert.Len(t, v.Pitches, 3)
}

func TestLocalHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Local{}.GenerateChordPitches(ctx, def(model.NoteC, model.AccidentalNone, model.QualityMajor, model.InversionRoot), 4)
	assert.ErrorIs(t, err, context.Canceled)
}
