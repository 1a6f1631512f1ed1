package cmd

import (
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/jsphweid/chordsheet/midi"
	"github.com/jsphweid/chordsheet/model"
)

var (
	previewSection string
	previewBPM     float64
	previewAnswers bool
)

func init() {
	previewCmd.Flags().StringVar(&previewSection, "section", "", "section id (default first section)")
	previewCmd.Flags().Float64Var(&previewBPM, "bpm", 90, "tempo")
	previewCmd.Flags().BoolVar(&previewAnswers, "answers", false, "include answer chords")
	rootCmd.AddCommand(previewCmd)
}

var previewCmd = &cobra.Command{
	Use:   "preview <worksheet.json> <out.mid>",
	Short: "Writes a section as a midi file",
	Long:  `Writes the chords of one worksheet section as a standard midi file, one chord per measure.`,
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := loadWorksheet(args[0])
		if err != nil {
			return err
		}
		sec, err := findSection(ws, previewSection)
		if err != nil {
			return err
		}
		f, err := os.Create(args[1])
		if err != nil {
			return errors.Wrap(err, "could not create midi file")
		}
		return writePreview(f, sec, previewBPM, previewAnswers || ws.ShowAnswers)
	},
}

// writePreview closes w even when writing fails and reports the close
// error otherwise, since that is where a failed flush shows up.
func writePreview(w io.WriteCloser, sec model.Section, bpm float64, showAnswers bool) (err error) {
	defer func() {
		if cerr := w.Close(); cerr != nil && err == nil {
			err = errors.Wrap(cerr, "could not close midi file")
		}
	}()
	return midi.WriteSection(w, sec, bpm, showAnswers)
}
