package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jsphweid/chordsheet/model"
	"github.com/jsphweid/chordsheet/util"
)

func init() {
	rootCmd.AddCommand(reportCmd)
}

var reportCmd = &cobra.Command{
	Use:   "report <worksheet.json>",
	Short: "Creates a report",
	Long:  `Summarises the sections, chords and answers of a worksheet.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := loadWorksheet(args[0])
		if err != nil {
			return err
		}
		r := analyze(ws)
		fmt.Printf("worksheet: %s\n", ws.Title)
		fmt.Printf("sections: %v\n", r.numSections)
		fmt.Printf("measures: %v (%v empty)\n", r.numMeasures, r.numEmpty)
		fmt.Printf("chords: %v (%v answers)\n", r.numChords, r.numAnswers)
		for _, q := range util.GetKeys(r.qualities) {
			fmt.Printf("  %s: %v\n", q, r.qualities[q])
		}
		fmt.Printf("sections at capacity: %v\n", r.atCapacity)
		return nil
	},
}

type worksheetReport struct {
	numSections int
	numMeasures int
	numEmpty    int
	numChords   int
	numAnswers  int
	atCapacity  int
	qualities   map[model.ChordQuality]int
}

func analyze(ws model.Worksheet) worksheetReport {
	r := worksheetReport{qualities: make(map[model.ChordQuality]int)}
	for _, sec := range ws.Sections {
		r.numSections += 1
		r.numMeasures += sec.MeasureCount()
		if sec.MaxMeasures > 0 && sec.MeasureCount() >= sec.MaxMeasures {
			r.atCapacity += 1
		}
		for _, m := range sec.Staff.Measures {
			chord, ok := m.Chord()
			if !ok {
				r.numEmpty += 1
				continue
			}
			r.numChords += 1
			if chord.IsAnswer {
				r.numAnswers += 1
			}
			if chord.Definition != nil {
				r.qualities[chord.Definition.Quality] += 1
			}
		}
	}
	return r
}
