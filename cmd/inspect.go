package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jsphweid/chordsheet/layout"
	"github.com/jsphweid/chordsheet/render"
)

func init() {
	inspectCmd.Flags().Float64("width", 0, "render width in pixels (default from config)")
	rootCmd.AddCommand(inspectCmd)
}

var inspectCmd = &cobra.Command{
	Use:   "inspect <worksheet.json>",
	Short: "Prints the layout of a worksheet",
	Long:  `Prints the systems and measure bounds every section of a worksheet lays out to.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		ws, err := loadWorksheet(args[0])
		if err != nil {
			return err
		}
		metrics, err := render.NewMetrics(cfg.Stave)
		if err != nil {
			return err
		}
		engine := layout.New(cfg.Layout, metrics)

		for _, sec := range ws.Sections {
			coords := engine.Compute(sec, cfg.RenderWidth)
			fmt.Printf("section %s %q: %d measures, %d systems, height %v\n",
				sec.ID, sec.Title, sec.MeasureCount(), coords.NumSystems, coords.TotalHeight)
			if coords.Inert {
				fmt.Println("  inert: renderer could not lay out this section")
				continue
			}
			i := 0
			for sys := 0; sys < coords.NumSystems; sys++ {
				fmt.Printf("  system %d\n", sys)
				for _, b := range coords.SystemBounds(sys) {
					m := sec.Staff.Measures[i]
					i++
					label := "-"
					if chord, ok := m.Chord(); ok {
						label = chord.DisplayName
					}
					fmt.Printf("    m%-3d x %.1f..%.1f staff y %.1f..%.1f  %s\n",
						m.Number, b.StartX, b.EndX, b.StaffTopY, b.StaffBottomY, label)
				}
			}
		}
		return nil
	},
}
