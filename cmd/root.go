package cmd

import (
	"encoding/json"
	"log/slog"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/jsphweid/chordsheet/constants"
	"github.com/jsphweid/chordsheet/logger"
	"github.com/jsphweid/chordsheet/model"
	"github.com/jsphweid/chordsheet/store"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "chordsheet",
	Short: "Chord worksheet staff engine",
	Long:  `Lays out chord worksheets on staves and turns pointer input into chord placements.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		logger.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log debug output")
}

func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}

func loadConfig(cmd *cobra.Command) (constants.Config, error) {
	cfg, err := constants.Load()
	if err != nil {
		return cfg, err
	}
	if f := cmd.Flags().Lookup("width"); f != nil && f.Changed {
		width, _ := cmd.Flags().GetFloat64("width")
		cfg.RenderWidth = width
	}
	if f := cmd.Flags().Lookup("addr"); f != nil && f.Changed {
		cfg.Addr, _ = cmd.Flags().GetString("addr")
	}
	return cfg, cfg.Validate()
}

func loadWorksheet(path string) (model.Worksheet, error) {
	var ws model.Worksheet
	data, err := os.ReadFile(path)
	if err != nil {
		return ws, errors.Wrap(err, "could not read worksheet")
	}
	if err := json.Unmarshal(data, &ws); err != nil {
		return ws, errors.Wrapf(err, "could not parse worksheet %s", path)
	}
	return ws, store.ValidateWorksheet(ws)
}

func findSection(ws model.Worksheet, id string) (model.Section, error) {
	for _, sec := range ws.Sections {
		if sec.ID == id || id == "" {
			return sec, nil
		}
	}
	return model.Section{}, errors.Wrapf(store.ErrNotFound, "section %s", id)
}
