package constants

import (
	"os"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

type Layout struct {
	MeasuresPerSystem int     `yaml:"measuresPerSystem"`
	SystemHeight      float64 `yaml:"systemHeight"`
	SystemSpacing     float64 `yaml:"systemSpacing"`
	PaddingTop        float64 `yaml:"paddingTop"`
	// ChordOffsetX keeps chords left-aligned inside a measure so there is
	// room for accidentals.
	ChordOffsetX float64 `yaml:"chordOffsetX"`
}

type Stave struct {
	TopOffset          float64 `yaml:"topOffset"`
	LineSpacing        float64 `yaml:"lineSpacing"`
	LeftMargin         float64 `yaml:"leftMargin"`
	RightMargin        float64 `yaml:"rightMargin"`
	ClefWidth          float64 `yaml:"clefWidth"`
	FontSize           float64 `yaml:"fontSize"`
	KeyAccidentalWidth float64 `yaml:"keyAccidentalWidth"`
}

type Interaction struct {
	MinHold  time.Duration `yaml:"minHold"`
	Throttle time.Duration `yaml:"throttle"`
}

type Config struct {
	Addr        string      `yaml:"addr"`
	RenderWidth float64     `yaml:"renderWidth"`
	Layout      Layout      `yaml:"layout"`
	Stave       Stave       `yaml:"stave"`
	Interaction Interaction `yaml:"interaction"`
}

func Default() Config {
	return Config{
		Addr:        ":8080",
		RenderWidth: 800,
		Layout: Layout{
			MeasuresPerSystem: 4,
			SystemHeight:      120,
			SystemSpacing:     40,
			PaddingTop:        0,
			ChordOffsetX:      15,
		},
		Stave: Stave{
			TopOffset:          40,
			LineSpacing:        10,
			LeftMargin:         10,
			RightMargin:        10,
			ClefWidth:          38,
			FontSize:           24,
			KeyAccidentalWidth: 10,
		},
		Interaction: Interaction{
			MinHold:  300 * time.Millisecond,
			Throttle: 50 * time.Millisecond,
		},
	}
}

// Load reads the YAML file named by CHORDSHEET_CONFIG, if any, on top of
// the defaults and then applies the single-value environment overrides.
func Load() (Config, error) {
	cfg := Default()
	if path := os.Getenv("CHORDSHEET_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, errors.Wrap(err, "could not read config")
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, errors.Wrapf(err, "could not parse config %s", path)
		}
	}

	if addr := os.Getenv("CHORDSHEET_ADDR"); addr != "" {
		cfg.Addr = addr
	}
	if v := os.Getenv("CHORDSHEET_RENDER_WIDTH"); v != "" {
		width, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return cfg, errors.Wrap(err, "CHORDSHEET_RENDER_WIDTH")
		}
		cfg.RenderWidth = width
	}
	if v := os.Getenv("CHORDSHEET_MEASURES_PER_SYSTEM"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return cfg, errors.Wrap(err, "CHORDSHEET_MEASURES_PER_SYSTEM")
		}
		cfg.Layout.MeasuresPerSystem = n
	}
	if v := os.Getenv("CHORDSHEET_THROTTLE_MS"); v != "" {
		ms, err := strconv.Atoi(v)
		if err != nil {
			return cfg, errors.Wrap(err, "CHORDSHEET_THROTTLE_MS")
		}
		cfg.Interaction.Throttle = time.Duration(ms) * time.Millisecond
	}

	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	if c.Layout.MeasuresPerSystem < 1 {
		return errors.Errorf("measuresPerSystem must be positive, got %d", c.Layout.MeasuresPerSystem)
	}
	if c.RenderWidth <= 0 {
		return errors.Errorf("renderWidth must be positive, got %v", c.RenderWidth)
	}
	if c.Layout.SystemHeight <= 0 {
		return errors.Errorf("systemHeight must be positive, got %v", c.Layout.SystemHeight)
	}
	return nil
}
