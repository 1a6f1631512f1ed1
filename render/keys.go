package render

import (
	"strings"

	"github.com/pkg/errors"
)

var majorKeys = map[string]int{
	"C": 0, "G": 1, "D": 2, "A": 3, "E": 4, "B": 5, "F#": 6, "C#": 7,
	"F": -1, "Bb": -2, "Eb": -3, "Ab": -4, "Db": -5, "Gb": -6, "Cb": -7,
}

var minorKeys = map[string]int{
	"A": 0, "E": 1, "B": 2, "F#": 3, "C#": 4, "G#": 5, "D#": 6, "A#": 7,
	"D": -1, "G": -2, "C": -3, "F": -4, "Bb": -5, "Eb": -6, "Ab": -7,
}

// KeyAccidentals returns the number of sharps (positive) or flats
// (negative) in a key signature such as "Bb", "F#m" or "C".
func KeyAccidentals(key string) (int, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return 0, nil
	}
	table := majorKeys
	if strings.HasSuffix(key, "m") {
		table = minorKeys
		key = strings.TrimSuffix(key, "m")
	}
	n, ok := table[key]
	if !ok {
		return 0, errors.Errorf("unknown key signature %q", key)
	}
	return n, nil
}
