package midi

import (
	"bytes"
	"io"
	"sort"

	"github.com/pkg/errors"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/jsphweid/chordsheet/util"
)

// readSMF parses an SMF. The decoder panics on some malformed input, which
// is returned as an error instead.
func readSMF(r io.Reader) (s *smf.SMF, e error) {
	defer func() {
		if r := recover(); r != nil {
			e = errors.Errorf("malformed midi: %v", r)
		}
	}()

	dat, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "could not read midi")
	}
	res, err := smf.ReadFrom(bytes.NewReader(dat))
	if err != nil {
		return nil, errors.Wrap(err, "could not parse midi")
	}
	return res, nil
}

// chordsOf groups the note-ons of every track by absolute tick and returns
// the sounding keys, lowest first, in time order.
func chordsOf(s *smf.SMF) [][]uint8 {
	byTick := make(map[int64][]uint8)
	for _, track := range s.Tracks {
		var abs int64
		for _, ev := range track {
			abs += int64(ev.Delta)
			var ch, key, vel uint8
			if ev.Message.GetNoteOn(&ch, &key, &vel) && vel > 0 {
				byTick[abs] = append(byTick[abs], key)
			}
		}
	}

	var res [][]uint8
	for _, tick := range util.GetKeys(byTick) {
		keys := byTick[tick]
		sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
		res = append(res, keys)
	}
	return res
}
