package logger

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultLoggerIsSilent(t *testing.T) {
	assert.False(t, Logger().Enabled(context.Background(), slog.LevelError))
}

func TestOnceWarnsOncePerKey(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&buf, nil)))
	defer SetLogger(nil)

	var once Once
	assert := assert.New(t)
	assert.True(once.Warn("s1", 1, "geometry unavailable"))
	assert.False(once.Warn("s1", 1, "geometry unavailable"))
	assert.True(once.Warn("s1", 2, "geometry unavailable"))
	assert.Equal(2, strings.Count(buf.String(), "geometry unavailable"))
}

func TestOnceKeepsOneEntryPerKey(t *testing.T) {
	var once Once
	for rev := uint64(1); rev <= 100; rev++ {
		once.Warn("s1", rev, "geometry unavailable")
		once.Warn("s2", rev, "geometry unavailable")
	}
	assert.Equal(t, 2, once.Len())
}
