package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSystemBounds(t *testing.T) {
	assert := assert.New(t)
	coords := StaffCoordinates{
		NumSystems: 2,
		Measures: []MeasureBound{
			{SystemIndex: 0, StartX: 10},
			{SystemIndex: 0, StartX: 110},
			{SystemIndex: 1, StartX: 10},
		},
	}
	assert.Len(coords.SystemBounds(0), 2)
	assert.Equal(10.0, coords.SystemBounds(1)[0].StartX)
	assert.Empty(coords.SystemBounds(2))
	assert.True(coords.Interactive())

	coords.Inert = true
	assert.False(coords.Interactive())
}
