package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPassengerCountScalar(t *testing.T) {
	var p PassengerCount
	err := json.Unmarshal([]byte(`23`), &p)
	require.NoError(t, err)
	assert.Equal(t, 23, p.Latest())
	assert.False(t, p.IsZero())
}

func TestPassengerCountSeriesPicksLatestTimestamp(t *testing.T) {
	// Keys are millisecond timestamps; the chronologically latest entry
	// wins regardless of map ordering.
	var p PassengerCount
	err := json.Unmarshal([]byte(`{"1700000300000": 7, "1700000100000": 31, "1700000200000": 12}`), &p)
	require.NoError(t, err)
	assert.Equal(t, 7, p.Latest())
}

func TestPassengerCountSeriesChronologicalOrder(t *testing.T) {
	var p PassengerCount
	err := json.Unmarshal([]byte(`{"200": 2, "100": 1, "300": 3}`), &p)
	require.NoError(t, err)

	series := p.Series()
	require.Len(t, series, 3)
	assert.Equal(t, int64(100), series[0].Timestamp)
	assert.Equal(t, int64(300), series[2].Timestamp)
	assert.Equal(t, 3, series[2].Count)
}

func TestPassengerCountMalformed(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "string", input: `"full"`},
		{name: "array", input: `[1, 2]`},
		{name: "null", input: `null`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p PassengerCount
			err := json.Unmarshal([]byte(tt.input), &p)
			require.NoError(t, err)
			assert.Equal(t, 0, p.Latest())
		})
	}
}

func TestPassengerCountSeriesSkipsJunkKeys(t *testing.T) {
	var p PassengerCount
	err := json.Unmarshal([]byte(`{"abc": 5, "1700000100000": 9}`), &p)
	require.NoError(t, err)
	assert.Equal(t, 9, p.Latest())
	assert.Len(t, p.Series(), 1)
}

func TestPassengerCountMarshalsAsScalar(t *testing.T) {
	p := NewPassengerSeries(map[int64]int{100: 4, 200: 11})
	out, err := json.Marshal(p)
	require.NoError(t, err)
	assert.Equal(t, `11`, string(out))
}

func TestPassengerCountZeroValue(t *testing.T) {
	var p PassengerCount
	assert.True(t, p.IsZero())
	assert.Equal(t, 0, p.Latest())
	assert.Nil(t, p.Series())
}
