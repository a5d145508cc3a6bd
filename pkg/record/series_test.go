package record

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeriesAtAndLen(t *testing.T) {
	recs := newTestRecords(t, []map[string]uint64{{"a": 1}, {}, {"a": 3}}, []string{"a"})
	series, err := recs.GetColumnSeries("a")
	require.NoError(t, err)
	require.Equal(t, 3, series.Len())

	v0, err := series.At(0)
	require.NoError(t, err)
	assert.True(t, v0.Present)
	assert.Equal(t, uint64(1), v0.Value)

	v1, err := series.At(1)
	require.NoError(t, err)
	assert.False(t, v1.Present)
}

func TestSeriesAtOutOfRange(t *testing.T) {
	recs := newTestRecords(t, nil, []string{"a"})
	series, err := recs.GetColumnSeries("a")
	require.NoError(t, err)
	_, err = series.At(0)
	assert.Error(t, err)
}
