package record

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kasuganosora/recordmerge/pkg/types"
)

func TestMergeKeyedInner(t *testing.T) {
	left := newTestRecords(t, []map[string]uint64{
		{"key": 1, "lv": 10},
		{"key": 2, "lv": 20},
	}, []string{"key", "lv"})
	right := newTestRecords(t, []map[string]uint64{
		{"rkey": 1, "rv": 100},
		{"rkey": 3, "rv": 300},
	}, []string{"rkey", "rv"})

	merged, err := left.MergeKeyed(right, []string{"key"}, []string{"rkey"}, types.Inner, nil)
	require.NoError(t, err)
	require.Equal(t, 1, merged.Len())

	row, _ := merged.GetRow(0)
	assert.Equal(t, uint64(1), row.GetWithDefault("key", 0))
	assert.Equal(t, uint64(10), row.GetWithDefault("lv", 0))
	assert.Equal(t, uint64(100), row.GetWithDefault("rv", 0))
	assert.False(t, merged.Columns().Has("_tmp_merge_side"))
}

func TestMergeKeyedOuterKeepsUnmatchedBothSides(t *testing.T) {
	left := newTestRecords(t, []map[string]uint64{
		{"key": 1, "lv": 10},
		{"key": 2, "lv": 20},
	}, []string{"key", "lv"})
	right := newTestRecords(t, []map[string]uint64{
		{"rkey": 1, "rv": 100},
		{"rkey": 3, "rv": 300},
	}, []string{"rkey", "rv"})

	merged, err := left.MergeKeyed(right, []string{"key"}, []string{"rkey"}, types.Outer, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, merged.Len())
}

func TestMergeKeyedOneToMany(t *testing.T) {
	left := newTestRecords(t, []map[string]uint64{{"key": 1, "lv": 10}}, []string{"key", "lv"})
	right := newTestRecords(t, []map[string]uint64{
		{"rkey": 1, "rv": 100},
		{"rkey": 1, "rv": 101},
	}, []string{"rkey", "rv"})

	merged, err := left.MergeKeyed(right, []string{"key"}, []string{"rkey"}, types.Inner, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, merged.Len())
}

func TestMergeKeyedDoesNotMutateInputs(t *testing.T) {
	left := newTestRecords(t, []map[string]uint64{{"key": 1}}, []string{"key"})
	right := newTestRecords(t, []map[string]uint64{{"rkey": 1}}, []string{"rkey"})

	_, err := left.MergeKeyed(right, []string{"key"}, []string{"rkey"}, types.Inner, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"key"}, left.ColumnNames())
	assert.Equal(t, []string{"rkey"}, right.ColumnNames())
}

func TestMergeKeyedInvalidHow(t *testing.T) {
	left := newTestRecords(t, nil, []string{"key"})
	right := newTestRecords(t, nil, []string{"rkey"})
	_, err := left.MergeKeyed(right, []string{"key"}, []string{"rkey"}, types.JoinHow(99), nil)
	assert.Error(t, err)
}

func TestMergeKeyedMismatchedKeyLengths(t *testing.T) {
	left := newTestRecords(t, nil, []string{"a", "b"})
	right := newTestRecords(t, nil, []string{"c"})
	_, err := left.MergeKeyed(right, []string{"a", "b"}, []string{"c"}, types.Inner, nil)
	assert.Error(t, err)
}
