package record

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kasuganosora/recordmerge/pkg/types"
)

func TestMergeSequentialInnerBindsLatestPreceding(t *testing.T) {
	left := newTestRecords(t, []map[string]uint64{
		{"lts": 10, "k": 1, "lv": 100},
		{"lts": 20, "k": 1, "lv": 200},
	}, []string{"lts", "k", "lv"})
	right := newTestRecords(t, []map[string]uint64{
		{"rts": 15, "k": 1, "rv": 1000},
	}, []string{"rts", "k", "rv"})

	merged, err := left.MergeSequential(right, "lts", "rts", []string{"k"}, []string{"k"}, types.SeqInner, nil)
	require.NoError(t, err)
	require.Equal(t, 1, merged.Len())

	row, _ := merged.GetRow(0)
	assert.Equal(t, uint64(100), row.GetWithDefault("lv", 0))
	assert.Equal(t, uint64(1000), row.GetWithDefault("rv", 0))
}

func TestMergeSequentialLeftUseLatest(t *testing.T) {
	left := newTestRecords(t, []map[string]uint64{
		{"lts": 10, "k": 1, "lv": 100},
	}, []string{"lts", "k", "lv"})
	right := newTestRecords(t, []map[string]uint64{
		{"rts": 15, "k": 1, "rv": 1000},
		{"rts": 20, "k": 1, "rv": 2000},
	}, []string{"rts", "k", "rv"})

	merged, err := left.MergeSequential(right, "lts", "rts", []string{"k"}, []string{"k"}, types.SeqLeftUseLatest, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, merged.Len())
}

func TestMergeSequentialInnerDefaultBindsOnlyFirst(t *testing.T) {
	left := newTestRecords(t, []map[string]uint64{
		{"lts": 10, "k": 1, "lv": 100},
	}, []string{"lts", "k", "lv"})
	right := newTestRecords(t, []map[string]uint64{
		{"rts": 15, "k": 1, "rv": 1000},
		{"rts": 20, "k": 1, "rv": 2000},
	}, []string{"rts", "k", "rv"})

	merged, err := left.MergeSequential(right, "lts", "rts", []string{"k"}, []string{"k"}, types.SeqInner, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, merged.Len())
	row, _ := merged.GetRow(0)
	assert.Equal(t, uint64(1000), row.GetWithDefault("rv", 0))
}

func TestMergeSequentialPureTimeJoinWithEmptyKeys(t *testing.T) {
	left := newTestRecords(t, []map[string]uint64{
		{"lts": 10, "lv": 100},
		{"lts": 30, "lv": 300},
	}, []string{"lts", "lv"})
	right := newTestRecords(t, []map[string]uint64{
		{"rts": 20, "rv": 1000},
	}, []string{"rts", "rv"})

	merged, err := left.MergeSequential(right, "lts", "rts", nil, nil, types.SeqInner, nil)
	require.NoError(t, err)
	require.Equal(t, 1, merged.Len())
	row, _ := merged.GetRow(0)
	assert.Equal(t, uint64(100), row.GetWithDefault("lv", 0))
}

func TestMergeSequentialOuterKeepsUnbound(t *testing.T) {
	left := newTestRecords(t, []map[string]uint64{
		{"lts": 10, "k": 1, "lv": 100},
	}, []string{"lts", "k", "lv"})
	right := newTestRecords(t, []map[string]uint64{
		{"rts": 5, "k": 9, "rv": 900},
	}, []string{"rts", "k", "rv"})

	merged, err := left.MergeSequential(right, "lts", "rts", []string{"k"}, []string{"k"}, types.SeqOuter, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, merged.Len())
}

func TestMergeSequentialNoRightRowEmittedTwice(t *testing.T) {
	// A right row binds to exactly one left row (the latest-so-far at the
	// time it is visited); a later left row sharing the same join key
	// starts a fresh, empty sub-record list rather than re-claiming it.
	left := newTestRecords(t, []map[string]uint64{
		{"lts": 10, "k": 1, "lv": 100},
		{"lts": 12, "k": 1, "lv": 110},
	}, []string{"lts", "k", "lv"})
	right := newTestRecords(t, []map[string]uint64{
		{"rts": 11, "k": 1, "rv": 1000},
	}, []string{"rts", "k", "rv"})

	merged, err := left.MergeSequential(right, "lts", "rts", []string{"k"}, []string{"k"}, types.SeqLeftUseLatest, nil)
	require.NoError(t, err)
	// L1+R1 merged, plus L2 emitted alone (unbound): two rows, R1 counted once.
	assert.Equal(t, 2, merged.Len())
}
