package record

import (
	"strconv"

	"github.com/kasuganosora/recordmerge/pkg/reclog"
	"github.com/kasuganosora/recordmerge/pkg/rerr"
	"github.com/kasuganosora/recordmerge/pkg/types"
)

const (
	tmpKeyedSide         = "_tmp_merge_side"
	tmpKeyedHasValid     = "_tmp_merge_has_valid_key"
	tmpKeyedKeyColPrefix = "_tmp_merge_key_"
)

func keyedKeyColumn(i int) string {
	return tmpKeyedKeyColPrefix + strconv.Itoa(i)
}

// MergeKeyed joins r (left) against right using a relational equi-join on
// joinLeftKeys/joinRightKeys, following how (§4.5). Rows are clustered by
// join-key tuple; within a tuple every left row is paired with every right
// row sharing it. Rows whose tuple has no counterpart on the other side are
// retained or dropped according to how.
//
// Neither r nor right is mutated: both are cloned up front, so the
// temporary bookkeeping columns the algorithm appends never need to be
// stripped back off the caller's tables (only off the result).
func (r *Records) MergeKeyed(right *Records, joinLeftKeys, joinRightKeys []string, how types.JoinHow, logger reclog.Logger) (*Records, error) {
	logger = reclog.OrNoOp(logger)
	if len(joinLeftKeys) == 0 || len(joinLeftKeys) != len(joinRightKeys) {
		return nil, rerr.NewProgrammerError("MergeKeyed: join key lists must be non-empty and equal length, got %d and %d", len(joinLeftKeys), len(joinRightKeys))
	}
	if !how.Valid() {
		return nil, rerr.NewInvalidHow(how.String(), "inner", "left", "right", "outer")
	}
	for _, k := range joinLeftKeys {
		if !r.columns.Has(k) {
			return nil, rerr.NewUnknownColumn("MergeKeyed", k)
		}
	}
	for _, k := range joinRightKeys {
		if !right.columns.Has(k) {
			return nil, rerr.NewUnknownColumn("MergeKeyed", k)
		}
	}

	outputColumns := unionColumnValues(r.columns.Values(), right.columns.Values())

	left := r.Clone()
	rightClone := right.Clone()

	if err := tagSide(left, types.SideLeft); err != nil {
		return nil, err
	}
	if err := tagSide(rightClone, types.SideRight); err != nil {
		return nil, err
	}
	if err := tagJoinKeys(left, joinLeftKeys); err != nil {
		return nil, err
	}
	if err := tagJoinKeys(rightClone, joinRightKeys); err != nil {
		return nil, err
	}

	concatColumns := unionColumnValues(left.columns.Values(), rightClone.columns.Values())
	concat, err := New(nil, concatColumns)
	if err != nil {
		return nil, err
	}
	if err := concat.Concat(left); err != nil {
		return nil, err
	}
	if err := concat.Concat(rightClone); err != nil {
		return nil, err
	}

	sortKeys := make([]string, 0, len(joinLeftKeys)+1)
	for i := range joinLeftKeys {
		sortKeys = append(sortKeys, keyedKeyColumn(i))
	}
	sortKeys = append(sortKeys, tmpKeyedSide)
	concat.Sort(sortKeys, true)

	logger.Debug("MergeKeyed: %d left rows, %d right rows, %d concatenated", left.Len(), rightClone.Len(), concat.Len())

	merged, err := New(nil, concatColumns)
	if err != nil {
		return nil, err
	}

	found := make(map[*Record]bool)
	var emptyRecords []*Record
	var bucket []*Record
	haveKey := false
	var lastKey string

	flush := func() {
		for _, lr := range bucket {
			if !found[lr] {
				emptyRecords = append(emptyRecords, lr)
			}
		}
		bucket = nil
	}

	nKeys := len(joinLeftKeys)
	for _, row := range concat.rows {
		hasValid, _ := row.Get(tmpKeyedHasValid)
		if hasValid == 0 {
			emptyRecords = append(emptyRecords, row)
			continue
		}
		keyTuple := make([]uint64, nKeys)
		for i := 0; i < nKeys; i++ {
			keyTuple[i], _ = row.Get(keyedKeyColumn(i))
		}
		gk := GroupKey(keyTuple)
		if !haveKey || gk != lastKey {
			flush()
			lastKey = gk
			haveKey = true
		}

		sideVal, _ := row.Get(tmpKeyedSide)
		if types.MergeSide(sideVal) == types.SideLeft {
			bucket = append(bucket, row)
			continue
		}

		if len(bucket) == 0 {
			emptyRecords = append(emptyRecords, row)
			continue
		}
		for _, lr := range bucket {
			found[lr] = true
			out := lr.Clone()
			out.Merge(row)
			if err := merged.Append(out); err != nil {
				return nil, err
			}
		}
	}
	flush()

	for _, er := range emptyRecords {
		sideVal, _ := er.Get(tmpKeyedSide)
		side := types.MergeSide(sideVal)
		if side == types.SideLeft && (how == types.Left || how == types.Outer) {
			if err := merged.Append(er); err != nil {
				return nil, err
			}
		} else if side == types.SideRight && (how == types.Right || how == types.Outer) {
			if err := merged.Append(er); err != nil {
				return nil, err
			}
		}
	}

	tmpNames := make([]string, 0, nKeys+2)
	tmpNames = append(tmpNames, tmpKeyedSide, tmpKeyedHasValid)
	for i := 0; i < nKeys; i++ {
		tmpNames = append(tmpNames, keyedKeyColumn(i))
	}
	merged.columns.Drop(tmpNames...)

	finalOrder := make([]string, len(outputColumns))
	for i, cv := range outputColumns {
		finalOrder[i] = cv.Name
	}
	if err := merged.columns.Reindex(finalOrder); err != nil {
		return nil, err
	}
	return merged, nil
}

// tagSide appends the side-tag column to every row of recs.
func tagSide(recs *Records, side types.MergeSide) error {
	vals := make([]uint64, recs.Len())
	for i := range vals {
		vals[i] = uint64(side)
	}
	return recs.AppendColumn(types.NewColumnValue(tmpKeyedSide), vals)
}

// tagJoinKeys appends one "_tmp_merge_key_i" column per join key (valued at
// GetWithDefault(key, types.Max)) plus the "has all join keys" flag column.
func tagJoinKeys(recs *Records, keys []string) error {
	hasValid := make([]uint64, recs.Len())
	for i, row := range recs.rows {
		if row.HasAll(keys) {
			hasValid[i] = 1
		}
	}
	if err := recs.AppendColumn(types.NewColumnValue(tmpKeyedHasValid), hasValid); err != nil {
		return err
	}
	for i, k := range keys {
		vals := make([]uint64, recs.Len())
		for j, row := range recs.rows {
			vals[j] = row.GetWithDefault(k, types.Max)
		}
		if err := recs.AppendColumn(types.NewColumnValue(keyedKeyColumn(i)), vals); err != nil {
			return err
		}
	}
	return nil
}

// unionColumnValues returns the union of a and b's ColumnValues by name,
// first occurrence wins, preserving a's order then b's new names.
func unionColumnValues(a, b []types.ColumnValue) []types.ColumnValue {
	seen := make(map[string]bool, len(a)+len(b))
	out := make([]types.ColumnValue, 0, len(a)+len(b))
	for _, v := range a {
		if !seen[v.Name] {
			seen[v.Name] = true
			out = append(out, v)
		}
	}
	for _, v := range b {
		if !seen[v.Name] {
			seen[v.Name] = true
			out = append(out, v)
		}
	}
	return out
}
