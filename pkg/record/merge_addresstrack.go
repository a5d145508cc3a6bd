package record

import (
	"github.com/kasuganosora/recordmerge/pkg/reclog"
	"github.com/kasuganosora/recordmerge/pkg/rerr"
	"github.com/kasuganosora/recordmerge/pkg/types"
)

const (
	tmpAddrType      = "_tmp_addr_type"
	tmpAddrTimestamp = "_tmp_addr_timestamp"
)

// sinkState is the live bookkeeping for one processing sink during the
// address-track sweep: its current row and the set of raw addresses that
// currently alias it. Multiple keys in the processing map may point to the
// same sinkState after a COPY unifies two address chains; each sinkState
// object is the single authority for its alias closure.
type sinkState struct {
	row   *Record
	addrs map[uint64]struct{}
}

// MergeAddressTrack merges three trace streams — a SOURCE table (handle
// creation events), a COPY table (handle-to-handle address transfers), and
// a SINK table (handle consumption events) — by tracking which raw
// addresses currently alias which live sink, and emitting one merged row
// each time a SOURCE event's address matches a still-open sink (§4.7).
//
// r is the SOURCE table. sourceStampKey/sourceKey name its unified-time and
// address columns; copyStampKey/copyFromKey/copyToKey and
// sinkStampKey/sinkFromKey do the same for copy and sink. The input-only
// columns copyStampKey, copyFromKey, copyToKey and sinkFromKey are dropped
// from the result; sinkStampKey is kept.
func (r *Records) MergeAddressTrack(
	copyRecords, sinkRecords *Records,
	sourceStampKey, sourceKey string,
	copyStampKey, copyFromKey, copyToKey string,
	sinkStampKey, sinkFromKey string,
	logger reclog.Logger,
) (*Records, error) {
	logger = reclog.OrNoOp(logger)
	for _, name := range []string{sourceStampKey, sourceKey} {
		if !r.columns.Has(name) {
			return nil, rerr.NewUnknownColumn("MergeAddressTrack", name)
		}
	}
	for _, name := range []string{copyStampKey, copyFromKey, copyToKey} {
		if !copyRecords.columns.Has(name) {
			return nil, rerr.NewUnknownColumn("MergeAddressTrack", name)
		}
	}
	for _, name := range []string{sinkStampKey, sinkFromKey} {
		if !sinkRecords.columns.Has(name) {
			return nil, rerr.NewUnknownColumn("MergeAddressTrack", name)
		}
	}

	outputColumns := unionColumnValues(unionColumnValues(r.columns.Values(), copyRecords.columns.Values()), sinkRecords.columns.Values())
	outputColumns = filterColumnValues(outputColumns, copyStampKey, copyFromKey, copyToKey, sinkFromKey)

	source := r.Clone()
	copyClone := copyRecords.Clone()
	sink := sinkRecords.Clone()

	if err := tagAddressType(source, types.TypeSource, sourceStampKey); err != nil {
		return nil, err
	}
	if err := copyClone.columns.Rename(copyStampKey, tmpAddrTimestamp); err != nil {
		return nil, err
	}
	copyTypes := make([]uint64, copyClone.Len())
	for i := range copyTypes {
		copyTypes[i] = uint64(types.TypeCopy)
	}
	if err := copyClone.AppendColumn(types.NewColumnValue(tmpAddrType), copyTypes); err != nil {
		return nil, err
	}
	if err := tagAddressType(sink, types.TypeSink, sinkStampKey); err != nil {
		return nil, err
	}

	concatColumns := unionColumnValues(unionColumnValues(source.columns.Values(), copyClone.columns.Values()), sink.columns.Values())
	concat, err := New(nil, concatColumns)
	if err != nil {
		return nil, err
	}
	if err := concat.Concat(source); err != nil {
		return nil, err
	}
	if err := concat.Concat(copyClone); err != nil {
		return nil, err
	}
	if err := concat.Concat(sink); err != nil {
		return nil, err
	}
	concat.Sort([]string{tmpAddrTimestamp}, false)

	logger.Debug("MergeAddressTrack: %d source, %d copy, %d sink rows, %d concatenated", source.Len(), copyClone.Len(), sink.Len(), concat.Len())

	merged, err := New(nil, concatColumns)
	if err != nil {
		return nil, err
	}

	processing := make(map[uint64]*sinkState)

	for _, row := range concat.rows {
		typeVal, _ := row.Get(tmpAddrType)
		switch types.RecordType(typeVal) {
		case types.TypeSink:
			addr, err := row.Get(sinkFromKey)
			if err != nil {
				continue
			}
			processing[addr] = &sinkState{row: row, addrs: map[uint64]struct{}{addr: {}}}

		case types.TypeCopy:
			to, errTo := row.Get(copyToKey)
			from, errFrom := row.Get(copyFromKey)
			if errTo != nil || errFrom != nil {
				continue
			}
			var target *sinkState
			for _, st := range processing {
				if _, ok := st.addrs[to]; ok {
					target = st
					break
				}
			}
			if target == nil {
				continue
			}
			target.addrs[from] = struct{}{}
			processing[from] = target
			for _, st := range processing {
				if st == target {
					continue
				}
				if addressSetsIntersect(st.addrs, target.addrs) {
					for a := range st.addrs {
						target.addrs[a] = struct{}{}
						processing[a] = target
					}
				}
			}

		case types.TypeSource:
			key, err := row.Get(sourceKey)
			if err != nil {
				continue
			}
			seen := make(map[*sinkState]bool)
			for _, st := range processing {
				if seen[st] {
					continue
				}
				if _, ok := st.addrs[key]; !ok {
					continue
				}
				seen[st] = true
				out := st.row.Clone()
				out.Merge(row)
				if err := merged.Append(out); err != nil {
					return nil, err
				}
				for a := range st.addrs {
					delete(processing, a)
				}
			}
		}
	}

	merged.columns.Drop(tmpAddrType, tmpAddrTimestamp, sinkFromKey, copyFromKey, copyToKey)
	finalOrder := make([]string, len(outputColumns))
	for i, cv := range outputColumns {
		finalOrder[i] = cv.Name
	}
	if err := merged.columns.Reindex(finalOrder); err != nil {
		return nil, err
	}
	return merged, nil
}

// tagAddressType appends the unified record-type and timestamp bookkeeping
// columns used by MergeAddressTrack, copying stampKey's value into
// "_tmp_addr_timestamp" (stampKey itself is retained on the row).
func tagAddressType(recs *Records, rt types.RecordType, stampKey string) error {
	n := recs.Len()
	typeVals := make([]uint64, n)
	stamps := make([]uint64, n)
	for i := range typeVals {
		typeVals[i] = uint64(rt)
	}
	for i, row := range recs.rows {
		stamps[i] = row.GetWithDefault(stampKey, types.Max)
	}
	if err := recs.AppendColumn(types.NewColumnValue(tmpAddrType), typeVals); err != nil {
		return err
	}
	return recs.AppendColumn(types.NewColumnValue(tmpAddrTimestamp), stamps)
}

func addressSetsIntersect(a, b map[uint64]struct{}) bool {
	small, big := a, b
	if len(big) < len(small) {
		small, big = big, small
	}
	for k := range small {
		if _, ok := big[k]; ok {
			return true
		}
	}
	return false
}

func filterColumnValues(values []types.ColumnValue, exclude ...string) []types.ColumnValue {
	drop := make(map[string]bool, len(exclude))
	for _, e := range exclude {
		drop[e] = true
	}
	out := make([]types.ColumnValue, 0, len(values))
	for _, v := range values {
		if !drop[v.Name] {
			out = append(out, v)
		}
	}
	return out
}
