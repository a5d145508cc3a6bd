package record

import (
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/kasuganosora/recordmerge/pkg/reclog"
	"github.com/kasuganosora/recordmerge/pkg/rerr"
	"github.com/kasuganosora/recordmerge/pkg/types"
)

// Records is an ordered table of Record sharing a Columns schema. Every row's
// domain is a subset of the table's columns; rows need not cover every
// column (sparse).
type Records struct {
	id      uuid.UUID
	columns *Columns
	rows    []*Record
	logger  reclog.Logger
}

// ID returns the table's instance identifier. Every Records, including each
// clone, group and merge result, gets a fresh one; it takes no part in
// equality, is not persisted, and is not written to any log line.
func (r *Records) ID() uuid.UUID { return r.id }

// Option configures a Records at construction time.
type Option func(*Records)

// WithLogger stores a logger on the Records; clones, groups and
// deduplicated copies carry it over. The merge methods do not read it: they
// log through their own logger argument. A nil Logger is equivalent to
// omitting the option.
func WithLogger(l reclog.Logger) Option {
	return func(r *Records) { r.logger = reclog.OrNoOp(l) }
}

// New builds a Records from a column schema and an initial set of rows.
// Every row's domain must be a subset of colValues' names.
func New(rows []*Record, colValues []types.ColumnValue, opts ...Option) (*Records, error) {
	r := &Records{id: uuid.New(), logger: reclog.NoOp{}}
	cols, err := newColumns(r, colValues)
	if err != nil {
		return nil, err
	}
	r.columns = cols
	for _, opt := range opts {
		opt(r)
	}
	for _, row := range rows {
		if err := r.Append(row); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// onColumnRenamed implements observer: propagate a column rename to every
// row's domain.
func (r *Records) onColumnRenamed(oldName, newName string) {
	for _, row := range r.rows {
		if v, ok := row.data[oldName]; ok {
			delete(row.data, oldName)
			row.data[newName] = v
		}
	}
}

// onColumnDropped implements observer: strip the dropped column from every
// row's domain.
func (r *Records) onColumnDropped(name string) {
	for _, row := range r.rows {
		delete(row.data, name)
	}
}

// onColumnReindexed implements observer: reindexing only changes declared
// column order, never row data, so there is nothing to propagate.
func (r *Records) onColumnReindexed(order []string) {}

// Columns returns the table's column collection.
func (r *Records) Columns() *Columns { return r.columns }

// ColumnNames returns the table's column names in order.
func (r *Records) ColumnNames() []string { return r.columns.Names() }

// Len returns the number of rows.
func (r *Records) Len() int { return len(r.rows) }

// Data returns a defensive copy of the row slice; the Record pointers
// themselves are shared, matching the original's column-oriented semantics
// where row identity is preserved across reads.
func (r *Records) Data() []*Record {
	out := make([]*Record, len(r.rows))
	copy(out, r.rows)
	return out
}

// GetRow returns the row at index i.
func (r *Records) GetRow(i int) (*Record, error) {
	if i < 0 || i >= len(r.rows) {
		return nil, rerr.NewOutOfRange(i, len(r.rows))
	}
	return r.rows[i], nil
}

// Append adds row to the table. Every name in row's domain must already be
// a declared column.
func (r *Records) Append(row *Record) error {
	for _, name := range row.Columns() {
		if !r.columns.Has(name) {
			return rerr.NewUnknownColumn("Records.Append", name)
		}
	}
	r.rows = append(r.rows, row)
	return nil
}

// Concat appends every row of other to r, in order. Every column of other
// must already be a column of r; matching columns' mappers are merged.
func (r *Records) Concat(other *Records) error {
	for _, v := range other.columns.Values() {
		if !r.columns.Has(v.Name) {
			return rerr.NewUnknownColumn("Records.Concat", v.Name)
		}
	}
	for _, v := range other.columns.Values() {
		col, _ := r.columns.Get(v.Name)
		col.value.Mapper = col.value.Mapper.Merge(v.Mapper)
	}
	for _, row := range other.rows {
		r.rows = append(r.rows, row.Clone())
	}
	return nil
}

// AppendColumn adds a new column to the table and sets its value on every
// existing row. len(values) must equal r.Len().
func (r *Records) AppendColumn(cv types.ColumnValue, values []uint64) error {
	if len(values) != len(r.rows) {
		return rerr.NewLengthMismatch("Records.AppendColumn", len(r.rows), len(values))
	}
	if err := r.columns.Append(cv); err != nil {
		return err
	}
	for i, row := range r.rows {
		row.Add(cv.Name, values[i])
	}
	return nil
}

// Sort stably reorders rows by the tuple of keys, treating a missing key as
// types.Max. When ascending is false the comparison is reversed; rows with
// a fully-missing key tuple sort last under ascending and — because the
// comparison is a straight reversal, not a renegotiated tie-break — occupy
// the mirrored (first) position under descending.
func (r *Records) Sort(keys []string, ascending bool) {
	sort.SliceStable(r.rows, func(i, j int) bool {
		less := lessByKeys(r.rows[i], r.rows[j], keys)
		if ascending {
			return less
		}
		return lessByKeys(r.rows[j], r.rows[i], keys)
	})
}

func lessByKeys(a, b *Record, keys []string) bool {
	for _, k := range keys {
		av := a.GetWithDefault(k, types.Max)
		bv := b.GetWithDefault(k, types.Max)
		if av != bv {
			return av < bv
		}
	}
	return false
}

// DropDuplicates returns a new Records containing only the first occurrence
// of each distinct row, preserving order.
func (r *Records) DropDuplicates() *Records {
	out := &Records{id: uuid.New(), columns: r.columns.clone(nil), logger: r.logger}
	out.columns.observer = out
	var kept []*Record
	for _, row := range r.rows {
		dup := false
		for _, k := range kept {
			if k.Equals(row) {
				dup = true
				break
			}
		}
		if !dup {
			kept = append(kept, row.Clone())
		}
	}
	out.rows = kept
	return out
}

const groupKeySeparator = "\x1f"

// GroupKey deterministically encodes a tuple of column values (as produced
// from GetWithDefault(.., types.Max)) into a stable map key, used by both
// GroupBy and the merge algorithms' key-tuple bucketing.
func GroupKey(values []uint64) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.FormatUint(v, 10)
	}
	return strings.Join(parts, groupKeySeparator)
}

// GroupBy partitions rows by the tuple of values at keys (missing treated as
// types.Max), returning one Records per distinct tuple, keyed by GroupKey.
// Row order within each group is preserved from r.
func (r *Records) GroupBy(keys []string) map[string]*Records {
	groups := make(map[string]*Records)
	for _, row := range r.rows {
		vals := make([]uint64, len(keys))
		for i, k := range keys {
			vals[i] = row.GetWithDefault(k, types.Max)
		}
		gk := GroupKey(vals)
		g, ok := groups[gk]
		if !ok {
			g = &Records{id: uuid.New(), columns: r.columns.clone(nil), logger: r.logger}
			g.columns.observer = g
			groups[gk] = g
		}
		g.rows = append(g.rows, row.Clone())
	}
	return groups
}

// Clone produces a deep, independent copy: columns (with their mappers) and
// rows are all copied, and mutating the clone never affects r.
func (r *Records) Clone() *Records {
	out := &Records{id: uuid.New(), logger: r.logger}
	out.columns = r.columns.clone(out)
	out.rows = make([]*Record, len(r.rows))
	for i, row := range r.rows {
		out.rows[i] = row.Clone()
	}
	return out
}

// Equals reports whether two tables have the same columns and the same rows
// in the same order.
func (r *Records) Equals(other *Records) bool {
	if !r.columns.Equals(other.columns) {
		return false
	}
	if len(r.rows) != len(other.rows) {
		return false
	}
	for i := range r.rows {
		if !r.rows[i].Equals(other.rows[i]) {
			return false
		}
	}
	return true
}

// BindDropAsDelay sweeps rows in descending order of every declared column,
// carrying the most recently seen value of each column forward into rows
// that are missing it, then restores ascending order. A row missing a
// column thus takes that column's value from the nearest later row that
// has it (a dropped row is bound to the next one, as a delay); rows after
// the last row holding a column stay without it.
func (r *Records) BindDropAsDelay() {
	allKeys := r.columns.Names()
	r.Sort(allKeys, false)
	last := make(map[string]uint64, len(allKeys))
	for _, row := range r.rows {
		for _, k := range allKeys {
			if v, ok := row.data[k]; ok {
				last[k] = v
			} else if v, ok := last[k]; ok {
				row.data[k] = v
			}
		}
	}
	r.Sort(allKeys, true)
}
