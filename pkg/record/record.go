package record

import "github.com/kasuganosora/recordmerge/pkg/rerr"

// Record is one row: a sparse mapping from column name to a non-negative
// 64-bit value. A Record's domain is always a subset of its owning Records'
// columns; it need not cover every column.
type Record struct {
	data map[string]uint64
}

// NewRecord builds a Record from an initial value map. init is copied; the
// caller's map is never retained.
func NewRecord(init map[string]uint64) *Record {
	r := &Record{data: make(map[string]uint64, len(init))}
	for k, v := range init {
		r.data[k] = v
	}
	return r
}

// Get returns the value stored for name, failing with UnknownColumnError if
// name is absent from this row (not from the table's schema).
func (r *Record) Get(name string) (uint64, error) {
	v, ok := r.data[name]
	if !ok {
		return 0, rerr.NewUnknownColumn("Record.Get", name)
	}
	return v, nil
}

// GetWithDefault returns the value for name, or def if the row has no
// entry for it. This is how join-key extraction treats a missing key as
// types.Max rather than failing the whole merge.
func (r *Record) GetWithDefault(name string, def uint64) uint64 {
	if v, ok := r.data[name]; ok {
		return v
	}
	return def
}

// Has reports whether name is present in this row.
func (r *Record) Has(name string) bool {
	_, ok := r.data[name]
	return ok
}

// HasAll reports whether every name in names is present in this row.
func (r *Record) HasAll(names []string) bool {
	for _, n := range names {
		if !r.Has(n) {
			return false
		}
	}
	return true
}

// Add sets name to value in this row, adding it to the row's domain if
// absent.
func (r *Record) Add(name string, value uint64) {
	r.data[name] = value
}

// DropColumns removes every name in names from this row's domain, if
// present.
func (r *Record) DropColumns(names []string) {
	for _, n := range names {
		delete(r.data, n)
	}
}

// Merge overlays other's entries onto r: for any column present in both,
// other's value wins.
func (r *Record) Merge(other *Record) {
	for k, v := range other.data {
		r.data[k] = v
	}
}

// ChangeKey renames column oldKey to newKey within this row. oldKey must be
// present and newKey must be absent.
func (r *Record) ChangeKey(oldKey, newKey string) error {
	v, ok := r.data[oldKey]
	if !ok {
		return rerr.NewUnknownColumn("Record.ChangeKey", oldKey)
	}
	if _, exists := r.data[newKey]; exists {
		rerr.Panic("Record.ChangeKey: target key %q already present", newKey)
	}
	delete(r.data, oldKey)
	r.data[newKey] = v
	return nil
}

// Equals reports whether two rows hold identical column/value pairs.
func (r *Record) Equals(other *Record) bool {
	if len(r.data) != len(other.data) {
		return false
	}
	for k, v := range r.data {
		ov, ok := other.data[k]
		if !ok || ov != v {
			return false
		}
	}
	return true
}

// Clone deep-copies the row.
func (r *Record) Clone() *Record {
	return NewRecord(r.data)
}

// Columns returns the names present in this row's domain, unordered.
func (r *Record) Columns() []string {
	out := make([]string, 0, len(r.data))
	for k := range r.data {
		out = append(out, k)
	}
	return out
}

// Data returns a defensive copy of the row's underlying map.
func (r *Record) Data() map[string]uint64 {
	out := make(map[string]uint64, len(r.data))
	for k, v := range r.data {
		out[k] = v
	}
	return out
}
