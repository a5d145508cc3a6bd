package record

import "github.com/kasuganosora/recordmerge/pkg/rerr"

// OptionalUint64 is a single value of a Series: present and the value, or
// absent when the owning row has no entry for the series' column.
type OptionalUint64 struct {
	Present bool
	Value   uint64
}

// Series is a lazy view over one column of a Records: it holds a reference
// to the table and reads each row on demand rather than materializing a
// slice up front, so callers that only need a prefix or a single index
// never pay for the rest.
type Series struct {
	records *Records
	column  string
}

// GetColumnSeries returns a lazy Series over name, failing with
// UnknownColumnError if name is not a declared column.
func (r *Records) GetColumnSeries(name string) (*Series, error) {
	if !r.columns.Has(name) {
		return nil, rerr.NewUnknownColumn("Records.GetColumnSeries", name)
	}
	return &Series{records: r, column: name}, nil
}

// Len returns the number of rows in the underlying table.
func (s *Series) Len() int { return s.records.Len() }

// At returns the value of the series' column in row i, or Present == false
// if that row has no entry for it.
func (s *Series) At(i int) (OptionalUint64, error) {
	row, err := s.records.GetRow(i)
	if err != nil {
		return OptionalUint64{}, err
	}
	v, ok := row.data[s.column]
	return OptionalUint64{Present: ok, Value: v}, nil
}

// Collect eagerly materializes the full series as a slice.
func (s *Series) Collect() []OptionalUint64 {
	out := make([]OptionalUint64, s.Len())
	for i, row := range s.records.rows {
		v, ok := row.data[s.column]
		out[i] = OptionalUint64{Present: ok, Value: v}
	}
	return out
}
