package record

import "github.com/kasuganosora/recordmerge/pkg/types"

// ToTabular projects the table into a presentation-layer TabularView:
// column order preserved, each row's values resolved to their column's
// mapper symbol where one exists, and every SYSTEM_TIME-attributed column
// passed through clockConverter when non-nil.
func (r *Records) ToTabular(clockConverter types.ClockConverter) *types.TabularView {
	names := r.columns.Names()
	view := &types.TabularView{
		ColumnNames: names,
		Rows:        make([]map[string]types.Cell, len(r.rows)),
	}
	for i, row := range r.rows {
		cells := make(map[string]types.Cell, len(names))
		for _, name := range names {
			col, _ := r.columns.Get(name)
			v, ok := row.data[name]
			if !ok {
				cells[name] = types.Cell{Present: false}
				continue
			}
			if clockConverter != nil && col.value.HasAttr(types.SystemTime) {
				v = clockConverter.Convert(v)
			}
			cell := types.Cell{Present: true, Value: v}
			if sym, ok := col.value.Mapper.Lookup(v); ok {
				cell.Symbol = sym
				cell.HasSymbol = true
			}
			cells[name] = cell
		}
		view.Rows[i] = cells
	}
	return view
}
