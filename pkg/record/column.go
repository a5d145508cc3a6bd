// Package record implements the record-merging engine: the Record/Records
// data model, column lifecycle management, basic relational operations, and
// the three merge algorithms (keyed, sequential, address-track).
package record

import (
	"fmt"

	"github.com/kasuganosora/recordmerge/pkg/rerr"
	"github.com/kasuganosora/recordmerge/pkg/types"
)

// observer receives the three column-lifecycle callbacks a Columns
// collection issues to its owning Records whenever it mutates (§4.3 of the
// design). Records implements this; tests may supply a stub.
type observer interface {
	onColumnRenamed(oldName, newName string)
	onColumnDropped(name string)
	onColumnReindexed(order []string)
}

// Column is a single column bound to a Columns collection. Rename and Drop
// go through the owning collection so every row stays consistent; Column
// itself carries no row data.
type Column struct {
	value types.ColumnValue
	owner *Columns
}

// Name returns the column's current name.
func (c *Column) Name() string { return c.value.Name }

// Value returns the column's immutable descriptor.
func (c *Column) Value() types.ColumnValue { return c.value }

// Rename renames this column through its owner.
func (c *Column) Rename(newName string) error { return c.owner.Rename(c.value.Name, newName) }

// Drop removes this column through its owner.
func (c *Column) Drop() error {
	c.owner.Drop(c.value.Name)
	return nil
}

// Columns is an ordered sequence of Column, unique by name.
type Columns struct {
	order    []string
	byName   map[string]*Column
	observer observer
}

// newColumns builds a Columns bound to observer from an ordered list of
// ColumnValue, failing with DuplicateColumnError on a repeated name.
func newColumns(obs observer, values []types.ColumnValue) (*Columns, error) {
	cols := &Columns{
		byName:   make(map[string]*Column, len(values)),
		observer: obs,
	}
	for _, v := range values {
		if _, exists := cols.byName[v.Name]; exists {
			return nil, rerr.NewDuplicateColumn("NewColumns", v.Name)
		}
		cols.order = append(cols.order, v.Name)
		cols.byName[v.Name] = &Column{value: v, owner: cols}
	}
	return cols, nil
}

// Len returns the number of columns.
func (c *Columns) Len() int { return len(c.order) }

// Names returns the column names in order. The returned slice is a copy.
func (c *Columns) Names() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

// Has reports whether name is a known column.
func (c *Columns) Has(name string) bool {
	_, ok := c.byName[name]
	return ok
}

// Get returns the Column for name, if present.
func (c *Columns) Get(name string) (*Column, bool) {
	col, ok := c.byName[name]
	return col, ok
}

// Values returns the ordered ColumnValue descriptors.
func (c *Columns) Values() []types.ColumnValue {
	out := make([]types.ColumnValue, len(c.order))
	for i, name := range c.order {
		out[i] = c.byName[name].value
	}
	return out
}

// ByAttribute returns the columns carrying attr, in collection order.
func (c *Columns) ByAttribute(attr types.Attribute) []*Column {
	var out []*Column
	for _, name := range c.order {
		col := c.byName[name]
		if col.value.HasAttr(attr) {
			out = append(out, col)
		}
	}
	return out
}

// Append adds a new column at the end, failing with DuplicateColumnError if
// its name already exists.
func (c *Columns) Append(v types.ColumnValue) error {
	if _, exists := c.byName[v.Name]; exists {
		return rerr.NewDuplicateColumn("Columns.Append", v.Name)
	}
	c.order = append(c.order, v.Name)
	c.byName[v.Name] = &Column{value: v, owner: c}
	return nil
}

// Drop removes every name present in names (silently ignoring names that
// aren't columns), notifying the observer once per name actually removed
// so every row can drop that column from its domain.
func (c *Columns) Drop(names ...string) {
	for _, name := range names {
		if _, ok := c.byName[name]; !ok {
			continue
		}
		delete(c.byName, name)
		for i, n := range c.order {
			if n == name {
				c.order = append(c.order[:i], c.order[i+1:]...)
				break
			}
		}
		if c.observer != nil {
			c.observer.onColumnDropped(name)
		}
	}
}

// Rename renames oldName to newName. A missing oldName returns an
// UnknownColumnError. A newName that already exists is a ProgrammerError
// raised as a panic, since callers are expected to have checked that
// precondition (this mirrors the original's bare assert on rename).
func (c *Columns) Rename(oldName, newName string) error {
	col, ok := c.byName[oldName]
	if !ok {
		return rerr.NewUnknownColumn("Columns.Rename", oldName)
	}
	if _, exists := c.byName[newName]; exists {
		rerr.Panic("Columns.Rename: target name %q already exists", newName)
	}
	col.value.Name = newName
	delete(c.byName, oldName)
	c.byName[newName] = col
	for i, n := range c.order {
		if n == oldName {
			c.order[i] = newName
			break
		}
	}
	if c.observer != nil {
		c.observer.onColumnRenamed(oldName, newName)
	}
	return nil
}

// Reindex reorders the collection to match order, which must be a
// permutation of the current column names.
func (c *Columns) Reindex(order []string) error {
	if len(order) != len(c.order) {
		return fmt.Errorf("record: reindex length mismatch: have %d columns, want order of length %d", len(c.order), len(order))
	}
	seen := make(map[string]struct{}, len(order))
	for _, name := range order {
		if _, ok := c.byName[name]; !ok {
			return rerr.NewUnknownColumn("Columns.Reindex", name)
		}
		if _, dup := seen[name]; dup {
			return rerr.NewDuplicateColumn("Columns.Reindex", name)
		}
		seen[name] = struct{}{}
	}
	c.order = append([]string(nil), order...)
	if c.observer != nil {
		c.observer.onColumnReindexed(c.order)
	}
	return nil
}

// Equals reports whether two Columns collections have the same ordered
// names, attributes, and mapper identity per column.
func (c *Columns) Equals(other *Columns) bool {
	if c.Len() != other.Len() {
		return false
	}
	for i, name := range c.order {
		if other.order[i] != name {
			return false
		}
		if !c.byName[name].value.Equals(other.byName[name].value) {
			return false
		}
	}
	return true
}

// clone deep-copies the collection, including per-column mappers, and binds
// the result to obs.
func (c *Columns) clone(obs observer) *Columns {
	out := &Columns{
		byName:   make(map[string]*Column, len(c.order)),
		observer: obs,
		order:    append([]string(nil), c.order...),
	}
	for _, name := range c.order {
		v := c.byName[name].value
		v.Mapper = v.Mapper.Clone()
		out.byName[name] = &Column{value: v, owner: out}
	}
	return out
}
