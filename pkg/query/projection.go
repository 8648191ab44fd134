// Package query builds parameterized PostgreSQL SELECT statements over a
// projection that maps logical field names onto qualified columns.
package query

import "strings"

// ProjectionMap maps logical field names (as used in filters and sort
// parameters) to alias-qualified columns of a single table.
type ProjectionMap struct {
	from    string
	alias   string
	columns map[string]string
	fields  []string
}

// NewProjectionMap creates a projection over schema.table with the given alias.
func NewProjectionMap(schema, table, alias string) *ProjectionMap {
	return &ProjectionMap{
		from:    schema + "." + table + " " + alias,
		alias:   alias,
		columns: make(map[string]string),
	}
}

// Project maps field to column. Projecting a field again replaces its column
// without changing its position in the select list.
func (p *ProjectionMap) Project(column, field string) *ProjectionMap {
	if _, ok := p.columns[field]; !ok {
		p.fields = append(p.fields, field)
	}
	p.columns[field] = p.alias + "." + column
	return p
}

// Alias returns the table alias.
func (p *ProjectionMap) Alias() string {
	return p.alias
}

// From returns the table reference with alias, e.g. "public.documents d".
func (p *ProjectionMap) From() string {
	return p.from
}

// Lookup returns the qualified column for field.
func (p *ProjectionMap) Lookup(field string) (string, bool) {
	col, ok := p.columns[field]
	return col, ok
}

// Column returns the qualified column for field, or field unchanged when it
// is not projected. Only use it with field names chosen by code.
func (p *ProjectionMap) Column(field string) string {
	if col, ok := p.columns[field]; ok {
		return col
	}
	return field
}

// ColumnList returns the projected columns in projection order.
func (p *ProjectionMap) ColumnList() []string {
	cols := make([]string, len(p.fields))
	for i, f := range p.fields {
		cols[i] = p.columns[f]
	}
	return cols
}

// Columns returns the select list.
func (p *ProjectionMap) Columns() string {
	return strings.Join(p.ColumnList(), ", ")
}
