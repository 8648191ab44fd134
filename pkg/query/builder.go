package query

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// SortField is one ORDER BY term. Field is a logical name resolved through
// the projection; fields the projection does not know are dropped.
type SortField struct {
	Field      string
	Descending bool
}

// String renders the field in sort-parameter form ("title" or "-title").
func (f SortField) String() string {
	if f.Descending {
		return "-" + f.Field
	}
	return f.Field
}

// ParseSortFields parses a comma-separated sort parameter such as
// "Title,-CreatedAt". Blank terms are skipped; empty input returns nil.
func ParseSortFields(s string) []SortField {
	var fields []SortField
	for part := range strings.SplitSeq(s, ",") {
		part = strings.TrimSpace(part)
		name, desc := strings.CutPrefix(part, "-")
		if name == "" {
			continue
		}
		fields = append(fields, SortField{Field: name, Descending: desc})
	}
	return fields
}

// condition is a WHERE term in which each "?" is replaced by the next
// positional parameter.
type condition struct {
	clause string
	args   []any
}

// Builder accumulates conditions and ordering for one projection and renders
// them as positional-parameter SQL. Nil and empty filter values are ignored,
// so optional filters can be applied unconditionally.
type Builder struct {
	projection  *ProjectionMap
	conditions  []condition
	sort        []SortField
	defaultSort []SortField
}

// NewBuilder creates a Builder for projection, ordered by defaultSort unless
// OrderByFields supplies usable fields.
func NewBuilder(projection *ProjectionMap, defaultSort ...SortField) *Builder {
	return &Builder{
		projection:  projection,
		defaultSort: defaultSort,
	}
}

// OrderByFields sets the requested sort order.
func (b *Builder) OrderByFields(fields []SortField) *Builder {
	b.sort = fields
	return b
}

// WhereEquals adds field = value.
func (b *Builder) WhereEquals(field string, value any) *Builder {
	return b.compare(field, "=", value)
}

// WhereAtLeast adds field >= value.
func (b *Builder) WhereAtLeast(field string, value any) *Builder {
	return b.compare(field, ">=", value)
}

// WhereContains adds a case-insensitive substring match on field.
func (b *Builder) WhereContains(field string, value *string) *Builder {
	return b.WhereSearch(value, field)
}

// WhereSearch matches value as a case-insensitive substring of any of
// fields. LIKE wildcards in value match literally.
func (b *Builder) WhereSearch(value *string, fields ...string) *Builder {
	if value == nil || *value == "" || len(fields) == 0 {
		return b
	}

	pattern := "%" + escapeLike(*value) + "%"
	terms := make([]string, len(fields))
	args := make([]any, len(fields))
	for i, f := range fields {
		terms[i] = b.projection.Column(f) + " ILIKE ?"
		args[i] = pattern
	}

	clause := terms[0]
	if len(terms) > 1 {
		clause = "(" + strings.Join(terms, " OR ") + ")"
	}
	b.conditions = append(b.conditions, condition{clause: clause, args: args})
	return b
}

// Build returns an unpaginated SELECT.
func (b *Builder) Build() (string, []any) {
	where, args := b.where()
	return b.selectFrom() + where + b.orderBy(), args
}

// BuildCount returns SELECT COUNT(*) over the same conditions.
func (b *Builder) BuildCount() (string, []any) {
	where, args := b.where()
	return "SELECT COUNT(*) FROM " + b.projection.From() + where, args
}

// BuildPage returns a SELECT for the 1-based page. Pages below 1 are
// treated as the first page.
func (b *Builder) BuildPage(page, pageSize int) (string, []any) {
	page = max(page, 1)
	sql, args := b.Build()
	return fmt.Sprintf("%s LIMIT %d OFFSET %d", sql, pageSize, (page-1)*pageSize), args
}

// BuildSingle returns a SELECT for the row whose field equals id. Other
// conditions on the builder are not applied.
func (b *Builder) BuildSingle(field string, id any) (string, []any) {
	return b.selectFrom() + " WHERE " + b.projection.Column(field) + " = $1", []any{id}
}

func (b *Builder) compare(field, op string, value any) *Builder {
	if isNil(value) {
		return b
	}
	b.conditions = append(b.conditions, condition{
		clause: b.projection.Column(field) + " " + op + " ?",
		args:   []any{value},
	})
	return b
}

func (b *Builder) selectFrom() string {
	return "SELECT " + b.projection.Columns() + " FROM " + b.projection.From()
}

func (b *Builder) where() (string, []any) {
	if len(b.conditions) == 0 {
		return "", nil
	}

	var sb strings.Builder
	var args []any
	sb.WriteString(" WHERE ")

	for i, c := range b.conditions {
		if i > 0 {
			sb.WriteString(" AND ")
		}
		rest := c.clause
		for _, arg := range c.args {
			before, after, _ := strings.Cut(rest, "?")
			args = append(args, arg)
			sb.WriteString(before)
			sb.WriteString("$" + strconv.Itoa(len(args)))
			rest = after
		}
		sb.WriteString(rest)
	}

	return sb.String(), args
}

func (b *Builder) orderBy() string {
	terms := b.sortTerms(b.sort)
	if len(terms) == 0 {
		terms = b.sortTerms(b.defaultSort)
	}
	if len(terms) == 0 {
		return ""
	}
	return " ORDER BY " + strings.Join(terms, ", ")
}

func (b *Builder) sortTerms(fields []SortField) []string {
	terms := make([]string, 0, len(fields))
	for _, f := range fields {
		col, ok := b.projection.Lookup(f.Field)
		if !ok {
			continue
		}
		if f.Descending {
			terms = append(terms, col+" DESC")
		} else {
			terms = append(terms, col+" ASC")
		}
	}
	return terms
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func isNil(value any) bool {
	if value == nil {
		return true
	}
	v := reflect.ValueOf(value)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface:
		return v.IsNil()
	}
	return false
}
