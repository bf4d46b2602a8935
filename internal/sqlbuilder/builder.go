// Package sqlbuilder assembles complete SQL statements for simple single-table
// intents. Identifiers are trusted (configuration, schema registry); every value
// is rendered through the connection's Escaper.
package sqlbuilder

import (
	"strings"
)

// MatchMode selects the predicate operator of a WHERE clause
type MatchMode int

const (
	MatchEquals MatchMode = iota
	MatchContains
)

// Column is a projected column and the alias it is selected under
type Column struct {
	Name string
	As   string
}

// NameValue is a column and the value assigned to it
type NameValue struct {
	Name  string
	Value any
}

// WhereClause is a single predicate on one column
type WhereClause struct {
	Name  string
	Value any
	Match MatchMode
}

// Select builds a SELECT projecting every column under its alias. Predicates are AND-joined;
// with no clauses no WHERE segment is emitted.
func Select(esc Escaper, table string, columns []Column, where []WhereClause) string {
	var b strings.Builder
	b.WriteString("SELECT ")
	for i, c := range columns {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(c.Name)
		b.WriteString(" AS ")
		b.WriteString(c.As)
	}
	b.WriteString(" FROM ")
	b.WriteString(table)

	if len(where) > 0 {
		b.WriteString(" WHERE ")
		for i, w := range where {
			if i > 0 {
				b.WriteString(" AND ")
			}
			writePredicate(&b, esc, w)
		}
	}
	b.WriteByte(';')
	return b.String()
}

// Insert builds an INSERT with an explicit column list and a parallel list of escaped values
func Insert(esc Escaper, table string, values []NameValue) string {
	return insert(esc, table, values, "")
}

// InsertReturning builds an INSERT that returns the given column, for dialects without
// last-insert-id support
func InsertReturning(esc Escaper, table string, values []NameValue, column string) string {
	return insert(esc, table, values, column)
}

func insert(esc Escaper, table string, values []NameValue, returning string) string {
	var b strings.Builder
	b.WriteString("INSERT INTO ")
	b.WriteString(table)
	b.WriteString(" (")
	for i, nv := range values {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(nv.Name)
	}
	b.WriteString(") VALUES (")
	for i, nv := range values {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(esc.Escape(nv.Value))
	}
	b.WriteByte(')')
	if returning != "" {
		b.WriteString(" RETURNING ")
		b.WriteString(returning)
	}
	b.WriteByte(';')
	return b.String()
}

// Update builds an UPDATE setting every pair, restricted by an exact match on the identifying column
func Update(esc Escaper, table string, values []NameValue, where WhereClause) string {
	var b strings.Builder
	b.WriteString("UPDATE ")
	b.WriteString(table)
	b.WriteString(" SET ")
	for i, nv := range values {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(nv.Name)
		b.WriteString(" = ")
		b.WriteString(esc.Escape(nv.Value))
	}
	b.WriteString(" WHERE ")
	writePredicate(&b, esc, WhereClause{Name: where.Name, Value: where.Value})
	b.WriteByte(';')
	return b.String()
}

// Delete builds a DELETE restricted by an exact match on the identifying column
func Delete(esc Escaper, table string, where WhereClause) string {
	var b strings.Builder
	b.WriteString("DELETE FROM ")
	b.WriteString(table)
	b.WriteString(" WHERE ")
	writePredicate(&b, esc, WhereClause{Name: where.Name, Value: where.Value})
	b.WriteByte(';')
	return b.String()
}

// likeEscapeChar is declared with ESCAPE on every LIKE predicate
const likeEscapeChar = `\`

var likeEscaper = strings.NewReplacer(
	likeEscapeChar, likeEscapeChar+likeEscapeChar,
	"%", likeEscapeChar+"%",
	"_", likeEscapeChar+"_",
)

// EscapeLike makes every LIKE metacharacter in s match itself
func EscapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func writePredicate(b *strings.Builder, esc Escaper, w WhereClause) {
	if w.Match == MatchContains {
		column := w.Name
		if cs, ok := esc.(CaseSensitiveLiker); ok {
			column = cs.LikeColumn(column)
		}
		b.WriteString(column)
		b.WriteString(" LIKE ")
		b.WriteString(esc.Escape("%" + EscapeLike(toString(w.Value)) + "%"))
		b.WriteString(" ESCAPE ")
		b.WriteString(esc.Escape(likeEscapeChar))
		return
	}
	b.WriteString(w.Name)
	b.WriteString(" = ")
	b.WriteString(esc.Escape(w.Value))
}
