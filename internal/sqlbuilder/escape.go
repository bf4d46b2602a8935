package sqlbuilder

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/lib/pq"
)

// Escaper renders a Go value as a SQL literal safe to embed in a statement
type Escaper interface {
	Escape(v any) string
}

// CaseSensitiveLiker is implemented by escapers whose dialect compares LIKE
// case-insensitively unless the column side is rewritten
type CaseSensitiveLiker interface {
	LikeColumn(column string) string
}

// literalEscaper renders non-string values itself and delegates string quoting to the dialect
type literalEscaper struct {
	quote      func(string) string
	timeLayout string
	likeColumn func(string) string
}

const (
	mysqlTimeLayout  = "2006-01-02 15:04:05.000000"
	offsetTimeLayout = "2006-01-02 15:04:05.999999999-07:00"
)

// MySQL escapes the way the MySQL client libraries do: backslash escapes inside single quotes
var MySQL Escaper = literalEscaper{quote: quoteMySQL, timeLayout: mysqlTimeLayout, likeColumn: binaryColumn}

// Postgres escapes with lib/pq literal quoting
var Postgres Escaper = literalEscaper{quote: pq.QuoteLiteral, timeLayout: offsetTimeLayout}

// ANSI doubles single quotes, as SQLite expects. SQLite LIKE is case-sensitive only
// with case_sensitive_like enabled on the connection.
var ANSI Escaper = literalEscaper{quote: quoteANSI, timeLayout: offsetTimeLayout}

func (e literalEscaper) Escape(v any) string {
	switch val := v.(type) {
	case nil:
		return "NULL"
	case string:
		return e.quote(val)
	case []byte:
		return e.quote(string(val))
	case bool:
		if val {
			return "TRUE"
		}
		return "FALSE"
	case time.Time:
		return e.quote(val.UTC().Format(e.timeLayout))
	case fmt.Stringer:
		return e.quote(val.String())
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(rv.Uint(), 10)
	case reflect.Float32, reflect.Float64:
		return strconv.FormatFloat(rv.Float(), 'f', -1, 64)
	case reflect.Pointer:
		if rv.IsNil() {
			return "NULL"
		}
		return e.Escape(rv.Elem().Interface())
	}
	return e.quote(toString(v))
}

// LikeColumn rewrites the column for a case-sensitive LIKE where the dialect needs it
func (e literalEscaper) LikeColumn(column string) string {
	if e.likeColumn == nil {
		return column
	}
	return e.likeColumn(column)
}

// binaryColumn: под _ci коллациями MySQL LIKE не различает регистр
func binaryColumn(column string) string {
	return "CAST(" + column + " AS BINARY)"
}

func quoteANSI(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func quoteMySQL(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('\'')
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case 0:
			b.WriteString(`\0`)
		case '\b':
			b.WriteString(`\b`)
		case '\t':
			b.WriteString(`\t`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case 0x1a:
			b.WriteString(`\Z`)
		case '"':
			b.WriteString(`\"`)
		case '\'':
			b.WriteString(`\'`)
		case '\\':
			b.WriteString(`\\`)
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte('\'')
	return b.String()
}

func toString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
