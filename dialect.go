package sproc

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Dialect selects the call-statement syntax and parameter-marker convention
// for a target database.
//
// Common choices:
//   - DialectMySQL     → CALL p(?, ?)
//   - DialectPostgres  → CALL p($1, $2)
//   - DialectSQLServer → EXEC p @a = @a, @b = @b OUTPUT
//   - DialectOracle    → BEGIN p(:a, :b); END;
type Dialect int

const (
	DialectMySQL Dialect = iota
	DialectPostgres
	DialectSQLServer
	DialectOracle
)

// DialectFor picks a Dialect based on a driver name string. This is a
// convenience for Open; you can also choose the enum directly.
//
// Examples:
//
//	d := sproc.DialectFor("pgx")       // => DialectPostgres
//	d := sproc.DialectFor("sqlserver") // => DialectSQLServer
//	d := sproc.DialectFor("mysql")     // => DialectMySQL
func DialectFor(driverName string) Dialect {
	switch strings.ToLower(driverName) {
	case "pgx", "postgres", "postgresql", "lib/pq", "pg":
		return DialectPostgres
	case "sqlserver", "mssql":
		return DialectSQLServer
	case "godror", "oracle", "goracle":
		return DialectOracle
	default:
		return DialectMySQL
	}
}

// boundCall is one rendered procedure invocation: the statement text, the
// driver arguments in render order, and the output destinations parallel to
// the original parameter slice (nil entries for Input parameters).
type boundCall struct {
	text  string
	args  []any
	dests []*any
}

// render turns a procedure reference and its parameters into a boundCall.
// Names pass through validateProc before interpolation.
func (d Dialect) render(proc string, params []Param) (boundCall, error) {
	if err := validateProc(proc); err != nil {
		return boundCall{}, err
	}

	bc := boundCall{
		args:  make([]any, 0, len(params)),
		dests: make([]*any, len(params)),
	}
	for i, p := range params {
		v := p.Value
		if p.Direction != Input {
			dest := new(any)
			if p.Direction == InputOutput {
				*dest = p.Value
			}
			bc.dests[i] = dest
			v = sql.Out{Dest: dest, In: p.Direction == InputOutput}
		}
		if d == DialectSQLServer || d == DialectOracle {
			bc.args = append(bc.args, sql.Named(p.Name, v))
		} else {
			bc.args = append(bc.args, v)
		}
	}

	var b strings.Builder
	b.Grow(len(proc) + 16 + 8*len(params))
	switch d {
	case DialectSQLServer:
		b.WriteString("EXEC ")
		b.WriteString(proc)
		for i, p := range params {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(" @")
			b.WriteString(p.Name)
			b.WriteString(" = @")
			b.WriteString(p.Name)
			if p.Direction != Input {
				b.WriteString(" OUTPUT")
			}
		}
	case DialectOracle:
		b.WriteString("BEGIN ")
		b.WriteString(proc)
		b.WriteByte('(')
		for i, p := range params {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteByte(':')
			b.WriteString(p.Name)
		}
		b.WriteString("); END;")
	case DialectPostgres:
		b.WriteString("CALL ")
		b.WriteString(proc)
		b.WriteByte('(')
		for i := range params {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(i + 1))
		}
		b.WriteByte(')')
	default: // DialectMySQL
		b.WriteString("CALL ")
		b.WriteString(proc)
		b.WriteByte('(')
		for i := range params {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteByte('?')
		}
		b.WriteByte(')')
	}
	bc.text = b.String()
	return bc, nil
}

// validateProc accepts plain and dot-qualified identifiers
// (proc, schema.proc, db.schema.proc). Everything else is rejected because
// the name is interpolated into the statement text.
func validateProc(proc string) error {
	if proc == "" {
		return fmt.Errorf("%w: empty", ErrBadProcedure)
	}
	segs := strings.Split(proc, ".")
	if len(segs) > 3 {
		return fmt.Errorf("%w: %q", ErrBadProcedure, proc)
	}
	for _, s := range segs {
		if !isIdent(s) {
			return fmt.Errorf("%w: %q", ErrBadProcedure, proc)
		}
	}
	return nil
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); {
		r, w := utf8.DecodeRuneInString(s[i:])
		if !(r == '_' || unicode.IsLetter(r) || (i > 0 && unicode.IsDigit(r))) {
			return false
		}
		i += w
	}
	return true
}
