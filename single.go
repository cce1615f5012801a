package sproc

import (
	"context"
	"database/sql"
	"fmt"
)

// ExecuteSingle calls the procedure and maps the first result row into a
// value of type T.
//
// Zero rows is not an error: the zero T comes back unpopulated. Rows past
// the first are ignored; have the procedure limit its result when you
// require at-most-one row.
//
// Every result column must bind to a field of T (`db` tag first, exact
// field name otherwise); a column with no field fails the call with
// ErrUnmappedColumn. NULL columns are assigned: sql.Scanner fields observe
// Scan(nil), nilable fields become nil, and other fields fail with
// ErrTypeMismatch. Contrast ExecuteList, which skips NULL columns.
//
// Output parameters of the call are exposed on m.OutputParams afterwards.
//
// Example:
//
//	type User struct {
//	    ID    int64  `db:"id"`
//	    Email string `db:"email"`
//	}
//
//	u, err := sproc.ExecuteSingle[User](ctx, m, "user_by_id", sproc.In("id", 42))
func ExecuteSingle[T any](ctx context.Context, m *Mapper, proc string, params ...Param) (T, error) {
	var zero T

	bc, err := m.dialect.render(proc, params)
	if err != nil {
		return zero, err
	}
	conn, err := m.conn(ctx)
	if err != nil {
		return zero, err
	}
	defer func() { _ = conn.Close() }()

	rows, err := conn.QueryContext(ctx, bc.text, bc.args...)
	if err != nil {
		return zero, fmt.Errorf("sproc: call %s: %w", proc, err)
	}
	out, err := readFirst[T](rows)
	if err != nil {
		return zero, err
	}
	m.capture(params, bc.dests)
	return out, nil
}

// readFirst maps the first row, if any, and closes rows before returning so
// output parameters are settled for capture.
func readFirst[T any](rows *sql.Rows) (out T, err error) {
	defer func() {
		if cerr := rows.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	if !rows.Next() {
		if ne := rows.Err(); ne != nil {
			return out, ne
		}
		return out, nil // zero rows: caller gets the zero value
	}
	cols, err := rows.Columns()
	if err != nil {
		return out, err
	}
	paths, err := resolveColumns(typeOf[T](), cols)
	if err != nil {
		return out, err
	}
	return scanRow[T](rows, cols, paths, assignNulls)
}
