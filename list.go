package sproc

import (
	"context"
	"fmt"
)

// ExecuteList calls the procedure and maps every result row into a value of
// type T, returned in result-set order. Zero rows yields an empty, non-nil
// slice.
//
// Binding rules match ExecuteSingle with one deliberate difference: a NULL
// column is skipped, leaving the field at the zero value it got at
// construction, instead of being assigned. A mapping failure on any row
// fails the whole call; previously mapped rows are not returned.
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
//	users, err := sproc.ExecuteList[User](ctx, m, "users_by_status", sproc.In("status", "active"))
func ExecuteList[T any](ctx context.Context, m *Mapper, proc string, params ...Param) ([]T, error) {
	bc, err := m.dialect.render(proc, params)
	if err != nil {
		return nil, err
	}
	conn, err := m.conn(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = conn.Close() }()

	rows, err := conn.QueryContext(ctx, bc.text, bc.args...)
	if err != nil {
		return nil, fmt.Errorf("sproc: call %s: %w", proc, err)
	}

	out := make([]T, 0)
	rerr := func() (err error) {
		defer func() {
			if cerr := rows.Close(); cerr != nil && err == nil {
				err = cerr
			}
		}()
		var cols []string
		var paths [][]int
		for rows.Next() {
			if paths == nil {
				if cols, err = rows.Columns(); err != nil {
					return err
				}
				if paths, err = resolveColumns(typeOf[T](), cols); err != nil {
					return err
				}
			}
			v, err := scanRow[T](rows, cols, paths, skipNulls)
			if err != nil {
				return err
			}
			out = append(out, v)
		}
		return rows.Err()
	}()
	if rerr != nil {
		return nil, rerr
	}
	m.capture(params, bc.dests)
	return out, nil
}
