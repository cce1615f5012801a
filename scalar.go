package sproc

import (
	"context"
	"database/sql"
	"fmt"
	"reflect"
)

// ExecuteScalar calls the procedure and returns the first column of the
// first result row converted to T, with the same value conversions as field
// mapping. A NULL scalar follows the assignment rules of ExecuteSingle.
//
// Unlike ExecuteSingle, zero rows is an error: sql.ErrNoRows. A scalar call
// with nothing to return usually means the procedure is the wrong shape.
//
// Example:
//
//	count, err := sproc.ExecuteScalar[int64](ctx, m, "count_users")
func ExecuteScalar[T any](ctx context.Context, m *Mapper, proc string, params ...Param) (T, error) {
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
	out, err := readScalar[T](rows)
	if err != nil {
		return zero, err
	}
	m.capture(params, bc.dests)
	return out, nil
}

func readScalar[T any](rows *sql.Rows) (out T, err error) {
	defer func() {
		if cerr := rows.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	if !rows.Next() {
		if ne := rows.Err(); ne != nil {
			return out, ne
		}
		return out, sql.ErrNoRows
	}
	cols, err := rows.Columns()
	if err != nil {
		return out, err
	}
	if len(cols) == 0 {
		return out, fmt.Errorf("sproc: call returned zero columns")
	}

	raws := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range raws {
		ptrs[i] = &raws[i]
	}
	if err := rows.Scan(ptrs...); err != nil {
		return out, err
	}

	raw := raws[0]
	if b, ok := raw.([]byte); ok {
		raw = append([]byte(nil), b...)
	}
	rv := reflect.New(typeOf[T]()).Elem()
	if raw == nil {
		err = assignNull(rv)
	} else {
		err = assignValue(rv, raw)
	}
	if err != nil {
		return out, fmt.Errorf("column %q: %w", trimQuotes(cols[0]), err)
	}
	return rv.Interface().(T), nil
}
