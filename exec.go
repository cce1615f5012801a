package sproc

import (
	"context"
	"fmt"
)

// ExecuteNonQuery calls a procedure that returns no rows and reports the
// affected-row count exactly as the driver does, including 0.
//
// Output parameters of the call are exposed on m.OutputParams afterwards.
//
// Example:
//
//	n, err := sproc.ExecuteNonQuery(ctx, m, "deactivate_user", sproc.In("id", 42))
func ExecuteNonQuery(ctx context.Context, m *Mapper, proc string, params ...Param) (int64, error) {
	bc, err := m.dialect.render(proc, params)
	if err != nil {
		return 0, err
	}
	conn, err := m.conn(ctx)
	if err != nil {
		return 0, err
	}
	defer func() { _ = conn.Close() }()

	res, err := conn.ExecContext(ctx, bc.text, bc.args...)
	if err != nil {
		return 0, fmt.Errorf("sproc: call %s: %w", proc, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("sproc: call %s: %w", proc, err)
	}
	m.capture(params, bc.dests)
	return n, nil
}
