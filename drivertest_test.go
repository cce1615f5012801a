package sproc

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"io"
	"testing"
)

// procResult is what the in-memory driver hands back for one call.
type procResult struct {
	cols     []string
	rows     [][]driver.Value
	affected int64
}

// procHandler services one statement. It sees the rendered call text and
// the bound arguments, and may write through any sql.Out destinations to
// emulate output parameters.
type procHandler func(query string, args []driver.NamedValue) (*procResult, error)

type testConnector struct {
	h procHandler
}

func (c *testConnector) Connect(context.Context) (driver.Conn, error) { return &testConn{h: c.h}, nil }
func (c *testConnector) Driver() driver.Driver                        { return testDriver{} }

type testDriver struct{}

func (testDriver) Open(name string) (driver.Conn, error) {
	return nil, errors.New("testDriver.Open should not be called; use sql.OpenDB with connector")
}

type testConn struct {
	h procHandler
}

func (c *testConn) Prepare(string) (driver.Stmt, error) { return nil, driver.ErrSkip }
func (c *testConn) Close() error                        { return nil }
func (c *testConn) Begin() (driver.Tx, error)           { return nil, driver.ErrSkip }

// CheckNamedValue lets sql.Out through so handlers can populate output
// destinations; everything else takes the default conversion.
func (c *testConn) CheckNamedValue(nv *driver.NamedValue) error {
	if _, ok := nv.Value.(sql.Out); ok {
		return nil
	}
	v, err := driver.DefaultParameterConverter.ConvertValue(nv.Value)
	if err != nil {
		return err
	}
	nv.Value = v
	return nil
}

func (c *testConn) QueryContext(ctx context.Context, query string, args []driver.NamedValue) (driver.Rows, error) {
	res, err := c.h(query, args)
	if err != nil {
		return nil, err
	}
	return &testRows{cols: res.cols, data: res.rows}, nil
}

func (c *testConn) ExecContext(ctx context.Context, query string, args []driver.NamedValue) (driver.Result, error) {
	res, err := c.h(query, args)
	if err != nil {
		return nil, err
	}
	return driver.RowsAffected(res.affected), nil
}

type testRows struct {
	cols []string
	data [][]driver.Value
	i    int
}

func (r *testRows) Columns() []string { return append([]string(nil), r.cols...) }
func (r *testRows) Close() error      { return nil }
func (r *testRows) Next(dest []driver.Value) error {
	if r.i >= len(r.data) {
		return io.EOF
	}
	row := r.data[r.i]
	for i := range dest {
		if i < len(row) {
			dest[i] = row[i]
		} else {
			dest[i] = nil
		}
	}
	r.i++
	return nil
}

// newTestDB creates a *sql.DB backed by the in-memory test driver.
func newTestDB(t *testing.T, h procHandler) *sql.DB {
	t.Helper()
	return sql.OpenDB(&testConnector{h: h})
}

// setOut writes v through the sql.Out destination bound under name.
// Positional output arguments (empty Name) are matched by ordinal instead.
func setOut(t *testing.T, args []driver.NamedValue, name string, v any) {
	t.Helper()
	for _, a := range args {
		out, ok := a.Value.(sql.Out)
		if !ok || a.Name != name {
			continue
		}
		*(out.Dest.(*any)) = v
		return
	}
	t.Fatalf("no output argument named %q", name)
}

// setOutAt writes v through the i-th argument's sql.Out destination.
func setOutAt(t *testing.T, args []driver.NamedValue, i int, v any) {
	t.Helper()
	if i >= len(args) {
		t.Fatalf("no argument at %d", i)
	}
	out, ok := args[i].Value.(sql.Out)
	if !ok {
		t.Fatalf("argument %d is not sql.Out", i)
	}
	*(out.Dest.(*any)) = v
}
