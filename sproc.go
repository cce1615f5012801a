package sproc

import (
	"context"
	"database/sql"
	"fmt"
)

// Pool hands out dedicated connections. *sql.DB implements it.
type Pool interface {
	Conn(ctx context.Context) (*sql.Conn, error)
}

// Mapper calls stored procedures on a Pool and maps their results.
//
// A Mapper holds no session state: every call checks a connection out of the
// pool and releases it before returning, so concurrent calls on one Mapper
// do not interleave commands on a shared connection. The one shared mutable
// field is OutputParams, which always reflects the most recent call; callers
// that need output parameters from concurrent calls should use one Mapper
// per goroutine.
type Mapper struct {
	pool    Pool
	dialect Dialect

	// OutputParams holds the Output, InputOutput, and ReturnValue parameters
	// of the most recent call that bound at least one parameter, with their
	// post-execution values, in binding order. A call that binds no
	// parameters leaves the previous slice in place.
	OutputParams []Param
}

// New returns a Mapper that calls procedures on pool using the given
// dialect's call syntax.
func New(pool Pool, d Dialect) *Mapper {
	return &Mapper{pool: pool, dialect: d}
}

// Open opens a database via sql.Open and returns a Mapper for it, deriving
// the dialect from the driver name (see DialectFor).
//
// The returned Mapper does not manage the pool's lifetime. If you need to
// close the *sql.DB, open it yourself and pass it to New instead.
func Open(driverName, dsn string) (*Mapper, error) {
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnect, err)
	}
	return New(db, DialectFor(driverName)), nil
}

// conn checks a connection out of the pool, translating checkout failures
// into ErrConnect so callers see the true cause instead of a downstream nil
// dereference.
func (m *Mapper) conn(ctx context.Context) (*sql.Conn, error) {
	c, err := m.pool.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnect, err)
	}
	return c, nil
}

// capture rebuilds OutputParams from the just-completed call. With no bound
// parameters it is a no-op and the previous slice, if any, survives.
func (m *Mapper) capture(params []Param, dests []*any) {
	if len(params) == 0 {
		return
	}
	out := make([]Param, 0, len(params))
	for i, p := range params {
		if p.Direction == Input {
			continue
		}
		out = append(out, Param{Name: p.Name, Direction: p.Direction, Value: *dests[i]})
	}
	m.OutputParams = out
}
