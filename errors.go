package sproc

import "errors"

// ErrConnect is returned when a connection cannot be checked out of the
// pool. It wraps the pool's error text so the true cause is visible.
var ErrConnect = errors.New("sproc: connect")

// ErrUnmappedColumn is returned when a result column has no matching field
// on the destination type. The whole call fails; rows mapped before the
// failing column are discarded.
var ErrUnmappedColumn = errors.New("sproc: no field for column")

// ErrTypeMismatch is returned when a column value cannot be assigned to its
// matching field: the driver representation is incompatible with the field
// type, or a NULL arrived for a field that cannot hold one.
var ErrTypeMismatch = errors.New("sproc: incompatible column value")

// ErrBadProcedure is returned when a procedure reference is not a plain or
// schema-qualified identifier. Procedure names are interpolated into the
// call statement, so anything else is rejected up front.
var ErrBadProcedure = errors.New("sproc: invalid procedure name")

// ErrNilParams is returned by Args when given a nil pointer.
var ErrNilParams = errors.New("sproc: nil params")

// ErrUnsupportedArg is returned by Args when the value is not a struct or
// map[string]any.
var ErrUnsupportedArg = errors.New("sproc: params must be struct or map[string]any")

// ErrDuplicateParam is returned by Args when two struct fields (including
// embedded ones) resolve to the same parameter name, e.g. via db:"name".
var ErrDuplicateParam = errors.New("sproc: duplicate parameter name")
