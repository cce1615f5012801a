/*
Package sproc is a minimal, stdlib-style layer over database/sql for calling
stored procedures and mapping their results into structs. You name the
procedure and its parameters; sproc renders the dialect-specific call
statement, runs it, and maps result rows onto Go values with a tiny,
predictable API.

# Overview

sproc preserves database/sql semantics while removing repetitive
call-and-scan code around stored procedures. Each call checks a connection
out of the pool, executes, fully drains the result, and releases the
connection before returning. Mapping is deterministic and easy to reason
about in code review.

# Mapping rules

  - Columns bind by `db:"name"` first; otherwise by the exact, case-sensitive
    field name. There is no case-insensitive fallback and no underscore or
    camelCase normalization.
  - Anonymous embedded structs are flattened.
  - If a field implements sql.Scanner, its Scan method receives the driver value.
  - Driver representations convert where the representation permits
    (int64 into sized ints, float64 into sized floats, []byte and string
    interchangeably). Anything else fails with ErrTypeMismatch.
  - A result column with no matching field fails the whole call with
    ErrUnmappedColumn. Procedures own their result shapes; a stray column is
    a contract break, not noise to discard.

# Null handling

ExecuteSingle assigns NULL columns: sql.Scanner fields observe Scan(nil),
nilable fields become nil, and other fields fail with ErrTypeMismatch.
ExecuteList instead skips NULL columns, leaving the field at its zero value.
The asymmetry is part of the contract callers depend on; see the function docs.

# Performance

sproc builds its column-to-field index per call and keeps no reflection
metadata between calls. Procedure result shapes are small and stable; the
index costs little, and a cache would be shared mutable state this package
deliberately avoids.

# Output parameters

Parameters declared Output, InputOutput, or ReturnValue ride on sql.Out.
After a call that bound at least one parameter, Mapper.OutputParams holds a
freshly built slice of the output-capable parameters with their
post-execution values.

# Compatibility

sproc renders the call statement for MySQL, PostgreSQL, SQL Server, and
Oracle placeholder conventions. Whether output parameters round-trip depends
on the driver's sql.Out support; consult your driver.
*/
package sproc
