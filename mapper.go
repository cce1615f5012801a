package sproc

import (
	"database/sql"
	"fmt"
	"reflect"
)

// nullMode selects what a row mapper does with a NULL column.
type nullMode int

const (
	// assignNulls pushes the NULL into the field: Scanner fields observe
	// Scan(nil), nilable fields become nil, anything else is ErrTypeMismatch.
	assignNulls nullMode = iota
	// skipNulls leaves the field at its freshly-constructed zero value.
	skipNulls
)

// fieldIndex maps a column name to the index path of the field it binds.
// Built per call; nothing is cached between calls.
type fieldIndex struct {
	byName map[string][]int
}

// buildFieldIndex walks rt collecting settable fields by their exact bind
// name: the `db` tag when present, the field name otherwise. Anonymous
// embedded structs flatten; on a name collision the shallowest field wins.
func buildFieldIndex(rt reflect.Type) fieldIndex {
	idx := fieldIndex{byName: make(map[string][]int)}

	var walk func(t reflect.Type, base []int)
	walk = func(t reflect.Type, base []int) {
		t = derefPtr(t)
		if t.Kind() != reflect.Struct {
			return
		}
		for i := 0; i < t.NumField(); i++ {
			sf := t.Field(i)
			if sf.PkgPath != "" && !sf.Anonymous { // unexported, non-anonymous
				continue
			}
			tag := sf.Tag.Get("db")
			if tag == "-" {
				continue
			}
			path := append(append([]int(nil), base...), i)
			if sf.Anonymous && tag == "" {
				ft := derefPtr(sf.Type)
				if ft.Kind() == reflect.Struct {
					walk(sf.Type, path)
					continue
				}
			}
			name := tag
			if name == "" {
				name = sf.Name
			}
			if _, ok := idx.byName[name]; !ok {
				idx.byName[name] = path
			}
		}
	}
	walk(rt, nil)
	return idx
}

// resolveColumns binds every result column to a field path, failing with
// ErrUnmappedColumn on the first column the destination type cannot hold.
func resolveColumns(rt reflect.Type, cols []string) ([][]int, error) {
	idx := buildFieldIndex(rt)
	paths := make([][]int, len(cols))
	for i, c := range cols {
		name := trimQuotes(c)
		p, ok := idx.byName[name]
		if !ok {
			return nil, fmt.Errorf("%w: %q on %s", ErrUnmappedColumn, name, rt)
		}
		paths[i] = p
	}
	return paths, nil
}

// scanRow scans the current row into a fresh T using the resolved paths.
func scanRow[T any](rows *sql.Rows, cols []string, paths [][]int, mode nullMode) (T, error) {
	var zero T

	raws := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range raws {
		ptrs[i] = &raws[i]
	}
	if err := rows.Scan(ptrs...); err != nil {
		return zero, err
	}

	rv := reflect.New(typeOf[T]())
	root := rv.Elem()
	for i, raw := range raws {
		// Drivers may reuse the byte slice on the next Next; keep our own copy.
		if b, ok := raw.([]byte); ok {
			raw = append([]byte(nil), b...)
		}
		fv := fieldByPathAlloc(root, paths[i])
		if raw == nil {
			if mode == skipNulls {
				continue
			}
			if err := assignNull(fv); err != nil {
				return zero, fmt.Errorf("column %q: %w", trimQuotes(cols[i]), err)
			}
			continue
		}
		if err := assignValue(fv, raw); err != nil {
			return zero, fmt.Errorf("column %q: %w", trimQuotes(cols[i]), err)
		}
	}
	return rv.Elem().Interface().(T), nil
}

// assignValue stores a non-NULL driver value into fv. Direct assignment
// first, then sql.Scanner, then the conversions the driver's canonical
// representations permit. Anything else is ErrTypeMismatch.
func assignValue(fv reflect.Value, raw any) error {
	if implementsScanner(fv.Type()) {
		return fv.Addr().Interface().(sql.Scanner).Scan(raw)
	}
	for fv.Kind() == reflect.Pointer {
		if fv.IsNil() {
			fv.Set(reflect.New(fv.Type().Elem()))
		}
		fv = fv.Elem()
		if implementsScanner(fv.Type()) {
			return fv.Addr().Interface().(sql.Scanner).Scan(raw)
		}
	}

	rv := reflect.ValueOf(raw)
	if rv.Type().AssignableTo(fv.Type()) {
		fv.Set(rv)
		return nil
	}

	switch fv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if n, ok := raw.(int64); ok {
			fv.SetInt(n)
			return nil
		}
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if n, ok := raw.(int64); ok && n >= 0 {
			fv.SetUint(uint64(n))
			return nil
		}
	case reflect.Float32, reflect.Float64:
		if f, ok := raw.(float64); ok {
			fv.SetFloat(f)
			return nil
		}
	case reflect.Bool:
		if b, ok := raw.(bool); ok {
			fv.SetBool(b)
			return nil
		}
	case reflect.String:
		switch v := raw.(type) {
		case string:
			fv.SetString(v)
			return nil
		case []byte:
			fv.SetString(string(v))
			return nil
		}
	case reflect.Slice:
		if fv.Type().Elem().Kind() == reflect.Uint8 {
			if s, ok := raw.(string); ok {
				fv.SetBytes([]byte(s))
				return nil
			}
			if b, ok := raw.([]byte); ok {
				fv.SetBytes(b)
				return nil
			}
		}
	}
	return fmt.Errorf("%w: %T into %s", ErrTypeMismatch, raw, fv.Type())
}

// assignNull stores a NULL into fv.
func assignNull(fv reflect.Value) error {
	if implementsScanner(fv.Type()) {
		return fv.Addr().Interface().(sql.Scanner).Scan(nil)
	}
	switch fv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Slice, reflect.Map:
		fv.SetZero()
		return nil
	}
	return fmt.Errorf("%w: NULL into %s", ErrTypeMismatch, fv.Type())
}

// ---------------- type helpers ----------------

func typeOf[T any]() reflect.Type { return reflect.TypeOf((*T)(nil)).Elem() }

func derefPtr(t reflect.Type) reflect.Type {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t
}

func implementsScanner(t reflect.Type) bool {
	scanner := reflect.TypeOf((*sql.Scanner)(nil)).Elem()
	return reflect.PointerTo(t).Implements(scanner)
}

// fieldByPathAlloc walks fpath, allocating nil pointers so the final field
// is addressable.
func fieldByPathAlloc(root reflect.Value, fpath []int) reflect.Value {
	v := root
	for _, i := range fpath {
		if v.Kind() == reflect.Pointer {
			if v.IsNil() {
				v.Set(reflect.New(v.Type().Elem()))
			}
			v = v.Elem()
		}
		v = v.Field(i)
	}
	return v
}

// trimQuotes strips one layer of "x", `x`, or [x] quoting from a column
// name. No case folding: binding is exact.
func trimQuotes(s string) string {
	if l := len(s); l >= 2 {
		switch s[0] {
		case '"':
			if s[l-1] == '"' {
				return s[1 : l-1]
			}
		case '`':
			if s[l-1] == '`' {
				return s[1 : l-1]
			}
		case '[':
			if s[l-1] == ']' {
				return s[1 : l-1]
			}
		}
	}
	return s
}
