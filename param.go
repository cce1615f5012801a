package sproc

import (
	"fmt"
	"reflect"
	"sort"
)

// Direction says which way a parameter's value flows through a procedure call.
type Direction int

const (
	// Input parameters carry a value into the procedure.
	Input Direction = iota
	// Output parameters carry a value out; the bound Value is ignored.
	Output
	// InputOutput parameters carry a value both ways.
	InputOutput
	// ReturnValue captures the procedure's return value where the driver
	// supports it. Bound like Output.
	ReturnValue
)

// String returns the direction name as spelled in the constants.
func (d Direction) String() string {
	switch d {
	case Input:
		return "Input"
	case Output:
		return "Output"
	case InputOutput:
		return "InputOutput"
	case ReturnValue:
		return "ReturnValue"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

// Param is one named procedure parameter. Name is bare, without the
// database's marker character; the dialect applies the marker when it
// renders the call statement.
type Param struct {
	Name      string
	Direction Direction
	Value     any
}

// In builds an Input parameter.
func In(name string, value any) Param {
	return Param{Name: name, Direction: Input, Value: value}
}

// Out builds an Output parameter.
func Out(name string) Param {
	return Param{Name: name, Direction: Output}
}

// InOut builds an InputOutput parameter carrying value in.
func InOut(name string, value any) Param {
	return Param{Name: name, Direction: InputOutput, Value: value}
}

// Ret builds a ReturnValue parameter.
func Ret(name string) Param {
	return Param{Name: name, Direction: ReturnValue}
}

// Args converts a struct or map[string]any into Input parameters.
//
// Struct fields bind by `db:"name"` first, otherwise by field name;
// `db:"-"` skips a field; anonymous embedded structs flatten. Struct
// parameters come out in field order, map parameters in sorted-key order so
// positional dialects render deterministically.
//
// Example:
//
//	params, err := sproc.Args(struct {
//	    Email  string `db:"email"`
//	    Active bool
//	}{"a@x", true})
//	// => In("email", "a@x"), In("Active", true)
func Args(v any) ([]Param, error) {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, ErrNilParams
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, ErrUnsupportedArg
		}
		keys := make([]string, 0, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			keys = append(keys, iter.Key().String())
		}
		sort.Strings(keys)
		out := make([]Param, 0, len(keys))
		for _, k := range keys {
			out = append(out, In(k, rv.MapIndex(reflect.ValueOf(k)).Interface()))
		}
		return out, nil
	case reflect.Struct:
		seen := make(map[string]struct{})
		var out []Param
		if err := appendStructParams(&out, seen, rv); err != nil {
			return nil, err
		}
		return out, nil
	default:
		return nil, ErrUnsupportedArg
	}
}

func appendStructParams(dst *[]Param, seen map[string]struct{}, v reflect.Value) error {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.PkgPath != "" && !f.Anonymous {
			continue
		}

		// Embedded types: follow pointer chains, skip nil, flatten fields.
		if f.Anonymous {
			ft := f.Type
			fv := v.Field(i)
			isNil := false
			for ft.Kind() == reflect.Pointer {
				if fv.IsNil() {
					isNil = true
					break
				}
				ft = ft.Elem()
				fv = fv.Elem()
			}
			if !isNil && ft.Kind() == reflect.Struct {
				if err := appendStructParams(dst, seen, fv); err != nil {
					return err
				}
				continue
			}
		}

		tag := f.Tag.Get("db")
		if tag == "-" {
			continue
		}
		name := tag
		if name == "" {
			name = f.Name
		}
		if _, exists := seen[name]; exists {
			return fmt.Errorf("%w: %q", ErrDuplicateParam, name)
		}
		seen[name] = struct{}{}
		*dst = append(*dst, In(name, v.Field(i).Interface()))
	}
	return nil
}
