package sproc

import (
	"database/sql"
	"fmt"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// nullable records whether it observed a SQL NULL. Used to verify the
// single/list null-handling asymmetry.
type nullable struct {
	Valid bool
	S     string
}

func (n *nullable) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*n = nullable{}
		return nil
	case string:
		*n = nullable{Valid: true, S: v}
		return nil
	case []byte:
		*n = nullable{Valid: true, S: string(v)}
		return nil
	default:
		return fmt.Errorf("nullable: %T", src)
	}
}

func TestTrimQuotes(t *testing.T) {
	cases := map[string]string{
		`"Name"`:        "Name",
		"`Camel`":       "Camel",
		"[UPPER]":       "UPPER",
		"already_ok":    "already_ok",
		`"unterminated`: `"unterminated`,
		"x":             "x",
	}
	for in, want := range cases {
		require.Equal(t, want, trimQuotes(in))
	}
}

func TestBuildFieldIndex_ExactNamesAndTags(t *testing.T) {
	type Embedded struct {
		Inner string `db:"inner"`
	}
	type Outer struct {
		ID   int64 `db:"id"`
		Name string
		Embedded
		Skip  string `db:"-"`
		unexp int
	}
	_ = Outer{unexp: 1}

	idx := buildFieldIndex(reflect.TypeOf(Outer{}))
	require.Contains(t, idx.byName, "id")
	require.Contains(t, idx.byName, "Name")
	require.Contains(t, idx.byName, "inner")
	require.NotContains(t, idx.byName, "name", "matching is case-sensitive")
	require.NotContains(t, idx.byName, "ID", "tag replaces the field name")
	require.NotContains(t, idx.byName, "Skip")
	require.NotContains(t, idx.byName, "unexp")
}

func TestBuildFieldIndex_ShallowestWins(t *testing.T) {
	type Inner struct {
		Name string `db:"name"`
	}
	type Outer struct {
		Name string `db:"name"`
		Inner
	}
	idx := buildFieldIndex(reflect.TypeOf(Outer{}))
	require.Equal(t, []int{0}, idx.byName["name"])
}

func TestResolveColumns_Unmapped(t *testing.T) {
	type Row struct {
		ID int64 `db:"id"`
	}
	_, err := resolveColumns(reflect.TypeOf(Row{}), []string{"id", "mystery"})
	require.ErrorIs(t, err, ErrUnmappedColumn)
	require.ErrorContains(t, err, "mystery")
}

func TestAssignValue_Conversions(t *testing.T) {
	set := func(dst any, raw any) error {
		return assignValue(reflect.ValueOf(dst).Elem(), raw)
	}

	var i32 int32
	require.NoError(t, set(&i32, int64(7)))
	require.EqualValues(t, 7, i32)

	var u16 uint16
	require.NoError(t, set(&u16, int64(9)))
	require.EqualValues(t, 9, u16)
	require.ErrorIs(t, set(&u16, int64(-1)), ErrTypeMismatch)

	var f32 float32
	require.NoError(t, set(&f32, float64(1.25)))
	require.EqualValues(t, 1.25, f32)

	var s string
	require.NoError(t, set(&s, []byte("hi")))
	require.Equal(t, "hi", s)

	var b []byte
	require.NoError(t, set(&b, "raw"))
	require.Equal(t, []byte("raw"), b)

	var ok bool
	require.NoError(t, set(&ok, true))
	require.True(t, ok)

	var ts time.Time
	now := time.Unix(1700000000, 0).UTC()
	require.NoError(t, set(&ts, now))
	require.True(t, ts.Equal(now))

	var anyv any
	require.NoError(t, set(&anyv, int64(5)))
	require.Equal(t, int64(5), anyv)

	require.ErrorIs(t, set(&i32, "nope"), ErrTypeMismatch)
	require.ErrorIs(t, set(&ts, int64(3)), ErrTypeMismatch)
}

func TestAssignValue_PointerAlloc(t *testing.T) {
	var p *int64
	require.NoError(t, assignValue(reflect.ValueOf(&p).Elem(), int64(11)))
	require.NotNil(t, p)
	require.EqualValues(t, 11, *p)
}

func TestAssignValue_ScannerField(t *testing.T) {
	var n nullable
	require.NoError(t, assignValue(reflect.ValueOf(&n).Elem(), "x"))
	require.Equal(t, nullable{Valid: true, S: "x"}, n)
}

func TestAssignNull(t *testing.T) {
	p := new(int64)
	pv := reflect.ValueOf(&p).Elem()
	require.NoError(t, assignNull(pv))
	require.Nil(t, p)

	n := nullable{Valid: true, S: "was set"}
	require.NoError(t, assignNull(reflect.ValueOf(&n).Elem()))
	require.Equal(t, nullable{}, n, "scanner observes Scan(nil)")

	var anyv any = "stale"
	require.NoError(t, assignNull(reflect.ValueOf(&anyv).Elem()))
	require.Nil(t, anyv)

	var i int
	require.ErrorIs(t, assignNull(reflect.ValueOf(&i).Elem()), ErrTypeMismatch)

	var s string
	require.ErrorIs(t, assignNull(reflect.ValueOf(&s).Elem()), ErrTypeMismatch)
}

func TestImplementsScanner(t *testing.T) {
	require.True(t, implementsScanner(reflect.TypeOf(nullable{})))
	require.True(t, implementsScanner(reflect.TypeOf(sql.NullString{})))
	require.False(t, implementsScanner(reflect.TypeOf("")))
}
