package parser

import (
	"go/token"
	"go/types"
	"testing"

	ctypes "github.com/goplus/ffi-cdecl/clang/types"
)

// -----------------------------------------------------------------------------

var (
	pkg   = types.NewPackage("", "foo")
	scope = pkg.Scope()
)

type typeSystem struct{}

func (typeSystem) LookupType(name string) (types.Type, error) {
	if o := scope.Lookup(name); o != nil {
		return o.Type(), nil
	}
	return nil, ctypes.ErrTypeNotFound
}

func init() {
	aliasType(scope, pkg, "clockid_t", ctypes.Int)
	aliasType(scope, pkg, "struct timespec", tyTimespec)
}

func aliasType(scope *types.Scope, pkg *types.Package, name string, typ types.Type) {
	o := types.NewTypeName(token.NoPos, pkg, name, typ)
	scope.Insert(o)
}

var (
	tnameTimespec = types.NewTypeName(token.NoPos, pkg, "Timespec", nil)
	tyTimespec    = types.NewNamed(tnameTimespec, types.NewStruct(nil, nil), nil)
)

var (
	tyChar       = types.Typ[types.Int8]
	tyUchar      = types.Typ[types.Uint8]
	tyInt16      = types.Typ[types.Int16]
	tyInt64      = types.Typ[types.Int64]
	tyUint64     = types.Typ[types.Uint64]
	tyInt        = ctypes.Int
	tyUint       = ctypes.Uint
	tyCharPtr    = types.NewPointer(tyChar)
	tyCharPtrPtr = types.NewPointer(tyCharPtr)
)

// -----------------------------------------------------------------------------

type testCase struct {
	qualType string
	isParam  bool
	typ      types.Type
	err      string
}

var cases = []testCase{
	{qualType: "int", typ: tyInt},
	{qualType: "unsigned int", typ: tyUint},
	{qualType: "unsigned", typ: tyUint},
	{qualType: "signed", typ: tyInt},
	{qualType: "volatile signed int", typ: tyInt},
	{qualType: "const volatile int", typ: tyInt},
	{qualType: "signed short", typ: tyInt16},
	{qualType: "short int", typ: tyInt16},
	{qualType: "signed long", typ: ctypes.Long},
	{qualType: "long unsigned int", typ: ctypes.Ulong},
	{qualType: "unsigned char", typ: tyUchar},
	{qualType: "unsigned __int128", typ: ctypes.Uint128},
	{qualType: "long long", typ: tyInt64},
	{qualType: "unsigned long long", typ: tyUint64},
	{qualType: "long double", typ: ctypes.LongDouble},
	{qualType: "_Complex float", typ: types.Typ[types.Complex64]},
	{qualType: "_Complex double", typ: types.Typ[types.Complex128]},
	{qualType: "clockid_t", typ: tyInt},
	{qualType: "struct timespec", typ: tyTimespec},
	{qualType: "struct timespec *", typ: types.NewPointer(tyTimespec)},
	{qualType: "const char *restrict", typ: tyCharPtr},
	{qualType: "char *__restrict", typ: tyCharPtr},
	{qualType: "char **", typ: tyCharPtrPtr},
	{qualType: "char *const *", typ: tyCharPtrPtr},
	{qualType: "const char [7]", typ: types.NewArray(tyChar, 7)},
	{qualType: "const char [7]", isParam: true, typ: tyCharPtr},
	{qualType: "int [2][3]", typ: types.NewArray(types.NewArray(tyInt, 3), 2)},
	{qualType: "int [2][3]", isParam: true, typ: types.NewPointer(types.NewArray(tyInt, 3))},
	{qualType: "void", typ: ctypes.Void},
	{qualType: "void *", typ: ctypes.UnsafePointer},
	{qualType: "int (*)(void *, int, char **, char **)", typ: ctypes.UnsafePointer},
	{qualType: "void (^ _Nonnull)(void)", typ: ctypes.UnsafePointer},
	{qualType: "float long", err: "float long: invalid syntax"},
	{qualType: "unsigned clockid_t", err: "unsigned clockid_t: illegal syntax: multiple types?"},
	{qualType: "struct", err: "struct: struct without a tag name"},
	{qualType: "* int", err: "* int: pointer to nil"},
	{qualType: "int [x]", err: "int [x]: expect ]"},
	{qualType: "pid_t", err: "type not found"},
	{qualType: "void [3]", err: "void is not a value type"},
}

func TestCases(t *testing.T) {
	for _, c := range cases {
		t.Run(c.qualType, func(t *testing.T) {
			typ, err := ParseType(typeSystem{}, c.qualType, c.isParam)
			if err != nil {
				if err.Error() != c.err {
					t.Fatal("ParseType:", err, ", expected:", c.err)
				}
			} else if c.err != "" {
				t.Fatal("ParseType: no error? expected:", c.err)
			} else if !types.Identical(typ, c.typ) {
				t.Fatal("ParseType:", typ, ", expected:", c.typ)
			}
		})
	}
}

// -----------------------------------------------------------------------------

func TestSpecString(t *testing.T) {
	cases := map[string]string{
		"volatile const int":          "const volatile int",
		"int const":                   "const int",
		"long unsigned int":           "unsigned long",
		"const char *restrict":        "const char *restrict",
		"char * const * volatile":     "char *const *volatile",
		"unsigned_long_type [4]":      "unsigned_long_type [4]",
		"struct  timespec":            "struct timespec",
		"int (*)(int,   char **)":     "int (*)(int, char **)",
		"volatile const_int_type":     "volatile const_int_type",
		"const volatile unsigned long": "const volatile unsigned long",
	}
	for in, want := range cases {
		spec, err := ParseSpec(in)
		if err != nil {
			t.Fatal("ParseSpec:", in, err)
		}
		if got := spec.String(); got != want {
			t.Fatal("Spec.String:", in, "=>", got, ", expected:", want)
		}
	}
}

func TestParseSpecKeywords(t *testing.T) {
	cases := []struct {
		qualType string
		kind     ctypes.BaseKind
		base     string
		quals    ctypes.Qual
		ptrs     int
	}{
		{"const int", ctypes.BaseBuiltin, "int", ctypes.Const, 0},
		{"int const", ctypes.BaseBuiltin, "int", ctypes.Const, 0},
		{"struct timespec", ctypes.BaseTag, "struct timespec", 0, 0},
		{"const struct timespec *const", ctypes.BaseTag, "struct timespec", ctypes.Const, 1},
		{"union sigval", ctypes.BaseTag, "union sigval", 0, 0},
		{"struct type", ctypes.BaseTag, "struct type", 0, 0},
		{"const type", ctypes.BaseTypedef, "type", ctypes.Const, 0},
		{"volatile const_int_type", ctypes.BaseTypedef, "const_int_type", ctypes.Volatile, 0},
	}
	for _, c := range cases {
		spec, err := ParseSpec(c.qualType)
		if err != nil {
			t.Fatal("ParseSpec:", c.qualType, err)
		}
		if spec.Kind != c.kind || spec.Base != c.base || spec.Quals != c.quals || len(spec.Ptrs) != c.ptrs {
			t.Fatalf("ParseSpec: %s => %+v", c.qualType, spec)
		}
	}
}

func TestCanonicalArrayPointer(t *testing.T) {
	expand := func(name string) (string, bool) {
		return "int [4]", name == "int_row"
	}
	spec, err := Canonical("int_row *", expand)
	if err != nil {
		t.Fatal("Canonical:", err)
	}
	if got := spec.String(); got != "int (*)[4]" {
		t.Fatal("Canonical: int_row * =>", got)
	}
	if spec, err = Canonical("int_row", expand); err != nil || spec.String() != "int [4]" {
		t.Fatal("Canonical: int_row =>", spec, err)
	}
}

func TestEquivalent(t *testing.T) {
	typedefs := map[string]string{
		"int_type":                 "int",
		"const_int_type":           "const int",
		"unsigned_long_type":       "unsigned long",
		"const_unsigned_long_type": "const unsigned long",
		"cstr":                     "const char *",
		"alias_of_alias":           "const_int_type",
		"int_row":                  "int [4]",
		"str_row":                  "char *[2]",
		"row_ptr":                  "int_row *",
	}
	expand := func(name string) (string, bool) {
		def, ok := typedefs[name]
		return def, ok
	}
	same := [][2]string{
		{"volatile const_int_type", "const volatile int"},
		{"volatile int_type", "volatile int"},
		{"const_int_type", "int const"},
		{"volatile const_unsigned_long_type", "const volatile unsigned long"},
		{"volatile unsigned_long_type", "volatile long unsigned int"},
		{"volatile alias_of_alias", "const volatile int"},
		{"const cstr", "const char *const"},
		{"cstr [2]", "const char *[2]"},
		{"int_row *", "int (*)[4]"},
		{"int_row *const", "int (*const)[4]"},
		{"str_row *", "char *(*)[2]"},
		{"row_ptr", "int (*)[4]"},
	}
	for _, c := range same {
		if !Equivalent(c[0], c[1], expand) {
			t.Fatal("Equivalent:", c[0], c[1], ": false")
		}
	}
	differ := [][2]string{
		{"volatile const_int_type", "volatile int"},
		{"const char *", "char *const"},
		{"int_type", "unsigned int"},
		{"int (*)(void)", "int (*)(int)"},
		{"int_row *", "int *[4]"},
	}
	for _, c := range differ {
		if Equivalent(c[0], c[1], expand) {
			t.Fatal("Equivalent:", c[0], c[1], ": true")
		}
	}
}

func TestDeclare(t *testing.T) {
	cases := [][3]string{
		{"char [16]", "buf", "char buf[16]"},
		{"char *[4]", "argv", "char *argv[4]"},
		{"int (*)(int)", "fn", "int (*fn)(int)"},
		{"int (*)[100]", "rows", "int (*rows)[100]"},
		{"char *", "optarg", "char *optarg"},
		{"const volatile int", "x", "const volatile int x"},
		{"struct timespec *", "", "struct timespec *"},
	}
	for _, c := range cases {
		if got := ctypes.Declare(c[0], c[1]); got != c[2] {
			t.Fatal("Declare:", c[0], c[1], "=>", got, ", expected:", c[2])
		}
	}
}

// -----------------------------------------------------------------------------
