package types

import (
	"errors"
	"go/types"
)

// -----------------------------------------------------------------------------

var (
	Void          = types.Typ[types.UntypedNil]
	UnsafePointer = types.Typ[types.UnsafePointer]

	Int     = types.Typ[types.Int32]
	Uint    = types.Typ[types.Uint32]
	NotImpl = UnsafePointer

	Enum = types.Typ[types.Int32]

	LongDouble = types.Typ[types.Float64]

	Int128  = NotImpl
	Uint128 = NotImpl
)

var builtins = map[string]types.Type{
	"void":                 Void,
	"_Bool":                types.Typ[types.Bool],
	"bool":                 types.Typ[types.Bool],
	"char":                 types.Typ[types.Int8],
	"signed char":          types.Typ[types.Int8],
	"unsigned char":        types.Typ[types.Uint8],
	"short":                types.Typ[types.Int16],
	"unsigned short":       types.Typ[types.Uint16],
	"int":                  Int,
	"unsigned int":         Uint,
	"long long":            types.Typ[types.Int64],
	"unsigned long long":   types.Typ[types.Uint64],
	"float":                types.Typ[types.Float32],
	"double":               types.Typ[types.Float64],
	"long double":          LongDouble,
	"_Complex float":       types.Typ[types.Complex64],
	"_Complex double":      types.Typ[types.Complex128],
	"_Complex long double": types.Typ[types.Complex128],
	"__int128":             Int128,
	"unsigned __int128":    Uint128,
}

// Builtin returns the Go type of a canonical builtin C type name.
func Builtin(name string) (types.Type, bool) {
	switch name {
	case "long":
		return Long, true
	case "unsigned long":
		return Ulong, true
	}
	t, ok := builtins[name]
	return t, ok
}

func NotVoid(t types.Type) bool {
	return t != Void
}

func NewPointer(typ types.Type) types.Type {
	if t, ok := typ.(*types.Basic); ok && t == Void {
		return UnsafePointer
	}
	return types.NewPointer(typ)
}

// -----------------------------------------------------------------------------

var (
	ErrTypeNotFound = errors.New("type not found")
	ErrVoidValue    = errors.New("void is not a value type")
)

// TypeSystem resolves the typedef and tag names a spec refers to.
type TypeSystem interface {
	// LookupType is called with the typedef name or the tag spelling
	// ("struct timespec").
	LookupType(name string) (types.Type, error)
}

// GoType maps spec to a Go type. Function types and pointers to them
// become unsafe.Pointer.
func GoType(ts TypeSystem, spec *Spec) (t types.Type, err error) {
	switch spec.Kind {
	case BaseOpaque:
		return UnsafePointer, nil
	case BaseBuiltin:
		var ok bool
		if t, ok = Builtin(spec.Base); !ok {
			return nil, ErrTypeNotFound
		}
	default:
		if t, err = ts.LookupType(spec.Base); err != nil {
			return
		}
	}
	for range spec.Ptrs {
		t = NewPointer(t)
	}
	if !NotVoid(t) && len(spec.Dims) > 0 {
		return nil, ErrVoidValue
	}
	for i := len(spec.Dims) - 1; i >= 0; i-- {
		n := int64(spec.Dims[i])
		if n < 0 {
			t = NewPointer(t)
			continue
		}
		t = types.NewArray(t, n)
	}
	return
}

// -----------------------------------------------------------------------------
