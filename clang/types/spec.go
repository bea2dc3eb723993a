package types

import (
	"strconv"
	"strings"
)

// -----------------------------------------------------------------------------

// Qual is a set of C type qualifiers.
type Qual uint8

const (
	Const Qual = 1 << iota
	Volatile
	Restrict
)

func (q Qual) String() string {
	parts := make([]string, 0, 3)
	if q&Const != 0 {
		parts = append(parts, "const")
	}
	if q&Volatile != 0 {
		parts = append(parts, "volatile")
	}
	if q&Restrict != 0 {
		parts = append(parts, "restrict")
	}
	return strings.Join(parts, " ")
}

// BaseKind tells how Spec.Base is to be read.
type BaseKind uint8

const (
	BaseBuiltin BaseKind = iota // int, unsigned long, void, ...
	BaseTag                     // struct timespec, union sigval, enum idtype_t
	BaseTypedef                 // clockid_t
	BaseOpaque                  // function types and pointers to them; see Spec.Raw
)

// Spec is a decomposed clang qualType spelling:
//
//	const volatile int         Quals=Const|Volatile Base="int"
//	const char *restrict       Quals=Const Base="char" Ptrs=[Restrict]
//	unsigned_long_type [4]     Base="unsigned_long_type" Dims=[4]
type Spec struct {
	Quals Qual // qualifiers of the base type
	Kind  BaseKind
	Base  string // canonical spelling of the base type
	Ptrs  []Qual // one entry per '*', with the qualifiers following it
	Dims  []int  // array dimensions, outermost first; -1 for []
	Raw   string // normalized full spelling when Kind == BaseOpaque
}

func (p *Spec) IsPointer() bool {
	return len(p.Ptrs) > 0 && len(p.Dims) == 0
}

// IsScalar reports whether p is a builtin arithmetic type, possibly
// qualified.
func (p *Spec) IsScalar() bool {
	return p.Kind == BaseBuiltin && p.Base != "void" && len(p.Ptrs) == 0 && len(p.Dims) == 0
}

// String renders p with qualifiers in clang's order (const volatile
// restrict), so equivalent specs print identically.
func (p *Spec) String() string {
	if p.Kind == BaseOpaque {
		return p.Raw
	}
	var b strings.Builder
	if p.Quals != 0 {
		b.WriteString(p.Quals.String())
		b.WriteByte(' ')
	}
	b.WriteString(p.Base)
	if len(p.Ptrs) > 0 {
		b.WriteByte(' ')
		for _, q := range p.Ptrs {
			b.WriteByte('*')
			if q != 0 {
				b.WriteString(q.String())
				b.WriteByte(' ')
			}
		}
	}
	s := strings.TrimRight(b.String(), " ")
	if len(p.Dims) > 0 {
		s += " " + dims(p.Dims)
	}
	return s
}

// Expand replaces a typedef base with the spec it names. The qualifiers
// written on p apply on top of the typedef's own.
func (p *Spec) Expand(def *Spec) *Spec {
	if def.Kind == BaseOpaque {
		if len(p.Ptrs) == 0 && len(p.Dims) == 0 && p.Quals == 0 {
			return def
		}
		return &Spec{Kind: BaseOpaque, Raw: p.String() + " => " + def.Raw}
	}
	ret := &Spec{Quals: def.Quals, Kind: def.Kind, Base: def.Base}
	ret.Ptrs = append(ret.Ptrs, def.Ptrs...)
	if n := len(ret.Ptrs); n > 0 {
		ret.Ptrs[n-1] |= p.Quals
	} else {
		ret.Quals |= p.Quals
	}
	if len(def.Dims) > 0 && len(p.Ptrs) > 0 {
		// pointer to an array typedef: int (*)[4]
		elem := ret.String()
		if !strings.HasSuffix(elem, "*") {
			elem += " "
		}
		return &Spec{Kind: BaseOpaque, Raw: elem + "(" + ptrs(p.Ptrs) + dims(p.Dims) + ")" + dims(def.Dims)}
	}
	ret.Ptrs = append(ret.Ptrs, p.Ptrs...)
	ret.Dims = append(append(ret.Dims, p.Dims...), def.Dims...)
	return ret
}

func ptrs(quals []Qual) string {
	var b strings.Builder
	for i, q := range quals {
		b.WriteByte('*')
		if q != 0 {
			b.WriteString(q.String())
			if i < len(quals)-1 {
				b.WriteByte(' ')
			}
		}
	}
	return b.String()
}

func dims(ns []int) string {
	var b strings.Builder
	for _, n := range ns {
		if n < 0 {
			b.WriteString("[]")
		} else {
			b.WriteString("[" + strconv.Itoa(n) + "]")
		}
	}
	return b.String()
}

// -----------------------------------------------------------------------------

// Declare renders a declaration of name with the type spelled by qualType:
//
//	Declare("char [16]", "buf")             => "char buf[16]"
//	Declare("int (*)(int)", "fn")           => "int (*fn)(int)"
//	Declare("char *", "optarg")             => "char *optarg"
//	Declare("const volatile int", "x")      => "const volatile int x"
func Declare(qualType, name string) string {
	if name == "" {
		return qualType
	}
	for _, ptr := range []string{"(*)", "(^)"} {
		if i := strings.Index(qualType, ptr); i >= 0 {
			return qualType[:i+2] + name + qualType[i+2:]
		}
	}
	if i := strings.IndexByte(qualType, '['); i >= 0 && !strings.Contains(qualType, "(") {
		return Declare(strings.TrimRight(qualType[:i], " "), name) + qualType[i:]
	}
	if strings.HasSuffix(qualType, "*") {
		return qualType + name
	}
	return qualType + " " + name
}

// -----------------------------------------------------------------------------
