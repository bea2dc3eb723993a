package parser

import (
	"go/scanner"
	"go/token"
	"go/types"
	"strconv"
	"strings"

	ctypes "github.com/goplus/ffi-cdecl/clang/types"
)

// -----------------------------------------------------------------------------

type ParseTypeError struct {
	QualType string
	Pos      token.Pos
	ErrMsg   string
}

func newError(pos token.Pos, qualType, errMsg string) *ParseTypeError {
	return &ParseTypeError{QualType: qualType, Pos: pos, ErrMsg: errMsg}
}

func (p *ParseTypeError) Error() string {
	return p.QualType + ": " + p.ErrMsg
}

// -----------------------------------------------------------------------------

var builtinWords = map[string]bool{
	"void": true, "char": true, "short": true, "int": true, "long": true,
	"float": true, "double": true, "signed": true, "unsigned": true,
	"_Bool": true, "bool": true, "_Complex": true, "__int128": true,
}

// IsKeyword reports whether word is a C keyword that may appear in a
// qualType spelling, as opposed to a typedef name.
func IsKeyword(word string) bool {
	switch word {
	case "const", "volatile", "restrict", "__restrict", "struct", "union", "enum",
		"_Nonnull", "_Nullable", "_Atomic", "typeof", "__typeof__", "__attribute__":
		return true
	}
	return builtinWords[word]
}

// ParseSpec decomposes a qualType spelling. Spellings with parentheses
// (functions, pointers to functions or arrays) are kept whole as
// ctypes.BaseOpaque.
func ParseSpec(qualType string) (spec *ctypes.Spec, err error) {
	qualType = strings.TrimSpace(qualType)
	if strings.ContainsAny(qualType, "(^") {
		return &ctypes.Spec{Kind: ctypes.BaseOpaque, Raw: normalize(qualType)}, nil
	}

	var s scanner.Scanner
	fset := token.NewFileSet()
	file := fset.AddFile("", fset.Base(), len(qualType))
	s.Init(file, []byte(qualType), nil, 0)

	spec = new(ctypes.Spec)
	var words []string // builtin words, in order
	var named string
	quals := &spec.Quals
	for {
		pos, tok, lit := scan(&s)
		switch tok {
		case token.IDENT:
			switch lit {
			case "const":
				*quals |= ctypes.Const
			case "volatile":
				*quals |= ctypes.Volatile
			case "restrict", "__restrict":
				*quals |= ctypes.Restrict
			case "_Nonnull", "_Nullable", "_Atomic":
			case "struct", "union", "enum":
				pos, tok, name := scan(&s)
				if tok != token.IDENT {
					return nil, newError(pos, qualType, lit+" without a tag name")
				}
				if named != "" || words != nil {
					return nil, newError(pos, qualType, "illegal syntax: multiple types?")
				}
				spec.Kind, named = ctypes.BaseTag, lit+" "+name
			default:
				if len(spec.Ptrs) > 0 {
					return nil, newError(pos, qualType, "unexpected "+lit+" after *")
				}
				if builtinWords[lit] {
					if named != "" {
						return nil, newError(pos, qualType, "illegal syntax: multiple types?")
					}
					words = append(words, lit)
					continue
				}
				if named != "" || words != nil {
					return nil, newError(pos, qualType, "illegal syntax: multiple types?")
				}
				spec.Kind, named = ctypes.BaseTypedef, lit
			}
		case token.MUL: // *
			if named == "" && words == nil {
				return nil, newError(pos, qualType, "pointer to nil")
			}
			spec.Ptrs = append(spec.Ptrs, 0)
			quals = &spec.Ptrs[len(spec.Ptrs)-1]
		case token.LBRACK: // [
			if named == "" && words == nil {
				return nil, newError(pos, qualType, "array of nil")
			}
			pos, tok, lit = s.Scan()
			n := -1
			if tok == token.INT {
				v, e := strconv.Atoi(lit)
				if e != nil {
					return nil, newError(pos, qualType, e.Error())
				}
				n = v
				pos, tok, _ = s.Scan()
			}
			if tok != token.RBRACK {
				return nil, newError(pos, qualType, "expect ]")
			}
			spec.Dims = append(spec.Dims, n)
		case token.SEMICOLON: // automatically inserted at EOF
		case token.EOF:
			if named == "" && words == nil {
				return nil, newError(pos, qualType, "no type")
			}
			if named != "" {
				spec.Base = named
			} else if spec.Base, err = canonicalBuiltin(words); err != nil {
				return nil, newError(pos, qualType, err.Error())
			}
			return
		default:
			return nil, newError(pos, qualType, "unexpected "+tok.String())
		}
	}
}

// scan returns Go keywords (const, struct, ...) as identifiers: in a C
// spelling they are qualifiers, tags or typedef names.
func scan(s *scanner.Scanner) (pos token.Pos, tok token.Token, lit string) {
	pos, tok, lit = s.Scan()
	if tok.IsKeyword() {
		tok, lit = token.IDENT, tok.String()
	}
	return
}

// canonicalBuiltin orders and abbreviates builtin words the way clang
// prints them: "long unsigned int" => "unsigned long".
func canonicalBuiltin(words []string) (string, error) {
	var unsigned, signed, complex bool
	var longs int
	base := ""
	for _, w := range words {
		switch w {
		case "unsigned":
			unsigned = true
		case "signed":
			signed = true
		case "long":
			longs++
		case "_Complex":
			complex = true
		case "int":
			if base == "" {
				base = "int"
			}
		default:
			if base != "" && base != "int" {
				return "", strconv.ErrSyntax
			}
			base = w
		}
	}
	switch {
	case longs > 2:
		return "", strconv.ErrSyntax
	case base == "double" && longs == 1:
		base = "long double"
	case longs == 1 && (base == "" || base == "int"):
		base = "long"
	case longs == 2 && (base == "" || base == "int"):
		base = "long long"
	case base == "":
		base = "int"
	case base == "short" || base == "char" || base == "int" || base == "__int128":
	case longs > 0:
		return "", strconv.ErrSyntax
	}
	if complex {
		return "_Complex " + base, nil
	}
	if unsigned {
		return "unsigned " + base, nil
	}
	if signed && base == "char" {
		return "signed char", nil
	}
	return base, nil
}

func normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// -----------------------------------------------------------------------------

// Expander returns the spelling a typedef name stands for.
type Expander func(typedef string) (qualType string, ok bool)

// Canonical parses qualType and expands every typedef base through
// expand, following chains of typedefs.
func Canonical(qualType string, expand Expander) (spec *ctypes.Spec, err error) {
	if spec, err = ParseSpec(qualType); err != nil {
		return
	}
	for i := 0; spec.Kind == ctypes.BaseTypedef && expand != nil; i++ {
		def, ok := expand(spec.Base)
		if !ok || i > 32 {
			break
		}
		inner, e := ParseSpec(def)
		if e != nil {
			return nil, e
		}
		spec = spec.Expand(inner)
	}
	return
}

// Equivalent reports whether two spellings denote the same qualified type
// once typedefs are expanded. Qualifier order does not matter:
// "volatile const_int_type" is equivalent to "const volatile int" when
// const_int_type names "const int".
func Equivalent(a, b string, expand Expander) bool {
	sa, err := Canonical(a, expand)
	if err != nil {
		return false
	}
	sb, err := Canonical(b, expand)
	if err != nil {
		return false
	}
	return sa.String() == sb.String()
}

// -----------------------------------------------------------------------------

// ParseType parses qualType into a Go type. Array parameters decay to
// pointers when isParam is set.
func ParseType(ts ctypes.TypeSystem, qualType string, isParam bool) (t types.Type, err error) {
	spec, err := ParseSpec(qualType)
	if err != nil {
		return
	}
	if isParam && len(spec.Dims) > 0 {
		elem := *spec
		elem.Dims = spec.Dims[1:]
		if t, err = ctypes.GoType(ts, &elem); err != nil {
			return
		}
		return ctypes.NewPointer(t), nil
	}
	return ctypes.GoType(ts, spec)
}

// -----------------------------------------------------------------------------
