/*
 * Copyright (c) 2022 The GoPlus Authors (goplus.org). All rights reserved.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package cdecl

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/goplus/ffi-cdecl/clang/ast"
	"github.com/goplus/ffi-cdecl/clang/types/parser"

	ctypes "github.com/goplus/ffi-cdecl/clang/types"
)

// -----------------------------------------------------------------------------

// renderer spells types for the generated declarations. A typedef name is
// only kept when an earlier entry of the manifest declares it; otherwise
// clang's desugared spelling is used so the output never refers to a name
// the FFI has not seen.
type renderer struct {
	scope    *Scope
	declared map[string]bool
}

func newRenderer(scope *Scope) *renderer {
	return &renderer{scope: scope, declared: make(map[string]bool)}
}

var identRe = regexp.MustCompile(`[A-Za-z_]\w*`)

func (r *renderer) keeps(qualType string) bool {
	if isUnnamedSpelling(qualType) {
		return false
	}
	words := identRe.FindAllString(qualType, -1)
	for i := 0; i < len(words); i++ {
		w := words[i]
		switch w {
		case "struct", "union", "enum":
			i++ // tag name
			continue
		}
		if !parser.IsKeyword(w) && !r.declared[w] {
			return false
		}
	}
	return true
}

func (r *renderer) spell(t *ast.Type) string {
	if t == nil {
		return ""
	}
	if t.DesugaredQualType == "" || r.keeps(t.QualType) {
		return t.QualType
	}
	return t.DesugaredQualType
}

// desugar expands the typedefs of qualType the manifest has not declared.
// Function types come without a desugared spelling, so their parts are
// expanded here.
func (r *renderer) desugar(qualType string) string {
	spec, err := parser.Canonical(qualType, func(name string) (string, bool) {
		if r.declared[name] {
			return "", false
		}
		return r.scope.Expand(name)
	})
	if err != nil || spec.Kind == ctypes.BaseOpaque {
		return qualType
	}
	return spec.String()
}

func (r *renderer) canonical(qualType string) string {
	spec, err := parser.Canonical(qualType, r.scope.Expand)
	if err != nil {
		return ""
	}
	return spec.String()
}

// -----------------------------------------------------------------------------

func (r *renderer) typedef(b *Binding, decl *ast.Node) {
	if body, ok := r.ownedBody(decl, b); ok {
		b.Type = body
		b.Decl = "typedef " + declareUnnamed(body, decl.Type.QualType, b.Name) + ";"
	} else {
		b.Type = r.spell(decl.Type)
		b.Canonical = r.canonical(decl.Type.QualType)
		b.Decl = "typedef " + ctypes.Declare(b.Type, b.Name) + ";"
	}
	r.declared[b.Name] = true
}

// ownedBody renders `typedef struct { ... } name;` style declarations whose
// record has no tag of its own.
func (r *renderer) ownedBody(decl *ast.Node, b *Binding) (string, bool) {
	for _, item := range decl.Inner {
		if item.Kind != ast.ElaboratedType || item.OwnedTagDecl == nil || item.OwnedTagDecl.Name != "" {
			continue
		}
		if detail := r.scope.Unnamed(item.OwnedTagDecl.ID); detail != nil {
			return r.tagBody(detail, b), true
		}
	}
	return "", false
}

func (r *renderer) record(b *Binding, decl *ast.Node) {
	if !decl.CompleteDefinition {
		b.Opaque = true
		b.Decl = decl.TagUsed + " " + decl.Name + ";"
		return
	}
	b.Decl = r.tagBody(decl, b) + ";"
}

func (r *renderer) enum(b *Binding, sym *Symbol) {
	decl := sym.Node
	if !isComplete(decl) {
		b.Opaque = true
		b.Decl = "enum " + decl.Name + ";"
		return
	}
	b.Decl = r.tagBody(decl, b) + ";"
}

// tagBody renders the definition of a struct, union or enum, nested
// anonymous records inline. Fields or enumerators are recorded in b when
// it is not nil.
func (r *renderer) tagBody(decl *ast.Node, b *Binding) string {
	var sb strings.Builder
	if decl.Kind == ast.EnumDecl {
		sb.WriteString("enum ")
	} else {
		sb.WriteString(decl.TagUsed)
		sb.WriteByte(' ')
	}
	if decl.Name != "" {
		sb.WriteString(decl.Name)
		sb.WriteByte(' ')
	}
	sb.WriteByte('{')
	if decl.Kind == ast.EnumDecl {
		r.enumerators(&sb, decl, b)
	} else {
		r.fields(&sb, decl, b)
	}
	sb.WriteString(" }")
	return sb.String()
}

func (r *renderer) fields(sb *strings.Builder, decl *ast.Node, b *Binding) {
	var pending *ast.Node // anonymous record declared just before its field
	for _, item := range decl.Inner {
		switch item.Kind {
		case ast.RecordDecl, ast.EnumDecl:
			if item.Name == "" {
				pending = item
			}
			continue
		case ast.FieldDecl:
		default:
			continue
		}
		typ := r.spell(item.Type)
		field := ctypes.Declare(typ, item.Name)
		if pending != nil && isUnnamedSpelling(item.Type.QualType) {
			typ = r.tagBody(pending, nil)
			field = declareUnnamed(typ, item.Type.QualType, item.Name)
			pending = nil
		}
		sb.WriteByte(' ')
		sb.WriteString(field)
		bits := 0
		if item.IsBitfield {
			if v, ok := constValue(item); ok {
				bits = int(v.Int64())
				sb.WriteString(" : " + strconv.Itoa(bits))
			}
		}
		sb.WriteByte(';')
		if b != nil {
			b.Fields = append(b.Fields, Field{Name: item.Name, Type: typ, Bits: bits})
		}
	}
}

func (r *renderer) enumerators(sb *strings.Builder, decl *ast.Node, b *Binding) {
	n := 0
	for _, item := range decl.Inner {
		if item.Kind != ast.EnumConstantDecl {
			continue
		}
		sym := r.scope.Lookup(item.Name)
		if sym == nil || sym.Node != item {
			continue
		}
		if n > 0 {
			sb.WriteByte(',')
		}
		n++
		val := sym.Value.String()
		sb.WriteString(" " + item.Name + " = " + val)
		if b != nil {
			b.Enumerators = append(b.Enumerators, Enumerator{Name: item.Name, Value: val})
		}
	}
}

func isUnnamedSpelling(qualType string) bool {
	return strings.Contains(qualType, "(unnamed") || strings.Contains(qualType, "(anonymous")
}

// declareUnnamed declares name with an anonymous record, which clang
// spells as e.g. "struct (unnamed struct at stdlib.h:59:9) *".
func declareUnnamed(body, qualType, name string) string {
	suffix := ""
	if j := strings.IndexByte(qualType, ')'); j >= 0 {
		suffix = qualType[j+1:]
	}
	return body + strings.TrimPrefix(ctypes.Declare("T"+suffix, name), "T")
}

// -----------------------------------------------------------------------------

func (r *renderer) variable(b *Binding, decl *ast.Node) {
	b.Type = r.spell(decl.Type)
	b.Canonical = r.canonical(decl.Type.QualType)
	b.Decl = "extern " + ctypes.Declare(b.Type, b.Name) + asmLabel(b.Symbol) + ";"
}

func (r *renderer) function(b *Binding, decl *ast.Node) {
	fnType := r.spell(decl.Type)
	b.Variadic = strings.HasSuffix(decl.Type.QualType, "...)")
	for _, item := range decl.Inner {
		if item.Kind == ast.ParmVarDecl {
			b.Params = append(b.Params, Param{Name: item.Name, Type: r.spell(item.Type)})
		}
	}
	result, ok := resultOf(fnType)
	if !ok {
		// returns a pointer to function: `void (*signal(int, void (*)(int)))(int)`
		b.Result = fnType
		b.Decl = ctypes.Declare(fnType, b.Name) + asmLabel(b.Symbol) + ";"
		return
	}
	if !r.keeps(result) {
		result = r.desugar(result)
	}
	b.Result = result
	params := make([]string, 0, len(b.Params)+1)
	for _, p := range b.Params {
		params = append(params, p.Type)
	}
	if b.Variadic {
		params = append(params, "...")
	} else if len(params) == 0 && strings.HasSuffix(fnType, "(void)") {
		params = append(params, "void")
	}
	b.Decl = ctypes.Declare(result, b.Name) + "(" + strings.Join(params, ", ") + ")" + asmLabel(b.Symbol) + ";"
}

// resultOf splits the result type off a function spelling such as
// "char *(char *)". It fails when the result itself has parentheses.
func resultOf(fnType string) (string, bool) {
	if !strings.HasSuffix(fnType, ")") {
		return "", false
	}
	depth := 0
	for i := len(fnType) - 1; i >= 0; i-- {
		switch fnType[i] {
		case ')':
			depth++
		case '(':
			if depth--; depth == 0 {
				result := strings.TrimRight(fnType[:i], " ")
				if strings.ContainsAny(result, "()") || result == "" {
					return "", false
				}
				return result, true
			}
		}
	}
	return "", false
}

func asmLabel(symbol string) string {
	if symbol == "" {
		return ""
	}
	return ` asm("` + symbol + `")`
}

// -----------------------------------------------------------------------------

func (r *renderer) constant(b *Binding, typ *ast.Type, value string) {
	b.Type = "int"
	if typ != nil {
		b.Type = typ.Spelling(true)
	}
	b.Canonical = r.canonical(b.Type)
	b.Value = value
	b.Decl = "static const " + b.Type + " " + b.Name + " = " + value + intSuffix(b.Canonical, value) + ";"
}

// intSuffix keeps literals of wide or unsigned constants from being read
// back as int.
func intSuffix(ctype, value string) string {
	unsigned := strings.HasPrefix(ctype, "unsigned") || strings.Contains(ctype, " unsigned ")
	if neg := strings.HasPrefix(value, "-"); unsigned && !neg {
		if v, err := strconv.ParseUint(value, 10, 64); err == nil && v > 0xffffffff {
			return "ULL"
		}
		return "U"
	}
	if v, err := strconv.ParseInt(value, 10, 64); err == nil && (v > 0x7fffffff || v < -0x80000000) {
		return "LL"
	}
	return ""
}

// -----------------------------------------------------------------------------
