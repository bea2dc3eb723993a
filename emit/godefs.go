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

package emit

import (
	goast "go/ast"
	"go/token"
	"go/types"
	"io"
	"math/big"
	"runtime"
	"strconv"
	"strings"
	"unicode"

	"github.com/goplus/ffi-cdecl"
	"github.com/goplus/ffi-cdecl/clang/types/parser"
	"github.com/goplus/ffi-cdecl/manifest"
	"github.com/goplus/gox"
	"github.com/qiniu/x/errors"
	"go.uber.org/zap"

	ctypes "github.com/goplus/ffi-cdecl/clang/types"
)

// godefs writes Go definitions of the types and constants, in the spirit
// of `cgo -godefs`. Variables and functions have no Go counterpart.
type godefs struct {
	pkgName string
	log     *zap.Logger
}

func newGodefs(opts *Options) Emitter {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &godefs{pkgName: opts.Package, log: log}
}

var (
	errBitField = errors.New("bit fields have no Go layout")
	errNameUsed = errors.New("name already declared in Go")
)

type goCtx struct {
	pkg   *gox.Package
	cb    *gox.CodeBuilder
	sizes types.Sizes
	types map[string]types.Type // C spelling => Go type
	names map[string]bool
}

func (p *goCtx) LookupType(name string) (types.Type, error) {
	if t, ok := p.types[name]; ok {
		return t, nil
	}
	return nil, ctypes.ErrTypeNotFound
}

func (p *godefs) Emit(w io.Writer, r *cdecl.Result) error {
	name := p.pkgName
	if name == "" {
		name = goPkgName(r.Name)
	}
	pkg := gox.NewPackage("", name, nil)
	ctx := &goCtx{
		pkg:   pkg,
		cb:    pkg.CB(),
		sizes: types.SizesFor("gc", runtime.GOARCH),
		types: make(map[string]types.Type),
		names: make(map[string]bool),
	}
	for _, b := range r.Bindings {
		var err error
		switch b.Kind {
		case manifest.Type:
			err = ctx.typedef(b)
		case manifest.Struct, manifest.Union:
			err = ctx.record(b.Kind.String()+" "+b.Name, b, b.Kind == manifest.Union)
		case manifest.Enum:
			_, err = ctx.enum("enum "+b.Name, b)
		case manifest.Constant:
			err = ctx.constant(b)
		default:
			p.log.Debug("godefs: no Go definition", zap.Stringer("kind", b.Kind), zap.String("name", b.Name))
			continue
		}
		if err != nil {
			p.log.Debug("godefs: skipped", zap.Stringer("kind", b.Kind), zap.String("name", b.Name), zap.Error(err))
		}
	}
	return gox.WriteTo(w, pkg)
}

// -----------------------------------------------------------------------------

func (p *goCtx) declare(cname string) (string, error) {
	name := goName(cname)
	if p.names[name] {
		return "", errNameUsed
	}
	p.names[name] = true
	return name, nil
}

func (p *goCtx) typedef(b *cdecl.Binding) error {
	switch {
	case len(b.Enumerators) > 0:
		_, err := p.enum(b.Name, b)
		return err
	case len(b.Fields) > 0:
		return p.record(b.Name, b, strings.HasPrefix(b.Type, "union"))
	}
	typ, err := parser.ParseType(p, b.Type, false)
	if err != nil {
		return err
	}
	if typ == ctypes.Void {
		return ctypes.ErrVoidValue
	}
	name, err := p.declare(b.Name)
	if err != nil {
		return err
	}
	p.cb.AliasType(name, typ)
	p.types[b.Name] = typ
	return nil
}

// record declares a struct, or a union as a byte array of the size of its
// largest member.
func (p *goCtx) record(cname string, b *cdecl.Binding, union bool) error {
	flds := make([]*types.Var, 0, len(b.Fields))
	var size, align int64 = 0, 1
	for i, f := range b.Fields {
		if f.Bits != 0 {
			return errBitField
		}
		typ, err := parser.ParseType(p, f.Type, false)
		if err != nil {
			return err
		}
		name := goName(f.Name)
		if f.Name == "" {
			name = "Anon" + strconv.Itoa(i)
		}
		flds = append(flds, types.NewField(token.NoPos, p.pkg.Types, name, typ, false))
		if n := p.sizes.Sizeof(typ); n > size {
			size = n
		}
		if a := p.sizes.Alignof(typ); a > align {
			align = a
		}
	}
	name, err := p.declare(b.Name)
	if err != nil {
		return err
	}
	var inner types.Type
	switch {
	case b.Opaque:
		inner = types.NewStruct(nil, nil)
	case union:
		size = (size + align - 1) / align * align
		inner = types.NewArray(types.Universe.Lookup("byte").Type(), size)
	default:
		inner = types.NewStruct(flds, nil)
	}
	p.types[cname] = p.cb.NewType(name).InitType(p.pkg, inner)
	return nil
}

func (p *goCtx) enum(cname string, b *cdecl.Binding) (types.Type, error) {
	name, err := p.declare(b.Name)
	if err != nil {
		return nil, err
	}
	typ := p.cb.NewType(name).InitType(p.pkg, ctypes.Enum)
	p.types[cname] = typ
	for _, e := range b.Enumerators {
		if err := p.newConst(typ, e.Name, e.Value); err != nil {
			return nil, err
		}
	}
	return typ, nil
}

func (p *goCtx) constant(b *cdecl.Binding) error {
	spelling := b.Canonical
	if spelling == "" {
		spelling = b.Type
	}
	typ, err := parser.ParseType(p, spelling, false)
	if err != nil {
		return err
	}
	return p.newConst(typ, b.Name, b.Value)
}

func (p *goCtx) newConst(typ types.Type, cname, value string) error {
	v, ok := new(big.Int).SetString(value, 10)
	if !ok {
		return errors.New("not an integer: " + value)
	}
	name, err := p.declare(cname)
	if err != nil {
		return err
	}
	cb := p.cb.NewConstStart(typ, name)
	cb.Val(&goast.BasicLit{Kind: token.INT, Value: new(big.Int).Abs(v).String()})
	if v.Sign() < 0 {
		cb.UnaryOp(token.SUB)
	}
	cb.EndInit(1)
	return nil
}

// -----------------------------------------------------------------------------

// goName exports a C name: "__rlimit_resource" => "Rlimit_resource".
func goName(cname string) string {
	s := strings.TrimLeft(cname, "_")
	if s == "" {
		return "X" + cname
	}
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

func goPkgName(name string) string {
	name = strings.Map(func(r rune) rune {
		if r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToLower(r)
		}
		return -1
	}, name)
	if name == "" || !unicode.IsLetter(rune(name[0])) {
		return "cdecl" + name
	}
	return name
}
