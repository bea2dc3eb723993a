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
	"errors"
	"path/filepath"

	"github.com/goplus/ffi-cdecl/clang/ast"
	"github.com/goplus/ffi-cdecl/clang/parser"
	"github.com/goplus/ffi-cdecl/clang/preprocessor"
	"github.com/goplus/ffi-cdecl/manifest"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

type Config struct {
	Frontend Frontend    // default: NewClang(m, BaseDir)
	Logger   *zap.Logger // default: zap.NewNop()
	BaseDir  string
}

type extractor struct {
	m      *manifest.Manifest
	fe     Frontend
	log    *zap.Logger
	macros preprocessor.Table
	scope  *Scope
	r      *renderer

	bindings []*Binding
	errs     []error
	consts   []int // entries waiting for the probe
}

// Extract resolves every entry of m against its headers and returns the
// bindings in manifest order. All entries are resolved before returning;
// the error then combines every failure, again in manifest order.
func Extract(m *manifest.Manifest, conf *Config) (ret *Result, err error) {
	if err = m.Validate(); err != nil {
		return
	}
	if conf == nil {
		conf = new(Config)
	}
	p := &extractor{m: m, fe: conf.Frontend, log: conf.Logger}
	if p.fe == nil {
		p.fe = NewClang(m, conf.BaseDir)
	}
	if p.log == nil {
		p.log = zap.NewNop()
	}

	env := EnvSource(m)
	if p.macros, err = p.fe.Macros(env); err != nil {
		return
	}
	doc, err := p.fe.Parse(env)
	if err != nil {
		return
	}
	p.scope = NewScope(doc)
	p.r = newRenderer(p.scope)
	p.log.Debug("environment parsed", zap.String("manifest", m.Name), zap.Int("macros", len(p.macros)))

	n := len(m.Decls)
	p.bindings, p.errs = make([]*Binding, n), make([]error, n)
	for i, e := range m.Decls {
		p.resolve(i, e)
	}
	if err = p.probe(); err != nil {
		return
	}
	if err = multierr.Combine(p.errs...); err != nil {
		return
	}
	return &Result{Name: m.Name, Bindings: p.bindings}, nil
}

// -----------------------------------------------------------------------------

func (p *extractor) fail(i int, err error) {
	p.log.Debug("unresolved", zap.Int("decl", i), zap.Error(err))
	p.errs[i] = err
}

func (p *extractor) resolve(i int, e manifest.Entry) {
	if e.Kind.IsTag() {
		p.resolveTag(i, e)
		return
	}
	target := p.macros.Resolve(e.Name)
	sym := p.scope.Lookup(target)
	if sym == nil {
		if mac, ok := p.macros[e.Name]; ok && !mac.FuncLike && e.Kind == manifest.Constant {
			p.consts = append(p.consts, i)
			return
		}
		p.fail(i, p.missing(e, target))
		return
	}
	if !sym.Cat.Matches(e.Kind) {
		p.fail(i, &KindMismatchError{Entry: e, Actual: sym.Cat, Symbol: target})
		return
	}
	b := &Binding{Kind: e.Kind, Name: e.Name, File: sym.File, Line: sym.Line}
	if target != e.Name {
		b.Symbol = target
	}
	switch e.Kind {
	case manifest.Type:
		p.r.typedef(b, sym.Node)
	case manifest.Variable:
		p.r.variable(b, sym.Node)
	case manifest.Function:
		p.r.function(b, sym.Node)
	case manifest.Constant:
		p.bindings[i] = b
		p.consts = append(p.consts, i)
		return
	}
	p.bindings[i] = b
	p.log.Debug("resolved", zap.Stringer("decl", e), zap.String("c", b.Decl))
}

// missing explains why no ordinary identifier named target exists.
func (p *extractor) missing(e manifest.Entry, target string) error {
	if tag := p.scope.LookupTag(target); tag != nil {
		return &KindMismatchError{Entry: e, Actual: tag.Cat, Symbol: target}
	}
	if mac, ok := p.macros[target]; ok {
		cat := CatObjectMacro
		if mac.FuncLike {
			cat = CatMacro
		}
		return &KindMismatchError{Entry: e, Actual: cat, Symbol: target}
	}
	return &UnresolvedError{Entry: e}
}

func (p *extractor) resolveTag(i int, e manifest.Entry) {
	sym := p.scope.LookupTag(e.Name)
	if sym == nil {
		if o := p.scope.Lookup(e.Name); o != nil {
			p.fail(i, &KindMismatchError{Entry: e, Actual: o.Cat})
		} else {
			p.fail(i, &UnresolvedError{Entry: e})
		}
		return
	}
	if !sym.Cat.Matches(e.Kind) {
		p.fail(i, &KindMismatchError{Entry: e, Actual: sym.Cat})
		return
	}
	b := &Binding{Kind: e.Kind, Name: e.Name, File: sym.File, Line: sym.Line}
	if e.Kind == manifest.Enum {
		p.r.enum(b, sym)
	} else {
		p.r.record(b, sym.Node)
	}
	p.bindings[i] = b
	p.log.Debug("resolved", zap.Stringer("decl", e), zap.String("c", b.Decl))
}

// -----------------------------------------------------------------------------

func (p *extractor) probe() error {
	if len(p.consts) == 0 {
		return nil
	}
	names := make([]string, len(p.consts))
	for k, i := range p.consts {
		names[k] = p.m.Decls[i].Name
	}
	pr := newProbe(p.m, names)
	doc, err := p.fe.Parse(pr.src)
	if err != nil {
		var perr *parser.ParseError
		if !errors.As(err, &perr) || !p.probeFailed(pr, perr.Diagnostics()) {
			return err
		}
		return nil
	}

	values := make(map[int]string, len(names))
	typs := make(map[int]*ast.Type, len(names))
	for _, decl := range doc.Inner {
		switch decl.Kind {
		case ast.EnumDecl:
			for _, item := range decl.Inner {
				if k, ok := probeIndex(item.Name, constValuePrefix); ok {
					if v, ok := constValue(item); ok {
						values[k] = v.String()
					}
				}
			}
		case ast.VarDecl:
			if k, ok := probeIndex(decl.Name, constTypePrefix); ok {
				typs[k] = decl.Type
			}
		}
	}
	for k, i := range p.consts {
		e := p.m.Decls[i]
		val, ok := values[k]
		if !ok {
			p.fail(i, &UnresolvedError{Entry: e, Reason: "no value in probe"})
			continue
		}
		b := p.bindings[i]
		if b == nil {
			b = &Binding{Kind: e.Kind, Name: e.Name}
			p.bindings[i] = b
		}
		p.r.constant(b, typs[k], val)
		p.log.Debug("resolved", zap.Stringer("decl", e), zap.String("c", b.Decl))
	}
	return nil
}

// probeFailed maps the errors of a failed probe back to their constants.
// It reports false when no error belongs to a probe line, i.e. the
// headers themselves did not compile.
func (p *extractor) probeFailed(pr *probe, diags []*parser.Diagnostic) bool {
	mapped := false
	for _, d := range diags {
		if !d.IsError() || filepath.Base(d.File) != probeFile {
			continue
		}
		k, ok := pr.lines[d.Line]
		if !ok {
			continue
		}
		if i := p.consts[k]; p.errs[i] == nil {
			p.fail(i, &ConstantError{Entry: p.m.Decls[i], Diag: d})
		}
		mapped = true
	}
	return mapped
}

// -----------------------------------------------------------------------------
