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
	"fmt"
	"math/big"

	"github.com/goplus/ffi-cdecl/clang/ast"
	"github.com/goplus/ffi-cdecl/manifest"
)

// -----------------------------------------------------------------------------

// Category is what a name actually denotes in the headers.
type Category int

const (
	CatNone Category = iota
	CatTypedef
	CatStruct
	CatUnion
	CatEnum
	CatVar
	CatFunc
	CatEnumConst
	CatMacro
	CatObjectMacro
)

var catNames = [...]string{
	CatNone:        "none",
	CatTypedef:     "type",
	CatStruct:      "struct",
	CatUnion:       "union",
	CatEnum:        "enum",
	CatVar:         "variable",
	CatFunc:        "function",
	CatEnumConst:   "constant",
	CatMacro:       "function-like macro",
	CatObjectMacro: "object-like macro",
}

func (c Category) String() string {
	if c >= 0 && int(c) < len(catNames) {
		return catNames[c]
	}
	return fmt.Sprintf("Category(%d)", int(c))
}

// Matches reports whether an entry of kind k may bind a symbol of
// category c.
func (c Category) Matches(k manifest.Kind) bool {
	switch k {
	case manifest.Type:
		return c == CatTypedef
	case manifest.Struct:
		return c == CatStruct
	case manifest.Union:
		return c == CatUnion
	case manifest.Enum:
		return c == CatEnum
	case manifest.Variable:
		return c == CatVar
	case manifest.Function:
		return c == CatFunc
	case manifest.Constant:
		return c == CatEnumConst
	}
	return false
}

// -----------------------------------------------------------------------------

type Symbol struct {
	Cat   Category
	Node  *ast.Node
	Enum  *ast.Node // enclosing EnumDecl of an enum constant
	Value *big.Int  // value of an enum constant
	File  string
	Line  int
}

// Scope indexes the file scope declarations of a translation unit. C keeps
// tags (struct/union/enum) apart from ordinary identifiers.
type Scope struct {
	idents   map[string]*Symbol
	tags     map[string]*Symbol
	unnameds map[ast.ID]*ast.Node // anonymous records and enums, by id
	pos      posTracker
}

func NewScope(doc *ast.Node) *Scope {
	s := &Scope{
		idents:   make(map[string]*Symbol),
		tags:     make(map[string]*Symbol),
		unnameds: make(map[ast.ID]*ast.Node),
	}
	for _, decl := range doc.Inner {
		s.declare(decl)
	}
	return s
}

func (s *Scope) Lookup(name string) *Symbol {
	return s.idents[name]
}

func (s *Scope) LookupTag(name string) *Symbol {
	return s.tags[name]
}

// Unnamed returns the anonymous record or enum with the given id.
func (s *Scope) Unnamed(id ast.ID) *ast.Node {
	return s.unnameds[id]
}

// Expand returns the type a typedef stands for.
func (s *Scope) Expand(typedef string) (string, bool) {
	if sym := s.idents[typedef]; sym != nil && sym.Cat == CatTypedef && sym.Node.Type != nil {
		return sym.Node.Type.QualType, true
	}
	return "", false
}

func (s *Scope) declare(decl *ast.Node) {
	file, line := s.pos.visit(decl)
	switch decl.Kind {
	case ast.TypedefDecl:
		s.addIdent(decl.Name, &Symbol{Cat: CatTypedef, Node: decl, File: file, Line: line})
	case ast.VarDecl:
		s.addIdent(decl.Name, &Symbol{Cat: CatVar, Node: decl, File: file, Line: line})
	case ast.FunctionDecl:
		s.addIdent(decl.Name, &Symbol{Cat: CatFunc, Node: decl, File: file, Line: line})
	case ast.RecordDecl:
		cat := CatStruct
		if decl.TagUsed == "union" {
			cat = CatUnion
		}
		s.addTag(decl, cat, file, line)
		for _, item := range decl.Inner {
			if item.Kind == ast.RecordDecl || item.Kind == ast.EnumDecl {
				s.declare(item)
				continue
			}
			s.pos.visit(item)
			s.pos.visitInner(item)
		}
		return
	case ast.EnumDecl:
		s.addTag(decl, CatEnum, file, line)
		s.declareEnumerators(decl)
		return
	}
	s.pos.visitInner(decl)
}

func (s *Scope) addIdent(name string, sym *Symbol) {
	if name == "" {
		return
	}
	if _, ok := s.idents[name]; !ok {
		s.idents[name] = sym
	}
}

func (s *Scope) addTag(decl *ast.Node, cat Category, file string, line int) {
	if decl.Name == "" {
		s.unnameds[decl.ID] = decl
		return
	}
	if old, ok := s.tags[decl.Name]; ok && isComplete(old.Node) {
		return
	}
	s.tags[decl.Name] = &Symbol{Cat: cat, Node: decl, File: file, Line: line}
}

func isComplete(decl *ast.Node) bool {
	if decl.Kind == ast.EnumDecl {
		return len(decl.Inner) > 0
	}
	return decl.CompleteDefinition
}

func (s *Scope) declareEnumerators(decl *ast.Node) {
	next := big.NewInt(0)
	for _, item := range decl.Inner {
		file, line := s.pos.visit(item)
		s.pos.visitInner(item)
		if item.Kind != ast.EnumConstantDecl {
			continue
		}
		val := next
		if v, ok := constValue(item); ok {
			val = v
		}
		s.addIdent(item.Name, &Symbol{
			Cat: CatEnumConst, Node: item, Enum: decl, Value: val, File: file, Line: line,
		})
		next = new(big.Int).Add(val, big.NewInt(1))
	}
}

// constValue returns the value clang computed for an integer constant
// expression below n.
func constValue(n *ast.Node) (*big.Int, bool) {
	for _, item := range n.Inner {
		if item.Kind == ast.ConstantExpr && item.Value != nil {
			if v, ok := new(big.Int).SetString(fmt.Sprint(item.Value), 10); ok {
				return v, true
			}
		}
		if v, ok := constValue(item); ok {
			return v, true
		}
	}
	return nil, false
}

// -----------------------------------------------------------------------------

// posTracker follows clang's incremental locations: a file or line is only
// written when it differs from the previous location in dump order.
type posTracker struct {
	file string
	line int
}

func (p *posTracker) loc(loc *ast.Loc) {
	if loc == nil {
		return
	}
	if loc.SpellingLoc != nil || loc.ExpansionLoc != nil {
		p.loc(loc.SpellingLoc)
		p.loc(loc.ExpansionLoc)
		return
	}
	if loc.File != "" {
		p.file = loc.File
	}
	if loc.Line != 0 {
		p.line = loc.Line
	}
}

// visit consumes the locations of n itself and returns the position n
// is declared at.
func (p *posTracker) visit(n *ast.Node) (file string, line int) {
	p.loc(n.Loc)
	file, line = p.file, p.line
	if n.Range != nil {
		p.loc(&n.Range.Begin)
		p.loc(&n.Range.End)
	}
	return
}

func (p *posTracker) visitInner(n *ast.Node) {
	for _, item := range n.Inner {
		p.visit(item)
		p.visitInner(item)
	}
}

// -----------------------------------------------------------------------------
