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
	"github.com/goplus/ffi-cdecl/manifest"
)

// -----------------------------------------------------------------------------

// Binding is the backend-neutral descriptor of one resolved manifest entry.
type Binding struct {
	Kind   manifest.Kind `json:"kind" yaml:"kind"`
	Name   string        `json:"name" yaml:"name"`
	Symbol string        `json:"symbol,omitempty" yaml:"symbol,omitempty"` // link name when it differs from Name
	Decl   string        `json:"decl" yaml:"decl"`                         // C declaration for the FFI

	// Type is the spelling of a typedef target, variable or constant type.
	// Canonical is the same type with every typedef expanded.
	Type      string `json:"type,omitempty" yaml:"type,omitempty"`
	Canonical string `json:"canonical,omitempty" yaml:"canonical,omitempty"`

	Result   string  `json:"result,omitempty" yaml:"result,omitempty"`
	Params   []Param `json:"params,omitempty" yaml:"params,omitempty"`
	Variadic bool    `json:"variadic,omitempty" yaml:"variadic,omitempty"`

	Fields      []Field      `json:"fields,omitempty" yaml:"fields,omitempty"`
	Enumerators []Enumerator `json:"enumerators,omitempty" yaml:"enumerators,omitempty"`
	Opaque      bool         `json:"opaque,omitempty" yaml:"opaque,omitempty"` // declared but not defined

	Value string `json:"value,omitempty" yaml:"value,omitempty"` // decimal

	File string `json:"file,omitempty" yaml:"file,omitempty"`
	Line int    `json:"line,omitempty" yaml:"line,omitempty"`
}

type Param struct {
	Name string `json:"name,omitempty" yaml:"name,omitempty"`
	Type string `json:"type" yaml:"type"`
}

type Field struct {
	Name string `json:"name,omitempty" yaml:"name,omitempty"`
	Type string `json:"type" yaml:"type"`
	Bits int    `json:"bits,omitempty" yaml:"bits,omitempty"` // bit field width
}

type Enumerator struct {
	Name  string `json:"name" yaml:"name"`
	Value string `json:"value" yaml:"value"`
}

// Result holds the bindings of a manifest in manifest order.
type Result struct {
	Name     string     `json:"name,omitempty" yaml:"name,omitempty"`
	Bindings []*Binding `json:"bindings" yaml:"bindings"`
}

// Lookup returns the binding of the named entry.
func (p *Result) Lookup(kind manifest.Kind, name string) *Binding {
	for _, b := range p.Bindings {
		if b.Kind == kind && b.Name == name {
			return b
		}
	}
	return nil
}

// -----------------------------------------------------------------------------
