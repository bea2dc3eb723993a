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

package manifest

import (
	"fmt"

	"go.uber.org/multierr"
)

// -----------------------------------------------------------------------------

// Entry is one declaration request: a symbol and the kind it is expected
// to have in the system headers.
type Entry struct {
	Kind Kind   `json:"kind" yaml:"kind"`
	Name string `json:"name" yaml:"name"`
}

func (e Entry) String() string {
	return e.Kind.String() + " " + e.Name
}

// Manifest is an ordered list of declaration requests together with the
// compilation environment the symbols are resolved in.
type Manifest struct {
	Name        string   `json:"name,omitempty" yaml:"name,omitempty"`
	Include     []string `json:"include,omitempty" yaml:"include,omitempty"`         // headers, e.g. "time.h"
	IncludeDirs []string `json:"includeDirs,omitempty" yaml:"includeDirs,omitempty"` // -I
	Define      []string `json:"define,omitempty" yaml:"define,omitempty"`           // -D, e.g. "_XOPEN_SOURCE=700"
	Flags       []string `json:"flags,omitempty" yaml:"flags,omitempty"`
	Compiler    string   `json:"cc,omitempty" yaml:"cc,omitempty"` // default: clang
	Decls       []Entry  `json:"decls" yaml:"decls"`
}

// Add appends entries, keeping their order.
func (p *Manifest) Add(kind Kind, names ...string) *Manifest {
	for _, name := range names {
		p.Decls = append(p.Decls, Entry{Kind: kind, Name: name})
	}
	return p
}

// -----------------------------------------------------------------------------

type EntryError struct {
	Index int
	Entry Entry
	Msg   string
}

func (p *EntryError) Error() string {
	return fmt.Sprintf("decl #%d (%v): %s", p.Index, p.Entry, p.Msg)
}

// Validate checks what can be checked without the headers: identifiers are
// well formed, kinds are known and no (namespace, name) pair repeats.
// Whether a symbol really exists is left to the extractor.
func (p *Manifest) Validate() (err error) {
	type key struct {
		tag  bool
		name string
	}
	seen := make(map[key]int, len(p.Decls))
	for i, e := range p.Decls {
		switch {
		case e.Kind <= Invalid || e.Kind > Constant:
			err = multierr.Append(err, &EntryError{i, e, "unknown kind"})
		case !IsIdent(e.Name):
			err = multierr.Append(err, &EntryError{i, e, "not a C identifier"})
		default:
			k := key{e.Kind.IsTag(), e.Name}
			if j, ok := seen[k]; ok {
				err = multierr.Append(err, &EntryError{i, e, fmt.Sprintf("already declared by decl #%d", j)})
				continue
			}
			seen[k] = i
		}
	}
	return
}

// IsIdent reports whether s is a valid C identifier.
func IsIdent(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '_', 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z':
		case '0' <= c && c <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// -----------------------------------------------------------------------------
