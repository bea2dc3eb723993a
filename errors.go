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
	"strings"

	"github.com/goplus/ffi-cdecl/clang/parser"
	"github.com/goplus/ffi-cdecl/manifest"
)

// -----------------------------------------------------------------------------

// UnresolvedError reports a manifest entry naming a symbol the headers
// do not declare.
type UnresolvedError struct {
	Entry  manifest.Entry
	Reason string
}

func (p *UnresolvedError) Error() string {
	if p.Reason != "" {
		return fmt.Sprintf("%v: unresolved symbol: %s", p.Entry, p.Reason)
	}
	return fmt.Sprintf("%v: unresolved symbol", p.Entry)
}

// KindMismatchError reports a symbol that exists with another category
// than the manifest declares, e.g. `timespec` requested as a type while
// the headers only have `struct timespec`.
type KindMismatchError struct {
	Entry  manifest.Entry
	Actual Category
	Symbol string // name the lookup ended at, after macro aliases
}

func (p *KindMismatchError) Error() string {
	if p.Symbol != "" && p.Symbol != p.Entry.Name {
		return fmt.Sprintf("%v: kind mismatch: %s (via %s) is %s", p.Entry, p.Entry.Name, p.Symbol, article(p.Actual))
	}
	return fmt.Sprintf("%v: kind mismatch: %s is %s", p.Entry, p.Entry.Name, article(p.Actual))
}

func article(c Category) string {
	s := c.String()
	if strings.IndexByte("aeiou", s[0]) >= 0 {
		return "an " + s
	}
	return "a " + s
}

// ConstantError reports a constant whose value could not be evaluated.
type ConstantError struct {
	Entry manifest.Entry
	Diag  *parser.Diagnostic
}

func (p *ConstantError) Error() string {
	return fmt.Sprintf("%v: cannot evaluate constant: %s", p.Entry, p.Diag.Msg)
}

// -----------------------------------------------------------------------------
