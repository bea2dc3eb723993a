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
	"strings"
)

// -----------------------------------------------------------------------------

// Kind is the declaration category requested for a symbol.
type Kind int

const (
	Invalid Kind = iota
	Type
	Struct
	Union
	Enum
	Variable
	Function
	Constant
)

var kindNames = [...]string{
	Invalid:  "invalid",
	Type:     "type",
	Struct:   "struct",
	Union:    "union",
	Enum:     "enum",
	Variable: "var",
	Function: "func",
	Constant: "const",
}

var kindAliases = map[string]Kind{
	"variable": Variable,
	"function": Function,
	"constant": Constant,
	"typedef":  Type,
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// IsTag reports whether names of this kind live in the C tag namespace.
func (k Kind) IsTag() bool {
	return k == Struct || k == Union || k == Enum
}

// ParseKind accepts both the short form used by the cdecl_* macros
// (type, struct, var, func, const, ...) and the long spelling.
func ParseKind(s string) (Kind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for k, name := range kindNames {
		if k != int(Invalid) && name == s {
			return Kind(k), nil
		}
	}
	if k, ok := kindAliases[s]; ok {
		return k, nil
	}
	return Invalid, fmt.Errorf("unknown declaration kind %q", s)
}

func (k Kind) MarshalText() ([]byte, error) {
	if k == Invalid || int(k) >= len(kindNames) {
		return nil, fmt.Errorf("cannot marshal %v", k)
	}
	return []byte(kindNames[k]), nil
}

func (k *Kind) UnmarshalText(text []byte) (err error) {
	*k, err = ParseKind(string(text))
	return
}

// -----------------------------------------------------------------------------
