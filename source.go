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
	"bytes"
	"fmt"
	"strings"

	"github.com/goplus/ffi-cdecl/manifest"
)

const (
	envFile   = "cdecl_env.c"
	probeFile = "cdecl_probe.c"

	constValuePrefix = "__cdecl_const_value_"
	constTypePrefix  = "__cdecl_const_type_"
)

// Source is a C translation unit handed to a Frontend.
type Source struct {
	Name string
	Code []byte
}

// EnvSource returns the translation unit that makes every symbol of m
// visible: its defines followed by its headers.
func EnvSource(m *manifest.Manifest) *Source {
	var b bytes.Buffer
	writeEnv(&b, m)
	return &Source{Name: envFile, Code: b.Bytes()}
}

func writeEnv(b *bytes.Buffer, m *manifest.Manifest) {
	for _, def := range m.Define {
		name, val, _ := strings.Cut(def, "=")
		if val == "" {
			fmt.Fprintf(b, "#define %s\n", name)
		} else {
			fmt.Fprintf(b, "#define %s %s\n", name, val)
		}
	}
	for _, hdr := range m.Include {
		fmt.Fprintf(b, "#include %s\n", manifest.IncludeSpelling(hdr))
	}
}

// -----------------------------------------------------------------------------

// probe evaluates constants whose value the headers only give as a macro
// or expression. Each constant takes one line so a diagnostic can be
// traced back to its entry.
type probe struct {
	src   *Source
	lines map[int]int // source line => index of the constant in names
	names []string
}

// ProbeSource returns the probe translation unit for the named constants.
func ProbeSource(m *manifest.Manifest, names []string) *Source {
	return newProbe(m, names).src
}

func newProbe(m *manifest.Manifest, names []string) *probe {
	var b bytes.Buffer
	writeEnv(&b, m)
	line := bytes.Count(b.Bytes(), []byte{'\n'})
	p := &probe{lines: make(map[int]int, len(names)), names: names}
	for i, name := range names {
		line++
		fmt.Fprintf(&b, "enum { %s%d = (%s) }; static __typeof__((%s)) %s%d;\n",
			constValuePrefix, i, name, name, constTypePrefix, i)
		p.lines[line] = i
	}
	p.src = &Source{Name: probeFile, Code: b.Bytes()}
	return p
}

// probeIndex returns which constant a probe identifier belongs to.
func probeIndex(name, prefix string) (int, bool) {
	rest, ok := strings.CutPrefix(name, prefix)
	if !ok {
		return 0, false
	}
	n := 0
	for _, c := range []byte(rest) {
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + int(c-'0')
	}
	return n, rest != ""
}

// -----------------------------------------------------------------------------
