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
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/pelletier/go-toml"
	"github.com/qiniu/x/errors"
	"gopkg.in/yaml.v3"

	jsoniter "github.com/json-iterator/go"
)

// -----------------------------------------------------------------------------

type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
	FormatC    Format = "c" // cdecl_* macro form
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// FormatOf picks the manifest format from a file name.
func FormatOf(file string) (Format, error) {
	switch strings.ToLower(filepath.Ext(file)) {
	case ".json", ".cfg":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	case ".c", ".h":
		return FormatC, nil
	}
	return "", fmt.Errorf("%s: unsupported manifest format", file)
}

// Load reads and validates a manifest file.
func Load(file string) (m *Manifest, err error) {
	format, err := FormatOf(file)
	if err != nil {
		return
	}
	b, err := os.ReadFile(file)
	if err != nil {
		err = errors.NewWith(err, `os.ReadFile(file)`, -2, "os.ReadFile", file)
		return
	}
	if m, err = Parse(format, b); err != nil {
		return nil, fmt.Errorf("%s: %w", file, err)
	}
	if m.Name == "" {
		base := filepath.Base(file)
		m.Name = strings.TrimSuffix(base, filepath.Ext(base))
	}
	return
}

// Parse decodes and validates a manifest held in memory.
func Parse(format Format, data []byte) (m *Manifest, err error) {
	m = new(Manifest)
	switch format {
	case FormatJSON:
		err = json.Unmarshal(data, m)
	case FormatYAML:
		err = yaml.Unmarshal(data, m)
	case FormatTOML:
		err = unmarshalTOML(data, m)
	case FormatC:
		err = parseC(data, m)
	default:
		err = fmt.Errorf("unsupported manifest format %q", format)
	}
	if err != nil {
		return nil, err
	}
	if err = m.Validate(); err != nil {
		return nil, err
	}
	return
}

// Marshal encodes m in the given format.
func Marshal(format Format, m *Manifest) ([]byte, error) {
	switch format {
	case FormatJSON:
		return json.MarshalIndent(m, "", "  ")
	case FormatYAML:
		return yaml.Marshal(m)
	case FormatTOML:
		return marshalTOML(m)
	case FormatC:
		return marshalC(m), nil
	}
	return nil, fmt.Errorf("unsupported manifest format %q", format)
}

// -----------------------------------------------------------------------------

// go-toml v1 decodes into plain fields; kinds are converted afterwards.
type tomlEntry struct {
	Kind string `toml:"kind"`
	Name string `toml:"name"`
}

type tomlManifest struct {
	Name        string      `toml:"name,omitempty"`
	Include     []string    `toml:"include,omitempty"`
	IncludeDirs []string    `toml:"includeDirs,omitempty"`
	Define      []string    `toml:"define,omitempty"`
	Flags       []string    `toml:"flags,omitempty"`
	Compiler    string      `toml:"cc,omitempty"`
	Decls       []tomlEntry `toml:"decls"`
}

func unmarshalTOML(data []byte, m *Manifest) error {
	var raw tomlManifest
	if err := toml.Unmarshal(data, &raw); err != nil {
		return err
	}
	*m = Manifest{
		Name: raw.Name, Include: raw.Include, IncludeDirs: raw.IncludeDirs,
		Define: raw.Define, Flags: raw.Flags, Compiler: raw.Compiler,
	}
	for _, e := range raw.Decls {
		kind, err := ParseKind(e.Kind)
		if err != nil {
			return fmt.Errorf("decl %s: %w", e.Name, err)
		}
		m.Decls = append(m.Decls, Entry{Kind: kind, Name: e.Name})
	}
	return nil
}

func marshalTOML(m *Manifest) ([]byte, error) {
	raw := tomlManifest{
		Name: m.Name, Include: m.Include, IncludeDirs: m.IncludeDirs,
		Define: m.Define, Flags: m.Flags, Compiler: m.Compiler,
		Decls: make([]tomlEntry, len(m.Decls)),
	}
	for i, e := range m.Decls {
		raw.Decls[i] = tomlEntry{Kind: e.Kind.String(), Name: e.Name}
	}
	return toml.Marshal(raw)
}

// -----------------------------------------------------------------------------

var (
	blockCommentRe = regexp.MustCompile(`/\*[\s\S]*?\*/`)
	lineCommentRe  = regexp.MustCompile(`//[^\n]*`)
	defineRe       = regexp.MustCompile(`^#\s*define\s+(\w+)(?:\s+(.*))?$`)
	includeRe      = regexp.MustCompile(`^#\s*include\s*([<"][^>"]+[>"])`)
	cdeclRe        = regexp.MustCompile(`^cdecl_(\w+)\s*\(\s*(\w+)\s*\)\s*;?$`)
)

var macroKinds = map[string]Kind{
	"type":   Type,
	"struct": Struct,
	"union":  Union,
	"enum":   Enum,
	"var":    Variable,
	"func":   Function,
	"const":  Constant,
}

// parseC reads the macro manifest form:
//
//	#define _XOPEN_SOURCE 700
//	#include <time.h>
//	cdecl_type(clockid_t)
//	cdecl_func(clock_gettime)
//
// Includes of the ffi-cdecl helper headers themselves are dropped.
func parseC(data []byte, m *Manifest) error {
	data = blockCommentRe.ReplaceAllFunc(data, func(c []byte) []byte {
		return bytes.Repeat([]byte{'\n'}, bytes.Count(c, []byte{'\n'}))
	})
	data = lineCommentRe.ReplaceAll(data, nil)

	s := bufio.NewScanner(bytes.NewReader(data))
	for line := 1; s.Scan(); line++ {
		text := strings.TrimSpace(s.Text())
		if text == "" {
			continue
		}
		if r := defineRe.FindStringSubmatch(text); r != nil {
			def := r[1]
			if v := strings.TrimSpace(r[2]); v != "" {
				def += "=" + v
			}
			m.Define = append(m.Define, def)
		} else if r := includeRe.FindStringSubmatch(text); r != nil {
			hdr := r[1]
			name := hdr[1 : len(hdr)-1]
			if strings.HasPrefix(filepath.Base(name), "ffi-cdecl") {
				continue
			}
			if hdr[0] == '<' {
				hdr = name
			}
			m.Include = append(m.Include, hdr)
		} else if r := cdeclRe.FindStringSubmatch(text); r != nil {
			kind, ok := macroKinds[r[1]]
			if !ok {
				return fmt.Errorf("line %d: unknown macro cdecl_%s", line, r[1])
			}
			m.Decls = append(m.Decls, Entry{Kind: kind, Name: r[2]})
		} else {
			return fmt.Errorf("line %d: unexpected %q", line, text)
		}
	}
	return s.Err()
}

func marshalC(m *Manifest) []byte {
	var b bytes.Buffer
	for _, def := range m.Define {
		name, val, _ := strings.Cut(def, "=")
		if val != "" {
			fmt.Fprintf(&b, "#define %s %s\n", name, val)
		} else {
			fmt.Fprintf(&b, "#define %s\n", name)
		}
	}
	for _, hdr := range m.Include {
		fmt.Fprintf(&b, "#include %s\n", IncludeSpelling(hdr))
	}
	if len(m.Define)+len(m.Include) > 0 {
		b.WriteByte('\n')
	}
	for _, e := range m.Decls {
		fmt.Fprintf(&b, "cdecl_%s(%s)\n", e.Kind, e.Name)
	}
	return b.Bytes()
}

// IncludeSpelling returns the #include operand for a header: quoted
// headers are kept, everything else is looked up as a system header.
func IncludeSpelling(hdr string) string {
	if strings.HasPrefix(hdr, `"`) || strings.HasPrefix(hdr, "<") {
		return hdr
	}
	return "<" + hdr + ">"
}

// -----------------------------------------------------------------------------
