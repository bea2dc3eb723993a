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
	"os"
	"path/filepath"

	"github.com/goplus/ffi-cdecl/clang/ast"
	"github.com/goplus/ffi-cdecl/clang/parser"
	"github.com/goplus/ffi-cdecl/clang/preprocessor"
	"github.com/goplus/ffi-cdecl/manifest"
	"github.com/qiniu/x/errors"
)

// Frontend turns C source into its macro table and AST.
type Frontend interface {
	Macros(src *Source) (preprocessor.Table, error)
	Parse(src *Source) (*ast.Node, error)
}

// -----------------------------------------------------------------------------

// Clang is the Frontend running a clang compatible compiler.
type Clang struct {
	Compiler    string // default: clang
	BaseDir     string // for relative IncludeDirs
	IncludeDirs []string
	Flags       []string
	Stderr      bool // copy warnings to os.Stderr
}

// NewClang returns the frontend configured by the compilation environment
// of m. Defines are not passed on the command line since the generated
// sources carry them.
func NewClang(m *manifest.Manifest, baseDir string) *Clang {
	return &Clang{
		Compiler:    m.Compiler,
		BaseDir:     baseDir,
		IncludeDirs: m.IncludeDirs,
		Flags:       m.Flags,
	}
}

func (p *Clang) ppConfig() *preprocessor.Config {
	return &preprocessor.Config{
		Compiler:    p.Compiler,
		BaseDir:     p.BaseDir,
		IncludeDirs: p.IncludeDirs,
		Flags:       p.Flags,
	}
}

func (p *Clang) Macros(src *Source) (preprocessor.Table, error) {
	dir, file, err := writeTemp(src)
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(dir)
	return preprocessor.Macros(file, p.ppConfig())
}

func (p *Clang) Parse(src *Source) (*ast.Node, error) {
	dir, file, err := writeTemp(src)
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(dir)

	flags, err := p.ppConfig().Args()
	if err != nil {
		return nil, err
	}
	doc, _, err := parser.ParseFileEx(file, &parser.Config{
		Flags:    flags,
		Compiler: p.Compiler,
		Stderr:   p.Stderr,
	})
	return doc, err
}

func writeTemp(src *Source) (dir, file string, err error) {
	if dir, err = os.MkdirTemp("", "cdecl"); err != nil {
		return
	}
	file = filepath.Join(dir, src.Name)
	if err = os.WriteFile(file, src.Code, 0644); err != nil {
		os.RemoveAll(dir)
		err = errors.NewWith(err, `os.WriteFile(file, src.Code, 0644)`, -2, "os.WriteFile", file, src.Code, 0644)
	}
	return
}

// -----------------------------------------------------------------------------
