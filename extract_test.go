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
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/goplus/ffi-cdecl/clang/ast"
	"github.com/goplus/ffi-cdecl/clang/parser"
	"github.com/goplus/ffi-cdecl/clang/preprocessor"
	"github.com/goplus/ffi-cdecl/manifest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	tparser "github.com/goplus/ffi-cdecl/clang/types/parser"
)

// -----------------------------------------------------------------------------

// fakeFrontend serves the macros and AST dumps stored under testdata/<dir>.
type fakeFrontend struct {
	dir      string
	probeErr error
	sources  []*Source
}

func newFake(dir string) *fakeFrontend {
	return &fakeFrontend{dir: filepath.Join("testdata", dir)}
}

func (p *fakeFrontend) Macros(src *Source) (preprocessor.Table, error) {
	b, err := os.ReadFile(filepath.Join(p.dir, "macros.h"))
	if err != nil {
		return nil, err
	}
	return preprocessor.ParseMacros(b), nil
}

func (p *fakeFrontend) Parse(src *Source) (*ast.Node, error) {
	p.sources = append(p.sources, src)
	file := "env.json"
	if src.Name == probeFile {
		if p.probeErr != nil {
			return nil, p.probeErr
		}
		file = "probe.json"
	}
	b, err := os.ReadFile(filepath.Join(p.dir, file))
	if err != nil {
		return nil, err
	}
	return parser.Parse(b)
}

func posixManifest() *manifest.Manifest {
	m := &manifest.Manifest{
		Name:    "C",
		Define:  []string{"_XOPEN_SOURCE=700"},
		Include: []string{"libgen.h", "sys/resource.h", "stdlib.h", "time.h", "unistd.h"},
	}
	m.Add(manifest.Type, "clockid_t")
	m.Add(manifest.Struct, "timespec")
	m.Add(manifest.Variable, "optarg")
	m.Add(manifest.Function, "clock_gettime", "basename")
	m.Add(manifest.Constant, "RLIMIT_CORE", "RLIM_INFINITY")
	return m
}

// -----------------------------------------------------------------------------

func TestExtractPOSIX(t *testing.T) {
	fe := newFake("posix")
	ret, err := Extract(posixManifest(), &Config{Frontend: fe})
	require.NoError(t, err)
	assert.Equal(t, "C", ret.Name)

	var decls []string
	for _, b := range ret.Bindings {
		decls = append(decls, b.Decl)
	}
	assert.Equal(t, []string{
		"typedef int clockid_t;",
		"struct timespec { long tv_sec; long tv_nsec; };",
		"extern char *optarg;",
		"int clock_gettime(clockid_t, struct timespec *);",
		`char *basename(char *) asm("__xpg_basename");`,
		"static const int RLIMIT_CORE = 4;",
		"static const unsigned long RLIM_INFINITY = 18446744073709551615ULL;",
	}, decls)

	fn := ret.Lookup(manifest.Function, "clock_gettime")
	require.NotNil(t, fn)
	assert.Equal(t, "int", fn.Result)
	assert.Equal(t, []Param{{"__clock_id", "clockid_t"}, {"__tp", "struct timespec *"}}, fn.Params)
	assert.False(t, fn.Variadic)
	assert.Equal(t, "/usr/include/time.h", fn.File)
	assert.Equal(t, 279, fn.Line)

	st := ret.Lookup(manifest.Struct, "timespec")
	require.NotNil(t, st)
	assert.Equal(t, "/usr/include/x86_64-linux-gnu/bits/types/struct_timespec.h", st.File)
	assert.Equal(t, []Field{{Name: "tv_sec", Type: "long"}, {Name: "tv_nsec", Type: "long"}}, st.Fields)

	assert.Equal(t, "__xpg_basename", ret.Lookup(manifest.Function, "basename").Symbol)
	assert.Equal(t, "4", ret.Lookup(manifest.Constant, "RLIMIT_CORE").Value)
	assert.Equal(t, "int", ret.Lookup(manifest.Type, "clockid_t").Canonical)

	require.Len(t, fe.sources, 2)
	assert.Equal(t, envFile, fe.sources[0].Name)
	assert.Equal(t, probeFile, fe.sources[1].Name)
}

func TestExtractOrder(t *testing.T) {
	m := posixManifest()
	for i, j := 0, len(m.Decls)-1; i < j; i, j = i+1, j-1 {
		m.Decls[i], m.Decls[j] = m.Decls[j], m.Decls[i]
	}
	// the probe numbers constants in manifest order
	m.Decls[0], m.Decls[1] = m.Decls[1], m.Decls[0]
	ret, err := Extract(m, &Config{Frontend: newFake("posix")})
	require.NoError(t, err)
	require.Len(t, ret.Bindings, len(m.Decls))
	for i, e := range m.Decls {
		assert.Equal(t, e.Kind, ret.Bindings[i].Kind)
		assert.Equal(t, e.Name, ret.Bindings[i].Name)
	}
	// clockid_t is declared after clock_gettime now
	assert.Equal(t, "int clock_gettime(int, struct timespec *);", ret.Lookup(manifest.Function, "clock_gettime").Decl)
}

func TestExtractMore(t *testing.T) {
	m := &manifest.Manifest{Include: []string{"stdio.h", "unistd.h", "stdlib.h"}}
	m.Add(manifest.Function, "printf", "getpid")
	m.Add(manifest.Union, "sigval")
	m.Add(manifest.Enum, "__rlimit_resource")
	m.Add(manifest.Type, "ldiv_t")
	ret, err := Extract(m, &Config{Frontend: newFake("posix")})
	require.NoError(t, err)

	printf := ret.Bindings[0]
	assert.Equal(t, "int printf(const char *restrict, ...);", printf.Decl)
	assert.True(t, printf.Variadic)
	assert.Equal(t, "int getpid(void);", ret.Bindings[1].Decl)
	assert.Equal(t, "union sigval { int sival_int; void *sival_ptr; };", ret.Bindings[2].Decl)

	enum := ret.Bindings[3]
	assert.Equal(t, "enum __rlimit_resource { RLIMIT_CPU = 0, RLIMIT_FSIZE = 1, RLIMIT_DATA = 2, RLIMIT_STACK = 3, RLIMIT_CORE = 4 };", enum.Decl)
	assert.Equal(t, Enumerator{"RLIMIT_STACK", "3"}, enum.Enumerators[3])

	assert.Equal(t, "typedef struct { long quot; long rem; } ldiv_t;", ret.Bindings[4].Decl)
}

func TestExtractFailures(t *testing.T) {
	m := &manifest.Manifest{}
	m.Add(manifest.Type, "timespec")
	m.Add(manifest.Struct, "clockid_t")
	m.Add(manifest.Function, "WEXITSTATUS")
	m.Add(manifest.Variable, "nosuch")
	m.Add(manifest.Constant, "optarg")
	m.Add(manifest.Union, "timespec")
	m.Add(manifest.Variable, "basename")
	m.Add(manifest.Variable, "errno")
	m.Add(manifest.Function, "CLOCK_REALTIME")
	_, err := Extract(m, &Config{Frontend: newFake("posix")})
	require.Error(t, err)

	errs := multierr.Errors(err)
	require.Len(t, errs, 9)
	wants := []struct {
		actual Category
		msg    string
	}{
		{CatStruct, "type timespec: kind mismatch: timespec is a struct"},
		{CatTypedef, "struct clockid_t: kind mismatch: clockid_t is a type"},
		{CatMacro, "func WEXITSTATUS: kind mismatch: WEXITSTATUS is a function-like macro"},
		{CatNone, "var nosuch: unresolved symbol"},
		{CatVar, "const optarg: kind mismatch: optarg is a variable"},
		{CatStruct, "union timespec: kind mismatch: timespec is a struct"},
		{CatFunc, "var basename: kind mismatch: basename (via __xpg_basename) is a function"},
		{CatObjectMacro, "var errno: kind mismatch: errno is an object-like macro"},
		{CatObjectMacro, "func CLOCK_REALTIME: kind mismatch: CLOCK_REALTIME is an object-like macro"},
	}
	for i, want := range wants {
		assert.Equal(t, want.msg, errs[i].Error())
		var mismatch *KindMismatchError
		if errors.As(errs[i], &mismatch) {
			assert.Equal(t, want.actual, mismatch.Actual)
		} else {
			var unresolved *UnresolvedError
			assert.True(t, errors.As(errs[i], &unresolved), "%v", errs[i])
		}
	}
}

func TestExtractInvalid(t *testing.T) {
	m := new(manifest.Manifest).Add(manifest.Variable, "optarg", "optarg")
	fe := newFake("posix")
	_, err := Extract(m, &Config{Frontend: fe})
	var entry *manifest.EntryError
	require.True(t, errors.As(err, &entry))
	assert.Empty(t, fe.sources)
}

// -----------------------------------------------------------------------------

func TestProbeSource(t *testing.T) {
	m := posixManifest()
	src := ProbeSource(m, []string{"RLIMIT_CORE", "RLIM_INFINITY"})
	lines := strings.Split(strings.TrimSuffix(string(src.Code), "\n"), "\n")
	require.Len(t, lines, 8)
	assert.Equal(t, "#define _XOPEN_SOURCE 700", lines[0])
	assert.Equal(t, "#include <sys/resource.h>", lines[2])
	assert.Equal(t, "enum { __cdecl_const_value_0 = (RLIMIT_CORE) }; static __typeof__((RLIMIT_CORE)) __cdecl_const_type_0;", lines[6])
	assert.Equal(t, "enum { __cdecl_const_value_1 = (RLIM_INFINITY) }; static __typeof__((RLIM_INFINITY)) __cdecl_const_type_1;", lines[7])

	env := EnvSource(&manifest.Manifest{Define: []string{"NDEBUG", "A=1"}, Include: []string{`"local.h"`}})
	assert.Equal(t, "#define NDEBUG\n#define A 1\n#include \"local.h\"\n", string(env.Code))
}

func TestProbeIndex(t *testing.T) {
	k, ok := probeIndex("__cdecl_const_value_12", constValuePrefix)
	assert.True(t, ok)
	assert.Equal(t, 12, k)
	_, ok = probeIndex("__cdecl_const_value_", constValuePrefix)
	assert.False(t, ok)
	_, ok = probeIndex("__cdecl_const_type_1", constValuePrefix)
	assert.False(t, ok)
}

func TestExtractConstantError(t *testing.T) {
	m := &manifest.Manifest{Define: []string{"_GNU_SOURCE"}, Include: []string{"math.h"}}
	m.Add(manifest.Constant, "RLIMIT_CORE", "M_PI")
	fe := newFake("posix")
	fe.probeErr = &parser.ParseError{
		Err:    errors.New("exit status 1"),
		Stderr: []byte(`/tmp/cdecl1234/cdecl_probe.c:4:31: error: expression is not an integer constant expression
    4 | enum { __cdecl_const_value_1 = (M_PI) }; static __typeof__((M_PI)) __cdecl_const_type_1;
      |                               ^~~~~~
1 error generated.
`),
	}
	_, err := Extract(m, &Config{Frontend: fe})
	errs := multierr.Errors(err)
	require.Len(t, errs, 1)
	var cerr *ConstantError
	require.True(t, errors.As(errs[0], &cerr))
	assert.Equal(t, "M_PI", cerr.Entry.Name)
	assert.Equal(t, "const M_PI: cannot evaluate constant: expression is not an integer constant expression", cerr.Error())
}

func TestExtractHeaderError(t *testing.T) {
	m := new(manifest.Manifest).Add(manifest.Constant, "RLIMIT_CORE")
	fe := newFake("posix")
	perr := &parser.ParseError{
		Err:    errors.New("exit status 1"),
		Stderr: []byte("/usr/include/bad.h:3:1: error: unknown type name 'foo'\n"),
	}
	fe.probeErr = perr
	_, err := Extract(m, &Config{Frontend: fe})
	assert.Same(t, perr, err)
}

// -----------------------------------------------------------------------------

var scalarVars = map[string]string{
	"int_scalar":                               "int",
	"const_int_scalar":                         "const int",
	"volatile_int_scalar":                      "volatile int",
	"const_volatile_int_scalar":                "const volatile int",
	"short_scalar":                             "short",
	"const_short_scalar":                       "const short",
	"volatile_short_scalar":                    "volatile short",
	"const_volatile_short_scalar":              "const volatile short",
	"int_type_scalar":                          "int",
	"const_int_type_scalar":                    "const int",
	"volatile_int_type_scalar":                 "volatile int",
	"volatile_const_int_type_scalar":           "const volatile int",
	"unsigned_long_type_scalar":                "unsigned long",
	"const_unsigned_long_type_scalar":          "const unsigned long",
	"volatile_unsigned_long_type_scalar":       "volatile unsigned long",
	"volatile_const_unsigned_long_type_scalar": "const volatile unsigned long",
}

var scalarTypes = []string{"int_type", "const_int_type", "unsigned_long_type", "const_unsigned_long_type"}

func scalarManifest(withTypes bool) *manifest.Manifest {
	m := &manifest.Manifest{Name: "scalar", Include: []string{`"scalar.c"`}}
	if withTypes {
		m.Add(manifest.Type, scalarTypes...)
	}
	for _, name := range sortedKeys(scalarVars) {
		m.Add(manifest.Variable, name)
	}
	return m
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// typedefsOf expands the typedefs a result declares.
func typedefsOf(ret *Result) tparser.Expander {
	return func(name string) (string, bool) {
		if b := ret.Lookup(manifest.Type, name); b != nil {
			return b.Type, true
		}
		return "", false
	}
}

func checkScalars(t *testing.T, ret *Result) {
	expand := typedefsOf(ret)
	for name, want := range scalarVars {
		b := ret.Lookup(manifest.Variable, name)
		if !assert.NotNil(t, b, name) {
			continue
		}
		assert.True(t, tparser.Equivalent(b.Type, want, expand), "%s: %s != %s", name, b.Type, want)
		assert.Equal(t, want, b.Canonical, name)
	}
}

func TestScalarQualifiers(t *testing.T) {
	ret, err := Extract(scalarManifest(true), &Config{Frontend: newFake("scalar")})
	require.NoError(t, err)
	checkScalars(t, ret)

	b := ret.Lookup(manifest.Variable, "volatile_const_int_type_scalar")
	assert.Equal(t, "extern volatile const_int_type volatile_const_int_type_scalar;", b.Decl)
	assert.Equal(t, "typedef const int const_int_type;", ret.Lookup(manifest.Type, "const_int_type").Decl)

	ret, err = Extract(scalarManifest(false), &Config{Frontend: newFake("scalar")})
	require.NoError(t, err)
	checkScalars(t, ret)
	b = ret.Lookup(manifest.Variable, "volatile_const_unsigned_long_type_scalar")
	assert.Equal(t, "extern const volatile unsigned long volatile_const_unsigned_long_type_scalar;", b.Decl)
}

// -----------------------------------------------------------------------------
