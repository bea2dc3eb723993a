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

package emit

import (
	"bytes"
	"regexp"
	"strings"
	"testing"

	"github.com/goplus/ffi-cdecl"
	"github.com/goplus/ffi-cdecl/manifest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func posix() *cdecl.Result {
	return &cdecl.Result{
		Name: "C",
		Bindings: []*cdecl.Binding{
			{Kind: manifest.Type, Name: "clockid_t", Type: "int", Canonical: "int", Decl: "typedef int clockid_t;"},
			{Kind: manifest.Struct, Name: "timespec", Decl: "struct timespec { long long tv_sec; long long tv_nsec; };",
				Fields: []cdecl.Field{{Name: "tv_sec", Type: "long long"}, {Name: "tv_nsec", Type: "long long"}}},
			{Kind: manifest.Struct, Name: "itimerspec", Decl: "struct itimerspec { struct timespec it_interval; struct timespec it_value; };",
				Fields: []cdecl.Field{{Name: "it_interval", Type: "struct timespec"}, {Name: "it_value", Type: "struct timespec"}}},
			{Kind: manifest.Type, Name: "cstr", Type: "const char *", Canonical: "const char *", Decl: "typedef const char *cstr;"},
			{Kind: manifest.Variable, Name: "optarg", Type: "char *", Decl: "extern char *optarg;"},
			{Kind: manifest.Function, Name: "clock_gettime", Result: "int",
				Params: []cdecl.Param{{Type: "clockid_t"}, {Type: "struct timespec *"}},
				Decl:   "int clock_gettime(clockid_t, struct timespec *);"},
			{Kind: manifest.Union, Name: "sigval", Decl: "union sigval { int sival_int; void *sival_ptr; };",
				Fields: []cdecl.Field{{Name: "sival_int", Type: "int"}, {Name: "sival_ptr", Type: "void *"}}},
			{Kind: manifest.Enum, Name: "__rlimit_resource", Decl: "enum __rlimit_resource { RLIMIT_CPU = 0, RLIMIT_CORE = 4 };",
				Enumerators: []cdecl.Enumerator{{Name: "RLIMIT_CPU", Value: "0"}, {Name: "RLIMIT_CORE", Value: "4"}}},
			{Kind: manifest.Constant, Name: "RLIM_INFINITY", Type: "unsigned long long", Canonical: "unsigned long long", Value: "18446744073709551615",
				Decl: "static const unsigned long long RLIM_INFINITY = 18446744073709551615ULL;"},
			{Kind: manifest.Constant, Name: "RLIMIT_CORE", Type: "int", Canonical: "int", Value: "4",
				Decl: "static const int RLIMIT_CORE = 4;"},
			{Kind: manifest.Constant, Name: "AT_FDCWD", Type: "int", Canonical: "int", Value: "-100",
				Decl: "static const int AT_FDCWD = -100;"},
		},
	}
}

func emit(t *testing.T, format string, r *cdecl.Result) string {
	e, err := New(format, &Options{Package: "posix"})
	require.NoError(t, err)
	var b bytes.Buffer
	require.NoError(t, e.Emit(&b, r))
	return b.String()
}

func TestNew(t *testing.T) {
	assert.Equal(t, []string{"godefs", "json", "luajit", "yaml"}, Names())
	_, err := New("python", nil)
	assert.EqualError(t, err, `unknown output format "python"`)
}

func TestLuaJIT(t *testing.T) {
	r := posix()
	out := emit(t, "luajit", r)
	lines := strings.Split(out, "\n")
	assert.Equal(t, "-- "+generatedBy, lines[0])
	assert.Equal(t, "-- manifest: C", lines[1])
	assert.Equal(t, `local ffi = require("ffi")`, lines[3])
	assert.Equal(t, "ffi.cdef[[", lines[5])
	for i, b := range r.Bindings {
		assert.Equal(t, b.Decl, lines[6+i])
	}
	assert.Equal(t, "]]", lines[6+len(r.Bindings)])
}

func TestDocuments(t *testing.T) {
	r := posix()
	var fromJSON cdecl.Result
	require.NoError(t, json.Unmarshal([]byte(emit(t, "json", r)), &fromJSON))
	assert.Equal(t, r, &fromJSON)

	out := emit(t, "yaml", r)
	assert.Contains(t, out, "kind: struct\n")
	var fromYAML cdecl.Result
	require.NoError(t, yaml.Unmarshal([]byte(out), &fromYAML))
	assert.Equal(t, r, &fromYAML)
}

func TestGodefs(t *testing.T) {
	out := emit(t, "godefs", posix())
	assert.True(t, strings.HasPrefix(out, "package posix\n"), out)
	for _, pat := range []string{
		`type Clockid_t = int32\n`,
		`type Timespec struct \{\n\s+Tv_sec\s+int64\n\s+Tv_nsec\s+int64\n\}`,
		`type Itimerspec struct \{\n\s+It_interval\s+Timespec\n\s+It_value\s+Timespec\n\}`,
		`type Cstr = \*int8\n`,
		`type Sigval \[\d+\]byte\n`,
		`type Rlimit_resource int32\n`,
		`RLIMIT_CPU\s+Rlimit_resource\s+= 0\n`,
		`RLIM_INFINITY\s+uint64\s+= 18446744073709551615\n`,
		`AT_FDCWD\s+int32\s+= -100\n`,
	} {
		assert.Regexp(t, regexp.MustCompile(pat), out)
	}
	// RLIMIT_CORE is declared by the enum first
	assert.Equal(t, 1, strings.Count(out, "RLIMIT_CORE"), out)
	assert.NotContains(t, out, "Optarg")
	assert.NotContains(t, out, "Clock_gettime")
}

func TestGoName(t *testing.T) {
	cases := map[string]string{
		"clockid_t":         "Clockid_t",
		"__rlimit_resource": "Rlimit_resource",
		"RLIMIT_CORE":       "RLIMIT_CORE",
		"_":                 "X_",
	}
	for in, want := range cases {
		if got := goName(in); got != want {
			t.Fatal("goName:", in, "=>", got, ", expected:", want)
		}
	}
	if got := goPkgName("sys/resource"); got != "sysresource" {
		t.Fatal("goPkgName:", got)
	}
	if got := goPkgName("9p"); got != "cdecl9p" {
		t.Fatal("goPkgName:", got)
	}
}
