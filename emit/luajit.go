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
	"bufio"
	"io"

	"github.com/goplus/ffi-cdecl"
)

const generatedBy = "Code generated by ffi-cdecl. DO NOT EDIT."

// luajit writes a Lua module declaring the bindings to the LuaJIT FFI:
//
//	local ffi = require("ffi")
//
//	ffi.cdef[[
//	int clock_gettime(clockid_t, struct timespec *);
//	]]
type luajit struct{}

func (luajit) Emit(w io.Writer, r *cdecl.Result) error {
	b := bufio.NewWriter(w)
	b.WriteString("-- " + generatedBy + "\n")
	if r.Name != "" {
		b.WriteString("-- manifest: " + r.Name + "\n")
	}
	b.WriteString("\nlocal ffi = require(\"ffi\")\n\nffi.cdef[[\n")
	for _, bind := range r.Bindings {
		b.WriteString(bind.Decl)
		b.WriteByte('\n')
	}
	b.WriteString("]]\n")
	return b.Flush()
}
