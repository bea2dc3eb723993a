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
	"fmt"
	"io"
	"sort"

	"github.com/goplus/ffi-cdecl"
	"go.uber.org/zap"
)

// Emitter writes the bindings of a Result in some output format. Bindings
// are written in Result order.
type Emitter interface {
	Emit(w io.Writer, r *cdecl.Result) error
}

type Options struct {
	Package string      // Go package name of godefs output, default: the manifest name
	Logger  *zap.Logger // default: zap.NewNop()
}

type factory func(opts *Options) Emitter

var emitters = map[string]factory{
	"luajit": func(*Options) Emitter { return luajit{} },
	"json":   func(*Options) Emitter { return document{json: true} },
	"yaml":   func(*Options) Emitter { return document{} },
	"godefs": newGodefs,
}

// New returns the named Emitter.
func New(name string, opts *Options) (Emitter, error) {
	fn, ok := emitters[name]
	if !ok {
		return nil, fmt.Errorf("unknown output format %q", name)
	}
	if opts == nil {
		opts = new(Options)
	}
	return fn(opts), nil
}

// Names returns the supported output formats.
func Names() []string {
	names := make([]string, 0, len(emitters))
	for name := range emitters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
