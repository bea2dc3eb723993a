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

// POSIX returns the stock manifest of time, resource limit and getopt
// declarations used by scripting runtimes.
func POSIX() *Manifest {
	m := &Manifest{
		Name:    "C",
		Define:  []string{"_XOPEN_SOURCE=700"},
		Include: []string{"libgen.h", "sys/resource.h", "stdlib.h", "time.h", "unistd.h"},
	}
	m.Add(Type, "clockid_t", "time_t")
	m.Add(Struct, "timespec")
	m.Add(Variable, "optarg", "opterr", "optind", "optopt")
	m.Add(Function, "basename", "clock_gettime", "getopt", "malloc")
	m.Add(Constant,
		"RLIM_INFINITY",
		"RLIMIT_CORE",
		"RLIMIT_CPU",
		"RLIMIT_DATA",
		"RLIMIT_FSIZE",
		"RLIMIT_NOFILE",
		"RLIMIT_STACK",
	)
	return m
}
