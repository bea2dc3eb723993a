package main

import (
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/goplus/ffi-cdecl/clang/preprocessor"
)

var (
	macros  = flag.Bool("macros", false, "print the macro table instead of the preprocessed source")
	resolve = flag.String("resolve", "", "print the identifier a macro alias chain ends at")
	defines = flag.String("D", "", "defines, comma separated, e.g. _XOPEN_SOURCE=700")
	incs    = flag.String("I", "", "include directories, comma separated")
)

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: clangpp [-macros] [-resolve name] [-D defs] [-I dirs] source.c\n")
	flag.PrintDefaults()
}

func split(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}

func main() {
	flag.Usage = usage
	flag.Parse()
	if flag.NArg() < 1 {
		usage()
		return
	}
	infile := flag.Arg(0)
	conf := &preprocessor.Config{Defines: split(*defines), IncludeDirs: split(*incs)}
	if !*macros && *resolve == "" {
		if err := preprocessor.Do(infile, infile+".i", conf); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}
	t, err := preprocessor.Macros(infile, conf)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if *resolve != "" {
		fmt.Println(t.Resolve(*resolve))
		return
	}
	names := make([]string, 0, len(t))
	for name := range t {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		m := t[name]
		if m.FuncLike {
			fmt.Printf("%s(%s)\t%s\n", name, strings.Join(m.Params, ", "), m.Body)
		} else {
			fmt.Printf("%s\t%s\n", name, m.Body)
		}
	}
}
