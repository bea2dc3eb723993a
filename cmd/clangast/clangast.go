package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/goplus/ffi-cdecl/clang/parser"

	jsoniter "github.com/json-iterator/go"
)

var (
	dump  = flag.Bool("dump", false, "dump the AST as clang writes it")
	cc    = flag.String("cc", "", "C compiler, default: clang")
	flags = flag.String("flags", "", "extra compiler flags, space separated")
	debug = flag.Bool("debug", false, "print the compiler command")
)

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: clangast [-dump] [-cc clang] [-flags '-I dir'] source.c\n")
	flag.PrintDefaults()
}

func main() {
	flag.Usage = usage
	flag.Parse()
	if flag.NArg() < 1 {
		usage()
		return
	}
	if *debug {
		parser.SetDebug(parser.DbgFlagAll)
	}
	var file = flag.Arg(0)
	var conf = &parser.Config{Compiler: *cc, Flags: strings.Fields(*flags), Stderr: true}
	var err error
	if *dump {
		doc, _, e := parser.DumpAST(file, conf)
		if e == nil {
			os.Stdout.Write(doc)
			return
		}
		err = e
	} else {
		doc, _, e := parser.ParseFileEx(file, conf)
		if e == nil {
			enc := jsoniter.ConfigCompatibleWithStandardLibrary.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			enc.Encode(doc)
			return
		}
		err = e
	}
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
