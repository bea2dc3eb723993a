package parser

import (
	"bytes"
	"log"
	"os"
	"os/exec"

	"github.com/goplus/ffi-cdecl/clang/ast"
	"github.com/qiniu/x/errors"

	jsoniter "github.com/json-iterator/go"
)

const (
	DbgFlagExecCmd = 1 << iota
	DbgFlagAll     = DbgFlagExecCmd
)

var (
	debugExecCmd bool
)

func SetDebug(flags int) {
	debugExecCmd = (flags & DbgFlagExecCmd) != 0
}

// -----------------------------------------------------------------------------

type ParseError struct {
	Err    error
	Stderr []byte
}

func (p *ParseError) Error() string {
	if len(p.Stderr) > 0 {
		return string(p.Stderr)
	}
	return p.Err.Error()
}

func (p *ParseError) Unwrap() error {
	return p.Err
}

// Diagnostics returns the clang diagnostics the failed run reported.
func (p *ParseError) Diagnostics() []*Diagnostic {
	return ParseDiagnostics(p.Stderr)
}

// -----------------------------------------------------------------------------

type Config struct {
	Json     *[]byte
	Flags    []string
	Compiler string // default: clang
	Stderr   bool   // copy clang warnings to os.Stderr
}

func DumpAST(filename string, conf *Config) (result []byte, warning []byte, err error) {
	if conf == nil {
		conf = new(Config)
	}
	compiler := conf.Compiler
	if compiler == "" {
		compiler = "clang"
	}
	args := make([]string, 0, 4+len(conf.Flags))
	args = append(args, "-Xclang", "-ast-dump=json", "-fsyntax-only")
	args = append(args, conf.Flags...)
	args = append(args, filename)
	if debugExecCmd {
		log.Println("==> runCmd:", compiler, args)
	}
	stdout := new(bytes.Buffer)
	stderr := new(bytes.Buffer)
	cmd := exec.Command(compiler, args...)
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	err = cmd.Run()
	errmsg := stderr.Bytes()
	if err != nil {
		return nil, nil, &ParseError{Err: err, Stderr: errmsg}
	}
	if conf.Stderr && len(errmsg) > 0 {
		os.Stderr.Write(errmsg)
	}
	return stdout.Bytes(), errmsg, nil
}

// -----------------------------------------------------------------------------

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func ParseFileEx(filename string, conf *Config) (file *ast.Node, warning []byte, err error) {
	out, warning, err := DumpAST(filename, conf)
	if err != nil {
		return
	}
	if conf != nil && conf.Json != nil {
		*conf.Json = out
	}
	file, err = Parse(out)
	return
}

func ParseFile(filename string) (file *ast.Node, warning []byte, err error) {
	return ParseFileEx(filename, nil)
}

// Parse decodes a clang JSON AST dump.
func Parse(data []byte) (file *ast.Node, err error) {
	file = new(ast.Node)
	if err = json.Unmarshal(data, file); err != nil {
		return nil, &ParseError{Err: errors.NewWith(err, `json.Unmarshal(data, file)`, -2, "json.Unmarshal", len(data))}
	}
	if file.Kind != ast.TranslationUnitDecl {
		return nil, &ParseError{Err: errors.New("not a translation unit: " + string(file.Kind))}
	}
	return
}

// -----------------------------------------------------------------------------
