package preprocessor

import (
	"bytes"
	"log"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/goplus/ffi-cdecl/clang/pathutil"
	"github.com/qiniu/x/errors"
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

type Config struct {
	Compiler    string // default: clang
	PPFlag      string // default: -E
	BaseDir     string // base of include searching directory, should be absolute path
	IncludeDirs []string
	Defines     []string
	Flags       []string
}

// Args returns the compiler arguments selecting the include directories,
// defines and extra flags of conf. They are shared with the AST dump so
// both runs see the same headers.
func (conf *Config) Args() (args []string, err error) {
	base := conf.BaseDir
	if base == "" {
		if base, err = os.Getwd(); err != nil {
			return
		}
	}
	args = make([]string, 0, len(conf.Flags)+len(conf.IncludeDirs)+len(conf.Defines))
	args = append(args, conf.Flags...)
	for _, def := range conf.Defines {
		args = append(args, "-D"+def)
	}
	for _, inc := range pathutil.CanonicalAll(base, conf.IncludeDirs) {
		args = append(args, "-I"+inc)
	}
	return
}

func Do(infile, outfile string, conf *Config) (err error) {
	if infile, err = filepath.Abs(infile); err != nil {
		return
	}
	if outfile, err = filepath.Abs(outfile); err != nil {
		return
	}
	if conf == nil {
		conf = new(Config)
	}
	ppflag := conf.PPFlag
	if ppflag == "" {
		ppflag = "-E"
	}
	flags, err := conf.Args()
	if err != nil {
		return
	}
	args := make([]string, 3, 4+len(flags))
	args[0] = ppflag
	args[1], args[2] = "-o", outfile
	args = append(args, flags...)
	args = append(args, infile)
	return run(conf.Compiler, filepath.Dir(infile), args)
}

// Macros runs the preprocessor in -dM mode over infile and returns
// every macro defined at its end.
func Macros(infile string, conf *Config) (m Table, err error) {
	dir, err := os.MkdirTemp("", "cdecl-pp")
	if err != nil {
		return
	}
	defer os.RemoveAll(dir)

	var c Config
	if conf != nil {
		c = *conf
	}
	c.PPFlag = "-E"
	c.Flags = append([]string{"-dM"}, c.Flags...)
	outfile := filepath.Join(dir, "macros.h")
	if err = Do(infile, outfile, &c); err != nil {
		return
	}
	b, err := os.ReadFile(outfile)
	if err != nil {
		err = errors.NewWith(err, `os.ReadFile(outfile)`, -2, "os.ReadFile", outfile)
		return
	}
	return ParseMacros(b), nil
}

func run(compiler, dir string, args []string) error {
	if compiler == "" {
		compiler = "clang"
	}
	if debugExecCmd {
		log.Println("==> runCmd:", compiler, args)
	}
	var stderr bytes.Buffer
	cmd := exec.Command(compiler, args...)
	cmd.Dir = dir
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if stderr.Len() > 0 {
			return errors.NewWith(errors.New(stderr.String()), `cmd.Run()`, -2, "(*exec.Cmd).Run", compiler, args)
		}
		return errors.NewWith(err, `cmd.Run()`, -2, "(*exec.Cmd).Run", compiler, args)
	}
	return nil
}

// -----------------------------------------------------------------------------
