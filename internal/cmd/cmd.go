// Package cmd implements the subcommands of ffi-cdecl.
package cmd

import (
	"io"
	"os"
	"path/filepath"

	"github.com/goplus/ffi-cdecl"
	"github.com/goplus/ffi-cdecl/clang/parser"
	"github.com/goplus/ffi-cdecl/clang/preprocessor"
	"github.com/goplus/ffi-cdecl/manifest"
	"go.uber.org/zap"
)

// Globals are the flags shared by every subcommand.
type Globals struct {
	LogLevel string `help:"Log level." default:"warn" enum:"debug,info,warn,error" env:"FFI_CDECL_LOG_LEVEL"`
	CC       string `help:"C compiler used as frontend, overriding the manifest." placeholder:"clang" env:"FFI_CDECL_CC"`
	Debug    bool   `help:"Print the compiler commands run." env:"FFI_CDECL_DEBUG"`
	Config   string `help:"Configuration file." placeholder:"FILE" env:"FFI_CDECL_CONFIG"`

	Stdout   io.Writer      `kong:"-"`
	Frontend cdecl.Frontend `kong:"-"` // default: clang
}

func (g *Globals) stdout() io.Writer {
	if g.Stdout != nil {
		return g.Stdout
	}
	return os.Stdout
}

type CLI struct {
	Globals

	Generate Generate `cmd:"" help:"Resolve a manifest and write its bindings."`
	Check    Check    `cmd:"" help:"Resolve a manifest and report every failure."`
	Probe    Probe    `cmd:"" help:"Print the sources handed to the compiler."`
	Builtin  Builtin  `cmd:"" help:"Print the built-in POSIX manifest."`
}

// -----------------------------------------------------------------------------

// ManifestArg selects the manifest file; the built-in POSIX manifest is
// used when it is empty.
type ManifestArg struct {
	Manifest string `arg:"" optional:"" help:"Manifest file (.json, .yaml, .toml, .c)." type:"existingfile"`
}

func (p *ManifestArg) load(g *Globals) (m *manifest.Manifest, err error) {
	if p.Manifest == "" {
		m = manifest.POSIX()
	} else if m, err = manifest.Load(p.Manifest); err != nil {
		return
	}
	if g.CC != "" {
		m.Compiler = g.CC
	}
	return
}

func (p *ManifestArg) extract(g *Globals, m *manifest.Manifest, log *zap.Logger) (*cdecl.Result, error) {
	if g.Debug {
		parser.SetDebug(parser.DbgFlagAll)
		preprocessor.SetDebug(preprocessor.DbgFlagAll)
	}
	conf := &cdecl.Config{Frontend: g.Frontend, Logger: log}
	if p.Manifest != "" {
		dir, err := filepath.Abs(filepath.Dir(p.Manifest))
		if err != nil {
			return nil, err
		}
		conf.BaseDir = dir
	}
	return cdecl.Extract(m, conf)
}

// -----------------------------------------------------------------------------
