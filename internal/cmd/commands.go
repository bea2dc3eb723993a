package cmd

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/goplus/ffi-cdecl"
	"github.com/goplus/ffi-cdecl/emit"
	"github.com/goplus/ffi-cdecl/manifest"
	"github.com/qiniu/x/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Generate writes the bindings of a manifest.
type Generate struct {
	ManifestArg

	Format  string `short:"f" help:"Output format." enum:"luajit,json,yaml,godefs" default:"luajit"`
	Output  string `short:"o" help:"Output file, default: stdout." placeholder:"FILE"`
	Package string `help:"Go package name of godefs output."`
}

func (c *Generate) Run(g *Globals, log *zap.Logger) (err error) {
	m, err := c.load(g)
	if err != nil {
		return
	}
	ret, err := c.extract(g, m, log)
	if err != nil {
		return
	}
	e, err := emit.New(c.Format, &emit.Options{Package: c.Package, Logger: log})
	if err != nil {
		return
	}
	var b bytes.Buffer
	if err = e.Emit(&b, ret); err != nil {
		return
	}
	log.Info("generated", zap.String("manifest", m.Name), zap.String("format", c.Format), zap.Int("decls", len(ret.Bindings)))
	if c.Output == "" {
		_, err = g.stdout().Write(b.Bytes())
		return
	}
	if err = os.WriteFile(c.Output, b.Bytes(), 0644); err != nil {
		err = errors.NewWith(err, `os.WriteFile(c.Output, b.Bytes(), 0644)`, -2, "os.WriteFile", c.Output, b.Bytes(), 0644)
	}
	return
}

// -----------------------------------------------------------------------------

// Check resolves a manifest and lists every declaration that failed.
type Check struct {
	ManifestArg
}

func (c *Check) Run(g *Globals, log *zap.Logger) error {
	m, err := c.load(g)
	if err != nil {
		return err
	}
	out := g.stdout()
	if _, err = c.extract(g, m, log); err != nil {
		errs := multierr.Errors(err)
		for _, e := range errs {
			fmt.Fprintln(out, e)
		}
		return fmt.Errorf("%s: %d of %d declarations failed", m.Name, len(errs), len(m.Decls))
	}
	fmt.Fprintf(out, "%s: %d declarations ok\n", m.Name, len(m.Decls))
	return nil
}

// -----------------------------------------------------------------------------

// Probe prints the environment source and the constant probe of a
// manifest, as handed to the compiler.
type Probe struct {
	ManifestArg
}

func (c *Probe) Run(g *Globals) error {
	m, err := c.load(g)
	if err != nil {
		return err
	}
	var consts []string
	for _, e := range m.Decls {
		if e.Kind == manifest.Constant {
			consts = append(consts, e.Name)
		}
	}
	out := g.stdout()
	for _, src := range []*cdecl.Source{cdecl.EnvSource(m), cdecl.ProbeSource(m, consts)} {
		fmt.Fprintf(out, "// %s\n", src.Name)
		out.Write(src.Code)
		io.WriteString(out, "\n")
	}
	return nil
}

// -----------------------------------------------------------------------------

// Builtin prints the built-in POSIX manifest.
type Builtin struct {
	Format string `short:"F" help:"Manifest format." enum:"json,yaml,toml,c" default:"c"`
}

func (c *Builtin) Run(g *Globals) error {
	b, err := manifest.Marshal(manifest.Format(c.Format), manifest.POSIX())
	if err != nil {
		return err
	}
	_, err = g.stdout().Write(b)
	return err
}
