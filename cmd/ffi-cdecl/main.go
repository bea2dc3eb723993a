package main

import (
	"os"
	"strings"

	"github.com/goplus/ffi-cdecl/internal/cmd"
	"github.com/goplus/ffi-cdecl/internal/config"
	"github.com/goplus/ffi-cdecl/internal/log"

	"github.com/alecthomas/kong"
	kongtoml "github.com/alecthomas/kong-toml"
	kongyaml "github.com/alecthomas/kong-yaml"
)

func main() {
	jsonPaths, yamlPaths, tomlPaths := config.CandidatePaths(findUserConfig(os.Args[1:]))

	var cli cmd.CLI
	ctx := kong.Parse(&cli,
		kong.Name("ffi-cdecl"),
		kong.Description("Resolve C declarations against the system headers and emit FFI bindings."),
		kong.UsageOnError(),
		kong.Configuration(kong.JSON, jsonPaths...),
		kong.Configuration(kongyaml.Loader, yamlPaths...),
		kong.Configuration(kongtoml.Loader, tomlPaths...),
	)

	if err := log.Init(cli.LogLevel); err != nil {
		_, _ = os.Stderr.WriteString("failed to setup logger: " + err.Error() + "\n")
		os.Exit(2)
	}
	defer log.L.Sync()

	err := ctx.Run(&cli.Globals, log.L)
	ctx.FatalIfErrorf(err)
}

func findUserConfig(args []string) string {
	for i := 0; i < len(args); i++ {
		a := args[i]
		if strings.HasPrefix(a, "--config=") {
			return a[len("--config="):]
		}
		if a == "--config" && i+1 < len(args) {
			return args[i+1]
		}
	}
	return os.Getenv("FFI_CDECL_CONFIG")
}
