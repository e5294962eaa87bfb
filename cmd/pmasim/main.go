// Command pmasim runs the control-transfer engine against a simulated
// STM32 USB peripheral and prints what a host sees.
//
// Usage:
//
//	pmasim [flags] enumerate     enumerate the simulated device (default)
//	pmasim [flags] dump          print the device descriptor
//
// Flags may also come from pmasim.json, pmasim.yaml or pmasim.toml in the
// working directory or the user config directory, or from --config.
package main

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	kongtoml "github.com/alecthomas/kong-toml"
	kongyaml "github.com/alecthomas/kong-yaml"
	"golang.org/x/term"

	"github.com/ardnew/pmausb/pkg"
)

func main() {
	userCfg := findUserConfig(os.Args[1:])
	jsonPaths, yamlPaths, tomlPaths := configCandidatePaths(userCfg)

	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("pmasim"),
		kong.Description("Simulated USB full-speed device on an STM32 packet-memory peripheral"),
		kong.UsageOnError(),
		// Flags override values from configuration files.
		kong.Configuration(kong.JSON, jsonPaths...),
		kong.Configuration(kongyaml.Loader, yamlPaths...),
		kong.Configuration(kongtoml.Loader, tomlPaths...),
	)

	logger := setupLogger(cli.LogLevel, cli.LogFormat, os.Stderr)

	ctx.Bind(logger)
	ctx.BindTo(os.Stdout, (*io.Writer)(nil))

	err := ctx.Run(&cli)
	ctx.FatalIfErrorf(err)
}

// setupLogger configures the package default logger. The auto format
// writes text to a terminal and JSON otherwise.
func setupLogger(level, format string, w *os.File) *slog.Logger {
	pkg.SetLogLevel(pkg.ParseLogLevel(level))
	f := pkg.LogFormatText
	switch format {
	case "json":
		f = pkg.LogFormatJSON
	case "auto":
		if !term.IsTerminal(int(w.Fd())) {
			f = pkg.LogFormatJSON
		}
	}
	pkg.SetLogFormat(f, w)
	return pkg.Logger()
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
	if v := os.Getenv("PMASIM_CONFIG"); v != "" {
		return v
	}
	return ""
}
