// Command simal compiles SiMAL source files to JSON and provides
// watch, serve, language server, and history tooling around that core.
package main

import (
	"os"

	"github.com/simal-lang/simal/internal/cli/commands"
)

// Version information, set at build time via -ldflags.
var (
	version   = "dev"
	gitCommit = "unknown"
	buildDate = "unknown"
	goVersion = "unknown"
)

func main() {
	commands.Version = version
	commands.GitCommit = gitCommit
	commands.BuildDate = buildDate
	commands.GoVersion = goVersion

	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
