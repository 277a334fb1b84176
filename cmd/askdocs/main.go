// cmd/askdocs/main.go
package main

import (
	cmd "github.com/askdocs/askdocs/internal/commands"
)

// Populated at build time via -ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	cmd.SetVersionInfo(version, commit, date)
	cmd.Execute()
}
