// Package main is the single-binary entrypoint for HealthSync.
package main

import "github.com/healthsync-app/healthsync/internal/cli"

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	cli.Execute(version)
}
