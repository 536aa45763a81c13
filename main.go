package main

import (
	"fmt"
	"os"

	"github.com/bitecast/bitecast-go/cmd"
	"github.com/bitecast/bitecast-go/internal/conf"
)

// version and buildDate are set at build time via ldflags.
var (
	version   = "dev"
	buildDate = "unknown"
)

func main() {
	settings, err := conf.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}
	settings.Version = version
	settings.BuildDate = buildDate

	rootCmd := cmd.RootCommand(settings)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
