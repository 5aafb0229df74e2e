package main

import (
	"fmt"
	"os"

	"procnet-exporter/internal/app"
	"procnet-exporter/internal/config"
)

var (
	// version is meant to be overridden at build time via -ldflags.
	version = "dev"
)

func main() {
	cfg, err := config.Parse(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		config.Usage(os.Stderr)
		os.Exit(app.ExitUsage)
	}

	os.Exit(app.Run(cfg, version))
}
