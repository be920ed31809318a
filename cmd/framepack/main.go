// Package main provides the CLI entry point for framepack.
package main

import (
	"fmt"
	"os"

	"github.com/ideamans/go-l10n"
	"github.com/urfave/cli/v2"
)

var version = "dev"

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "framepack",
		Usage:   l10n.T("Pack video frames as JPEG blobs for embedded playback"),
		Version: version,
		Commands: []*cli.Command{
			convertCommand(),
			inspectCommand(),
		},
	}
}
