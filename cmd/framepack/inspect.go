package main

import (
	"fmt"
	"path/filepath"

	"github.com/ideamans/go-l10n"
	"github.com/urfave/cli/v2"

	"github.com/user/framepack/pkg/adapters/osfilesystem"
	"github.com/user/framepack/pkg/container"
	"github.com/user/framepack/pkg/ports"
)

func inspectCommand() *cli.Command {
	return &cli.Command{
		Name:      "inspect",
		Usage:     l10n.T("Verify an artifact and optionally extract its frames"),
		ArgsUsage: "[dir]",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "list", Usage: l10n.T("Print the size of every frame")},
			&cli.StringFlag{Name: "extract", Usage: l10n.T("Write each frame as a JPEG file into this directory")},
			&cli.StringFlag{Name: "log-level", Aliases: []string{"l"}, Value: "info", Usage: l10n.T("Log level (debug, info, warn, error)")},
			&cli.BoolFlag{Name: "quiet", Aliases: []string{"Q"}, Usage: l10n.T("Suppress all log output")},
		},
		Action: runInspect,
	}
}

func runInspect(c *cli.Context) error {
	dir := c.Args().First()
	if dir == "" {
		dir = "data"
	}
	log := newLogger(c.Bool("quiet"), c.String("log-level"))
	fs := osfilesystem.New()

	report, err := container.Inspect(fs, dir)
	if err != nil {
		return cli.Exit(l10n.F("Inspection failed: %s", err), 1)
	}
	if err := report.Verify(); err != nil {
		return cli.Exit(l10n.F("Inspection failed: %s", err), 1)
	}
	log.Info("%d frames, %d payload bytes", report.Metadata.FrameCount(), report.Metadata.PayloadBytes())

	if c.Bool("list") {
		offsets := report.Metadata.Offsets()
		for i, size := range report.Metadata.Sizes {
			fmt.Fprintf(c.App.Writer, "%6d  %10d  %10d\n", i, offsets[i], size)
		}
	}

	if out := c.String("extract"); out != "" {
		n, err := extractFrames(fs, dir, out)
		if err != nil {
			return cli.Exit(l10n.F("Inspection failed: %s", err), 1)
		}
		log.Info("Extracted %d frames to %s", n, out)
	}
	return nil
}

// extractFrames writes every frame of the artifact in dir to
// out/frame-NNNN.jpg.
func extractFrames(fs ports.FileSystem, dir, out string) (int, error) {
	if err := fs.MkdirAll(out); err != nil {
		return 0, err
	}
	n := 0
	err := container.Split(fs, dir, func(index int, data []byte) error {
		n++
		return fs.WriteFile(filepath.Join(out, fmt.Sprintf("frame-%04d.jpg", index)), data)
	})
	return n, err
}
