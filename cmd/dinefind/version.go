package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/kailas-cloud/dinefind/internal/version"
)

func versionCommand() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Show version information",
		Action: func(ctx context.Context, c *cli.Command) error {
			fmt.Println("dinefind " + version.String())
			return nil
		},
	}
}
