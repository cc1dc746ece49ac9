package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/kailas-cloud/dinefind/internal/config"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	app := &cli.Command{
		Name:  "dinefind",
		Usage: "Restaurant discovery: search sessions over the restaurant catalog API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "env",
				Usage:   "Configuration environment (config/<env>.yaml)",
				Value:   "local",
				Sources: cli.EnvVars("ENV"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Override the configured log level (debug, info, warn, error)",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Commands: []*cli.Command{
			serveCommand(),
			searchCommand(),
			detailCommand(),
			versionCommand(),
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render(err.Error()))
		os.Exit(1)
	}
}
