package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	detailuc "github.com/kailas-cloud/dinefind/internal/usecase/detail"
)

func detailCommand() *cli.Command {
	return &cli.Command{
		Name:      "detail",
		Usage:     "Show the detail record of a restaurant",
		ArgsUsage: "<restaurant-id>",
		Action: func(ctx context.Context, c *cli.Command) error {
			if c.Args().Len() != 1 {
				return errors.New("usage: dinefind detail <restaurant-id>")
			}
			id, err := strconv.ParseInt(c.Args().First(), 10, 64)
			if err != nil {
				return fmt.Errorf("restaurant id %q is not a number", c.Args().First())
			}

			d, err := newDeps(c)
			if err != nil {
				return err
			}
			defer d.close()

			rec, err := detailuc.New(d.backend).Get(ctx, id)
			if err != nil {
				d.logger.Debug("Detail fetch failed", zap.Int64("restaurant_id", id), zap.Error(err))
				return errors.New(detailuc.Message(err))
			}
			fmt.Println(renderDetail(&rec))
			return nil
		},
	}
}
