package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/stereo/internal/catalog"
	"github.com/desertthunder/stereo/internal/models"
	"github.com/desertthunder/stereo/internal/shared"
)

func statsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "stats",
		Usage: "Show collection statistics",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
			},
			&cli.StringFlag{
				Name:  "collection",
				Usage: "Collection file to inspect (defaults to the configured one)",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print JSON output",
			},
		},
		Action: r.Stats,
	}
}

// Stats prints a JSON summary of a collection file.
func (r *Runner) Stats(ctx context.Context, cmd *cli.Command) error {
	config, err := r.loadConfig(cmd.String("config"))
	if err != nil {
		return err
	}

	path := cmd.String("collection")
	if path == "" {
		path = config.DefaultCollectionPath()
	}
	path = shared.ExpandPath(path)

	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("%w: %s", shared.ErrNoCollection, path)
	}
	if !catalog.ValidateSchema(ctx, path) {
		return fmt.Errorf("%w: %s", shared.ErrCollectionInvalid, path)
	}

	store := catalog.NewStore(path)
	store.SetPool(config.Storage.MaxOpenConns, config.Storage.MaxIdleConns)
	size, err := store.Count(ctx, nil)
	if err != nil {
		return err
	}
	rated, err := store.Count(ctx, models.FilterModel{
		"rating": {Type: models.FilterNotBlank},
	})
	if err != nil {
		return err
	}

	return r.writeJSON(map[string]any{
		"path":   path,
		"tracks": size,
		"rated":  rated,
	}, cmd.Bool("pretty"))
}
