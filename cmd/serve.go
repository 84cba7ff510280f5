package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/stereo/internal/catalog"
	"github.com/desertthunder/stereo/internal/server"
	"github.com/desertthunder/stereo/internal/shared"
)

func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the websocket backend",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
			},
			&cli.StringFlag{
				Name:  "host",
				Usage: "Listen host (overrides config)",
			},
			&cli.IntFlag{
				Name:  "port",
				Usage: "Listen port (overrides config)",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Log request and frame details",
			},
		},
		Action: r.Serve,
	}
}

// Serve runs the backend until interrupted.
//
// The default collection file is created on startup so fresh installs have
// something to connect to.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	config, err := r.loadConfig(cmd.String("config"))
	if err != nil {
		return err
	}
	if host := cmd.String("host"); host != "" {
		config.Server.Host = host
	}
	if port := cmd.Int("port"); port != 0 {
		config.Server.Port = int(port)
	}
	if cmd.Bool("verbose") {
		shared.SetLogLevel(r.logger, log.DebugLevel)
	}

	store := catalog.NewStore(config.DefaultCollectionPath())
	store.SetPool(config.Storage.MaxOpenConns, config.Storage.MaxIdleConns)
	if err := store.Init(ctx); err != nil {
		return err
	}
	r.logger.Info("default collection ready", "path", store.Path())

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := server.New(config, r.provider, version, r.logger)
	return srv.Serve(ctx)
}
