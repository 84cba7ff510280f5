package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/stereo/internal/shared"
)

func playCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "play",
		Usage:     "Tell connected clients to play a track",
		ArgsUsage: "<yt_id>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
			},
		},
		Action: r.Play,
	}
}

// Play asks a running backend to broadcast a play-id event, so media keys
// and scripts can drive whichever client is open.
func (r *Runner) Play(ctx context.Context, cmd *cli.Command) error {
	ytID := cmd.Args().First()
	if ytID == "" {
		return fmt.Errorf("%w: yt_id", shared.ErrMissingArgument)
	}

	config, err := r.loadConfig(cmd.String("config"))
	if err != nil {
		return err
	}

	playURL := fmt.Sprintf("http://%s:%d/play/%s", config.Server.Host, config.Server.Port, ytID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, playURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("is the backend running? %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("backend returned status %d", resp.StatusCode)
	}

	var result struct {
		Delivered int `json:"delivered"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return r.writePlain("sent play request for %s to %d client(s)\n", ytID, result.Delivered)
}
