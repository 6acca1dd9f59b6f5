/*
Copyright © 2023 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"shortloop/models"
	"shortloop/resolver"
)

func resolveCmd() *cli.Command {
	return &cli.Command{
		Name:  "resolve",
		Usage: "Resolve a source token to a playback queue on the command line",
		Description: `Runs the same source resolution as the /api/feed endpoint and
prints the resolved queue as a JSON object on stdout.

An empty queue is not an error: fetch failures degrade to an empty queue by
contract, the same way the player page sees them.

Prints all log messages to stderr so the output can be piped to jq or a file.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "source",
				Aliases: []string{"s"},
				Usage:   "Source token: alias, channel handle or channel URL",
				EnvVars: []string{"SHORTLOOP_SOURCE"},
			},
			&cli.StringFlag{
				Name:    "key",
				Usage:   "YouTube Data API key (switches to the API path)",
				EnvVars: []string{"SHORTLOOP_YT_KEY"},
			},
			&cli.StringFlag{
				Name:  "bg",
				Usage: "Background color override (3- or 6-digit hex)",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to shortloop configuration file",
				EnvVars: []string{"SHORTLOOP_CONFIG"},
			},
		},
		Action: func(ctx *cli.Context) error {
			// Disable logging to stdout
			log.SetOutput(os.Stderr)

			cfg, err := loadConfig(ctx.String("config"))
			if err != nil {
				return err
			}

			r := resolver.New(cfg)
			videos, background := r.Queue(ctx.Context, ctx.String("source"), ctx.String("key"))
			background = resolver.NormalizeBackground(ctx.String("bg"), background)

			out, err := json.Marshal(models.FeedResponse{Videos: videos, Background: background})
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		},
	}
}
