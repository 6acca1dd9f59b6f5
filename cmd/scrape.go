/*
Copyright © 2023 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	"shortloop/scraper"
)

func scrapeCmd() *cli.Command {
	return &cli.Command{
		Name:  "scrape",
		Usage: "Scrape a channel's shorts listing to a JSON feed file",
		Description: `Downloads the shorts tab for a channel handle, extracts the
embedded listing payload, and writes the unique video IDs with their canonical
watch URLs to a JSON feed file.

The run fails without touching the output file when the page cannot be
fetched, the payload cannot be located or parsed, or no shorts are found.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "handle",
				Usage:    "Channel handle (e.g. @EEUK)",
				Required: true,
				EnvVars:  []string{"SHORTLOOP_HANDLE"},
			},
			&cli.StringFlag{
				Name:     "output",
				Aliases:  []string{"o"},
				Usage:    "Path to write the JSON feed",
				Required: true,
				EnvVars:  []string{"SHORTLOOP_OUTPUT"},
			},
			&cli.IntFlag{
				Name:    "limit",
				Value:   50,
				Usage:   "Maximum number of shorts to record",
				EnvVars: []string{"SHORTLOOP_LIMIT"},
			},
			&cli.DurationFlag{
				Name:    "timeout",
				Value:   20 * time.Second,
				Usage:   "HTTP timeout for the page fetch",
				EnvVars: []string{"SHORTLOOP_TIMEOUT"},
			},
		},
		Action: func(ctx *cli.Context) error {
			s := scraper.New(ctx.Duration("timeout"), ctx.Int("limit"))

			entries, err := s.Scrape(ctx.Context, ctx.String("handle"))
			if err != nil {
				return cli.Exit(fmt.Sprintf("scrape failed: %v", err), 1)
			}

			if err := scraper.WriteFeed(ctx.String("output"), entries); err != nil {
				return cli.Exit(fmt.Sprintf("write failed: %v", err), 1)
			}

			fmt.Printf("Wrote %d shorts to %s\n", len(entries), ctx.String("output"))
			return nil
		},
	}
}
