/*
Copyright © 2023 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	"shortloop/mirror"
)

func mirrorCmd() *cli.Command {
	return &cli.Command{
		Name:  "mirror",
		Usage: "Capture a site snapshot into a servable local tree",
		Description: `Crawls a site breadth-first from a start URL, downloading pages and
their tag assets into a local directory tree with references rewritten to
relative paths. Iframes and preconnect hints are stripped so the snapshot
never reaches back to the network.

Individual page and asset failures are logged and skipped; the crawl keeps
going. Point the serve command's mirror_dir config key (or --mirror-dir) at
the output directory to serve the snapshot under /mirror.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "url",
				Usage:    "Start URL of the crawl",
				Required: true,
				EnvVars:  []string{"SHORTLOOP_MIRROR_URL"},
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Value:   "site",
				Usage:   "Directory to write the snapshot tree under",
				EnvVars: []string{"SHORTLOOP_MIRROR_OUTPUT"},
			},
			&cli.IntFlag{
				Name:    "max-pages",
				Value:   30,
				Usage:   "Maximum number of pages to fetch",
				EnvVars: []string{"SHORTLOOP_MIRROR_MAX_PAGES"},
			},
			&cli.StringFlag{
				Name:    "follow-prefix",
				Usage:   "Only crawl same-site links whose path starts with this prefix",
				EnvVars: []string{"SHORTLOOP_MIRROR_FOLLOW_PREFIX"},
			},
			&cli.StringSliceFlag{
				Name:    "localize-host",
				Usage:   "Also localize style and meta URLs on this host (repeatable)",
				EnvVars: []string{"SHORTLOOP_MIRROR_LOCALIZE_HOSTS"},
			},
			&cli.DurationFlag{
				Name:    "timeout",
				Value:   30 * time.Second,
				Usage:   "HTTP timeout per fetch",
				EnvVars: []string{"SHORTLOOP_MIRROR_TIMEOUT"},
			},
		},
		Action: func(ctx *cli.Context) error {
			m := mirror.New(ctx.Duration("timeout"), ctx.String("output"))
			m.MaxPages = ctx.Int("max-pages")
			m.FollowPrefix = ctx.String("follow-prefix")
			m.LocalizeHosts = ctx.StringSlice("localize-host")

			pages, err := m.Run(ctx.Context, ctx.String("url"))
			if err != nil {
				return cli.Exit(fmt.Sprintf("mirror failed: %v", err), 1)
			}

			fmt.Printf("Mirrored %d pages to %s\n", pages, ctx.String("output"))
			return nil
		},
	}
}
