/*
Copyright © 2023 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func RootApp() *cli.App {
	return &cli.App{
		Name:  "shortloop",
		Usage: "A looping wall of YouTube shorts",
		Description: `Serves a static page that plays a sequence of YouTube shorts,
		with the playback source selected via URL parameters, and ships a
		scraper that turns a channel's shorts listing into a JSON feed file.

		Flags can generally be set via environment variables, e.g.:

		--port => SHORTLOOP_PORT=3000
		--config => SHORTLOOP_CONFIG=shortloop.toml
		`,
		Commands: []*cli.Command{
			serveCmd(),
			scrapeCmd(),
			resolveCmd(),
			mirrorCmd(),
		},
		Action: func(ctx *cli.Context) error {
			// Show help if no command is specified
			return ctx.App.Run([]string{"", "help"})
		},
	}
}

func Execute() {
	if err := RootApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
