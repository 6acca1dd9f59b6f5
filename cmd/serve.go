/*
Copyright © 2023 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"shortloop/config"
	"shortloop/resolver"
	"shortloop/server"
)

func serveCmd() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the shorts player page and feed API",
		Description: `Starts the shortloop HTTP server.

Serves the embedded player page and the /api/feed endpoint that resolves a
playback queue from the request's query parameters. Resolution failures never
surface to the page: the endpoint always answers with a renderable feed, empty
at worst.`,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Value:   3000,
				Usage:   "Port to listen on",
				EnvVars: []string{"SHORTLOOP_PORT"},
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to shortloop configuration file (built-in defaults when omitted)",
				EnvVars: []string{"SHORTLOOP_CONFIG"},
			},
			&cli.StringFlag{
				Name:    "mirror-dir",
				Usage:   "Serve a captured site snapshot from this directory under /mirror",
				EnvVars: []string{"SHORTLOOP_MIRROR_DIR"},
			},
		},
		Action: func(ctx *cli.Context) error {
			cfg, err := loadConfig(ctx.String("config"))
			if err != nil {
				return err
			}
			if dir := ctx.String("mirror-dir"); dir != "" {
				cfg.MirrorDir = dir
			}

			app := server.Server(&server.ServerConfig{
				Config:   cfg,
				Resolver: resolver.New(cfg),
			})

			// Graceful shutdown
			c := make(chan os.Signal, 1)
			signal.Notify(c, os.Interrupt)
			go func() {
				<-c
				fmt.Println("Gracefully shutting down...")
				if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
					log.Errorf("Shutdown failed: %v", err)
				}
			}()

			fmt.Println("Starting server...")
			return app.Listen(fmt.Sprintf(":%d", ctx.Int("port")))
		},
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.LoadConfig(path)
}
