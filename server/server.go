package server

import (
	"embed"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cache"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/filesystem"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	log "github.com/sirupsen/logrus"

	"shortloop/config"
	"shortloop/models"
	"shortloop/resolver"
)

//go:embed assets/*
var assets embed.FS

// Parameter aliases accepted by the player page. First present wins.
var (
	sourceParams     = []string{"shorts", "source", "src", "channel", "url"}
	backgroundParams = []string{"bg", "background", "colour", "color"}
	keyParams        = []string{"ytKey", "key", "apikey"}
)

type ServerConfig struct {
	Config   *config.Config
	Resolver *resolver.Resolver
}

func firstQuery(c *fiber.Ctx, names []string) string {
	for _, name := range names {
		if v := c.Query(name); v != "" {
			return v
		}
	}
	return ""
}

// Server returns a fiber.App serving the player page and the feed API.
func Server(cfg *ServerConfig) *fiber.App {
	app := fiber.New()

	// Middleware to track the latency of each request
	app.Use(func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		stop := time.Now()

		log.WithFields(log.Fields{
			"method":  c.Method(),
			"route":   c.Route().Path,
			"latency": stop.Sub(start),
		}).Info("Request")
		return err
	})

	app.Use(requestid.New(requestid.ConfigDefault))
	app.Use(compress.New())

	// Resolved queues are stable for a short window; key by full URI so every
	// source/background/key combination caches separately.
	app.Use(cache.New(cache.Config{
		Expiration: time.Minute,
		Next: func(c *fiber.Ctx) bool {
			if c.Method() != fiber.MethodGet {
				return true
			}
			return c.Path() != "/api/feed"
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.Request().URI().String()
		},
	}))

	app.Get("/api/feed", func(c *fiber.Ctx) error {
		token := firstQuery(c, sourceParams)
		apiKey := firstQuery(c, keyParams)

		// Every failure inside Queue degrades to an empty queue, so the
		// page always gets a renderable 200.
		videos, background := cfg.Resolver.Queue(c.Context(), token, apiKey)
		background = resolver.NormalizeBackground(firstQuery(c, backgroundParams), background)

		log.WithFields(log.Fields{
			"source": token,
			"count":  len(videos),
			"keyed":  apiKey != "",
		}).Info("Resolved playback queue")

		return c.JSON(models.FeedResponse{Videos: videos, Background: background})
	})

	// Serve a captured site snapshot, when one is configured
	if cfg.Config.MirrorDir != "" {
		app.Static("/mirror", cfg.Config.MirrorDir, fiber.Static{
			Browse: false,
			Index:  "index.html",
		})
	}

	// Serve the player page
	app.Use("/", filesystem.New(filesystem.Config{
		Browse:     false,
		Index:      "index.html",
		Root:       http.FS(assets),
		PathPrefix: "/assets",
	}))

	return app
}
