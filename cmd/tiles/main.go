package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/woozymasta/mapgrid/internal/config"
	"github.com/woozymasta/mapgrid/internal/logger"
	"github.com/woozymasta/mapgrid/internal/overlay"
	"github.com/woozymasta/mapgrid/internal/processor"

	"github.com/jessevdk/go-flags"
	"github.com/rs/zerolog/log"
)

type Options struct {
	Logger logger.Logger `group:"Logger options"`

	ConfigFile   string `short:"c" long:"config"       env:"CONFIG_FILE" description:"Path to configuration file" default:"config.yaml"`
	Out          string `short:"o" long:"out"          env:"TILES_DIR"   description:"Output directory (overrides config)"`
	Concurrency  int    `short:"p" long:"concurrency"  env:"CONCURRENCY" description:"Concurrency" default:"8"`
	MinZoom      *int   `long:"min-zoom"               description:"Lowest zoom level (overrides config)"`
	MaxZoom      *int   `short:"z" long:"max-zoom"     description:"Highest zoom level (overrides config)"`
	Measurements bool   `short:"m" long:"measurements" description:"Draw the configured measurements on the tiles"`
	Force        bool   `short:"f" long:"force"        description:"Force overwrite of existing files"`
	FastCheck    bool   `short:"F" long:"fast-check"   description:"Skip processing if cache exist"`
}

func main() {
	var opts Options
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	opts.Logger.Setup()

	cfg, err := config.Load(opts.ConfigFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	if opts.Out != "" {
		cfg.Tiles.BaseDir = opts.Out
	}
	if opts.MinZoom != nil {
		cfg.Tiles.MinZoom = *opts.MinZoom
	}
	if opts.MaxZoom != nil {
		cfg.Tiles.MaxZoom = *opts.MaxZoom
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid tile options")
	}

	var measurements []overlay.Measurement
	if opts.Measurements {
		client := &http.Client{Timeout: 15 * time.Second}
		places, err := processor.LoadPlaces(client, cfg.Places, cfg.PlacesSource)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to load places")
		}
		if measurements, err = places.Measurements(cfg.Measurements); err != nil {
			log.Fatal().Err(err).Msg("Failed to resolve measurements")
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	log.Info().
		Str("dir", cfg.Tiles.BaseDir).
		Int("min_zoom", cfg.Tiles.MinZoom).
		Int("max_zoom", cfg.Tiles.MaxZoom).
		Int("measurements", len(measurements)).
		Bool("fast_check", opts.FastCheck).
		Msg("Starting tile rendering")

	stats, err := processor.ProcessTiles(ctx, processor.TileOptions{
		Tiles:       cfg.Tiles,
		Overlay:     cfg.Options,
		Concurrency: opts.Concurrency,
		Force:       opts.Force,
		FastCheck:   opts.FastCheck,
	}, measurements)
	if err != nil {
		log.Fatal().Err(err).Msg("Tile rendering interrupted")
	}
	if stats.Failed > 0 {
		log.Fatal().Int("failed", stats.Failed).Msg("Some tiles failed to render")
	}

	log.Info().Msg("Tile rendering finished successfully")
}
