package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/woozymasta/mapgrid/internal/config"
	"github.com/woozymasta/mapgrid/internal/logger"
	"github.com/woozymasta/mapgrid/internal/processor"
	"github.com/woozymasta/mapgrid/internal/server"

	"github.com/jessevdk/go-flags"
	"github.com/rs/zerolog/log"
)

type Options struct {
	Logger logger.Logger `group:"Logger options"`

	ConfigFile string  `short:"c" long:"config"   env:"CONFIG_FILE"    description:"Path to configuration file" default:"config.yaml"`
	Addr       string  `short:"a" long:"addr"     env:"LISTEN_ADDRESS" description:"Address to listen on"       default:"0.0.0.0"`
	Port       int     `short:"p" long:"port"     env:"LISTEN_PORT"    description:"Port to listen on"          default:"8080"`
	Tiles      string  `short:"t" long:"tiles"    env:"TILES_DIR"      description:"Pre-rendered tiles directory (overrides config)"`
	RPS        float64 `short:"r" long:"rps"      env:"RATE_LIMIT_RPS" description:"API requests per second per client (overrides config)"`
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

	// Setup Logging
	opts.Logger.Setup()

	// Load Config
	cfg, err := config.Load(opts.ConfigFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	if opts.Tiles != "" {
		cfg.Tiles.BaseDir = opts.Tiles
	}
	if opts.RPS > 0 {
		cfg.RateLimit.RPS = opts.RPS
	}

	client := &http.Client{Timeout: 15 * time.Second}
	places, err := processor.LoadPlaces(client, cfg.Places, cfg.PlacesSource)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load places")
	}

	srvCtx, err := server.NewServerContext(cfg, places)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize server")
	}

	listenAddr := fmt.Sprintf("%s:%d", opts.Addr, opts.Port)
	srv := &http.Server{
		Addr:              listenAddr,
		Handler:           srvCtx.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	log.Info().
		Str("addr", listenAddr).
		Int("measurements_loaded", len(srvCtx.Measurements)).
		Float64("rate_limit_rps", cfg.RateLimit.RPS).
		Str("tiles_dir", cfg.Tiles.BaseDir).
		Msg("Web server started")

	if err := srv.ListenAndServe(); err != nil {
		log.Fatal().Err(err).Msg("Server failed")
	}
}
