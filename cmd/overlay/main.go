package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"os"
	"time"

	"github.com/woozymasta/mapgrid/internal/config"
	"github.com/woozymasta/mapgrid/internal/geo"
	"github.com/woozymasta/mapgrid/internal/logger"
	"github.com/woozymasta/mapgrid/internal/overlay"
	"github.com/woozymasta/mapgrid/internal/processor"

	"github.com/jessevdk/go-flags"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

type Options struct {
	Logger logger.Logger `group:"Logger options"`

	ConfigFile  string   `short:"c" long:"config"      env:"CONFIG_FILE" description:"Path to configuration file (defaults are used when empty)"`
	Format      string   `short:"f" long:"format"      description:"Output format" choice:"svg" choice:"webp" choice:"json" choice:"yaml" choice:"geojson" default:"svg"`
	Output      string   `short:"o" long:"out"         description:"Output file path. Writes to stdout if empty"`
	Minify      bool     `short:"m" long:"minify"      description:"Minify SVG output"`
	From        string   `long:"from"                  description:"Ad-hoc measurement start (lon,lat or place name)"`
	To          string   `long:"to"                    description:"Ad-hoc measurement end (lon,lat or place name)"`
	Miles       bool     `long:"miles"                 description:"Show distances in miles"`
	Center      string   `long:"center"                description:"View centre as lon,lat (overrides config)"`
	Zoom        *float64 `short:"z" long:"zoom"        description:"View zoom (overrides config)"`
	Width       float64  `short:"W" long:"width"       description:"View width in pixels (overrides config)"`
	Height      float64  `short:"H" long:"height"      description:"View height in pixels (overrides config)"`
	Quality     float32  `short:"q" long:"quality"     description:"WebP quality, 100 is lossless" default:"85"`
	Supersample int      `short:"s" long:"supersample" description:"WebP supersampling factor" default:"2"`
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

	cfg := config.Default()
	if opts.ConfigFile != "" {
		loaded, err := config.Load(opts.ConfigFile)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to load configuration")
		}
		cfg = *loaded
	}

	if opts.Center != "" {
		c, err := geo.ParseLonLat(opts.Center)
		if err != nil {
			log.Fatal().Err(err).Msg("Invalid --center")
		}
		cfg.View.Center = []float64{c.Lon(), c.Lat()}
	}
	if opts.Zoom != nil {
		cfg.View.Zoom = *opts.Zoom
	}
	if opts.Width > 0 {
		cfg.View.Width = opts.Width
	}
	if opts.Height > 0 {
		cfg.View.Height = opts.Height
	}
	if opts.Miles {
		cfg.Options.UseMiles = true
	}
	if opts.From != "" || opts.To != "" {
		cfg.Measurements = append(cfg.Measurements, config.Measurement{From: opts.From, To: opts.To})
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid options")
	}

	client := &http.Client{Timeout: 15 * time.Second}
	places, err := processor.LoadPlaces(client, cfg.Places, cfg.PlacesSource)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load places")
	}
	measurements, err := places.Measurements(cfg.Measurements)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to resolve measurements")
	}

	scene, err := overlay.Compose(cfg.View.Viewport(), cfg.Options, measurements...)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to compose overlay")
	}

	data, err := encode(scene, cfg.Style, opts)
	if err != nil {
		log.Fatal().Err(err).Str("format", opts.Format).Msg("Failed to encode overlay")
	}

	if opts.Output == "" {
		if _, err := os.Stdout.Write(data); err != nil {
			log.Fatal().Err(err).Msg("Failed to write output")
		}
		return
	}

	if err := os.WriteFile(opts.Output, data, 0644); err != nil {
		log.Fatal().Err(err).Msg("Failed to write output file")
	}

	log.Info().
		Str("path", opts.Output).
		Str("format", opts.Format).
		Int("bytes", len(data)).
		Int("measurements", len(scene.Measurements)).
		Msg("Overlay written")
}

func encode(scene overlay.Scene, style overlay.Style, opts Options) ([]byte, error) {
	switch opts.Format {
	case "webp":
		var buf bytes.Buffer
		img := overlay.RenderImage(scene, overlay.DefaultPalette, opts.Supersample)
		if err := overlay.WriteWebP(&buf, img, opts.Quality); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil

	case "json":
		return json.MarshalIndent(scene, "", "  ")

	case "yaml":
		return yaml.Marshal(scene)

	case "geojson":
		return json.MarshalIndent(overlay.GeoJSON(scene), "", "  ")

	default:
		doc := overlay.RenderSVG(scene, style)
		if opts.Minify {
			return overlay.MinifySVG(doc)
		}
		return doc, nil
	}
}
