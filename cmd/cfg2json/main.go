package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"sort"
	"time"

	"github.com/woozymasta/mapgrid/internal/config"
	"github.com/woozymasta/mapgrid/internal/geo"
	"github.com/woozymasta/mapgrid/internal/processor"

	"github.com/BurntSushi/toml"
	"github.com/jessevdk/go-flags"
	"gopkg.in/yaml.v3"
)

type Options struct {
	Input  string `short:"i" long:"in"     description:"Configuration file (.yaml or .toml)" default:"config.yaml"`
	Output string `short:"o" long:"out"    description:"Output file path. Writes to stdout if empty"`
	Format string `short:"f" long:"format" description:"Output format" choice:"json" choice:"yaml" choice:"toml" default:"json"`
	Places bool   `short:"p" long:"places" description:"Write the resolved places as a GeoJSON feature collection instead"`
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

	cfg, err := config.Load(opts.Input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading configuration: %v\n", err)
		os.Exit(1)
	}

	var v interface{} = cfg
	count := len(cfg.Measurements)
	if opts.Places {
		client := &http.Client{Timeout: 15 * time.Second}
		places, err := processor.LoadPlaces(client, cfg.Places, cfg.PlacesSource)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading places: %v\n", err)
			os.Exit(1)
		}

		names := make([]string, 0, len(places))
		for name := range places {
			names = append(names, name)
		}
		sort.Strings(names)

		fc := geo.NewFeatureCollection()
		for _, name := range names {
			fc.Features = append(fc.Features, geo.NewPointFeature(places[name], map[string]interface{}{"name": name}))
		}
		v, count = fc, len(names)
	}

	// marshal
	var outputData []byte
	switch opts.Format {
	case "yaml":
		outputData, err = yaml.Marshal(v)
	case "toml":
		var buf bytes.Buffer
		err = toml.NewEncoder(&buf).Encode(v)
		outputData = buf.Bytes()
	default:
		outputData, err = json.MarshalIndent(v, "", "  ")
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error marshaling data: %v\n", err)
		os.Exit(1)
	}

	if opts.Output != "" {
		err = os.WriteFile(opts.Output, outputData, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error writing output file: %v\n", err)
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "Successfully converted %d entries to %s (format: %s)\n", count, opts.Output, opts.Format)
	} else {
		fmt.Println(string(outputData))
	}
}
