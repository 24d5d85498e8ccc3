// Package config handles configuration loading and shared data structures.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/woozymasta/mapgrid/internal/geo"
	"github.com/woozymasta/mapgrid/internal/overlay"
	"github.com/woozymasta/mapgrid/internal/projection"

	"github.com/BurntSushi/toml"
	"github.com/paulmach/orb"
	"gopkg.in/yaml.v3"
)

// Config represents the root configuration file structure.
type Config struct {
	View         View            `yaml:"view" json:"view" toml:"view"`
	Options      overlay.Options `yaml:"options" json:"options" toml:"options"`
	Style        overlay.Style   `yaml:"style,omitempty" json:"style,omitempty" toml:"style"`
	Measurements []Measurement   `yaml:"measurements,omitempty" json:"measurements,omitempty" toml:"measurements"`

	// Places are named points usable as measurement endpoints. PlacesSource
	// adds the named Point features of a GeoJSON file or URL.
	Places       []Place `yaml:"places,omitempty" json:"places,omitempty" toml:"places"`
	PlacesSource string  `yaml:"places_source,omitempty" json:"places_source,omitempty" toml:"places_source"`

	RateLimit RateLimit `yaml:"rate_limit" json:"rate_limit" toml:"rate_limit"`
	Tiles     Tiles     `yaml:"tiles" json:"tiles" toml:"tiles"`
}

// View is the initial map view.
type View struct {
	Center   []float64 `yaml:"center" json:"center" toml:"center"`
	Zoom     float64   `yaml:"zoom" json:"zoom" toml:"zoom"`
	Width    float64   `yaml:"width" json:"width" toml:"width"`
	Height   float64   `yaml:"height" json:"height" toml:"height"`
	TileSize float64   `yaml:"tile_size,omitempty" json:"tile_size,omitempty" toml:"tile_size"`
}

// Measurement is a named distance measurement. From and To are either
// "lon,lat" pairs or place names.
type Measurement struct {
	Name string `yaml:"name,omitempty" json:"name,omitempty" toml:"name"`
	From string `yaml:"from" json:"from" toml:"from"`
	To   string `yaml:"to" json:"to" toml:"to"`
}

// Place is a named point.
type Place struct {
	Name string  `yaml:"name" json:"name" toml:"name"`
	Lon  float64 `yaml:"lon" json:"lon" toml:"lon"`
	Lat  float64 `yaml:"lat" json:"lat" toml:"lat"`
}

// RateLimit limits the API requests per client address.
type RateLimit struct {
	RPS   float64 `yaml:"rps" json:"rps" toml:"rps"`
	Burst int     `yaml:"burst" json:"burst" toml:"burst"`
}

// Tiles controls overlay tile rendering.
type Tiles struct {
	BaseDir  string    `yaml:"base_dir" json:"base_dir" toml:"base_dir"`
	MinZoom  int       `yaml:"min_zoom" json:"min_zoom" toml:"min_zoom"`
	MaxZoom  int       `yaml:"max_zoom" json:"max_zoom" toml:"max_zoom"`
	TileSize int       `yaml:"tile_size" json:"tile_size" toml:"tile_size"`
	Quality  float32   `yaml:"quality" json:"quality" toml:"quality"`
	Bound    []float64 `yaml:"bound,omitempty" json:"bound,omitempty" toml:"bound"` // west, south, east, north
}

// Default returns the configuration used for every value the file omits.
func Default() Config {
	return Config{
		View: View{
			Center:   []float64{10, 25},
			Zoom:     3,
			Width:    1024,
			Height:   768,
			TileSize: projection.DefaultTileSize,
		},
		Options:   overlay.DefaultOptions(),
		RateLimit: RateLimit{RPS: 10, Burst: 20},
		Tiles: Tiles{
			BaseDir:  "tiles",
			MinZoom:  0,
			MaxZoom:  6,
			TileSize: 256,
			Quality:  85,
		},
	}
}

// Load reads and parses the configuration file from the specified path.
// Files with the .toml extension are read as TOML, anything else as YAML.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	} else {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", path, err)
	}

	return &cfg, nil
}

// Validate checks the values that cannot be fixed by clamping.
func (c *Config) Validate() error {
	var errs []error

	if len(c.View.Center) != 2 {
		errs = append(errs, fmt.Errorf("view.center must be [lon, lat], got %v", c.View.Center))
	}
	if c.View.Width <= 0 || c.View.Height <= 0 {
		errs = append(errs, fmt.Errorf("view size must be positive, got %vx%v", c.View.Width, c.View.Height))
	}
	if c.RateLimit.RPS < 0 || c.RateLimit.Burst < 0 {
		errs = append(errs, errors.New("rate_limit values must not be negative"))
	}
	if c.Tiles.MinZoom < 0 || c.Tiles.MaxZoom < c.Tiles.MinZoom || c.Tiles.MaxZoom > int(projection.MaxZoom) {
		errs = append(errs, fmt.Errorf("tiles zoom range %d..%d is invalid", c.Tiles.MinZoom, c.Tiles.MaxZoom))
	}
	if len(c.Tiles.Bound) != 0 && len(c.Tiles.Bound) != 4 {
		errs = append(errs, fmt.Errorf("tiles.bound must be [west, south, east, north], got %v", c.Tiles.Bound))
	}
	for i, m := range c.Measurements {
		if m.From == "" || m.To == "" {
			errs = append(errs, fmt.Errorf("measurement %d (%s) needs both endpoints", i, m.Name))
		}
	}
	for i, p := range c.Places {
		if p.Name == "" {
			errs = append(errs, fmt.Errorf("place %d has no name", i))
		}
	}

	return errors.Join(errs...)
}

// Viewport returns the configured view with its centre and zoom clamped.
func (v View) Viewport() projection.Viewport {
	var center orb.Point
	if len(v.Center) == 2 {
		center = orb.Point{v.Center[0], v.Center[1]}
	}

	vp := projection.NewViewport(center, v.Zoom, v.Width, v.Height)
	if v.TileSize > 0 {
		vp.TileSize = v.TileSize
	}
	return vp
}

// TileBound returns the area to render tiles for; the whole Web Mercator
// world when no bound is configured.
func (t Tiles) TileBound() orb.Bound {
	if len(t.Bound) != 4 {
		return orb.Bound{Min: orb.Point{-180, -geo.MaxLatitude}, Max: orb.Point{180, geo.MaxLatitude}}
	}
	return orb.Bound{
		Min: orb.Point{t.Bound[0], t.Bound[1]},
		Max: orb.Point{t.Bound[2], t.Bound[3]},
	}
}
