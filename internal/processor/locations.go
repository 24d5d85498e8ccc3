// Package processor resolves measurement endpoints and pre-renders
// overlay tiles.
package processor

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/woozymasta/mapgrid/internal/config"
	"github.com/woozymasta/mapgrid/internal/geo"
	"github.com/woozymasta/mapgrid/internal/overlay"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/rs/zerolog/log"
)

// ErrUnknownPlace is returned when an endpoint is neither a coordinate
// pair nor a known place name.
var ErrUnknownPlace = errors.New("unknown place")

// Places maps lower-cased names to points.
type Places map[string]orb.Point

// LoadPlaces merges the inline places with the named Point features read
// from source, a GeoJSON file path or http(s) URL. Inline places win.
func LoadPlaces(client *http.Client, inline []config.Place, source string) (Places, error) {
	places := make(Places, len(inline))

	if source != "" {
		log.Info().Str("source", source).Msg("Processing places")

		fc, err := fetchFeatures(client, source)
		if err != nil {
			return nil, fmt.Errorf("places %s: %w", source, err)
		}

		for _, f := range fc.Features {
			pt, ok := f.Geometry.(orb.Point)
			if !ok {
				continue
			}
			name := f.Properties.MustString("name", "")
			if name == "" {
				log.Trace().Msg("Place without name skipped")
				continue
			}
			places[strings.ToLower(name)] = pt
		}
	}

	for _, p := range inline {
		places[strings.ToLower(p.Name)] = orb.Point{p.Lon, p.Lat}
	}

	log.Debug().Int("count", len(places)).Msg("Places loaded")
	return places, nil
}

// fetchFeatures reads a feature collection from disk or over HTTP.
func fetchFeatures(client *http.Client, source string) (*geojson.FeatureCollection, error) {
	var data []byte
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		if client == nil {
			client = http.DefaultClient
		}
		resp, err := client.Get(source)
		if err != nil {
			return nil, err
		}
		// Explicitly ignore close error as it's a read-only operation
		defer func() { _ = resp.Body.Close() }()

		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("status %d", resp.StatusCode)
		}
		if data, err = io.ReadAll(resp.Body); err != nil {
			return nil, err
		}
	} else {
		var err error
		if data, err = os.ReadFile(source); err != nil {
			return nil, err
		}
	}

	return geojson.UnmarshalFeatureCollection(data)
}

// Resolve turns "lon,lat" or a place name into a point.
func (p Places) Resolve(s string) (orb.Point, error) {
	if pt, err := geo.ParseLonLat(s); err == nil {
		return pt, nil
	}

	if pt, ok := p[strings.ToLower(strings.TrimSpace(s))]; ok {
		return pt, nil
	}

	return orb.Point{}, fmt.Errorf("%w: %q", ErrUnknownPlace, s)
}

// Measurements resolves the configured measurements into finished ones.
func (p Places) Measurements(defs []config.Measurement) ([]overlay.Measurement, error) {
	out := make([]overlay.Measurement, 0, len(defs))
	for i, d := range defs {
		from, err := p.Resolve(d.From)
		if err != nil {
			return nil, fmt.Errorf("measurement %d from: %w", i, err)
		}
		to, err := p.Resolve(d.To)
		if err != nil {
			return nil, fmt.Errorf("measurement %d to: %w", i, err)
		}

		name := d.Name
		if name == "" {
			name = fmt.Sprintf("%s - %s", d.From, d.To)
		}

		out = append(out, overlay.Measurement{
			Name:  name,
			State: overlay.LastPointSet,
			From:  from,
			To:    to,
		})
	}

	return out, nil
}
