// Package server handles HTTP requests and middleware.
package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"hash/fnv"
	"math"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/woozymasta/mapgrid/internal/geo"
	"github.com/woozymasta/mapgrid/internal/grid"
	"github.com/woozymasta/mapgrid/internal/overlay"
	"github.com/woozymasta/mapgrid/internal/processor"
	"github.com/woozymasta/mapgrid/internal/projection"

	"github.com/paulmach/orb"
	"github.com/rs/zerolog/log"
)

const etagCap = 64

// maxViewSize bounds the requested view in pixels.
const maxViewSize = 8192

// GridResponse is the body of /api/grid.
type GridResponse struct {
	Center         orb.Point            `json:"center"`
	CenterLabel    string               `json:"center_label,omitempty"`
	Extent         geo.Rect             `json:"extent"`
	Step           int64                `json:"step"`
	Meridians      []grid.LineDef       `json:"meridians"`
	Parallels      []grid.LineDef       `json:"parallels"`
	MajorParallels []grid.MajorParallel `json:"major_parallels"`
}

// DistanceResponse is the body of /api/distance.
type DistanceResponse struct {
	From       orb.Point `json:"from"`
	To         orb.Point `json:"to"`
	DistanceKm float64   `json:"distance_km"`
	Distance   string    `json:"distance"`
}

// HandleGrid serves the grid lines of the requested view.
func (s *ServerContext) HandleGrid(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	view, opts, err := s.viewFromQuery(q)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	scene, err := overlay.Compose(view, opts)
	if err != nil {
		s.composeError(w, err)
		return
	}

	writeJSON(w, GridResponse{
		Center:         scene.Center,
		CenterLabel:    scene.CenterLabel,
		Extent:         scene.Extent,
		Step:           scene.Step,
		Meridians:      scene.Meridians,
		Parallels:      scene.Parallels,
		MajorParallels: scene.MajorParallels,
	})
}

// HandleMeasure serves the arc of one measurement in the requested view.
func (s *ServerContext) HandleMeasure(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	view, opts, err := s.viewFromQuery(q)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	m, err := s.measurementFromQuery(q)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	scene, err := overlay.Compose(view, opts, m)
	if err != nil {
		s.composeError(w, err)
		return
	}

	writeJSON(w, scene.Measurements[0])
}

// HandleDistance serves the great-circle distance between two points.
func (s *ServerContext) HandleDistance(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	m, err := s.measurementFromQuery(q)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	miles, err := boolParam(q, "miles", s.Config.Options.UseMiles)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	km := geo.DistanceBetween(m.From, m.To)
	writeJSON(w, DistanceResponse{
		From:       m.From,
		To:         m.To,
		DistanceKm: km,
		Distance:   geo.FormatDistance(km, miles),
	})
}

// HandlePlaces serves the known places as GeoJSON.
func (s *ServerContext) HandlePlaces(w http.ResponseWriter, r *http.Request) {
	names := make([]string, 0, len(s.Places))
	for name := range s.Places {
		names = append(names, name)
	}
	sort.Strings(names)

	fc := geo.NewFeatureCollection()
	for _, name := range names {
		fc.Features = append(fc.Features, geo.NewPointFeature(s.Places[name], map[string]interface{}{"name": name}))
	}

	w.Header().Set("Content-Type", "application/geo+json")
	_ = json.NewEncoder(w).Encode(fc)
}

// HandleOverlaySVG serves the overlay of the requested view as SVG.
func (s *ServerContext) HandleOverlaySVG(w http.ResponseWriter, r *http.Request) {
	scene, ok := s.overlayScene(w, r)
	if !ok {
		return
	}

	doc := overlay.RenderSVG(scene, s.Config.Style)
	if small, err := overlay.MinifySVG(doc); err == nil {
		doc = small
	} else {
		log.Warn().Err(err).Msg("SVG left unminified")
	}

	s.serveContent(w, r, doc, "image/svg+xml")
}

// HandleOverlayWebP serves the overlay of the requested view as WebP.
func (s *ServerContext) HandleOverlayWebP(w http.ResponseWriter, r *http.Request) {
	scene, ok := s.overlayScene(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	img := overlay.RenderImage(scene, overlay.DefaultPalette, 2)
	if err := overlay.WriteWebP(&buf, img, s.Config.Tiles.Quality); err != nil {
		log.Error().Err(err).Msg("Failed to encode overlay")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	s.serveContent(w, r, buf.Bytes(), "image/webp")
}

// HandleTile serves an overlay tile, rendering it when it has not been
// pre-rendered into the tiles directory.
func (s *ServerContext) HandleTile(w http.ResponseWriter, r *http.Request) {
	// Path: /tiles/{z}/{x}/{y}.webp
	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	if len(parts) != 4 || !strings.HasSuffix(parts[3], ".webp") {
		http.NotFound(w, r)
		return
	}

	z, errZ := strconv.Atoi(parts[1])
	x, errX := strconv.Atoi(parts[2])
	y, errY := strconv.Atoi(strings.TrimSuffix(parts[3], ".webp"))
	if errZ != nil || errX != nil || errY != nil || z < 0 || z > int(projection.MaxZoom) ||
		x < 0 || y < 0 || x >= 1<<z || y >= 1<<z {
		http.NotFound(w, r)
		return
	}

	tc := processor.TileCoordinate{Z: z, X: x, Y: y}
	tiles := s.Config.Tiles
	if tiles.BaseDir != "" && s.serveFile(w, r, tc.Path(tiles.BaseDir), "image/webp") {
		return
	}

	size := tiles.TileSize
	if size <= 0 {
		size = int(projection.DefaultTileSize)
	}

	scene, err := processor.RenderTile(tc, size, s.Config.Options, s.Measurements)
	if err != nil {
		s.composeError(w, err)
		return
	}

	var buf bytes.Buffer
	if err := overlay.WriteWebP(&buf, overlay.RenderImage(scene, overlay.DefaultPalette, 1), tiles.Quality); err != nil {
		log.Error().Err(err).Msg("Failed to encode tile")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	s.serveContent(w, r, buf.Bytes(), "image/webp")
}

// HandleIndex serves the HTML page of the configured view.
func (s *ServerContext) HandleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" && strings.Contains(r.URL.Path, ".") {
		http.NotFound(w, r)
		return
	}

	s.serveContent(w, r, s.IndexHTML, "text/html; charset=utf-8")
}

// overlayScene composes the configured measurements plus the optional
// from/to pair of the query. It writes the error response itself.
func (s *ServerContext) overlayScene(w http.ResponseWriter, r *http.Request) (overlay.Scene, bool) {
	q := r.URL.Query()
	view, opts, err := s.viewFromQuery(q)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return overlay.Scene{}, false
	}

	measurements := s.Measurements
	if q.Get("from") != "" || q.Get("to") != "" {
		m, err := s.measurementFromQuery(q)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return overlay.Scene{}, false
		}
		measurements = append(append([]overlay.Measurement{}, measurements...), m)
	}

	scene, err := overlay.Compose(view, opts, measurements...)
	if err != nil {
		s.composeError(w, err)
		return overlay.Scene{}, false
	}
	return scene, true
}

func (s *ServerContext) composeError(w http.ResponseWriter, err error) {
	if errors.Is(err, projection.ErrUnavailable) {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	log.Error().Err(err).Msg("Failed to compose overlay")
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

// viewFromQuery reads lon, lat, zoom, w, h, miles and segments on top of
// the configured view and options.
func (s *ServerContext) viewFromQuery(q url.Values) (projection.Viewport, overlay.Options, error) {
	def := s.Config.View.Viewport()
	opts := s.Config.Options

	lon, err := floatParam(q, "lon", def.Center.Lon())
	if err != nil {
		return def, opts, err
	}
	lat, err := floatParam(q, "lat", def.Center.Lat())
	if err != nil {
		return def, opts, err
	}
	zoom, err := floatParam(q, "zoom", def.Zoom)
	if err != nil {
		return def, opts, err
	}
	width, err := floatParam(q, "w", def.Width)
	if err != nil {
		return def, opts, err
	}
	height, err := floatParam(q, "h", def.Height)
	if err != nil {
		return def, opts, err
	}
	if width <= 0 || height <= 0 || width > maxViewSize || height > maxViewSize {
		return def, opts, fmt.Errorf("view size %vx%v out of range", width, height)
	}

	if opts.UseMiles, err = boolParam(q, "miles", opts.UseMiles); err != nil {
		return def, opts, err
	}
	if v := q.Get("segments"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 2 || n > 1000 {
			return def, opts, fmt.Errorf("segments must be in 2..1000, got %q", v)
		}
		opts.Segments = n
	}

	view := projection.NewViewport(orb.Point{lon, lat}, zoom, width, height)
	view.TileSize = def.TileSize
	return view, opts, nil
}

func (s *ServerContext) measurementFromQuery(q url.Values) (overlay.Measurement, error) {
	from, err := s.Places.Resolve(q.Get("from"))
	if err != nil {
		return overlay.Measurement{}, fmt.Errorf("from: %w", err)
	}
	to, err := s.Places.Resolve(q.Get("to"))
	if err != nil {
		return overlay.Measurement{}, fmt.Errorf("to: %w", err)
	}

	m := overlay.NewMeasurement(from, to)
	m.Name = q.Get("name")
	return m, nil
}

func floatParam(q url.Values, key string, def float64) (float64, error) {
	v := q.Get(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return def, fmt.Errorf("invalid %s %q", key, v)
	}
	return f, nil
}

func boolParam(q url.Values, key string, def bool) (bool, error) {
	v := q.Get(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def, fmt.Errorf("invalid %s %q", key, v)
	}
	return b, nil
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	// Ignoring error as we cannot handle client disconnects
	_ = json.NewEncoder(w).Encode(v)
}

// serveContent writes generated content with an ETag of its hash.
func (s *ServerContext) serveContent(w http.ResponseWriter, r *http.Request, body []byte, contentType string) {
	h := fnv.New64a()
	_, _ = h.Write(body)

	buf := make([]byte, 0, etagCap)
	buf = append(buf, '"')
	buf = strconv.AppendUint(buf, h.Sum64(), 16)
	buf = append(buf, '"')
	etag := string(buf)

	if match := r.Header.Get("If-None-Match"); match == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "public, no-cache")
	_, _ = w.Write(body)
}

// serveFile tries to serve a file from disk with ETag generation.
// It returns true if the file was found and served (or 304).
func (s *ServerContext) serveFile(w http.ResponseWriter, r *http.Request, path string, contentType string) bool {
	info, err := os.Stat(filepath.Clean(path))
	if err != nil || info.IsDir() {
		return false
	}

	buf := make([]byte, 0, etagCap)
	buf = append(buf, '"')
	buf = strconv.AppendInt(buf, info.Size(), 16)
	buf = append(buf, '-')
	buf = strconv.AppendInt(buf, info.ModTime().UnixNano(), 16)
	buf = append(buf, '"')
	etag := string(buf)

	if match := r.Header.Get("If-None-Match"); match == etag {
		w.WriteHeader(http.StatusNotModified)
		return true
	}

	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "public, no-cache")
	if contentType != "" {
		w.Header().Set("Content-Type", contentType)
	}

	http.ServeFile(w, r, path)
	return true
}
