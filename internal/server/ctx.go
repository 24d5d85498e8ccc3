package server

import (
	"bytes"
	"fmt"
	"html/template"
	"net/http"

	"github.com/rs/zerolog/log"
	"github.com/woozymasta/mapgrid/internal/config"
	"github.com/woozymasta/mapgrid/internal/geo"
	"github.com/woozymasta/mapgrid/internal/overlay"
	"github.com/woozymasta/mapgrid/internal/processor"
)

// ServerContext holds dependencies for request handlers.
type ServerContext struct {
	Config       *config.Config
	Places       processor.Places
	Measurements []overlay.Measurement
	IndexHTML    []byte
	Limiter      *RateLimiter
}

var indexTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Map grid</title>
<style>
body { margin: 0; font-family: sans-serif; background: #1d2733; color: #eee; }
main { display: flex; gap: 1em; padding: 1em; }
figure { margin: 0; border: 1px solid #456; }
td { padding: 0 .5em; }
</style>
</head>
<body>
<main>
<figure>{{.SVG}}</figure>
<section>
<h1>{{.Center}}</h1>
<table>
{{range .Measurements}}<tr><td>{{.Measurement.Name}}</td><td>{{.Distance}}</td></tr>
{{else}}<tr><td>No measurements</td></tr>
{{end}}</table>
</section>
</main>
</body>
</html>
`))

// NewServerContext resolves the configured measurements and renders the
// index page for the initial view.
func NewServerContext(cfg *config.Config, places processor.Places) (*ServerContext, error) {
	log.Info().
		Int("config_measurements_count", len(cfg.Measurements)).
		Int("places_count", len(places)).
		Msg("Initializing server context")

	measurements, err := places.Measurements(cfg.Measurements)
	if err != nil {
		return nil, err
	}

	scene, err := overlay.Compose(cfg.View.Viewport(), cfg.Options, measurements...)
	if err != nil {
		return nil, fmt.Errorf("initial view: %w", err)
	}

	var buf bytes.Buffer
	err = indexTemplate.Execute(&buf, struct {
		SVG          template.HTML
		Center       string
		Measurements []overlay.MeasuredArc
	}{
		SVG:          template.HTML(inlineSVG(overlay.RenderSVG(scene, cfg.Style))),
		Center:       geo.FormatLonLat(scene.Center),
		Measurements: scene.Measurements,
	})
	if err != nil {
		return nil, err
	}

	index, err := overlay.MinifyHTML(buf.Bytes())
	if err != nil {
		log.Warn().Err(err).Msg("Index page left unminified")
		index = buf.Bytes()
	}

	log.Info().
		Int("measurements_count", len(measurements)).
		Int("index_size", len(index)).
		Msg("Server context initialized successfully")

	return &ServerContext{
		Config:       cfg,
		Places:       places,
		Measurements: measurements,
		IndexHTML:    index,
		Limiter:      NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst),
	}, nil
}

// Handler returns the routes wrapped in rate limiting and request logging.
func (s *ServerContext) Handler() http.Handler {
	api := http.NewServeMux()
	api.HandleFunc("/api/grid", s.HandleGrid)
	api.HandleFunc("/api/measure", s.HandleMeasure)
	api.HandleFunc("/api/distance", s.HandleDistance)
	api.HandleFunc("/api/places", s.HandlePlaces)
	api.HandleFunc("/overlay.svg", s.HandleOverlaySVG)
	api.HandleFunc("/overlay.webp", s.HandleOverlayWebP)

	mux := http.NewServeMux()
	mux.Handle("/api/", s.Limiter.Middleware(api))
	mux.Handle("/overlay.svg", s.Limiter.Middleware(api))
	mux.Handle("/overlay.webp", s.Limiter.Middleware(api))
	mux.HandleFunc("/tiles/", s.HandleTile)
	mux.HandleFunc("/", s.HandleIndex)

	return RequestLogger(mux)
}

// inlineSVG drops the XML prolog so the document can sit inside HTML.
func inlineSVG(doc []byte) []byte {
	if i := bytes.Index(doc, []byte("<svg")); i > 0 {
		return doc[i:]
	}
	return doc
}
