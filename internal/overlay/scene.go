// Package overlay composes the coordinate grid and the distance
// measurements of a map view into a scene and renders it as SVG, a raster
// image or GeoJSON.
package overlay

import (
	"math"

	"github.com/woozymasta/mapgrid/internal/arcpath"
	"github.com/woozymasta/mapgrid/internal/geo"
	"github.com/woozymasta/mapgrid/internal/grid"
	"github.com/woozymasta/mapgrid/internal/projection"

	"github.com/golang/geo/r2"
	"github.com/paulmach/orb"
	"github.com/rs/zerolog/log"
)

// Distance labels are kept this far from the view edges.
const (
	LabelMarginX = 30.0
	LabelMarginY = 10.0
)

// View is a map view the overlay can be composed for.
type View interface {
	projection.Projector

	// Extent returns the visible geographic extent in arc-seconds.
	Extent() (geo.Rect, error)
}

// Options controls what the scene contains.
type Options struct {
	UseMiles           bool `json:"use_miles" yaml:"use_miles" toml:"use_miles"`
	ShowMajorParallels bool `json:"show_major_parallels" yaml:"show_major_parallels" toml:"show_major_parallels"`
	ShowCoordinates    bool `json:"show_coordinates" yaml:"show_coordinates" toml:"show_coordinates"`
	Segments           int  `json:"segments,omitempty" yaml:"segments,omitempty" toml:"segments"`
}

// DefaultOptions returns the options of a fresh map view.
func DefaultOptions() Options {
	return Options{
		ShowMajorParallels: true,
		ShowCoordinates:    true,
		Segments:           arcpath.SmoothSegments,
	}
}

// MeasuredArc is a measurement placed on screen.
type MeasuredArc struct {
	Measurement Measurement     `json:"measurement"`
	Arc         arcpath.ArcPath `json:"arc"`
	DistanceKm  float64         `json:"distance_km"`
	Distance    string          `json:"distance"`
	Labels      []r2.Point      `json:"labels"`
	Markers     []Marker        `json:"markers"`
}

// Scene is everything drawn over the map for one view.
type Scene struct {
	Width  float64   `json:"width"`
	Height float64   `json:"height"`
	Center orb.Point `json:"center"`
	// CenterLabel is the formatted position of the view centre.
	CenterLabel string   `json:"center_label,omitempty"`
	Extent      geo.Rect `json:"extent"`
	Step        int64    `json:"step"`

	Meridians      []grid.LineDef       `json:"meridians"`
	Parallels      []grid.LineDef       `json:"parallels"`
	MajorParallels []grid.MajorParallel `json:"major_parallels"`
	Measurements   []MeasuredArc        `json:"measurements"`
}

// Compose builds the scene for view. It returns projection.ErrUnavailable
// when the view has not been laid out yet; the caller skips the frame.
func Compose(view View, opts Options, measurements ...Measurement) (Scene, error) {
	bounds, err := view.Bounds()
	if err != nil {
		return Scene{}, err
	}
	extent, err := view.Extent()
	if err != nil {
		return Scene{}, err
	}

	scene := Scene{
		Width:          bounds.Width(),
		Height:         bounds.Height(),
		Extent:         extent,
		Step:           grid.StepFor(view),
		MajorParallels: []grid.MajorParallel{},
		Measurements:   []MeasuredArc{},
	}

	center, err := view.LonLat(r2.Point{X: scene.Width / 2, Y: scene.Height / 2})
	if err != nil {
		return Scene{}, err
	}
	scene.Center = center
	if opts.ShowCoordinates {
		scene.CenterLabel = geo.FormatLonLat(center)
	}

	if scene.Meridians, scene.Parallels, err = grid.BuildLinesLists(view, extent); err != nil {
		return Scene{}, err
	}

	if opts.ShowMajorParallels {
		if scene.MajorParallels, err = grid.BuildMajorParallels(view, extent); err != nil {
			return Scene{}, err
		}
	}

	segments := opts.Segments
	if segments <= 0 {
		segments = arcpath.SmoothSegments
	}

	for _, m := range measurements {
		if !m.HasFirstPoint() {
			continue
		}

		measured, err := measure(view, m, segments, opts.UseMiles, scene.Width, scene.Height)
		if err != nil {
			return Scene{}, err
		}
		scene.Measurements = append(scene.Measurements, measured)
	}

	log.Trace().
		Float64("width", scene.Width).
		Float64("height", scene.Height).
		Int64("step", scene.Step).
		Int("meridians", len(scene.Meridians)).
		Int("parallels", len(scene.Parallels)).
		Int("measurements", len(scene.Measurements)).
		Msg("Overlay composed")

	return scene, nil
}

func measure(view View, m Measurement, segments int, useMiles bool, width, height float64) (MeasuredArc, error) {
	to := m.To
	if !m.HasLastPoint() {
		to = m.From
	}

	arc, err := arcpath.Build(view, m.From, to, segments)
	if err != nil {
		return MeasuredArc{}, err
	}

	measured := MeasuredArc{
		Measurement: m,
		Arc:         arc,
		Labels:      []r2.Point{},
		Markers:     m.Markers(arc),
	}

	if !m.HasLastPoint() {
		return measured, nil
	}

	measured.DistanceKm = geo.DistanceBetween(m.From, m.To)
	measured.Distance = geo.FormatDistance(measured.DistanceKm, useMiles)

	if arc.Visible {
		measured.Labels = append(measured.Labels, clampLabel(arc.Label, width, height))
	}
	if arc.PathLeft != "" {
		measured.Labels = append(measured.Labels, clampLabel(arc.LabelLeft, width, height))
	}
	if arc.PathRight != "" {
		measured.Labels = append(measured.Labels, clampLabel(arc.LabelRight, width, height))
	}

	return measured, nil
}

// clampLabel keeps a distance label inside the view.
func clampLabel(p r2.Point, width, height float64) r2.Point {
	return r2.Point{
		X: clamp(p.X, LabelMarginX, width-LabelMarginX),
		Y: clamp(p.Y, LabelMarginY, height-LabelMarginY),
	}
}

func clamp(v, lo, hi float64) float64 {
	if hi < lo {
		return (lo + hi) / 2
	}
	return math.Max(lo, math.Min(hi, v))
}
