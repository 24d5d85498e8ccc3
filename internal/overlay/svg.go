package overlay

import (
	"bytes"
	"io"
	"math"

	"github.com/woozymasta/mapgrid/internal/arcpath"

	svg "github.com/ajstarks/svgo"
	"github.com/golang/geo/r2"
)

// Style holds the inline CSS of the overlay elements.
type Style struct {
	Grid     string `json:"grid" yaml:"grid" toml:"grid"`
	Major    string `json:"major" yaml:"major" toml:"major"`
	Label    string `json:"label" yaml:"label" toml:"label"`
	Arc      string `json:"arc" yaml:"arc" toml:"arc"`
	Marker   string `json:"marker" yaml:"marker" toml:"marker"`
	Distance string `json:"distance" yaml:"distance" toml:"distance"`
}

// DefaultStyle is used for every empty Style field.
var DefaultStyle = Style{
	Grid:     "fill:none;stroke:rgb(0,0,0);stroke-opacity:0.3;stroke-width:1",
	Major:    "fill:none;stroke:rgb(0,0,0);stroke-opacity:0.5;stroke-width:1;stroke-dasharray:5",
	Label:    "font-family:sans-serif;font-size:11px;fill:rgb(0,0,0)",
	Arc:      "fill:none;stroke:rgb(220,20,60);stroke-width:2",
	Marker:   "fill:rgb(255,255,255);stroke:rgb(220,20,60);stroke-width:2",
	Distance: "font-family:sans-serif;font-size:13px;font-weight:bold;text-anchor:middle;fill:rgb(220,20,60)",
}

func (s Style) withDefaults() Style {
	pick := func(v, def string) string {
		if v == "" {
			return def
		}
		return v
	}
	return Style{
		Grid:     pick(s.Grid, DefaultStyle.Grid),
		Major:    pick(s.Major, DefaultStyle.Major),
		Label:    pick(s.Label, DefaultStyle.Label),
		Arc:      pick(s.Arc, DefaultStyle.Arc),
		Marker:   pick(s.Marker, DefaultStyle.Marker),
		Distance: pick(s.Distance, DefaultStyle.Distance),
	}
}

// MarkerRadius is the radius of a measurement endpoint in pixels.
const MarkerRadius = 5

// RenderSVG renders the scene as a standalone SVG document.
func RenderSVG(scene Scene, style Style) []byte {
	st := style.withDefaults()
	width, height := int(math.Ceil(scene.Width)), int(math.Ceil(scene.Height))

	var buf bytes.Buffer
	canvas := svg.New(&buf)
	canvas.Start(width, height)

	canvas.Gid("grid")
	for _, m := range scene.Meridians {
		canvas.Path(arcpath.SVGPath([]r2.Point{{X: m.Position, Y: 0}, {X: m.Position, Y: scene.Height}}), st.Grid)
	}
	for _, p := range scene.Parallels {
		canvas.Path(arcpath.SVGPath([]r2.Point{{X: 0, Y: p.Position}, {X: scene.Width, Y: p.Position}}), st.Grid)
	}
	for _, mp := range scene.MajorParallels {
		canvas.Path(arcpath.SVGPath([]r2.Point{{X: 0, Y: mp.Position}, {X: scene.Width, Y: mp.Position}}), st.Major)
	}
	canvas.Gend()

	canvas.Gid("labels")
	for _, m := range scene.Meridians {
		canvas.Text(round(m.Position)+2, 12, m.Label, st.Label)
	}
	for _, p := range scene.Parallels {
		canvas.Text(2, round(p.Position)-2, p.Label, st.Label)
	}
	if scene.CenterLabel != "" {
		canvas.Text(2, height-4, scene.CenterLabel, st.Label)
	}
	canvas.Gend()

	canvas.Gid("measurements")
	for _, ma := range scene.Measurements {
		if ma.Measurement.HasLastPoint() {
			for _, d := range []string{ma.Arc.Path, ma.Arc.PathLeft, ma.Arc.PathRight} {
				if d != "" {
					canvas.Path(d, st.Arc)
				}
			}
		}
		for _, mk := range ma.Markers {
			canvas.Circle(round(mk.Position.X), round(mk.Position.Y), MarkerRadius, st.Marker)
		}
		for _, l := range ma.Labels {
			canvas.Text(round(l.X), round(l.Y), ma.Distance, st.Distance)
		}
	}
	canvas.Gend()

	canvas.End()
	return buf.Bytes()
}

// WriteSVG writes the scene as an SVG document to w.
func WriteSVG(w io.Writer, scene Scene, style Style) error {
	_, err := w.Write(RenderSVG(scene, style))
	return err
}

func round(v float64) int { return int(math.Round(v)) }
