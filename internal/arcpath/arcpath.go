// Package arcpath builds the screen-space path of a great-circle arc: the
// interpolated vertices in pixels, their SVG path strings for the main copy
// and the two copies one world width away, the bounds and the label anchor.
package arcpath

import (
	"github.com/woozymasta/mapgrid/internal/geo"
	"github.com/woozymasta/mapgrid/internal/linmath"
	"github.com/woozymasta/mapgrid/internal/projection"

	"github.com/golang/geo/r2"
	"github.com/paulmach/orb"
)

const (
	// DefaultSegments is enough to place the distance label.
	DefaultSegments = 2

	// SmoothSegments draws a visually smooth arc.
	SmoothSegments = 100

	// LabelOffset is the distance in pixels between the arc and its label.
	LabelOffset = 30.0

	// DefaultJumpThreshold is the share of the world width above which a
	// horizontal jump between consecutive vertices is treated as an
	// antimeridian crossing.
	DefaultJumpThreshold = 0.5
)

// ArcPath is a projected great-circle arc. Left and Right are the copies
// translated by minus and plus one world width.
type ArcPath struct {
	From       r2.Point `json:"from"`
	To         r2.Point `json:"to"`
	WorldWidth float64  `json:"world_width"`
	Bounds     geo.Rect `json:"bounds"`

	Path      string `json:"path"`
	PathLeft  string `json:"path_left,omitempty"`
	PathRight string `json:"path_right,omitempty"`

	Label      r2.Point `json:"label"`
	LabelLeft  r2.Point `json:"label_left"`
	LabelRight r2.Point `json:"label_right"`

	Visible      bool `json:"visible"`
	VisibleLeft  bool `json:"visible_left"`
	VisibleRight bool `json:"visible_right"`

	Points      []r2.Point  `json:"-"`
	Coordinates []orb.Point `json:"coordinates"`
}

// Options controls arc construction.
type Options struct {
	// Segments is the number of arc segments, raised to 2 when lower.
	Segments int

	// JumpThreshold is a share of the world width in [0.5, 1). Other values
	// fall back to DefaultJumpThreshold.
	JumpThreshold float64
}

// Build projects the great-circle arc between from and to, given as
// [lon, lat] degrees, using the given number of segments.
func Build(proj projection.Projector, from, to orb.Point, segments int) (ArcPath, error) {
	return Options{Segments: segments}.Build(proj, from, to)
}

// Build projects the great-circle arc between from and to.
func (o Options) Build(proj projection.Projector, from, to orb.Point) (ArcPath, error) {
	world, err := projection.WorldWidth(proj)
	if err != nil {
		return ArcPath{}, err
	}
	view, err := proj.Bounds()
	if err != nil {
		return ArcPath{}, err
	}

	coords := Geodesic(from, to, o.Segments)
	raw := make([]r2.Point, len(coords))
	for i, c := range coords {
		if raw[i], err = proj.Pixel(c); err != nil {
			return ArcPath{}, err
		}
	}

	points := unwrap(raw, world, o.jumpThreshold()*world)
	segments := len(points) - 1

	bounds := geo.ZeroSizeRect(points[0].X, points[0].Y)
	for _, p := range points[1:] {
		bounds = bounds.Extend(p.X, p.Y)
	}

	mid := segments / 2
	label := labelPosition(points[mid], points[mid+1])

	arc := ArcPath{
		From:        points[0],
		To:          points[segments],
		WorldWidth:  world,
		Bounds:      bounds,
		Path:        SVGPath(points),
		Label:       label,
		LabelLeft:   label.Sub(r2.Point{X: world}),
		LabelRight:  label.Add(r2.Point{X: world}),
		Visible:     bounds.Intersects(view),
		Points:      points,
		Coordinates: coords,
	}

	if world > 0 {
		arc.VisibleLeft = bounds.Offset(-world, 0).Intersects(view)
		arc.VisibleRight = bounds.Offset(world, 0).Intersects(view)
	}
	if arc.VisibleLeft {
		arc.PathLeft = SVGPath(translate(points, -world))
	}
	if arc.VisibleRight {
		arc.PathRight = SVGPath(translate(points, world))
	}

	return arc, nil
}

func (o Options) jumpThreshold() float64 {
	if o.JumpThreshold < 0.5 || o.JumpThreshold >= 1 {
		return DefaultJumpThreshold
	}
	return o.JumpThreshold
}

// unwrap shifts vertices by whole world widths so that no two consecutive
// vertices are more than threshold pixels apart horizontally.
func unwrap(points []r2.Point, world, threshold float64) []r2.Point {
	out := make([]r2.Point, len(points))
	if len(points) == 0 {
		return out
	}

	out[0] = points[0]
	shift := 0.0
	for i := 1; i < len(points); i++ {
		x := points[i].X + shift
		if world > 0 {
			for x-out[i-1].X > threshold {
				x -= world
				shift -= world
			}
			for out[i-1].X-x > threshold {
				x += world
				shift += world
			}
		}
		out[i] = r2.Point{X: x, Y: points[i].Y}
	}

	return out
}

func translate(points []r2.Point, dx float64) []r2.Point {
	out := make([]r2.Point, len(points))
	for i, p := range points {
		out[i] = r2.Point{X: p.X + dx, Y: p.Y}
	}
	return out
}

// labelPosition puts the label LabelOffset pixels away from p0, perpendicular
// to the segment p0-p1 and always above it on screen. A zero-length segment
// leaves the label on p0.
func labelPosition(p0, p1 r2.Point) r2.Point {
	a := linmath.Vector2DFromPoint(p0)
	dir := linmath.Vector2DFromPoint(p1).Subtract(a).Normalize().Rotate90CCW()
	if dir.Y > 0 {
		dir = dir.Negate()
	}

	return a.Add(dir.SetLength(LabelOffset)).Point()
}
