package projection

import (
	"math"

	"github.com/woozymasta/mapgrid/internal/geo"

	"github.com/golang/geo/r2"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/project"
)

const (
	DefaultTileSize = 256.0
	MinZoom         = 3.0
	MaxZoom         = 20.0

	// The view centre may move past ±180° so the Pacific can be shown whole.
	MaxCenterLongitude = 210.0
	// Mercator scale grows without bound towards the poles.
	MaxCenterLatitude = 83.0

	arcSecondsPerDegree = 3600.0
)

// Viewport is a Web Mercator map view of Width x Height pixels centred on
// Center at the given zoom level. It implements Projector.
//
// Longitudes are projected without wrapping, so a point on the other side
// of the antimeridian from the centre lands one world width away.
// A viewport with no size has not been laid out and reports ErrUnavailable.
type Viewport struct {
	Center   orb.Point `json:"center" yaml:"center"`
	Zoom     float64   `json:"zoom" yaml:"zoom"`
	Width    float64   `json:"width" yaml:"width"`
	Height   float64   `json:"height" yaml:"height"`
	TileSize float64   `json:"tile_size,omitempty" yaml:"tile_size,omitempty"`
}

// NewViewport returns a viewport with the centre and zoom clamped to the
// allowed view extent.
func NewViewport(center orb.Point, zoom, width, height float64) Viewport {
	return Viewport{
		Center:   clampCenter(center),
		Zoom:     clampZoom(zoom),
		Width:    width,
		Height:   height,
		TileSize: DefaultTileSize,
	}
}

// TileViewport returns the view of XYZ tile (x, y) at zoom z rendered at
// size pixels square. The zoom is not clamped.
func TileViewport(z, x, y int, size float64) Viewport {
	half := math.Pi * orb.EarthRadius
	n := math.Exp2(float64(z))
	center := project.Mercator.ToWGS84(orb.Point{
		(float64(x)+0.5)/n*2*half - half,
		half - (float64(y)+0.5)/n*2*half,
	})

	return Viewport{
		Center:   center,
		Zoom:     float64(z),
		Width:    size,
		Height:   size,
		TileSize: size,
	}
}

func clampCenter(c orb.Point) orb.Point {
	return orb.Point{
		math.Max(-MaxCenterLongitude, math.Min(MaxCenterLongitude, c.Lon())),
		math.Max(-MaxCenterLatitude, math.Min(MaxCenterLatitude, c.Lat())),
	}
}

func clampZoom(z float64) float64 {
	return math.Max(MinZoom, math.Min(MaxZoom, z))
}

func (v Viewport) ready() error {
	if v.Width <= 0 || v.Height <= 0 {
		return ErrUnavailable
	}
	return nil
}

// resolution returns Mercator meters per pixel.
func (v Viewport) resolution() float64 {
	tile := v.TileSize
	if tile <= 0 {
		tile = DefaultTileSize
	}
	return 2 * math.Pi * orb.EarthRadius / (tile * math.Exp2(v.Zoom))
}

func (v Viewport) centerMeters() orb.Point {
	return project.WGS84.ToMercator(orb.Point{v.Center.Lon(), geo.ClampLatitude(v.Center.Lat())})
}

// Pixel implements Projector.
func (v Viewport) Pixel(p orb.Point) (r2.Point, error) {
	if err := v.ready(); err != nil {
		return r2.Point{}, err
	}

	m := project.WGS84.ToMercator(orb.Point{p.Lon(), geo.ClampLatitude(p.Lat())})
	c := v.centerMeters()
	res := v.resolution()

	return r2.Point{
		X: (m[0]-c[0])/res + v.Width/2,
		Y: (c[1]-m[1])/res + v.Height/2,
	}, nil
}

// PixelXFromLongitude implements Axes.
func (v Viewport) PixelXFromLongitude(lon float64) (float64, error) {
	px, err := v.Pixel(orb.Point{lon, 0})
	return px.X, err
}

// PixelYFromLatitude implements Axes.
func (v Viewport) PixelYFromLatitude(lat float64) (float64, error) {
	px, err := v.Pixel(orb.Point{0, lat})
	return px.Y, err
}

// unproject converts pixels to [lon, lat] without wrapping the longitude.
func (v Viewport) unproject(px r2.Point) orb.Point {
	c := v.centerMeters()
	res := v.resolution()

	return project.Mercator.ToWGS84(orb.Point{
		c[0] + (px.X-v.Width/2)*res,
		c[1] - (px.Y-v.Height/2)*res,
	})
}

// LonLat implements Projector. The longitude is wrapped into (-180, 180].
func (v Viewport) LonLat(px r2.Point) (orb.Point, error) {
	if err := v.ready(); err != nil {
		return orb.Point{}, err
	}

	ll := v.unproject(px)
	return orb.Point{geo.WrapLongitude(ll.Lon()), ll.Lat()}, nil
}

// Bounds implements Projector.
func (v Viewport) Bounds() (geo.Rect, error) {
	if err := v.ready(); err != nil {
		return geo.Rect{}, err
	}
	return geo.NewRect(0, v.Height, v.Width, 0), nil
}

// edgeEpsilon absorbs rounding of view edges lying on the antimeridian.
const edgeEpsilon = 1e-9

// Extent returns the visible geographic extent in arc-seconds, rounded
// outwards to whole arc-seconds. When the view straddles the antimeridian
// the result has Left > Right.
func (v Viewport) Extent() (geo.Rect, error) {
	if err := v.ready(); err != nil {
		return geo.Rect{}, err
	}

	bottomLeft := v.unproject(r2.Point{X: 0, Y: v.Height})
	topRight := v.unproject(r2.Point{X: v.Width, Y: 0})

	left, right := geo.WrapLongitude(bottomLeft.Lon()), geo.WrapLongitude(topRight.Lon())
	// an edge on the antimeridian belongs to the side the view extends to
	if left > 180-edgeEpsilon {
		left = -180
	}
	if right < -180+edgeEpsilon {
		right = 180
	}
	if topRight.Lon()-bottomLeft.Lon() >= 360-edgeEpsilon {
		left, right = -180, 180
	}

	r := geo.NewRect(left, topRight.Lat(), right, bottomLeft.Lat())
	return r.Scale(arcSecondsPerDegree).InflateToTheNearestIntegers(), nil
}

// Pan returns the viewport moved by (dx, dy) pixels.
func (v Viewport) Pan(dx, dy float64) Viewport {
	v.Center = clampCenter(v.unproject(r2.Point{X: v.Width/2 + dx, Y: v.Height/2 + dy}))
	return v
}

// ZoomBy returns the viewport with the zoom changed by delta levels.
func (v Viewport) ZoomBy(delta float64) Viewport {
	v.Zoom = clampZoom(v.Zoom + delta)
	return v
}

// WithSize returns the viewport resized to width x height pixels.
func (v Viewport) WithSize(width, height float64) Viewport {
	v.Width, v.Height = width, height
	return v
}
