// Package projection defines the boundary between the overlay geometry and
// the map widget: geodetic to pixel conversion, its inverse and the visible
// viewport.
package projection

import (
	"errors"
	"math"

	"github.com/woozymasta/mapgrid/internal/geo"

	"github.com/golang/geo/r2"
	"github.com/paulmach/orb"
)

// ErrUnavailable is returned while the map has not completed its first
// layout. Callers skip the frame instead of treating it as a failure.
var ErrUnavailable = errors.New("projection is not available yet")

// Axes converts a single geodetic axis to a pixel coordinate.
type Axes interface {
	PixelXFromLongitude(lon float64) (float64, error)
	PixelYFromLatitude(lat float64) (float64, error)
}

// Projector is everything the arc builder needs from a map widget.
type Projector interface {
	Axes

	// Pixel projects a [lon, lat] point in degrees to viewport pixels.
	Pixel(p orb.Point) (r2.Point, error)

	// LonLat converts viewport pixels back to a [lon, lat] point.
	LonLat(px r2.Point) (orb.Point, error)

	// Bounds returns the visible viewport rectangle in pixels.
	Bounds() (geo.Rect, error)
}

// PixelsPerDegree returns the number of pixels spanned by one degree of
// longitude at the current scale.
func PixelsPerDegree(a Axes) (float64, error) {
	x0, err := a.PixelXFromLongitude(0)
	if err != nil {
		return 0, err
	}
	x1, err := a.PixelXFromLongitude(1)
	if err != nil {
		return 0, err
	}

	return math.Abs(x1 - x0), nil
}

// WorldWidth returns the number of pixels spanned by 360° of longitude.
func WorldWidth(a Axes) (float64, error) {
	x0, err := a.PixelXFromLongitude(0)
	if err != nil {
		return 0, err
	}
	x180, err := a.PixelXFromLongitude(180)
	if err != nil {
		return 0, err
	}

	return math.Abs(x180-x0) * 2, nil
}
