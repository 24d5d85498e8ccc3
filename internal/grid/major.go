package grid

import (
	"github.com/woozymasta/mapgrid/internal/geo"
	"github.com/woozymasta/mapgrid/internal/projection"
)

// Latitudes of the major parallels in arc-seconds.
const (
	PolarCircle int64 = 239624 // 66° 33' 44"
	Tropic      int64 = 84374  // 23° 26' 14"
)

// MajorParallel is a polar circle or a tropic visible in the current view.
type MajorParallel struct {
	Name     string  `json:"name" yaml:"name"`
	Latitude int64   `json:"latitude" yaml:"latitude"`
	Position float64 `json:"position" yaml:"position"`
}

var majorParallels = []MajorParallel{
	{Name: "Arctic Circle", Latitude: PolarCircle},
	{Name: "Tropic of Cancer", Latitude: Tropic},
	{Name: "Tropic of Capricorn", Latitude: -Tropic},
	{Name: "Antarctic Circle", Latitude: -PolarCircle},
}

// BuildMajorParallels returns the major parallels lying strictly inside
// the latitude range of extent, given in arc-seconds.
func BuildMajorParallels(axes projection.Axes, extent geo.Rect) ([]MajorParallel, error) {
	n := extent.Normalize()
	result := []MajorParallel{}

	for _, mp := range majorParallels {
		lat := float64(mp.Latitude)
		if lat >= n.Top || lat <= n.Bottom {
			continue
		}

		pos, err := axes.PixelYFromLatitude(lat / float64(arcSecondsPerDegree))
		if err != nil {
			return nil, err
		}
		mp.Position = pos
		result = append(result, mp)
	}

	return result, nil
}
