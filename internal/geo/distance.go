package geo

import (
	"strconv"
	"strings"

	"github.com/woozymasta/mapgrid/internal/linmath"

	"github.com/paulmach/orb"
)

const (
	// EarthMeanRadius is the mean radius of the Earth in kilometers.
	EarthMeanRadius = 6371.0

	// KilometersPerMile is the length of the international mile in kilometers.
	KilometersPerMile = 1.609344
)

// DistanceBetween returns the great-circle distance in kilometers between two
// [lon, lat] points given in degrees.
func DistanceBetween(p0, p1 orb.Point) float64 {
	v0 := linmath.VectorFromDegrees(p0.Lon(), p0.Lat())
	v1 := linmath.VectorFromDegrees(p1.Lon(), p1.Lat())

	return v0.AngleBetween(v1) * EarthMeanRadius
}

// FormatDistance renders a distance for display, converting it to miles if
// requested. Precision shrinks as the value grows and trailing zero
// fractional digits are removed.
func FormatDistance(km float64, useMiles bool) string {
	value, unit := km, "km"
	if useMiles {
		value, unit = km/KilometersPerMile, "mi"
	}

	digits := 0
	switch {
	case value < 1:
		digits = 4
	case value < 10:
		digits = 3
	case value < 100:
		digits = 2
	case value < 1000:
		digits = 1
	}

	s := strconv.FormatFloat(value, 'f', digits, 64)
	if strings.Contains(s, ".") {
		s = strings.TrimRight(strings.TrimRight(s, "0"), ".")
	}

	return s + " " + unit
}
