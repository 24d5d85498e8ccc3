package geo

import "math"

// MaxLatitude is the latitude limit of the Web Mercator projection.
const MaxLatitude = 85.05112878

// ClampLatitude limits lat to the range usable by Web Mercator.
func ClampLatitude(lat float64) float64 {
	if lat > MaxLatitude {
		return MaxLatitude
	} else if lat < -MaxLatitude {
		return -MaxLatitude
	}

	return lat
}

// WrapLongitude maps lon into the range (-180, 180].
func WrapLongitude(lon float64) float64 {
	if lon > -180 && lon <= 180 {
		return lon
	}

	lon = math.Mod(lon+180, 360)
	if lon <= 0 {
		lon += 360
	}

	return lon - 180
}
