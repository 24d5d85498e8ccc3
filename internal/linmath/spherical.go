package linmath

// Spherical is a direction on the unit sphere.
// Phi is the rotation around the vertical axis (longitude) and Theta is the
// tilt relative to the equatorial plane (latitude), both in radians.
// Phi is not wrapped or clamped.
type Spherical struct {
	Phi   float64
	Theta float64
}

// SphericalFromDegrees builds a Spherical from longitude and latitude in degrees.
func SphericalFromDegrees(lon, lat float64) Spherical {
	return Spherical{Phi: ToRadians(lon), Theta: ToRadians(lat)}
}

// Degrees returns longitude and latitude in degrees.
func (s Spherical) Degrees() (lon, lat float64) {
	return FromRadians(s.Phi), FromRadians(s.Theta)
}
