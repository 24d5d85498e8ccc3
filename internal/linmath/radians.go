// Package linmath provides the small linear algebra kit used by the map overlay:
// unit-sphere vectors, spherical coordinates, homogeneous rotation matrices
// and screen-space 2D vectors.
//
// All types are values. Every operation returns a new value and never
// modifies its receiver, so the same vector can be shared between the grid
// and the arc computations without aliasing.
package linmath

import "github.com/golang/geo/s1"

// ToRadians converts degrees to radians.
func ToRadians(degrees float64) float64 {
	return (s1.Angle(degrees) * s1.Degree).Radians()
}

// FromRadians converts radians to degrees.
func FromRadians(radians float64) float64 {
	return (s1.Angle(radians) * s1.Radian).Degrees()
}
