package linmath

import (
	"math"

	"github.com/golang/geo/r3"
)

// Vector is a point in 3D space, usually on the unit sphere.
//
// Axes: X points to 0°N 0°E (prime meridian on the equator), Y points up
// through the North Pole and Z points to 0°N 90°E.
// Arithmetic does not re-normalize; call Normalize when a direction is needed.
type Vector r3.Vector

// NewVector returns the vector (x, y, z).
func NewVector(x, y, z float64) Vector {
	return Vector{X: x, Y: y, Z: z}
}

// VectorFromSpherical returns the unit vector pointing at s.
func VectorFromSpherical(s Spherical) Vector {
	cosTheta := math.Cos(s.Theta)
	return Vector{
		X: math.Cos(s.Phi) * cosTheta,
		Y: math.Sin(s.Theta),
		Z: math.Sin(s.Phi) * cosTheta,
	}
}

// VectorFromDegrees returns the unit vector for a longitude/latitude pair in degrees.
func VectorFromDegrees(lon, lat float64) Vector {
	return VectorFromSpherical(SphericalFromDegrees(lon, lat))
}

func (v Vector) r3() r3.Vector { return r3.Vector(v) }

// Dot returns the dot product of v and o.
func (v Vector) Dot(o Vector) float64 { return v.r3().Dot(o.r3()) }

// Cross returns the cross product v × o.
func (v Vector) Cross(o Vector) Vector { return Vector(v.r3().Cross(o.r3())) }

// Length returns the Euclidean length of v.
func (v Vector) Length() float64 { return v.r3().Norm() }

// Length2 returns the squared length of v.
func (v Vector) Length2() float64 { return v.r3().Norm2() }

// Scale returns v multiplied by n.
func (v Vector) Scale(n float64) Vector { return Vector(v.r3().Mul(n)) }

// Divide returns v divided by n.
func (v Vector) Divide(n float64) Vector { return v.Scale(1 / n) }

// Negate returns -v.
func (v Vector) Negate() Vector { return v.Scale(-1) }

// IsZero reports whether all components are zero.
func (v Vector) IsZero() bool { return v.X == 0 && v.Y == 0 && v.Z == 0 }

// Normalize returns the unit vector in the direction of v.
// The zero vector is returned unchanged.
func (v Vector) Normalize() Vector {
	length := v.Length()
	if length == 0 {
		return v
	}
	return v.Divide(length)
}

// SetLength returns a vector in the direction of v with the given length.
// The zero vector stays zero.
func (v Vector) SetLength(length float64) Vector {
	return v.Normalize().Scale(length)
}

// Multiply applies the homogeneous transform m to v, dividing by the
// resulting w component.
func (v Vector) Multiply(m Matrix) Vector {
	e := &m.Elements
	x, y, z := v.X, v.Y, v.Z
	w := 1 / (e[3]*x + e[7]*y + e[11]*z + e[15])

	return Vector{
		X: (e[0]*x + e[4]*y + e[8]*z + e[12]) * w,
		Y: (e[1]*x + e[5]*y + e[9]*z + e[13]) * w,
		Z: (e[2]*x + e[6]*y + e[10]*z + e[14]) * w,
	}
}

// AngleBetween returns the angle between v and o in radians.
// When either vector has zero length the angle is π/2.
func (v Vector) AngleBetween(o Vector) float64 {
	denominator := math.Sqrt(v.Length2() * o.Length2())
	if denominator == 0 {
		return math.Pi / 2
	}

	// rounding may push the cosine slightly outside [-1, 1]
	cos := math.Max(-1, math.Min(1, v.Dot(o)/denominator))
	return math.Acos(cos)
}

// ToSpherical returns the spherical direction of v.
// v is expected to be of unit length.
func (v Vector) ToSpherical() Spherical {
	return Spherical{
		Phi:   math.Atan2(v.Z, v.X),
		Theta: math.Asin(math.Max(-1, math.Min(1, v.Y))),
	}
}
