package linmath

import "math"

// Matrix is a 4x4 homogeneous transformation matrix.
//
// Elements are stored column by column, so for a vector (x, y, z, 1):
//
//	x' = e[0]*x + e[4]*y + e[8]*z  + e[12]
//	y' = e[1]*x + e[5]*y + e[9]*z  + e[13]
//	z' = e[2]*x + e[6]*y + e[10]*z + e[14]
//	w  = e[3]*x + e[7]*y + e[11]*z + e[15]
type Matrix struct {
	Elements [16]float64
}

// IdentityMatrix returns the identity transformation.
func IdentityMatrix() Matrix {
	return Matrix{Elements: [16]float64{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}}
}

// RotationMatrix returns the rotation by angle radians around axis.
// The axis must be a unit vector; it is not normalized here.
func RotationMatrix(axis Vector, angle float64) Matrix {
	c := math.Cos(angle)
	s := math.Sin(angle)
	t := 1 - c
	x, y, z := axis.X, axis.Y, axis.Z
	tx, ty := t*x, t*y

	return Matrix{Elements: [16]float64{
		tx*x + c, tx*y + s*z, tx*z - s*y, 0,
		tx*y - s*z, ty*y + c, ty*z + s*x, 0,
		tx*z + s*y, ty*z - s*x, t*z*z + c, 0,
		0, 0, 0, 1,
	}}
}

// IsIdentity reports whether m is exactly the identity matrix.
func (m Matrix) IsIdentity() bool {
	return m == IdentityMatrix()
}
