package linmath

import "github.com/golang/geo/r2"

// Vector2D is a screen-space vector in pixels. Y grows downwards.
type Vector2D r2.Point

// NewVector2D returns the vector (x, y).
func NewVector2D(x, y float64) Vector2D { return Vector2D{X: x, Y: y} }

// Vector2DFromPoint converts a pixel point to a vector.
func Vector2DFromPoint(p r2.Point) Vector2D { return Vector2D(p) }

// Point returns v as a pixel point.
func (v Vector2D) Point() r2.Point { return r2.Point(v) }

func (v Vector2D) Add(o Vector2D) Vector2D      { return Vector2D(v.Point().Add(o.Point())) }
func (v Vector2D) Subtract(o Vector2D) Vector2D { return Vector2D(v.Point().Sub(o.Point())) }
func (v Vector2D) Multiply(n float64) Vector2D  { return Vector2D(v.Point().Mul(n)) }
func (v Vector2D) Divide(n float64) Vector2D    { return v.Multiply(1 / n) }
func (v Vector2D) Negate() Vector2D             { return v.Multiply(-1) }
func (v Vector2D) Length() float64              { return v.Point().Norm() }
func (v Vector2D) Length2() float64             { return v.Point().Dot(v.Point()) }

// Normalize returns the unit vector in the direction of v; zero stays zero.
func (v Vector2D) Normalize() Vector2D { return Vector2D(v.Point().Normalize()) }

// SetLength returns a vector in the direction of v with the given length.
func (v Vector2D) SetLength(length float64) Vector2D { return v.Normalize().Multiply(length) }

// Rotate90CCW maps (x, y) to (y, -x), a quarter turn counter-clockwise on
// a screen whose Y axis points down.
func (v Vector2D) Rotate90CCW() Vector2D { return Vector2D{X: v.Y, Y: -v.X} }
