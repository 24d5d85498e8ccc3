package geo

import "math"

// Rect is an axis-aligned rectangle.
//
// Units are chosen by the caller: arc-seconds for geographic extents,
// pixels for screen bounds. Top is the larger Y value. A Rect is not
// required to be normalized; a geographic extent that straddles the
// antimeridian has Left > Right.
type Rect struct {
	Left   float64 `json:"left" yaml:"left"`
	Top    float64 `json:"top" yaml:"top"`
	Right  float64 `json:"right" yaml:"right"`
	Bottom float64 `json:"bottom" yaml:"bottom"`
}

// NewRect returns the rectangle with the given bounds.
func NewRect(left, top, right, bottom float64) Rect {
	return Rect{Left: left, Top: top, Right: right, Bottom: bottom}
}

// ZeroSizeRect returns a degenerate rectangle located at (x, y).
func ZeroSizeRect(x, y float64) Rect {
	return Rect{Left: x, Top: y, Right: x, Bottom: y}
}

// Extend returns the smallest rectangle containing r and (x, y).
func (r Rect) Extend(x, y float64) Rect {
	return Rect{
		Left:   math.Min(r.Left, x),
		Top:    math.Max(r.Top, y),
		Right:  math.Max(r.Right, x),
		Bottom: math.Min(r.Bottom, y),
	}
}

// Offset returns r translated by (dx, dy).
func (r Rect) Offset(dx, dy float64) Rect {
	return Rect{
		Left:   r.Left + dx,
		Top:    r.Top + dy,
		Right:  r.Right + dx,
		Bottom: r.Bottom + dy,
	}
}

// Scale returns r with every bound multiplied by n.
func (r Rect) Scale(n float64) Rect {
	return Rect{
		Left:   r.Left * n,
		Top:    r.Top * n,
		Right:  r.Right * n,
		Bottom: r.Bottom * n,
	}
}

// Normalize returns r with Left <= Right and Bottom <= Top.
func (r Rect) Normalize() Rect {
	return Rect{
		Left:   math.Min(r.Left, r.Right),
		Top:    math.Max(r.Top, r.Bottom),
		Right:  math.Max(r.Left, r.Right),
		Bottom: math.Min(r.Top, r.Bottom),
	}
}

// Intersects reports whether r and o overlap. Touching edges count as overlap.
func (r Rect) Intersects(o Rect) bool {
	a, b := r.Normalize(), o.Normalize()
	return a.Left <= b.Right && b.Left <= a.Right &&
		a.Bottom <= b.Top && b.Bottom <= a.Top
}

// Contains reports whether (x, y) lies inside the normalized r.
func (r Rect) Contains(x, y float64) bool {
	n := r.Normalize()
	return x >= n.Left && x <= n.Right && y >= n.Bottom && y <= n.Top
}

// InflateToTheNearestIntegers rounds every bound outwards to an integer.
func (r Rect) InflateToTheNearestIntegers() Rect {
	return Rect{
		Left:   math.Floor(r.Left),
		Top:    math.Ceil(r.Top),
		Right:  math.Ceil(r.Right),
		Bottom: math.Floor(r.Bottom),
	}
}

func (r Rect) Width() float64  { return math.Abs(r.Right - r.Left) }
func (r Rect) Height() float64 { return math.Abs(r.Top - r.Bottom) }

// IsEmpty reports whether r has zero area.
func (r Rect) IsEmpty() bool { return r.Width() == 0 || r.Height() == 0 }
