package arcpath

import (
	"github.com/woozymasta/mapgrid/internal/linmath"

	"github.com/paulmach/orb"
)

// collinear is the cross product length below which two unit vectors are
// treated as the same or opposite directions.
const collinear = 1e-12

var (
	north = linmath.NewVector(0, 1, 0)
	east  = linmath.NewVector(0, 0, 1)
)

// Geodesic returns segments+1 [lon, lat] points evenly spaced along the
// shortest great-circle arc from one point to the other. Segments below 2
// are raised to 2 so the arc always has a middle vertex.
//
// Identical endpoints give the same point repeated. Antipodal endpoints
// have no unique shortest arc; the one through the pole nearest to from is used.
func Geodesic(from, to orb.Point, segments int) []orb.Point {
	if segments < 2 {
		segments = 2
	}

	begin := linmath.VectorFromDegrees(from.Lon(), from.Lat())
	end := linmath.VectorFromDegrees(to.Lon(), to.Lat())
	points := make([]orb.Point, 0, segments+1)

	cross := begin.Cross(end)
	axis := cross.Normalize()
	if cross.Length() < collinear {
		if begin.Dot(end) > 0 {
			for i := 0; i <= segments; i++ {
				points = append(points, from)
			}
			return points
		}
		axis = meridianAxis(begin)
	}

	total := begin.AngleBetween(end)

	step := total / float64(segments)
	for i := 0; i <= segments; i++ {
		v := begin.Multiply(linmath.RotationMatrix(axis, step*float64(i)))
		lon, lat := v.ToSpherical().Degrees()
		points = append(points, orb.Point{lon, lat})
	}

	return points
}

// meridianAxis returns the rotation axis carrying v along its meridian
// towards the nearer pole.
func meridianAxis(v linmath.Vector) linmath.Vector {
	pole := north
	if v.Y < 0 {
		pole = north.Negate()
	}

	axis := v.Cross(pole).Normalize()
	if axis.IsZero() {
		// v is a pole itself
		axis = v.Cross(east).Normalize()
	}
	return axis
}
