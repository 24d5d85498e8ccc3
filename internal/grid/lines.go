package grid

import (
	"math"

	"github.com/woozymasta/mapgrid/internal/geo"
	"github.com/woozymasta/mapgrid/internal/projection"
)

// LineDef is one meridian or parallel: its label and its pixel coordinate
// along the perpendicular axis. Arcsec is the line's longitude or latitude;
// a meridian past the antimeridian may lie outside ±180°.
type LineDef struct {
	Label    string  `json:"label" yaml:"label"`
	Position float64 `json:"position" yaml:"position"`
	Arcsec   int64   `json:"arcsec" yaml:"arcsec"`
}

// BuildLinesLists lists the meridians and parallels inside extent, given in
// arc-seconds, spaced by the step chosen for the current zoom.
func BuildLinesLists(axes projection.Axes, extent geo.Rect) (meridians, parallels []LineDef, err error) {
	step := StepFor(axes)
	left, right := contiguousLongitudes(axes, extent.Left, extent.Right)

	meridians, err = buildLines(left, right, step, func(v int64) (float64, error) {
		return axes.PixelXFromLongitude(float64(v) / float64(arcSecondsPerDegree))
	})
	if err != nil {
		return nil, nil, err
	}

	bottom, top := math.Min(extent.Bottom, extent.Top), math.Max(extent.Bottom, extent.Top)
	parallels, err = buildLines(bottom, top, step, func(v int64) (float64, error) {
		return axes.PixelYFromLatitude(float64(v) / float64(arcSecondsPerDegree))
	})
	if err != nil {
		return nil, nil, err
	}

	return meridians, parallels, nil
}

// contiguousLongitudes turns an extent that straddles the antimeridian
// (left > right) into an increasing range by moving the bound that lies
// beyond 90° by a full turn, then moves the range onto the world copy the
// axes draw nearest the viewport origin. Views centred past ±180° thus
// get the meridians actually on screen.
func contiguousLongitudes(axes projection.Axes, left, right float64) (float64, float64) {
	q, full := float64(quarterTurn), float64(fullTurn)

	if left > right {
		// one bound is moved even when both qualify; the copy is picked below
		switch {
		case left > q:
			left -= full
		case right < -q:
			right += full
		default:
			return left, right
		}
	}

	best, bestDist := 0.0, math.Inf(1)
	for _, shift := range []float64{-full, 0, full} {
		x, err := axes.PixelXFromLongitude((left + shift) / float64(arcSecondsPerDegree))
		if err != nil {
			return left, right
		}
		if d := math.Abs(x); d < bestDist {
			best, bestDist = shift, d
		}
	}

	return left + best, right + best
}

// buildLines visits every whole arc-second value in [from, to] divisible by step.
func buildLines(from, to float64, step int64, position func(int64) (float64, error)) ([]LineDef, error) {
	lines := []LineDef{}
	if step <= 0 {
		return lines, nil
	}

	first := int64(math.Ceil(from/float64(step))) * step
	for v := first; float64(v) <= to; v += step {
		pos, err := position(v)
		if err != nil {
			return nil, err
		}
		lines = append(lines, LineDef{Label: FormatDegrees(v), Position: pos, Arcsec: v})
	}

	return lines, nil
}
