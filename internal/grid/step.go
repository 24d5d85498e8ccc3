// Package grid builds the adaptive latitude/longitude grid: it picks a
// readable spacing for the current zoom and lists the meridians and
// parallels that fall inside the visible extent.
package grid

import "github.com/woozymasta/mapgrid/internal/projection"

// DefaultStep is the coarsest spacing, 10°, in arc-seconds.
const DefaultStep int64 = 36000

type threshold struct {
	pixelsPerDegree float64
	step            int64 // arc-seconds
}

// Descending by density; the first threshold met wins.
var steps = []threshold{
	{180000, 1},
	{90000, 2},
	{60000, 3},
	{45000, 4},
	{36000, 5},
	{18000, 10},
	{12000, 15},
	{9000, 20},
	{6000, 30},
	{3000, 60},   // 1'
	{1500, 120},  // 2'
	{1000, 180},  // 3'
	{750, 240},   // 4'
	{600, 300},   // 5'
	{500, 360},   // 6'
	{300, 600},   // 10'
	{200, 900},   // 15'
	{100, 1800},  // 30'
	{50, 3600},   // 1°
	{10, 18000},  // 5°
}

// CalculateStep returns the spacing between neighbouring grid lines in
// arc-seconds for a view where one degree of longitude spans
// pixelsPerDegree pixels.
func CalculateStep(pixelsPerDegree float64) int64 {
	for _, t := range steps {
		if pixelsPerDegree >= t.pixelsPerDegree {
			return t.step
		}
	}
	return DefaultStep
}

// StepFor samples the projection and returns the grid spacing for the
// current view. An unavailable projection yields DefaultStep.
func StepFor(axes projection.Axes) int64 {
	ppd, err := projection.PixelsPerDegree(axes)
	if err != nil || ppd == 0 {
		return DefaultStep
	}
	return CalculateStep(ppd)
}
