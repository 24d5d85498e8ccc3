package arcpath

import (
	"strconv"
	"strings"

	"github.com/golang/geo/r2"
)

// SVGPath encodes points as an SVG path: a move to the first point, then
// lines to the others, coordinates with six decimals. No separator is
// written before a negative Y, so "1 -2" becomes "1-2".
func SVGPath(points []r2.Point) string {
	if len(points) == 0 {
		return ""
	}

	var b strings.Builder
	b.Grow(len(points) * 24)

	for i, p := range points {
		if i == 0 {
			b.WriteByte('M')
		} else {
			b.WriteByte('L')
		}

		b.WriteString(strconv.FormatFloat(p.X, 'f', 6, 64))
		y := strconv.FormatFloat(p.Y, 'f', 6, 64)
		if !strings.HasPrefix(y, "-") {
			b.WriteByte(' ')
		}
		b.WriteString(y)
	}

	return b.String()
}
