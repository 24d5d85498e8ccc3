package geo

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
)

// dms holds whole degrees, whole arc minutes and fractional arc seconds.
type dms struct {
	deg, min int
	sec      float64
}

// decompose rounds to the printed tenth of a second before splitting, so
// 59.95" carries into the minutes instead of printing as 60.0".
func decompose(degrees float64) dms {
	tenths := int64(math.Round(degrees * 36000))
	return dms{
		deg: int(tenths / 36000),
		min: int(tenths % 36000 / 600),
		sec: float64(tenths%600) / 10,
	}
}

func (d dms) write(b *strings.Builder, hemisphere string) {
	b.WriteString(strconv.Itoa(d.deg))
	b.WriteString("°")
	b.WriteString(strconv.Itoa(d.min))
	b.WriteString("'")
	b.WriteString(strconv.FormatFloat(d.sec, 'f', 1, 64))
	b.WriteString(`"`)
	b.WriteString(hemisphere)
}

// FormatLonLat renders a [lon, lat] point as degrees, minutes and seconds
// with hemisphere letters, e.g. 37°37'2.3"E, 55°45'20.9"N.
func FormatLonLat(p orb.Point) string {
	we, ns := "E", "N"
	if p.Lon() < 0 {
		we = "W"
	}
	if p.Lat() < 0 {
		ns = "S"
	}

	var b strings.Builder
	decompose(math.Abs(p.Lon())).write(&b, we)
	b.WriteString(", ")
	decompose(math.Abs(p.Lat())).write(&b, ns)

	return b.String()
}

// ErrInvalidLonLat is returned for a point that cannot be parsed or lies
// outside the valid coordinate range.
var ErrInvalidLonLat = errors.New("invalid lon,lat point")

// ParseLonLat parses a "lon,lat" pair of decimal degrees.
func ParseLonLat(s string) (orb.Point, error) {
	lonStr, latStr, ok := strings.Cut(s, ",")
	if !ok {
		return orb.Point{}, fmt.Errorf("%w: %q", ErrInvalidLonLat, s)
	}

	lon, err := strconv.ParseFloat(strings.TrimSpace(lonStr), 64)
	if err != nil {
		return orb.Point{}, fmt.Errorf("%w: %q: %v", ErrInvalidLonLat, s, err)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(latStr), 64)
	if err != nil {
		return orb.Point{}, fmt.Errorf("%w: %q: %v", ErrInvalidLonLat, s, err)
	}

	if math.Abs(lon) > 180 || math.Abs(lat) > 90 || math.IsNaN(lon) || math.IsNaN(lat) {
		return orb.Point{}, fmt.Errorf("%w: %q is out of range", ErrInvalidLonLat, s)
	}

	return orb.Point{lon, lat}, nil
}
