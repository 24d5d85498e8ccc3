package grid

import (
	"strconv"
	"strings"
)

const (
	arcSecondsPerDegree int64 = 3600
	halfTurn                  = 180 * arcSecondsPerDegree
	fullTurn                  = 2 * halfTurn
	quarterTurn               = 90 * arcSecondsPerDegree
)

// FormatDegrees renders an angle given in arc-seconds as a grid label.
// The value is brought into (-180°, 180°], the sign is dropped and zero
// minutes or seconds are omitted: 5400 gives "1° 30'".
func FormatDegrees(arcsec int64) string {
	if arcsec <= -halfTurn {
		arcsec += fullTurn
	}
	if arcsec > halfTurn {
		arcsec -= fullTurn
	}
	if arcsec < 0 {
		arcsec = -arcsec
	}

	parts := make([]string, 0, 3)
	parts = append(parts, strconv.FormatInt(arcsec/arcSecondsPerDegree, 10)+"°")

	if m := arcsec % arcSecondsPerDegree / 60; m != 0 {
		parts = append(parts, strconv.FormatInt(m, 10)+"'")
	}
	if s := arcsec % 60; s != 0 {
		parts = append(parts, strconv.FormatInt(s, 10)+`"`)
	}

	return strings.Join(parts, " ")
}
