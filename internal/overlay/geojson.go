package overlay

import (
	"github.com/woozymasta/mapgrid/internal/geo"

	"github.com/paulmach/orb"
)

const arcSecondsPerDegree = 3600.0

// GeoJSON exports the grid lines, the measured geodesics and their
// endpoints of the scene as a feature collection.
func GeoJSON(scene Scene) geo.GeoJSONFeatureCollection {
	fc := geo.NewFeatureCollection()

	ext := scene.Extent
	west, east := ext.Left/arcSecondsPerDegree, ext.Right/arcSecondsPerDegree
	if west > east {
		east += 360
	}
	south := geo.ClampLatitude(ext.Normalize().Bottom / arcSecondsPerDegree)
	north := geo.ClampLatitude(ext.Normalize().Top / arcSecondsPerDegree)

	for _, m := range scene.Meridians {
		lon := geo.WrapLongitude(float64(m.Arcsec) / arcSecondsPerDegree)
		fc.Features = append(fc.Features, geo.NewLineStringFeature(
			[]orb.Point{{lon, south}, {lon, north}},
			map[string]interface{}{"kind": "meridian", "label": m.Label},
		))
	}
	for _, p := range scene.Parallels {
		lat := float64(p.Arcsec) / arcSecondsPerDegree
		fc.Features = append(fc.Features, geo.NewLineStringFeature(
			[]orb.Point{{west, lat}, {east, lat}},
			map[string]interface{}{"kind": "parallel", "label": p.Label},
		))
	}
	for _, mp := range scene.MajorParallels {
		lat := float64(mp.Latitude) / arcSecondsPerDegree
		fc.Features = append(fc.Features, geo.NewLineStringFeature(
			[]orb.Point{{west, lat}, {east, lat}},
			map[string]interface{}{"kind": "major_parallel", "label": mp.Name},
		))
	}

	for _, ma := range scene.Measurements {
		m := ma.Measurement
		props := func(kind string) map[string]interface{} {
			p := map[string]interface{}{"kind": kind}
			if m.Name != "" {
				p["name"] = m.Name
			}
			return p
		}

		fc.Features = append(fc.Features, geo.NewPointFeature(m.From, props("from")))
		if !m.HasLastPoint() {
			continue
		}
		fc.Features = append(fc.Features, geo.NewPointFeature(m.To, props("to")))

		line := props("geodesic")
		line["distance_km"] = ma.DistanceKm
		line["distance"] = ma.Distance
		fc.Features = append(fc.Features, geo.NewLineStringFeature(ma.Arc.Coordinates, line))
	}

	return fc
}
