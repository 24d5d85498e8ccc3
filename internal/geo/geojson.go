// Package geo handles geographic value types: bounding rectangles, great-circle
// distances, coordinate formatting and GeoJSON export.
package geo

import "github.com/paulmach/orb"

// GeoJSONFeatureCollection represents a collection of geographic features.
// It follows the standard GeoJSON structure.
type GeoJSONFeatureCollection struct {
	Type     string           `json:"type" yaml:"type"`
	Features []GeoJSONFeature `json:"features" yaml:"features"`
}

// GeoJSONFeature represents a single geographic feature with geometry and properties.
type GeoJSONFeature struct {
	Properties map[string]interface{} `json:"properties" yaml:"properties"`
	Type       string                 `json:"type" yaml:"type"`
	Geometry   GeoJSONGeometry        `json:"geometry" yaml:"geometry"`
}

// GeoJSONGeometry represents the geometry of a feature.
// Coordinates is [lon, lat] for a Point and [][lon, lat] for a LineString.
type GeoJSONGeometry struct {
	Type        string      `json:"type" yaml:"type"`
	Coordinates interface{} `json:"coordinates" yaml:"coordinates"`
}

// NewFeatureCollection returns an empty feature collection.
func NewFeatureCollection() GeoJSONFeatureCollection {
	return GeoJSONFeatureCollection{Type: "FeatureCollection", Features: []GeoJSONFeature{}}
}

// NewPointFeature returns a Point feature.
func NewPointFeature(p orb.Point, props map[string]interface{}) GeoJSONFeature {
	return GeoJSONFeature{
		Type: "Feature",
		Geometry: GeoJSONGeometry{
			Type:        "Point",
			Coordinates: []float64{p.Lon(), p.Lat()},
		},
		Properties: props,
	}
}

// NewLineStringFeature returns a LineString feature through points.
func NewLineStringFeature(points []orb.Point, props map[string]interface{}) GeoJSONFeature {
	coords := make([][]float64, 0, len(points))
	for _, p := range points {
		coords = append(coords, []float64{p.Lon(), p.Lat()})
	}

	return GeoJSONFeature{
		Type: "Feature",
		Geometry: GeoJSONGeometry{
			Type:        "LineString",
			Coordinates: coords,
		},
		Properties: props,
	}
}
