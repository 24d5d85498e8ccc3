package overlay

import (
	"fmt"

	"github.com/woozymasta/mapgrid/internal/arcpath"
	"github.com/woozymasta/mapgrid/internal/projection"

	"github.com/golang/geo/r2"
	"github.com/paulmach/orb"
)

// MeasurementState is the step of a distance measurement.
type MeasurementState int

const (
	// None means the measuring mode is off.
	None MeasurementState = iota
	// Started means the mode is on and no point has been placed yet.
	Started
	// FirstPointSet means only the first point has been placed.
	FirstPointSet
	// LastPointSet means both points are placed and the distance is shown.
	LastPointSet
)

var stateNames = [...]string{"none", "started", "first_point_set", "last_point_set"}

func (s MeasurementState) String() string {
	if s < None || s > LastPointSet {
		return fmt.Sprintf("MeasurementState(%d)", int(s))
	}
	return stateNames[s]
}

// MarshalText implements encoding.TextMarshaler.
func (s MeasurementState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *MeasurementState) UnmarshalText(text []byte) error {
	for i, name := range stateNames {
		if name == string(text) {
			*s = MeasurementState(i)
			return nil
		}
	}
	return fmt.Errorf("unknown measurement state %q", text)
}

// Measurement is a distance measurement between two [lon, lat] points.
type Measurement struct {
	Name  string           `json:"name,omitempty" yaml:"name,omitempty" toml:"name"`
	State MeasurementState `json:"state" yaml:"state" toml:"state"`
	From  orb.Point        `json:"from" yaml:"from" toml:"from"`
	To    orb.Point        `json:"to" yaml:"to" toml:"to"`
}

// NewMeasurement returns a complete measurement from one point to another.
func NewMeasurement(from, to orb.Point) Measurement {
	return Measurement{State: LastPointSet, From: from, To: to}
}

// Toggle turns the measuring mode on or off.
func (m Measurement) Toggle() Measurement {
	if m.State == None {
		return Measurement{Name: m.Name, State: Started}
	}
	return Measurement{Name: m.Name, State: None}
}

// Click places the next point. A click after both points are placed
// starts a new measurement from p. Clicks are ignored while the mode is off.
func (m Measurement) Click(p orb.Point) Measurement {
	switch m.State {
	case Started, LastPointSet:
		m.State = FirstPointSet
		m.From, m.To = p, p
	case FirstPointSet:
		m.State = LastPointSet
		m.To = p
	}
	return m
}

// MovePoint moves the first or the last point to the geodetic position under
// the given viewport pixel.
func (m Measurement) MovePoint(proj projection.Projector, px r2.Point, first bool) (Measurement, error) {
	p, err := proj.LonLat(px)
	if err != nil {
		return m, err
	}

	switch {
	case first && m.State >= FirstPointSet:
		m.From = p
		if m.State == FirstPointSet {
			m.To = p
		}
	case !first && m.State == LastPointSet:
		m.To = p
	}
	return m, nil
}

// HasFirstPoint reports whether the first point must be drawn.
func (m Measurement) HasFirstPoint() bool { return m.State > Started }

// HasLastPoint reports whether the last point, the arc and the distance must be drawn.
func (m Measurement) HasLastPoint() bool { return m.State == LastPointSet }

// Marker is a draggable measurement endpoint on screen.
type Marker struct {
	Position r2.Point `json:"position"`
	First    bool     `json:"first"`
}

// Markers lists the endpoint markers of the measurement drawn along arc,
// including the copies next to the visible mirrored arcs.
func (m Measurement) Markers(arc arcpath.ArcPath) []Marker {
	markers := []Marker{}
	if !m.HasFirstPoint() {
		return markers
	}

	shifts := []float64{0}
	if arc.PathLeft != "" {
		shifts = append(shifts, -arc.WorldWidth)
	}
	if arc.PathRight != "" {
		shifts = append(shifts, arc.WorldWidth)
	}

	for _, dx := range shifts {
		markers = append(markers, Marker{Position: r2.Point{X: arc.From.X + dx, Y: arc.From.Y}, First: true})
		if m.HasLastPoint() {
			markers = append(markers, Marker{Position: r2.Point{X: arc.To.X + dx, Y: arc.To.Y}})
		}
	}

	return markers
}
