package arcpath

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/woozymasta/mapgrid/internal/projection"

	"github.com/golang/geo/r2"
	"github.com/paulmach/orb"
)

func viewport(center orb.Point, zoom, width float64) projection.Viewport {
	return projection.Viewport{Center: center, Zoom: zoom, Width: width, Height: 768, TileSize: 256}
}

func near(a, b, eps float64) bool { return math.Abs(a-b) <= eps }

// lonDiff treats -180 and 180 as the same longitude.
func lonDiff(a, b float64) float64 { return math.Abs(math.Remainder(a-b, 360)) }

func TestGeodesic(t *testing.T) {
	tests := []struct {
		name     string
		from, to orb.Point
		segments int
		mid      orb.Point
	}{
		{"equator", orb.Point{0, 0}, orb.Point{90, 0}, 2, orb.Point{45, 0}},
		{"meridian", orb.Point{30, 10}, orb.Point{30, 50}, 4, orb.Point{30, 30}},
		{"antipodal over the pole", orb.Point{0, 0}, orb.Point{180, 0}, 2, orb.Point{0, 90}},
		{"antipodal southern", orb.Point{0, -10}, orb.Point{180, 10}, 2, orb.Point{180, -80}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			points := Geodesic(tt.from, tt.to, tt.segments)
			if len(points) != tt.segments+1 {
				t.Fatalf("got %d points, want %d", len(points), tt.segments+1)
			}

			first, last := points[0], points[len(points)-1]
			if lonDiff(first.Lon(), tt.from.Lon()) > 1e-9 || !near(first.Lat(), tt.from.Lat(), 1e-9) {
				t.Errorf("first = %v, want %v", first, tt.from)
			}
			if lonDiff(last.Lon(), tt.to.Lon()) > 1e-9 || !near(last.Lat(), tt.to.Lat(), 1e-9) {
				t.Errorf("last = %v, want %v", last, tt.to)
			}

			mid := points[len(points)/2]
			if !near(mid.Lat(), tt.mid.Lat(), 1e-6) {
				t.Errorf("mid = %v, want %v", mid, tt.mid)
			}
			if math.Abs(tt.mid.Lat()) < 90 && lonDiff(mid.Lon(), tt.mid.Lon()) > 1e-9 {
				t.Errorf("mid = %v, want %v", mid, tt.mid)
			}
		})
	}
}

func TestGeodesicSameEndpoints(t *testing.T) {
	p := orb.Point{12.5, -40}
	for _, got := range Geodesic(p, p, 5) {
		if got != p {
			t.Fatalf("got %v, want %v everywhere", got, p)
		}
	}
}

func TestGeodesicRaisesSegments(t *testing.T) {
	for _, segments := range []int{-1, 0, 1} {
		if n := len(Geodesic(orb.Point{0, 0}, orb.Point{10, 10}, segments)); n != 3 {
			t.Errorf("segments %d: got %d points, want 3", segments, n)
		}
	}
}

func TestBuildUnavailable(t *testing.T) {
	_, err := Build(projection.Viewport{}, orb.Point{0, 0}, orb.Point{10, 10}, SmoothSegments)
	if !errors.Is(err, projection.ErrUnavailable) {
		t.Errorf("err = %v, want ErrUnavailable", err)
	}
}

func TestBuildEndpoints(t *testing.T) {
	v := viewport(orb.Point{10, 25}, 4, 1024)
	from, to := orb.Point{-20, 40}, orb.Point{60, 10}

	arc, err := Build(v, from, to, SmoothSegments)
	if err != nil {
		t.Fatal(err)
	}

	wantFrom, _ := v.Pixel(from)
	wantTo, _ := v.Pixel(to)
	if !near(arc.From.X, wantFrom.X, 1e-6) || !near(arc.From.Y, wantFrom.Y, 1e-6) {
		t.Errorf("From = %v, want %v", arc.From, wantFrom)
	}
	if !near(arc.To.X, wantTo.X, 1e-6) || !near(arc.To.Y, wantTo.Y, 1e-6) {
		t.Errorf("To = %v, want %v", arc.To, wantTo)
	}
	if len(arc.Points) != SmoothSegments+1 || len(arc.Coordinates) != SmoothSegments+1 {
		t.Errorf("got %d points and %d coordinates", len(arc.Points), len(arc.Coordinates))
	}
	if !strings.HasPrefix(arc.Path, "M") || strings.Count(arc.Path, "L") != SmoothSegments {
		t.Errorf("unexpected path %q", arc.Path)
	}
	for _, p := range arc.Points {
		if !arc.Bounds.Contains(p.X, p.Y) {
			t.Fatalf("point %v outside bounds %+v", p, arc.Bounds)
		}
	}
	if !arc.Visible {
		t.Error("arc in the middle of the view is not visible")
	}
}

func TestBuildAcrossAntimeridian(t *testing.T) {
	v := viewport(orb.Point{180, 0}, 3, 1024)
	world, err := projection.WorldWidth(v)
	if err != nil {
		t.Fatal(err)
	}

	from, to := orb.Point{170, 0}, orb.Point{-170, 0}

	rawFrom, _ := v.Pixel(from)
	rawTo, _ := v.Pixel(to)
	if math.Abs(rawTo.X-rawFrom.X) < 0.9*world {
		t.Fatalf("raw projection jump %v is expected to be close to the world width %v", rawTo.X-rawFrom.X, world)
	}

	arc, err := Build(v, from, to, SmoothSegments)
	if err != nil {
		t.Fatal(err)
	}

	for i := 1; i < len(arc.Points); i++ {
		if dx := math.Abs(arc.Points[i].X - arc.Points[i-1].X); dx > 0.01*world {
			t.Fatalf("jump of %v px between vertices %d and %d", dx, i-1, i)
		}
	}
	if span := arc.Bounds.Width(); !near(span, world*20/360, 1e-6) {
		t.Errorf("bounds width = %v, want %v", span, world*20/360)
	}
	if !arc.Visible || arc.VisibleLeft || arc.VisibleRight {
		t.Errorf("visibility = %v/%v/%v, want only the main copy", arc.Visible, arc.VisibleLeft, arc.VisibleRight)
	}
	if arc.PathLeft != "" || arc.PathRight != "" {
		t.Error("invisible copies must have no path")
	}
}

func TestBuildMirrorCopies(t *testing.T) {
	// The arc lies one world width to the right of the view, so only the
	// left copy is visible.
	v := viewport(orb.Point{-180, 0}, 3, 1024)
	arc, err := Build(v, orb.Point{170, 0}, orb.Point{-170, 0}, SmoothSegments)
	if err != nil {
		t.Fatal(err)
	}
	if arc.Visible || !arc.VisibleLeft || arc.VisibleRight {
		t.Fatalf("visibility = %v/%v/%v, want only the left copy", arc.Visible, arc.VisibleLeft, arc.VisibleRight)
	}
	if arc.PathLeft == "" || arc.PathRight != "" {
		t.Errorf("paths: left %q, right %q", arc.PathLeft, arc.PathRight)
	}
	if !near(arc.LabelLeft.X, arc.Label.X-arc.WorldWidth, 1e-9) {
		t.Errorf("left label %v is not one world width left of %v", arc.LabelLeft, arc.Label)
	}

	// A view wider than the world shows all three copies.
	wide := viewport(orb.Point{0, 0}, 3, 4096)
	arc, err = Build(wide, orb.Point{-5, 0}, orb.Point{5, 0}, SmoothSegments)
	if err != nil {
		t.Fatal(err)
	}
	if !arc.Visible || !arc.VisibleLeft || !arc.VisibleRight {
		t.Errorf("visibility = %v/%v/%v, want all copies", arc.Visible, arc.VisibleLeft, arc.VisibleRight)
	}
}

func TestBuildSameEndpoints(t *testing.T) {
	v := viewport(orb.Point{0, 0}, 5, 1024)
	p := orb.Point{3, 4}

	arc, err := Build(v, p, p, SmoothSegments)
	if err != nil {
		t.Fatal(err)
	}
	if arc.Bounds.Width() != 0 || arc.Bounds.Height() != 0 {
		t.Errorf("bounds = %+v, want zero size", arc.Bounds)
	}
	if arc.Label != arc.From {
		t.Errorf("label = %v, want the point itself %v", arc.Label, arc.From)
	}
	for _, q := range arc.Points {
		if q != arc.From {
			t.Fatalf("vertex %v differs from %v", q, arc.From)
		}
	}
}

func TestBuildLabelAboveArc(t *testing.T) {
	v := viewport(orb.Point{5, 0}, 5, 1024)

	for _, dir := range [][2]orb.Point{
		{{0, 0}, {10, 0}},
		{{10, 0}, {0, 0}},
	} {
		arc, err := Build(v, dir[0], dir[1], DefaultSegments)
		if err != nil {
			t.Fatal(err)
		}

		mid := arc.Points[1]
		if !near(arc.Label.X, mid.X, 1e-6) || !near(arc.Label.Y, mid.Y-LabelOffset, 1e-6) {
			t.Errorf("%v -> %v: label = %v, want %v above %v", dir[0], dir[1], arc.Label, LabelOffset, mid)
		}
	}
}

func TestOptionsJumpThreshold(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0, DefaultJumpThreshold},
		{0.3, DefaultJumpThreshold},
		{0.75, 0.75},
		{1, DefaultJumpThreshold},
	}
	for _, tt := range tests {
		if got := (Options{JumpThreshold: tt.in}).jumpThreshold(); got != tt.want {
			t.Errorf("jumpThreshold(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestUnwrap(t *testing.T) {
	in := []r2.Point{{X: 90}, {X: 99}, {X: 2}, {X: 8}, {X: 97}}
	got := unwrap(in, 100, 50)
	want := []float64{90, 99, 102, 108, 97}
	for i := range want {
		if got[i].X != want[i] {
			t.Errorf("unwrap = %v, want X %v", got, want)
			break
		}
	}
}

func TestSVGPath(t *testing.T) {
	tests := []struct {
		points []r2.Point
		want   string
	}{
		{nil, ""},
		{[]r2.Point{{X: 1, Y: 2}}, "M1.000000 2.000000"},
		{
			[]r2.Point{{X: 1, Y: -2}, {X: 3, Y: 4}, {X: -5, Y: 6.1234567}},
			"M1.000000-2.000000L3.000000 4.000000L-5.000000 6.123457",
		},
	}
	for _, tt := range tests {
		if got := SVGPath(tt.points); got != tt.want {
			t.Errorf("SVGPath(%v) = %q, want %q", tt.points, got, tt.want)
		}
	}
}
