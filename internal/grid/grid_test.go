package grid

import (
	"errors"
	"math"
	"testing"

	"github.com/woozymasta/mapgrid/internal/geo"
	"github.com/woozymasta/mapgrid/internal/projection"

	"github.com/paulmach/orb"
)

// linearAxes maps degrees to pixels by a constant scale.
type linearAxes struct {
	scale float64
	err   error
}

func (a linearAxes) PixelXFromLongitude(lon float64) (float64, error) { return lon * a.scale, a.err }
func (a linearAxes) PixelYFromLatitude(lat float64) (float64, error)  { return -lat * a.scale, a.err }

func TestCalculateStepTable(t *testing.T) {
	tests := []struct {
		ppd  float64
		want int64
	}{
		{1e9, 1},
		{180000, 1},
		{179999, 2},
		{90000, 2},
		{36000, 5},
		{6000, 30},
		{3000, 60},
		{1000, 180},
		{500, 360},
		{100, 1800},
		{50, 3600},
		{49.9, 18000},
		{25, 18000},
		{10, 18000},
		{9.99, 36000},
		{0, 36000},
	}
	for _, tt := range tests {
		if got := CalculateStep(tt.ppd); got != tt.want {
			t.Errorf("CalculateStep(%v) = %v, want %v", tt.ppd, got, tt.want)
		}
	}
}

func TestCalculateStepMonotonic(t *testing.T) {
	prev := CalculateStep(0)
	for ppd := 0.5; ppd < 400000; ppd *= 1.05 {
		step := CalculateStep(ppd)
		if step > prev {
			t.Fatalf("CalculateStep(%v) = %v, larger than the previous %v", ppd, step, prev)
		}
		prev = step
	}
}

func TestCalculateStepFromTable(t *testing.T) {
	valid := map[int64]bool{DefaultStep: true}
	for _, s := range steps {
		valid[s.step] = true
	}
	for ppd := 0.0; ppd < 250000; ppd += 97.3 {
		if step := CalculateStep(ppd); !valid[step] {
			t.Fatalf("CalculateStep(%v) = %v is not a table value", ppd, step)
		}
	}
}

func TestStepFor(t *testing.T) {
	if got := StepFor(linearAxes{scale: 100}); got != 1800 {
		t.Errorf("StepFor(100 px/deg) = %v, want 1800", got)
	}
	if got := StepFor(linearAxes{scale: 100, err: projection.ErrUnavailable}); got != DefaultStep {
		t.Errorf("StepFor(unavailable) = %v, want %v", got, DefaultStep)
	}
	if got := StepFor(projection.Viewport{}); got != DefaultStep {
		t.Errorf("StepFor(empty viewport) = %v, want %v", got, DefaultStep)
	}
}

func TestFormatDegrees(t *testing.T) {
	tests := []struct {
		arcsec int64
		want   string
	}{
		{0, "0°"},
		{5400, "1° 30'"},
		{-5400, "1° 30'"},
		{3661, `1° 1' 1"`},
		{45, `0° 45"`},
		{36000, "10°"},
		{648000, "180°"},
		{-648000, "180°"},
		{-648001, `179° 59' 59"`},
		{648001, `179° 59' 59"`},
		{-1295999, `0° 1"`},
	}
	for _, tt := range tests {
		if got := FormatDegrees(tt.arcsec); got != tt.want {
			t.Errorf("FormatDegrees(%d) = %q, want %q", tt.arcsec, got, tt.want)
		}
	}
}

func labels(lines []LineDef) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = l.Label
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestBuildLinesLists(t *testing.T) {
	axes := linearAxes{scale: 10} // 5° step
	extent := geo.NewRect(-36000, 18000, 36000, -18000)

	meridians, parallels, err := BuildLinesLists(axes, extent)
	if err != nil {
		t.Fatal(err)
	}

	wantLabels := []string{"10°", "5°", "0°", "5°", "10°"}
	if got := labels(meridians); !equalStrings(got, wantLabels) {
		t.Errorf("meridian labels = %v, want %v", got, wantLabels)
	}
	wantPos := []float64{-100, -50, 0, 50, 100}
	for i, m := range meridians {
		if math.Abs(m.Position-wantPos[i]) > 1e-9 {
			t.Errorf("meridian %d position = %v, want %v", i, m.Position, wantPos[i])
		}
	}

	if got := labels(parallels); !equalStrings(got, []string{"5°", "0°", "5°"}) {
		t.Errorf("parallel labels = %v", got)
	}
	if parallels[0].Position != 50 || parallels[2].Position != -50 {
		t.Errorf("parallel positions = %+v", parallels)
	}
}

func TestBuildLinesListsAcrossAntimeridian(t *testing.T) {
	axes := linearAxes{scale: 10}
	extent := geo.NewRect(612000, 18000, -612000, -18000) // 170°E .. 170°W

	meridians, _, err := BuildLinesLists(axes, extent)
	if err != nil {
		t.Fatal(err)
	}

	want := []string{"170°", "175°", "180°", "175°", "170°"}
	if got := labels(meridians); !equalStrings(got, want) {
		t.Fatalf("labels = %v, want %v", got, want)
	}
	for i := 1; i < len(meridians); i++ {
		if meridians[i].Position <= meridians[i-1].Position {
			t.Errorf("positions are not increasing: %+v", meridians)
		}
	}
	if math.Abs(meridians[0].Position-1700) > 1e-9 {
		t.Errorf("first meridian at %v, want 1700", meridians[0].Position)
	}
}

func TestBuildLinesListsShiftsOneBound(t *testing.T) {
	axes := linearAxes{scale: 10}

	// 100°E .. 80°W: only the eastern bound is beyond 90°.
	meridians, _, err := BuildLinesLists(axes, geo.NewRect(360000, 0, -288000, 0))
	if err != nil {
		t.Fatal(err)
	}
	if n := len(meridians); n != 37 {
		t.Errorf("got %d meridians, want 37", n)
	}
	if meridians[0].Label != "100°" || meridians[len(meridians)-1].Label != "80°" {
		t.Errorf("range = %s .. %s", meridians[0].Label, meridians[len(meridians)-1].Label)
	}
}

func TestBuildLinesMatchesScan(t *testing.T) {
	ranges := []struct {
		from, to float64
		step     int64
	}{
		{-10000, 10000, 900},
		{-7199, 7201, 3600},
		{1, 59, 60},
		{-648000, 648000, 36000},
		{123.4, 4567.8, 15},
	}
	for _, r := range ranges {
		got, err := buildLines(r.from, r.to, r.step, func(int64) (float64, error) { return 0, nil })
		if err != nil {
			t.Fatal(err)
		}

		var want []string
		for i := int64(math.Ceil(r.from)); float64(i) <= r.to; i++ {
			if i%r.step != 0 {
				continue
			}
			want = append(want, FormatDegrees(i))
		}

		if !equalStrings(labels(got), want) {
			t.Errorf("[%v, %v] step %d: got %v, want %v", r.from, r.to, r.step, labels(got), want)
		}
	}
}

func TestBuildLinesListsUnavailable(t *testing.T) {
	_, _, err := BuildLinesLists(projection.Viewport{}, geo.NewRect(0, 3600, 3600, 0))
	if !errors.Is(err, projection.ErrUnavailable) {
		t.Errorf("err = %v, want ErrUnavailable", err)
	}
}

func TestBuildLinesListsWithViewport(t *testing.T) {
	v := projection.Viewport{Center: orb.Point{0, 0}, Zoom: 3, Width: 1024, Height: 1024}
	extent, err := v.Extent()
	if err != nil {
		t.Fatal(err)
	}

	meridians, parallels, err := BuildLinesLists(v, extent)
	if err != nil {
		t.Fatal(err)
	}
	if len(meridians) != 19 {
		t.Errorf("got %d meridians, want 19 (every 10° in ±90°)", len(meridians))
	}
	for _, m := range meridians {
		if m.Position < -1 || m.Position > 1025 {
			t.Errorf("meridian %s at %v is outside the viewport", m.Label, m.Position)
		}
	}
	if len(parallels) == 0 {
		t.Error("no parallels")
	}
	for i := 1; i < len(parallels); i++ {
		if parallels[i].Position >= parallels[i-1].Position {
			t.Errorf("parallels must move up the screen as latitude grows: %+v", parallels)
			break
		}
	}
}

func TestBuildMajorParallels(t *testing.T) {
	axes := linearAxes{scale: 10}

	all, err := BuildMajorParallels(axes, geo.NewRect(0, 70*3600, 3600, -70*3600))
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 4 {
		t.Fatalf("got %d major parallels, want 4", len(all))
	}
	if all[0].Name != "Arctic Circle" || math.Abs(all[0].Position+float64(PolarCircle)/360) > 1e-9 {
		t.Errorf("unexpected first parallel %+v", all[0])
	}

	tropics, err := BuildMajorParallels(axes, geo.NewRect(0, 30*3600, 3600, -30*3600))
	if err != nil {
		t.Fatal(err)
	}
	if len(tropics) != 2 || tropics[0].Latitude != Tropic || tropics[1].Latitude != -Tropic {
		t.Errorf("got %+v, want both tropics", tropics)
	}

	none, err := BuildMajorParallels(axes, geo.NewRect(0, 3600, 3600, 0))
	if err != nil {
		t.Fatal(err)
	}
	if len(none) != 0 {
		t.Errorf("got %+v, want none", none)
	}
}

func TestBuildLinesListsCenterPastAntimeridian(t *testing.T) {
	for _, lon := range []float64{200, -200, 185, 175} {
		v := projection.NewViewport(orb.Point{lon, 0}, 7, 1024, 768)
		extent, err := v.Extent()
		if err != nil {
			t.Fatal(err)
		}

		meridians, _, err := BuildLinesLists(v, extent)
		if err != nil {
			t.Fatal(err)
		}
		if len(meridians) == 0 {
			t.Errorf("centre %v: no meridians", lon)
		}
		for _, m := range meridians {
			if m.Position < -1 || m.Position > 1025 {
				t.Errorf("centre %v: meridian %s at %v is off screen", lon, m.Label, m.Position)
			}
		}
	}
}
