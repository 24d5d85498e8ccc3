package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/woozymasta/mapgrid/internal/config"
	"github.com/woozymasta/mapgrid/internal/overlay"
	"github.com/woozymasta/mapgrid/internal/processor"

	"github.com/chai2010/webp"
	"github.com/paulmach/orb"
)

func newTestContext(t *testing.T) *ServerContext {
	t.Helper()

	cfg := config.Default()
	cfg.Tiles.BaseDir = t.TempDir()
	cfg.Tiles.TileSize = 64
	cfg.Measurements = []config.Measurement{{Name: "moscow-paris", From: "Moscow", To: "Paris"}}
	cfg.RateLimit = config.RateLimit{}

	places := processor.Places{
		"moscow": {37.6173, 55.7558},
		"paris":  {2.3522, 48.8566},
	}

	s, err := NewServerContext(&cfg, places)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func get(t *testing.T, h http.Handler, target string, header ...string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestNewServerContext(t *testing.T) {
	s := newTestContext(t)

	if len(s.Measurements) != 1 || s.Measurements[0].State != overlay.LastPointSet {
		t.Fatalf("measurements = %+v", s.Measurements)
	}

	index := string(s.IndexHTML)
	if !strings.Contains(index, "<svg") || strings.Contains(index, "<?xml") {
		t.Errorf("index has no inline svg: %.200s", index)
	}
	if !strings.Contains(index, "moscow-paris") || !strings.Contains(index, "km") {
		t.Errorf("index has no distance row: %.400s", index)
	}

	cfg := config.Default()
	cfg.Measurements = []config.Measurement{{From: "Nowhere", To: "0,0"}}
	if _, err := NewServerContext(&cfg, processor.Places{}); err == nil {
		t.Error("expected unresolved measurement error")
	}
}

func TestHandleGrid(t *testing.T) {
	h := newTestContext(t).Handler()

	rec := get(t, h, "/api/grid?lon=0&lat=0&zoom=3&w=1024&h=768")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}

	var resp GridResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Step != 36000 || len(resp.Meridians) == 0 || len(resp.Parallels) == 0 {
		t.Errorf("grid = step %d, %d meridians, %d parallels", resp.Step, len(resp.Meridians), len(resp.Parallels))
	}
	if len(resp.MajorParallels) == 0 {
		t.Error("major parallels missing")
	}

	tests := []string{
		"/api/grid?lon=abc",
		"/api/grid?w=0",
		"/api/grid?h=100000",
		"/api/grid?miles=maybe",
		"/api/grid?segments=1",
	}
	for _, target := range tests {
		if rec := get(t, h, target); rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", target, rec.Code)
		}
	}
}

func TestHandleMeasure(t *testing.T) {
	h := newTestContext(t).Handler()

	rec := get(t, h, "/api/measure?from=Moscow&to=2.3522,48.8566&lon=0&lat=0&zoom=3&segments=10")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}

	var arc overlay.MeasuredArc
	if err := json.NewDecoder(rec.Body).Decode(&arc); err != nil {
		t.Fatal(err)
	}
	if arc.DistanceKm < 2480 || arc.DistanceKm > 2495 {
		t.Errorf("distance = %v km", arc.DistanceKm)
	}
	if len(arc.Arc.Coordinates) != 11 || !strings.HasPrefix(arc.Arc.Path, "M") {
		t.Errorf("arc = %d coordinates, path %.40q", len(arc.Arc.Coordinates), arc.Arc.Path)
	}

	if rec := get(t, h, "/api/measure?from=Atlantis&to=0,0"); rec.Code != http.StatusBadRequest {
		t.Errorf("unknown place: status = %d", rec.Code)
	}
}

func TestHandleDistance(t *testing.T) {
	h := newTestContext(t).Handler()

	rec := get(t, h, "/api/distance?from=0,0&to=0,1&miles=true")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}

	var resp DistanceResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.To != (orb.Point{0, 1}) || resp.DistanceKm < 111 || resp.DistanceKm > 111.4 {
		t.Errorf("resp = %+v", resp)
	}
	if !strings.HasSuffix(resp.Distance, "mi") {
		t.Errorf("distance = %q, want miles", resp.Distance)
	}
}

func TestHandlePlaces(t *testing.T) {
	rec := get(t, newTestContext(t).Handler(), "/api/places")
	if ct := rec.Header().Get("Content-Type"); ct != "application/geo+json" {
		t.Errorf("content type = %q", ct)
	}

	body := rec.Body.String()

	var fc struct {
		Features []struct {
			Properties struct {
				Name string `json:"name"`
			} `json:"properties"`
		} `json:"features"`
	}
	if err := json.Unmarshal([]byte(body), &fc); err != nil {
		t.Fatal(err)
	}
	if len(fc.Features) != 2 {
		t.Fatalf("got %d features", len(fc.Features))
	}
	if fc.Features[0].Properties.Name != "moscow" || fc.Features[1].Properties.Name != "paris" {
		t.Errorf("features are not sorted by name: %s", body)
	}

	for i := 0; i < 5; i++ {
		if again := get(t, newTestContext(t).Handler(), "/api/places").Body.String(); again != body {
			t.Fatalf("response changed between requests:\n%s\n%s", body, again)
		}
	}
}

func TestNonFiniteQueryRejected(t *testing.T) {
	h := newTestContext(t).Handler()

	targets := []string{
		"/overlay.webp?w=NaN",
		"/overlay.svg?w=NaN",
		"/overlay.svg?h=Inf",
		"/api/grid?lon=NaN",
		"/api/grid?zoom=-Inf",
		"/api/measure?from=0,0&to=1,1&lat=NaN",
		"/api/measure?from=NaN,0&to=1,1",
		"/api/distance?from=0,0&to=Inf,1",
	}
	for _, target := range targets {
		if rec := get(t, h, target); rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", target, rec.Code)
		}
	}
}

func TestHandleOverlaySVG(t *testing.T) {
	h := newTestContext(t).Handler()

	rec := get(t, h, "/overlay.svg?zoom=4&w=400&h=300&from=0,0&to=10,10")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/svg+xml" {
		t.Errorf("content type = %q", ct)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "<svg") || strings.Count(body, "<circle") < 2 {
		t.Errorf("svg = %.300s", body)
	}

	etag := rec.Header().Get("ETag")
	if etag == "" {
		t.Fatal("no ETag")
	}
	if rec := get(t, h, "/overlay.svg?zoom=4&w=400&h=300&from=0,0&to=10,10", "If-None-Match", etag); rec.Code != http.StatusNotModified {
		t.Errorf("conditional status = %d, want 304", rec.Code)
	}
}

func TestHandleOverlayWebP(t *testing.T) {
	rec := get(t, newTestContext(t).Handler(), "/overlay.webp?w=120&h=80")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}

	img, err := webp.Decode(bytes.NewReader(rec.Body.Bytes()))
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 120 || b.Dy() != 80 {
		t.Errorf("image bounds = %v", b)
	}
}

func TestHandleTile(t *testing.T) {
	s := newTestContext(t)
	h := s.Handler()

	rec := get(t, h, "/tiles/1/0/1.webp")
	if rec.Code != http.StatusOK || rec.Header().Get("Content-Type") != "image/webp" {
		t.Fatalf("rendered tile: status = %d, type %q", rec.Code, rec.Header().Get("Content-Type"))
	}
	img, err := webp.Decode(bytes.NewReader(rec.Body.Bytes()))
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds().Dx() != 64 {
		t.Errorf("tile width = %d", img.Bounds().Dx())
	}

	path := processor.TileCoordinate{Z: 0, X: 0, Y: 0}.Path(s.Config.Tiles.BaseDir)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("prerendered"), 0644); err != nil {
		t.Fatal(err)
	}
	if rec := get(t, h, "/tiles/0/0/0.webp"); rec.Body.String() != "prerendered" {
		t.Errorf("pre-rendered tile not served: %q", rec.Body.String())
	}

	for _, target := range []string{"/tiles/1/2/0.webp", "/tiles/x/0/0.webp", "/tiles/0/0/0.png", "/tiles/0/0"} {
		if rec := get(t, h, target); rec.Code != http.StatusNotFound {
			t.Errorf("%s: status = %d, want 404", target, rec.Code)
		}
	}
}

func TestHandleIndex(t *testing.T) {
	h := newTestContext(t).Handler()

	rec := get(t, h, "/")
	if rec.Code != http.StatusOK || !strings.HasPrefix(rec.Header().Get("Content-Type"), "text/html") {
		t.Fatalf("status = %d, type %q", rec.Code, rec.Header().Get("Content-Type"))
	}
	if rec := get(t, h, "/", "If-None-Match", rec.Header().Get("ETag")); rec.Code != http.StatusNotModified {
		t.Errorf("conditional status = %d", rec.Code)
	}
	if rec := get(t, h, "/missing.js"); rec.Code != http.StatusNotFound {
		t.Errorf("asset status = %d", rec.Code)
	}
}

func TestRateLimiter(t *testing.T) {
	l := NewRateLimiter(1, 2)
	if !l.Allow("a") || !l.Allow("a") {
		t.Fatal("burst not allowed")
	}
	if l.Allow("a") {
		t.Error("third request within the burst window allowed")
	}
	if !l.Allow("b") {
		t.Error("other client limited")
	}

	if off := NewRateLimiter(0, 0); !off.Allow("a") || !off.Allow("a") {
		t.Error("disabled limiter rejected a request")
	}

	s := newTestContext(t)
	s.Limiter = NewRateLimiter(0.001, 1)
	h := s.Handler()

	if rec := get(t, h, "/api/distance?from=0,0&to=1,1"); rec.Code != http.StatusOK {
		t.Fatalf("first request status = %d", rec.Code)
	}
	rec := get(t, h, "/api/distance?from=0,0&to=1,1")
	if rec.Code != http.StatusTooManyRequests || rec.Header().Get("Retry-After") == "" {
		t.Errorf("second request status = %d", rec.Code)
	}
	if rec := get(t, h, "/"); rec.Code != http.StatusOK {
		t.Errorf("index must not be limited, status = %d", rec.Code)
	}
}
