package overlay

import (
	"image"
	"image/color"
	"io"
	"math"
	"strings"

	"github.com/chai2010/webp"
	"github.com/golang/geo/r2"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"
)

// Palette holds the colors of the raster overlay.
type Palette struct {
	Background color.Color
	Grid       color.Color
	Major      color.Color
	Label      color.Color
	Arc        color.Color
	Marker     color.Color
}

// DefaultPalette draws on a transparent background so the image can be
// layered over map tiles.
var DefaultPalette = Palette{
	Background: color.Transparent,
	Grid:       color.NRGBA{A: 80},
	Major:      color.NRGBA{A: 128},
	Label:      color.NRGBA{A: 255},
	Arc:        color.NRGBA{R: 220, G: 20, B: 60, A: 255},
	Marker:     color.NRGBA{R: 220, G: 20, B: 60, A: 255},
}

func (p Palette) withDefaults() Palette {
	pick := func(c, def color.Color) color.Color {
		if c == nil {
			return def
		}
		return c
	}
	return Palette{
		Background: pick(p.Background, DefaultPalette.Background),
		Grid:       pick(p.Grid, DefaultPalette.Grid),
		Major:      pick(p.Major, DefaultPalette.Major),
		Label:      pick(p.Label, DefaultPalette.Label),
		Arc:        pick(p.Arc, DefaultPalette.Arc),
		Marker:     pick(p.Marker, DefaultPalette.Marker),
	}
}

const (
	gridWidth  = 1.0
	arcWidth   = 2.0
	dashLength = 5.0
)

// RenderImage rasterises the scene. The scene is drawn at supersample
// times its size and scaled down, values below 2 draw it directly.
func RenderImage(scene Scene, palette Palette, supersample int) *image.RGBA {
	width, height := int(math.Ceil(scene.Width)), int(math.Ceil(scene.Height))
	if supersample < 2 {
		return renderImage(scene, palette, 1)
	}

	big := renderImage(scene, palette, float64(supersample))
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), big, big.Bounds(), draw.Src, nil)
	return dst
}

func renderImage(scene Scene, palette Palette, scale float64) *image.RGBA {
	palette = palette.withDefaults()
	width := int(math.Ceil(scene.Width * scale))
	height := int(math.Ceil(scene.Height * scale))

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(palette.Background), image.Point{}, draw.Src)

	p := &painter{dst: dst, scale: scale}

	for _, m := range scene.Meridians {
		p.polyline([]r2.Point{{X: m.Position, Y: 0}, {X: m.Position, Y: scene.Height}}, gridWidth)
	}
	for _, l := range scene.Parallels {
		p.polyline([]r2.Point{{X: 0, Y: l.Position}, {X: scene.Width, Y: l.Position}}, gridWidth)
	}
	p.fill(palette.Grid)

	for _, mp := range scene.MajorParallels {
		for x := 0.0; x < scene.Width; x += 2 * dashLength {
			p.polyline([]r2.Point{{X: x, Y: mp.Position}, {X: math.Min(x+dashLength, scene.Width), Y: mp.Position}}, gridWidth)
		}
	}
	p.fill(palette.Major)

	for _, ma := range scene.Measurements {
		if !ma.Measurement.HasLastPoint() {
			continue
		}
		p.polyline(ma.Arc.Points, arcWidth)
		if ma.Arc.PathLeft != "" {
			p.polyline(shift(ma.Arc.Points, -ma.Arc.WorldWidth), arcWidth)
		}
		if ma.Arc.PathRight != "" {
			p.polyline(shift(ma.Arc.Points, ma.Arc.WorldWidth), arcWidth)
		}
	}
	p.fill(palette.Arc)

	for _, ma := range scene.Measurements {
		for _, mk := range ma.Markers {
			p.disc(mk.Position, MarkerRadius)
		}
	}
	p.fill(palette.Marker)

	for _, m := range scene.Meridians {
		p.text(r2.Point{X: m.Position + 2, Y: 12}, m.Label, palette.Label)
	}
	for _, l := range scene.Parallels {
		p.text(r2.Point{X: 2, Y: l.Position - 2}, l.Label, palette.Label)
	}
	for _, ma := range scene.Measurements {
		for _, at := range ma.Labels {
			w := float64(len(asciiLabel(ma.Distance))) * 7 / 2
			p.text(r2.Point{X: at.X - w, Y: at.Y}, ma.Distance, palette.Arc)
		}
	}

	return dst
}

func shift(points []r2.Point, dx float64) []r2.Point {
	out := make([]r2.Point, len(points))
	for i, pt := range points {
		out[i] = r2.Point{X: pt.X + dx, Y: pt.Y}
	}
	return out
}

// painter accumulates shapes in a rasterizer and fills them with one color.
type painter struct {
	dst   *image.RGBA
	r     *vector.Rasterizer
	scale float64
	empty bool
}

func (p *painter) rasterizer() *vector.Rasterizer {
	if p.r == nil {
		b := p.dst.Bounds()
		p.r = vector.NewRasterizer(b.Dx(), b.Dy())
		p.r.DrawOp = draw.Over
		p.empty = true
	}
	return p.r
}

func (p *painter) pt(v r2.Point) (float32, float32) {
	return float32(v.X * p.scale), float32(v.Y * p.scale)
}

// polyline adds every segment as a quad of the given width.
func (p *painter) polyline(points []r2.Point, width float64) {
	r := p.rasterizer()
	for i := 1; i < len(points); i++ {
		a, b := points[i-1], points[i]
		d := b.Sub(a)
		if d.Norm() == 0 {
			continue
		}
		n := d.Ortho().Normalize().Mul(width / 2)

		r.MoveTo(p.pt(a.Add(n)))
		r.LineTo(p.pt(b.Add(n)))
		r.LineTo(p.pt(b.Sub(n)))
		r.LineTo(p.pt(a.Sub(n)))
		r.ClosePath()
		p.empty = false
	}
}

// disc adds a filled circle approximated by a polygon.
func (p *painter) disc(c r2.Point, radius float64) {
	const sides = 24

	r := p.rasterizer()
	for i := 0; i <= sides; i++ {
		a := 2 * math.Pi * float64(i) / sides
		v := r2.Point{X: c.X + radius*math.Cos(a), Y: c.Y + radius*math.Sin(a)}
		if i == 0 {
			r.MoveTo(p.pt(v))
		} else {
			r.LineTo(p.pt(v))
		}
	}
	r.ClosePath()
	p.empty = false
}

// fill draws the accumulated shapes and resets the rasterizer.
func (p *painter) fill(c color.Color) {
	if p.r == nil || p.empty {
		return
	}
	p.r.Draw(p.dst, p.dst.Bounds(), image.NewUniform(c), image.Point{})
	p.r = nil
}

func (p *painter) text(at r2.Point, s string, c color.Color) {
	x, y := p.pt(at)
	d := font.Drawer{
		Dst:  p.dst,
		Src:  image.NewUniform(c),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(int(x), int(y)),
	}
	d.DrawString(asciiLabel(s))
}

// asciiLabel replaces the characters the bitmap font cannot draw.
func asciiLabel(s string) string {
	return strings.NewReplacer("°", "d", "′", "'", "″", `"`).Replace(s)
}

// WebPOptions returns the encoder options for the given quality;
// quality 100 encodes losslessly.
func WebPOptions(quality float32) *webp.Options {
	if quality >= 100 {
		return &webp.Options{Lossless: true}
	}
	if quality <= 0 {
		quality = 85
	}
	return &webp.Options{Lossless: false, Quality: quality}
}

// WriteWebP encodes the image as WebP.
func WriteWebP(w io.Writer, img image.Image, quality float32) error {
	return webp.Encode(w, img, WebPOptions(quality))
}
