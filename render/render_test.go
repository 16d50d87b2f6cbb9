package render

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"math"
	"strings"
	"testing"

	"github.com/soypat/sphtrace"
	"github.com/soypat/sphtrace/camera"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/plot/cmpimg"
)

// imgDelta a normalized delta parameter to describe how close the matching
// should be performed (imgDelta=0: perfect match, imgDelta=1, loose match)
const imgDelta = 0

func sphereScene(t testing.TB) sphtrace.SDF3 {
	t.Helper()
	s, err := sphtrace.Sphere3D(1)
	if err != nil {
		t.Fatal(err)
	}
	return sphtrace.Translate3D(s, r3.Vec{Z: -5})
}

func testCamera(t testing.TB, eye, target, up r3.Vec) camera.Params {
	t.Helper()
	proj, err := camera.Perspective(60, 1, 0.1)
	if err != nil {
		t.Fatal(err)
	}
	view, err := camera.LookAt(eye, target, up)
	if err != nil {
		t.Fatal(err)
	}
	cam, err := camera.New(proj, view)
	if err != nil {
		t.Fatal(err)
	}
	return cam
}

func newTestRenderer(t testing.TB, scene sphtrace.SDF3, cam camera.Params, cfg Config) *Renderer {
	t.Helper()
	r, err := NewRenderer(scene, cam, cfg)
	if err != nil {
		t.Fatal(err)
	}
	return r
}

var (
	center = r2.Vec{X: 0.5, Y: 0.5}
	testBg = Color{R: 0.2, G: 0.3, B: 0.4, A: 1}
)

func TestPixelHit(t *testing.T) {
	cam := testCamera(t, r3.Vec{}, r3.Vec{Z: -1}, r3.Vec{Y: 1})
	for _, method := range []RayMethod{RayUnproject, RayNDC} {
		cfg := DefaultConfig()
		cfg.Method = method
		r := newTestRenderer(t, sphereScene(t), cam, cfg)
		s := r.Sample(center, testBg)
		if !s.Lit {
			t.Fatalf("%s: center ray missed the sphere", method)
		}
		if d := r3.Norm(r3.Sub(s.Hit.Point, r3.Vec{Z: -4})); d > cfg.Tracer.Epsilon {
			t.Errorf("%s: hit %v is %g from (0,0,-4)", method, s.Hit.Point, d)
		}
		// Head-on diffuse lighting is white, specular vanishes.
		want := Color{R: 0.7, G: 0.8, B: 0.9, A: 0.5}
		if !colorWithin(s.Color, want, 1e-3) {
			t.Errorf("%s: color got %+v, want %+v", method, s.Color, want)
		}
		if s.Color == testBg {
			t.Errorf("%s: hit did not change the background", method)
		}
	}
}

func TestPixelMiss(t *testing.T) {
	cam := testCamera(t, r3.Vec{}, r3.Vec{Y: 1}, r3.Vec{Z: 1})
	r := newTestRenderer(t, sphereScene(t), cam, DefaultConfig())
	s := r.Sample(center, testBg)
	if s.Lit {
		t.Fatal("ray pointing away from the scene lit the pixel")
	}
	if s.Hit.Status != sphtrace.StatusEscaped {
		t.Errorf("got status %s, want escaped", s.Hit.Status)
	}
	if got := r.Pixel(center, testBg); got != testBg {
		t.Errorf("miss color got %+v, want background %+v", got, testBg)
	}
}

func TestPixelStrictHits(t *testing.T) {
	// Rays parallel to the plane run out of steps one unit away from it.
	plane, err := sphtrace.NewPlane(r3.Vec{X: -1}, r3.Vec{X: 1})
	if err != nil {
		t.Fatal(err)
	}
	cam := testCamera(t, r3.Vec{}, r3.Vec{Z: -1}, r3.Vec{Y: 1})
	cfg := DefaultConfig()
	lax := newTestRenderer(t, plane, cam, cfg)
	s := lax.Sample(center, testBg)
	if s.Hit.Status != sphtrace.StatusExhausted {
		t.Fatalf("got status %s, want exhausted", s.Hit.Status)
	}
	if !s.Lit {
		t.Error("exhausted ray in range should be shaded by default")
	}
	cfg.StrictHits = true
	strict := newTestRenderer(t, plane, cam, cfg)
	if got := strict.Pixel(center, testBg); got != testBg {
		t.Errorf("strict renderer shaded an exhausted ray: %+v", got)
	}
}

func TestNewRendererInvalid(t *testing.T) {
	cam := testCamera(t, r3.Vec{}, r3.Vec{Z: -1}, r3.Vec{Y: 1})
	bad := []func(c *Config){
		func(c *Config) { c.Blend = 2 },
		func(c *Config) { c.Method = 7 },
		func(c *Config) { c.Tracer.MaxSteps = 0 },
	}
	for i, fn := range bad {
		cfg := DefaultConfig()
		fn(&cfg)
		if _, err := NewRenderer(sphereScene(t), cam, cfg); err == nil {
			t.Errorf("case %d: expected error", i)
		}
	}
	if _, err := NewRenderer(nil, cam, DefaultConfig()); err == nil {
		t.Error("expected error for nil scene")
	}
}

func TestComposite(t *testing.T) {
	// The blend weight scales the lighting and becomes the alpha.
	bg := Color{R: 0.1, G: 0.2, B: 0.3, A: 1}
	lighting := r3.Vec{X: 1, Y: 0.5}
	var tests = []struct {
		blend float32
		want  Color
	}{
		{blend: 0.5, want: Color{R: 0.6, G: 0.45, B: 0.3, A: 0.5}},
		{blend: 0.25, want: Color{R: 0.35, G: 0.325, B: 0.3, A: 0.25}},
		{blend: 1, want: Color{R: 1.1, G: 0.7, B: 0.3, A: 1}},
	}
	for _, test := range tests {
		if got := Composite(bg, lighting, test.blend); !colorWithin(got, test.want, 1e-6) {
			t.Errorf("blend %g: got %+v, want %+v", test.blend, got, test.want)
		}
	}
}

func TestColorConversion(t *testing.T) {
	for _, c := range []color.NRGBA{
		{R: 0, G: 0, B: 0, A: 255},
		{R: 1, G: 128, B: 254, A: 255},
		{R: 255, G: 255, B: 255, A: 255},
		{R: 200, G: 100, B: 50, A: 128},
	} {
		if got := ColorFrom(c).NRGBA(); got != c {
			t.Errorf("round trip of %v gave %v", c, got)
		}
	}
	over := Color{R: 1.5, G: -0.2, B: float32(math.NaN()), A: 0.5}
	if got, want := over.NRGBA(), (color.NRGBA{R: 255, G: 0, B: 0, A: 128}); got != want {
		t.Errorf("clamped color got %v, want %v", got, want)
	}
	if got, want := HexColor("#FF8000"), (Color{R: 1, G: 128. / 255, B: 0, A: 1}); !colorWithin(got, want, 1e-6) {
		t.Errorf("hex color got %+v, want %+v", got, want)
	}
}

func uniformImage(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func TestFrameDeterministic(t *testing.T) {
	const w, h = 48, 32
	cam := testCamera(t, r3.Vec{X: 0.5, Y: 0.5, Z: 1}, r3.Vec{Z: -5}, r3.Vec{Y: 1})
	r := newTestRenderer(t, sphereScene(t), cam, DefaultConfig())
	bg := uniformImage(w, h, color.NRGBA{R: 20, G: 40, B: 60, A: 255})
	var images [][]byte
	var stats []Stats
	for _, workers := range []int{1, 3, 8} {
		img, st, err := Frame(context.Background(), r, bg, w, h, workers)
		if err != nil {
			t.Fatal(err)
		}
		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			t.Fatal(err)
		}
		images = append(images, buf.Bytes())
		stats = append(stats, st)
	}
	for i := 1; i < len(images); i++ {
		equal, err := cmpimg.EqualApprox("png", images[0], images[i], imgDelta)
		if err != nil {
			t.Fatal(err)
		}
		if !equal {
			t.Errorf("frame %d differs from single worker frame", i)
		}
		if stats[i].Lit != stats[0].Lit || stats[i].Converged != stats[0].Converged {
			t.Errorf("stats %d differ: %+v vs %+v", i, stats[i], stats[0])
		}
	}
	st := stats[0]
	if st.Pixels != w*h || len(st.Steps) != w*h {
		t.Errorf("got %d pixels and %d step counts, want %d", st.Pixels, len(st.Steps), w*h)
	}
	if st.Lit == 0 || st.Lit == st.Pixels {
		t.Errorf("expected sphere to cover part of the frame, lit %d of %d", st.Lit, st.Pixels)
	}
	if st.Converged+st.Escaped+st.Exhausted != st.Pixels {
		t.Errorf("status counts do not add up: %+v", st)
	}
}

func TestFrameErrors(t *testing.T) {
	cam := testCamera(t, r3.Vec{}, r3.Vec{Z: -1}, r3.Vec{Y: 1})
	r := newTestRenderer(t, sphereScene(t), cam, DefaultConfig())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, _, err := Frame(ctx, r, nil, 8, 8, 2); !errors.Is(err, context.Canceled) {
		t.Errorf("cancelled frame got %v, want context.Canceled", err)
	}
	bg := uniformImage(4, 4, color.NRGBA{A: 255})
	if _, _, err := Frame(context.Background(), r, bg, 8, 8, 2); err == nil {
		t.Error("expected error for mismatched background size")
	}
	if _, _, err := Frame(context.Background(), r, nil, 0, 8, 2); err == nil {
		t.Error("expected error for empty frame")
	}
}

func TestFitBackground(t *testing.T) {
	c := color.NRGBA{R: 90, G: 160, B: 30, A: 255}
	img, err := FitBackground(uniformImage(5, 4, c), 16, 9)
	if err != nil {
		t.Fatal(err)
	}
	if sz := img.Bounds().Size(); sz != (image.Point{X: 16, Y: 9}) {
		t.Fatalf("got size %v, want 16x9", sz)
	}
	got := img.NRGBAAt(8, 4)
	if absDiff(got.R, c.R) > 1 || absDiff(got.G, c.G) > 1 || absDiff(got.B, c.B) > 1 {
		t.Errorf("resized uniform image color %v, want %v", got, c)
	}
}

func TestStepHistogram(t *testing.T) {
	var buf bytes.Buffer
	steps := []int{0, 1, 1, 2, 3, 5, 8, 13, 300}
	if err := WriteStepHistogram(&buf, steps, 10); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(buf.String(), "\x89PNG") {
		t.Error("histogram is not a PNG image")
	}
	if err := WriteStepHistogram(&buf, []int{0, 0}, 10); err == nil {
		t.Error("expected error without traced pixels")
	}
}

func TestWriteFragmentConfig(t *testing.T) {
	var buf bytes.Buffer
	if _, err := WriteFragment(&buf, sphereScene(t), DefaultConfig()); err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"const float BLEND=0.5;", "const bool FLIP_Y=true;", "const float SHININESS=32.;"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("fragment shader missing %q", want)
		}
	}
}

func BenchmarkPixel(b *testing.B) {
	cam := testCamera(b, r3.Vec{}, r3.Vec{Z: -1}, r3.Vec{Y: 1})
	r := newTestRenderer(b, sphereScene(b), cam, DefaultConfig())
	uv := r2.Vec{X: 0.52, Y: 0.47}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		r.Pixel(uv, testBg)
	}
}

func colorWithin(a, b Color, tol float32) bool {
	return abs32(a.R-b.R) <= tol && abs32(a.G-b.G) <= tol && abs32(a.B-b.B) <= tol && abs32(a.A-b.A) <= tol
}

func abs32(f float32) float32 {
	if f < 0 {
		return -f
	}
	return f
}

func absDiff(a, b uint8) int {
	d := int(a) - int(b)
	if d < 0 {
		return -d
	}
	return d
}
