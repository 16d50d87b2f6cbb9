package render

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"runtime"

	"github.com/nfnt/resize"
	"github.com/soypat/sphtrace"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/spatial/r2"
)

// Stats summarizes the rays traced for a frame.
type Stats struct {
	Pixels int
	// Lit counts pixels that received the lighting overlay.
	Lit int
	// Converged, Escaped and Exhausted count rays by terminal state.
	Converged int
	Escaped   int
	Exhausted int
	// Steps holds the tracer iterations of every pixel in row-major order.
	// Zero means no ray was traced for the pixel.
	Steps []int
}

func (s *Stats) add(sample Sample) {
	s.Pixels++
	if sample.Lit {
		s.Lit++
	}
	switch sample.Hit.Status {
	case sphtrace.StatusConverged:
		s.Converged++
	case sphtrace.StatusEscaped:
		s.Escaped++
	case sphtrace.StatusExhausted:
		s.Exhausted++
	}
}

func (s *Stats) merge(o Stats) {
	s.Pixels += o.Pixels
	s.Lit += o.Lit
	s.Converged += o.Converged
	s.Escaped += o.Escaped
	s.Exhausted += o.Exhausted
}

// black is the background of frames rendered without one.
var black = Color{A: 1}

// Frame renders a width x height image by evaluating r.Pixel at the center
// of every pixel. bg must be nil or exactly width x height; use
// FitBackground to scale it. Rows are distributed across workers goroutines,
// or runtime.NumCPU() if workers is not positive. The result does not depend
// on the number of workers. Rendering stops early when ctx is cancelled.
func Frame(ctx context.Context, r *Renderer, bg image.Image, width, height, workers int) (*image.NRGBA, Stats, error) {
	if r == nil {
		return nil, Stats{}, errors.New("nil renderer")
	}
	if width <= 0 || height <= 0 {
		return nil, Stats{}, fmt.Errorf("invalid frame size %dx%d", width, height)
	}
	if bg != nil {
		sz := bg.Bounds().Size()
		if sz.X != width || sz.Y != height {
			return nil, Stats{}, fmt.Errorf("background is %dx%d, frame is %dx%d", sz.X, sz.Y, width, height)
		}
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	workers = min(workers, height)

	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	steps := make([]int, width*height)
	rowStats := make([]Stats, height)
	rows := make(chan int, height)
	for y := 0; y < height; y++ {
		rows <- y
	}
	close(rows)

	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < workers; i++ {
		g.Go(func() error {
			for y := range rows {
				if err := ctx.Err(); err != nil {
					return err
				}
				// Each row is written by exactly one worker.
				rowStats[y] = renderRow(r, bg, img, steps, y)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, Stats{}, err
	}
	var stats Stats
	for _, rs := range rowStats {
		stats.merge(rs)
	}
	stats.Steps = steps
	return img, stats, nil
}

func renderRow(r *Renderer, bg image.Image, dst *image.NRGBA, steps []int, y int) (stats Stats) {
	size := dst.Bounds().Size()
	v := (float64(y) + 0.5) / float64(size.Y)
	for x := 0; x < size.X; x++ {
		background := black
		if bg != nil {
			origin := bg.Bounds().Min
			background = ColorFrom(bg.At(origin.X+x, origin.Y+y))
		}
		uv := r2.Vec{X: (float64(x) + 0.5) / float64(size.X), Y: v}
		sample := r.Sample(uv, background)
		dst.SetNRGBA(x, y, sample.Color.NRGBA())
		steps[y*size.X+x] = sample.Hit.Steps
		stats.add(sample)
	}
	return stats
}

// FitBackground scales img to width x height with bilinear interpolation.
// Images already of the requested size are returned as an *image.NRGBA copy.
func FitBackground(img image.Image, width, height int) (*image.NRGBA, error) {
	if img == nil {
		return nil, errors.New("nil background image")
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid background size %dx%d", width, height)
	}
	sz := img.Bounds().Size()
	if sz.X != width || sz.Y != height {
		img = resize.Resize(uint(width), uint(height), img, resize.Bilinear)
	}
	dst := image.NewNRGBA(image.Rect(0, 0, width, height))
	draw.Draw(dst, dst.Bounds(), img, img.Bounds().Min, draw.Src)
	return dst, nil
}
