// Command sphtrace renders a distance field scene over a background image
// and optionally writes the equivalent GLSL fragment shader.
package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/fogleman/fauxgl"
	"github.com/soypat/sphtrace"
	"github.com/soypat/sphtrace/render"
	"github.com/soypat/sphtrace/scene"
)

func main() {
	var (
		configPath = flag.String("config", "", "JSON scene file. Empty renders the default scene.")
		bgPath     = flag.String("bg", "", "Background image. Empty uses opaque black.")
		output     = flag.String("o", "sphtrace.png", "Output PNG file.")
		width      = flag.Int("w", 640, "Frame width in pixels.")
		height     = flag.Int("h", 360, "Frame height in pixels.")
		workers    = flag.Int("workers", 0, "Rendering goroutines. Zero uses one per CPU.")
		glslPath   = flag.String("glsl", "", "Write the GLSL fragment shader of the scene to this file.")
		histPath   = flag.String("hist", "", "Write a histogram of tracer steps per pixel to this PNG file.")
		bins       = flag.Int("bins", 30, "Histogram bins.")
		timeout    = flag.Duration("timeout", 0, "Abort rendering after this long. Zero means no limit.")
	)
	flag.Parse()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if *timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, *timeout)
		defer cancel()
	}
	err := run(ctx, options{
		config:  *configPath,
		bg:      *bgPath,
		output:  *output,
		width:   *width,
		height:  *height,
		workers: *workers,
		glsl:    *glslPath,
		hist:    *histPath,
		bins:    *bins,
	})
	if err != nil {
		log.Fatal(err)
	}
}

type options struct {
	config, bg, output string
	width, height      int
	workers            int
	glsl, hist         string
	bins               int
}

func run(ctx context.Context, opts options) error {
	file := scene.DefaultFile()
	if opts.config != "" {
		var err error
		file, err = scene.LoadFile(opts.config)
		if err != nil {
			return err
		}
	}
	sdf, err := file.Build()
	if err != nil {
		return fmt.Errorf("building scene: %w", err)
	}
	cfg, err := file.RenderConfig()
	if err != nil {
		return err
	}
	if opts.height <= 0 {
		return fmt.Errorf("invalid frame height %d", opts.height)
	}
	cam, err := file.CameraParams(float64(opts.width) / float64(opts.height))
	if err != nil {
		return fmt.Errorf("camera: %w", err)
	}
	if opts.glsl != "" {
		if err := writeGLSL(opts.glsl, sdf, cfg); err != nil {
			return err
		}
		log.Println("wrote", opts.glsl)
	}

	var bg image.Image
	if opts.bg != "" {
		img, err := fauxgl.LoadImage(opts.bg)
		if err != nil {
			return err
		}
		bg, err = render.FitBackground(img, opts.width, opts.height)
		if err != nil {
			return err
		}
	}
	r, err := render.NewRenderer(sdf, cam, cfg)
	if err != nil {
		return err
	}
	start := time.Now()
	img, stats, err := render.Frame(ctx, r, bg, opts.width, opts.height, opts.workers)
	if err != nil {
		return err
	}
	log.Printf("rendered %dx%d %s scene in %s: %d lit, %d converged, %d escaped, %d exhausted",
		opts.width, opts.height, file.Scene.Kind, time.Since(start), stats.Lit, stats.Converged, stats.Escaped, stats.Exhausted)
	if err := fauxgl.SavePNG(opts.output, img); err != nil {
		return err
	}
	if opts.hist != "" {
		fp, err := os.Create(opts.hist)
		if err != nil {
			return err
		}
		defer fp.Close()
		if err := render.WriteStepHistogram(fp, stats.Steps, opts.bins); err != nil {
			return err
		}
		return fp.Close()
	}
	return nil
}

func writeGLSL(path string, sdf sphtrace.SDF3, cfg render.Config) error {
	fp, err := os.Create(path)
	if err != nil {
		return err
	}
	defer fp.Close()
	if _, err := render.WriteFragment(fp, sdf, cfg); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return fp.Close()
}
