// Command sphview opens a window that renders a distance field scene every
// frame from an orbiting camera. Arrow keys orbit, W and S zoom.
// Slice scenes sweep the slicing hyperplane along its normal.
package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"image/draw"
	"log"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/soypat/sphtrace"
	"github.com/soypat/sphtrace/render"
	"github.com/soypat/sphtrace/scene"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	tps = 30
	// sliceSpeed is how fast the slicing hyperplane moves along its normal per second.
	sliceSpeed = 10
	// slicePeriod is the distance after which the slice animation restarts.
	slicePeriod = 50
)

func main() {
	configPath := flag.String("config", "", "JSON scene file. Empty shows the default scene.")
	width := flag.Int("w", 320, "Render width in pixels.")
	height := flag.Int("h", 180, "Render height in pixels.")
	workers := flag.Int("workers", 0, "Rendering goroutines. Zero uses one per CPU.")
	flag.Parse()

	file := scene.DefaultFile()
	if *configPath != "" {
		var err error
		file, err = scene.LoadFile(*configPath)
		if err != nil {
			log.Fatal(err)
		}
	}
	v, err := newViewer(file, *width, *height, *workers)
	if err != nil {
		log.Fatal(err)
	}
	ebiten.SetWindowTitle("sphview")
	ebiten.SetWindowSize(*width*2, *height*2)
	ebiten.SetTPS(tps)
	if err := ebiten.RunGame(v); err != nil {
		log.Fatal(err)
	}
}

type viewer struct {
	file          scene.File
	cfg           render.Config
	width, height int
	workers       int

	sdf      sphtrace.SDF3
	yaw      float64
	pitch    float64
	distance float64
	sliceW   float64
	dirty    bool

	fb *ebiten.Image
}

func newViewer(file scene.File, width, height, workers int) (*viewer, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid window size %dx%d", width, height)
	}
	cfg, err := file.RenderConfig()
	if err != nil {
		return nil, err
	}
	sdf, err := file.Build()
	if err != nil {
		return nil, err
	}
	rel := r3.Sub(file.Camera.Eye, file.Camera.Target)
	v := &viewer{
		file:     file,
		cfg:      cfg,
		width:    width,
		height:   height,
		workers:  workers,
		sdf:      sdf,
		distance: r3.Norm(rel),
		yaw:      math.Atan2(rel.X, rel.Z),
		pitch:    math.Asin(rel.Y / r3.Norm(rel)),
		dirty:    true,
	}
	return v, nil
}

func (v *viewer) Update() error {
	const turn = math.Pi / tps
	if ebiten.IsKeyPressed(ebiten.KeyArrowLeft) {
		v.yaw -= turn
		v.dirty = true
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowRight) {
		v.yaw += turn
		v.dirty = true
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowUp) {
		v.pitch = math.Min(v.pitch+turn, math.Pi/2-0.01)
		v.dirty = true
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowDown) {
		v.pitch = math.Max(v.pitch-turn, -math.Pi/2+0.01)
		v.dirty = true
	}
	if ebiten.IsKeyPressed(ebiten.KeyW) {
		v.distance *= 0.97
		v.dirty = true
	}
	if ebiten.IsKeyPressed(ebiten.KeyS) {
		v.distance /= 0.97
		v.dirty = true
	}
	if v.file.Scene.Kind == scene.KindSlice {
		v.sliceW = math.Mod(v.sliceW+sliceSpeed/float64(tps), slicePeriod)
		p := scene.DefaultSlice()
		if v.file.Scene.Slice != nil {
			p = *v.file.Scene.Slice
		}
		p.W = v.sliceW
		sdf, err := scene.Slice(p)
		if err != nil {
			return err
		}
		v.sdf = sdf
		v.dirty = true
	}
	return nil
}

func (v *viewer) eye() r3.Vec {
	sy, cy := math.Sincos(v.yaw)
	sp, cp := math.Sincos(v.pitch)
	rel := r3.Vec{X: v.distance * cp * sy, Y: v.distance * sp, Z: v.distance * cp * cy}
	return r3.Add(v.file.Camera.Target, rel)
}

func (v *viewer) Draw(screen *ebiten.Image) {
	if v.fb == nil {
		v.fb = ebiten.NewImage(v.width, v.height)
	}
	if v.dirty {
		if err := v.render(); err != nil {
			log.Println("render:", err)
		}
		v.dirty = false
	}
	screen.DrawImage(v.fb, nil)
}

func (v *viewer) render() error {
	file := v.file
	file.Camera.Eye = v.eye()
	cam, err := file.CameraParams(float64(v.width) / float64(v.height))
	if err != nil {
		return err
	}
	r, err := render.NewRenderer(v.sdf, cam, v.cfg)
	if err != nil {
		return err
	}
	img, _, err := render.Frame(context.Background(), r, nil, v.width, v.height, v.workers)
	if err != nil {
		return err
	}
	// ebiten expects premultiplied alpha.
	rgba := image.NewRGBA(img.Bounds())
	draw.Draw(rgba, rgba.Bounds(), img, image.Point{}, draw.Src)
	v.fb.WritePixels(rgba.Pix)
	return nil
}

func (v *viewer) Layout(outsideWidth, outsideHeight int) (int, int) {
	return v.width, v.height
}
