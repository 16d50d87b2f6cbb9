// Package render evaluates a distance field scene per pixel and composites
// the lit surface over a background image.
package render

import (
	"errors"
	"fmt"

	"github.com/soypat/sphtrace"
	"github.com/soypat/sphtrace/camera"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// RayMethod selects how primary rays are reconstructed from the camera.
type RayMethod uint8

const (
	// RayUnproject unprojects a near plane point to a view direction and
	// starts rays at the camera position.
	RayUnproject RayMethod = iota
	// RayNDC transforms a near and a far NDC point to world space and starts
	// rays at the near point.
	RayNDC
)

func (m RayMethod) String() string {
	switch m {
	case RayUnproject:
		return "unproject"
	case RayNDC:
		return "ndc"
	}
	return fmt.Sprintf("RayMethod(%d)", uint8(m))
}

// LightConfig sets the colors of the light attached to the camera.
type LightConfig struct {
	DiffuseColor  r3.Vec
	DiffusePower  float64
	SpecularColor r3.Vec
	SpecularPower float64
}

// Config holds the per-pixel pipeline settings.
type Config struct {
	Tracer sphtrace.Config
	Method RayMethod
	// FlipY makes the screen's Y axis point down.
	FlipY bool
	// Blend is used twice on lit pixels: it scales the lighting added to
	// the background and it is also their alpha. Missed pixels keep the
	// background alpha.
	Blend float32
	// StrictHits rejects rays that ran out of steps away from the surface.
	// When false exhausted rays within range are shaded as hits.
	StrictHits bool
	Light      LightConfig
}

// DefaultConfig returns the configuration of the reference overlay: white
// light, half blend, Y flipped.
func DefaultConfig() Config {
	white := r3.Vec{X: 1, Y: 1, Z: 1}
	return Config{
		Tracer: sphtrace.DefaultConfig(),
		Method: RayUnproject,
		FlipY:  true,
		Blend:  0.5,
		Light: LightConfig{
			DiffuseColor:  white,
			DiffusePower:  1,
			SpecularColor: white,
			SpecularPower: 1,
		},
	}
}

// Renderer shades single pixels of a scene. Pixel evaluation reads only
// immutable state so a Renderer is safe for concurrent use.
type Renderer struct {
	scene  sphtrace.SDF3
	cam    camera.Params
	cfg    Config
	tracer *sphtrace.Tracer
}

// NewRenderer returns a renderer of scene as seen from cam.
func NewRenderer(scene sphtrace.SDF3, cam camera.Params, cfg Config) (*Renderer, error) {
	if scene == nil {
		return nil, errors.New("nil scene")
	}
	if cfg.Method > RayNDC {
		return nil, fmt.Errorf("unknown ray method %v", cfg.Method)
	}
	if !(cfg.Blend >= 0 && cfg.Blend <= 1) {
		return nil, fmt.Errorf("blend %g out of range [0,1]", cfg.Blend)
	}
	tracer, err := sphtrace.NewTracer(cfg.Tracer)
	if err != nil {
		return nil, err
	}
	return &Renderer{scene: scene, cam: cam, cfg: cfg, tracer: tracer}, nil
}

// Config returns the renderer's configuration.
func (r *Renderer) Config() Config { return r.cfg }

// Ray returns the primary ray through the screen coordinate uv in [0,1]x[0,1].
func (r *Renderer) Ray(uv r2.Vec) (sphtrace.Ray, error) {
	ndc := camera.ScreenToNDC(uv, r.cfg.FlipY)
	if r.cfg.Method == RayNDC {
		return r.cam.NDCRay(ndc, r.cfg.Tracer.Epsilon)
	}
	dir, ok := r.cam.UnprojectDirection(ndc)
	if !ok {
		return sphtrace.Ray{}, sphtrace.ErrDegenerateDirection
	}
	return sphtrace.NewRay(r.cam.Position(), dir)
}

// Sample is the outcome of shading one pixel.
type Sample struct {
	Color Color
	Hit   sphtrace.Hit
	// Lit is true when the lighting overlay was composited.
	Lit bool
}

// Sample traces the ray through uv and composites its lighting over bg.
// Pixels whose ray misses, or whose ray or normal is degenerate, keep bg.
func (r *Renderer) Sample(uv r2.Vec, bg Color) Sample {
	s := Sample{Color: bg}
	ray, err := r.Ray(uv)
	if err != nil {
		return s
	}
	s.Hit = r.tracer.Trace(r.scene, ray)
	if !r.tracer.InRange(ray, s.Hit) {
		return s
	}
	if r.cfg.StrictHits && s.Hit.Status == sphtrace.StatusExhausted && !r.tracer.OnSurface(r.scene, s.Hit) {
		return s
	}
	normal, ok := sphtrace.Normal3(r.scene, s.Hit.Point, r.cfg.Tracer.Epsilon)
	if !ok {
		return s
	}
	light := sphtrace.PointLight{
		Position:      ray.Origin,
		DiffuseColor:  r.cfg.Light.DiffuseColor,
		DiffusePower:  r.cfg.Light.DiffusePower,
		SpecularColor: r.cfg.Light.SpecularColor,
		SpecularPower: r.cfg.Light.SpecularPower,
	}
	lighting := sphtrace.Shade(light, s.Hit.Point, normal, r.cfg.Tracer.Shininess)
	s.Color = Composite(bg, lighting.Sum(), r.cfg.Blend)
	s.Lit = true
	return s
}

// Pixel returns the color of the pixel at uv given its background color.
// It is a pure function of its arguments and the renderer's configuration.
func (r *Renderer) Pixel(uv r2.Vec, bg Color) Color {
	return r.Sample(uv, bg).Color
}
