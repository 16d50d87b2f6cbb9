package scene

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/soypat/sphtrace"
	"github.com/soypat/sphtrace/camera"
	"github.com/soypat/sphtrace/render"
	"gonum.org/v1/gonum/spatial/r3"
)

// Scene kinds.
const (
	KindPrimitives = "primitives"
	KindSlice      = "slice"
	KindSweep      = "sweep"
)

// File is a JSON scene description. Zero valued settings take the
// defaults of DefaultFile.
type File struct {
	Camera CameraCfg `json:"camera"`
	Light  LightCfg  `json:"light"`
	Tracer TracerCfg `json:"tracer"`
	Render RenderCfg `json:"render"`
	Scene  SceneCfg  `json:"scene"`
}

// CameraCfg places a perspective camera.
type CameraCfg struct {
	Eye    r3.Vec `json:"eye"`
	Target r3.Vec `json:"target"`
	Up     r3.Vec `json:"up"`
	// FovY is the vertical field of view in degrees.
	FovY float64 `json:"fovy"`
	Near float64 `json:"near"`
}

// LightCfg sets the colors of the light attached to the camera.
type LightCfg struct {
	Diffuse       string  `json:"diffuse"`
	DiffusePower  float64 `json:"diffusePower"`
	Specular      string  `json:"specular"`
	SpecularPower float64 `json:"specularPower"`
}

// TracerCfg overrides the sphere tracer constants.
type TracerCfg struct {
	Epsilon     float64 `json:"epsilon"`
	MaxSteps    int     `json:"maxSteps"`
	MaxDistance float64 `json:"maxDistance"`
	Shininess   float64 `json:"shininess"`
}

// RenderCfg sets compositing options.
type RenderCfg struct {
	// Method is "unproject" or "ndc".
	Method     string  `json:"method"`
	Blend      float32 `json:"blend"`
	FlipY      *bool   `json:"flipY"`
	StrictHits bool    `json:"strictHits"`
}

// SceneCfg selects and parameterizes the scene.
type SceneCfg struct {
	Kind    string              `json:"kind"`
	Spheres []SphereCfg         `json:"spheres"`
	Tori    []TorusCfg          `json:"tori"`
	Slice   *SliceParams        `json:"slice"`
	Sweep   *sphtrace.AgentPair `json:"sweep"`
}

// DefaultFile returns a scene of a single sphere in front of the camera.
func DefaultFile() File {
	return File{
		Camera: CameraCfg{
			Eye:    r3.Vec{},
			Target: r3.Vec{Z: -1},
			Up:     r3.Vec{Y: 1},
			FovY:   60,
			Near:   0.1,
		},
		Light: LightCfg{
			Diffuse:       "#FFFFFF",
			DiffusePower:  1,
			Specular:      "#FFFFFF",
			SpecularPower: 1,
		},
		Scene: SceneCfg{
			Kind:    KindPrimitives,
			Spheres: []SphereCfg{{Center: r3.Vec{Z: -5}, Radius: 1}},
		},
	}
}

// LoadFile reads a JSON scene description from path.
func LoadFile(path string) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, err
	}
	f, err := Decode(bytes.NewReader(data))
	if err != nil {
		return File{}, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// Decode reads a JSON scene description from r. Unknown fields are an error.
func Decode(r io.Reader) (File, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	var f File
	if err := dec.Decode(&f); err != nil {
		return File{}, err
	}
	f.setDefaults()
	if _, err := f.RenderConfig(); err != nil {
		return File{}, err
	}
	return f, nil
}

func (f *File) setDefaults() {
	def := DefaultFile()
	if f.Camera.Up == (r3.Vec{}) {
		f.Camera.Up = def.Camera.Up
	}
	if f.Camera.Eye == f.Camera.Target {
		f.Camera.Eye, f.Camera.Target = def.Camera.Eye, def.Camera.Target
	}
	if f.Camera.FovY == 0 {
		f.Camera.FovY = def.Camera.FovY
	}
	if f.Camera.Near == 0 {
		f.Camera.Near = def.Camera.Near
	}
	if f.Light.Diffuse == "" {
		f.Light.Diffuse = def.Light.Diffuse
	}
	if f.Light.Specular == "" {
		f.Light.Specular = def.Light.Specular
	}
	if f.Light.DiffusePower == 0 {
		f.Light.DiffusePower = def.Light.DiffusePower
	}
	if f.Light.SpecularPower == 0 {
		f.Light.SpecularPower = def.Light.SpecularPower
	}
	if f.Scene.Kind == "" {
		f.Scene.Kind = KindPrimitives
	}
}

// TracerConfig returns the tracer constants with zero fields defaulted.
func (f File) TracerConfig() sphtrace.Config {
	cfg := sphtrace.DefaultConfig()
	if f.Tracer.Epsilon != 0 {
		cfg.Epsilon = f.Tracer.Epsilon
	}
	if f.Tracer.MaxSteps != 0 {
		cfg.MaxSteps = f.Tracer.MaxSteps
	}
	if f.Tracer.MaxDistance != 0 {
		cfg.MaxDistance = f.Tracer.MaxDistance
	}
	if f.Tracer.Shininess != 0 {
		cfg.Shininess = f.Tracer.Shininess
	}
	return cfg
}

// RenderConfig returns the pixel pipeline configuration of f.
func (f File) RenderConfig() (render.Config, error) {
	cfg := render.DefaultConfig()
	cfg.Tracer = f.TracerConfig()
	if err := cfg.Tracer.Validate(); err != nil {
		return cfg, fmt.Errorf("tracer: %w", err)
	}
	switch f.Render.Method {
	case "", render.RayUnproject.String():
		cfg.Method = render.RayUnproject
	case render.RayNDC.String():
		cfg.Method = render.RayNDC
	default:
		return cfg, fmt.Errorf("unknown ray method %q", f.Render.Method)
	}
	if f.Render.Blend != 0 {
		cfg.Blend = f.Render.Blend
	}
	if f.Render.FlipY != nil {
		cfg.FlipY = *f.Render.FlipY
	}
	cfg.StrictHits = f.Render.StrictHits
	diffuse, err := parseColor(f.Light.Diffuse)
	if err != nil {
		return cfg, fmt.Errorf("diffuse light: %w", err)
	}
	specular, err := parseColor(f.Light.Specular)
	if err != nil {
		return cfg, fmt.Errorf("specular light: %w", err)
	}
	cfg.Light = render.LightConfig{
		DiffuseColor:  diffuse,
		DiffusePower:  f.Light.DiffusePower,
		SpecularColor: specular,
		SpecularPower: f.Light.SpecularPower,
	}
	return cfg, nil
}

func parseColor(hex string) (r3.Vec, error) {
	if len(hex) != 7 || hex[0] != '#' {
		return r3.Vec{}, fmt.Errorf("color %q not of the form #RRGGBB", hex)
	}
	c := render.HexColor(hex)
	return r3.Vec{X: float64(c.R), Y: float64(c.G), Z: float64(c.B)}, nil
}

// CameraParams returns the camera for a frame of the given aspect ratio.
func (f File) CameraParams(aspect float64) (camera.Params, error) {
	proj, err := camera.Perspective(f.Camera.FovY, aspect, f.Camera.Near)
	if err != nil {
		return camera.Params{}, err
	}
	view, err := camera.LookAt(f.Camera.Eye, f.Camera.Target, f.Camera.Up)
	if err != nil {
		return camera.Params{}, err
	}
	return camera.New(proj, view)
}

// Build returns the distance field of the described scene.
func (f File) Build() (sphtrace.SDF3, error) {
	switch f.Scene.Kind {
	case KindPrimitives:
		return Spheres(f.Scene.Spheres, f.Scene.Tori)
	case KindSlice:
		p := DefaultSlice()
		if f.Scene.Slice != nil {
			p = *f.Scene.Slice
		}
		return Slice(p)
	case KindSweep:
		if f.Scene.Sweep == nil {
			return nil, errors.New("sweep scene without agent pair")
		}
		sweep, err := Sweep(*f.Scene.Sweep)
		if err != nil {
			return nil, err
		}
		return sweep, nil
	}
	return nil, fmt.Errorf("unknown scene kind %q", f.Scene.Kind)
}
