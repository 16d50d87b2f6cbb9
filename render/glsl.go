package render

import (
	"io"

	"github.com/soypat/glgl/math/ms3"
	"github.com/soypat/sphtrace"
	"github.com/soypat/sphtrace/glbuild"
	"gonum.org/v1/gonum/spatial/r3"
)

// FragmentConfig returns the shader constants matching c so that a GPU host
// reproduces the output of Renderer.Pixel up to float32 precision.
func (c Config) FragmentConfig() glbuild.FragmentConfig {
	return glbuild.FragmentConfig{
		Epsilon:       float32(c.Tracer.Epsilon),
		MaxSteps:      c.Tracer.MaxSteps,
		MaxDistance:   float32(c.Tracer.MaxDistance),
		Shininess:     float32(c.Tracer.Shininess),
		Blend:         c.Blend,
		FlipY:         c.FlipY,
		DiffuseColor:  vec(c.Light.DiffuseColor),
		DiffusePower:  float32(c.Light.DiffusePower),
		SpecularColor: vec(c.Light.SpecularColor),
		SpecularPower: float32(c.Light.SpecularPower),
	}
}

// WriteFragment writes the GLSL fragment shader rendering scene with cfg.
func WriteFragment(w io.Writer, scene sphtrace.SDF3, cfg Config) (int, error) {
	root, err := glbuild.AsShader(scene)
	if err != nil {
		return 0, err
	}
	return glbuild.WriteFragment(w, root, cfg.FragmentConfig())
}

func vec(v r3.Vec) ms3.Vec {
	return ms3.Vec{X: float32(v.X), Y: float32(v.Y), Z: float32(v.Z)}
}
