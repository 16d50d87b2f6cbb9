package glbuild

import (
	_ "embed"
	"errors"
	"io"
	"strconv"

	"github.com/soypat/glgl/math/ms3"
)

//go:embed raymarch.glsl
var raymarchSource string

// FragmentConfig holds the constants baked into a generated fragment shader.
type FragmentConfig struct {
	Epsilon       float32
	MaxSteps      int
	MaxDistance   float32
	Shininess     float32
	Blend         float32
	FlipY         bool
	DiffuseColor  ms3.Vec
	DiffusePower  float32
	SpecularColor ms3.Vec
	SpecularPower float32
}

// WriteFragment writes a GLSL 3.30 fragment shader that sphere traces root
// for every pixel and composites the lit surface over a background texture.
// The shader expects uniforms projection_inverse and view (camera-to-world),
// a sampler2D background and the interpolated screen coordinate uv in [0,1].
func WriteFragment(w io.Writer, root Shader, cfg FragmentConfig) (n int, err error) {
	if cfg.MaxSteps <= 0 || cfg.Epsilon <= 0 || cfg.MaxDistance <= cfg.Epsilon {
		return 0, errors.New("invalid fragment shader constants")
	}
	baseName, nodes, err := ParseAppendNodes(nil, root)
	if err != nil {
		return 0, err
	}
	b := make([]byte, 0, 1024)
	b = append(b, "#version 330 core\n\n"...)
	b = appendFloatConst(b, "EPSILON", cfg.Epsilon)
	b = appendConst(b, "int", "MAX_STEPS", appendInt(nil, cfg.MaxSteps))
	b = appendFloatConst(b, "MAX_DISTANCE", cfg.MaxDistance)
	b = appendFloatConst(b, "SHININESS", cfg.Shininess)
	b = appendFloatConst(b, "BLEND", cfg.Blend)
	flip := "false"
	if cfg.FlipY {
		flip = "true"
	}
	b = appendConst(b, "bool", "FLIP_Y", []byte(flip))
	b = appendVec3Const(b, "DIFFUSE_COLOR", cfg.DiffuseColor)
	b = appendFloatConst(b, "DIFFUSE_POWER", cfg.DiffusePower)
	b = appendVec3Const(b, "SPECULAR_COLOR", cfg.SpecularColor)
	b = appendFloatConst(b, "SPECULAR_POWER", cfg.SpecularPower)
	b = append(b, '\n')
	ngot, err := w.Write(b)
	n += ngot
	if err != nil {
		return n, err
	}
	ngot, err = WriteShaders(w, nodes, b[:0])
	n += ngot
	if err != nil {
		return n, err
	}
	b = append(b[:0], "float sdf(vec3 p) {\nreturn "...)
	b = append(b, baseName...)
	b = append(b, "(p);\n}\n\n"...)
	b = append(b, raymarchSource...)
	ngot, err = w.Write(b)
	n += ngot
	return n, err
}

func appendConst(b []byte, typ, name string, value []byte) []byte {
	b = append(b, "const "...)
	b = append(b, typ...)
	b = append(b, ' ')
	b = append(b, name...)
	b = append(b, '=')
	b = append(b, value...)
	return append(b, ';', '\n')
}

func appendFloatConst(b []byte, name string, v float32) []byte {
	return AppendFloatDecl(append(b, "const "...), name, v)
}

func appendVec3Const(b []byte, name string, v ms3.Vec) []byte {
	return AppendVec3Decl(append(b, "const "...), name, v)
}

func appendInt(b []byte, v int) []byte {
	return strconv.AppendInt(b, int64(v), 10)
}
