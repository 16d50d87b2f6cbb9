package sphtrace

import (
	"github.com/soypat/glgl/math/ms3"
	"github.com/soypat/sphtrace/glbuild"
	"github.com/soypat/sphtrace/internal/d4"
	"gonum.org/v1/gonum/spatial/r3"
)

// GLSL generation for the built-in distance fields. Every SDF3 returned by
// this package also implements glbuild.Shader.

func f32(v float64) float32 { return float32(v) }

func ms3Vec(v r3.Vec) ms3.Vec {
	return ms3.Vec{X: f32(v.X), Y: f32(v.Y), Z: f32(v.Z)}
}

func vec4Array(v d4.Vec) [4]float32 {
	return [4]float32{f32(v.X), f32(v.Y), f32(v.Z), f32(v.W)}
}

func fappend(b []byte, v float64, neg, decimal byte) []byte {
	return glbuild.AppendFloat(b, f32(v), neg, decimal)
}

// unsupported stands in for children that cannot be converted to GLSL.
// ForEachChild reports them before any code is written.
type unsupported struct{}

func (unsupported) AppendShaderName(b []byte) []byte { return append(b, "unsupported_sdf"...) }
func (unsupported) AppendShaderBody(b []byte) []byte { return append(b, "return 0.;"...) }
func (unsupported) ForEachChild(func(glbuild.Shader) error) error { return nil }

func shaderOf(s SDF3) glbuild.Shader {
	if sh, ok := s.(glbuild.Shader); ok {
		return sh
	}
	return unsupported{}
}

// appendCall appends a call of the child shader on argument arg.
func appendCall(b []byte, child SDF3, arg string) []byte {
	b = shaderOf(child).AppendShaderName(b)
	b = append(b, '(')
	b = append(b, arg...)
	return append(b, ')')
}

func forEachSDF(children []SDF3, fn func(glbuild.Shader) error) error {
	for _, child := range children {
		s, err := glbuild.AsShader(child)
		if err != nil {
			return err
		}
		if err = fn(s); err != nil {
			return err
		}
	}
	return nil
}

func appendHashed(b []byte, prefix string, s glbuild.Shader) []byte {
	return glbuild.AppendHashedName(b, prefix, s.AppendShaderBody(nil))
}

func (s *sphere) ForEachChild(fn func(glbuild.Shader) error) error { return nil }

func (s *sphere) AppendShaderName(b []byte) []byte {
	b = append(b, "sphere"...)
	return fappend(b, s.r, 'n', 'p')
}

func (s *sphere) AppendShaderBody(b []byte) []byte {
	b = append(b, "return length(p)-"...)
	b = fappend(b, s.r, '-', '.')
	return append(b, ';')
}

func (s *torus) ForEachChild(fn func(glbuild.Shader) error) error { return nil }

func (s *torus) AppendShaderName(b []byte) []byte {
	b = append(b, "torus"...)
	b = fappend(b, s.major, 'n', 'p')
	b = append(b, '_')
	return fappend(b, s.minor, 'n', 'p')
}

func (s *torus) AppendShaderBody(b []byte) []byte {
	b = append(b, "vec2 q=vec2(length(p.xz)-"...)
	b = fappend(b, s.major, '-', '.')
	b = append(b, ",p.y);\nreturn length(q)-"...)
	b = fappend(b, s.minor, '-', '.')
	return append(b, ';')
}

func (s *translate3) ForEachChild(fn func(glbuild.Shader) error) error {
	return forEachSDF([]SDF3{s.sdf}, fn)
}

func (s *translate3) AppendShaderName(b []byte) []byte {
	return appendHashed(b, "translate", s)
}

func (s *translate3) AppendShaderBody(b []byte) []byte {
	b = append(b, "return "...)
	b = appendCall(b, s.sdf, "p-"+string(glbuild.AppendVec3(nil, ms3Vec(s.offset))))
	return append(b, ';')
}

func (s *union3) ForEachChild(fn func(glbuild.Shader) error) error {
	return forEachSDF(s.sdf, fn)
}

func (s *union3) AppendShaderName(b []byte) []byte {
	return appendHashed(b, "union", s)
}

func (s *union3) AppendShaderBody(b []byte) []byte {
	return appendFold(b, "min", s.sdf)
}

func (s *intersection3) ForEachChild(fn func(glbuild.Shader) error) error {
	return forEachSDF(s.sdf, fn)
}

func (s *intersection3) AppendShaderName(b []byte) []byte {
	return appendHashed(b, "intersect", s)
}

func (s *intersection3) AppendShaderBody(b []byte) []byte {
	return appendFold(b, "max", s.sdf)
}

// appendFold appends a body folding the children's distances with fn.
func appendFold(b []byte, fn string, children []SDF3) []byte {
	b = glbuild.AppendDistanceDecl(b, shaderOf(children[0]), "d", "p")
	for _, child := range children[1:] {
		b = append(b, "d="...)
		b = append(b, fn...)
		b = append(b, "(d,"...)
		b = appendCall(b, child, "p")
		b = append(b, ");\n"...)
	}
	return append(b, "return d;"...)
}

func (s *complement3) ForEachChild(fn func(glbuild.Shader) error) error {
	return forEachSDF([]SDF3{s.sdf}, fn)
}

func (s *complement3) AppendShaderName(b []byte) []byte {
	return appendHashed(b, "complement", s)
}

func (s *complement3) AppendShaderBody(b []byte) []byte {
	b = append(b, "return -"...)
	b = appendCall(b, s.sdf, "p")
	return append(b, ';')
}

func (p Plane) ForEachChild(fn func(glbuild.Shader) error) error { return nil }

func (p Plane) AppendShaderName(b []byte) []byte {
	return appendHashed(b, "plane", p)
}

func (p Plane) AppendShaderBody(b []byte) []byte {
	b = append(b, "return dot(p-"...)
	b = glbuild.AppendVec3(b, ms3Vec(p.Origin))
	b = append(b, ',')
	b = glbuild.AppendVec3(b, ms3Vec(p.Normal))
	return append(b, ");"...)
}

func (s *spherinderSlice) ForEachChild(fn func(glbuild.Shader) error) error { return nil }

func (s *spherinderSlice) AppendShaderName(b []byte) []byte {
	return appendHashed(b, "spherinder_slice", s)
}

func (s *spherinderSlice) AppendShaderBody(b []byte) []byte {
	b = glbuild.AppendVec4Decl(b, "o", vec4Array(s.h.Origin))
	b = glbuild.AppendVec4Decl(b, "u", vec4Array(s.h.U))
	b = glbuild.AppendVec4Decl(b, "v", vec4Array(s.h.V))
	b = glbuild.AppendVec4Decl(b, "w", vec4Array(s.h.W))
	b = glbuild.AppendVec4Decl(b, "c", vec4Array(s.s.Center))
	b = append(b, "vec4 q=o+p.x*u+p.y*v+p.z*w-c;\nreturn length(q.xyz)-"...)
	b = fappend(b, s.s.Radius, '-', '.')
	return append(b, ';')
}

func (s *Sweep) ForEachChild(fn func(glbuild.Shader) error) error { return nil }

func (s *Sweep) AppendShaderName(b []byte) []byte {
	return appendHashed(b, "sweep", s)
}

func (s *Sweep) AppendShaderBody(b []byte) []byte {
	b = append(b, "float d=1e20;\n"...)
	for _, sample := range s.samples {
		b = append(b, "d=min(d,length(p-"...)
		b = glbuild.AppendVec3(b, ms3Vec(sample.Center))
		b = append(b, ")-"...)
		b = fappend(b, sample.Radius, '-', '.')
		b = append(b, ");\n"...)
	}
	return append(b, "return d;"...)
}
