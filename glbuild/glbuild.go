package glbuild

import (
	"bytes"
	"errors"
	"fmt"
	"hash/fnv"
	"io"
	"strconv"

	"github.com/soypat/glgl/math/ms3"
)

// Shader stores information for automatically generating SDF Shader pipelines.
type Shader interface {
	// AppendShaderName appends the name of the GL shader function
	// to the buffer and returns the result. It should be unique to that shader.
	AppendShaderName(b []byte) []byte
	// AppendShaderBody appends the body of the shader function to the
	// buffer and returns the result. The body has a single vec3 argument p.
	AppendShaderBody(b []byte) []byte
	// ForEachChild calls fn for every shader the body calls into.
	ForEachChild(fn func(s Shader) error) error
}

// ErrNotShader is returned when a node of a distance field tree cannot be
// converted to GLSL.
var ErrNotShader = errors.New("sdf does not implement glbuild.Shader")

// ParseAppendNodes parses the shader object tree and appends all nodes in Depth First order
// to the dst Shader argument buffer and returns the result.
func ParseAppendNodes(dst []Shader, root Shader) (baseName string, nodes []Shader, err error) {
	if root == nil {
		return "", nil, errors.New("nil shader object")
	}
	baseName = string(root.AppendShaderName([]byte{}))
	if baseName == "" {
		return "", nil, errors.New("empty shader name")
	}
	dst, err = AppendAllNodes(dst, root)
	if err != nil {
		return "", nil, err
	}
	return baseName, dst, nil
}

// AppendAllNodes BFS iterates over all of root's descendants and appends all nodes
// found to dst. Parents always precede their children.
func AppendAllNodes(dst []Shader, root Shader) ([]Shader, error) {
	children := []Shader{root}
	nilChild := errors.New("got nil child in AppendAllNodes")
	for next := 0; next < len(children); next++ {
		err := children[next].ForEachChild(func(s Shader) error {
			if s == nil {
				return nilChild
			}
			children = append(children, s)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return append(dst, children...), nil
}

// WriteShaders iterates over the argument nodes in reverse order and
// writes their GL code to the writer so callees are declared before callers.
// Nodes sharing a name are written once. scratch is an auxiliary buffer to avoid heap allocations.
func WriteShaders(w io.Writer, nodes []Shader, scratch []byte) (n int, err error) {
	if scratch == nil {
		scratch = make([]byte, 512)
	}
	written := make(map[string]bool, len(nodes))
	for i := len(nodes) - 1; i >= 0; i-- {
		name := string(nodes[i].AppendShaderName(scratch[:0]))
		if written[name] {
			continue
		}
		written[name] = true
		ngot, err := WriteShader(w, nodes[i], scratch[:0])
		n += ngot
		if err != nil {
			return n, err
		}
	}
	return n, nil
}

// WriteShader writes the GL code of a single shader to the writer. scratch is an auxiliary buffer to prevent allocations.
func WriteShader(w io.Writer, s Shader, scratch []byte) (int, error) {
	scratch = scratch[:0]
	scratch = append(scratch, "float "...)
	scratch = s.AppendShaderName(scratch)
	scratch = append(scratch, "(vec3 p) {\n"...)
	scratch = s.AppendShaderBody(scratch)
	scratch = append(scratch, "\n}\n\n"...)
	return w.Write(scratch)
}

// AsShader asserts v implements Shader.
func AsShader(v any) (Shader, error) {
	s, ok := v.(Shader)
	if !ok {
		return nil, fmt.Errorf("%w: %T", ErrNotShader, v)
	}
	return s, nil
}

// AppendHashedName appends prefix followed by a hash of body. Used by shaders
// whose parameters are too many to spell out in the function name.
func AppendHashedName(b []byte, prefix string, body []byte) []byte {
	h := fnv.New64a()
	h.Write(body)
	b = append(b, prefix...)
	b = append(b, '_')
	return strconv.AppendUint(b, h.Sum64(), 36)
}

// AppendVec3Decl appends a vec3 declaration of name initialized to v.
func AppendVec3Decl(b []byte, name string, v ms3.Vec) []byte {
	b = append(b, "vec3 "...)
	b = append(b, name...)
	b = append(b, '=')
	b = AppendVec3(b, v)
	b = append(b, ';', '\n')
	return b
}

// AppendVec3 appends a vec3 literal.
func AppendVec3(b []byte, v ms3.Vec) []byte {
	b = append(b, "vec3("...)
	arr := [3]float32{v.X, v.Y, v.Z}
	b = AppendFloats(b, arr[:], ',', '-', '.')
	return append(b, ')')
}

// AppendVec4Decl appends a vec4 declaration with components x, y, z, w.
func AppendVec4Decl(b []byte, name string, v [4]float32) []byte {
	b = append(b, "vec4 "...)
	b = append(b, name...)
	b = append(b, "=vec4("...)
	b = AppendFloats(b, v[:], ',', '-', '.')
	b = append(b, ')', ';', '\n')
	return b
}

// AppendFloatDecl appends a float declaration of name initialized to v.
func AppendFloatDecl(b []byte, name string, v float32) []byte {
	b = append(b, "float "...)
	b = append(b, name...)
	b = append(b, '=')
	b = AppendFloat(b, v, '-', '.')
	b = append(b, ';', '\n')
	return b
}

// AppendFloat appends the shortest fixed point notation that reads back as v,
// with neg and decimal standing in for the minus sign and decimal point, so
// that the result can be part of an identifier when neg and decimal are
// letters. Distinct values always produce distinct text.
func AppendFloat(b []byte, v float32, neg, decimal byte) []byte {
	start := len(b)
	b = strconv.AppendFloat(b, float64(v), 'f', -1, 32)
	if idx := bytes.IndexByte(b[start:], '.'); idx >= 0 {
		b[start+idx] = decimal
	} else {
		b = append(b, decimal)
	}
	if b[start] == '-' {
		b[start] = neg
	}
	return b
}

func AppendFloats(b []byte, s []float32, sep, neg, decimal byte) []byte {
	for i, v := range s {
		b = AppendFloat(b, v, neg, decimal)
		if sep != 0 && i != len(s)-1 {
			b = append(b, sep)
		}
	}
	return b
}

// AppendDistanceDecl appends a float declaration of name initialized to the
// distance s returns for input.
func AppendDistanceDecl(b []byte, s Shader, name, input string) []byte {
	b = append(b, "float "...)
	b = append(b, name...)
	b = append(b, '=')
	b = s.AppendShaderName(b)
	b = append(b, '(')
	b = append(b, input...)
	b = append(b, ");\n"...)
	return b
}
