package sphtrace

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/soypat/glgl/math/ms3"
	"github.com/soypat/sphtrace/glbuild"
	"github.com/soypat/sphtrace/internal/d4"
	"gonum.org/v1/gonum/spatial/r3"
)

func testFragmentConfig() glbuild.FragmentConfig {
	white := ms3.Vec{X: 1, Y: 1, Z: 1}
	return glbuild.FragmentConfig{
		Epsilon:       0.01,
		MaxSteps:      300,
		MaxDistance:   10000,
		Shininess:     32,
		Blend:         0.5,
		FlipY:         true,
		DiffuseColor:  white,
		DiffusePower:  1,
		SpecularColor: white,
		SpecularPower: 1,
	}
}

func TestShaderNames(t *testing.T) {
	var tests = []struct {
		s    SDF3
		name string
		body string
	}{
		{s: mustSDF(Sphere3D(1)), name: "sphere1p", body: "return length(p)-1.;"},
		{s: mustSDF(Sphere3D(0.25)), name: "sphere0p25", body: "return length(p)-0.25;"},
		{s: mustSDF(Torus3D(2, 0.5)), name: "torus2p_0p5"},
	}
	for _, test := range tests {
		sh, err := glbuild.AsShader(test.s)
		if err != nil {
			t.Fatal(err)
		}
		if got := string(sh.AppendShaderName(nil)); got != test.name {
			t.Errorf("name got %q, want %q", got, test.name)
		}
		if test.body != "" {
			if got := string(sh.AppendShaderBody(nil)); got != test.body {
				t.Errorf("body got %q, want %q", got, test.body)
			}
		}
	}
}

func TestShaderNamesTinyRadii(t *testing.T) {
	// Radii that agree to many decimal places still name distinct functions.
	a, _ := glbuild.AsShader(mustSDF(Sphere3D(1e-7)))
	b, _ := glbuild.AsShader(mustSDF(Sphere3D(2e-7)))
	if string(a.AppendShaderName(nil)) == string(b.AppendShaderName(nil)) {
		t.Errorf("radii 1e-7 and 2e-7 share name %q", a.AppendShaderName(nil))
	}
	if got, want := string(a.AppendShaderBody(nil)), "return length(p)-0.0000001;"; got != want {
		t.Errorf("body got %q, want %q", got, want)
	}
	var buf bytes.Buffer
	root, _ := glbuild.AsShader(Union3D(mustSDF(Sphere3D(1e-7)), mustSDF(Sphere3D(2e-7))))
	if _, err := glbuild.WriteFragment(&buf, root, testFragmentConfig()); err != nil {
		t.Fatal(err)
	}
	if c := strings.Count(buf.String(), "float sphere0p"); c != 2 {
		t.Errorf("got %d sphere declarations, want 2", c)
	}
}

func TestWriteFragment(t *testing.T) {
	sphere := mustSDF(Sphere3D(1))
	plane, err := NewPlane(r3.Vec{Y: -1}, r3.Vec{Y: 1})
	if err != nil {
		t.Fatal(err)
	}
	spherinder, _ := NewSpherinder(d4.Vec{}, 2)
	h, _ := NewHyperplane(d4.Vec{W: 1}, d4.Vec{X: 0.3, Y: 1, Z: 0.1, W: 0.8})
	sweep, err := Sweep3D(staticSweep())
	if err != nil {
		t.Fatal(err)
	}
	scene := Union3D(
		Translate3D(sphere, r3.Vec{Z: -5}),
		// The same sphere is reused and its function written once.
		Translate3D(sphere, r3.Vec{X: 3, Z: -5}),
		Difference3D(mustSDF(Torus3D(2, 0.5)), plane),
		SpherinderSlice3D(spherinder, h),
		sweep,
	)
	root, err := glbuild.AsShader(scene)
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	n, err := glbuild.WriteFragment(&buf, root, testFragmentConfig())
	if err != nil {
		t.Fatal(err)
	}
	if n != buf.Len() {
		t.Errorf("reported %d bytes written, buffer holds %d", n, buf.Len())
	}
	src := buf.String()
	for _, want := range []string{
		"#version 330 core\n",
		"const float EPSILON=0.01;\n",
		"const int MAX_STEPS=300;\n",
		"const float MAX_DISTANCE=10000.;\n",
		"const float BLEND=0.5;\n",
		"const bool FLIP_Y=true;\n",
		"const vec3 DIFFUSE_COLOR=vec3(1.,1.,1.);\n",
		"float sdf(vec3 p) {\nreturn " + string(root.AppendShaderName(nil)) + "(p);\n}",
		"void main()",
	} {
		if !strings.Contains(src, want) {
			t.Errorf("fragment shader missing %q", want)
		}
	}
	if c := strings.Count(src, "float sphere1p(vec3 p)"); c != 1 {
		t.Errorf("sphere function declared %d times, want once", c)
	}
	// Callees are declared before callers.
	if strings.Index(src, "float sphere1p(") > strings.Index(src, "float sdf(") {
		t.Error("sphere declared after sdf")
	}
}

type opaque struct{}

func (opaque) Evaluate(r3.Vec) float64 { return 0 }

func TestWriteFragmentUnsupported(t *testing.T) {
	scene := Union3D(mustSDF(Sphere3D(1)), opaque{})
	root, _ := glbuild.AsShader(scene)
	_, err := glbuild.WriteFragment(&bytes.Buffer{}, root, testFragmentConfig())
	if !errors.Is(err, glbuild.ErrNotShader) {
		t.Errorf("got %v, want ErrNotShader", err)
	}
}
