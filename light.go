package sphtrace

import (
	"math"

	"github.com/soypat/sphtrace/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// PointLight is a point light with separate diffuse and specular terms.
// Colors are linear RGB.
type PointLight struct {
	Position      r3.Vec
	DiffuseColor  r3.Vec
	DiffusePower  float64
	SpecularColor r3.Vec
	SpecularPower float64
}

// Lighting is the result of shading a single point.
type Lighting struct {
	Diffuse  r3.Vec
	Specular r3.Vec
}

// Sum returns Diffuse+Specular.
func (l Lighting) Sum() r3.Vec {
	return r3.Add(l.Diffuse, l.Specular)
}

// Shade evaluates Lambertian diffuse and Phong specular lighting of point
// with the given unit normal. The view direction is taken from the world
// origin towards point, not from the light or camera.
// Terms whose directions cannot be normalised contribute nothing.
func Shade(light PointLight, point, normal r3.Vec, shininess float64) Lighting {
	var l Lighting
	lightDir, ok := d3.Unit(r3.Sub(light.Position, point))
	if !ok {
		return l
	}
	diffuse := math.Max(r3.Dot(normal, lightDir), 0)
	l.Diffuse = r3.Scale(diffuse*light.DiffusePower, light.DiffuseColor)

	viewDir, ok := d3.Unit(point)
	if !ok {
		return l
	}
	reflectDir := d3.Reflect(r3.Scale(-1, lightDir), normal)
	specular := math.Pow(math.Max(r3.Dot(viewDir, reflectDir), 0), shininess)
	if !isFinite(specular) {
		return l
	}
	l.Specular = r3.Scale(specular*light.SpecularPower, light.SpecularColor)
	return l
}
