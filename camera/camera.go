// Package camera reconstructs world space rays from camera matrices.
//
// Matrices follow the convention of the host pipeline: projections are
// right handed with reversed, infinite depth (NDC depth 1 at the near plane,
// approaching 0 at infinity) and View is the camera-to-world transform,
// that is, the inverse of the classic world-to-view matrix.
package camera

import (
	"errors"
	"fmt"
	"math"

	"github.com/fogleman/fauxgl"
	"github.com/soypat/sphtrace"
	"github.com/soypat/sphtrace/internal/d3"
	"github.com/soypat/sphtrace/internal/d4"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// nearDepth is the NDC depth of the near plane in reversed-Z projections.
const nearDepth = 1

// Params is the per-frame camera state supplied by the host.
type Params struct {
	Projection        fauxgl.Matrix
	ProjectionInverse fauxgl.Matrix
	// View is the camera-to-world transform.
	View fauxgl.Matrix
}

// New returns camera parameters for the projection and camera-to-world
// matrices, precomputing the inverse projection.
func New(projection, view fauxgl.Matrix) (Params, error) {
	inv := projection.Inverse()
	if !finite(inv) {
		return Params{}, errors.New("singular projection matrix")
	}
	if !finite(view) {
		return Params{}, errors.New("non-finite view matrix")
	}
	return Params{Projection: projection, ProjectionInverse: inv, View: view}, nil
}

// Perspective returns a right handed perspective projection with reversed
// infinite depth. fovy is the vertical field of view in degrees.
func Perspective(fovy, aspect, near float64) (fauxgl.Matrix, error) {
	if !(fovy > 0 && fovy < 180) {
		return fauxgl.Matrix{}, fmt.Errorf("field of view %g out of range (0, 180)", fovy)
	}
	if !(aspect > 0) || !(near > 0) {
		return fauxgl.Matrix{}, errors.New("zero or negative aspect ratio or near plane")
	}
	f := 1 / math.Tan(fovy*math.Pi/360)
	return fauxgl.Matrix{
		X00: f / aspect,
		X11: f,
		X23: near,
		X32: -1,
	}, nil
}

// LookAt returns the camera-to-world transform of a camera at eye looking
// at target.
func LookAt(eye, target, up r3.Vec) (fauxgl.Matrix, error) {
	forward, ok := d3.Unit(r3.Sub(target, eye))
	if !ok {
		return fauxgl.Matrix{}, errors.New("camera eye and target coincide")
	}
	if _, ok := d3.Unit(r3.Cross(forward, up)); !ok {
		return fauxgl.Matrix{}, errors.New("camera up vector parallel to view direction")
	}
	worldToView := fauxgl.LookAt(vector(eye), vector(target), vector(up))
	return worldToView.Inverse(), nil
}

// Position returns the camera position, the translation of View.
func (p Params) Position() r3.Vec {
	return r3.Vec{X: p.View.X03, Y: p.View.X13, Z: p.View.X23}
}

// ScreenToNDC maps a screen coordinate in [0,1]x[0,1] to normalized device
// coordinates in [-1,1]x[-1,1]. With flipY the screen's Y axis points down.
func ScreenToNDC(uv r2.Vec, flipY bool) r2.Vec {
	y := uv.Y
	if flipY {
		y = 1 - y
	}
	return r2.Vec{X: uv.X*2 - 1, Y: y*2 - 1}
}

// UnprojectDirection returns the unit world space direction of the ray
// through ndc. The ray starts at Position.
// ok is false when the matrices map ndc to a degenerate direction.
func (p Params) UnprojectDirection(ndc r2.Vec) (dir r3.Vec, ok bool) {
	v := mul(p.ProjectionInverse, d4.Vec{X: ndc.X, Y: ndc.Y, Z: nearDepth, W: 1})
	if math.Abs(v.W) < 1e-12 {
		return r3.Vec{}, false
	}
	view := r3.Scale(1/v.W, v.XYZ())
	world := mul(p.View, d4.FromR3(view, 0))
	return d3.Unit(world.XYZ())
}

// NDCRay returns the ray through ndc from the near plane towards farDepth,
// an NDC depth in (0,1). Both points are transformed by View*ProjectionInverse.
func (p Params) NDCRay(ndc r2.Vec, farDepth float64) (sphtrace.Ray, error) {
	ndcToWorld := p.View.Mul(p.ProjectionInverse)
	near, ok := perspectiveDivide(mul(ndcToWorld, d4.Vec{X: ndc.X, Y: ndc.Y, Z: nearDepth, W: 1}))
	if !ok {
		return sphtrace.Ray{}, errors.New("near point at infinity")
	}
	far, ok := perspectiveDivide(mul(ndcToWorld, d4.Vec{X: ndc.X, Y: ndc.Y, Z: farDepth, W: 1}))
	if !ok {
		return sphtrace.Ray{}, errors.New("far point at infinity")
	}
	return sphtrace.NewRay(near, r3.Sub(far, near))
}

func perspectiveDivide(v d4.Vec) (r3.Vec, bool) {
	if math.Abs(v.W) < 1e-12 {
		return r3.Vec{}, false
	}
	return r3.Scale(1/v.W, v.XYZ()), true
}

// mul returns m*v with v a column vector.
func mul(m fauxgl.Matrix, v d4.Vec) d4.Vec {
	return d4.Vec{
		X: m.X00*v.X + m.X01*v.Y + m.X02*v.Z + m.X03*v.W,
		Y: m.X10*v.X + m.X11*v.Y + m.X12*v.Z + m.X13*v.W,
		Z: m.X20*v.X + m.X21*v.Y + m.X22*v.Z + m.X23*v.W,
		W: m.X30*v.X + m.X31*v.Y + m.X32*v.Z + m.X33*v.W,
	}
}

func vector(v r3.Vec) fauxgl.Vector {
	return fauxgl.V(v.X, v.Y, v.Z)
}

func finite(m fauxgl.Matrix) bool {
	for _, v := range [16]float64{
		m.X00, m.X01, m.X02, m.X03,
		m.X10, m.X11, m.X12, m.X13,
		m.X20, m.X21, m.X22, m.X23,
		m.X30, m.X31, m.X32, m.X33,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
