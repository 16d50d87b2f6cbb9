package sphtrace

import (
	"errors"
	"math"

	"github.com/soypat/sphtrace/internal/d3"
	"github.com/soypat/sphtrace/internal/d4"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

var (
	// ErrDegenerateNormal is returned when a normal vector has (near) zero length.
	ErrDegenerateNormal = errors.New("degenerate normal vector")
	// ErrParallelHyperplanes is returned when two hyperplanes do not intersect in a plane.
	ErrParallelHyperplanes = errors.New("hyperplanes are parallel")
)

// Plane is an oriented plane in 3D space. Normal, U and V are pairwise orthonormal.
type Plane struct {
	Normal r3.Vec
	Origin r3.Vec
	U      r3.Vec
	V      r3.Vec
}

// NewPlane builds a plane through origin with an orthonormal frame whose
// first axis is the normalized normal. The in-plane axes are seeded with the
// world axis least aligned with the normal.
func NewPlane(origin, normal r3.Vec) (Plane, error) {
	n, ok := d3.Unit(normal)
	if !ok {
		return Plane{}, ErrDegenerateNormal
	}
	seed := leastAlignedAxis(n)
	u, ok := d3.Unit(r3.Cross(n, seed))
	if !ok {
		return Plane{}, ErrDegenerateNormal
	}
	v, _ := d3.Unit(r3.Cross(n, u))
	return Plane{Normal: n, Origin: origin, U: u, V: v}, nil
}

// PlaneFromPoints returns the plane through a, b and c with normal (b-a)x(c-a).
func PlaneFromPoints(a, b, c r3.Vec) (Plane, error) {
	return NewPlane(a, r3.Cross(r3.Sub(b, a), r3.Sub(c, a)))
}

// PlaneFromHyperplanes returns the trace of other on slice, expressed in
// slice's local (u,v,w) coordinates. The returned plane's signed distance is
// positive where other's signed distance is positive.
func PlaneFromHyperplanes(slice, other Hyperplane) (Plane, error) {
	n := r3.Vec{
		X: d4.Dot(slice.U, other.Normal),
		Y: d4.Dot(slice.V, other.Normal),
		Z: d4.Dot(slice.W, other.Normal),
	}
	length := r3.Norm(n)
	if length < planeEpsilon {
		return Plane{}, ErrParallelHyperplanes
	}
	// Points p on the trace satisfy dot(n, p) = offset.
	offset := d4.Dot(other.Origin, other.Normal) - d4.Dot(slice.Origin, other.Normal)
	unit := r3.Scale(1/length, n)
	return NewPlane(r3.Scale(offset/length, unit), unit)
}

// leastAlignedAxis returns the world axis with the smallest absolute dot
// product with n. Ties resolve to the earlier axis in X, Y, Z order.
func leastAlignedAxis(n r3.Vec) r3.Vec {
	axes := [3]r3.Vec{{X: 1}, {Y: 1}, {Z: 1}}
	best := 0
	bestDot := math.Abs(r3.Dot(axes[0], n))
	for i := 1; i < len(axes); i++ {
		if d := math.Abs(r3.Dot(axes[i], n)); d < bestDot {
			best, bestDot = i, d
		}
	}
	return axes[best]
}

// SignedDistance returns the perpendicular distance from pt to the plane,
// positive on the side the normal points to.
func (p Plane) SignedDistance(pt r3.Vec) float64 {
	return r3.Dot(p.Normal, r3.Sub(pt, p.Origin))
}

// Evaluate implements SDF3. The solid is the half-space behind the normal.
func (p Plane) Evaluate(pt r3.Vec) float64 {
	return p.SignedDistance(pt)
}

// Contains reports whether pt lies on the normal's side of the plane.
func (p Plane) Contains(pt r3.Vec) bool {
	return p.SignedDistance(pt) >= -planeEpsilon
}

// Constrain projects pt onto the plane.
func (p Plane) Constrain(pt r3.Vec) r3.Vec {
	return r3.Sub(pt, r3.Scale(p.SignedDistance(pt), p.Normal))
}

// Project2D returns pt in the plane's (u,v) coordinates.
func (p Plane) Project2D(pt r3.Vec) r2.Vec {
	rel := r3.Sub(pt, p.Origin)
	return r2.Vec{X: r3.Dot(p.U, rel), Y: r3.Dot(p.V, rel)}
}

// Project3D maps plane coordinates back to world space.
func (p Plane) Project3D(uv r2.Vec) r3.Vec {
	return r3.Add(p.Origin, r3.Add(r3.Scale(uv.X, p.U), r3.Scale(uv.Y, p.V)))
}

// Hyperplane is an oriented 3D subspace of 4D space. Normal, U, V and W
// form an orthonormal basis of 4D space.
type Hyperplane struct {
	Normal d4.Vec
	Origin d4.Vec
	U      d4.Vec
	V      d4.Vec
	W      d4.Vec
}

// NewHyperplane builds a hyperplane through origin. The world axis most
// aligned with the normal is dropped and the remaining three axes are
// Gram-Schmidt orthogonalized against the normal and each other, in order.
func NewHyperplane(origin, normal d4.Vec) (Hyperplane, error) {
	n, ok := d4.Unit(normal)
	if !ok {
		return Hyperplane{}, ErrDegenerateNormal
	}
	axes := d4.Axes()
	dominant := 0
	bestDot := math.Abs(d4.Dot(axes[0], n))
	for i := 1; i < len(axes); i++ {
		if d := math.Abs(d4.Dot(axes[i], n)); d > bestDot {
			dominant, bestDot = i, d
		}
	}
	basis := [4]d4.Vec{n}
	k := 1
	for i, seed := range axes {
		if i == dominant {
			continue
		}
		v := seed
		for _, prior := range basis[:k] {
			v = d4.Reject(v, prior)
		}
		basis[k], ok = d4.Unit(v)
		if !ok {
			return Hyperplane{}, ErrDegenerateNormal
		}
		k++
	}
	return Hyperplane{Normal: n, Origin: origin, U: basis[1], V: basis[2], W: basis[3]}, nil
}

// Project4D maps local (u,v,w) coordinates to a point in 4D space.
func (h Hyperplane) Project4D(p r3.Vec) d4.Vec {
	q := d4.Add(h.Origin, d4.Scale(p.X, h.U))
	q = d4.Add(q, d4.Scale(p.Y, h.V))
	return d4.Add(q, d4.Scale(p.Z, h.W))
}

// Project3D returns the local (u,v,w) coordinates of the projection of p.
func (h Hyperplane) Project3D(p d4.Vec) r3.Vec {
	rel := d4.Sub(p, h.Origin)
	return r3.Vec{X: d4.Dot(rel, h.U), Y: d4.Dot(rel, h.V), Z: d4.Dot(rel, h.W)}
}

// SignedDistance returns the distance from p to the hyperplane,
// positive on the side the normal points to.
func (h Hyperplane) SignedDistance(p d4.Vec) float64 {
	return d4.Dot(h.Normal, d4.Sub(p, h.Origin))
}

// Contains reports whether p lies on the normal's side of the hyperplane.
func (h Hyperplane) Contains(p d4.Vec) bool {
	return h.SignedDistance(p) >= -planeEpsilon
}

// Constrain projects p onto the hyperplane.
func (h Hyperplane) Constrain(p d4.Vec) d4.Vec {
	return d4.Sub(p, d4.Scale(h.SignedDistance(p), h.Normal))
}
