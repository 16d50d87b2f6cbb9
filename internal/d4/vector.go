package d4

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// R4 vector manipulation routines. gonum's spatial packages stop at r3
// so hyperplane geometry lives here.

// Vec is a 4D vector.
type Vec struct {
	X, Y, Z, W float64
}

// Axes returns the four world axes in X, Y, Z, W order.
func Axes() [4]Vec {
	return [4]Vec{{X: 1}, {Y: 1}, {Z: 1}, {W: 1}}
}

// FromR3 extends a 3D vector with a w component.
func FromR3(v r3.Vec, w float64) Vec {
	return Vec{X: v.X, Y: v.Y, Z: v.Z, W: w}
}

// XYZ drops the w component.
func (a Vec) XYZ() r3.Vec {
	return r3.Vec{X: a.X, Y: a.Y, Z: a.Z}
}

func Add(a, b Vec) Vec {
	return Vec{X: a.X + b.X, Y: a.Y + b.Y, Z: a.Z + b.Z, W: a.W + b.W}
}

func Sub(a, b Vec) Vec {
	return Vec{X: a.X - b.X, Y: a.Y - b.Y, Z: a.Z - b.Z, W: a.W - b.W}
}

func Scale(f float64, a Vec) Vec {
	return Vec{X: f * a.X, Y: f * a.Y, Z: f * a.Z, W: f * a.W}
}

func Dot(a, b Vec) float64 {
	return a.X*b.X + a.Y*b.Y + a.Z*b.Z + a.W*b.W
}

// Norm returns the Euclidean norm of a.
func Norm(a Vec) float64 {
	return math.Sqrt(Dot(a, a))
}

// Unit returns a scaled to unit length. ok is false if a is
// too short to be normalised, in which case the zero vector is returned.
func Unit(a Vec) (u Vec, ok bool) {
	n := Norm(a)
	if n < 1e-12 || math.IsInf(n, 0) || math.IsNaN(n) {
		return Vec{}, false
	}
	return Scale(1/n, a), true
}

// Reject returns a with its projection onto the unit vector n removed.
func Reject(a, n Vec) Vec {
	return Sub(a, Scale(Dot(a, n), n))
}

func EqualWithin(a, b Vec, tol float64) bool {
	return math.Abs(a.X-b.X) <= tol &&
		math.Abs(a.Y-b.Y) <= tol &&
		math.Abs(a.Z-b.Z) <= tol &&
		math.Abs(a.W-b.W) <= tol
}
