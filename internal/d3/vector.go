package d3

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// R3 vector manipulation routines missing from gonum's r3 package.

// tiny is the shortest vector length that is still normalised.
const tiny = 1e-12

func EqualWithin(a, b r3.Vec, tol float64) bool {
	return math.Abs(a.X-b.X) <= tol &&
		math.Abs(a.Y-b.Y) <= tol &&
		math.Abs(a.Z-b.Z) <= tol
}

// Unit returns a scaled to unit length. Unlike r3.Unit it does not
// produce NaNs: ok is false and the zero vector is returned when a is too short.
func Unit(a r3.Vec) (u r3.Vec, ok bool) {
	n := r3.Norm(a)
	if n < tiny || math.IsInf(n, 0) || math.IsNaN(n) {
		return r3.Vec{}, false
	}
	return r3.Scale(1/n, a), true
}

// Reflect reflects the incident vector i about the unit normal n.
func Reflect(i, n r3.Vec) r3.Vec {
	return r3.Sub(i, r3.Scale(2*r3.Dot(n, i), n))
}

// IsFinite reports whether all components of a are finite.
func IsFinite(a r3.Vec) bool {
	return isFinite(a.X) && isFinite(a.Y) && isFinite(a.Z)
}

func isFinite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }
