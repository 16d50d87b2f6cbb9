package sphtrace

import (
	"math"

	"github.com/soypat/sphtrace/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	// tiny guards divisions and normalisations against near-zero magnitudes.
	tiny = 1e-12
	// planeEpsilon is the tolerance of plane containment and parallelism tests.
	planeEpsilon = 1e-4
	// largenum stands in for the distance to an empty scene.
	largenum = 1e20
)

// mix does a linear interpolation from x to y, a = [0,1]
func mix(x, y, a float64) float64 {
	return x + (a * (y - x))
}

// Normal3 returns the normal of an SDF3 at a point (doesn't need to be on the surface).
// Computed by central differences of size eps along each axis.
// ok is false where the gradient vanishes and the normal is undefined.
func Normal3(s SDF3, p r3.Vec, eps float64) (n r3.Vec, ok bool) {
	return d3.Unit(r3.Vec{
		X: s.Evaluate(r3.Add(p, r3.Vec{X: eps})) - s.Evaluate(r3.Add(p, r3.Vec{X: -eps})),
		Y: s.Evaluate(r3.Add(p, r3.Vec{Y: eps})) - s.Evaluate(r3.Add(p, r3.Vec{Y: -eps})),
		Z: s.Evaluate(r3.Add(p, r3.Vec{Z: eps})) - s.Evaluate(r3.Add(p, r3.Vec{Z: -eps})),
	})
}

// isFinite reports whether f is neither NaN nor infinite.
func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
