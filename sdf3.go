package sphtrace

import (
	"errors"
	"math"
	"strconv"

	"github.com/soypat/sphtrace/internal/d4"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// SDF3 is the interface to a 3d signed distance function object.
type SDF3 interface {
	// Evaluate takes a point in 3D space as input and returns
	// the signed distance of the SDF3 to the point. The distance
	// is negative if the point is contained within the SDF3 and must
	// never exceed the true Euclidean distance to the surface.
	Evaluate(p r3.Vec) float64
}

type sphere struct {
	r float64
}

// Sphere3D returns a sphere of the given radius centered at the origin.
func Sphere3D(radius float64) (SDF3, error) {
	if radius <= 0 {
		return nil, errors.New("zero or negative sphere radius")
	}
	return &sphere{r: radius}, nil
}

func (s *sphere) Evaluate(p r3.Vec) float64 {
	return r3.Norm(p) - s.r
}

type torus struct {
	major, minor float64
}

// Torus3D returns a torus around the Y axis centered at the origin.
// major is the distance from the center to the tube's center, minor the tube radius.
func Torus3D(major, minor float64) (SDF3, error) {
	if minor <= 0 || major <= 0 {
		return nil, errors.New("zero or negative torus radius")
	}
	return &torus{major: major, minor: minor}, nil
}

func (s *torus) Evaluate(p r3.Vec) float64 {
	q := r2.Vec{X: math.Hypot(p.X, p.Z) - s.major, Y: p.Y}
	return r2.Norm(q) - s.minor
}

type translate3 struct {
	sdf    SDF3
	offset r3.Vec
}

// Translate3D moves s by offset.
func Translate3D(s SDF3, offset r3.Vec) SDF3 {
	if s == nil {
		panic("nil SDF3 argument")
	}
	return &translate3{sdf: s, offset: offset}
}

func (s *translate3) Evaluate(p r3.Vec) float64 {
	return s.sdf.Evaluate(r3.Sub(p, s.offset))
}

// union3 is a union of SDF3s.
type union3 struct {
	sdf []SDF3
}

// Union3D returns the union of multiple SDF3 objects.
// Union3D will panic if arguments list is empty or if
// an argument SDF3 is nil.
func Union3D(sdf ...SDF3) SDF3 {
	if len(sdf) == 0 {
		panic("union requires at least 1 sdf")
	}
	for i, x := range sdf {
		if x == nil {
			panic("nil sdf argument (" + strconv.Itoa(i) + ") to Union3D")
		}
	}
	if len(sdf) == 1 {
		return sdf[0]
	}
	return &union3{sdf: sdf}
}

// Evaluate returns the minimum distance to an SDF3 union.
func (s *union3) Evaluate(p r3.Vec) float64 {
	d := s.sdf[0].Evaluate(p)
	for _, x := range s.sdf[1:] {
		d = math.Min(d, x.Evaluate(p))
	}
	return d
}

// intersection3 is the boolean intersection of SDF3s.
type intersection3 struct {
	sdf []SDF3
}

// Intersect3D returns the intersection of multiple SDF3 objects,
// the maximum of their distances.
func Intersect3D(sdf ...SDF3) SDF3 {
	if len(sdf) == 0 {
		panic("intersection requires at least 1 sdf")
	}
	for i, x := range sdf {
		if x == nil {
			panic("nil sdf argument (" + strconv.Itoa(i) + ") to Intersect3D")
		}
	}
	if len(sdf) == 1 {
		return sdf[0]
	}
	return &intersection3{sdf: sdf}
}

func (s *intersection3) Evaluate(p r3.Vec) float64 {
	d := s.sdf[0].Evaluate(p)
	for _, x := range s.sdf[1:] {
		d = math.Max(d, x.Evaluate(p))
	}
	return d
}

type complement3 struct {
	sdf SDF3
}

// Complement3D flips the inside and outside of s.
func Complement3D(s SDF3) SDF3 {
	if s == nil {
		panic("nil SDF3 argument")
	}
	return &complement3{sdf: s}
}

func (s *complement3) Evaluate(p r3.Vec) float64 {
	return -s.sdf.Evaluate(p)
}

// Difference3D returns s0 with s1 carved out of it.
func Difference3D(s0, s1 SDF3) SDF3 {
	return Intersect3D(s0, Complement3D(s1))
}

// Spherinder is a 4D solid: a sphere in xyz extruded infinitely along w.
type Spherinder struct {
	Center d4.Vec
	Radius float64
}

// NewSpherinder returns a spherinder. The w component of center only
// matters for Constrain.
func NewSpherinder(center d4.Vec, radius float64) (Spherinder, error) {
	if radius <= 0 {
		return Spherinder{}, errors.New("zero or negative spherinder radius")
	}
	return Spherinder{Center: center, Radius: radius}, nil
}

// SignedDistance returns the distance from p to the spherinder surface.
func (s Spherinder) SignedDistance(p d4.Vec) float64 {
	return r3.Norm(d4.Sub(p, s.Center).XYZ()) - s.Radius
}

// Contains reports whether p is inside the spherinder.
func (s Spherinder) Contains(p d4.Vec) bool {
	rel := d4.Sub(p, s.Center).XYZ()
	return r3.Dot(rel, rel) <= s.Radius*s.Radius
}

// Constrain returns p if it is inside the spherinder, otherwise the
// closest point on its surface with the same w.
func (s Spherinder) Constrain(p d4.Vec) d4.Vec {
	rel := d4.Sub(p, s.Center)
	xyz := rel.XYZ()
	n := r3.Norm(xyz)
	if n <= s.Radius || n == 0 {
		return p
	}
	xyz = r3.Scale(s.Radius/n, xyz)
	return d4.Add(s.Center, d4.FromR3(xyz, rel.W))
}

// spherinderSlice is the 3D cross-section of a spherinder cut by a hyperplane.
type spherinderSlice struct {
	s Spherinder
	h Hyperplane
}

// SpherinderSlice3D returns the cross-section of s by h as an SDF3 over
// h's local (u,v,w) coordinates.
func SpherinderSlice3D(s Spherinder, h Hyperplane) SDF3 {
	return &spherinderSlice{s: s, h: h}
}

func (s *spherinderSlice) Evaluate(p r3.Vec) float64 {
	return s.s.SignedDistance(s.h.Project4D(p))
}
