// Package scene builds the distance field scenes rendered by sphtrace:
// collections of primitives, the cross-section of a spherinder by a moving
// hyperplane and the swept sphere of a two agent velocity obstacle.
package scene

import (
	"errors"
	"fmt"

	"github.com/soypat/sphtrace"
	"github.com/soypat/sphtrace/internal/d4"
	"gonum.org/v1/gonum/spatial/r3"
)

// SphereCfg is a sphere primitive.
type SphereCfg struct {
	Center r3.Vec  `json:"center"`
	Radius float64 `json:"radius"`
}

// TorusCfg is a torus around the Y axis of its center.
type TorusCfg struct {
	Center r3.Vec  `json:"center"`
	Major  float64 `json:"major"`
	Minor  float64 `json:"minor"`
}

// Spheres returns the union of the spheres and tori.
func Spheres(spheres []SphereCfg, tori []TorusCfg) (sphtrace.SDF3, error) {
	if len(spheres)+len(tori) == 0 {
		return nil, errors.New("empty primitive scene")
	}
	var objects []sphtrace.SDF3
	for i, sc := range spheres {
		s, err := sphtrace.Sphere3D(sc.Radius)
		if err != nil {
			return nil, fmt.Errorf("sphere %d: %w", i, err)
		}
		objects = append(objects, sphtrace.Translate3D(s, sc.Center))
	}
	for i, tc := range tori {
		t, err := sphtrace.Torus3D(tc.Major, tc.Minor)
		if err != nil {
			return nil, fmt.Errorf("torus %d: %w", i, err)
		}
		objects = append(objects, sphtrace.Translate3D(t, tc.Center))
	}
	return sphtrace.Union3D(objects...), nil
}

// HalfSpaceCfg is the solid side of a 3D plane, opposite to its normal
// unless Flip is set.
type HalfSpaceCfg struct {
	Origin r3.Vec `json:"origin"`
	Normal r3.Vec `json:"normal"`
	Flip   bool   `json:"flip,omitempty"`
}

// HyperplaneCfg is a 4D hyperplane. Its trace on the slicing hyperplane
// bounds the cross-section like a HalfSpaceCfg.
type HyperplaneCfg struct {
	Origin d4.Vec `json:"origin"`
	Normal d4.Vec `json:"normal"`
}

// SliceParams describes the cross-section of a spherinder by a hyperplane.
type SliceParams struct {
	Hyperplane HyperplaneCfg `json:"hyperplane"`
	// W moves the slicing hyperplane along its normal.
	W      float64 `json:"w"`
	Center d4.Vec  `json:"center"`
	Radius float64 `json:"radius"`
	// HalfSpaces clip the cross-section in slice coordinates.
	HalfSpaces []HalfSpaceCfg `json:"halfSpaces,omitempty"`
	// Cuts clip the cross-section with other hyperplanes.
	Cuts []HyperplaneCfg `json:"cuts,omitempty"`
}

// DefaultSlice returns the cross-section of a radius 100 spherinder at the
// origin, kept between two planes. The first plane is flipped so the solid
// lies on its normal's side.
func DefaultSlice() SliceParams {
	return SliceParams{
		Hyperplane: HyperplaneCfg{
			Origin: d4.Vec{X: -43.733166, Y: 138.09503, Z: -105.5708},
			Normal: d4.Vec{X: -0.7777588, Y: -0.12597124, Z: -0.42334685, W: 0.44721353},
		},
		Radius: 100,
		HalfSpaces: []HalfSpaceCfg{
			{
				Origin: r3.Vec{X: 3.4217021, Y: -3.7875133, Z: 5.4648843},
				Normal: r3.Vec{X: 0.45757827, Y: -0.50649756, Z: 0.73080945},
				Flip:   true,
			},
			{
				Origin: r3.Vec{X: -44.757824, Y: 15.044995, Z: -5.303109},
				Normal: r3.Vec{X: 0.9419595, Y: -0.3166324, Z: 0.11160762},
			},
		},
	}
}

// Slice returns the cross-section described by p as a distance field over
// the slicing hyperplane's local coordinates.
func Slice(p SliceParams) (sphtrace.SDF3, error) {
	h, err := sphtrace.NewHyperplane(p.Hyperplane.Origin, p.Hyperplane.Normal)
	if err != nil {
		return nil, fmt.Errorf("slicing hyperplane: %w", err)
	}
	h.Origin = d4.Add(h.Origin, d4.Scale(p.W, h.Normal))
	s, err := sphtrace.NewSpherinder(p.Center, p.Radius)
	if err != nil {
		return nil, err
	}
	objects := []sphtrace.SDF3{sphtrace.SpherinderSlice3D(s, h)}
	for i, hs := range p.HalfSpaces {
		plane, err := sphtrace.NewPlane(hs.Origin, hs.Normal)
		if err != nil {
			return nil, fmt.Errorf("half-space %d: %w", i, err)
		}
		if hs.Flip {
			objects = append(objects, sphtrace.Complement3D(plane))
			continue
		}
		objects = append(objects, plane)
	}
	for i, cut := range p.Cuts {
		other, err := sphtrace.NewHyperplane(cut.Origin, cut.Normal)
		if err != nil {
			return nil, fmt.Errorf("cut %d: %w", i, err)
		}
		plane, err := sphtrace.PlaneFromHyperplanes(h, other)
		if err != nil {
			return nil, fmt.Errorf("cut %d: %w", i, err)
		}
		objects = append(objects, plane)
	}
	if len(objects) == 1 {
		return objects[0], nil
	}
	return sphtrace.Intersect3D(objects...), nil
}

// Sweep returns the swept sphere of the agent pair.
func Sweep(pair sphtrace.AgentPair) (*sphtrace.Sweep, error) {
	p, err := pair.SweepParams()
	if err != nil {
		return nil, err
	}
	return sphtrace.Sweep3D(p)
}
