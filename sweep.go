package sphtrace

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

const (
	// DefaultSweepSamples is the number of time samples taken along the lookahead horizon.
	DefaultSweepSamples = 25
	// sweepStart is the first sampled time. Sampling at zero would divide by zero.
	sweepStart = 0.001
)

// SweepParams describes the predicted relative motion of two agents A and B
// under exponential deceleration. All vectors are in world space.
type SweepParams struct {
	// Offset is added to every predicted center, usually the position of A.
	Offset r3.Vec
	// VelocityAB is the relative velocity of A with respect to B.
	VelocityAB r3.Vec
	// VelocityB shifts predicted centers from relative to absolute velocity.
	VelocityB r3.Vec
	// PositionAB is the relative position of A with respect to B.
	PositionAB r3.Vec
	// RadiusAB is the combined radius of both agents.
	RadiusAB float64
	// ControlParam is the acceleration control parameter k, the time
	// constant of the deceleration model.
	ControlParam float64
	// Base is the exponential base of the deceleration model, usually e.
	Base float64
	// Lookahead is the last sampled time.
	Lookahead float64
	// Samples is the number of sampled times. Zero means DefaultSweepSamples.
	Samples int
}

// AgentPair holds the state of two agents as shown by a velocity obstacle display.
type AgentPair struct {
	PositionA, PositionB r3.Vec
	VelocityA, VelocityB r3.Vec
	MaxAccelerationA     float64
	MaxVelocityA         float64
	RadiusA, RadiusB     float64
	Lookahead            float64
}

// SweepParams derives the swept-sphere parameters for the pair. The
// acceleration control parameter is 2*MaxVelocityA/MaxAccelerationA.
func (a AgentPair) SweepParams() (SweepParams, error) {
	if a.MaxAccelerationA <= 0 {
		return SweepParams{}, errors.New("zero or negative max acceleration")
	}
	return SweepParams{
		Offset:       a.PositionA,
		VelocityAB:   r3.Sub(a.VelocityA, a.VelocityB),
		VelocityB:    a.VelocityB,
		PositionAB:   r3.Sub(a.PositionA, a.PositionB),
		RadiusAB:     a.RadiusA + a.RadiusB,
		ControlParam: 2 * a.MaxVelocityA / a.MaxAccelerationA,
		Base:         math.E,
		Lookahead:    a.Lookahead,
		Samples:      DefaultSweepSamples,
	}, nil
}

// SweepSample is a single predicted sphere.
type SweepSample struct {
	T      float64
	Center r3.Vec
	Radius float64
}

// Sample returns the predicted sphere at time t. ok is false when the
// deceleration model degenerates at t.
func (p SweepParams) Sample(t float64) (s SweepSample, ok bool) {
	k := p.ControlParam
	param := k * (math.Pow(p.Base, -t/k) - 1)
	denom := t + param
	if math.Abs(denom) < tiny || math.IsNaN(denom) {
		return SweepSample{}, false
	}
	rel := r3.Scale(1/denom, r3.Sub(r3.Scale(param, p.VelocityAB), p.PositionAB))
	s = SweepSample{
		T:      t,
		Center: r3.Add(r3.Add(p.Offset, p.VelocityB), rel),
		Radius: p.RadiusAB / denom,
	}
	if s.Radius <= 0 || math.IsInf(s.Radius, 0) {
		return SweepSample{}, false
	}
	return s, true
}

// Sweep is the union of spheres predicted along a decelerating trajectory.
// Gaps between samples are not covered: fast relative motion can leave
// holes a ray passes through.
type Sweep struct {
	params  SweepParams
	samples []SweepSample
}

// Sweep3D samples the trajectory described by p and returns the union of
// the predicted spheres.
func Sweep3D(p SweepParams) (*Sweep, error) {
	if p.Samples == 0 {
		p.Samples = DefaultSweepSamples
	}
	switch {
	case p.Samples < 0:
		return nil, errors.New("negative sweep sample count")
	case p.ControlParam <= 0:
		return nil, errors.New("zero or negative acceleration control parameter")
	case p.Base <= 1:
		return nil, errors.New("exponential base must be greater than one")
	case p.Lookahead < sweepStart:
		return nil, errors.New("lookahead shorter than first sample time")
	case p.RadiusAB <= 0:
		return nil, errors.New("zero or negative combined radius")
	}
	s := &Sweep{params: p, samples: make([]SweepSample, 0, p.Samples)}
	for i := 0; i < p.Samples; i++ {
		t := mix(sweepStart, p.Lookahead, float64(i)/float64(p.Samples))
		sample, ok := p.Sample(t)
		if ok {
			s.samples = append(s.samples, sample)
		}
	}
	if len(s.samples) == 0 {
		return nil, errors.New("no valid sweep samples")
	}
	return s, nil
}

// Params returns the parameters the sweep was built with.
func (s *Sweep) Params() SweepParams { return s.params }

// Samples returns a copy of the predicted spheres, useful for drawing the
// predicted trajectory.
func (s *Sweep) Samples() []SweepSample {
	return append([]SweepSample(nil), s.samples...)
}

// Evaluate returns the minimum distance to the predicted spheres.
func (s *Sweep) Evaluate(p r3.Vec) float64 {
	d := largenum
	for _, sample := range s.samples {
		d = math.Min(d, r3.Norm(r3.Sub(p, sample.Center))-sample.Radius)
	}
	return d
}
