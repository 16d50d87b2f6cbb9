package sphtrace

import (
	"errors"
	"fmt"
	"math"

	"github.com/soypat/sphtrace/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// Config holds the numerical constants of the sphere tracer.
type Config struct {
	// Epsilon is the convergence threshold of the tracer and the
	// central difference step of the normal estimator.
	Epsilon float64
	// MaxSteps bounds the number of tracer iterations.
	MaxSteps int
	// MaxDistance is the distance past which a ray has escaped.
	MaxDistance float64
	// Shininess is the Phong specular exponent.
	Shininess float64
}

// DefaultConfig returns the tracer constants the renderer was tuned with.
func DefaultConfig() Config {
	return Config{
		Epsilon:     0.01,
		MaxSteps:    300,
		MaxDistance: 10000,
		Shininess:   32,
	}
}

// Validate checks the configuration is usable.
func (c Config) Validate() error {
	switch {
	case !(c.Epsilon > 0):
		return errors.New("epsilon must be positive")
	case c.MaxSteps <= 0:
		return errors.New("max steps must be positive")
	case !(c.MaxDistance > c.Epsilon):
		return errors.New("max distance must exceed epsilon")
	case c.Shininess < 0:
		return errors.New("negative shininess")
	}
	return nil
}

// ErrDegenerateDirection is returned when a ray direction has (near) zero length.
var ErrDegenerateDirection = errors.New("degenerate ray direction")

// Ray is a half-line with unit direction.
type Ray struct {
	Origin    r3.Vec
	Direction r3.Vec
}

// NewRay returns a ray with its direction normalized.
func NewRay(origin, direction r3.Vec) (Ray, error) {
	dir, ok := d3.Unit(direction)
	if !ok {
		return Ray{}, ErrDegenerateDirection
	}
	if !d3.IsFinite(origin) {
		return Ray{}, errors.New("non-finite ray origin")
	}
	return Ray{Origin: origin, Direction: dir}, nil
}

// At returns the point at distance t along the ray.
func (r Ray) At(t float64) r3.Vec {
	return r3.Add(r.Origin, r3.Scale(t, r.Direction))
}

// Status is the terminal state of a traced ray.
type Status uint8

const (
	_ Status = iota
	// StatusConverged means the ray came within Epsilon of the surface.
	StatusConverged
	// StatusEscaped means the ray travelled past MaxDistance.
	StatusEscaped
	// StatusExhausted means MaxSteps iterations ran out first. The hit point
	// is the last position reached and is not guaranteed to be near a surface.
	StatusExhausted
)

func (s Status) String() string {
	switch s {
	case StatusConverged:
		return "converged"
	case StatusEscaped:
		return "escaped"
	case StatusExhausted:
		return "exhausted"
	}
	return fmt.Sprintf("Status(%d)", uint8(s))
}

// Hit is the result of tracing a ray.
type Hit struct {
	Point r3.Vec
	// T is the distance travelled along the ray.
	T      float64
	Steps  int
	Status Status
}

// Tracer sphere traces rays against an SDF3. A Tracer holds no mutable
// state and is safe for concurrent use.
type Tracer struct {
	cfg Config
}

// NewTracer returns a Tracer using cfg.
func NewTracer(cfg Config) (*Tracer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid tracer config: %w", err)
	}
	return &Tracer{cfg: cfg}, nil
}

// Config returns the tracer's configuration.
func (tr *Tracer) Config() Config { return tr.cfg }

// Trace advances ray by the distance to s until it converges on the
// surface, escapes past MaxDistance or runs out of steps. If the ray starts
// inside s distances are negated so the ray walks towards the surface from within.
func (tr *Tracer) Trace(s SDF3, ray Ray) Hit {
	sign := 1.0
	if s.Evaluate(ray.Origin) < 0 {
		sign = -1
	}
	t := 0.0
	for step := 1; step <= tr.cfg.MaxSteps; step++ {
		p := ray.At(t)
		d := sign * s.Evaluate(p)
		if math.IsNaN(d) {
			t = tr.cfg.MaxDistance
			return Hit{Point: ray.At(t), T: t, Steps: step, Status: StatusEscaped}
		}
		if d < tr.cfg.Epsilon {
			return Hit{Point: p, T: t, Steps: step, Status: StatusConverged}
		}
		t += d
		if t >= tr.cfg.MaxDistance {
			return Hit{Point: ray.At(t), T: t, Steps: step, Status: StatusEscaped}
		}
	}
	return Hit{Point: ray.At(t), T: t, Steps: tr.cfg.MaxSteps, Status: StatusExhausted}
}

// InRange reports whether h lies closer to the ray origin than
// MaxDistance-Epsilon, the test that separates hits from misses.
// Exhausted rays usually pass this test.
func (tr *Tracer) InRange(ray Ray, h Hit) bool {
	return r3.Norm(r3.Sub(h.Point, ray.Origin)) < tr.cfg.MaxDistance-tr.cfg.Epsilon
}

// OnSurface reports whether h.Point is within Epsilon of the surface of s.
func (tr *Tracer) OnSurface(s SDF3, h Hit) bool {
	return math.Abs(s.Evaluate(h.Point)) < tr.cfg.Epsilon
}
