package xtid

import "math"

const (
	solveEps    = 1e-7
	newtonIters = 8
	bisectIters = 48
)

type point struct {
	x, y float64
}

// segment is one cubic bezier span: start, two controls, end.
type segment struct {
	p0, c1, c2, p1 point
}

// Cubic evaluates the easing curve a frame row defines: its control values
// pair into successive bezier anchors between the implicit endpoints (0,0)
// and (1,1). getValue is monotonically increasing over [0,1] for well-formed
// control data and pins getValue(0)=0 and getValue(1)=1 exactly.
type Cubic struct {
	segments []segment
}

func newCubic(curves []float64) *Cubic {
	return &Cubic{segments: buildSegments(anchors(curves))}
}

// anchors pairs the control values into points, alternating x/y. A trailing
// unpaired value is ignored.
func anchors(curves []float64) []point {
	pts := make([]point, 0, len(curves)/2)
	for i := 0; i+1 < len(curves); i += 2 {
		pts = append(pts, point{curves[i], curves[i+1]})
	}
	return pts
}

// buildSegments chains cubic spans through the anchor list: each span
// consumes two control anchors and an end anchor, and the final span always
// closes at (1,1). A single leftover anchor doubles as both controls; no
// leftover closes with a linear span.
func buildSegments(pts []point) []segment {
	start := point{0, 0}
	end := point{1, 1}

	var segs []segment
	for len(pts) >= 3 {
		segs = append(segs, segment{start, pts[0], pts[1], pts[2]})
		start = pts[2]
		pts = pts[3:]
	}
	switch len(pts) {
	case 2:
		segs = append(segs, segment{start, pts[0], pts[1], end})
	case 1:
		segs = append(segs, segment{start, pts[0], pts[0], end})
	case 0:
		if len(segs) == 0 || start != end {
			c1 := point{start.x + (end.x-start.x)/3, start.y + (end.y-start.y)/3}
			c2 := point{start.x + 2*(end.x-start.x)/3, start.y + 2*(end.y-start.y)/3}
			segs = append(segs, segment{start, c1, c2, end})
		}
	}
	return segs
}

// getValue returns the eased value at t. Outside (0,1) the curve is
// extrapolated along its boundary gradients, which yields exact values at
// t=0 and t=1. Interior queries locate the governing span by cumulative
// horizontal extent and solve its cubic for the parameter whose x equals t.
func (c *Cubic) getValue(t float64) float64 {
	if t <= 0 {
		return c.startGradient() * t
	}
	if t >= 1 {
		return 1 + c.endGradient()*(t-1)
	}

	seg := c.segments[0]
	for _, s := range c.segments {
		seg = s
		if t <= s.p1.x {
			break
		}
	}
	return seg.y(seg.solveX(t))
}

func (c *Cubic) startGradient() float64 {
	s := c.segments[0]
	switch {
	case s.c1.x > s.p0.x:
		return (s.c1.y - s.p0.y) / (s.c1.x - s.p0.x)
	case s.c1.y == s.p0.y && s.c2.x > s.p0.x:
		return (s.c2.y - s.p0.y) / (s.c2.x - s.p0.x)
	}
	return 0
}

func (c *Cubic) endGradient() float64 {
	s := c.segments[len(c.segments)-1]
	switch {
	case s.c2.x < s.p1.x:
		return (s.p1.y - s.c2.y) / (s.p1.x - s.c2.x)
	case s.c2.x == s.p1.x && s.c1.x < s.p1.x:
		return (s.p1.y - s.c1.y) / (s.p1.x - s.c1.x)
	}
	return 0
}

func (s segment) x(u float64) float64 { return bezier(s.p0.x, s.c1.x, s.c2.x, s.p1.x, u) }
func (s segment) y(u float64) float64 { return bezier(s.p0.y, s.c1.y, s.c2.y, s.p1.y, u) }

func bezier(p0, p1, p2, p3, u float64) float64 {
	v := 1 - u
	return p0*v*v*v + 3*p1*v*v*u + 3*p2*v*u*u + p3*u*u*u
}

func bezierDeriv(p0, p1, p2, p3, u float64) float64 {
	v := 1 - u
	return 3*v*v*(p1-p0) + 6*v*u*(p2-p1) + 3*u*u*(p3-p2)
}

// solveX finds the curve parameter whose x component equals target:
// Newton-Raphson from a linear first guess, bisection when the derivative
// degenerates or Newton fails to converge.
func (s segment) solveX(target float64) float64 {
	u := 0.5
	if span := s.p1.x - s.p0.x; span != 0 {
		u = clamp01((target - s.p0.x) / span)
	}

	for i := 0; i < newtonIters; i++ {
		diff := s.x(u) - target
		if math.Abs(diff) < solveEps {
			return u
		}
		d := bezierDeriv(s.p0.x, s.c1.x, s.c2.x, s.p1.x, u)
		if math.Abs(d) < 1e-12 {
			break
		}
		u = clamp01(u - diff/d)
	}

	lo, hi := 0.0, 1.0
	for i := 0; i < bisectIters; i++ {
		u = (lo + hi) / 2
		diff := s.x(u) - target
		if math.Abs(diff) < solveEps {
			return u
		}
		if diff < 0 {
			lo = u
		} else {
			hi = u
		}
	}
	return u
}

func clamp01(u float64) float64 {
	return math.Min(1, math.Max(0, u))
}
