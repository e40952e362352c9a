// Curve geometry for FSM diagram canvases.
// Quadratic curves connect distinct states, cubic curves form self-loops,
// and hit-testing samples along the curve parameterization.

package geometry

import "math"

// Point represents a 2D canvas coordinate in pixels.
type Point struct {
	X, Y float64
}

// Distance returns the Euclidean distance between two points.
func Distance(a, b Point) float64 {
	return math.Hypot(b.X-a.X, b.Y-a.Y)
}

// Midpoint returns the point halfway between a and b.
func Midpoint(a, b Point) Point {
	return Point{(a.X + b.X) / 2, (a.Y + b.Y) / 2}
}

// Anchor identifies one of the four compass points on a state's boundary
// where an edge may attach.
type Anchor int

const (
	North Anchor = iota
	East
	South
	West
)

// Anchors lists all anchors in drawing order.
var Anchors = []Anchor{North, East, South, West}

func (a Anchor) String() string {
	switch a {
	case North:
		return "north"
	case East:
		return "east"
	case South:
		return "south"
	case West:
		return "west"
	}
	return "unknown"
}

// AnchorPosition returns the point on the boundary circle of the given
// radius in the given compass direction.
func AnchorPosition(center Point, radius float64, a Anchor) Point {
	switch a {
	case North:
		return Point{center.X, center.Y - radius}
	case South:
		return Point{center.X, center.Y + radius}
	case East:
		return Point{center.X + radius, center.Y}
	default:
		return Point{center.X - radius, center.Y}
	}
}

// QuadCurve is a quadratic Bézier curve.
type QuadCurve struct {
	P0, Ctrl, P1 Point
}

// CubicCurve is a cubic Bézier curve.
type CubicCurve struct {
	P0, C1, C2, P1 Point
}

// OffsetStep is the perpendicular displacement in pixels per offset index,
// used to fan out parallel edges between the same pair of states.
const OffsetStep = 40.0

// EdgeCurve builds the quadratic curve for a transition between two
// distinct states. The control point is the segment midpoint displaced
// along the perpendicular normal by offsetIndex * OffsetStep. When an
// opposing edge exists, the lexically larger source name takes the
// negative side so the two directions bow apart instead of overlapping.
func EdgeCurve(from, to Point, offsetIndex int, hasOpposite bool, fromName, toName string) QuadCurve {
	dx := to.X - from.X
	dy := to.Y - from.Y
	dist := math.Max(1, math.Hypot(dx, dy))
	nx := -dy / dist
	ny := dx / dist

	offset := float64(offsetIndex) * OffsetStep
	if hasOpposite && fromName > toName {
		offset = -offset
	}

	mid := Midpoint(from, to)
	ctrl := Point{mid.X + nx*offset, mid.Y + ny*offset}
	return QuadCurve{P0: from, Ctrl: ctrl, P1: to}
}

// SelfLoopCurve builds the cubic loop that departs and returns near the
// top of a state's boundary. The horizontal spread and vertical lift both
// grow with the offset index so stacked loops stay visually distinct.
// The loop base sits 6px above the north anchor.
func SelfLoopCurve(center Point, radius float64, offsetIndex int) CubicCurve {
	spread := radius/2 - 2 + float64(offsetIndex)*4
	lift := radius + 8 + float64(offsetIndex)*5
	rimY := center.Y - radius - 6
	return CubicCurve{
		P0: Point{center.X - spread, rimY},
		C1: Point{center.X - spread, rimY - lift},
		C2: Point{center.X + spread, rimY - lift},
		P1: Point{center.X + spread, rimY},
	}
}

// PointOnQuad evaluates the quadratic Bézier at parameter t ∈ [0,1].
func PointOnQuad(q QuadCurve, t float64) Point {
	u := 1 - t
	return Point{
		X: u*u*q.P0.X + 2*u*t*q.Ctrl.X + t*t*q.P1.X,
		Y: u*u*q.P0.Y + 2*u*t*q.Ctrl.Y + t*t*q.P1.Y,
	}
}

// PointOnCubic evaluates the cubic Bézier at parameter t ∈ [0,1].
func PointOnCubic(c CubicCurve, t float64) Point {
	u := 1 - t
	u2 := u * u
	u3 := u2 * u
	t2 := t * t
	t3 := t2 * t
	return Point{
		X: u3*c.P0.X + 3*u2*t*c.C1.X + 3*u*t2*c.C2.X + t3*c.P1.X,
		Y: u3*c.P0.Y + 3*u2*t*c.C1.Y + 3*u*t2*c.C2.Y + t3*c.P1.Y,
	}
}

// EndAngle returns the direction of travel at the end of the curve,
// suitable for orienting an arrowhead at P1.
func (q QuadCurve) EndAngle() float64 {
	return math.Atan2(q.P1.Y-q.Ctrl.Y, q.P1.X-q.Ctrl.X)
}

// Arrowhead returns the triangle for an arrow whose tip points along
// angle. The two wing points sit length back from the tip, halfWidth to
// either side of the shaft.
func Arrowhead(tip Point, angle, length, halfWidth float64) [3]Point {
	sin, cos := math.Sincos(angle)
	return [3]Point{
		tip,
		{tip.X - length*cos + halfWidth*sin, tip.Y - length*sin - halfWidth*cos},
		{tip.X - length*cos - halfWidth*sin, tip.Y - length*sin + halfWidth*cos},
	}
}

// Default hit-test parameters. The sampled approximation under-reports
// distance between samples, so the tolerance band is kept generous
// relative to the stroke width.
const (
	HitSampleStep = 0.05
	HitTolerance  = 8.0
)

// HitQuad reports whether p lies within tol of any point sampled every
// step along the quadratic curve. Non-positive step or tol select the
// defaults.
func HitQuad(q QuadCurve, p Point, step, tol float64) bool {
	if step <= 0 {
		step = HitSampleStep
	}
	if tol <= 0 {
		tol = HitTolerance
	}
	for t := 0.0; t <= 1.0; t += step {
		if Distance(PointOnQuad(q, t), p) < tol {
			return true
		}
	}
	return false
}

// HitCubic reports whether p lies within tol of any point sampled every
// step along the cubic curve.
func HitCubic(c CubicCurve, p Point, step, tol float64) bool {
	if step <= 0 {
		step = HitSampleStep
	}
	if tol <= 0 {
		tol = HitTolerance
	}
	for t := 0.0; t <= 1.0; t += step {
		if Distance(PointOnCubic(c, t), p) < tol {
			return true
		}
	}
	return false
}
