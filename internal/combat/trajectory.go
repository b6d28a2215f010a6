package combat

import "math"

// Point is a 2D world-space point, mirroring entity.Position at this
// package's boundary (see worldmap/grid.go for the same pattern).
type Point struct{ X, Y float64 }

// LaunchCurve builds the bezier trajectory from a launcher's origin to
// the attack-range point along its facing direction (spec.md §4.8:
// "bezier trajectory whose landing is the attack-range point along the
// facing direction from the launcher origin"). Control points are placed
// at 1/3 and 2/3 along the straight line, so the curve is the straight
// segment from origin to landing point, traversed at uniform speed; this
// mirrors original_source/MathTools.cpp's calcBezierPoint behavior, not
// its syntax (SPEC_FULL.md "Supplemented features").
func LaunchCurve(origin Point, headingRad float64, attackRange float64) (p0, p1, p2, p3 Point) {
	dst := Point{
		X: origin.X + attackRange*math.Cos(headingRad),
		Y: origin.Y + attackRange*math.Sin(headingRad),
	}
	p0 = origin
	p3 = dst
	p1 = Point{X: origin.X + (dst.X-origin.X)/3, Y: origin.Y + (dst.Y-origin.Y)/3}
	p2 = Point{X: origin.X + 2*(dst.X-origin.X)/3, Y: origin.Y + 2*(dst.Y-origin.Y)/3}
	return
}

// Segment is the swept path a projectile travels within one tick.
type Segment struct {
	From, To Point
}

// PerpendicularDistance is the distance from point to the infinite line
// through seg.From/seg.To, used to bias collision precision (spec.md
// §4.8: "biased by precision from perpendicular distance to the line").
func PerpendicularDistance(seg Segment, point Point) float64 {
	dx := seg.To.X - seg.From.X
	dy := seg.To.Y - seg.From.Y
	length := math.Hypot(dx, dy)
	if length == 0 {
		return math.Hypot(point.X-seg.From.X, point.Y-seg.From.Y)
	}
	// |cross product| / |segment length|
	cross := dx*(seg.From.Y-point.Y) - dy*(seg.From.X-point.X)
	return math.Abs(cross) / length
}

// Precision converts a perpendicular distance into a [0,1] hit-bias
// factor: 1.0 at the line itself, fading to 0 at maxDistance.
func Precision(perpDist, maxDistance float64) float64 {
	if maxDistance <= 0 {
		return 0
	}
	p := 1 - perpDist/maxDistance
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

// BoundingBox is an axis-aligned box test target (Unit or ItemBox).
type BoundingBox struct {
	CenterX, CenterY float64
	HalfW, HalfH     float64
}

func (b BoundingBox) contains(p Point) bool {
	return p.X >= b.CenterX-b.HalfW && p.X <= b.CenterX+b.HalfW &&
		p.Y >= b.CenterY-b.HalfH && p.Y <= b.CenterY+b.HalfH
}

// IntersectsSwept reports whether a swept segment crosses the box,
// sampling the segment at a fixed resolution — adequate for the tick-
// granular movement a projectile uses (one call per simulation tick,
// segment length bounded by speed * tickPeriod).
func IntersectsSwept(seg Segment, box BoundingBox) bool {
	const samples = 8
	for i := 0; i <= samples; i++ {
		t := float64(i) / samples
		p := Point{
			X: seg.From.X + (seg.To.X-seg.From.X)*t,
			Y: seg.From.Y + (seg.To.Y-seg.From.Y)*t,
		}
		if box.contains(p) {
			return true
		}
	}
	return false
}
