package server

import "math"

// clamp limits value to the range [min, max].
func clamp(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

// circlesOverlap reports whether two circles intersect.
func circlesOverlap(x1, y1, r1, x2, y2, r2 float64) bool {
	dx := x2 - x1
	dy := y2 - y1
	sum := r1 + r2
	return dx*dx+dy*dy < sum*sum
}

// normalize scales a vector to unit length, leaving zero vectors untouched.
func normalize(dx, dy float64) (float64, float64) {
	length := math.Hypot(dx, dy)
	if length == 0 {
		return 0, 0
	}
	return dx / length, dy / length
}

// insideSafeZone reports whether an x coordinate falls inside the protected
// strip at the left edge of the field.
func insideSafeZone(x float64) bool {
	return x < safeZoneWidth
}
