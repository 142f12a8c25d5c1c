package server

import (
	"math/rand"
	"time"
)

// Obstacle is a kinematic hazard crossing the field. Size doubles as the
// collision diameter on the wire and in the hit test.
type Obstacle struct {
	ID    uint64  `json:"id"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	VX    float64 `json:"vx"`
	VY    float64 `json:"vy"`
	Size  float64 `json:"size"`
	Color string  `json:"color"`
}

var obstaclePalette = []string{
	"#7f8c8d", "#95a5a6", "#b2bec3", "#636e72", "#a4b0be",
}

const (
	edgeTop = iota
	edgeBottom
	edgeLeft
	edgeRight
)

// spawnPeriod computes the spawn-task interval for a difficulty level,
// floored so high levels cannot degenerate into a spawn flood.
func spawnPeriod(level int) time.Duration {
	if level < 1 {
		level = 1
	}
	period := time.Duration(float64(baseSpawnInterval) / (1 + float64(level-1)*spawnRateMult))
	if period < minSpawnInterval {
		period = minSpawnInterval
	}
	return period
}

// rollObstacle builds a candidate obstacle entering from a uniformly chosen
// field edge, with a perpendicular-biased velocity and level-scaled speed and
// size.
func rollObstacle(rng *rand.Rand, id uint64, level int) Obstacle {
	speed := (baseObstacleSpeed + rng.Float64()*obstacleSpeedJitter) * (1 + float64(level-1)*speedLevelMult)
	lateral := (rng.Float64()*2 - 1) * speed * 0.35
	size := baseObstacleSize + rng.Float64()*(sizeVarianceBase+float64(level)*sizeVarianceMult)

	obstacle := Obstacle{
		ID:    id,
		Size:  size,
		Color: obstaclePalette[rng.Intn(len(obstaclePalette))],
	}

	switch rng.Intn(4) {
	case edgeTop:
		obstacle.X = rng.Float64() * fieldWidth
		obstacle.Y = -size
		obstacle.VX = lateral
		obstacle.VY = speed
	case edgeBottom:
		obstacle.X = rng.Float64() * fieldWidth
		obstacle.Y = fieldHeight + size
		obstacle.VX = lateral
		obstacle.VY = -speed
	case edgeLeft:
		obstacle.X = -size
		obstacle.Y = rng.Float64() * fieldHeight
		obstacle.VX = speed
		obstacle.VY = lateral
	default:
		obstacle.X = fieldWidth + size
		obstacle.Y = rng.Float64() * fieldHeight
		obstacle.VX = -speed
		obstacle.VY = lateral
	}
	return obstacle
}

// spawnObstacle picks a candidate, retrying a bounded number of times when the
// safe zone is enabled and a top/bottom spawn would originate inside the
// strip. Left/right spawns always cross into the play area, so they pass.
func spawnObstacle(rng *rand.Rand, id uint64, level int, safeZone bool) Obstacle {
	candidate := rollObstacle(rng, id, level)
	if !safeZone {
		return candidate
	}
	for attempt := 0; attempt < safeZoneSpawnTries; attempt++ {
		fromVerticalEdge := candidate.Y < 0 || candidate.Y > fieldHeight
		if !fromVerticalEdge || !insideSafeZone(candidate.X) {
			return candidate
		}
		candidate = rollObstacle(rng, id, level)
	}
	return candidate
}

// advanceObstacles integrates positions and drops anything further outside
// the field than three times its size on either axis. The slice is filtered
// in place.
func advanceObstacles(obstacles []Obstacle) []Obstacle {
	kept := obstacles[:0]
	for _, o := range obstacles {
		o.X += o.VX
		o.Y += o.VY
		margin := o.Size * obstacleCullFactor
		if o.X < -margin || o.X > fieldWidth+margin || o.Y < -margin || o.Y > fieldHeight+margin {
			continue
		}
		kept = append(kept, o)
	}
	return kept
}
