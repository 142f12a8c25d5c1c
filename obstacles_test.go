package server

import (
	"math/rand"
	"testing"
	"time"
)

func TestSpawnPeriodShrinksWithLevel(t *testing.T) {
	if got := spawnPeriod(1); got != baseSpawnInterval {
		t.Fatalf("expected level 1 period %v, got %v", baseSpawnInterval, got)
	}
	if spawnPeriod(2) >= spawnPeriod(1) {
		t.Fatalf("expected the period to shrink as the level rises")
	}
	if got := spawnPeriod(0); got != baseSpawnInterval {
		t.Fatalf("expected out-of-range levels to clamp to level 1, got %v", got)
	}
}

func TestSpawnPeriodNeverFallsBelowFloor(t *testing.T) {
	for level := 1; level <= 200; level++ {
		if got := spawnPeriod(level); got < minSpawnInterval {
			t.Fatalf("level %d period %v fell below the floor %v", level, got, minSpawnInterval)
		}
	}
	if got := spawnPeriod(200); got != minSpawnInterval {
		t.Fatalf("expected high levels to sit on the floor, got %v", got)
	}
}

func TestRollObstacleEntersFromOutside(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 200; i++ {
		o := rollObstacle(rng, uint64(i), 3)
		outside := o.X < 0 || o.X > fieldWidth || o.Y < 0 || o.Y > fieldHeight
		if !outside {
			t.Fatalf("obstacle %d spawned inside the field at (%v, %v)", i, o.X, o.Y)
		}
		if o.VX == 0 && o.VY == 0 {
			t.Fatalf("obstacle %d has no velocity", i)
		}
		if o.Size < baseObstacleSize {
			t.Fatalf("obstacle %d size %v below the base", i, o.Size)
		}
	}
}

func TestRollObstacleSpeedScalesWithLevel(t *testing.T) {
	low := rollObstacle(rand.New(rand.NewSource(1)), 1, 1)
	high := rollObstacle(rand.New(rand.NewSource(1)), 1, 10)

	lowSpeed := low.VX*low.VX + low.VY*low.VY
	highSpeed := high.VX*high.VX + high.VY*high.VY
	if highSpeed <= lowSpeed {
		t.Fatalf("expected level 10 to be faster than level 1 for the same roll")
	}
}

func TestSpawnObstacleAvoidsSafeZoneFromTopAndBottom(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 500; i++ {
		o := spawnObstacle(rng, uint64(i), 2, true)
		fromVerticalEdge := o.Y < 0 || o.Y > fieldHeight
		if fromVerticalEdge && insideSafeZone(o.X) {
			// The retry budget is bounded, so a rare fall-through is legal,
			// but with this seed the retries always find a clear column.
			t.Fatalf("obstacle %d entered through the safe zone at x=%v", i, o.X)
		}
	}
}

func TestAdvanceObstaclesIntegratesVelocity(t *testing.T) {
	obstacles := []Obstacle{{ID: 1, X: 100, Y: 200, VX: 2, VY: -3, Size: 10}}
	advanced := advanceObstacles(obstacles)
	if len(advanced) != 1 {
		t.Fatalf("expected the obstacle to survive, got %d", len(advanced))
	}
	if advanced[0].X != 102 || advanced[0].Y != 197 {
		t.Fatalf("expected (102, 197), got (%v, %v)", advanced[0].X, advanced[0].Y)
	}
}

func TestAdvanceObstaclesCullsFarOutside(t *testing.T) {
	size := 10.0
	margin := size * obstacleCullFactor
	obstacles := []Obstacle{
		{ID: 1, X: -margin - 5, Y: 100, Size: size},
		{ID: 2, X: fieldWidth + margin + 5, Y: 100, Size: size},
		{ID: 3, X: 100, Y: -margin - 5, Size: size},
		{ID: 4, X: 100, Y: fieldHeight + margin + 5, Size: size},
		{ID: 5, X: -margin + 5, Y: 100, Size: size},
	}
	advanced := advanceObstacles(obstacles)
	if len(advanced) != 1 {
		t.Fatalf("expected only the near-edge obstacle to survive, got %d", len(advanced))
	}
	if advanced[0].ID != 5 {
		t.Fatalf("expected obstacle 5 to survive, got %d", advanced[0].ID)
	}
}

func TestSpawnPeriodMatchesAdvertisedConstants(t *testing.T) {
	constants := SharedGameConstants(defaultLobbyConfig(), 30)
	if constants.BaseSpawnIntervalMS != (1200 * time.Millisecond).Milliseconds() {
		t.Fatalf("unexpected base spawn interval %d", constants.BaseSpawnIntervalMS)
	}
	if constants.SafeZoneWidth != 0 {
		t.Fatalf("expected no safe zone width when the zone is disabled")
	}

	withZone := SharedGameConstants(lobbyConfig{SafeZone: true, Seed: "arena"}, 30)
	if withZone.SafeZoneWidth != safeZoneWidth {
		t.Fatalf("expected safe zone width %v, got %v", safeZoneWidth, withZone.SafeZoneWidth)
	}
}
