package server

import (
	"context"
	"math"
	"time"

	"dodge-or-die/server/logging"
	"dodge-or-die/server/logging/gameplay"
)

// step runs one fixed-rate simulation tick to completion. Everything here is
// synchronous; a tick that overruns its budget drifts rather than being cut
// short.
func (l *Lobby) step(now time.Time) {
	l.currentTick++

	anyAlive := false
	for _, m := range l.members {
		if m.alive {
			anyAlive = true
			break
		}
	}

	// Score advances only while someone is alive; otherwise the session start
	// shifts forward so the externally visible score freezes.
	if anyAlive {
		l.score = now.Sub(l.sessionStart).Milliseconds() / scoreTickMS
	} else {
		l.sessionStart = l.sessionStart.Add(now.Sub(l.lastTick))
	}
	l.lastTick = now

	for l.score >= int64(l.level)*levelScoreThreshold {
		l.level++
		l.spawn.restart(spawnPeriod(l.level))
		l.broadcastMessage(LevelUpMessage{Ver: ProtocolVersion, Type: MsgLevelUp, NewLevel: l.level})
		gameplay.LobbyLevelUp(context.Background(), l.publisher, l.currentTick, logging.LobbyRef(l.id),
			gameplay.LobbyLevelUpPayload{NewLevel: l.level, Score: l.score})
	}

	l.obstacles = advanceObstacles(l.obstacles)
	l.resolveCollisions()
	l.resolveRevivals()
	l.advanceMemberLevels()

	l.broadcastMessage(l.buildSnapshot(now))
}

// resolveCollisions kills members overlapping any obstacle. The scan does not
// short-circuit: several obstacles may hit the same member in one tick, the
// outcome is simply "dead". Obstacle size acts as a diameter in the test.
func (l *Lobby) resolveCollisions() {
	for _, m := range l.members {
		if !m.alive {
			continue
		}
		if l.cfg.SafeZone && insideSafeZone(m.x) {
			continue
		}
		for _, o := range l.obstacles {
			if !circlesOverlap(m.x, m.y, m.radius, o.X, o.Y, o.Size/2) {
				continue
			}
			if m.alive {
				m.alive = false
				l.guard.RecordDeath(m.ip)
				gameplay.PlayerDied(context.Background(), l.publisher, l.currentTick, logging.PlayerRef(m.id),
					gameplay.PlayerDiedPayload{ObstacleID: o.ID, IP: m.ip})
			}
		}
	}
}

// resolveRevivals brings a dead member back when a living one overlaps it.
// Revival never clears the respawn-guard record; the cooldown is purely
// time-based.
func (l *Lobby) resolveRevivals() {
	for _, a := range l.members {
		if !a.alive {
			continue
		}
		for _, b := range l.members {
			if b.alive || a == b {
				continue
			}
			if circlesOverlap(a.x, a.y, a.radius, b.x, b.y, b.radius) {
				b.alive = true
				gameplay.PlayerRevived(context.Background(), l.publisher, l.currentTick,
					logging.PlayerRef(a.id), logging.PlayerRef(b.id))
			}
		}
	}
}

// advanceMemberLevels grants every living member a fixed XP increment and
// handles individual level-ups. XP does not carry over past a level.
func (l *Lobby) advanceMemberLevels() {
	for _, m := range l.members {
		if !m.alive {
			continue
		}
		m.xp += xpPerTick
		if m.xp < m.xpNeeded {
			continue
		}
		m.level++
		m.xp = 0
		m.xpNeeded = int(math.Floor(baseXP * math.Pow(xpGrowthRate, float64(m.level-1))))
		l.broadcastMessage(PlayerLevelUpMessage{
			Ver:      ProtocolVersion,
			Type:     MsgPlayerLevelUp,
			PlayerID: m.id,
			NewLevel: m.level,
			XPNeeded: m.xpNeeded,
		})
		gameplay.PlayerLevelUp(context.Background(), l.publisher, l.currentTick, logging.PlayerRef(m.id),
			gameplay.PlayerLevelUpPayload{NewLevel: m.level, XPNeeded: m.xpNeeded})
	}
}

func (l *Lobby) buildSnapshot(now time.Time) StateMessage {
	players := make(map[string]PlayerSnapshot, len(l.members))
	for id, m := range l.members {
		players[id] = m.snapshot()
	}
	obstacles := make([]Obstacle, len(l.obstacles))
	copy(obstacles, l.obstacles)
	return StateMessage{
		Ver:        ProtocolVersion,
		Type:       MsgStateSnapshot,
		Players:    players,
		Obstacles:  obstacles,
		Level:      l.level,
		Score:      l.score,
		ServerTime: now.UnixMilli(),
	}
}
