package server

// membership is the per-lobby state of a joined player. It exists only while
// the player is in that lobby and is owned exclusively by the lobby goroutine.
type membership struct {
	id          string
	name        string
	ip          string
	x           float64
	y           float64
	color       string
	alive       bool
	radius      float64
	pointerMode bool
	level       int
	xp          int
	xpNeeded    int
}

var memberPalette = []string{
	"#e6194b", "#3cb44b", "#ffe119", "#4363d8", "#f58231",
	"#911eb4", "#46f0f0", "#f032e6", "#bcf60c", "#fabebe",
}

func newMembership(p Player, colorIndex int, safeZone bool) *membership {
	spawnX := fieldWidth / 2
	if safeZone {
		spawnX = safeZoneWidth / 2
	}
	return &membership{
		id:       p.ID,
		name:     p.Name,
		ip:       p.IP,
		x:        spawnX,
		y:        fieldHeight / 2,
		color:    memberPalette[colorIndex%len(memberPalette)],
		alive:    true,
		radius:   playerRadius,
		level:    1,
		xp:       0,
		xpNeeded: baseXP,
	}
}

func (m *membership) snapshot() PlayerSnapshot {
	return PlayerSnapshot{
		ID:       m.id,
		Name:     m.name,
		X:        m.x,
		Y:        m.y,
		Color:    m.color,
		Alive:    m.alive,
		Radius:   m.radius,
		Level:    m.level,
		XP:       m.xp,
		XPNeeded: m.xpNeeded,
	}
}
