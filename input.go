package server

// Direction tokens accepted in input messages. Unknown tokens are ignored.
const (
	keyUp    = "up"
	keyDown  = "down"
	keyLeft  = "left"
	keyRight = "right"
)

// applyInput moves a member according to its latest input message. Pointer
// coordinates snap the position directly (after server-side clamping); key
// sets build a normalized vector scaled by the fixed per-message speed. Dead
// members keep accepting input but do not move until revived.
func applyInput(m *membership, keys []string, pointer *PointerPayload, pointerMode *bool) {
	if pointerMode != nil {
		m.pointerMode = *pointerMode
	}
	if !m.alive {
		return
	}

	if m.pointerMode && pointer != nil {
		m.x = clamp(pointer.X, m.radius, fieldWidth-m.radius)
		m.y = clamp(pointer.Y, m.radius, fieldHeight-m.radius)
		return
	}

	var dx, dy float64
	for _, key := range keys {
		switch key {
		case keyUp:
			dy--
		case keyDown:
			dy++
		case keyLeft:
			dx--
		case keyRight:
			dx++
		}
	}
	dx, dy = normalize(dx, dy)

	m.x = clamp(m.x+dx*playerSpeed, m.radius, fieldWidth-m.radius)
	m.y = clamp(m.y+dy*playerSpeed, m.radius, fieldHeight-m.radius)
}
