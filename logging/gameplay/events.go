package gameplay

import (
	"context"

	"dodge-or-die/server/logging"
)

const (
	// EventPlayerDied is emitted when an obstacle collision kills a member.
	EventPlayerDied logging.EventType = "gameplay.player_died"
	// EventPlayerRevived is emitted when a living member revives a dead one.
	EventPlayerRevived logging.EventType = "gameplay.player_revived"
	// EventLobbyLevelUp is emitted when a lobby's difficulty level increases.
	EventLobbyLevelUp logging.EventType = "gameplay.lobby_level_up"
	// EventPlayerLevelUp is emitted when a member's individual level increases.
	EventPlayerLevelUp logging.EventType = "gameplay.player_level_up"
)

type PlayerDiedPayload struct {
	ObstacleID uint64 `json:"obstacleId"`
	IP         string `json:"ip"`
}

type LobbyLevelUpPayload struct {
	NewLevel int   `json:"newLevel"`
	Score    int64 `json:"score"`
}

type PlayerLevelUpPayload struct {
	NewLevel int `json:"newLevel"`
	XPNeeded int `json:"xpNeeded"`
}

func PlayerDied(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload PlayerDiedPayload) {
	publish(ctx, pub, logging.Event{
		Type:     EventPlayerDied,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryGameplay,
		Payload:  payload,
	})
}

func PlayerRevived(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, target logging.EntityRef) {
	publish(ctx, pub, logging.Event{
		Type:     EventPlayerRevived,
		Tick:     tick,
		Actor:    actor,
		Targets:  []logging.EntityRef{target},
		Severity: logging.SeverityInfo,
		Category: logging.CategoryGameplay,
	})
}

func LobbyLevelUp(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload LobbyLevelUpPayload) {
	publish(ctx, pub, logging.Event{
		Type:     EventLobbyLevelUp,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryGameplay,
		Payload:  payload,
	})
}

func PlayerLevelUp(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload PlayerLevelUpPayload) {
	publish(ctx, pub, logging.Event{
		Type:     EventPlayerLevelUp,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryGameplay,
		Payload:  payload,
	})
}

func publish(ctx context.Context, pub logging.Publisher, event logging.Event) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, event)
}
