package lifecycle

import (
	"context"

	"dodge-or-die/server/logging"
)

const (
	// EventPlayerConnected is emitted when a connection is accepted and a
	// player identity allocated.
	EventPlayerConnected logging.EventType = "lifecycle.player_connected"
	// EventPlayerDisconnected is emitted when a player's connection ends.
	EventPlayerDisconnected logging.EventType = "lifecycle.player_disconnected"
	// EventRespawnRejected is emitted when a connection is refused because the
	// originating IP is still inside the respawn cooldown.
	EventRespawnRejected logging.EventType = "lifecycle.respawn_rejected"
	// EventLobbyCreated is emitted when a lobby is registered.
	EventLobbyCreated logging.EventType = "lifecycle.lobby_created"
	// EventLobbyDestroyed is emitted when an emptied lobby is torn down.
	EventLobbyDestroyed logging.EventType = "lifecycle.lobby_destroyed"
	// EventSimulationStarted is emitted on a lobby's Idle to Running transition.
	EventSimulationStarted logging.EventType = "lifecycle.simulation_started"
	// EventSimulationStopped is emitted on a lobby's Running to Idle transition.
	EventSimulationStopped logging.EventType = "lifecycle.simulation_stopped"
)

type PlayerConnectedPayload struct {
	IP string `json:"ip"`
}

type PlayerDisconnectedPayload struct {
	Reason string `json:"reason"`
}

type RespawnRejectedPayload struct {
	IP          string `json:"ip"`
	SecondsLeft int    `json:"secondsLeft"`
}

type LobbyPayload struct {
	Name      string `json:"name"`
	Protected bool   `json:"protected,omitempty"`
}

func PlayerConnected(ctx context.Context, pub logging.Publisher, actor logging.EntityRef, payload PlayerConnectedPayload) {
	publish(ctx, pub, logging.Event{
		Type:     EventPlayerConnected,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryLifecycle,
		Payload:  payload,
	})
}

func PlayerDisconnected(ctx context.Context, pub logging.Publisher, actor logging.EntityRef, payload PlayerDisconnectedPayload) {
	publish(ctx, pub, logging.Event{
		Type:     EventPlayerDisconnected,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryLifecycle,
		Payload:  payload,
	})
}

func RespawnRejected(ctx context.Context, pub logging.Publisher, payload RespawnRejectedPayload) {
	publish(ctx, pub, logging.Event{
		Type:     EventRespawnRejected,
		Actor:    logging.EntityRef{Kind: logging.EntityKindWorld},
		Severity: logging.SeverityWarn,
		Category: logging.CategoryLifecycle,
		Payload:  payload,
	})
}

func LobbyCreated(ctx context.Context, pub logging.Publisher, actor logging.EntityRef, payload LobbyPayload) {
	publish(ctx, pub, logging.Event{
		Type:     EventLobbyCreated,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryLifecycle,
		Payload:  payload,
	})
}

func LobbyDestroyed(ctx context.Context, pub logging.Publisher, actor logging.EntityRef, payload LobbyPayload) {
	publish(ctx, pub, logging.Event{
		Type:     EventLobbyDestroyed,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryLifecycle,
		Payload:  payload,
	})
}

func SimulationStarted(ctx context.Context, pub logging.Publisher, actor logging.EntityRef) {
	publish(ctx, pub, logging.Event{
		Type:     EventSimulationStarted,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryLifecycle,
	})
}

func SimulationStopped(ctx context.Context, pub logging.Publisher, actor logging.EntityRef) {
	publish(ctx, pub, logging.Event{
		Type:     EventSimulationStopped,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryLifecycle,
	})
}

func publish(ctx context.Context, pub logging.Publisher, event logging.Event) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, event)
}
