package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"dodge-or-die/server/logging"
	"dodge-or-die/server/logging/lifecycle"
)

var (
	ErrUnknownPlayer = errors.New("unknown player")
	ErrAlreadyMember = errors.New("already a member of this lobby")
)

// CooldownError rejects a connection whose IP is still inside the respawn
// cooldown window.
type CooldownError struct {
	SecondsLeft int
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("respawn cooldown active: %ds left", e.SecondsLeft)
}

// HubConfig wires the hub's collaborators and tunables.
type HubConfig struct {
	Config          lobbyConfig
	Publisher       logging.Publisher
	RespawnCooldown time.Duration
	Clock           logging.Clock
}

// DefaultHubConfig returns the production defaults.
func DefaultHubConfig() HubConfig {
	return HubConfig{
		Config:          defaultLobbyConfig(),
		RespawnCooldown: defaultRespawnCooldown,
	}
}

// Hub owns the process-wide player map and the cross-lobby collaborators:
// the lobby registry and the respawn guard.
type Hub struct {
	mu        sync.Mutex
	players   map[string]*playerState
	nextGuest atomic.Uint64

	registry  *Registry
	guard     *RespawnGuard
	publisher logging.Publisher
	cooldown  time.Duration
	cfg       lobbyConfig
}

func NewHub() *Hub {
	return NewHubWithConfig(DefaultHubConfig())
}

func NewHubWithConfig(cfg HubConfig) *Hub {
	pub := cfg.Publisher
	if pub == nil {
		pub = logging.NopPublisher()
	}
	cooldown := cfg.RespawnCooldown
	if cooldown <= 0 {
		cooldown = defaultRespawnCooldown
	}
	h := &Hub{
		players:   make(map[string]*playerState),
		publisher: pub,
		cooldown:  cooldown,
		cfg:       cfg.Config.normalized(),
	}
	h.guard = NewRespawnGuard(cooldown, cfg.Clock)
	h.registry = NewRegistry(h.cfg, h.guard, pub, h.BroadcastRoomList)
	return h
}

// Connect allocates a player identity for an accepted connection, unless the
// originating IP is still cooling down — in which case nothing is allocated
// and a CooldownError carries the remaining seconds.
func (h *Hub) Connect(ip string, conn wsConn) (Player, Session, error) {
	if remaining := h.guard.Remaining(ip); remaining > 0 {
		secondsLeft := int(math.Ceil(remaining.Seconds()))
		lifecycle.RespawnRejected(context.Background(), h.publisher,
			lifecycle.RespawnRejectedPayload{IP: ip, SecondsLeft: secondsLeft})
		return Player{}, nil, &CooldownError{SecondsLeft: secondsLeft}
	}

	player := Player{
		ID:   uuid.NewString(),
		Name: fmt.Sprintf("player-%d", h.nextGuest.Add(1)),
		IP:   ip,
	}
	sub := newSubscriber(conn)

	h.mu.Lock()
	h.players[player.ID] = &playerState{Player: player, sub: sub}
	h.mu.Unlock()

	lifecycle.PlayerConnected(context.Background(), h.publisher, logging.PlayerRef(player.ID),
		lifecycle.PlayerConnectedPayload{IP: ip})
	return player, sub, nil
}

// Disconnect runs the full leave procedure for a closing connection: the
// lobby membership is removed with death-recording enabled, the player record
// deleted, and the room list re-pushed to everyone still unbound.
func (h *Hub) Disconnect(playerID, reason string) {
	h.mu.Lock()
	state, ok := h.players[playerID]
	var lobby *Lobby
	if ok {
		lobby = state.lobby
		delete(h.players, playerID)
	}
	h.mu.Unlock()
	if !ok {
		return
	}

	if lobby != nil {
		lobby.Leave(playerID, true)
	}
	lifecycle.PlayerDisconnected(context.Background(), h.publisher, logging.PlayerRef(playerID),
		lifecycle.PlayerDisconnectedPayload{Reason: reason})
	h.BroadcastRoomList()
}

// Bound reports whether the player currently has a lobby binding.
func (h *Hub) Bound(playerID string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	state, ok := h.players[playerID]
	return ok && state.lobby != nil
}

func (h *Hub) setLobby(playerID string, lobby *Lobby) {
	h.mu.Lock()
	if state, ok := h.players[playerID]; ok {
		state.lobby = lobby
	}
	h.mu.Unlock()
}

// CreateLobby forwards to the registry; the updated room list reaches the
// creator through the unbound fan-out.
func (h *Hub) CreateLobby(name, password string) error {
	_, err := h.registry.CreateLobby(name, password)
	return err
}

// JoinLobby attaches a player to a lobby and returns the join-ok reply. A
// player already in a different lobby is detached first without recording a
// death; a lobby switch is not a death.
func (h *Hub) JoinLobby(playerID, lobbyID, password string) (JoinOKMessage, error) {
	h.mu.Lock()
	state, ok := h.players[playerID]
	if !ok {
		h.mu.Unlock()
		return JoinOKMessage{}, ErrUnknownPlayer
	}
	current := state.lobby
	sub := state.sub
	player := state.Player
	h.mu.Unlock()

	if current != nil {
		if current.id == lobbyID {
			return JoinOKMessage{}, ErrAlreadyMember
		}
		current.Leave(playerID, false)
		h.setLobby(playerID, nil)
	}

	lobby, snapshot, err := h.registry.Join(player, sub, lobbyID, password)
	if err != nil {
		return JoinOKMessage{}, err
	}
	h.setLobby(playerID, lobby)

	return JoinOKMessage{
		Ver:             ProtocolVersion,
		Type:            MsgJoinOK,
		RoomID:          lobby.id,
		RoomName:        lobby.name,
		PlayerID:        playerID,
		InitialSnapshot: snapshot,
	}, nil
}

// Rename updates a player's display name after sanitizing. An input that
// sanitizes to nothing keeps the current name.
func (h *Hub) Rename(playerID, raw string) {
	name := sanitizeName(raw)
	if name == "" {
		return
	}
	h.mu.Lock()
	state, ok := h.players[playerID]
	var lobby *Lobby
	if ok {
		state.Name = name
		lobby = state.lobby
	}
	h.mu.Unlock()
	if ok && lobby != nil {
		lobby.Rename(playerID, name)
	}
}

// ForwardInput routes an input message into the player's lobby. A false
// return means the binding is inconsistent and the connection should die.
func (h *Hub) ForwardInput(playerID string, keys []string, pointer *PointerPayload, pointerMode *bool) bool {
	lobby := h.lobbyOf(playerID)
	if lobby == nil {
		return false
	}
	return lobby.Input(playerID, keys, pointer, pointerMode)
}

// ForwardChat relays a chat line into the player's lobby.
func (h *Hub) ForwardChat(playerID, text string) bool {
	lobby := h.lobbyOf(playerID)
	if lobby == nil {
		return false
	}
	return lobby.Chat(playerID, sanitizeChat(text))
}

func (h *Hub) lobbyOf(playerID string) *Lobby {
	h.mu.Lock()
	defer h.mu.Unlock()
	if state, ok := h.players[playerID]; ok {
		return state.lobby
	}
	return nil
}

// RoomList builds the current room-list message.
func (h *Hub) RoomList() RoomListMessage {
	return RoomListMessage{Ver: ProtocolVersion, Type: MsgRoomList, Rooms: h.registry.List()}
}

// WelcomeFor builds the welcome frame for a freshly accepted player.
func (h *Hub) WelcomeFor(player Player) WelcomeMessage {
	return WelcomeMessage{
		Ver:       ProtocolVersion,
		Type:      MsgWelcome,
		PlayerID:  player.ID,
		Constants: SharedGameConstants(h.cfg, int(h.cooldown.Seconds())),
	}
}

// BroadcastRoomList pushes the room list to every socket not yet bound to a
// lobby. Sends are best-effort.
func (h *Hub) BroadcastRoomList() {
	data, err := json.Marshal(h.RoomList())
	if err != nil {
		log.Printf("failed to marshal room list: %v", err)
		return
	}

	h.mu.Lock()
	targets := make(map[string]*subscriber)
	for id, state := range h.players {
		if state.lobby == nil && state.sub != nil {
			targets[id] = state.sub
		}
	}
	h.mu.Unlock()

	for id, sub := range targets {
		if err := sub.send(data); err != nil {
			log.Printf("failed to send room list to %s: %v", id, err)
		}
	}
}

// DiagnosticsSnapshot exposes cross-lobby counters for the diagnostics
// endpoint.
type DiagnosticsSnapshot struct {
	Players      int           `json:"players"`
	Lobbies      []RoomSummary `json:"lobbies"`
	RespawnTable int           `json:"respawnTable"`
}

func (h *Hub) Diagnostics() DiagnosticsSnapshot {
	h.mu.Lock()
	playerCount := len(h.players)
	h.mu.Unlock()
	return DiagnosticsSnapshot{
		Players:      playerCount,
		Lobbies:      h.registry.List(),
		RespawnTable: h.guard.Size(),
	}
}

// Shutdown cancels every lobby's periodic tasks, notifies and closes all open
// sockets, and stops the respawn sweeper. Sockets that fail to close cleanly
// are abandoned once the context expires upstream.
func (h *Hub) Shutdown(ctx context.Context) {
	h.registry.Shutdown()
	h.guard.Stop()

	h.mu.Lock()
	subs := make([]*subscriber, 0, len(h.players))
	for _, state := range h.players {
		if state.sub != nil {
			subs = append(subs, state.sub)
		}
	}
	h.players = make(map[string]*playerState)
	h.mu.Unlock()

	for _, sub := range subs {
		sub.SendClose(websocket.CloseGoingAway, "server shutting down")
		sub.close()
	}
}
