package server

import (
	"context"
	"crypto/subtle"
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"dodge-or-die/server/logging"
	"dodge-or-die/server/logging/lifecycle"
)

var (
	ErrNameEmpty        = errors.New("lobby name is empty")
	ErrNameTaken        = errors.New("lobby name is taken")
	ErrLobbyNotFound    = errors.New("lobby not found")
	ErrPasswordRequired = errors.New("password required")
	ErrInvalidPassword  = errors.New("invalid password")
)

// Registry owns the set of active lobbies. The distinguished main lobby is
// created once and survives even when empty; every other lobby is destroyed
// when its last member leaves.
type Registry struct {
	mu        sync.RWMutex
	lobbies   map[string]*Lobby
	cfg       lobbyConfig
	guard     *RespawnGuard
	publisher logging.Publisher
	onRoster  func()
	main      *Lobby
}

func NewRegistry(cfg lobbyConfig, guard *RespawnGuard, pub logging.Publisher, onRoster func()) *Registry {
	if pub == nil {
		pub = logging.NopPublisher()
	}
	r := &Registry{
		lobbies:   make(map[string]*Lobby),
		cfg:       cfg.normalized(),
		guard:     guard,
		publisher: pub,
		onRoster:  onRoster,
	}
	main := newLobby(uuid.NewString(), mainLobbyName, "", r.cfg, true, guard, pub, nil, onRoster)
	r.lobbies[main.id] = main
	r.main = main
	go main.run()
	return r
}

// CreateLobby registers a new lobby. Names are trimmed, length-capped, and
// must not collide case-insensitively with an existing lobby.
func (r *Registry) CreateLobby(name, password string) (*Lobby, error) {
	trimmed := strings.TrimSpace(name)
	if runes := []rune(trimmed); len(runes) > maxRoomNameLength {
		trimmed = strings.TrimSpace(string(runes[:maxRoomNameLength]))
	}
	if trimmed == "" {
		return nil, ErrNameEmpty
	}

	r.mu.Lock()
	for _, l := range r.lobbies {
		if strings.EqualFold(l.name, trimmed) {
			r.mu.Unlock()
			return nil, ErrNameTaken
		}
	}
	l := newLobby(uuid.NewString(), trimmed, password, r.cfg, false, r.guard, r.publisher, r.removeLobby, r.onRoster)
	r.lobbies[l.id] = l
	r.mu.Unlock()

	go l.run()
	lifecycle.LobbyCreated(context.Background(), r.publisher, logging.LobbyRef(l.id),
		lifecycle.LobbyPayload{Name: l.name, Protected: l.PasswordProtected()})
	if r.onRoster != nil {
		r.onRoster()
	}
	return l, nil
}

// Join validates credentials and attaches the player to the lobby.
func (r *Registry) Join(p Player, sub *subscriber, lobbyID, password string) (*Lobby, StateMessage, error) {
	r.mu.RLock()
	l, ok := r.lobbies[lobbyID]
	r.mu.RUnlock()
	if !ok || l.closed.Load() {
		return nil, StateMessage{}, ErrLobbyNotFound
	}
	if l.password != "" {
		if password == "" {
			return nil, StateMessage{}, ErrPasswordRequired
		}
		if subtle.ConstantTimeCompare([]byte(l.password), []byte(password)) != 1 {
			return nil, StateMessage{}, ErrInvalidPassword
		}
	}
	snapshot, ok := l.Join(p, sub)
	if !ok {
		return nil, StateMessage{}, ErrLobbyNotFound
	}
	return l, snapshot, nil
}

// Lobby looks a lobby up by id.
func (r *Registry) Lobby(id string) (*Lobby, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	l, ok := r.lobbies[id]
	return l, ok
}

// MainLobby returns the always-present default lobby.
func (r *Registry) MainLobby() *Lobby {
	return r.main
}

// List summarizes every lobby, oldest first. Passwords are never exposed.
func (r *Registry) List() []RoomSummary {
	r.mu.RLock()
	lobbies := make([]*Lobby, 0, len(r.lobbies))
	for _, l := range r.lobbies {
		lobbies = append(lobbies, l)
	}
	r.mu.RUnlock()

	sort.Slice(lobbies, func(i, j int) bool {
		if lobbies[i].createdAt.Equal(lobbies[j].createdAt) {
			return lobbies[i].id < lobbies[j].id
		}
		return lobbies[i].createdAt.Before(lobbies[j].createdAt)
	})

	rooms := make([]RoomSummary, 0, len(lobbies))
	for _, l := range lobbies {
		rooms = append(rooms, RoomSummary{
			ID:                l.id,
			Name:              l.name,
			MemberCount:       l.MemberCount(),
			PasswordProtected: l.PasswordProtected(),
		})
	}
	return rooms
}

// removeLobby is invoked by a lobby actor after its last member left.
func (r *Registry) removeLobby(l *Lobby) {
	r.mu.Lock()
	delete(r.lobbies, l.id)
	r.mu.Unlock()
	lifecycle.LobbyDestroyed(context.Background(), r.publisher, logging.LobbyRef(l.id),
		lifecycle.LobbyPayload{Name: l.name})
	if r.onRoster != nil {
		r.onRoster()
	}
}

// Shutdown stops every lobby actor, main included.
func (r *Registry) Shutdown() {
	r.mu.Lock()
	lobbies := make([]*Lobby, 0, len(r.lobbies))
	for _, l := range r.lobbies {
		lobbies = append(lobbies, l)
	}
	r.mu.Unlock()
	for _, l := range lobbies {
		l.stopActor()
	}
}
