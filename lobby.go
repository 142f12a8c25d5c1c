package server

import (
	"context"
	"hash/fnv"
	"math/rand"
	"sync/atomic"
	"time"

	"dodge-or-die/server/logging"
	"dodge-or-die/server/logging/lifecycle"
)

// Lobby is an isolated game session. A single goroutine owns every field
// below the marker, fed by the command inbox and the two periodic tasks, so
// no lock is needed on the simulation state.
type Lobby struct {
	id       string
	name     string
	password string
	cfg      lobbyConfig
	main     bool

	inbox  chan any
	quit   chan struct{}
	closed atomic.Bool

	memberCount atomic.Int32
	createdAt   time.Time

	// Owned by the lobby goroutine.
	members      map[string]*membership
	subs         map[string]*subscriber
	obstacles    []Obstacle
	level        int
	score        int64
	sessionStart time.Time
	lastTick     time.Time
	currentTick  uint64
	nextObstacle uint64
	colorCursor  int
	tick         task
	spawn        task
	rng          *rand.Rand

	guard     *RespawnGuard
	publisher logging.Publisher
	onEmpty   func(*Lobby)
	onRoster  func()
}

type joinCmd struct {
	player Player
	sub    *subscriber
	reply  chan StateMessage
}

type leaveCmd struct {
	playerID    string
	recordDeath bool
	done        chan struct{}
}

type inputCmd struct {
	playerID    string
	keys        []string
	pointer     *PointerPayload
	pointerMode *bool
}

type renameCmd struct {
	playerID string
	name     string
}

type chatCmd struct {
	playerID string
	text     string
}

// funcCmd runs a closure on the actor goroutine, giving it exclusive access
// to the simulation state.
type funcCmd struct {
	fn func(*Lobby)
}

func newLobby(id, name, password string, cfg lobbyConfig, main bool, guard *RespawnGuard, pub logging.Publisher, onEmpty func(*Lobby), onRoster func()) *Lobby {
	if pub == nil {
		pub = logging.NopPublisher()
	}
	seed := fnv.New64a()
	seed.Write([]byte(cfg.Seed))
	seed.Write([]byte(id))
	return &Lobby{
		id:        id,
		name:      name,
		password:  password,
		cfg:       cfg,
		main:      main,
		inbox:     make(chan any, lobbyInboxSize),
		quit:      make(chan struct{}),
		createdAt: time.Now(),
		members:   make(map[string]*membership),
		subs:      make(map[string]*subscriber),
		level:     1,
		rng:       rand.New(rand.NewSource(int64(seed.Sum64()))),
		guard:     guard,
		publisher: pub,
		onEmpty:   onEmpty,
		onRoster:  onRoster,
	}
}

func (l *Lobby) ID() string   { return l.id }
func (l *Lobby) Name() string { return l.name }

func (l *Lobby) MemberCount() int {
	return int(l.memberCount.Load())
}

func (l *Lobby) PasswordProtected() bool {
	return l.password != ""
}

// run is the lobby actor loop. Stopped tasks expose nil channels, so an idle
// lobby only ever wakes for commands.
func (l *Lobby) run() {
	defer func() {
		l.tick.stop()
		l.spawn.stop()
	}()
	for {
		select {
		case <-l.quit:
			return
		case cmd := <-l.inbox:
			l.handleCommand(cmd)
		case now := <-l.tick.C():
			l.step(now)
		case <-l.spawn.C():
			l.addObstacle()
		}
	}
}

func (l *Lobby) handleCommand(cmd any) {
	switch c := cmd.(type) {
	case joinCmd:
		l.handleJoin(c)
	case leaveCmd:
		l.handleLeave(c)
	case inputCmd:
		if m, ok := l.members[c.playerID]; ok {
			applyInput(m, c.keys, c.pointer, c.pointerMode)
		}
	case renameCmd:
		if m, ok := l.members[c.playerID]; ok {
			m.name = c.name
		}
	case chatCmd:
		l.handleChat(c)
	case funcCmd:
		c.fn(l)
	}
}

func (l *Lobby) handleJoin(cmd joinCmd) {
	now := time.Now()
	if len(l.members) == 0 {
		l.startSimulation(now)
	}
	m := newMembership(cmd.player, l.colorCursor, l.cfg.SafeZone)
	l.colorCursor++
	l.members[cmd.player.ID] = m
	l.subs[cmd.player.ID] = cmd.sub
	l.memberCount.Store(int32(len(l.members)))
	cmd.reply <- l.buildSnapshot(now)
	l.notifyRoster()
}

func (l *Lobby) handleLeave(cmd leaveCmd) {
	defer close(cmd.done)
	m, ok := l.members[cmd.playerID]
	if !ok {
		return
	}
	delete(l.members, cmd.playerID)
	delete(l.subs, cmd.playerID)
	l.memberCount.Store(int32(len(l.members)))

	if cmd.recordDeath && !m.alive {
		l.guard.RecordDeath(m.ip)
	}

	if len(l.members) == 0 {
		l.stopSimulation()
		if !l.main {
			if l.closed.CompareAndSwap(false, true) {
				close(l.quit)
			}
			if l.onEmpty != nil {
				l.onEmpty(l)
			}
			return
		}
	}
	l.notifyRoster()
}

func (l *Lobby) handleChat(cmd chatCmd) {
	m, ok := l.members[cmd.playerID]
	if !ok {
		return
	}
	l.broadcastMessage(ChatRelayedMessage{
		Ver:         ProtocolVersion,
		Type:        MsgChatRelayed,
		PlayerID:    cmd.playerID,
		DisplayName: m.name,
		Text:        cmd.text,
	})
}

// startSimulation is the Idle to Running transition: difficulty, score, and
// obstacles reset, then both periodic tasks come up.
func (l *Lobby) startSimulation(now time.Time) {
	l.level = 1
	l.score = 0
	l.obstacles = nil
	l.sessionStart = now
	l.lastTick = now
	l.tick.start(time.Second / tickRate)
	l.spawn.start(spawnPeriod(l.level))
	lifecycle.SimulationStarted(context.Background(), l.publisher, logging.LobbyRef(l.id))
}

// stopSimulation is the Running to Idle transition.
func (l *Lobby) stopSimulation() {
	l.tick.stop()
	l.spawn.stop()
	l.obstacles = nil
	lifecycle.SimulationStopped(context.Background(), l.publisher, logging.LobbyRef(l.id))
}

func (l *Lobby) addObstacle() {
	l.nextObstacle++
	l.obstacles = append(l.obstacles, spawnObstacle(l.rng, l.nextObstacle, l.level, l.cfg.SafeZone))
}

func (l *Lobby) notifyRoster() {
	if l.onRoster != nil {
		l.onRoster()
	}
}

func (l *Lobby) broadcastMessage(v any) {
	broadcastTo(l.subs, v)
}

// dispatch queues a command unless the lobby has already shut down.
func (l *Lobby) dispatch(cmd any) bool {
	if l.closed.Load() {
		return false
	}
	select {
	case l.inbox <- cmd:
		return true
	case <-l.quit:
		return false
	}
}

// Join attaches a player and returns the initial snapshot. A false result
// means the lobby shut down concurrently.
func (l *Lobby) Join(p Player, sub *subscriber) (StateMessage, bool) {
	reply := make(chan StateMessage, 1)
	if !l.dispatch(joinCmd{player: p, sub: sub, reply: reply}) {
		return StateMessage{}, false
	}
	select {
	case snapshot := <-reply:
		return snapshot, true
	case <-l.quit:
		return StateMessage{}, false
	}
}

// Leave detaches a player, optionally stamping its IP into the respawn guard
// when it was dead at removal time. A lobby switch passes recordDeath=false:
// switching is not a death.
func (l *Lobby) Leave(playerID string, recordDeath bool) {
	done := make(chan struct{})
	if !l.dispatch(leaveCmd{playerID: playerID, recordDeath: recordDeath, done: done}) {
		return
	}
	select {
	case <-done:
	case <-l.quit:
	}
}

func (l *Lobby) Input(playerID string, keys []string, pointer *PointerPayload, pointerMode *bool) bool {
	return l.dispatch(inputCmd{playerID: playerID, keys: keys, pointer: pointer, pointerMode: pointerMode})
}

func (l *Lobby) Rename(playerID, name string) bool {
	return l.dispatch(renameCmd{playerID: playerID, name: name})
}

func (l *Lobby) Chat(playerID, text string) bool {
	return l.dispatch(chatCmd{playerID: playerID, text: text})
}

// stopActor tears the actor down during process shutdown.
func (l *Lobby) stopActor() {
	if l.closed.CompareAndSwap(false, true) {
		close(l.quit)
	}
}
