package server

// Client → server message kinds. Anything outside the set allowed by the
// connection's binding state is logged and ignored at the gateway.
const (
	MsgListRooms      = "list-rooms"
	MsgCreateRoom     = "create-room"
	MsgJoinRoom       = "join-room"
	MsgSetDisplayName = "set-display-name"
	MsgInput          = "input"
	MsgChat           = "chat"
)

// Server → client message kinds.
const (
	MsgWelcome         = "welcome"
	MsgRoomList        = "room-list"
	MsgJoinOK          = "join-ok"
	MsgJoinFailed      = "join-failed"
	MsgPasswordNeeded  = "password-required"
	MsgCreateFailed    = "create-failed"
	MsgRespawnCooldown = "respawn-cooldown"
	MsgStateSnapshot   = "state-snapshot"
	MsgLevelUp         = "level-up"
	MsgPlayerLevelUp   = "player-level-up"
	MsgChatRelayed     = "chat-relayed"
)

// ClientMessage is the single tagged envelope read off the wire. Which fields
// are meaningful depends on Type.
type ClientMessage struct {
	Type        string          `json:"type"`
	Name        string          `json:"name,omitempty"`
	Password    string          `json:"password,omitempty"`
	RoomID      string          `json:"roomId,omitempty"`
	Keys        []string        `json:"keys,omitempty"`
	Pointer     *PointerPayload `json:"pointer,omitempty"`
	PointerMode *bool           `json:"pointerMode,omitempty"`
	Text        string          `json:"text,omitempty"`
}

// PointerPayload carries absolute pointer coordinates from the client. They
// are clamped server-side before use.
type PointerPayload struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// SharedConstants is pushed in the welcome frame so the renderer works from
// server truth instead of duplicated literals.
type SharedConstants struct {
	FieldWidth             float64 `json:"fieldWidth"`
	FieldHeight            float64 `json:"fieldHeight"`
	PlayerRadius           float64 `json:"playerRadius"`
	PlayerSpeed            float64 `json:"playerSpeed"`
	BaseObstacleSize       float64 `json:"baseObstacleSize"`
	BaseObstacleSpeed      float64 `json:"baseObstacleSpeed"`
	TickRate               int     `json:"tickRate"`
	LevelScoreThreshold    int     `json:"levelScoreThreshold"`
	BaseSpawnIntervalMS    int64   `json:"baseSpawnIntervalMs"`
	MinSpawnIntervalMS     int64   `json:"minSpawnIntervalMs"`
	SpawnRateMult          float64 `json:"spawnRateMult"`
	SpeedLevelMult         float64 `json:"speedLevelMult"`
	RespawnCooldownSeconds int     `json:"respawnCooldownSeconds"`
	SafeZoneWidth          float64 `json:"safeZoneWidth,omitempty"`
}

// SharedGameConstants returns the constant block advertised to clients.
func SharedGameConstants(cfg lobbyConfig, cooldown int) SharedConstants {
	constants := SharedConstants{
		FieldWidth:             fieldWidth,
		FieldHeight:            fieldHeight,
		PlayerRadius:           playerRadius,
		PlayerSpeed:            playerSpeed,
		BaseObstacleSize:       baseObstacleSize,
		BaseObstacleSpeed:      baseObstacleSpeed,
		TickRate:               tickRate,
		LevelScoreThreshold:    levelScoreThreshold,
		BaseSpawnIntervalMS:    baseSpawnInterval.Milliseconds(),
		MinSpawnIntervalMS:     minSpawnInterval.Milliseconds(),
		SpawnRateMult:          spawnRateMult,
		SpeedLevelMult:         speedLevelMult,
		RespawnCooldownSeconds: cooldown,
	}
	if cfg.SafeZone {
		constants.SafeZoneWidth = safeZoneWidth
	}
	return constants
}

type WelcomeMessage struct {
	Ver       int             `json:"ver"`
	Type      string          `json:"type"`
	PlayerID  string          `json:"playerId"`
	Constants SharedConstants `json:"constants"`
}

type RoomSummary struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	MemberCount       int    `json:"memberCount"`
	PasswordProtected bool   `json:"passwordProtected"`
}

type RoomListMessage struct {
	Ver   int           `json:"ver"`
	Type  string        `json:"type"`
	Rooms []RoomSummary `json:"rooms"`
}

type JoinOKMessage struct {
	Ver             int          `json:"ver"`
	Type            string       `json:"type"`
	RoomID          string       `json:"roomId"`
	RoomName        string       `json:"roomName"`
	PlayerID        string       `json:"playerId"`
	InitialSnapshot StateMessage `json:"initialSnapshot"`
}

type JoinFailedMessage struct {
	Ver    int    `json:"ver"`
	Type   string `json:"type"`
	Reason string `json:"reason"`
}

type PasswordRequiredMessage struct {
	Ver    int    `json:"ver"`
	Type   string `json:"type"`
	RoomID string `json:"roomId"`
}

type CreateFailedMessage struct {
	Ver    int    `json:"ver"`
	Type   string `json:"type"`
	Reason string `json:"reason"`
}

type RespawnCooldownMessage struct {
	Ver         int    `json:"ver"`
	Type        string `json:"type"`
	SecondsLeft int    `json:"secondsLeft"`
}

// PlayerSnapshot is the per-member slice of a state broadcast.
type PlayerSnapshot struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Color    string  `json:"color"`
	Alive    bool    `json:"alive"`
	Radius   float64 `json:"radius"`
	Level    int     `json:"level"`
	XP       int     `json:"xp"`
	XPNeeded int     `json:"xpNeeded"`
}

// StateMessage is the lobby-scoped snapshot pushed every tick.
type StateMessage struct {
	Ver        int                       `json:"ver"`
	Type       string                    `json:"type"`
	Players    map[string]PlayerSnapshot `json:"players"`
	Obstacles  []Obstacle                `json:"obstacles"`
	Level      int                       `json:"level"`
	Score      int64                     `json:"score"`
	ServerTime int64                     `json:"serverTime"`
}

type LevelUpMessage struct {
	Ver      int    `json:"ver"`
	Type     string `json:"type"`
	NewLevel int    `json:"newLevel"`
}

type PlayerLevelUpMessage struct {
	Ver      int    `json:"ver"`
	Type     string `json:"type"`
	PlayerID string `json:"playerId"`
	NewLevel int    `json:"newLevel"`
	XPNeeded int    `json:"xpNeeded"`
}

type ChatRelayedMessage struct {
	Ver         int    `json:"ver"`
	Type        string `json:"type"`
	PlayerID    string `json:"playerId"`
	DisplayName string `json:"displayName"`
	Text        string `json:"text"`
}

// ProtocolDocument groups every wire type so cmd/schema can reflect the whole
// protocol into a single JSON schema artifact for the client build.
type ProtocolDocument struct {
	Client           ClientMessage           `json:"client"`
	Welcome          WelcomeMessage          `json:"welcome"`
	RoomList         RoomListMessage         `json:"roomList"`
	JoinOK           JoinOKMessage           `json:"joinOk"`
	JoinFailed       JoinFailedMessage       `json:"joinFailed"`
	PasswordRequired PasswordRequiredMessage `json:"passwordRequired"`
	CreateFailed     CreateFailedMessage     `json:"createFailed"`
	RespawnCooldown  RespawnCooldownMessage  `json:"respawnCooldown"`
	State            StateMessage            `json:"state"`
	LevelUp          LevelUpMessage          `json:"levelUp"`
	PlayerLevelUp    PlayerLevelUpMessage    `json:"playerLevelUp"`
	ChatRelayed      ChatRelayedMessage      `json:"chatRelayed"`
	Constants        SharedConstants         `json:"constants"`
}
