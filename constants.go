package server

import "time"

const (
	ProtocolVersion = 1

	writeWait = 10 * time.Second

	// MaxMessageBytes caps inbound frames; oversized messages force a
	// disconnect at the transport layer.
	MaxMessageBytes = 4096

	tickRate    = 60 // simulation steps per second
	scoreTickMS = 100

	fieldWidth   = 800.0
	fieldHeight  = 600.0
	playerRadius = 15.0
	playerSpeed  = 4.0 // pixels applied per input message

	levelScoreThreshold = 250

	baseSpawnInterval   = 1200 * time.Millisecond
	minSpawnInterval    = 250 * time.Millisecond
	spawnRateMult       = 0.18
	speedLevelMult      = 0.10
	baseObstacleSpeed   = 2.2
	obstacleSpeedJitter = 1.6
	baseObstacleSize    = 10.0
	sizeVarianceBase    = 12.0
	sizeVarianceMult    = 2.0
	obstacleCullFactor  = 3.0

	safeZoneFraction   = 0.20
	safeZoneSpawnTries = 8

	defaultRespawnCooldown = 30 * time.Second
	respawnSweepInterval   = 10 * time.Second

	xpPerTick    = 1
	baseXP       = 600
	xpGrowthRate = 1.35

	maxChatLength     = 200
	maxNameLength     = 16
	maxRoomNameLength = 32

	mainLobbyName = "main"

	lobbyInboxSize = 256
)

// safeZoneWidth is the horizontal extent of the protected strip when the
// safe-zone mechanic is enabled.
const safeZoneWidth = fieldWidth * safeZoneFraction
