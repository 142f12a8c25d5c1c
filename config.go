package server

import "strings"

const defaultArenaSeed = "arena"

// lobbyConfig captures the toggles applied to every lobby simulation.
type lobbyConfig struct {
	SafeZone bool   `json:"safeZone"`
	Seed     string `json:"seed"`
}

// normalized returns a config with defaults applied.
func (cfg lobbyConfig) normalized() lobbyConfig {
	normalized := cfg
	normalized.Seed = strings.TrimSpace(normalized.Seed)
	if normalized.Seed == "" {
		normalized.Seed = defaultArenaSeed
	}
	return normalized
}

// defaultLobbyConfig leaves the safe zone off and uses the default seed.
func defaultLobbyConfig() lobbyConfig {
	return lobbyConfig{
		SafeZone: false,
		Seed:     defaultArenaSeed,
	}
}
