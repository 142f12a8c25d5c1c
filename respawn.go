package server

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"dodge-or-die/server/logging"
)

// RespawnGuard tracks the IPs of recently killed players and bars them from
// reconnecting until the cooldown window elapses. Records expire either on a
// rejected lookup or through the periodic sweep, so the table stays bounded
// even for IPs that never come back.
type RespawnGuard struct {
	mu       sync.Mutex
	deaths   map[string]time.Time
	cooldown time.Duration
	clock    logging.Clock
	stop     chan struct{}
	wg       sync.WaitGroup
}

func NewRespawnGuard(cooldown time.Duration, clock logging.Clock) *RespawnGuard {
	if cooldown <= 0 {
		cooldown = defaultRespawnCooldown
	}
	if clock == nil {
		clock = logging.SystemClock{}
	}
	g := &RespawnGuard{
		deaths:   make(map[string]time.Time),
		cooldown: cooldown,
		clock:    clock,
		stop:     make(chan struct{}),
	}
	g.wg.Add(1)
	go g.sweepLoop()
	return g
}

// RecordDeath stamps an IP with the current time, restarting its cooldown.
func (g *RespawnGuard) RecordDeath(ip string) {
	if ip == "" {
		return
	}
	g.mu.Lock()
	g.deaths[ip] = g.clock.Now()
	g.mu.Unlock()
}

// Remaining reports how much cooldown is left for an IP. Expired records are
// removed on the spot.
func (g *RespawnGuard) Remaining(ip string) time.Duration {
	now := g.clock.Now()
	g.mu.Lock()
	defer g.mu.Unlock()
	died, ok := g.deaths[ip]
	if !ok {
		return 0
	}
	remaining := g.cooldown - now.Sub(died)
	if remaining <= 0 {
		delete(g.deaths, ip)
		return 0
	}
	return remaining
}

// Cooldown returns the configured cooldown window.
func (g *RespawnGuard) Cooldown() time.Duration {
	return g.cooldown
}

// Size reports the number of live death records.
func (g *RespawnGuard) Size() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.deaths)
}

// Sweep purges every record older than the cooldown.
func (g *RespawnGuard) Sweep() {
	now := g.clock.Now()
	g.mu.Lock()
	defer g.mu.Unlock()
	for ip, died := range g.deaths {
		if now.Sub(died) >= g.cooldown {
			delete(g.deaths, ip)
		}
	}
}

func (g *RespawnGuard) sweepLoop() {
	defer g.wg.Done()
	ticker := time.NewTicker(respawnSweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-g.stop:
			return
		case <-ticker.C:
			g.Sweep()
		}
	}
}

// Stop terminates the sweep goroutine.
func (g *RespawnGuard) Stop() {
	close(g.stop)
	g.wg.Wait()
}

// NormalizeIP strips an optional port and the IPv6-mapped-IPv4 prefix so the
// same host always yields the same key.
func NormalizeIP(addr string) string {
	host := addr
	if h, _, err := net.SplitHostPort(addr); err == nil {
		host = h
	}
	return strings.TrimPrefix(host, "::ffff:")
}

// ClientIP resolves the originating IP of a request, preferring the first
// proxy-forwarded hop over the transport-level peer address.
func ClientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if i := strings.IndexByte(fwd, ','); i >= 0 {
			fwd = fwd[:i]
		}
		return NormalizeIP(strings.TrimSpace(fwd))
	}
	return NormalizeIP(r.RemoteAddr)
}
