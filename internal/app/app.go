package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	server "dodge-or-die/server"
	servernet "dodge-or-die/server/internal/net"
	"dodge-or-die/server/logging"
	loggingSinks "dodge-or-die/server/logging/sinks"
)

type Config struct {
	Logger *log.Logger
}

const shutdownGrace = 5 * time.Second

// Run boots the service and blocks until the context is cancelled or the
// listener fails. Shutdown drains open sockets with a bounded grace period.
func Run(ctx context.Context, cfg Config) error {
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}

	logConfig := logging.DefaultConfig()
	sinks := []logging.NamedSink{
		{Name: "console", Sink: loggingSinks.NewConsoleSink(os.Stdout, logConfig.Console)},
	}

	router, err := logging.NewRouter(logging.SystemClock{}, logConfig, sinks)
	if err != nil {
		return fmt.Errorf("failed to construct logging router: %w", err)
	}
	defer func() {
		if cerr := router.Close(context.Background()); cerr != nil {
			logger.Printf("failed to close logging router: %v", cerr)
		}
	}()

	hubCfg := server.DefaultHubConfig()
	hubCfg.Publisher = router

	if raw := os.Getenv("SAFE_ZONE"); raw != "" {
		if value, err := strconv.ParseBool(raw); err == nil {
			hubCfg.Config.SafeZone = value
		} else {
			logger.Printf("invalid SAFE_ZONE=%q: %v", raw, err)
		}
	}
	if raw := os.Getenv("RESPAWN_COOLDOWN_SECONDS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			hubCfg.RespawnCooldown = time.Duration(value) * time.Second
		} else {
			logger.Printf("invalid RESPAWN_COOLDOWN_SECONDS=%q", raw)
		}
	}
	if raw := os.Getenv("ARENA_SEED"); raw != "" {
		hubCfg.Config.Seed = raw
	}

	hub := server.NewHubWithConfig(hubCfg)

	handler := servernet.NewHTTPHandler(hub, servernet.HTTPHandlerConfig{
		ClientDir: os.Getenv("CLIENT_DIR"),
		Logger:    logger,
	})

	addr := os.Getenv("ADDR")
	if addr == "" {
		addr = ":8080"
	}

	srv := &http.Server{Addr: addr, Handler: handler}
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	logger.Printf("server listening on %s", srv.Addr)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	hub.Shutdown(shutdownCtx)
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	return nil
}
