package net

import (
	"encoding/json"
	"log"
	nethttp "net/http"
	"time"

	"dodge-or-die/server"
	"dodge-or-die/server/internal/net/ws"
)

type HTTPHandlerConfig struct {
	ClientDir string
	Logger    *log.Logger
}

// NewHTTPHandler assembles the service mux: the websocket gateway, a health
// probe, a diagnostics endpoint, and optionally the static client bundle.
func NewHTTPHandler(hub *server.Hub, cfg HTTPHandlerConfig) nethttp.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}

	mux := nethttp.NewServeMux()

	mux.HandleFunc("/health", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("ok"))
	})

	mux.HandleFunc("/diagnostics", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		payload := struct {
			Status     string                     `json:"status"`
			ServerTime int64                      `json:"serverTime"`
			Hub        server.DiagnosticsSnapshot `json:"hub"`
		}{
			Status:     "ok",
			ServerTime: time.Now().UnixMilli(),
			Hub:        hub.Diagnostics(),
		}

		data, err := json.Marshal(payload)
		if err != nil {
			nethttp.Error(w, "failed to encode", nethttp.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write(data)
	})

	gateway := ws.NewHandler(hub, ws.HandlerConfig{Logger: logger})
	mux.HandleFunc("/ws", gateway.Handle)

	if cfg.ClientDir != "" {
		fs := nethttp.FileServer(nethttp.Dir(cfg.ClientDir))
		mux.Handle("/", fs)
	}

	return mux
}
