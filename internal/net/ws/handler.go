package ws

import (
	"encoding/json"
	"errors"
	"log"
	nethttp "net/http"

	"github.com/gorilla/websocket"

	"dodge-or-die/server"
)

type HandlerConfig struct {
	Logger *log.Logger
}

// Handler upgrades connections and runs the per-connection read loop. All
// game semantics live behind the hub; the handler only validates the envelope
// and enforces the binding-state protocol.
type Handler struct {
	hub      *server.Hub
	logger   *log.Logger
	upgrader websocket.Upgrader
}

func NewHandler(hub *server.Hub, cfg HandlerConfig) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}

	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *nethttp.Request) bool {
			return true
		},
	}

	return &Handler{
		hub:      hub,
		logger:   logger,
		upgrader: upgrader,
	}
}

func (h *Handler) Handle(w nethttp.ResponseWriter, r *nethttp.Request) {
	ip := server.ClientIP(r)

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Printf("upgrade failed for %s: %v", ip, err)
		return
	}

	player, session, err := h.hub.Connect(ip, conn)
	if err != nil {
		var cooldown *server.CooldownError
		if errors.As(err, &cooldown) {
			h.rejectCooldown(conn, cooldown.SecondsLeft)
			return
		}
		h.logger.Printf("connect failed for %s: %v", ip, err)
		conn.Close()
		return
	}

	conn.SetReadLimit(server.MaxMessageBytes)

	if err := session.Send(h.hub.WelcomeFor(player)); err != nil {
		h.hub.Disconnect(player.ID, "welcome write failed")
		conn.Close()
		return
	}
	if err := session.Send(h.hub.RoomList()); err != nil {
		h.hub.Disconnect(player.ID, "room list write failed")
		conn.Close()
		return
	}

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			h.hub.Disconnect(player.ID, "read error")
			conn.Close()
			return
		}

		var msg server.ClientMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			h.logger.Printf("discarding malformed message from %s: %v", player.ID, err)
			continue
		}

		if !h.dispatch(player.ID, session, msg) {
			session.SendClose(websocket.CloseInternalServerErr, "internal error")
			h.hub.Disconnect(player.ID, "protocol failure")
			conn.Close()
			return
		}
	}
}

// dispatch routes one message according to the connection's binding state.
// A false return tears the connection down.
func (h *Handler) dispatch(playerID string, session server.Session, msg server.ClientMessage) bool {
	bound := h.hub.Bound(playerID)

	switch msg.Type {
	case server.MsgListRooms:
		if bound {
			h.logger.Printf("ignoring %s from bound player %s", msg.Type, playerID)
			return true
		}
		return h.reply(playerID, session, h.hub.RoomList())

	case server.MsgCreateRoom:
		if bound {
			h.logger.Printf("ignoring %s from bound player %s", msg.Type, playerID)
			return true
		}
		if err := h.hub.CreateLobby(msg.Name, msg.Password); err != nil {
			return h.reply(playerID, session, server.CreateFailedMessage{
				Ver:    server.ProtocolVersion,
				Type:   server.MsgCreateFailed,
				Reason: err.Error(),
			})
		}
		return true

	case server.MsgJoinRoom:
		if bound {
			h.logger.Printf("ignoring %s from bound player %s", msg.Type, playerID)
			return true
		}
		reply, err := h.hub.JoinLobby(playerID, msg.RoomID, msg.Password)
		if err != nil {
			return h.joinError(playerID, session, msg.RoomID, err)
		}
		return h.reply(playerID, session, reply)

	case server.MsgSetDisplayName:
		if !bound {
			h.logger.Printf("ignoring %s from unbound player %s", msg.Type, playerID)
			return true
		}
		h.hub.Rename(playerID, msg.Name)
		return true

	case server.MsgInput:
		if !bound {
			h.logger.Printf("ignoring %s from unbound player %s", msg.Type, playerID)
			return true
		}
		return h.hub.ForwardInput(playerID, msg.Keys, msg.Pointer, msg.PointerMode)

	case server.MsgChat:
		if !bound {
			h.logger.Printf("ignoring %s from unbound player %s", msg.Type, playerID)
			return true
		}
		return h.hub.ForwardChat(playerID, msg.Text)

	default:
		h.logger.Printf("unknown message type %q from %s", msg.Type, playerID)
		return true
	}
}

func (h *Handler) joinError(playerID string, session server.Session, roomID string, err error) bool {
	switch {
	case errors.Is(err, server.ErrPasswordRequired):
		return h.reply(playerID, session, server.PasswordRequiredMessage{
			Ver:    server.ProtocolVersion,
			Type:   server.MsgPasswordNeeded,
			RoomID: roomID,
		})
	case errors.Is(err, server.ErrInvalidPassword), errors.Is(err, server.ErrLobbyNotFound),
		errors.Is(err, server.ErrAlreadyMember):
		return h.reply(playerID, session, server.JoinFailedMessage{
			Ver:    server.ProtocolVersion,
			Type:   server.MsgJoinFailed,
			Reason: err.Error(),
		})
	case errors.Is(err, server.ErrUnknownPlayer):
		return false
	default:
		h.logger.Printf("join failed for %s: %v", playerID, err)
		return false
	}
}

func (h *Handler) reply(playerID string, session server.Session, v any) bool {
	if err := session.Send(v); err != nil {
		h.logger.Printf("failed to send reply to %s: %v", playerID, err)
		return false
	}
	return true
}

// rejectCooldown informs a still-cooling client how long it has left, then
// closes with a policy-violation frame. No player state exists at this point.
func (h *Handler) rejectCooldown(conn *websocket.Conn, secondsLeft int) {
	notice := server.RespawnCooldownMessage{
		Ver:         server.ProtocolVersion,
		Type:        server.MsgRespawnCooldown,
		SecondsLeft: secondsLeft,
	}
	if data, err := json.Marshal(notice); err == nil {
		conn.WriteMessage(websocket.TextMessage, data)
	}
	message := websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "respawn cooldown")
	conn.WriteMessage(websocket.CloseMessage, message)
	conn.Close()
}
