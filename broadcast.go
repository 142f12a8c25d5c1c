package server

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// wsConn is the slice of *websocket.Conn the engine touches. Tests substitute
// in-memory fakes.
type wsConn interface {
	WriteMessage(messageType int, data []byte) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

// Session is the per-connection send surface handed to the transport layer.
type Session interface {
	Send(v any) error
	SendClose(code int, reason string)
}

// subscriber pairs a connection with a write mutex so broadcasts and direct
// replies never interleave frames.
type subscriber struct {
	conn wsConn
	mu   sync.Mutex
}

func newSubscriber(conn wsConn) *subscriber {
	return &subscriber{conn: conn}
}

func (s *subscriber) send(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return s.conn.WriteMessage(websocket.TextMessage, data)
}

// Send marshals and writes a single text frame.
func (s *subscriber) Send(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.send(data)
}

// SendClose writes a close frame; tearing the connection down is left to the
// read loop.
func (s *subscriber) SendClose(code int, reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	message := websocket.FormatCloseMessage(code, reason)
	s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := s.conn.WriteMessage(websocket.CloseMessage, message); err != nil {
		log.Printf("failed to send close frame: %v", err)
	}
}

func (s *subscriber) close() {
	s.conn.Close()
}

// broadcastTo marshals once and fans a message out to every subscriber. Sends
// are best-effort: a failure is logged and the fan-out continues.
func broadcastTo(subs map[string]*subscriber, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		log.Printf("failed to marshal broadcast message: %v", err)
		return
	}
	for id, sub := range subs {
		if err := sub.send(data); err != nil {
			log.Printf("failed to send update to %s: %v", id, err)
		}
	}
}
