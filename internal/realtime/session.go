package realtime

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeTimeout   = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 54 * time.Second // must be shorter than pongWait
	maxCommandSize = 512
	sendQueueSize  = 32
)

// Session wraps one websocket connection.  Frames flow out through a
// buffered queue serviced by writePump; client commands (room joins and
// leaves) arrive through readPump.  Room membership is tied to the session
// and vanishes when either pump exits.
type Session struct {
	id   string
	hub  *Hub
	conn *websocket.Conn
	send chan []byte

	mu     sync.Mutex
	closed bool
}

func newSession(hub *Hub, conn *websocket.Conn) *Session {
	return &Session{
		id:   uuid.NewString(),
		hub:  hub,
		conn: conn,
		send: make(chan []byte, sendQueueSize),
	}
}

// ID returns the session identifier used in logs.
func (s *Session) ID() string { return s.id }

// Enqueue offers a frame without blocking.  False means the session is shut
// down or the queue was full and the frame was dropped.
func (s *Session) Enqueue(frame []byte) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	select {
	case s.send <- frame:
		return true
	default:
		return false
	}
}

// shutdown closes the send queue exactly once.  The hub may still hold a
// reference while a Forward is in flight, so Enqueue and shutdown share the
// mutex.
func (s *Session) shutdown() {
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		close(s.send)
	}
	s.mu.Unlock()
}

// command is what clients send to manage their room memberships.
type command struct {
	Action   string `json:"action"`
	OfficeID uint64 `json:"officeId"`
	UserID   uint64 `json:"userId"`
}

// readPump consumes client commands until the connection dies, then cleans
// up every membership the session acquired.
func (s *Session) readPump() {
	defer func() {
		s.hub.LeaveAll(s)
		s.shutdown()
		_ = s.conn.Close()
	}()
	s.conn.SetReadLimit(maxCommandSize)
	_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		_, raw, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("realtime: session %s read failed: %v", s.id, err)
			}
			return
		}
		var cmd command
		if err := json.Unmarshal(raw, &cmd); err != nil {
			log.Printf("realtime: session %s sent bad command: %v", s.id, err)
			continue
		}
		s.apply(cmd)
	}
}

// apply executes a single client command.
func (s *Session) apply(cmd command) {
	switch cmd.Action {
	case "join-office":
		if cmd.OfficeID != 0 {
			s.hub.Join(s, OfficeRoom(cmd.OfficeID))
		}
	case "join":
		if cmd.UserID != 0 {
			s.hub.Join(s, UserRoom(cmd.UserID))
		}
	case "leave-office":
		if cmd.OfficeID != 0 {
			s.hub.Leave(s, OfficeRoom(cmd.OfficeID))
		}
	case "leave":
		if cmd.UserID != 0 {
			s.hub.Leave(s, UserRoom(cmd.UserID))
		}
	default:
		log.Printf("realtime: session %s sent unknown action %q", s.id, cmd.Action)
	}
}

// writePump drains the send queue and keeps the connection alive with
// periodic pings.  It exits when the queue closes or a write fails.
func (s *Session) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = s.conn.Close()
	}()
	for {
		select {
		case raw, ok := <-s.send:
			if !ok {
				_ = s.conn.WriteControl(websocket.CloseMessage, []byte{}, time.Now().Add(writeTimeout))
				return
			}
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := s.conn.WriteMessage(websocket.TextMessage, raw); err != nil {
				return
			}
		case <-ticker.C:
			if err := s.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout)); err != nil {
				return
			}
		}
	}
}
