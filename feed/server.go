package feed

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/phanxgames/trafficview"
)

const (
	writeWait  = 5 * time.Second
	sendBuffer = 16
)

// Server broadcasts snapshots to every connected websocket client. New
// clients immediately receive the latest snapshot.
type Server struct {
	upgrader websocket.Upgrader
	log      logrus.FieldLogger

	mu      sync.Mutex
	clients map[*peer]struct{}
	last    []byte
}

type peer struct {
	conn    *websocket.Conn
	session string
	send    chan []byte
}

// NewServer creates a server with no clients.
func NewServer(log logrus.FieldLogger) *Server {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Server{
		upgrader: websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
		log:      log,
		clients:  make(map[*peer]struct{}),
	}
}

// ServeHTTP upgrades the request and registers the client.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.WithError(err).Warn("feed upgrade failed")
		return
	}
	p := &peer{conn: conn, session: r.Header.Get(SessionHeader), send: make(chan []byte, sendBuffer)}

	s.mu.Lock()
	s.clients[p] = struct{}{}
	if s.last != nil {
		p.send <- s.last
	}
	n := len(s.clients)
	s.mu.Unlock()
	s.log.WithFields(logrus.Fields{"session": p.session, "clients": n}).Info("feed client joined")

	go s.writer(p)
	s.reader(p)
}

// Clients returns the number of connected clients.
func (s *Server) Clients() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

// Broadcast sends a snapshot to every client.
func (s *Server) Broadcast(snap *trafficview.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	s.broadcast(data, true)
	return nil
}

// BroadcastReset tells every client to clear its entities.
func (s *Server) BroadcastReset() error {
	data, err := json.Marshal(control{Type: controlReset})
	if err != nil {
		return fmt.Errorf("encode reset: %w", err)
	}
	s.broadcast(data, false)
	return nil
}

func (s *Server) broadcast(data []byte, keep bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if keep {
		s.last = data
	} else {
		s.last = nil
	}
	for p := range s.clients {
		select {
		case p.send <- data:
		default:
			// Slow client; drop it rather than stall the simulation.
			s.dropLocked(p)
		}
	}
}

func (s *Server) dropLocked(p *peer) {
	if _, ok := s.clients[p]; !ok {
		return
	}
	delete(s.clients, p)
	close(p.send)
}

// reader discards inbound messages and unregisters the peer on error.
func (s *Server) reader(p *peer) {
	defer func() {
		s.mu.Lock()
		s.dropLocked(p)
		s.mu.Unlock()
		p.conn.Close()
		s.log.WithField("session", p.session).Info("feed client left")
	}()
	for {
		if _, _, err := p.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (s *Server) writer(p *peer) {
	for msg := range p.send {
		_ = p.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := p.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			p.conn.Close()
			return
		}
	}
	_ = p.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(writeWait))
}
