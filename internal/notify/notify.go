package notify

import (
	"encoding/json"
	"errors"
	"log"
	"net"
	"sync"
)

const (
	RegisterMessageType     = "register"
	RatingUpdateMessageType = "rating_update"
)

type RegisterMessage struct {
	Type   string `json:"type"`
	UserID int64  `json:"user_id"`
}

type RatingUpdateMessage struct {
	Type       string  `json:"type"`
	WorkshopID int64   `json:"workshop_id"`
	Rating     float64 `json:"rating"`
}

type Client struct {
	UserID int64
	Addr   *net.UDPAddr
}

type Registry struct {
	mu      sync.RWMutex
	clients map[int64]Client
}

func NewRegistry() *Registry {
	return &Registry{clients: make(map[int64]Client)}
}

func (r *Registry) Register(userID int64, addr *net.UDPAddr) {
	if userID <= 0 || addr == nil {
		return
	}
	r.mu.Lock()
	r.clients[userID] = Client{UserID: userID, Addr: addr}
	r.mu.Unlock()
}

func (r *Registry) Remove(userID int64) {
	r.mu.Lock()
	delete(r.clients, userID)
	r.mu.Unlock()
}

func (r *Registry) Snapshot() []Client {
	r.mu.RLock()
	defer r.mu.RUnlock()
	clients := make([]Client, 0, len(r.clients))
	for _, client := range r.clients {
		clients = append(clients, client)
	}
	return clients
}

type Server struct {
	addr     string
	registry *Registry
	logger   *log.Logger

	mu     sync.Mutex
	conn   *net.UDPConn
	closed bool
}

func NewServer(addr string, registry *Registry, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{addr: addr, registry: registry, logger: logger}
}

func (s *Server) Run() error {
	udpAddr, err := net.ResolveUDPAddr("udp", s.addr)
	if err != nil {
		return err
	}
	conn, err := net.ListenUDP("udp", udpAddr)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.conn = conn
	s.mu.Unlock()
	defer conn.Close()

	s.logger.Printf("UDP notify server listening on %s", s.addr)

	buffer := make([]byte, 2048)
	for {
		n, addr, err := conn.ReadFromUDP(buffer)
		if err != nil {
			s.mu.Lock()
			closed := s.closed
			s.mu.Unlock()
			if closed {
				return nil
			}
			return err
		}
		msg, err := parseRegisterMessage(buffer[:n])
		if err != nil {
			s.logger.Printf("invalid UDP message from %s: %v", addr, err)
			continue
		}
		if msg.Type != RegisterMessageType {
			continue
		}
		s.registry.Register(msg.UserID, addr)
		s.logger.Printf("registered UDP client %d (%s)", msg.UserID, addr)
	}
}

func (s *Server) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

// currentConn snapshots the listening socket; Run writes it under the
// same lock.
func (s *Server) currentConn() *net.UDPConn {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn
}

// BroadcastRatingUpdate pushes the recomputed rating of a workshop to
// every registered client.
func (s *Server) BroadcastRatingUpdate(workshopID int64, rating float64) {
	conn := s.currentConn()
	if conn == nil {
		s.logger.Printf("UDP notify server not running")
		return
	}
	payload, err := json.Marshal(RatingUpdateMessage{
		Type:       RatingUpdateMessageType,
		WorkshopID: workshopID,
		Rating:     rating,
	})
	if err != nil {
		s.logger.Printf("failed to marshal broadcast: %v", err)
		return
	}

	clients := s.registry.Snapshot()
	for _, client := range clients {
		s.sendWithRetry(conn, client, payload)
	}
}

func (s *Server) sendWithRetry(conn *net.UDPConn, client Client, payload []byte) {
	if err := sendOnce(conn, client, payload); err == nil {
		return
	}
	if err := sendOnce(conn, client, payload); err != nil {
		s.logger.Printf("failed to notify user %d at %s: %v", client.UserID, client.Addr, err)
		s.registry.Remove(client.UserID)
	}
}

func sendOnce(conn *net.UDPConn, client Client, payload []byte) error {
	if client.Addr == nil {
		return errors.New("missing client address")
	}
	_, err := conn.WriteToUDP(payload, client.Addr)
	return err
}

func parseRegisterMessage(data []byte) (RegisterMessage, error) {
	var msg RegisterMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return msg, err
	}
	if msg.UserID <= 0 || msg.Type == "" {
		return msg, errors.New("missing required fields")
	}
	return msg, nil
}
