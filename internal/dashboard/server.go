// Package dashboard provides a real-time WebSocket feed of sync activity.
//
// The dashboard broadcasts queue updates, flush results, and conflicts to
// connected WebSocket clients so a UI layer can surface sync state without
// polling the engine.
package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"

	"github.com/nova-editor/novasync/internal/queue"
)

// MessageType defines the type of dashboard message.
type MessageType string

const (
	// MessageTypeQueueUpdate indicates an item was enqueued or resolved.
	MessageTypeQueueUpdate MessageType = "queue_update"

	// MessageTypeFlushComplete indicates a flush cycle finished.
	MessageTypeFlushComplete MessageType = "flush_complete"

	// MessageTypeConflict indicates a flush surfaced a conflicted item.
	MessageTypeConflict MessageType = "conflict"

	// MessageTypeStats indicates updated queue statistics.
	MessageTypeStats MessageType = "stats"
)

// Message represents a dashboard broadcast message.
type Message struct {
	Type      MessageType     `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// QueueUpdateData describes an enqueued or resolved item.
type QueueUpdateData struct {
	ItemID string `json:"item_id"`
	Action string `json:"action"`
	Path   string `json:"path"`
}

// FlushCompleteData summarizes one flush cycle.
type FlushCompleteData struct {
	Processed int      `json:"processed"`
	Failed    int      `json:"failed"`
	Conflicts []string `json:"conflicts"`
}

// ConflictData identifies a queue item the remote reported conflicted.
type ConflictData struct {
	ItemID string `json:"item_id"`
}

// NewQueueUpdateMessage builds a queue_update message for an enqueued or
// resolved item. Item content is not included in the broadcast.
func NewQueueUpdateMessage(item queue.Item) Message {
	data, _ := json.Marshal(QueueUpdateData{
		ItemID: item.ID,
		Action: item.Action.String(),
		Path:   item.Path,
	})
	return Message{Type: MessageTypeQueueUpdate, Data: data}
}

// NewFlushMessage builds a flush_complete message from a flush result.
func NewFlushMessage(result *queue.FlushResult) Message {
	data, _ := json.Marshal(FlushCompleteData{
		Processed: result.Processed,
		Failed:    result.Failed,
		Conflicts: result.Conflicts,
	})
	return Message{Type: MessageTypeFlushComplete, Data: data}
}

// NewConflictMessage builds a conflict message for one conflicted item.
func NewConflictMessage(itemID string) Message {
	data, _ := json.Marshal(ConflictData{ItemID: itemID})
	return Message{Type: MessageTypeConflict, Data: data}
}

// NewStatsMessage builds a stats message from a queue snapshot.
func NewStatsMessage(stats queue.Stats) Message {
	data, _ := json.Marshal(stats)
	return Message{Type: MessageTypeStats, Data: data}
}

// Server manages WebSocket connections and broadcasts sync messages.
type Server struct {
	addr     string
	listener net.Listener
	server   *http.Server

	clients   map[*websocket.Conn]bool
	clientsMu sync.RWMutex

	broadcast chan Message

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	logger *log.Logger
}

// NewServer creates a dashboard server listening on addr (host:port).
// If logger is nil, the default logger is used.
func NewServer(addr string, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Server{
		addr:      addr,
		clients:   make(map[*websocket.Conn]bool),
		broadcast: make(chan Message, 100),
		ctx:       ctx,
		cancel:    cancel,
		logger:    logger,
	}
}

// Start begins the HTTP server and WebSocket handler.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}
	s.listener = ln

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/health", s.handleHealth)

	s.server = &http.Server{
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	s.wg.Add(1)
	go s.broadcastLoop()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.logger.Printf("Dashboard listening on %s", ln.Addr())
		if err := s.server.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.logger.Printf("Dashboard server error: %v", err)
		}
	}()

	return nil
}

// Stop gracefully shuts down the server.
func (s *Server) Stop() error {
	s.logger.Println("Stopping dashboard")

	s.cancel()

	s.clientsMu.Lock()
	for conn := range s.clients {
		_ = conn.Close(websocket.StatusGoingAway, "server shutting down")
		delete(s.clients, conn)
	}
	s.clientsMu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("dashboard shutdown error: %w", err)
	}

	s.wg.Wait()
	return nil
}

// Broadcast sends a message to all connected clients.
// Messages are dropped, with a warning, if the broadcast buffer is full.
func (s *Server) Broadcast(msg Message) {
	select {
	case s.broadcast <- msg:
	case <-s.ctx.Done():
	default:
		s.logger.Println("Warning: broadcast channel full, dropping message")
	}
}

// broadcastLoop fans messages out to all connected clients.
func (s *Server) broadcastLoop() {
	defer s.wg.Done()

	for {
		select {
		case <-s.ctx.Done():
			return

		case msg := <-s.broadcast:
			if msg.Timestamp.IsZero() {
				msg.Timestamp = time.Now()
			}

			data, err := json.Marshal(msg)
			if err != nil {
				s.logger.Printf("Failed to marshal message: %v", err)
				continue
			}

			s.clientsMu.RLock()
			conns := make([]*websocket.Conn, 0, len(s.clients))
			for conn := range s.clients {
				conns = append(conns, conn)
			}
			s.clientsMu.RUnlock()

			for _, conn := range conns {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				err := conn.Write(ctx, websocket.MessageText, data)
				cancel()

				if err != nil {
					s.removeClient(conn)
				}
			}
		}
	}
}

// handleWebSocket upgrades HTTP connections to WebSocket.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		s.logger.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	s.clientsMu.Lock()
	s.clients[conn] = true
	count := len(s.clients)
	s.clientsMu.Unlock()

	s.logger.Printf("Dashboard client connected (total: %d)", count)

	go s.readLoop(conn)
}

// readLoop keeps the connection alive and detects client disconnects.
// Client messages are not processed.
func (s *Server) readLoop(conn *websocket.Conn) {
	defer s.removeClient(conn)

	for {
		if _, _, err := conn.Read(s.ctx); err != nil {
			return
		}
	}
}

// removeClient safely removes a client connection.
func (s *Server) removeClient(conn *websocket.Conn) {
	s.clientsMu.Lock()
	if _, exists := s.clients[conn]; exists {
		delete(s.clients, conn)
		count := len(s.clients)
		s.clientsMu.Unlock()

		_ = conn.Close(websocket.StatusNormalClosure, "")
		s.logger.Printf("Dashboard client disconnected (total: %d)", count)
		return
	}
	s.clientsMu.Unlock()
}

// handleHealth returns server health and the connected client count.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.clientsMu.RLock()
	count := len(s.clients)
	s.clientsMu.RUnlock()

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":  "ok",
		"clients": count,
	})
}

// Addr returns the server's listening address.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.addr
}

// ClientCount returns the current number of connected clients.
func (s *Server) ClientCount() int {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	return len(s.clients)
}
