// Package dashboard serves a live view of the shop over HTTP. Edits
// made in the CLI are pushed to connected WebSocket clients as they
// happen; plain JSON endpoints expose the collections for polling
// clients.
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

	"tilemaster/internal/state"
)

// MessageType defines the type of a dashboard push message.
type MessageType string

const (
	// MessageTypeStockUpdate indicates a stock item was created,
	// updated, or deleted.
	MessageTypeStockUpdate MessageType = "stock_update"

	// MessageTypeCustomerUpdate indicates a customer record changed.
	MessageTypeCustomerUpdate MessageType = "customer_update"

	// MessageTypeStaffUpdate indicates a roster entry changed.
	MessageTypeStaffUpdate MessageType = "staff_update"

	// MessageTypeStats carries refreshed inventory statistics. Sent
	// after every mutation and once on connect.
	MessageTypeStats MessageType = "stats"

	// MessageTypeReset indicates a factory reset emptied the shop.
	MessageTypeReset MessageType = "reset"
)

// Message is one dashboard broadcast.
type Message struct {
	Type      MessageType     `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// UpdateData describes one record mutation.
type UpdateData struct {
	ID     string `json:"id"`
	Action string `json:"action"` // created, updated, deleted
	Name   string `json:"name,omitempty"`
}

// StatsData mirrors state.Stats for the wire.
type StatsData struct {
	ItemCount     int     `json:"item_count"`
	UnitCount     int     `json:"unit_count"`
	TotalValue    float64 `json:"total_value"`
	TopCategory   string  `json:"top_category,omitempty"`
	LowStockCount int     `json:"low_stock_count"`
	CustomerCount int     `json:"customer_count"`
	StaffCount    int     `json:"staff_count"`
	TotalRevenue  float64 `json:"total_revenue"`
}

// Server owns the HTTP listener, the WebSocket client set, and the
// broadcast fan-out.
type Server struct {
	addr     string
	app      *state.App
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

// Config holds server configuration.
type Config struct {
	// Port to listen on. Port 0 picks a free one (used by tests).
	Port int

	// Logger for server activity (default: stderr logger).
	Logger *log.Logger
}

// NewServer creates a dashboard server over the given app state.
func NewServer(app *state.App, config *Config) *Server {
	if config == nil {
		config = &Config{Port: 8347}
	}
	if config.Logger == nil {
		config.Logger = log.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Server{
		addr:      fmt.Sprintf(":%d", config.Port),
		app:       app,
		clients:   make(map[*websocket.Conn]bool),
		broadcast: make(chan Message, 100),
		ctx:       ctx,
		cancel:    cancel,
		logger:    config.Logger,
	}
}

// Start begins serving. It returns once the listener is bound; use
// Addr to discover the bound address when Port was 0. Start also
// registers the server as the app's change observer.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}
	s.listener = ln

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/api/stock", s.handleStock)
	mux.HandleFunc("/api/customers", s.handleCustomers)
	mux.HandleFunc("/api/staff", s.handleStaff)
	mux.HandleFunc("/api/stats", s.handleStats)
	mux.HandleFunc("/", s.handleRoot)

	s.server = &http.Server{
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	s.app.SetChangeFunc(s.onChange)

	s.wg.Add(1)
	go s.broadcastLoop()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.logger.Printf("Dashboard listening on %s", ln.Addr())
		if err := s.server.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.logger.Printf("Server error: %v", err)
		}
	}()

	return nil
}

// Stop gracefully shuts down the server.
func (s *Server) Stop() error {
	s.app.SetChangeFunc(nil)
	s.cancel()

	s.clientsMu.Lock()
	for conn := range s.clients {
		_ = conn.Close(websocket.StatusGoingAway, "Server shutting down")
		delete(s.clients, conn)
	}
	s.clientsMu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	s.wg.Wait()
	return nil
}

// Broadcast queues a message for every connected client. Non-blocking;
// under backpressure the message is dropped with a log line.
func (s *Server) Broadcast(msg Message) {
	select {
	case s.broadcast <- msg:
	case <-s.ctx.Done():
		return
	default:
		s.logger.Println("Warning: broadcast channel full, dropping message")
	}
}

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
			clients := make([]*websocket.Conn, 0, len(s.clients))
			for conn := range s.clients {
				clients = append(clients, conn)
			}
			s.clientsMu.RUnlock()

			// Writes happen outside the lock so a slow client cannot
			// stall new connections.
			for _, conn := range clients {
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
	clientCount := len(s.clients)
	s.clientsMu.Unlock()

	s.logger.Printf("Client connected (total: %d)", clientCount)

	// New clients get the current numbers immediately.
	s.sendStats(conn)

	go s.readLoop(conn)
}

func (s *Server) sendStats(conn *websocket.Conn) {
	payload, err := json.Marshal(statsData(s.app.Stats()))
	if err != nil {
		return
	}
	data, err := json.Marshal(Message{
		Type:      MessageTypeStats,
		Timestamp: time.Now(),
		Data:      payload,
	})
	if err != nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	_ = conn.Write(ctx, websocket.MessageText, data)
	cancel()
}

func (s *Server) readLoop(conn *websocket.Conn) {
	defer s.removeClient(conn)

	for {
		// Client messages are ignored; the read keeps the connection
		// alive and detects disconnects.
		_, _, err := conn.Read(s.ctx)
		if err != nil {
			return
		}
	}
}

func (s *Server) removeClient(conn *websocket.Conn) {
	s.clientsMu.Lock()
	if _, exists := s.clients[conn]; exists {
		delete(s.clients, conn)
		clientCount := len(s.clients)
		s.clientsMu.Unlock()

		_ = conn.Close(websocket.StatusNormalClosure, "")
		s.logger.Printf("Client disconnected (total: %d)", clientCount)
	} else {
		s.clientsMu.Unlock()
	}
}

// Addr returns the bound listening address.
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
