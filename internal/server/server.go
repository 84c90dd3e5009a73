package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
)

// Server owns the WebSocket listener and the connection registry. It
// is an explicitly constructed service object: callers build it, start
// it, and stop it; nothing here is process-global.
type Server struct {
	addr        string
	upgrader    websocket.Upgrader
	connections map[*Connection]bool
	register    chan *Connection
	unregister  chan *Connection
	logger      *log.Logger
	mu          sync.RWMutex
	ctx         context.Context
	cancel      context.CancelFunc
	httpServer  *http.Server
	gameService *GameService
}

// NewServer creates a new WebSocket server around a game service
func NewServer(addr string, gameService *GameService, logger *log.Logger) *Server {
	ctx, cancel := context.WithCancel(context.Background())

	s := &Server{
		addr: addr,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				// Origin checking is the embedding deployment's call
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		connections: make(map[*Connection]bool),
		register:    make(chan *Connection),
		unregister:  make(chan *Connection),
		logger:      logger.WithPrefix("server"),
		ctx:         ctx,
		cancel:      cancel,
		gameService: gameService,
	}
	gameService.AttachServer(s)
	return s
}

// Start starts the WebSocket server and blocks until it stops
func (s *Server) Start() error {
	go s.run()

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/health", s.handleHealth)

	s.httpServer = &http.Server{Addr: s.addr, Handler: mux}

	s.logger.Info("starting WebSocket server", "addr", s.addr)
	if err := s.httpServer.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Stop stops the WebSocket server and closes all connections
func (s *Server) Stop() error {
	s.cancel()

	s.mu.Lock()
	for conn := range s.connections {
		_ = conn.Close()
	}
	s.mu.Unlock()

	if s.httpServer != nil {
		return s.httpServer.Shutdown(context.Background())
	}
	return nil
}

// run handles connection lifecycle
func (s *Server) run() {
	for {
		select {
		case conn := <-s.register:
			s.mu.Lock()
			s.connections[conn] = true
			count := len(s.connections)
			s.mu.Unlock()
			s.logger.Debug("connection registered", "total", count)

		case conn := <-s.unregister:
			s.mu.Lock()
			delete(s.connections, conn)
			count := len(s.connections)
			s.mu.Unlock()
			s.logger.Debug("connection unregistered", "total", count)

		case <-s.ctx.Done():
			return
		}
	}
}

// handleWebSocket upgrades HTTP requests to WebSocket connections
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("failed to upgrade connection", "error", err)
		return
	}

	c := NewConnection(conn, s.logger, s.gameService)
	s.register <- c
	c.Start()

	go func() {
		<-c.ctx.Done()
		select {
		case s.unregister <- c:
		case <-s.ctx.Done():
		}
	}()
}

// handleHealth is a simple liveness endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "ok")
}

// ConnectionsForGame returns the connections currently attached to a
// game, for per-viewer fan-out
func (s *Server) ConnectionsForGame(gameID string) []*Connection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Connection
	for conn := range s.connections {
		if conn.GameID() == gameID {
			out = append(out, conn)
		}
	}
	return out
}
