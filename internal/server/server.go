package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/gorilla/websocket"
	"github.com/lox/lastcard/internal/config"
	"github.com/lox/lastcard/internal/game"
)

// Server represents the WebSocket server
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

	tables []*Table
}

type serverOptions struct {
	clock   quartz.Clock
	monitor MatchMonitor
}

// Option configures a Server
type Option func(*serverOptions)

// WithClock drives every match clock from clock
func WithClock(clock quartz.Clock) Option {
	return func(o *serverOptions) {
		o.clock = clock
	}
}

// WithMonitor reports match progress to m
func WithMonitor(m MatchMonitor) Option {
	return func(o *serverOptions) {
		o.monitor = m
	}
}

// NewServer creates a WebSocket server with one table per configured table
func NewServer(cfg *config.Config, logger *log.Logger, opts ...Option) *Server {
	o := serverOptions{monitor: NullMonitor{}}
	for _, opt := range opts {
		opt(&o)
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		addr: cfg.Addr(),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
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
	}

	engineOpts := []game.Option{
		game.WithTiming(cfg.Timing()),
		game.WithHandSize(cfg.Rules.HandSize),
	}
	if o.clock != nil {
		engineOpts = append(engineOpts, game.WithClock(o.clock))
	}
	for _, tc := range cfg.Tables {
		s.tables = append(s.tables, NewTable(tc.Name, tc.Seats, logger, o.monitor, engineOpts...))
	}

	go s.run()
	return s
}

// Handler returns the HTTP routes
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/tables", s.handleTables)
	return mux
}

// Start serves until Stop is called
func (s *Server) Start() error {
	s.mu.Lock()
	s.httpServer = &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	srv := s.httpServer
	s.mu.Unlock()
	if s.ctx.Err() != nil {
		return nil
	}

	s.logger.Info("Starting WebSocket server", "addr", s.addr, "tables", len(s.tables))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop closes every connection and cancels the match clocks
func (s *Server) Stop(ctx context.Context) error {
	s.cancel()

	s.mu.Lock()
	srv := s.httpServer
	conns := make([]*Connection, 0, len(s.connections))
	for conn := range s.connections {
		conns = append(conns, conn)
	}
	s.mu.Unlock()

	for _, conn := range conns {
		_ = conn.Close()
	}
	for _, t := range s.tables {
		t.Stop()
	}

	if srv != nil {
		return srv.Shutdown(ctx)
	}
	return nil
}

// Table looks a table up by name
func (s *Server) Table(name string) *Table {
	for _, t := range s.tables {
		if t.Name() == name {
			return t
		}
	}
	return nil
}

// Tables lists every table
func (s *Server) Tables() []TableInfo {
	infos := make([]TableInfo, 0, len(s.tables))
	for _, t := range s.tables {
		infos = append(infos, t.Info())
	}
	return infos
}

// run handles connection lifecycle
func (s *Server) run() {
	for {
		select {
		case conn := <-s.register:
			s.mu.Lock()
			s.connections[conn] = true
			total := len(s.connections)
			s.mu.Unlock()
			s.logger.Info("Client connected", "total", total)

		case conn := <-s.unregister:
			s.mu.Lock()
			_, ok := s.connections[conn]
			delete(s.connections, conn)
			total := len(s.connections)
			s.mu.Unlock()
			if !ok {
				continue
			}

			if t := conn.Table(); t != nil {
				s.logger.Info("Releasing seat", "table", t.Name(), "handle", conn.Handle())
				t.Leave(conn)
			}
			_ = conn.Close()
			s.logger.Info("Client disconnected", "total", total)

		case <-s.ctx.Done():
			return
		}
	}
}

// handleWebSocket handles WebSocket upgrade requests
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("Failed to upgrade connection", "error", err)
		return
	}

	client := NewConnection(conn, s.logger, s)
	select {
	case s.register <- client:
	case <-s.ctx.Done():
		_ = client.Close()
		return
	}
	client.Start()

	go func() {
		<-client.ctx.Done()
		select {
		case s.unregister <- client:
		case <-s.ctx.Done():
		}
	}()
}

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, "OK")
}

func (s *Server) handleTables(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.Tables()); err != nil {
		s.logger.Error("Failed to encode tables", "error", err)
	}
}
