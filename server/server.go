// Package server exposes the orchestrator over HTTP and streams status events
// to dashboards over a WebSocket.
//
//	GET  /           health payload
//	POST /api/chat   {"message","agent_name"} -> {"response"}
//	GET  /api/agents registered agents with role and tools
//	GET  /ws/logs    event stream (log and agent_status frames)
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"nhooyr.io/websocket"

	"github.com/gashibujar1988-crypto/Robotrna/agent"
	"github.com/gashibujar1988-crypto/Robotrna/broadcast"
	"github.com/gashibujar1988-crypto/Robotrna/logging"
	"github.com/gashibujar1988-crypto/Robotrna/orchestrator"
)

const maxBodyBytes = 1 << 20

// Processor handles chat requests.
type Processor interface {
	Process(ctx context.Context, req orchestrator.Request) orchestrator.Response
}

// Observers registers event stream connections.
type Observers interface {
	Attach(c broadcast.Conn)
	Detach(c broadcast.Conn)
}

// Directory lists the registered agents.
type Directory interface {
	Profiles() []agent.Profile
}

// Options configures a Server.
type Options struct {
	Addr              string
	AllowedOrigins    []string
	ReadHeaderTimeout time.Duration
	ShutdownTimeout   time.Duration
	// Logger (defaults to NoOpLogger)
	Logger logging.Logger
}

// Server is the HTTP and WebSocket front end.
type Server struct {
	processor Processor
	observers Observers
	agents    Directory
	opts      Options
	cors      corsPolicy

	mu        sync.Mutex
	httpSrv   *http.Server
	boundAddr string
	sockets   map[*websocket.Conn]struct{}
}

// New creates a Server.
func New(processor Processor, observers Observers, agents Directory, optFns ...func(o *Options)) *Server {
	opts := Options{
		Addr:              ":8000",
		AllowedOrigins:    []string{"*"},
		ReadHeaderTimeout: 10 * time.Second,
		ShutdownTimeout:   5 * time.Second,
		Logger:            logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	return &Server{
		processor: processor,
		observers: observers,
		agents:    agents,
		opts:      opts,
		cors:      newCORSPolicy(opts.AllowedOrigins),
		sockets:   make(map[*websocket.Conn]struct{}),
	}
}

// Handler returns the routed handler wrapped in the CORS middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleRoot)
	mux.HandleFunc("POST /api/chat", s.handleChat)
	mux.HandleFunc("GET /api/agents", s.handleAgents)
	mux.HandleFunc("GET /ws/logs", s.handleLogs)
	return s.cors.middleware(mux)
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.opts.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.opts.Addr, err)
	}

	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: s.opts.ReadHeaderTimeout,
		BaseContext: func(net.Listener) context.Context {
			return context.WithoutCancel(ctx)
		},
	}

	s.mu.Lock()
	s.httpSrv = srv
	s.boundAddr = ln.Addr().String()
	s.mu.Unlock()

	s.opts.Logger.Info("server.started", "addr", ln.Addr().String())

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
		defer cancel()
		if err := s.Stop(shutdownCtx); err != nil {
			s.opts.Logger.Warn("server.shutdown_failed", "error", err)
		}
	}()

	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}

// Stop closes every event stream and shuts the HTTP server down.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	srv := s.httpSrv
	sockets := make([]*websocket.Conn, 0, len(s.sockets))
	for ws := range s.sockets {
		sockets = append(sockets, ws)
	}
	s.mu.Unlock()

	for _, ws := range sockets {
		ws.Close(websocket.StatusGoingAway, "server shutting down")
	}

	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}

// BoundAddr returns the listening address. Only valid after Start.
func (s *Server) BoundAddr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.boundAddr
}

type statusResponse struct {
	Status string `json:"status"`
	Type   string `json:"type"`
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, statusResponse{Status: "Mother AI System Online", Type: "Go Backend"})
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var req orchestrator.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		msg := "invalid JSON: " + err.Error()
		if errors.As(err, &tooLarge) {
			msg = "request body too large (max 1MB)"
		}
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: msg})
		return
	}

	if req.AgentName == "" {
		req.AgentName = agent.OrchestratorName
	}

	writeJSON(w, http.StatusOK, s.processor.Process(r.Context(), req))
}

type agentInfo struct {
	Name  string   `json:"name"`
	Role  string   `json:"role"`
	Tools []string `json:"tools"`
}

type agentsResponse struct {
	Agents []agentInfo `json:"agents"`
}

func (s *Server) handleAgents(w http.ResponseWriter, _ *http.Request) {
	profiles := s.agents.Profiles()
	out := agentsResponse{Agents: make([]agentInfo, 0, len(profiles))}
	for _, p := range profiles {
		out.Agents = append(out.Agents, agentInfo{Name: p.Name, Role: p.Role, Tools: p.AllowedTools})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	ws, err := websocket.Accept(w, r, s.cors.acceptOptions())
	if err != nil {
		s.opts.Logger.Warn("server.websocket_accept_failed", "error", err)
		return
	}

	conn := broadcast.NewWebSocketConn(ws)

	s.mu.Lock()
	s.sockets[ws] = struct{}{}
	s.mu.Unlock()

	s.observers.Attach(conn)
	s.opts.Logger.Info("server.observer_connected", "conn_id", conn.ID())

	// Inbound frames are discarded; Read only detects disconnects.
	for {
		if _, _, err := ws.Read(r.Context()); err != nil {
			break
		}
	}

	s.observers.Detach(conn)

	s.mu.Lock()
	delete(s.sockets, ws)
	s.mu.Unlock()

	ws.Close(websocket.StatusNormalClosure, "")
	s.opts.Logger.Info("server.observer_disconnected", "conn_id", conn.ID())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
