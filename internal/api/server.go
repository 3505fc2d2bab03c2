// Package api exposes the simulation read-only over HTTP for external renderers.
// GET endpoints are public. POST endpoints require a bearer token.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/talgya/schelling/internal/engine"
	"github.com/talgya/schelling/internal/world"
)

const maxStreamConns = 4

// Server serves the simulation state over HTTP.
type Server struct {
	Sim      *engine.Simulation
	Eng      *engine.Engine
	Port     int
	AdminKey string // Bearer token for POST endpoints. Empty = POST disabled.

	// GridLimiter bounds full-grid requests per client. Nil uses 120 per minute.
	GridLimiter *RateLimiter

	streamConns int32
	upgrader    websocket.Upgrader
	httpServer  *http.Server
}

// Handler builds the API route table.
func (s *Server) Handler() http.Handler {
	limiter := s.GridLimiter
	if limiter == nil {
		limiter = NewRateLimiter(120, time.Minute)
	}

	// Renderers are served from anywhere; the stream is read-only.
	s.upgrader.CheckOrigin = func(r *http.Request) bool { return true }

	mux := http.NewServeMux()

	// Public endpoints (GET, read-only).
	mux.HandleFunc("/api/v1/status", s.handleStatus)
	mux.HandleFunc("/api/v1/stats", s.handleStats)
	mux.HandleFunc("/api/v1/grid", RateLimitMiddleware(limiter, s.handleGrid))
	mux.HandleFunc("/api/v1/stream", s.handleStream)

	// Admin endpoints (POST, require bearer token).
	mux.HandleFunc("/api/v1/speed", s.adminOnly(s.handleSpeed))

	return mux
}

// Start begins serving the HTTP API in a goroutine.
func (s *Server) Start() {
	addr := fmt.Sprintf(":%d", s.Port)
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	slog.Info("HTTP API starting", "addr", addr, "admin_auth", s.AdminKey != "")

	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server error", "error", err)
		}
	}()
}

// Shutdown stops the HTTP server started by Start.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

// checkBearerToken returns true if the request has a valid admin bearer token.
func (s *Server) checkBearerToken(r *http.Request) bool {
	auth := r.Header.Get("Authorization")
	return strings.HasPrefix(auth, "Bearer ") && strings.TrimPrefix(auth, "Bearer ") == s.AdminKey
}

// adminOnly wraps a handler to require bearer token auth on POST requests.
// GET requests pass through.
func (s *Server) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			if s.AdminKey == "" {
				http.Error(w, "admin endpoints disabled (no admin key set)", http.StatusForbidden)
				return
			}
			if !s.checkBearerToken(r) {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
		}
		next(w, r)
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	stats := s.Sim.Stats()
	status := map[string]any{
		"name":            "schelling",
		"run_id":          s.Sim.RunID.String(),
		"tick":            stats.Tick,
		"size":            s.Sim.Size(),
		"threshold":       s.Sim.Threshold,
		"counts":          stats.Counts,
		"unsatisfied":     stats.Unsatisfied,
		"mean_similarity": stats.MeanSimilarity,
		"converged":       stats.Converged,
	}
	if s.Eng != nil {
		status["speed"] = s.Eng.Speed()
		status["running"] = s.Eng.Running()
	}
	writeJSON(w, status)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Sim.Stats())
}

// Frame is a full grid picture: one string per row of A, B and '.'.
type Frame struct {
	RunID  string             `json:"run_id"`
	Tick   uint64             `json:"tick"`
	Size   int                `json:"size"`
	Rows   []string           `json:"rows"`
	Result *engine.StepResult `json:"result,omitempty"`
}

func (s *Server) frame(g *world.Grid, tick uint64, res *engine.StepResult) Frame {
	return Frame{
		RunID:  s.Sim.RunID.String(),
		Tick:   tick,
		Size:   g.Size(),
		Rows:   g.Rows(),
		Result: res,
	}
}

// handleGrid returns the current grid picture.
func (s *Server) handleGrid(w http.ResponseWriter, r *http.Request) {
	g, tick := s.Sim.SnapshotTick()
	writeJSON(w, s.frame(g, tick, nil))
}

func (s *Server) handleSpeed(w http.ResponseWriter, r *http.Request) {
	if s.Eng == nil {
		http.Error(w, "engine not running", http.StatusServiceUnavailable)
		return
	}
	if r.Method == http.MethodPost {
		var req struct {
			Speed float64 `json:"speed"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if req.Speed < 0 || req.Speed > 1000 {
			http.Error(w, "speed must be 0-1000", http.StatusBadRequest)
			return
		}
		s.Eng.SetSpeed(req.Speed)
		slog.Info("speed changed", "speed", req.Speed)
	}

	writeJSON(w, map[string]float64{"speed": s.Eng.Speed()})
}

// handleStream upgrades to a websocket and pushes a frame after every tick.
// The first message is the current grid.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	current := atomic.AddInt32(&s.streamConns, 1)
	defer atomic.AddInt32(&s.streamConns, -1)
	if current > maxStreamConns {
		http.Error(w, "too many stream connections", http.StatusServiceUnavailable)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("stream upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	// Subscribe before the first frame so no tick is missed in between.
	subID, ch := s.Sim.Subscribe()
	defer s.Sim.Unsubscribe(subID)

	g, tick := s.Sim.SnapshotTick()
	if err := conn.WriteJSON(s.frame(g, tick, nil)); err != nil {
		return
	}
	slog.Info("stream client connected", "sub_id", subID, "remote", r.RemoteAddr)

	// Reader goroutine: detects client close; incoming messages are ignored.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	heartbeat := time.NewTicker(15 * time.Second)
	defer heartbeat.Stop()

	for {
		select {
		case res, ok := <-ch:
			if !ok {
				return
			}
			// The grid may already be a tick or two ahead of res when the client lags.
			g, tick := s.Sim.SnapshotTick()
			if err := conn.WriteJSON(s.frame(g, tick, &res)); err != nil {
				slog.Debug("stream write failed", "sub_id", subID, "error", err)
				return
			}
		case <-heartbeat.C:
			deadline := time.Now().Add(5 * time.Second)
			if err := conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				return
			}
		case <-closed:
			slog.Info("stream client disconnected", "sub_id", subID)
			return
		case <-r.Context().Done():
			return
		}
	}
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		slog.Debug("response encode failed", "error", err)
	}
}
