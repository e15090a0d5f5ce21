package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"sync"

	"seedwatch/pkg/metrics"
	"seedwatch/pkg/strength"
	"seedwatch/pkg/watcher"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type Server struct {
	watcher *watcher.Watcher
	metrics *metrics.Manager
	clients map[*websocket.Conn]bool
	mu      sync.Mutex
	mux     *http.ServeMux
}

// NewServer builds the API server. A nil metrics manager disables /metrics.
func NewServer(w *watcher.Watcher, m *metrics.Manager) *Server {
	s := &Server{
		watcher: w,
		metrics: m,
		clients: make(map[*websocket.Conn]bool),
		mux:     http.NewServeMux(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /api/status", s.handleStatus)
	s.mux.HandleFunc("GET /api/strength", s.handleStrength)
	s.mux.HandleFunc("GET /api/history", s.handleHistory)
	s.mux.HandleFunc("/ws", s.handleWS)
	if s.metrics != nil {
		s.mux.Handle("GET /metrics", s.metrics.Handler())
	}
}

func (s *Server) Start(port int) error {
	go s.listenToWatcher()

	fmt.Printf("API Server listening on :%d\n", port)
	return http.ListenAndServe(fmt.Sprintf(":%d", port), s.mux)
}

func (s *Server) snapshot() map[string]interface{} {
	return map[string]interface{}{
		"node":    s.watcher.Node().Name,
		"symbol":  s.watcher.Node().Symbol,
		"sync":    s.watcher.GetSyncStatus(),
		"wallets": s.watcher.GetWallets(),
	}
}

// writeJSON answers 500 when v cannot be encoded.
func writeJSON(w http.ResponseWriter, v interface{}) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		http.Error(w, "encode response: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.snapshot())
}

// handleStrength evaluates arbitrary weights, e.g. /api/strength?own=10&network=999990.
func (s *Server) handleStrength(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	own, err := parseWeight(q.Get("own"))
	if err != nil {
		http.Error(w, "invalid own weight: "+err.Error(), http.StatusBadRequest)
		return
	}
	network, err := parseWeight(q.Get("network"))
	if err != nil {
		http.Error(w, "invalid network weight: "+err.Error(), http.StatusBadRequest)
		return
	}
	if math.IsInf(own+network, 0) {
		http.Error(w, "weights too large", http.StatusBadRequest)
		return
	}
	unit := q.Get("unit")
	if unit == "" {
		unit = s.watcher.Node().Symbol
	}
	if unit == "" {
		unit = strength.DefaultUnit
	}

	writeJSON(w, strength.DefaultLevels.PresentWithUnit(own, network, unit))
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	address := r.URL.Query().Get("address")
	if address == "" {
		http.Error(w, "missing address", http.StatusBadRequest)
		return
	}
	history := s.watcher.GetHistory(address)
	if history == nil {
		http.Error(w, "unknown wallet", http.StatusNotFound)
		return
	}
	writeJSON(w, map[string]interface{}{
		"address": address,
		"samples": history,
	})
}

func parseWeight(v string) (float64, error) {
	if v == "" {
		return 0, fmt.Errorf("missing value")
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0, fmt.Errorf("must be a finite, non-negative number")
	}
	return f, nil
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer func() { _ = conn.Close() }()

	// Send initial state before registering so broadcasts cannot interleave with it.
	initialData := map[string]interface{}{
		"type": "initial",
		"data": s.snapshot(),
	}
	if err := conn.WriteJSON(initialData); err != nil {
		return
	}

	s.mu.Lock()
	s.clients[conn] = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.clients, conn)
		s.mu.Unlock()
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

func (s *Server) listenToWatcher() {
	sub := s.watcher.Subscribe()
	defer s.watcher.Unsubscribe(sub)

	for event := range sub {
		s.broadcast(event)
	}
}

func (s *Server) broadcast(event watcher.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for client := range s.clients {
		if err := client.WriteJSON(event); err != nil {
			_ = client.Close()
			delete(s.clients, client)
		}
	}
}
