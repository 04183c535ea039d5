package observer

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

const maxLiveConns = 8

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Server exposes a Hub over a websocket endpoint and a JSON status
// endpoint, for a dashboard or terminal client to watch phase transitions
// as they happen. The stream endpoint requires a bearer token; the status
// endpoint is open. There is no GET/POST split here,
// unlike the full admin surface this is adapted from, since every endpoint
// is read-only observation.
type Server struct {
	Hub      *Hub
	Port     int
	RelayKey string // empty disables the endpoint entirely

	limiter *RateLimiter
}

// NewServer creates a streaming server bound to hub.
func NewServer(hub *Hub, port int, relayKey string) *Server {
	return &Server{
		Hub:      hub,
		Port:     port,
		RelayKey: relayKey,
		limiter:  NewRateLimiter(20, time.Minute),
	}
}

// Start begins serving in a background goroutine.
func (s *Server) Start() {
	mux := http.NewServeMux()
	mux.HandleFunc("/status", s.handleStatus)
	mux.HandleFunc("/stream", rateLimited(s.limiter, s.handleStream))

	addr := fmt.Sprintf(":%d", s.Port)
	slog.Info("observer stream starting", "addr", addr, "auth", s.RelayKey != "")

	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil {
			slog.Error("observer server error", "error", err)
		}
	}()
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"subscribers": s.Hub.Len(),
		"auth":        s.RelayKey != "",
	})
}

func (s *Server) checkBearerToken(r *http.Request) bool {
	auth := r.Header.Get("Authorization")
	return strings.HasPrefix(auth, "Bearer ") && strings.TrimPrefix(auth, "Bearer ") == s.RelayKey
}

func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	if s.RelayKey == "" {
		http.Error(w, "streaming disabled (no relay key configured)", http.StatusForbidden)
		return
	}
	if !s.checkBearerToken(r) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	if s.Hub.Len() >= maxLiveConns {
		http.Error(w, "too many live connections", http.StatusServiceUnavailable)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	id, ch := s.Hub.Subscribe()
	defer s.Hub.Unsubscribe(id)

	for _, ev := range s.Hub.Backlog() {
		if err := conn.WriteJSON(ev); err != nil {
			return
		}
	}

	slog.Info("observer client connected", "sub_id", id)

	heartbeat := time.NewTicker(15 * time.Second)
	defer heartbeat.Stop()

	for {
		select {
		case ev, ok := <-ch:
			if !ok {
				return
			}
			if err := conn.WriteJSON(ev); err != nil {
				return
			}
		case <-heartbeat.C:
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
