package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/openboard/sketchd/protocol"
	"github.com/openboard/sketchd/room"
	ws "github.com/openboard/sketchd/transport/websocket"
)

// Server is the REST and websocket-mount layer.
type Server struct {
	registry *room.Registry
	socket   *ws.Server
	router   *mux.Router
	started  time.Time
}

// NewServer creates an API server over the room registry and the
// websocket connection handler. staticDir is served as a fallback for
// non-API paths; pass "" to disable static serving.
func NewServer(registry *room.Registry, socket *ws.Server, staticDir string) *Server {
	s := &Server{
		registry: registry,
		socket:   socket,
		router:   mux.NewRouter(),
		started:  time.Now(),
	}
	s.setupRoutes(staticDir)
	return s
}

func (s *Server) setupRoutes(staticDir string) {
	api := s.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/rooms", s.handleListRooms).Methods("GET")
	api.HandleFunc("/rooms/{code}", s.handleGetRoom).Methods("GET")
	api.HandleFunc("/stats", s.handleStats).Methods("GET")

	s.router.HandleFunc("/healthz", s.handleHealth).Methods("GET")
	s.router.HandleFunc("/socket", s.socket.HandleSocket)

	if staticDir != "" {
		s.router.PathPrefix("/").Handler(http.FileServer(http.Dir(staticDir)))
	}
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// RoomSummary is the list-view shape of one active room.
type RoomSummary struct {
	Code    protocol.RoomCode `json:"code"`
	Name    string            `json:"name"`
	Members int               `json:"members"`
}

// RoomDetail adds the member names, in join order.
type RoomDetail struct {
	RoomSummary
	Peers []MemberInfo `json:"peers"`
}

// MemberInfo is one member as seen from the inspection API.
type MemberInfo struct {
	ID   protocol.SocketID `json:"id"`
	Name string            `json:"name"`
}

// Stats reports process-level counters.
type Stats struct {
	ActiveRooms       int   `json:"active_rooms"`
	ActiveConnections int64 `json:"active_connections"`
	UptimeSeconds     int64 `json:"uptime_seconds"`
}

func (s *Server) handleListRooms(w http.ResponseWriter, r *http.Request) {
	rooms := s.registry.Rooms()
	out := make([]RoomSummary, 0, len(rooms))
	for _, rm := range rooms {
		out = append(out, RoomSummary{Code: rm.Code(), Name: rm.Name(), Members: rm.MemberCount()})
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetRoom(w http.ResponseWriter, r *http.Request) {
	code, err := strconv.Atoi(mux.Vars(r)["code"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid room code")
		return
	}
	rm, ok := s.registry.Get(protocol.RoomCode(code))
	if !ok {
		respondError(w, http.StatusNotFound, "room not found")
		return
	}

	detail := RoomDetail{
		RoomSummary: RoomSummary{Code: rm.Code(), Name: rm.Name(), Members: rm.MemberCount()},
		Peers:       make([]MemberInfo, 0),
	}
	for _, m := range rm.Members() {
		detail.Peers = append(detail.Peers, MemberInfo{ID: m.ID(), Name: m.NameFor(rm.Code())})
	}
	respondJSON(w, http.StatusOK, detail)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, Stats{
		ActiveRooms:       s.registry.Count(),
		ActiveConnections: s.socket.ActiveConnections(),
		UptimeSeconds:     int64(time.Since(s.started).Seconds()),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Response helpers
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
