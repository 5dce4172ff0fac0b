package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/openboard/sketchd/dispatch"
	"github.com/openboard/sketchd/protocol"
	"github.com/openboard/sketchd/room"
	"github.com/openboard/sketchd/session"
	ws "github.com/openboard/sketchd/transport/websocket"
)

func newTestServer(t *testing.T) (*room.Registry, *httptest.Server) {
	t.Helper()
	registry := room.NewRegistry(time.Minute)
	socket := ws.NewServer(registry, dispatch.NewRouter(registry), ws.Options{})
	server := NewServer(registry, socket, "")
	ts := httptest.NewServer(server)
	t.Cleanup(ts.Close)
	return registry, ts
}

// nullSender is a session.Sender that swallows everything.
type nullSender struct{}

func (nullSender) SendJSON(v any) error         { return nil }
func (nullSender) SendBinary(data []byte) error { return nil }
func (nullSender) Ready() bool                  { return true }

func seedRoom(registry *room.Registry, memberNames ...string) *room.Room {
	var ids session.IDSource
	var r *room.Room
	for _, name := range memberNames {
		u := session.NewUser(ids.Next(), nullSender{}, session.NewRateLimiter(1, time.Second))
		u.Activate()
		if r == nil {
			r = registry.CreateRoom(u, name)
		}
		r.AddMember(u, name)
	}
	return r
}

func getJSON(t *testing.T, url string, out any) int {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s failed: %v", url, err)
	}
	defer resp.Body.Close()
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Expected JSON content type, got %q", ct)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("Undecodable response from %s: %v", url, err)
		}
	}
	return resp.StatusCode
}

func TestHealthEndpoint(t *testing.T) {
	_, ts := newTestServer(t)
	var body map[string]string
	if status := getJSON(t, ts.URL+"/healthz", &body); status != http.StatusOK {
		t.Fatalf("Expected 200, got %d", status)
	}
	if body["status"] != "ok" {
		t.Errorf("Expected status ok, got %q", body["status"])
	}
}

func TestListRooms(t *testing.T) {
	registry, ts := newTestServer(t)

	var rooms []RoomSummary
	if status := getJSON(t, ts.URL+"/api/rooms", &rooms); status != http.StatusOK {
		t.Fatalf("Expected 200, got %d", status)
	}
	if len(rooms) != 0 {
		t.Errorf("Expected an empty list, got %d rooms", len(rooms))
	}

	r := seedRoom(registry, "Alice", "Bob")
	if status := getJSON(t, ts.URL+"/api/rooms", &rooms); status != http.StatusOK {
		t.Fatalf("Expected 200, got %d", status)
	}
	if len(rooms) != 1 {
		t.Fatalf("Expected 1 room, got %d", len(rooms))
	}
	if rooms[0].Code != r.Code() || rooms[0].Name != "Alice's room" || rooms[0].Members != 2 {
		t.Errorf("Unexpected summary: %+v", rooms[0])
	}
}

func TestGetRoom(t *testing.T) {
	registry, ts := newTestServer(t)
	r := seedRoom(registry, "Alice", "Bob")

	var detail RoomDetail
	url := fmt.Sprintf("%s/api/rooms/%d", ts.URL, r.Code())
	if status := getJSON(t, url, &detail); status != http.StatusOK {
		t.Fatalf("Expected 200, got %d", status)
	}
	if detail.Code != r.Code() || detail.Members != 2 {
		t.Errorf("Unexpected detail: %+v", detail)
	}
	if len(detail.Peers) != 2 {
		t.Fatalf("Expected 2 peers, got %d", len(detail.Peers))
	}
	if detail.Peers[0].Name != "Alice" || detail.Peers[1].Name != "Bob" {
		t.Errorf("Expected members in join order, got %+v", detail.Peers)
	}
}

func TestGetRoomErrors(t *testing.T) {
	_, ts := newTestServer(t)

	var body map[string]string
	if status := getJSON(t, ts.URL+"/api/rooms/9999", &body); status != http.StatusNotFound {
		t.Errorf("Expected 404 for unknown room, got %d", status)
	}
	if body["error"] == "" {
		t.Error("Expected an error message")
	}

	if status := getJSON(t, ts.URL+"/api/rooms/abc", nil); status != http.StatusBadRequest {
		t.Errorf("Expected 400 for a non-numeric code, got %d", status)
	}
}

func TestStats(t *testing.T) {
	registry, ts := newTestServer(t)
	seedRoom(registry, "Alice")

	var stats Stats
	if status := getJSON(t, ts.URL+"/api/stats", &stats); status != http.StatusOK {
		t.Fatalf("Expected 200, got %d", status)
	}
	if stats.ActiveRooms != 1 {
		t.Errorf("Expected 1 active room, got %d", stats.ActiveRooms)
	}
	if stats.ActiveConnections != 0 {
		t.Errorf("Expected 0 connections, got %d", stats.ActiveConnections)
	}
}

func TestSocketMount(t *testing.T) {
	// The websocket endpoint is reachable through the API router.
	_, ts := newTestServer(t)
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/socket"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	defer conn.Close()

	init := protocol.Message{Evt: protocol.EvtConnectInit, Val: protocol.ConnectInfo{Name: "Alice"}}
	if err := conn.WriteJSON(init); err != nil {
		t.Fatalf("connectInit write failed: %v", err)
	}
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := conn.ReadMessage(); err != nil {
		t.Fatalf("Expected a joinData response, got %v", err)
	}
}
