package protocol

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestMessageMarshalSocketIDZero(t *testing.T) {
	// Socket id 0 is a valid sender and must survive marshalling.
	msg := NewEvent(EvtJoin, 0, 4821, "User #0")
	data, err := json.Marshal(msg)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if !strings.Contains(string(data), `"usr":0`) {
		t.Errorf("Expected usr field for id 0, got %s", data)
	}
}

func TestMessageMarshalOmitsEmptyFields(t *testing.T) {
	msg := Message{Evt: EvtDisconnect}
	data, err := json.Marshal(msg)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	s := string(data)
	if strings.Contains(s, "usr") || strings.Contains(s, "room") || strings.Contains(s, "val") {
		t.Errorf("Expected absent fields to be omitted, got %s", s)
	}
}

func TestPeerMarshalsAsArray(t *testing.T) {
	data, err := json.Marshal(Peer{ID: 3, Name: "Alice"})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if string(data) != `[3,"Alice"]` {
		t.Errorf(`Expected [3,"Alice"], got %s`, data)
	}

	var p Peer
	if err := json.Unmarshal(data, &p); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if p.ID != 3 || p.Name != "Alice" {
		t.Errorf("Round trip gave (%d, %q)", p.ID, p.Name)
	}
}

func TestJoinDataShape(t *testing.T) {
	jd := JoinData{
		RoomCode:    4821,
		RoomName:    "User #0's room",
		Username:    "User #1",
		DefaultName: "User #1",
		Peers:       []Peer{{ID: 0, Name: "User #0"}},
	}
	data, err := json.Marshal(jd)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	expected := `{"roomCode":4821,"roomName":"User #0's room","username":"User #1","defaultName":"User #1","peers":[[0,"User #0"]]}`
	if string(data) != expected {
		t.Errorf("Expected %s, got %s", expected, data)
	}
}
