package protocol

import "encoding/json"

// SocketID identifies a connection for the lifetime of the process.
// IDs are assigned monotonically at connection open and never reused.
// The type is 16 bit because the id travels as the first word of every
// forwarded binary frame.
type SocketID int16

// RoomCode is the human-shareable identifier of an active room,
// in the interval [1, 9999]. Codes are recycled once a room empties.
type RoomCode int16

// Control event names accepted from clients.
const (
	EvtConnectInit    = "connectInit"
	EvtJoinRoom       = "joinRoom"
	EvtNewRoom        = "newRoom"
	EvtLeave          = "leave"
	EvtChangeName     = "changeName"
	EvtChangeRoomName = "changeRoomName"
	EvtClearUser      = "clearUser"
)

// Control event names originated by the server.
const (
	EvtJoin       = "join"
	EvtDisconnect = "disconnect"
	EvtJoinData   = "joinData"
)

// Message is the JSON envelope shared by all control events.
// Room is omitted when zero (0 is never a valid room code);
// Usr is a pointer because socket id 0 is a valid sender.
type Message struct {
	Evt  string    `json:"evt"`
	Usr  *SocketID `json:"usr,omitempty"`
	Room RoomCode  `json:"room,omitempty"`
	Val  any       `json:"val,omitempty"`
}

// NewEvent builds a server-originated event attributed to a sender.
func NewEvent(evt string, usr SocketID, room RoomCode, val any) Message {
	return Message{Evt: evt, Usr: &usr, Room: room, Val: val}
}

// ConnectInfo is the object payload of connectInit, joinRoom and newRoom.
type ConnectInfo struct {
	RoomCode RoomCode `json:"roomCode,omitempty"`
	Name     string   `json:"name,omitempty"`
}

// JoinData is sent to a joining connection only, never broadcast.
type JoinData struct {
	RoomCode    RoomCode `json:"roomCode"`
	RoomName    string   `json:"roomName"`
	Username    string   `json:"username"`
	DefaultName string   `json:"defaultName"`
	Peers       []Peer   `json:"peers"`
}

// Peer is one pre-existing room member as seen by a joiner.
// It marshals as a two element array [id, name].
type Peer struct {
	ID   SocketID
	Name string
}

func (p Peer) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]any{p.ID, p.Name})
}

func (p *Peer) UnmarshalJSON(data []byte) error {
	var raw [2]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if err := json.Unmarshal(raw[0], &p.ID); err != nil {
		return err
	}
	return json.Unmarshal(raw[1], &p.Name)
}
