package dispatch

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/openboard/sketchd/protocol"
	"github.com/openboard/sketchd/room"
	"github.com/openboard/sketchd/session"
	"github.com/openboard/sketchd/validate"
)

// op enumerates the handler operations of the event table.
type op int

const (
	opNone op = iota
	opConnectInit
	opJoinRoom
	opNewRoom
	opLeave
	opChangeName
	opChangeRoomName
)

// fieldType is the primitive JSON type required of an event field.
type fieldType int

const (
	typeNumber fieldType = iota
	typeString
	typeObject
)

type field struct {
	name string
	typ  fieldType
}

type eventSpec struct {
	fields []field
	op     op
	passOn bool
}

// eventTable is the declarative router table: one entry per accepted
// control event, listing required fields, handler and pass-on behavior.
var eventTable = map[string]eventSpec{
	protocol.EvtConnectInit:    {fields: []field{{"val", typeObject}}, op: opConnectInit},
	protocol.EvtJoinRoom:       {fields: []field{{"val", typeObject}}, op: opJoinRoom},
	protocol.EvtNewRoom:        {fields: []field{{"val", typeObject}}, op: opNewRoom},
	protocol.EvtLeave:          {fields: []field{{"room", typeNumber}}, op: opLeave, passOn: true},
	protocol.EvtChangeName:     {fields: []field{{"val", typeString}, {"room", typeNumber}}, op: opChangeName, passOn: true},
	protocol.EvtChangeRoomName: {fields: []field{{"val", typeString}, {"room", typeNumber}}, op: opChangeRoomName, passOn: true},
	protocol.EvtClearUser:      {fields: []field{{"room", typeNumber}}, passOn: true},
}

// Router validates and dispatches control events against the registry.
type Router struct {
	registry *room.Registry
}

// NewRouter creates a router over the given room registry.
func NewRouter(registry *room.Registry) *Router {
	return &Router{registry: registry}
}

// rawMessage is the half-parsed inbound envelope. Room and Val stay raw
// so their types can be checked against the event table.
type rawMessage struct {
	Evt  *string         `json:"evt"`
	Room json.RawMessage `json:"room"`
	Val  json.RawMessage `json:"val"`
}

// Dispatch validates one inbound control message and runs its handler.
// Any returned error is a per-message fault: the caller logs it and
// drops the message, the connection stays usable.
func (d *Router) Dispatch(u *session.User, payload []byte) error {
	var raw rawMessage
	if err := json.Unmarshal(payload, &raw); err != nil {
		return fmt.Errorf("%w: %v", protocol.ErrMalformedEvent, err)
	}
	if raw.Evt == nil {
		return fmt.Errorf("%w: no evt field", protocol.ErrMalformedEvent)
	}
	spec, known := eventTable[*raw.Evt]
	if !known {
		return fmt.Errorf("%w: %q from %s", protocol.ErrUnknownEvent, *raw.Evt, u)
	}

	var (
		roomCode protocol.RoomCode
		strVal   string
		hasRoom  bool
	)
	for _, f := range spec.fields {
		var fieldRaw json.RawMessage
		switch f.name {
		case "room":
			fieldRaw = raw.Room
		case "val":
			fieldRaw = raw.Val
		}
		if len(fieldRaw) == 0 {
			return fmt.Errorf("%w: %q requires %q", protocol.ErrMissingField, *raw.Evt, f.name)
		}
		switch f.typ {
		case typeNumber:
			var n int64
			if err := json.Unmarshal(fieldRaw, &n); err != nil {
				return fmt.Errorf("%w: %q field %q must be a number", protocol.ErrWrongFieldType, *raw.Evt, f.name)
			}
			roomCode = protocol.RoomCode(n)
			hasRoom = f.name == "room"
		case typeString:
			if err := json.Unmarshal(fieldRaw, &strVal); err != nil {
				return fmt.Errorf("%w: %q field %q must be a string", protocol.ErrWrongFieldType, *raw.Evt, f.name)
			}
		case typeObject:
			if !isJSONObject(fieldRaw) {
				return fmt.Errorf("%w: %q field %q must be an object", protocol.ErrWrongFieldType, *raw.Evt, f.name)
			}
		}
	}

	// The identity becomes active on its first valid control message.
	u.Activate()

	// Resolve the room up front so handlers never re-validate
	// membership themselves.
	var rm *room.Room
	if hasRoom {
		var err error
		rm, err = d.registry.GetWithMembership(u, roomCode)
		if err != nil {
			return err
		}
	}

	if err := d.run(spec.op, u, raw, strVal, rm); err != nil {
		return err
	}

	if spec.passOn {
		d.passOn(u, *raw.Evt, raw.Val, rm)
	}
	return nil
}

// run executes the handler operation for an already validated event.
func (d *Router) run(o op, u *session.User, raw rawMessage, strVal string, rm *room.Room) error {
	switch o {
	case opNone:
		return nil

	case opConnectInit:
		info, err := decodeConnectInfo(raw.Val)
		if err != nil {
			return err
		}
		target := d.registry.GetOrCreate(u, info.RoomCode, info.Name)
		name := target.AddMember(u, info.Name)
		return sendJoinData(u, target, name)

	case opJoinRoom:
		info, err := decodeConnectInfo(raw.Val)
		if err != nil {
			return err
		}
		target, ok := d.registry.Get(info.RoomCode)
		if !ok {
			return fmt.Errorf("%w: code %d", room.ErrUnknownRoom, info.RoomCode)
		}
		name := target.AddMember(u, info.Name)
		return sendJoinData(u, target, name)

	case opNewRoom:
		info, err := decodeConnectInfo(raw.Val)
		if err != nil {
			return err
		}
		target := d.registry.CreateRoom(u, info.Name)
		name := target.AddMember(u, info.Name)
		return sendJoinData(u, target, name)

	case opLeave:
		if rm.RemoveMember(u) {
			d.registry.ReleaseIfEmpty(rm)
		}
		return nil

	case opChangeName:
		u.Rename(rm.Code(), strVal)
		return nil

	case opChangeRoomName:
		name, ok := validate.RoomName(strVal)
		if !ok {
			return fmt.Errorf("%w: unusable room name", protocol.ErrMalformedEvent)
		}
		rm.Rename(name)
		return nil
	}
	return nil
}

// passOn relays a validated event verbatim to the rest of the resolved
// room. Only scalar values travel; a structured value suppresses the
// relay entirely.
func (d *Router) passOn(u *session.User, evt string, rawVal json.RawMessage, rm *room.Room) {
	if rm == nil {
		return
	}
	var val any
	if len(rawVal) > 0 {
		if isJSONObject(rawVal) || isJSONArray(rawVal) {
			return
		}
		if err := json.Unmarshal(rawVal, &val); err != nil {
			return
		}
	}
	rm.BroadcastEvent(u, protocol.NewEvent(evt, u.ID(), rm.Code(), val))
}

// sendJoinData sends the catch-up bootstrap payload to a joiner only.
func sendJoinData(u *session.User, rm *room.Room, username string) error {
	return u.SendEvent(protocol.Message{
		Evt: protocol.EvtJoinData,
		Val: protocol.JoinData{
			RoomCode:    rm.Code(),
			RoomName:    rm.Name(),
			Username:    username,
			DefaultName: u.DefaultName(),
			Peers:       rm.Peers(u),
		},
	})
}

func decodeConnectInfo(rawVal json.RawMessage) (protocol.ConnectInfo, error) {
	var info protocol.ConnectInfo
	if err := json.Unmarshal(rawVal, &info); err != nil {
		return info, fmt.Errorf("%w: %v", protocol.ErrMalformedEvent, err)
	}
	return info, nil
}

func isJSONObject(raw json.RawMessage) bool {
	trimmed := bytes.TrimLeft(raw, " \t\r\n")
	return len(trimmed) > 0 && trimmed[0] == '{'
}

func isJSONArray(raw json.RawMessage) bool {
	trimmed := bytes.TrimLeft(raw, " \t\r\n")
	return len(trimmed) > 0 && trimmed[0] == '['
}

// IsRecoverable reports whether err is one of the per-message faults
// that leave the connection open. Anything else runs the connection's
// error path.
func IsRecoverable(err error) bool {
	for _, target := range []error{
		protocol.ErrMalformedEvent,
		protocol.ErrUnknownEvent,
		protocol.ErrMissingField,
		protocol.ErrWrongFieldType,
		protocol.ErrUnknownFrameKind,
		room.ErrUnknownRoom,
		room.ErrNotAMember,
		session.ErrInactiveSend,
		session.ErrRateLimited,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
