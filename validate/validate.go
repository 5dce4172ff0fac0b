// Package validate holds the input validation rules shared by the
// control-event handlers: usernames, room names and room codes. Names
// are validated, never rejected outright: callers fall back to a
// generated default when validation fails.
package validate

import (
	"strings"
	"unicode/utf8"

	"github.com/openboard/sketchd/protocol"
)

// MaxNameLength caps usernames and room names, in runes.
const MaxNameLength = 20

// MaxRoomCode bounds the room code interval [1, MaxRoomCode].
const MaxRoomCode = 9999

// Username trims the candidate name and reports whether the result is
// usable: non-empty and at most MaxNameLength runes.
func Username(name string) (string, bool) {
	name = strings.TrimSpace(name)
	if name == "" || utf8.RuneCountInString(name) > MaxNameLength {
		return "", false
	}
	return name, true
}

// RoomName applies the same rules as Username.
func RoomName(name string) (string, bool) {
	return Username(name)
}

// RoomCode reports whether code lies in the shareable interval.
func RoomCode(code protocol.RoomCode) bool {
	return code >= 1 && code <= MaxRoomCode
}
