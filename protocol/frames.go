package protocol

import "encoding/binary"

// ModeBulkInit marks a binary frame belonging to the late-join catch-up
// handshake. Every other mode value is drawing data the server forwards
// without interpretation.
const ModeBulkInit int16 = -1

// Client frames must carry at least [roomCode, mode].
const minFrameWords = 2

// DecodeFrame converts a little-endian binary payload into its int16
// words. It fails with ErrUnknownFrameKind when the payload is not a
// whole number of words or shorter than the [roomCode, mode] header.
func DecodeFrame(data []byte) ([]int16, error) {
	if len(data)%2 != 0 || len(data) < minFrameWords*2 {
		return nil, ErrUnknownFrameKind
	}
	words := make([]int16, len(data)/2)
	for i := range words {
		words[i] = int16(binary.LittleEndian.Uint16(data[i*2:]))
	}
	return words, nil
}

// EncodeFrame converts int16 words back into a little-endian payload.
func EncodeFrame(words []int16) []byte {
	data := make([]byte, len(words)*2)
	for i, w := range words {
		binary.LittleEndian.PutUint16(data[i*2:], uint16(w))
	}
	return data
}

// PrependID returns a copy of frame with the sender id as word zero.
// This is how peers attribute anonymous position data to a sender
// without a JSON round trip.
func PrependID(id SocketID, frame []int16) []int16 {
	out := make([]int16, len(frame)+1)
	out[0] = int16(id)
	copy(out[1:], frame)
	return out
}

// FrameRoom extracts the room code of a client frame.
func FrameRoom(frame []int16) RoomCode { return RoomCode(frame[0]) }

// FrameMode extracts the mode tag of a client frame.
func FrameMode(frame []int16) int16 { return frame[1] }
