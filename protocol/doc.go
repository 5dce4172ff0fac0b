// Package protocol defines the wire contracts of the sketchd server.
//
// One websocket connection carries two frame kinds:
//
//   - Text frames: UTF-8 JSON control events with the envelope
//     {evt: string, room?: number, val?: string|object}. Server-originated
//     events additionally carry usr (the sender's socket id).
//   - Binary frames: little-endian signed 16-bit integer arrays holding
//     position data. Clients send [roomCode, mode, ...payload]; the server
//     forwards [senderID, roomCode, mode, ...payload] to peers.
//
// A mode value of ModeBulkInit (-1) marks a bulk-init frame used by the
// late-join catch-up handshake. All other mode values are opaque drawing
// data tags interpreted by clients only.
//
// The package is transport-agnostic: it contains the shared identifier
// types, the JSON envelope, the binary codec, and the per-message error
// taxonomy, but no socket handling.
package protocol
