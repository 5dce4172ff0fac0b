// Package dispatch routes JSON control events to their handlers.
//
// Events are described by a static table mapping the event name to its
// required fields with their primitive types, a handler operation, and
// an optional pass-on flag. Dispatch validates the payload against the
// table, resolves the target room with a membership check when the
// event declares a room field, runs the handler, and finally relays
// pass-on events verbatim to the rest of the room.
//
// Handlers are a closed enum dispatched through a switch, so adding an
// event without wiring its operation is a compile-visible omission
// rather than a silently missing closure.
//
// Validation happens before any mutation; a message that fails
// validation leaves registry and session state untouched.
package dispatch
